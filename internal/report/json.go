package report

import (
	"encoding/json"
	"io"

	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/types"
)

// ObjectReport is the JSON shape of one evaluated object.
type ObjectReport struct {
	Object     string       `json:"object"`
	Items      []types.Item `json:"items"`
	Files      int          `json:"files"`
	RootErrors []string     `json:"root_errors,omitempty"`
	ScanErrors []string     `json:"scan_errors,omitempty"`
}

// ScanReport is the JSON document written by `scan --json`.
type ScanReport struct {
	ScanID  string         `json:"scan_id,omitempty"`
	Objects []ObjectReport `json:"objects"`
}

// NewScanReport converts probe results into their JSON shape.
func NewScanReport(scanID string, results []probe.Result) ScanReport {
	rep := ScanReport{ScanID: scanID, Objects: make([]ObjectReport, 0, len(results))}
	for _, r := range results {
		o := ObjectReport{Object: r.ObjectID, Items: r.Items, Files: r.Total}
		if o.Items == nil {
			o.Items = []types.Item{}
		}
		for _, err := range r.RootErrors {
			o.RootErrors = append(o.RootErrors, err.Error())
		}
		for _, err := range r.ScanErrors {
			o.ScanErrors = append(o.ScanErrors, err.Error())
		}
		rep.Objects = append(rep.Objects, o)
	}
	return rep
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
