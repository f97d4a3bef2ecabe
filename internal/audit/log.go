package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redactyl/tfcprobe/internal/probe"
)

type ScanRecord struct {
	Timestamp      time.Time       `json:"timestamp"`
	ScanID         string          `json:"scan_id"`
	Objects        []ObjectSummary `json:"objects"`
	TotalItems     int             `json:"total_items"`
	NewItems       int             `json:"new_items"`
	BaselinedCount int             `json:"baselined_count"`
	StatusCounts   map[string]int  `json:"status_counts"`
	FilesScanned   int             `json:"files_scanned"`
	Problems       int             `json:"problems"`
	Duration       string          `json:"duration"`
	BaselineFile   string          `json:"baseline_file,omitempty"`
}

type ObjectSummary struct {
	ID       string `json:"id"`
	Items    int    `json:"items"`
	Files    int    `json:"files"`
	Problems int    `json:"problems,omitempty"`
	Duration string `json:"duration"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

// Path is the JSONL file the log appends to.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns the recorded scans, newest first. Reading stops at the
// first corrupt record.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = uuid.NewString()
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first as returned
// by LoadHistory.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}

	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.Create(a.logPath)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// CreateScanRecord summarises one scan. newResults is the post-baseline view
// of all; both must list the same objects.
func CreateScanRecord(scanID string, all, newResults []probe.Result, duration time.Duration, baselineFile string) ScanRecord {
	rec := ScanRecord{
		Timestamp:    time.Now(),
		ScanID:       scanID,
		Objects:      make([]ObjectSummary, 0, len(all)),
		StatusCounts: map[string]int{},
		Duration:     duration.String(),
		BaselineFile: baselineFile,
	}
	for _, r := range all {
		problems := len(r.RootErrors) + len(r.ScanErrors)
		rec.Objects = append(rec.Objects, ObjectSummary{
			ID:       r.ObjectID,
			Items:    len(r.Items),
			Files:    r.Total,
			Problems: problems,
			Duration: r.Duration.String(),
		})
		rec.TotalItems += len(r.Items)
		rec.FilesScanned += r.Total
		rec.Problems += problems
		for _, it := range r.Items {
			rec.StatusCounts[string(it.Status)]++
		}
	}
	for _, r := range newResults {
		rec.NewItems += len(r.Items)
	}
	rec.BaselinedCount = rec.TotalItems - rec.NewItems
	return rec
}
