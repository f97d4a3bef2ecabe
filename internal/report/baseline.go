package report

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/types"
)

// Baseline is the set of item fingerprints accepted by a previous scan.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file is an empty baseline.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return b, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline records every item of results.
func SaveBaseline(path string, results []probe.Result) error {
	b := Baseline{Items: map[string]bool{}}
	for _, r := range results {
		for _, it := range r.Items {
			b.Items[Fingerprint(r.ObjectID, it)] = true
		}
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// FilterNew drops the items already present in base. Results keep their
// errors and totals.
func FilterNew(results []probe.Result, base Baseline) []probe.Result {
	out := make([]probe.Result, len(results))
	for i, r := range results {
		out[i] = r
		out[i].Items = nil
		for _, it := range r.Items {
			if !base.Items[Fingerprint(r.ObjectID, it)] {
				out[i].Items = append(out[i].Items, it)
			}
		}
	}
	return out
}

// Fingerprint identifies an item independently of its run-scoped id.
func Fingerprint(objectID string, it types.Item) string {
	var sb strings.Builder
	for _, s := range []string{objectID, string(it.Status), it.Path, it.Filename, strconv.Itoa(it.Instance), it.Text} {
		sb.WriteString(s)
		sb.WriteByte('|')
	}
	sb.WriteString(strings.Join(it.Subexpressions, "\x1f"))
	return strconv.FormatUint(xxhash.Sum64String(sb.String()), 16)
}
