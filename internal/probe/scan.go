package probe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxLineBytes bounds a single read. Longer lines are scanned in
	// chunks of this size, each chunk matched as if it were its own line.
	DefaultMaxLineBytes = 4096
	// DefaultMaxCaptures bounds the captures kept per match; the rest are
	// dropped.
	DefaultMaxCaptures = 40

	minLineBytes = 16
)

// ScanError records a discovered file that could not be read. It does not
// stop the scan of other files.
type ScanError struct {
	Path     string
	Filename string
	Err      error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", filepath.Join(e.Path, e.Filename), e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

type lineScanner struct {
	re          regex.Matcher
	selector    InstanceSelector
	maxLine     int
	maxCaptures int
	items       itemBuilder
	log         logrus.FieldLogger
}

// scanUnit turns one discovered unit into items. A *ScanError return means
// the file was skipped; any other error aborts the run.
func (s *lineScanner) scanUnit(ctx context.Context, u types.DiscoveredUnit) ([]types.Item, error) {
	if u.Missing() {
		return []types.Item{s.items.missingFile(u.Path, s.selector.ReportMissing())}, nil
	}

	f, err := os.Open(joinFile(u.Path, u.Filename))
	if err != nil {
		return nil, &ScanError{Path: u.Path, Filename: u.Filename, Err: err}
	}
	defer func() { _ = f.Close() }()

	var out []types.Item
	r := bufio.NewReaderSize(f, max(s.maxLine, minLineBytes))
	instance := 0
	continued := false
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, isPrefix, err := r.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, &ScanError{Path: u.Path, Filename: u.Filename, Err: err}
		}
		// A line exactly one buffer long ends with an empty read for its
		// newline; that read is not a line of its own.
		tail := continued && !isPrefix && len(line) == 0
		continued = isPrefix
		if tail {
			continue
		}
		groups, err := s.re.Submatches(string(line))
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"path": u.Path, "filename": u.Filename}).Warn("content pattern evaluation failed")
			continue
		}
		if groups == nil {
			continue
		}
		instance++
		if !s.selector.Satisfied(instance) {
			continue
		}
		out = append(out, s.items.match(u, instance, captures(groups, s.maxCaptures)))
	}
	return out, nil
}

// captures lists the participating capture groups in order, at most limit of
// them. When no group participated the whole match stands in.
func captures(groups []regex.Group, limit int) []string {
	var out []string
	for _, g := range groups[1:] {
		if len(out) == limit {
			break
		}
		if g.Set {
			out = append(out, g.Text)
		}
	}
	if len(out) == 0 {
		return []string{groups[0].Text}
	}
	return out
}

func joinFile(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
