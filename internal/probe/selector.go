package probe

import (
	"fmt"

	"github.com/redactyl/tfcprobe/internal/types"
)

// InstanceOp compares a 1-based occurrence number against a target.
type InstanceOp string

const (
	InstanceEquals         InstanceOp = "equals"
	InstanceNotEqual       InstanceOp = "not equal"
	InstanceGreater        InstanceOp = "greater than"
	InstanceGreaterOrEqual InstanceOp = "greater than or equal"
	InstanceLess           InstanceOp = "less than"
	InstanceLessOrEqual    InstanceOp = "less than or equal"
)

// InstanceSelector decides which occurrences of the content pattern inside a
// file produce items.
type InstanceSelector struct {
	Operation InstanceOp `yaml:"operation,omitempty" json:"operation,omitempty"`
	Target    int        `yaml:"value" json:"value"`
}

// EveryInstance selects all occurrences.
func EveryInstance() InstanceSelector {
	return InstanceSelector{Operation: InstanceGreaterOrEqual, Target: 1}
}

func (s InstanceSelector) normalize() (InstanceSelector, error) {
	switch s.Operation {
	case "":
		s.Operation = InstanceEquals
	case InstanceEquals, InstanceNotEqual, InstanceGreater, InstanceGreaterOrEqual, InstanceLess, InstanceLessOrEqual:
	default:
		return s, fmt.Errorf("unsupported instance operation %q: %w", s.Operation, types.ErrInvalidSpec)
	}
	return s, nil
}

// Satisfied reports whether occurrence n is selected.
func (s InstanceSelector) Satisfied(n int) bool {
	switch s.Operation {
	case InstanceEquals:
		return n == s.Target
	case InstanceNotEqual:
		return n != s.Target
	case InstanceGreater:
		return n > s.Target
	case InstanceGreaterOrEqual:
		return n >= s.Target
	case InstanceLess:
		return n < s.Target
	case InstanceLessOrEqual:
		return n <= s.Target
	}
	return false
}

// ReportMissing reports whether a missing file is a "does not exist" item
// rather than a path-only "exists" item. Only an exact occurrence request
// makes the absence itself meaningful.
func (s InstanceSelector) ReportMissing() bool {
	return s.Operation == InstanceEquals
}
