package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec marks a request that cannot be evaluated at all: an unknown
// operation or behavior value, a path pattern not rooted at "/", or a regex
// that fails to compile. Callers get no partial results with it.
var ErrInvalidSpec = errors.New("invalid object specification")

// Operation is the comparison applied to a path or filename value.
type Operation string

const (
	OpEquals       Operation = "equals"
	OpPatternMatch Operation = "pattern match"
)

// ParseOperation normalizes an operation string; empty means equals.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case "", OpEquals:
		return OpEquals, nil
	case OpPatternMatch:
		return OpPatternMatch, nil
	}
	return "", fmt.Errorf("unsupported operation %q: %w", s, ErrInvalidSpec)
}

// Spec is a path or filename criterion.
type Spec struct {
	Operation Operation `yaml:"operation,omitempty" json:"operation,omitempty"`
	Value     string    `yaml:"value" json:"value"`
}

// Direction selects which directory entries traversal may descend into.
type Direction string

const (
	DirectionNone Direction = "none"
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Follow selects which entry types traversal may descend into.
type Follow string

const (
	FollowSymlinksAndDirs Follow = "symlinks and directories"
	FollowDirsOnly        Follow = "directories"
	FollowSymlinksOnly    Follow = "symlinks"
	// FollowLegacyFilesAndDirs is the deprecated spelling; it behaves as
	// FollowDirsOnly.
	FollowLegacyFilesAndDirs Follow = "files and directories"
)

// Scope restricts traversal to local filesystems or not.
type Scope string

const (
	ScopeAll   Scope = "all"
	ScopeLocal Scope = "local"
)

// Unbounded is the MaxDepth sentinel for unlimited recursion.
const Unbounded = -1

// Behaviors bundles the traversal policy attached to an object. Decoders
// default an absent max_depth to 1; the zero value built in Go has MaxDepth 0,
// which disables recursion.
type Behaviors struct {
	MaxDepth  int       `yaml:"max_depth" json:"max_depth"`
	Direction Direction `yaml:"recurse_direction" json:"recurse_direction"`
	Follow    Follow    `yaml:"recurse" json:"recurse"`
	Scope     Scope     `yaml:"recurse_file_system" json:"recurse_file_system"`
}

// DefaultBehaviors returns the policy used when an object carries none:
// one level deep, no recursion direction.
func DefaultBehaviors() Behaviors {
	return Behaviors{
		MaxDepth:  1,
		Direction: DirectionNone,
		Follow:    FollowSymlinksAndDirs,
		Scope:     ScopeAll,
	}
}

// UnmarshalYAML fills attributes missing from the document with defaults.
func (b *Behaviors) UnmarshalYAML(value *yaml.Node) error {
	type plain Behaviors
	p := plain(DefaultBehaviors())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*b = Behaviors(p)
	return nil
}

// UnmarshalJSON fills attributes missing from the document with defaults.
func (b *Behaviors) UnmarshalJSON(data []byte) error {
	type plain Behaviors
	p := plain(DefaultBehaviors())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Behaviors(p)
	return nil
}

// Normalize fills empty fields with defaults and rejects unknown values.
func (b Behaviors) Normalize() (Behaviors, error) {
	if b.MaxDepth < Unbounded {
		return b, fmt.Errorf("max_depth %d below -1: %w", b.MaxDepth, ErrInvalidSpec)
	}
	switch b.Direction {
	case "":
		b.Direction = DirectionNone
	case DirectionNone, DirectionUp, DirectionDown:
	default:
		return b, fmt.Errorf("unsupported recurse_direction %q: %w", b.Direction, ErrInvalidSpec)
	}
	switch b.Follow {
	case "":
		b.Follow = FollowSymlinksAndDirs
	case FollowSymlinksAndDirs, FollowDirsOnly, FollowSymlinksOnly, FollowLegacyFilesAndDirs:
	default:
		return b, fmt.Errorf("unsupported recurse %q: %w", b.Follow, ErrInvalidSpec)
	}
	switch b.Scope {
	case "":
		b.Scope = ScopeAll
	case ScopeAll, ScopeLocal:
	default:
		return b, fmt.Errorf("unsupported recurse_file_system %q: %w", b.Scope, ErrInvalidSpec)
	}
	return b, nil
}

// DiscoveredUnit is one discovery result. An empty Filename means the path
// exists but nothing in it matched the filename criterion.
type DiscoveredUnit struct {
	Path     string
	Filename string
}

// Missing reports whether the unit is a path-only placeholder.
func (u DiscoveredUnit) Missing() bool { return u.Filename == "" }

// Status is the existence status of an item or one of its entities.
type Status string

const (
	StatusExists       Status = "exists"
	StatusDoesNotExist Status = "does not exist"
	StatusError        Status = "error"
)

// Item is a textfilecontent record handed to the evaluation engine.
type Item struct {
	ID             int      `json:"id"`
	Status         Status   `json:"status"`
	Path           string   `json:"path"`
	Filename       string   `json:"filename,omitempty"`
	Pattern        string   `json:"pattern,omitempty"`
	Instance       int      `json:"instance,omitempty"`
	Text           string   `json:"text,omitempty"`
	Subexpressions []string `json:"subexpressions"`

	// FilenameStatus is set on path-only items to tell "no file matched"
	// apart from "filename not requested".
	FilenameStatus Status `json:"filename_status,omitempty"`
}
