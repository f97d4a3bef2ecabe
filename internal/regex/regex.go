// Package regex abstracts the regular expression engines used for path,
// filename and content matching. Two interchangeable backends exist: a
// POSIX-style extended engine (leftmost-longest, Go's regexp in POSIX mode)
// and a richer Perl/.NET style engine backed by dlclark/regexp2. The backend
// is picked at runtime by name.
package regex

import (
	"fmt"
	"strings"
	"time"
)

// Group is one capture group of a match. Set is false for groups that did not
// participate in the match.
type Group struct {
	Text string
	Set  bool
}

// Matcher is a compiled pattern.
type Matcher interface {
	// Match reports whether s contains a match.
	Match(s string) (bool, error)
	// Submatches returns group 0 followed by each capture group, in order,
	// or nil when s does not match.
	Submatches(s string) ([]Group, error)
	// NumGroups is the number of capture groups, excluding group 0.
	NumGroups() int
	String() string
}

// Engine compiles patterns into Matchers.
type Engine interface {
	Name() string
	Compile(pattern string) (Matcher, error)
}

const (
	NamePOSIX = "posix"
	NamePCRE  = "pcre"
)

// Options tune engine construction.
type Options struct {
	// MatchTimeout bounds a single match on engines that support it.
	// Zero leaves the engine default (no limit).
	MatchTimeout time.Duration
}

// ByName returns the engine registered under name. Empty selects PCRE.
func ByName(name string, opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NamePCRE, "perl", "regexp2":
		return PCRE{MatchTimeout: opts.MatchTimeout}, nil
	case NamePOSIX, "ere", "extended":
		return POSIX{}, nil
	}
	return nil, fmt.Errorf("unknown regex engine %q (want %s or %s)", name, NamePOSIX, NamePCRE)
}
