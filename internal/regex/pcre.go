package regex

import (
	"time"

	"github.com/dlclark/regexp2"
)

// PCRE compiles Perl-compatible patterns with full capture semantics over
// UTF-8 input.
type PCRE struct {
	MatchTimeout time.Duration
}

func (PCRE) Name() string { return NamePCRE }

func (p PCRE) Compile(pattern string) (Matcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	if p.MatchTimeout > 0 {
		re.MatchTimeout = p.MatchTimeout
	}
	return pcreMatcher{re: re}, nil
}

type pcreMatcher struct {
	re *regexp2.Regexp
}

func (m pcreMatcher) Match(s string) (bool, error) {
	return m.re.MatchString(s)
}

func (m pcreMatcher) Submatches(s string) ([]Group, error) {
	match, err := m.re.FindStringMatch(s)
	if err != nil || match == nil {
		return nil, err
	}
	groups := match.Groups()
	out := make([]Group, len(groups))
	for i := range groups {
		g := &groups[i]
		if len(g.Captures) == 0 {
			continue
		}
		out[i] = Group{Text: g.String(), Set: true}
	}
	return out, nil
}

func (m pcreMatcher) NumGroups() int { return len(m.re.GetGroupNumbers()) - 1 }

func (m pcreMatcher) String() string { return m.re.String() }
