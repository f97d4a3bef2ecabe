package regex

import "regexp"

// POSIX compiles POSIX ERE syntax with leftmost-longest semantics.
type POSIX struct{}

func (POSIX) Name() string { return NamePOSIX }

func (POSIX) Compile(pattern string) (Matcher, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, err
	}
	return posixMatcher{re: re}, nil
}

type posixMatcher struct {
	re *regexp.Regexp
}

func (m posixMatcher) Match(s string) (bool, error) {
	return m.re.MatchString(s), nil
}

func (m posixMatcher) Submatches(s string) ([]Group, error) {
	idx := m.re.FindStringSubmatchIndex(s)
	if idx == nil {
		return nil, nil
	}
	out := make([]Group, len(idx)/2)
	for i := range out {
		lo, hi := idx[2*i], idx[2*i+1]
		if lo < 0 {
			continue
		}
		out[i] = Group{Text: s[lo:hi], Set: true}
	}
	return out, nil
}

func (m posixMatcher) NumGroups() int { return m.re.NumSubexp() }

func (m posixMatcher) String() string { return m.re.String() }
