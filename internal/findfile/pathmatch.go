package findfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redactyl/tfcprobe/internal/logging"
	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

// regexMetachars are the characters that end the literal prefix of a path
// pattern.
const regexMetachars = `^$\.[](){}*+?`

// MaxPathLen bounds the length of any path built during traversal. Longer
// paths are skipped.
const MaxPathLen = 4096

// LiteralPrefix returns the directory named by the leading pattern segments
// that contain no regex metacharacter. The result always starts with "/" and
// has no trailing separator unless it is the root itself.
func LiteralPrefix(pattern string) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" {
			continue
		}
		if strings.ContainsAny(seg, regexMetachars) {
			break
		}
		b.WriteString(seg)
		b.WriteByte('/')
	}
	prefix := b.String()
	if len(prefix) > 1 {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}

// MatchPaths resolves a regex-bearing absolute path pattern into the
// directories it names. Traversal starts at the literal prefix and visits
// every subdirectory; each visited path is tested against the whole pattern,
// so a deeper directory can still satisfy it. Results are in traversal order.
func MatchPaths(ctx context.Context, engine regex.Engine, pattern string, log logrus.FieldLogger) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("path pattern %q is not rooted at /: %w", pattern, types.ErrInvalidSpec)
	}
	re, err := engine.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile path pattern %q: %v: %w", pattern, err, types.ErrInvalidSpec)
	}
	pm := &pathMatcher{re: re, log: logging.OrDiscard(log)}
	start := LiteralPrefix(pattern)
	pm.log.WithFields(logrus.Fields{"pattern": pattern, "start": start}).Debug("resolving path pattern")
	if err := pm.visit(ctx, start); err != nil {
		return nil, err
	}
	return pm.out, nil
}

type pathMatcher struct {
	re  regex.Matcher
	out []string
	log logrus.FieldLogger
}

func (m *pathMatcher) visit(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.log.WithError(err).WithField("path", dir).Debug("skipping unreadable directory")
		return nil
	}
	ok, err := m.re.Match(dir)
	if err != nil {
		m.log.WithError(err).WithField("path", dir).Warn("path pattern evaluation failed")
	} else if ok {
		m.out = append(m.out, dir)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.IsDir() {
			continue
		}
		child := joinPath(dir, e.Name())
		if len(child) > MaxPathLen {
			continue
		}
		if err := m.visit(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// joinPath appends name to dir without cleaning, so the string tested
// against patterns is exactly the traversal path.
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
