package findfile

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/etc/ssh/sshd_config", "/etc/ssh/sshd_config"},
		{"/etc/.*\\.d", "/etc"},
		{"/etc/cron.d/x", "/etc"},
		{"/a/b[0-9]/c", "/a"},
		{"/^x", "/"},
		{"/", "/"},
		{"//usr//lib/(a|b)", "/usr/lib"},
		{"/var/log$", "/var"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := LiteralPrefix(tt.pattern)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got[1:], "^")
		})
	}
}

func TestMatchPaths_FullPatternAndTraversalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"a/conf.d", "a/x", "b/conf.d/sub", "c/deep/conf.d"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.d"), []byte("file, not dir"), 0o644))

	pattern := regexp.QuoteMeta(dir) + `/[a-z]+/conf\.d$`
	got, err := MatchPaths(context.Background(), regex.POSIX{}, pattern, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dir + "/a/conf.d", dir + "/b/conf.d"}, got)

	re := regexp.MustCompilePOSIX(pattern)
	for _, p := range got {
		assert.True(t, re.MatchString(p), p)
	}
}

func TestMatchPaths_UnanchoredKeepsDescending(t *testing.T) {
	dir := t.TempDir()
	if strings.ContainsAny(dir, regexMetachars) {
		t.Skipf("temp dir %s shortens the literal prefix", dir)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b", "conf.d", "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bb"), 0o755))

	got, err := MatchPaths(context.Background(), regex.POSIX{}, regexp.QuoteMeta(dir)+"/b", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir + "/b",
		dir + "/b/conf.d",
		dir + "/b/conf.d/sub",
	}, got, "literal prefix %s/b never reaches %s/bb", dir, dir)
}

func TestMatchPaths_SkipsSymlinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "real", "etc"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")))

	got, err := MatchPaths(context.Background(), regex.POSIX{}, regexp.QuoteMeta(dir)+"/[a-z]+/etc$", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dir + "/real/etc"}, got)
}

func TestMatchPaths_Errors(t *testing.T) {
	_, err := MatchPaths(context.Background(), regex.POSIX{}, "etc/.*", nil)
	assert.ErrorIs(t, err, types.ErrInvalidSpec)

	_, err = MatchPaths(context.Background(), regex.POSIX{}, "/tmp/(", nil)
	assert.ErrorIs(t, err, types.ErrInvalidSpec)
}

func TestMatchPaths_MissingPrefixIsEmpty(t *testing.T) {
	dir := t.TempDir()
	got, err := MatchPaths(context.Background(), regex.POSIX{}, regexp.QuoteMeta(dir)+"/nope/.*", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchPaths_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MatchPaths(ctx, regex.POSIX{}, regexp.QuoteMeta(dir)+"/.*", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
