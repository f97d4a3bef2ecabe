package findfile

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/redactyl/tfcprobe/internal/devfs"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates each relative file (with parents) under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f+"\n"), 0o644))
	}
}

func equals(v string) *types.Spec { return &types.Spec{Operation: types.OpEquals, Value: v} }

func pattern(v string) *types.Spec { return &types.Spec{Operation: types.OpPatternMatch, Value: v} }

func behaviors(depth int, dir types.Direction, follow types.Follow) types.Behaviors {
	return types.Behaviors{MaxDepth: depth, Direction: dir, Follow: follow, Scope: types.ScopeAll}
}

func find(t *testing.T, f *Finder, req Request) Result {
	t.Helper()
	res, err := f.Find(context.Background(), req)
	require.NoError(t, err)
	return res
}

func unit(path, name string) types.DiscoveredUnit {
	return types.DiscoveredUnit{Path: path, Filename: name}
}

func TestFind_FilenameEqualsVsPattern(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.txt", "ab.txt", "a.txt.bak", "b.txt")

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Operation: types.OpEquals, Value: dir},
		Filename:  equals("a.txt"),
		Behaviors: types.DefaultBehaviors(),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir, "a.txt")}, res.Units)
	assert.Equal(t, 1, res.Total)

	res = find(t, &Finder{}, Request{
		Path:      types.Spec{Operation: types.OpEquals, Value: dir},
		Filename:  pattern(`^a.*\.txt$`),
		Behaviors: types.DefaultBehaviors(),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir, "a.txt"), unit(dir, "ab.txt")}, res.Units)
	assert.Equal(t, 2, res.Total)
}

func TestFind_ZeroMatchesYieldsPathOnlyUnit(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "other.conf")

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir + "/"},
		Filename:  equals("a.txt"),
		Behaviors: types.DefaultBehaviors(),
	})
	require.Len(t, res.Units, 1)
	assert.True(t, res.Units[0].Missing())
	assert.Equal(t, dir, res.Units[0].Path)
	assert.Equal(t, 1, res.Total)
	assert.Empty(t, res.RootErrors)
}

func TestFind_UnavailableRootIsNotAZeroMatch(t *testing.T) {
	dir := t.TempDir()
	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: filepath.Join(dir, "missing")},
		Filename:  equals("a.txt"),
		Behaviors: types.DefaultBehaviors(),
	})
	assert.Empty(t, res.Units)
	assert.Equal(t, 0, res.Total)
	require.Len(t, res.RootErrors, 1)
	assert.ErrorIs(t, res.RootErrors[0], ErrRootUnavailable)
	assert.ErrorIs(t, res.RootErrors[0], os.ErrNotExist)
}

func TestDiscovery_PerRootAggregation(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "r1/a.txt", "r1/x/a.txt", "r2/b.txt", "r3/a.txt")

	f := &Finder{}
	d, err := f.Discover(context.Background(), Request{
		Path:      types.Spec{Operation: types.OpPatternMatch, Value: regexp.QuoteMeta(dir) + "/r[0-9]$"},
		Filename:  equals("a.txt"),
		Behaviors: behaviors(types.Unbounded, types.DirectionDown, types.FollowSymlinksAndDirs),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{dir + "/r1", dir + "/r2", dir + "/r3"}, d.Roots())

	// r3 disappears between resolution and walking.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "r3")))

	var got []types.DiscoveredUnit
	for u := range d.Units(context.Background()) {
		got = append(got, u)
	}
	require.NoError(t, d.Err())
	assert.Equal(t, []types.DiscoveredUnit{
		unit(dir+"/r1", "a.txt"),
		unit(dir+"/r1/x", "a.txt"),
		unit(dir+"/r2", ""),
	}, got)
	assert.Equal(t, 3, d.Total())
	require.Len(t, d.RootErrors(), 1)
	assert.ErrorIs(t, d.RootErrors()[0], ErrRootUnavailable)

	// single use
	for range d.Units(context.Background()) {
		t.Fatal("second iteration must yield nothing")
	}
}

func TestFind_RecursionBeforeLaterSiblings(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a/x.txt", "b.txt")

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir},
		Filename:  pattern(`\.txt$`),
		Behaviors: behaviors(1, types.DirectionDown, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir+"/a", "x.txt"), unit(dir, "b.txt")}, res.Units)
}

func TestFind_DirectionNoneNeverRecurses(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "f.txt", "sub/f.txt", "sub/deeper/f.txt")

	for _, follow := range []types.Follow{types.FollowSymlinksAndDirs, types.FollowDirsOnly, types.FollowSymlinksOnly} {
		res := find(t, &Finder{}, Request{
			Path:      types.Spec{Value: dir},
			Filename:  equals("f.txt"),
			Behaviors: behaviors(types.Unbounded, types.DirectionNone, follow),
		})
		assert.Equal(t, []types.DiscoveredUnit{unit(dir, "f.txt")}, res.Units, string(follow))
	}
}

func TestFind_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "f.txt", "l1/f.txt", "l1/l2/f.txt", "l1/l2/l3/f.txt")

	tests := []struct {
		depth int
		want  []string
	}{
		{0, []string{dir}},
		{1, []string{dir, dir + "/l1"}},
		{2, []string{dir, dir + "/l1", dir + "/l1/l2"}},
		{types.Unbounded, []string{dir, dir + "/l1", dir + "/l1/l2", dir + "/l1/l2/l3"}},
	}
	for _, tt := range tests {
		res := find(t, &Finder{}, Request{
			Path:      types.Spec{Value: dir},
			Filename:  equals("f.txt"),
			Behaviors: behaviors(tt.depth, types.DirectionDown, types.FollowSymlinksAndDirs),
		})
		var paths []string
		for _, u := range res.Units {
			paths = append(paths, u.Path)
		}
		assert.Equal(t, tt.want, paths, "depth %d", tt.depth)
	}
}

func TestFind_FollowPolicy(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()
	writeTree(t, dir, "real/f.txt")
	writeTree(t, target, "f.txt")
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link")))

	tests := []struct {
		follow types.Follow
		want   []types.DiscoveredUnit
	}{
		{types.FollowSymlinksAndDirs, []types.DiscoveredUnit{unit(dir+"/link", "f.txt"), unit(dir+"/real", "f.txt")}},
		{types.FollowDirsOnly, []types.DiscoveredUnit{unit(dir+"/real", "f.txt")}},
		{types.FollowLegacyFilesAndDirs, []types.DiscoveredUnit{unit(dir+"/real", "f.txt")}},
		{types.FollowSymlinksOnly, []types.DiscoveredUnit{unit(dir+"/link", "f.txt")}},
	}
	for _, tt := range tests {
		t.Run(string(tt.follow), func(t *testing.T) {
			res := find(t, &Finder{}, Request{
				Path:      types.Spec{Value: dir},
				Filename:  equals("f.txt"),
				Behaviors: behaviors(1, types.DirectionDown, tt.follow),
			})
			assert.Equal(t, tt.want, res.Units)
		})
	}
}

func TestFind_SymlinkToFileIsMatchedAsFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "data/real.conf")
	require.NoError(t, os.Symlink(filepath.Join(dir, "data", "real.conf"), filepath.Join(dir, "app.conf")))

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir},
		Filename:  equals("app.conf"),
		Behaviors: behaviors(1, types.DirectionDown, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir, "app.conf")}, res.Units)
}

func TestFind_SymlinkLoopTerminates(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a/f.txt")
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "a", "back")))

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir},
		Filename:  equals("f.txt"),
		Behaviors: behaviors(types.Unbounded, types.DirectionDown, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir+"/a", "f.txt")}, res.Units)
}

func TestFind_DirectionUp(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeTree(t, dir, "target.txt", "a/target.txt", "a/b/keep")

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir + "/a/b"},
		Filename:  equals("target.txt"),
		Behaviors: behaviors(1, types.DirectionUp, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir+"/a", "target.txt")}, res.Units)

	res = find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir + "/a/b"},
		Filename:  equals("target.txt"),
		Behaviors: behaviors(2, types.DirectionUp, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir, "target.txt"), unit(dir+"/a", "target.txt")}, res.Units)
}

func TestFind_DirectionUpFromSymlinkedRootUsesPhysicalParent(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeTree(t, dir, "real/target.conf", "real/inner/keep", "links/target.conf")
	require.NoError(t, os.Symlink(filepath.Join(dir, "real", "inner"), filepath.Join(dir, "links", "l")))

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir + "/links/l"},
		Filename:  equals("target.conf"),
		Behaviors: behaviors(1, types.DirectionUp, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{unit(dir+"/real", "target.conf")}, res.Units)
}

func TestFind_ScopeLocalConsultsDevices(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "sub/f.txt")
	fi, err := os.Lstat(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	dev, ok := devfs.DeviceOf(fi)
	if !ok {
		t.Skip("no device ids on this platform")
	}

	req := Request{
		Path:      types.Spec{Value: dir},
		Filename:  equals("f.txt"),
		Behaviors: types.Behaviors{MaxDepth: 1, Direction: types.DirectionDown, Scope: types.ScopeLocal},
	}

	res := find(t, &Finder{Devices: devfs.StaticSource{dev}}, req)
	assert.Equal(t, []types.DiscoveredUnit{unit(dir+"/sub", "f.txt")}, res.Units)

	res = find(t, &Finder{Devices: devfs.StaticSource{}}, req)
	assert.Equal(t, []types.DiscoveredUnit{unit(dir, "")}, res.Units)

	// scope all never asks the source
	req.Behaviors.Scope = types.ScopeAll
	res = find(t, &Finder{Devices: failingSource{}}, req)
	assert.Len(t, res.Units, 1)
}

type failingSource struct{}

func (failingSource) Open(context.Context) (devfs.Filter, error) {
	return nil, os.ErrPermission
}

func TestFind_DirectoryOnlyEnumeration(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a/f", "b/c/f", "g")

	res := find(t, &Finder{}, Request{
		Path:      types.Spec{Value: dir},
		Behaviors: behaviors(types.Unbounded, types.DirectionDown, types.FollowSymlinksAndDirs),
	})
	assert.Equal(t, []types.DiscoveredUnit{
		unit(dir, ""), unit(dir+"/a", ""), unit(dir+"/b", ""), unit(dir+"/b/c", ""),
	}, res.Units)
	assert.Equal(t, 4, res.Total)
}

func TestDiscovery_ConsumerStopAndClose(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.txt", "b.txt", "c.txt")

	released := 0
	f := &Finder{Devices: countingSource{released: &released}}
	d, err := f.Discover(context.Background(), Request{
		Path:      types.Spec{Value: dir},
		Filename:  pattern(`\.txt$`),
		Behaviors: types.Behaviors{MaxDepth: 1, Scope: types.ScopeLocal},
	})
	require.NoError(t, err)
	n := 0
	for range d.Units(context.Background()) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	d.Close()
	assert.Equal(t, 1, released)
}

type countingSource struct{ released *int }

func (s countingSource) Open(context.Context) (devfs.Filter, error) {
	return countingFilter(s), nil
}

type countingFilter struct{ released *int }

func (countingFilter) Allows(uint64) bool { return true }
func (f countingFilter) Release()          { *f.released++ }

func TestFind_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Finder{}).Find(ctx, Request{
		Path:      types.Spec{Value: dir},
		Filename:  equals("a.txt"),
		Behaviors: types.DefaultBehaviors(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_InvalidSpec(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		req  Request
	}{
		{"bad path op", Request{Path: types.Spec{Operation: "greater than", Value: dir}}},
		{"bad filename op", Request{Path: types.Spec{Value: dir}, Filename: &types.Spec{Operation: "nope", Value: "a"}}},
		{"relative path pattern", Request{Path: types.Spec{Operation: types.OpPatternMatch, Value: "etc/.*"}}},
		{"bad filename regex", Request{Path: types.Spec{Value: dir}, Filename: pattern("([")}},
		{"depth below -1", Request{Path: types.Spec{Value: dir}, Behaviors: types.Behaviors{MaxDepth: -2}}},
		{"bad direction", Request{Path: types.Spec{Value: dir}, Behaviors: types.Behaviors{Direction: "sideways"}}},
		{"bad follow", Request{Path: types.Spec{Value: dir}, Behaviors: types.Behaviors{Follow: "everything"}}},
		{"bad scope", Request{Path: types.Spec{Value: dir}, Behaviors: types.Behaviors{Scope: "remote"}}},
		{"empty path", Request{Path: types.Spec{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := (&Finder{}).Discover(context.Background(), tt.req)
			assert.ErrorIs(t, err, types.ErrInvalidSpec)
			assert.Nil(t, d)
		})
	}
}
