package findfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/redactyl/tfcprobe/internal/devfs"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

// ErrRootUnavailable is wrapped by RootError when a traversal root cannot be
// opened. It is never fatal to sibling roots.
var ErrRootUnavailable = errors.New("root unavailable")

// RootError reports a root that could not be opened.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string { return fmt.Sprintf("open root %s: %v", e.Root, e.Err) }

func (e *RootError) Unwrap() []error { return []error{ErrRootUnavailable, e.Err} }

// errStopped signals that the consumer stopped pulling units.
var errStopped = errors.New("discovery stopped by consumer")

type fileID struct{ dev, ino uint64 }

// walker traverses one root. It is single-use and single-threaded.
type walker struct {
	behaviors types.Behaviors
	filename  nameMatcher // nil enumerates directories only
	devices   devfs.Filter
	emit      func(types.DiscoveredUnit) bool
	log       logrus.FieldLogger

	// ancestors holds the directories on the current descent chain; a
	// directory already on it is not entered again.
	ancestors map[fileID]struct{}
}

func (w *walker) walkRoot(ctx context.Context, root string) (int, error) {
	w.ancestors = map[fileID]struct{}{}
	n, err := w.walk(ctx, root, w.behaviors.MaxDepth)
	if err != nil && !w.aborted(ctx, err) {
		return 0, &RootError{Root: root, Err: err}
	}
	return n, err
}

func (w *walker) aborted(ctx context.Context, err error) bool {
	return errors.Is(err, errStopped) || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
}

// walk returns the number of units emitted under dir, or the error that
// prevented dir from being opened.
func (w *walker) walk(ctx context.Context, dir string, depth int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	if id, ok := identify(dir); ok {
		if _, seen := w.ancestors[id]; seen {
			w.log.WithField("path", dir).Debug("directory already on the descent chain, not re-entering")
			return 0, nil
		}
		w.ancestors[id] = struct{}{}
		defer delete(w.ancestors, id)
	}

	count := 0
	if w.filename == nil {
		if !w.emit(types.DiscoveredUnit{Path: dir}) {
			return count, errStopped
		}
		count++
	}

	if w.behaviors.Direction == types.DirectionUp {
		if parent, err := os.Lstat(joinPath(dir, "..")); err == nil {
			entries = append([]fs.DirEntry{fs.FileInfoToDirEntry(parent)}, entries...)
		}
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		name := e.Name()
		child := joinPath(dir, name)
		if len(child) > MaxPathLen {
			continue
		}
		if name == ".." {
			child = physicalParent(dir)
		}

		if w.shouldRecurse(e, depth) {
			n, err := w.walk(ctx, child, nextDepth(depth))
			switch {
			case err == nil:
				count += n
			case w.aborted(ctx, err):
				return count + n, err
			default:
				w.log.WithError(err).WithField("path", child).Debug("skipping unreadable subdirectory")
			}
		}

		if w.filename != nil && !e.IsDir() && w.filename.match(name) {
			if !w.emit(types.DiscoveredUnit{Path: dir, Filename: name}) {
				return count, errStopped
			}
			count++
		}
	}
	return count, nil
}

func (w *walker) shouldRecurse(e fs.DirEntry, depth int) bool {
	if depth == 0 {
		return false
	}
	if !directionAllows(w.behaviors.Direction, e.Name()) {
		return false
	}
	if !followAllows(w.behaviors.Follow, e.Type()) {
		return false
	}
	if w.behaviors.Scope != types.ScopeLocal || w.devices == nil {
		return true
	}
	fi, err := e.Info()
	if err != nil {
		return false
	}
	dev, ok := devfs.DeviceOf(fi)
	return ok && w.devices.Allows(dev)
}

// physicalParent names the directory dir/.. opens: the parent of whatever dir
// resolves to, not its lexical parent.
func physicalParent(dir string) string {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return filepath.Clean(joinPath(dir, ".."))
	}
	return filepath.Dir(resolved)
}

func nextDepth(depth int) int {
	if depth == types.Unbounded {
		return types.Unbounded
	}
	return depth - 1
}

// identify returns the (device, inode) of the directory dir resolves to.
func identify(dir string) (fileID, bool) {
	fi, err := os.Stat(dir)
	if err != nil {
		return fileID{}, false
	}
	dev, ok := devfs.DeviceOf(fi)
	if !ok {
		return fileID{}, false
	}
	ino, _ := devfs.InodeOf(fi)
	return fileID{dev: dev, ino: ino}, true
}
