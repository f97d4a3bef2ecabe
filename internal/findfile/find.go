package findfile

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/redactyl/tfcprobe/internal/devfs"
	"github.com/redactyl/tfcprobe/internal/logging"
	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

// Request is one discovery call: a path criterion, an optional filename
// criterion and the traversal policy. A nil Filename enumerates directories
// instead of files.
type Request struct {
	Path      types.Spec
	Filename  *types.Spec
	Behaviors types.Behaviors
}

// Finder resolves Requests against the local filesystem. The zero value is
// ready to use: POSIX extended patterns, host-local device detection and no
// logging.
type Finder struct {
	Engine  regex.Engine
	Devices devfs.Source
	Log     logrus.FieldLogger
}

// Discovery is a prepared discovery call. Every root has been resolved and
// every pattern compiled; walking happens lazily while Units is consumed.
type Discovery struct {
	roots     []string
	behaviors types.Behaviors
	filename  nameMatcher
	devices   devfs.Filter
	log       logrus.FieldLogger

	used      bool
	total     int
	rootErrs  []error
	err       error
	closeOnce sync.Once
}

// Discover validates req, resolves its roots and compiles its patterns. Any
// ErrInvalidSpec failure is reported here, before a single unit exists.
// Callers must Close the returned Discovery if they do not drain Units.
func (f *Finder) Discover(ctx context.Context, req Request) (*Discovery, error) {
	log := logging.OrDiscard(f.Log)
	engine := f.Engine
	if engine == nil {
		engine = regex.POSIX{}
	}

	behaviors, err := req.Behaviors.Normalize()
	if err != nil {
		return nil, err
	}
	pathOp, err := types.ParseOperation(string(req.Path.Operation))
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	if req.Path.Value == "" {
		return nil, fmt.Errorf("path value is empty: %w", types.ErrInvalidSpec)
	}

	var filename nameMatcher
	if req.Filename != nil {
		op, err := types.ParseOperation(string(req.Filename.Operation))
		if err != nil {
			return nil, fmt.Errorf("filename: %w", err)
		}
		switch op {
		case types.OpPatternMatch:
			re, err := engine.Compile(req.Filename.Value)
			if err != nil {
				return nil, fmt.Errorf("compile filename pattern %q: %v: %w", req.Filename.Value, err, types.ErrInvalidSpec)
			}
			filename = patternName{re: re, log: log}
		default:
			if req.Filename.Value == "" {
				return nil, fmt.Errorf("filename value is empty: %w", types.ErrInvalidSpec)
			}
			filename = literalName(req.Filename.Value)
		}
	}

	path := trimSeparators(req.Path.Value)
	var roots []string
	if pathOp == types.OpPatternMatch {
		roots, err = MatchPaths(ctx, engine, path, log)
		if err != nil {
			return nil, err
		}
	} else {
		roots = []string{path}
	}

	d := &Discovery{
		roots:     roots,
		behaviors: behaviors,
		filename:  filename,
		log:       log,
	}
	if behaviors.Scope == types.ScopeLocal {
		src := f.Devices
		if src == nil {
			src = devfs.LocalSource{Log: log}
		}
		d.devices, err = src.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("local device set: %w", err)
		}
	}
	log.WithFields(logrus.Fields{"path": path, "roots": len(roots), "engine": engine.Name()}).Debug("discovery prepared")
	return d, nil
}

// Find runs a whole discovery call and collects its units.
func (f *Finder) Find(ctx context.Context, req Request) (Result, error) {
	d, err := f.Discover(ctx, req)
	if err != nil {
		return Result{}, err
	}
	defer d.Close()
	var units []types.DiscoveredUnit
	for u := range d.Units(ctx) {
		units = append(units, u)
	}
	if err := d.Err(); err != nil {
		return Result{}, err
	}
	return Result{Units: units, Total: d.Total(), RootErrors: d.RootErrors()}, nil
}

// Result is a fully drained discovery.
type Result struct {
	Units      []types.DiscoveredUnit
	Total      int
	RootErrors []error
}

// Roots returns the concrete traversal roots in resolution order.
func (d *Discovery) Roots() []string { return d.roots }

// Units walks every root and yields the matching units in traversal order. A
// root whose walk produced nothing yields one path-only unit; a root that
// cannot be opened yields nothing and is recorded in RootErrors. The sequence
// is single-use: a second range over it yields nothing.
func (d *Discovery) Units(ctx context.Context) iter.Seq[types.DiscoveredUnit] {
	return func(yield func(types.DiscoveredUnit) bool) {
		if d.used {
			return
		}
		d.used = true
		defer d.Close()

		for _, root := range d.roots {
			if err := ctx.Err(); err != nil {
				d.err = err
				return
			}
			w := &walker{
				behaviors: d.behaviors,
				filename:  d.filename,
				devices:   d.devices,
				emit:      yield,
				log:       d.log.WithField("root", root),
			}
			n, err := w.walkRoot(ctx, root)
			switch {
			case errors.Is(err, errStopped):
				d.total += n
				return
			case errors.Is(err, ErrRootUnavailable):
				d.log.WithError(err).WithField("root", root).Info("root unavailable")
				d.rootErrs = append(d.rootErrs, err)
				continue
			case err != nil:
				d.err = err
				return
			}
			if n == 0 {
				n = 1
				d.total += n
				if !yield(types.DiscoveredUnit{Path: root}) {
					return
				}
			} else {
				d.total += n
			}
			d.log.WithFields(logrus.Fields{"root": root, "count": n}).Debug("root walked")
		}
	}
}

// Total is the number of units produced so far, including the path-only
// placeholders of roots without matches. It is never negative.
func (d *Discovery) Total() int { return d.total }

// RootErrors lists the roots that could not be opened.
func (d *Discovery) RootErrors() []error { return d.rootErrs }

// Err returns the cancellation error that cut Units short, if any.
func (d *Discovery) Err() error { return d.err }

// Close releases the device filter. It is idempotent.
func (d *Discovery) Close() {
	d.closeOnce.Do(func() {
		if d.devices != nil {
			d.devices.Release()
		}
	})
}

func trimSeparators(p string) string {
	t := strings.TrimRight(p, "/")
	if t == "" {
		return "/"
	}
	return t
}
