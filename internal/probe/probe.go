// Package probe implements the textfilecontent probe: it discovers files with
// findfile, scans them line by line with a content pattern and emits one item
// per selected occurrence.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redactyl/tfcprobe/internal/devfs"
	"github.com/redactyl/tfcprobe/internal/findfile"
	"github.com/redactyl/tfcprobe/internal/logging"
	"github.com/redactyl/tfcprobe/internal/regex"
	"github.com/redactyl/tfcprobe/internal/types"
	"github.com/sirupsen/logrus"
)

// Object is one textfilecontent object as found in definition files.
type Object struct {
	ID        string            `yaml:"id" json:"id"`
	Path      types.Spec        `yaml:"path" json:"path"`
	Filename  *types.Spec       `yaml:"filename" json:"filename"`
	Pattern   string            `yaml:"pattern" json:"pattern"`
	Instance  *InstanceSelector `yaml:"instance,omitempty" json:"instance,omitempty"`
	Behaviors *types.Behaviors  `yaml:"behaviors,omitempty" json:"behaviors,omitempty"`
}

// Probe evaluates Objects. The zero value uses the PCRE engine for content,
// POSIX for paths and filenames, the host's local devices and no logging.
type Probe struct {
	Engine     regex.Engine
	PathEngine regex.Engine
	Devices    devfs.Source
	Log        logrus.FieldLogger

	MaxLineBytes int
	MaxCaptures  int
}

// Result is the outcome of one object.
type Result struct {
	ObjectID   string
	Items      []types.Item
	Total      int
	RootErrors []error
	ScanErrors []*ScanError
	Duration   time.Duration
}

// Run evaluates obj. An ErrInvalidSpec or cancellation error comes back with
// no items; unreadable roots and files are reported in the Result instead.
func (p *Probe) Run(ctx context.Context, obj Object) (Result, error) {
	start := time.Now()
	log := logging.OrDiscard(p.Log).WithField("object", obj.ID)

	if obj.Filename == nil {
		return Result{}, fmt.Errorf("object %q: filename is required: %w", obj.ID, types.ErrInvalidSpec)
	}
	engine := p.Engine
	if engine == nil {
		engine = regex.PCRE{}
	}
	re, err := engine.Compile(obj.Pattern)
	if err != nil {
		return Result{}, fmt.Errorf("object %q: compile pattern %q: %v: %w", obj.ID, obj.Pattern, err, types.ErrInvalidSpec)
	}
	log.WithFields(logrus.Fields{"engine": engine.Name(), "groups": re.NumGroups()}).Debug("content pattern compiled")
	selector := EveryInstance()
	if obj.Instance != nil {
		if selector, err = obj.Instance.normalize(); err != nil {
			return Result{}, fmt.Errorf("object %q: %w", obj.ID, err)
		}
	}
	behaviors := types.DefaultBehaviors()
	if obj.Behaviors != nil {
		behaviors = *obj.Behaviors
	}

	finder := &findfile.Finder{Engine: p.PathEngine, Devices: p.Devices, Log: log}
	d, err := finder.Discover(ctx, findfile.Request{Path: obj.Path, Filename: obj.Filename, Behaviors: behaviors})
	if err != nil {
		return Result{}, fmt.Errorf("object %q: %w", obj.ID, err)
	}
	defer d.Close()

	items := itemBuilder{ids: &IDAllocator{}, pattern: obj.Pattern}
	sc := &lineScanner{
		re:          re,
		selector:    selector,
		maxLine:     orDefault(p.MaxLineBytes, DefaultMaxLineBytes),
		maxCaptures: orDefault(p.MaxCaptures, DefaultMaxCaptures),
		items:       items,
		log:         log,
	}

	res := Result{ObjectID: obj.ID}
	for u := range d.Units(ctx) {
		got, err := sc.scanUnit(ctx, u)
		res.Items = append(res.Items, got...)
		var se *ScanError
		switch {
		case errors.As(err, &se):
			log.WithError(err).Info("file skipped")
			res.ScanErrors = append(res.ScanErrors, se)
		case err != nil:
			return Result{}, err
		}
	}
	if err := d.Err(); err != nil {
		return Result{}, err
	}
	res.Total = d.Total()
	res.RootErrors = d.RootErrors()

	if res.Total == 0 && obj.Filename.Operation != types.OpPatternMatch {
		res.Items = append(res.Items, items.missingPath(obj.Path.Value))
	}
	res.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"items":  len(res.Items),
		"files":  res.Total,
		"errors": len(res.RootErrors) + len(res.ScanErrors),
	}).Debug("object evaluated")
	return res, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
