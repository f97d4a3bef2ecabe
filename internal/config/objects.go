package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/redactyl/tfcprobe/internal/probe"
	"gopkg.in/yaml.v3"
)

// ObjectFile is the YAML shape of an object definition file.
type ObjectFile struct {
	Objects []probe.Object `yaml:"objects"`
}

// LoadObjectFile reads one definition file. Objects without an id are named
// after the file and their position in it.
func LoadObjectFile(path string) ([]probe.Object, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ObjectFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range f.Objects {
		if f.Objects[i].ID == "" {
			f.Objects[i].ID = fmt.Sprintf("%s#%d", path, i+1)
		}
	}
	return f.Objects, nil
}

// LoadObjects expands each glob pattern and loads every matching file in
// sorted order. A file matched by several patterns is read once. Duplicate
// object ids are rejected.
func LoadObjects(patterns []string) ([]probe.Object, error) {
	seen := map[string]bool{}
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no object files match %q", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	ids := map[string]string{}
	var out []probe.Object
	for _, f := range files {
		objs, err := LoadObjectFile(f)
		if err != nil {
			return nil, err
		}
		for _, o := range objs {
			if prev, dup := ids[o.ID]; dup {
				return nil, fmt.Errorf("duplicate object id %q in %s (first defined in %s)", o.ID, f, prev)
			}
			ids[o.ID] = f
			out = append(out, o)
		}
	}
	return out, nil
}
