package probe

import "github.com/redactyl/tfcprobe/internal/types"

// IDAllocator hands out item ids for one probe run, starting at 1.
type IDAllocator struct {
	last int
}

// Next returns the next id.
func (a *IDAllocator) Next() int {
	a.last++
	return a.last
}

type itemBuilder struct {
	ids     *IDAllocator
	pattern string
}

// missingFile is the item for a root that exists but holds no matching file.
func (b itemBuilder) missingFile(path string, reportMissing bool) types.Item {
	if reportMissing {
		return types.Item{
			ID:             b.ids.Next(),
			Status:         types.StatusDoesNotExist,
			Path:           path,
			FilenameStatus: types.StatusDoesNotExist,
			Subexpressions: []string{},
		}
	}
	return types.Item{
		ID:             b.ids.Next(),
		Status:         types.StatusExists,
		Path:           path,
		Subexpressions: []string{},
	}
}

// missingPath is the item for a request that resolved to no file at all.
func (b itemBuilder) missingPath(path string) types.Item {
	return types.Item{
		ID:             b.ids.Next(),
		Status:         types.StatusDoesNotExist,
		Path:           path,
		Subexpressions: []string{},
	}
}

func (b itemBuilder) match(u types.DiscoveredUnit, instance int, captures []string) types.Item {
	it := types.Item{
		ID:             b.ids.Next(),
		Status:         types.StatusExists,
		Path:           u.Path,
		Filename:       u.Filename,
		Pattern:        b.pattern,
		Instance:       instance,
		Subexpressions: []string{},
	}
	if len(captures) > 0 {
		it.Text = captures[0]
		it.Subexpressions = append(it.Subexpressions, captures[1:]...)
	}
	return it
}
