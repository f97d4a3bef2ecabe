package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/redactyl/tfcprobe/internal/types"
)

// MarshalItems writes items as an indented JSON array. Nil slices become
// empty arrays, so every item carries "subexpressions": [].
func MarshalItems(w io.Writer, items []Item) error {
	out := make([]Item, len(items))
	for i, it := range items {
		if it.Subexpressions == nil {
			it.Subexpressions = []string{}
		}
		out[i] = it
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// UnmarshalItems decodes an items array written by MarshalItems or the
// scan --json report. Items with an unknown status are rejected.
func UnmarshalItems(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, err
	}
	for i := range items {
		switch items[i].Status {
		case types.StatusExists, types.StatusDoesNotExist, types.StatusError:
		default:
			return nil, fmt.Errorf("item %d: unknown status %q", items[i].ID, items[i].Status)
		}
		if items[i].Subexpressions == nil {
			items[i].Subexpressions = []string{}
		}
	}
	return items, nil
}
