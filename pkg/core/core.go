package core

import (
	"context"

	"github.com/redactyl/tfcprobe/internal/findfile"
	"github.com/redactyl/tfcprobe/internal/probe"
	"github.com/redactyl/tfcprobe/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Object           = probe.Object
	Probe            = probe.Probe
	Result           = probe.Result
	InstanceSelector = probe.InstanceSelector
	Item             = types.Item
	Spec             = types.Spec
	Behaviors        = types.Behaviors
	DiscoveredUnit   = types.DiscoveredUnit
	FindRequest      = findfile.Request
	FindResult       = findfile.Result
)

// ErrInvalidSpec is returned for objects that cannot be evaluated at all.
var ErrInvalidSpec = types.ErrInvalidSpec

// DefaultBehaviors is the traversal policy applied to objects without one.
// A Behaviors literal starts from MaxDepth 0, which disables recursion.
func DefaultBehaviors() Behaviors { return types.DefaultBehaviors() }

// Run evaluates one object with default engines and the host's local devices.
func Run(ctx context.Context, obj Object) (Result, error) {
	return (&probe.Probe{}).Run(ctx, obj)
}

// Find resolves a path/filename request into the files it names.
func Find(ctx context.Context, req FindRequest) (FindResult, error) {
	return (&findfile.Finder{}).Find(ctx, req)
}
