// Package devfs decides which filesystem devices count as "local" when an
// object restricts recursion with recurse_file_system=local.
package devfs

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/sirupsen/logrus"
)

// Filter answers membership queries for one discovery call. It is read-only
// after Open and safe to share between walkers of the same call.
type Filter interface {
	Allows(dev uint64) bool
	// Release drops the device set. It is safe to call more than once.
	Release()
}

// Source builds a Filter.
type Source interface {
	Open(ctx context.Context) (Filter, error)
}

// LocalSource enumerates the devices backing physical (non-pseudo, non-network)
// mounts of the host.
type LocalSource struct {
	Log logrus.FieldLogger
}

func (s LocalSource) Open(ctx context.Context) (Filter, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		dev, err := deviceOfPath(p.Mountpoint)
		if err != nil {
			if s.Log != nil {
				s.Log.WithError(err).WithField("mountpoint", p.Mountpoint).Debug("skipping unreadable mount point")
			}
			continue
		}
		ids = append(ids, dev)
	}
	if s.Log != nil {
		s.Log.WithField("devices", len(ids)).Debug("local device set ready")
	}
	return NewSet(ids...), nil
}

// Set is a Filter over a fixed list of device ids.
type Set struct {
	mu  sync.RWMutex
	ids map[uint64]struct{}
}

// NewSet returns a filter allowing exactly ids.
func NewSet(ids ...uint64) *Set {
	m := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &Set{ids: m}
}

func (s *Set) Allows(dev uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[dev]
	return ok
}

func (s *Set) Release() {
	s.mu.Lock()
	s.ids = nil
	s.mu.Unlock()
}

// StaticSource hands out a fixed Set; used by tests and hosts that already
// know their device list.
type StaticSource []uint64

func (s StaticSource) Open(context.Context) (Filter, error) {
	return NewSet(s...), nil
}
