// Package curvedaemon implements the closed-loop fan-curve controller: a
// single background worker that keeps each configured (gpu, fan) pair at
// the speed its curve prescribes for the current temperature, writing only
// on change.
package curvedaemon

import (
	"sort"
	"sync"

	"github.com/mqasimca/nvctl/internal/domain"
)

// Key identifies one (gpu, fan) pair.
type Key struct {
	GpuIndex int
	FanIndex int
}

type entry struct {
	curve   domain.FanCurve
	enabled bool
}

// State is the daemon's shared, multi-writer table. It is the only
// long-lived shared-mutable structure in the system; callers (UI, config
// reload, CLI) may mutate it at any time, and the worker picks up changes on
// its next tick without restart.
type State struct {
	mu        sync.RWMutex
	curves    map[Key]entry
	lastSpeed map[Key]int
}

func NewState() *State {
	return &State{
		curves:    make(map[Key]entry),
		lastSpeed: make(map[Key]int),
	}
}

func (s *State) SetCurve(k Key, curve domain.FanCurve, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curves[k] = entry{curve: curve, enabled: enabled}
}

func (s *State) SetEnabled(k Key, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.curves[k]; ok {
		e.enabled = enabled
		s.curves[k] = e
	}
}

func (s *State) RemoveCurve(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.curves, k)
	delete(s.lastSpeed, k)
}

// EnabledCurve is a point-in-time snapshot entry returned by EnabledCurves.
type EnabledCurve struct {
	Key   Key
	Curve domain.FanCurve
}

// EnabledCurves takes the lock only long enough to copy the enabled set into
// a local, ordering-stable slice; callers must not hold it across I/O.
// Iteration order is lexicographic on (gpu, fan), matching the unspecified-
// but-deterministic ordering the daemon contract allows.
func (s *State) EnabledCurves() []EnabledCurve {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EnabledCurve, 0, len(s.curves))

	for k, e := range s.curves {
		if e.enabled {
			out = append(out, EnabledCurve{Key: k, Curve: e.curve})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.GpuIndex != out[j].Key.GpuIndex {
			return out[i].Key.GpuIndex < out[j].Key.GpuIndex
		}

		return out[i].Key.FanIndex < out[j].Key.FanIndex
	})

	return out
}

func (s *State) HasEnabledCurves() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.curves {
		if e.enabled {
			return true
		}
	}

	return false
}

func (s *State) LastSpeed(k Key) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.lastSpeed[k]

	return v, ok
}

func (s *State) SetLastSpeed(k Key, v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSpeed[k] = v
}
