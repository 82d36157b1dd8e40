// Package array provides device-resident numeric arrays and the public
// operation surface: elementwise arithmetic, reductions, transforms, fills,
// and a BLAS-backed dot product. Every operation is synchronous: once a
// call returns, the destination array holds the completed result.
package array

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
	"github.com/surge-ml/surge/internal/launch"
)

// Backend is the driver contract one accelerator device provides: an
// execution context plus a precompiled kernel catalog.
type Backend interface {
	device.Context
	kernels.Catalog
}

type deviceEntry struct {
	backend  Backend
	selector *kernels.Selector
	coord    *launch.Coordinator
}

// Registry owns the per-device kernel selectors and launch coordinators.
// It replaces any notion of an implicit process-wide device manager: a
// registry is explicitly constructed, devices are explicitly added, and
// Close tears everything down.
type Registry struct {
	mu      sync.RWMutex
	devices map[device.ID]*deviceEntry
	closed  bool
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[device.ID]*deviceEntry)}
}

// Add registers a device backend. Registering the same device twice is a
// caller defect and panics.
func (r *Registry) Add(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := b.Device()
	if _, dup := r.devices[id]; dup {
		panic(fmt.Sprintf("array: device %d already registered", id))
	}
	r.devices[id] = &deviceEntry{
		backend:  b,
		selector: kernels.NewSelector(id, b),
		coord:    launch.NewCoordinator(b),
	}
	log.Debug().Int("device", int(id)).Msg("array: device registered")
}

// Close releases every registered device context. The registry must not be
// used afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for id, e := range r.devices {
		e.backend.Close()
		log.Debug().Int("device", int(id)).Msg("array: device closed")
	}
	r.devices = nil
}

func (r *Registry) entry(id device.ID) *deviceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.devices[id]
	if !ok {
		panic(fmt.Sprintf("array: device %d not registered", id))
	}
	return e
}
