package kernels

import (
	"fmt"
	"sync"

	"github.com/surge-ml/surge/internal/device"
)

type cacheKey struct {
	op    Op
	dtype device.DataType
	sub   SubOp
}

// Selector resolves (operation, element type, sub-operation) triples to
// compiled kernel handles for one device, caching results so repeated
// lookups skip the catalog.
type Selector struct {
	dev     device.ID
	catalog Catalog

	mu    sync.RWMutex
	cache map[cacheKey]device.Kernel
}

// NewSelector creates a selector for the given device backed by catalog.
func NewSelector(dev device.ID, catalog Catalog) *Selector {
	return &Selector{
		dev:     dev,
		catalog: catalog,
		cache:   make(map[cacheKey]device.Kernel),
	}
}

// Device returns the device this selector serves.
func (s *Selector) Device() device.ID { return s.dev }

// Lookup returns the kernel handle for the triple, resolving and caching it
// on first use. Concurrent first-time lookups may both resolve; the second
// writer wins, which is harmless because handles for the same key are
// interchangeable.
func (s *Selector) Lookup(op Op, dtype device.DataType, sub SubOp) (device.Kernel, error) {
	key := cacheKey{op: op, dtype: dtype, sub: sub}

	s.mu.RLock()
	if k, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		selectorHits.Inc()
		return k, nil
	}
	s.mu.RUnlock()

	selectorMisses.Inc()
	k, err := s.catalog.Resolve(op, dtype, sub)
	if err != nil {
		return nil, fmt.Errorf("kernels: device %d: %s/%s %s: %w", s.dev, op, sub, dtype, err)
	}

	s.mu.Lock()
	s.cache[key] = k
	s.mu.Unlock()

	return k, nil
}
