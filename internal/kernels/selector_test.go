package kernels

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-ml/surge/internal/device"
)

type namedKernel struct{ name string }

func (k namedKernel) Name() string { return k.name }

// countingCatalog tracks how many times each triple is resolved.
type countingCatalog struct {
	resolves atomic.Int64
}

func (c *countingCatalog) Resolve(op Op, dtype device.DataType, sub SubOp) (device.Kernel, error) {
	c.resolves.Add(1)
	if dtype == device.Float64 {
		return nil, device.ErrNoKernel
	}
	return namedKernel{name: fmt.Sprintf("%s_%s_%s", op, sub, dtype)}, nil
}

func TestLookupResolvesOnce(t *testing.T) {
	cat := &countingCatalog{}
	s := NewSelector(0, cat)

	k1, err := s.Lookup(Binary, device.Float32, SubAdd)
	require.NoError(t, err)
	k2, err := s.Lookup(Binary, device.Float32, SubAdd)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Equal(t, int64(1), cat.resolves.Load(), "second lookup must be served from cache")
}

func TestLookupDistinctTriples(t *testing.T) {
	cat := &countingCatalog{}
	s := NewSelector(0, cat)

	ka, err := s.Lookup(Binary, device.Float32, SubAdd)
	require.NoError(t, err)
	km, err := s.Lookup(Binary, device.Float32, SubMul)
	require.NoError(t, err)
	ki, err := s.Lookup(Binary, device.Int32, SubAdd)
	require.NoError(t, err)

	assert.NotEqual(t, ka.Name(), km.Name())
	assert.NotEqual(t, ka.Name(), ki.Name())
	assert.Equal(t, int64(3), cat.resolves.Load())
}

func TestLookupNoKernel(t *testing.T) {
	cat := &countingCatalog{}
	s := NewSelector(3, cat)

	_, err := s.Lookup(Transform, device.Float64, SubExp)
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrNoKernel)
	assert.Contains(t, err.Error(), "device 3")

	// Failed resolutions are not cached; a later lookup tries again.
	_, err = s.Lookup(Transform, device.Float64, SubExp)
	require.Error(t, err)
	assert.Equal(t, int64(2), cat.resolves.Load())
}

func TestLookupConcurrent(t *testing.T) {
	cat := &countingCatalog{}
	s := NewSelector(0, cat)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k, err := s.Lookup(Binary, device.Float32, SubAdd)
				assert.NoError(t, err)
				assert.Equal(t, "binary_add_float32", k.Name())
			}
		}()
	}
	wg.Wait()
}
