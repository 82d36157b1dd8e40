package wgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 16          // max pooled buffers per size class
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// stagingPool reuses MapRead staging buffers across readbacks to cut
// allocation overhead on the hot download path. Buffers are grouped into
// three size classes.
type stagingPool struct {
	device *wgpu.Device

	mu     sync.Mutex
	small  []*pooledBuffer
	medium []*pooledBuffer
	large  []*pooledBuffer

	hits   uint64
	misses uint64
}

func newStagingPool(device *wgpu.Device) *stagingPool {
	return &stagingPool{device: device}
}

// Acquire returns a MapRead|CopyDst buffer of at least size bytes, reusing
// a pooled one when possible.
func (p *stagingPool) Acquire(size uint64) *wgpu.Buffer {
	p.mu.Lock()
	pool := p.class(size)
	for i, pb := range *pool {
		if pb.size >= size {
			buffer := pb.buffer
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			p.hits++
			p.mu.Unlock()
			return buffer
		}
	}
	p.misses++
	p.mu.Unlock()

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
}

// Put returns an unmapped buffer to the pool, releasing it when the class
// is full.
func (p *stagingPool) Put(buffer *wgpu.Buffer, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.class(size)
	if len(*pool) >= maxPoolSize {
		buffer.Release()
		return
	}
	*pool = append(*pool, &pooledBuffer{buffer: buffer, size: size})
}

// Stats returns pool hit/miss counts and the pooled buffer total.
func (p *stagingPool) Stats() (hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses, len(p.small) + len(p.medium) + len(p.large)
}

// Clear releases every pooled buffer.
func (p *stagingPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pool := range []*[]*pooledBuffer{&p.small, &p.medium, &p.large} {
		for _, pb := range *pool {
			pb.buffer.Release()
		}
		*pool = (*pool)[:0]
	}
}

func (p *stagingPool) class(size uint64) *[]*pooledBuffer {
	if size < smallThreshold {
		return &p.small
	}
	if size < mediumThreshold {
		return &p.medium
	}
	return &p.large
}
