// Package host implements the surge driver contract in host memory. It is
// a deterministic, serial stand-in for an accelerator: the same kernel
// catalog, calling convention, and synchronization contract, backed by Go
// slices. Tests run against it; callers can also use it as a no-GPU
// fallback.
package host

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/surge-ml/surge/internal/device"
)

// Context is a host-memory execution context. It implements both
// device.Context and kernels.Catalog.
type Context struct {
	dev device.ID

	// Guards memory mutation: Launch executes kernels synchronously, so a
	// single lock is enough to serialize concurrent invocations the way an
	// accelerator queue would.
	mu sync.Mutex
}

// New creates a host context with the given device identifier.
func New(dev device.ID) *Context {
	log.Debug().Int("device", int(dev)).Msg("host: context created")
	return &Context{dev: dev}
}

// Device returns the device identifier.
func (c *Context) Device() device.ID { return c.dev }

// memory is a host allocation behind the device.Memory handle.
type memory struct {
	bytes []byte
}

func (m *memory) Size() int { return len(m.bytes) }

func (m *memory) Release() { m.bytes = nil }

// Alloc reserves size bytes of zeroed host memory.
func (c *Context) Alloc(size int) (device.Memory, error) {
	if size < 0 {
		return nil, fmt.Errorf("host: negative allocation size %d", size)
	}
	return &memory{bytes: make([]byte, size)}, nil
}

// Upload copies host bytes into the allocation.
func (c *Context) Upload(dst device.Memory, src []byte) error {
	m, err := c.own(dst)
	if err != nil {
		return err
	}
	if len(src) > len(m.bytes) {
		return fmt.Errorf("host: upload of %d bytes exceeds allocation of %d", len(src), len(m.bytes))
	}
	c.mu.Lock()
	copy(m.bytes, src)
	c.mu.Unlock()
	return nil
}

// Download copies the allocation's leading bytes into dst.
func (c *Context) Download(dst []byte, src device.Memory) error {
	m, err := c.own(src)
	if err != nil {
		return err
	}
	if len(dst) > len(m.bytes) {
		return fmt.Errorf("host: download of %d bytes exceeds allocation of %d", len(dst), len(m.bytes))
	}
	c.mu.Lock()
	copy(dst, m.bytes)
	c.mu.Unlock()
	return nil
}

// Memset32 sets words consecutive 32-bit words to pattern.
func (c *Context) Memset32(dst device.Memory, pattern uint32, words int) error {
	m, err := c.own(dst)
	if err != nil {
		return err
	}
	if words*4 > len(m.bytes) {
		return fmt.Errorf("host: memset of %d words exceeds allocation of %d bytes", words, len(m.bytes))
	}
	c.mu.Lock()
	for i := 0; i < words; i++ {
		binary.LittleEndian.PutUint32(m.bytes[i*4:], pattern)
	}
	c.mu.Unlock()
	return nil
}

// Launch executes the kernel immediately and serially. Execution honors the
// requested geometry: a lane budget smaller than the element count is an
// execution fault, matching a device that left elements unprocessed.
func (c *Context) Launch(k device.Kernel, geom device.Geometry, args []device.Arg) error {
	hk, ok := k.(*kernel)
	if !ok || hk.ctx != c {
		return fmt.Errorf("host: kernel %s does not belong to this context", k.Name())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := hk.fn(geom, args); err != nil {
		return fmt.Errorf("host: %s: %w", hk.name, err)
	}
	return nil
}

// Synchronize is trivially complete: Launch runs kernels to completion.
func (c *Context) Synchronize() error { return nil }

// Close releases the context.
func (c *Context) Close() {
	log.Debug().Int("device", int(c.dev)).Msg("host: context closed")
}

func (c *Context) own(m device.Memory) (*memory, error) {
	hm, ok := m.(*memory)
	if !ok {
		return nil, fmt.Errorf("host: foreign memory handle %T", m)
	}
	return hm, nil
}
