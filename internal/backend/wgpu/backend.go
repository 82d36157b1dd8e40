// Package wgpu implements the surge driver contract on WebGPU, using
// go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO bindings. One
// Context drives one adapter's default queue; kernels are WGSL compute
// pipelines cached per variant.
package wgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/rs/zerolog/log"

	"github.com/surge-ml/surge/internal/device"
)

// workgroupSize is the compiled workgroup width for elementwise kernels.
// Logical launch geometry is mapped onto it at dispatch time; serial
// reduction kernels compile with a width of 1.
const workgroupSize = 256

// Context is a WebGPU-backed execution context implementing device.Context
// and kernels.Catalog.
type Context struct {
	id device.ID

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	dev      *wgpu.Device
	queue    *wgpu.Queue

	adapterInfo *wgpu.AdapterInfoGo

	// Shader and pipeline caches, keyed by kernel variant name.
	mu        sync.RWMutex
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	// Staging buffer pool for readbacks.
	staging *stagingPool

	// 4-byte fence buffer: a blocking readback of it drains the queue.
	fence *wgpu.Buffer
}

// New creates a WebGPU context with the given device identifier.
// Returns an error if WebGPU is not available or initialization fails.
func New(id device.ID) (ctx *Context, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("wgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("wgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("wgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo, _ := adapter.GetInfo()

	dev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpu: failed to request device: %w", deviceErr)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpu: failed to get queue")
	}

	fence := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  4,
	})

	c := &Context{
		id:          id,
		instance:    instance,
		adapter:     adapter,
		dev:         dev,
		queue:       queue,
		adapterInfo: adapterInfo,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		staging:     newStagingPool(dev),
		fence:       fence,
	}
	log.Debug().Int("device", int(id)).Str("adapter", adapterInfo.Device).Msg("wgpu: context created")
	return c, nil
}

// Device returns the device identifier.
func (c *Context) Device() device.ID { return c.id }

// Name describes the adapter behind this context.
func (c *Context) Name() string {
	if c.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", c.adapterInfo.Device, c.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter.
func (c *Context) AdapterInfo() *wgpu.AdapterInfoGo {
	return c.adapterInfo
}

// Synchronize blocks until the device's outstanding work has completed.
// A blocking readback of the fence buffer drains the queue, the same way
// result readbacks do.
func (c *Context) Synchronize() error {
	_, err := c.readBuffer(c.fence, 4)
	if err != nil {
		return fmt.Errorf("wgpu: synchronize: %w", err)
	}
	return nil
}

// Close releases all WebGPU resources owned by the context.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staging != nil {
		c.staging.Clear()
		c.staging = nil
	}
	for _, p := range c.pipelines {
		p.Release()
	}
	c.pipelines = nil
	for _, s := range c.shaders {
		s.Release()
	}
	c.shaders = nil

	if c.fence != nil {
		c.fence.Release()
		c.fence = nil
	}
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.dev != nil {
		c.dev.Release()
		c.dev = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
	log.Debug().Int("device", int(c.id)).Msg("wgpu: context closed")
}

// compileShader returns the cached shader module for a variant, compiling
// it on first use.
func (c *Context) compileShader(name, code string) *wgpu.ShaderModule {
	c.mu.RLock()
	if shader, exists := c.shaders[name]; exists {
		c.mu.RUnlock()
		return shader
	}
	c.mu.RUnlock()

	shader := c.dev.CreateShaderModuleWGSL(code)

	c.mu.Lock()
	c.shaders[name] = shader
	c.mu.Unlock()

	return shader
}

// pipeline returns the cached compute pipeline for a variant, creating it
// on first use. Concurrent first-time creation is harmless: the second
// writer wins and both pipelines are valid.
func (c *Context) pipeline(name, code string) *wgpu.ComputePipeline {
	c.mu.RLock()
	if p, exists := c.pipelines[name]; exists {
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	shader := c.compileShader(name, code)
	p := c.dev.CreateComputePipelineSimple(nil, shader, "main")

	c.mu.Lock()
	c.pipelines[name] = p
	c.mu.Unlock()

	return p
}

// IsAvailable checks whether a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}
