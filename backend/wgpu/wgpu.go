// Copyright 2025 The Surge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package wgpu provides the WebGPU driver for surge device arrays, built
// on go-webgpu's zero-CGO bindings. It works wherever wgpu_native does:
// Windows (D3D12), macOS (Metal), Linux (Vulkan).
//
// Example:
//
//	ctx, err := wgpu.New(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg := array.NewRegistry()
//	reg.Add(ctx)
//	defer reg.Close()
package wgpu

import (
	internalwgpu "github.com/surge-ml/surge/internal/backend/wgpu"
	"github.com/surge-ml/surge/internal/device"
)

// Context is the WebGPU execution context and WGSL kernel catalog.
type Context = internalwgpu.Context

// New creates a WebGPU context with the given device identifier. Returns
// an error if WebGPU is unavailable or initialization fails.
func New(dev device.ID) (*Context, error) {
	return internalwgpu.New(dev)
}

// IsAvailable checks whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwgpu.IsAvailable()
}
