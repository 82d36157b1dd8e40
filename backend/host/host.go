// Copyright 2025 The Surge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package host provides the host-memory driver: a deterministic, serial
// stand-in for an accelerator that supports every element type. Useful for
// tests and as a fallback when no GPU is present.
package host

import (
	internalhost "github.com/surge-ml/surge/internal/backend/host"
	"github.com/surge-ml/surge/internal/device"
)

// Context is the host-memory execution context and kernel catalog.
type Context = internalhost.Context

// New creates a host context with the given device identifier.
func New(dev device.ID) *Context {
	return internalhost.New(dev)
}
