// Copyright 2025 The Surge Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array is the public API for surge device arrays.
//
// An Array is a fixed-length, element-typed buffer resident on one
// accelerator device. Operations are synchronous: once a call returns, the
// destination array holds the completed result and may be read or handed
// to the next operation.
//
// Example:
//
//	reg := array.NewRegistry()
//	reg.Add(host.New(0))
//	defer reg.Close()
//
//	a, _ := array.FromSlice(reg, 0, []float32{1, 2, 3})
//	b, _ := array.FromSlice(reg, 0, []float32{4, 5, 6})
//	a.Add(b)          // a = [5, 7, 9]
//	sum := a.Sum()    // 21
package array

import (
	"github.com/surge-ml/surge/internal/array"
	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

// Array is a handle to device-resident numeric storage.
type Array = array.Array

// Registry owns per-device kernel selectors and launch coordinators, with
// an explicit lifecycle: construct, Add device backends, Close.
type Registry = array.Registry

// Backend is the driver contract a device implementation provides.
type Backend = array.Backend

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry { return array.NewRegistry() }

// Element is the constraint for supported array element types.
type Element = device.Element

// DataType tags an array's element type.
type DataType = device.DataType

// Element type tags.
const (
	Float32 DataType = device.Float32
	Float64 DataType = device.Float64
	Int32   DataType = device.Int32
	Int64   DataType = device.Int64
	Uint8   DataType = device.Uint8
)

// ID identifies one accelerator device.
type ID = device.ID

// Transform names a unary elementwise function for Array.Apply.
type Transform = kernels.SubOp

// Named transforms (floating-point element types only).
const (
	Exp  Transform = kernels.SubExp
	Log  Transform = kernels.SubLog
	Sqrt Transform = kernels.SubSqrt
	Neg  Transform = kernels.SubNeg
	Abs  Transform = kernels.SubAbs
	Tanh Transform = kernels.SubTanh
)

// New creates a zero-initialized array of length elements on a device.
func New(r *Registry, dev ID, dtype DataType, length int) (*Array, error) {
	return array.New(r, dev, dtype, length)
}

// FromSlice creates an array holding a copy of data.
func FromSlice[T Element](r *Registry, dev ID, data []T) (*Array, error) {
	return array.FromSlice(r, dev, data)
}

// ToSlice copies an array's contents back to host memory.
func ToSlice[T Element](a *Array) []T {
	return array.ToSlice[T](a)
}
