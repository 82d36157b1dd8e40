package wgpu

import (
	"fmt"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

// kernel is a WGSL kernel handle. The concrete pipeline variant is selected
// and cached at launch time, because WebGPU forbids aliased writable
// bindings: an in-place call binds the aliased array once, so the compiled
// binding layout depends on the call's alias pattern.
type kernel struct {
	ctx    *Context
	name   string
	op     kernels.Op
	sub    kernels.SubOp
	dtype  device.DataType
	elem   string // WGSL element type
	serial bool   // reduction kernels run one lane over the whole array
}

func (k *kernel) Name() string { return k.name }

// elemType maps a DataType to its WGSL storage type. WGSL has no 64-bit or
// 8-bit numeric storage, so Float64, Int64 and Uint8 are not resolvable on
// this driver.
func elemType(dt device.DataType) (string, bool) {
	switch dt {
	case device.Float32:
		return "f32", true
	case device.Int32:
		return "i32", true
	default:
		return "", false
	}
}

// Resolve implements kernels.Catalog over the WGSL kernel set.
func (c *Context) Resolve(op kernels.Op, dtype device.DataType, sub kernels.SubOp) (device.Kernel, error) {
	elem, ok := elemType(dtype)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no WGSL storage type", device.ErrNoKernel, dtype)
	}

	switch op {
	case kernels.Binary, kernels.BinaryOut:
		if _, ok := binarySym(sub); !ok {
			return nil, fmt.Errorf("%w: binary sub-op %q", device.ErrNoKernel, sub)
		}
	case kernels.Transform:
		if !dtype.IsFloat() {
			return nil, fmt.Errorf("%w: transform on %s", device.ErrNoKernel, dtype)
		}
		if _, ok := transformFn(sub); !ok {
			return nil, fmt.Errorf("%w: transform %q", device.ErrNoKernel, sub)
		}
	case kernels.Scale, kernels.Axpy, kernels.Fill, kernels.ReduceSum, kernels.ReduceSumAbs:
		// No sub-op.
	default:
		return nil, fmt.Errorf("%w: unknown operation %d", device.ErrNoKernel, op)
	}

	name := op.String()
	if s := sub.String(); s != "" {
		name += "_" + s
	}
	return &kernel{
		ctx:    c,
		name:   name + "_" + elem,
		op:     op,
		sub:    sub,
		dtype:  dtype,
		elem:   elem,
		serial: op == kernels.ReduceSum || op == kernels.ReduceSumAbs,
	}, nil
}

// binarySym maps a binary sub-op to its WGSL operator.
func binarySym(sub kernels.SubOp) (string, bool) {
	switch sub {
	case kernels.SubAdd:
		return "+", true
	case kernels.SubSub:
		return "-", true
	case kernels.SubMul:
		return "*", true
	case kernels.SubDiv:
		return "/", true
	default:
		return "", false
	}
}

// transformFn maps a transform sub-op to a WGSL expression template with %s
// standing for the input.
func transformFn(sub kernels.SubOp) (string, bool) {
	switch sub {
	case kernels.SubExp:
		return "exp(%s)", true
	case kernels.SubLog:
		return "log(%s)", true
	case kernels.SubSqrt:
		return "sqrt(%s)", true
	case kernels.SubNeg:
		return "-(%s)", true
	case kernels.SubAbs:
		return "abs(%s)", true
	case kernels.SubTanh:
		return "tanh(%s)", true
	default:
		return "", false
	}
}
