package host

import (
	"fmt"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

// kernel is a host-compiled kernel: a Go closure honoring the device
// calling convention. Valid only for the context that resolved it.
type kernel struct {
	ctx  *Context
	name string
	fn   func(geom device.Geometry, args []device.Arg) error
}

func (k *kernel) Name() string { return k.name }

// Resolve implements kernels.Catalog. The host catalog carries every
// element type; transforms are floating-point only, as on real devices.
func (c *Context) Resolve(op kernels.Op, dtype device.DataType, sub kernels.SubOp) (device.Kernel, error) {
	var fn func(device.Geometry, []device.Arg) error
	var err error

	switch dtype {
	case device.Float32:
		fn, err = buildKernel[float32](op, sub)
	case device.Float64:
		fn, err = buildKernel[float64](op, sub)
	case device.Int32:
		fn, err = buildKernel[int32](op, sub)
	case device.Int64:
		fn, err = buildKernel[int64](op, sub)
	case device.Uint8:
		fn, err = buildKernel[uint8](op, sub)
	default:
		return nil, fmt.Errorf("%w: unknown element type %d", device.ErrNoKernel, dtype)
	}
	if err != nil {
		return nil, err
	}

	name := op.String()
	if s := sub.String(); s != "" {
		name += "_" + s
	}
	return &kernel{ctx: c, name: name + "_" + dtype.String(), fn: fn}, nil
}

func buildKernel[T device.Element](op kernels.Op, sub kernels.SubOp) (func(device.Geometry, []device.Arg) error, error) {
	switch op {
	case kernels.Binary, kernels.BinaryOut:
		f, ok := arith[T](sub)
		if !ok {
			return nil, fmt.Errorf("%w: binary sub-op %q", device.ErrNoKernel, sub)
		}
		return binaryKernel[T](f), nil
	case kernels.Scale:
		return scaleKernel[T](), nil
	case kernels.Axpy:
		return axpyKernel[T](), nil
	case kernels.Fill:
		return fillKernel[T](), nil
	case kernels.ReduceSum:
		return reduceKernel[T](false), nil
	case kernels.ReduceSumAbs:
		return reduceKernel[T](true), nil
	case kernels.Transform:
		if !device.TypeOf[T]().IsFloat() {
			return nil, fmt.Errorf("%w: transform on %s", device.ErrNoKernel, device.TypeOf[T]())
		}
		f, ok := transform(sub)
		if !ok {
			return nil, fmt.Errorf("%w: transform %q", device.ErrNoKernel, sub)
		}
		return transformKernel[T](f), nil
	default:
		return nil, fmt.Errorf("%w: unknown operation %d", device.ErrNoKernel, op)
	}
}
