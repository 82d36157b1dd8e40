package host

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

// Slot accessors. Each kernel decodes its fixed argument order through
// these, so a malformed slot list fails loudly instead of misreading.

func slotMem[T device.Element](args []device.Arg, i int) ([]T, error) {
	if i >= len(args) || (args[i].Kind != device.ArgConst && args[i].Kind != device.ArgMut) {
		return nil, fmt.Errorf("slot %d is not an array reference", i)
	}
	m, ok := args[i].Mem.(*memory)
	if !ok {
		return nil, fmt.Errorf("slot %d holds foreign memory %T", i, args[i].Mem)
	}
	if len(m.bytes) == 0 {
		return nil, nil
	}
	var zero T
	return unsafe.Slice((*T)(unsafe.Pointer(&m.bytes[0])), len(m.bytes)/int(unsafe.Sizeof(zero))), nil
}

func slotValue(args []device.Arg, i int) (float64, error) {
	if i >= len(args) || args[i].Kind != device.ArgValue {
		return 0, fmt.Errorf("slot %d is not a scalar value", i)
	}
	return args[i].Value, nil
}

func slotCount(args []device.Arg, i int) (int, error) {
	if i >= len(args) || args[i].Kind != device.ArgCount {
		return 0, fmt.Errorf("slot %d is not a count", i)
	}
	return int(args[i].Count), nil
}

// checkBounds verifies the geometry covers every element and the views are
// large enough. A violation is an execution fault, as on a real device.
func checkBounds[T device.Element](geom device.Geometry, n int, views ...[]T) error {
	if geom.Lanes() < n {
		return fmt.Errorf("geometry %dx%d covers %d lanes for %d elements", geom.Groups, geom.GroupSize, geom.Lanes(), n)
	}
	for i, v := range views {
		if len(v) < n {
			return fmt.Errorf("array argument %d holds %d elements, need %d", i, len(v), n)
		}
	}
	return nil
}

// arith returns the elementwise binary function for a sub-op.
func arith[T device.Element](sub kernels.SubOp) (func(T, T) T, bool) {
	switch sub {
	case kernels.SubAdd:
		return func(x, y T) T { return x + y }, true
	case kernels.SubSub:
		return func(x, y T) T { return x - y }, true
	case kernels.SubMul:
		return func(x, y T) T { return x * y }, true
	case kernels.SubDiv:
		return func(x, y T) T { return x / y }, true
	default:
		return nil, false
	}
}

// transform returns the named unary function over float64.
func transform(sub kernels.SubOp) (func(float64) float64, bool) {
	switch sub {
	case kernels.SubExp:
		return math.Exp, true
	case kernels.SubLog:
		return math.Log, true
	case kernels.SubSqrt:
		return math.Sqrt, true
	case kernels.SubNeg:
		return func(v float64) float64 { return -v }, true
	case kernels.SubAbs:
		return math.Abs, true
	case kernels.SubTanh:
		return math.Tanh, true
	default:
		return nil, false
	}
}

// binaryKernel serves both the in-place and two-source conventions: slots
// are x, y, dst, count, with dst aliasing x for the in-place form. Output
// at an index depends only on that index's inputs, so aliasing is safe.
func binaryKernel[T device.Element](f func(T, T) T) func(device.Geometry, []device.Arg) error {
	return func(geom device.Geometry, args []device.Arg) error {
		x, err := slotMem[T](args, 0)
		if err != nil {
			return err
		}
		y, err := slotMem[T](args, 1)
		if err != nil {
			return err
		}
		dst, err := slotMem[T](args, 2)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 3)
		if err != nil {
			return err
		}
		if err := checkBounds(geom, n, x, y, dst); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = f(x[i], y[i])
		}
		return nil
	}
}

// scaleKernel: slots are alpha, src, dst, count (src aliases dst).
func scaleKernel[T device.Element]() func(device.Geometry, []device.Arg) error {
	return func(geom device.Geometry, args []device.Arg) error {
		alpha, err := slotValue(args, 0)
		if err != nil {
			return err
		}
		src, err := slotMem[T](args, 1)
		if err != nil {
			return err
		}
		dst, err := slotMem[T](args, 2)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 3)
		if err != nil {
			return err
		}
		if err := checkBounds(geom, n, src, dst); err != nil {
			return err
		}
		a := T(alpha)
		for i := 0; i < n; i++ {
			dst[i] = src[i] * a
		}
		return nil
	}
}

// axpyKernel: slots are alpha, x, src, dst, count (src aliases dst).
// Read-before-write per element keeps the aliased accumulate correct.
func axpyKernel[T device.Element]() func(device.Geometry, []device.Arg) error {
	return func(geom device.Geometry, args []device.Arg) error {
		alpha, err := slotValue(args, 0)
		if err != nil {
			return err
		}
		x, err := slotMem[T](args, 1)
		if err != nil {
			return err
		}
		src, err := slotMem[T](args, 2)
		if err != nil {
			return err
		}
		dst, err := slotMem[T](args, 3)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 4)
		if err != nil {
			return err
		}
		if err := checkBounds(geom, n, x, src, dst); err != nil {
			return err
		}
		a := T(alpha)
		for i := 0; i < n; i++ {
			dst[i] = src[i] + a*x[i]
		}
		return nil
	}
}

// fillKernel: slots are dst, value, count.
func fillKernel[T device.Element]() func(device.Geometry, []device.Arg) error {
	return func(geom device.Geometry, args []device.Arg) error {
		dst, err := slotMem[T](args, 0)
		if err != nil {
			return err
		}
		v, err := slotValue(args, 1)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 2)
		if err != nil {
			return err
		}
		if err := checkBounds(geom, n, dst); err != nil {
			return err
		}
		el := T(v)
		for i := 0; i < n; i++ {
			dst[i] = el
		}
		return nil
	}
}

// reduceKernel: slots are src, count, result. Runs as a single serial lane
// that walks the whole array, so the lane budget is not checked against n.
func reduceKernel[T device.Element](absolute bool) func(device.Geometry, []device.Arg) error {
	return func(_ device.Geometry, args []device.Arg) error {
		src, err := slotMem[T](args, 0)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 1)
		if err != nil {
			return err
		}
		out, err := slotMem[T](args, 2)
		if err != nil {
			return err
		}
		if len(src) < n {
			return fmt.Errorf("array argument holds %d elements, need %d", len(src), n)
		}
		if len(out) < 1 {
			return fmt.Errorf("result scalar is empty")
		}
		var acc T
		for i := 0; i < n; i++ {
			v := src[i]
			if absolute && v < 0 {
				v = -v
			}
			acc += v
		}
		out[0] = acc
		return nil
	}
}

// transformKernel: slots are src, dst, count (src may alias dst).
func transformKernel[T device.Element](f func(float64) float64) func(device.Geometry, []device.Arg) error {
	return func(geom device.Geometry, args []device.Arg) error {
		src, err := slotMem[T](args, 0)
		if err != nil {
			return err
		}
		dst, err := slotMem[T](args, 1)
		if err != nil {
			return err
		}
		n, err := slotCount(args, 2)
		if err != nil {
			return err
		}
		if err := checkBounds(geom, n, src, dst); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = T(f(float64(src[i])))
		}
		return nil
	}
}
