// Package kernels maps logical numeric operations to compiled kernel handles.
// A Selector owns a per-device cache keyed by (operation, element type,
// sub-operation) so repeated lookups avoid re-resolution cost.
package kernels

import "github.com/surge-ml/surge/internal/device"

// Op tags the logical operation a kernel implements.
type Op int

const (
	// Binary is an in-place elementwise binary op: self = self OP other.
	Binary Op = iota
	// BinaryOut is an out-of-place elementwise binary op: dst = x OP y.
	BinaryOut
	// Scale multiplies every element by a scalar: self *= alpha.
	Scale
	// Axpy accumulates a scaled source: self += alpha * other.
	Axpy
	// Fill sets every element to a scalar value.
	Fill
	// ReduceSum collapses an array to the sum of its elements.
	ReduceSum
	// ReduceSumAbs collapses an array to the sum of absolute values.
	ReduceSumAbs
	// Transform applies a named unary function elementwise: self = F(source).
	Transform
)

func (op Op) String() string {
	switch op {
	case Binary:
		return "binary"
	case BinaryOut:
		return "binary_out"
	case Scale:
		return "scale"
	case Axpy:
		return "axpy"
	case Fill:
		return "fill"
	case ReduceSum:
		return "sum"
	case ReduceSumAbs:
		return "sumabs"
	case Transform:
		return "transform"
	default:
		return "unknown"
	}
}

// SubOp selects the concrete arithmetic for Binary/BinaryOut and Transform
// operations. SubNone is used for everything else.
type SubOp int

const (
	SubNone SubOp = iota

	// Binary arithmetic.
	SubAdd
	SubSub
	SubMul
	SubDiv

	// Named unary transforms (floating-point element types only).
	SubExp
	SubLog
	SubSqrt
	SubNeg
	SubAbs
	SubTanh
)

func (s SubOp) String() string {
	switch s {
	case SubNone:
		return ""
	case SubAdd:
		return "add"
	case SubSub:
		return "sub"
	case SubMul:
		return "mul"
	case SubDiv:
		return "div"
	case SubExp:
		return "exp"
	case SubLog:
		return "log"
	case SubSqrt:
		return "sqrt"
	case SubNeg:
		return "neg"
	case SubAbs:
		return "abs"
	case SubTanh:
		return "tanh"
	default:
		return "unknown"
	}
}

// IsTransform reports whether the sub-op belongs to the unary transform set.
func (s SubOp) IsTransform() bool {
	return s >= SubExp && s <= SubTanh
}

// Catalog is the precompiled per-device kernel table a Selector resolves
// from. Resolve returns device.ErrNoKernel (possibly wrapped) when no kernel
// exists for the combination.
type Catalog interface {
	Resolve(op Op, dtype device.DataType, sub SubOp) (device.Kernel, error)
}
