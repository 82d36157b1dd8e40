package array

import (
	"fmt"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
	"github.com/surge-ml/surge/internal/launch"
)

// lookup resolves a kernel handle for this array's element type. A
// resolution failure is a static configuration error and therefore fatal.
func (a *Array) lookup(op kernels.Op, sub kernels.SubOp) device.Kernel {
	k, err := a.entry.selector.Lookup(op, a.dtype, sub)
	if err != nil {
		panic(fmt.Sprintf("array: %v", err))
	}
	return k
}

// invoke runs the kernel through the coordinator and treats an execution
// fault as fatal: a faulted context must not be retried or masked.
func (a *Array) invoke(k device.Kernel, count int, args []device.Arg, ceiling int) {
	if err := a.entry.coord.Invoke(k, count, args, ceiling); err != nil {
		panic(fmt.Sprintf("array: %v", err))
	}
}

// Axpy accumulates a scaled source in place: a[i] += alpha * x[i].
// The array reads its own prior value per element, so aliasing a and x is
// safe.
func (a *Array) Axpy(alpha float64, x *Array) {
	a.require(x, "axpy")
	if a.length == 0 {
		return
	}
	k := a.lookup(kernels.Axpy, kernels.SubNone)
	args := []device.Arg{
		device.Value(alpha),
		device.Const(x.mem),
		device.Const(a.mem),
		device.Mut(a.mem),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.AxpyCeiling)
}

// Scale multiplies every element in place: a[i] *= alpha.
func (a *Array) Scale(alpha float64) {
	if a.length == 0 {
		return
	}
	k := a.lookup(kernels.Scale, kernels.SubNone)
	args := []device.Arg{
		device.Value(alpha),
		device.Const(a.mem),
		device.Mut(a.mem),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.DefaultCeiling)
}

// Add performs in-place elementwise addition: a[i] = a[i] + other[i].
func (a *Array) Add(other *Array) { a.binary(other, kernels.SubAdd, "add") }

// Sub performs in-place elementwise subtraction: a[i] = a[i] - other[i].
func (a *Array) Sub(other *Array) { a.binary(other, kernels.SubSub, "sub") }

// Mul performs in-place elementwise multiplication: a[i] = a[i] * other[i].
func (a *Array) Mul(other *Array) { a.binary(other, kernels.SubMul, "mul") }

// Div performs in-place elementwise division: a[i] = a[i] / other[i].
func (a *Array) Div(other *Array) { a.binary(other, kernels.SubDiv, "div") }

func (a *Array) binary(other *Array, sub kernels.SubOp, opName string) {
	a.require(other, opName)
	if a.length == 0 {
		return
	}
	k := a.lookup(kernels.Binary, sub)
	args := []device.Arg{
		device.Const(a.mem),
		device.Const(other.mem),
		device.Mut(a.mem),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.DefaultCeiling)
}

// AddOf stores an elementwise sum of two sources: a[i] = x[i] + y[i].
// The destination may coincide with either source.
func (a *Array) AddOf(x, y *Array) { a.binaryOut(x, y, kernels.SubAdd, "addof") }

// SubOf stores an elementwise difference: a[i] = x[i] - y[i].
func (a *Array) SubOf(x, y *Array) { a.binaryOut(x, y, kernels.SubSub, "subof") }

// MulOf stores an elementwise product: a[i] = x[i] * y[i].
func (a *Array) MulOf(x, y *Array) { a.binaryOut(x, y, kernels.SubMul, "mulof") }

// DivOf stores an elementwise quotient: a[i] = x[i] / y[i].
func (a *Array) DivOf(x, y *Array) { a.binaryOut(x, y, kernels.SubDiv, "divof") }

func (a *Array) binaryOut(x, y *Array, sub kernels.SubOp, opName string) {
	a.require(x, opName)
	a.require(y, opName)
	if a.length == 0 {
		return
	}
	k := a.lookup(kernels.BinaryOut, sub)
	args := []device.Arg{
		device.Const(x.mem),
		device.Const(y.mem),
		device.Mut(a.mem),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.DefaultCeiling)
}
