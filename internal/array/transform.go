package array

import (
	"fmt"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
	"github.com/surge-ml/surge/internal/launch"
)

// Apply replaces every element with f of itself: a[i] = f(a[i]).
func (a *Array) Apply(f kernels.SubOp) { a.ApplyFrom(a, f) }

// ApplyFrom stores a transformed source: a[i] = f(src[i]). The destination
// may coincide with the source. Transforms are defined for floating-point
// element types; requesting one for an integer array is a configuration
// error.
func (a *Array) ApplyFrom(src *Array, f kernels.SubOp) {
	if !f.IsTransform() {
		panic(fmt.Sprintf("array: apply: %q is not a transform", f))
	}
	a.require(src, "apply")
	if a.length == 0 {
		return
	}
	k := a.lookup(kernels.Transform, f)
	args := []device.Arg{
		device.Const(src.mem),
		device.Mut(a.mem),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.DefaultCeiling)
}
