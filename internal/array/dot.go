package array

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/surge-ml/surge/internal/device"
)

// Dot returns the dot product of a and other, computed by the registered
// BLAS implementation with stride-1 access.
//
// Unlike every other binary operation, Dot does not require equal lengths:
// it truncates to min(a.Len(), other.Len()), matching the n-prefix
// convention of BLAS sdot/ddot. Defined for floating-point element types.
func (a *Array) Dot(other *Array) float64 {
	if other.dev != a.dev {
		panic(fmt.Sprintf("array: dot: device mismatch: %d vs %d", a.dev, other.dev))
	}
	if other.dtype != a.dtype {
		panic(fmt.Sprintf("array: dot: element type mismatch: %s vs %s", a.dtype, other.dtype))
	}
	if !a.dtype.IsFloat() {
		panic(fmt.Sprintf("array: dot: %s is not a floating-point element type", a.dtype))
	}

	n := a.length
	if other.length < n {
		n = other.length
	}
	if n == 0 {
		return 0
	}

	switch a.dtype {
	case device.Float32:
		x := blas32.Vector{N: n, Inc: 1, Data: hostPrefix[float32](a, n)}
		y := blas32.Vector{N: n, Inc: 1, Data: hostPrefix[float32](other, n)}
		return float64(blas32.Dot(x, y))
	default:
		x := blas64.Vector{N: n, Inc: 1, Data: hostPrefix[float64](a, n)}
		y := blas64.Vector{N: n, Inc: 1, Data: hostPrefix[float64](other, n)}
		return blas64.Dot(x, y)
	}
}

// hostPrefix downloads the first n elements of a to host memory.
func hostPrefix[T device.Element](a *Array, n int) []T {
	out := make([]T, n)
	if err := a.entry.backend.Download(sliceBytes(out), a.mem); err != nil {
		panic(fmt.Sprintf("array: dot: download: %v", err))
	}
	return out
}
