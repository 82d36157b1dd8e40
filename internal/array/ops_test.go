package array

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-ml/surge/internal/backend/host"
	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

func newHostRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Add(host.New(0))
	t.Cleanup(r.Close)
	return r
}

func fromF32(t *testing.T, r *Registry, data []float32) *Array {
	t.Helper()
	a, err := FromSlice(r, 0, data)
	require.NoError(t, err)
	t.Cleanup(a.Release)
	return a
}

func TestElementwiseRoundTrip(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, 2, 3})
	b := fromF32(t, r, []float32{4, 5, 6})

	a.Add(b)
	assert.Equal(t, []float32{5, 7, 9}, ToSlice[float32](a))

	assert.InDelta(t, 21.0, a.Sum(), 1e-6)

	a.Scale(2)
	assert.Equal(t, []float32{10, 14, 18}, ToSlice[float32](a))

	a.Fill(0)
	assert.Equal(t, []float32{0, 0, 0}, ToSlice[float32](a))
}

func TestAddSubInverse(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1.5, -2, 3.25, 0})
	b := fromF32(t, r, []float32{9, 8, -7, 6})

	a.Add(b)
	a.Sub(b)
	assert.Equal(t, []float32{1.5, -2, 3.25, 0}, ToSlice[float32](a))
}

func TestMulDiv(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{2, 6, -8})
	b := fromF32(t, r, []float32{4, 3, 2})

	a.Mul(b)
	assert.Equal(t, []float32{8, 18, -16}, ToSlice[float32](a))

	a.Div(b)
	assert.Equal(t, []float32{2, 6, -8}, ToSlice[float32](a))
}

func TestScaleByOneIsIdentity(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{0.1, 100, -0.5})
	a.Scale(1)
	assert.Equal(t, []float32{0.1, 100, -0.5}, ToSlice[float32](a))
}

func TestAxpy(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, 1, 1})
	x := fromF32(t, r, []float32{10, 20, 30})

	a.Axpy(0.5, x)
	assert.Equal(t, []float32{6, 11, 16}, ToSlice[float32](a))
}

func TestAxpyZeroAlpha(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, 2, 3})
	x := fromF32(t, r, []float32{100, 200, 300})

	a.Axpy(0, x)
	assert.Equal(t, []float32{1, 2, 3}, ToSlice[float32](a))
}

func TestAxpySelf(t *testing.T) {
	r := newHostRegistry(t)

	// a += 2*a doubles every read through a stale snapshot per index;
	// elementwise independence makes self-aliasing well defined.
	a := fromF32(t, r, []float32{1, 2, 3})
	a.Axpy(2, a)
	assert.Equal(t, []float32{3, 6, 9}, ToSlice[float32](a))
}

func TestOutOfPlaceVariants(t *testing.T) {
	r := newHostRegistry(t)

	x := fromF32(t, r, []float32{8, 6, 4})
	y := fromF32(t, r, []float32{2, 3, 4})
	dst := fromF32(t, r, []float32{0, 0, 0})

	dst.AddOf(x, y)
	assert.Equal(t, []float32{10, 9, 8}, ToSlice[float32](dst))

	dst.SubOf(x, y)
	assert.Equal(t, []float32{6, 3, 0}, ToSlice[float32](dst))

	dst.MulOf(x, y)
	assert.Equal(t, []float32{16, 18, 16}, ToSlice[float32](dst))

	dst.DivOf(x, y)
	assert.Equal(t, []float32{4, 2, 1}, ToSlice[float32](dst))

	// Destination aliasing a source is allowed.
	x.AddOf(x, y)
	assert.Equal(t, []float32{10, 9, 8}, ToSlice[float32](x))
}

func TestFillPerType(t *testing.T) {
	r := newHostRegistry(t)

	t.Run("float32 fast path", func(t *testing.T) {
		a := fromF32(t, r, make([]float32, 5))
		a.Fill(3.5)
		assert.Equal(t, []float32{3.5, 3.5, 3.5, 3.5, 3.5}, ToSlice[float32](a))
	})

	t.Run("int32 fast path", func(t *testing.T) {
		a, err := FromSlice(r, 0, make([]int32, 4))
		require.NoError(t, err)
		defer a.Release()
		a.Fill(-7)
		assert.Equal(t, []int32{-7, -7, -7, -7}, ToSlice[int32](a))
	})

	t.Run("float64 kernel path", func(t *testing.T) {
		a, err := FromSlice(r, 0, make([]float64, 3))
		require.NoError(t, err)
		defer a.Release()
		a.Fill(2.25)
		assert.Equal(t, []float64{2.25, 2.25, 2.25}, ToSlice[float64](a))
	})

	t.Run("uint8 kernel path", func(t *testing.T) {
		a, err := FromSlice(r, 0, make([]uint8, 6))
		require.NoError(t, err)
		defer a.Release()
		a.Fill(255)
		assert.Equal(t, []uint8{255, 255, 255, 255, 255, 255}, ToSlice[uint8](a))
	})
}

func TestReductions(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, -2, 3, -4})
	assert.InDelta(t, -2.0, a.Sum(), 1e-6)
	assert.InDelta(t, 10.0, a.SumAbs(), 1e-6)

	i, err := FromSlice(r, 0, []int64{1 << 32, 1, -3})
	require.NoError(t, err)
	defer i.Release()
	assert.InDelta(t, float64(1<<32)-2, i.Sum(), 0)
}

func TestTransforms(t *testing.T) {
	r := newHostRegistry(t)

	tests := []struct {
		sub  kernels.SubOp
		in   []float32
		want []float32
	}{
		{kernels.SubExp, []float32{0, 1}, []float32{1, float32(math.E)}},
		{kernels.SubLog, []float32{1, float32(math.E)}, []float32{0, 1}},
		{kernels.SubSqrt, []float32{4, 9}, []float32{2, 3}},
		{kernels.SubNeg, []float32{1, -2}, []float32{-1, 2}},
		{kernels.SubAbs, []float32{-3, 3}, []float32{3, 3}},
		{kernels.SubTanh, []float32{0}, []float32{0}},
	}
	for _, tc := range tests {
		t.Run(tc.sub.String(), func(t *testing.T) {
			a := fromF32(t, r, tc.in)
			a.Apply(tc.sub)
			got := ToSlice[float32](a)
			require.Len(t, got, len(tc.want))
			for i := range got {
				assert.InDelta(t, tc.want[i], got[i], 1e-5)
			}
		})
	}
}

func TestApplyFrom(t *testing.T) {
	r := newHostRegistry(t)

	src := fromF32(t, r, []float32{1, 4, 16})
	dst := fromF32(t, r, []float32{0, 0, 0})

	dst.ApplyFrom(src, kernels.SubSqrt)
	assert.Equal(t, []float32{1, 2, 4}, ToSlice[float32](dst))
	assert.Equal(t, []float32{1, 4, 16}, ToSlice[float32](src), "source is untouched")
}

func TestApplyNonTransformPanics(t *testing.T) {
	r := newHostRegistry(t)
	a := fromF32(t, r, []float32{1})
	assert.Panics(t, func() { a.Apply(kernels.SubAdd) })
}

func TestTransformIntegerIsConfigError(t *testing.T) {
	r := newHostRegistry(t)
	a, err := FromSlice(r, 0, []int32{1, 2})
	require.NoError(t, err)
	defer a.Release()
	assert.Panics(t, func() { a.Apply(kernels.SubExp) })
}

func TestZeroLengthOps(t *testing.T) {
	r := newHostRegistry(t)

	a, err := New(r, 0, device.Float32, 0)
	require.NoError(t, err)
	b, err := New(r, 0, device.Float32, 0)
	require.NoError(t, err)

	a.Add(b)
	a.Scale(2)
	a.Axpy(1, b)
	a.Fill(5)
	a.Apply(kernels.SubExp)
	assert.Zero(t, a.Sum())
	assert.Zero(t, a.SumAbs())
	assert.Zero(t, a.Dot(b))
	assert.Empty(t, ToSlice[float32](a))
}

func TestOperandMismatchPanics(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, 2, 3})
	short := fromF32(t, r, []float32{1, 2})
	f64, err := FromSlice(r, 0, []float64{1, 2, 3})
	require.NoError(t, err)
	defer f64.Release()

	assert.Panics(t, func() { a.Add(short) }, "length mismatch")
	assert.Panics(t, func() { a.Add(f64) }, "element type mismatch")
	assert.Panics(t, func() { _, _ = New(r, 0, device.Float32, -1) }, "negative length")
	assert.Panics(t, func() { ToSlice[float64](a) }, "wrong host element type")
}

func TestDot(t *testing.T) {
	r := newHostRegistry(t)

	a := fromF32(t, r, []float32{1, 2, 3})
	b := fromF32(t, r, []float32{4, 5, 6})
	assert.InDelta(t, 32.0, a.Dot(b), 1e-6)

	// Unequal lengths truncate to the shorter operand.
	long := fromF32(t, r, []float32{1, 1, 1, 1000})
	assert.InDelta(t, 15.0, long.Dot(b), 1e-6)
	assert.InDelta(t, 15.0, b.Dot(long), 1e-6)

	x, err := FromSlice(r, 0, []float64{0.5, 0.25})
	require.NoError(t, err)
	defer x.Release()
	y, err := FromSlice(r, 0, []float64{8, 4})
	require.NoError(t, err)
	defer y.Release()
	assert.InDelta(t, 5.0, x.Dot(y), 1e-12)
}

func TestDotIntegerPanics(t *testing.T) {
	r := newHostRegistry(t)

	a, err := FromSlice(r, 0, []int32{1, 2})
	require.NoError(t, err)
	defer a.Release()
	b, err := FromSlice(r, 0, []int32{3, 4})
	require.NoError(t, err)
	defer b.Release()

	assert.Panics(t, func() { a.Dot(b) })
}

func TestLargeArrayTiling(t *testing.T) {
	r := newHostRegistry(t)

	// Exercise multi-group geometry: 100k elements spans many groups at
	// the default ceiling and is not a multiple of it.
	const n = 100_001
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	a := fromF32(t, r, data)
	b := fromF32(t, r, data)

	a.Add(b)
	assert.InDelta(t, float64(2*n), a.Sum(), 0)

	a.Axpy(3, b)
	got := ToSlice[float32](a)
	assert.Equal(t, float32(5), got[0])
	assert.Equal(t, float32(5), got[n-1])
}

func TestDuplicateDevicePanics(t *testing.T) {
	r := NewRegistry()
	defer r.Close()
	r.Add(host.New(0))
	assert.Panics(t, func() { r.Add(host.New(0)) })
}

func TestUnregisteredDevicePanics(t *testing.T) {
	r := newHostRegistry(t)
	assert.Panics(t, func() { _, _ = New(r, 9, device.Float32, 1) })
}
