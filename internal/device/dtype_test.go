package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 4, Int32.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 1, Uint8.Size())
}

func TestDataTypeIsFloat(t *testing.T) {
	assert.True(t, Float32.IsFloat())
	assert.True(t, Float64.IsFloat())
	assert.False(t, Int32.IsFloat())
	assert.False(t, Int64.IsFloat())
	assert.False(t, Uint8.IsFloat())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, Float32, TypeOf[float32]())
	assert.Equal(t, Float64, TypeOf[float64]())
	assert.Equal(t, Int32, TypeOf[int32]())
	assert.Equal(t, Int64, TypeOf[int64]())
	assert.Equal(t, Uint8, TypeOf[uint8]())
}

func TestGeometryLanes(t *testing.T) {
	assert.Equal(t, 1024, Geometry{Groups: 2, GroupSize: 512}.Lanes())
	assert.Equal(t, 1, Geometry{Groups: 1, GroupSize: 1}.Lanes())
}

func TestArgConstructors(t *testing.T) {
	assert.Equal(t, Arg{Kind: ArgValue, Value: 2.5}, Value(2.5))
	assert.Equal(t, Arg{Kind: ArgCount, Count: 7}, Count(7))

	m := fakeMemory{}
	assert.Equal(t, Arg{Kind: ArgConst, Mem: m}, Const(m))
	assert.Equal(t, Arg{Kind: ArgMut, Mem: m}, Mut(m))
}

type fakeMemory struct{}

func (fakeMemory) Size() int { return 0 }
func (fakeMemory) Release()  {}
