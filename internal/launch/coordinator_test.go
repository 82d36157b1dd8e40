package launch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-ml/surge/internal/device"
)

type fakeKernel struct{ name string }

func (k fakeKernel) Name() string { return k.name }

// fakeContext records launch activity for coordinator tests.
type fakeContext struct {
	launches  int
	syncs     int
	lastGeom  device.Geometry
	launchErr error
	syncErr   error
}

func (f *fakeContext) Device() device.ID                     { return 0 }
func (f *fakeContext) Alloc(int) (device.Memory, error)      { return nil, nil }
func (f *fakeContext) Upload(device.Memory, []byte) error    { return nil }
func (f *fakeContext) Download([]byte, device.Memory) error  { return nil }
func (f *fakeContext) Memset32(device.Memory, uint32, int) error { return nil }
func (f *fakeContext) Synchronize() error {
	f.syncs++
	return f.syncErr
}
func (f *fakeContext) Close() {}
func (f *fakeContext) Launch(_ device.Kernel, geom device.Geometry, _ []device.Arg) error {
	f.launches++
	f.lastGeom = geom
	return f.launchErr
}

func TestInvokeBlocksUntilSync(t *testing.T) {
	ctx := &fakeContext{}
	c := NewCoordinator(ctx)

	err := c.Invoke(fakeKernel{"add_f32"}, 1000, nil, DefaultCeiling)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.launches)
	assert.Equal(t, 1, ctx.syncs, "invoke must wait for device completion")
	assert.Equal(t, device.Geometry{Groups: 2, GroupSize: 512}, ctx.lastGeom)
}

func TestInvokeZeroCountIsNoOp(t *testing.T) {
	ctx := &fakeContext{}
	c := NewCoordinator(ctx)

	err := c.Invoke(fakeKernel{"add_f32"}, 0, nil, DefaultCeiling)
	require.NoError(t, err)
	assert.Zero(t, ctx.launches, "zero-length operations must not touch the device")
	assert.Zero(t, ctx.syncs)
}

func TestInvokeSerialGeometry(t *testing.T) {
	ctx := &fakeContext{}
	c := NewCoordinator(ctx)

	err := c.InvokeSerial(fakeKernel{"sum_f32"}, nil)
	require.NoError(t, err)
	assert.Equal(t, device.Geometry{Groups: 1, GroupSize: 1}, ctx.lastGeom)
}

func TestInvokeLaunchFault(t *testing.T) {
	ctx := &fakeContext{launchErr: errors.New("out of device memory")}
	c := NewCoordinator(ctx)

	err := c.Invoke(fakeKernel{"mul_f32"}, 10, nil, DefaultCeiling)
	require.Error(t, err)

	var fault *device.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "mul_f32", fault.Kernel)
	assert.Zero(t, ctx.syncs, "a failed launch is not waited on")
}

func TestInvokeSyncFault(t *testing.T) {
	ctx := &fakeContext{syncErr: errors.New("device lost")}
	c := NewCoordinator(ctx)

	err := c.Invoke(fakeKernel{"scale_f32"}, 10, nil, DefaultCeiling)
	var fault *device.FaultError
	require.ErrorAs(t, err, &fault)
}
