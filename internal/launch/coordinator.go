package launch

import (
	"time"

	"github.com/surge-ml/surge/internal/device"
)

// Coordinator issues kernels against one device context and blocks until the
// device reports completion, so every invocation is synchronous from the
// caller's perspective: once a call returns, the destination memory holds
// the finished result.
//
// The coordinator does not defensively copy aliased read-write slots;
// in-place aliasing is safe because every operation's output at an index
// depends only on that same index's inputs.
type Coordinator struct {
	ctx device.Context
}

// NewCoordinator creates a coordinator bound to ctx.
func NewCoordinator(ctx device.Context) *Coordinator {
	return &Coordinator{ctx: ctx}
}

// Context returns the underlying device context.
func (c *Coordinator) Context() device.Context { return c.ctx }

// Invoke launches k over count logical elements with the given argument
// slots, tiling at the given group-size ceiling, and waits for completion.
// A zero count is a no-op: the call returns immediately without touching
// the device.
func (c *Coordinator) Invoke(k device.Kernel, count int, args []device.Arg, ceiling int) error {
	if count == 0 {
		return nil
	}
	return c.run(k, Tile(count, ceiling), args)
}

// InvokeSerial launches k with a single group of one lane. Used by
// reductions, whose kernels walk the array themselves.
func (c *Coordinator) InvokeSerial(k device.Kernel, args []device.Arg) error {
	return c.run(k, Serial, args)
}

func (c *Coordinator) run(k device.Kernel, geom device.Geometry, args []device.Arg) error {
	start := time.Now()

	if err := c.ctx.Launch(k, geom, args); err != nil {
		return &device.FaultError{Kernel: k.Name(), Err: err}
	}
	if err := c.ctx.Synchronize(); err != nil {
		return &device.FaultError{Kernel: k.Name(), Err: err}
	}

	launchesTotal.Inc()
	launchDuration.Observe(time.Since(start).Seconds())
	return nil
}
