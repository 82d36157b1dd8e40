package device

import (
	"errors"
	"fmt"
)

// ID identifies one accelerator device within a process.
type ID int

// ErrNoKernel is returned when no compiled kernel exists for a requested
// (operation, element type, sub-operation) combination. This is a static
// configuration error, not a runtime numeric error.
var ErrNoKernel = errors.New("device: no kernel for requested combination")

// Memory is a handle to contiguous device-resident storage. The handle is
// valid and exclusively describes the allocation for its lifetime; length
// never changes after creation. Memory is released by its owner, never by
// the operations that read or write through it.
type Memory interface {
	// Size returns the allocation size in bytes.
	Size() int

	// Release frees the device allocation. The handle must not be used
	// afterwards.
	Release()
}

// Kernel is an opaque reference to a compiled, invocable unit on a specific
// device. A handle is valid only for the device that produced it, is
// immutable once obtained, and may be reused across any number of launches.
type Kernel interface {
	// Name identifies the kernel variant, e.g. "add_f32".
	Name() string
}

// Geometry describes the parallel execution shape requested for one launch:
// Groups execution groups of GroupSize lanes each.
//
// Invariant: Groups*GroupSize >= the logical element count, and GroupSize
// never exceeds the operation's ceiling or the element count itself.
type Geometry struct {
	Groups    int
	GroupSize int
}

// Lanes returns the total number of parallel lanes requested.
func (g Geometry) Lanes() int {
	return g.Groups * g.GroupSize
}

// ArgKind discriminates the argument-slot union.
type ArgKind int

// Argument slot kinds, mirroring the kernel calling convention.
const (
	ArgValue ArgKind = iota // numeric scalar value
	ArgConst                // read-only array reference
	ArgMut                  // read-write (aliasable) array reference
	ArgCount                // 64-bit element count
)

// Arg is one kernel argument slot. Ordering is operation-specific and fixed
// at call-site construction time; nothing downstream reorders slots.
type Arg struct {
	Kind  ArgKind
	Value float64 // ArgValue
	Mem   Memory  // ArgConst, ArgMut
	Count int64   // ArgCount
}

// Value builds a scalar argument slot.
func Value(v float64) Arg { return Arg{Kind: ArgValue, Value: v} }

// Const builds a read-only array argument slot.
func Const(m Memory) Arg { return Arg{Kind: ArgConst, Mem: m} }

// Mut builds a read-write array argument slot.
func Mut(m Memory) Arg { return Arg{Kind: ArgMut, Mem: m} }

// Count builds a 64-bit element-count argument slot.
func Count(n int) Arg { return Arg{Kind: ArgCount, Count: int64(n)} }

// Context is the execution context of one accelerator device. Implementations
// must serialize concurrent Launch calls on the same context (the WebGPU
// queue does; the host simulator locks internally).
type Context interface {
	// Device returns the identifier of the device this context drives.
	Device() ID

	// Alloc reserves size bytes of device memory, zero-initialized.
	Alloc(size int) (Memory, error)

	// Upload synchronously copies host bytes into device memory at offset 0.
	Upload(dst Memory, src []byte) error

	// Download synchronously copies device memory into the host slice.
	Download(dst []byte, src Memory) error

	// Memset32 sets words consecutive 32-bit words of dst to pattern.
	// This is the raw memory-set primitive behind the fill fast path.
	Memset32(dst Memory, pattern uint32, words int) error

	// Launch issues the kernel with the given geometry and argument slots.
	// Completion is not implied; callers follow with Synchronize.
	Launch(k Kernel, geom Geometry, args []Arg) error

	// Synchronize blocks until all outstanding device work has completed.
	Synchronize() error

	// Close releases the context and all driver resources it owns.
	Close()
}

// FaultError wraps a device-reported launch or execution fault. Faults are
// propagated without retry: a faulted context indicates resource exhaustion
// or a programming defect that must not be masked.
type FaultError struct {
	Kernel string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("device: kernel %s faulted: %v", e.Kernel, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }
