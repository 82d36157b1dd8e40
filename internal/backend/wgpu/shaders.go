package wgpu

import (
	"fmt"
	"strings"

	"github.com/surge-ml/surge/internal/kernels"
)

// WGSL source is generated per kernel variant. slotBind maps each array
// argument slot to a binding index (aliased slots share one), readWrite
// marks bindings written by the kernel, and the params uniform takes the
// binding after the last array.

// buildShader emits the WGSL source for one kernel variant.
func buildShader(k *kernel, slotBind []int, readWrite []bool) string {
	var sb strings.Builder

	for b, rw := range readWrite {
		access := "read"
		if rw {
			access = "read_write"
		}
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var<storage, %s> buf%d: array<%s>;\n", b, access, b, k.elem)
	}

	sb.WriteString("\nstruct Params {\n")
	for _, f := range scalarFields(k.op) {
		fmt.Fprintf(&sb, "    %s: %s,\n", f, k.elem)
	}
	sb.WriteString("    count: u32,\n}\n")
	fmt.Fprintf(&sb, "@group(0) @binding(%d) var<uniform> params: Params;\n\n", len(readWrite))

	if k.serial {
		writeReduceMain(&sb, k, slotBind)
	} else {
		writeElementwiseMain(&sb, k, slotBind)
	}
	return sb.String()
}

// scalarFields lists the params struct's scalar fields in slot order.
func scalarFields(op kernels.Op) []string {
	switch op {
	case kernels.Scale, kernels.Axpy:
		return []string{"alpha"}
	case kernels.Fill:
		return []string{"value"}
	default:
		return nil
	}
}

func writeElementwiseMain(sb *strings.Builder, k *kernel, slotBind []int) {
	s := func(i int) string { return fmt.Sprintf("buf%d[idx]", slotBind[i]) }

	var body string
	switch k.op {
	case kernels.Binary, kernels.BinaryOut:
		sym, _ := binarySym(k.sub)
		body = fmt.Sprintf("%s = %s %s %s;", s(2), s(0), sym, s(1))
	case kernels.Scale:
		body = fmt.Sprintf("%s = %s * params.alpha;", s(1), s(0))
	case kernels.Axpy:
		body = fmt.Sprintf("%s = %s + params.alpha * %s;", s(2), s(1), s(0))
	case kernels.Fill:
		body = fmt.Sprintf("%s = params.value;", s(0))
	case kernels.Transform:
		fn, _ := transformFn(k.sub)
		body = fmt.Sprintf("%s = %s;", s(1), fmt.Sprintf(fn, s(0)))
	default:
		panic(fmt.Sprintf("wgpu: no elementwise body for %s", k.op))
	}

	fmt.Fprintf(sb, `@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.count) {
        return;
    }
    %s
}
`, workgroupSize, body)
}

// writeReduceMain emits the serial reduction body: one lane walks the whole
// array and writes the accumulated result scalar.
func writeReduceMain(sb *strings.Builder, k *kernel, slotBind []int) {
	src := fmt.Sprintf("buf%d[i]", slotBind[0])
	if k.op == kernels.ReduceSumAbs {
		src = "abs(" + src + ")"
	}
	fmt.Fprintf(sb, `@compute @workgroup_size(1)
fn main() {
    var acc: %[1]s = %[1]s(0);
    for (var i: u32 = 0u; i < params.count; i = i + 1u) {
        acc = acc + %[2]s;
    }
    buf%[3]d[0] = acc;
}
`, k.elem, src, slotBind[1])
}
