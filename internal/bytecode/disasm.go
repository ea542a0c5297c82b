package bytecode

import (
	"fmt"
	"io"
)

// Disassembler provides human-readable bytecode disassembly for
// debugging and for golden-snapshot tests, modeled on go-dws's
// disassembler for its larger instruction set.
type Disassembler struct {
	writer io.Writer
	chunk  *Chunk
}

// NewDisassembler creates a disassembler for chunk, writing to w.
func NewDisassembler(chunk *Chunk, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, chunk: chunk}
}

// Disassemble prints the full chunk: constant pool, capture table, then
// every instruction in order.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "== %s ==\n", d.chunk.Name)
	fmt.Fprintf(d.writer, "args=%d closure=%v locals=%d instructions=%d constants=%d captures=%d\n\n",
		d.chunk.ArgCount, d.chunk.HasClosure, d.chunk.LocalCount,
		len(d.chunk.Code), len(d.chunk.Constants), len(d.chunk.Captures))

	if len(d.chunk.Constants) > 0 {
		fmt.Fprintf(d.writer, "Constants:\n")
		for i, v := range d.chunk.Constants {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, describeValue(v))
		}
		fmt.Fprintf(d.writer, "\n")
	}

	if len(d.chunk.Captures) > 0 {
		fmt.Fprintf(d.writer, "Captures:\n")
		for i, cb := range d.chunk.Captures {
			fmt.Fprintf(d.writer, "  [%04d] slot %d <- %s %d (box=%v)\n",
				i, cb.InnerSlot, captureSourceName(cb.SourceKind), cb.SourceIndex, cb.BoxAsAny)
		}
		fmt.Fprintf(d.writer, "\n")
	}

	fmt.Fprintf(d.writer, "Code:\n")
	for offset := 0; offset < len(d.chunk.Code); offset++ {
		d.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction writes one line describing the instruction at offset.
func (d *Disassembler) DisassembleInstruction(offset int) {
	if offset < 0 || offset >= len(d.chunk.Code) {
		fmt.Fprintf(d.writer, "%04d invalid offset\n", offset)
		return
	}
	inst := d.chunk.Code[offset]
	op := inst.OpCode()
	fmt.Fprintf(d.writer, "%04d %-18s", offset, op.String())

	switch op {
	case OpLoadConst, OpLoadIntW, OpLoadDouble, OpLoadString, OpLoadTypeHandle,
		OpLoadNull, OpLoadStaticField, OpCastClass, OpNewArr, OpNewObj,
		OpLoadLocal, OpStoreLocal, OpLoadField, OpStoreField, OpThreadCapture:
		fmt.Fprintf(d.writer, " %d", inst.B())
	case OpLoadIntS:
		fmt.Fprintf(d.writer, " %d", int8(inst.A()))
	case OpLoadArgS:
		fmt.Fprintf(d.writer, " %d", inst.A())
	case OpLoadArgW:
		fmt.Fprintf(d.writer, " %d", inst.B())
	case OpCall, OpCallVirt, OpInvokeDelegate:
		fmt.Fprintf(d.writer, " argc=%d const=%d", inst.A(), inst.B())
	}
	fmt.Fprintln(d.writer)
}

func captureSourceName(k CaptureSource) string {
	switch k {
	case CaptureFromArg:
		return "arg"
	case CaptureFromClosureSlot:
		return "slot"
	default:
		return "?"
	}
}

func describeValue(v Value) string {
	if !v.IsValid() {
		return "<invalid>"
	}
	switch x := v.Interface().(type) {
	case MethodRef:
		if x.Name != "" {
			return fmt.Sprintf("MethodRef{%s}", x.Name)
		}
		return fmt.Sprintf("MethodRef{%v}", x.Direct.Type())
	case FieldRef:
		return fmt.Sprintf("FieldRef{%v.%s}", x.Owner, x.Name)
	case NewObjSpec:
		return fmt.Sprintf("NewObjSpec{%v}", x.ResultType)
	case CaptureBinding:
		return fmt.Sprintf("CaptureBinding{slot %d}", x.InnerSlot)
	default:
		return fmt.Sprintf("%v", x)
	}
}
