package bytecode_test

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestDisassembleComparisonChunk(t *testing.T) {
	c := bytecode.NewChunk("x_eq_1")
	c.ArgCount = 1
	c.WriteSimple(bytecode.OpLoadArg0)
	idx := c.AddConstant(bytecode.IntValue(1))
	c.WriteOp(bytecode.OpLoadIntW, 0, idx)
	c.WriteSimple(bytecode.OpCeq)
	c.WriteSimple(bytecode.OpRet)

	var out strings.Builder
	bytecode.NewDisassembler(c, &out).Disassemble()

	snaps.MatchSnapshot(t, out.String())
}

func TestDisassembleThreadedCaptureChunk(t *testing.T) {
	inner := bytecode.NewChunk("nested")
	inner.HasClosure = true
	inner.WriteOp(bytecode.OpLoadClosureSlot, 0, 0)
	inner.WriteSimple(bytecode.OpRet)

	innerClosure := bytecode.NewArraySlabClosure(make([]bytecode.Value, 1))

	outer := bytecode.NewChunk("outer")
	outer.ArgCount = 1
	outer.HasClosure = true
	capIdx := outer.AddCapture(bytecode.CaptureBinding{
		InnerClosure: innerClosure,
		SourceKind:   bytecode.CaptureFromArg,
		InnerSlot:    0,
		SourceIndex:  1,
	})
	outer.WriteOp(bytecode.OpThreadCapture, 0, capIdx)
	outer.WriteOp(bytecode.OpLoadClosureSlot, 0, 0)
	outer.WriteSimple(bytecode.OpRet)

	var out strings.Builder
	bytecode.NewDisassembler(outer, &out).Disassemble()

	snaps.MatchSnapshot(t, out.String())
}
