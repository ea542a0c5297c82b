// Package bytecode is the emitter target and execution engine: a
// restricted instruction set plus a stack-based VM, modeled on
// go-dws/internal/bytecode's Chunk/Instruction/VM trio. It stands in for
// the host's dynamic-method builder: instead of native-code JIT, a
// Chunk is the instruction sink and "finalize as callable" wraps the VM
// loop in reflect.MakeFunc to hand back a genuine Go func value.
package bytecode

// OpCode is a single bytecode instruction opcode. The set here is
// deliberately restricted to exactly what the two-pass compiler in
// package compiler needs to emit — no control flow, no assignment
// statements, nothing this compiler's analyzer would reject anyway.
type OpCode byte

// Instruction is a packed 32-bit [opcode:8][A:8][B:16] word, the same
// layout go-dws's bytecode VM uses.
type Instruction uint32

const (
	// OpLoadConst pushes constant pool entry B.
	OpLoadConst OpCode = iota
	// OpLoadConst0 pushes constant pool entry 0 (common-case optimization).
	OpLoadConst0
	// OpLoadConst1 pushes constant pool entry 1.
	OpLoadConst1

	// ---- arguments (hidden closure is argument 0 when present) ----

	// OpLoadArg0..OpLoadArg3 push argument 0..3 (dense forms).
	OpLoadArg0
	OpLoadArg1
	OpLoadArg2
	OpLoadArg3
	// OpLoadArgS pushes argument A (one-byte index, 4..255).
	OpLoadArgS
	// OpLoadArgW pushes argument B (two-byte index, 256..65535).
	OpLoadArgW

	// ---- locals ----

	// OpLoadLocal pushes local B.
	OpLoadLocal
	// OpStoreLocal pops and stores into local B.
	OpStoreLocal

	// ---- closure slots (implicit receiver: argument 0. Fixed-arity form
	// addresses by struct field index B; array-slab form addresses by
	// element index B — the emitter doesn't need to know which, it
	// always emits the same two ops) ----

	// OpLoadClosureSlot pushes closure slot B.
	OpLoadClosureSlot
	// OpStoreClosureSlot pops and stores into closure slot B.
	OpStoreClosureSlot

	// ---- named instance fields (explicit receiver, popped from stack) ----

	// OpLoadField pops a receiver and pushes the named field described by
	// constant pool entry B.
	OpLoadField
	// OpStoreField pops a value then a receiver and stores into the
	// named field described by constant pool entry B.
	OpStoreField

	// OpLoadStaticField pushes the static field/getter described by
	// constant pool entry B.
	OpLoadStaticField

	// ---- literals ----

	// OpLoadNull pushes the typed nil/zero value described by constant
	// pool entry B (Go's reflect.Value must always carry a concrete type,
	// so unlike a CLR ldnull this still needs an operand).
	OpLoadNull
	// OpLoadTrue / OpLoadFalse push a bool literal.
	OpLoadTrue
	OpLoadFalse

	// OpLoadIntM1, OpLoadInt0..OpLoadInt8 push the dense integer literals
	// -1..8 with no operand.
	OpLoadIntM1
	OpLoadInt0
	OpLoadInt1
	OpLoadInt2
	OpLoadInt3
	OpLoadInt4
	OpLoadInt5
	OpLoadInt6
	OpLoadInt7
	OpLoadInt8
	// OpLoadIntS pushes a one-byte signed integer literal from operand A.
	OpLoadIntS
	// OpLoadIntW pushes constant pool entry B as an int64 literal.
	OpLoadIntW
	// OpLoadDouble pushes constant pool entry B as a float64 literal.
	OpLoadDouble
	// OpLoadString pushes constant pool entry B as a string literal.
	OpLoadString
	// OpLoadTypeHandle pushes constant pool entry B, a reflect.Type value.
	OpLoadTypeHandle

	// ---- boxing / casting ----

	// OpBox wraps the top of stack as the universal reference type. A
	// no-op in this VM (see the OpBox case in vm.go) but kept for
	// symmetry with the instruction set the spec enumerates.
	OpBox
	// OpCastClass checked-casts top of stack to the reflect.Type named by
	// constant pool entry B, raising a runtime error on failure.
	OpCastClass

	// ---- arrays ----

	// OpNewArr allocates a slice of element type named by constant B;
	// length is popped from the stack.
	OpNewArr
	// OpLdelemRef pops index then array, pushes array[index].
	OpLdelemRef
	// OpLdelemA is identical to OpLdelemRef in this VM: because array
	// elements here are always reflect.Value (already addressable through
	// the slice), there is no separate "element address" representation
	// to produce. Kept as a distinct opcode for emitter-site fidelity.
	OpLdelemA
	// OpStelemRef pops value, index, array and stores array[index] = value.
	OpStelemRef
	// OpStobj is identical to OpStelemRef here, for the same reason
	// OpLdelemA mirrors OpLdelemRef.
	OpStobj

	// ---- construction / calls ----

	// OpNewObj pops A arguments and constructs the type described by
	// constant pool entry B.
	OpNewObj
	// OpCall pops A values (the receiver first, when the callee is an
	// instance method, counted in A, then the arguments) and invokes the
	// direct, non-virtual method described by constant pool entry B.
	OpCall
	// OpCallVirt is OpCall but dispatches through the receiver's dynamic
	// type (Go's natural method-value resolution).
	OpCallVirt
	// OpInvokeDelegate pops A arguments plus a callable value and invokes it.
	OpInvokeDelegate

	// OpThreadCapture re-threads one live outer value into one nested
	// lambda's closure slot; operand B indexes the chunk's capture table.
	OpThreadCapture

	// ---- comparisons ----

	OpCeq
	OpClt
	OpCgt

	// ---- misc ----

	OpDup
	OpRet
)

var opcodeNames = map[OpCode]string{
	OpLoadConst:       "LOAD_CONST",
	OpLoadConst0:      "LOAD_CONST0",
	OpLoadConst1:      "LOAD_CONST1",
	OpLoadArg0:        "LOAD_ARG0",
	OpLoadArg1:        "LOAD_ARG1",
	OpLoadArg2:        "LOAD_ARG2",
	OpLoadArg3:        "LOAD_ARG3",
	OpLoadArgS:         "LOAD_ARG_S",
	OpLoadArgW:         "LOAD_ARG_W",
	OpLoadLocal:        "LOAD_LOCAL",
	OpStoreLocal:       "STORE_LOCAL",
	OpLoadClosureSlot:  "LOAD_CLOSURE_SLOT",
	OpStoreClosureSlot: "STORE_CLOSURE_SLOT",
	OpLoadField:        "LOAD_FIELD",
	OpStoreField:      "STORE_FIELD",
	OpLoadStaticField: "LOAD_STATIC_FIELD",
	OpLoadNull:        "LOAD_NULL",
	OpLoadTrue:        "LOAD_TRUE",
	OpLoadFalse:       "LOAD_FALSE",
	OpLoadIntM1:       "LOAD_INT_M1",
	OpLoadInt0:        "LOAD_INT_0",
	OpLoadInt1:        "LOAD_INT_1",
	OpLoadInt2:        "LOAD_INT_2",
	OpLoadInt3:        "LOAD_INT_3",
	OpLoadInt4:        "LOAD_INT_4",
	OpLoadInt5:        "LOAD_INT_5",
	OpLoadInt6:        "LOAD_INT_6",
	OpLoadInt7:        "LOAD_INT_7",
	OpLoadInt8:        "LOAD_INT_8",
	OpLoadIntS:        "LOAD_INT_S",
	OpLoadIntW:        "LOAD_INT_W",
	OpLoadDouble:      "LOAD_DOUBLE",
	OpLoadString:      "LOAD_STRING",
	OpLoadTypeHandle:  "LOAD_TYPE_HANDLE",
	OpBox:             "BOX",
	OpCastClass:       "CASTCLASS",
	OpNewArr:          "NEWARR",
	OpLdelemRef:       "LDELEM_REF",
	OpLdelemA:         "LDELEMA",
	OpStelemRef:       "STELEM_REF",
	OpStobj:           "STOBJ",
	OpNewObj:          "NEWOBJ",
	OpCall:            "CALL",
	OpCallVirt:        "CALLVIRT",
	OpInvokeDelegate:  "INVOKE",
	OpThreadCapture:   "THREAD_CAPTURE",
	OpCeq:             "CEQ",
	OpClt:             "CLT",
	OpCgt:             "CGT",
	OpDup:             "DUP",
	OpRet:             "RET",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// MakeInstruction packs an opcode with an 8-bit and a 16-bit operand.
func MakeInstruction(op OpCode, a byte, b uint16) Instruction {
	return Instruction(uint32(op) | uint32(a)<<8 | uint32(b)<<16)
}

// MakeSimpleInstruction packs an opcode with no operands.
func MakeSimpleInstruction(op OpCode) Instruction {
	return MakeInstruction(op, 0, 0)
}

// OpCode extracts the opcode from a packed instruction.
func (inst Instruction) OpCode() OpCode {
	return OpCode(inst & 0xFF)
}

// A extracts the 8-bit operand.
func (inst Instruction) A() byte {
	return byte((inst >> 8) & 0xFF)
}

// B extracts the 16-bit operand.
func (inst Instruction) B() uint16 {
	return uint16((inst >> 16) & 0xFFFF)
}
