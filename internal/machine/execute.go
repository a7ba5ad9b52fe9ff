package machine

import (
	"math"

	"stackvm/internal/heap"
	"stackvm/internal/idiv"
	"stackvm/internal/instr"
	"stackvm/internal/ordering"
)

// execute dispatches one decoded instruction. It is the only place in the
// package that knows the bit pattern of every opcode; everything else
// (stack width helpers, division policy, ordering, conversions) lives in
// the packages it imports.
func (m *Machine) execute(ins instr.Instruction) error {
	switch ins.Op {

	case instr.PSH1, instr.PSH2, instr.PSH4, instr.PSH8:
		m.Stack.PushSlice(ins.Immediate)
		return nil

	case instr.POP1:
		return m.Stack.RemoveTop(1)
	case instr.POP2:
		return m.Stack.RemoveTop(2)
	case instr.POP4:
		return m.Stack.RemoveTop(4)
	case instr.POP8:
		return m.Stack.RemoveTop(8)

	case instr.ALLOC:
		return m.execAlloc()
	case instr.COPYREF:
		return m.execCopyRef()
	case instr.SETCHILD:
		return m.execSetChild()
	case instr.GETCHILD:
		return m.execGetChild()

	case instr.MOVSTHP1:
		return m.execMovStHp(1)
	case instr.MOVSTHP2:
		return m.execMovStHp(2)
	case instr.MOVSTHP4:
		return m.execMovStHp(4)
	case instr.MOVSTHP8:
		return m.execMovStHp(8)

	case instr.MOVHPST1:
		return m.execMovHpSt(1)
	case instr.MOVHPST2:
		return m.execMovHpSt(2)
	case instr.MOVHPST4:
		return m.execMovHpSt(4)
	case instr.MOVHPST8:
		return m.execMovHpSt(8)

	case instr.JSR:
		return m.execJsr()
	case instr.RET:
		return m.execRet()

	case instr.JMPEQ:
		return m.execJmp(ordering.Ordering.IsEq)
	case instr.JMPNE:
		return m.execJmp(ordering.Ordering.IsNe)
	case instr.JMPGE:
		return m.execJmp(ordering.Ordering.IsGe)
	case instr.JMPGT:
		return m.execJmp(ordering.Ordering.IsGt)
	case instr.JMPLE:
		return m.execJmp(ordering.Ordering.IsLe)
	case instr.JMPLT:
		return m.execJmp(ordering.Ordering.IsLt)

	case instr.CMPU1:
		return compareOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) ordering.Ordering { return ordering.FromCompare(uint64(a), uint64(b)) })
	case instr.CMPU2:
		return compareOp(m.Stack.PopU16, m.Stack.PushU8, func(a, b uint16) ordering.Ordering { return ordering.FromCompare(uint64(a), uint64(b)) })
	case instr.CMPU4:
		return compareOp(m.Stack.PopU32, m.Stack.PushU8, func(a, b uint32) ordering.Ordering { return ordering.FromCompare(uint64(a), uint64(b)) })
	case instr.CMPU8:
		return compareOp(m.Stack.PopU64, m.Stack.PushU8, func(a, b uint64) ordering.Ordering { return ordering.FromCompare(a, b) })
	case instr.CMPS1:
		return compareOp(m.Stack.PopI8, m.Stack.PushU8, func(a, b int8) ordering.Ordering { return ordering.FromCompare(int64(a), int64(b)) })
	case instr.CMPS2:
		return compareOp(m.Stack.PopI16, m.Stack.PushU8, func(a, b int16) ordering.Ordering { return ordering.FromCompare(int64(a), int64(b)) })
	case instr.CMPS4:
		return compareOp(m.Stack.PopI32, m.Stack.PushU8, func(a, b int32) ordering.Ordering { return ordering.FromCompare(int64(a), int64(b)) })
	case instr.CMPS8:
		return compareOp(m.Stack.PopI64, m.Stack.PushU8, func(a, b int64) ordering.Ordering { return ordering.FromCompare(a, b) })
	case instr.CMPF4:
		return compareOp(m.Stack.PopF32, m.Stack.PushU8, ordering.TotalOrderF32)
	case instr.CMPF8:
		return compareOp(m.Stack.PopF64, m.Stack.PushU8, ordering.TotalOrderF64)

	case instr.NOT1:
		return unaryOp(m.Stack.PopU8, m.Stack.PushU8, func(v uint8) uint8 { return ^v })
	case instr.NOT2:
		return unaryOp(m.Stack.PopU16, m.Stack.PushU16, func(v uint16) uint16 { return ^v })
	case instr.NOT4:
		return unaryOp(m.Stack.PopU32, m.Stack.PushU32, func(v uint32) uint32 { return ^v })
	case instr.NOT8:
		return unaryOp(m.Stack.PopU64, m.Stack.PushU64, func(v uint64) uint64 { return ^v })

	case instr.AND1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a & b })
	case instr.AND2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a & b })
	case instr.AND4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a & b })
	case instr.AND8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a & b })

	case instr.OR1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a | b })
	case instr.OR2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a | b })
	case instr.OR4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a | b })
	case instr.OR8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a | b })

	case instr.XOR1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a ^ b })
	case instr.XOR2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a ^ b })
	case instr.XOR4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a ^ b })
	case instr.XOR8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a ^ b })

	case instr.SHL1:
		return shiftOp(m.Stack.PopU8, m.Stack.PopU8, m.Stack.PushU8, func(v uint8, n uint8) uint8 { return v << n })
	case instr.SHL2:
		return shiftOp(m.Stack.PopU16, m.Stack.PopU8, m.Stack.PushU16, func(v uint16, n uint8) uint16 { return v << n })
	case instr.SHL4:
		return shiftOp(m.Stack.PopU32, m.Stack.PopU8, m.Stack.PushU32, func(v uint32, n uint8) uint32 { return v << n })
	case instr.SHL8:
		return shiftOp(m.Stack.PopU64, m.Stack.PopU8, m.Stack.PushU64, func(v uint64, n uint8) uint64 { return v << n })

	case instr.SHR1:
		return shiftOp(m.Stack.PopU8, m.Stack.PopU8, m.Stack.PushU8, func(v uint8, n uint8) uint8 { return v >> n })
	case instr.SHR2:
		return shiftOp(m.Stack.PopU16, m.Stack.PopU8, m.Stack.PushU16, func(v uint16, n uint8) uint16 { return v >> n })
	case instr.SHR4:
		return shiftOp(m.Stack.PopU32, m.Stack.PopU8, m.Stack.PushU32, func(v uint32, n uint8) uint32 { return v >> n })
	case instr.SHR8:
		return shiftOp(m.Stack.PopU64, m.Stack.PopU8, m.Stack.PushU64, func(v uint64, n uint8) uint64 { return v >> n })

	// SAR reuses shiftOp instantiated on the signed width: Go's >> on a
	// signed integer is already an arithmetic (sign-extending) shift.
	case instr.SAR1:
		return shiftOp(m.Stack.PopI8, m.Stack.PopU8, m.Stack.PushI8, func(v int8, n uint8) int8 { return v >> n })
	case instr.SAR2:
		return shiftOp(m.Stack.PopI16, m.Stack.PopU8, m.Stack.PushI16, func(v int16, n uint8) int16 { return v >> n })
	case instr.SAR4:
		return shiftOp(m.Stack.PopI32, m.Stack.PopU8, m.Stack.PushI32, func(v int32, n uint8) int32 { return v >> n })
	case instr.SAR8:
		return shiftOp(m.Stack.PopI64, m.Stack.PopU8, m.Stack.PushI64, func(v int64, n uint8) int64 { return v >> n })

	case instr.ADD1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a + b })
	case instr.ADD2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a + b })
	case instr.ADD4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a + b })
	case instr.ADD8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a + b })

	case instr.SUB1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a - b })
	case instr.SUB2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a - b })
	case instr.SUB4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a - b })
	case instr.SUB8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a - b })

	case instr.MUL1:
		return binaryOp(m.Stack.PopU8, m.Stack.PushU8, func(a, b uint8) uint8 { return a * b })
	case instr.MUL2:
		return binaryOp(m.Stack.PopU16, m.Stack.PushU16, func(a, b uint16) uint16 { return a * b })
	case instr.MUL4:
		return binaryOp(m.Stack.PopU32, m.Stack.PushU32, func(a, b uint32) uint32 { return a * b })
	case instr.MUL8:
		return binaryOp(m.Stack.PopU64, m.Stack.PushU64, func(a, b uint64) uint64 { return a * b })

	case instr.DIVREMU1:
		return divRemOp(m.Stack.PopU8, m.Stack.PushU8, idiv.DivU[uint8], idiv.RemU[uint8])
	case instr.DIVREMU2:
		return divRemOp(m.Stack.PopU16, m.Stack.PushU16, idiv.DivU[uint16], idiv.RemU[uint16])
	case instr.DIVREMU4:
		return divRemOp(m.Stack.PopU32, m.Stack.PushU32, idiv.DivU[uint32], idiv.RemU[uint32])
	case instr.DIVREMU8:
		return divRemOp(m.Stack.PopU64, m.Stack.PushU64, idiv.DivU[uint64], idiv.RemU[uint64])
	case instr.DIVREMS1:
		return divRemOp(m.Stack.PopI8, m.Stack.PushI8, idiv.DivS[int8], idiv.RemS[int8])
	case instr.DIVREMS2:
		return divRemOp(m.Stack.PopI16, m.Stack.PushI16, idiv.DivS[int16], idiv.RemS[int16])
	case instr.DIVREMS4:
		return divRemOp(m.Stack.PopI32, m.Stack.PushI32, idiv.DivS[int32], idiv.RemS[int32])
	case instr.DIVREMS8:
		return divRemOp(m.Stack.PopI64, m.Stack.PushI64, idiv.DivS[int64], idiv.RemS[int64])

	case instr.ADDF4:
		return binaryOp(m.Stack.PopF32, m.Stack.PushF32, func(a, b float32) float32 { return a + b })
	case instr.ADDF8:
		return binaryOp(m.Stack.PopF64, m.Stack.PushF64, func(a, b float64) float64 { return a + b })
	case instr.SUBF4:
		return binaryOp(m.Stack.PopF32, m.Stack.PushF32, func(a, b float32) float32 { return a - b })
	case instr.SUBF8:
		return binaryOp(m.Stack.PopF64, m.Stack.PushF64, func(a, b float64) float64 { return a - b })
	case instr.MULF4:
		return binaryOp(m.Stack.PopF32, m.Stack.PushF32, func(a, b float32) float32 { return a * b })
	case instr.MULF8:
		return binaryOp(m.Stack.PopF64, m.Stack.PushF64, func(a, b float64) float64 { return a * b })
	case instr.DIVF4:
		return binaryOp(m.Stack.PopF32, m.Stack.PushF32, func(a, b float32) float32 { return a / b })
	case instr.DIVF8:
		return binaryOp(m.Stack.PopF64, m.Stack.PushF64, func(a, b float64) float64 { return a / b })
	case instr.REMF4:
		// Kept in native float32 arithmetic end to end rather than promoted
		// to float64, per the corrected remainder semantics.
		return binaryOp(m.Stack.PopF32, m.Stack.PushF32, remF32)
	case instr.REMF8:
		return binaryOp(m.Stack.PopF64, m.Stack.PushF64, math.Mod)

	case instr.CNVU8F4:
		return convertOp(m.Stack.PopU64, m.Stack.PushF32, func(v uint64) float32 { return float32(v) })
	case instr.CNVU8F8:
		return convertOp(m.Stack.PopU64, m.Stack.PushF64, func(v uint64) float64 { return float64(v) })
	case instr.CNVS8F4:
		return convertOp(m.Stack.PopI64, m.Stack.PushF32, func(v int64) float32 { return float32(v) })
	case instr.CNVS8F8:
		return convertOp(m.Stack.PopI64, m.Stack.PushF64, func(v int64) float64 { return float64(v) })
	case instr.CNVF4U8:
		return convertOp(m.Stack.PopF32, m.Stack.PushU64, func(v float32) uint64 { return uint64(v) })
	case instr.CNVF8U8:
		return convertOp(m.Stack.PopF64, m.Stack.PushU64, func(v float64) uint64 { return uint64(v) })
	case instr.CNVF4S8:
		return convertOp(m.Stack.PopF32, m.Stack.PushI64, func(v float32) int64 { return int64(v) })
	case instr.CNVF8S8:
		return convertOp(m.Stack.PopF64, m.Stack.PushI64, func(v float64) int64 { return int64(v) })
	case instr.CNVF4F8:
		return convertOp(m.Stack.PopF32, m.Stack.PushF64, func(v float32) float64 { return float64(v) })
	case instr.CNVF8F4:
		return convertOp(m.Stack.PopF64, m.Stack.PushF32, func(v float64) float32 { return float32(v) })

	case instr.CALLEXT:
		if m.extCall == nil {
			return ErrUnimplementedExtCall
		}
		return m.extCall(m)
	}

	return instr.UnknownInstructionError{Byte: byte(ins.Op)}
}

// remF32 is a truncated-quotient remainder computed in float32: the
// quotient's integer part is truncated toward zero and multiplied back.
// Only the truncation passes the float32 quotient through float64 (for
// math.Trunc, an exact round trip); the division, multiplication and
// subtraction are float32. It is not math.Mod: an infinite b yields NaN,
// and a large quotient loses precision in float32.
func remF32(a, b float32) float32 {
	if b == 0 {
		return float32(math.NaN())
	}
	q := a / b
	trunc := float32(math.Trunc(float64(q)))
	return a - trunc*b
}

// execAlloc implements ALLOC. The two popped u64 lengths are consumed in
// the order that matches the opcode table's worked scenario (PSH 0, PSH 4,
// ALLOC yields an object whose data region is 4 bytes, not its child
// array): the value on top of the stack (popped first, the most recently
// pushed) is the data length, and the value below it is the children
// length.
func (m *Machine) execAlloc() error {
	dataLength, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	childrenLength, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	ref, err := m.Heap.Allocate(int(childrenLength), int(dataLength))
	if err != nil {
		return err
	}
	m.pushObjectReference(ref)
	return nil
}

func (m *Machine) execCopyRef() error {
	raw, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	ref, err := heap.NewReference(raw)
	if err != nil {
		return ErrIllegalNullObjectReference
	}
	if err := m.Heap.IncrementStackReferences(ref); err != nil {
		return err
	}
	m.pushObjectReference(ref)
	m.pushObjectReference(ref)
	return nil
}

func (m *Machine) execSetChild() error {
	parent, err := m.popObjectReference()
	if err != nil {
		return err
	}
	index, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	child, err := m.popNullableObjectReference()
	if err != nil {
		return err
	}
	return m.Heap.SetChild(parent, int(index), child)
}

func (m *Machine) execGetChild() error {
	parent, err := m.popObjectReference()
	if err != nil {
		return err
	}
	index, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	child, err := m.Heap.GetChild(parent, int(index))
	if err != nil {
		return err
	}
	if child == nil {
		m.Stack.PushU64(0)
		return nil
	}
	if err := m.Heap.IncrementStackReferences(*child); err != nil {
		return err
	}
	m.pushObjectReference(*child)
	return nil
}

func (m *Machine) execMovStHp(width int) error {
	ref, err := m.popObjectReference()
	if err != nil {
		return err
	}
	start, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	data, err := m.Stack.PopSlice(width)
	if err != nil {
		return err
	}
	dst, err := m.Heap.GetMutDataSlice(ref, int(start), width)
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (m *Machine) execMovHpSt(width int) error {
	ref, err := m.popObjectReference()
	if err != nil {
		return err
	}
	start, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	src, err := m.Heap.GetDataSlice(ref, int(start), width)
	if err != nil {
		return err
	}
	m.Stack.PushSlice(src)
	return nil
}

func (m *Machine) execJsr() error {
	address, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	// Read the return position before seeking: after decode, the stream
	// already sits on the byte following JSR, which is the correct return
	// address (no +1 adjustment).
	retAddr, err := m.streamPosition()
	if err != nil {
		return err
	}
	m.Stack.PushU64(retAddr)
	return m.seekTo(address)
}

func (m *Machine) execRet() error {
	address, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	return m.seekTo(address)
}

func (m *Machine) execJmp(pred func(ordering.Ordering) bool) error {
	cmpByte, err := m.Stack.PopU8()
	if err != nil {
		return err
	}
	cmp, err := ordering.FromByte(cmpByte)
	if err != nil {
		return err
	}
	address, err := m.Stack.PopU64()
	if err != nil {
		return err
	}
	if pred(cmp) {
		return m.seekTo(address)
	}
	return nil
}
