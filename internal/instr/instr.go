package instr

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfInstructions is the normal termination sentinel: the fetch
// boundary reached end-of-stream while reading a fresh discriminant byte.
var ErrEndOfInstructions = errors.New("instr: end of instructions")

// IncompleteInstructionError is fatal: end-of-stream was reached partway
// through an instruction's immediate payload.
type IncompleteInstructionError struct {
	Disc byte
}

func (e IncompleteInstructionError) Error() string {
	return fmt.Sprintf("instr: incomplete instruction, discriminant %d", e.Disc)
}

// UnknownInstructionError is fatal: the discriminant byte does not match
// any opcode in the table.
type UnknownInstructionError struct {
	Byte byte
}

func (e UnknownInstructionError) Error() string {
	return fmt.Sprintf("instr: unknown instruction byte %d", e.Byte)
}

// Instruction is one decoded unit: an opcode plus, for PSH_1/2/4/8, its
// literal little-endian immediate bytes.
type Instruction struct {
	Op        Opcode
	Immediate []byte
}

// Decode reads exactly one instruction from r: one discriminant byte, plus
// an immediate payload for PSH_1/2/4/8.
//
// End-of-stream at the discriminant byte is reported as
// ErrEndOfInstructions (the normal way a program terminates); end-of-stream
// mid-payload is IncompleteInstructionError, which is fatal.
func Decode(r io.Reader) (Instruction, error) {
	var discByte [1]byte
	if _, err := io.ReadFull(r, discByte[:]); err != nil {
		if err == io.EOF {
			return Instruction{}, ErrEndOfInstructions
		}
		return Instruction{}, err
	}

	disc := Opcode(discByte[0])
	n := disc.ImmediateLen()
	if n == 0 {
		if _, known := opcodeNames[disc]; !known {
			return Instruction{}, UnknownInstructionError{Byte: discByte[0]}
		}
		return Instruction{Op: disc}, nil
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Instruction{}, IncompleteInstructionError{Disc: discByte[0]}
	}
	return Instruction{Op: disc, Immediate: payload}, nil
}

// Encode returns the byte-exact wire form of instr: its discriminant byte
// followed by its immediate payload, if any.
func Encode(instr Instruction) []byte {
	out := make([]byte, 1+len(instr.Immediate))
	out[0] = byte(instr.Op)
	copy(out[1:], instr.Immediate)
	return out
}

func (i Instruction) String() string {
	if len(i.Immediate) == 0 {
		return i.Op.String()
	}
	return fmt.Sprintf("%s %x", i.Op.String(), i.Immediate)
}
