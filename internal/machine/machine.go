// Package machine implements the interpreter: the fetch/decode/execute loop
// that binds an instruction stream, a compute stack, and a managed heap.
// One handler exists per opcode; the interpreter also owns jump semantics,
// subroutine linkage, per-width arithmetic/logic, IEEE-754 comparison, and
// the reference-bookkeeping discipline described alongside each opcode.
package machine

import (
	"errors"
	"fmt"
	"io"

	"stackvm/internal/heap"
	"stackvm/internal/instr"
	"stackvm/internal/stack"
)

// ErrIllegalNullObjectReference is returned when an instruction that
// requires a non-null object reference is fed the null reference (0).
// SET_CHILD's child operand and GET_CHILD's result are the only operands
// documented as accepting null.
var ErrIllegalNullObjectReference = errors.New("machine: illegal use of null object reference")

// ErrUnimplementedExtCall is returned by CALL_EXT when no extension
// handler has been registered; the host extension mechanism itself is out
// of scope for the core machine.
var ErrUnimplementedExtCall = errors.New("machine: CALL_EXT has no registered handler")

// InstructionStream is the abstract dependency the interpreter has on its
// program source: a readable, seekable byte source whose current position
// is the program counter.
type InstructionStream interface {
	io.Reader
	io.Seeker
}

// StepError wraps a fatal error from Step together with the instruction
// that was executing when it failed, if decoding succeeded. No error is
// caught or retried internally; the host decides whether to abort, and any
// side effects already performed within the partially executed opcode are
// not rolled back.
type StepError struct {
	Err         error
	Instruction *instr.Instruction
}

func (e *StepError) Error() string {
	if e.Instruction == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (at %s)", e.Err, e.Instruction)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExtCallHandler lets a host register a CALL_EXT implementation. The
// handler sees the machine's stack and heap directly.
type ExtCallHandler func(m *Machine) error

// Machine is the interpreter: an instruction stream, a compute stack, and
// an object heap, bound together by Step.
type Machine struct {
	Instructions InstructionStream
	Stack        stack.Stack
	Heap         *heap.Heap

	// Trace, when true, calls Tracef for every decoded instruction before
	// it executes. Off by default so the core stays silent unless asked.
	Trace  bool
	Tracef func(instr.Instruction)

	extCall ExtCallHandler
}

// New constructs a Machine from an instruction stream, a compute stack,
// and a fresh heap.
func New(instructions InstructionStream, s stack.Stack) *Machine {
	return &Machine{
		Instructions: instructions,
		Stack:        s,
		Heap:         heap.New(),
	}
}

// SetExtCallHandler registers a host handler for CALL_EXT. Without one,
// executing CALL_EXT is a fatal ErrUnimplementedExtCall.
func (m *Machine) SetExtCallHandler(h ExtCallHandler) {
	m.extCall = h
}

// Step fetches one instruction from the current stream position, advances
// the stream by the instruction's exact byte length, then executes it.
// Reaching end-of-stream while fetching a fresh discriminant is the normal
// termination signal (instr.ErrEndOfInstructions) and is returned with a
// nil Instruction; every other failure is wrapped in a *StepError
// alongside the instruction that failed, if one was decoded.
func (m *Machine) Step() error {
	ins, err := instr.Decode(m.Instructions)
	if err != nil {
		if errors.Is(err, instr.ErrEndOfInstructions) {
			return err
		}
		return &StepError{Err: err}
	}

	if m.Trace && m.Tracef != nil {
		m.Tracef(ins)
	}

	if err := m.execute(ins); err != nil {
		return &StepError{Err: err, Instruction: &ins}
	}
	return nil
}

// Run steps the machine until a fatal error or normal termination
// (instr.ErrEndOfInstructions, which Run reports as nil).
func (m *Machine) Run() error {
	for {
		err := m.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, instr.ErrEndOfInstructions) {
			return nil
		}
		return err
	}
}

// popObjectReference pops a u64 off the stack, rejects the null
// reference, and decrements the resulting reference's stack-reference
// count (it is leaving the stack).
func (m *Machine) popObjectReference() (heap.Reference, error) {
	raw, err := m.Stack.PopU64()
	if err != nil {
		return 0, err
	}
	ref, err := heap.NewReference(raw)
	if err != nil {
		return 0, ErrIllegalNullObjectReference
	}
	if err := m.Heap.DecrementStackReferences(ref); err != nil {
		return 0, err
	}
	return ref, nil
}

// popNullableObjectReference is the same as popObjectReference but admits
// the null reference as "no reference", matching SET_CHILD's child
// operand.
func (m *Machine) popNullableObjectReference() (*heap.Reference, error) {
	raw, err := m.Stack.PopU64()
	if err != nil {
		return nil, err
	}
	ref := heap.NewNullableReference(raw)
	if ref == nil {
		return nil, nil
	}
	if err := m.Heap.DecrementStackReferences(*ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (m *Machine) pushObjectReference(ref heap.Reference) {
	m.Stack.PushU64(uint64(ref))
}

func (m *Machine) seekTo(address uint64) error {
	_, err := m.Instructions.Seek(int64(address), io.SeekStart)
	return err
}

func (m *Machine) streamPosition() (uint64, error) {
	pos, err := m.Instructions.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return uint64(pos), nil
}

