// Package stack implements the machine's byte-oriented compute stack: a
// LIFO of untyped bytes with width-tagged push/pop helpers, always
// little-endian. Producers and consumers must agree on widths; the stack
// itself carries no type tags.
package stack

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrUnderflow is returned by any pop/remove operation that asks for
// more bytes than are currently on the stack.
var ErrUnderflow = errors.New("stack: underflow")

// Stack is the abstract interface the interpreter depends on, so that a
// bounded-capacity or instrumented stack can be substituted without
// touching machine code.
type Stack interface {
	Size() int
	PushSlice(b []byte)
	PopSlice(n int) ([]byte, error)
	RemoveTop(n int) error

	PushU8(v uint8)
	PushU16(v uint16)
	PushU32(v uint32)
	PushU64(v uint64)
	PushI8(v int8)
	PushI16(v int16)
	PushI32(v int32)
	PushI64(v int64)
	PushF32(v float32)
	PushF64(v float64)

	PopU8() (uint8, error)
	PopU16() (uint16, error)
	PopU32() (uint32, error)
	PopU64() (uint64, error)
	PopI8() (int8, error)
	PopI16() (int16, error)
	PopI32() (int32, error)
	PopI64() (int64, error)
	PopF32() (float32, error)
	PopF64() (float64, error)
}

// ByteStack is a plain, unbounded slice-backed Stack. It never fails on
// push (a bounded-capacity variant would also raise an Overflow error, but
// none is specified for the core machine).
type ByteStack struct {
	bytes []byte
}

// New returns an empty compute stack.
func New() *ByteStack {
	return &ByteStack{}
}

// Size returns the current byte count on the stack.
func (s *ByteStack) Size() int {
	return len(s.bytes)
}

// PushSlice appends bytes to the top of the stack.
func (s *ByteStack) PushSlice(b []byte) {
	s.bytes = append(s.bytes, b...)
}

// PopSlice removes and returns the last n bytes, preserving their original
// in-stack order so that push then pop round-trips.
func (s *ByteStack) PopSlice(n int) ([]byte, error) {
	if n < 0 || len(s.bytes) < n {
		return nil, ErrUnderflow
	}
	split := len(s.bytes) - n
	out := make([]byte, n)
	copy(out, s.bytes[split:])
	s.bytes = s.bytes[:split]
	return out, nil
}

// RemoveTop pops and discards n bytes.
func (s *ByteStack) RemoveTop(n int) error {
	if n < 0 || len(s.bytes) < n {
		return ErrUnderflow
	}
	s.bytes = s.bytes[:len(s.bytes)-n]
	return nil
}

func (s *ByteStack) PushU8(v uint8) { s.bytes = append(s.bytes, v) }

func (s *ByteStack) PushU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	s.bytes = append(s.bytes, b[:]...)
}

func (s *ByteStack) PushU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.bytes = append(s.bytes, b[:]...)
}

func (s *ByteStack) PushU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.bytes = append(s.bytes, b[:]...)
}

func (s *ByteStack) PushI8(v int8)   { s.PushU8(uint8(v)) }
func (s *ByteStack) PushI16(v int16) { s.PushU16(uint16(v)) }
func (s *ByteStack) PushI32(v int32) { s.PushU32(uint32(v)) }
func (s *ByteStack) PushI64(v int64) { s.PushU64(uint64(v)) }

func (s *ByteStack) PushF32(v float32) { s.PushU32(math.Float32bits(v)) }
func (s *ByteStack) PushF64(v float64) { s.PushU64(math.Float64bits(v)) }

func (s *ByteStack) PopU8() (uint8, error) {
	b, err := s.PopSlice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *ByteStack) PopU16() (uint16, error) {
	b, err := s.PopSlice(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *ByteStack) PopU32() (uint32, error) {
	b, err := s.PopSlice(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *ByteStack) PopU64() (uint64, error) {
	b, err := s.PopSlice(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *ByteStack) PopI8() (int8, error) {
	v, err := s.PopU8()
	return int8(v), err
}

func (s *ByteStack) PopI16() (int16, error) {
	v, err := s.PopU16()
	return int16(v), err
}

func (s *ByteStack) PopI32() (int32, error) {
	v, err := s.PopU32()
	return int32(v), err
}

func (s *ByteStack) PopI64() (int64, error) {
	v, err := s.PopU64()
	return int64(v), err
}

func (s *ByteStack) PopF32() (float32, error) {
	v, err := s.PopU32()
	return math.Float32frombits(v), err
}

func (s *ByteStack) PopF64() (float64, error) {
	v, err := s.PopU64()
	return math.Float64frombits(v), err
}
