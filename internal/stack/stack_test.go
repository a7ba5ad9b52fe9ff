package stack_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/stack"
)

func TestPushPopRoundTrip(t *testing.T) {
	s := stack.New()

	s.PushU8(0xAB)
	v8, err := s.PopU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), v8)

	s.PushU64(1234567890123)
	v64, err := s.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(1234567890123), v64)

	s.PushI32(-42)
	vi32, err := s.PopI32()
	require.NoError(t, err)
	require.Equal(t, int32(-42), vi32)

	s.PushF32(3.5)
	vf32, err := s.PopF32()
	require.NoError(t, err)
	require.Equal(t, float32(3.5), vf32)

	s.PushF64(math.Pi)
	vf64, err := s.PopF64()
	require.NoError(t, err)
	require.Equal(t, math.Pi, vf64)
}

func TestPushSlicePopSlicePreservesOrder(t *testing.T) {
	s := stack.New()
	in := []byte{1, 2, 3, 4}
	s.PushSlice(in)
	out, err := s.PopSlice(4)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestUnderflow(t *testing.T) {
	s := stack.New()
	_, err := s.PopU64()
	require.ErrorIs(t, err, stack.ErrUnderflow)

	s.PushU8(1)
	err = s.RemoveTop(2)
	require.ErrorIs(t, err, stack.ErrUnderflow)
}

func TestLittleEndianEncoding(t *testing.T) {
	s := stack.New()
	s.PushU32(0x01020304)
	b, err := s.PopSlice(4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b)
}

func TestSize(t *testing.T) {
	s := stack.New()
	require.Equal(t, 0, s.Size())
	s.PushU64(1)
	require.Equal(t, 8, s.Size())
}
