package instr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/instr"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []instr.Instruction{
		{Op: instr.PSH1, Immediate: []byte{0x42}},
		{Op: instr.PSH8, Immediate: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{Op: instr.ADD8},
		{Op: instr.CALLEXT},
	}
	for _, want := range cases {
		encoded := instr.Encode(want)
		got, err := instr.Decode(bytes.NewReader(encoded))
		require.NoError(t, err)
		require.Equal(t, want.Op, got.Op)
		require.Equal(t, want.Immediate, got.Immediate)
		require.Equal(t, encoded, instr.Encode(got))
	}
}

func TestDecodeEndOfInstructions(t *testing.T) {
	_, err := instr.Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, instr.ErrEndOfInstructions)
}

func TestDecodeIncompleteInstruction(t *testing.T) {
	// PSH_8's discriminant with only 2 of 8 payload bytes present.
	_, err := instr.Decode(bytes.NewReader([]byte{byte(instr.PSH8), 1, 2}))
	var incomplete instr.IncompleteInstructionError
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, byte(instr.PSH8), incomplete.Disc)
}

func TestDecodeUnknownInstruction(t *testing.T) {
	_, err := instr.Decode(bytes.NewReader([]byte{0xFF}))
	var unknown instr.UnknownInstructionError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte(0xFF), unknown.Byte)
}

func TestOpcodeStringAndLookup(t *testing.T) {
	require.Equal(t, "DIV_REM_U_8", instr.DIVREMU8.String())
	op, ok := instr.Lookup("DIV_REM_U_8")
	require.True(t, ok)
	require.Equal(t, instr.DIVREMU8, op)

	_, ok = instr.Lookup("NOT_A_MNEMONIC")
	require.False(t, ok)
}

func TestImmediateLen(t *testing.T) {
	require.Equal(t, 1, instr.PSH1.ImmediateLen())
	require.Equal(t, 2, instr.PSH2.ImmediateLen())
	require.Equal(t, 4, instr.PSH4.ImmediateLen())
	require.Equal(t, 8, instr.PSH8.ImmediateLen())
	require.Equal(t, 0, instr.ADD8.ImmediateLen())
}
