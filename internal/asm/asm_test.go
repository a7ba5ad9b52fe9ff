package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/asm"
	"stackvm/internal/instr"
)

func TestAssembleLiterals(t *testing.T) {
	code, err := asm.Assemble(`
		; push 7 then 3, divide
		PSH_8 7
		PSH_8 3
		DIV_REM_U_8
	`)
	require.NoError(t, err)
	require.Equal(t, []byte{
		byte(instr.PSH8), 7, 0, 0, 0, 0, 0, 0, 0,
		byte(instr.PSH8), 3, 0, 0, 0, 0, 0, 0, 0,
		byte(instr.DIVREMU8),
	}, code)
}

func TestAssembleHexAndNegative(t *testing.T) {
	code, err := asm.Assemble("PSH_1 0xff\nPSH_1 -1\n")
	require.NoError(t, err)
	require.Equal(t, []byte{byte(instr.PSH1), 0xff, byte(instr.PSH1), 0xff}, code)
}

func TestAssembleFloat(t *testing.T) {
	code, err := asm.Assemble("PSH_4 3.5\nPSH_8 1.0\n")
	require.NoError(t, err)
	require.Len(t, code, (1+4)+(1+8))
}

func TestAssembleLabel(t *testing.T) {
	code, err := asm.Assemble(`
		start:
		PSH_8 0
		PSH_8 start
		JSR
	`)
	require.NoError(t, err)

	dis, err := asm.Disassemble(code)
	require.NoError(t, err)
	require.Contains(t, dis, "PSH_8")
	require.Contains(t, dis, "JSR")
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := asm.Assemble("NOT_A_REAL_OP")
	require.Error(t, err)
	var unk asm.UnknownMnemonicError
	require.ErrorAs(t, err, &unk)
}

func TestAssembleMissingOperand(t *testing.T) {
	_, err := asm.Assemble("PSH_8")
	require.Error(t, err)
}

func TestAssembleStrayOperand(t *testing.T) {
	_, err := asm.Assemble("ADD_8 1")
	require.Error(t, err)
}

func TestDisassembleRoundTrip(t *testing.T) {
	code, err := asm.Assemble("PSH_8 1\nPSH_8 1\nADD_F_8\n")
	require.NoError(t, err)

	dis, err := asm.Disassemble(code)
	require.NoError(t, err)
	require.Contains(t, dis, "00000000")
	require.Contains(t, dis, "ADD_F_8")
}
