package machine_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/asm"
	"stackvm/internal/machine"
	"stackvm/internal/stack"
)

func newMachine(t *testing.T, source string) *machine.Machine {
	t.Helper()
	code, err := asm.Assemble(source)
	require.NoError(t, err)
	return machine.New(bytes.NewReader(code), stack.New())
}

// Scenario 1: 1.0 + 1.0 == 2.0, converted to an unsigned integer.
func TestScenarioAddFloatThenConvert(t *testing.T) {
	m := newMachine(t, `
		PSH_8 1.0
		PSH_8 1.0
		ADD_F_8
		CNV_F8_U8
	`)
	require.NoError(t, m.Run())

	v, err := m.Stack.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(2), v)
}

// Scenario 2: DIV_REM_U_8 on (7, 3) leaves quotient 2 below remainder 1.
func TestScenarioDivRemBasic(t *testing.T) {
	m := newMachine(t, `
		PSH_8 7
		PSH_8 3
		DIV_REM_U_8
	`)
	require.NoError(t, m.Run())

	remainder, err := m.Stack.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(1), remainder)

	quotient, err := m.Stack.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(2), quotient)
}

// Scenario 3: division by zero is total, not a trap.
func TestScenarioDivRemByZero(t *testing.T) {
	m := newMachine(t, `
		PSH_8 10
		PSH_8 0
		DIV_REM_U_8
	`)
	require.NoError(t, m.Run())

	remainder, err := m.Stack.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(10), remainder)

	quotient, err := m.Stack.PopU64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), quotient)
}

// Scenario 4: a freshly allocated object's data region reads back as
// zero bytes, and the two ALLOC lengths bind to children/data in the
// order the worked example implies (not the order spec.md's prose names
// them in).
func TestScenarioAllocAndReadZeroedData(t *testing.T) {
	m := newMachine(t, `
		PSH_8 0
		PSH_8 0
		PSH_8 4
		ALLOC
		MOV_HP_ST_4
	`)
	require.NoError(t, m.Run())

	data, err := m.Stack.PopSlice(4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, data)
}

// Scenario 5: CMP_F8 under totalOrder(a, b) with a=1.0 (popped first,
// i.e. pushed last) and b=NaN yields Less, since positive NaN sorts
// above +Inf under totalOrder.
func TestScenarioCompareNaN(t *testing.T) {
	// NaN isn't representable through the assembler's literal syntax;
	// build the bytecode directly.
	nan := math.Float64bits(math.NaN())
	one := math.Float64bits(1.0)
	code := []byte{}
	push8 := func(v uint64) {
		code = append(code, byte(3)) // PSH_8
		for i := 0; i < 8; i++ {
			code = append(code, byte(v>>(8*i)))
		}
	}
	push8(nan)
	push8(one)
	code = append(code, byte(37)) // CMP_F8

	mm := machine.New(bytes.NewReader(code), stack.New())
	require.NoError(t, mm.Run())

	result, err := mm.Stack.PopU8()
	require.NoError(t, err)
	require.Equal(t, uint8(1), result) // Less
}

// Scenario 6 (the reference-cycle collection property) is exercised in
// internal/heap, where it belongs: it is a heap invariant, not a
// bytecode-encoding concern, and the minimal instruction set has no
// stack-reordering primitive (no swap/dig) that would let straight-line
// bytecode wire up a two-object cycle without auxiliary scratch storage.
