package idiv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/idiv"
)

func TestDivUByZero(t *testing.T) {
	require.Equal(t, uint8(math.MaxUint8), idiv.DivU[uint8](5, 0))
	require.Equal(t, uint64(math.MaxUint64), idiv.DivU[uint64](5, 0))
}

func TestRemUByZero(t *testing.T) {
	require.Equal(t, uint8(5), idiv.RemU[uint8](5, 0))
}

func TestDivSByZero(t *testing.T) {
	require.Equal(t, int8(math.MaxInt8), idiv.DivS[int8](5, 0))
	require.Equal(t, int64(math.MaxInt64), idiv.DivS[int64](-5, 0))
}

func TestRemSByZero(t *testing.T) {
	require.Equal(t, int8(-5), idiv.RemS[int8](-5, 0))
}

func TestDivRemOrdinary(t *testing.T) {
	require.Equal(t, uint64(2), idiv.DivU[uint64](7, 3))
	require.Equal(t, uint64(1), idiv.RemU[uint64](7, 3))
	require.Equal(t, int32(-2), idiv.DivS[int32](-7, 3))
}
