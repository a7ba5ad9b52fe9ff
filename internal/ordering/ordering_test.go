package ordering_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/ordering"
)

func TestFromByteRejectsOutOfRange(t *testing.T) {
	_, err := ordering.FromByte(4)
	require.Error(t, err)
	var invalid ordering.InvalidByteError
	require.ErrorAs(t, err, &invalid)
}

func TestFromByteRoundTrip(t *testing.T) {
	for b := byte(0); b <= 3; b++ {
		o, err := ordering.FromByte(b)
		require.NoError(t, err)
		require.Equal(t, b, byte(o))
	}
}

// The predicate table in spec.md §4.1: every predicate against every
// ordering value.
func TestPredicateTable(t *testing.T) {
	cases := []struct {
		o                  ordering.Ordering
		eq, ne, lt, gt, le, ge bool
	}{
		{ordering.Unordered, false, true, false, false, true, true},
		{ordering.Less, false, true, true, false, true, false},
		{ordering.Equal, true, false, false, false, true, true},
		{ordering.Greater, false, true, false, true, false, true},
	}
	for _, c := range cases {
		require.Equal(t, c.eq, c.o.IsEq(), "IsEq(%v)", c.o)
		require.Equal(t, c.ne, c.o.IsNe(), "IsNe(%v)", c.o)
		require.Equal(t, c.lt, c.o.IsLt(), "IsLt(%v)", c.o)
		require.Equal(t, c.gt, c.o.IsGt(), "IsGt(%v)", c.o)
		require.Equal(t, c.le, c.o.IsLe(), "IsLe(%v)", c.o)
		require.Equal(t, c.ge, c.o.IsGe(), "IsGe(%v)", c.o)
	}
}

func TestFromCompare(t *testing.T) {
	require.Equal(t, ordering.Less, ordering.FromCompare(1, 2))
	require.Equal(t, ordering.Equal, ordering.FromCompare(2, 2))
	require.Equal(t, ordering.Greater, ordering.FromCompare(3, 2))
}

func TestTotalOrderNeverUnordered(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, math.Copysign(0, -1), 1, -1}
	for _, a := range values {
		for _, b := range values {
			o := ordering.TotalOrderF64(a, b)
			require.NotEqual(t, ordering.Unordered, o)
		}
	}
}

func TestTotalOrderSignedZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	require.Equal(t, ordering.Less, ordering.TotalOrderF64(negZero, 0))
	require.Equal(t, ordering.Greater, ordering.TotalOrderF64(0, negZero))
}

func TestTotalOrderPositiveNaNIsGreatestFloat64(t *testing.T) {
	nan := math.NaN()
	require.Equal(t, ordering.Greater, ordering.TotalOrderF64(nan, math.Inf(1)))
	require.Equal(t, ordering.Less, ordering.TotalOrderF64(math.Inf(1), nan))
}

func TestTotalOrderF32(t *testing.T) {
	nan := float32(math.NaN())
	require.Equal(t, ordering.Less, ordering.TotalOrderF32(1.0, nan))
	require.Equal(t, ordering.Equal, ordering.TotalOrderF32(2.5, 2.5))
}
