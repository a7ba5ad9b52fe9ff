// Package ordering implements the machine's four-valued comparison result.
//
// Ordering is semantically equivalent to an optional strict ordering: most
// comparisons produce one of Less, Equal, Greater, but IEEE-754 partial
// comparisons involving NaN (outside of the totalOrder predicate) can produce
// Unordered. The byte encoding (0..3) doubles as the machine's on-stack wire
// format for CMP_* results.
package ordering

import "fmt"

// Ordering is one of Unordered, Less, Equal, or Greater.
type Ordering byte

const (
	Unordered Ordering = 0
	Less      Ordering = 1
	Equal     Ordering = 2
	Greater   Ordering = 3
)

// InvalidByteError reports a byte outside the 0..3 range when decoding an
// Ordering from the stack (e.g. for JMP_* instructions).
type InvalidByteError struct {
	Byte byte
}

func (e InvalidByteError) Error() string {
	return fmt.Sprintf("invalid comparison byte: %d", e.Byte)
}

// FromByte decodes a stack byte into an Ordering, rejecting anything
// outside 0..3.
func FromByte(b byte) (Ordering, error) {
	if b > byte(Greater) {
		return 0, InvalidByteError{Byte: b}
	}
	return Ordering(b), nil
}

// FromCompare builds an Ordering from the usual three-way comparison of two
// totally-ordered values (unsigned/signed integers, or floats compared via
// totalOrder).
func FromCompare[T int | int64 | uint64](a, b T) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// IsEq reports whether the ordering is Equal.
func (o Ordering) IsEq() bool { return o == Equal }

// IsNe reports whether the ordering is anything but Equal, including
// Unordered.
func (o Ordering) IsNe() bool { return o != Equal }

// IsLt reports whether the ordering is Less.
func (o Ordering) IsLt() bool { return o == Less }

// IsGt reports whether the ordering is Greater.
func (o Ordering) IsGt() bool { return o == Greater }

// IsLe reports whether the ordering is anything but Greater (so Less, Equal,
// or Unordered all satisfy it).
func (o Ordering) IsLe() bool { return o != Greater }

// IsGe reports whether the ordering is anything but Less (so Greater, Equal,
// or Unordered all satisfy it).
func (o Ordering) IsGe() bool { return o != Less }

func (o Ordering) String() string {
	switch o {
	case Unordered:
		return "Unordered"
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return fmt.Sprintf("Ordering(%d)", byte(o))
	}
}
