// Package idiv extends integer division and remainder to total functions
// by defining a policy for division by zero, so the interpreter never has
// to trap on DIV_REM_*.
package idiv

import "math"

// Unsigned is implemented for every unsigned width the machine supports.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Signed is implemented for every signed width the machine supports.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// DivU returns a/b, or the all-ones maximum value of T when b is zero.
func DivU[T Unsigned](a, b T) T {
	if b == 0 {
		return ^T(0)
	}
	return a / b
}

// RemU returns a%b, or a unchanged when b is zero.
func RemU[T Unsigned](a, b T) T {
	if b == 0 {
		return a
	}
	return a % b
}

// DivS returns a/b, or the maximum representable value of T when b is zero.
func DivS[T Signed](a, b T) T {
	if b == 0 {
		return maxSigned[T]()
	}
	return a / b
}

// RemS returns a%b, or a unchanged when b is zero.
func RemS[T Signed](a, b T) T {
	if b == 0 {
		return a
	}
	return a % b
}

func maxSigned[T Signed]() T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return T(math.MaxInt8)
	case int16:
		return T(math.MaxInt16)
	case int32:
		return T(math.MaxInt32)
	case int64:
		return T(math.MaxInt64)
	default:
		panic("idiv: unsupported signed width")
	}
}
