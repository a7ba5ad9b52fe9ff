package ordering

import "math"

// totalOrderKey32/64 map an IEEE-754 bit pattern onto a signed integer whose
// ordinary (<, ==, >) comparison matches the IEEE-754 2008 totalOrder
// predicate: all floats, including signed zeros and every NaN payload,
// become comparable and no pair is Unordered.
//
// The transform flips the mantissa+exponent bits when the sign bit is set
// (so larger magnitude negatives sort smaller) and leaves the bits unchanged
// otherwise; read as signed integers, negatives stay below zero and
// positives above it, so comparing the results reproduces totalOrder.
func totalOrderKey64(bits uint64) int64 {
	key := int64(bits)
	key ^= int64(uint64(key>>63) >> 1)
	return key
}

func totalOrderKey32(bits uint32) int32 {
	key := int32(bits)
	key ^= int32(uint32(key>>31) >> 1)
	return key
}

// TotalOrderF64 computes totalOrder(a, b) per IEEE-754 2008, always
// returning Less, Equal, or Greater — never Unordered.
func TotalOrderF64(a, b float64) Ordering {
	return FromCompare(totalOrderKey64(math.Float64bits(a)), totalOrderKey64(math.Float64bits(b)))
}

// TotalOrderF32 computes totalOrder(a, b) per IEEE-754 2008, always
// returning Less, Equal, or Greater — never Unordered.
func TotalOrderF32(a, b float32) Ordering {
	ka := int64(totalOrderKey32(math.Float32bits(a)))
	kb := int64(totalOrderKey32(math.Float32bits(b)))
	return FromCompare(ka, kb)
}
