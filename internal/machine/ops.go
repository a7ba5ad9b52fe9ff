package machine

import "stackvm/internal/ordering"

// The helpers below are the Go analogue of the reference implementation's
// macro-generated instruction bodies: one small generic function per
// instruction *shape*, instantiated once per width at the call site inside
// execute's switch. This keeps the 40-plus width-parameterised opcodes from
// turning into 40-plus near-identical hand-written arms.

func unaryOp[T any](pop func() (T, error), push func(T), f func(T) T) error {
	v, err := pop()
	if err != nil {
		return err
	}
	push(f(v))
	return nil
}

func binaryOp[T any](pop func() (T, error), push func(T), f func(a, b T) T) error {
	a, err := pop()
	if err != nil {
		return err
	}
	b, err := pop()
	if err != nil {
		return err
	}
	push(f(a, b))
	return nil
}

func shiftOp[T any](popVal func() (T, error), popCount func() (uint8, error), push func(T), f func(T, uint8) T) error {
	v, err := popVal()
	if err != nil {
		return err
	}
	n, err := popCount()
	if err != nil {
		return err
	}
	push(f(v, n))
	return nil
}

// divRemOp implements DIV_REM_{U,S}_W. The top of stack (popped first) is
// the divisor; the value below it (popped second) is the dividend — this
// is the pop order that reproduces spec scenario 2 (PSH 7, PSH 3,
// DIV_REM_U_8 -> quotient 2, remainder 1, i.e. 7 / 3) and scenario 3
// (PSH 10, PSH 0 -> quotient u64::MAX, remainder 10).
func divRemOp[T any](pop func() (T, error), push func(T), div, rem func(dividend, divisor T) T) error {
	divisor, err := pop()
	if err != nil {
		return err
	}
	dividend, err := pop()
	if err != nil {
		return err
	}
	push(div(dividend, divisor))
	push(rem(dividend, divisor))
	return nil
}

func compareOp[T any](pop func() (T, error), push func(uint8), cmp func(a, b T) ordering.Ordering) error {
	a, err := pop()
	if err != nil {
		return err
	}
	b, err := pop()
	if err != nil {
		return err
	}
	push(byte(cmp(a, b)))
	return nil
}

func convertOp[From, To any](pop func() (From, error), push func(To), f func(From) To) error {
	v, err := pop()
	if err != nil {
		return err
	}
	push(f(v))
	return nil
}
