// Package calculator provides basic arithmetic operations.
package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when a caller-supplied value is outside
// an operation's domain.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDivideByZero is returned by Divide when the divisor is zero.
// It satisfies errors.Is(err, ErrInvalidArgument).
var ErrDivideByZero = &argumentError{msg: "cannot divide by zero"}

type argumentError struct {
	msg string
}

func (e *argumentError) Error() string { return e.msg }

func (e *argumentError) Unwrap() error { return ErrInvalidArgument }

// Add returns the sum of a and b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns a minus b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns a times b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns a divided by b.
// Returns ErrDivideByZero if b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Power returns base raised to exponent with math.Pow semantics.
func Power(base, exponent float64) float64 {
	return math.Pow(base, exponent)
}

// Eval applies op to a and b.
func Eval(op Op, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return Add(a, b), nil
	case OpSubtract:
		return Subtract(a, b), nil
	case OpMultiply:
		return Multiply(a, b), nil
	case OpDivide:
		return Divide(a, b)
	case OpPower:
		return Power(a, b), nil
	default:
		return 0, fmt.Errorf("unknown operation %d: %w", int(op), ErrInvalidArgument)
	}
}
