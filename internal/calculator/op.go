package calculator

import (
	"fmt"
	"strings"
)

// Op identifies one of the arithmetic operations.
type Op int

const (
	OpAdd Op = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
)

// Ops lists every operation in display order.
var Ops = []Op{OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower}

var opNames = map[Op]string{
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
	OpPower:    "power",
}

var opSymbols = map[Op]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpPower:    "^",
}

var opAliases = map[string]Op{
	"add":      OpAdd,
	"plus":     OpAdd,
	"+":        OpAdd,
	"subtract": OpSubtract,
	"sub":      OpSubtract,
	"minus":    OpSubtract,
	"-":        OpSubtract,
	"multiply": OpMultiply,
	"mul":      OpMultiply,
	"times":    OpMultiply,
	"*":        OpMultiply,
	"x":        OpMultiply,
	"divide":   OpDivide,
	"div":      OpDivide,
	"/":        OpDivide,
	"power":    OpPower,
	"pow":      OpPower,
	"^":        OpPower,
	"**":       OpPower,
}

// String returns the canonical name of the operation.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Symbol returns the infix symbol of the operation.
func (o Op) Symbol() string {
	if sym, ok := opSymbols[o]; ok {
		return sym
	}
	return "?"
}

// Valid reports whether o is one of the defined operations.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// ParseOp resolves an operation name, alias or symbol (case-insensitive).
func ParseOp(s string) (Op, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if op, ok := opAliases[key]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("unknown operator %q: %w", s, ErrInvalidArgument)
}

// IsOperator reports whether s parses as an operation.
func IsOperator(s string) bool {
	_, err := ParseOp(s)
	return err == nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("unknown operation %d: %w", int(o), ErrInvalidArgument)
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	op, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
