// Package batch parses and evaluates lists of arithmetic expressions.
//
// Two formats are supported. The line format holds one expression per line,
// either prefix ("add 2 3", "/ 10 4") or infix ("2 + 3"); blank lines and
// lines starting with '#' are ignored. The YAML format is a list of mappings
// with op, a and b keys.
package batch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// Expr is a single binary operation.
// AnsA and AnsB mark operands written as "ans"; Evaluate replaces them with
// the last successful result of the batch.
type Expr struct {
	Line int           `json:"line,omitempty" yaml:"-"`
	Op   calculator.Op `json:"op" yaml:"op"`
	A    float64       `json:"a" yaml:"a"`
	B    float64       `json:"b" yaml:"b"`
	AnsA bool          `json:"-" yaml:"-"`
	AnsB bool          `json:"-" yaml:"-"`
}

// String renders the expression in infix form.
func (e Expr) String() string {
	return fmt.Sprintf("%s %s %s",
		calculator.Format(e.A, -1),
		e.Op.Symbol(),
		calculator.Format(e.B, -1))
}

// Outcome is the result of evaluating one expression.
type Outcome struct {
	Expr  Expr
	Value float64
	Err   error
}

// Failed reports whether the evaluation returned an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses a single expression. Both "op a b" and "a op b" are accepted.
// The special operand "ans" is replaced by ans.
func ParseLine(text string, ans float64) (Expr, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Expr{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	opField, aField, bField := fields[0], fields[1], fields[2]
	if !calculator.IsOperator(opField) && calculator.IsOperator(fields[1]) {
		opField, aField = fields[1], fields[0]
	}

	op, err := calculator.ParseOp(opField)
	if err != nil {
		return Expr{}, err
	}
	a, ansA, err := parseOperand(aField, ans)
	if err != nil {
		return Expr{}, err
	}
	b, ansB, err := parseOperand(bField, ans)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Op: op, A: a, B: b, AnsA: ansA, AnsB: ansB}, nil
}

func parseOperand(s string, ans float64) (float64, bool, error) {
	if strings.EqualFold(s, "ans") {
		return ans, true, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", s)
	}
	return v, false, nil
}

// Parse reads line-format expressions from r.
func Parse(r io.Reader) ([]Expr, error) {
	var exprs []Expr
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		expr, err := ParseLine(text, 0)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}
		expr.Line = lineNo
		exprs = append(exprs, expr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return exprs, nil
}

// ParseYAML decodes a YAML list of expressions.
func ParseYAML(data []byte) ([]Expr, error) {
	var exprs []Expr
	if err := yaml.Unmarshal(data, &exprs); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	for i := range exprs {
		exprs[i].Line = i + 1
		if !exprs[i].Op.Valid() {
			return nil, fmt.Errorf("entry %d: missing op", i+1)
		}
	}
	return exprs, nil
}

// IsYAML reports whether path should be parsed as YAML.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads and parses a batch file, choosing the format by extension.
func LoadFile(path string) ([]Expr, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if IsYAML(path) {
		return ParseYAML(data)
	}
	return Parse(bytes.NewReader(data))
}

// Evaluate runs every expression in order. Evaluation errors are recorded on
// the outcome and do not stop the batch. An "ans" operand takes the value of
// the most recent successful expression (0 before the first one); outcomes
// carry the resolved operands.
func Evaluate(exprs []Expr) []Outcome {
	calc := calculator.New()
	outcomes := make([]Outcome, 0, len(exprs))
	for _, e := range exprs {
		if e.AnsA {
			e.A = calc.Result()
		}
		if e.AnsB {
			e.B = calc.Result()
		}
		v, err := calc.Apply(e.Op, e.A, e.B)
		outcomes = append(outcomes, Outcome{Expr: e, Value: v, Err: err})
	}
	return outcomes
}

// Failures counts outcomes with errors.
func Failures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
