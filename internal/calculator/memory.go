package calculator

// Calculator evaluates operations and remembers the last successful result.
// The zero value is ready to use. A Calculator is not safe for concurrent use.
type Calculator struct {
	result float64
}

// New returns a Calculator with a zero result.
func New() *Calculator {
	return &Calculator{}
}

// Apply evaluates op and stores the value on success.
// A failed evaluation leaves the stored result unchanged.
func (c *Calculator) Apply(op Op, a, b float64) (float64, error) {
	v, err := Eval(op, a, b)
	if err != nil {
		return 0, err
	}
	c.result = v
	return v, nil
}

// Result returns the last successful result.
func (c *Calculator) Result() float64 {
	return c.result
}

// Reset clears the stored result.
func (c *Calculator) Reset() {
	c.result = 0
}
