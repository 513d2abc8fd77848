package server

import (
	"errors"
	"math"
	"strconv"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// Error codes carried in Response.Code.
const (
	CodeBadRequest      = "bad_request"
	CodeInvalidArgument = "invalid_argument"
	CodeRateLimited     = "rate_limited"
)

// ErrRateLimited is returned when a connection exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// Request asks the server to evaluate one operation.
type Request struct {
	ID string  `json:"id,omitempty"`
	Op string  `json:"op"`
	A  float64 `json:"a"`
	B  float64 `json:"b"`
}

// Response answers a Request. Result is omitted for non-finite values,
// which JSON cannot carry; Text always holds the formatted value on success.
type Response struct {
	ID     string   `json:"id,omitempty"`
	Result *float64 `json:"result,omitempty"`
	Text   string   `json:"text,omitempty"`
	Error  string   `json:"error,omitempty"`
	Code   string   `json:"code,omitempty"`
}

func resultResponse(id string, v float64) Response {
	resp := Response{ID: id, Text: calculator.Format(v, -1)}
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		resp.Result = &v
	}
	return resp
}

func errorResponse(id, code string, err error) Response {
	return Response{ID: id, Error: err.Error(), Code: code}
}

// Value returns the numeric result carried by the response.
func (r Response) Value() (float64, error) {
	if r.Error != "" {
		return 0, &RemoteError{Code: r.Code, Message: r.Error}
	}
	if r.Result != nil {
		return *r.Result, nil
	}
	v, err := strconv.ParseFloat(r.Text, 64)
	if err != nil {
		return 0, errors.New("response carries no result")
	}
	return v, nil
}

// RemoteError is an evaluation error reported by the server.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap maps the remote error back onto local sentinels so errors.Is works
// the same for local and remote evaluation.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.Message == calculator.ErrDivideByZero.Error():
		return calculator.ErrDivideByZero
	case e.Code == CodeInvalidArgument:
		return calculator.ErrInvalidArgument
	case e.Code == CodeRateLimited:
		return ErrRateLimited
	}
	return nil
}
