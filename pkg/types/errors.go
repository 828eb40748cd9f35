package types

import "fmt"

// ErrorCode identifies a construction-time failure class.
type ErrorCode string

// Construction error codes. Evaluation failures never use these; they travel
// through the (value, error) result of TryEvaluate.
const (
	// S0xxx: syntax errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrNumberOutOfRange  ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrUnexpectedEnd     ErrorCode = "S0104"
	ErrSyntaxError       ErrorCode = "S0201"
	ErrExpectedToken     ErrorCode = "S0202"

	// V0xxx: validation errors
	ErrUnknownFunction   ErrorCode = "V0101"
	ErrArgumentCount     ErrorCode = "V0102"
	ErrArgumentType      ErrorCode = "V0103"
	ErrInvalidArgument   ErrorCode = "V0104"
	ErrInvalidRegex      ErrorCode = "V0105"
	ErrInvalidExpression ErrorCode = "V0106"
)

// Error is a structured construction error raised while parsing or
// validating an expression tree.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new construction error. Use position -1 when the
// error is not tied to source text.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a construction error without a source position.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
