package dispatch

import (
	"errors"
)

// Error codes carried in failed result envelopes.
const (
	CodeUnknownOperation = "UNKNOWN_OPERATION"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeOperationFailed  = "OPERATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnavailable      = "UNAVAILABLE"
)

// Coded is implemented by errors that know their envelope code.
type Coded interface {
	ErrorCode() string
}

// Error attaches an envelope code to an underlying error.
type Error struct {
	Code string
	Err  error
}

// NewError wraps err with code.
func NewError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) ErrorCode() string {
	return e.Code
}

// Classifier maps an error to an envelope code. It returns "" when the error
// is not one it recognizes.
type Classifier func(error) string

// CodeOf returns the code of the first Coded error in err's chain.
func CodeOf(err error) (string, bool) {
	var coded Coded
	if errors.As(err, &coded) && coded.ErrorCode() != "" {
		return coded.ErrorCode(), true
	}
	return "", false
}
