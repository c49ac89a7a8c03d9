package utils

import "errors"

// CustomError carries an HTTP status code alongside the message
type CustomError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *CustomError) Error() string {
	return e.Message
}

// NewCustomError is a helper for building a CustomError
func NewCustomError(statusCode int, message string) *CustomError {
	return &CustomError{StatusCode: statusCode, Message: message}
}

var (
	// ErrMissingElement means an expected element or attribute is absent from the markup.
	ErrMissingElement = errors.New("missing element")
	// ErrMalformedURL means a link does not parse as a fetchable address.
	ErrMalformedURL = errors.New("malformed url")
	// ErrLookupMiss means a nutrition or photo lookup found nothing.
	ErrLookupMiss = errors.New("lookup miss")
	// ErrTransientFetch wraps network timeouts, connection errors and 5xx responses.
	ErrTransientFetch = errors.New("transient fetch failure")
	// ErrSessionUnavailable means no render session could be acquired.
	ErrSessionUnavailable = errors.New("render session unavailable")
)
