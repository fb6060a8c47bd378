package webapi

import (
	"errors"
	"fmt"
)

// TransportError reports a request that never produced an HTTP response:
// connection failures, timeouts and cancelled waits.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status: %d", e.Method, e.Path, e.Status)
}

// ClientError reports whether the status is in the 4xx range
func (e *StatusError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// SchemaError reports a response body that does not match the expected shape
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsClientError reports whether err carries a 4xx StatusError
func IsClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.ClientError()
}
