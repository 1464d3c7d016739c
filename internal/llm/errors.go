package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// UnavailableError means the inference endpoint could not be reached.
type UnavailableError struct {
	Provider string
	Endpoint string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s endpoint %s unreachable: %v", e.Provider, e.Endpoint, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TimeoutError means no response arrived within the client's bounded wait.
type TimeoutError struct {
	Provider string
	After    time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out after %s: %v", e.Provider, e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ProtocolError means the endpoint answered, but with a non-success status
// or a body missing the expected fields.
type ProtocolError struct {
	Provider   string
	StatusCode int // 0 when the status was fine but the body was not
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s api status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s malformed response: %v", e.Provider, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// errMalformed builds a ProtocolError for a 2xx response with a bad body.
func errMalformed(provider, format string, args ...any) error {
	return &ProtocolError{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Classify maps a transport error to one of the typed errors. Errors that
// are already typed, and context cancellation, pass through unchanged.
// Anything that is neither a timeout nor a transport failure is treated as
// a protocol problem, since the server must have answered.
func Classify(provider, endpoint string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}

	var (
		unavailable *UnavailableError
		timedOut    *TimeoutError
		protocol    *ProtocolError
	)
	if errors.As(err, &unavailable) || errors.As(err, &timedOut) || errors.As(err, &protocol) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, After: timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Provider: provider, After: timeout, Err: err}
	}

	var (
		urlErr *url.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr) {
		return &UnavailableError{Provider: provider, Endpoint: endpoint, Err: err}
	}

	return &ProtocolError{Provider: provider, Err: err}
}
