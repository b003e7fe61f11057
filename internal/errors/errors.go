package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by every component. Component errors wrap one of these
// so callers (and the HTTP layer) can classify a failure without knowing
// which component produced it.
var (
	// ErrConfig is a malformed static setting such as an endpoint URL
	ErrConfig = errors.New("configuration error")

	// ErrNetwork is a transport failure: dial, bind, read or write
	ErrNetwork = errors.New("network error")

	// ErrProtocol is a peer that spoke the wrong protocol: bad HTTP line, TLS handshake failure
	ErrProtocol = errors.New("protocol error")

	// ErrAuthRejected is a provider or server refusing the credentials or grant
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrDecode is a response body that does not have the expected shape
	ErrDecode = errors.New("decode error")

	// ErrNotFound is an expected item that is missing (code parameter, junk folder)
	ErrNotFound = errors.New("not found")

	// ErrRemote is a remote API answering with a non-success status
	ErrRemote = errors.New("remote service error")

	// ErrInvalidArgument is a caller supplied value that cannot be used
	ErrInvalidArgument = errors.New("invalid argument")
)

// StatusError carries the HTTP status returned by a remote endpoint.
type StatusError struct {
	Kind       error
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

// Join attaches cause to the sentinel so that both match errors.Is.
func Join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Kind returns the first shared error kind found in err's chain, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrInvalidArgument,
		ErrConfig,
		ErrAuthRejected,
		ErrNotFound,
		ErrDecode,
		ErrProtocol,
		ErrRemote,
		ErrNetwork,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
