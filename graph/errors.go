package graph

import (
	"fmt"

	errs "github.com/jrsteele09/spamscope/internal/errors"
)

var (
	ErrRequest = fmt.Errorf("graph request failed: %w", errs.ErrNetwork)
	ErrDecode  = fmt.Errorf("graph response not understood: %w", errs.ErrDecode)
)

// RemoteError is a non-success status from Graph. Kind is always errs.ErrRemote.
type RemoteError = errs.StatusError

func remoteError(endpoint string, status int, body string) *RemoteError {
	return &RemoteError{
		Kind:       errs.ErrRemote,
		Op:         "graph " + endpoint,
		StatusCode: status,
		Body:       body,
	}
}
