package mailbox

import (
	"fmt"

	errs "github.com/jrsteele09/spamscope/internal/errors"
)

var (
	ErrConnect        = fmt.Errorf("imap connection failed: %w", errs.ErrNetwork)
	ErrTLS            = fmt.Errorf("imap tls handshake failed: %w", errs.ErrProtocol)
	ErrCapabilities   = fmt.Errorf("imap capability request failed: %w", errs.ErrProtocol)
	ErrLoginDisabled  = fmt.Errorf("server disables LOGIN, the account likely requires OAuth2: %w", errs.ErrAuthRejected)
	ErrLoginFailed    = fmt.Errorf("imap login failed: %w", errs.ErrAuthRejected)
	ErrFolderNotFound = fmt.Errorf("could not open junk folder: %w", errs.ErrNotFound)
	ErrFetch          = fmt.Errorf("imap fetch failed: %w", errs.ErrProtocol)
)
