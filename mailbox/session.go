package mailbox

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/rs/zerolog"
)

// authResultsSection fetches only the Authentication-Results header lines
// without setting \Seen.
var authResultsSection = &imap.FetchItemBodySection{
	Specifier:    imap.PartSpecifierHeader,
	HeaderFields: []string{"Authentication-Results"},
	Peek:         true,
}

// Session is a connected, not yet authenticated IMAP session.
type Session struct {
	client      *imapclient.Client
	junkFolders []string
	logger      zerolog.Logger
	stop        func() bool
}

// Login authenticates with the plain LOGIN command.
func (s *Session) Login(username, password string) error {
	if err := s.client.Login(username, password).Wait(); err != nil {
		return errs.Join(ErrLoginFailed, err)
	}
	return nil
}

// SelectJunk opens the first junk folder that exists and returns its name
// and message count.
func (s *Session) SelectJunk() (string, uint32, error) {
	var lastErr error
	for _, folder := range s.junkFolders {
		data, err := s.client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait()
		if err == nil {
			s.logger.Debug().Str("folder", folder).Uint32("messages", data.NumMessages).Msg("junk folder selected")
			return folder, data.NumMessages, nil
		}
		s.logger.Debug().Err(err).Str("folder", folder).Msg("junk folder not available")
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("tried %s", strings.Join(s.junkFolders, ", "))
	}
	return "", 0, errs.Join(ErrFolderNotFound, lastErr)
}

// fetchAll fetches every message in the selected folder. Messages that fail to
// collect are skipped; a failure of the command itself is returned.
func (s *Session) fetchAll(withHeaders bool) ([]*imapclient.FetchMessageBuffer, error) {
	var seq imap.SeqSet
	seq.AddRange(1, 0)

	opts := &imap.FetchOptions{Envelope: true}
	if withHeaders {
		opts.BodySection = []*imap.FetchItemBodySection{authResultsSection}
	}

	cmd := s.client.Fetch(seq, opts)
	defer cmd.Close()

	var msgs []*imapclient.FetchMessageBuffer
	for {
		data := cmd.Next()
		if data == nil {
			break
		}
		buf, err := data.Collect()
		if err != nil {
			s.logger.Debug().Err(err).Msg("skipping message")
			continue
		}
		msgs = append(msgs, buf)
	}
	if err := cmd.Close(); err != nil {
		return nil, errs.Join(ErrFetch, err)
	}
	return msgs, nil
}

// Logout ends the session and closes the connection. Errors are ignored:
// the session is being abandoned either way.
func (s *Session) Logout() {
	if err := s.client.Logout().Wait(); err != nil {
		s.logger.Debug().Err(err).Msg("logout")
	}
	s.Close()
}

func (s *Session) Close() {
	s.stop()
	_ = s.client.Close()
}
