package mailbox

import (
	"bytes"

	"github.com/rs/zerolog"
)

// debugWriter traces the raw IMAP exchange. LOGIN lines carry the password
// and are replaced before they reach the log.
type debugWriter struct {
	logger zerolog.Logger
}

func (w debugWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\r\n"), []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if isLoginCommand(line) {
			w.logger.Trace().Str("imap_data", "[LOGIN command redacted]").Msg("imap")
			continue
		}
		w.logger.Trace().Bytes("imap_data", line).Msg("imap")
	}
	return len(p), nil
}

// isLoginCommand matches "<tag> LOGIN ..." in any case.
func isLoginCommand(line []byte) bool {
	fields := bytes.Fields(line)
	return len(fields) >= 2 && bytes.EqualFold(fields[1], []byte("LOGIN"))
}
