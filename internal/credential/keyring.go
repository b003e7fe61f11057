// Package credential keeps IMAP passwords in the operating system keyring.
// Access tokens are never stored.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
	errs "github.com/jrsteele09/spamscope/internal/errors"
)

const serviceName = "spamscope"

// ErrNotStored is returned when no password is saved for an account.
var ErrNotStored = fmt.Errorf("no stored password: %w", errs.ErrNotFound)

// Store reads and writes IMAP passwords keyed by server and email address.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the first available system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/spamscope/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("spamscope-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Key is the keyring entry name for an account on a server.
func Key(server, email string) string {
	return "imap:" + strings.ToLower(email) + "@" + strings.ToLower(server)
}

// Get returns the password saved for email on server.
func (s *Store) Get(server, email string) (string, error) {
	key := Key(server, email)
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotStored
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set saves password for email on server, replacing any previous value.
func (s *Store) Set(server, email, password string) error {
	if email == "" || server == "" {
		return fmt.Errorf("%w: server and email are required", errs.ErrInvalidArgument)
	}
	key := Key(server, email)
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(password),
		Label:       "Spam Scope IMAP password",
		Description: email,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes the saved password. Deleting a missing entry is not an error.
func (s *Store) Delete(server, email string) error {
	key := Key(server, email)
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
