package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/jrsteele09/spamscope/internal/credential"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store := credential.NewStore(keyring.NewArrayKeyring(nil))

	_, err := store.Get("imap.example.com", "jane@example.com")
	require.ErrorIs(t, err, credential.ErrNotStored)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, store.Set("imap.example.com", "jane@example.com", "first"))
	require.NoError(t, store.Set("IMAP.example.com", "Jane@Example.com", "second"))

	password, err := store.Get("imap.example.com", "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "second", password)

	require.NoError(t, store.Delete("imap.example.com", "jane@example.com"))
	_, err = store.Get("imap.example.com", "jane@example.com")
	require.ErrorIs(t, err, credential.ErrNotStored)

	require.NoError(t, store.Delete("imap.example.com", "jane@example.com"))
}

func TestStore_SetRequiresAccount(t *testing.T) {
	store := credential.NewStore(keyring.NewArrayKeyring(nil))
	require.ErrorIs(t, store.Set("", "jane@example.com", "p"), errs.ErrInvalidArgument)
	require.ErrorIs(t, store.Set("imap.example.com", "", "p"), errs.ErrInvalidArgument)
}

func TestKey(t *testing.T) {
	require.Equal(t, "imap:jane@example.com@imap.example.com", credential.Key("IMAP.Example.com", "JANE@example.com"))
}
