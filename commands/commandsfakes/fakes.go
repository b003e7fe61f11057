package commandsfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/spamscope/commands"
	"github.com/jrsteele09/spamscope/graph"
	"github.com/jrsteele09/spamscope/junk"
	"github.com/jrsteele09/spamscope/mailbox"
)

var (
	_ commands.Authenticator = (*FakeAuthenticator)(nil)
	_ commands.GraphReader   = (*FakeGraphReader)(nil)
	_ commands.MailboxReader = (*FakeMailboxReader)(nil)
)

// FakeAuthenticator returns a fixed token or error and records the client ids it was called with.
type FakeAuthenticator struct {
	Token string
	Err   error

	lock      sync.Mutex
	clientIDs []string
}

func (f *FakeAuthenticator) Login(_ context.Context, clientID string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.clientIDs = append(f.clientIDs, clientID)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Token, nil
}

func (f *FakeAuthenticator) ClientIDs() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.clientIDs...)
}

// FakeGraphReader serves a fixed profile and junk list.
type FakeGraphReader struct {
	Profile *graph.UserProfile
	Emails  []junk.Email
	Err     error

	lock   sync.Mutex
	tokens []string
	limits []int
}

func (f *FakeGraphReader) GetUserProfile(_ context.Context, accessToken string) (*graph.UserProfile, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.tokens = append(f.tokens, accessToken)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Profile, nil
}

func (f *FakeGraphReader) GetJunkMessages(_ context.Context, accessToken string, limit int) ([]junk.Email, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.tokens = append(f.tokens, accessToken)
	f.limits = append(f.limits, limit)
	if f.Err != nil {
		return nil, f.Err
	}
	if limit > 0 && limit < len(f.Emails) {
		return f.Emails[:limit], nil
	}
	return f.Emails, nil
}

// Tokens returns every access token passed in, in call order.
func (f *FakeGraphReader) Tokens() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *FakeGraphReader) Limits() []int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]int(nil), f.limits...)
}

// FakeMailboxReader answers IMAP operations from fixed data.
type FakeMailboxReader struct {
	Senders []string
	Emails  []junk.Email
	Err     error

	lock  sync.Mutex
	creds []mailbox.Credentials
}

func (f *FakeMailboxReader) CheckLogin(_ context.Context, creds mailbox.Credentials) error {
	f.record(creds)
	return f.Err
}

func (f *FakeMailboxReader) FetchJunkSenders(_ context.Context, creds mailbox.Credentials) ([]string, error) {
	f.record(creds)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Senders, nil
}

func (f *FakeMailboxReader) FetchJunkEmails(_ context.Context, creds mailbox.Credentials) ([]junk.Email, error) {
	f.record(creds)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Emails, nil
}

func (f *FakeMailboxReader) Credentials() []mailbox.Credentials {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]mailbox.Credentials(nil), f.creds...)
}

func (f *FakeMailboxReader) record(creds mailbox.Credentials) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.creds = append(f.creds, creds)
}
