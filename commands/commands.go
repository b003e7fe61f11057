// Package commands is the operation surface offered to the host UI. Every
// entry point validates its arguments and delegates to the component that
// owns the work.
package commands

import (
	"context"
	"fmt"

	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/graph"
	"github.com/jrsteele09/spamscope/junk"
	"github.com/jrsteele09/spamscope/mailbox"
)

// LoginSuccessful is the message returned by CheckIMAPLogin.
const LoginSuccessful = "Login successful"

// Authenticator runs the interactive OAuth2 login.
type Authenticator interface {
	Login(ctx context.Context, clientID string) (string, error)
}

// GraphReader reads the signed in user's profile and junk folder.
type GraphReader interface {
	GetUserProfile(ctx context.Context, accessToken string) (*graph.UserProfile, error)
	GetJunkMessages(ctx context.Context, accessToken string, limit int) ([]junk.Email, error)
}

// MailboxReader reads junk folders over IMAP.
type MailboxReader interface {
	CheckLogin(ctx context.Context, creds mailbox.Credentials) error
	FetchJunkSenders(ctx context.Context, creds mailbox.Credentials) ([]string, error)
	FetchJunkEmails(ctx context.Context, creds mailbox.Credentials) ([]junk.Email, error)
}

// Report is the junk folder grouped by origin domain.
type Report struct {
	Groups []junk.DomainGroup `json:"groups"`
	Stats  junk.Stats         `json:"stats"`
}

type Commands struct {
	auth    Authenticator
	graph   GraphReader
	mailbox MailboxReader
}

func New(auth Authenticator, graph GraphReader, mailbox MailboxReader) *Commands {
	return &Commands{
		auth:    auth,
		graph:   graph,
		mailbox: mailbox,
	}
}

// Login runs the browser based login and returns the access token.
func (c *Commands) Login(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("%w: client id is required", errs.ErrInvalidArgument)
	}
	return c.auth.Login(ctx, clientID)
}

// GetSpamDomains returns the junk folder as display records. A limit of zero
// uses the configured page size.
func (c *Commands) GetSpamDomains(ctx context.Context, accessToken string, limit int) ([]junk.Email, error) {
	if err := requireToken(accessToken); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", errs.ErrInvalidArgument)
	}
	return c.graph.GetJunkMessages(ctx, accessToken, limit)
}

func (c *Commands) GetUserInfo(ctx context.Context, accessToken string) (*graph.UserProfile, error) {
	if err := requireToken(accessToken); err != nil {
		return nil, err
	}
	return c.graph.GetUserProfile(ctx, accessToken)
}

// GetDomainReport fetches the junk folder and groups it by origin root domain.
func (c *Commands) GetDomainReport(ctx context.Context, accessToken string, limit int) (*Report, error) {
	emails, err := c.GetSpamDomains(ctx, accessToken, limit)
	if err != nil {
		return nil, err
	}
	return NewReport(emails), nil
}

// NewReport groups emails and summarises the groups.
func NewReport(emails []junk.Email) *Report {
	groups := junk.Group(emails)
	return &Report{
		Groups: groups,
		Stats:  junk.Summarize(emails, groups),
	}
}

func (c *Commands) CheckIMAPLogin(ctx context.Context, creds mailbox.Credentials) (string, error) {
	if err := c.mailbox.CheckLogin(ctx, creds); err != nil {
		return "", err
	}
	return LoginSuccessful, nil
}

func (c *Commands) GetIMAPJunkSenders(ctx context.Context, creds mailbox.Credentials) ([]string, error) {
	return c.mailbox.FetchJunkSenders(ctx, creds)
}

func (c *Commands) GetIMAPJunkEmails(ctx context.Context, creds mailbox.Credentials) ([]junk.Email, error) {
	return c.mailbox.FetchJunkEmails(ctx, creds)
}

func requireToken(accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("%w: access token is required", errs.ErrInvalidArgument)
	}
	return nil
}
