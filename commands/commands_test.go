package commands_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/spamscope/commands"
	"github.com/jrsteele09/spamscope/commands/commandsfakes"
	"github.com/jrsteele09/spamscope/graph"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/internal/utils"
	"github.com/jrsteele09/spamscope/junk"
	"github.com/jrsteele09/spamscope/mailbox"
	"github.com/stretchr/testify/require"
)

var sampleEmails = []junk.Email{
	{Subject: "a", SenderName: "A", SenderAddress: "a@mail.deals.example", DKIMDomain: utils.Ptr("mail.deals.example")},
	{Subject: "b", SenderName: "B", SenderAddress: "b@deals.example", SPFDomain: utils.Ptr("bounce.deals.example")},
	{Subject: "c", SenderName: "C", SenderAddress: "c@other.example"},
}

func newCommands() (*commands.Commands, *commandsfakes.FakeAuthenticator, *commandsfakes.FakeGraphReader, *commandsfakes.FakeMailboxReader) {
	a := &commandsfakes.FakeAuthenticator{Token: "token-123"}
	g := &commandsfakes.FakeGraphReader{
		Profile: &graph.UserProfile{DisplayName: "Jane Doe", Mail: utils.Ptr("jane@example.com")},
		Emails:  sampleEmails,
	}
	m := &commandsfakes.FakeMailboxReader{Senders: []string{"x@y.example"}, Emails: sampleEmails[:1]}
	return commands.New(a, g, m), a, g, m
}

func TestLogin(t *testing.T) {
	c, a, _, _ := newCommands()

	tok, err := c.Login(context.Background(), "client-1")
	require.NoError(t, err)
	require.Equal(t, "token-123", tok)
	require.Equal(t, []string{"client-1"}, a.ClientIDs())

	_, err = c.Login(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.Len(t, a.ClientIDs(), 1, "empty client id never reaches the flow")
}

func TestGraphCommands_RequireToken(t *testing.T) {
	c, _, g, _ := newCommands()
	ctx := context.Background()

	_, err := c.GetSpamDomains(ctx, "", 10)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = c.GetUserInfo(ctx, "")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = c.GetDomainReport(ctx, "", 0)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = c.GetSpamDomains(ctx, "tok", -1)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	require.Empty(t, g.Tokens())
}

func TestGetSpamDomains(t *testing.T) {
	c, _, g, _ := newCommands()

	emails, err := c.GetSpamDomains(context.Background(), "tok", 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	require.Equal(t, []int{2}, g.Limits())
	require.Equal(t, []string{"tok"}, g.Tokens())
}

func TestGetUserInfo(t *testing.T) {
	c, _, _, _ := newCommands()

	p, err := c.GetUserInfo(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", p.DisplayName)
	require.Equal(t, "jane@example.com", p.Label())
}

func TestGetDomainReport(t *testing.T) {
	c, _, _, _ := newCommands()

	report, err := c.GetDomainReport(context.Background(), "tok", 0)
	require.NoError(t, err)
	require.Len(t, report.Groups, 2)
	require.Equal(t, "deals.example", report.Groups[0].Domain)
	require.Equal(t, 2, report.Groups[0].Count)
	require.Equal(t, junk.SourceDKIM, report.Groups[0].SourceType)
	require.Equal(t, "other.example", report.Groups[1].Domain)
	require.Equal(t, junk.SourceSender, report.Groups[1].SourceType)

	require.Equal(t, 3, report.Stats.Total)
	require.Equal(t, 2, report.Stats.RootDomains)
	require.Equal(t, 1, report.Stats.DKIMCount)
	require.Equal(t, 1, report.Stats.SPFCount)
}

func TestGetDomainReport_PropagatesErrors(t *testing.T) {
	c, _, g, _ := newCommands()
	g.Err = &graph.RemoteError{Kind: errs.ErrRemote, Op: "graph junk", StatusCode: 401}

	_, err := c.GetDomainReport(context.Background(), "tok", 0)
	var remote *graph.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, 401, remote.StatusCode)
}

func TestIMAPCommands(t *testing.T) {
	c, _, _, m := newCommands()
	ctx := context.Background()
	creds := mailbox.Credentials{Email: "jane@example.com", Password: "p", Server: "imap.example.com"}

	msg, err := c.CheckIMAPLogin(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, commands.LoginSuccessful, msg)

	senders, err := c.GetIMAPJunkSenders(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, []string{"x@y.example"}, senders)

	emails, err := c.GetIMAPJunkEmails(ctx, creds)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	require.Len(t, m.Credentials(), 3)

	m.Err = mailbox.ErrLoginFailed
	_, err = c.CheckIMAPLogin(ctx, creds)
	require.ErrorIs(t, err, mailbox.ErrLoginFailed)
}
