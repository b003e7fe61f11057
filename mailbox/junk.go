package mailbox

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/textproto"
	"github.com/jrsteele09/spamscope/internal/utils"
	"github.com/jrsteele09/spamscope/junk"
)

// CheckLogin verifies that creds can log in, then logs out.
func (c *Client) CheckLogin(ctx context.Context, creds Credentials) (err error) {
	defer func() { c.record("check", creds, err) }()

	s, err := c.login(ctx, creds)
	if err != nil {
		return err
	}
	s.Logout()
	return nil
}

// FetchJunkSenders returns "mailbox@host" of the first From address of every
// junk message, in folder order. An empty folder gives an empty list.
func (c *Client) FetchJunkSenders(ctx context.Context, creds Credentials) (senders []string, err error) {
	defer func() { c.record("senders", creds, err) }()

	senders = []string{}
	err = c.withJunk(ctx, creds, false, func(msgs []*imapclient.FetchMessageBuffer) {
		for _, m := range msgs {
			if m.Envelope == nil || len(m.Envelope.From) == 0 {
				continue
			}
			from := m.Envelope.From[0]
			senders = append(senders, from.Mailbox+"@"+from.Host)
		}
	})
	if err != nil {
		return nil, err
	}
	return senders, nil
}

// FetchJunkEmails returns the same records the Graph path produces, built from
// the envelope and the Authentication-Results header lines.
func (c *Client) FetchJunkEmails(ctx context.Context, creds Credentials) (emails []junk.Email, err error) {
	defer func() { c.record("emails", creds, err) }()

	emails = []junk.Email{}
	err = c.withJunk(ctx, creds, true, func(msgs []*imapclient.FetchMessageBuffer) {
		for _, m := range msgs {
			emails = append(emails, junk.Map(toJunkMessage(m)))
		}
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) withJunk(ctx context.Context, creds Credentials, withHeaders bool, use func([]*imapclient.FetchMessageBuffer)) error {
	s, err := c.login(ctx, creds)
	if err != nil {
		return err
	}
	defer s.Logout()

	_, count, err := s.SelectJunk()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	msgs, err := s.fetchAll(withHeaders)
	if err != nil {
		return err
	}
	use(msgs)
	return nil
}

func toJunkMessage(m *imapclient.FetchMessageBuffer) junk.Message {
	var msg junk.Message
	if env := m.Envelope; env != nil {
		msg.Subject = utils.NonEmpty(env.Subject)
		if len(env.From) > 0 {
			msg.Sender = toSender(env.From[0])
		}
	}
	msg.Headers = parseHeaderSection(m.FindBodySection(authResultsSection))
	return msg
}

func toSender(addr imap.Address) *junk.Sender {
	sender := &junk.Sender{Name: utils.NonEmpty(addr.Name)}
	if addr.Mailbox != "" || addr.Host != "" {
		sender.Address = utils.Ptr(addr.Mailbox + "@" + addr.Host)
	}
	return sender
}

// parseHeaderSection reads a header block into ordered fields. A truncated
// block yields whatever fields were read before the error.
func parseHeaderSection(raw []byte) []junk.Header {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !bytes.HasSuffix(raw, []byte("\r\n\r\n")) && !bytes.HasSuffix(raw, []byte("\n\n")) {
		raw = append(append([]byte(nil), raw...), "\r\n\r\n"...)
	}

	h, _ := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	var headers []junk.Header
	fields := h.Fields()
	for fields.Next() {
		headers = append(headers, junk.Header{
			Name:  fields.Key(),
			Value: unfold(fields.Value()),
		})
	}
	return headers
}

func unfold(v string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r\n", " ", "\n", " ").Replace(v)), " ")
}
