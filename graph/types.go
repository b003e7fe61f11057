package graph

import (
	"github.com/jrsteele09/spamscope/internal/utils"
	"github.com/jrsteele09/spamscope/junk"
)

// UserProfile is the signed-in user as returned by /me. The JSON names are
// Graph's and are kept unchanged towards the host.
type UserProfile struct {
	DisplayName       string  `json:"displayName"`
	Mail              *string `json:"mail"`
	UserPrincipalName *string `json:"userPrincipalName"`
}

// Label is the name shown for the account: mail address, then principal name, then display name.
func (p UserProfile) Label() string {
	return utils.FirstNonEmpty(utils.Value(p.Mail), utils.Value(p.UserPrincipalName), p.DisplayName)
}

type userResponse struct {
	DisplayName       *string `json:"displayName"`
	Mail              *string `json:"mail"`
	UserPrincipalName *string `json:"userPrincipalName"`
}

type messagesResponse struct {
	Value []message `json:"value"`
}

type message struct {
	Subject *string `json:"subject"`
	Sender  *struct {
		EmailAddress *struct {
			Name    *string `json:"name"`
			Address *string `json:"address"`
		} `json:"emailAddress"`
	} `json:"sender"`
	InternetMessageHeaders []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"internetMessageHeaders"`
}

func (m message) toJunk() junk.Message {
	msg := junk.Message{Subject: m.Subject}
	if m.Sender != nil && m.Sender.EmailAddress != nil {
		msg.Sender = &junk.Sender{
			Name:    m.Sender.EmailAddress.Name,
			Address: m.Sender.EmailAddress.Address,
		}
	}
	for _, h := range m.InternetMessageHeaders {
		msg.Headers = append(msg.Headers, junk.Header{Name: h.Name, Value: h.Value})
	}
	return msg
}
