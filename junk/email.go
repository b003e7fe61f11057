// Package junk turns fetched junk-folder messages into flat display records
// and aggregates them by the domain they claim to originate from.
package junk

import (
	"strings"

	"github.com/jrsteele09/spamscope/domain"
	"github.com/jrsteele09/spamscope/internal/utils"
)

const (
	NoSubject     = "(No Subject)"
	UnknownSender = "Unknown"

	authenticationResults = "Authentication-Results"
)

// Email is the display record derived from one fetched message.
type Email struct {
	Subject       string  `json:"subject"`
	SenderName    string  `json:"sender_name"`
	SenderAddress string  `json:"sender_address"`
	SPFDomain     *string `json:"spf_domain,omitempty"`
	DKIMDomain    *string `json:"dkim_domain,omitempty"`
}

// Message is the provider independent view of a fetched message. Every field may be missing.
type Message struct {
	Subject *string
	Sender  *Sender
	Headers []Header
}

type Sender struct {
	Name    *string
	Address *string
}

type Header struct {
	Name  string
	Value string
}

// Map builds the display record for msg. It never fails: missing values fall
// back to placeholders and unusable headers leave the domains empty.
func Map(msg Message) Email {
	e := Email{
		Subject:       utils.ValueOr(msg.Subject, NoSubject),
		SenderName:    UnknownSender,
		SenderAddress: UnknownSender,
	}
	if msg.Sender != nil {
		e.SenderName = utils.ValueOr(msg.Sender.Name, UnknownSender)
		e.SenderAddress = utils.ValueOr(msg.Sender.Address, UnknownSender)
	}

	for _, h := range msg.Headers {
		if !strings.EqualFold(h.Name, authenticationResults) {
			continue
		}
		if e.SPFDomain == nil {
			if d, ok := domain.ExtractSPFDomain(h.Value); ok {
				e.SPFDomain = utils.Ptr(d)
			}
		}
		if e.DKIMDomain == nil {
			if d, ok := domain.ExtractDKIMDomain(h.Value); ok {
				e.DKIMDomain = utils.Ptr(d)
			}
		}
		if e.SPFDomain != nil && e.DKIMDomain != nil {
			break
		}
	}
	return e
}
