package junk

import (
	"sort"
	"strings"
)

// SourceType names the evidence an origin domain was taken from.
type SourceType string

const (
	SourceDKIM   SourceType = "DKIM"
	SourceSPF    SourceType = "SPF"
	SourceSender SourceType = "Sender"
)

// sampleLimit is the number of emails kept per group for display.
const sampleLimit = 5

type DomainGroup struct {
	Domain     string     `json:"domain"`
	Count      int        `json:"count"`
	SourceType SourceType `json:"source_type"`
	Emails     []Email    `json:"emails"`
}

type TopSender struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

type Stats struct {
	Total       int        `json:"total"`
	RootDomains int        `json:"root_domains"`
	DKIMCount   int        `json:"dkim_count"`
	SPFCount    int        `json:"spf_count"`
	DKIMRatio   float64    `json:"dkim_ratio"`
	SPFRatio    float64    `json:"spf_ratio"`
	TopDomain   string     `json:"top_domain,omitempty"`
	TopSender   *TopSender `json:"top_sender,omitempty"`
}

// Origin picks the domain an email most credibly came from: the DKIM signing
// domain, then the SPF domain, then the domain of the sender address.
// A recorded value of "none" counts as missing.
func Origin(e Email) (string, SourceType) {
	if d, ok := present(e.DKIMDomain); ok {
		return strings.ToLower(d), SourceDKIM
	}
	if d, ok := present(e.SPFDomain); ok {
		return strings.ToLower(d), SourceSPF
	}
	addr := e.SenderAddress
	if at := strings.LastIndexByte(addr, '@'); at >= 0 {
		addr = addr[at+1:]
	}
	return strings.ToLower(addr), SourceSender
}

// RootDomain keeps the last two labels of d. Multi-label public suffixes such
// as co.uk collapse to the suffix itself.
func RootDomain(d string) string {
	parts := strings.Split(d, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return d
}

// Group buckets emails by the root of their origin domain, largest group
// first. A group takes the source type of the first email placed in it.
func Group(emails []Email) []DomainGroup {
	index := make(map[string]int)
	var groups []DomainGroup

	for _, e := range emails {
		origin, source := Origin(e)
		root := RootDomain(origin)

		i, ok := index[root]
		if !ok {
			i = len(groups)
			index[root] = i
			groups = append(groups, DomainGroup{Domain: root, SourceType: source})
		}
		g := &groups[i]
		g.Count++
		if len(g.Emails) < sampleLimit {
			g.Emails = append(g.Emails, e)
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Count != groups[b].Count {
			return groups[a].Count > groups[b].Count
		}
		return groups[a].Domain < groups[b].Domain
	})
	return groups
}

// Summarize computes the pass ratios and top entries shown next to the groups.
func Summarize(emails []Email, groups []DomainGroup) Stats {
	s := Stats{Total: len(emails), RootDomains: len(groups)}
	if len(groups) > 0 {
		s.TopDomain = groups[0].Domain
	}
	if s.Total == 0 {
		return s
	}

	senders := make(map[string]int)
	for _, e := range emails {
		if _, ok := present(e.DKIMDomain); ok {
			s.DKIMCount++
		}
		if _, ok := present(e.SPFDomain); ok {
			s.SPFCount++
		}
		senders[strings.ToLower(e.SenderAddress)]++
	}
	s.DKIMRatio = float64(s.DKIMCount) / float64(s.Total)
	s.SPFRatio = float64(s.SPFCount) / float64(s.Total)

	for addr, n := range senders {
		if s.TopSender == nil || n > s.TopSender.Count || (n == s.TopSender.Count && addr < s.TopSender.Address) {
			s.TopSender = &TopSender{Address: addr, Count: n}
		}
	}
	return s
}

func present(v *string) (string, bool) {
	if v == nil || *v == "" || strings.EqualFold(*v, "none") {
		return "", false
	}
	return *v, true
}
