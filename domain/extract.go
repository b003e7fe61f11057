// Package domain pulls sender domains out of Authentication-Results header values.
//
// The extraction is a string heuristic: whatever follows the key up to the next
// ';' is returned as the domain, without checking that it is a valid host name.
// A value such as "user@example.com" after smtp.mailfrom= is returned unchanged.
package domain

import "strings"

const (
	keySPFMailFrom = "smtp.mailfrom="
	keySPFHelo     = "smtp.helo="
	keyDKIM        = "header.d="
)

// ExtractSPFDomain returns the smtp.mailfrom value of an Authentication-Results
// header, falling back to smtp.helo when mailfrom is absent or empty.
func ExtractSPFDomain(header string) (string, bool) {
	if d, ok := extractKeyValue(header, keySPFMailFrom); ok {
		return d, true
	}
	return extractKeyValue(header, keySPFHelo)
}

// ExtractDKIMDomain returns the header.d value of an Authentication-Results header.
func ExtractDKIMDomain(header string) (string, bool) {
	return extractKeyValue(header, keyDKIM)
}

// extractKeyValue returns the text after the first occurrence of key, up to the
// next ';' or the end of text, trimmed. Keys match case-sensitively.
func extractKeyValue(text, key string) (string, bool) {
	start := strings.Index(text, key)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(key):]
	if end := strings.IndexByte(rest, ';'); end >= 0 {
		rest = rest[:end]
	}
	value := strings.TrimSpace(rest)
	if value == "" {
		return "", false
	}
	return value, true
}
