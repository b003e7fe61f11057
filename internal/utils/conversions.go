package utils

import "strings"

// ToStringSlice reads a decoded JSON claim that may be a single string or an
// array. Non-string array elements are dropped. Anything else gives nil.
func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}
		}
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
