package claimctx

import "strings"

// MaxSuggestions is the most choices a chat autocomplete accepts
const MaxSuggestions = 25

// Suggest filters values for autocomplete: case-insensitive substring
// matches, prefix matches first, input order otherwise.
func Suggest(values []string, query string, limit int) []string {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var prefix, contains []string
	for _, v := range values {
		lower := strings.ToLower(v)
		switch {
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, v)
		case strings.Contains(lower, q):
			contains = append(contains, v)
		}
	}

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}
