package storage

import "strings"

const likeEscape = '!'

// foldName is the case folding applied to stored names and search patterns.
// It is done here rather than with SQL LOWER, which only folds ASCII in
// SQLite.
func foldName(s string) string {
	return strings.ToLower(s)
}

// likePattern turns a user search pattern into a folded LIKE pattern
// using '!' as escape character. '*' and '?' map to '%' and '_'. A pattern
// without wildcards becomes a substring match. ok is false for blank input.
func likePattern(pattern string) (like string, ok bool) {
	pattern = foldName(strings.TrimSpace(pattern))
	if pattern == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(pattern) + 2)

	wildcard := strings.ContainsAny(pattern, "*?")
	if !wildcard {
		b.WriteByte('%')
	}

	for _, r := range pattern {
		switch r {
		case '%', '_', likeEscape:
			b.WriteRune(likeEscape)
			b.WriteRune(r)
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	if !wildcard {
		b.WriteByte('%')
	}
	return b.String(), true
}
