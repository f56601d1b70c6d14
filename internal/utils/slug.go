package utils

import "strings"

// Slugify lowercases a title and collapses every run of non-alphanumeric
// characters into a single dash.  "Breaking News: Go 1.24!" becomes
// "breaking-news-go-1-24".  The result can be empty for titles with no
// alphanumeric characters; callers treat that as a validation failure.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
