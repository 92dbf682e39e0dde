package utils

import "strings"

const maxSlugLen = 64

// Slugify lowercases input and folds every run of characters outside
// [a-z0-9] into a single dash. "&" reads as "and"; apostrophes vanish.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	out := b.String()
	if len(out) > maxSlugLen {
		out = out[:maxSlugLen]
	}
	return strings.TrimRight(out, "-")
}
