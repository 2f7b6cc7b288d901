package tool

import "strings"

// Slugify derives a URL-safe slug from a display name: lowercase ASCII,
// runs of non-alphanumerics collapsed to single hyphens, trimmed.
// Uniqueness is scoped to the owning tenant, not global; vanity resolution
// keys on the (slug, email prefix) pair.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
