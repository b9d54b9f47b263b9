package media

import "strings"

// Slugify lowercases a name and collapses every run of non-alphanumeric
// characters into a single dash, producing a URL-safe file or folder
// slug. A name with no usable characters falls back to "file".
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	slug := b.String()
	if slug == "" {
		return "file"
	}
	return slug
}
