package utils

import "strings"

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ü", "u", "ñ", "n",
)

// Slugify converts a title into a URL-safe slug. Accented characters are
// folded to their ASCII base, anything else non-alphanumeric collapses to a
// single hyphen.
func Slugify(text string) string {
	text = accentReplacer.Replace(strings.ToLower(text))

	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range text {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
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
