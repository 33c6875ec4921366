package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// vietnameseD maps the D-with-stroke letters, which survive Unicode
// decomposition because the stroke is not a combining mark.
var vietnameseD = strings.NewReplacer("Đ", "D", "đ", "d")

// NormalizeZoneName converts a zone display name to its canonical ASCII
// PascalCase key, matching the identifier scheme used by the upstream
// data feed. "Phường Hoàn Kiếm" becomes "PhuongHoanKiem". The function
// is deterministic: the same input always yields the same key.
func NormalizeZoneName(name string) string {
	if name == "" {
		return name
	}

	decomposed := norm.NFD.String(vietnameseD.Replace(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining diacritical mark, drop
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if r < 128 {
				b.WriteRune(r)
			}
		default:
			// punctuation and whitespace both act as word breaks
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, "")
}
