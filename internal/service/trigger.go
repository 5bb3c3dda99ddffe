package service

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	triggerPrefixMax = 8
	triggerSuffixLen = 6
)

// TriggerWord derives the short token the provider uses to tag the trained
// artifact: the model name lower-cased, folded to ASCII, stripped to
// [a-z0-9], truncated to 8 characters, plus a 6-character random suffix so
// identical names never collide. e.g. "John Doe!" -> "johndoe2a4f9c".
func TriggerWord(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:triggerSuffixLen]
	return sanitizeName(name) + suffix
}

func sanitizeName(name string) string {
	// Decompose accented characters and drop the combining marks so
	// "Müller" contributes "muller" rather than losing the rune.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == triggerPrefixMax {
				break
			}
		}
	}
	return b.String()
}
