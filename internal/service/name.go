// internal/service/name.go
package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var introductionPattern = regexp.MustCompile(`(?i)(?:meu nome é|chamo-me|sou o|sou a)\s+([A-Za-zÀ-ú\s]+)`)

// ExtractName guesses the sender's name from free text. It looks for a
// Portuguese self-introduction first, then falls back to the first two
// words when the message starts with a plausible name. Returns "" when
// nothing fits.
func ExtractName(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if m := introductionPattern.FindStringSubmatch(text); m != nil {
		if name := titleCase(m[1]); name != "" {
			return name
		}
	}

	parts := strings.Fields(text)
	if len(parts) >= 2 && isAlpha(parts[0]) && utf8.RuneCountInString(parts[0]) > 2 {
		name := titleCase(parts[0])
		if isAlpha(parts[1]) {
			name += " " + titleCase(parts[1])
		}
		return name
	}
	return ""
}

// DisplayName falls back to a label built from the phone's last digits.
func DisplayName(name, phone, label string) string {
	if name != "" {
		return name
	}
	suffix := phone
	if len(phone) > 4 {
		suffix = phone[len(phone)-4:]
	}
	return label + " (" + suffix + ")"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
