package schema

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s.]+`)

// Labelize converts a field name into a human-friendly label. It splits on
// underscores, dashes, dots and camelCase boundaries:
// "smtpPort" -> "Smtp Port", "retention_period" -> "Retention Period".
func Labelize(name string) string {
	var words []string
	for _, chunk := range splitWordsPattern.Split(name, -1) {
		for _, word := range splitCamel(chunk) {
			words = append(words, titleCase(word))
		}
	}
	return strings.Join(words, " ")
}

// splitCamel keeps acronyms together: "enableSSL" -> [enable SSL],
// "smtpHTTPPort" -> [smtp HTTP Port].
func splitCamel(input string) []string {
	runes := []rune(input)
	var (
		out   []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := (isLower(prev) && isUpper(cur)) ||
			(isLetter(prev) && isDigit(cur)) ||
			(isDigit(prev) && isLetter(cur)) ||
			(isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]))
		if boundary {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// titleCase upper-cases the first letter; all-caps words stay as acronyms.
func titleCase(word string) string {
	if word == "" {
		return ""
	}
	if strings.ToUpper(word) == word {
		return word
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
