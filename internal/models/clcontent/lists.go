package clcontent

import (
	"strings"
	"unicode"
)

// les listes (tags, technologies, skills) sont stockées séparées par des virgules
func joinList(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.ReplaceAll(item, ",", " "))
		if item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, ",")
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Slugify garde lettres, chiffres et tirets, les espaces deviennent des tirets
func Slugify(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if unicode.IsSpace(r) {
			result.WriteRune('-')
		} else if r == '-' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
