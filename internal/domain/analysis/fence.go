package analysis

import (
	"strings"
	"unicode"
)

const fence = "```"

// StripCodeFence trims whitespace and removes a leading code fence (with
// or without a language tag) and a trailing code fence. It is a textual
// cleanup only; the remaining text is not checked.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, fence); ok {
		s = strings.TrimSpace(cutLangTag(rest))
	}
	if rest, ok := strings.CutSuffix(s, fence); ok {
		s = strings.TrimSpace(rest)
	}
	return s
}

// cutLangTag drops a language tag after an opening fence. A tag needs
// whitespace after it, except "json" which may be glued to the body, so
// "```123```" keeps its scalar.
func cutLangTag(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return !isLangTagRune(r) })
	if i < 0 {
		i = len(s)
	}
	tag, rest := s[:i], s[i:]
	switch {
	case tag == "":
		return s
	case rest != "" && unicode.IsSpace(rune(rest[0])):
		return rest
	case len(s) >= len("json") && strings.EqualFold(s[:len("json")], "json"):
		return s[len("json"):]
	}
	return s
}

func isLangTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '+' || r == '.':
		return true
	}
	return false
}
