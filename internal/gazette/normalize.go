package gazette

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// whitespaceRun also matches no-break and other Unicode spaces, which French
// typography places before colons and inside dates.
var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// NormalizePage turns the ordered text fragments of one page into a single
// line: whitespace runs collapse to one space, fragments are trimmed and
// joined by a space, and everything up to the last masthead occurrence is
// dropped. Without a masthead the whole line is kept.
func NormalizePage(fragments []string, masthead string) string {
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(norm.NFC.String(fragment), " "))
		if cleaned == "" {
			continue
		}
		parts = append(parts, cleaned)
	}

	text := strings.Join(parts, " ")
	if masthead == "" {
		return text
	}
	if idx := strings.LastIndex(text, masthead); idx >= 0 {
		return text[idx+len(masthead):]
	}
	return text
}
