package arxiv

import (
	"regexp"
	"strings"
)

var (
	texCommand = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Detex strips LaTeX markup commonly found in arXiv titles and abstracts:
// control sequences like \textbf or {\em ...} are dropped, grouping braces
// removed, and whitespace runs (including line breaks) collapsed to a
// single space.
func Detex(s string) string {
	s = texCommand.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
