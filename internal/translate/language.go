// Package translate drives the DeepL web translator through a browser
// session, inferring completion by polling the rendered output.
package translate

import (
	"fmt"
	"strings"
)

// Language is a member of the translator's fixed language set.
type Language string

// Languages supported by the translator. Auto means auto-detect.
const (
	Auto       Language = "auto"
	German     Language = "de"
	English    Language = "en"
	French     Language = "fr"
	Italian    Language = "it"
	Japanese   Language = "ja"
	Spanish    Language = "es"
	Dutch      Language = "nl"
	Polish     Language = "pl"
	Portuguese Language = "pt"
	Russian    Language = "ru"
	Chinese    Language = "zh"
)

var languages = map[Language]struct{}{
	Auto: {}, German: {}, English: {}, French: {}, Italian: {}, Japanese: {},
	Spanish: {}, Dutch: {}, Polish: {}, Portuguese: {}, Russian: {}, Chinese: {},
}

// ParseLanguage converts a case-insensitive language code.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := languages[lang]; !ok {
		return "", fmt.Errorf("unknown language %q", s)
	}
	return lang, nil
}
