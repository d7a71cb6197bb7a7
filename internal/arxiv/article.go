// Package arxiv models arXiv articles and searches against the export API.
package arxiv

import (
	"fmt"
	"strings"
)

// Separator joins title and summary into one translatable text. It never
// occurs in normalized article text, so splitting on it is unambiguous.
const Separator = "++++++++++"

// Article is one retrieved publication. Title and Summary are single-line
// after construction; values are copied between pipeline stages, never shared.
type Article struct {
	Title   string
	Authors []string
	Summary string
	URL     string
}

// NewArticle builds an Article, stripping LaTeX markup and flattening
// title and summary to single-line form.
func NewArticle(title string, authors []string, summary, url string) Article {
	return Article{
		Title:   Detex(title),
		Authors: authors,
		Summary: Detex(summary),
		URL:     url,
	}
}

// Encode returns title and summary as one text, joined by Separator, so
// both fields ride a single translation request.
func (a Article) Encode() string {
	return a.Title + "\n" + Separator + "\n" + a.Summary
}

// Decode splits a translated text produced from Encode back into title and
// summary and returns a copy of the article with both replaced. Authors and
// URL are preserved.
func (a Article) Decode(translated string) (Article, error) {
	parts := strings.SplitN(translated, Separator, 2)
	if len(parts) != 2 {
		return Article{}, fmt.Errorf("translated text lost separator %q", Separator)
	}
	out := a
	out.Title = strings.TrimSpace(parts[0])
	out.Summary = strings.TrimSpace(parts[1])
	return out, nil
}
