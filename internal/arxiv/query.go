package arxiv

import (
	"fmt"
	"strings"
	"time"
)

// dateFormat is the timestamp layout of the arXiv query grammar.
const dateFormat = "20060102150405"

// Window describes one search run: a date range, optional filters, and the
// pagination and concurrency budget. Immutable once constructed.
type Window struct {
	DateStart   time.Time // inclusive
	DateEnd     time.Time // exclusive
	Keywords    []string
	Categories  []string
	MaxArticles int
	PageSize    int
	MaxParallel int
}

// Validate reports the first configuration problem with the window.
func (w Window) Validate() error {
	if !w.DateStart.Before(w.DateEnd) {
		return fmt.Errorf("date_start %s must be before date_end %s",
			w.DateStart.Format(time.DateOnly), w.DateEnd.Format(time.DateOnly))
	}
	if w.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0, got %d", w.PageSize)
	}
	if w.MaxArticles < 0 {
		return fmt.Errorf("max_articles must be >= 0, got %d", w.MaxArticles)
	}
	if w.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be >= 1, got %d", w.MaxParallel)
	}
	return nil
}

// Query compiles the window into the arXiv API query grammar. The date
// clause always comes first; one second is subtracted from the end so the
// window stays exclusive at second granularity. Category and keyword
// clauses are omitted entirely when their lists are empty.
func (w Window) Query() string {
	start := w.DateStart.Format(dateFormat)
	end := w.DateEnd.Add(-time.Second).Format(dateFormat)

	var b strings.Builder
	fmt.Fprintf(&b, "submittedDate:[%s TO %s]", start, end)

	if clause := orClause("cat", w.Categories); clause != "" {
		b.WriteString(" AND (" + clause + ")")
	}
	if clause := orClause("abs", w.Keywords); clause != "" {
		b.WriteString(" AND (" + clause + ")")
	}
	return b.String()
}

func orClause(field string, values []string) string {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			terms = append(terms, field+":"+v)
		}
	}
	return strings.Join(terms, " OR ")
}

// pages partitions [0, MaxArticles) into request offsets of PageSize each.
func (w Window) pages() []page {
	var out []page
	for start := 0; start < w.MaxArticles; start += w.PageSize {
		size := w.PageSize
		if remaining := w.MaxArticles - start; remaining < size {
			size = remaining
		}
		out = append(out, page{start: start, size: size})
	}
	return out
}

type page struct {
	start int
	size  int
}
