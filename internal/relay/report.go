package relay

import (
	"sync"

	"github.com/arxiv-relay/arxiv-relay/internal/arxiv"
)

// Report summarizes one run: every scheduled task ends up counted either
// as delivered or as failed.
type Report struct {
	Scheduled int
	Delivered int
	Failed    int
	Failures  []Failure
}

// Failure names one article whose task did not complete.
type Failure struct {
	Title string
	URL   string
	Err   error
}

// report is the mutable, goroutine-safe accumulator behind a Report.
type report struct {
	mu sync.Mutex
	r  Report
}

func newReport() *report {
	return &report{}
}

func (rp *report) scheduled() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Scheduled++
}

func (rp *report) success() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Delivered++
}

func (rp *report) failure(article arxiv.Article, err error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.r.Failed++
	rp.r.Failures = append(rp.r.Failures, Failure{
		Title: article.Title,
		URL:   article.URL,
		Err:   err,
	})
}

func (rp *report) snapshot() Report {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	out := rp.r
	out.Failures = append([]Failure(nil), rp.r.Failures...)
	return out
}
