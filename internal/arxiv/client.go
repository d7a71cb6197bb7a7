package arxiv

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/arxiv-relay/arxiv-relay/internal/metrics"
)

// DefaultEndpoint is the arXiv export API query endpoint.
const DefaultEndpoint = "http://export.arxiv.org/api/query"

// ClientConfig controls the behavior of the search client.
type ClientConfig struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
	// RateQPS caps outgoing requests per second across all pages.
	// Zero disables the limiter.
	RateQPS float64
}

// Client pages through arXiv search results over the Atom export API.
type Client struct {
	http     *resty.Client
	parser   *gofeed.Parser
	limiter  *rate.Limiter
	endpoint string
	logger   *zap.Logger
}

// NewClient builds a search client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := resty.New().SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}
	var limiter *rate.Limiter
	if cfg.RateQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateQPS), 1)
	}
	return &Client{
		http:     httpClient,
		parser:   gofeed.NewParser(),
		limiter:  limiter,
		endpoint: cfg.Endpoint,
		logger:   logger,
	}
}

// Stream is a finite, non-restartable sequence of articles. Articles arrive
// in page-completion order: pages that answer faster are yielded first, and
// only the order of entries within one page is preserved. After the channel
// closes, Err reports whether the fetch terminated cleanly.
type Stream struct {
	ch  chan Article
	err error
}

// Articles returns the receive side of the stream.
func (s *Stream) Articles() <-chan Article {
	return s.ch
}

// Err returns the fatal fetch error, if any. Valid only after the
// Articles channel has closed.
func (s *Stream) Err() error {
	return s.err
}

// Search issues all page requests for the window and streams articles as
// responses complete. At most window.MaxParallel requests are in flight at
// once. Pagination is all-or-nothing: the first page failure cancels every
// outstanding request and terminates the stream with that error.
func (c *Client) Search(ctx context.Context, window Window) *Stream {
	stream := &Stream{ch: make(chan Article)}
	go c.run(ctx, window, stream)
	return stream
}

func (c *Client) run(ctx context.Context, window Window, stream *Stream) {
	defer close(stream.ch)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		once  sync.Once
		query = window.Query()
		sem   = make(chan struct{}, window.MaxParallel)
	)
	fail := func(err error) {
		once.Do(func() {
			stream.err = err
			cancel()
		})
	}

	for _, p := range window.pages() {
		wg.Add(1)
		go func(p page) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			defer func() { <-sem }()

			articles, err := c.fetchPage(ctx, query, p)
			if err != nil {
				fail(err)
				return
			}
			for _, article := range articles {
				select {
				case stream.ch <- article:
				case <-ctx.Done():
					fail(ctx.Err())
					return
				}
			}
		}(p)
	}
	wg.Wait()
}

func (c *Client) fetchPage(ctx context.Context, query string, p page) ([]Article, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("page %d: rate wait: %w", p.start, err)
		}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_query": query,
			"start":        strconv.Itoa(p.start),
			"max_results":  strconv.Itoa(p.size),
		}).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("page %d: request: %w", p.start, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("page %d: status %d", p.start, resp.StatusCode())
	}

	feed, err := c.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("page %d: parse feed: %w", p.start, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		authors := make([]string, 0, len(item.Authors))
		for _, person := range item.Authors {
			if person != nil {
				authors = append(authors, person.Name)
			}
		}
		articles = append(articles, NewArticle(item.Title, authors, item.Description, item.Link))
	}

	metrics.ObservePage(len(articles))
	c.logger.Debug("page fetched",
		zap.Int("start", p.start),
		zap.Int("entries", len(articles)),
		zap.Duration("duration", time.Since(start)),
	)
	return articles, nil
}
