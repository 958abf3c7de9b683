package web

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
	"github.com/custodia-labs/chateqt/internal/normalisers/html"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 4

// Crawler fetches pages concurrently and converts them to text.
// A shared token bucket throttles requests across all workers.
type Crawler struct {
	client      *http.Client
	converter   *html.Converter
	limiter     *rate.Limiter
	concurrency int
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) CrawlerOption {
	return func(c *Crawler) {
		if client != nil {
			c.client = client
		}
	}
}

// NewCrawler creates a crawler from crawl settings.
// RequestsPerSecond <= 0 disables throttling.
func NewCrawler(settings domain.CrawlSettings, opts ...CrawlerOption) *Crawler {
	concurrency := settings.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}

	c := &Crawler{
		client:      &http.Client{Timeout: DefaultTimeout},
		converter:   html.New(html.WithWordThreshold(settings.WordThreshold)),
		limiter:     rate.NewLimiter(limit, concurrency),
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl fetches urls with at most c.concurrency requests in flight and
// returns their text in url order. The first failure cancels the rest.
func (c *Crawler) Crawl(ctx context.Context, urls []string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]string, len(urls))
	sem := make(chan struct{}, c.concurrency)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			defer func() { <-sem }()

			if err := c.limiter.Wait(ctx); err != nil {
				fail(err)
				return
			}

			body, err := fetch(ctx, c.client, url)
			if err != nil {
				fail(err)
				return
			}
			results[i] = c.converter.Convert(string(body))
			logger.Debug("Crawled %s (%d bytes)", url, len(body))
		}(i, url)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
