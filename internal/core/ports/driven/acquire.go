package driven

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// Downloader fetches a remote file.
type Downloader interface {
	// Download returns the body of url.
	Download(ctx context.Context, url string) ([]byte, error)
}

// Crawler fetches web pages and extracts their text.
type Crawler interface {
	// Crawl fetches all urls concurrently and returns one text result per
	// url, in url order.
	Crawl(ctx context.Context, urls []string) ([]string, error)
}

// CompanySource lists the companies to crawl.
type CompanySource interface {
	// Companies returns the companies in file order.
	Companies() ([]domain.Company, error)
}
