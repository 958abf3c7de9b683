package driving

import (
	"context"

	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// AcquireService fetches raw source material into the raw data folder.
type AcquireService interface {
	// Download clears the raw folder, fetches the report and crawls companies.
	Download(ctx context.Context) error

	// Crawl fetches company pages into outDir as {company}-{n}.md files.
	// Returns the paths written.
	Crawl(ctx context.Context, companies []domain.Company, outDir string) ([]string, error)
}
