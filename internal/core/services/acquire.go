package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure AcquireService implements the interface.
var _ driving.AcquireService = (*AcquireService)(nil)

// ReportFileName is the name the downloaded report is saved under.
const ReportFileName = "index_info.pdf"

// DownloadTimeout bounds the report download.
const DownloadTimeout = 60 * time.Second

// AcquireService fills the raw folders: the report PDF into base/ and
// crawled company pages into companies/.
type AcquireService struct {
	downloader driven.Downloader
	crawler    driven.Crawler
	companies  driven.CompanySource
	data       domain.DataSettings
}

// NewAcquireService creates an acquire service writing under data.RawDir.
func NewAcquireService(
	downloader driven.Downloader,
	crawler driven.Crawler,
	companies driven.CompanySource,
	data domain.DataSettings,
) *AcquireService {
	return &AcquireService{
		downloader: downloader,
		crawler:    crawler,
		companies:  companies,
		data:       data,
	}
}

// Download clears the raw folder, fetches the report and crawls every company.
func (s *AcquireService) Download(ctx context.Context) error {
	if s.data.RawDir == "" {
		return domain.NewConfigurationError("data.raw_dir", "must not be empty")
	}

	logger.Section("Download")
	if err := os.RemoveAll(s.data.RawDir); err != nil {
		return fmt.Errorf("clear %s: %w", s.data.RawDir, err)
	}
	if err := os.MkdirAll(s.data.BaseDir(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.data.BaseDir(), err)
	}

	if err := s.downloadReport(ctx); err != nil {
		return err
	}

	companies, err := s.companies.Companies()
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}

	_, err = s.Crawl(ctx, companies, s.data.CompaniesDir())
	return err
}

func (s *AcquireService) downloadReport(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	logger.Info("Downloading %s", s.data.ReportURL)
	body, err := s.downloader.Download(ctx, s.data.ReportURL)
	if err != nil {
		return fmt.Errorf("download report: %w", err)
	}

	path := filepath.Join(s.data.BaseDir(), ReportFileName)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("Saved %s (%d bytes)", path, len(body))
	return nil
}

// Crawl fetches each company's pages and writes them to outDir as
// {company}-{n}.md, n counting from 1 in URL order.
func (s *AcquireService) Crawl(ctx context.Context, companies []domain.Company, outDir string) ([]string, error) {
	logger.Section("Crawl")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var written []string
	for _, company := range companies {
		if company.Name == "" {
			return written, fmt.Errorf("%w: company without a name", domain.ErrInvalidInput)
		}

		pages, err := s.crawler.Crawl(ctx, company.URLs)
		if err != nil {
			return written, fmt.Errorf("crawl %s: %w", company.Name, err)
		}
		if len(pages) != len(company.URLs) {
			return written, errors.New("crawler returned a different number of pages than urls")
		}

		for i, text := range pages {
			path := filepath.Join(outDir, fmt.Sprintf("%s-%d.md", fileSafe(company.Name), i+1))
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
		logger.Info("%s: %d pages", company.Name, len(pages))
	}
	return written, nil
}

// fileSafe replaces path separators so a company name stays one file name.
func fileSafe(name string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(name)
}
