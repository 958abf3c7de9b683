// Package pdf loads PDF files one page at a time.
//
// Text is extracted with pdftotext from poppler-utils; the page count is
// read with pdfcpu so that blank pages still yield a unit, and page labels
// come from the document's /PageLabels when it declares them.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser produces one raw unit per PDF page.
type Normaliser struct {
	runner     CommandRunner
	pageCount  func(path string) (int, error)
	pageLabels func(path string) (labeler, error)
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{
		runner:     runner,
		pageCount:  api.PageCountFile,
		pageLabels: readPageLabels,
	}
}

// Kind returns the source kind this normaliser handles.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindPDF
}

// Normalise extracts every page of the file in page order. Each unit
// carries the source path, the zero-based page index and the page label
// declared by the document's /PageLabels, or the one-based page number.
func (n *Normaliser) Normalise(ctx context.Context, src domain.SourceFile) ([]domain.RawUnit, error) {
	count, err := n.pageCount(src.Path)
	if err != nil {
		return nil, domain.NewLoadError(src.Path, fmt.Errorf("read page count: %w", err))
	}

	out, err := n.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", src.Path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, domain.NewLoadError(src.Path, ErrPDFToolNotFound)
		}
		return nil, domain.NewLoadError(src.Path, fmt.Errorf("pdftotext failed: %w", err))
	}

	labels, err := n.pageLabels(src.Path)
	if err != nil {
		logger.Debug("No page labels in %s, numbering pages: %v", src.Path, err)
		labels = nil
	}

	pages := splitPages(string(out), count)
	units := make([]domain.RawUnit, 0, len(pages))
	for i, text := range pages {
		units = append(units, domain.RawUnit{
			Content: text,
			Metadata: domain.Metadata{
				domain.MetaSource:    src.Path,
				domain.MetaPage:      i,
				domain.MetaPageLabel: labels.label(i),
			},
		})
	}
	return units, nil
}

// splitPages cuts pdftotext output into exactly count pages. pdftotext ends
// every page, including the last, with a form feed.
func splitPages(text string, count int) []string {
	pages := strings.Split(text, pageBreak)
	if len(pages) > count {
		extra := strings.Join(pages[count:], "")
		if strings.TrimSpace(extra) != "" && count > 0 {
			pages[count-1] += extra
		}
		pages = pages[:count]
	}
	for len(pages) < count {
		pages = append(pages, "")
	}
	return pages
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not in PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to ingest PDF files.
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils`
}
