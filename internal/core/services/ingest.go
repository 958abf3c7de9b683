package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded per request.
const DefaultEmbedBatchSize = 64

// DocumentIngestor turns a folder into chunks: discover, load, merge, split.
type DocumentIngestor struct {
	walker      driven.SourceWalker
	pipeline    driven.ChunkPipeline
	normalisers map[domain.SourceKind]driven.Normaliser
}

// NewDocumentIngestor creates an ingestor. Each normaliser serves the
// source kind it reports; a later normaliser for the same kind wins.
func NewDocumentIngestor(
	walker driven.SourceWalker,
	pipeline driven.ChunkPipeline,
	normalisers ...driven.Normaliser,
) *DocumentIngestor {
	byKind := make(map[domain.SourceKind]driven.Normaliser, len(normalisers))
	for _, n := range normalisers {
		byKind[n.Kind()] = n
	}
	return &DocumentIngestor{
		walker:      walker,
		pipeline:    pipeline,
		normalisers: byKind,
	}
}

// ParseDocuments returns the chunks of every file under folder, in file
// enumeration order. Any file that fails to load aborts the call with a
// LoadError naming that file; no partial result is returned.
func (d *DocumentIngestor) ParseDocuments(ctx context.Context, folder string) ([]domain.Chunk, error) {
	_, chunks, err := d.parseFolder(ctx, folder)
	return chunks, err
}

func (d *DocumentIngestor) parseFolder(ctx context.Context, folder string) (int, []domain.Chunk, error) {
	logger.Section("Ingest " + folder)
	defer logger.Timed("ingest " + folder)()

	files, err := d.walker.Discover(ctx, folder)
	if err != nil {
		return 0, nil, err
	}
	logger.Debug("Discovered %d files", len(files))

	var all []domain.Chunk
	for _, file := range files {
		chunks, err := d.parseFile(ctx, file)
		if err != nil {
			return 0, nil, err
		}
		logger.Debug("%s (%s): %d chunks", file.Path, file.Kind, len(chunks))
		all = append(all, chunks...)
	}

	logger.Info("Processed %d files into %d chunks", len(files), len(all))
	return len(files), all, nil
}

func (d *DocumentIngestor) parseFile(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	normaliser, ok := d.normalisers[file.Kind]
	if !ok {
		return nil, domain.NewLoadError(file.Path,
			fmt.Errorf("%w: no loader for %s files", domain.ErrUnsupportedType, file.Kind))
	}

	units, err := normaliser.Normalise(ctx, file)
	if err != nil {
		if errors.Is(err, domain.ErrLoad) || ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.NewLoadError(file.Path, err)
	}

	return d.pipeline.Process(ctx, units)
}

// IngestService builds the named indexes from their source folders.
type IngestService struct {
	*DocumentIngestor

	store     driven.IndexStore
	embedder  driven.EmbeddingService
	batchSize int
}

// NewIngestService creates an ingest service. The embedder may be nil
// when the index store searches by keyword only.
func NewIngestService(
	ingestor *DocumentIngestor,
	store driven.IndexStore,
	embedder driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		DocumentIngestor: ingestor,
		store:            store,
		embedder:         embedder,
		batchSize:        DefaultEmbedBatchSize,
	}
}

// SetBatchSize overrides the embedding batch size. Non-positive values are ignored.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Build parses folder, embeds the chunks and replaces the named index with
// them. The index is only replaced once every file has loaded and every
// chunk is stored; any failure leaves the previous index in place.
func (s *IngestService) Build(ctx context.Context, name domain.IndexName, folder string) (*domain.BuildReport, error) {
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: unknown index %q", domain.ErrInvalidInput, name)
	}
	if s.store == nil {
		return nil, domain.NewIndexUnavailableError(name, errors.New("no index store configured"))
	}

	start := time.Now()

	files, chunks, err := s.parseFolder(ctx, folder)
	if err != nil {
		return nil, err
	}

	if err := s.embed(ctx, chunks); err != nil {
		return nil, err
	}

	if _, err := s.store.Replace(ctx, name, chunks); err != nil {
		return nil, domain.NewIndexUnavailableError(name, fmt.Errorf("replace: %w", err))
	}

	report := &domain.BuildReport{
		Index:    name,
		Folder:   folder,
		Files:    files,
		Chunks:   len(chunks),
		Duration: time.Since(start),
	}
	logger.Info("Built index %s: %d files, %d chunks in %s", name, report.Files, report.Chunks, report.Duration)
	return report, nil
}

// BuildAll builds the base and companies indexes from their raw folders.
func (s *IngestService) BuildAll(ctx context.Context, data domain.DataSettings) ([]domain.BuildReport, error) {
	reports := make([]domain.BuildReport, 0, len(domain.AllIndexes()))
	for _, name := range domain.AllIndexes() {
		report, err := s.Build(ctx, name, data.FolderFor(name))
		if err != nil {
			return reports, fmt.Errorf("build %s: %w", name, err)
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// embed fills in chunk embeddings in batches.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedder == nil || len(chunks) == 0 {
		return nil
	}

	logger.Debug("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding batch returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}
