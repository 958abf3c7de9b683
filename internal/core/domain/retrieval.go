package domain

import (
	"fmt"
	"strings"
)

// IndexName identifies one of the independently persisted indexes.
type IndexName string

// Known indexes, listed in retrieval order.
const (
	// IndexBase holds the general report content.
	IndexBase IndexName = "base"

	// IndexCompanies holds per-company content.
	IndexCompanies IndexName = "companies"
)

// IsValid returns true if the index name is recognised.
func (n IndexName) IsValid() bool {
	return n == IndexBase || n == IndexCompanies
}

// String returns the string representation.
func (n IndexName) String() string {
	return string(n)
}

// AllIndexes returns the indexes in the order their results are presented.
func AllIndexes() []IndexName {
	return []IndexName{IndexBase, IndexCompanies}
}

// Query is a question as seen by an index. Vector backends search with
// Vector, keyword backends with Text.
type Query struct {
	Text   string
	Vector []float32
}

// ScoredChunk is an index hit in similarity order.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the backend's similarity score; higher is closer.
	Score float64
}

// PagePrefix returns the citation prefix for a page label.
func PagePrefix(label string) string {
	return fmt.Sprintf("page-number %s: ", label)
}

// RetrievedDocument is a chunk returned by a similarity query, annotated
// for one query/response cycle.
type RetrievedDocument struct {
	// ID is the identifier of the underlying chunk.
	ID string

	// Content is the chunk text, prefixed with its page citation when
	// the chunk has a page label.
	Content string

	// Metadata is the underlying chunk's metadata, unchanged.
	Metadata Metadata

	// Index is the index the hit came from.
	Index IndexName

	// PageLabel is the cited page, empty when the source is not paginated.
	PageLabel string

	// Score is the backend similarity score.
	Score float64
}

// NewRetrievedDocument annotates a hit from index.
func NewRetrievedDocument(index IndexName, hit ScoredChunk) RetrievedDocument {
	doc := RetrievedDocument{
		ID:       hit.Chunk.ID,
		Content:  hit.Chunk.Content,
		Metadata: hit.Chunk.Metadata,
		Index:    index,
		Score:    hit.Score,
	}
	if label, ok := hit.Chunk.Metadata.PageLabel(); ok {
		doc.PageLabel = label
		doc.Content = PagePrefix(label) + hit.Chunk.Content
	}
	return doc
}

// Context is the ordered retrieved text supplied to the generation step.
type Context []RetrievedDocument

// String joins the document contents with blank lines.
// An empty context renders as the empty string.
func (c Context) String() string {
	parts := make([]string, len(c))
	for i := range c {
		parts[i] = c[i].Content
	}
	return strings.Join(parts, "\n\n")
}

// FromIndex returns the documents retrieved from index, in order.
func (c Context) FromIndex(index IndexName) []RetrievedDocument {
	var out []RetrievedDocument
	for i := range c {
		if c[i].Index == index {
			out = append(out, c[i])
		}
	}
	return out
}
