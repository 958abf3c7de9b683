package domain

// Metadata keys set by loaders.
const (
	// MetaSource is the path of the file a unit was loaded from.
	MetaSource = "source"

	// MetaPage is the 0-based page index of a PDF unit.
	MetaPage = "page"

	// MetaPageLabel is the human-readable page label of a PDF unit.
	// Only PDF units carry it; retrieval cites pages from this key.
	MetaPageLabel = "page_label"
)

// Metadata holds string or int values describing a unit.
type Metadata map[string]any

// Clone returns a shallow copy, or nil for a nil map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	dst := make(Metadata, len(m))
	for k, v := range m {
		dst[k] = v
	}
	return dst
}

// String returns the value for key if it is a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the value for key if it is an integer.
// JSON and TOML decoders produce float64 and int64, so both are accepted.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// PageLabel returns the page label if the unit came from a paginated source.
func (m Metadata) PageLabel() (string, bool) {
	label, ok := m.String(MetaPageLabel)
	if !ok || label == "" {
		return "", false
	}
	return label, true
}

// RawUnit is one loader-produced segment of a source file: a PDF page,
// or the whole file for text sources.
type RawUnit struct {
	// Content is the extracted text.
	Content string

	// Metadata identifies the unit within its source.
	Metadata Metadata
}

// MergedUnit is a raw unit concatenated with the short units preceding it.
// It carries the metadata of the unit that triggered its emission.
type MergedUnit struct {
	// Content is the merged, whitespace-trimmed text.
	Content string

	// Metadata is copied from the triggering raw unit.
	Metadata Metadata
}

// Chunk is a bounded text window cut from a merged unit,
// ready for embedding and indexing.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text of this window.
	Content string

	// Position is the ordinal position within its merged unit.
	Position int

	// Embedding is the vector representation, set when the chunk is indexed.
	Embedding []float32

	// Metadata is inherited unchanged from the merged unit.
	Metadata Metadata
}
