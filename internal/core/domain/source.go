package domain

import (
	"path/filepath"
	"strings"
)

// SourceKind identifies which loader handles a source file.
// The set of kinds is closed: anything that is not a PDF is read as text.
type SourceKind string

// Supported source kinds.
const (
	// SourceKindPDF is split into one raw unit per page.
	SourceKindPDF SourceKind = "pdf"

	// SourceKindText is read whole as a single raw unit.
	SourceKindText SourceKind = "text"
)

// IsValid returns true if the kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceKindPDF || k == SourceKindText
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// DetectSourceKind selects the kind for path from its extension alone.
func DetectSourceKind(path string) SourceKind {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return SourceKindPDF
	}
	return SourceKindText
}

// SourceFile is a file discovered under an ingestion folder.
type SourceFile struct {
	// Path is the file location on disk.
	Path string

	// Kind selects the loader.
	Kind SourceKind
}

// NewSourceFile creates a SourceFile with its kind detected from path.
func NewSourceFile(path string) SourceFile {
	return SourceFile{Path: path, Kind: DetectSourceKind(path)}
}

// ChangeType represents the type of change observed in a source folder.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed or renamed file.
	ChangeDeleted
)

// String returns a short label for the change.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SourceChange is a single change event from a watched folder.
type SourceChange struct {
	// Path is the affected file.
	Path string

	// Type is the kind of change.
	Type ChangeType
}
