package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSourceKind(t *testing.T) {
	tests := []struct {
		path     string
		expected SourceKind
	}{
		{"report.pdf", SourceKindPDF},
		{"/data/raw/base/REPORT.PDF", SourceKindPDF},
		{"nested/dir/file.Pdf", SourceKindPDF},
		{"acme-1.md", SourceKindText},
		{"notes.txt", SourceKindText},
		{"no_extension", SourceKindText},
		{"archive.pdf.bak", SourceKindText},
		{"page.html", SourceKindText},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectSourceKind(tt.path))
		})
	}
}

func TestNewSourceFile(t *testing.T) {
	f := NewSourceFile("/tmp/a.pdf")
	assert.Equal(t, "/tmp/a.pdf", f.Path)
	assert.Equal(t, SourceKindPDF, f.Kind)
}

func TestSourceKind_IsValid(t *testing.T) {
	assert.True(t, SourceKindPDF.IsValid())
	assert.True(t, SourceKindText.IsValid())
	assert.False(t, SourceKind("docx").IsValid())
	assert.Equal(t, "pdf", SourceKindPDF.String())
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}
