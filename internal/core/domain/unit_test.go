package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_Clone(t *testing.T) {
	t.Run("nil map", func(t *testing.T) {
		var m Metadata
		assert.Nil(t, m.Clone())
	})

	t.Run("copy is independent", func(t *testing.T) {
		m := Metadata{MetaSource: "a.pdf", MetaPage: 2}
		c := m.Clone()
		c[MetaSource] = "b.pdf"

		assert.Equal(t, "a.pdf", m[MetaSource])
		assert.Equal(t, 2, c[MetaPage])
	})
}

func TestMetadata_Int(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"float64", float64(5), 5, true},
		{"string", "6", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Metadata{}
			if tt.value != nil {
				m[MetaPage] = tt.value
			}
			got, ok := m.Int(MetaPage)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestMetadata_PageLabel(t *testing.T) {
	label, ok := Metadata{MetaPageLabel: "iv"}.PageLabel()
	assert.True(t, ok)
	assert.Equal(t, "iv", label)

	_, ok = Metadata{MetaPageLabel: ""}.PageLabel()
	assert.False(t, ok)

	_, ok = Metadata{MetaPageLabel: 7}.PageLabel()
	assert.False(t, ok)

	_, ok = Metadata(nil).PageLabel()
	assert.False(t, ok)
}
