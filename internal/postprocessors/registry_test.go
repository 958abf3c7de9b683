package postprocessors

import (
	"errors"
	"testing"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func(_ map[string]any) (driven.Splitter, error) {
		return &stubSplitter{}, nil
	})

	if !r.Has("stub") {
		t.Error("expected 'stub' to be registered")
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("missing", nil)
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistry_Build_PropagatesBuilderError(t *testing.T) {
	r := NewRegistry()
	want := errors.New("boom")
	r.Register("bad", func(_ map[string]any) (driven.Splitter, error) {
		return nil, want
	})

	_, err := r.Build("bad", nil)
	if !errors.Is(err, want) {
		t.Errorf("expected builder error, got %v", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	names := r.Names()
	if len(names) != 2 || names[0] != "recursive" || names[1] != "window" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRegisterDefaults_BuildsWithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"recursive", map[string]any{"chunk_size": 100, "overlap": 10}},
		{"window", map[string]any{"chunk_size": int64(100), "overlap": float64(10)}},
		{"recursive", nil},
	}

	for _, tt := range tests {
		s, err := r.Build(tt.name, tt.cfg)
		if err != nil {
			t.Fatalf("Build(%s) failed: %v", tt.name, err)
		}
		if s.Name() != tt.name {
			t.Errorf("expected %s, got %s", tt.name, s.Name())
		}
	}
}

func TestRegisterDefaults_RejectsBadConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := r.Build("window", map[string]any{"chunk_size": 10, "overlap": 20})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"int": 1, "int64": int64(2), "float": float64(3), "str": "4"}

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"int", 1, true},
		{"int64", 2, true},
		{"float", 3, true},
		{"str", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		got, ok := getIntFromConfig(cfg, tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("getIntFromConfig(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
