package web

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/chateqt/internal/core/domain"
	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure CompanyFile implements the interface.
var _ driven.CompanySource = (*CompanyFile)(nil)

// CompanyFile reads companies from a YAML mapping of company name to a
// list of page URLs:
//
//	Acme:
//	  - https://acme.example/about
//	  - https://acme.example/news
type CompanyFile struct {
	path string
}

// NewCompanyFile creates a source reading path.
func NewCompanyFile(path string) *CompanyFile {
	return &CompanyFile{path: path}
}

// Path returns the file location.
func (f *CompanyFile) Path() string {
	return f.path
}

// Companies returns the companies in file order.
func (f *CompanyFile) Companies() ([]domain.Company, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("companies file %s: %w", f.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return ParseCompanies(data)
}

// ParseCompanies decodes a companies document, keeping mapping order.
func ParseCompanies(data []byte) ([]domain.Company, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing companies: %v", domain.ErrInvalidInput, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: companies must be a mapping of name to urls", domain.ErrInvalidInput)
	}

	companies := make([]domain.Company, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var urls []string
		if err := root.Content[i+1].Decode(&urls); err != nil {
			return nil, fmt.Errorf("%w: urls of %s: %v", domain.ErrInvalidInput, name, err)
		}
		companies = append(companies, domain.Company{Name: name, URLs: urls})
	}
	return companies, nil
}
