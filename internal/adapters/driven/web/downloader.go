package web

import (
	"context"
	"net/http"

	"github.com/custodia-labs/chateqt/internal/core/ports/driven"
)

// Ensure Downloader implements the interface.
var _ driven.Downloader = (*Downloader)(nil)

// Downloader fetches whole files over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader. A nil client uses one with DefaultTimeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Downloader{client: client}
}

// Download returns the body of url.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	return fetch(ctx, d.client, url)
}
