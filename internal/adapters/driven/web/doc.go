// Package web fetches the remote sources: the report download, the company
// page crawler and the companies.yaml list of pages to crawl.
package web
