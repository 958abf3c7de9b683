// Package sqlite persists each named index as its own SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Index "base" lives at <dir>/base/index.db and "companies"
// at <dir>/companies/index.db, so the two never share storage.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory, applied when an index database is opened or created.
//
// # Search
//
// Embeddings are stored as little-endian float32 blobs. Similarity search is
// exhaustive cosine ranking in Go, which suits indexes of a few thousand chunks.
package sqlite
