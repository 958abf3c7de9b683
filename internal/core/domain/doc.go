// Package domain defines the core entities of the chateqt pipeline.
//
// This package is the innermost layer of the hexagon. It has no external
// dependencies and defines the fundamental types:
//
//   - SourceFile: A file discovered under an ingestion folder
//   - RawUnit: One loader-produced segment of a source file
//   - MergedUnit: Raw units concatenated until a length threshold is met
//   - Chunk: A bounded text window ready for embedding and indexing
//   - RetrievedDocument: A chunk returned by a similarity query
//   - Context: The ordered retrieved documents handed to the prompt
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
