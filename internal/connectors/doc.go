// Package connectors holds the source-side adapters. The filesystem
// connector discovers the files under an ingestion folder and watches it
// for changes.
package connectors
