// Package normalisers holds the loaders that turn source files into raw
// units. The pdf loader yields one unit per page; the plaintext loader reads
// any other file whole. The html package converts fetched web pages into
// markdown-style text before they are written to disk.
package normalisers
