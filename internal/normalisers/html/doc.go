// Package html converts fetched web pages into markdown-style text.
// Navigation, footers, links, images, scripts and styles are dropped, and
// text blocks shorter than a word threshold are discarded as boilerplate.
package html
