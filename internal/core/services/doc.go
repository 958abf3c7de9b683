// Package services holds the question answering pipeline behind the driving
// ports: ingestion (discover, load, merge, split, embed, index), dual-index
// retrieval, prompt assembly and answer generation, source acquisition and
// settings management.
//
// Services only talk to infrastructure through driven ports.
package services
