// Package memory provides in-process implementations of the config and
// index stores. Nothing is persisted; they back tests and ephemeral runs.
package memory
