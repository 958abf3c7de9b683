// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.chateqt/config.toml
//   - PromptStore: user-editable prompt templates at ~/.chateqt/prompts
package file
