// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Loads a source file into raw units (PDF pages, whole text)
//   - Merger, Splitter: Merge-then-split chunking stages
//   - IndexStore, ChunkIndex: Named persisted indexes with similarity search
//   - PromptStore: The answer template asset
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil when the command does not need them:
//
//   - EmbeddingService: Required by vector index backends, unused by keyword ones.
//   - LLMService: Required to answer questions, not to retrieve.
//   - TokenCounter: Prompt size estimates.
//   - Crawler, Downloader: Source acquisition.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
