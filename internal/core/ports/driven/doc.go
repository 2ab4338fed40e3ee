// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Chunker: Splits normalized document text into semantic chunks
//   - DomainClassifier: Assigns a domain label to a chunked document
//   - EmbeddingService: Generates vector embeddings (the hash embedder
//     satisfies this offline)
//   - GenerationService: Produces structured drafts from prompts (the
//     heuristic extractor satisfies this offline)
//   - DocumentStore: Document and chunk persistence
//   - GraphStore: Requirement graph version and validation report persistence
//   - ExampleStore: Append-only example corpus persistence
//   - ExampleIndex: In-memory similarity search over example snapshots
//   - ArtifactStore: Export artifact persistence
//   - ClarificationStore: Clarification round persistence
//   - ConfigStore: Application configuration
//   - TaxonomyStore: Module taxonomy configuration
//   - ExportRenderer: Container format rendering (one per export type)
//   - Normaliser: Plain-text extraction from submitted files (one per
//     source format)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EventBus: Lifecycle event fan-out. Without it, no events are emitted.
//   - ScheduleStore: Scheduler state persistence. Without it, background
//     sweeps run without crash recovery.
//   - PromptStore: Custom prompt templates. Without it, embedded defaults
//     are used.
//   - CorpusWatcher: Example corpus directory watching. Without it, corpus
//     files are only picked up by explicit reindex.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, chunker, or classifier package
package driven
