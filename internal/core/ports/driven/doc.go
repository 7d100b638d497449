// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - KnowledgeStore: Document, chunk and full-text index persistence
//   - Extractor: Converts one raw source into role-tagged records
//   - BatchWorker: Runs one isolated embedding batch
//
// # Optional Interfaces
//
//   - EmbeddingService: Generates vector embeddings. Only the worker
//     process needs it; the importer never touches embeddings.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
