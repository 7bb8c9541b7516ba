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
//   - SearchIndex: The search engine holding the document index (Meilisearch or embedded)
//   - RecordStore: Record persistence, the source of truth for the index
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EnrichmentClient: Fetches record data by SF_Number. Without it, auto-populate is disabled.
//   - SchedulerStore: Task state persistence. Without it, the scheduler keeps state in memory.
//   - TokenProvider: Bearer credential for the enrichment API.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
