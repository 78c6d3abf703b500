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
//   - DocumentStore: Inventory, label and audit persistence
//   - RemoteDrive: Lists, downloads and tags files in the remote drive
//   - ExtractorRegistry: Selects the text extractor for a file suffix
//   - TemplateMarker: Remembers the remote metadata template id
//   - TokenProvider: Supplies access tokens to the remote drive client
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model for assisted classification. Without it,
//     documents keep their heuristic labels.
package driven
