// Package domain defines the core business entities for doclabel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A file discovered in the remote drive, plus its excerpt
//   - Label: The classification row attached to a document
//   - AuditEntry: An append-only record of a sync or review change
//   - Taxonomy: The controlled vocabulary labels are validated against
//   - RuleSet: Ordered regular-expression rules for heuristic labelling
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
