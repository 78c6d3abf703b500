// Package extractors provides the Extractor implementations that turn
// downloaded file bytes into plain text, and the registry that picks one
// by file suffix.
//
// Extractors are registered with the Registry at startup.
package extractors
