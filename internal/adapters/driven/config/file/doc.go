// Package file provides file-based implementations of driven port interfaces
// and the loaders for the YAML and TOML configuration files.
//
// Adapters:
//   - LoadSettings: TOML settings file overlaid with environment variables
//   - LoadRules: Ordered regular-expression rules for heuristic labelling
//   - LoadTaxonomy: Controlled vocabulary and metadata template definition
//   - TemplateMarker: JSON marker recording the created template id
//   - PromptStore: User-editable prompts for assisted classification
package file
