// Package driving defines the operations the CLI and the review CSV
// adapter invoke. These are the "driving" ports in hexagonal architecture
// terminology; implementations live in internal/core/services.
package driving
