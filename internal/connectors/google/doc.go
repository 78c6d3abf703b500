// Package google holds helpers shared by Google API backed drives:
// service construction from a token provider and error classification.
package google
