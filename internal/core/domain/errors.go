package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidLabel indicates a label violates the taxonomy rules.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrUnsupportedType indicates no extractor handles a file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtractionFailed indicates a parser could not read a file.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrExtractorUnavailable indicates an extractor's external tool is
	// missing. Files are left pending rather than marked degraded.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Assisted classification is skipped without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrConfigInvalid indicates a configuration file could not be used.
	ErrConfigInvalid = errors.New("invalid configuration")

	// Authentication Errors.

	// ErrAuthRequired indicates no refresh token or client credentials are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the cached token expired and no refresh is possible.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates the token endpoint rejected a refresh.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Remote Errors.

	// ErrRateLimited indicates the remote API throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemoteTransient indicates a remote call kept failing after retries.
	ErrRemoteTransient = errors.New("remote temporarily unavailable")

	// ErrRemotePermanent indicates a remote call failed in a way retries cannot fix.
	ErrRemotePermanent = errors.New("remote request rejected")
)
