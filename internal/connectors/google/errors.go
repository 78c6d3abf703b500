package google

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

var retryableCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryable reports throttling, server errors and transport failures.
func IsRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusForbidden {
			return isRateLimitReason(gerr)
		}
		return retryableCodes[gerr.Code]
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

// Drive reports per-user throttling as 403 with a rate limit reason.
func isRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests ||
			(gerr.Code == http.StatusForbidden && isRateLimitReason(gerr))
	}
	return false
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// WrapError tags a final Google API error with its domain error class.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrRemoteTransient) {
		if IsRateLimited(err) {
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
		return err
	}
	if IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%w: %w", domain.ErrRemotePermanent, err)
	}
	return err
}
