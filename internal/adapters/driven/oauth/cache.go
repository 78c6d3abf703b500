package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// cachedToken is the on-disk token cache format.
type cachedToken struct {
	AccessToken string  `json:"access_token"`
	ExpiresAt   float64 `json:"expires_at"`
}

func (c cachedToken) expiry() time.Time {
	sec, frac := math.Modf(c.ExpiresAt)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func newCachedToken(accessToken string, expiresAt time.Time) cachedToken {
	return cachedToken{
		AccessToken: accessToken,
		ExpiresAt:   float64(expiresAt.UnixNano()) / 1e9,
	}
}

// tokenCache reads and writes the cached access token file.
type tokenCache struct {
	path string
}

// load returns the cached token. A missing file is not an error.
func (c tokenCache) load() (cachedToken, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return cachedToken{}, false, nil
	}
	if err != nil {
		return cachedToken{}, false, fmt.Errorf("reading token cache: %w", err)
	}
	var tok cachedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return cachedToken{}, false, fmt.Errorf("parsing token cache %s: %w", c.path, err)
	}
	if tok.AccessToken == "" {
		return cachedToken{}, false, nil
	}
	return tok, true, nil
}

func (c tokenCache) save(tok cachedToken) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating token cache directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}
