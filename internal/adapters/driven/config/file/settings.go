package file

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// DefaultSettingsPath is read when no --config flag is given.
const DefaultSettingsPath = "doclabel.toml"

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// settingsFile mirrors the TOML layout. Pointers distinguish unset keys
// from zero values.
type settingsFile struct {
	Storage struct {
		Provider *string  `toml:"provider"`
		Roots    []string `toml:"roots"`
	} `toml:"storage"`
	WorkDrive struct {
		APIBase    *string `toml:"api_base"`
		AppBase    *string `toml:"app_base"`
		OrgID      *string `toml:"org_id"`
		AuthScheme *string `toml:"auth_scheme"`
	} `toml:"workdrive"`
	OAuth  oauthFile `toml:"oauth"`
	Google oauthFile `toml:"google"`
	Paths  struct {
		Database       *string `toml:"database"`
		Regex          *string `toml:"regex"`
		Taxonomy       *string `toml:"taxonomy"`
		TemplateMarker *string `toml:"template_marker"`
		Export         *string `toml:"export"`
	} `toml:"paths"`
	Pipeline struct {
		PageSize        *int `toml:"page_size"`
		ExcerptMaxChars *int `toml:"excerpt_max_chars"`
	} `toml:"pipeline"`
	LLM struct {
		Enabled     *bool    `toml:"enabled"`
		Provider    *string  `toml:"provider"`
		Model       *string  `toml:"model"`
		BaseURL     *string  `toml:"base_url"`
		APIKey      *string  `toml:"api_key"`
		Temperature *float64 `toml:"temperature"`
		MaxTokens   *int     `toml:"max_tokens"`
	} `toml:"llm"`
}

type oauthFile struct {
	AccountsHost *string `toml:"accounts_host"`
	ClientID     *string `toml:"client_id"`
	ClientSecret *string `toml:"client_secret"`
	RefreshToken *string `toml:"refresh_token"`
	Scopes       *string `toml:"scopes"`
	TokenCache   *string `toml:"token_cache"`
}

// LoadSettings builds settings from defaults, the TOML file at path and
// then environment variables, each layer overriding the previous one.
// A missing file is not an error unless explicit is set.
func LoadSettings(path string, explicit bool, lookup LookupFunc) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if path == "" {
		path = DefaultSettingsPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f settingsFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return settings, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfigInvalid, path, err)
		}
		f.apply(&settings)
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return settings, fmt.Errorf("reading settings %s: %w", path, err)
	}

	if err := applyEnv(&settings, lookup); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (f *settingsFile) apply(s *domain.Settings) {
	if f.Storage.Provider != nil {
		s.Provider = domain.StorageProvider(strings.ToLower(strings.TrimSpace(*f.Storage.Provider)))
	}
	if len(f.Storage.Roots) > 0 {
		s.Roots = f.Storage.Roots
	}

	setString(&s.WorkDrive.APIBase, f.WorkDrive.APIBase)
	setString(&s.WorkDrive.AppBase, f.WorkDrive.AppBase)
	setString(&s.WorkDrive.OrgID, f.WorkDrive.OrgID)
	setString(&s.WorkDrive.AuthScheme, f.WorkDrive.AuthScheme)

	f.OAuth.apply(&s.OAuth)
	f.Google.apply(&s.Google)

	setString(&s.DBPath, f.Paths.Database)
	setString(&s.RegexPath, f.Paths.Regex)
	setString(&s.TaxonomyPath, f.Paths.Taxonomy)
	setString(&s.TemplateMarker, f.Paths.TemplateMarker)
	setString(&s.ExportPath, f.Paths.Export)

	if f.Pipeline.PageSize != nil {
		s.PageSize = *f.Pipeline.PageSize
	}
	if f.Pipeline.ExcerptMaxChars != nil {
		s.ExcerptMaxChars = *f.Pipeline.ExcerptMaxChars
	}

	if f.LLM.Enabled != nil {
		s.LLM.Enabled = *f.LLM.Enabled
	}
	if f.LLM.Provider != nil {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(*f.LLM.Provider)))
	}
	setString(&s.LLM.Model, f.LLM.Model)
	setString(&s.LLM.BaseURL, f.LLM.BaseURL)
	setString(&s.LLM.APIKey, f.LLM.APIKey)
	if f.LLM.Temperature != nil {
		s.LLM.Temperature = *f.LLM.Temperature
	}
	if f.LLM.MaxTokens != nil {
		s.LLM.MaxTokens = *f.LLM.MaxTokens
	}
}

func (o oauthFile) apply(s *domain.OAuthSettings) {
	setString(&s.AccountsHost, o.AccountsHost)
	setString(&s.ClientID, o.ClientID)
	setString(&s.ClientSecret, o.ClientSecret)
	setString(&s.RefreshToken, o.RefreshToken)
	setString(&s.Scopes, o.Scopes)
	setString(&s.TokenCache, o.TokenCache)
}

// envStrings maps environment variables onto string settings.
func envStrings(s *domain.Settings) map[string]*string {
	return map[string]*string{
		"WORKDRIVE_API_BASE":         &s.WorkDrive.APIBase,
		"WORKDRIVE_APP_BASE":         &s.WorkDrive.AppBase,
		"WORKDRIVE_ORG_ID":           &s.WorkDrive.OrgID,
		"WORKDRIVE_AUTH_SCHEME":      &s.WorkDrive.AuthScheme,
		"ZOHO_ACCOUNTS_HOST":         &s.OAuth.AccountsHost,
		"ZOHO_OAUTH_CLIENT_ID":       &s.OAuth.ClientID,
		"ZOHO_OAUTH_CLIENT_SECRET":   &s.OAuth.ClientSecret,
		"ZOHO_REFRESH_TOKEN":         &s.OAuth.RefreshToken,
		"ZOHO_SCOPES":                &s.OAuth.Scopes,
		"TOKEN_CACHE":                &s.OAuth.TokenCache,
		"GOOGLE_OAUTH_CLIENT_ID":     &s.Google.ClientID,
		"GOOGLE_OAUTH_CLIENT_SECRET": &s.Google.ClientSecret,
		"GOOGLE_REFRESH_TOKEN":       &s.Google.RefreshToken,
		"GOOGLE_TOKEN_CACHE":         &s.Google.TokenCache,
		"DB_PATH":                    &s.DBPath,
		"REGEX_CONFIG":               &s.RegexPath,
		"TAXONOMY_CONFIG":            &s.TaxonomyPath,
		"TEMPLATE_MARKER":            &s.TemplateMarker,
		"EXPORT_PATH":                &s.ExportPath,
		"LLM_MODEL":                  &s.LLM.Model,
		"LLM_BASE_URL":               &s.LLM.BaseURL,
	}
}

func applyEnv(s *domain.Settings, lookup LookupFunc) error {
	for key, dst := range envStrings(s) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("STORAGE_PROVIDER"); ok && v != "" {
		s.Provider = domain.StorageProvider(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup("TEAMFOLDER_ID"); ok && v != "" {
		s.Roots = domain.SplitList(v)
	}
	if v, ok := lookup("LLM_PROVIDER"); ok && v != "" {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(v)))
	}

	var err error
	if s.PageSize, err = envInt(lookup, "PAGE_SIZE", s.PageSize); err != nil {
		return err
	}
	if s.ExcerptMaxChars, err = envInt(lookup, "EXCERPT_MAX_CHARS", s.ExcerptMaxChars); err != nil {
		return err
	}
	if v, ok := lookup("ENABLE_LLM"); ok && v != "" {
		s.LLM.Enabled = strings.EqualFold(strings.TrimSpace(v), "true") || strings.TrimSpace(v) == "1"
	}

	// The API key follows the selected provider.
	keyVar := "OPENAI_API_KEY"
	if s.LLM.Provider == domain.AIProviderAnthropic {
		keyVar = "ANTHROPIC_API_KEY"
	}
	if v, ok := lookup(keyVar); ok && v != "" {
		s.LLM.APIKey = strings.TrimSpace(v)
	}
	return nil
}

func envInt(lookup LookupFunc, key string, current int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return current, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return current, fmt.Errorf("%w: %s must be an integer: %v", domain.ErrConfigInvalid, key, err)
	}
	return n, nil
}
