package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// StorageProvider identifies the remote drive holding the documents.
type StorageProvider string

// Available storage providers.
const (
	// StorageWorkDrive is Zoho WorkDrive.
	StorageWorkDrive StorageProvider = "workdrive"

	// StorageGoogleDrive is Google Drive.
	StorageGoogleDrive StorageProvider = "gdrive"
)

// IsValid returns true if the storage provider is recognised.
func (p StorageProvider) IsValid() bool {
	switch p {
	case StorageWorkDrive, StorageGoogleDrive:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the provider.
func (p StorageProvider) Description() string {
	switch p {
	case StorageWorkDrive:
		return "Zoho WorkDrive"
	case StorageGoogleDrive:
		return "Google Drive"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an LLM provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// LLMSettings configures assisted classification.
type LLMSettings struct {
	// Enabled turns assisted classification on.
	Enabled bool

	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is passed to the model; zero keeps output stable.
	Temperature float64

	// MaxTokens bounds the response size.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Enabled || !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OAuthSettings configures the refresh-token flow.
type OAuthSettings struct {
	// AccountsHost is the authorization server base, e.g. https://accounts.zoho.com.
	AccountsHost string

	ClientID     string
	ClientSecret string
	RefreshToken string

	// Scopes is a comma separated scope list used for code exchange.
	Scopes string

	// TokenCache is the path of the cached access token file.
	TokenCache string
}

// HasCredentials reports whether a refresh can be attempted.
func (o OAuthSettings) HasCredentials() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.RefreshToken != ""
}

// WorkDriveSettings configures the WorkDrive client.
type WorkDriveSettings struct {
	APIBase string

	// AppBase is used to build and resolve reviewer permalinks.
	AppBase string

	// OrgID is sent as X-ORG-ID when set.
	OrgID string

	// AuthScheme prefixes the access token in the Authorization header.
	AuthScheme string
}

// Settings holds all application settings.
type Settings struct {
	// Provider selects the remote drive.
	Provider StorageProvider

	// Roots are crawl roots such as "teamfolder:abc" or "folder:xyz".
	Roots []string

	WorkDrive WorkDriveSettings
	OAuth     OAuthSettings
	Google    OAuthSettings
	LLM       LLMSettings

	DBPath          string
	PageSize        int
	ExcerptMaxChars int

	RegexPath      string
	TaxonomyPath   string
	TemplateMarker string
	ExportPath     string
}

// DefaultSettings returns settings with sensible defaults.
// Credentials and crawl roots are left unset.
func DefaultSettings() Settings {
	return Settings{
		Provider: StorageWorkDrive,
		WorkDrive: WorkDriveSettings{
			APIBase:    "https://workdrive.zoho.com/api/v1",
			AppBase:    "https://workdrive.zoho.com",
			AuthScheme: "Zoho-oauthtoken",
		},
		OAuth: OAuthSettings{
			AccountsHost: "https://accounts.zoho.com",
			Scopes:       "WorkDrive.files.ALL,WorkDrive.team.READ,WorkDrive.teamfolders.READ",
			TokenCache:   "token.json",
		},
		Google: OAuthSettings{
			AccountsHost: "https://oauth2.googleapis.com",
			Scopes:       "https://www.googleapis.com/auth/drive",
			TokenCache:   "google_token.json",
		},
		LLM: LLMSettings{
			Provider:  AIProviderOpenAI,
			MaxTokens: 1024,
		},
		DBPath:          "data/workdrive.db",
		PageSize:        50,
		ExcerptMaxChars: 15000,
		RegexPath:       "config/regex.yml",
		TaxonomyPath:    "config/taxonomy.yaml",
		TemplateMarker:  "config/.template.json",
		ExportPath:      "data/inventory_labeled.csv",
	}
}

// ActiveOAuth returns the credentials for the selected provider.
func (s Settings) ActiveOAuth() OAuthSettings {
	if s.Provider == StorageGoogleDrive {
		return s.Google
	}
	return s.OAuth
}

// CrawlRoots parses the configured roots.
func (s Settings) CrawlRoots() ([]FolderRef, error) {
	return ParseFolderRefs(s.Roots)
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if !s.Provider.IsValid() {
		return fmt.Errorf("%w: unknown storage provider %q", ErrConfigInvalid, s.Provider)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive", ErrConfigInvalid)
	}
	if s.ExcerptMaxChars <= 0 {
		return fmt.Errorf("%w: excerpt limit must be positive", ErrConfigInvalid)
	}
	if s.DBPath == "" {
		return fmt.Errorf("%w: database path is required", ErrConfigInvalid)
	}
	if s.LLM.Enabled && s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", ErrConfigInvalid, s.LLM.Provider)
	}
	if _, err := ParseFolderRefs(s.Roots); err != nil {
		return err
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
