package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings",
	Long: `Prints the settings after the defaults, the TOML file and environment
variables have been applied. Secrets are masked.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s := settings
	oauth := s.ActiveOAuth()

	cmd.Println(styles.Title.Render("Storage"))
	cmd.Printf("  Provider:        %s\n", s.Provider.Description())
	cmd.Printf("  Roots:           %s\n", orNone(strings.Join(s.Roots, ", ")))
	if s.Provider == domain.StorageWorkDrive {
		cmd.Printf("  API base:        %s\n", s.WorkDrive.APIBase)
		cmd.Printf("  Org id:          %s\n", orNone(s.WorkDrive.OrgID))
	}
	cmd.Printf("  Accounts host:   %s\n", oauth.AccountsHost)
	cmd.Printf("  Client id:       %s\n", orNone(oauth.ClientID))
	cmd.Printf("  Client secret:   %s\n", orNone(maskSecret(oauth.ClientSecret)))
	cmd.Printf("  Refresh token:   %s\n", orNone(maskSecret(oauth.RefreshToken)))
	cmd.Println()

	cmd.Println(styles.Title.Render("Paths"))
	cmd.Printf("  Database:        %s\n", s.DBPath)
	cmd.Printf("  Rules:           %s\n", s.RegexPath)
	cmd.Printf("  Taxonomy:        %s\n", s.TaxonomyPath)
	cmd.Printf("  Template marker: %s\n", s.TemplateMarker)
	cmd.Printf("  Review CSV:      %s\n", s.ExportPath)
	cmd.Println()

	cmd.Println(styles.Title.Render("Assisted classification"))
	if !s.LLM.IsConfigured() {
		cmd.Println(styles.Muted.Render("  Disabled"))
		return nil
	}
	cmd.Printf("  Provider:        %s\n", s.LLM.Provider)
	cmd.Printf("  Model:           %s\n", orNone(s.LLM.Model))
	cmd.Printf("  API key:         %s\n", orNone(maskSecret(s.LLM.APIKey)))
	cmd.Printf("  Max tokens:      %d\n", s.LLM.MaxTokens)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return styles.Muted.Render("(not set)")
	}
	return s
}
