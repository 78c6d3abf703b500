// Package cli provides the doclabel command-line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// version is overridden at build time.
var version = "dev"

// annotationStandalone marks commands that run without wired services.
const annotationStandalone = "standalone"

// Global flags.
var (
	configPath string
	verbose    bool
)

// Services holds the driving ports the commands call into.
type Services struct {
	Settings  domain.Settings
	Roots     []domain.FolderRef
	Auth      driving.AuthService
	Crawler   driving.Crawler
	Extractor driving.ExtractionService
	Heuristic driving.Classifier
	Assisted  driving.Classifier
	Review    driving.ReviewService
	Syncer    driving.TemplateSyncer
	Inventory driving.InventoryService
	Pipeline  driving.Pipeline

	// Close releases the store and other resources.
	Close func() error
}

// BootstrapOptions carries the global flags to the bootstrap function.
type BootstrapOptions struct {
	ConfigPath string

	// ConfigExplicit is set when --config was given, making a missing
	// file an error.
	ConfigExplicit bool
}

// Bootstrap builds the services from configuration.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Services, error)

// Wired service handles.
var (
	settings          domain.Settings
	crawlRoots        []domain.FolderRef
	authService       driving.AuthService
	crawler           driving.Crawler
	extractionService driving.ExtractionService
	heuristic         driving.Classifier
	assisted          driving.Classifier
	reviewService     driving.ReviewService
	templateSyncer    driving.TemplateSyncer
	inventoryService  driving.InventoryService
	pipeline          driving.Pipeline
	closeServices     func() error

	bootstrap Bootstrap
	wired     bool
)

var rootCmd = &cobra.Command{
	Use:   "doclabel",
	Short: "Label the documents of a cloud drive",
	Long: `doclabel crawls a WorkDrive or Google Drive workspace, extracts text
excerpts, classifies every document with regex rules and an optional
language model, round-trips labels through a CSV review, and writes the
reviewed labels back as drive metadata.

Typical flow:
  doclabel run              # crawl, extract, classify, export CSV
  doclabel review import    # apply the corrected CSV
  doclabel sync             # push reviewed labels to the drive`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ./doclabel.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices wires the service handles used by the commands.
func SetServices(s *Services) {
	settings = s.Settings
	crawlRoots = s.Roots
	authService = s.Auth
	crawler = s.Crawler
	extractionService = s.Extractor
	heuristic = s.Heuristic
	assisted = s.Assisted
	reviewService = s.Review
	templateSyncer = s.Syncer
	inventoryService = s.Inventory
	pipeline = s.Pipeline
	closeServices = s.Close
	wired = true
}

// Execute runs the root command and releases wired resources.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Error("Closing resources: %v", cerr)
		}
	}
	return err
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if wired || cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}
	s, err := bootstrap(commandContext(cmd), BootstrapOptions{
		ConfigPath:     configPath,
		ConfigExplicit: cmd.Flags().Changed("config"),
	})
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
