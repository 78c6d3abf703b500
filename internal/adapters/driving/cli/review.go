package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/adapters/driving/csvreview"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Round-trip labels through a CSV file",
	Long: `Exports every document with its label to CSV for review, and imports
the corrected file as human labels. Each imported row is validated on its
own; rejected rows are listed and do not affect the others.`,
}

var reviewExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the review CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReviewExport,
}

var reviewImportCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Apply a corrected review CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReviewImport,
}

func init() {
	reviewCmd.AddCommand(reviewExportCmd)
	reviewCmd.AddCommand(reviewImportCmd)
	rootCmd.AddCommand(reviewCmd)
}

func reviewPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if settings.ExportPath != "" {
		return settings.ExportPath
	}
	return defaultExportPath
}

// defaultExportPath is used when no settings are wired.
const defaultExportPath = "data/inventory_labeled.csv"

func runReviewExport(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}
	path := reviewPath(args)
	n, err := csvreview.ExportFile(commandContext(cmd), reviewService, path)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if n == 0 {
		cmd.Println("Nothing to export.")
		return nil
	}
	cmd.Printf("Exported %d rows to %s\n", n, path)
	return nil
}

func runReviewImport(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}
	path := reviewPath(args)
	report, err := csvreview.ImportFile(commandContext(cmd), reviewService, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Applied %d of %d rows (%d without labels skipped).\n",
		report.Applied, report.Rows, report.Skipped)
	if len(report.Errors) == 0 {
		return nil
	}
	cmd.Println(styles.Error.Render(fmt.Sprintf("%d rows rejected:", len(report.Errors))))
	for _, rowErr := range report.Errors {
		cmd.Printf("  %v\n", rowErr)
	}
	return fmt.Errorf("%d rows rejected", len(report.Errors))
}
