package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/extractors/pdf"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download and extract excerpts for new documents",
	Long: `Downloads every document that has no excerpt yet, extracts a bounded
text excerpt and records the content hash. Files that cannot be parsed
are stored with an empty excerpt and marked degraded.

Files whose extractor needs a tool that is not installed are marked
skipped. Install the tool and pass --retry-skipped to extract them.`,
	RunE: runExtract,
}

var retrySkipped bool

func init() {
	extractCmd.Flags().BoolVar(&retrySkipped, "retry-skipped", false,
		"re-extract documents skipped because an extraction tool was missing")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}
	ctx := commandContext(cmd)

	if retrySkipped {
		n, err := extractionService.RetrySkipped(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Reset %d skipped documents.\n", n)
	}

	report, err := extractionService.ExtractPending(ctx)
	if report != nil {
		printExtractReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return nil
}

func printExtractReport(cmd *cobra.Command, r *driving.ExtractReport) {
	cmd.Printf("Processed %d documents: %d extracted, %d degraded, %d skipped.\n",
		r.Processed, r.Extracted, r.Degraded, r.Skipped)
	if r.MissingTool > 0 {
		cmd.Println(styles.Warning.Render(fmt.Sprintf(
			"%d documents skipped: a required extraction tool is not installed.", r.MissingTool)))
		cmd.Println(styles.Muted.Render(pdf.InstallInstructions()))
		cmd.Println(styles.Muted.Render("Then run: doclabel extract --retry-skipped"))
	}
}
