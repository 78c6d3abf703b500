package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/adapters/driving/csvreview"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl, extract, classify and export the review CSV",
	Long: `Runs every automatic stage in order: crawl, extract, heuristic and
assisted classification, then writes the review CSV. The first failing
stage stops the run; work done by earlier stages is kept.`,
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAll(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}
	if len(crawlRoots) == 0 {
		return errors.New("no crawl roots: set [storage] roots")
	}

	ctx := commandContext(cmd)
	report, err := pipeline.RunAll(ctx, crawlRoots)
	if report != nil {
		if report.Crawl != nil {
			cmd.Printf("Crawl: %d folders, %d documents.\n", report.Crawl.Folders, report.Crawl.Documents)
		}
		if report.Extract != nil {
			printExtractReport(cmd, report.Extract)
		}
		if report.Heuristic != nil {
			printClassifyReport(cmd, "Heuristic", report.Heuristic)
		}
		if report.Assisted != nil {
			printClassifyReport(cmd, "Assisted", report.Assisted)
		}
	}
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if reviewService != nil {
		path := reviewPath(nil)
		n, err := csvreview.ExportFile(ctx, reviewService, path)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if n > 0 {
			cmd.Printf("Exported %d rows to %s\n", n, path)
		}
	}

	cmd.Println(styles.Success.Render("Pipeline complete."))
	return nil
}
