package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write reviewed labels to the drive metadata template",
	Long: `Pushes every reviewed label to the drive. The metadata template is
created on first use and its id remembered in the template marker file.
Labels whose values did not change since the last sync are skipped.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if templateSyncer == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Synchronising reviewed labels...")
	report, err := templateSyncer.Sync(commandContext(cmd))
	if report != nil && report.TemplateID != "" {
		cmd.Printf("Template %s: %d written, %d unchanged, %d empty (of %d reviewed).\n",
			report.TemplateID, report.Synced, report.Unchanged, report.Empty, report.Considered)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
