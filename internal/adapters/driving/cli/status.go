package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/extractors/pdf"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarise the local inventory",
	RunE:  runStatus,
}

var auditCmd = &cobra.Command{
	Use:   "audit [file-id]",
	Short: "Show the audit trail",
	Long: `Lists audit entries oldest first: review corrections (actor human) and
metadata writes (actor pipeline). Pass a file id to show one document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

var auditLimit int

// pdfToolCheck reports whether pdftotext is installed.
var pdfToolCheck = pdf.CheckAvailable

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 50, "maximum number of entries (0 = all)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(auditCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if inventoryService == nil {
		return errors.New("inventory service not configured")
	}
	stats, err := inventoryService.Stats(commandContext(cmd))
	if err != nil {
		return err
	}

	cmd.Println(styles.Title.Render("Inventory"))
	t := newTable("", "count")
	t.Row("documents", strconv.Itoa(stats.Documents))
	t.Row("pending extraction", strconv.Itoa(stats.Pending))
	t.Row("extracted", strconv.Itoa(stats.Extracted))
	t.Row("degraded", strconv.Itoa(stats.Degraded))
	t.Row("skipped", strconv.Itoa(stats.Skipped))
	t.Row("labelled", strconv.Itoa(stats.Labelled))
	for _, src := range []domain.LabelSource{domain.SourceHeuristic, domain.SourceLLM, domain.SourceHuman} {
		t.Row("  "+string(src), strconv.Itoa(stats.BySource[src]))
	}
	t.Row("needs review", strconv.Itoa(stats.NeedsReview))
	t.Row("synced", strconv.Itoa(stats.Synced))
	t.Row("audit entries", strconv.Itoa(stats.AuditEvents))
	cmd.Println(t.Render())

	if err := pdfToolCheck(); err != nil {
		cmd.Println(styles.Warning.Render(fmt.Sprintf("%s not found: PDF files will be skipped.", pdf.Tool)))
		cmd.Println(styles.Muted.Render(pdf.InstallInstructions()))
	} else {
		cmd.Println(styles.Muted.Render(pdf.Tool + " available"))
	}
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	if inventoryService == nil {
		return errors.New("inventory service not configured")
	}
	fileID := ""
	if len(args) > 0 {
		fileID = args[0]
	}

	entries, err := inventoryService.Audit(commandContext(cmd), fileID, auditLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("No audit entries.")
		return nil
	}

	t := newTable("time", "file", "field", "actor", "value")
	for _, e := range entries {
		t.Row(e.CreatedAt.Local().Format(time.DateTime), e.FileID, e.Field, e.Actor, truncate(e.NewValue, 60))
	}
	cmd.Println(t.Render())
	cmd.Println(styles.Muted.Render(fmt.Sprintf("%d entries", len(entries))))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
