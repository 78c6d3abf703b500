package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label extracted documents",
	Long: `Runs one classification stage.

  heuristic  ordered regular expressions from config/regex.yml
  llm        escalates weak heuristic labels to the configured model`,
}

var classifyHeuristicCmd = &cobra.Command{
	Use:   "heuristic",
	Short: "Label documents with the regex rules",
	RunE:  runClassifyHeuristic,
}

var classifyLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Escalate weak heuristic labels to the language model",
	RunE:  runClassifyLLM,
}

func init() {
	classifyCmd.AddCommand(classifyHeuristicCmd)
	classifyCmd.AddCommand(classifyLLMCmd)
	rootCmd.AddCommand(classifyCmd)
}

func runClassifyHeuristic(cmd *cobra.Command, _ []string) error {
	if heuristic == nil {
		return errors.New("heuristic classifier not configured")
	}
	report, err := heuristic.Classify(commandContext(cmd))
	if report != nil {
		printClassifyReport(cmd, "Heuristic", report)
	}
	if err != nil {
		return fmt.Errorf("heuristic classification failed: %w", err)
	}
	return nil
}

func runClassifyLLM(cmd *cobra.Command, _ []string) error {
	if assisted == nil {
		return errors.New("assisted classifier not configured")
	}
	report, err := assisted.Classify(commandContext(cmd))
	if report != nil {
		printClassifyReport(cmd, "Assisted", report)
	}
	if err != nil {
		return fmt.Errorf("assisted classification failed: %w", err)
	}
	return nil
}

func printClassifyReport(cmd *cobra.Command, stage string, r *driving.ClassifyReport) {
	if r.Disabled {
		cmd.Println(styles.Muted.Render(stage + " classification is disabled; configure [llm] to enable it."))
		return
	}
	cmd.Printf("%s: %d considered, %d labelled", stage, r.Considered, r.Labelled)
	if r.Degraded > 0 {
		cmd.Printf(", %s", styles.Warning.Render(fmt.Sprintf("%d degraded", r.Degraded)))
	}
	cmd.Println(".")
}
