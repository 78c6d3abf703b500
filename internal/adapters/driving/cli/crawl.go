package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [kind:id...]",
	Short: "Record every file under the crawl roots",
	Long: `Walks the configured roots recursively and records every file in the
local inventory. Roots given as arguments replace the configured ones,
e.g. "teamfolder:abc123" or "folder:xyz789".`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if crawler == nil {
		return errors.New("crawler not configured")
	}

	roots := crawlRoots
	if len(args) > 0 {
		parsed, err := domain.ParseFolderRefs(args)
		if err != nil {
			return err
		}
		roots = parsed
	}
	if len(roots) == 0 {
		return errors.New("no crawl roots: set [storage] roots or pass kind:id arguments")
	}

	cmd.Printf("Crawling %d root(s)...\n", len(roots))
	report, err := crawler.Crawl(commandContext(cmd), roots)
	if report != nil {
		cmd.Printf("Listed %d folders, recorded %d documents.\n", report.Folders, report.Documents)
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}
