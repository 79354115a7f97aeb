package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over the clipboard history",
	Long: `Search matches the query against entry previews and text content,
ranked by relevance and then recency.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum entries to show (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	limit := searchLimit
	if limit <= 0 {
		limit = c.Config.ListLimit
	}

	entries, err := c.Repository.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		exitError("search failed: %v", err)
	}
	printEntries(entries)
}
