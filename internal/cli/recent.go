package cli

import (
	"github.com/spf13/cobra"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent clipboard entries",
	Run:   runRecent,
}

var recentLimit int

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 0, "Maximum entries to show (default from config)")
}

func runRecent(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	limit := recentLimit
	if limit <= 0 {
		limit = c.Config.ListLimit
	}

	entries, err := c.Repository.Recent(cmd.Context(), limit)
	if err != nil {
		exitError("failed to list entries: %v", err)
	}
	printEntries(entries)
}
