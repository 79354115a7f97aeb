package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brencon/clipsy/internal/app"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove orphaned image artifacts",
	Long: `Gc deletes image files no history entry references. Orphans can be
left behind when the daemon is killed mid-capture.`,
	Run: runGC,
}

func runGC(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	result, err := app.GarbageCollect(cmd.Context(), c.Repository, c.Artifacts, c.Logger)
	if err != nil {
		exitError("gc failed: %v", err)
	}
	fmt.Printf("Scanned %d artifacts, %d referenced, %d deleted\n",
		result.Scanned, result.Referenced, result.Deleted)
}
