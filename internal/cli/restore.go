package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brencon/clipsy/internal/classify"
	"github.com/brencon/clipsy/internal/clipboard"
	"github.com/brencon/clipsy/internal/database"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Copy a stored entry back onto the clipboard",
	Long: `Restore writes the entry's original payload to the clipboard, byte for
byte. Sensitive entries restore their full unmasked content.`,
	Args: cobra.ExactArgs(1),
	Run:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	c := initContext()
	defer c.Close()

	source, err := clipboard.NewSystemSource(cmd.Context())
	if err != nil {
		exitError("failed to access clipboard: %v", err)
	}
	monitor := clipboard.NewMonitor(source, c.Repository, c.Artifacts,
		classify.New(c.Config.PreviewLength), c.Config, c.Logger)

	if err := monitor.Restore(cmd.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			exitError("no entry with id %d", id)
		}
		exitError("restore failed: %v", err)
	}
	fmt.Printf("Restored entry %d to the clipboard\n", id)
}

// parseID converts a command argument to an entry id.
func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		exitError("invalid entry id %q", arg)
	}
	return id
}
