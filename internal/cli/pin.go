package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brencon/clipsy/internal/database"
)

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Toggle an entry's pin",
	Long:  `Pinned entries are exempt from cap and age eviction.`,
	Args:  cobra.ExactArgs(1),
	Run:   runPin,
}

func runPin(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	c := initContext()
	defer c.Close()

	if err := c.Repository.TogglePin(cmd.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			exitError("no entry with id %d", id)
		}
		exitError("pin failed: %v", err)
	}

	entry, err := c.Repository.Get(cmd.Context(), id)
	if err != nil {
		exitError("pin failed: %v", err)
	}
	if entry.Pinned {
		fmt.Printf("Entry %d pinned\n", id)
	} else {
		fmt.Printf("Entry %d unpinned\n", id)
	}
}
