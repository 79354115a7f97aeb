package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an entry from the history",
	Args:  cobra.ExactArgs(1),
	Run:   runDelete,
}

func runDelete(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	c := initContext()
	defer c.Close()

	if err := c.Repository.Delete(cmd.Context(), id); err != nil {
		exitError("delete failed: %v", err)
	}
	fmt.Printf("Entry %d removed\n", id)
}
