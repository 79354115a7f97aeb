package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire clipboard history",
	Long: `Clear deletes every stored entry, pinned entries included, along with
every image artifact. This cannot be undone.`,
	Run: runClear,
}

var clearYes bool

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) {
	if !clearYes && !confirm("Delete the entire clipboard history?") {
		fmt.Println("Aborted")
		return
	}

	c := initContext()
	defer c.Close()

	n, err := c.Repository.ClearAll(cmd.Context())
	if err != nil {
		exitError("clear failed: %v", err)
	}
	fmt.Printf("Removed %d entries\n", n)
}

// confirm asks a yes/no question on the terminal.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
