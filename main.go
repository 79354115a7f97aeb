// Command clipsy is a clipboard history manager: a capture daemon plus a
// CLI for querying and restoring stored entries.
package main

import (
	"os"

	"github.com/brencon/clipsy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
