package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/brencon/clipsy/internal/database"
)

// printEntries renders a history listing, one entry per line. Sensitive
// entries surface only their masked preview.
func printEntries(entries []*database.Entry) {
	if len(entries) == 0 {
		fmt.Println("No entries")
		return
	}

	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)
	red := color.New(color.FgRed)

	for _, entry := range entries {
		yellow.Printf("%5d", entry.ID)
		if entry.Pinned {
			cyan.Print(" *")
		} else {
			fmt.Print("  ")
		}
		faint.Printf(" %-5s %-14s ", entry.Kind, humanize.Time(entry.LastSeenAt))
		if entry.Sensitive {
			red.Print("[sensitive] ")
		}
		fmt.Println(entry.DisplayLabel())
	}
}
