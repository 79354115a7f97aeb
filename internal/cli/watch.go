package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/brencon/clipsy/internal/app"
	"github.com/brencon/clipsy/internal/clipboard"
	"github.com/brencon/clipsy/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the clipboard capture daemon",
	Long: `Watch polls the system clipboard and stores everything copied into the
history. It runs in the foreground until interrupted.`,
	Run: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitError("%v", err)
	}
	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := clipboard.NewSystemSource(ctx)
	if err != nil {
		exitError("failed to access clipboard: %v", err)
	}

	daemon, err := app.New(cfg, logger, source)
	if err != nil {
		exitError("%v", err)
	}
	defer daemon.Close()

	go printEvents(ctx, daemon.Monitor.Events())

	if err := daemon.Run(ctx); err != nil {
		exitError("%v", err)
	}
}

// printEvents mirrors monitor activity onto stdout while the daemon runs
// in a terminal.
func printEvents(ctx context.Context, events <-chan clipboard.Event) {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	red := color.New(color.FgRed)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev.Type {
			case clipboard.EventCaptured:
				green.Printf("+ %d", ev.ID)
				fmt.Printf(" %s: %s\n", ev.Kind, ev.Preview)
			case clipboard.EventBumped:
				cyan.Printf("~ %d", ev.ID)
				fmt.Printf(" %s: %s\n", ev.Kind, ev.Preview)
			case clipboard.EventError:
				red.Printf("! %v\n", ev.Err)
			}
		}
	}
}
