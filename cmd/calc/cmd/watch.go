package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/styles"
	"github.com/pengelbrecht/calc/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-evaluate a batch file whenever it changes",
	Long: `Evaluate a batch file, then watch it and print fresh results after
every save until interrupted.

The delay between the last change and re-evaluation is taken from
watch.debounce in the config file (default 100ms).`,
	Args: exactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(c *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(args[0],
		watch.WithDebounce(cfg.Watch.GetDebounce()),
		watch.WithLogger(logger),
	)
	return watchLoop(ctx, c, w)
}

func watchLoop(ctx context.Context, c *cobra.Command, w *watch.Watcher) error {
	out := c.OutOrStdout()

	printEvent(c, w.Evaluate())

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			fmt.Fprintln(out, styles.RenderDim("── "+time.Now().Format("15:04:05")+" ──"))
			printEvent(c, ev)
		}
	}
}

func printEvent(c *cobra.Command, ev watch.Event) {
	if ev.Err != nil {
		fmt.Fprintln(c.OutOrStdout(), styles.RenderError(ev.Err.Error()))
		return
	}
	writeOutcomes(c.OutOrStdout(), ev.Outcomes)
}
