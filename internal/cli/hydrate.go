package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kanjisync/kanjisync/internal/hydration"
)

// HydrateCommand performs one hydration run and prints progress.
type HydrateCommand struct {
	base
	Token string
	Reset bool
}

// NewHydrateCommand creates a new HydrateCommand
func NewHydrateCommand() *HydrateCommand {
	return &HydrateCommand{}
}

// ParseFlags parses command line flags
func (cmd *HydrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hydrate", flag.ContinueOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Token, "token", "", "WaniKani API token to store before running")
	fs.BoolVar(&cmd.Reset, "reset", false, "Forget the hydration cursor and re-download every subject")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hydrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download new and changed subjects into the local database.\n")
		fmt.Fprintf(os.Stderr, "An interrupted run resumes from the last committed page.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s hydrate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s hydrate -token $WANIKANI_API_TOKEN -reset\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the hydrate command. SIGINT aborts the run between pages; the
// next invocation resumes it.
func (cmd *HydrateCommand) Run() error {
	out := cmd.out()
	app, err := cmd.open(func(p hydration.Progress) {
		if p.State != hydration.StatePersisting {
			return
		}
		if f, ok := p.Fraction(); ok {
			fmt.Fprintf(out, "\r%s: page %d, %d subjects (%.0f%%)", p.Strategy, p.PagesCompleted+1, p.ObjectsFetched, f*100)
		} else {
			fmt.Fprintf(out, "\r%s: page %d, %d subjects", p.Strategy, p.PagesCompleted+1, p.ObjectsFetched)
		}
	})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Token != "" {
		if err := app.Settings.SetHydrationAPIToken(cmd.Token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
	}
	if cmd.Reset {
		if err := app.Cursors.ResetCursor(ctx); err != nil {
			return fmt.Errorf("failed to reset cursor: %w", err)
		}
		app.Cache.InvalidateAll()
	}

	res, err := app.Scheduler.RunNow(ctx, hydration.TriggerCLI)
	fmt.Fprintln(out)
	if err != nil {
		if hydration.IsTransient(err) {
			return fmt.Errorf("%w (run again to resume)", err)
		}
		return err
	}

	switch {
	case res.Skipped && res.SkipReason == hydration.SkipDisabled:
		return fmt.Errorf("hydration is disabled or no API token is configured (use -token or WANIKANI_API_TOKEN)")
	case res.Skipped:
		fmt.Fprintf(out, "Skipped: %s\n", res.SkipReason)
	case res.Stopped:
		fmt.Fprintf(out, "Stopped after %d pages\n", res.PagesFetched)
	default:
		fmt.Fprintf(out, "Done: %s hydration, %d subjects in %d pages\n", res.Strategy, res.ObjectsFetched, res.PagesFetched)
	}
	return nil
}
