package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kanjisync/kanjisync/internal/subject"
)

// SearchCommand searches hydrated subjects.
type SearchCommand struct {
	base
	Query string
	Limit int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand() *SearchCommand {
	return &SearchCommand{}
}

// ParseFlags parses command line flags
func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Query, "q", "", "Search text: characters, meaning or reading (required)")
	fs.IntVar(&cmd.Limit, "limit", 20, "Maximum number of results")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search -q <text> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s search -q 取る\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search -q \"to take\" -limit 5\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(cmd.Query) == "" {
		return errors.New("-q is required")
	}
	return nil
}

// Run executes the search command
func (cmd *SearchCommand) Run() error {
	app, err := cmd.open(nil)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Cache.Search(context.Background(), cmd.Query, cmd.Limit)
	if err != nil {
		return err
	}

	out := cmd.out()
	if len(results) == 0 {
		fmt.Fprintf(out, "No subjects match %q\n", cmd.Query)
		return nil
	}
	for _, s := range results {
		fmt.Fprintln(out, formatSubject(s))
	}
	return nil
}

// formatSubject renders one result line: id, kind, level, glyph, meaning, readings.
func formatSubject(s subject.Subject) string {
	meaning := ""
	if m, ok := subject.PrimaryMeaning(s); ok {
		meaning = m.Meaning
	}
	line := fmt.Sprintf("%6d  %-15s L%-2d  %s  %s", s.ID, s.Kind, s.Level, s.DisplayCharacters(), meaning)
	if readings := subject.AcceptedReadings(s); len(readings) > 0 {
		line += "  [" + strings.Join(readings, ", ") + "]"
	}
	return line
}
