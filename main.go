package main

import (
	"fmt"
	"os"

	"github.com/kanjisync/kanjisync/internal/cli"
	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "hydrate":
		cmd = cli.NewHydrateCommand()
	case "search":
		cmd = cli.NewSearchCommand()
	case "grade":
		cmd = cli.NewGradeCommand()
	case "keygen":
		cmd = cli.NewKeygenCommand()
	case "version":
		fmt.Printf("kanjisync %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  hydrate   Download new and changed subjects from WaniKani\n")
	fmt.Fprintf(os.Stderr, "  search    Search hydrated subjects by characters, meaning or reading\n")
	fmt.Fprintf(os.Stderr, "  grade     Grade a reading or meaning answer for a subject\n")
	fmt.Fprintf(os.Stderr, "  keygen    Print a new TOKEN_ENCRYPTION_KEY\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
