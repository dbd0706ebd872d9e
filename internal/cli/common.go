// Package cli implements the one-shot commands: hydrate, search and grade.
package cli

import (
	"flag"
	"io"
	"os"

	"github.com/kanjisync/kanjisync/internal/config"
	"github.com/kanjisync/kanjisync/internal/entrypoint"
	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/logger"
)

// base holds what every command shares.
type base struct {
	DatabasePath string
	Verbose      bool

	// Out receives command output. Defaults to stdout.
	Out io.Writer
	// Config overrides environment configuration; used by tests.
	Config *config.Config
}

func (b *base) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *base) open(onProgress hydration.ProgressFunc) (*entrypoint.App, error) {
	cfg := b.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if b.DatabasePath != "" {
		cfg.Database.Path = b.DatabasePath
	}

	level := "warn"
	if b.Verbose {
		level = "debug"
	}
	cfg.Log.Level = level
	log := logger.SetupWriter(os.Stderr, level)

	return entrypoint.Build(cfg, log, entrypoint.Options{OnProgress: onProgress})
}

func (b *base) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&b.DatabasePath, "db", "", "Path to the database file (default: DATABASE_PATH or "+config.DefaultDatabasePath+")")
	fs.BoolVar(&b.Verbose, "verbose", false, "Enable verbose logging")
}
