package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/kanjisync/kanjisync/internal/crypto"
)

// KeygenCommand prints a fresh TOKEN_ENCRYPTION_KEY.
type KeygenCommand struct {
	base
}

// NewKeygenCommand creates a new KeygenCommand
func NewKeygenCommand() *KeygenCommand {
	return &KeygenCommand{}
}

// ParseFlags parses command line flags
func (cmd *KeygenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s keygen\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print a random key for TOKEN_ENCRYPTION_KEY. With the key set, the\n")
		fmt.Fprintf(os.Stderr, "WaniKani API token is stored encrypted in the settings table.\n")
	}
	return fs.Parse(args)
}

// Run executes the keygen command
func (cmd *KeygenCommand) Run() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.out(), key)
	return nil
}
