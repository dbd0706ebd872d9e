package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kanjisync/kanjisync/internal/grading"
	"github.com/kanjisync/kanjisync/internal/subject"
)

// GradeCommand grades one answer against a hydrated subject.
type GradeCommand struct {
	base
	SubjectID int64
	Mode      string
	Answer    string
}

// NewGradeCommand creates a new GradeCommand
func NewGradeCommand() *GradeCommand {
	return &GradeCommand{}
}

// ParseFlags parses command line flags
func (cmd *GradeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("grade", flag.ContinueOnError)
	cmd.registerFlags(fs)
	fs.Int64Var(&cmd.SubjectID, "id", 0, "Subject id (required)")
	fs.StringVar(&cmd.Mode, "mode", "meaning", "What is being answered: reading or meaning")
	fs.StringVar(&cmd.Answer, "answer", "", "The answer to grade")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s grade -id <subject> -mode reading|meaning -answer <text>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.SubjectID <= 0 {
		return errors.New("-id is required")
	}
	if cmd.Mode != "reading" && cmd.Mode != "meaning" {
		return fmt.Errorf("-mode must be reading or meaning, got %q", cmd.Mode)
	}
	return nil
}

// Run executes the grade command
func (cmd *GradeCommand) Run() error {
	app, err := cmd.open(nil)
	if err != nil {
		return err
	}
	defer app.Close()

	subj, found, err := app.Cache.Get(context.Background(), cmd.SubjectID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("subject %d not found; run hydrate first", cmd.SubjectID)
	}

	var result grading.Result
	if cmd.Mode == "reading" {
		if !subject.HasReading(subj) {
			return fmt.Errorf("subject %d (%s) has no readings", subj.ID, subj.Kind)
		}
		result = grading.GradeReading(cmd.Answer, subj)
	} else {
		result = grading.GradeMeaning(cmd.Answer, subj)
	}

	out := cmd.out()
	fmt.Fprintln(out, formatSubject(subj))
	fmt.Fprintf(out, "%s: %s\n", cmd.Mode, result.Status)
	if result.Hint != "" {
		fmt.Fprintln(out, result.Hint)
	}
	return nil
}
