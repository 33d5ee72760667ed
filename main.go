package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errAlerted marks failures that were already reported to the user
var errAlerted = errors.New("evaluation failed")

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "resume-matcher",
		Short:         "Match resumes against a job description",
		Long:          "Resume Matcher sends a job description and a batch of PDF or DOCX resumes to the matching service and shows the ranked results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newEvaluateCommand(),
		newConfigCommand(),
		newGUICommand(),
	)

	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errAlerted) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
