package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-matcher/internal/client"
	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/controller"
	"github.com/fmuoria/resume-matcher/internal/export"
	"github.com/fmuoria/resume-matcher/internal/ingestion"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/results"
)

type evaluateOptions struct {
	job          string
	jobFile      string
	resumes      []string
	dirs         []string
	gmailSubject string
	top          string
	csvDir       string
	xlsxPath     string
	endpoint     string
	timeout      string
	preflight    bool
}

func newEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Rank resumes against a job description",
		Long: `Send the job description and resumes to the matching service and print
the top results. Exports always contain every result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.job, "job", "", "Job description text")
	flags.StringVar(&opts.jobFile, "job-file", "", "Path to a file holding the job description")
	flags.StringArrayVarP(&opts.resumes, "resume", "r", nil, "Resume file (repeatable)")
	flags.StringArrayVar(&opts.dirs, "dir", nil, "Directory of resumes (repeatable)")
	flags.StringVar(&opts.gmailSubject, "gmail-subject", "", "Also fetch resumes attached to Gmail messages with this subject")
	flags.StringVar(&opts.top, "top", "", "Number of results to show, or \"all\" (default from config)")
	flags.StringVar(&opts.csvDir, "csv", "", "Write resume_matches.csv into this directory")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "Write an Excel workbook to this path")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Matching service base URL (overrides config)")
	flags.StringVar(&opts.timeout, "timeout", "", "Request timeout, e.g. 2m (overrides config)")
	flags.BoolVar(&opts.preflight, "preflight", false, "Warn about resumes whose text cannot be extracted")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.timeout != "" {
		cfg.Timeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}

	filter := cfg.TopN()
	if opts.top != "" {
		if filter, err = results.ParseFilter(opts.top); err != nil {
			return fmt.Errorf("--top: %w", err)
		}
	}

	jobDescription := opts.job
	if opts.jobFile != "" {
		if opts.job != "" {
			return fmt.Errorf("cannot use --job with --job-file")
		}
		data, err := os.ReadFile(opts.jobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		jobDescription = string(data)
	}

	resumes, err := ingestion.CollectResumes(append(append([]string{}, opts.resumes...), opts.dirs...))
	if err != nil {
		return err
	}

	if opts.gmailSubject != "" {
		fetched, err := fetchGmailResumes(cmd, cfg, opts.gmailSubject)
		if err != nil {
			return err
		}
		resumes = append(resumes, fetched...)
	}

	if opts.preflight {
		for _, issue := range ingestion.Preflight(resumes) {
			fmt.Fprintf(stderr, "Warning: %s: %s\n", issue.Name, issue.Reason)
		}
	}

	renderer := results.NewRenderer(filter)
	view := &cliView{out: stderr, count: len(resumes)}
	ctrl := controller.New(client.New(cfg.Endpoint, client.WithTimeout(timeout)), view, renderer)

	form := controller.Form{
		JobDescription: jobDescription,
		Resumes:        resumes,
	}
	if err := ctrl.Submit(ctx, form); err != nil {
		return fmt.Errorf("%w: %w", errAlerted, err)
	}

	rows := renderer.Rows()
	if err := results.WriteTable(cmd.OutOrStdout(), rows); err != nil {
		return err
	}
	records := renderer.Records()
	fmt.Fprintf(stderr, "Showing %d of %d results\n", len(rows), len(records))

	return exportResults(stderr, records, opts)
}

func exportResults(w io.Writer, records []models.MatchRecord, opts *evaluateOptions) error {
	if opts.csvDir != "" {
		path, err := export.ExportCSV(records, opts.csvDir)
		if err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		fmt.Fprintf(w, "CSV written to %s\n", path)
	}

	if opts.xlsxPath != "" {
		if err := export.ExportToExcel(records, opts.xlsxPath); err != nil {
			return fmt.Errorf("failed to export Excel: %w", err)
		}
		fmt.Fprintf(w, "Excel workbook written to %s\n", opts.xlsxPath)
	}

	return nil
}

func fetchGmailResumes(cmd *cobra.Command, cfg *config.Config, subject string) ([]models.ResumeFile, error) {
	if cfg.GmailCredentialsPath == "" {
		return nil, fmt.Errorf("gmail_credentials_path is not configured")
	}
	tokenPath, err := cfg.GmailTokenFile()
	if err != nil {
		return nil, err
	}

	gh, err := ingestion.NewGmailHandler(cmd.Context(), ingestion.GmailAuth{
		CredentialsPath: cfg.GmailCredentialsPath,
		TokenPath:       tokenPath,
		Prompt:          cmd.ErrOrStderr(),
		Input:           cmd.InOrStdin(),
	}, ingestion.NewFileHandler(cfg.UploadsDir))
	if err != nil {
		return nil, err
	}

	return gh.FetchResumes(cmd.Context(), subject)
}

// cliView reports controller state on a terminal
type cliView struct {
	out   io.Writer
	count int
}

func (v *cliView) SetLoading(visible bool) {
	if visible {
		fmt.Fprintf(v.out, "Matching %d %s...\n", v.count, plural(v.count, "resume"))
	}
}

func (v *cliView) SetResultsVisible(bool) {}

func (v *cliView) Alert(message string) {
	fmt.Fprintln(v.out, strings.TrimSpace(message))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
