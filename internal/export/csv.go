package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// CSVFilename is the fixed name of the CSV download
const CSVFilename = "resume_matches.csv"

// CSVHeader is the first line of every export
var CSVHeader = []string{"Resume Name", "Match Score", "Keywords Matched", "Semantic Relevance", "Summary"}

// WriteCSV serializes every record (the top-N display filter does not
// apply). Text columns are always quoted; the score columns are quoted only
// when they need to be. Embedded quotes are doubled.
func WriteCSV(w io.Writer, records []models.MatchRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		fields := []string{
			quote(r.ResumeName),
			field(r.OverallScore.String()),
			quote(r.KeywordsMatched),
			field(r.SemanticRelevance.String()),
			quote(r.Summary),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.ResumeName, err)
		}
	}

	return bw.Flush()
}

// ExportCSV writes resume_matches.csv into dir and returns its path
func ExportCSV(records []models.MatchRecord, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	outputPath := filepath.Clean(filepath.Join(dir, CSVFilename))
	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close CSV file: %w", err)
	}

	return outputPath, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
