package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "matches")
	require.NoError(t, ExportToExcel(sampleRecords(), outputPath))

	_, err := os.Stat(outputPath + ".xlsx")
	assert.NoError(t, err)
}

// TestExportToExcel_WritesRankedRows checks cell contents of the matches sheet
func TestExportToExcel_WritesRankedRows(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "matches.xlsx")
	require.NoError(t, ExportToExcel(sampleRecords(), outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "Rank"},
		{"B1", "Resume Name"},
		{"A2", "1"},
		{"B2", "Jane Doe"},
		{"C2", "87"},
		{"D2", "python, sql"},
		{"F2", "Strong Match"},
		{"D3", "-"},
		{"F3", "Weak Match"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(matchesSheet, tt.cell)
		require.NoError(t, err, tt.cell)
		assert.Equal(t, tt.want, got, "cell %s", tt.cell)
	}
}

// TestExportToExcel_FillsByServiceLabel checks every label the service
// emits gets a row color
func TestExportToExcel_FillsByServiceLabel(t *testing.T) {
	records := []models.MatchRecord{
		{Rank: 1, ResumeName: "a.pdf", OverallScore: "91", SemanticRelevance: "0.9", Summary: "Strong match"},
		{Rank: 2, ResumeName: "b.pdf", OverallScore: "70", SemanticRelevance: "0.7", Summary: "Moderate match"},
		{Rank: 3, ResumeName: "c.pdf", OverallScore: "30", SemanticRelevance: "0.3", Summary: "Low match"},
		{Rank: 4, ResumeName: "d.pdf", OverallScore: "10", SemanticRelevance: "0.1", Summary: "Unrated"},
	}
	outputPath := filepath.Join(t.TempDir(), "fills.xlsx")
	require.NoError(t, ExportToExcel(records, outputPath))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	fillColor := func(c string) string {
		id, err := f.GetCellStyle(matchesSheet, c)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		if len(style.Fill.Color) == 0 {
			return ""
		}
		return strings.ToUpper(style.Fill.Color[0])
	}

	for c, tag := range map[string]string{"F2": "strong-match", "F3": "moderate-match", "F4": "low-match"} {
		got := fillColor(c)
		assert.True(t, strings.HasSuffix(got, summaryFills[tag]), "%s fill %q, want %s", c, got, summaryFills[tag])
	}
	assert.Empty(t, fillColor("F5"))
}

// TestExportToExcel_EmptyResults tests export with empty results
func TestExportToExcel_EmptyResults(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, ExportToExcel([]models.MatchRecord{}, outputPath))

	_, err := os.Stat(outputPath)
	assert.NoError(t, err)
}

func TestSummaryCounts(t *testing.T) {
	records := []models.MatchRecord{
		{Summary: "Low match"},
		{Summary: "Strong match"},
		{Summary: "Strong match"},
	}

	assert.Equal(t, []SummaryCount{
		{Summary: "Strong match", Count: 2},
		{Summary: "Low match", Count: 1},
	}, SummaryCounts(records))
}
