package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/results"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	matchesSheet = "Ranked Matches"
)

// summaryFills maps a summary style tag to its row background
var summaryFills = map[string]string{
	"strong-match":   "C6EFCE",
	"moderate-match": "FFEB9C",
	"low-match":      "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// DefaultExcelFilename returns a timestamped workbook name
func DefaultExcelFilename() string {
	return fmt.Sprintf("Resume_Matches_%s.xlsx", time.Now().Format("2006-01-02_150405"))
}

// ExportToExcel writes the full result set to an .xlsx workbook
func ExportToExcel(records []models.MatchRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(matchesSheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", matchesSheet, err)
	}

	if err := createSummarySheet(f, records); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createMatchesSheet(f, records); err != nil {
		return fmt.Errorf("failed to create ranked matches sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

// createSummarySheet lists totals and a count per summary label
func createSummarySheet(f *excelize.File, records []models.MatchRecord) error {
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "B", 30)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(summarySheet, cell("A", row), "Resume Match Report")
	f.SetCellStyle(summarySheet, cell("A", row), cell("B", row), headerStyle)
	f.MergeCell(summarySheet, cell("A", row), cell("B", row))
	row += 2

	f.SetCellValue(summarySheet, cell("A", row), "Generated:")
	f.SetCellStyle(summarySheet, cell("A", row), cell("A", row), labelStyle)
	f.SetCellValue(summarySheet, cell("B", row), time.Now().Format("2006-01-02 15:04:05"))
	row++

	f.SetCellValue(summarySheet, cell("A", row), "Resumes Ranked:")
	f.SetCellStyle(summarySheet, cell("A", row), cell("A", row), labelStyle)
	f.SetCellValue(summarySheet, cell("B", row), len(records))
	row += 2

	if len(records) == 0 {
		return nil
	}

	f.SetCellValue(summarySheet, cell("A", row), "By Summary:")
	f.SetCellStyle(summarySheet, cell("A", row), cell("B", row), headerStyle)
	f.MergeCell(summarySheet, cell("A", row), cell("B", row))
	row++

	for _, c := range SummaryCounts(records) {
		f.SetCellValue(summarySheet, cell("A", row), c.Summary)
		f.SetCellValue(summarySheet, cell("B", row), c.Count)
		row++
	}
	row++

	if top, ok := records[0].OverallScore.Float(); ok {
		f.SetCellValue(summarySheet, cell("A", row), "Top Score:")
		f.SetCellStyle(summarySheet, cell("A", row), cell("A", row), labelStyle)
		f.SetCellValue(summarySheet, cell("B", row), fmt.Sprintf("%.2f (%s)", top, records[0].ResumeName))
	}

	return nil
}

// createMatchesSheet writes one color-coded row per record
func createMatchesSheet(f *excelize.File, records []models.MatchRecord) error {
	widths := []float64{8, 32, 14, 40, 18, 18}
	for i, w := range widths {
		col := string(rune('A' + i))
		f.SetColWidth(matchesSheet, col, col, w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	plainStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder})
	if err != nil {
		return err
	}

	fillStyles := make(map[string]int, len(summaryFills))
	for tag, color := range summaryFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		fillStyles[tag] = style
	}

	for col, header := range results.Columns {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(matchesSheet, c, header)
		f.SetCellStyle(matchesSheet, c, c, headerStyle)
	}

	for i, rec := range records {
		row := i + 2
		r := results.NewRow(rec)

		f.SetCellValue(matchesSheet, cell("A", row), int(rec.Rank))
		f.SetCellValue(matchesSheet, cell("B", row), r.ResumeName)
		setNumeric(f, cell("C", row), rec.OverallScore)
		f.SetCellValue(matchesSheet, cell("D", row), r.KeywordsMatched)
		setNumeric(f, cell("E", row), rec.SemanticRelevance)
		f.SetCellValue(matchesSheet, cell("F", row), r.Summary)

		style, ok := fillStyles[r.StyleTag]
		if !ok {
			style = plainStyle
		}
		f.SetCellStyle(matchesSheet, cell("A", row), cell("F", row), style)
	}

	if len(records) > 0 {
		f.AutoFilter(matchesSheet, fmt.Sprintf("A1:F%d", len(records)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(matchesSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// SummaryCount is the number of records sharing a summary label
type SummaryCount struct {
	Summary string
	Count   int
}

// SummaryCounts tallies records per summary label, most frequent first
func SummaryCounts(records []models.MatchRecord) []SummaryCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range records {
		if _, seen := counts[r.Summary]; !seen {
			order = append(order, r.Summary)
		}
		counts[r.Summary]++
	}

	out := make([]SummaryCount, len(order))
	for i, s := range order {
		out[i] = SummaryCount{Summary: s, Count: counts[s]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func setNumeric(f *excelize.File, c string, v models.Value) {
	if n, ok := v.Float(); ok {
		f.SetCellValue(matchesSheet, c, n)
		return
	}
	f.SetCellValue(matchesSheet, c, v.String())
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
