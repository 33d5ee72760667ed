package ingestion

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MinExtractedTextLength is the minimum text length required for successful extraction
const MinExtractedTextLength = 50

// PreflightIssue describes a resume the service will most likely drop
type PreflightIssue struct {
	Name   string
	Reason string
}

// ExtractText extracts plain text from a PDF or DOCX resume
func ExtractText(resume models.ResumeFile) (string, error) {
	switch resume.ContentType {
	case MIMEPDF:
		return extractPDF(resume.Data)
	case MIMEDOCX:
		return extractDOCX(resume.Data)
	default:
		return "", fmt.Errorf("unsupported content type: %s", resume.ContentType)
	}
}

// Preflight extracts text from every resume and reports those without
// usable text, e.g. scanned images. The service skips such files.
func Preflight(resumes []models.ResumeFile) []PreflightIssue {
	var issues []PreflightIssue
	for _, r := range resumes {
		text, err := ExtractText(r)
		switch {
		case err != nil:
			issues = append(issues, PreflightIssue{Name: r.Name, Reason: err.Error()})
		case len(strings.TrimSpace(text)) < MinExtractedTextLength:
			issues = append(issues, PreflightIssue{Name: r.Name, Reason: "extracted text is too short (scanned image or empty document?)"})
		}
	}

	for _, issue := range issues {
		log.Printf("Preflight warning for %s: %s", issue.Name, issue.Reason)
	}
	return issues
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripXMLTags(doc.Editable().GetContent()), nil
}

// stripXMLTags drops the WordprocessingML markup GetContent returns
func stripXMLTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			sb.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
