package gui

import (
	"sync"

	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/results"
)

// resumeList holds the resumes picked for the next submission. A file
// added twice under the same name replaces the earlier copy.
type resumeList struct {
	mu    sync.Mutex
	files []models.ResumeFile
}

func (l *resumeList) Add(files ...models.ResumeFile) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range files {
		replaced := false
		for i := range l.files {
			if l.files[i].Name == f.Name {
				l.files[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			l.files = append(l.files, f)
		}
	}
}

func (l *resumeList) Clear() {
	l.mu.Lock()
	l.files = nil
	l.mu.Unlock()
}

func (l *resumeList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.files)
}

func (l *resumeList) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.files))
	for i, f := range l.files {
		names[i] = f.Name
	}
	return names
}

// Files returns a copy safe to hand to a background submission
func (l *resumeList) Files() []models.ResumeFile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ResumeFile(nil), l.files...)
}

// importanceFor colors the summary cell by its style tag
func importanceFor(styleTag string) widget.Importance {
	switch styleTag {
	case "strong-match":
		return widget.SuccessImportance
	case "moderate-match":
		return widget.WarningImportance
	case "low-match":
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

// topNOptions returns the preset labels plus current when it is a valid
// filter that no preset covers, e.g. "7" from the config file
func topNOptions(current string) []string {
	labels := results.PresetLabels()
	f, err := results.ParseFilter(current)
	if err != nil {
		return labels
	}
	for _, l := range labels {
		if l == f.String() {
			return labels
		}
	}

	// numeric order, "all" stays last
	const many = 1 << 30
	out := make([]string, 0, len(labels)+1)
	inserted := false
	for i, p := range results.Presets {
		if !inserted && (p.IsAll() || p.Limit(many) > f.Limit(many)) {
			out = append(out, f.String())
			inserted = true
		}
		out = append(out, labels[i])
	}
	return out
}
