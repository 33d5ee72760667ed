// Package results holds the ranked match records of the latest evaluation
// and turns them into display rows.
package results

import (
	"strconv"
	"strings"
	"sync"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// KeywordsPlaceholder is shown when a record has no matched keywords
const KeywordsPlaceholder = "-"

// Row is one rendered table line
type Row struct {
	Rank              string
	ResumeName        string
	Score             string
	KeywordsMatched   string
	SemanticRelevance string
	Summary           string
	StyleTag          string
}

// Columns are the table headers, in Row field order
var Columns = []string{"Rank", "Resume Name", "Match Score", "Keywords Matched", "Semantic Relevance", "Summary"}

// Cells returns the row's visible values in Columns order
func (r Row) Cells() []string {
	return []string{r.Rank, r.ResumeName, r.Score, r.KeywordsMatched, r.SemanticRelevance, r.Summary}
}

// Listener is called with the freshly rendered rows after every change
type Listener func(rows []Row)

// Renderer owns the unfiltered records of the latest response and the
// current top-N filter
type Renderer struct {
	mu        sync.RWMutex
	records   []models.MatchRecord
	filter    Filter
	listeners map[int]Listener
	nextID    int
}

// NewRenderer creates an empty renderer using the given initial filter
func NewRenderer(filter Filter) *Renderer {
	return &Renderer{
		filter:    filter,
		listeners: make(map[int]Listener),
	}
}

// Replace discards the previous records and stores a copy of records
func (r *Renderer) Replace(records []models.MatchRecord) {
	r.mu.Lock()
	r.records = append([]models.MatchRecord(nil), records...)
	r.mu.Unlock()

	r.notify()
}

// SetFilter changes the top-N selection and repaints from the stored
// records; nothing is fetched again
func (r *Renderer) SetFilter(f Filter) {
	r.mu.Lock()
	r.filter = f
	r.mu.Unlock()

	r.notify()
}

// Filter returns the current selection
func (r *Renderer) Filter() Filter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// Records returns a copy of the full, unfiltered record set
func (r *Renderer) Records() []models.MatchRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recordsCopy := make([]models.MatchRecord, len(r.records))
	copy(recordsCopy, r.records)
	return recordsCopy
}

// Rows renders with the current filter
func (r *Renderer) Rows() []Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Render(r.records, r.filter)
}

// Subscribe registers fn for repaints and returns a function removing it
func (r *Renderer) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Renderer) notify() {
	r.mu.RLock()
	rows := Render(r.records, r.filter)
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	for _, l := range listeners {
		l(rows)
	}
}

// Render slices records to the filter and converts them to rows. The
// order of records is kept as given.
func Render(records []models.MatchRecord, f Filter) []Row {
	limit := f.Limit(len(records))
	rows := make([]Row, 0, limit)
	for _, rec := range records[:limit] {
		rows = append(rows, NewRow(rec))
	}
	return rows
}

// NewRow converts a single record
func NewRow(rec models.MatchRecord) Row {
	keywords := rec.KeywordsMatched
	if keywords == "" {
		keywords = KeywordsPlaceholder
	}

	return Row{
		Rank:              strconv.Itoa(int(rec.Rank)),
		ResumeName:        rec.ResumeName,
		Score:             rec.OverallScore.String(),
		KeywordsMatched:   keywords,
		SemanticRelevance: rec.SemanticRelevance.String(),
		Summary:           rec.Summary,
		StyleTag:          StyleTag(rec.Summary),
	}
}

// StyleTag derives the style category of a summary label: lowercased, each
// space replaced by a hyphen. Other whitespace is left alone.
func StyleTag(summary string) string {
	return strings.ReplaceAll(strings.ToLower(summary), " ", "-")
}
