package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is the top-N display truncation. The zero value shows all rows.
type Filter struct {
	n int
}

// All shows every record
var All = Filter{}

// DefaultFilter is the initial selection
var DefaultFilter = Top(10)

// Presets are the choices offered by the selector, in display order
var Presets = []Filter{Top(3), Top(5), Top(10), Top(20), Top(50), All}

// Top limits the display to the first n records
func Top(n int) Filter {
	if n <= 0 {
		return All
	}
	return Filter{n: n}
}

// ParseFilter accepts "all" or a positive integer
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return All, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return All, fmt.Errorf("invalid top-N value %q: must be a positive integer or \"all\"", s)
	}
	return Top(n), nil
}

// IsAll reports whether the filter shows every record
func (f Filter) IsAll() bool {
	return f.n == 0
}

// Limit returns how many of total records the filter shows
func (f Filter) Limit(total int) int {
	if f.IsAll() || f.n > total {
		return total
	}
	return f.n
}

func (f Filter) String() string {
	if f.IsAll() {
		return "all"
	}
	return strconv.Itoa(f.n)
}

// PresetLabels returns the selector labels for Presets
func PresetLabels() []string {
	labels := make([]string, len(Presets))
	for i, p := range Presets {
		labels[i] = p.String()
	}
	return labels
}
