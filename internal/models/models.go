package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MatchRecord is one resume's scoring result against a job description
type MatchRecord struct {
	Rank              Rank   `json:"Rank"`
	ResumeName        string `json:"Resume Name"`
	OverallScore      Value  `json:"Overall Match Score"`
	KeywordsMatched   string `json:"Keywords Matched,omitempty"`
	SemanticRelevance Value  `json:"Semantic Relevance"`
	Summary           string `json:"Summary"`
}

// ResumeFile is a resume blob attached to an evaluation request
type ResumeFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// EvaluationRequest holds the job description and the resumes to score
type EvaluationRequest struct {
	JobDescription string
	Resumes        []ResumeFile
}

// EvaluationResponse is the body returned by the evaluation endpoint.
// Exactly one of Error or Results is meaningful.
type EvaluationResponse struct {
	Success bool          `json:"success,omitempty"`
	Error   string        `json:"error,omitempty"`
	Results []MatchRecord `json:"results,omitempty"`
}

// Rank is a 1-based position. It decodes from a JSON integer or an
// ordinal string such as "1st" or "22nd".
type Rank int

// UnmarshalJSON implements json.Unmarshaler
func (r *Rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("invalid rank: null")
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid rank: %w", err)
		}
	} else {
		raw = string(data)
	}

	n, err := ParseRank(raw)
	if err != nil {
		return err
	}
	*r = n
	return nil
}

// ParseRank parses "3", "3.0" or "3rd" into a Rank. Ranks start at 1.
func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid rank %q", s)
		}
		n = int(f)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid rank %q: must be 1 or greater", s)
	}
	return Rank(n), nil
}

// Value is a score that the server may send either as a number or as a
// pre-formatted string. It keeps the display text.
type Value string

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}
		*v = Value(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid score %s", data)
		}
		*v = Value(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// String returns the display text
func (v Value) String() string {
	return string(v)
}

// Float returns the numeric value and whether the text was numeric
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(string(v)), "%"), 64)
	return f, err == nil
}
