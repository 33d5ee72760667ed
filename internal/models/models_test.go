package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationResponseDecoding(t *testing.T) {
	body := `{
		"success": true,
		"results": [
			{"Rank": 1, "Resume Name": "Jane Doe", "Overall Match Score": 87, "Keywords Matched": "python, sql", "Semantic Relevance": 0.91, "Summary": "Strong Match"},
			{"Rank": "2nd", "Resume Name": "John Roe", "Overall Match Score": "64.25", "Semantic Relevance": "0.5", "Summary": "Moderate Match"}
		]
	}`

	var resp EvaluationResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, Rank(1), first.Rank)
	assert.Equal(t, "Jane Doe", first.ResumeName)
	assert.Equal(t, "87", first.OverallScore.String())
	assert.Equal(t, "python, sql", first.KeywordsMatched)
	assert.Equal(t, "0.91", first.SemanticRelevance.String())
	assert.Equal(t, "Strong Match", first.Summary)

	second := resp.Results[1]
	assert.Equal(t, Rank(2), second.Rank)
	assert.Equal(t, "64.25", second.OverallScore.String())
	assert.Empty(t, second.KeywordsMatched)
}

func TestEvaluationResponseError(t *testing.T) {
	var resp EvaluationResponse
	require.NoError(t, json.Unmarshal([]byte(`{"error":"model unavailable"}`), &resp))

	assert.Equal(t, "model unavailable", resp.Error)
	assert.Nil(t, resp.Results)
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in      string
		want    Rank
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: "1st", want: 1},
		{in: "2nd", want: 2},
		{in: "3rd", want: 3},
		{in: "11th", want: 11},
		{in: "4.0", want: 4},
		{in: "4.5", wantErr: true},
		{in: "first", wantErr: true},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "-1st", wantErr: true},
		{in: "0.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRank(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueNullAndFloat(t *testing.T) {
	var rec MatchRecord
	require.NoError(t, json.Unmarshal([]byte(`{"Overall Match Score": null, "Semantic Relevance": "72%"}`), &rec))

	assert.Equal(t, Value(""), rec.OverallScore)

	f, ok := rec.SemanticRelevance.Float()
	assert.True(t, ok)
	assert.Equal(t, 72.0, f)

	_, ok = Value("n/a").Float()
	assert.False(t, ok)
}

func TestRankRejectsNullAndNonPositive(t *testing.T) {
	for _, body := range []string{`{"Rank": null}`, `{"Rank": 0}`, `{"Rank": -3}`, `{"Rank": "-1st"}`} {
		t.Run(body, func(t *testing.T) {
			var rec MatchRecord
			assert.Error(t, json.Unmarshal([]byte(body), &rec))
		})
	}
}
