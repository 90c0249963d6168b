// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/screening-engine/internal/tabular"
	"github.com/pdiddy/screening-engine/pkg/types"
)

const testCriteriaYAML = `
criteria:
  - name: population
    keywords:
      - adolescent*
      - "college students"
      - youth
  - name: intervention
    keywords:
      - mindfulness
      - "cognitive behavioral therapy"
      - app
`

func testScreener(t *testing.T) *Screener {
	t.Helper()
	criteria, err := ReadCriteria(strings.NewReader(testCriteriaYAML))
	require.NoError(t, err)
	s, err := NewScreener(criteria)
	require.NoError(t, err)
	return s
}

func TestReadCriteria(t *testing.T) {
	criteria, err := ReadCriteria(strings.NewReader(testCriteriaYAML))
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	assert.Equal(t, "population", criteria[0].Name)
	assert.Len(t, criteria[0].Keywords, 3)
}

func TestReadCriteriaInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no criteria", "criteria: []"},
		{"unnamed criterion", "criteria:\n  - keywords: [x]"},
		{"no keywords", "criteria:\n  - name: population"},
		{"bad yaml", "criteria: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCriteria(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestEvaluate(t *testing.T) {
	s := testScreener(t)

	tests := []struct {
		name     string
		title    string
		abstract string
		include  bool
	}{
		{
			name:     "both criteria match",
			title:    "Mindfulness for Adolescents",
			abstract: "A trial of mindfulness training in adolescent populations.",
			include:  true,
		},
		{
			name:     "wildcard matches inflection",
			title:    "App-based support for adolescents",
			abstract: "",
			include:  true,
		},
		{
			name:     "phrase matches as substring",
			title:    "Cognitive behavioral therapy for college students",
			abstract: "",
			include:  true,
		},
		{
			name:     "one criterion missing excludes",
			title:    "Mindfulness in Older Adults",
			abstract: "No eligible population mentioned.",
			include:  false,
		},
		{
			name:     "word boundary prevents partial hits",
			title:    "Happiness and wellbeing in retirees",
			abstract: "The approach was inapplicable.", // no bare "app"
			include:  false,
		},
		{
			name:    "empty text excluded",
			title:   "",
			include: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Evaluate(tt.title, tt.abstract)
			assert.Equal(t, tt.include, res.Include)
		})
	}
}

func TestEvaluateRecordsHits(t *testing.T) {
	s := testScreener(t)
	res := s.Evaluate("Mindfulness app for adolescents and college students", "")
	require.True(t, res.Include)
	assert.ElementsMatch(t, []string{"adolescent*", "college students"}, res.Found["population"])
	assert.ElementsMatch(t, []string{"mindfulness", "app"}, res.Found["intervention"])
}

func TestApply(t *testing.T) {
	s := testScreener(t)
	src := &tabular.Table{
		Columns: []string{"Title", "Abstract"},
		Records: []types.MetadataRecord{
			{
				Title:    "Mindfulness for Adolescents",
				Abstract: "A mindfulness trial.",
				Fields:   map[string]string{"Title": "Mindfulness for Adolescents", "Abstract": "A mindfulness trial."},
			},
			{
				Title:  "Unrelated Astronomy Paper",
				Fields: map[string]string{"Title": "Unrelated Astronomy Paper", "Abstract": ""},
			},
		},
	}

	out, stats := s.Apply(src)

	assert.Equal(t, []string{"Title", "Abstract", "population_keywords", "intervention_keywords", ColResult}, out.Columns)
	require.Len(t, out.Records, 2)

	assert.Equal(t, "include", out.Records[0].Fields[ColResult])
	assert.Contains(t, out.Records[0].Fields["population_keywords"], "adolescent*")
	assert.Equal(t, "exclude", out.Records[1].Fields[ColResult])
	assert.Equal(t, Stats{Included: 1, Excluded: 1}, stats)

	// Source rows stay untouched.
	_, ok := src.Records[0].Fields[ColResult]
	assert.False(t, ok)
}
