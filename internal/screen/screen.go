// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package screen applies rule-based inclusion criteria to paper titles
// and abstracts. A paper is included only when every criterion finds at
// least one of its keywords, so criteria compose as a conjunction.
package screen

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/screening-engine/internal/tabular"
)

// ColResult is the include/exclude verdict column added by Apply.
const ColResult = "result"

// Criterion is one screening dimension, e.g. population or intervention.
// Keywords come in three forms: single words match on word boundaries,
// multi-word phrases match as substrings, and keywords containing '*'
// are wildcard patterns where '*' spans word characters.
type Criterion struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type criteriaFile struct {
	Criteria []Criterion `yaml:"criteria"`
}

// LoadCriteria reads the screening criteria from a YAML file.
func LoadCriteria(path string) ([]Criterion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening criteria file: %w", err)
	}
	defer f.Close()
	return ReadCriteria(f)
}

// ReadCriteria parses screening criteria from YAML.
func ReadCriteria(r io.Reader) ([]Criterion, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading criteria: %w", err)
	}
	var cf criteriaFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing criteria: %w", err)
	}
	if len(cf.Criteria) == 0 {
		return nil, fmt.Errorf("criteria file defines no criteria")
	}
	for i, c := range cf.Criteria {
		if c.Name == "" {
			return nil, fmt.Errorf("criterion %d has no name", i+1)
		}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("criterion %q has no keywords", c.Name)
		}
	}
	return cf.Criteria, nil
}

type matcher struct {
	keyword string
	re      *regexp.Regexp // nil for plain substring phrases
}

type compiledCriterion struct {
	name     string
	matchers []matcher
}

// Screener evaluates papers against a fixed set of compiled criteria.
// It is read-only after construction and safe for concurrent use.
type Screener struct {
	criteria []compiledCriterion
}

// NewScreener compiles the criteria's keywords into matchers.
func NewScreener(criteria []Criterion) (*Screener, error) {
	s := &Screener{criteria: make([]compiledCriterion, 0, len(criteria))}
	for _, c := range criteria {
		cc := compiledCriterion{name: c.Name}
		for _, kw := range c.Keywords {
			m, err := compileKeyword(kw)
			if err != nil {
				return nil, fmt.Errorf("criterion %q keyword %q: %w", c.Name, kw, err)
			}
			cc.matchers = append(cc.matchers, m)
		}
		s.criteria = append(s.criteria, cc)
	}
	return s, nil
}

func compileKeyword(kw string) (matcher, error) {
	kw = strings.ToLower(strings.TrimSpace(kw))
	switch {
	case strings.Contains(kw, "*"):
		pattern := strings.ReplaceAll(regexp.QuoteMeta(kw), `\*`, `\w*`)
		re, err := regexp.Compile(`\b` + pattern + `\b`)
		if err != nil {
			return matcher{}, err
		}
		return matcher{keyword: kw, re: re}, nil
	case strings.ContainsAny(kw, " "):
		return matcher{keyword: kw}, nil
	default:
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			return matcher{}, err
		}
		return matcher{keyword: kw, re: re}, nil
	}
}

// Result is the screening verdict for one paper.
type Result struct {
	// Found maps criterion name to the keywords that matched.
	Found map[string][]string

	// Include is true when every criterion matched at least one keyword.
	Include bool
}

// Evaluate screens one paper by its title and abstract. A paper with no
// text to search is excluded outright.
func (s *Screener) Evaluate(title, abstract string) Result {
	res := Result{Found: make(map[string][]string, len(s.criteria))}
	text := strings.ToLower(strings.TrimSpace(title + " " + abstract))
	if text == "" {
		return res
	}

	res.Include = true
	for _, c := range s.criteria {
		var hits []string
		for _, m := range c.matchers {
			if m.matches(text) {
				hits = append(hits, m.keyword)
			}
		}
		res.Found[c.name] = hits
		if len(hits) == 0 {
			res.Include = false
		}
	}
	return res
}

func (m matcher) matches(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.keyword)
}

// Stats is the score-card for one screening pass.
type Stats struct {
	Included int
	Excluded int
}

// Apply screens every row of the metadata table and returns a copy with
// one "<criterion>_keywords" column per criterion plus the verdict
// column. Source rows and columns pass through unchanged.
func (s *Screener) Apply(t *tabular.Table) (*tabular.Table, Stats) {
	out := &tabular.Table{Columns: append([]string{}, t.Columns...)}
	for _, c := range s.criteria {
		out.Columns = append(out.Columns, c.name+"_keywords")
	}
	out.Columns = append(out.Columns, ColResult)

	var stats Stats
	for _, rec := range t.Records {
		res := s.Evaluate(rec.Title, rec.Abstract)

		row := rec.Clone()
		for _, c := range s.criteria {
			row.Fields[c.name+"_keywords"] = strings.Join(res.Found[c.name], "; ")
		}
		if res.Include {
			row.Fields[ColResult] = "include"
			stats.Included++
		} else {
			row.Fields[ColResult] = "exclude"
			stats.Excluded++
		}
		out.Records = append(out.Records, row)
	}
	return out, stats
}
