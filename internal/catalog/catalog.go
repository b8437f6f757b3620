// Package catalog holds the static questionnaire: questions, the shared
// option ladder and the per-pillar weights.
//
// The catalog is read-only configuration. It is parsed once from the
// embedded catalog.yaml and every accessor hands out copies, so callers
// can never mutate the process-wide table.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Pillar codes
const (
	PillarEthics         = "E"
	PillarDigitalHygiene = "DH"
	PillarCriticalCheck  = "CC"
	PillarTechExposure   = "TE"
	PillarSupervisionGap = "SG"
)

// MaxOptionScore is the top of the option ladder
const MaxOptionScore = 3

// Question is a single catalog item
type Question struct {
	ID        int     `yaml:"id" json:"id"`
	Text      string  `yaml:"text" json:"text"`
	Pillar    string  `yaml:"pillar" json:"pillar"`
	Weight    float64 `yaml:"weight" json:"weight"`
	Rationale string  `yaml:"rationale" json:"rationale,omitempty"`
}

// Option is one rung of the shared answer ladder (0 = worst, 3 = best)
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Score int    `yaml:"score" json:"score"`
}

// PillarWeight maps a pillar to its percentage of the overall score
type PillarWeight struct {
	Code   string  `yaml:"code" json:"code"`
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Catalog is the frozen questionnaire definition
type Catalog struct {
	questions []Question
	options   []Option
	pillars   []PillarWeight

	byID        map[int]Question
	optionScore map[string]int
}

type document struct {
	Pillars   []PillarWeight `yaml:"pillars"`
	Options   []Option       `yaml:"options"`
	Questions []Question     `yaml:"questions"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which is a build defect rather than a runtime condition.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog.yaml: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return New(doc.Questions, doc.Options, doc.Pillars)
}

// New builds a catalog from explicit tables
func New(questions []Question, options []Option, pillars []PillarWeight) (*Catalog, error) {
	if len(pillars) == 0 {
		return nil, fmt.Errorf("catalog: no pillars")
	}
	known := make(map[string]bool, len(pillars))
	sum := 0.0
	for _, p := range pillars {
		if p.Code == "" {
			return nil, fmt.Errorf("catalog: pillar with empty code")
		}
		if known[p.Code] {
			return nil, fmt.Errorf("catalog: duplicate pillar %q", p.Code)
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("catalog: pillar %q has negative weight", p.Code)
		}
		known[p.Code] = true
		sum += p.Weight
	}
	if math.Abs(sum-100) > 1e-9 {
		return nil, fmt.Errorf("catalog: pillar weights sum to %g, want 100", sum)
	}

	optionScore := make(map[string]int, len(options))
	for _, o := range options {
		if o.Score < 0 || o.Score > MaxOptionScore {
			return nil, fmt.Errorf("catalog: option %q score %d out of range [0,%d]", o.Key, o.Score, MaxOptionScore)
		}
		if _, dup := optionScore[o.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate option %q", o.Key)
		}
		optionScore[o.Key] = o.Score
	}

	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("catalog: question id %d must be positive", q.ID)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %d", q.ID)
		}
		if !known[q.Pillar] {
			return nil, fmt.Errorf("catalog: question %d references unknown pillar %q", q.ID, q.Pillar)
		}
		if q.Weight <= 0 {
			return nil, fmt.Errorf("catalog: question %d weight must be positive", q.ID)
		}
		byID[q.ID] = q
	}

	return &Catalog{
		questions:   append([]Question(nil), questions...),
		options:     append([]Option(nil), options...),
		pillars:     append([]PillarWeight(nil), pillars...),
		byID:        byID,
		optionScore: optionScore,
	}, nil
}

// Questions returns the questions in catalog order
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Options returns the option ladder
func (c *Catalog) Options() []Option {
	return append([]Option(nil), c.options...)
}

// Pillars returns the pillar weights in catalog order
func (c *Catalog) Pillars() []PillarWeight {
	return append([]PillarWeight(nil), c.pillars...)
}

// PillarCodes returns the pillar codes in catalog order
func (c *Catalog) PillarCodes() []string {
	codes := make([]string, len(c.pillars))
	for i, p := range c.pillars {
		codes[i] = p.Code
	}
	return codes
}

// Question looks up a question by id
func (c *Catalog) Question(id int) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// OptionScore resolves an option key. Unknown keys score 0.
func (c *Catalog) OptionScore(key string) int {
	return c.optionScore[key]
}

// Len returns the number of questions
func (c *Catalog) Len() int {
	return len(c.questions)
}
