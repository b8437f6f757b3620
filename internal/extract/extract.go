// Package extract recovers a JSON object from free text returned by a
// language model. It never fails: a miss is reported as StrategyFailed.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"cares/internal/model"
)

// Strategy names which attempt produced the object
type Strategy string

const (
	StrategyFailed       Strategy = "failed"
	StrategyFenced       Strategy = "fenced"
	StrategyBraceScanned Strategy = "brace_scanned"
	StrategyWholeText    Strategy = "whole_text"
	StrategyRepaired     Strategy = "repaired"
)

// Result is the outcome of Extract. Object is nil iff Strategy is StrategyFailed.
type Result struct {
	Object   map[string]any
	Strategy Strategy
}

// OK reports whether an object was recovered
func (r Result) OK() bool {
	return r.Strategy != StrategyFailed
}

var (
	fencedRe = regexp.MustCompile("(?i)```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")
	braceRe  = regexp.MustCompile(`(\{[\s\S]*\})`)
)

type attempt struct {
	strategy Strategy
	run      func(text string) (map[string]any, bool)
}

var chain = []attempt{
	{StrategyFenced, fenced},
	{StrategyBraceScanned, braceScanned},
	{StrategyWholeText, wholeText},
	{StrategyRepaired, repaired},
}

// Extract tries each strategy in order and returns the first object found
func Extract(text string) Result {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return Result{Strategy: StrategyFailed}
	}
	for _, a := range chain {
		if obj, ok := a.run(cleaned); ok {
			return Result{Object: obj, Strategy: a.strategy}
		}
	}
	return Result{Strategy: StrategyFailed}
}

// Object is Extract without the strategy tag
func Object(text string) map[string]any {
	return Extract(text).Object
}

// Partial turns generator text into the starting object for a report: the
// recovered object, or the raw text kept under "narrative" when nothing was
// recovered. Empty text yields nil and an empty strategy.
func Partial(text string) (map[string]any, Strategy) {
	if text == "" {
		return nil, ""
	}
	res := Extract(text)
	if res.OK() {
		return res.Object, res.Strategy
	}
	return map[string]any{model.FieldNarrative: text}, res.Strategy
}

func fenced(text string) (map[string]any, bool) {
	m := fencedRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeStrict(m[1])
}

func braceScanned(text string) (map[string]any, bool) {
	m := braceRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeStrict(m[1])
}

func wholeText(text string) (map[string]any, bool) {
	return decodeStrict(text)
}

// repaired drops trailing commas and decodes the first value starting at
// the first brace, ignoring whatever follows it.
func repaired(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(stripTrailingCommas(text[start:])))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// decodeStrict accepts exactly one JSON object and nothing else
func decodeStrict(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stripTrailingCommas removes commas that directly precede } or ],
// skipping string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\r' || s[j] == '\t') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
