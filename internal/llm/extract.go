package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/draftforge/draftforge/internal/plan"
)

// Model output is not guaranteed to be well-formed JSON even when the
// request asks for it: answers arrive wrapped in prose, fenced in markdown,
// or with stray text around the object. ExtractPlan applies recovery
// strategies in strict order and returns the first structurally usable plan;
// when everything fails it returns the fully templated fallback for the
// topic. It never fails.
func ExtractPlan(raw, topic string) plan.ContentPlan {
	for _, s := range planStrategies {
		if p, ok := s(raw, topic); ok {
			return p
		}
	}
	return plan.Fallback(topic)
}

type planStrategy func(raw, topic string) (plan.ContentPlan, bool)

// Ordered from strictest to loosest. Each strategy trades a little more
// strictness for robustness; the order must not change.
var planStrategies = []planStrategy{
	parsePlanDirect,
	parsePlanFenced,
	parsePlanBraced,
	parsePlanFields,
}

// usable accepts a decoded plan that carries at least one expected field.
func usable(p plan.ContentPlan) bool {
	return p.PrimaryKeyword != "" ||
		len(p.SecondaryKeywords) > 0 ||
		p.Title != "" ||
		len(p.Outline) > 0
}

// parsePlanDirect parses the entire blob as JSON. An already-correct
// response wins here, unchanged.
func parsePlanDirect(raw, _ string) (plan.ContentPlan, bool) {
	var p plan.ContentPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return plan.ContentPlan{}, false
	}
	return p, usable(p)
}

// parsePlanFenced extracts a ```json fenced block and parses its contents.
func parsePlanFenced(raw, _ string) (plan.ContentPlan, bool) {
	candidate, ok := fencedJSON(raw)
	if !ok {
		return plan.ContentPlan{}, false
	}
	var p plan.ContentPlan
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return plan.ContentPlan{}, false
	}
	return p, usable(p)
}

func fencedJSON(raw string) (string, bool) {
	start := strings.Index(raw, "```json")
	if start < 0 {
		return "", false
	}
	rest := raw[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// bracedPattern matches a brace-delimited object with at most one level of
// nesting, which covers the plan shape (arrays nest with brackets, not
// braces).
var bracedPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// parsePlanBraced scans for brace-delimited substrings and parses the
// longest one. The longest candidate is most likely the complete object
// rather than a nested fragment.
func parsePlanBraced(raw, _ string) (plan.ContentPlan, bool) {
	matches := bracedPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return plan.ContentPlan{}, false
	}

	longest := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(longest) {
			longest = m
		}
	}

	var p plan.ContentPlan
	if err := json.Unmarshal([]byte(longest), &p); err != nil {
		return plan.ContentPlan{}, false
	}
	return p, usable(p)
}

var (
	primaryKeywordPattern    = regexp.MustCompile(`"primary_keyword"\s*:\s*"([^"]+)"`)
	titlePattern             = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	secondaryKeywordsPattern = regexp.MustCompile(`(?s)"secondary_keywords"\s*:\s*\[(.*?)\]`)
	outlinePattern           = regexp.MustCompile(`(?s)"outline"\s*:\s*\[(.*?)\]`)
	quotedStringPattern      = regexp.MustCompile(`"([^"]+)"`)
)

// parsePlanFields pulls each expected field out independently with regexes,
// ignoring whatever noise surrounds them, and substitutes per-field
// templated defaults for anything missing. It succeeds only when at least
// one real field was found; otherwise the full-fallback stage takes over.
func parsePlanFields(raw, topic string) (plan.ContentPlan, bool) {
	found := false
	p := plan.ContentPlan{}

	if m := primaryKeywordPattern.FindStringSubmatch(raw); m != nil {
		p.PrimaryKeyword = m[1]
		found = true
	} else {
		p.PrimaryKeyword = topic
	}

	if m := secondaryKeywordsPattern.FindStringSubmatch(raw); m != nil {
		p.SecondaryKeywords = quotedStrings(m[1])
		found = found || len(p.SecondaryKeywords) > 0
	}
	if len(p.SecondaryKeywords) == 0 {
		p.SecondaryKeywords = plan.FallbackKeywords(topic)
	}

	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		p.Title = m[1]
		found = true
	} else {
		p.Title = plan.FallbackTitle(topic)
	}

	if m := outlinePattern.FindStringSubmatch(raw); m != nil {
		p.Outline = quotedStrings(m[1])
		found = found || len(p.Outline) > 0
	}
	if len(p.Outline) == 0 {
		p.Outline = plan.FallbackOutline(topic)
	}

	return p, found
}

func quotedStrings(raw string) []string {
	var out []string
	for _, m := range quotedStringPattern.FindAllStringSubmatch(raw, -1) {
		out = append(out, m[1])
	}
	return out
}

// ExtractQueries recovers a string array from model output: a bare JSON
// array, an object with a "queries" key, or either of those inside a fenced
// block. Blank entries are dropped. ok is false when nothing usable was
// found.
func ExtractQueries(raw string) ([]string, bool) {
	candidates := []string{raw}
	if fenced, found := fencedJSON(raw); found {
		candidates = append(candidates, fenced)
	}

	for _, candidate := range candidates {
		if qs, ok := parseQueryList(candidate); ok {
			return qs, true
		}
	}
	return nil, false
}

func parseQueryList(candidate string) ([]string, bool) {
	var wrapped struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(candidate), &wrapped); err == nil {
		if qs := nonBlank(wrapped.Queries); len(qs) > 0 {
			return qs, true
		}
	}

	var direct []string
	if err := json.Unmarshal([]byte(candidate), &direct); err == nil {
		if qs := nonBlank(direct); len(qs) > 0 {
			return qs, true
		}
	}
	return nil, false
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
