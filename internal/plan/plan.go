// Package plan defines the content plan that gates article generation: the
// keyword set, title and outline distilled from research.
package plan

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContentPlan is the structured keyword/title/outline package produced by
// content analysis and edited by the user before drafting. All four fields
// must be populated before an article can be generated.
type ContentPlan struct {
	PrimaryKeyword    string   `json:"primary_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	Title             string   `json:"title"`
	Outline           []string `json:"outline"`
}

// Complete reports whether every field required for article generation is
// populated. Value receiver so it is callable on plans returned by value.
func (p ContentPlan) Complete() bool {
	return p.PrimaryKeyword != "" &&
		len(p.SecondaryKeywords) > 0 &&
		p.Title != "" &&
		len(p.Outline) > 0
}

// Merge applies the non-empty fields of update onto p. Blank edits leave the
// stored value unchanged, so a form submitted with untouched fields cannot
// wipe the plan.
func (p *ContentPlan) Merge(update ContentPlan) {
	if update.PrimaryKeyword != "" {
		p.PrimaryKeyword = update.PrimaryKeyword
	}
	if len(update.SecondaryKeywords) > 0 {
		p.SecondaryKeywords = update.SecondaryKeywords
	}
	if update.Title != "" {
		p.Title = update.Title
	}
	if len(update.Outline) > 0 {
		p.Outline = update.Outline
	}
}

// Fallback builds the deterministic templated plan used when analysis cannot
// recover anything usable from the model output.
func Fallback(topic string) ContentPlan {
	titled := cases.Title(language.English).String(topic)
	return ContentPlan{
		PrimaryKeyword: topic,
		SecondaryKeywords: []string{
			topic + " guide",
			topic + " tips",
			"how to " + topic,
		},
		Title: fmt.Sprintf("Complete Guide to %s: Everything You Need to Know", titled),
		Outline: []string{
			fmt.Sprintf("Introduction to %s", topic),
			fmt.Sprintf("Why %s is Important", topic),
			fmt.Sprintf("Key Benefits of %s", topic),
			fmt.Sprintf("How to Get Started with %s", topic),
			fmt.Sprintf("Best Practices for %s", topic),
			"Common Challenges and Solutions",
			"Conclusion",
		},
	}
}

// FallbackOutline returns just the templated outline, used when a partially
// recovered plan is missing its outline.
func FallbackOutline(topic string) []string {
	return Fallback(topic).Outline
}

// FallbackKeywords returns just the templated secondary keywords.
func FallbackKeywords(topic string) []string {
	return Fallback(topic).SecondaryKeywords
}

// FallbackTitle returns the per-field templated title. It is deliberately
// shorter than the full-fallback title: a partially recovered plan keeps
// whatever real fields it has and only patches the hole.
func FallbackTitle(topic string) string {
	return fmt.Sprintf("Complete Guide to %s", cases.Title(language.English).String(topic))
}
