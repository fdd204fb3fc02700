package plan

import (
	"reflect"
	"testing"
)

func TestContentPlan_Complete(t *testing.T) {
	full := ContentPlan{
		PrimaryKeyword:    "kayaking",
		SecondaryKeywords: []string{"kayaking tips"},
		Title:             "Kayaking",
		Outline:           []string{"Intro"},
	}
	if !full.Complete() {
		t.Error("expected fully populated plan to be complete")
	}

	cases := []struct {
		name   string
		mutate func(*ContentPlan)
	}{
		{"no primary keyword", func(p *ContentPlan) { p.PrimaryKeyword = "" }},
		{"no secondary keywords", func(p *ContentPlan) { p.SecondaryKeywords = nil }},
		{"no title", func(p *ContentPlan) { p.Title = "" }},
		{"no outline", func(p *ContentPlan) { p.Outline = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := full
			tc.mutate(&p)
			if p.Complete() {
				t.Error("expected incomplete plan")
			}
		})
	}

	// Callers check completeness on plans returned by value, e.g. from a
	// session accessor, so Complete must not require an addressable plan.
	if !Fallback("kayaking").Complete() {
		t.Error("expected templated fallback plan to be complete")
	}
}

func TestContentPlan_Merge(t *testing.T) {
	p := ContentPlan{
		PrimaryKeyword:    "kayaking",
		SecondaryKeywords: []string{"kayaking tips"},
		Title:             "Original Title",
		Outline:           []string{"Intro", "Conclusion"},
	}

	// Blank update changes nothing
	p.Merge(ContentPlan{})
	if p.Title != "Original Title" || p.PrimaryKeyword != "kayaking" {
		t.Errorf("blank merge mutated plan: %+v", p)
	}

	// Partial update only overwrites supplied fields
	p.Merge(ContentPlan{Title: "Edited Title"})
	if p.Title != "Edited Title" {
		t.Errorf("expected title overwrite, got %q", p.Title)
	}
	if !reflect.DeepEqual(p.Outline, []string{"Intro", "Conclusion"}) {
		t.Errorf("outline should be untouched, got %v", p.Outline)
	}
}

func TestFallback(t *testing.T) {
	p := Fallback("intermittent fasting")

	if p.PrimaryKeyword != "intermittent fasting" {
		t.Errorf("expected topic as primary keyword, got %q", p.PrimaryKeyword)
	}
	if p.Title != "Complete Guide to Intermittent Fasting: Everything You Need to Know" {
		t.Errorf("unexpected fallback title: %q", p.Title)
	}
	wantKeywords := []string{
		"intermittent fasting guide",
		"intermittent fasting tips",
		"how to intermittent fasting",
	}
	if !reflect.DeepEqual(p.SecondaryKeywords, wantKeywords) {
		t.Errorf("unexpected secondary keywords: %v", p.SecondaryKeywords)
	}
	if len(p.Outline) != 7 {
		t.Fatalf("expected 7 outline sections, got %d", len(p.Outline))
	}
	if p.Outline[0] != "Introduction to intermittent fasting" {
		t.Errorf("unexpected first outline entry: %q", p.Outline[0])
	}
	if p.Outline[6] != "Conclusion" {
		t.Errorf("unexpected last outline entry: %q", p.Outline[6])
	}
	if !p.Complete() {
		t.Error("fallback plan must always be complete")
	}
}

func TestFallbackTitle_ShortForm(t *testing.T) {
	if got := FallbackTitle("kayaking"); got != "Complete Guide to Kayaking" {
		t.Errorf("unexpected per-field title: %q", got)
	}
}
