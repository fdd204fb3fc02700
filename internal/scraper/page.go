package scraper

import "time"

// Heading is a single h1-h3 heading collected from a page.
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Page represents the outcome of scraping a single URL. A failed scrape is
// still a Page: Error is set and content/headings are empty. Callers decide
// whether a page carries enough content to be worth keeping.
type Page struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Headings  []Heading     `json:"headings"`
	Error     string        `json:"error,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
	Duration  time.Duration `json:"duration"`
}

// Failed reports whether the scrape produced no usable document.
func (p *Page) Failed() bool {
	return p.Error != ""
}
