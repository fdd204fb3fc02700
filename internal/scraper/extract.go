package scraper

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minHeadingLen filters out decorative or navigational headings; anything
// this short ("FAQ", "Top") carries no outline signal.
const minHeadingLen = 3

// contentContainers are tried in order when looking for the element that
// holds a page's main prose. Semantic tags first, then the class names blogs
// and CMS themes conventionally use.
var contentContainers = []string{
	"article",
	"main",
	"div.content, div.post, div.entry, div.article",
}

// extract parses body and fills the page's title, content and headings.
func extract(page *Page, body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return err
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.Content = extractContent(doc)
	page.Headings = extractHeadings(doc)
	return nil
}

// extractContent concatenates paragraph text from the page's main content
// container, separated by blank lines. If no recognized container exists it
// falls back to every paragraph on the page.
func extractContent(doc *goquery.Document) string {
	paragraphs := doc.Find("p")
	if container := mainContainer(doc); container != nil {
		paragraphs = container.Find("p")
	}

	var sb strings.Builder
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		sb.WriteString(p.Text())
		sb.WriteString("\n\n")
	})
	return sb.String()
}

// mainContainer returns the first matching content container, or nil when
// the page has none of the recognized shapes.
func mainContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentContainers {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// extractHeadings collects h1-h3 headings in document order, skipping
// headings whose trimmed text is too short to matter.
func extractHeadings(doc *goquery.Document) []Heading {
	var headings []Heading
	doc.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		text := strings.TrimSpace(h.Text())
		if len(text) > minHeadingLen {
			headings = append(headings, Heading{
				Level: goquery.NodeName(h),
				Text:  text,
			})
		}
	})
	return headings
}
