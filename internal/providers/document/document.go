// Package document extracts screen metadata from page HTML carried in visit
// options (a snapshot or a prefetched response).
package document

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Extractor reads titles from HTML. It is safe for concurrent use.
type Extractor struct {
	sanitizer *bluemonday.Policy
}

// NewExtractor creates an extractor with a strict sanitizer.
func NewExtractor() *Extractor {
	return &Extractor{sanitizer: bluemonday.StrictPolicy()}
}

// Title returns the page title: <title>, then og:title, then the first <h1>.
// The result is plain text with whitespace collapsed; empty when none exist.
func (e *Extractor) Title(page string) string {
	if strings.TrimSpace(page) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}

	candidates := []string{
		doc.Find("head title").First().Text(),
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find("h1").First().Text(),
	}
	for _, candidate := range candidates {
		if title := e.clean(candidate); title != "" {
			return title
		}
	}
	return ""
}

func (e *Extractor) clean(text string) string {
	sanitized := html.UnescapeString(e.sanitizer.Sanitize(text))
	return strings.Join(strings.Fields(sanitized), " ")
}
