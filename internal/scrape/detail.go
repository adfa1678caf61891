package scrape

import (
	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

// detailFrom extracts a plain-text description, trying the provider's
// preferred selectors first and falling back to the largest text block.
func detailFrom(html string, selectors ...string) (domain.RawDetail, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return domain.RawDetail{}, err
	}
	for _, sel := range selectors {
		if t := normalize.CleanText(doc.Find(sel).First().Text()); t != "" {
			return domain.RawDetail{Description: t}, nil
		}
	}
	return domain.RawDetail{Description: largestTextBlock(doc)}, nil
}

// largestTextBlock finds the deepest container still holding most of the
// page text: the smallest candidate with at least half the body's text.
// Best-effort; an empty result is valid.
func largestTextBlock(doc *goquery.Document) string {
	body := normalize.CleanText(doc.Find("body").First().Text())
	if body == "" {
		return ""
	}

	best := body
	doc.Find("main, article, section, div").Each(func(_ int, sel *goquery.Selection) {
		t := normalize.CleanText(sel.Text())
		if len(t) >= len(body)/2 && len(t) < len(best) {
			best = t
		}
	})
	return best
}
