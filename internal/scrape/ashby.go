package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

type ashbyStrategy struct{}

func (ashbyStrategy) Provider() string  { return domain.ProviderAshby }
func (ashbyStrategy) NeedsRender() bool { return true }

func (ashbyStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		if !strings.Contains(href, "/application/") && !strings.Contains(href, "/posting/") &&
			!strings.Contains(href, "ashbyhq.com/") {
			return
		}
		seen[href] = true

		title := normalize.CleanText(link.Text())
		if title == "" {
			return
		}

		// Ashby cards keep the location in a sibling div inside the card.
		loc := link.Find("[class*='location'], [class*='Location']").First()

		out = append(out, domain.RawListing{
			Title:    title,
			Location: normalize.CleanText(loc.Text()),
			URL:      href,
		})
	})

	return out, nil
}

func (ashbyStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html, "[class*='_description']", "[class*='description']")
}
