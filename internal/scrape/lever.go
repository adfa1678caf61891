package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

type leverStrategy struct{}

func (leverStrategy) Provider() string  { return domain.ProviderLever }
func (leverStrategy) NeedsRender() bool { return false }

func (leverStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	doc.Find("a.posting-title").Each(func(_ int, post *goquery.Selection) {
		href, ok := post.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		title := normalize.CleanText(post.Find("h5[data-qa='posting-name']").First().Text())
		if title == "" {
			title = normalize.CleanText(post.Text())
		}
		if title == "" {
			return
		}

		loc := post.Find("span.sort-by-location, span.location").First()

		out = append(out, domain.RawListing{
			Title:    title,
			Location: normalize.CleanText(loc.Text()),
			URL:      href,
		})
	})

	return out, nil
}

func (leverStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html, "[data-qa='job-description']", "div.posting")
}
