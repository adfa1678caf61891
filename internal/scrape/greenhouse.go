package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

type greenhouseStrategy struct{}

func (greenhouseStrategy) Provider() string  { return domain.ProviderGreenhouse }
func (greenhouseStrategy) NeedsRender() bool { return false }

func (greenhouseStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	doc.Find("div.opening").Each(func(_ int, opening *goquery.Selection) {
		link := opening.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok || seen[href] {
			return
		}
		seen[href] = true

		title := normalize.CleanText(link.Text())
		if title == "" {
			return
		}
		out = append(out, domain.RawListing{
			Title:    title,
			Location: normalize.CleanText(opening.Find("span.location").First().Text()),
			URL:      strings.TrimSpace(href),
		})
	})

	if len(out) > 0 {
		return out, nil
	}

	// newer boards drop div.opening; anchors to /jobs/<id> still exist
	doc.Find("a[href*='/jobs/']").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		title := normalize.CleanText(link.Text())
		if title == "" || looksLikeJunkTitle(title) {
			return
		}
		out = append(out, domain.RawListing{Title: title, URL: href})
	})

	return out, nil
}

func (greenhouseStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html, "#content", "[class*='job__description']")
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view") || strings.Contains(l, "apply")
}
