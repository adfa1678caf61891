package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

// Teamtailor career sites hydrate their listings client-side, so the
// fetcher must hand us rendered markup.
type teamtailorStrategy struct{}

func (teamtailorStrategy) Provider() string  { return domain.ProviderTeamtailor }
func (teamtailorStrategy) NeedsRender() bool { return true }

func (teamtailorStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	candidates := doc.Find("[class*='block-grid-item'], [class*='job-list-item'], [class*='candidate-job-item']")
	if candidates.Length() == 0 {
		// list-view boards link straight to /jobs/<id>
		candidates = doc.Find("a[href*='/jobs/']")
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	candidates.Each(func(_ int, item *goquery.Selection) {
		link := item
		if !item.Is("a") {
			link = item.Find("a[href]").First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !strings.Contains(href, "/jobs/") || seen[href] {
			return
		}
		seen[href] = true

		title := normalize.CleanText(link.Find("span[title]").First().Text())
		if title == "" {
			title = normalize.CleanText(link.Text())
		}
		if title == "" {
			return
		}

		loc := item.Find("[class*='meta-location'], [class*='location'], [class*='text-md']").First()

		out = append(out, domain.RawListing{
			Title:    title,
			Location: normalize.CleanText(loc.Text()),
			URL:      href,
		})
	})

	return out, nil
}

func (teamtailorStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html, "[class*='prose']", "[class*='body']")
}
