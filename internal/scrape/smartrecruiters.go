package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

type smartRecruitersStrategy struct{}

func (smartRecruitersStrategy) Provider() string  { return domain.ProviderSmartRecruiters }
func (smartRecruitersStrategy) NeedsRender() bool { return false }

func (smartRecruitersStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	doc.Find("li.opening-job").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		title := normalize.CleanText(item.Find("h4").First().Text())
		if title == "" {
			title = normalize.CleanText(link.Text())
		}
		if title == "" {
			return
		}

		out = append(out, domain.RawListing{
			Title:    title,
			Location: normalize.CleanText(item.Find("span[class*='location']").First().Text()),
			URL:      href,
		})
	})

	return out, nil
}

func (smartRecruitersStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html, "[itemprop='description']", "#st-jobDescription")
}
