package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

// genericStrategy is the heuristic fallback for career pages with no
// recognized ATS fingerprint: any anchor whose href or text smells like
// a job link becomes a listing. Zero listings is a valid outcome, not an
// error.
type genericStrategy struct{}

func (genericStrategy) Provider() string  { return domain.ProviderGeneric }
func (genericStrategy) NeedsRender() bool { return false }

var jobLinkHints = []string{"job", "career", "position", "opening", "vacanc"}

var navLinkJunk = []string{
	"privacy", "contact", "home", "about", "login",
	"read more", "cookie", "terms", "sign in",
}

func (genericStrategy) ExtractListings(html string) ([]domain.RawListing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.RawListing

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		text := normalize.CleanText(link.Text())
		if href == "" || len(text) < 3 || seen[href] {
			return
		}

		blob := strings.ToLower(href + " " + text)
		hinted := false
		for _, h := range jobLinkHints {
			if strings.Contains(blob, h) {
				hinted = true
				break
			}
		}
		if !hinted {
			return
		}
		lower := strings.ToLower(text)
		for _, junk := range navLinkJunk {
			if strings.Contains(lower, junk) {
				return
			}
		}

		seen[href] = true
		out = append(out, domain.RawListing{Title: text, URL: href})
	})

	return out, nil
}

func (genericStrategy) ExtractDetail(html string) (domain.RawDetail, error) {
	return detailFrom(html)
}
