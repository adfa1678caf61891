package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
)

// hostRules resolve most URLs without touching the markup. Order matters
// only for readability; the substrings are disjoint.
var hostRules = []struct {
	hostSubstr string
	provider   string
}{
	{"teamtailor.com", domain.ProviderTeamtailor},
	{"greenhouse.io", domain.ProviderGreenhouse},
	{"lever.co", domain.ProviderLever},
	{"ashbyhq.com", domain.ProviderAshby},
	{"smartrecruiters.com", domain.ProviderSmartRecruiters},
}

// markupRules are structural fingerprints for career sites served from a
// company's own domain. Each selector is specific enough that a single
// hit identifies the ATS.
var markupRules = []struct {
	selector string
	provider string
}{
	{"meta[content*='Teamtailor']", domain.ProviderTeamtailor},
	{"script[src*='teamtailor']", domain.ProviderTeamtailor},
	{"#grnhse_app", domain.ProviderGreenhouse},
	{"script[src*='greenhouse.io']", domain.ProviderGreenhouse},
	{"div.opening span.location", domain.ProviderGreenhouse},
	{"a.posting-title", domain.ProviderLever},
	{"script[src*='lever.co']", domain.ProviderLever},
	{"script[src*='ashbyhq']", domain.ProviderAshby},
	{"#ashby_embed", domain.ProviderAshby},
	{"li.opening-job", domain.ProviderSmartRecruiters},
	{"script[src*='smartrecruiters']", domain.ProviderSmartRecruiters},
}

// Classify picks the parser strategy for a page. Resolution order: URL
// host rules, then markup fingerprints, then the generic fallback. Pure
// and deterministic; ambiguous input degrades to generic, never errors.
func Classify(rawURL, html string) Strategy {
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil && u.Host != "" {
		host := strings.ToLower(u.Hostname())
		for _, r := range hostRules {
			if host == r.hostSubstr || strings.HasSuffix(host, "."+r.hostSubstr) {
				return registry[r.provider]
			}
		}
	}

	if strings.TrimSpace(html) != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			for _, r := range markupRules {
				if doc.Find(r.selector).Length() > 0 {
					return registry[r.provider]
				}
			}
		}
	}

	return registry[domain.ProviderGeneric]
}
