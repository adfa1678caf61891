package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CleanText collapses whitespace (including nbsp) into single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Location canonicalizes a raw location string into "City, Country" where
// the parts are extractable. Unparseable text is cleaned but preserved.
func Location(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	// Boards separate multi-part locations with commas, middots or pipes.
	loc = strings.NewReplacer("·", ",", "|", ",", "•", ",").Replace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return ""
	}
	// "City, Country" shape: keep the first and last distinct parts when a
	// region sits between them ("Stockholm, Stockholm County, Sweden").
	if len(out) > 2 {
		out = []string{out[0], out[len(out)-1]}
	}
	return strings.Join(out, ", ")
}

// CanonicalURL lowercases scheme/host, drops fragments and tracking
// params, and sorts the query so equal URLs compare equal.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveURL makes href absolute against the page it was found on.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return href
	}
	return b.ResolveReference(h).String()
}

// CompanyFromURL derives a company name from a listing URL's host:
// career.acme.com and jobs.acme.io both yield "acme".
func CompanyFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	// hosted boards carry the company in the first path segment, not the host
	for _, h := range []string{"greenhouse.io", "lever.co", "ashbyhq.com", "smartrecruiters.com"} {
		if host == h || strings.HasSuffix(host, "."+h) {
			for _, seg := range strings.Split(u.Path, "/") {
				if seg != "" {
					return strings.ToLower(seg)
				}
			}
			return "unknown"
		}
	}

	labels := strings.Split(host, ".")
	for _, l := range labels {
		switch l {
		case "jobs", "job", "career", "careers", "boards", "apply", "join":
			continue
		}
		if l != "" {
			return l
		}
	}
	return "unknown"
}

func hashTruncated(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])[:16]
}

// PostingID is the stable identifier: a pure function of (company, url),
// so re-scraping the same posting never mints a new id.
func PostingID(company, applyURL string) string {
	return hashTruncated("id", strings.ToLower(CleanText(company)), CanonicalURL(applyURL))
}

// Fingerprint detects re-listings with cosmetic differences; it covers
// the fields that define "this is the same posting".
func Fingerprint(company, title, applyURL string) string {
	return hashTruncated("fp", strings.ToLower(CleanText(company)), CleanText(title), CanonicalURL(applyURL))
}

// DetailFingerprint detects content changes on re-scrape of a detail page.
func DetailFingerprint(description string) string {
	if description == "" {
		return ""
	}
	return hashTruncated("detail", description)
}
