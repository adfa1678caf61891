package domain

import "time"

// Provider tags identify which parser strategy produced a record.
const (
	ProviderTeamtailor      = "teamtailor"
	ProviderGreenhouse      = "greenhouse"
	ProviderLever           = "lever"
	ProviderAshby           = "ashby"
	ProviderSmartRecruiters = "smartrecruiters"
	ProviderGeneric         = "generic"
)

// RawListing is what a strategy pulls out of listing-page markup.
// No normalization guarantees; fields may be empty or relative URLs.
type RawListing struct {
	Title    string
	Location string
	URL      string
}

// RawDetail is the best-effort plain-text description from a detail page.
type RawDetail struct {
	Description string
}

// JobPosting is the canonical, persisted record.
type JobPosting struct {
	ID                string    `json:"id"`
	Company           string    `json:"company"`
	ATSProvider       string    `json:"atsProvider"`
	Title             string    `json:"title"`
	Location          string    `json:"location"`
	ApplyURL          string    `json:"applyUrl"`
	Description       *string   `json:"description"`
	Fingerprint       string    `json:"fingerprint"`
	DetailFingerprint string    `json:"detailFingerprint,omitempty"`
	Status            Status    `json:"status"`
	ScrapedAt         time.Time `json:"scrapedAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasDescription reports whether the detail pass ever succeeded.
func (j JobPosting) HasDescription() bool {
	return j.Description != nil && *j.Description != ""
}
