package scrape

import (
	"errors"
	"testing"

	"jobcatalog-engine/internal/domain"
)

const teamtailorBoard = `<html><body>
<ul>
  <li class="block-grid-item">
    <a href="/jobs/101-backend-engineer"><span title="Backend Engineer">Backend Engineer</span></a>
    <div class="meta-location">Stockholm</div>
  </li>
  <li class="block-grid-item">
    <a href="/jobs/102-data-engineer"><span title="Data Engineer">Data Engineer</span></a>
    <div class="meta-location">Remote</div>
  </li>
  <li class="block-grid-item">
    <a href="/jobs/101-backend-engineer"><span title="Backend Engineer">Backend Engineer</span></a>
  </li>
</ul>
</body></html>`

const greenhouseBoard = `<html><body>
<section>
  <div class="opening">
    <a href="/acme/jobs/1">Platform Engineer</a>
    <span class="location">Remote, Europe</span>
  </div>
  <div class="opening">
    <a href="/acme/jobs/2">SRE</a>
    <span class="location">Berlin</span>
  </div>
</section>
</body></html>`

const leverBoard = `<html><body>
<div class="postings-group">
  <a class="posting-title" href="https://jobs.lever.co/acme/aaa">
    <h5 data-qa="posting-name">Frontend Engineer</h5>
    <span class="sort-by-location">Oslo</span>
  </a>
  <a class="posting-title" href="https://jobs.lever.co/acme/bbb">
    <h5 data-qa="posting-name">Product Designer</h5>
    <span class="sort-by-location">Remote</span>
  </a>
</div>
</body></html>`

const ashbyBoard = `<html><body>
<div>
  <a href="https://jobs.ashbyhq.com/acme/application/123">Staff Engineer<div class="_location_x1">NYC</div></a>
  <a href="/acme/posting/456">ML Engineer</a>
  <a href="/about">About us</a>
</div>
</body></html>`

const smartRecruitersBoard = `<html><body>
<ul>
  <li class="opening-job">
    <a href="https://jobs.smartrecruiters.com/acme/789"><h4>QA Engineer</h4></a>
    <span class="job-location">Madrid</span>
  </li>
</ul>
</body></html>`

const genericCareers = `<html><body>
<nav><a href="/about">About</a><a href="/privacy">Privacy policy</a></nav>
<main>
  <a href="/careers/backend-engineer">Backend Engineer</a>
  <a href="/careers/devops-position">DevOps Engineer</a>
  <a href="/blog/how-we-work">How we work</a>
</main>
</body></html>`

func TestTeamtailorListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderTeamtailor).ExtractListings(teamtailorBoard)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2 (duplicate href must collapse)", len(got))
	}
	if got[0].Title != "Backend Engineer" || got[0].URL != "/jobs/101-backend-engineer" {
		t.Errorf("first listing = %+v", got[0])
	}
	if got[0].Location != "Stockholm" {
		t.Errorf("first location = %q, want Stockholm", got[0].Location)
	}
}

func TestGreenhouseListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderGreenhouse).ExtractListings(greenhouseBoard)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2", len(got))
	}
	if got[0].Title != "Platform Engineer" || got[0].Location != "Remote, Europe" {
		t.Errorf("first listing = %+v", got[0])
	}
}

func TestLeverListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderLever).ExtractListings(leverBoard)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2", len(got))
	}
	if got[0].Title != "Frontend Engineer" || got[0].Location != "Oslo" {
		t.Errorf("first listing = %+v", got[0])
	}
}

func TestAshbyListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderAshby).ExtractListings(ashbyBoard)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2 (nav link must be skipped)", len(got))
	}
	if got[0].Location != "NYC" {
		t.Errorf("first location = %q, want NYC", got[0].Location)
	}
}

func TestSmartRecruitersListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderSmartRecruiters).ExtractListings(smartRecruitersBoard)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1", len(got))
	}
	if got[0].Title != "QA Engineer" {
		t.Errorf("title = %q, want QA Engineer", got[0].Title)
	}
}

func TestGenericListings(t *testing.T) {
	got, err := ByProvider(domain.ProviderGeneric).ExtractListings(genericCareers)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2 (nav and blog links must be skipped)", len(got))
	}
	for _, l := range got {
		if l.Title == "Privacy policy" || l.Title == "About" {
			t.Errorf("junk link leaked through: %+v", l)
		}
	}
}

func TestGenericZeroListingsIsNotAnError(t *testing.T) {
	got, err := ByProvider(domain.ProviderGeneric).ExtractListings(`<html><body><p>nothing here</p></body></html>`)
	if err != nil {
		t.Fatalf("zero matches must not error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d listings, want 0", len(got))
	}
}

func TestEmptyInputIsParseError(t *testing.T) {
	for tag, s := range registry {
		_, err := s.ExtractListings("   ")
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != ErrKindEmptyInput {
			t.Errorf("%s: empty input error = %v, want ParseError empty_input", tag, err)
		}
	}
}

func TestByProviderUnknownFallsBackToGeneric(t *testing.T) {
	if got := ByProvider("workday").Provider(); got != domain.ProviderGeneric {
		t.Errorf("unknown tag resolved to %q, want generic", got)
	}
	if got := ByProvider(" Lever ").Provider(); got != domain.ProviderLever {
		t.Errorf("tag trimming broken, got %q", got)
	}
}

func TestExtractDetailPrefersProviderSelector(t *testing.T) {
	html := `<html><body>
<header>Acme — join us Acme hiring portal with lots of chrome around it</header>
<div id="content">We are looking for a platform engineer to own our build system.</div>
</body></html>`

	got, err := ByProvider(domain.ProviderGreenhouse).ExtractDetail(html)
	if err != nil {
		t.Fatalf("ExtractDetail: %v", err)
	}
	want := "We are looking for a platform engineer to own our build system."
	if got.Description != want {
		t.Errorf("description = %q, want %q", got.Description, want)
	}
}

func TestExtractDetailFallsBackToLargestBlock(t *testing.T) {
	html := `<html><body>
<nav>Home About</nav>
<div class="main-text">The role involves designing, building and operating the ingestion
pipeline that keeps our catalog fresh. You will work across fetching, parsing and storage.</div>
</body></html>`

	got, err := ByProvider(domain.ProviderGeneric).ExtractDetail(html)
	if err != nil {
		t.Fatalf("ExtractDetail: %v", err)
	}
	if got.Description == "" {
		t.Fatalf("expected a non-empty description from the largest text block")
	}
	if got.Description[:17] != "The role involves" {
		t.Errorf("unexpected description start: %q", got.Description)
	}
}
