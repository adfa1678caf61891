package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcatalog-engine/internal/domain"
)

// ParseError kinds.
const (
	ErrKindEmptyInput        = "empty_input"
	ErrKindStructureMismatch = "structure_mismatch"
)

// ParseError signals a total parse failure (non-HTML payload, empty
// body). Missing fields inside otherwise-parseable markup never produce
// one; they yield empty values.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Kind, e.Err)
	}
	return "parse: " + e.Kind
}

func (e *ParseError) Unwrap() error { return e.Err }

// Strategy is the per-provider extraction capability. Implementations
// are side-effect-free and never fail on malformed input beyond
// returning a ParseError for a totally unusable payload.
type Strategy interface {
	Provider() string
	// NeedsRender reports whether this provider's pages hydrate
	// client-side and need a browser before the markup is stable.
	NeedsRender() bool
	ExtractListings(html string) ([]domain.RawListing, error)
	ExtractDetail(html string) (domain.RawDetail, error)
}

// registry maps provider tag to its strategy. Adding a provider is a
// data+function addition here, no inheritance involved.
var registry = map[string]Strategy{
	domain.ProviderTeamtailor:      teamtailorStrategy{},
	domain.ProviderGreenhouse:      greenhouseStrategy{},
	domain.ProviderLever:           leverStrategy{},
	domain.ProviderAshby:           ashbyStrategy{},
	domain.ProviderSmartRecruiters: smartRecruitersStrategy{},
	domain.ProviderGeneric:         genericStrategy{},
}

// ByProvider returns the strategy for tag, or the generic fallback for
// anything unknown.
func ByProvider(tag string) Strategy {
	if s, ok := registry[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return s
	}
	return registry[domain.ProviderGeneric]
}

// Providers lists the registered tags, for config validation.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	return out
}

// parseDoc is the shared entry into goquery for all strategies.
func parseDoc(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, &ParseError{Kind: ErrKindEmptyInput}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Kind: ErrKindStructureMismatch, Err: err}
	}
	return doc, nil
}
