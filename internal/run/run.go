package run

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobcatalog-engine/internal/config"
	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/events"
	"jobcatalog-engine/internal/fetch"
	"jobcatalog-engine/internal/normalize"
	"jobcatalog-engine/internal/scrape"
	"jobcatalog-engine/internal/store"
)

// Runner drives the two ingestion passes: the listing pass walks the
// configured listing pages and upserts postings, the detail pass
// backfills descriptions for rows that still lack one.
type Runner struct {
	cfg    config.Config
	store  *store.Store
	client *fetch.Client
	hub    *events.Hub
	rawDir string

	mu     sync.Mutex
	status Status
}

// Status is the snapshot reported on /scrape/status.
type Status struct {
	Running   bool   `json:"running"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
}

// TargetResult is the per-listing-page breakdown of a listing pass.
type TargetResult struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// Summary totals a listing pass across all targets.
type Summary struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Targets    []TargetResult `json:"targets"`
	Inserted   int            `json:"inserted"`
	Updated    int            `json:"updated"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
}

// DetailSummary totals a detail pass.
type DetailSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
}

// New wires a Runner from config. dataDir hosts the raw HTML archive
// under raw/; pass "" to disable archiving.
func New(cfg config.Config, st *store.Store, hub *events.Hub, dataDir string) *Runner {
	var renderer fetch.Renderer
	if cfg.Fetch.Render {
		renderer = fetch.NewChromedpRenderer(fetch.RenderOptions{
			Timeout:   cfg.Fetch.RenderTimeout,
			UserAgent: cfg.Fetch.UserAgent,
		})
	}

	client := fetch.NewClient(fetch.ClientConfig{
		Timeout:     cfg.Fetch.Timeout,
		MinInterval: cfg.Politeness.MinInterval,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BaseDelay:   cfg.Fetch.BaseDelay,
		UserAgent:   cfg.Fetch.UserAgent,
		Renderer:    renderer,
	})

	rawDir := ""
	if dataDir != "" {
		rawDir = filepath.Join(dataDir, "raw")
	}

	return &Runner{cfg: cfg, store: st, client: client, hub: hub, rawDir: rawDir}
}

// Status returns a copy of the current run status.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// TryStart marks the runner busy; callers must Finish when done.
// Returns false when a run is already in flight.
func (r *Runner) TryStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return false
	}
	r.status.Running = true
	r.status.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	return true
}

func (r *Runner) finish(added int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Running = false
	r.status.LastAdded = added
	if err != nil {
		r.status.LastError = err.Error()
		return
	}
	r.status.LastError = ""
	r.status.LastOkAt = time.Now().UTC().Format(time.RFC3339)
}

// ListingPass fetches every configured listing page, extracts and
// normalizes its postings and upserts them. Fetch and parse failures
// are recorded per target and never cancel siblings; a store
// io_failure aborts the whole pass.
func (r *Runner) ListingPass(ctx context.Context) (Summary, error) {
	sum := Summary{StartedAt: time.Now().UTC()}
	r.publish(events.TypeRunStarted, map[string]any{"pass": "listing"})

	type target struct {
		provider string
		url      string
	}
	var targets []target
	for provider, urls := range r.cfg.Targets {
		for _, u := range urls {
			targets = append(targets, target{provider: provider, url: u})
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for _, t := range targets {
		t := t
		g.Go(func() error {
			res, err := r.processTarget(gctx, t.provider, t.url)
			mu.Lock()
			sum.Targets = append(sum.Targets, res)
			sum.Inserted += res.Inserted
			sum.Updated += res.Updated
			sum.Skipped += res.Skipped
			sum.Failed += res.Failed
			mu.Unlock()
			return err
		})
	}

	err := g.Wait()
	sum.FinishedAt = time.Now().UTC()
	r.finish(sum.Inserted, err)
	r.publish(events.TypeRunFinished, sum)

	log.Printf("[run] listing pass done targets=%d inserted=%d updated=%d skipped=%d failed=%d",
		len(sum.Targets), sum.Inserted, sum.Updated, sum.Skipped, sum.Failed)
	return sum, err
}

func (r *Runner) processTarget(ctx context.Context, provider, pageURL string) (TargetResult, error) {
	res := TargetResult{Provider: provider, URL: pageURL}

	strategy := scrape.ByProvider(provider)

	kind := fetch.KindStatic
	if strategy.NeedsRender() {
		kind = fetch.KindRendered
	}

	html, err := r.client.Fetch(ctx, pageURL, kind)
	if err != nil {
		log.Printf("[run] fetch failed provider=%s url=%s err=%v", provider, pageURL, err)
		res.Failed++
		res.Error = err.Error()
		return res, nil
	}

	listings, err := strategy.ExtractListings(html)
	if err != nil {
		log.Printf("[run] parse failed provider=%s url=%s err=%v", provider, pageURL, err)
		res.Failed++
		res.Error = err.Error()
		return res, nil
	}

	company := normalize.CompanyFromURL(pageURL)

	for _, l := range listings {
		p, ok := buildPosting(company, strategy.Provider(), pageURL, l)
		if !ok {
			res.Skipped++
			continue
		}

		_, outcome, err := r.store.Upsert(ctx, p)
		if err != nil {
			if store.IsIOFailure(err) {
				return res, fmt.Errorf("upsert %s: %w", p.ApplyURL, err)
			}
			log.Printf("[run] upsert failed id=%s url=%s err=%v", p.ID, p.ApplyURL, err)
			res.Failed++
			continue
		}

		switch outcome {
		case store.OutcomeInserted:
			res.Inserted++
			r.publish(events.TypePostingCreated, map[string]any{
				"id": p.ID, "company": p.Company, "title": p.Title,
			})
		case store.OutcomeUpdated:
			res.Updated++
			r.publish(events.TypePostingUpdated, map[string]any{"id": p.ID})
		default:
			res.Skipped++
		}
	}

	log.Printf("[run] target done provider=%s url=%s listings=%d inserted=%d",
		provider, pageURL, len(listings), res.Inserted)
	return res, nil
}

// buildPosting normalizes a raw listing into a catalog posting.
// Listings without a resolvable apply URL or a title carry no identity
// and are dropped.
func buildPosting(company, provider, pageURL string, l domain.RawListing) (domain.JobPosting, bool) {
	applyURL := normalize.CanonicalURL(normalize.ResolveURL(pageURL, l.URL))
	if applyURL == "" {
		return domain.JobPosting{}, false
	}

	title := normalize.CleanText(l.Title)
	if title == "" {
		return domain.JobPosting{}, false
	}

	if company == "" {
		company = normalize.CompanyFromURL(applyURL)
	}
	if company == "" {
		company = "unknown"
	}

	return domain.JobPosting{
		ID:          normalize.PostingID(company, applyURL),
		Company:     company,
		ATSProvider: provider,
		Title:       title,
		Location:    normalize.Location(l.Location),
		ApplyURL:    applyURL,
		Fingerprint: normalize.Fingerprint(company, title, applyURL),
	}, true
}

// DetailPass fetches the apply page for every posting that still lacks
// a description and writes the extracted text back. Per-posting
// failures are collected; an io_failure aborts the pass.
func (r *Runner) DetailPass(ctx context.Context) (DetailSummary, error) {
	sum := DetailSummary{StartedAt: time.Now().UTC()}

	pending, err := r.store.PendingDetail(ctx)
	if err != nil {
		sum.FinishedAt = time.Now().UTC()
		r.finish(0, err)
		return sum, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for _, row := range pending {
		row := row
		g.Go(func() error {
			changed, err := r.processDetail(gctx, row)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if store.IsIOFailure(err) {
					return fmt.Errorf("detail %s: %w", row.ID, err)
				}
				sum.Failed++
				sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", row.ApplyURL, err))
				return nil
			}
			if changed {
				sum.Fetched++
			} else {
				sum.Unchanged++
			}
			return nil
		})
	}

	err = g.Wait()
	sum.FinishedAt = time.Now().UTC()
	r.finish(sum.Fetched, err)

	log.Printf("[run] detail pass done pending=%d fetched=%d unchanged=%d failed=%d",
		len(pending), sum.Fetched, sum.Unchanged, sum.Failed)
	return sum, err
}

func (r *Runner) processDetail(ctx context.Context, row domain.JobPosting) (bool, error) {
	strategy := scrape.ByProvider(row.ATSProvider)

	kind := fetch.KindStatic
	if strategy.NeedsRender() {
		kind = fetch.KindRendered
	}

	html, err := r.client.Fetch(ctx, row.ApplyURL, kind)
	if err != nil {
		return false, err
	}

	// postings ingested through the generic strategy may still carry
	// recognizable ATS markup on their detail page
	if strategy.Provider() == domain.ProviderGeneric {
		strategy = scrape.Classify(row.ApplyURL, html)
	}

	detail, err := strategy.ExtractDetail(html)
	if err != nil {
		return false, err
	}

	r.archive(row, html)

	changed, err := r.store.UpsertDetail(ctx, row.ID, detail.Description)
	if err != nil {
		return false, err
	}
	if changed {
		r.publish(events.TypePostingUpdated, map[string]any{"id": row.ID, "detail": true})
	}
	return changed, nil
}

// archive keeps the fetched detail page on disk so parses can be
// replayed after a strategy fix without re-fetching.
func (r *Runner) archive(row domain.JobPosting, html string) {
	if r.rawDir == "" {
		return
	}
	if err := os.MkdirAll(r.rawDir, 0o755); err != nil {
		log.Printf("[run] archive dir: %v", err)
		return
	}
	name := fmt.Sprintf("%s__%s__%s.html",
		sanitizeFilename(row.Company), sanitizeFilename(row.Title), row.ID)
	if err := os.WriteFile(filepath.Join(r.rawDir, name), []byte(html), 0o644); err != nil {
		log.Printf("[run] archive write: %v", err)
	}
}

func (r *Runner) publish(typ string, data any) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(events.MakeEvent("", typ, 1, data))
}
