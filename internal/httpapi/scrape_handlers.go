package httpapi

import (
	"context"
	"log"
	"net/http"

	"jobcatalog-engine/internal/run"
)

type ScrapeHandler struct {
	Runner *run.Runner
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run kicks off a listing pass in the background; a second request
// while one is in flight is refused rather than queued.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Runner.TryStart() {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	go func() {
		if _, err := h.Runner.ListingPass(context.Background()); err != nil {
			log.Printf("[httpapi] listing pass: %v", err)
		}
	}()

	writeJSON(w, map[string]any{"ok": true})
}

// Details kicks off a detail pass in the background.
func (h ScrapeHandler) Details(w http.ResponseWriter, r *http.Request) {
	if !h.Runner.TryStart() {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	go func() {
		if _, err := h.Runner.DetailPass(context.Background()); err != nil {
			log.Printf("[httpapi] detail pass: %v", err)
		}
	}()

	writeJSON(w, map[string]any{"ok": true})
}
