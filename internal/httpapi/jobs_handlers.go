package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/events"
	"jobcatalog-engine/internal/store"
)

type JobsHandler struct {
	Store *store.Store
	Hub   *events.Hub
}

// approvedJob decorates a posting with an incomplete marker so
// consumers can tell an approved row whose detail pass has not landed
// yet.
type approvedJob struct {
	domain.JobPosting
	Incomplete bool `json:"incomplete"`
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")

	var status domain.Status
	if raw != "" {
		var err error
		status, err = domain.ParseStatus(raw)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
	}

	jobs, err := h.Store.ListByStatus(r.Context(), status)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if jobs == nil {
		jobs = []domain.JobPosting{}
	}
	writeJSON(w, jobs)
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/jobs/")

	if rest == "approved" {
		h.approved(w, r)
		return
	}

	job, err := h.Store.GetByID(r.Context(), rest)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, job)
}

func (h JobsHandler) approved(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.Approved(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	out := make([]approvedJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, approvedJob{JobPosting: j, Incomplete: !j.HasDescription()})
	}
	writeJSON(w, out)
}

// ActionByPath dispatches POST /jobs/{id}/status and POST /jobs/{id}/reset.
func (h JobsHandler) ActionByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/jobs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown jobs action")
		return
	}
	id, action := parts[0], parts[1]

	switch action {
	case "status":
		h.setStatus(w, r, id)
	case "reset":
		h.reset(w, r, id)
	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown jobs action")
	}
}

func (h JobsHandler) setStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_body", "expected {\"status\": ...}")
		return
	}

	to, err := domain.ParseStatus(body.Status)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	job, err := h.Store.UpdateStatus(r.Context(), id, to)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeStatusChanged, 1, map[string]any{
		"id": id, "status": string(to),
	}))
	writeJSON(w, job)
}

func (h JobsHandler) reset(w http.ResponseWriter, r *http.Request, id string) {
	job, err := h.Store.ResetStatus(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeStatusChanged, 1, map[string]any{
		"id": id, "status": string(domain.StatusNew),
	}))
	writeJSON(w, job)
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "posting not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		WriteError(w, r, http.StatusConflict, "invalid_transition", err.Error())
	default:
		var se *store.StoreError
		if errors.As(err, &se) && se.Kind == store.ErrKindConflict {
			WriteError(w, r, http.StatusConflict, "conflict", "concurrent status change, retry")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
	}
}
