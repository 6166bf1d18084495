package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/draft-guard/internal/guard"
	"github.com/ignite/draft-guard/internal/rejection"
	"github.com/ignite/draft-guard/internal/rotation"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	guard    *guard.Guard
	memory   *rejection.Memory
	selector *rotation.Selector
	catalog  map[string][]rotation.Template
}

// NewHandlers creates a new Handlers instance
func NewHandlers(g *guard.Guard, mem *rejection.Memory, sel *rotation.Selector, catalog map[string][]rotation.Template) *Handlers {
	if catalog == nil {
		catalog = rotation.DefaultCatalog
	}
	return &Handlers{guard: g, memory: mem, selector: sel, catalog: catalog}
}

// HealthCheck reports process liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckDraft runs the quality guard against a submitted draft and returns
// the full verdict for the admission queue to act on.
func (h *Handlers) CheckDraft(w http.ResponseWriter, r *http.Request) {
	var draft guard.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid draft payload")
		return
	}
	if draft.To == "" {
		respondError(w, http.StatusBadRequest, "draft is missing recipient email")
		return
	}

	result := h.guard.Check(r.Context(), draft)
	respondJSON(w, http.StatusOK, result)
}

// GuardStatus exposes the guard's switches and counters.
func (h *Handlers) GuardStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": h.guard.Enabled(),
		"mode":    h.guard.Mode(),
		"stats":   h.guard.Stats(),
	})
}

// RecordRejection feeds a human review decision into rejection memory.
func (h *Handlers) RecordRejection(w http.ResponseWriter, r *http.Request) {
	var rej rejection.Rejection
	if err := json.NewDecoder(r.Body).Decode(&rej); err != nil {
		respondError(w, http.StatusBadRequest, "invalid rejection payload")
		return
	}
	if rej.Recipient == "" {
		respondError(w, http.StatusBadRequest, "rejection is missing recipient email")
		return
	}

	rec := h.memory.RecordRejection(r.Context(), rej)
	respondJSON(w, http.StatusOK, rec)
}

// GetRejectionHistory returns the recipient's visible record, 404 when the
// recipient has no history inside the retention window.
func (h *Handlers) GetRejectionHistory(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	rec := h.memory.GetRejectionHistory(r.Context(), email)
	if rec == nil {
		respondError(w, http.StatusNotFound, "no rejection history for recipient")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// GetRejectionContext returns generation context for the next draft attempt.
func (h *Handlers) GetRejectionContext(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	respondJSON(w, http.StatusOK, h.memory.FeedbackContext(r.Context(), email))
}

// selectTemplateRequest is the template selection payload.
type selectTemplateRequest struct {
	Recipient string                 `json:"recipient"`
	Tier      string                 `json:"tier"`
	Vars      map[string]interface{} `json:"vars,omitempty"`
}

// SelectTemplate picks the next template for a recipient and tier, and
// renders it when merge variables are supplied.
func (h *Handlers) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req selectTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid selection payload")
		return
	}
	candidates, ok := h.catalog[req.Tier]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown tier")
		return
	}

	tpl := h.selector.Select(r.Context(), req.Recipient, req.Tier, candidates)
	resp := map[string]interface{}{"template_id": tpl.ID}
	if len(req.Vars) > 0 {
		subject, body, err := tpl.Render(req.Vars)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "template render failed: "+err.Error())
			return
		}
		resp["subject"] = subject
		resp["body"] = body
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
