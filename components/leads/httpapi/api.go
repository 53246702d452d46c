package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
	"github.com/goliatone/go-leadboard/components/leads/commands"
	"github.com/goliatone/go-leadboard/components/leads/queries"
)

// SessionHeader carries the dashboard session id.
const SessionHeader = "X-Lead-Session"

var (
	errQueryNotConfigured = errors.New("httpapi: query not configured")
	errMissingLeadID      = errors.New("httpapi: lead id is required")
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	API       Executor
	Dashboard gocommand.Querier[queries.DashboardInput, leads.DashboardView]
	Export    gocommand.Querier[queries.ExportInput, leads.ExportResult]
	Notices   gocommand.Querier[queries.NoticesInput, []leads.Notice]
}

// Mount registers every endpoint on mux below base, e.g. "/admin/leads".
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	base = strings.TrimRight(base, "/")
	mux.HandleFunc("GET "+base+"/_view", h.HandleView)
	mux.HandleFunc("POST "+base+"/filter", h.HandleUpdateFilter)
	mux.HandleFunc("POST "+base+"/selection/toggle", h.HandleToggleSelection)
	mux.HandleFunc("POST "+base+"/selection/visible", h.HandleSelectVisible)
	mux.HandleFunc("DELETE "+base+"/selection", h.HandleClearSelection)
	mux.HandleFunc("POST "+base+"/bulk", h.HandleBulkAction)
	mux.HandleFunc("POST "+base+"/retry", h.HandleRetry)
	mux.HandleFunc("POST "+base+"/simulate-error", h.HandleSimulateError)
	mux.HandleFunc("POST "+base+"/error/dismiss", h.HandleDismissError)
	mux.HandleFunc("GET "+base+"/export.csv", h.HandleExport)
	mux.HandleFunc("GET "+base+"/notices", h.HandleNotices)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	if h.Dashboard == nil {
		writeError(w, http.StatusInternalServerError, errQueryNotConfigured)
		return
	}
	q := r.URL.Query()
	view, err := h.Dashboard.Query(r.Context(), queries.DashboardInput{
		SessionID: SessionFromRequest(r),
		Sort:      leads.ParseSortOrder(q.Get("sort"), q.Get("desc")),
	})
	if err != nil {
		writeError(w, StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateFilterInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.SessionID = resolveSession(r, payload.SessionID)
	h.run(w, h.API.UpdateFilter(r.Context(), payload), "updated")
}

func (h *Handlers) HandleToggleSelection(w http.ResponseWriter, r *http.Request) {
	var payload commands.ToggleSelectionInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.LeadID) == "" {
		writeError(w, http.StatusBadRequest, errMissingLeadID)
		return
	}
	payload.SessionID = resolveSession(r, payload.SessionID)
	h.run(w, h.API.ToggleSelection(r.Context(), payload), "toggled")
}

func (h *Handlers) HandleSelectVisible(w http.ResponseWriter, r *http.Request) {
	input := commands.SelectVisibleInput{SessionID: SessionFromRequest(r)}
	h.run(w, h.API.SelectVisible(r.Context(), input), "selected")
}

func (h *Handlers) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	input := commands.ClearSelectionInput{SessionID: SessionFromRequest(r)}
	h.run(w, h.API.ClearSelection(r.Context(), input), "cleared")
}

func (h *Handlers) HandleBulkAction(w http.ResponseWriter, r *http.Request) {
	var payload commands.BulkActionInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.SessionID = resolveSession(r, payload.SessionID)
	h.run(w, h.API.BulkAction(r.Context(), payload), "applied")
}

func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request) {
	input := commands.RetryFetchInput{SessionID: SessionFromRequest(r)}
	h.runAccepted(w, h.API.Retry(r.Context(), input))
}

func (h *Handlers) HandleSimulateError(w http.ResponseWriter, r *http.Request) {
	input := commands.SimulateErrorInput{SessionID: SessionFromRequest(r)}
	h.runAccepted(w, h.API.SimulateError(r.Context(), input))
}

func (h *Handlers) HandleDismissError(w http.ResponseWriter, r *http.Request) {
	input := commands.DismissErrorInput{SessionID: SessionFromRequest(r)}
	h.run(w, h.API.DismissError(r.Context(), input), "dismissed")
}

// HandleExport streams the CSV download. With nothing to export it answers
// with the warning notice as JSON instead.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	if h.Export == nil {
		writeError(w, http.StatusInternalServerError, errQueryNotConfigured)
		return
	}
	result, err := h.Export.Query(r.Context(), queries.ExportInput{SessionID: SessionFromRequest(r)})
	if err != nil {
		writeError(w, StatusForError(err), err)
		return
	}
	if result.Empty() {
		writeJSON(w, http.StatusOK, map[string]any{"notice": result.Notice})
		return
	}
	for k, v := range CSVHeaders(result) {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Content)
}

func (h *Handlers) HandleNotices(w http.ResponseWriter, r *http.Request) {
	if h.Notices == nil {
		writeError(w, http.StatusInternalServerError, errQueryNotConfigured)
		return
	}
	notices, err := h.Notices.Query(r.Context(), queries.NoticesInput{SessionID: SessionFromRequest(r)})
	if err != nil {
		writeError(w, StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": notices})
}

func (h *Handlers) run(w http.ResponseWriter, err error, status string) {
	if err != nil {
		writeError(w, StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handlers) runAccepted(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
}

// SessionFromRequest reads the session id from SessionHeader, then the
// "session" query parameter. It returns "" when neither is set.
func SessionFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

func resolveSession(r *http.Request, fallback string) string {
	if id := SessionFromRequest(r); id != "" {
		return id
	}
	return strings.TrimSpace(fallback)
}

// StatusForError maps lead errors to HTTP statuses.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, leads.ErrUnknownLead):
		return http.StatusNotFound
	case errors.Is(err, leads.ErrInvalidFilter), errors.Is(err, leads.ErrUnknownBulkAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CSVHeaders returns the download headers for an export.
func CSVHeaders(result leads.ExportResult) map[string]string {
	return map[string]string{
		"Content-Type":        "text/csv; charset=utf-8",
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", result.Filename),
	}
}

// decodeJSON accepts an empty body.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
