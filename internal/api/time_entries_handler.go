package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/hours"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/timeentry"
)

const dateLayout = "2006-01-02"

type timeEntriesHandler struct {
	entries  TimeEntryStore
	planning PlanningStore
}

func newTimeEntriesHandler(entries TimeEntryStore, planning PlanningStore) *timeEntriesHandler {
	return &timeEntriesHandler{entries: entries, planning: planning}
}

// entryResponse wraps an entry with its date rendered as YYYY-MM-DD.
type entryResponse struct {
	*timeentry.Entry
	Date string `json:"date"`
}

func toEntryResponse(e *timeentry.Entry) entryResponse {
	return entryResponse{Entry: e, Date: e.Date.Format(dateLayout)}
}

type monthResponse struct {
	Entries []entryResponse `json:"entries"`
	Summary hours.Summary   `json:"summary"`
}

// effectiveQuota resolves the quota for one user and month, override first.
func (h *timeEntriesHandler) effectiveQuota(r *http.Request, userID string, defaultHours, month, year int, app string) (int, error) {
	p, err := h.planning.Get(r.Context(), userID, month, year, app)
	if err != nil {
		return 0, err
	}
	var override *int
	if p != nil {
		override = &p.Hours
	}
	return hours.EffectiveQuota(defaultHours, override), nil
}

// ListMonth returns the caller's entries for one month and product, with
// the progress summary against the effective quota.
func (h *timeEntriesHandler) ListMonth(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	q := r.URL.Query()
	app := q.Get("app")
	if !rbac.ValidApp(app) {
		writeError(w, http.StatusBadRequest, "validation_error", "app must be one of: lmnp sci")
		return
	}
	if d := rbac.CanAccessProduct(caller.Roles, rbac.App(app)); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}
	month, year, ok := monthYearOrNow(q.Get("month"), q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "month and year must be valid")
		return
	}

	entries, err := h.entries.ListByUserMonth(r.Context(), caller.ID, month, year, app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list time entries")
		return
	}

	quota, err := h.effectiveQuota(r, caller.ID, caller.MonthlyHours, month, year, app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not resolve quota")
		return
	}

	out := make([]entryResponse, 0, len(entries))
	var total float64
	for _, e := range entries {
		total += e.Hours
		out = append(out, toEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, monthResponse{
		Entries: out,
		Summary: hours.Summarize(total, quota),
	})
}

type createEntryRequest struct {
	Hours float64          `json:"hours" validate:"required,gt=0"`
	Date  string           `json:"date" validate:"required"`
	Tasks []timeentry.Task `json:"tasks" validate:"required,min=1,dive"`
	App   string           `json:"app" validate:"required,oneof=lmnp sci"`
}

// Create records hours worked by the caller on one product for one day.
func (h *timeEntriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	var req createEntryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	for _, task := range req.Tasks {
		if task.Title == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "every task needs a title")
			return
		}
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "date must be formatted YYYY-MM-DD")
		return
	}
	if d := rbac.CanAccessProduct(caller.Roles, rbac.App(req.App)); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	e, err := h.entries.Create(r.Context(), timeentry.CreateEntryInput{
		UserID: caller.ID,
		Hours:  req.Hours,
		Date:   date,
		Tasks:  req.Tasks,
		App:    req.App,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create time entry")
		return
	}

	auditLog(r, "time_entry.create", "time_entry", e.ID, "app", e.App, "hours", e.Hours)
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

// Delete removes one of the caller's own entries. Entries are immutable:
// fixing one means deleting and recreating it.
func (h *timeEntriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	e, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "time entry not found", "")
		return
	}
	if d := rbac.CanDeleteTimeEntry(e.UserID, caller.ID); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	if err := h.entries.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete time entry")
		return
	}

	auditLog(r, "time_entry.delete", "time_entry", id)
	w.WriteHeader(http.StatusNoContent)
}

// adminEntryResponse is an entry joined with its owner for the admin view.
type adminEntryResponse struct {
	entryResponse
	User timeentry.Owner `json:"user"`
}

type adminMonthResponse struct {
	Entries []adminEntryResponse     `json:"entries"`
	ByUser  map[string]hours.Summary `json:"byUser"`
}

// ListAllMonth returns every developer's entries for one month and product,
// each user summarized against their own effective quota.
func (h *timeEntriesHandler) ListAllMonth(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanAccessAdmin(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	q := r.URL.Query()
	app := q.Get("app")
	if !rbac.ValidApp(app) {
		writeError(w, http.StatusBadRequest, "validation_error", "app must be one of: lmnp sci")
		return
	}
	month, year, ok := monthYearOrNow(q.Get("month"), q.Get("year"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "month and year must be valid")
		return
	}

	entries, err := h.entries.ListAllByMonth(r.Context(), month, year, app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list time entries")
		return
	}

	totals := make(map[string]float64)
	defaults := make(map[string]int)
	ids := make([]string, 0)
	out := make([]adminEntryResponse, 0, len(entries))
	for _, e := range entries {
		if _, seen := totals[e.UserID]; !seen {
			ids = append(ids, e.UserID)
		}
		totals[e.UserID] += e.Hours
		defaults[e.UserID] = e.Owner.MonthlyHours
		out = append(out, adminEntryResponse{
			entryResponse: toEntryResponse(&e.Entry),
			User:          e.Owner,
		})
	}

	overrides, err := h.planning.QuotasFor(r.Context(), ids, month, year, app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not resolve quotas")
		return
	}
	quotas := make(map[string]int, len(totals))
	for userID, defaultHours := range defaults {
		var override *int
		if v, ok := overrides[userID]; ok {
			override = &v
		}
		quotas[userID] = hours.EffectiveQuota(defaultHours, override)
	}

	writeJSON(w, http.StatusOK, adminMonthResponse{
		Entries: out,
		ByUser:  hours.SummarizeByUser(totals, quotas),
	})
}
