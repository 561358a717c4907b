package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/planning"
	"github.com/mazzdev/pilotage/internal/rbac"
)

type planningHandler struct {
	users    UserStore
	planning PlanningStore
}

func newPlanningHandler(users UserStore, planningStore PlanningStore) *planningHandler {
	return &planningHandler{users: users, planning: planningStore}
}

type yearPlanResponse struct {
	UserID string              `json:"userId"`
	Year   int                 `json:"year"`
	App    string              `json:"app"`
	Months []planning.MonthPlan `json:"months"`
}

// YearView returns the twelve effective monthly quotas for one user, year
// and product, flagging the months that come from an override.
func (h *planningHandler) YearView(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageHoursPlanning(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	app := r.URL.Query().Get("app")
	if !rbac.ValidApp(app) {
		writeError(w, http.StatusBadRequest, "validation_error", "app must be one of: lmnp sci")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "validation_error", "year must be valid")
		return
	}

	userID := chi.URLParam(r, "userID")
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "user not found", "")
		return
	}

	overrides, err := h.planning.ListYear(r.Context(), userID, year, app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list quota overrides")
		return
	}

	months := make([]planning.MonthPlan, 0, 12)
	for month := 1; month <= 12; month++ {
		plan := planning.MonthPlan{Month: month, Hours: u.MonthlyHours}
		if v, ok := overrides[month]; ok {
			plan.Hours = v
			plan.IsCustom = true
		}
		months = append(months, plan)
	}

	writeJSON(w, http.StatusOK, yearPlanResponse{
		UserID: userID,
		Year:   year,
		App:    app,
		Months: months,
	})
}

type upsertPlanningRequest struct {
	Month int    `json:"month" validate:"required,gte=1,lte=12"`
	Year  int    `json:"year" validate:"required,gte=2000,lte=2200"`
	App   string `json:"app" validate:"required,oneof=lmnp sci"`
	Hours int    `json:"hours" validate:"required,gt=0"`
}

// Upsert sets the quota override for one (user, month, year, app) tuple,
// replacing a previous override in place.
func (h *planningHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageHoursPlanning(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	var req upsertPlanningRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	userID := chi.URLParam(r, "userID")
	if _, err := h.users.GetByID(r.Context(), userID); err != nil {
		writeStoreError(w, err, "user not found", "")
		return
	}

	p, err := h.planning.Upsert(r.Context(), userID, req.Month, req.Year, req.App, req.Hours)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not save quota override")
		return
	}

	auditLog(r, "planning.upsert", "hours_planning", p.ID,
		"target_user", userID, "month", req.Month, "year", req.Year, "app", req.App, "hours", req.Hours)
	writeJSON(w, http.StatusOK, p)
}

// Reset removes the override for the tuple so the user's default quota
// applies again. Resetting a month without an override succeeds quietly.
func (h *planningHandler) Reset(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageHoursPlanning(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	userID := chi.URLParam(r, "userID")
	app := r.URL.Query().Get("app")
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	if !rbac.ValidApp(app) || merr != nil || month < 1 || month > 12 || yerr != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "month, year and app must be valid")
		return
	}

	if err := h.planning.Delete(r.Context(), userID, month, year, app); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not reset quota override")
		return
	}

	auditLog(r, "planning.reset", "hours_planning", "",
		"target_user", userID, "month", month, "year", year, "app", app)
	w.WriteHeader(http.StatusNoContent)
}
