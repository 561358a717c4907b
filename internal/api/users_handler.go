package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/hours"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/user"
)

type usersHandler struct {
	users    UserStore
	planning PlanningStore
}

func newUsersHandler(users UserStore, planning PlanningStore) *usersHandler {
	return &usersHandler{users: users, planning: planning}
}

type createUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Name         string   `json:"name" validate:"required"`
	Roles        []string `json:"roles" validate:"required,min=1,dive,oneof=ROLE_ADMIN ROLE_ACTIONNAIRE ROLE_DEV ROLE_LMNP ROLE_SCI"`
	MonthlyHours int      `json:"monthlyHours" validate:"omitempty,gt=0"`
}

type createUserResponse struct {
	User userResponse `json:"user"`
	// Password is generated server-side and shown exactly once.
	Password string `json:"password"`
}

// Create creates an account with a generated password, returned once in
// the response for the admin to hand over.
func (h *usersHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageUsers(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	password, err := user.GeneratePassword(16)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not generate password")
		return
	}
	roles := make(rbac.RoleSet, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, rbac.Role(role))
	}

	u, err := h.users.Create(r.Context(), user.CreateUserInput{
		Email:        req.Email,
		Password:     password,
		Name:         req.Name,
		Roles:        roles,
		MonthlyHours: req.MonthlyHours,
	})
	if err != nil {
		writeStoreError(w, err, "user not found", "an account with this email already exists")
		return
	}

	auditLog(r, "user.create", "user", u.ID, "email", u.Email)
	writeJSON(w, http.StatusCreated, createUserResponse{
		User:     toUserResponse(u),
		Password: password,
	})
}

type updateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Name         string   `json:"name" validate:"required"`
	Roles        []string `json:"roles" validate:"required,min=1,dive,oneof=ROLE_ADMIN ROLE_ACTIONNAIRE ROLE_DEV ROLE_LMNP ROLE_SCI"`
	MonthlyHours int      `json:"monthlyHours" validate:"required,gt=0"`
}

// Update replaces every mutable field of an account.
func (h *usersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageUsers(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	var req updateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	roles := make(rbac.RoleSet, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, rbac.Role(role))
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.Update(r.Context(), id, user.UpdateUserInput{
		Email:        req.Email,
		Name:         req.Name,
		Roles:        roles,
		MonthlyHours: req.MonthlyHours,
	})
	if err != nil {
		writeStoreError(w, err, "user not found", "an account with this email already exists")
		return
	}

	auditLog(r, "user.update", "user", u.ID)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete removes an account and everything it owns. Deleting yourself is
// rejected so an admin cannot lock the instance out by accident.
func (h *usersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageUsers(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	id := chi.URLParam(r, "id")
	if d := rbac.CanDeleteUser(caller.ID, id); !d.Allowed {
		writeError(w, http.StatusBadRequest, "validation_error", d.Reason)
		return
	}

	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		writeStoreError(w, err, "user not found", "")
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete user")
		return
	}

	auditLog(r, "user.delete", "user", id)
	w.WriteHeader(http.StatusNoContent)
}

// listUserResponse augments an account with its effective quota for the
// current month of the requested product.
type listUserResponse struct {
	userResponse
	EffectiveHours int `json:"effectiveHours"`
}

// List returns all accounts, with each developer's effective quota for the
// requested product and the current month.
func (h *usersHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageUsers(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	app := r.URL.Query().Get("app")
	if !rbac.ValidApp(app) {
		writeError(w, http.StatusBadRequest, "validation_error", "app must be one of: lmnp sci")
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list users")
		return
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	overrides, err := h.planning.QuotasFor(r.Context(), ids, int(now.Month()), now.Year(), app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not resolve quotas")
		return
	}

	out := make([]listUserResponse, 0, len(users))
	for _, u := range users {
		var override *int
		if v, ok := overrides[u.ID]; ok {
			override = &v
		}
		out = append(out, listUserResponse{
			userResponse:   toUserResponse(u),
			EffectiveHours: hours.EffectiveQuota(u.MonthlyHours, override),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ROLE_ADMIN ROLE_ACTIONNAIRE ROLE_DEV ROLE_LMNP ROLE_SCI"`
}

// ChangeRole switches the caller's own assignable role, a demo feature for
// walking through the different dashboards. The base role is re-added by
// the store.
func (h *usersHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	var req changeRoleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	u, err := h.users.SetRoles(r.Context(), caller.ID, rbac.RoleSet{rbac.Role(req.Role)})
	if err != nil {
		writeStoreError(w, err, "user not found", "")
		return
	}

	auditLog(r, "user.change_role", "user", u.ID, "roles", u.Roles)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
