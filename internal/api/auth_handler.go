package api

import (
	"net/http"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/metrics"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/user"
)

type authHandler struct {
	users   UserStore
	metrics *metrics.Metrics
}

func newAuthHandler(users UserStore, m *metrics.Metrics) *authHandler {
	return &authHandler{users: users, metrics: m}
}

// userResponse is the wire shape of an account in auth responses.
type userResponse struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Roles        rbac.RoleSet `json:"roles"`
	PrimaryRole  rbac.Role    `json:"primaryRole"`
	MonthlyHours int          `json:"monthlyHours"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Roles:        u.Roles.WithBase(),
		PrimaryRole:  rbac.Primary(u.Roles),
		MonthlyHours: u.MonthlyHours,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login authenticates by email and password and opens a session.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil || u == nil || !user.CheckPassword(u, req.Password) {
		h.metrics.IncAuthFailure("bad_credentials")
		// Same response whether the account exists or not.
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	token, _, err := h.users.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create session")
		return
	}

	h.metrics.IncAuthSuccess()
	auditLog(r, "login", "session", u.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(u)})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// Register self-creates an account with no assignable role. An admin
// grants roles afterwards.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	u, err := h.users.Create(r.Context(), user.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeStoreError(w, err, "user not found", "an account with this email already exists")
		return
	}

	auditLog(r, "register", "user", u.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Logout deletes the server-side session of the presented token.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractBearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
		return
	}
	if err := h.users.DeleteSession(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete session")
		return
	}
	auditLog(r, "logout", "session", "")
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Roles:        u.Roles.WithBase(),
		PrimaryRole:  rbac.Primary(u.Roles),
		MonthlyHours: u.MonthlyHours,
	})
}
