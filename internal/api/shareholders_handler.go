package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/shareholder"
)

type shareholdersHandler struct {
	shareholders ShareholderStore
}

func newShareholdersHandler(shareholders ShareholderStore) *shareholdersHandler {
	return &shareholdersHandler{shareholders: shareholders}
}

type shareholderRequest struct {
	FirstName string `json:"prenom" validate:"required"`
	LastName  string `json:"nom" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Shares    int    `json:"nombreParts" validate:"required,gt=0"`
}

// List returns the registry, visible to shareholders and admins.
func (h *shareholdersHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanAccessShareholderArea(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	shareholders, err := h.shareholders.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list shareholders")
		return
	}
	if shareholders == nil {
		shareholders = []*shareholder.Shareholder{}
	}
	writeJSON(w, http.StatusOK, shareholders)
}

// Create registers a new shareholder. Duplicate emails are a conflict.
func (h *shareholdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageShareholders(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	var req shareholderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	sh, err := h.shareholders.Create(r.Context(), shareholder.Input{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Shares:    req.Shares,
	})
	if err != nil {
		writeStoreError(w, err, "shareholder not found", "a shareholder with this email already exists")
		return
	}

	auditLog(r, "shareholder.create", "shareholder", sh.ID, "email", sh.Email)
	writeJSON(w, http.StatusCreated, sh)
}

// Update replaces every field of a shareholder.
func (h *shareholdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageShareholders(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	var req shareholderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if msg := checkStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}

	id := chi.URLParam(r, "id")
	sh, err := h.shareholders.Update(r.Context(), id, shareholder.Input{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Shares:    req.Shares,
	})
	if err != nil {
		writeStoreError(w, err, "shareholder not found", "a shareholder with this email already exists")
		return
	}

	auditLog(r, "shareholder.update", "shareholder", sh.ID)
	writeJSON(w, http.StatusOK, sh)
}

// Delete removes a shareholder from the registry permanently.
func (h *shareholdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if d := rbac.CanManageShareholders(caller.Roles); !d.Allowed {
		writeForbidden(w, d.Reason)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.shareholders.GetByID(r.Context(), id); err != nil {
		writeStoreError(w, err, "shareholder not found", "")
		return
	}
	if err := h.shareholders.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete shareholder")
		return
	}

	auditLog(r, "shareholder.delete", "shareholder", id)
	w.WriteHeader(http.StatusNoContent)
}
