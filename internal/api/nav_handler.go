package api

import (
	"net/http"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/nav"
)

type navHandler struct{}

// Resolve maps a client-side path to the screen the caller may render.
// Denials are normal 200 results carrying the fallback state: the path in
// the address bar is a hint, not an authorization.
func (navHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	writeJSON(w, http.StatusOK, nav.ResolvePath(path, caller.Roles))
}
