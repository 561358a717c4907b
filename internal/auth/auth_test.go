package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mazzdev/pilotage/internal/rbac"
)

// --- mock session store ---

type mockSessions struct {
	users map[string]*User // keyed by plaintext token
}

func (m *mockSessions) LookupSession(_ context.Context, token string) (*User, error) {
	u, ok := m.users[token]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

// --- token helpers ---

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if len(tok) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(tok))
	}

	other, _ := GenerateToken()
	if tok == other {
		t.Error("two generated tokens should differ")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("HashToken should be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("different tokens should hash differently")
	}
	if len(HashToken("anything")) != 64 {
		t.Error("expected 64 hex chars from sha256")
	}
}

// --- context helpers ---

func TestUserContext_RoundTrip(t *testing.T) {
	u := &User{ID: "u1", Email: "dev@example.com", Roles: rbac.RoleSet{rbac.RoleDev}}
	ctx := ContextWithUser(context.Background(), u)
	got := UserFromContext(ctx)
	if got == nil || got.ID != "u1" {
		t.Fatalf("UserFromContext = %+v", got)
	}
	if UserFromContext(context.Background()) != nil {
		t.Error("empty context should yield nil user")
	}
}

// --- middleware ---

func middlewareTestHandler(sessions SessionLookup) http.Handler {
	return SessionMiddleware(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil {
			t := "no user in context"
			http.Error(w, t, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(u.ID))
	}))
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	h := middlewareTestHandler(&mockSessions{})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error.Code != "unauthorized" {
		t.Errorf("expected code unauthorized, got %q", body.Error.Code)
	}
}

func TestSessionMiddleware_InvalidToken(t *testing.T) {
	h := middlewareTestHandler(&mockSessions{users: map[string]*User{}})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	sessions := &mockSessions{users: map[string]*User{
		"tok123": {ID: "u42", Roles: rbac.RoleSet{rbac.RoleAdmin}},
	}}
	h := middlewareTestHandler(sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "u42" {
		t.Errorf("expected handler to see user u42, got %q", rec.Body.String())
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"", ""},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := ExtractBearerToken(req); got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
