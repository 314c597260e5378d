package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/services/auth"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTokens map[string]*auth.Claims

func (f fakeTokens) ValidateToken(token string) (*auth.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

var testTokens = fakeTokens{
	"user-token": {Username: "ada"},
	"sudo-token": {Username: "root", Permissions: models.Permissions{Sudo: true}},
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ClaimsFromContext(r.Context()).Username + ":" + TokenFromContext(r.Context())))
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return env.Error.Code
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"bearer", "", "Bearer abc", "abc"},
		{"lowercase scheme", "", "bearer abc", "abc"},
		{"basic ignored", "", "Basic abc", ""},
		{"cookie", "xyz", "", "xyz"},
		{"cookie wins", "xyz", "Bearer abc", "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewAuth(testTokens)
	h := m.RequireAuth(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer user-token")
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK || w.Body.String() != "ada:user-token" {
		t.Errorf("valid token: status %d body %q", w.Code, w.Body.String())
	}

	for _, header := range []string{"", "Bearer nope"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
		if code := errorCode(t, w.Body.String()); code != "unauthenticated" {
			t.Errorf("header %q: code = %s, want unauthenticated", header, code)
		}
	}
}

func TestRequireSudo(t *testing.T) {
	m := NewAuth(testTokens)
	h := m.RequireAuth(m.RequireSudo(http.HandlerFunc(okHandler)))

	tests := []struct {
		token string
		want  int
	}{
		{"sudo-token", http.StatusOK},
		{"user-token", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tt.token != "" {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})
		}
		h.ServeHTTP(w, r)
		if w.Code != tt.want {
			t.Errorf("token %q: status = %d, want %d", tt.token, w.Code, tt.want)
		}
	}

	// Without RequireAuth in front there are no claims
	w := httptest.NewRecorder()
	m.RequireSudo(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no claims: status = %d, want 401", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimiddleware.GetReqID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("generated id %q, header %q", seen, w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "upstream-id")
	h.ServeHTTP(w, r)
	if seen != "upstream-id" {
		t.Errorf("request id = %q, want upstream-id", seen)
	}
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusBadGateway} {
		h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("body"))
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate?x=1", nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	wantLevels := []string{"info", "warn", "error"}
	for i, e := range entries {
		if e.Level.String() != wantLevels[i] {
			t.Errorf("entry %d level = %s, want %s", i, e.Level, wantLevels[i])
		}
		fields := e.ContextMap()
		if fields["path"] != "/api/generate" || fields["query"] != "x=1" {
			t.Errorf("entry %d fields = %v", i, fields)
		}
		if fields["request_id"] == "" {
			t.Errorf("entry %d missing request_id", i)
		}
		if fields["body_size"] != int64(4) {
			t.Errorf("entry %d body_size = %v, want 4", i, fields["body_size"])
		}
	}
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if code := errorCode(t, w.Body.String()); code != "internal_error" {
		t.Errorf("code = %s, want internal_error", code)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d entries, want 1", logs.Len())
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
}

func TestNormalizePath(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/api/presentations/{id}", func(w http.ResponseWriter, req *http.Request) {
		// Pattern is read by the handler here to mirror what Metrics sees
		got = normalizePath(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/presentations/pres-01J", nil))
	if got != "/api/presentations/{id}" {
		t.Errorf("routed path = %s", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/x/pres-01J/550e8400-e29b-41d4-a716-446655440000", nil)
	if p := normalizePath(bare); p != "/x/{id}/{id}" {
		t.Errorf("unrouted path = %s", p)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.example"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/generate-with-template", nil)
	r.Header.Set("Origin", "https://app.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if !strings.EqualFold(w.Header().Get("Access-Control-Allow-Credentials"), "true") {
		t.Error("credentials not allowed")
	}
}
