package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	})

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestIDMiddleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if seen == "" {
			t.Error("no request ID in context")
		}
		if got := rec.Header().Get("X-Request-ID"); got != seen {
			t.Errorf("response header = %q, context = %q", got, seen)
		}
	})

	t.Run("preserves caller's ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-chosen")
		rec := httptest.NewRecorder()
		RequestIDMiddleware(inner).ServeHTTP(rec, req)

		if seen != "caller-chosen" {
			t.Errorf("context ID = %q, want caller-chosen", seen)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		keys        []string
		allowAnon   bool
		header      string
		headerValue string
		wantStatus  int
	}{
		{"no keys, anonymous allowed", nil, true, "", "", http.StatusOK},
		{"no keys, anonymous forbidden", nil, false, "", "", http.StatusUnauthorized},
		{"valid X-API-Key", []string{"secret"}, false, "X-API-Key", "secret", http.StatusOK},
		{"valid bearer token", []string{"secret"}, false, "Authorization", "Bearer secret", http.StatusOK},
		{"wrong key", []string{"secret"}, false, "X-API-Key", "nope", http.StatusUnauthorized},
		{"missing key", []string{"secret"}, false, "", "", http.StatusUnauthorized},
		{"anonymous flag ignored when keys set", []string{"secret"}, true, "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(tt.keys, tt.allowAnon)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.headerValue)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(okHandler())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// burst of 2 passes, the third is rejected
	if got := send(); got != http.StatusOK {
		t.Errorf("first request: status = %d", got)
	}
	if got := send(); got != http.StatusOK {
		t.Errorf("second request: status = %d", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", got)
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMaxBodyMiddleware(t *testing.T) {
	handler := MaxBodyMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	big := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 64)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	small := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("ok")))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, small)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
