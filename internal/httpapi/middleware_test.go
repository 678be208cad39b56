package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDEchoedAndGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	req.Header.Set("X-Request-Id", "client-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "client-supplied" {
		t.Fatalf("client request id not propagated: %q", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "client-supplied" {
		t.Fatalf("request id not echoed: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen == "" || seen == "client-supplied" {
		t.Fatalf("expected a generated request id, got %q", seen)
	}
	if rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("generated id not echoed in header")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestRateLimitReturns429(t *testing.T) {
	h := RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), 2, 0.0001)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.RemoteAddr = "10.0.0.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}

	// A different client keeps its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.RemoteAddr = "10.0.0.8:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("independent client should pass, got %d", rec.Code)
	}
}

func TestCORSPreflightAndOrigins(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), []string{"https://admin.scanid.app"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/users", nil)
	req.Header.Set("Origin", "https://admin.scanid.app")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.scanid.app" {
		t.Fatalf("origin not allowed: %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be reflected")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("localhost origin should be allowed in development")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	if ip := clientIP(req); ip != "10.0.0.1" {
		t.Fatalf("remote addr host expected, got %q", ip)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := clientIP(req); ip != "203.0.113.9" {
		t.Fatalf("first forwarded hop expected, got %q", ip)
	}
}
