package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://console.example.com", "https://*.redhat.test"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://console.example.com", true},
		{"https://other.example.com", false},
		{"https://app.redhat.test", true},
		{"https://a.b.redhat.test", true},
		{"https://redhat.test", false},
		{"http://app.redhat.test", false},
		{"https://evilredhat.test", false},
	}
	for _, tt := range tests {
		if got := originAllowed(tt.origin, allowed); got != tt.want {
			t.Errorf("originAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if !originAllowed("https://anything.example.com", []string{"*"}) {
		t.Error("* should allow any origin")
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
		wantVary   bool
	}{
		{"not configured", nil, "GET", "https://console.example.com", http.StatusOK, "", false},
		{"no origin header", []string{"https://console.example.com"}, "GET", "", http.StatusOK, "", false},
		{"allowed", []string{"https://console.example.com"}, "GET", "https://console.example.com", http.StatusOK, "https://console.example.com", true},
		{"disallowed", []string{"https://console.example.com"}, "GET", "https://evil.com", http.StatusOK, "", true},
		{"preflight", []string{"https://console.example.com"}, "OPTIONS", "https://console.example.com", http.StatusNoContent, "https://console.example.com", true},
		{"preflight disallowed", []string{"https://console.example.com"}, "OPTIONS", "https://evil.com", http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{config: Config{CORSAllowedOrigins: tt.origins}}
			req := httptest.NewRequest(tt.method, basePath+"/bundles", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			s.CORSMiddleware(okHandler).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("Vary: Origin set = %v, want %v", got, tt.wantVary)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	s := &Server{config: Config{CORSAllowedOrigins: []string{"https://*.example.com"}}}
	req := httptest.NewRequest("OPTIONS", basePath+"/notifications/abc/behavior", nil)
	req.Header.Set("Origin", "https://console.example.com")
	w := httptest.NewRecorder()
	s.CORSMiddleware(okHandler).ServeHTTP(w, req)

	h := w.Header()
	if h.Get("Access-Control-Allow-Methods") != corsAllowMethods {
		t.Errorf("Allow-Methods = %q", h.Get("Access-Control-Allow-Methods"))
	}
	if h.Get("Access-Control-Allow-Headers") != corsAllowHeaders {
		t.Errorf("Allow-Headers = %q", h.Get("Access-Control-Allow-Headers"))
	}
	if h.Get("Access-Control-Max-Age") != corsMaxAge {
		t.Errorf("Max-Age = %q", h.Get("Access-Control-Max-Age"))
	}
	if h.Get("Access-Control-Expose-Headers") == "" {
		t.Error("expected exposed headers")
	}
}
