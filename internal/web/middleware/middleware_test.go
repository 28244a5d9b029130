package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestTrustedRealIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		xff        string
		want       string
	}{
		{"trusted proxy with X-Real-IP", "10.1.2.3:5000", "203.0.113.7", "", "203.0.113.7"},
		{"trusted proxy with X-Forwarded-For chain", "10.1.2.3:5000", "", "198.51.100.2, 10.1.2.3", "198.51.100.2"},
		{"untrusted client is not rewritten", "192.0.2.1:4000", "203.0.113.7", "", "192.0.2.1:4000"},
		{"invalid header is ignored", "10.1.2.3:5000", "not-an-ip", "", "10.1.2.3:5000"},
		{"no headers", "10.1.2.3:5000", "", "", "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAddr(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"127.0.0.1:8080", "127.0.0.1", true},
		{"[::1]:443", "::1", true},
		{"192.0.2.5", "192.0.2.5", true},
		{"[::ffff:10.0.0.1]:80", "10.0.0.1", true},
		{"garbage", "", false},
	}

	for _, tt := range tests {
		addr, ok := ParseAddr(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseAddr(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && addr.String() != tt.want {
			t.Errorf("ParseAddr(%q) = %s, want %s", tt.in, addr, tt.want)
		}
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logger)
	r.Get("/tables/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/abc", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusNotFound)
	ww.WriteHeader(http.StatusInternalServerError)
	n, _ := ww.Write([]byte("gone"))

	if ww.status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", ww.status, http.StatusNotFound)
	}
	if ww.bytes != n {
		t.Errorf("bytes = %d, want %d", ww.bytes, n)
	}
}
