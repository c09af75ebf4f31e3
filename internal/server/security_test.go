package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		key        string
		wantStatus int
	}{
		{name: "valid key passes", path: "/api/v1/recipes", key: testAPIKey, wantStatus: http.StatusOK},
		{name: "missing key rejected", path: "/api/v1/recipes", key: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong key rejected", path: "/api/v1/craft", key: "wrong-key", wantStatus: http.StatusUnauthorized},
		{name: "healthz bypasses auth", path: "/healthz", key: "", wantStatus: http.StatusOK},
		{name: "readyz bypasses auth", path: "/readyz", key: "", wantStatus: http.StatusOK},
		{name: "metrics bypasses auth", path: "/metrics", key: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := AuthMiddleware(testAPIKey, nil, NewActivityMonitor())
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			rec := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthMiddlewareRecordsFailures(t *testing.T) {
	monitor := NewActivityMonitor()
	mw := AuthMiddleware(testAPIKey, nil, monitor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	req.Header.Set(HeaderAPIKey, "wrong")

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, 3, monitor.failedAuthByIP["203.0.113.9"])
}

func TestRateLimitMiddleware(t *testing.T) {
	monitor := NewActivityMonitor()
	mw := RateLimitMiddleware(nil, monitor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	req.RemoteAddr = "198.51.100.7:1234"

	for i := 0; i < RateLimitWindowReqs; i++ {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitIsPerIP(t *testing.T) {
	monitor := NewActivityMonitor()
	mw := RateLimitMiddleware(nil, monitor)

	blocked := httptest.NewRequest(http.MethodGet, "/", nil)
	blocked.RemoteAddr = "198.51.100.7:1234"
	for i := 0; i < RateLimitWindowReqs+1; i++ {
		mw(okHandler()).ServeHTTP(httptest.NewRecorder(), blocked)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "198.51.100.8:1234"
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	mw := SecurityHeadersMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
	assert.Equal(t, HeaderValueSameOrigin, rec.Header().Get(HeaderFrameOptions))
	assert.Equal(t, HeaderValueReferrerStrictOrigin, rec.Header().Get(HeaderReferrerPolicy))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	var readErr error
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	mw := RequestSizeLimitMiddleware(16)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)

	require.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "request body too large")
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		forwardedFor   string
		trustedProxies []string
		want           string
	}{
		{
			name:       "direct connection",
			remoteAddr: "192.0.2.10:5000",
			want:       "192.0.2.10",
		},
		{
			name:         "forwarded header ignored from untrusted peer",
			remoteAddr:   "192.0.2.10:5000",
			forwardedFor: "10.0.0.1",
			want:         "192.0.2.10",
		},
		{
			name:           "forwarded header honored from trusted proxy",
			remoteAddr:     "192.0.2.10:5000",
			forwardedFor:   "10.0.0.1",
			trustedProxies: []string{"192.0.2.10"},
			want:           "10.0.0.1",
		},
		{
			name:           "rightmost forwarded entry wins",
			remoteAddr:     "192.0.2.10:5000",
			forwardedFor:   "10.0.0.1, 10.0.0.2, 10.0.0.3",
			trustedProxies: []string{"192.0.2.10"},
			want:           "10.0.0.3",
		},
		{
			name:       "missing port falls back to raw addr",
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set(HeaderForwardedFor, tt.forwardedFor)
			}
			assert.Equal(t, tt.want, extractIP(req, tt.trustedProxies))
		})
	}
}
