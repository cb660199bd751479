package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/httpapi/handler"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
)

// denyAllLimiter denies every request (for testing 429).
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(key string) (bool, int) { return false, 60 }

// keyRecorder allows everything and remembers the keys it saw.
type keyRecorder struct{ keys []string }

func (k *keyRecorder) Allow(key string) (bool, int) {
	k.keys = append(k.keys, key)
	return true, 0
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRateLimitMiddleware_Returns429WhenDenied(t *testing.T) {
	var lim ratelimit.Limiter = denyAllLimiter{}
	h := RateLimitMiddleware(lim, RateLimitKeyByIP)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_ProxiesWhenAllowed(t *testing.T) {
	h := RateLimitMiddleware(&ratelimit.Noop{}, RateLimitKeyByIP)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRateLimitMiddleware_EmptyKeyFallsBack(t *testing.T) {
	rec := &keyRecorder{}
	h := RateLimitMiddleware(rec, func(*http.Request) string { return "" })(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"unknown"}, rec.keys)
}

func TestRateLimitKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	assert.Equal(t, "ip:10.1.1.1:5555", RateLimitKeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.7", RateLimitKeyByIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "ip:198.51.100.2", RateLimitKeyByIP(req))
}

func TestRateLimitKeyByPlayer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	assert.Equal(t, "ip:10.1.1.1:5555", RateLimitKeyByPlayer(req))

	req = req.WithContext(handler.WithPlayer(req.Context(), &auth.Claims{PlayerID: "p1", DisplayName: "Percival"}))
	assert.Equal(t, "player:p1", RateLimitKeyByPlayer(req))
}

func TestLimitRequestBody(t *testing.T) {
	h := LimitRequestBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var maxErr *http.MaxBytesError
		if assert.ErrorAs(t, err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequirePlayer(t *testing.T) {
	signer, err := auth.NewSigner([]byte("middleware-secret"), time.Hour)
	require.NoError(t, err)
	token, _, err := signer.Issue("p7", "Galahad")
	require.NoError(t, err)

	var gotID, gotName string
	h := RequirePlayer(signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := handler.PlayerFromRequest(r)
		require.True(t, ok)
		gotID, gotName = p.ID, p.DisplayName
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
	assert.Equal(t, "p7", gotID)
	assert.Equal(t, "Galahad", gotName)
}
