package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/heartmarshall/journalfeed/pkg/ctxutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func post(handler http.Handler, remote, visitor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/actions", nil)
	req.RemoteAddr = remote
	if visitor != "" {
		req = req.WithContext(ctxutil.WithVisitorID(req.Context(), visitor))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	handler := rl.Limit(10)(okHandler())

	for i := 0; i < 10; i++ {
		rec := post(handler, "1.2.3.4:1234", "")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	handler := rl.Limit(5)(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(handler, "1.2.3.4:1234", "").Code)
	}

	rec := post(handler, "1.2.3.4:9999", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "ports of one host share a bucket")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_ClientsIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	handler := rl.Limit(2)(okHandler())

	for i := 0; i < 2; i++ {
		post(handler, "1.1.1.1:1234", "")
		post(handler, "5.5.5.5:1234", "visitor-a")
	}

	assert.Equal(t, http.StatusOK, post(handler, "2.2.2.2:5678", "").Code)
	assert.Equal(t, http.StatusOK, post(handler, "5.5.5.5:1234", "visitor-b").Code, "visitors behind one IP are separate")
	assert.Equal(t, http.StatusTooManyRequests, post(handler, "9.9.9.9:1", "visitor-a").Code, "a visitor keeps its bucket across IPs")
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	now := time.Now()
	rl.now = func() time.Time { return now }

	// 60 per minute = 1 per second
	handler := rl.Limit(60)(okHandler())
	for i := 0; i < 60; i++ {
		post(handler, "3.3.3.3:1234", "")
	}
	assert.Equal(t, http.StatusTooManyRequests, post(handler, "3.3.3.3:1234", "").Code)

	now = now.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, post(handler, "3.3.3.3:1234", "").Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	handler := rl.Limit(0)(okHandler())

	for i := 0; i < 100; i++ {
		assert.Equal(t, http.StatusOK, post(handler, "4.4.4.4:1", "").Code)
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	now := time.Now()
	rl.now = func() time.Time { return now }

	post(rl.Limit(1)(okHandler()), "6.6.6.6:1", "")
	now = now.Add(idleBucketTTL + time.Second)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.clients)
}

func TestRateLimiter_StopEndsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rl := NewRateLimiter(time.Millisecond)
	rl.Stop()
	rl.Stop()
}
