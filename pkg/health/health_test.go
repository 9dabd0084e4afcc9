package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() CheckFunc {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) probeStatus {
	t.Helper()
	var body probeStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveHandler_AllPassing(t *testing.T) {
	s := New()
	s.AddLiveness("probe1", time.Second, passing())
	s.AddLiveness("probe2", time.Second, passing())

	w := httptest.NewRecorder()
	s.LiveHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "pass", decodeStatus(t, w).Status)
}

func TestLiveHandler_FailingProbe(t *testing.T) {
	s := New()
	s.AddLiveness("db", time.Second, failing("connection refused"))

	// Probes start passing; drive past the failure threshold.
	ctx := context.Background()
	for range defaultFailAfter {
		s.live[0].tick(ctx)
	}

	w := httptest.NewRecorder()
	s.LiveHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "connection refused", body.Failures["db"])
}

func TestLiveHandler_FailureBelowThreshold(t *testing.T) {
	s := New()
	s.AddLiveness("flaky", time.Second, failing("temporary"))

	ctx := context.Background()
	for range defaultFailAfter - 1 {
		s.live[0].tick(ctx)
	}

	w := httptest.NewRecorder()
	s.LiveHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProbeRecovers(t *testing.T) {
	down := true
	s := New()
	s.AddLiveness("flaky", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})
	p := s.live[0]
	ctx := context.Background()

	for range defaultFailAfter {
		p.tick(ctx)
	}
	_, failed := p.failure()
	assert.True(t, failed)

	down = false
	p.tick(ctx)
	_, failed = p.failure()
	assert.False(t, failed, "probe should recover after one success")
}

func TestReadyHandler_Gate(t *testing.T) {
	s := New()
	s.AddReadiness("postgres", time.Second, passing())

	// Gate closed by default.
	w := httptest.NewRecorder()
	s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decodeStatus(t, w).Failures, "_gate")

	s.SetReady(true)
	w = httptest.NewRecorder()
	s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Draining flips it back.
	s.SetReady(false)
	w = httptest.NewRecorder()
	s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyHandler_OneProbeFailing(t *testing.T) {
	s := New()
	s.AddReadiness("postgres", time.Second, passing())
	s.AddReadiness("cache", time.Second, failing("cache down"))
	s.SetReady(true)

	ctx := context.Background()
	for range defaultFailAfter {
		s.readyP[1].tick(ctx)
	}

	w := httptest.NewRecorder()
	s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Contains(t, body.Failures, "cache")
	assert.NotContains(t, body.Failures, "postgres")
	assert.False(t, s.IsReady())
}

func TestStopIsIdempotent(t *testing.T) {
	s := New()
	s.AddLiveness("probe", time.Second, passing())

	s.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	s.AddLiveness("concurrent", time.Second, failing("err"))
	s.AddReadiness("concurrent", time.Second, passing())
	s.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.IsReady()

				w := httptest.NewRecorder()
				s.LiveHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

				w = httptest.NewRecorder()
				s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	s.Stop()
}

func TestGoroutineCount(t *testing.T) {
	assert.NoError(t, GoroutineCount(100000)(context.Background()))

	err := GoroutineCount(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestGCMaxPause(t *testing.T) {
	assert.NoError(t, GCMaxPause(time.Hour)(context.Background()))
}
