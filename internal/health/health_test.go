package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type checkerFunc func(ctx context.Context) Check

func (f checkerFunc) Check(ctx context.Context) Check { return f(ctx) }

func fixed(status Status) Checker {
	return checkerFunc(func(context.Context) Check { return Check{Status: status} })
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) Report {
	t.Helper()
	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	return report
}

func TestHandler_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
		wantCode int
	}{
		{name: "no checks", want: StatusHealthy, wantCode: http.StatusOK},
		{name: "all healthy", statuses: []Status{StatusHealthy, StatusHealthy}, want: StatusHealthy, wantCode: http.StatusOK},
		{name: "degraded stays ready", statuses: []Status{StatusHealthy, StatusDegraded}, want: StatusDegraded, wantCode: http.StatusOK},
		{name: "unhealthy", statuses: []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, want: StatusUnhealthy, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler("1.2.3")
			for i, status := range tt.statuses {
				h.RegisterChecker(string(rune('a'+i)), fixed(status))
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			report := decodeReport(t, rec)
			require.Equal(t, tt.want, report.Status)
			require.Equal(t, "1.2.3", report.Version)
			require.Len(t, report.Checks, len(tt.statuses))
		})
	}
}

func TestHandler_FillsMissingCheckName(t *testing.T) {
	h := NewHandler("dev")
	h.RegisterChecker("storage", fixed(StatusHealthy))

	report := h.Evaluate(context.Background())
	require.Equal(t, "storage", report.Checks["storage"].Name)
}

func TestHandler_RunsChecksConcurrently(t *testing.T) {
	h := NewHandler("dev")
	var running, peak atomic.Int32
	release := make(chan struct{})
	slow := checkerFunc(func(ctx context.Context) Check {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return Check{Status: StatusHealthy}
	})
	h.RegisterChecker("one", slow)
	h.RegisterChecker("two", slow)

	done := make(chan Report)
	go func() { done <- h.Evaluate(context.Background()) }()

	require.Eventually(t, func() bool { return peak.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	report := <-done
	require.Equal(t, StatusHealthy, report.Status)
}

func TestHandler_CheckTimeout(t *testing.T) {
	h := NewHandler("dev")
	h.timeout = 20 * time.Millisecond
	h.RegisterChecker("stuck", PingFunc("stuck", 0, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	report := h.Evaluate(context.Background())
	require.Equal(t, StatusUnhealthy, report.Status)
	require.Contains(t, report.Checks["stuck"].Message, context.DeadlineExceeded.Error())
}

func TestReadinessHandler(t *testing.T) {
	h := NewHandler("dev")
	h.RegisterChecker("outbox", fixed(StatusDegraded))

	rec := httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", rec.Body.String())

	h.RegisterChecker("storage", fixed(StatusUnhealthy))
	rec = httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "not ready", rec.Body.String())
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("redis", 0, func(context.Context) error { return nil }).Check(context.Background())
	require.Equal(t, StatusHealthy, ok.Status)
	require.Equal(t, "redis", ok.Name)
	require.Empty(t, ok.Message)

	failed := NewPingChecker("redis", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	}).Check(context.Background())
	require.Equal(t, StatusUnhealthy, failed.Status)
	require.Equal(t, "connection refused", failed.Message)

	var deadline bool
	NewPingChecker("postgres", time.Second, func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}).Check(context.Background())
	require.True(t, deadline, "ping must run under its own timeout")
}

func TestStatic(t *testing.T) {
	check := Static("storage").Check(context.Background())
	require.Equal(t, StatusHealthy, check.Status)
	require.Equal(t, "storage", check.Name)
}

func TestBacklogChecker(t *testing.T) {
	oldest := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := func(pending int, err error) func(context.Context) (int, time.Time, error) {
		return func(context.Context) (int, time.Time, error) { return pending, oldest, err }
	}

	tests := []struct {
		name      string
		threshold int
		pending   int
		err       error
		want      Status
	}{
		{name: "under threshold", threshold: 10, pending: 10, want: StatusHealthy},
		{name: "over threshold", threshold: 10, pending: 11, want: StatusDegraded},
		{name: "threshold disabled", threshold: 0, pending: 1000, want: StatusHealthy},
		{name: "stats error", threshold: 10, err: errors.New("db down"), want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewBacklogChecker("outbox", tt.threshold, stats(tt.pending, tt.err)).Check(context.Background())
			require.Equal(t, tt.want, check.Status)
			if tt.want == StatusDegraded {
				require.Contains(t, check.Message, "2024-03-01T12:00:00Z")
			}
		})
	}
}
