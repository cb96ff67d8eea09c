package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	healthcheck "github.com/vladislavdragonenkov/fulfillment/internal/health"
	"github.com/vladislavdragonenkov/fulfillment/internal/version"
)

// startTestMetricsServer поднимает сервер на свободном порту и ждёт, пока /livez начнёт отвечать.
func startTestMetricsServer(t *testing.T, ctx context.Context, handler *healthcheck.Handler) string {
	t.Helper()

	port := findFreePort(t)
	srv := startMetricsServer(ctx, fmt.Sprintf(":%d", port), log.WithField("test", t.Name()), handler)
	require.NotNil(t, srv)

	base := fmt.Sprintf("http://localhost:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/livez")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	return base
}

func httpGet(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := startTestMetricsServer(t, ctx, healthcheck.NewHandler(version.Version()))

	code, body := httpGet(t, base+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body)

	code, body = httpGet(t, base+"/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"status":"healthy"`)

	code, body = httpGet(t, base+"/livez")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)

	code, body = httpGet(t, base+"/readyz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body)
}

func TestStartMetricsServer_UnhealthyDependency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := healthcheck.NewHandler(version.Version())
	handler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	}))
	base := startTestMetricsServer(t, ctx, handler)

	code, body := httpGet(t, base+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "not ready", body)

	code, body = httpGet(t, base+"/healthz")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Contains(t, body, "connection refused")

	code, _ = httpGet(t, base+"/livez")
	require.Equal(t, http.StatusOK, code, "liveness does not depend on checks")
}

func TestStartMetricsServer_DegradedIsReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := healthcheck.NewHandler(version.Version())
	handler.RegisterChecker("outbox", healthcheck.NewBacklogChecker("outbox", 1,
		func(context.Context) (int, time.Time, error) { return 5, time.Now(), nil }))
	base := startTestMetricsServer(t, ctx, handler)

	code, _ := httpGet(t, base+"/readyz")
	require.Equal(t, http.StatusOK, code)

	code, body := httpGet(t, base+"/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"status":"degraded"`)
}

func TestStartMetricsServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	base := startTestMetricsServer(t, ctx, healthcheck.NewHandler(version.Version()))

	cancel()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/livez")
		if err != nil {
			return true
		}
		resp.Body.Close()
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStartMetricsServer_AddrInUse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close()

	addr := fmt.Sprintf(":%d", listener.Addr().(*net.TCPAddr).Port)
	srv := startMetricsServer(ctx, addr, log.WithField("test", t.Name()), healthcheck.NewHandler(version.Version()))
	require.NotNil(t, srv, "listen errors are logged, the server value is still returned")
}

func TestShutdownHTTP(t *testing.T) {
	t.Run("nil server", func(_ *testing.T) {
		shutdownHTTP(nil, log.WithField("test", "http-nil"))
	})

	t.Run("running server", func(t *testing.T) {
		port := findFreePort(t)
		mux := http.NewServeMux()
		mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		})
		srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: time.Second}
		go func() { _ = srv.ListenAndServe() }()

		url := fmt.Sprintf("http://localhost:%d/ping", port)
		require.Eventually(t, func() bool {
			resp, err := http.Get(url)
			if err != nil {
				return false
			}
			resp.Body.Close()
			return true
		}, 2*time.Second, 20*time.Millisecond)

		shutdownHTTP(srv, log.WithField("test", "http-shutdown"))

		_, err := http.Get(url)
		require.Error(t, err)
	})
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}
