// Package health собирает проверки зависимостей сервиса отгрузок и отдаёт их по HTTP.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultCheckTimeout = 2 * time.Second

// Status — состояние компонента или сервиса в целом.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity упорядочивает статусы: итог отчёта равен худшему из проверок.
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Report — ответ /healthz и /readyz.
type Report struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Checks        map[string]Check `json:"checks,omitempty"`
}

// Checker проверяет одну зависимость. Реализация должна уважать дедлайн ctx.
type Checker interface {
	Check(ctx context.Context) Check
}

// Handler хранит зарегистрированные проверки и выполняет их параллельно.
type Handler struct {
	version string
	started time.Time
	timeout time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	checkers map[string]Checker
}

func NewHandler(version string) *Handler {
	return &Handler{
		version:  version,
		started:  time.Now(),
		timeout:  defaultCheckTimeout,
		now:      time.Now,
		checkers: make(map[string]Checker),
	}
}

// RegisterChecker добавляет или заменяет проверку с именем name.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Evaluate выполняет все проверки с общим таймаутом и сводит их в отчёт.
func (h *Handler) Evaluate(ctx context.Context) Report {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make([]Checker, len(names))
	sort.Strings(names)
	for i, name := range names {
		checkers[i] = h.checkers[name]
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]Check, len(checkers))
	var g errgroup.Group
	for i := range checkers {
		g.Go(func() error {
			results[i] = checkers[i].Check(ctx)
			if results[i].Name == "" {
				results[i].Name = names[i]
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Status:        StatusHealthy,
		Timestamp:     h.now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(h.now().Sub(h.started).Seconds()),
	}
	if len(results) > 0 {
		report.Checks = make(map[string]Check, len(results))
	}
	for i, check := range results {
		report.Checks[names[i]] = check
		if check.Status.severity() > report.Status.severity() {
			report.Status = check.Status
		}
	}
	return report
}

// ServeHTTP отдаёт полный отчёт; 503 только при unhealthy, degraded остаётся 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.Evaluate(r.Context())
	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// ReadinessHandler отвечает "ready"/"not ready" для балансировщиков, которым не нужен JSON.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.Evaluate(r.Context()).Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler отвечает 200, пока процесс обслуживает HTTP.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Static всегда сообщает healthy; используется для зависимостей внутри процесса.
func Static(name string) Checker {
	return PingFunc(name, 0, func(context.Context) error { return nil })
}

// PingChecker вызывает ping с собственным таймаутом.
type PingChecker struct {
	name    string
	timeout time.Duration
	ping    func(ctx context.Context) error
}

// PingFunc оборачивает ping в Checker; timeout <= 0 означает только дедлайн вызывающего.
func PingFunc(name string, timeout time.Duration, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, timeout: timeout, ping: ping}
}

// NewPingChecker подставляет таймаут по умолчанию, если timeout не задан.
func NewPingChecker(name string, timeout time.Duration, ping func(ctx context.Context) error) *PingChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return PingFunc(name, timeout, ping)
}

func (c *PingChecker) Check(ctx context.Context) Check {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.ping(ctx)
	check := Check{Name: c.name, Status: StatusHealthy, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// BacklogChecker переводит сервис в degraded, когда outbox копит неотправленные события.
type BacklogChecker struct {
	name      string
	threshold int
	stats     func(ctx context.Context) (pending int, oldest time.Time, err error)
}

// NewBacklogChecker: при числе pending-событий больше threshold статус degraded.
func NewBacklogChecker(name string, threshold int, stats func(ctx context.Context) (pending int, oldest time.Time, err error)) *BacklogChecker {
	return &BacklogChecker{name: name, threshold: threshold, stats: stats}
}

// Check возвращает unhealthy, если статистику прочитать не удалось.
func (c *BacklogChecker) Check(ctx context.Context) Check {
	start := time.Now()
	pending, oldest, err := c.stats(ctx)
	check := Check{Name: c.name, Status: StatusHealthy, DurationMs: time.Since(start).Milliseconds()}
	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case c.threshold > 0 && pending > c.threshold:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%d pending events, oldest since %s", pending, oldest.UTC().Format(time.RFC3339))
	}
	return check
}
