package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
)

func newTestCleanup(repo domain.IdempotencyRepository, opts ...CleanupOption) *CleanupWorker {
	opts = append([]CleanupOption{
		WithMetrics(metrics.NewIdempotencyMetricsWithRegisterer(prometheus.NewRegistry())),
	}, opts...)
	return NewCleanupWorker(repo, opts...)
}

func TestCleanupWorker_DeleteExpired(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name        string
		results     []int
		errs        []error
		batchSize   int
		maxBatches  int
		want        Sweep
		wantErr     error
		wantRepoHit int
	}{
		{
			name:        "stops on short batch",
			results:     []int{2, 2, 1},
			batchSize:   2,
			want:        Sweep{Deleted: 5, Batches: 3},
			wantRepoHit: 3,
		},
		{
			name:        "nothing expired",
			results:     []int{0},
			batchSize:   10,
			want:        Sweep{Batches: 1},
			wantRepoHit: 1,
		},
		{
			name:        "truncated by batch limit",
			results:     []int{3, 3, 3, 3},
			batchSize:   3,
			maxBatches:  2,
			want:        Sweep{Deleted: 6, Batches: 2, Truncated: true},
			wantRepoHit: 2,
		},
		{
			name:        "repository error keeps partial count",
			results:     []int{4},
			errs:        []error{nil, boom},
			batchSize:   4,
			want:        Sweep{Deleted: 4, Batches: 2},
			wantErr:     boom,
			wantRepoHit: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubCleanupRepo{results: tt.results, errs: tt.errs}
			opts := []CleanupOption{WithBatchSize(tt.batchSize)}
			if tt.maxBatches > 0 {
				opts = append(opts, WithMaxBatchesPerRun(tt.maxBatches))
			}

			sweep, err := newTestCleanup(repo, opts...).DeleteExpired(context.Background(), time.Now())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, sweep)
			require.Equal(t, tt.wantRepoHit, repo.calls())
		})
	}
}

func TestCleanupWorker_DeleteExpired_CanceledContext(t *testing.T) {
	t.Parallel()

	repo := &stubCleanupRepo{results: []int{10}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCleanup(repo).DeleteExpired(ctx, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, repo.calls())
}

func TestCleanupWorker_DeleteExpired_ZeroBeforeUsesClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubCleanupRepo{}
	worker := newTestCleanup(repo)
	worker.now = func() time.Time { return now }

	_, err := worker.DeleteExpired(context.Background(), time.Time{})
	require.NoError(t, err)
	require.True(t, repo.lastBefore().Equal(now))
}

func TestCleanupWorker_MemoryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewIdempotencyRepository()
	now := time.Now().UTC()

	keys := map[string]time.Time{
		"fulfill-old":    now.Add(-time.Hour),
		"fulfill-recent": now.Add(-time.Minute),
		"fulfill-live":   now.Add(time.Hour),
	}
	for key, ttl := range keys {
		_, err := repo.CreateProcessing(ctx, key, "hash", ttl)
		require.NoError(t, err)
	}

	sweep, err := newTestCleanup(repo, WithBatchSize(1)).DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, sweep.Deleted)

	_, err = repo.Get(ctx, "fulfill-live")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "fulfill-old")
	require.ErrorIs(t, err, domain.ErrIdempotencyKeyNotFound)
}

func TestCleanupWorker_Run(t *testing.T) {
	t.Parallel()

	t.Run("disabled without repository", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			newTestCleanup(nil).Run(context.Background())
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker without repository must return immediately")
		}
	})

	t.Run("sweeps until canceled", func(t *testing.T) {
		repo := &stubCleanupRepo{errs: []error{errors.New("transient")}}
		worker := newTestCleanup(repo, WithInterval(5*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			worker.Run(ctx)
		}()

		require.Eventually(t, func() bool { return repo.calls() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop on context cancel")
		}
	})
}

// stubCleanupRepo отдаёт заранее заданные результаты DeleteExpired.
type stubCleanupRepo struct {
	mu      sync.Mutex
	results []int
	errs    []error
	hits    int
	before  time.Time
}

var _ domain.IdempotencyRepository = (*stubCleanupRepo)(nil)

func (s *stubCleanupRepo) CreateProcessing(context.Context, string, string, time.Time) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, errors.New("not used")
}

func (s *stubCleanupRepo) Get(context.Context, string) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, errors.New("not used")
}

func (s *stubCleanupRepo) MarkDone(context.Context, string, []byte, int) error {
	return errors.New("not used")
}

func (s *stubCleanupRepo) MarkFailed(context.Context, string, []byte, int) error {
	return errors.New("not used")
}

func (s *stubCleanupRepo) DeleteExpired(_ context.Context, before time.Time, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits++
	s.before = before
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	if len(s.results) == 0 {
		return 0, nil
	}
	n := s.results[0]
	s.results = s.results[1:]
	return n, nil
}

func (s *stubCleanupRepo) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func (s *stubCleanupRepo) lastBefore() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.before
}
