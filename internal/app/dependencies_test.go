package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/fulfillment/internal/health"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	defer func() { _ = deps.closeFn() }()

	if deps.uow == nil || deps.deliveries == nil || deps.stock == nil {
		t.Fatal("fulfillment repositories should not be nil for memory storage")
	}
	if deps.salesOrders == nil || deps.customers == nil {
		t.Fatal("sales order and customer repositories should not be nil for memory storage")
	}
	if deps.outboxRepo == nil {
		t.Fatal("outboxRepo should not be nil for memory storage")
	}
	if deps.idempotencyRepo == nil {
		t.Fatal("idempotencyRepo should not be nil for memory storage")
	}
	if deps.memoryStore == nil {
		t.Fatal("memoryStore should be exposed for memory storage")
	}
	if deps.idempotencyChecker != nil {
		t.Fatal("memory idempotency store has no separate checker")
	}
	if check := deps.storageChecker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
}

func TestInitRuntimeDependencies_NilLogger(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("empty storage driver should default to memory: %v", err)
	}
	if deps.memoryStore == nil {
		t.Fatal("expected memory storage for empty driver")
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil || !strings.Contains(err.Error(), EnvPostgresDSN) {
		t.Fatalf("expected missing DSN error, got %v", err)
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}

func TestInitRuntimeDependencies_IdempotencyDriverErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "postgres idempotency over memory storage",
			cfg:     Config{StorageDriver: StorageDriverMemory, IdempotencyDriver: StorageDriverPostgres},
			wantErr: "requires storage driver",
		},
		{
			name:    "redis without address",
			cfg:     Config{StorageDriver: StorageDriverMemory, IdempotencyDriver: IdempotencyDriverRedis},
			wantErr: EnvRedisAddr,
		},
		{
			name:    "unknown idempotency driver",
			cfg:     Config{StorageDriver: StorageDriverMemory, IdempotencyDriver: "etcd"},
			wantErr: "unsupported idempotency driver",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := initRuntimeDependencies(context.Background(), tt.cfg, log.WithField("test", "idempotency-driver"))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRuntimeDeps_CloseFnReverseOrder(t *testing.T) {
	var order []string
	errFirst := errors.New("first failed")

	deps := &runtimeDeps{}
	deps.closers = append(deps.closers,
		func() error { order = append(order, "first"); return errFirst },
		func() error { order = append(order, "second"); return nil },
	)

	err := deps.closeFn()
	if !errors.Is(err, errFirst) {
		t.Fatalf("expected joined close error, got %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected reverse close order, got %v", order)
	}

	if err := deps.closeFn(); err != nil {
		t.Fatalf("second closeFn must be a no-op, got %v", err)
	}
}
