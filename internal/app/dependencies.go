package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/fulfillment/internal/health"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/postgres"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/redisstore"
)

const healthCheckTimeout = 2 * time.Second

// runtimeDeps — хранилища и проверки, выбранные по конфигурации.
type runtimeDeps struct {
	uow         domain.UnitOfWork
	deliveries  domain.DeliveryReader
	stock       domain.StockReader
	salesOrders domain.SalesOrderRepository
	customers   domain.CustomerRepository

	outboxRepo      domain.OutboxRepository
	idempotencyRepo domain.IdempotencyRepository

	// memoryStore заполнен только для драйвера memory.
	memoryStore *memory.Store

	storageChecker     healthcheck.Checker
	idempotencyChecker healthcheck.Checker

	closers []func() error
}

// closeFn закрывает подключения в обратном порядке открытия.
func (d *runtimeDeps) closeFn() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	d.closers = nil
	return errors.Join(errs...)
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDeps, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &runtimeDeps{}
	var pgStore *postgres.Store

	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case "", StorageDriverMemory:
		store := memory.NewStore()
		deps.memoryStore = store
		deps.uow = store
		deps.deliveries = store.DeliveryReader()
		deps.stock = store.StockReader()
		deps.salesOrders = store.SalesOrders()
		deps.customers = store.Customers()
		deps.outboxRepo = store.Outbox()
		deps.storageChecker = healthcheck.Static("storage")
		logger.Warn("using in-memory storage, data is lost on restart")

	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, fmt.Errorf("%s is required for storage driver %q", EnvPostgresDSN, StorageDriverPostgres)
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, store.Close)

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = deps.closeFn()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}

		pgStore = store
		deps.uow = store
		deps.deliveries = postgres.NewDeliveryReader(store)
		deps.stock = postgres.NewStockReader(store)
		deps.salesOrders = postgres.NewSalesOrderRepository(store)
		deps.customers = postgres.NewCustomerRepository(store)
		deps.outboxRepo = postgres.NewOutboxRepository(store)
		deps.storageChecker = healthcheck.NewPingChecker("storage", healthCheckTimeout, store.Ping)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if err := deps.initIdempotency(ctx, cfg, pgStore, logger); err != nil {
		_ = deps.closeFn()
		return nil, err
	}

	return deps, nil
}

func (d *runtimeDeps) initIdempotency(ctx context.Context, cfg Config, pgStore *postgres.Store, logger *log.Entry) error {
	switch driver := cfg.idempotencyDriver(); driver {
	case "", StorageDriverMemory:
		d.idempotencyRepo = memory.NewIdempotencyRepository()

	case StorageDriverPostgres:
		if pgStore == nil {
			return fmt.Errorf("idempotency driver %q requires storage driver %q", driver, StorageDriverPostgres)
		}
		d.idempotencyRepo = postgres.NewIdempotencyRepository(pgStore)

	case IdempotencyDriverRedis:
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return fmt.Errorf("%s is required for idempotency driver %q", EnvRedisAddr, IdempotencyDriverRedis)
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("ping redis %s: %w", addr, err)
		}
		d.closers = append(d.closers, client.Close)
		d.idempotencyRepo = redisstore.NewIdempotencyRepository(client, redisstore.DefaultKeyPrefix)
		d.idempotencyChecker = healthcheck.NewPingChecker("idempotency", healthCheckTimeout, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.WithField("redis_addr", addr).Info("redis idempotency store initialized")

	default:
		return fmt.Errorf("unsupported idempotency driver %q", driver)
	}
	return nil
}
