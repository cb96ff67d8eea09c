package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// WithinTx выполняет fn в одной транзакции READ COMMITTED.
// Партии блокируются построчно (SELECT ... FOR UPDATE) по мере обращения к ним.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.TxRepositories) error) (err error) {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classifyTxError(fmt.Errorf("begin delivery tx: %w", err))
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, txRepositories{q: tx}); err != nil {
		return classifyTxError(err)
	}

	if err = tx.Commit(); err != nil {
		return classifyTxError(fmt.Errorf("commit delivery tx: %w", err))
	}
	return nil
}

type txRepositories struct {
	q querier
}

func (r txRepositories) Deliveries() domain.DeliveryRecordWriter {
	return &deliveryWriter{q: r.q}
}

func (r txRepositories) Stock() domain.StockLedger {
	return &stockLedger{q: r.q}
}

func (r txRepositories) Outbox() domain.OutboxWriter {
	return newOutboxRepository(r.q)
}

var (
	_ domain.UnitOfWork     = (*Store)(nil)
	_ domain.TxRepositories = txRepositories{}
)
