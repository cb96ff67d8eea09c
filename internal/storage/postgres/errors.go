package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const opTimeout = 5 * time.Second

// Коды SQLSTATE, которые классифицирует хранилище.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// querier — общий набор методов *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// isRetryableTxError сообщает, что транзакцию прервал сам PostgreSQL и её можно повторить целиком.
func isRetryableTxError(err error) bool {
	switch pgErrorCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	default:
		return false
	}
}

// classifyTxError помечает конфликт транзакции как domain.ErrTxConflict.
func classifyTxError(err error) error {
	if err == nil || domain.IsTxConflict(err) {
		return err
	}
	if isRetryableTxError(err) {
		return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
	}
	return err
}

// withOpTimeout ограничивает одиночный запрос, не расширяя дедлайн вызывающего.
func withOpTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}
