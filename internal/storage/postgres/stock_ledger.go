package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const stockLotColumns = `id, product_id, warehouse_id, production_date, stock_count, operator, updated_at`

// stockLedger работает с партиями внутри транзакции отгрузки.
type stockLedger struct {
	q querier
}

// FindLot блокирует найденную партию до конца транзакции.
func (l *stockLedger) FindLot(ctx context.Context, key domain.LotKey) (domain.StockLot, error) {
	key = domain.NewLotKey(key.ProductID, key.WarehouseID, key.ProductionDate)

	lot, err := scanStockLot(l.q.QueryRowContext(ctx, `
		SELECT `+stockLotColumns+`
		FROM stock_lots
		WHERE product_id = $1
		  AND warehouse_id = $2
		  AND production_date = $3
		FOR UPDATE
	`, key.ProductID, key.WarehouseID, key.ProductionDate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockLot{}, domain.ErrStockNotFound
		}
		return domain.StockLot{}, fmt.Errorf("select stock lot: %w", err)
	}
	return lot, nil
}

// ApplyDecrement списывает qty одним условным UPDATE: остаток не может уйти в минус
// даже при гонке с другой транзакцией.
func (l *stockLedger) ApplyDecrement(ctx context.Context, lot domain.StockLot, qty int64, operator string) (domain.StockLot, error) {
	if qty <= 0 {
		return domain.StockLot{}, domain.ErrDeliveryQtyInvalid
	}

	updated, err := scanStockLot(l.q.QueryRowContext(ctx, `
		UPDATE stock_lots
		SET stock_count = stock_count - $1,
		    operator = $2,
		    updated_at = $3
		WHERE id = $4
		  AND stock_count >= $1
		RETURNING `+stockLotColumns,
		qty, operator, time.Now().UTC(), lot.ID,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.StockLot{}, fmt.Errorf("decrement stock lot: %w", err)
	}

	var available int64
	err = l.q.QueryRowContext(ctx, `SELECT stock_count FROM stock_lots WHERE id = $1`, lot.ID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLot{}, domain.NewStockNotFoundError(lot.Key())
	}
	if err != nil {
		return domain.StockLot{}, fmt.Errorf("reload stock lot: %w", err)
	}
	return domain.StockLot{}, domain.NewInsufficientStockError(lot.Key(), qty, available)
}

// stockReader читает остатки вне транзакции, без блокировок.
type stockReader struct {
	db *sql.DB
}

// NewStockReader создаёт PostgreSQL-реализацию StockReader.
func NewStockReader(store *Store) domain.StockReader {
	return &stockReader{db: store.DB()}
}

func (r *stockReader) FindLot(ctx context.Context, key domain.LotKey) (domain.StockLot, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	key = domain.NewLotKey(key.ProductID, key.WarehouseID, key.ProductionDate)
	lot, err := scanStockLot(r.db.QueryRowContext(ctx, `
		SELECT `+stockLotColumns+`
		FROM stock_lots
		WHERE product_id = $1
		  AND warehouse_id = $2
		  AND production_date = $3
	`, key.ProductID, key.WarehouseID, key.ProductionDate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockLot{}, domain.ErrStockNotFound
		}
		return domain.StockLot{}, fmt.Errorf("select stock lot: %w", err)
	}
	return lot, nil
}

func scanStockLot(row *sql.Row) (domain.StockLot, error) {
	var lot domain.StockLot
	if err := row.Scan(
		&lot.ID,
		&lot.ProductID,
		&lot.WarehouseID,
		&lot.ProductionDate,
		&lot.Count,
		&lot.Operator,
		&lot.UpdatedAt,
	); err != nil {
		return domain.StockLot{}, err
	}
	lot.ProductionDate = domain.NormalizeDate(lot.ProductionDate)
	lot.UpdatedAt = lot.UpdatedAt.UTC()
	return lot, nil
}

var (
	_ domain.StockLedger = (*stockLedger)(nil)
	_ domain.StockReader = (*stockReader)(nil)
)
