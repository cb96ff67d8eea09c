package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// deliveryWriter пишет заголовок и строки отгрузки в рамках транзакции.
type deliveryWriter struct {
	q querier
}

func (w *deliveryWriter) CreateHeader(ctx context.Context, salesOrderID, operator string) (domain.DeliveryOrder, error) {
	order := domain.DeliveryOrder{
		ID:           uuid.NewString(),
		SalesOrderID: salesOrderID,
		Operator:     operator,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := w.q.ExecContext(ctx, `
		INSERT INTO delivery_orders (id, sales_order_id, operator, created_at)
		VALUES ($1,$2,$3,$4)
	`, order.ID, order.SalesOrderID, order.Operator, order.CreatedAt); err != nil {
		return domain.DeliveryOrder{}, fmt.Errorf("insert delivery order: %w", err)
	}

	return order, nil
}

// deliveryLinesPerInsert держит число параметров INSERT ниже лимита Postgres (65535).
const deliveryLinesPerInsert = 500

// CreateLines сохраняет строки multi-row INSERT пачками по deliveryLinesPerInsert.
func (w *deliveryWriter) CreateLines(ctx context.Context, lines []domain.DeliveryLine) ([]domain.DeliveryLine, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	saved := make([]domain.DeliveryLine, 0, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			line.ID = uuid.NewString()
		}
		line.ProductionDate = domain.NormalizeDate(line.ProductionDate)
		saved = append(saved, line)
	}

	for start := 0; start < len(saved); start += deliveryLinesPerInsert {
		end := min(start+deliveryLinesPerInsert, len(saved))
		if err := w.insertLines(ctx, saved[start:end], start); err != nil {
			return nil, err
		}
	}

	return saved, nil
}

// insertLines вставляет одну пачку; offset продолжает нумерацию line_no.
func (w *deliveryWriter) insertLines(ctx context.Context, lines []domain.DeliveryLine, offset int) error {
	const columns = 7
	args := make([]any, 0, len(lines)*columns)
	placeholders := make([]string, 0, len(lines))

	for i, line := range lines {
		base := i * columns
		placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args,
			line.ID, line.DeliveryOrderID, offset+i+1, line.ProductID, line.WarehouseID, line.ProductionDate, line.Quantity)
	}

	if _, err := w.q.ExecContext(ctx, `
		INSERT INTO delivery_lines (
			id, delivery_order_id, line_no, product_id, warehouse_id, production_date, quantity
		) VALUES `+strings.Join(placeholders, ","), args...); err != nil {
		return fmt.Errorf("insert delivery lines: %w", err)
	}
	return nil
}

type deliveryReader struct {
	db *sql.DB
}

// NewDeliveryReader создаёт PostgreSQL-реализацию DeliveryReader.
func NewDeliveryReader(store *Store) domain.DeliveryReader {
	return &deliveryReader{db: store.DB()}
}

func (r *deliveryReader) Get(ctx context.Context, id string) (domain.Delivery, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var order domain.DeliveryOrder
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sales_order_id, operator, created_at
		FROM delivery_orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.SalesOrderID, &order.Operator, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Delivery{}, domain.ErrDeliveryNotFound
		}
		return domain.Delivery{}, fmt.Errorf("select delivery order: %w", err)
	}
	order.CreatedAt = order.CreatedAt.UTC()

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Delivery{}, err
	}

	return domain.Delivery{Order: order, Lines: lines}, nil
}

func (r *deliveryReader) ListBySalesOrder(ctx context.Context, salesOrderID string) ([]domain.Delivery, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sales_order_id, operator, created_at
		FROM delivery_orders
		WHERE sales_order_id = $1
		ORDER BY created_at ASC, id ASC
	`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list delivery orders: %w", err)
	}

	orders := make([]domain.DeliveryOrder, 0)
	for rows.Next() {
		var order domain.DeliveryOrder
		if err := rows.Scan(&order.ID, &order.SalesOrderID, &order.Operator, &order.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan delivery order: %w", err)
		}
		order.CreatedAt = order.CreatedAt.UTC()
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate delivery orders: %w", err)
	}
	_ = rows.Close()

	result := make([]domain.Delivery, 0, len(orders))
	for _, order := range orders {
		lines, err := r.loadLines(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.Delivery{Order: order, Lines: lines})
	}

	return result, nil
}

func (r *deliveryReader) loadLines(ctx context.Context, deliveryOrderID string) ([]domain.DeliveryLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, delivery_order_id, product_id, warehouse_id, production_date, quantity
		FROM delivery_lines
		WHERE delivery_order_id = $1
		ORDER BY line_no ASC
	`, deliveryOrderID)
	if err != nil {
		return nil, fmt.Errorf("load delivery lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.DeliveryLine, 0)
	for rows.Next() {
		var line domain.DeliveryLine
		if err := rows.Scan(
			&line.ID,
			&line.DeliveryOrderID,
			&line.ProductID,
			&line.WarehouseID,
			&line.ProductionDate,
			&line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan delivery line: %w", err)
		}
		line.ProductionDate = domain.NormalizeDate(line.ProductionDate)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery lines: %w", err)
	}

	return lines, nil
}

var (
	_ domain.DeliveryRecordWriter = (*deliveryWriter)(nil)
	_ domain.DeliveryReader       = (*deliveryReader)(nil)
)
