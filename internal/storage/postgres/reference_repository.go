package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

type salesOrderRepository struct {
	db *sql.DB
}

// NewSalesOrderRepository создаёт PostgreSQL-реализацию SalesOrderRepository.
func NewSalesOrderRepository(store *Store) domain.SalesOrderRepository {
	return &salesOrderRepository{db: store.DB()}
}

func (r *salesOrderRepository) Get(ctx context.Context, id string) (domain.SalesOrder, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var order domain.SalesOrder
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_id
		FROM sales_orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.OrderNumber, &order.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SalesOrder{}, domain.ErrSalesOrderNotFound
		}
		return domain.SalesOrder{}, fmt.Errorf("select sales order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM sales_order_lines
		WHERE sales_order_id = $1
		ORDER BY line_no ASC
	`, id)
	if err != nil {
		return domain.SalesOrder{}, fmt.Errorf("load sales order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.SalesOrderLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return domain.SalesOrder{}, fmt.Errorf("scan sales order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.SalesOrder{}, fmt.Errorf("iterate sales order lines: %w", err)
	}

	return order, nil
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

// UpsertCustomer сохраняет покупателя (наполнение справочника).
func (s *Store) UpsertCustomer(ctx context.Context, customer domain.Customer) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email
	`, customer.ID, customer.Name, customer.Email); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

// UpsertSalesOrder сохраняет заказ покупателя вместе со строками.
func (s *Store) UpsertSalesOrder(ctx context.Context, order domain.SalesOrder) (err error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO sales_orders (id, order_number, customer_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE
		SET order_number = EXCLUDED.order_number,
		    customer_id = EXCLUDED.customer_id
	`, order.ID, order.OrderNumber, order.CustomerID); err != nil {
		return fmt.Errorf("upsert sales order: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM sales_order_lines WHERE sales_order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("reset sales order lines: %w", err)
	}
	for i, line := range order.Lines {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO sales_order_lines (sales_order_id, line_no, product_id, quantity)
			VALUES ($1,$2,$3,$4)
		`, order.ID, i+1, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("insert sales order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sales order: %w", err)
	}
	return nil
}

// UpsertStockLot сохраняет партию по её составному ключу и возвращает итоговую запись.
func (s *Store) UpsertStockLot(ctx context.Context, lot domain.StockLot) (domain.StockLot, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	key := lot.Key()
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}

	saved, err := scanStockLot(s.db.QueryRowContext(ctx, `
		INSERT INTO stock_lots (id, product_id, warehouse_id, production_date, stock_count, operator, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (product_id, warehouse_id, production_date) DO UPDATE
		SET stock_count = EXCLUDED.stock_count,
		    operator = EXCLUDED.operator,
		    updated_at = EXCLUDED.updated_at
		RETURNING `+stockLotColumns,
		lot.ID, key.ProductID, key.WarehouseID, key.ProductionDate, lot.Count, lot.Operator,
	))
	if err != nil {
		return domain.StockLot{}, fmt.Errorf("upsert stock lot: %w", err)
	}
	return saved, nil
}

var (
	_ domain.SalesOrderRepository = (*salesOrderRepository)(nil)
	_ domain.CustomerRepository   = (*customerRepository)(nil)
)
