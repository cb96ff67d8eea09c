package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

func TestUnitOfWork_PostgresCommitsDelivery(t *testing.T) {
	ctx := context.Background()
	store := openPostgresStoreForIntegrationTest(t)
	seedLotForIntegrationTest(t, store, "P1", "W1", 10)

	var header domain.DeliveryOrder
	err := store.WithinTx(ctx, func(ctx context.Context, repos domain.TxRepositories) error {
		var err error
		header, err = repos.Deliveries().CreateHeader(ctx, "SO-1", "alice")
		if err != nil {
			return err
		}
		lines, err := repos.Deliveries().CreateLines(ctx, []domain.DeliveryLine{
			{DeliveryOrderID: header.ID, ProductID: "P1", WarehouseID: "W1", ProductionDate: integrationLotDate, Quantity: 4},
			{DeliveryOrderID: header.ID, ProductID: "P1", WarehouseID: "W1", ProductionDate: integrationLotDate, Quantity: 1},
		})
		if err != nil {
			return err
		}
		for _, line := range lines {
			lot, err := repos.Stock().FindLot(ctx, line.LotKey())
			if err != nil {
				return err
			}
			if _, err := repos.Stock().ApplyDecrement(ctx, lot, line.Quantity, "alice"); err != nil {
				return err
			}
		}
		_, err = repos.Outbox().Enqueue(ctx, domain.OutboxMessage{
			AggregateType: domain.AggregateTypeDelivery,
			AggregateID:   header.ID,
			EventType:     domain.EventTypeDeliveryShipped,
			Payload:       []byte(`{}`),
		})
		return err
	})
	require.NoError(t, err)

	lot, err := NewStockReader(store).FindLot(ctx, domain.NewLotKey("P1", "W1", integrationLotDate))
	require.NoError(t, err)
	require.EqualValues(t, 5, lot.Count)
	require.Equal(t, "alice", lot.Operator)

	delivery, err := NewDeliveryReader(store).Get(ctx, header.ID)
	require.NoError(t, err)
	require.Equal(t, "SO-1", delivery.Order.SalesOrderID)
	require.Len(t, delivery.Lines, 2)
	require.EqualValues(t, 4, delivery.Lines[0].Quantity)
	require.True(t, delivery.Lines[0].ProductionDate.Equal(integrationLotDate))

	list, err := NewDeliveryReader(store).ListBySalesOrder(ctx, "SO-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	stats, err := NewOutboxRepository(store).Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.PendingCount)
}

func TestUnitOfWork_PostgresRollsBackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	store := openPostgresStoreForIntegrationTest(t)
	seedLotForIntegrationTest(t, store, "P1", "W1", 10)
	seedLotForIntegrationTest(t, store, "P2", "W1", 1)

	err := store.WithinTx(ctx, func(ctx context.Context, repos domain.TxRepositories) error {
		header, err := repos.Deliveries().CreateHeader(ctx, "SO-1", "alice")
		if err != nil {
			return err
		}
		if _, err := repos.Deliveries().CreateLines(ctx, []domain.DeliveryLine{
			{DeliveryOrderID: header.ID, ProductID: "P1", WarehouseID: "W1", ProductionDate: integrationLotDate, Quantity: 4},
		}); err != nil {
			return err
		}
		for _, item := range []struct {
			product string
			qty     int64
		}{{"P1", 4}, {"P2", 3}} {
			lot, err := repos.Stock().FindLot(ctx, domain.NewLotKey(item.product, "W1", integrationLotDate))
			if err != nil {
				return err
			}
			if _, err := repos.Stock().ApplyDecrement(ctx, lot, item.qty, "alice"); err != nil {
				return err
			}
		}
		return nil
	})

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr), "expected StockError, got %v", err)
	require.True(t, domain.IsIllegalState(err))
	require.EqualValues(t, 2, stockErr.Shortfall())

	lot, err := NewStockReader(store).FindLot(ctx, domain.NewLotKey("P1", "W1", integrationLotDate))
	require.NoError(t, err)
	require.EqualValues(t, 10, lot.Count, "first line decrement must be rolled back")

	list, err := NewDeliveryReader(store).ListBySalesOrder(ctx, "SO-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUnitOfWork_PostgresConcurrentDecrementsNeverGoNegative(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedLotForIntegrationTest(t, store, "P1", "W1", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(context.Background(), func(ctx context.Context, repos domain.TxRepositories) error {
				lot, err := repos.Stock().FindLot(ctx, domain.NewLotKey("P1", "W1", integrationLotDate))
				if err != nil {
					return err
				}
				_, err = repos.Stock().ApplyDecrement(ctx, lot, 1, "worker")
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 5, succeeded)
	lot, err := NewStockReader(store).FindLot(context.Background(), domain.NewLotKey("P1", "W1", integrationLotDate))
	require.NoError(t, err)
	require.EqualValues(t, 0, lot.Count)
}

func TestReferenceRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	store := openPostgresStoreForIntegrationTest(t)

	require.NoError(t, store.UpsertCustomer(ctx, domain.Customer{ID: "C1", Name: "Ann", Email: "ann@example.com"}))
	require.NoError(t, store.UpsertSalesOrder(ctx, domain.SalesOrder{
		ID:          "SO-1",
		OrderNumber: "ORD-1",
		CustomerID:  "C1",
		Lines:       []domain.SalesOrderLine{{ProductID: "P1", Quantity: 5}, {ProductID: "P2", Quantity: 1}},
	}))

	order, err := NewSalesOrderRepository(store).Get(ctx, "SO-1")
	require.NoError(t, err)
	require.Equal(t, "ORD-1", order.OrderNumber)
	require.Len(t, order.Lines, 2)

	customer, err := NewCustomerRepository(store).Get(ctx, "C1")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", customer.Email)

	_, err = NewSalesOrderRepository(store).Get(ctx, "SO-404")
	require.ErrorIs(t, err, domain.ErrSalesOrderNotFound)
	_, err = NewCustomerRepository(store).Get(ctx, "C-404")
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
	_, err = NewDeliveryReader(store).Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrDeliveryNotFound)
	_, err = NewStockReader(store).FindLot(ctx, domain.NewLotKey("P9", "W1", integrationLotDate))
	require.ErrorIs(t, err, domain.ErrStockNotFound)
}
