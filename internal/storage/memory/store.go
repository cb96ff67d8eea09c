package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// Store — in-memory хранилище складских партий, отгрузок и справочников.
// Используется для локальной разработки и тестов.
type Store struct {
	// txMu сериализует транзакции: аналог строковых блокировок партий в PostgreSQL.
	txMu sync.Mutex

	mu          sync.RWMutex
	lots        map[string]domain.StockLot
	deliveries  map[string]domain.DeliveryOrder
	lines       map[string][]domain.DeliveryLine
	salesOrders map[string]domain.SalesOrder
	customers   map[string]domain.Customer

	outbox *outboxRepositoryInMemory
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		lots:        make(map[string]domain.StockLot),
		deliveries:  make(map[string]domain.DeliveryOrder),
		lines:       make(map[string][]domain.DeliveryLine),
		salesOrders: make(map[string]domain.SalesOrder),
		customers:   make(map[string]domain.Customer),
		outbox:      NewOutboxRepository(),
	}
}

// PutStockLot добавляет или заменяет партию (наполнение справочника).
func (s *Store) PutStockLot(lot domain.StockLot) domain.StockLot {
	key := lot.Key()
	lot.ProductID, lot.WarehouseID, lot.ProductionDate = key.ProductID, key.WarehouseID, key.ProductionDate
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	if lot.UpdatedAt.IsZero() {
		lot.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots[lotKeyID(key)] = lot
	return lot
}

// PutSalesOrder добавляет заказ покупателя.
func (s *Store) PutSalesOrder(order domain.SalesOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.Lines = append([]domain.SalesOrderLine(nil), order.Lines...)
	s.salesOrders[order.ID] = order
}

// PutCustomer добавляет покупателя.
func (s *Store) PutCustomer(customer domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
}

// StockReader возвращает чтение остатков вне транзакции.
func (s *Store) StockReader() domain.StockReader {
	return stockReader{store: s}
}

// DeliveryReader возвращает чтение проведённых отгрузок.
func (s *Store) DeliveryReader() domain.DeliveryReader {
	return deliveryReader{store: s}
}

// SalesOrders возвращает репозиторий заказов покупателей.
func (s *Store) SalesOrders() domain.SalesOrderRepository {
	return salesOrderRepository{store: s}
}

// Customers возвращает репозиторий покупателей.
func (s *Store) Customers() domain.CustomerRepository {
	return customerRepository{store: s}
}

// Outbox возвращает outbox, в который коммитятся события транзакций.
func (s *Store) Outbox() *outboxRepositoryInMemory {
	return s.outbox
}

func (s *Store) lot(key domain.LotKey) (domain.StockLot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lot, ok := s.lots[lotKeyID(key)]
	return lot, ok
}

type stockReader struct{ store *Store }

func (r stockReader) FindLot(ctx context.Context, key domain.LotKey) (domain.StockLot, error) {
	if err := ctx.Err(); err != nil {
		return domain.StockLot{}, err
	}
	lot, ok := r.store.lot(domain.NewLotKey(key.ProductID, key.WarehouseID, key.ProductionDate))
	if !ok {
		return domain.StockLot{}, domain.ErrStockNotFound
	}
	return lot, nil
}

type deliveryReader struct{ store *Store }

func (r deliveryReader) Get(ctx context.Context, id string) (domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return domain.Delivery{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.deliveries[id]
	if !ok {
		return domain.Delivery{}, domain.ErrDeliveryNotFound
	}
	return domain.Delivery{
		Order: order,
		Lines: append([]domain.DeliveryLine(nil), r.store.lines[id]...),
	}, nil
}

func (r deliveryReader) ListBySalesOrder(ctx context.Context, salesOrderID string) ([]domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Delivery, 0)
	for id, order := range r.store.deliveries {
		if order.SalesOrderID != salesOrderID {
			continue
		}
		result = append(result, domain.Delivery{
			Order: order,
			Lines: append([]domain.DeliveryLine(nil), r.store.lines[id]...),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Order.CreatedAt.Equal(result[j].Order.CreatedAt) {
			return result[i].Order.CreatedAt.Before(result[j].Order.CreatedAt)
		}
		return result[i].Order.ID < result[j].Order.ID
	})

	return result, nil
}

type salesOrderRepository struct{ store *Store }

func (r salesOrderRepository) Get(ctx context.Context, id string) (domain.SalesOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.SalesOrder{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.salesOrders[id]
	if !ok {
		return domain.SalesOrder{}, domain.ErrSalesOrderNotFound
	}
	order.Lines = append([]domain.SalesOrderLine(nil), order.Lines...)
	return order, nil
}

type customerRepository struct{ store *Store }

func (r customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customer, ok := r.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func lotKeyID(key domain.LotKey) string {
	return key.ProductID + "\x00" + key.WarehouseID + "\x00" + key.ProductionDate.Format(domain.ProductionDateLayout)
}

var (
	_ domain.StockReader          = stockReader{}
	_ domain.DeliveryReader       = deliveryReader{}
	_ domain.SalesOrderRepository = salesOrderRepository{}
	_ domain.CustomerRepository   = customerRepository{}
)
