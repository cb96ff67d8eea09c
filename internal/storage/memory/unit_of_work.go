package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// WithinTx выполняет fn над копией изменений и применяет их только при успехе.
// Транзакции выполняются строго по одной, поэтому параллельные списания одной
// партии не могут увести остаток в минус.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{
		store: s,
		lots:  make(map[string]domain.StockLot),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// Таймаут вызывающего равносилен откату.
	if err := ctx.Err(); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// memoryTx накапливает изменения одной транзакции.
type memoryTx struct {
	store  *Store
	lots   map[string]domain.StockLot
	orders []domain.DeliveryOrder
	lines  []domain.DeliveryLine
	outbox []domain.OutboxMessage
}

func (tx *memoryTx) Deliveries() domain.DeliveryRecordWriter { return tx }
func (tx *memoryTx) Stock() domain.StockLedger               { return tx }
func (tx *memoryTx) Outbox() domain.OutboxWriter             { return txOutbox{tx: tx} }

func (tx *memoryTx) CreateHeader(_ context.Context, salesOrderID, operator string) (domain.DeliveryOrder, error) {
	order := domain.DeliveryOrder{
		ID:           uuid.NewString(),
		SalesOrderID: salesOrderID,
		Operator:     operator,
		CreatedAt:    time.Now().UTC(),
	}
	tx.orders = append(tx.orders, order)
	return order, nil
}

func (tx *memoryTx) CreateLines(_ context.Context, lines []domain.DeliveryLine) ([]domain.DeliveryLine, error) {
	saved := make([]domain.DeliveryLine, 0, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			line.ID = uuid.NewString()
		}
		saved = append(saved, line)
	}
	tx.lines = append(tx.lines, saved...)
	return append([]domain.DeliveryLine(nil), saved...), nil
}

func (tx *memoryTx) FindLot(_ context.Context, key domain.LotKey) (domain.StockLot, error) {
	key = domain.NewLotKey(key.ProductID, key.WarehouseID, key.ProductionDate)
	if lot, ok := tx.lots[lotKeyID(key)]; ok {
		return lot, nil
	}
	if lot, ok := tx.store.lot(key); ok {
		return lot, nil
	}
	return domain.StockLot{}, domain.ErrStockNotFound
}

func (tx *memoryTx) ApplyDecrement(ctx context.Context, lot domain.StockLot, qty int64, operator string) (domain.StockLot, error) {
	if qty <= 0 {
		return domain.StockLot{}, domain.ErrDeliveryQtyInvalid
	}

	key := lot.Key()
	current, err := tx.FindLot(ctx, key)
	if err != nil {
		return domain.StockLot{}, domain.NewStockNotFoundError(key)
	}
	// Проверяем актуальный остаток, а не переданную копию.
	if current.Count < qty {
		return domain.StockLot{}, domain.NewInsufficientStockError(key, qty, current.Count)
	}

	current.Count -= qty
	current.Operator = operator
	current.UpdatedAt = time.Now().UTC()
	tx.lots[lotKeyID(key)] = current
	return current, nil
}

func (tx *memoryTx) commit() {
	s := tx.store
	s.mu.Lock()
	for id, lot := range tx.lots {
		s.lots[id] = lot
	}
	for _, order := range tx.orders {
		s.deliveries[order.ID] = order
	}
	for _, line := range tx.lines {
		s.lines[line.DeliveryOrderID] = append(s.lines[line.DeliveryOrderID], line)
	}
	s.mu.Unlock()

	for _, msg := range tx.outbox {
		s.outbox.put(msg)
	}
}

type txOutbox struct{ tx *memoryTx }

func (o txOutbox) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	o.tx.outbox = append(o.tx.outbox, msg)
	return msg, nil
}

var (
	_ domain.UnitOfWork     = (*Store)(nil)
	_ domain.TxRepositories = (*memoryTx)(nil)
)
