package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/fulfillment"
)

var flowLotDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Уведомление идёт после коммита: ни пустой адрес, ни сбой почты не влияют на результат отгрузки.
func TestFulfillDelivery_NotificationProblemsDoNotFailDelivery(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		mailErr    error
		wantResult string
	}{
		{name: "customer without email", customerID: "C2", wantResult: metrics.NotificationSkipped},
		{name: "mailer failure", customerID: "C1", mailErr: errors.New("smtp: 554 transaction failed"), wantResult: metrics.NotificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.mailer.err = tt.mailErr
			f.store.PutSalesOrder(domain.SalesOrder{
				ID:          "SO-9",
				OrderNumber: "ORD-9",
				CustomerID:  tt.customerID,
				Lines:       []domain.SalesOrderLine{{ProductID: "P1", Quantity: 5}},
			})
			f.store.PutStockLot(domain.StockLot{ProductID: "P1", WarehouseID: "W1", ProductionDate: flowLotDate, Count: 10})

			d := f.dispatcher()
			svc := fulfillment.NewService(
				fulfillment.NewSalesOrderValidator(f.store.SalesOrders()),
				f.store,
				f.store.DeliveryReader(),
				f.store.StockReader(),
				fulfillment.WithNotifier(d),
				fulfillment.WithMetrics(metrics.NewFulfillmentMetricsWithRegisterer(prometheus.NewRegistry())),
			)

			deliveryID, err := svc.FulfillDelivery(context.Background(), domain.DeliveryRequest{
				SalesOrderID: "SO-9",
				Items: []domain.DeliveryItem{
					{ProductID: "P1", WarehouseID: "W1", ProductionDate: flowLotDate, Quantity: 3},
				},
			}, "alice")
			if err != nil {
				t.Fatalf("FulfillDelivery failed: %v", err)
			}
			if deliveryID == "" {
				t.Fatal("expected delivery id")
			}

			stopDispatcher(t, d)

			if got := f.resultCount(t, tt.wantResult); got != 1 {
				t.Fatalf("expected %s=1, got %v", tt.wantResult, got)
			}
			if sent := f.mailer.messages(); len(sent) != 0 {
				t.Fatalf("expected no mail, got %+v", sent)
			}
			lot, err := f.store.StockReader().FindLot(context.Background(), domain.NewLotKey("P1", "W1", flowLotDate))
			if err != nil {
				t.Fatalf("FindLot failed: %v", err)
			}
			if lot.Count != 7 {
				t.Fatalf("stock must stay decremented, got %d", lot.Count)
			}
		})
	}
}
