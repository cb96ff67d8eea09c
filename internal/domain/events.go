package domain

import "time"

// DeliveryShippedEvent — полезная нагрузка события DeliveryShipped в outbox.
type DeliveryShippedEvent struct {
	DeliveryOrderID string                    `json:"delivery_order_id"`
	SalesOrderID    string                    `json:"sales_order_id"`
	Operator        string                    `json:"operator"`
	ShippedAt       time.Time                 `json:"shipped_at"`
	Lines           []DeliveryShippedLineView `json:"lines"`
}

// DeliveryShippedLineView — строка отгрузки в событии.
type DeliveryShippedLineView struct {
	ProductID      string `json:"product_id"`
	WarehouseID    string `json:"warehouse_id"`
	ProductionDate string `json:"production_date"`
	Quantity       int64  `json:"quantity"`
}

// NewDeliveryShippedEvent собирает событие из проведённой отгрузки.
func NewDeliveryShippedEvent(order DeliveryOrder, lines []DeliveryLine) DeliveryShippedEvent {
	views := make([]DeliveryShippedLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, DeliveryShippedLineView{
			ProductID:      line.ProductID,
			WarehouseID:    line.WarehouseID,
			ProductionDate: line.ProductionDate.Format(ProductionDateLayout),
			Quantity:       line.Quantity,
		})
	}
	return DeliveryShippedEvent{
		DeliveryOrderID: order.ID,
		SalesOrderID:    order.SalesOrderID,
		Operator:        order.Operator,
		ShippedAt:       order.CreatedAt,
		Lines:           views,
	}
}

// TotalQuantity возвращает суммарное количество отгруженных единиц.
func (e DeliveryShippedEvent) TotalQuantity() int64 {
	var total int64
	for _, line := range e.Lines {
		total += line.Quantity
	}
	return total
}
