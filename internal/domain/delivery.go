package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxDeliveryItems ограничивает число позиций в одной отгрузке.
const MaxDeliveryItems = 1000

// DeliveryOrder — заголовок отгрузки по заказу покупателя.
type DeliveryOrder struct {
	ID           string
	SalesOrderID string
	// Operator — кладовщик, оформивший отгрузку.
	Operator  string
	CreatedAt time.Time
}

// DeliveryLine хранит отгруженное количество по одной складской партии.
type DeliveryLine struct {
	ID              string
	DeliveryOrderID string
	ProductID       string
	WarehouseID     string
	ProductionDate  time.Time
	Quantity        int64
}

// LotKey возвращает ключ партии, из которой отгружается позиция.
func (l DeliveryLine) LotKey() LotKey {
	return NewLotKey(l.ProductID, l.WarehouseID, l.ProductionDate)
}

// Delivery объединяет заголовок и позиции для чтения.
type Delivery struct {
	Order DeliveryOrder
	Lines []DeliveryLine
}

// DeliveryItem — позиция входящего запроса на отгрузку.
type DeliveryItem struct {
	ProductID      string
	WarehouseID    string
	ProductionDate time.Time
	Quantity       int64
}

// LotKey возвращает ключ партии позиции запроса.
func (i DeliveryItem) LotKey() LotKey {
	return NewLotKey(i.ProductID, i.WarehouseID, i.ProductionDate)
}

// DeliveryRequest — запрос на отгрузку по заказу покупателя.
type DeliveryRequest struct {
	SalesOrderID string
	Items        []DeliveryItem
}

// ValidateShape проверяет структуру запроса без обращения к хранилищу.
func (r DeliveryRequest) ValidateShape() []error {
	var errs []error

	if strings.TrimSpace(r.SalesOrderID) == "" {
		errs = append(errs, ErrSalesOrderRequired)
	}
	if len(r.Items) == 0 {
		errs = append(errs, ErrDeliveryItemsRequired)
	}
	if len(r.Items) > MaxDeliveryItems {
		return append(errs, fmt.Errorf("%w: %d > %d", ErrDeliveryTooManyItems, len(r.Items), MaxDeliveryItems))
	}
	for _, item := range r.Items {
		if !item.LotKey().Valid() {
			errs = append(errs, ErrDeliveryItemInvalid)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrDeliveryQtyInvalid)
		}
	}

	return errs
}

// BuildLines превращает позиции запроса в строки отгрузки с сохранением порядка.
func (r DeliveryRequest) BuildLines(deliveryOrderID string) []DeliveryLine {
	lines := make([]DeliveryLine, 0, len(r.Items))
	for _, item := range r.Items {
		key := item.LotKey()
		lines = append(lines, DeliveryLine{
			DeliveryOrderID: deliveryOrderID,
			ProductID:       key.ProductID,
			WarehouseID:     key.WarehouseID,
			ProductionDate:  key.ProductionDate,
			Quantity:        item.Quantity,
		})
	}
	return lines
}
