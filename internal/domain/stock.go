package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductionDateLayout задаёт формат даты производства.
const ProductionDateLayout = "2006-01-02"

// LotKey — составной натуральный ключ складской партии.
type LotKey struct {
	ProductID      string
	WarehouseID    string
	ProductionDate time.Time
}

// NewLotKey нормализует дату производства до календарного дня в UTC.
func NewLotKey(productID, warehouseID string, productionDate time.Time) LotKey {
	return LotKey{
		ProductID:      strings.TrimSpace(productID),
		WarehouseID:    strings.TrimSpace(warehouseID),
		ProductionDate: NormalizeDate(productionDate),
	}
}

// String формирует ключ вида product=P1 warehouse=W1 date=2024-01-01.
func (k LotKey) String() string {
	return fmt.Sprintf("product=%s warehouse=%s date=%s",
		k.ProductID, k.WarehouseID, k.ProductionDate.Format(ProductionDateLayout))
}

// Valid проверяет, что все части ключа заполнены.
func (k LotKey) Valid() bool {
	return k.ProductID != "" && k.WarehouseID != "" && !k.ProductionDate.IsZero()
}

// StockLot — остаток по уникальной тройке (товар, склад, дата производства).
type StockLot struct {
	ID             string
	ProductID      string
	WarehouseID    string
	ProductionDate time.Time
	Count          int64
	// Operator — кто последним изменял остаток.
	Operator  string
	UpdatedAt time.Time
}

// Key возвращает составной ключ партии.
func (l StockLot) Key() LotKey {
	return NewLotKey(l.ProductID, l.WarehouseID, l.ProductionDate)
}

// CanDeliver сообщает, хватит ли остатка на qty единиц.
func (l StockLot) CanDeliver(qty int64) bool {
	return qty > 0 && l.Count >= qty
}

// NormalizeDate отбрасывает время и зону, оставляя календарный день в UTC.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseProductionDate разбирает дату в формате 2006-01-02.
func ParseProductionDate(value string) (time.Time, error) {
	t, err := time.Parse(ProductionDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse production date %q: %w", value, err)
	}
	return t, nil
}
