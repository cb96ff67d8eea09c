package domain

import "strings"

// SalesOrder — заказ покупателя. Отгрузка его только читает.
type SalesOrder struct {
	ID          string
	OrderNumber string
	CustomerID  string
	Lines       []SalesOrderLine
}

// SalesOrderLine хранит заказанное количество товара.
type SalesOrderLine struct {
	ProductID string
	Quantity  int64
}

// OrderedQuantities суммирует заказанное количество по товарам.
func (o SalesOrder) OrderedQuantities() map[string]int64 {
	result := make(map[string]int64, len(o.Lines))
	for _, line := range o.Lines {
		result[line.ProductID] += line.Quantity
	}
	return result
}

// Customer — покупатель, которому отправляется уведомление.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// CanBeNotified сообщает, есть ли у покупателя непустой e-mail.
func (c Customer) CanBeNotified() bool {
	return strings.TrimSpace(c.Email) != ""
}

// MailMessage — простое письмо для почтового транспорта.
type MailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}
