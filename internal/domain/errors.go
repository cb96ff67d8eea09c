package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDeliveryInvalid — запрос на отгрузку не согласуется с заказом покупателя.
	ErrDeliveryInvalid = errors.New("delivery request is invalid")
	// ErrSalesOrderRequired: в запросе не указан заказ покупателя.
	ErrSalesOrderRequired = errors.New("sales_order_id is required")
	// ErrDeliveryItemsRequired: запрос не содержит ни одной позиции.
	ErrDeliveryItemsRequired = errors.New("delivery must contain at least one item")
	// ErrDeliveryTooManyItems: позиций больше, чем MaxDeliveryItems.
	ErrDeliveryTooManyItems = errors.New("delivery contains too many items")
	// ErrDeliveryItemInvalid — позиция без товара, склада или даты производства.
	ErrDeliveryItemInvalid = errors.New("delivery item must reference product, warehouse and production date")
	// ErrDeliveryQtyInvalid: количество в позиции <= 0.
	ErrDeliveryQtyInvalid = errors.New("delivery item quantity must be greater than zero")
	// ErrProductNotOrdered: товар отсутствует в заказе покупателя.
	ErrProductNotOrdered = errors.New("product is not part of the sales order")
	// ErrDeliveryExceedsOrder: отгружается больше, чем заказано.
	ErrDeliveryExceedsOrder = errors.New("delivered quantity exceeds ordered quantity")

	// ErrOperatorRequired — не удалось определить оператора, выполняющего отгрузку.
	ErrOperatorRequired = errors.New("operator is required")

	// ErrSalesOrderNotFound возвращается, если заказ покупателя не найден.
	ErrSalesOrderNotFound = errors.New("sales order not found")
	// ErrCustomerNotFound возвращается, если покупатель не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrDeliveryNotFound возвращается, если отгрузка не найдена.
	ErrDeliveryNotFound = errors.New("delivery order not found")

	// ErrStockNotFound — для (товар, склад, дата производства) нет складской партии.
	ErrStockNotFound = errors.New("stock lot not found")
	// ErrInsufficientStock — остатка партии не хватает для отгрузки.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrTxConflict — транзакция прервана хранилищем (deadlock/serialization), можно повторить.
	ErrTxConflict = errors.New("transaction conflict")

	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrOutboxMessageNotFound — событие не найдено или уже не в статусе pending.
	ErrOutboxMessageNotFound = fmt.Errorf("%w: message is not pending", ErrOutboxPublish)

	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key reused with different request")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")
)

// StockError описывает отказ по конкретной складской партии.
// Kind равен ErrStockNotFound или ErrInsufficientStock.
type StockError struct {
	Kind      error
	Key       LotKey
	Requested int64
	Available int64
}

// NewStockNotFoundError создаёт ошибку отсутствующей партии.
func NewStockNotFoundError(key LotKey) *StockError {
	return &StockError{Kind: ErrStockNotFound, Key: key}
}

// NewInsufficientStockError создаёт ошибку недостаточного остатка.
func NewInsufficientStockError(key LotKey, requested, available int64) *StockError {
	return &StockError{Kind: ErrInsufficientStock, Key: key, Requested: requested, Available: available}
}

func (e *StockError) Error() string {
	if errors.Is(e.Kind, ErrInsufficientStock) {
		return fmt.Sprintf("%v: %s requested=%d available=%d shortfall=%d",
			e.Kind, e.Key, e.Requested, e.Available, e.Shortfall())
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Key)
}

func (e *StockError) Unwrap() error {
	return e.Kind
}

// Shortfall возвращает недостающее количество (0 для отсутствующей партии).
func (e *StockError) Shortfall() int64 {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

// ValidationError собирает все причины отказа валидатора.
type ValidationError struct {
	Reasons []error
}

// NewValidationError возвращает nil, если причин нет.
func NewValidationError(reasons ...error) error {
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Reasons))
	for _, reason := range e.Reasons {
		msgs = append(msgs, reason.Error())
	}
	return ErrDeliveryInvalid.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrDeliveryInvalid}, e.Reasons...)
}

// IsNotFound сообщает, что отгрузка упала из-за отсутствующего ресурса.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStockNotFound) ||
		errors.Is(err, ErrDeliveryNotFound)
}

// IsIllegalState сообщает о нарушении бизнес-правила (нехватка остатка).
func IsIllegalState(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsValidation сообщает, что запрос отклонён валидатором до каких-либо записей.
func IsValidation(err error) bool {
	return errors.Is(err, ErrDeliveryInvalid)
}

// IsTxConflict проверяет, можно ли повторить транзакцию целиком.
func IsTxConflict(err error) bool {
	return errors.Is(err, ErrTxConflict)
}

// IsIdempotencyConflict проверяет конфликт ключа идемпотентности.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) || errors.Is(err, ErrIdempotencyHashMismatch)
}
