package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// salesOrderValidator сверяет запрос на отгрузку с заказом покупателя.
type salesOrderValidator struct {
	salesOrders domain.SalesOrderRepository
}

// NewSalesOrderValidator создаёт валидатор по умолчанию.
func NewSalesOrderValidator(salesOrders domain.SalesOrderRepository) domain.DeliveryValidator {
	return &salesOrderValidator{salesOrders: salesOrders}
}

// CheckDelivery возвращает *domain.ValidationError со всеми найденными причинами.
// Ошибки хранилища возвращаются как есть.
func (v *salesOrderValidator) CheckDelivery(ctx context.Context, req domain.DeliveryRequest) error {
	reasons := req.ValidateShape()
	if strings.TrimSpace(req.SalesOrderID) == "" || len(req.Items) > domain.MaxDeliveryItems {
		return domain.NewValidationError(reasons...)
	}

	order, err := v.salesOrders.Get(ctx, strings.TrimSpace(req.SalesOrderID))
	if err != nil {
		if errors.Is(err, domain.ErrSalesOrderNotFound) {
			return domain.NewValidationError(append(reasons, err)...)
		}
		return fmt.Errorf("load sales order %s: %w", req.SalesOrderID, err)
	}

	ordered := order.OrderedQuantities()
	delivered := make(map[string]int64, len(req.Items))
	for _, item := range req.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" || item.Quantity <= 0 {
			continue
		}
		delivered[productID] += item.Quantity
	}

	products := make([]string, 0, len(delivered))
	for productID := range delivered {
		products = append(products, productID)
	}
	sort.Strings(products)

	for _, productID := range products {
		qty, ok := ordered[productID]
		if !ok {
			reasons = append(reasons, fmt.Errorf("%w: %s", domain.ErrProductNotOrdered, productID))
			continue
		}
		if delivered[productID] > qty {
			reasons = append(reasons, fmt.Errorf("%w: %s delivered=%d ordered=%d",
				domain.ErrDeliveryExceedsOrder, productID, delivered[productID], qty))
		}
	}

	return domain.NewValidationError(reasons...)
}
