package grpcsvc

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	fulfillmentv1 "github.com/vladislavdragonenkov/fulfillment/proto/fulfillment/v1"
)

// OperatorHeader содержит идентификатор кладовщика.
const OperatorHeader = "x-operator-id"

// DeliveryAPI — операции оркестратора, доступные через gRPC.
type DeliveryAPI interface {
	FulfillDelivery(ctx context.Context, req domain.DeliveryRequest, operatorID string) (string, error)
	GetDelivery(ctx context.Context, id string) (domain.Delivery, error)
	ListDeliveries(ctx context.Context, salesOrderID string) ([]domain.Delivery, error)
	GetStockLot(ctx context.Context, key domain.LotKey) (domain.StockLot, error)
}

// DeliveryService реализует gRPC API поверх оркестратора отгрузок.
type DeliveryService struct {
	fulfillmentv1.UnimplementedDeliveryServiceServer

	deliveries DeliveryAPI
	idemRepo   domain.IdempotencyRepository
	logger     *log.Entry
}

// NewDeliveryService конструирует сервис. idemRepo может быть nil: тогда
// idempotency-key игнорируется.
func NewDeliveryService(deliveries DeliveryAPI, idemRepo domain.IdempotencyRepository, logger *log.Entry) *DeliveryService {
	if logger == nil {
		logger = log.New().WithField("component", "delivery-grpc")
	}
	return &DeliveryService{
		deliveries: deliveries,
		idemRepo:   idemRepo,
		logger:     logger,
	}
}

// FulfillDelivery проводит отгрузку от имени кладовщика из metadata x-operator-id.
func (s *DeliveryService) FulfillDelivery(ctx context.Context, req *fulfillmentv1.FulfillDeliveryRequest) (*fulfillmentv1.FulfillDeliveryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	operatorID := readOperator(ctx)
	if operatorID == "" {
		return nil, status.Error(codes.Unauthenticated, "x-operator-id metadata is required")
	}

	deliveryReq, err := toDomainRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.withIdempotency(ctx, fulfillmentv1.DeliveryService_FulfillDelivery_FullMethodName, operatorID, req,
		func(ctx context.Context) (*fulfillmentv1.FulfillDeliveryResponse, error) {
			deliveryID, err := s.deliveries.FulfillDelivery(ctx, deliveryReq, operatorID)
			if err != nil {
				return nil, s.toStatus(err, "FulfillDelivery", "failed to fulfill delivery")
			}
			return &fulfillmentv1.FulfillDeliveryResponse{DeliveryOrderId: deliveryID}, nil
		},
	)
}

// GetDelivery возвращает отгрузку со строками.
func (s *DeliveryService) GetDelivery(ctx context.Context, req *fulfillmentv1.GetDeliveryRequest) (*fulfillmentv1.GetDeliveryResponse, error) {
	if req == nil || strings.TrimSpace(req.DeliveryOrderId) == "" {
		return nil, status.Error(codes.InvalidArgument, "delivery_order_id is required")
	}

	delivery, err := s.deliveries.GetDelivery(ctx, req.DeliveryOrderId)
	if err != nil {
		return nil, s.toStatus(err, "GetDelivery", "failed to load delivery")
	}
	return &fulfillmentv1.GetDeliveryResponse{Delivery: toProtoDelivery(delivery)}, nil
}

// ListDeliveries возвращает отгрузки заказа покупателя.
func (s *DeliveryService) ListDeliveries(ctx context.Context, req *fulfillmentv1.ListDeliveriesRequest) (*fulfillmentv1.ListDeliveriesResponse, error) {
	if req == nil || strings.TrimSpace(req.SalesOrderId) == "" {
		return nil, status.Error(codes.InvalidArgument, "sales_order_id is required")
	}

	deliveries, err := s.deliveries.ListDeliveries(ctx, req.SalesOrderId)
	if err != nil {
		return nil, s.toStatus(err, "ListDeliveries", "failed to list deliveries")
	}

	result := make([]*fulfillmentv1.Delivery, 0, len(deliveries))
	for _, delivery := range deliveries {
		result = append(result, toProtoDelivery(delivery))
	}
	return &fulfillmentv1.ListDeliveriesResponse{Deliveries: result}, nil
}

// GetStockLot возвращает остаток партии.
func (s *DeliveryService) GetStockLot(ctx context.Context, req *fulfillmentv1.GetStockLotRequest) (*fulfillmentv1.GetStockLotResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := domain.ParseProductionDate(req.ProductionDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "production_date must be YYYY-MM-DD")
	}

	lot, err := s.deliveries.GetStockLot(ctx, domain.NewLotKey(req.ProductId, req.WarehouseId, date))
	if err != nil {
		return nil, s.toStatus(err, "GetStockLot", "failed to load stock lot")
	}
	return &fulfillmentv1.GetStockLotResponse{Lot: toProtoLot(lot)}, nil
}

// toStatus переводит доменную ошибку в gRPC-статус.
func (s *DeliveryService) toStatus(err error, operation, internalMsg string) error {
	code := codeOf(err)
	entry := s.logger.WithError(err).WithField("operation", operation)
	if code == codes.Internal {
		entry.Error("request failed")
		return status.Error(codes.Internal, internalMsg)
	}
	entry.WithField("code", code.String()).Debug("request rejected")
	return status.Error(code, err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrOperatorRequired):
		return codes.Unauthenticated
	case domain.IsValidation(err):
		return codes.InvalidArgument
	case domain.IsNotFound(err):
		return codes.NotFound
	case domain.IsIllegalState(err):
		return codes.FailedPrecondition
	case domain.IsTxConflict(err):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

func readOperator(ctx context.Context) string {
	return readMetadata(ctx, OperatorHeader)
}

func readMetadata(ctx context.Context, header string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(header); len(values) > 0 {
			if v := strings.TrimSpace(values[0]); v != "" {
				return v
			}
		}
	}
	return ""
}

func toDomainRequest(req *fulfillmentv1.FulfillDeliveryRequest) (domain.DeliveryRequest, error) {
	items := make([]domain.DeliveryItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item == nil {
			return domain.DeliveryRequest{}, errors.New("item must not be null")
		}
		date, err := domain.ParseProductionDate(item.ProductionDate)
		if err != nil {
			return domain.DeliveryRequest{}, err
		}
		items = append(items, domain.DeliveryItem{
			ProductID:      item.ProductId,
			WarehouseID:    item.WarehouseId,
			ProductionDate: date,
			Quantity:       item.Quantity,
		})
	}
	return domain.DeliveryRequest{SalesOrderID: req.SalesOrderId, Items: items}, nil
}

func toProtoDelivery(delivery domain.Delivery) *fulfillmentv1.Delivery {
	lines := make([]*fulfillmentv1.DeliveryLine, 0, len(delivery.Lines))
	for _, line := range delivery.Lines {
		lines = append(lines, &fulfillmentv1.DeliveryLine{
			Id:             line.ID,
			ProductId:      line.ProductID,
			WarehouseId:    line.WarehouseID,
			ProductionDate: line.ProductionDate.Format(domain.ProductionDateLayout),
			Quantity:       line.Quantity,
		})
	}
	return &fulfillmentv1.Delivery{
		Id:            delivery.Order.ID,
		SalesOrderId:  delivery.Order.SalesOrderID,
		OperatorId:    delivery.Order.Operator,
		CreatedAtUnix: delivery.Order.CreatedAt.Unix(),
		Lines:         lines,
	}
}

func toProtoLot(lot domain.StockLot) *fulfillmentv1.StockLot {
	return &fulfillmentv1.StockLot{
		ProductId:      lot.ProductID,
		WarehouseId:    lot.WarehouseID,
		ProductionDate: lot.ProductionDate.Format(domain.ProductionDateLayout),
		Count:          lot.Count,
		OperatorId:     lot.Operator,
		UpdatedAtUnix:  lot.UpdatedAt.Unix(),
	}
}
