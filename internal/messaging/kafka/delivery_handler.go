package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const deliveryRequestIdempotencyTTL = 24 * time.Hour

// DeliveryFulfiller — оркестратор отгрузки, которому consumer передаёт запросы.
type DeliveryFulfiller interface {
	FulfillDelivery(ctx context.Context, req domain.DeliveryRequest, operatorID string) (string, error)
}

// DeliveryRequestHandler проводит отгрузки из топика fulfillment.delivery.requests.
type DeliveryRequestHandler struct {
	fulfiller DeliveryFulfiller
	idemRepo  domain.IdempotencyRepository
	logger    *log.Entry
}

// NewDeliveryRequestHandler создаёт обработчик. idemRepo может быть nil:
// тогда заголовок x-idempotency-key игнорируется.
func NewDeliveryRequestHandler(fulfiller DeliveryFulfiller, idemRepo domain.IdempotencyRepository, logger *log.Entry) *DeliveryRequestHandler {
	if logger == nil {
		logger = log.WithField("component", "delivery-request-consumer")
	}
	return &DeliveryRequestHandler{fulfiller: fulfiller, idemRepo: idemRepo, logger: logger}
}

// Handle реализует MessageHandler. Ошибки запроса и бизнес-отказы возвращаются как PermanentError.
func (h *DeliveryRequestHandler) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	request, err := ParseDeliveryRequest(message)
	if err != nil {
		return Permanent(err)
	}
	req, err := request.ToDomain()
	if err != nil {
		return Permanent(domain.NewValidationError(domain.ErrDeliveryItemInvalid, err))
	}

	idemKey := strings.TrimSpace(headerValue(message.Headers, HeaderIdempotencyKey))
	if idemKey == "" || h.idemRepo == nil {
		_, err := h.fulfill(ctx, req, request.OperatorID)
		return err
	}

	// Ключ с временным отказом хранилище перезанимает атомарно, поэтому при
	// параллельной доставке дубликатов отгрузку проводит только один обработчик.
	record, err := h.idemRepo.CreateProcessing(ctx, idemKey, hashValue(message.Value), time.Now().UTC().Add(deliveryRequestIdempotencyTTL))
	if err != nil {
		return h.replay(idemKey, record, err)
	}

	deliveryID, runErr := h.fulfill(ctx, req, request.OperatorID)
	// Отмена ctx (ребалансировка, остановка) не должна оставлять ключ в processing.
	markCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		body, code := []byte(runErr.Error()), 0
		if !IsPermanent(runErr) {
			body, code = nil, domain.TransientFailureCode
		}
		if markErr := h.idemRepo.MarkFailed(markCtx, idemKey, body, code); markErr != nil {
			h.logger.WithError(markErr).WithField("idempotency_key", idemKey).Warn("failed to store idempotency failure")
		}
		return runErr
	}

	if err := h.idemRepo.MarkDone(markCtx, idemKey, []byte(deliveryID), 0); err != nil {
		h.logger.WithError(err).WithField("idempotency_key", idemKey).Warn("failed to store idempotency result")
	}
	return nil
}

func (h *DeliveryRequestHandler) fulfill(ctx context.Context, req domain.DeliveryRequest, operatorID string) (string, error) {
	deliveryID, err := h.fulfiller.FulfillDelivery(ctx, req, operatorID)
	if err == nil {
		h.logger.WithFields(log.Fields{
			"sales_order_id":    req.SalesOrderID,
			"delivery_order_id": deliveryID,
		}).Info("delivery request processed")
		return deliveryID, nil
	}

	if isBusinessError(err) {
		return "", Permanent(err)
	}
	return "", err
}

func (h *DeliveryRequestHandler) replay(key string, record domain.IdempotencyRecord, createErr error) error {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return Permanent(createErr)
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone:
			h.logger.WithFields(log.Fields{
				"idempotency_key":   key,
				"delivery_order_id": string(record.ResponseBody),
			}).Info("duplicate delivery request skipped")
			return nil
		case domain.IdempotencyStatusFailed:
			return Permanent(fmt.Errorf("delivery request %s was rejected earlier: %s", key, record.ResponseBody))
		default:
			return fmt.Errorf("delivery request %s is already processing", key)
		}
	default:
		return fmt.Errorf("create idempotency record: %w", createErr)
	}
}

func isBusinessError(err error) bool {
	return domain.IsValidation(err) ||
		domain.IsNotFound(err) ||
		domain.IsIllegalState(err) ||
		errors.Is(err, domain.ErrOperatorRequired)
}

func hashValue(value []byte) string {
	sum := sha256.Sum256(value)
	return hex.EncodeToString(sum[:])
}
