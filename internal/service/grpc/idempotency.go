package grpcsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	fulfillmentv1 "github.com/vladislavdragonenkov/fulfillment/proto/fulfillment/v1"
)

const (
	idempotencyKeyHeader = "idempotency-key"
	idempotencyTTL       = 24 * time.Hour
)

type idempotencyErrorPayload struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// withIdempotency выполняет handler не более одного раза на idempotency-key.
// Без ключа запрос выполняется как есть.
func (s *DeliveryService) withIdempotency(
	ctx context.Context,
	method string,
	operatorID string,
	req *fulfillmentv1.FulfillDeliveryRequest,
	handler func(context.Context) (*fulfillmentv1.FulfillDeliveryResponse, error),
) (*fulfillmentv1.FulfillDeliveryResponse, error) {
	idemKey := readMetadata(ctx, idempotencyKeyHeader)
	if s.idemRepo == nil || idemKey == "" {
		return handler(ctx)
	}

	reqHash, err := buildRequestHash(method, operatorID, req)
	if err != nil {
		s.logger.WithError(err).WithField("method", method).Warn("failed to build idempotency request hash")
		return nil, status.Error(codes.Internal, "failed to initialize idempotency request")
	}

	// Временный отказ хранилище перезанимает само: выполнить запрос может только победитель.
	record, err := s.idemRepo.CreateProcessing(ctx, idemKey, reqHash, time.Now().UTC().Add(idempotencyTTL))
	if err != nil {
		return s.replay(err, record)
	}

	resp, runErr := handler(ctx)
	if runErr != nil {
		s.cacheFailure(ctx, idemKey, runErr)
		return nil, runErr
	}

	if cacheErr := s.cacheSuccess(ctx, idemKey, resp); cacheErr != nil {
		s.logger.WithError(cacheErr).WithField("idempotency_key", idemKey).Warn("failed to store idempotent success response")
	}
	return resp, nil
}

func (s *DeliveryService) replay(createErr error, record domain.IdempotencyRecord) (*fulfillmentv1.FulfillDeliveryResponse, error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return nil, status.Error(codes.AlreadyExists, "idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone:
			if len(record.ResponseBody) == 0 {
				return nil, status.Error(codes.Internal, "idempotency cache is empty")
			}
			resp := &fulfillmentv1.FulfillDeliveryResponse{}
			if err := protojson.Unmarshal(record.ResponseBody, resp); err != nil {
				s.logger.WithError(err).WithField("idempotency_key", record.Key).Warn("failed to decode cached idempotency response")
				return nil, status.Error(codes.Internal, "failed to decode cached idempotency response")
			}
			return resp, nil
		case domain.IdempotencyStatusProcessing:
			return nil, status.Error(codes.Aborted, "request with the same idempotency key is already processing")
		case domain.IdempotencyStatusFailed:
			return nil, decodeFailure(record)
		default:
			return nil, status.Error(codes.Internal, "unknown idempotency record status")
		}
	default:
		s.logger.WithError(createErr).Warn("failed to create idempotency record")
		return nil, status.Error(codes.Internal, "failed to initialize idempotency request")
	}
}

func (s *DeliveryService) cacheSuccess(ctx context.Context, key string, resp *fulfillmentv1.FulfillDeliveryResponse) error {
	data, err := protojson.Marshal(resp)
	if err != nil {
		return err
	}
	return s.idemRepo.MarkDone(context.WithoutCancel(ctx), key, data, int(codes.OK))
}

func (s *DeliveryService) cacheFailure(ctx context.Context, key string, runErr error) {
	st := status.Convert(runErr)
	code := st.Code()
	if code == codes.OK {
		code = codes.Internal
	}

	payload, err := json.Marshal(idempotencyErrorPayload{
		Code:    int32(code), //nolint:gosec // codes.Code is a bounded enum value.
		Message: st.Message(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to encode idempotency failure payload")
		payload = nil
	}

	// Отменённый клиентом запрос не должен оставлять ключ в processing.
	if err := s.idemRepo.MarkFailed(context.WithoutCancel(ctx), key, payload, int(code)); err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotency failure response")
	}
}

func decodeFailure(record domain.IdempotencyRecord) error {
	if len(record.ResponseBody) > 0 {
		var payload idempotencyErrorPayload
		if err := json.Unmarshal(record.ResponseBody, &payload); err == nil {
			if code, ok := grpcCodeFromInt(int(payload.Code)); ok && code != codes.OK {
				if payload.Message == "" {
					payload.Message = "previous request with the same idempotency key failed"
				}
				return status.Error(code, payload.Message)
			}
		}
	}

	if code, ok := grpcCodeFromInt(record.Code); ok && code != codes.OK {
		return status.Error(code, "previous request with the same idempotency key failed")
	}
	return status.Error(codes.Internal, "previous request with the same idempotency key failed")
}

func grpcCodeFromInt(value int) (codes.Code, bool) {
	if value < int(codes.OK) || value > int(codes.Unauthenticated) {
		return codes.Internal, false
	}
	return codes.Code(uint32(value)), true //nolint:gosec // bounded above.
}

// buildRequestHash привязывает ключ к методу, кладовщику и телу запроса.
func buildRequestHash(method, operatorID string, req *fulfillmentv1.FulfillDeliveryRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is nil")
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(req)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, len(method)+len(operatorID)+2+len(data))
	payload = append(payload, method...)
	payload = append(payload, ':')
	payload = append(payload, operatorID...)
	payload = append(payload, ':')
	payload = append(payload, data...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
