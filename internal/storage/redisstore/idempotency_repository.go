// Package redisstore хранит ключи идемпотентности в Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const (
	// DefaultKeyPrefix — префикс ключей идемпотентности в Redis.
	DefaultKeyPrefix = "fulfillment:idem:"

	fieldRequestHash  = "request_hash"
	fieldStatus       = "status"
	fieldResponseBody = "response_body"
	fieldCode         = "code"
	fieldTTLAt        = "ttl_at"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// createProcessingScript атомарно создаёт запись либо возвращает хэш уже существующей.
// Запись failed с тем же хэшем и кодом из ARGV[6..] перезанимается, как новая.
var createProcessingScript = redis.NewScript(`
local existing = redis.call('HGET', KEYS[1], 'request_hash')
if existing then
	if existing ~= ARGV[1] or redis.call('HGET', KEYS[1], 'status') ~= 'failed' then
		return existing
	end
	local code = redis.call('HGET', KEYS[1], 'code')
	local retryable = false
	for i = 6, #ARGV do
		if code == ARGV[i] then
			retryable = true
		end
	end
	if not retryable then
		return existing
	end
	redis.call('HDEL', KEYS[1], 'response_body', 'code')
	redis.call('HSET', KEYS[1],
		'status', ARGV[2],
		'ttl_at', ARGV[3],
		'updated_at', ARGV[4])
	redis.call('PEXPIREAT', KEYS[1], ARGV[5])
	return ''
end

redis.call('HSET', KEYS[1],
	'request_hash', ARGV[1],
	'status', ARGV[2],
	'ttl_at', ARGV[3],
	'created_at', ARGV[4],
	'updated_at', ARGV[4])
redis.call('PEXPIREAT', KEYS[1], ARGV[5])
return ''
`)

// markStatusScript меняет статус только у существующей записи, сохраняя её TTL.
var markStatusScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end

redis.call('HSET', KEYS[1],
	'status', ARGV[1],
	'response_body', ARGV[2],
	'code', ARGV[3],
	'updated_at', ARGV[4])
return 1
`)

type idempotencyRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyRepository создаёт Redis-реализацию IdempotencyRepository.
// Срок хранения записи задаётся PEXPIREAT, поэтому просроченные ключи удаляет сам Redis.
func NewIdempotencyRepository(client redis.UniversalClient, prefix string) domain.IdempotencyRepository {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultKeyPrefix
	}
	return &idempotencyRepository{client: client, prefix: prefix}
}

func (r *idempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	record, err := domain.NewProcessingRecord(key, requestHash, ttlAt, time.Now())
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	args := []any{
		record.RequestHash,
		string(record.Status),
		formatTime(record.TTLAt),
		formatTime(record.CreatedAt),
		record.TTLAt.UnixMilli(),
	}
	for _, code := range domain.RetryableFailureCodes() {
		args = append(args, strconv.Itoa(code))
	}
	existingHash, err := createProcessingScript.Run(ctx, r.client, []string{r.redisKey(record.Key)}, args...).Text()
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("create idempotency record: %w", err)
	}
	if existingHash == "" {
		return record, nil
	}

	existing, getErr := r.Get(ctx, record.Key)
	if getErr != nil {
		existing = domain.IdempotencyRecord{Key: record.Key, RequestHash: existingHash}
	}
	return existing, domain.IdempotencyRecord{RequestHash: existingHash}.Conflict(record.RequestHash)
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	fields, err := r.client.HGetAll(ctx, r.redisKey(key)).Result()
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency record: %w", err)
	}
	if len(fields) == 0 {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}

	return decodeRecord(key, fields)
}

func (r *idempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusDone, responseBody, code)
}

func (r *idempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusFailed, responseBody, code)
}

// DeleteExpired ничего не удаляет: записи истекают по TTL самого Redis.
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, _ time.Time, _ int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, nil
}

func (r *idempotencyRepository) markStatus(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, code int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	updated, err := markStatusScript.Run(ctx, r.client, []string{r.redisKey(key)},
		string(status),
		responseBody,
		code,
		formatTime(time.Now().UTC()),
	).Int()
	if err != nil {
		return fmt.Errorf("mark idempotency key status: %w", err)
	}
	if updated == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}
	return nil
}

func (r *idempotencyRepository) redisKey(key string) string {
	return r.prefix + key
}

func decodeRecord(key string, fields map[string]string) (domain.IdempotencyRecord, error) {
	record := domain.IdempotencyRecord{
		Key:         key,
		RequestHash: fields[fieldRequestHash],
		Status:      domain.IdempotencyStatus(fields[fieldStatus]),
	}
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid idempotency status %q for key %s", fields[fieldStatus], key)
	}
	if body, ok := fields[fieldResponseBody]; ok && body != "" {
		record.ResponseBody = []byte(body)
	}
	if raw, ok := fields[fieldCode]; ok && raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return domain.IdempotencyRecord{}, fmt.Errorf("parse idempotency code for key %s: %w", key, err)
		}
		record.Code = code
	}

	var err error
	if record.TTLAt, err = parseTime(fields[fieldTTLAt]); err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("parse ttl_at for key %s: %w", key, err)
	}
	if record.CreatedAt, err = parseTime(fields[fieldCreatedAt]); err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("parse created_at for key %s: %w", key, err)
	}
	if record.UpdatedAt, err = parseTime(fields[fieldUpdatedAt]); err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("parse updated_at for key %s: %w", key, err)
	}

	return record, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, raw)
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
