package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// IdempotencyRepository хранит ключи идемпотентности в памяти процесса.
// Просроченная запись ведёт себя как отсутствующая, даже если очистка до неё ещё не дошла.
type IdempotencyRepository struct {
	mu    sync.RWMutex
	items map[string]domain.IdempotencyRecord
	now   func() time.Time
}

var _ domain.IdempotencyRepository = (*IdempotencyRepository)(nil)

// IdempotencyOption настраивает IdempotencyRepository.
type IdempotencyOption func(*IdempotencyRepository)

// WithIdempotencyClock подменяет источник времени.
func WithIdempotencyClock(now func() time.Time) IdempotencyOption {
	return func(r *IdempotencyRepository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewIdempotencyRepository(opts ...IdempotencyOption) *IdempotencyRepository {
	r := &IdempotencyRepository{
		items: make(map[string]domain.IdempotencyRecord),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateProcessing занимает ключ. Свободным считается отсутствующий, просроченный
// или упавший на временной ошибке ключ с тем же хэшем; занять его может только один вызов.
func (r *IdempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.IdempotencyRecord{}, err
	}
	now := r.now()
	record, err := domain.NewProcessingRecord(key, requestHash, ttlAt, now)
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[record.Key]; ok && !existing.Expired(now) {
		if existing.RequestHash != record.RequestHash || !existing.Reclaimable() {
			return cloneRecord(existing), existing.Conflict(record.RequestHash)
		}
		record.CreatedAt = existing.CreatedAt
	}
	r.items[record.Key] = record
	return cloneRecord(record), nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.IdempotencyRecord{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[key]
	if !ok || record.Expired(r.now()) {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	return cloneRecord(record), nil
}

func (r *IdempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusDone, responseBody, code)
}

func (r *IdempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusFailed, responseBody, code)
}

// DeleteExpired удаляет до limit записей с ttl не позже before, начиная с самых старых.
// limit <= 0 снимает ограничение.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if before.IsZero() {
		before = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]domain.IdempotencyRecord, 0)
	for _, record := range r.items {
		if record.Expired(before) {
			expired = append(expired, record)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].TTLAt.Equal(expired[j].TTLAt) {
			return expired[i].Key < expired[j].Key
		}
		return expired[i].TTLAt.Before(expired[j].TTLAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	for _, record := range expired {
		delete(r.items, record.Key)
	}
	return len(expired), nil
}

// Len возвращает число хранимых записей вместе с просроченными.
func (r *IdempotencyRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *IdempotencyRepository) finish(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, code int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.items[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}
	record.Status = status
	record.ResponseBody = append([]byte(nil), responseBody...)
	record.Code = code
	record.UpdatedAt = r.now().UTC()
	r.items[key] = record
	return nil
}

func cloneRecord(src domain.IdempotencyRecord) domain.IdempotencyRecord {
	dst := src
	dst.ResponseBody = append([]byte(nil), src.ResponseBody...)
	return dst
}
