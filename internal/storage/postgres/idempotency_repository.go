package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const idempotencyColumns = `key, request_hash, response_body, response_code, status, ttl_at, created_at, updated_at`

// claimIdempotencyKey вставляет ключ либо перезанимает просроченный или упавший
// на временной ошибке с тем же хэшем. RETURNING пуст, если ключ занят.
// Условие проверяется под блокировкой строки, поэтому ключ занимает ровно один вызов.
var claimIdempotencyKey = `
	INSERT INTO idempotency_keys (` + idempotencyColumns + `)
	VALUES ($1, $2, NULL, NULL, $3, $4, $5, $5)
	ON CONFLICT (key) DO UPDATE
	SET request_hash  = EXCLUDED.request_hash,
	    response_body = NULL,
	    response_code = NULL,
	    status        = EXCLUDED.status,
	    ttl_at        = EXCLUDED.ttl_at,
	    created_at    = CASE WHEN idempotency_keys.ttl_at <= EXCLUDED.created_at
	                         THEN EXCLUDED.created_at ELSE idempotency_keys.created_at END,
	    updated_at    = EXCLUDED.updated_at
	WHERE idempotency_keys.ttl_at <= EXCLUDED.created_at
	   OR (idempotency_keys.status = 'failed'
	       AND idempotency_keys.request_hash = EXCLUDED.request_hash
	       AND idempotency_keys.response_code IN (` + retryableCodesSQL() + `))
	RETURNING key`

func retryableCodesSQL() string {
	codes := domain.RetryableFailureCodes()
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(code)
	}
	return strings.Join(parts, ", ")
}

type idempotencyRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewIdempotencyRepository создаёт PostgreSQL-реализацию IdempotencyRepository.
// Просроченные ключи не видны через Get и освобождаются при повторном CreateProcessing.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return &idempotencyRepository{db: store.DB(), now: time.Now}
}

func (r *idempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	record, err := domain.NewProcessingRecord(key, requestHash, ttlAt, r.now())
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var claimed string
	err = r.db.QueryRowContext(ctx, claimIdempotencyKey,
		record.Key,
		record.RequestHash,
		string(record.Status),
		record.TTLAt,
		record.CreatedAt,
	).Scan(&claimed)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		existing, getErr := r.Get(ctx, record.Key)
		if getErr != nil {
			// Запись успела истечь или удалиться между запросами; вызывающий повторит.
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
		}
		return existing, existing.Conflict(record.RequestHash)
	default:
		return domain.IdempotencyRecord{}, fmt.Errorf("claim idempotency key %s: %w", record.Key, err)
	}
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+idempotencyColumns+` FROM idempotency_keys WHERE key = $1 AND ttl_at > $2`,
		key, r.now().UTC())
	record, err := scanIdempotencyRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency key %s: %w", key, err)
	}
	return record, nil
}

func (r *idempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusDone, responseBody, code)
}

func (r *idempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, code int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusFailed, responseBody, code)
}

// DeleteExpired удаляет до limit просроченных ключей, начиная с самых старых; limit <= 0 снимает ограничение.
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = r.now().UTC()
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	query, args := `DELETE FROM idempotency_keys WHERE ttl_at <= $1`, []any{before}
	if limit > 0 {
		query = `
			DELETE FROM idempotency_keys
			WHERE key IN (
				SELECT key FROM idempotency_keys
				WHERE ttl_at <= $1
				ORDER BY ttl_at
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)`
		args = append(args, limit)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency keys: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency keys: %w", err)
	}
	return int(n), nil
}

func (r *idempotencyRepository) finish(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, code int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE idempotency_keys
		SET status = $2, response_body = $3, response_code = $4, updated_at = $5
		WHERE key = $1`,
		key, string(status), responseBody, code, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark idempotency key %s %s: %w", key, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark idempotency key %s %s: %w", key, status, err)
	}
	if n == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}
	return nil
}

func scanIdempotencyRecord(row *sql.Row) (domain.IdempotencyRecord, error) {
	var (
		record domain.IdempotencyRecord
		status string
		body   []byte
		code   sql.NullInt64
	)
	if err := row.Scan(
		&record.Key,
		&record.RequestHash,
		&body,
		&code,
		&status,
		&record.TTLAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return domain.IdempotencyRecord{}, err
	}

	record.Status = domain.IdempotencyStatus(status)
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("unknown idempotency status %q", status)
	}
	record.ResponseBody = append([]byte(nil), body...)
	record.Code = int(code.Int64)
	record.TTLAt = record.TTLAt.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
