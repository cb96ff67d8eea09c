package domain

import (
	"strings"
	"time"
)

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing: отгрузка по ключу ещё выполняется.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusDone: отгрузка проведена, ответ сохранён для повтора.
	IdempotencyStatusDone IdempotencyStatus = "done"
	// IdempotencyStatusFailed: отгрузка отклонена, сохранена ошибка.
	IdempotencyStatusFailed IdempotencyStatus = "failed"
)

// IdempotencyRecord хранит результат обработки запроса с idempotency-key.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseBody []byte
	// Code — gRPC-код завершённого запроса.
	Code      int
	Status    IdempotencyStatus
	TTLAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}

// Expired сообщает, истёк ли срок хранения записи к моменту now.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !r.TTLAt.After(now)
}

// Коды gRPC, после которых ключ можно занять повторно:
// Canceled, DeadlineExceeded, Aborted, Internal, Unavailable.
const (
	codeCanceled         = 1
	codeDeadlineExceeded = 4
	codeAborted          = 10
	codeInternal         = 13
	codeUnavailable      = 14
)

// TransientFailureCode помечает ключ, обработка которого упала на временной ошибке
// вне gRPC (например, в consumer Kafka).
const TransientFailureCode = codeUnavailable

// RetryableFailureCodes возвращает коды временных отказов по возрастанию.
// Хранилища используют список, чтобы занимать такие ключи атомарно.
func RetryableFailureCodes() []int {
	return []int{codeCanceled, codeDeadlineExceeded, codeAborted, codeInternal, codeUnavailable}
}

// IsRetryableFailureCode сообщает, относится ли code к временным отказам.
func IsRetryableFailureCode(code int) bool {
	switch code {
	case codeCanceled, codeDeadlineExceeded, codeAborted, codeInternal, codeUnavailable:
		return true
	default:
		return false
	}
}

// Reclaimable: запись в статусе failed с временным кодом может быть занята новой попыткой.
func (r IdempotencyRecord) Reclaimable() bool {
	return r.Status == IdempotencyStatusFailed && IsRetryableFailureCode(r.Code)
}

// DefaultIdempotencyTTL — срок хранения ключа, если вызывающий его не задал.
const DefaultIdempotencyTTL = 24 * time.Hour

// NewProcessingRecord проверяет ключ и хэш запроса и собирает запись в статусе processing.
// Нулевой ttlAt заменяется на now + DefaultIdempotencyTTL.
func NewProcessingRecord(key, requestHash string, ttlAt, now time.Time) (IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)
	if key == "" {
		return IdempotencyRecord{}, ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return IdempotencyRecord{}, ErrIdempotencyRequestHashRequired
	}

	now = now.UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(DefaultIdempotencyTTL)
	}
	return IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      IdempotencyStatusProcessing,
		TTLAt:       ttlAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Conflict возвращает ошибку повторного использования ключа существующей записью:
// ErrIdempotencyHashMismatch для другого запроса и ErrIdempotencyKeyAlreadyExists для того же.
func (r IdempotencyRecord) Conflict(requestHash string) error {
	if r.RequestHash != requestHash {
		return ErrIdempotencyHashMismatch
	}
	return ErrIdempotencyKeyAlreadyExists
}
