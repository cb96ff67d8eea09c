package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

const (
	outboxPending = "pending"
	outboxSent    = "sent"
	outboxFailed  = "failed"

	defaultOutboxPullLimit = 100
)

// outboxRepository пишет события и в пул, и в транзакцию отгрузки: querier подходит обоим.
type outboxRepository struct {
	q   querier
	now func() time.Time
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository поверх пула Store.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return newOutboxRepository(store.DB())
}

func newOutboxRepository(q querier) *outboxRepository {
	return &outboxRepository{q: q, now: time.Now}
}

// Enqueue сохраняет событие в статусе pending; пустой ID заменяется UUID, пустой payload на "{}".
func (r *outboxRepository) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if len(msg.Payload) == 0 {
		msg.Payload = []byte("{}")
	}
	now := r.now().UTC()

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, outboxPending, now,
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue %s event for %s: %w", msg.EventType, msg.AggregateID, err)
	}
	return msg, nil
}

// PullPending возвращает до limit событий в порядке записи.
func (r *outboxRepository) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultOutboxPullLimit
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2`, outboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pull pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_at) FROM outbox_messages WHERE status = $1`, outboxPending,
	).Scan(&stats.PendingCount, &oldest)
	if err != nil {
		return domain.OutboxStats{}, fmt.Errorf("outbox backlog stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}
	return stats, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.resolve(ctx, id, outboxSent)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.resolve(ctx, id, outboxFailed)
}

// resolve переводит pending-событие в конечный статус.
// Повторная отметка того же события возвращает domain.ErrOutboxMessageNotFound.
func (r *outboxRepository) resolve(ctx context.Context, id, status string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE outbox_messages
		SET status = $2, attempt_count = attempt_count + 1, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, status, r.now().UTC(), outboxPending,
	)
	if err != nil {
		return fmt.Errorf("mark outbox event %s %s: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outbox event %s %s: %w", id, status, err)
	}
	if n == 0 {
		return fmt.Errorf("mark outbox event %s %s: %w", id, status, domain.ErrOutboxMessageNotFound)
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
