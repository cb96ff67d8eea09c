package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	first, err := repo.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateTypeDelivery,
		AggregateID:   "delivery-1",
		EventType:     domain.EventTypeDeliveryShipped,
		Payload:       []byte(`{"delivery_order_id":"delivery-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	second, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateID: "delivery-2"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	pending, err := repo.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("expected messages in enqueue order, got %s, %s", pending[0].ID, pending[1].ID)
	}

	limited, err := repo.PullPending(ctx, 1)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to be applied, got %d", len(limited))
	}
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	saved, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: domain.AggregateTypeDelivery})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(ctx, saved.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	if len(repo.AllPending()) != 0 {
		t.Fatal("expected no pending messages after MarkSent")
	}

	if err := repo.MarkFailed(ctx, saved.ID); !errors.Is(err, domain.ErrOutboxMessageNotFound) {
		t.Fatalf("sent event must not be resolved again, got %v", err)
	}

	if err := repo.MarkFailed(ctx, "missing"); !errors.Is(err, domain.ErrOutboxMessageNotFound) {
		t.Fatalf("expected ErrOutboxMessageNotFound for missing record, got %v", err)
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 || !stats.OldestPendingAt.IsZero() {
		t.Fatalf("expected empty stats, got %+v", stats)
	}

	if _, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateID: "delivery-1"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	stats, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp")
	}
}
