package domain

import (
	"errors"
	"testing"
	"time"
)

func TestIdempotencyStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status IdempotencyStatus
		want   bool
	}{
		{name: "processing", status: IdempotencyStatusProcessing, want: true},
		{name: "done", status: IdempotencyStatusDone, want: true},
		{name: "failed", status: IdempotencyStatusFailed, want: true},
		{name: "invalid", status: IdempotencyStatus("broken"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.status.Valid(); got != tc.want {
				t.Fatalf("status %q valid=%v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestIdempotencyRecordExpired(t *testing.T) {
	now := time.Now().UTC()
	if (IdempotencyRecord{TTLAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatal("record with future ttl must not be expired")
	}
	if !(IdempotencyRecord{TTLAt: now}).Expired(now) {
		t.Fatal("record with ttl == now must be expired")
	}
}

func TestNewProcessingRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("MSK", 3*3600))

	record, err := NewProcessingRecord("  key-1 ", " hash ", time.Time{}, now)
	if err != nil {
		t.Fatalf("NewProcessingRecord failed: %v", err)
	}
	if record.Key != "key-1" || record.RequestHash != "hash" {
		t.Fatalf("expected trimmed key and hash, got %+v", record)
	}
	if record.Status != IdempotencyStatusProcessing {
		t.Fatalf("expected processing status, got %s", record.Status)
	}
	if !record.TTLAt.Equal(now.Add(DefaultIdempotencyTTL)) || record.TTLAt.Location() != time.UTC {
		t.Fatalf("expected default ttl in UTC, got %s", record.TTLAt)
	}

	if _, err := NewProcessingRecord(" ", "hash", now, now); !errors.Is(err, ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if _, err := NewProcessingRecord("key", "", now, now); !errors.Is(err, ErrIdempotencyRequestHashRequired) {
		t.Fatalf("expected ErrIdempotencyRequestHashRequired, got %v", err)
	}
}

func TestIdempotencyRecordConflict(t *testing.T) {
	record := IdempotencyRecord{RequestHash: "hash-a"}
	if err := record.Conflict("hash-a"); !errors.Is(err, ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("same hash must report existing key, got %v", err)
	}
	if err := record.Conflict("hash-b"); !errors.Is(err, ErrIdempotencyHashMismatch) {
		t.Fatalf("different hash must report mismatch, got %v", err)
	}
}

func TestIdempotencyRecordReclaimable(t *testing.T) {
	tests := []struct {
		name   string
		record IdempotencyRecord
		want   bool
	}{
		{name: "transient failure", record: IdempotencyRecord{Status: IdempotencyStatusFailed, Code: TransientFailureCode}, want: true},
		{name: "aborted", record: IdempotencyRecord{Status: IdempotencyStatusFailed, Code: 10}, want: true},
		{name: "business rejection", record: IdempotencyRecord{Status: IdempotencyStatusFailed, Code: 9}, want: false},
		{name: "rejection without code", record: IdempotencyRecord{Status: IdempotencyStatusFailed}, want: false},
		{name: "done", record: IdempotencyRecord{Status: IdempotencyStatusDone, Code: 14}, want: false},
		{name: "processing", record: IdempotencyRecord{Status: IdempotencyStatusProcessing, Code: 14}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Reclaimable(); got != tt.want {
				t.Fatalf("Reclaimable() = %v, want %v", got, tt.want)
			}
		})
	}

	for _, code := range RetryableFailureCodes() {
		if !IsRetryableFailureCode(code) {
			t.Fatalf("code %d is listed but not retryable", code)
		}
	}
}
