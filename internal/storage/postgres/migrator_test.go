package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql": {
			Data: []byte("CREATE TABLE test_a (id INT);"),
		},
		"sql/migrations/0001_init.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS test_a;"),
		},
		"sql/migrations/0002_more.up.sql": {
			Data: []byte("CREATE TABLE test_b (id INT);"),
		},
		"sql/migrations/0002_more.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS test_b;"),
		},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "more" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrationsFromFS_MissingDown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql": {
			Data: []byte("CREATE TABLE test_a (id INT);"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_InvalidFilename(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/not_a_migration.sql": {
			Data: []byte("SELECT 1;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for invalid migration file name")
	}
}

func TestLoadMigrationsFromFS_EmptyFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql": {
			Data: []byte("   \n"),
		},
		"sql/migrations/0001_init.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS test;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for empty migration file body")
	}
}

func TestLoadMigrationsFromFS_Embedded(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations must be valid: %v", err)
	}

	wantNames := []string{"reference_data", "stock_and_deliveries", "outbox_and_idempotency"}
	if len(migrations) != len(wantNames) {
		t.Fatalf("expected %d embedded migrations, got %d", len(wantNames), len(migrations))
	}
	for i, m := range migrations {
		if m.Version != int64(i+1) || m.Name != wantNames[i] {
			t.Fatalf("unexpected migration #%d: %d_%s", i, m.Version, m.Name)
		}
	}
	if !strings.Contains(migrations[1].UpSQL, "stock_count >= 0") {
		t.Fatal("stock_lots must forbid negative counts at the schema level")
	}
}

func TestPlanMigrations(t *testing.T) {
	t.Parallel()

	available := []migration{
		{Version: 1, Name: "a"},
		{Version: 2, Name: "b"},
		{Version: 3, Name: "c"},
	}

	tests := []struct {
		name      string
		applied   []int64
		direction migrationDirection
		steps     int
		want      []int64
		wantErr   bool
	}{
		{name: "up all from scratch", direction: migrationUp, want: []int64{1, 2, 3}},
		{name: "up skips applied", applied: []int64{1}, direction: migrationUp, want: []int64{2, 3}},
		{name: "up limited", direction: migrationUp, steps: 2, want: []int64{1, 2}},
		{name: "up nothing left", applied: []int64{1, 2, 3}, direction: migrationUp},
		{name: "down newest first", applied: []int64{1, 2, 3}, direction: migrationDown, steps: 2, want: []int64{3, 2}},
		{name: "down on empty", direction: migrationDown, steps: 1},
		{name: "down unknown version", applied: []int64{1, 9}, direction: migrationDown, steps: 1, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := planMigrations(available, tt.applied, tt.direction, tt.steps)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("planMigrations failed: %v", err)
			}
			if len(plan) != len(tt.want) {
				t.Fatalf("expected plan %v, got %d migrations", tt.want, len(plan))
			}
			for i, m := range plan {
				if m.Version != tt.want[i] {
					t.Fatalf("expected plan %v, got version %d at %d", tt.want, m.Version, i)
				}
			}
		})
	}
}

func TestLoadMigrationsFromFS_DuplicateDirection(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql":   {Data: []byte("SELECT 1;")},
		"sql/migrations/001_init.up.sql":    {Data: []byte("SELECT 2;")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("SELECT 3;")},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil || !strings.Contains(err.Error(), "duplicate up migration") {
		t.Fatalf("expected duplicate migration error, got %v", err)
	}
}

func TestAdvisoryKeyIsStableAndPositive(t *testing.T) {
	t.Parallel()

	if advisoryKey(migrationsTable) != migrationLockKey {
		t.Fatal("advisory key must be deterministic")
	}
	if migrationLockKey <= 0 {
		t.Fatalf("advisory key must be positive, got %d", migrationLockKey)
	}
}
