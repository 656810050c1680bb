package audit

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the write_audit schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	// Create the write_audit table (matches migration)
	schema := `
		CREATE TABLE write_audit (
			id          TEXT PRIMARY KEY,
			occurred_at TEXT NOT NULL,
			universe    INTEGER NOT NULL,
			uid         TEXT NOT NULL,
			section     TEXT NOT NULL,
			params      TEXT NOT NULL DEFAULT '{}',
			error       TEXT NOT NULL DEFAULT ''
		);`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordWriteAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	repo.RecordWrite(ctx, 1, "7a70:00000001", "device_label",
		map[string]string{"label": "Stage Left"}, "")
	repo.RecordWrite(ctx, 1, "7a70:00000001", "dmx_address",
		map[string]string{"address": "101"}, "")
	repo.RecordWrite(ctx, 2, "7a70:00000002", "device_label",
		map[string]string{"label": "FOH"}, "rdm: request nacked: write protect")

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if len(result.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(result.Records))
	}

	var failures int
	for _, r := range result.Records {
		if !r.Succeeded() {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failed writes = %d, want 1", failures)
	}
}

func TestListFilterByUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	repo.RecordWrite(ctx, 1, "7a70:00000001", "device_label", nil, "")
	repo.RecordWrite(ctx, 1, "7a70:00000002", "device_label", nil, "")

	result, err := repo.List(ctx, Filter{UID: "7a70:00000002"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if result.Records[0].UID != "7a70:00000002" {
		t.Errorf("uid = %q, want 7a70:00000002", result.Records[0].UID)
	}
}

func TestListFilterBySection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	repo.RecordWrite(ctx, 1, "7a70:00000001", "device_label", nil, "")
	repo.RecordWrite(ctx, 1, "7a70:00000001", "identify_device",
		map[string]string{"identify": "1"}, "")

	result, err := repo.List(ctx, Filter{Section: "identify_device"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if got := result.Records[0].Params["identify"]; got != "1" {
		t.Errorf("params[identify] = %q, want 1", got)
	}
}

func TestListClampsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	result, err := repo.List(ctx, Filter{Limit: 9999, Offset: -3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Limit != 200 {
		t.Errorf("limit = %d, want 200", result.Limit)
	}
	if result.Offset != 0 {
		t.Errorf("offset = %d, want 0", result.Offset)
	}
	if result.Records == nil {
		t.Error("records should be an empty slice, not nil")
	}
}

func TestRecordWriteInsertFailureHitsCallback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	var gotErr error
	repo.SetOnError(func(err error) { gotErr = err })

	db.Close()
	repo.RecordWrite(context.Background(), 1, "7a70:00000001", "device_label", nil, "")

	if gotErr == nil {
		t.Fatal("expected insert error after db close")
	}
}
