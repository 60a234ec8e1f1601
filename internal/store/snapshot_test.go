package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mkarlsen/chorecoin/internal/database"
	"github.com/mkarlsen/chorecoin/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotLifecycle(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	created, err := s.Create("snapshot-a.db.enc", "snapshot-a.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.SnapshotStatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}

	if err := s.UpdateStatus(created.ID, model.SnapshotStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := s.UpdateCompleted(created.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("snapshot not found")
	}
	if got.Status != model.SnapshotStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestSnapshotGetMissing(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestSnapshotFailureRecordsError(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	created, err := s.Create("snapshot-b.db.enc", "snapshot-b.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateStatus(created.ID, model.SnapshotStatusFailed, "upload timed out"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ := s.GetByID(created.ID)
	if got.Status != model.SnapshotStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorMessage != "upload timed out" {
		t.Errorf("error = %q", got.ErrorMessage)
	}
}

func TestSnapshotListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	first, _ := s.Create("snapshot-1.db.enc", "snapshot-1.db.enc")
	second, _ := s.Create("snapshot-2.db.enc", "snapshot-2.db.enc")

	list, err := s.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = [%d %d], want newest first", list[0].ID, list[1].ID)
	}
}

func TestSnapshotLatestCompleted(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	if got, err := s.LatestCompleted(); err != nil || got != nil {
		t.Fatalf("empty table: got %+v, %v", got, err)
	}

	a, _ := s.Create("a.enc", "a.enc")
	b, _ := s.Create("b.enc", "b.enc")
	s.UpdateCompleted(a.ID, 100)
	s.UpdateStatus(b.ID, model.SnapshotStatusFailed, "boom")

	got, err := s.LatestCompleted()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Errorf("latest = %+v, want id %d", got, a.ID)
	}
}

func TestSnapshotDeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	s := NewSnapshotStore(db)

	old, _ := s.Create("old.enc", "old.enc")
	recent, _ := s.Create("recent.enc", "recent.enc")

	if _, err := db.Exec(`UPDATE snapshots SET created_at = ? WHERE id = ?`,
		time.Now().UTC().AddDate(0, 0, -60), old.ID); err != nil {
		t.Fatal(err)
	}

	keys, err := s.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "old.enc" {
		t.Errorf("keys = %v, want [old.enc]", keys)
	}

	if got, _ := s.GetByID(old.ID); got != nil {
		t.Error("old snapshot still present")
	}
	if got, _ := s.GetByID(recent.ID); got == nil {
		t.Error("recent snapshot deleted")
	}
}
