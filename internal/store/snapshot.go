package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
)

// SnapshotStore tracks encrypted database snapshots uploaded to
// off-device storage.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Create(filename, objectKey string) (*model.Snapshot, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO snapshots (filename, object_key, status, started_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		filename, objectKey, model.SnapshotStatusPending, now, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	id, _ := result.LastInsertId()
	return &model.Snapshot{
		ID:        id,
		Filename:  filename,
		ObjectKey: objectKey,
		Status:    model.SnapshotStatusPending,
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SnapshotStore) scanRow(row interface{ Scan(...any) error }) (*model.Snapshot, error) {
	b := &model.Snapshot{}
	var errMsg sql.NullString
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&b.ID, &b.Filename, &b.ObjectKey, &b.SizeBytes, &b.Status,
		&errMsg, &startedAt, &completedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.ErrorMessage = errMsg.String
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return b, nil
}

const snapshotColumns = `id, filename, object_key, size_bytes, status, error_message, started_at, completed_at, created_at, updated_at`

func (s *SnapshotStore) GetByID(id int64) (*model.Snapshot, error) {
	b, err := s.scanRow(s.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return b, nil
}

func (s *SnapshotStore) List(limit int) ([]model.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		b, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *b)
	}
	return snapshots, rows.Err()
}

func (s *SnapshotStore) UpdateStatus(id int64, status model.SnapshotStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.Exec(
		`UPDATE snapshots SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, errPtr, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot status: %w", err)
	}
	return nil
}

func (s *SnapshotStore) UpdateCompleted(id, sizeBytes int64) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE snapshots SET status = ?, size_bytes = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		model.SnapshotStatusCompleted, sizeBytes, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("update snapshot completed: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LatestCompleted() (*model.Snapshot, error) {
	b, err := s.scanRow(s.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE status = ? ORDER BY completed_at DESC LIMIT 1`,
		model.SnapshotStatusCompleted,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed snapshot: %w", err)
	}
	return b, nil
}

// DeleteOlderThan removes snapshot records older than the given time and
// returns the object keys so the caller can delete the uploads too.
func (s *SnapshotStore) DeleteOlderThan(before time.Time) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT object_key FROM snapshots WHERE created_at < ?`, before,
	)
	if err != nil {
		return nil, fmt.Errorf("select old snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan object key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE created_at < ?`, before); err != nil {
		return nil, fmt.Errorf("delete old snapshots: %w", err)
	}
	return keys, nil
}
