// Package store persists profiles as whole-snapshot JSON records in a
// key-value table. Keys follow the <profile>:childInfo and
// <profile>:activities convention; every write replaces the full
// record, never patches it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkarlsen/chorecoin/internal/model"
)

const (
	childInfoSuffix  = ":childInfo"
	activitiesSuffix = ":activities"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) get(key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *ProfileStore) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// GetChildInfo loads a profile's child record. Returns nil when absent.
func (s *ProfileStore) GetChildInfo(name string) (*model.ChildInfo, error) {
	var info model.ChildInfo
	ok, err := s.get(name+childInfoSuffix, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

func (s *ProfileStore) PutChildInfo(name string, info *model.ChildInfo) error {
	return s.put(name+childInfoSuffix, info)
}

// GetActivities loads a profile's activity list. Absent means empty.
func (s *ProfileStore) GetActivities(name string) ([]model.Activity, error) {
	var activities []model.Activity
	ok, err := s.get(name+activitiesSuffix, &activities)
	if err != nil {
		return nil, err
	}
	if !ok || activities == nil {
		return []model.Activity{}, nil
	}
	return activities, nil
}

func (s *ProfileStore) PutActivities(name string, activities []model.Activity) error {
	if activities == nil {
		activities = []model.Activity{}
	}
	return s.put(name+activitiesSuffix, activities)
}

// Delete removes both of a profile's records.
func (s *ProfileStore) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM records WHERE key IN (?, ?)`,
		name+childInfoSuffix, name+activitiesSuffix)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	return nil
}

// ListProfileNames returns every stored profile name, derived from the
// childInfo keys.
func (s *ProfileStore) ListProfileNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM records WHERE key LIKE ? ORDER BY key ASC`,
		"%"+childInfoSuffix)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan profile key: %w", err)
		}
		names = append(names, strings.TrimSuffix(key, childInfoSuffix))
	}
	return names, rows.Err()
}

// NameExists reports whether a profile with the given name exists,
// compared case-insensitively. A non-empty excluding name is skipped so
// a profile can rename to a different casing of itself.
func (s *ProfileStore) NameExists(name, excluding string) (bool, error) {
	names, err := s.ListProfileNames()
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(name)
	for _, n := range names {
		if excluding != "" && strings.EqualFold(n, excluding) {
			continue
		}
		if strings.ToLower(n) == lower {
			return true, nil
		}
	}
	return false, nil
}

// Rename moves both profile records to keys under the new name in one
// transaction: read old, write new, delete old. The caller is
// responsible for the collision check and for rewriting the child
// record's embedded name afterwards.
func (s *ProfileStore) Rename(oldName, newName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	for _, suffix := range []string{childInfoSuffix, activitiesSuffix} {
		var raw string
		err := tx.QueryRow(`SELECT value FROM records WHERE key = ?`, oldName+suffix).Scan(&raw)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s%s: %w", oldName, suffix, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			newName+suffix, raw,
		); err != nil {
			return fmt.Errorf("write %s%s: %w", newName, suffix, err)
		}
		if _, err := tx.Exec(`DELETE FROM records WHERE key = ?`, oldName+suffix); err != nil {
			return fmt.Errorf("delete %s%s: %w", oldName, suffix, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rename: %w", err)
	}
	return nil
}
