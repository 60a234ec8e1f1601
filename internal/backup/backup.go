// Package backup uploads encrypted snapshots of the database to
// S3-compatible storage and can restore the device from one.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds snapshot manager configuration. Snapshots are disabled
// unless both the S3 credentials and a passphrase are set.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	ScheduleHour  int
	RetentionDays int
}

// State represents the snapshot manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current snapshot manager status.
type Status struct {
	State        State      `json:"state"`
	LastSnapshot *time.Time `json:"lastSnapshot,omitempty"`
	Error        string     `json:"error,omitempty"`
	InProgress   bool       `json:"inProgress"`
}

// StatusCallback is called whenever the snapshot state changes.
type StatusCallback func(Status)

// Manager runs scheduled and on-demand encrypted snapshots.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	db        *sql.DB
	snapshots *store.SnapshotStore
	client    s3Client

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a snapshot manager. The callback may be nil.
func NewManager(cfg Config, db *sql.DB, snapshots *store.SnapshotStore, logger *slog.Logger, callback StatusCallback) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:       cfg,
		db:        db,
		snapshots: snapshots,
		logger:    logger,
		callback:  callback,
		status:    Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether snapshots are configured.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled snapshot loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the snapshot manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current snapshot status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) checkSchedule(ctx context.Context) {
	now := time.Now().UTC()
	if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
		return
	}

	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled snapshot failed", "error", err)
	}

	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("snapshot cleanup failed", "error", err)
	}
}

// RunNow takes a snapshot immediately. A fresh salt is generated per
// snapshot; restores read it back from the file header.
func (m *Manager) RunNow(ctx context.Context) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return 0, fmt.Errorf("snapshots not configured")
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("snapshot-%s.db.enc", timestamp)

	record, err := m.snapshots.Create(filename, filename)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("create snapshot record: %w", err)
	}

	m.snapshots.UpdateStatus(record.ID, model.SnapshotStatusUploading, "")

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("chorecoin-snapshot-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("chorecoin-snapshot-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	fail := func(err error, op string) (int64, error) {
		m.snapshots.UpdateStatus(record.ID, model.SnapshotStatusFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// Checkpoint WAL and copy the database file
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail(err, "wal checkpoint")
	}

	if err := copyFile(m.cfg.DBPath, dbCopy); err != nil {
		return fail(err, "copy database")
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail(err, "generate salt")
	}
	if err := EncryptFile(dbCopy, encFile, m.cfg.Passphrase, salt); err != nil {
		return fail(err, "encrypt")
	}

	encData, err := os.Open(encFile)
	if err != nil {
		return fail(err, "open encrypted file")
	}
	defer encData.Close()

	stat, _ := encData.Stat()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(record.ObjectKey),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return fail(err, "upload to s3")
	}

	m.snapshots.UpdateCompleted(record.ID, stat.Size())

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastSnapshot: &now})

	return record.ID, nil
}

// Restore downloads a snapshot, decrypts it, validates it, replaces the
// database file, and exits so the process manager restarts on the
// restored data.
func (m *Manager) Restore(ctx context.Context, snapshotID int64) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("snapshots not configured")
	}

	record, err := m.snapshots.GetByID(snapshotID)
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}
	if record == nil {
		return fmt.Errorf("snapshot not found")
	}

	tmpDir := os.TempDir()
	encFile := filepath.Join(tmpDir, fmt.Sprintf("chorecoin-restore-%d.db.enc", snapshotID))
	decFile := filepath.Join(tmpDir, fmt.Sprintf("chorecoin-restore-%d.db", snapshotID))
	defer os.Remove(encFile)
	defer os.Remove(decFile)

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	outFile, err := os.Create(encFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(outFile, result.Body); err != nil {
		outFile.Close()
		return fmt.Errorf("write downloaded file: %w", err)
	}
	outFile.Close()

	if err := DecryptFile(encFile, decFile, m.cfg.Passphrase); err != nil {
		return fmt.Errorf("decrypt snapshot: %w", err)
	}

	// Validate SQLite integrity before touching the live file
	tmpDB, err := sql.Open("sqlite", decFile)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	var integrity string
	if err := tmpDB.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		tmpDB.Close()
		return fmt.Errorf("integrity check: %w", err)
	}
	tmpDB.Close()
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}

	if err := copyFile(decFile, m.cfg.DBPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}

	os.Remove(m.cfg.DBPath + "-wal")
	os.Remove(m.cfg.DBPath + "-shm")

	m.logger.Info("restore complete, exiting for restart")
	os.Exit(0)
	return nil // unreachable
}

// Download streams an encrypted snapshot from storage.
func (m *Manager) Download(ctx context.Context, snapshotID int64) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, 0, fmt.Errorf("snapshots not configured")
	}

	record, err := m.snapshots.GetByID(snapshotID)
	if err != nil {
		return nil, 0, fmt.Errorf("get snapshot: %w", err)
	}
	if record == nil {
		return nil, 0, fmt.Errorf("snapshot not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record.SizeBytes, nil
}

// List returns the most recent snapshot records.
func (m *Manager) List(limit int) ([]model.Snapshot, error) {
	return m.snapshots.List(limit)
}

// Cleanup deletes snapshots past the retention period.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retention)
	keys, err := m.snapshots.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old snapshots: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("failed to delete stored snapshot", "key", key, "error", err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
