package model

import "time"

type SnapshotStatus string

const (
	SnapshotStatusPending   SnapshotStatus = "pending"
	SnapshotStatusUploading SnapshotStatus = "uploading"
	SnapshotStatusCompleted SnapshotStatus = "completed"
	SnapshotStatusFailed    SnapshotStatus = "failed"
)

// Snapshot is one encrypted copy of the database uploaded to off-device
// storage. Every profile on the device is captured together.
type Snapshot struct {
	ID           int64          `json:"id"`
	Filename     string         `json:"filename"`
	ObjectKey    string         `json:"objectKey"`
	SizeBytes    int64          `json:"sizeBytes"`
	Status       SnapshotStatus `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
