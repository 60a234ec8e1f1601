package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkarlsen/chorecoin/internal/backup"
	"github.com/mkarlsen/chorecoin/internal/model"
)

// SnapshotHandler exposes the encrypted snapshot manager over HTTP.
type SnapshotHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewSnapshotHandler(manager *backup.Manager, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{manager: manager, logger: logger}
}

func (h *SnapshotHandler) snapshotID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot id")
	}
	return id, nil
}

// List returns recent snapshots plus the manager status.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.manager.List(50)
	if err != nil {
		h.logger.Error("list snapshots", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if snapshots == nil {
		snapshots = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshots": snapshots,
		"status":    h.manager.Status(),
	})
}

// Status returns the current manager state.
func (h *SnapshotHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// RunNow takes a snapshot immediately.
func (h *SnapshotHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeErrorMsg(w, http.StatusConflict, "snapshots are not configured")
		return
	}

	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run snapshot", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Download streams the encrypted snapshot file.
func (h *SnapshotHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := h.snapshotID(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Warn("download snapshot", "id", id, "error", err)
		writeErrorMsg(w, http.StatusNotFound, "snapshot not available")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=snapshot-%d.db.enc", id))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream snapshot", "id", id, "error", err)
	}
}

// Restore replaces the live database with a snapshot. On success the
// process exits so it can be restarted on the restored data.
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := h.snapshotID(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.manager.Restore(r.Context(), id); err != nil {
		h.logger.Error("restore snapshot", "id", id, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "restore failed")
		return
	}
	// Unreachable on success; Restore exits the process.
	w.WriteHeader(http.StatusNoContent)
}
