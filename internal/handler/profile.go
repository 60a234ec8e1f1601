package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkarlsen/chorecoin/internal/profile"
	"github.com/mkarlsen/chorecoin/internal/websocket"
)

type ProfileHandler struct {
	svc    *profile.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewProfileHandler(svc *profile.Service, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, hub: hub, logger: logger}
}

func (h *ProfileHandler) broadcast(entity, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, id, h.svc.ActiveName()))
	}
}

// List returns every profile name on the device.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListNames()
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": names,
		"active":   h.svc.ActiveName(),
	})
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Age  string `json:"age"`
		PIN  string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.svc.Create(req.Name, req.Age, req.PIN); err != nil {
		if errors.Is(err, profile.ErrNameRequired) || errors.Is(err, profile.ErrDuplicateName) {
			writeError(w, err)
			return
		}
		h.logger.Error("create profile", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	h.broadcast("profile", "created", req.Name)

	agent, err := h.svc.Agent()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

// Select switches the active profile, verifying the PIN when set.
func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		PIN  string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.svc.Select(req.Name, req.PIN); err != nil {
		if errors.Is(err, profile.ErrWrongPIN) {
			writeError(w, err)
			return
		}
		h.logger.Error("select profile", "profile", req.Name, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to select profile")
		return
	}

	agent, err := h.svc.Agent()
	if err != nil {
		// A profile with no stored child record yet.
		writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// Get returns the active profile's summary.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	agent, err := h.svc.Agent()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// Update edits the active profile's name and age; a name change moves
// the stored records atomically.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Age  string `json:"age"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.svc.UpdateAgent(req.Name, req.Age); err != nil {
		if errors.Is(err, profile.ErrNameRequired) ||
			errors.Is(err, profile.ErrDuplicateName) ||
			errors.Is(err, profile.ErrNoProfile) {
			writeError(w, err)
			return
		}
		h.logger.Error("update profile", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.broadcast("profile", "updated", h.svc.ActiveName())

	agent, err := h.svc.Agent()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// Delete removes the active profile and all of its data.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := h.svc.ActiveName()

	if err := h.svc.DeleteActive(); err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeError(w, err)
			return
		}
		h.logger.Error("delete profile", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("profile", "deleted", name, name))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the active session.
func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// ImportLegacy repairs redemption records from pre-uniqueId exports.
func (h *ProfileHandler) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.svc.ImportLegacy()
	if err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeError(w, err)
			return
		}
		h.logger.Error("import legacy data", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to import legacy data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}
