package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkarlsen/chorecoin/internal/mission"
	"github.com/mkarlsen/chorecoin/internal/profile"
	"github.com/mkarlsen/chorecoin/internal/week"
	"github.com/mkarlsen/chorecoin/internal/websocket"
)

type RewardHandler struct {
	svc    *profile.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewRewardHandler(svc *profile.Service, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{svc: svc, hub: hub, logger: logger}
}

func (h *RewardHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("reward", action, id, h.svc.ActiveName()))
	}
}

type rewardRequest struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// List returns the catalog, redemption history, and coin balance.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Rewards()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	reward, err := h.svc.AddReward(req.Name, req.Cost)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("created", reward.ID)
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.svc.UpdateReward(id, req.Name, req.Cost); err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("updated", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.DeleteReward(id); err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// Redeem exchanges coins for a catalog reward. Insufficient coins are
// rejected before any state changes; unknown ids are 404.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.svc.Redeem(id, week.Date(time.Now()))
	if err != nil {
		if errors.Is(err, mission.ErrInsufficientCoins) || errors.Is(err, profile.ErrNoProfile) {
			writeError(w, err)
			return
		}
		h.logger.Error("redeem reward", "reward_id", id, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to redeem reward")
		return
	}
	if rec == nil {
		writeErrorMsg(w, http.StatusNotFound, "reward not found")
		return
	}

	h.broadcast("redeemed", id)
	writeJSON(w, http.StatusCreated, rec)
}

// ToggleUsed flips the used flag on a redemption record.
func (h *RewardHandler) ToggleUsed(w http.ResponseWriter, r *http.Request) {
	uniqueID := r.PathValue("uniqueId")

	if err := h.svc.ToggleUsed(uniqueID); err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("used_toggled", uniqueID)
	w.WriteHeader(http.StatusNoContent)
}
