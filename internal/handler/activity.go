package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/profile"
	"github.com/mkarlsen/chorecoin/internal/week"
	"github.com/mkarlsen/chorecoin/internal/websocket"
)

type ActivityHandler struct {
	svc    *profile.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewActivityHandler(svc *profile.Service, hub *websocket.Hub, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, hub: hub, logger: logger}
}

func (h *ActivityHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("activity", action, id, h.svc.ActiveName()))
	}
}

// dateParam reads an optional ?date=YYYY-MM-DD query parameter,
// defaulting to today.
func dateParam(r *http.Request) (time.Time, error) {
	if s := r.URL.Query().Get("date"); s != "" {
		return week.ParseDate(s)
	}
	return week.Date(time.Now()), nil
}

// Week returns the resolved schedule for the week containing ?date.
func (h *ActivityHandler) Week(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}

	view, err := h.svc.Week(date, week.Date(time.Now()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// History returns the dashboard stats for the week containing ?date.
func (h *ActivityHandler) History(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}

	stats, err := h.svc.History(date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string            `json:"name"`
		Recurrence model.Recurrence  `json:"recurrence"`
		Days       []model.DayOfWeek `json:"days"`
		Date       string            `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	for _, d := range req.Days {
		if !model.ValidDay(d) {
			writeErrorMsg(w, http.StatusBadRequest, "unknown day: "+string(d))
			return
		}
	}

	a, err := h.svc.AddActivity(req.Name, req.Recurrence, req.Days, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("created", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

// Toggle flips the completion flag for one date and reports the coin
// delta the ledger applied.
func (h *ActivityHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	date, err := week.ParseDate(req.Date)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid date")
		return
	}

	delta, err := h.svc.ToggleCompletion(id, date)
	if err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeError(w, err)
			return
		}
		h.logger.Error("toggle completion", "activity_id", id, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to toggle completion")
		return
	}

	h.broadcast("toggled", id)
	writeJSON(w, http.StatusOK, map[string]int{"coinDelta": delta})
}

// Override replaces the activity's override record for one week.
func (h *ActivityHandler) Override(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Week string            `json:"week"`
		Name *string           `json:"name"`
		Days []model.DayOfWeek `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	for _, d := range req.Days {
		if !model.ValidDay(d) {
			writeErrorMsg(w, http.StatusBadRequest, "unknown day: "+string(d))
			return
		}
	}

	o := model.ActivityOverride{Name: req.Name, Days: req.Days}
	if err := h.svc.SetWeeklyOverride(id, req.Week, o); err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("overridden", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteWeek hides the activity for one week only.
func (h *ActivityHandler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Week string `json:"week"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.svc.DeleteForWeek(id, req.Week); err != nil {
		writeError(w, err)
		return
	}

	h.broadcast("week_deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
