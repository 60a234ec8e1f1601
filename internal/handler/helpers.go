package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarlsen/chorecoin/internal/mission"
	"github.com/mkarlsen/chorecoin/internal/profile"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps the core's error taxonomy onto HTTP statuses:
// validation failures are 400, name collisions 409, PIN failures 403,
// and everything else a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mission.ErrNameRequired),
		errors.Is(err, mission.ErrDaysRequired),
		errors.Is(err, mission.ErrDateRequired),
		errors.Is(err, mission.ErrCostInvalid),
		errors.Is(err, mission.ErrInsufficientCoins),
		errors.Is(err, profile.ErrNameRequired):
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrDuplicateName):
		writeErrorMsg(w, http.StatusConflict, err.Error())
	case errors.Is(err, profile.ErrWrongPIN):
		writeErrorMsg(w, http.StatusForbidden, err.Error())
	case errors.Is(err, profile.ErrNoProfile):
		writeErrorMsg(w, http.StatusConflict, err.Error())
	default:
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}
