package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"oracle/internal/domain"
)

type statusResponse struct {
	Tier             string `json:"tier"`
	TierName         string `json:"tier_name"`
	QuestionsUsed    int    `json:"questions_used"`
	Remaining        *int   `json:"remaining"` // null when unlimited
	CooldownMinutes  int    `json:"cooldown_minutes"`
	MinutesUntilNext int    `json:"minutes_until_next"`
}

// Status serves the read-only status display for a user.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user id is required")
		return
	}

	snap, err := a.Dispatcher.Status(r.Context(), userID, time.Now().UTC())
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("status failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
		return
	}

	resp := statusResponse{
		Tier:             string(snap.TierID),
		TierName:         snap.TierName,
		QuestionsUsed:    snap.QuestionsUsed,
		CooldownMinutes:  snap.CooldownMinutes,
		MinutesUntilNext: snap.MinutesUntilNext,
	}
	if snap.Remaining != domain.QuotaUnlimited {
		remaining := snap.Remaining
		resp.Remaining = &remaining
	}
	a.json(w, http.StatusOK, resp)
}
