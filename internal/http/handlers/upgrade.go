package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"oracle/internal/domain"
)

type upgradeRequest struct {
	TierID    string    `json:"tier_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Upgrade is the payment collaborator's confirmation hook: it applies an
// already-paid tier purchase to the user.
func (a *App) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user id is required")
		return
	}
	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	err := a.Dispatcher.ConfirmUpgrade(r.Context(), userID, domain.TierID(req.TierID), req.ExpiresAt, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTier) {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown tier")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("upgrade failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"status": "upgraded", "tier_id": req.TierID})
}
