package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"oracle/internal/domain"
	"oracle/internal/oracle"
)

type askRequest struct {
	UserID  string `json:"user_id"`
	Persona string `json:"persona"`
	Text    string `json:"text"`
}

type askResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
	Name    string `json:"name,omitempty"`

	Reason           string `json:"reason,omitempty"`
	MinutesRemaining int    `json:"minutes_remaining,omitempty"`

	Text    string `json:"text,omitempty"`
	Persona string `json:"persona,omitempty"`
	Method  string `json:"method,omitempty"`
}

// Ask is the single question entry point for the transport collaborator.
func (a *App) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id and text are required")
		return
	}

	outcome, err := a.Dispatcher.SubmitText(r.Context(), oracle.SubmitRequest{
		UserID:  req.UserID,
		Persona: domain.Persona(req.Persona),
		Text:    req.Text,
		Country: a.country(r),
		Now:     time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPersona) {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown persona")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
		return
	}

	a.json(w, http.StatusOK, toAskResponse(outcome))
}

func toAskResponse(o domain.Outcome) askResponse {
	resp := askResponse{Outcome: string(o.Kind)}
	switch o.Kind {
	case domain.OutcomeSetupPrompt, domain.OutcomeSetupRejected:
		resp.Message = o.Message
	case domain.OutcomeSetupAccepted:
		resp.Name = o.Name
	case domain.OutcomeDenied:
		resp.Reason = string(o.Denial.Reason)
		if o.Denial.Reason == domain.DenyCooldownActive {
			resp.MinutesRemaining = o.Denial.RemainingMinutes()
		}
	case domain.OutcomeAnswered:
		resp.Text = o.Answer.Text
		resp.Persona = string(o.Answer.Persona)
		resp.Method = string(o.Answer.Method)
	}
	return resp
}
