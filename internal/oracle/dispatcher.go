package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"oracle/internal/domain"
)

// Dispatcher orchestrates one submitted message end-to-end: profile setup gate,
// entitlement check, response generation, atomic usage commit, audit logging.
// It is the only entry point the transport layer talks to.
type Dispatcher struct {
	engine     *Engine
	responder  *Responder
	store      domain.EntitlementStore
	qlog       domain.QuestionLog
	genTimeout time.Duration
	logTimeout time.Duration
	logger     zerolog.Logger
}

// SubmitRequest is one incoming message from the transport layer.
type SubmitRequest struct {
	UserID  string
	Persona domain.Persona
	Text    string
	// Country optionally records where the request came from, audit-only.
	Country string
	Now     time.Time
}

const (
	defaultGenerateTimeout = 10 * time.Second
	defaultLogTimeout      = 5 * time.Second
)

// NewDispatcher wires the request pipeline.
func NewDispatcher(engine *Engine, responder *Responder, store domain.EntitlementStore, qlog domain.QuestionLog, genTimeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if genTimeout <= 0 {
		genTimeout = defaultGenerateTimeout
	}
	return &Dispatcher{
		engine:     engine,
		responder:  responder,
		store:      store,
		qlog:       qlog,
		genTimeout: genTimeout,
		logTimeout: defaultLogTimeout,
		logger:     logger,
	}
}

// SubmitText handles one message. Until the user's profile is complete, every
// message routes into the setup flow regardless of content; afterwards the
// message is treated as a question.
func (d *Dispatcher) SubmitText(ctx context.Context, req SubmitRequest) (domain.Outcome, error) {
	if !req.Persona.Valid() {
		return domain.Outcome{}, domain.ErrUnknownPersona
	}

	ent, err := d.engine.Load(ctx, req.UserID, req.Now)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ent.SetupComplete {
		return d.handleSetup(ctx, ent, req)
	}

	decision, err := d.engine.Check(ctx, req.UserID, req.Now)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !decision.Allowed {
		return deniedOutcome(decision), nil
	}

	genCtx, cancel := withDeadline(ctx, d.genTimeout)
	result, err := d.responder.Generate(genCtx, req.Persona, req.Text, Profile{
		Name:      ent.ProfileName,
		BirthDate: derefTime(ent.ProfileBirthDate),
	})
	cancel()
	if err != nil {
		// Generation only errors on misconfiguration; no usage is consumed.
		return domain.Outcome{}, fmt.Errorf("generate response: %w", err)
	}

	ok, err := d.engine.Commit(ctx, req.UserID, req.Now)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		// A racing request took the last slot between check and commit. The
		// generated text is discarded; nothing was consumed for it.
		decision, err := d.engine.Check(ctx, req.UserID, req.Now)
		if err != nil {
			return domain.Outcome{}, err
		}
		if decision.Allowed {
			decision = domain.DenyQuota()
		}
		return deniedOutcome(decision), nil
	}

	d.appendLog(req, ent.TierID, result)

	return domain.Outcome{
		Kind: domain.OutcomeAnswered,
		Answer: &domain.Answer{
			Text:    result.Text,
			Persona: req.Persona,
			Method:  result.Method,
		},
	}, nil
}

func (d *Dispatcher) handleSetup(ctx context.Context, ent *domain.Entitlement, req SubmitRequest) (domain.Outcome, error) {
	if !LooksLikeProfile(req.Text) {
		return domain.Outcome{
			Kind: domain.OutcomeSetupPrompt,
			Message: fmt.Sprintf(
				"%s awaits your essence. Share your first name and birth date, e.g. 'Maria 15/03/1990'.",
				req.Persona.DisplayName(),
			),
		}, nil
	}

	profile, err := ParseProfile(req.Text, req.Now)
	if err != nil {
		if ve, ok := domain.AsValidation(err); ok {
			return domain.Outcome{Kind: domain.OutcomeSetupRejected, Message: ve.Reason}, nil
		}
		return domain.Outcome{}, err
	}

	birth := profile.BirthDate
	ent.ProfileName = profile.Name
	ent.ProfileBirthDate = &birth
	ent.SetupComplete = true
	ent.UpdatedAt = req.Now
	if err := d.store.Save(ctx, ent); err != nil {
		return domain.Outcome{}, fmt.Errorf("save profile: %w", err)
	}

	return domain.Outcome{Kind: domain.OutcomeSetupAccepted, Name: profile.Name}, nil
}

// ConfirmUpgrade applies a purchase confirmed out-of-band by the payment
// collaborator.
func (d *Dispatcher) ConfirmUpgrade(ctx context.Context, userID string, tierID domain.TierID, expiresAt, now time.Time) error {
	return d.engine.Upgrade(ctx, userID, tierID, expiresAt, now)
}

// Status returns the side-effect-free status snapshot for the user.
func (d *Dispatcher) Status(ctx context.Context, userID string, now time.Time) (domain.StatusSnapshot, error) {
	return d.engine.Status(ctx, userID, now)
}

// appendLog writes the audit row off the request path. A failed append is
// logged and otherwise ignored; the answer has already been delivered.
func (d *Dispatcher) appendLog(req SubmitRequest, tierID domain.TierID, result GenerationResult) {
	entry := &domain.QuestionLogEntry{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		TierID:       tierID,
		Persona:      req.Persona,
		QuestionText: domain.TruncateQuestion(req.Text),
		ResponseText: result.Text,
		Method:       result.Method,
		CountryCode:  req.Country,
		CreatedAt:    req.Now,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.logTimeout)
		defer cancel()
		if err := d.qlog.Append(ctx, entry); err != nil {
			d.logger.Error().Err(err).Str("user_id", entry.UserID).Msg("question log append failed")
		}
	}()
}

func deniedOutcome(decision domain.Decision) domain.Outcome {
	dec := decision
	return domain.Outcome{Kind: domain.OutcomeDenied, Denial: &dec}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
