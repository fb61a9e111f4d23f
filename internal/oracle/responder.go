package oracle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"oracle/internal/domain"
	"oracle/internal/providers/answer"
)

// GenerationResult is one produced response and how it was produced.
type GenerationResult struct {
	Text   string
	Method domain.GenerationMethod
}

// Responder is the two-stage generation pipeline: one bounded attempt against
// the external generator, then an unconditional fallback. A safety rejection is
// never retried against the generator; retrying the same prompt against a
// non-deterministic model does not make the rejection go away, the pool does.
type Responder struct {
	generator answer.Generator // nil when no external generator is configured
	filter    *SafetyFilter
	fallbacks *FallbackCatalog
	maxWords  int
	logger    zerolog.Logger
}

const defaultMaxResponseWords = 80

// NewResponder wires the pipeline. generator may be nil, in which case every
// response comes from the fallback catalog.
func NewResponder(generator answer.Generator, filter *SafetyFilter, fallbacks *FallbackCatalog, maxWords int, logger zerolog.Logger) *Responder {
	if maxWords <= 0 {
		maxWords = defaultMaxResponseWords
	}
	return &Responder{
		generator: generator,
		filter:    filter,
		fallbacks: fallbacks,
		maxWords:  maxWords,
		logger:    logger,
	}
}

// Generate produces a response for the question under the given persona. It
// only returns an error when the fallback catalog itself cannot serve the
// persona, which is a configuration fault.
func (r *Responder) Generate(ctx context.Context, persona domain.Persona, question string, profile Profile) (GenerationResult, error) {
	if r.generator == nil {
		return r.fallback(persona, "generator_unconfigured")
	}

	raw, err := r.generator.Answer(ctx, answer.Request{
		PersonaName:  persona.DisplayName(),
		PersonaVoice: persona.Voice(),
		UserName:     profile.Name,
		BirthDate:    profile.BirthDate,
		Question:     question,
		MaxWords:     r.maxWords,
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("persona", string(persona)).Msg("generator failed, serving fallback")
		return r.fallback(persona, "generator_error")
	}

	if verdict := r.filter.Validate(raw); !verdict.Safe {
		// Silent degradation: the rejected text is discarded and never shown.
		r.logger.Warn().Str("persona", string(persona)).Str("reason", verdict.Reason).Msg("generated response rejected, serving fallback")
		return r.fallback(persona, "safety_"+verdict.Reason)
	}

	return GenerationResult{Text: raw, Method: domain.MethodAI}, nil
}

func (r *Responder) fallback(persona domain.Persona, reason string) (GenerationResult, error) {
	text, err := r.fallbacks.Pick(persona)
	if err != nil {
		return GenerationResult{}, err
	}
	r.logger.Debug().Str("persona", string(persona)).Str("reason", reason).Msg("fallback response served")
	return GenerationResult{Text: text, Method: domain.MethodFallback}, nil
}

// withDeadline is a small helper so the dispatcher can bound the whole
// generation stage without caring whether the caller's context already has one.
func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
