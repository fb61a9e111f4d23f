package answer

import (
	"context"
	"time"
)

// Request carries everything the external generator needs to draft one
// persona-voiced response.
type Request struct {
	PersonaName  string
	PersonaVoice string
	UserName     string
	BirthDate    time.Time
	Question     string
	MaxWords     int
}

// Generator drafts a single candidate response. Implementations return an
// error on any transport, timeout or protocol failure; deciding what happens
// next (the fallback) is the caller's job.
type Generator interface {
	Answer(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Answer(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
