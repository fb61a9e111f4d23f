package domain

// GenerationMethod records how a response text was produced.
type GenerationMethod string

const (
	MethodAI       GenerationMethod = "ai"
	MethodFallback GenerationMethod = "fallback"
)

// OutcomeKind tags the transport-visible result of one submitted message.
type OutcomeKind string

const (
	OutcomeSetupPrompt   OutcomeKind = "setup_prompt"
	OutcomeSetupAccepted OutcomeKind = "setup_accepted"
	OutcomeSetupRejected OutcomeKind = "setup_rejected"
	OutcomeDenied        OutcomeKind = "denied"
	OutcomeAnswered      OutcomeKind = "answered"
)

// Outcome is the tagged variant handed back to the transport layer. Exactly one
// of the payload fields matching Kind is populated.
type Outcome struct {
	Kind OutcomeKind

	// Message carries the setup prompt or rejection reason.
	Message string
	// Name is the accepted profile name.
	Name string
	// Denial is set for Kind == OutcomeDenied.
	Denial *Decision
	// Answer is set for Kind == OutcomeAnswered.
	Answer *Answer
}

// Answer is a delivered oracle response.
type Answer struct {
	Text    string
	Persona Persona
	Method  GenerationMethod
}

// StatusSnapshot is the read-only view behind the user-facing status display.
type StatusSnapshot struct {
	TierID          TierID
	TierName        string
	QuestionsUsed   int
	Remaining       int // QuotaUnlimited when the tier has no limit
	CooldownMinutes int
	// MinutesUntilNext is zero when the user may ask immediately.
	MinutesUntilNext int
}
