package domain

import "time"

// QuestionLogEntry is one append-only audit row per answered request. It is
// never read back by the decision logic.
type QuestionLogEntry struct {
	ID           string
	UserID       string
	TierID       TierID
	Persona      Persona
	QuestionText string
	ResponseText string
	Method       GenerationMethod
	CountryCode  string
	CreatedAt    time.Time
}

// maxLoggedQuestionLen bounds the question text stored in the audit log.
const maxLoggedQuestionLen = 500

// TruncateQuestion clamps question text to the audit log limit.
func TruncateQuestion(q string) string {
	if len(q) <= maxLoggedQuestionLen {
		return q
	}
	return q[:maxLoggedQuestionLen]
}
