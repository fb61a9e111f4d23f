package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownTier       = errors.New("unknown tier")
	ErrUnknownPersona    = errors.New("unknown persona")
	ErrEmptyFallbackPool = errors.New("empty fallback pool")
)

// ValidationError is a recoverable profile-setup failure. Its Reason is safe to
// show to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
