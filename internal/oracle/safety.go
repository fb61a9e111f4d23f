package oracle

import (
	"fmt"
	"regexp"
	"strings"
)

// SafetyVerdict is the result of validating one candidate response.
type SafetyVerdict struct {
	Safe   bool
	Reason string
}

// SafetyConfig tunes the response validator. Zero values fall back to the
// built-in defaults.
type SafetyConfig struct {
	MaxChars    int
	MinRegister int
	// ExtraPatterns extends the built-in disallowed-topic patterns.
	ExtraPatterns []string
}

// SafetyFilter validates candidate responses against content and style rules.
// It is pure and deterministic: the same text always yields the same verdict,
// and any single failing rule is sufficient to reject.
type SafetyFilter struct {
	maxChars    int
	minRegister int
	disallowed  []*regexp.Regexp
	register    []string
}

const (
	defaultSafetyMaxChars    = 700
	defaultSafetyMinRegister = 1
)

// Topics a response must never touch, plus absolute-certainty phrasing that
// does not fit the oracle register.
var disallowedTopicPatterns = []string{
	`(?i)\b(suicide|self[- ]?harm|kill (?:yourself|himself|herself|themselves))\b`,
	`(?i)\b(diagnos\w+|medication|prescri\w+|dosage|see a doctor|medical treatment)\b`,
	`(?i)\b(invest|stocks?|crypto\w*|guaranteed returns?|financial advice|buy shares)\b`,
	`(?i)\b(leave (?:him|her|them)|divorce (?:him|her|them)|break up with|end (?:the|your) (?:relationship|marriage))\b`,
	`(?i)\b(i guarantee|definitely will|certainly will|100% certain|without any doubt|i promise you)\b`,
}

// Vocabulary that keeps responses in the oracle's voice. At least MinRegister
// of these must appear.
var registerWords = []string{
	"light", "shadow", "moon", "star", "spirit", "soul", "divine", "angel",
	"destiny", "path", "journey", "energy", "heart", "dream", "wisdom",
	"faith", "grace", "mystery", "night", "dawn", "heaven", "sacred",
	"golden", "silver", "transformation", "intuition",
}

// NewSafetyFilter compiles the rule set. Pattern compilation failures are
// configuration faults and surface as errors.
func NewSafetyFilter(cfg SafetyConfig) (*SafetyFilter, error) {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultSafetyMaxChars
	}
	minRegister := cfg.MinRegister
	if minRegister <= 0 {
		minRegister = defaultSafetyMinRegister
	}

	patterns := append([]string{}, disallowedTopicPatterns...)
	patterns = append(patterns, cfg.ExtraPatterns...)
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile safety pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &SafetyFilter{
		maxChars:    maxChars,
		minRegister: minRegister,
		disallowed:  compiled,
		register:    registerWords,
	}, nil
}

// Validate checks a candidate response. The first failing rule's reason is
// reported; rule order does not affect whether a text is rejected.
func (f *SafetyFilter) Validate(candidate string) SafetyVerdict {
	for _, re := range f.disallowed {
		if re.MatchString(candidate) {
			return SafetyVerdict{Reason: "disallowed_topic"}
		}
	}
	if len([]rune(candidate)) > f.maxChars {
		return SafetyVerdict{Reason: "too_long"}
	}
	if f.registerCount(candidate) < f.minRegister {
		return SafetyVerdict{Reason: "off_register"}
	}
	return SafetyVerdict{Safe: true}
}

func (f *SafetyFilter) registerCount(candidate string) int {
	lower := strings.ToLower(candidate)
	count := 0
	for _, w := range f.register {
		if strings.Contains(lower, w) {
			count++
		}
	}
	return count
}
