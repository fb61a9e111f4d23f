package oracle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"oracle/internal/domain"
)

// Profile is the validated result of a setup submission.
type Profile struct {
	Name      string
	BirthDate time.Time
}

var (
	dateRe      = regexp.MustCompile(`^(\d{1,2})([/\-.])(\d{1,2})([/\-.])(\d{2}|\d{4})$`)
	dateSepRe   = regexp.MustCompile(`[/\-.]`)
	digitRe     = regexp.MustCompile(`\d`)
	nameTitling = cases.Title(language.Und, cases.NoLower)
)

// Profile submissions must be at least ten years old and at most 120.
const (
	minProfileAgeYears = 10
	maxProfileAgeYears = 120
)

// LooksLikeProfile reports whether free text resembles a "<name> <birth date>"
// submission: it contains a digit, a date separator, and at most three tokens.
// Used only to route setup-flow input between prompting and validation.
func LooksLikeProfile(text string) bool {
	if !digitRe.MatchString(text) || !dateSepRe.MatchString(text) {
		return false
	}
	return len(strings.Fields(text)) <= 3
}

// ParseProfile parses "<name> <D/M/YYYY>" into a validated profile. The last
// whitespace token is the date; everything before it joined by single spaces is
// the name. Date separators may be '/', '-' or '.'; two-digit years up to 30
// resolve to the 2000s, the rest to the 1900s.
func ParseProfile(text string, now time.Time) (Profile, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Profile{}, &domain.ValidationError{Reason: "please send your name followed by your birth date, e.g. Maria 15/03/1990"}
	}

	rawDate := fields[len(fields)-1]
	name := strings.Join(fields[:len(fields)-1], " ")
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return Profile{}, &domain.ValidationError{Reason: "the name must be at least 2 characters long"}
	}

	birth, err := parseBirthDate(rawDate, now)
	if err != nil {
		return Profile{}, err
	}

	return Profile{Name: nameTitling.String(name), BirthDate: birth}, nil
}

func parseBirthDate(raw string, now time.Time) (time.Time, error) {
	m := dateRe.FindStringSubmatch(raw)
	if m == nil || m[2] != m[4] {
		return time.Time{}, &domain.ValidationError{Reason: "the birth date must look like DD/MM/YYYY (also - or . as separator)"}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[5])
	if len(m[5]) == 2 {
		if year <= 30 {
			year += 2000
		} else {
			year += 1900
		}
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 April becomes 1 May), so a changed
	// component means the calendar date never existed.
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, &domain.ValidationError{Reason: fmt.Sprintf("%s is not a valid calendar date", raw)}
	}

	if date.After(now) {
		return time.Time{}, &domain.ValidationError{Reason: "the birth date cannot be in the future"}
	}
	if date.After(now.AddDate(-minProfileAgeYears, 0, 0)) {
		return time.Time{}, &domain.ValidationError{Reason: "the birth date must be at least 10 years in the past"}
	}
	if date.Before(now.AddDate(-maxProfileAgeYears, 0, 0)) {
		return time.Time{}, &domain.ValidationError{Reason: "the birth date cannot be more than 120 years in the past"}
	}

	return date, nil
}
