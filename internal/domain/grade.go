package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidGrade is returned for grades outside Again..Easy.
var ErrInvalidGrade = errors.New("invalid grade")

// Grade is the recall quality reported by the learner.
type Grade int

const (
	GradeAgain Grade = iota + 1 // forgot, card lapses
	GradeHard
	GradeGood
	GradeEasy
)

var gradeNames = [...]string{GradeAgain: "again", GradeHard: "hard", GradeGood: "good", GradeEasy: "easy"}

// Grades lists every valid grade in button order.
var Grades = []Grade{GradeAgain, GradeHard, GradeGood, GradeEasy}

// IsValid reports whether g is one of the four grades.
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Title returns the button label, e.g. "Good".
func (g Grade) Title() string {
	s := g.String()
	if !g.IsValid() {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseGrade accepts a grade name (case-insensitive) or its number 1-4.
func ParseGrade(s string) (Grade, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range gradeNames {
		if name != "" && name == s {
			return Grade(g), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Grade(n).IsValid() {
		return Grade(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
