package model

import "time"

// RuleID identifies one of the eight threshold rules.
type RuleID string

const (
	RuleLessThanAvg30        RuleID = "lessThanAvg30"
	RuleLessThanAvg90        RuleID = "lessThanAvg90"
	RuleLessThanMin30        RuleID = "lessThanMin30"
	RuleLessThanMin90        RuleID = "lessThanMin90"
	RuleLessThan80PctDiff30  RuleID = "lessThan80PctDiff30"
	RuleLessThan50PctDiff30  RuleID = "lessThan50PctDiff30"
	RuleLessThan80PctDiff90  RuleID = "lessThan80PctDiff90"
	RuleLessThan50PctDiff90  RuleID = "lessThan50PctDiff90"
)

// AllRules lists every rule in evaluation order.
var AllRules = []RuleID{
	RuleLessThanAvg30,
	RuleLessThanAvg90,
	RuleLessThanMin30,
	RuleLessThanMin90,
	RuleLessThan80PctDiff30,
	RuleLessThan50PctDiff30,
	RuleLessThan80PctDiff90,
	RuleLessThan50PctDiff90,
}

// DigestRules is the subset surfaced in the daily email. The narrower
// average and 50%-band rules are recorded but deliberately not mailed.
var DigestRules = []RuleID{
	RuleLessThanMin90,
	RuleLessThan80PctDiff90,
	RuleLessThanMin30,
}

// RuleMatch records one ticker satisfying one rule at evaluation time.
// CompareWith is the threshold value actually evaluated.
type RuleMatch struct {
	Ticker      string  `json:"ticker"`
	Price       float64 `json:"price"`
	CompareWith float64 `json:"compareWith"`
}

// ExecutionSnapshot is the complete result of one analytics run: eight
// ordered match sequences, one per rule. Immutable once written.
type ExecutionSnapshot struct {
	ID        string    `json:"-"`
	CreatedAt time.Time `json:"createDatetime"`

	LessThanAvg30       []RuleMatch `json:"lessThanAvg30"`
	LessThanAvg90       []RuleMatch `json:"lessThanAvg90"`
	LessThanMin30       []RuleMatch `json:"lessThanMin30"`
	LessThanMin90       []RuleMatch `json:"lessThanMin90"`
	LessThan80PctDiff30 []RuleMatch `json:"lessThan80PctDiff30"`
	LessThan50PctDiff30 []RuleMatch `json:"lessThan50PctDiff30"`
	LessThan80PctDiff90 []RuleMatch `json:"lessThan80PctDiff90"`
	LessThan50PctDiff90 []RuleMatch `json:"lessThan50PctDiff90"`
}

// NewExecutionSnapshot returns a snapshot with every match sequence
// initialized, so an all-empty run still serializes its eight fields as
// empty arrays rather than nulls.
func NewExecutionSnapshot(id string, createdAt time.Time) *ExecutionSnapshot {
	return &ExecutionSnapshot{
		ID:                  id,
		CreatedAt:           createdAt,
		LessThanAvg30:       []RuleMatch{},
		LessThanAvg90:       []RuleMatch{},
		LessThanMin30:       []RuleMatch{},
		LessThanMin90:       []RuleMatch{},
		LessThan80PctDiff30: []RuleMatch{},
		LessThan50PctDiff30: []RuleMatch{},
		LessThan80PctDiff90: []RuleMatch{},
		LessThan50PctDiff90: []RuleMatch{},
	}
}

// Matches returns the match sequence for the given rule.
func (s *ExecutionSnapshot) Matches(rule RuleID) []RuleMatch {
	switch rule {
	case RuleLessThanAvg30:
		return s.LessThanAvg30
	case RuleLessThanAvg90:
		return s.LessThanAvg90
	case RuleLessThanMin30:
		return s.LessThanMin30
	case RuleLessThanMin90:
		return s.LessThanMin90
	case RuleLessThan80PctDiff30:
		return s.LessThan80PctDiff30
	case RuleLessThan50PctDiff30:
		return s.LessThan50PctDiff30
	case RuleLessThan80PctDiff90:
		return s.LessThan80PctDiff90
	case RuleLessThan50PctDiff90:
		return s.LessThan50PctDiff90
	}
	return nil
}

// Append adds a match to the sequence for the given rule.
func (s *ExecutionSnapshot) Append(rule RuleID, m RuleMatch) {
	switch rule {
	case RuleLessThanAvg30:
		s.LessThanAvg30 = append(s.LessThanAvg30, m)
	case RuleLessThanAvg90:
		s.LessThanAvg90 = append(s.LessThanAvg90, m)
	case RuleLessThanMin30:
		s.LessThanMin30 = append(s.LessThanMin30, m)
	case RuleLessThanMin90:
		s.LessThanMin90 = append(s.LessThanMin90, m)
	case RuleLessThan80PctDiff30:
		s.LessThan80PctDiff30 = append(s.LessThan80PctDiff30, m)
	case RuleLessThan50PctDiff30:
		s.LessThan50PctDiff30 = append(s.LessThan50PctDiff30, m)
	case RuleLessThan80PctDiff90:
		s.LessThan80PctDiff90 = append(s.LessThan80PctDiff90, m)
	case RuleLessThan50PctDiff90:
		s.LessThan50PctDiff90 = append(s.LessThan50PctDiff90, m)
	}
}
