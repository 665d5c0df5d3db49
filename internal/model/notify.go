package model

import "time"

// AggregatedAlert is the most extreme match for one (rule, ticker) pair
// across all of today's snapshots.
type AggregatedAlert struct {
	Field       RuleID
	Ticker      string
	MinPrice    float64
	CompareWith float64
}

// Recipient is one notification audience record. Either Email or Emails
// (or both) may be populated; resolution flattens and deduplicates.
type Recipient struct {
	Email  string
	Emails []string
	Active bool
}

// EmailLog records one successful dispatch. Write-once. Kind and
// ExecutionID are set by the weekly digest, which ties each send to the
// execution it reported.
type EmailLog struct {
	SentAt      time.Time // UTC
	Subject     string
	Recipients  []string
	RowCount    int
	Kind        string
	ExecutionID string
}
