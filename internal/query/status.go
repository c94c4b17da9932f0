package query

import (
	"time"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// Status is the state a query is in, or the way it ended
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
	StatusTimedOut
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusPending:
		return "Pending"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	case StatusTimedOut:
		return "TimedOut"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s ends a query
func (s Status) Terminal() bool {
	return s >= StatusSucceeded
}

// Outcome is what Poll and Cancel report
type Outcome struct {
	Status Status
	// ID identifies the submission; empty when Idle
	ID string
	// Model that answered; set on success
	Model  string
	Phrase phrase.Phrase
	// Err is the classified failure for StatusFailed and StatusTimedOut
	Err     error
	Elapsed time.Duration
}
