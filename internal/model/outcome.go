package model

import "fmt"

// Outcome describes how a walk attempt ended.
type Outcome int

const (
	// OutcomeInProgress is the zero value, used while an attempt is running.
	OutcomeInProgress Outcome = iota

	// OutcomeReached means the attempt arrived at Philosophy.
	OutcomeReached

	// OutcomeRestarted means the attempt hit an error or dead end and the
	// walk asked for a new starting topic.
	OutcomeRestarted

	// OutcomeCancelled means the run was interrupted during the attempt.
	OutcomeCancelled
)

// String returns the stable lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomeReached:
		return "reached"
	case OutcomeRestarted:
		return "restarted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Label returns a capitalised name for human-readable reports.
func (o Outcome) Label() string {
	switch o {
	case OutcomeInProgress:
		return "In progress"
	case OutcomeReached:
		return "Reached Philosophy"
	case OutcomeRestarted:
		return "Restarted"
	case OutcomeCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the outcome by name so stored reports stay readable.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name produced by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*o = OutcomeInProgress
	case "reached":
		*o = OutcomeReached
	case "restarted":
		*o = OutcomeRestarted
	case "cancelled":
		*o = OutcomeCancelled
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Outcomes lists every outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeReached, OutcomeRestarted, OutcomeCancelled, OutcomeInProgress}
}
