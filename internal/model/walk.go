package model

import (
	"time"

	"github.com/google/uuid"
)

// Hop is one article visited during an attempt.
type Hop struct {
	// Index is the step count when the article was reached. The starting
	// article has index 0.
	Index int `json:"index"`

	// Topic is the name the article was requested by. For the first hop this
	// is the normalised starting topic, afterwards it is the link target.
	Topic string `json:"topic"`

	// Title is the heading of the article.
	Title string `json:"title"`

	// Next is the first admissible link target, empty on the final hop.
	Next string `json:"next,omitempty"`

	// Cached is true when the hop was answered from the link cache.
	Cached bool `json:"cached,omitempty"`
}

// Attempt is one walk from a starting topic until Philosophy, a restart,
// or cancellation.
type Attempt struct {
	// StartTopic is the normalised starting topic.
	StartTopic string `json:"start_topic"`

	// Hops lists the articles visited, in order.
	Hops []Hop `json:"hops"`

	// Steps is the number of links followed before the attempt ended.
	Steps int `json:"steps"`

	// Outcome is how the attempt ended.
	Outcome Outcome `json:"outcome"`

	// FailureKind is the short name of the error that ended a restarted
	// attempt (e.g. "nonexistent", "no_link").
	FailureKind string `json:"failure_kind,omitempty"`

	// FailureMessage is the error text of a restarted attempt.
	FailureMessage string `json:"failure_message,omitempty"`

	// FailedTopic is the topic being fetched when the attempt failed.
	FailedTopic string `json:"failed_topic,omitempty"`
}

// AddHop appends a visited article.
func (a *Attempt) AddHop(h Hop) {
	a.Hops = append(a.Hops, h)
}

// LastTitle returns the title of the last visited article, or "".
func (a *Attempt) LastTitle() string {
	if len(a.Hops) == 0 {
		return ""
	}
	return a.Hops[len(a.Hops)-1].Title
}

// Titles returns the visited titles in order.
func (a *Attempt) Titles() []string {
	titles := make([]string, len(a.Hops))
	for i, h := range a.Hops {
		titles[i] = h.Title
	}
	return titles
}

// WalkReport records one run of the walk engine: every attempt, and whether
// the last one reached Philosophy.
type WalkReport struct {
	// ID is the database row id, zero until the report is saved.
	ID int64 `json:"id,omitempty"`

	// RunID identifies the run across machines and databases.
	RunID string `json:"run_id"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Attempts lists the attempts in order.
	Attempts []*Attempt `json:"attempts"`

	// Reached is true when the last attempt arrived at Philosophy.
	Reached bool `json:"reached"`

	// TotalSteps is the step count of the successful attempt.
	TotalSteps int `json:"total_steps"`

	// FinalTitle is the last article visited in the run.
	FinalTitle string `json:"final_title,omitempty"`
}

// NewWalkReport creates an empty report stamped with the current time.
func NewWalkReport() *WalkReport {
	return &WalkReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Attempts:  make([]*Attempt, 0),
	}
}

// StartAttempt appends and returns a new attempt for topic.
func (r *WalkReport) StartAttempt(topic string) *Attempt {
	a := &Attempt{
		StartTopic: topic,
		Hops:       make([]Hop, 0),
	}
	r.Attempts = append(r.Attempts, a)
	return a
}

// CurrentAttempt returns the last attempt, or nil before the first one.
func (r *WalkReport) CurrentAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return r.Attempts[len(r.Attempts)-1]
}

// Finish stamps the end time and derives the summary fields from the last
// attempt.
func (r *WalkReport) Finish() {
	r.FinishedAt = time.Now()

	last := r.CurrentAttempt()
	if last == nil {
		return
	}
	r.FinalTitle = last.LastTitle()
	r.Reached = last.Outcome == OutcomeReached
	if r.Reached {
		r.TotalSteps = last.Steps
	}
}

// StartTopic returns the starting topic of the first attempt, or "".
func (r *WalkReport) StartTopic() string {
	if len(r.Attempts) == 0 {
		return ""
	}
	return r.Attempts[0].StartTopic
}

// Duration returns how long the run took.
func (r *WalkReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HopCount returns the number of articles visited across all attempts.
func (r *WalkReport) HopCount() int {
	n := 0
	for _, a := range r.Attempts {
		n += len(a.Hops)
	}
	return n
}

// OutcomeCounts returns how many attempts ended with each outcome.
func (r *WalkReport) OutcomeCounts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, a := range r.Attempts {
		counts[a.Outcome]++
	}
	return counts
}
