package walk

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/philowalk/internal/crawler"
	"github.com/nao1215/philowalk/internal/model"
)

// State is a walk engine state.
type State int

const (
	// StateAwaitingTopic waits for a starting topic from the TopicSource.
	StateAwaitingTopic State = iota
	// StateFetchingAndParsing fetches the current subject and resolves its
	// title and first link.
	StateFetchingAndParsing
	// StateAdvancing makes the resolved link the next subject.
	StateAdvancing
	// StateDone means Philosophy was reached.
	StateDone
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateAwaitingTopic:
		return "awaiting_topic"
	case StateFetchingAndParsing:
		return "fetching_and_parsing"
	case StateAdvancing:
		return "advancing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// WalkState is the progress of the current attempt.
// The zero value is the reset state.
type WalkState struct {
	// CurrentTitle is the title of the last article parsed, or "".
	CurrentTitle string

	// StepCount is the number of links followed in this attempt.
	StepCount int
}

// Fetcher fetches the markup of an article by topic.
// crawler.HTTPFetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, topic string) (string, error)
}

// LinkCache remembers the title and first link of articles so that repeat
// visits need no fetch. Only successful, non-terminal resolutions are stored.
type LinkCache interface {
	// Lookup returns a fresh entry for topic. ok is false on a miss.
	Lookup(ctx context.Context, topic string) (title, next string, ok bool, err error)

	// Store records the resolution of topic.
	Store(ctx context.Context, topic, title, next string) error
}

// Observer receives progress events. Calls happen on the goroutine running
// the engine.
type Observer interface {
	// OnStep is called after each successful title extraction.
	// stepIndex is the number of links followed to get there.
	OnStep(title string, stepIndex int)

	// OnRestart is called when an attempt is abandoned. topic is the
	// subject that failed.
	OnRestart(topic string, err error)

	// OnDone is called once Philosophy is reached.
	OnDone(title string, totalSteps int)
}

type nopObserver struct{}

func (nopObserver) OnStep(string, int) {}

func (nopObserver) OnRestart(string, error) {}

func (nopObserver) OnDone(string, int) {}

// StepResult is the outcome of one fetch-and-parse cycle.
type StepResult struct {
	// Title is the heading of the fetched article.
	Title string

	// Next is the first admissible link target. Empty when Done.
	Next string

	// Done is true when Title is Philosophy.
	Done bool

	// Cached is true when the result came from the link cache.
	Cached bool
}

// Engine walks from a starting topic to Philosophy.
// An Engine owns its WalkState and is not safe for concurrent use; run one
// Engine per goroutine.
type Engine struct {
	fetcher Fetcher
	source  TopicSource

	logger    *slog.Logger
	observer  Observer
	cache     LinkCache
	maxSteps  int
	stepDelay time.Duration

	state   State
	walk    WalkState
	subject string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLinkCache enables the link cache.
func WithLinkCache(c LinkCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithMaxSteps caps the links followed per attempt. 0 means no limit.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxSteps = n
		}
	}
}

// WithStepDelay sets the pause before each followed link is fetched.
func WithStepDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.stepDelay = d
		}
	}
}

// NewEngine creates an Engine that fetches with fetcher and takes starting
// topics from source.
func NewEngine(fetcher Fetcher, source TopicSource, opts ...Option) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		source:   source,
		observer: nopObserver{},
		state:    StateAwaitingTopic,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "walk")

	return e
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.state
}

// WalkState returns a copy of the current walk progress.
func (e *Engine) WalkState() WalkState {
	return e.walk
}

// Step fetches topic and resolves its title and first admissible link.
// It does not change the engine state. Failures are returned as the
// crawler sentinel errors (or *crawler.FetchError) so callers can tell
// them apart.
func (e *Engine) Step(ctx context.Context, topic string) (StepResult, error) {
	if e.cache != nil {
		title, next, ok, err := e.cache.Lookup(ctx, topic)
		if err != nil {
			e.logger.Warn("link cache lookup failed", "topic", topic, "error", err)
		} else if ok {
			return StepResult{Title: title, Next: next, Cached: true}, nil
		}
	}

	body, err := e.fetcher.Fetch(ctx, topic)
	if err != nil {
		return StepResult{}, asFetchError(topic, err)
	}

	if err := crawler.Classify(body); err != nil {
		return StepResult{}, err
	}

	remainder, title, err := crawler.ExtractTitle(body)
	if err != nil {
		return StepResult{}, err
	}

	if title == crawler.PhilosophyTitle {
		return StepResult{Title: title, Done: true}, nil
	}

	next, err := crawler.FirstLink(remainder)
	if err != nil {
		return StepResult{}, err
	}

	if e.cache != nil {
		if err := e.cache.Store(ctx, topic, title, next); err != nil {
			e.logger.Warn("link cache store failed", "topic", topic, "error", err)
		}
	}

	return StepResult{Title: title, Next: next}, nil
}

// asFetchError keeps page-level errors as they are and wraps anything else
// the fetcher returned as a *crawler.FetchError.
func asFetchError(topic string, err error) error {
	if errors.Is(err, crawler.ErrFetch) || errors.Is(err, crawler.ErrNonexistentArticle) ||
		errors.Is(err, crawler.ErrNonArticlePage) {
		return err
	}
	return &crawler.FetchError{Topic: topic, Err: err}
}

// Run drives the state machine until Philosophy is reached, the topic
// source is exhausted, or ctx is cancelled. The returned report is never
// nil and is finished in every case.
//
// Reaching Philosophy returns a nil error. Exhausting the topic source
// returns ErrNoMoreTopics; cancellation returns ctx.Err().
func (e *Engine) Run(ctx context.Context) (*model.WalkReport, error) {
	report := model.NewWalkReport()
	defer report.Finish()

	e.reset()
	var attempt *model.Attempt

	for {
		if err := ctx.Err(); err != nil {
			e.cancel(attempt)
			return report, err
		}

		switch e.state {
		case StateAwaitingTopic:
			topic, err := e.source.NextTopic(ctx)
			if err != nil {
				if !errors.Is(err, ErrNoMoreTopics) && ctx.Err() == nil {
					e.logger.Error("topic source failed", "error", err)
				}
				return report, err
			}
			e.subject = NormalizeTopic(topic)
			if e.subject == "" {
				continue
			}
			attempt = report.StartAttempt(e.subject)
			e.logger.Debug("attempt started", "topic", e.subject, "attempt", len(report.Attempts))
			e.state = StateFetchingAndParsing

		case StateFetchingAndParsing:
			res, err := e.Step(ctx, e.subject)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				e.restart(attempt, err)
				continue
			}

			e.walk.CurrentTitle = res.Title
			attempt.AddHop(model.Hop{
				Index:  e.walk.StepCount,
				Topic:  e.subject,
				Title:  res.Title,
				Next:   res.Next,
				Cached: res.Cached,
			})
			e.observer.OnStep(res.Title, e.walk.StepCount)

			if res.Done {
				e.state = StateDone
				continue
			}
			if e.maxSteps > 0 && e.walk.StepCount >= e.maxSteps {
				e.restart(attempt, ErrStepLimit)
				continue
			}
			e.subject = res.Next
			e.state = StateAdvancing

		case StateAdvancing:
			e.walk.StepCount++
			if err := e.pause(ctx); err != nil {
				continue
			}
			e.state = StateFetchingAndParsing

		case StateDone:
			attempt.Steps = e.walk.StepCount
			attempt.Outcome = model.OutcomeReached
			e.logger.Info("reached philosophy",
				"start", attempt.StartTopic,
				"steps", e.walk.StepCount,
			)
			e.observer.OnDone(e.walk.CurrentTitle, e.walk.StepCount)
			return report, nil
		}
	}
}

// restart abandons the current attempt and asks for a new topic.
func (e *Engine) restart(attempt *model.Attempt, err error) {
	kind := FailureKind(err)
	e.logger.Debug("attempt abandoned",
		"topic", e.subject,
		"kind", kind,
		"steps", e.walk.StepCount,
		"error", err,
	)

	attempt.Steps = e.walk.StepCount
	attempt.Outcome = model.OutcomeRestarted
	attempt.FailureKind = kind
	attempt.FailureMessage = err.Error()
	attempt.FailedTopic = e.subject

	e.observer.OnRestart(e.subject, err)
	e.reset()
}

// cancel marks an in-flight attempt as cancelled.
func (e *Engine) cancel(attempt *model.Attempt) {
	if attempt != nil && attempt.Outcome == model.OutcomeInProgress {
		attempt.Steps = e.walk.StepCount
		attempt.Outcome = model.OutcomeCancelled
	}
}

func (e *Engine) reset() {
	e.walk = WalkState{}
	e.subject = ""
	e.state = StateAwaitingTopic
}

// pause waits stepDelay or until ctx is done.
func (e *Engine) pause(ctx context.Context) error {
	if e.stepDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.stepDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
