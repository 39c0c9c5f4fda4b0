package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/nao1215/philowalk/internal/walk"
)

// ProgressPrinter prints walk progress as it happens: one title per step,
// a notice when an attempt is abandoned, and the final step count.
// It implements walk.Observer.
type ProgressPrinter struct {
	output  io.Writer
	mu      *sync.Mutex
	prefix  string
	verbose bool
}

var _ walk.Observer = (*ProgressPrinter)(nil)

// ProgressOption configures a ProgressPrinter.
type ProgressOption func(*ProgressPrinter)

// WithProgressVerbose adds the step index to titles and the underlying
// error to restart notices.
func WithProgressVerbose(verbose bool) ProgressOption {
	return func(p *ProgressPrinter) {
		p.verbose = verbose
	}
}

// NewProgressPrinter creates a ProgressPrinter writing to output.
func NewProgressPrinter(output io.Writer, opts ...ProgressOption) *ProgressPrinter {
	p := &ProgressPrinter{
		output: output,
		mu:     &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForTopic returns a printer that shares p's output and lock and prefixes
// every line with the topic. Batch walks use one per engine so that
// interleaved lines stay attributable.
func (p *ProgressPrinter) ForTopic(topic string) *ProgressPrinter {
	return &ProgressPrinter{
		output:  p.output,
		mu:      p.mu,
		prefix:  "[" + topic + "] ",
		verbose: p.verbose,
	}
}

// OnStep prints the title of the article just reached.
func (p *ProgressPrinter) OnStep(title string, stepIndex int) {
	if p.verbose {
		p.println(fmt.Sprintf("%3d  %s", stepIndex, title))
		return
	}
	p.println(title)
}

// OnRestart prints the notice for the failure kind of err.
func (p *ProgressPrinter) OnRestart(topic string, err error) {
	p.println(Notice(walk.FailureKind(err)))
	if p.verbose && err != nil {
		p.println(fmt.Sprintf("  (%s: %v)", topic, err))
	}
}

// OnDone prints the final step count.
func (p *ProgressPrinter) OnDone(_ string, totalSteps int) {
	p.println(FinalLine(totalSteps))
}

func (p *ProgressPrinter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.output, p.prefix+line) //nolint:errcheck // progress output is best effort
}
