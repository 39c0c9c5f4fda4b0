package walk

import (
	"errors"

	"github.com/nao1215/philowalk/internal/crawler"
)

var (
	// ErrStepLimit is returned when an attempt follows MaxSteps links
	// without reaching Philosophy. It is treated like a dead end.
	ErrStepLimit = errors.New("step limit reached")

	// ErrNoMoreTopics is returned by a TopicSource that has nothing left
	// to offer. It ends Run without reaching Philosophy.
	ErrNoMoreTopics = errors.New("no more starting topics")
)

// KindStepLimit is the failure kind recorded for ErrStepLimit.
const KindStepLimit = "step_limit"

// FailureKind returns the short name of the failure in err, as stored in
// reports and the history database.
func FailureKind(err error) string {
	if errors.Is(err, ErrStepLimit) {
		return KindStepLimit
	}
	return crawler.Kind(err)
}
