package report

import (
	"fmt"

	"github.com/nao1215/philowalk/internal/crawler"
	"github.com/nao1215/philowalk/internal/walk"
)

// Notice returns the line shown to the user when an attempt is abandoned
// because of an error of the given kind (see crawler.Kind and
// walk.FailureKind).
func Notice(kind string) string {
	switch kind {
	case crawler.KindNonexistent:
		return "Got to a non-existent article... Try another starting topic"
	case crawler.KindNonArticle:
		return "Got to non-article Wikipedia page... Try another starting topic"
	case crawler.KindFetch:
		return "Could not fetch the article... Try another starting topic"
	case crawler.KindMalformed:
		return "Got to an article that could not be read... Try another starting topic"
	case crawler.KindNoLink:
		return "Got to an article without a usable link... Try another starting topic"
	case walk.KindStepLimit:
		return "Gave up after too many steps... Try another starting topic"
	default:
		return "Got to a non-existent article (or error)... Try another starting topic"
	}
}

// FinalLine returns the line printed when Philosophy is reached.
func FinalLine(steps int) string {
	if steps == 1 {
		return "Got to Philosophy in 1 step!"
	}
	return fmt.Sprintf("Got to Philosophy in %d steps!", steps)
}
