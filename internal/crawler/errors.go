package crawler

import (
	"errors"
	"fmt"
)

// Page-level errors.
// Each one ends the current walk attempt. The walk engine folds all of them
// into a single restart, but they stay distinct so callers and tests can
// tell which rule fired.
var (
	// ErrFetch is matched by every *FetchError via errors.Is.
	ErrFetch = errors.New("fetch failed")

	// ErrNonexistentArticle is returned when the page says Wikipedia has no
	// article with the requested name.
	ErrNonexistentArticle = errors.New("non-existent article")

	// ErrNonArticlePage is returned for pages outside the article namespace,
	// such as Help or Special pages.
	ErrNonArticlePage = errors.New("not an article page")

	// ErrMalformedDocument is returned when an expected markup anchor
	// (the title boundary or an href boundary) is missing.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNoLinkFound is returned when the scanner runs out of anchor tags
	// before it finds an admissible article link.
	ErrNoLinkFound = errors.New("no admissible link found")
)

// FetchError describes a failed page fetch.
type FetchError struct {
	// Topic is the article name that was requested.
	Topic string

	// URL is the full URL that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetch) true for any *FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Failure kind names used in reports and in the walk database.
const (
	KindFetch       = "fetch"
	KindNonexistent = "nonexistent"
	KindNonArticle  = "non_article"
	KindMalformed   = "malformed"
	KindNoLink      = "no_link"
	KindOther       = "other"
)

// Kind returns the short, stable name of the page error wrapped in err.
// Unknown errors map to KindOther.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrNonexistentArticle):
		return KindNonexistent
	case errors.Is(err, ErrNonArticlePage):
		return KindNonArticle
	case errors.Is(err, ErrMalformedDocument):
		return KindMalformed
	case errors.Is(err, ErrNoLinkFound):
		return KindNoLink
	default:
		return KindOther
	}
}
