package crawler

import "strings"

// Literal substrings the scanner depends on. They are matched byte for byte
// against Wikipedia's rendered markup; nothing here is parsed structurally.
const (
	// NonexistentMarker appears on the "Wikipedia does not have an article
	// with this exact name" placeholder page.
	NonexistentMarker = "does not have an article with this exact name"

	// ArticleTabMarker closes the "Article" namespace tab. Pages outside the
	// article namespace render a different tab and lack it.
	ArticleTabMarker = "Article</a></span></li>"

	// TitleEndMarker closes the first-heading element.
	TitleEndMarker = "</h1>"

	// ContentStartMarker opens the first paragraph of body text.
	ContentStartMarker = "<p>"

	// AnchorOpen starts an anchor tag when followed by whitespace or '>'.
	AnchorOpen = "<a"

	// ArticleHrefPrefix precedes the target of an internal article link.
	ArticleHrefPrefix = `href="/wiki/`

	// HelpNamespace marks a link into the Help namespace.
	HelpNamespace = "Help:"

	// PhilosophyTitle is the title that ends a walk.
	PhilosophyTitle = "Philosophy"
)

// Classify checks the page-level markers of a fetched document.
// It returns ErrNonexistentArticle or ErrNonArticlePage, or nil when the
// body looks like a regular article.
func Classify(body string) error {
	if strings.Contains(body, NonexistentMarker) {
		return ErrNonexistentArticle
	}
	if !strings.Contains(body, ArticleTabMarker) {
		return ErrNonArticlePage
	}
	return nil
}
