package crawler

import (
	"fmt"
	"strings"
)

// FirstLink returns the target of the first admissible article link in body.
// The target is the part of the href after "/wiki/", still URL-escaped as it
// appears in the markup (e.g. "Ren%C3%A9_Descartes").
//
// Scanning starts after the first "<p>" so that infobox and hatnote links
// are ignored. When a page has no paragraph the whole body is scanned.
// Anchors without an article href, links into the Help namespace and bare
// "/wiki/" links are skipped.
// FirstLink does not modify body, so calling it twice on the same document
// gives the same answer.
func FirstLink(body string) (string, error) {
	fragment := body
	if i := strings.Index(fragment, ContentStartMarker); i >= 0 {
		fragment = fragment[i+len(ContentStartMarker):]
	}

	for {
		var tag int
		fragment, tag = NextCandidateTag(fragment)
		if tag < 0 {
			return "", ErrNoLinkFound
		}

		target, end, err := readHref(fragment, tag)
		if err != nil {
			return "", err
		}

		if target != "" && !strings.Contains(target, HelpNamespace) {
			return target, nil
		}
		fragment = fragment[end:]
	}
}

// readHref reads the article href of the anchor tag that starts at from.
// Only the tag itself, up to its closing '>', is searched. It returns the
// target and the index to resume scanning at. A tag without an article href
// (citations, external links) yields an empty target and the index just past
// the tag.
func readHref(fragment string, from int) (string, int, error) {
	closeRel := strings.IndexByte(fragment[from:], '>')
	if closeRel < 0 {
		return "", 0, fmt.Errorf("%w: unterminated anchor tag", ErrMalformedDocument)
	}
	tagEnd := from + closeRel

	rel := strings.Index(fragment[from:tagEnd], ArticleHrefPrefix)
	if rel < 0 {
		return "", tagEnd + 1, nil
	}

	start := from + rel + len(ArticleHrefPrefix)
	for cur := start; cur < tagEnd; cur++ {
		if fragment[cur] == '"' {
			return fragment[start:cur], cur, nil
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated href", ErrMalformedDocument)
}
