package crawler

import (
	"fmt"
	"strings"
)

// ExtractTitle returns the article title and the part of body that starts at
// the last byte of the title.
//
// The scan anchors on the first "</h1>" and walks backward until it sits on a
// '>' preceded by '"'. That pair always ends the heading's opening tag,
// whatever attributes come before it, e.g.
//
//	<h1 id="firstHeading" class="firstHeading" lang="en">Philosophy</h1>
//
// The returned remainder lets later scans skip the page header and
// navigation markup.
func ExtractTitle(body string) (remainder, title string, err error) {
	end := strings.Index(body, TitleEndMarker)
	if end < 0 {
		return "", "", fmt.Errorf("%w: no %s in document", ErrMalformedDocument, TitleEndMarker)
	}

	anchor := end - 1
	start := -1
	for cur := anchor; cur >= 1; cur-- {
		if body[cur] == '>' && body[cur-1] == '"' {
			start = cur + 1
			break
		}
	}
	if start < 0 {
		return "", "", fmt.Errorf("%w: heading open tag not found before %s", ErrMalformedDocument, TitleEndMarker)
	}

	title = body[start:end]
	if title == "" {
		return "", "", fmt.Errorf("%w: empty heading", ErrMalformedDocument)
	}

	return body[anchor:], title, nil
}
