package crawler

import "strings"

const (
	parenOpen   = "("
	parenClose  = ")"
	italicOpen  = "<i"
	italicClose = "</i>"
)

// NextCandidateTag finds the first anchor tag in fragment that is not inside
// parentheses or an italic span. It returns the fragment as narrowed by any
// skipped regions, together with the index of the tag in that narrowed
// fragment, or -1 when no admissible tag remains.
//
// Exclusion zones are skipped one level at a time. For "(" the fragment is
// cut just after the next ")", and for an italic tag just after the next
// "</i>". Nesting is not balanced: "(a (b) <a>)" is cut after the first ")"
// and the tag counts as admissible. A zone that never closes covers the rest
// of the fragment, so nothing is admissible.
func NextCandidateTag(fragment string) (string, int) {
	for {
		tag := indexTagOpen(fragment, AnchorOpen)
		if tag < 0 {
			return fragment, -1
		}

		before := fragment[:tag]
		switch {
		case strings.Contains(before, parenOpen):
			next, ok := skipPast(fragment, parenClose)
			if !ok {
				return fragment, -1
			}
			fragment = next
		case indexTagOpen(before, italicOpen) >= 0:
			next, ok := skipPast(fragment, italicClose)
			if !ok {
				return fragment, -1
			}
			fragment = next
		default:
			return fragment, tag
		}
	}
}

// skipPast drops everything up to and including the first occurrence of
// closer. The result is always strictly shorter than s.
func skipPast(s, closer string) (string, bool) {
	i := strings.Index(s, closer)
	if i < 0 {
		return s, false
	}
	return s[i+len(closer):], true
}

// indexTagOpen returns the index of the first start tag in s that begins with
// open and is followed by whitespace, '>' or '/'. Longer tag names sharing the
// prefix do not count, so "<i" skips img and iframe and "<a" skips abbr and
// audio. It returns -1 when there is none.
func indexTagOpen(s, open string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], open)
		if i < 0 {
			return -1
		}
		pos := offset + i
		next := pos + len(open)
		if next < len(s) {
			switch s[next] {
			case '>', ' ', '\t', '\n', '\r', '/':
				return pos
			}
		}
		offset = next
	}
}
