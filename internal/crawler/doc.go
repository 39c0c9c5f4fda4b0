// Package crawler scans Wikipedia article markup for the title and the
// "first link" of an article, and fetches articles by title.
//
// # Scanner
//
// The scanner is not an HTML parser. It works on the raw page text with
// substring search and a forward-only cursor, relying on a handful of
// literal markers in Wikipedia's rendered output (see markers.go):
//
//   - ExtractTitle finds the heading text by scanning backward from "</h1>".
//   - NextCandidateTag finds the next anchor tag that is not inside
//     parentheses or an italic span.
//   - FirstLink applies NextCandidateTag from the first paragraph onward and
//     returns the first internal article link that is not a Help page.
//   - Classify rejects placeholder pages for missing articles and pages
//     outside the article namespace.
//
// Parentheses and italics are skipped one level at a time; nested
// exclusion zones are not balanced. This matches how the walk has always
// counted "first links" and is kept on purpose.
//
// # Fetching
//
// HTTPFetcher performs a GET for "<base URL><topic>". It negotiates gzip,
// deflate and brotli, decodes the charset, and reports failures as
// *FetchError. The *http.Client is injected so that fetches can be routed
// through Tor (see the tor package).
//
// # Usage
//
//	f := crawler.NewHTTPFetcher(crawler.NewHTTPClient(30 * time.Second))
//	body, err := f.Fetch(ctx, "Ice_cream")
//	if err == nil {
//		err = crawler.Classify(body)
//	}
//	rest, title, err := crawler.ExtractTitle(body)
//	next, err := crawler.FirstLink(rest)
package crawler
