package crawler

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/nao1215/philowalk/internal/config"
	"github.com/nao1215/philowalk/internal/log"
	"golang.org/x/net/html/charset"
)

// maxRedirects bounds redirect chains (http to https, mobile host, etc.).
const maxRedirects = 10

// HTTPFetcher fetches article pages by title.
// It builds the URL by appending the topic to a base URL, so topics must
// already be normalised (underscores for spaces).
type HTTPFetcher struct {
	// client performs the requests. It may route through Tor.
	client *http.Client

	// baseURL is the article path prefix, e.g. "https://en.wikipedia.org/wiki/".
	baseURL string

	// userAgent is sent with every request. Wikimedia rejects requests
	// without a descriptive User-Agent.
	userAgent string

	// maxBodySize bounds the decoded body size.
	maxBodySize int64

	// headers are extra request headers from the configuration file.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string

	logger *slog.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithBaseURL sets the article path prefix.
func WithBaseURL(base string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.baseURL = base
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum body size in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds custom request headers.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header.
func WithCookie(cookie string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher that uses client for all requests.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		baseURL:     config.DefaultBaseURL,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.logger = f.logger.With("component", "fetcher")
	f.logger.Debug("fetcher configured",
		"base_url", f.baseURL,
		"user_agent", f.userAgent,
		"headers", log.Headers(f.headers),
		"cookie", f.cookie,
	)

	return f
}

// NewHTTPClient returns a direct (non-proxied) client for article fetches.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// ArticleURL returns the URL fetched for topic.
func (f *HTTPFetcher) ArticleURL(topic string) string {
	return f.baseURL + topic
}

// Fetch downloads the article named topic and returns its decoded markup.
//
// Transport failures and non-2xx responses return a *FetchError. A 404 whose
// body is Wikipedia's "no article with this exact name" page returns
// ErrNonexistentArticle instead, since that is the more precise answer.
func (f *HTTPFetcher) Fetch(ctx context.Context, topic string) (string, error) {
	rawURL := f.ArticleURL(topic)
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{Topic: topic, URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &FetchError{Topic: topic, URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Topic: topic, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return "", &FetchError{Topic: topic, URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound && strings.Contains(body, NonexistentMarker) {
			return "", fmt.Errorf("%w: %s", ErrNonexistentArticle, topic)
		}
		return "", &FetchError{
			Topic:      topic,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	return body, nil
}

// readBody decompresses, size-limits and charset-decodes the response body.
func (f *HTTPFetcher) readBody(resp *http.Response) (string, error) {
	reader, err := decompressReader(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return "", fmt.Errorf("decompress body: %w", err)
	}

	limited := io.LimitReader(reader, f.maxBodySize)

	decoded, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// decompressReader wraps r according to the Content-Encoding header.
// We ask for compression ourselves, so net/http leaves decoding to us.
func decompressReader(encoding string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(r)
	case "deflate":
		return flate.NewReader(r), nil
	case "br":
		return brotli.NewReader(r), nil
	default:
		return r, nil
	}
}
