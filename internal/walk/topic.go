package walk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultPrompt is printed before reading a topic interactively.
const DefaultPrompt = "Enter starting Wikipedia topic: "

// TopicSource supplies starting topics. NextTopic is called once at the
// start of the walk and again after every failed attempt.
type TopicSource interface {
	NextTopic(ctx context.Context) (string, error)
}

// NormalizeTopic turns human input into an article name in the same escaped
// form as link targets: surrounding space is trimmed, the text is
// NFC-normalised, spaces become underscores, and the result is path-escaped
// so that "Who?" is fetched as "Who%3F".
func NormalizeTopic(topic string) string {
	topic = norm.NFC.String(strings.TrimSpace(topic))
	return url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
}

// ListSource hands out a fixed list of topics in order.
// It is not safe for concurrent use; give each Engine its own.
type ListSource struct {
	topics []string
	next   int
}

// NewListSource creates a ListSource over topics. Blank entries are skipped.
func NewListSource(topics ...string) *ListSource {
	kept := make([]string, 0, len(topics))
	for _, t := range topics {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	return &ListSource{topics: kept}
}

// NextTopic returns the next topic, or ErrNoMoreTopics.
func (s *ListSource) NextTopic(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.topics) {
		return "", ErrNoMoreTopics
	}
	t := s.topics[s.next]
	s.next++
	return t, nil
}

// Remaining returns how many topics have not been handed out yet.
func (s *ListSource) Remaining() int {
	return len(s.topics) - s.next
}

// PromptSource asks for topics on an interactive terminal.
// At most one read of the input is in flight at a time. A read abandoned by
// a cancelled NextTopic is picked up by the next call.
type PromptSource struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
	pending chan scanResult
}

// NewPromptSource reads topics line by line from in and writes the prompt
// to out.
func NewPromptSource(in io.Reader, out io.Writer) *PromptSource {
	return &PromptSource{
		scanner: bufio.NewScanner(in),
		out:     out,
		prompt:  DefaultPrompt,
	}
}

type scanResult struct {
	line string
	ok   bool
	err  error
}

// NextTopic prints the prompt and returns the next non-blank line.
// End of input yields ErrNoMoreTopics.
func (s *PromptSource) NextTopic(ctx context.Context) (string, error) {
	for {
		if s.pending == nil {
			if _, err := fmt.Fprint(s.out, s.prompt); err != nil {
				return "", err
			}

			// Scan blocks on the terminal, so wait for it in the background
			// and give up as soon as ctx is cancelled.
			ch := make(chan scanResult, 1)
			go func() {
				ok := s.scanner.Scan()
				ch <- scanResult{line: s.scanner.Text(), ok: ok, err: s.scanner.Err()}
			}()
			s.pending = ch
		}

		var res scanResult
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res = <-s.pending:
			s.pending = nil
		}

		if !res.ok {
			if res.err != nil {
				return "", fmt.Errorf("read topic: %w", res.err)
			}
			return "", ErrNoMoreTopics
		}
		if strings.TrimSpace(res.line) != "" {
			return res.line, nil
		}
	}
}
