package walk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNormalizeTopic tests starting-topic normalisation.
func TestNormalizeTopic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces become underscores", in: "Ice cream", want: "Ice_cream"},
		{name: "surrounding space is trimmed", in: "  Tea \n", want: "Tea"},
		{name: "underscores are kept", in: "Already_normal", want: "Already_normal"},
		{name: "decomposed accents are composed and escaped", in: "Rene\u0301 Descartes", want: "Ren%C3%A9_Descartes"},
		{name: "question mark is escaped", in: "Who?", want: "Who%3F"},
		{name: "hash and percent are escaped", in: "C# 100%", want: "C%23_100%25"},
		{name: "empty stays empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeTopic(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestListSource tests the fixed topic list.
func TestListSource(t *testing.T) {
	t.Parallel()

	t.Run("returns topics in order then ErrNoMoreTopics", func(t *testing.T) {
		t.Parallel()

		s := NewListSource("A", "", "B")
		if s.Remaining() != 2 {
			t.Errorf("expected 2 remaining, got %d", s.Remaining())
		}

		for _, want := range []string{"A", "B"} {
			got, err := s.NextTopic(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		}

		if _, err := s.NextTopic(context.Background()); !errors.Is(err, ErrNoMoreTopics) {
			t.Errorf("expected ErrNoMoreTopics, got %v", err)
		}
	})

	t.Run("respects a cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewListSource("A").NextTopic(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestPromptSource tests interactive topic input.
func TestPromptSource(t *testing.T) {
	t.Parallel()

	t.Run("prints the prompt and skips blank lines", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		s := NewPromptSource(strings.NewReader("\n  \nIce cream\n"), &out)

		got, err := s.NextTopic(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Ice cream" {
			t.Errorf("expected 'Ice cream', got %q", got)
		}
		if strings.Count(out.String(), DefaultPrompt) != 3 {
			t.Errorf("expected the prompt three times, got %q", out.String())
		}
	})

	t.Run("end of input is ErrNoMoreTopics", func(t *testing.T) {
		t.Parallel()

		s := NewPromptSource(strings.NewReader(""), io.Discard)
		if _, err := s.NextTopic(context.Background()); !errors.Is(err, ErrNoMoreTopics) {
			t.Errorf("expected ErrNoMoreTopics, got %v", err)
		}
	})

	t.Run("cancellation interrupts a blocked read", func(t *testing.T) {
		t.Parallel()

		r, w := io.Pipe()
		defer w.Close()

		s := NewPromptSource(r, io.Discard)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if _, err := s.NextTopic(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("read after cancellation resumes the pending line", func(t *testing.T) {
		t.Parallel()

		r, w := io.Pipe()
		defer w.Close()

		var out bytes.Buffer
		s := NewPromptSource(r, &out)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := s.NextTopic(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}

		go func() {
			_, _ = io.WriteString(w, "Tea\n")
		}()

		next, cancelNext := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelNext()

		topic, err := s.NextTopic(next)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if topic != "Tea" {
			t.Errorf("expected 'Tea', got %q", topic)
		}
		if got := strings.Count(out.String(), DefaultPrompt); got != 1 {
			t.Errorf("expected the prompt once, got %d times", got)
		}
	})
}
