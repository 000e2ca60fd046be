package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/docufi/ai/mock"
)

func TestSynthesizeSection(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		if !strings.Contains(system, "market size synthesizer") {
			t.Errorf("unexpected system prompt: %q", system)
		}
		if !strings.Contains(user, "raw research data") {
			t.Errorf("research context missing from prompt: %q", user)
		}
		return "  Market size is estimated to be $1 Billion.  ", nil
	}

	s, err := NewSynthesizer(completer)
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}

	text, err := s.SynthesizeSection(context.Background(), ReportSections[0], "raw research data")
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	if text != "Market size is estimated to be $1 Billion." {
		t.Errorf("expected trimmed completion, got %q", text)
	}
}

func TestSynthesizeSectionErrors(t *testing.T) {
	completer := mock.NewMockCompleter()
	s, err := NewSynthesizer(completer)
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}

	t.Run("empty context", func(t *testing.T) {
		_, err := s.SynthesizeSection(context.Background(), ReportSections[0], "  ")
		if !errors.Is(err, ErrEmptyContext) {
			t.Errorf("expected ErrEmptyContext, got %v", err)
		}
	})

	t.Run("completion error propagates", func(t *testing.T) {
		wantErr := errors.New("model unavailable")
		completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return "", wantErr
		}
		defer completer.Reset()

		_, err := s.SynthesizeSection(context.Background(), ReportSections[0], "data")
		if !errors.Is(err, wantErr) {
			t.Errorf("expected completion error to propagate, got %v", err)
		}
	})

	t.Run("nil completer", func(t *testing.T) {
		_, err := NewSynthesizer(nil)
		if !errors.Is(err, ErrMissingCompleter) {
			t.Errorf("expected ErrMissingCompleter, got %v", err)
		}
	})
}

func TestSynthesizeAll(t *testing.T) {
	completer := mock.NewMockCompleter()
	var systems []string
	completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		systems = append(systems, system)
		return "section text", nil
	}

	s, err := NewSynthesizer(completer)
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}

	texts, err := s.SynthesizeAll(context.Background(), "data")
	if err != nil {
		t.Fatalf("synthesis failed: %v", err)
	}
	if len(texts) != len(ReportSections) {
		t.Fatalf("expected %d sections, got %d", len(ReportSections), len(texts))
	}
	// Sections run in declaration order.
	if !strings.Contains(systems[0], "market size") || !strings.Contains(systems[1], "top players") {
		t.Errorf("sections out of order: %v", systems)
	}
}

func TestCompileReport(t *testing.T) {
	report := CompileReport("widget market", []string{
		"Market size is estimated to be $1 Billion.",
		"Top players are A, B, and C.",
	})

	want := `# Market Analysis for "widget market"

## Market Size
Market size is estimated to be $1 Billion.

## Top Players
Top players are A, B, and C.
`
	if report != want {
		t.Errorf("report mismatch\nwant:\n%s\ngot:\n%s", want, report)
	}
}
