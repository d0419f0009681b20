package intent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kalambet/remedy/internal/metrics"
	"github.com/kalambet/remedy/internal/storage"
)

const defaultExtractionTimeout = 8 * time.Second

// Generator produces a text completion for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor asks a language model to structure the user's message and falls
// back to ExtractRules whenever the model is missing or gives no usable answer.
type Extractor struct {
	gen     Generator
	timeout time.Duration
}

// NewExtractor creates an Extractor. gen may be nil, in which case every call
// uses the rule-based path. A non-positive timeout selects the default.
func NewExtractor(gen Generator, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultExtractionTimeout
	}
	return &Extractor{gen: gen, timeout: timeout}
}

// Extract structures text using the model, with history as conversational
// context. It never fails: any model error, timeout or unparsable reply
// yields the rule-based result instead.
func (e *Extractor) Extract(ctx context.Context, text string, history []string, symptoms []storage.Symptom) Result {
	fallback := func() Result {
		return Result{Info: ExtractRules(text, symptoms), Source: SourceRules}
	}
	if e.gen == nil {
		return fallback()
	}

	names := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		names = append(names, s.Name)
	}
	prompt := BuildPrompt(text, history, names)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	backend := e.gen.Name()
	start := time.Now()
	reply, err := e.gen.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.RecordModelCall(backend, outcome, elapsed)
		slog.Warn("model extraction failed, using rules", "backend", backend, "error", err)
		return fallback()
	}

	info, err := ParseReply(reply)
	if err != nil {
		metrics.RecordModelCall(backend, metrics.OutcomeUnparsable, elapsed)
		slog.Warn("unparsable model reply, using rules", "backend", backend, "error", err, "reply", reply)
		return fallback()
	}

	metrics.RecordModelCall(backend, metrics.OutcomeOK, elapsed)
	return Result{Info: info, Source: SourceModel}
}
