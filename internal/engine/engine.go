// Package engine selects the language model backend used for symptom
// extraction and checks that it is usable at startup.
package engine

import "context"

// Generator abstracts a text-completion backend (Gemini or a local Ollama
// model). The intent extractor depends on this capability only, so tests can
// substitute a fake and a missing backend is simply a nil Generator.
type Generator interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Generate returns the model's reply to a single prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
