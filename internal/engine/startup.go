package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/kalambet/remedy/internal/gemini"
	"github.com/kalambet/remedy/internal/ollama"
)

// Describe returns a one-line summary of the selected backend.
func Describe(g Generator) string {
	switch b := g.(type) {
	case nil:
		return "none (rule-based extraction only)"
	case *gemini.Client:
		return fmt.Sprintf("gemini (%s)", b.Model())
	case *OllamaGenerator:
		return fmt.Sprintf("ollama (%s at %s)", b.model, b.client.BaseURL())
	default:
		return b.Name()
	}
}

// EnsureReady prepares the backend before the server accepts requests and
// writes progress to w. For Ollama this checks the server and pulls the model
// when missing; remote and absent backends need no preparation. A returned
// error means model calls will fail and every turn will use the rules.
func EnsureReady(ctx context.Context, g Generator, w io.Writer) error {
	fmt.Fprintf(w, "model backend: %s\n", Describe(g))

	og, ok := g.(*OllamaGenerator)
	if !ok {
		return nil
	}
	return ollama.EnsureReady(ctx, og.client, og.model, w)
}
