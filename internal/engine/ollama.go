package engine

import (
	"context"

	"github.com/kalambet/remedy/internal/ollama"
)

// OllamaGenerator adapts an ollama.Client to the Generator interface. Each
// prompt is sent as one user message with JSON output requested.
type OllamaGenerator struct {
	client *ollama.Client
	model  string
}

// NewOllamaGenerator creates an OllamaGenerator for model on the server at baseURL.
func NewOllamaGenerator(baseURL, model string) *OllamaGenerator {
	return &OllamaGenerator{client: ollama.New(baseURL), model: model}
}

func (g *OllamaGenerator) Name() string { return "ollama" }

// Model returns the configured model name.
func (g *OllamaGenerator) Model() string { return g.model }

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.client.Chat(ctx, g.model, []ollama.Message{
		{Role: "user", Content: prompt},
	}, ollama.FormatJSON)
}
