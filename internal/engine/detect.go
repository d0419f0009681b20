package engine

import (
	"log/slog"

	"github.com/kalambet/remedy/internal/config"
	"github.com/kalambet/remedy/internal/gemini"
)

// Detect returns the Generator selected by cfg.Model.Provider, or nil when
// extraction should use the rule-based path only. The Gemini backend needs
// an API key; without one Detect returns nil.
func Detect(cfg config.Config) Generator {
	switch cfg.Model.Provider {
	case config.ProviderGemini:
		if cfg.Model.APIKey == "" {
			slog.Debug("no Gemini API key configured, using rule-based extraction")
			return nil
		}
		return gemini.New(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Name, gemini.GenerationConfig{
			MaxOutputTokens: cfg.Model.MaxOutputTokens,
			Temperature:     cfg.Model.Temperature,
		})
	case config.ProviderOllama:
		return NewOllamaGenerator(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	default:
		return nil
	}
}
