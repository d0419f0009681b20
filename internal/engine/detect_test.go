package engine

import (
	"testing"

	"github.com/kalambet/remedy/internal/config"
	"github.com/kalambet/remedy/internal/gemini"
)

func baseConfig() config.Config {
	var cfg config.Config
	cfg.Model.Name = "gemini-2.5-pro"
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.Model = "phi3.5"
	return cfg
}

func TestDetect_GeminiWithKey(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = config.ProviderGemini
	cfg.Model.APIKey = "key"

	g := Detect(cfg)
	c, ok := g.(*gemini.Client)
	if !ok {
		t.Fatalf("Detect returned %T, want *gemini.Client", g)
	}
	if c.Model() != "gemini-2.5-pro" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestDetect_GeminiWithoutKey(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = config.ProviderGemini

	if g := Detect(cfg); g != nil {
		t.Errorf("Detect returned %T, want nil", g)
	}
}

func TestDetect_Ollama(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = config.ProviderOllama

	g := Detect(cfg)
	og, ok := g.(*OllamaGenerator)
	if !ok {
		t.Fatalf("Detect returned %T, want *OllamaGenerator", g)
	}
	if og.Model() != "phi3.5" {
		t.Errorf("Model() = %q, want phi3.5", og.Model())
	}
}

func TestDetect_None(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = config.ProviderNone
	cfg.Model.APIKey = "key"

	if g := Detect(cfg); g != nil {
		t.Errorf("Detect returned %T, want nil", g)
	}
}
