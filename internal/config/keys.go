package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "REMEDY_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "REMEDY_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "database.symptoms_path", typ: kString, env: "REMEDY_DATABASE_SYMPTOMS_PATH",
		apply:   func(cfg *Config, v any) { cfg.Database.SymptomsPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.SymptomsPath },
	},
	{
		key: "database.interventions_path", typ: kString, env: "REMEDY_DATABASE_INTERVENTIONS_PATH",
		apply:   func(cfg *Config, v any) { cfg.Database.InterventionsPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.InterventionsPath },
	},
	{
		key: "model.provider", typ: kString, env: "REMEDY_MODEL_PROVIDER",
		apply:   func(cfg *Config, v any) { cfg.Model.Provider = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.Provider },
	},
	{
		key: "model.name", typ: kString, env: "REMEDY_MODEL_NAME",
		apply:   func(cfg *Config, v any) { cfg.Model.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.Name },
	},
	{
		key: "model.base_url", typ: kString, env: "REMEDY_MODEL_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Model.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.BaseURL },
	},
	{
		key: "model.api_key", typ: kString, env: "REMEDY_GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Model.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.APIKey },
	},
	{
		key: "model.timeout", typ: kString, env: "REMEDY_MODEL_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Model.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.Timeout },
	},
	{
		key: "model.max_output_tokens", typ: kInt, env: "REMEDY_MODEL_MAX_OUTPUT_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.Model.MaxOutputTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.Model.MaxOutputTokens },
	},
	{
		key: "model.temperature", typ: kFloat, env: "REMEDY_MODEL_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.Model.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.Model.Temperature },
	},
	{
		key: "ollama.base_url", typ: kString, env: "REMEDY_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.model", typ: kString, env: "REMEDY_OLLAMA_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.Model },
	},
	{
		key: "log.level", typ: kString, env: "REMEDY_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "cors.allowed_origins", typ: kString, env: "REMEDY_CORS_ALLOWED_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.CORS.AllowedOrigins = v.(string) },
		extract: func(cfg Config) any { return cfg.CORS.AllowedOrigins },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
