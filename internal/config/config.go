package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Model backends understood by engine.Detect.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

const defaultModelTimeout = 8 * time.Second

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Model    ModelConfig
	Ollama   OllamaConfig
	Log      LogConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	SymptomsPath      string
	InterventionsPath string
}

type ModelConfig struct {
	Provider        string
	Name            string
	BaseURL         string
	APIKey          string
	Timeout         string
	MaxOutputTokens int
	Temperature     float64
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type LogConfig struct {
	Level string
}

type CORSConfig struct {
	AllowedOrigins string // comma-separated; "*" allows any origin
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3030,
		},
		Database: DatabaseConfig{
			SymptomsPath:      filepath.Join(dataDir, "symptoms.json"),
			InterventionsPath: filepath.Join(dataDir, "interventions.json"),
		},
		Model: ModelConfig{
			Provider:        ProviderGemini,
			Name:            "gemini-2.5-pro",
			BaseURL:         "https://generativelanguage.googleapis.com",
			Timeout:         defaultModelTimeout.String(),
			MaxOutputTokens: 2048,
			Temperature:     0.7,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "phi3.5",
		},
		Log: LogConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
		},
	}
}

// Load reads configuration from the JSON config file, a .env file in the
// working directory, and environment variables, in increasing precedence.
//
// The config file lives at $XDG_CONFIG_HOME/remedy/config.json unless
// REMEDY_CONFIG points elsewhere. Variables from .env never override
// variables already present in the environment.
func Load() (Config, error) {
	loadDotEnv()
	return loadWith(newFileBackend(configFilePath()))
}

// loadDotEnv copies .env entries that are not already set into the
// environment and remembers which ones it supplied.
func loadDotEnv() {
	vars, err := godotenv.Read()
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] could not load .env: %v\n", err)
		}
		return
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err == nil {
			dotEnvVars[k] = true
		}
	}
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Accept the conventional variable name used by Google's tooling.
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	switch cfg.Model.Provider {
	case ProviderGemini, ProviderOllama, ProviderNone:
	default:
		return Config{}, fmt.Errorf("invalid model.provider %q: want one of %s, %s, %s",
			cfg.Model.Provider, ProviderGemini, ProviderOllama, ProviderNone)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TimeoutDuration parses Timeout, falling back to the default on bad input.
func (m ModelConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(m.Timeout)
	if err != nil || d <= 0 {
		slog.Warn("invalid model timeout, using default", "value", m.Timeout, "default", defaultModelTimeout)
		return defaultModelTimeout
	}
	return d
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "remedy-data"
		}
	}
	return filepath.Join(dir, "remedy")
}

func configFilePath() string {
	if p := os.Getenv("REMEDY_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "remedy", "config.json")
}
