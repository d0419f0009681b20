package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source tells where the effective value of a key came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "config file"
	SourceDotEnv  Source = ".env"
	SourceEnv     Source = "environment"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
	Source Source
}

// dotEnvVars are the variables Load copied from .env into the environment.
var dotEnvVars = map[string]bool{}

// ShowAll lists the non-secret keys of cfg and where each value came from.
func ShowAll(cfg Config) []KeyInfo {
	return describe(cfg, newFileBackend(configFilePath()), dotEnvVars)
}

func describe(cfg Config, file *fileBackend, fromDotEnv map[string]bool) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		if s.secret {
			continue
		}
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
			Source: sourceOf(s, file, fromDotEnv),
		})
	}
	return result
}

// sourceOf mirrors the precedence in loadWith: environment, then file, then
// defaults. An env var that does not parse is ignored there and here.
func sourceOf(s keySpec, file *fileBackend, fromDotEnv map[string]bool) Source {
	if raw := os.Getenv(s.env); raw != "" {
		if _, err := s.parse(raw); err == nil {
			if fromDotEnv[s.env] {
				return SourceDotEnv
			}
			return SourceEnv
		}
	}
	if _, ok := file.data[s.key]; ok {
		return SourceFile
	}
	return SourceDefault
}

// SetKey validates value for key and writes it to the config file. The
// returned Source is non-empty when an environment variable still overrides
// the stored value.
func SetKey(key, value string) (Source, error) {
	s, ok := lookupSpec(key)
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}
	if s.secret {
		return "", fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}
	v, err := s.parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := checkValue(key, v); err != nil {
		return "", err
	}

	b := newFileBackend(configFilePath())
	if i, ok := v.(int); ok {
		err = b.SetInt(key, i)
	} else {
		err = b.SetString(key, value)
	}
	if err != nil {
		return "", err
	}

	switch src := sourceOf(s, b, dotEnvVars); src {
	case SourceEnv, SourceDotEnv:
		return src, nil
	}
	return "", nil
}

// checkValue applies the same limits Load enforces, so a bad value is
// rejected when written rather than on the next start.
func checkValue(key string, v any) error {
	switch key {
	case "server.port":
		if p := v.(int); p <= 0 || p > 65535 {
			return fmt.Errorf("invalid server.port %d", p)
		}
	case "model.provider":
		switch v.(string) {
		case ProviderGemini, ProviderOllama, ProviderNone:
		default:
			return fmt.Errorf("invalid model.provider %q: want one of %s, %s, %s",
				v, ProviderGemini, ProviderOllama, ProviderNone)
		}
	case "model.timeout":
		if d, err := time.ParseDuration(v.(string)); err != nil || d <= 0 {
			return fmt.Errorf("invalid model.timeout %q: want a positive duration such as 10s", v)
		}
	case "log.level":
		switch strings.ToLower(v.(string)) {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("invalid log.level %q: want debug, info, warn or error", v)
		}
	}
	return nil
}

func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		return strconv.Atoi(raw)
	case kFloat:
		return strconv.ParseFloat(raw, 64)
	}
	return raw, nil
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// ValidKeys returns the list of valid non-secret config key names.
func ValidKeys() []string {
	var keys []string
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}
