package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kalambet/remedy/internal/config"
)

// Store groups the symptom and intervention collections.
type Store struct {
	Symptoms      *Collection[Symptom]
	Interventions *Collection[Intervention]
}

// Open prepares the collections at the configured paths, creating their
// parent directories. Files themselves are created on first write.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	for _, p := range []string{cfg.SymptomsPath, cfg.InterventionsPath} {
		if p == "" {
			return nil, fmt.Errorf("database path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return &Store{
		Symptoms:      NewCollection[Symptom](cfg.SymptomsPath),
		Interventions: NewCollection[Intervention](cfg.InterventionsPath),
	}, nil
}
