// Package pipeline runs one chat turn: load the catalog, extract, match and
// compose follow-up questions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/remedy/internal/composer"
	"github.com/kalambet/remedy/internal/config"
	"github.com/kalambet/remedy/internal/engine"
	"github.com/kalambet/remedy/internal/intent"
	"github.com/kalambet/remedy/internal/matching"
	"github.com/kalambet/remedy/internal/metrics"
	"github.com/kalambet/remedy/internal/storage"
)

// Turn is the combined result of one chat turn.
type Turn struct {
	Input     string               `json:"input"`
	Extracted intent.ExtractedInfo `json:"extracted"`
	Matched   []matching.Entry     `json:"matched"`
	FollowUps []composer.FollowUp  `json:"followUps"`

	// Source is the extractor that produced Extracted ("model" or "rules").
	Source string `json:"-"`
}

// Orchestrator drives extractor → matcher → composer for each turn.
// It holds no per-turn state and is safe for concurrent use.
type Orchestrator struct {
	store     *storage.Store
	extractor *intent.Extractor
}

// NewOrchestrator wires an Orchestrator from its parts.
func NewOrchestrator(store *storage.Store, extractor *intent.Extractor) *Orchestrator {
	return &Orchestrator{store: store, extractor: extractor}
}

// New builds an Orchestrator from configuration: it opens the record store
// and selects the model backend with engine.Detect. The selected backend is
// returned so callers can report or prepare it.
func New(cfg config.Config) (*Orchestrator, engine.Generator, error) {
	store, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	gen := engine.Detect(cfg)

	// A nil engine.Generator must stay a nil intent.Generator.
	var ig intent.Generator
	if gen != nil {
		ig = gen
	}
	return NewOrchestrator(store, intent.NewExtractor(ig, cfg.Model.TimeoutDuration())), gen, nil
}

// Store returns the record store the orchestrator reads from.
func (o *Orchestrator) Store() *storage.Store {
	return o.store
}

// HandleTurn processes one user message. The catalog is re-read on every
// call. Model failures never surface here; only catalog read errors do.
func (o *Orchestrator) HandleTurn(ctx context.Context, message string, history []string) (Turn, error) {
	start := time.Now()

	symptoms, interventions, err := o.loadCatalog(ctx)
	if err != nil {
		return Turn{}, err
	}

	res := o.extractor.Extract(ctx, message, history, symptoms)
	matched := matching.Match(res.Info, symptoms, interventions)
	followUps := composer.Compose(res.Info)

	hits := 0
	for _, m := range matched {
		if m.Matched() {
			hits++
		}
	}
	metrics.RecordChatTurn(res.Source)
	metrics.RecordMatches(hits, len(matched)-hits)

	slog.Debug("chat turn complete",
		"source", res.Source,
		"matched", hits,
		"unmatched", len(matched)-hits,
		"follow_ups", len(followUps),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Turn{
		Input:     message,
		Extracted: res.Info,
		Matched:   matched,
		FollowUps: followUps,
		Source:    res.Source,
	}, nil
}

// loadCatalog reads both collections concurrently.
func (o *Orchestrator) loadCatalog(ctx context.Context) ([]storage.Symptom, []storage.Intervention, error) {
	var (
		symptoms      []storage.Symptom
		interventions []storage.Intervention
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if symptoms, err = o.store.Symptoms.GetAll(); err != nil {
			return fmt.Errorf("loading symptoms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if interventions, err = o.store.Interventions.GetAll(); err != nil {
			return fmt.Errorf("loading interventions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return symptoms, interventions, nil
}
