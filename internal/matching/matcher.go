// Package matching resolves extracted symptom names to catalog records and
// collects the interventions linked to them.
package matching

import (
	"regexp"
	"strings"

	"github.com/kalambet/remedy/internal/intent"
	"github.com/kalambet/remedy/internal/storage"
)

var nonLetters = regexp.MustCompile(`[^a-z]+`)

// Entry is the match result for one extracted symptom name. Record is nil
// when nothing in the catalog matched.
type Entry struct {
	Symptom       string                 `json:"symptom"`
	Record        *storage.Symptom       `json:"record,omitempty"`
	Interventions []storage.Intervention `json:"interventions"`
}

// Matched reports whether the entry resolved to a catalog record.
func (e Entry) Matched() bool { return e.Record != nil }

// Match returns one Entry per name in info.Symptoms, in order. Intervention
// IDs that do not exist in interventions are skipped.
func Match(info intent.ExtractedInfo, symptoms []storage.Symptom, interventions []storage.Intervention) []Entry {
	byID := index(interventions)

	entries := make([]Entry, 0, len(info.Symptoms))
	for _, name := range info.Symptoms {
		e := Entry{Symptom: name, Interventions: []storage.Intervention{}}
		if rec, ok := find(strings.ToLower(strings.TrimSpace(name)), symptoms); ok {
			e.Record = &rec
			e.Interventions = resolve(rec, byID)
		}
		entries = append(entries, e)
	}
	return entries
}

// Linked returns the interventions rec points to, in rec's order, skipping
// ids missing from interventions.
func Linked(rec storage.Symptom, interventions []storage.Intervention) []storage.Intervention {
	return resolve(rec, index(interventions))
}

func index(interventions []storage.Intervention) map[int]storage.Intervention {
	byID := make(map[int]storage.Intervention, len(interventions))
	for _, iv := range interventions {
		if _, dup := byID[iv.ID]; !dup {
			byID[iv.ID] = iv
		}
	}
	return byID
}

func resolve(rec storage.Symptom, byID map[int]storage.Intervention) []storage.Intervention {
	out := []storage.Intervention{}
	for _, id := range rec.Interventions {
		if iv, ok := byID[id]; ok {
			out = append(out, iv)
		}
	}
	return out
}

// find applies the direct tier first and falls back to name tokens.
// A blank name matches nothing.
func find(s string, symptoms []storage.Symptom) (storage.Symptom, bool) {
	if s == "" {
		return storage.Symptom{}, false
	}
	for _, sym := range symptoms {
		name := strings.ToLower(sym.Name)
		if name == s || strings.Contains(strings.ToLower(sym.Description), s) || strings.Contains(name, s) {
			return sym, true
		}
	}
	for _, sym := range symptoms {
		for _, tok := range nonLetters.Split(strings.ToLower(sym.Name), -1) {
			if tok != "" && strings.Contains(s, tok) {
				return sym, true
			}
		}
	}
	return storage.Symptom{}, false
}
