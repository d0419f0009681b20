package matching

import (
	"slices"

	"github.com/kalambet/remedy/internal/storage"
)

// ForSeverity keeps the interventions tagged with severity, preserving order.
// An empty severity keeps everything. The result is never nil.
func ForSeverity(ivs []storage.Intervention, severity string) []storage.Intervention {
	out := make([]storage.Intervention, 0, len(ivs))
	for _, iv := range ivs {
		if severity == "" || slices.Contains(iv.Severity, severity) {
			out = append(out, iv)
		}
	}
	return out
}

// FilterEntries returns a copy of entries whose interventions are narrowed to
// severity. Records are shared with the input.
func FilterEntries(entries []Entry, severity string) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Interventions = ForSeverity(e.Interventions, severity)
		out[i] = e
	}
	return out
}
