// Package composer derives the clarifying questions asked when an
// extraction is missing symptoms, severity or duration.
package composer

import (
	"github.com/kalambet/remedy/internal/intent"
	"github.com/kalambet/remedy/internal/storage"
)

// Follow-up question texts.
const (
	AskSymptoms = "Can you describe your symptoms in a sentence or two?"
	AskSeverity = "How would you rate the severity of your symptoms"
	AskDuration = "How long have you had these symptoms (for example: 'for two days', 'since yesterday')?"
)

// FollowUp is a clarifying question, optionally with suggested answers.
type FollowUp struct {
	Description string   `json:"description"`
	Options     []string `json:"options,omitempty"`
}

// Compose returns one question per missing field of info, always in the
// order symptoms, severity, duration. A complete extraction yields an empty
// (non-nil) slice.
func Compose(info intent.ExtractedInfo) []FollowUp {
	out := []FollowUp{}
	if len(info.Symptoms) == 0 {
		out = append(out, FollowUp{Description: AskSymptoms})
	}
	if info.Severity == nil {
		out = append(out, FollowUp{
			Description: AskSeverity,
			Options:     []string{storage.SeverityMild, storage.SeverityModerate, storage.SeveritySevere},
		})
	}
	if info.Duration == nil {
		out = append(out, FollowUp{Description: AskDuration})
	}
	return out
}
