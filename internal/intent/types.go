package intent

import "encoding/json"

// Extraction sources reported in Result.Source.
const (
	SourceModel = "model"
	SourceRules = "rules"
)

// ExtractedInfo is the structured triple pulled out of one user message.
// A nil Severity or Duration means the value is unknown.
type ExtractedInfo struct {
	Symptoms []string `json:"symptoms"`
	Severity *string  `json:"severity"`
	Duration *string  `json:"duration"`
}

// MarshalJSON always emits symptoms as an array.
func (e ExtractedInfo) MarshalJSON() ([]byte, error) {
	type plain ExtractedInfo
	if e.Symptoms == nil {
		e.Symptoms = []string{}
	}
	return json.Marshal(plain(e))
}

// Result is the outcome of Extractor.Extract.
type Result struct {
	Info   ExtractedInfo
	Source string
}

func empty() ExtractedInfo {
	return ExtractedInfo{Symptoms: []string{}}
}

func strPtr(s string) *string { return &s }
