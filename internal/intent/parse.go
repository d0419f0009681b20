package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/kalambet/remedy/internal/storage"
)

// ErrNoAnswer is returned by ParseReply when the reply holds no usable object.
var ErrNoAnswer = errors.New("no structured answer in model reply")

// outerObject grabs everything from the first '{' to the last '}'.
var outerObject = regexp.MustCompile(`(?s)\{.*\}`)

type modelReply struct {
	Symptoms []string `json:"symptoms"`
	Severity *string  `json:"severity"`
	Duration *string  `json:"duration"`
}

// ParseReply decodes the JSON object embedded in a free-text model reply.
// A null or non-object payload and fields of the wrong JSON type are all
// reported as ErrNoAnswer, so a mistyped reply (e.g. "symptoms":"cough") makes
// Extract fall back to the rules. Severity outside the three tiers and empty
// strings become nil.
func ParseReply(reply string) (ExtractedInfo, error) {
	raw := strings.TrimSpace(reply)
	if m := outerObject.FindString(raw); m != "" {
		raw = m
	}

	data := []byte(raw)
	if !bytes.HasPrefix(data, []byte("{")) {
		return ExtractedInfo{}, ErrNoAnswer
	}
	var r modelReply
	if err := json.Unmarshal(data, &r); err != nil {
		return ExtractedInfo{}, errors.Join(ErrNoAnswer, err)
	}

	info := empty()
	for _, s := range r.Symptoms {
		if strings.TrimSpace(s) != "" {
			info.Symptoms = append(info.Symptoms, s)
		}
	}
	if r.Severity != nil {
		switch sev := strings.ToLower(strings.TrimSpace(*r.Severity)); sev {
		case storage.SeverityMild, storage.SeverityModerate, storage.SeveritySevere:
			info.Severity = strPtr(sev)
		}
	}
	if r.Duration != nil && strings.TrimSpace(*r.Duration) != "" {
		info.Duration = strPtr(*r.Duration)
	}
	return info, nil
}
