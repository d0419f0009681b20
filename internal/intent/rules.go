package intent

import (
	"regexp"
	"strings"

	"github.com/kalambet/remedy/internal/storage"
)

// Severity cues, checked mild → moderate → severe. Each hit overwrites the
// previous one, so the most severe tier present wins.
var severityCues = []struct {
	level string
	re    *regexp.Regexp
}{
	{storage.SeverityMild, regexp.MustCompile(`\b(mild|slight|low)\b`)},
	{storage.SeverityModerate, regexp.MustCompile(`\b(moderate|medium|fairly)\b`)},
	{storage.SeveritySevere, regexp.MustCompile(`\b(severe|bad|worse|worst|intense|excruciating)\b`)},
}

var (
	durationCue  = regexp.MustCompile(`(?i)(for|since)\s+([0-9]+\s*(?:days?|weeks?|hours?|months?))|since\s+(yesterday|last night|this morning)`)
	wordSplitter = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	descriptionWords   = 6
	descriptionMinLen  = 4
	descriptionMinHits = 2
)

// ExtractRules scans text for catalog symptoms, severity cues and a duration
// phrase without calling any model. Symptom names are returned in catalog
// order.
func ExtractRules(text string, symptoms []storage.Symptom) ExtractedInfo {
	info := empty()
	lower := strings.ToLower(text)
	if lower == "" {
		return info
	}

	for _, s := range symptoms {
		if nameMatches(lower, s.Name) || descriptionMatches(lower, s.Description) {
			info.Symptoms = append(info.Symptoms, s.Name)
		}
	}

	for _, cue := range severityCues {
		if cue.re.MatchString(lower) {
			info.Severity = strPtr(cue.level)
		}
	}

	if m := durationCue.FindString(lower); m != "" {
		info.Duration = strPtr(m)
	}

	return info
}

// nameMatches reports whether name occurs in text as a whole word.
// Blank names never match.
func nameMatches(text, name string) bool {
	name = strings.ToLower(name)
	if strings.TrimSpace(name) == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// descriptionMatches counts how many of the first few description words
// appear in text. Short words are ignored.
func descriptionMatches(text, description string) bool {
	var words []string
	for _, w := range wordSplitter.Split(strings.ToLower(description), -1) {
		if w != "" {
			words = append(words, w)
		}
		if len(words) == descriptionWords {
			break
		}
	}

	hits := 0
	for _, w := range words {
		if len(w) >= descriptionMinLen && strings.Contains(text, w) {
			hits++
		}
	}
	return hits >= descriptionMinHits
}
