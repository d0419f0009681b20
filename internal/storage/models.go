package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Severity tiers an intervention can be recommended for.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

type Symptom struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Interventions []int  `json:"interventions"` // intervention IDs; may reference missing records
}

func (s Symptom) RecordID() int { return s.ID }

func (s Symptom) stamped(id int) Symptom {
	s.ID = id
	if s.Interventions == nil {
		s.Interventions = []int{}
	}
	return s
}

type Intervention struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Severity     []string `json:"severity"`
	ProductLink  string   `json:"product_link"`
	ProductImage string   `json:"product_image"`
	Likes        int      `json:"likes"`
	Dislikes     int      `json:"dislikes"`
	SOS          *bool    `json:"SOS,omitempty"` // set only on urgent interventions
}

func (i Intervention) RecordID() int { return i.ID }

func (i Intervention) stamped(id int) Intervention {
	i.ID = id
	if i.Severity == nil {
		i.Severity = []string{}
	}
	return i
}

// Urgent reports whether the intervention is flagged for emergencies.
func (i Intervention) Urgent() bool {
	return i.SOS != nil && *i.SOS
}

// ValidSeverity reports whether s is one of the three severity tiers.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}
