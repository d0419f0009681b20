package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/remedy/internal/storage"
)

func ivNames(ivs []storage.Intervention) []string {
	out := []string{}
	for _, iv := range ivs {
		out = append(out, iv.Name)
	}
	return out
}

func TestForSeverity(t *testing.T) {
	sos := true
	ivs := []storage.Intervention{
		{ID: 1, Name: "Honey tea", Severity: []string{"mild"}},
		{ID: 2, Name: "Rest", Severity: []string{"mild", "moderate"}},
		{ID: 3, Name: "Emergency room", Severity: []string{"severe"}, SOS: &sos},
		{ID: 4, Name: "Untagged"},
	}

	tests := []struct {
		severity string
		want     []string
	}{
		{"mild", []string{"Honey tea", "Rest"}},
		{"moderate", []string{"Rest"}},
		{"severe", []string{"Emergency room"}},
		{"", []string{"Honey tea", "Rest", "Emergency room", "Untagged"}},
		{"extreme", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			got := ForSeverity(ivs, tt.severity)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ivNames(got))
		})
	}
}

func TestForSeverity_NilInput(t *testing.T) {
	got := ForSeverity(nil, "mild")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterEntries_DoesNotMutateInput(t *testing.T) {
	symptoms, interventions := catalog()
	entries := Match(names("coughing"), symptoms, interventions)
	require.Len(t, entries, 1)

	filtered := FilterEntries(entries, "moderate")
	assert.Equal(t, []string{"Rest"}, ivNames(filtered[0].Interventions))
	assert.Equal(t, []string{"Honey tea", "Rest"}, ivNames(entries[0].Interventions))
	assert.Same(t, entries[0].Record, filtered[0].Record)
}

func TestLinked(t *testing.T) {
	symptoms, interventions := catalog()

	assert.Equal(t, []string{"Rest"}, ivNames(Linked(symptoms[2], interventions)), "dangling 999 skipped")
	got := Linked(symptoms[3], interventions)
	require.NotNil(t, got)
	assert.Empty(t, got)
}
