package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/remedy/internal/intent"
	"github.com/kalambet/remedy/internal/storage"
)

func catalog() ([]storage.Symptom, []storage.Intervention) {
	symptoms := []storage.Symptom{
		{ID: 1, Name: "coughing", Description: "Persistent cough, dry or wet", Interventions: []int{1, 2}},
		{ID: 2, Name: "sore throat", Description: "Pain when swallowing", Interventions: []int{3}},
		{ID: 3, Name: "weakness", Description: "Feeling tired or fatigued", Interventions: []int{2, 999}},
		{ID: 4, Name: "fever", Description: "High body temperature", Interventions: nil},
	}
	interventions := []storage.Intervention{
		{ID: 1, Name: "Honey tea", Severity: []string{"mild"}},
		{ID: 2, Name: "Rest", Severity: []string{"mild", "moderate"}},
		{ID: 3, Name: "Lozenges", Severity: []string{"mild"}},
	}
	return symptoms, interventions
}

func names(in ...string) intent.ExtractedInfo {
	return intent.ExtractedInfo{Symptoms: in}
}

func TestMatch_EmptySymptoms(t *testing.T) {
	s, iv := catalog()
	got := Match(names(), s, iv)
	require.NotNil(t, got)
	assert.Empty(t, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestMatch_ExactName(t *testing.T) {
	s, iv := catalog()
	got := Match(names("Coughing "), s, iv)

	require.Len(t, got, 1)
	assert.Equal(t, "Coughing ", got[0].Symptom)
	require.NotNil(t, got[0].Record)
	assert.Equal(t, 1, got[0].Record.ID)
	require.Len(t, got[0].Interventions, 2)
	assert.Equal(t, "Honey tea", got[0].Interventions[0].Name)
	assert.Equal(t, "Rest", got[0].Interventions[1].Name)
}

func TestMatch_DescriptionContains(t *testing.T) {
	s, iv := catalog()
	got := Match(names("tired"), s, iv)

	require.Len(t, got, 1)
	require.True(t, got[0].Matched())
	assert.Equal(t, "weakness", got[0].Record.Name)
}

func TestMatch_NameContainsExtracted(t *testing.T) {
	s, iv := catalog()
	got := Match(names("throat"), s, iv)

	require.True(t, got[0].Matched())
	assert.Equal(t, "sore throat", got[0].Record.Name)
}

func TestMatch_TokenFallback(t *testing.T) {
	s, iv := catalog()
	// No record name or description contains "a terrible fever spike"; the
	// token "fever" of a record name is contained in it.
	got := Match(names("a terrible fever spike"), s, iv)

	require.True(t, got[0].Matched())
	assert.Equal(t, "fever", got[0].Record.Name)
	assert.NotNil(t, got[0].Interventions)
	assert.Empty(t, got[0].Interventions)
}

func TestMatch_TokenFallbackFirstCatalogOrder(t *testing.T) {
	s, iv := catalog()
	// Both "sore" (sore throat) and "fever" tokens appear; store order decides.
	got := Match(names("sore feverish body"), s, iv)

	require.True(t, got[0].Matched())
	assert.Equal(t, "sore throat", got[0].Record.Name)
}

func TestMatch_Unmatched(t *testing.T) {
	s, iv := catalog()
	got := Match(names("headache"), s, iv)

	require.Len(t, got, 1)
	assert.Equal(t, "headache", got[0].Symptom)
	assert.Nil(t, got[0].Record)
	assert.NotNil(t, got[0].Interventions)
	assert.Empty(t, got[0].Interventions)

	data, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"symptom":"headache","interventions":[]}`, string(data))
}

func TestMatch_DanglingInterventionDropped(t *testing.T) {
	s, iv := catalog()
	got := Match(names("weakness"), s, iv)

	require.Len(t, got[0].Interventions, 1)
	assert.Equal(t, 2, got[0].Interventions[0].ID)
}

func TestMatch_EveryInterventionExists(t *testing.T) {
	s, iv := catalog()
	known := map[int]bool{}
	for _, i := range iv {
		known[i.ID] = true
	}

	got := Match(names("coughing", "weakness", "fever", "throat", "unknown thing"), s, iv)
	require.Len(t, got, 5)
	for _, e := range got {
		for _, i := range e.Interventions {
			assert.True(t, known[i.ID], "intervention %d leaked into %q", i.ID, e.Symptom)
		}
	}
}

func TestMatch_DuplicatesKept(t *testing.T) {
	s, iv := catalog()
	got := Match(names("fever", "fever"), s, iv)
	assert.Len(t, got, 2)
}

func TestMatch_BlankNameUnmatched(t *testing.T) {
	s, iv := catalog()
	got := Match(names("   "), s, iv)

	require.Len(t, got, 1)
	assert.False(t, got[0].Matched())
}
