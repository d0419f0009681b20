package intent

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/remedy/internal/storage"
)

// mockGenerator implements Generator for testing.
type mockGenerator struct {
	response string
	err      error
	delay    time.Duration

	calls      int
	lastPrompt string
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func testCatalog() []storage.Symptom {
	return []storage.Symptom{
		{ID: 1, Name: "coughing", Description: "Persistent cough for several days", Interventions: []int{1}},
		{ID: 2, Name: "fever", Description: "Raised body temperature and chills", Interventions: []int{2}},
		{ID: 7, Name: "weakness", Description: "Tired and weak, really drained all day", Interventions: []int{3}},
	}
}

func TestExtract_ModelAnswer(t *testing.T) {
	mock := &mockGenerator{
		response: "Here you go:\n{\"symptoms\":[\"weakness\",\"coughing\"],\"severity\":\"moderate\",\"duration\":\"2 days\"}\nThanks",
	}
	e := NewExtractor(mock, time.Second)
	got := e.Extract(context.Background(), "I feel really tired and have had a bad cough for a couple of days", nil, testCatalog())

	if got.Source != SourceModel {
		t.Fatalf("Source = %q, want %q", got.Source, SourceModel)
	}
	want := ExtractedInfo{
		Symptoms: []string{"weakness", "coughing"},
		Severity: strPtr("moderate"),
		Duration: strPtr("2 days"),
	}
	if !reflect.DeepEqual(got.Info, want) {
		t.Errorf("Info = %+v, want %+v", got.Info, want)
	}
}

func TestExtract_MalformedReplyFallsBack(t *testing.T) {
	mock := &mockGenerator{response: `not valid json {{{`}
	e := NewExtractor(mock, time.Second)
	got := e.Extract(context.Background(), "mild fever since yesterday", nil, testCatalog())

	if got.Source != SourceRules {
		t.Fatalf("Source = %q, want %q", got.Source, SourceRules)
	}
	if !reflect.DeepEqual(got.Info.Symptoms, []string{"fever"}) {
		t.Errorf("Symptoms = %v, want [fever]", got.Info.Symptoms)
	}
	if got.Info.Severity == nil || *got.Info.Severity != "mild" {
		t.Errorf("Severity = %v, want mild", got.Info.Severity)
	}
	if got.Info.Duration == nil || *got.Info.Duration != "since yesterday" {
		t.Errorf("Duration = %v, want \"since yesterday\"", got.Info.Duration)
	}
}

func TestExtract_MistypedReplyFallsBack(t *testing.T) {
	mock := &mockGenerator{response: `{"symptoms":"fever","severity":null,"duration":null}`}
	e := NewExtractor(mock, time.Second)
	got := e.Extract(context.Background(), "coughing all night", nil, testCatalog())

	if got.Source != SourceRules {
		t.Fatalf("Source = %q, want %q", got.Source, SourceRules)
	}
	if !reflect.DeepEqual(got.Info.Symptoms, []string{"coughing"}) {
		t.Errorf("Symptoms = %v, want [coughing]", got.Info.Symptoms)
	}
}

func TestExtract_GeneratorErrorFallsBack(t *testing.T) {
	mock := &mockGenerator{err: fmt.Errorf("connection refused")}
	e := NewExtractor(mock, time.Second)
	got := e.Extract(context.Background(), "coughing", nil, testCatalog())

	if got.Source != SourceRules {
		t.Errorf("Source = %q, want %q", got.Source, SourceRules)
	}
	if !reflect.DeepEqual(got.Info.Symptoms, []string{"coughing"}) {
		t.Errorf("Symptoms = %v, want [coughing]", got.Info.Symptoms)
	}
}

func TestExtract_Timeout(t *testing.T) {
	mock := &mockGenerator{
		response: `{"symptoms":["fever"]}`,
		delay:    5 * time.Second,
	}
	e := NewExtractor(mock, 100*time.Millisecond)

	start := time.Now()
	got := e.Extract(context.Background(), "fever", nil, testCatalog())
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("Extract took %v, want it bounded by the timeout", elapsed)
	}
	if got.Source != SourceRules {
		t.Errorf("Source = %q, want %q on timeout", got.Source, SourceRules)
	}
}

func TestExtract_NoGenerator(t *testing.T) {
	e := NewExtractor(nil, 0)
	got := e.Extract(context.Background(), "mild headache", nil, testCatalog())

	if got.Source != SourceRules {
		t.Errorf("Source = %q, want %q", got.Source, SourceRules)
	}
	if len(got.Info.Symptoms) != 0 {
		t.Errorf("Symptoms = %v, want none", got.Info.Symptoms)
	}
	if got.Info.Severity == nil || *got.Info.Severity != "mild" {
		t.Errorf("Severity = %v, want mild", got.Info.Severity)
	}
}

func TestExtract_EmptyMessageUsesHistory(t *testing.T) {
	mock := &mockGenerator{response: `{"symptoms":["coughing"],"severity":null,"duration":"2 days"}`}
	e := NewExtractor(mock, time.Second)
	history := []string{"user: I have a cough for 2 days"}
	got := e.Extract(context.Background(), "", history, testCatalog())

	if mock.calls != 1 {
		t.Fatalf("generator called %d times, want 1", mock.calls)
	}
	if got.Source != SourceModel {
		t.Errorf("Source = %q, want %q", got.Source, SourceModel)
	}
	if !reflect.DeepEqual(got.Info.Symptoms, []string{"coughing"}) {
		t.Errorf("Symptoms = %v, want [coughing]", got.Info.Symptoms)
	}
	if got.Info.Duration == nil || *got.Info.Duration != "2 days" {
		t.Errorf("Duration = %v, want 2 days", got.Info.Duration)
	}
	if !strings.Contains(mock.lastPrompt, "user: I have a cough for 2 days") {
		t.Errorf("prompt missing history:\n%s", mock.lastPrompt)
	}
}

func TestExtract_EmptyMessageWithoutGenerator(t *testing.T) {
	e := NewExtractor(nil, time.Second)
	got := e.Extract(context.Background(), "", []string{"user: I have a cough"}, testCatalog())

	if got.Source != SourceRules {
		t.Errorf("Source = %q, want %q", got.Source, SourceRules)
	}
	if got.Info.Symptoms == nil || len(got.Info.Symptoms) != 0 {
		t.Errorf("Symptoms = %#v, want empty non-nil slice", got.Info.Symptoms)
	}
	if got.Info.Severity != nil || got.Info.Duration != nil {
		t.Errorf("Severity/Duration = %v/%v, want nil", got.Info.Severity, got.Info.Duration)
	}
}

func TestExtract_PromptCarriesHistoryAndCatalog(t *testing.T) {
	mock := &mockGenerator{response: `{"symptoms":[],"severity":null,"duration":null}`}
	e := NewExtractor(mock, time.Second)
	history := []string{"user: my throat hurts", "assistant: how long?", "user: two days"}
	got := e.Extract(context.Background(), "it is worse today", history, testCatalog())

	if got.Source != SourceModel {
		t.Fatalf("Source = %q, want %q", got.Source, SourceModel)
	}
	if !strings.HasPrefix(mock.lastPrompt, "Conversation history:\nuser: my throat hurts\nuser: two days\n\n") {
		t.Errorf("prompt does not start with filtered history:\n%s", mock.lastPrompt)
	}
	if strings.Contains(mock.lastPrompt, "assistant: how long?") {
		t.Error("prompt contains assistant history line")
	}
	if !strings.Contains(mock.lastPrompt, `- "weakness"`) {
		t.Error("prompt does not list catalog names")
	}
}
