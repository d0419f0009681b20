package composer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/kalambet/remedy/internal/intent"
)

func ptr(s string) *string { return &s }

func descriptions(fs []FollowUp) []string {
	out := []string{}
	for _, f := range fs {
		out = append(out, f.Description)
	}
	return out
}

func TestCompose_Subsets(t *testing.T) {
	tests := []struct {
		name string
		info intent.ExtractedInfo
		want []string
	}{
		{
			name: "all missing",
			info: intent.ExtractedInfo{Symptoms: []string{}},
			want: []string{AskSymptoms, AskSeverity, AskDuration},
		},
		{
			name: "nil symptoms counts as missing",
			info: intent.ExtractedInfo{Severity: ptr("mild"), Duration: ptr("for 2 days")},
			want: []string{AskSymptoms},
		},
		{
			name: "only severity missing",
			info: intent.ExtractedInfo{Symptoms: []string{"fever"}, Duration: ptr("since yesterday")},
			want: []string{AskSeverity},
		},
		{
			name: "mild headache",
			info: intent.ExtractedInfo{Symptoms: []string{"headache"}, Severity: ptr("mild")},
			want: []string{AskDuration},
		},
		{
			name: "symptoms and duration missing",
			info: intent.ExtractedInfo{Severity: ptr("severe")},
			want: []string{AskSymptoms, AskDuration},
		},
		{
			name: "complete",
			info: intent.ExtractedInfo{Symptoms: []string{"rash"}, Severity: ptr("moderate"), Duration: ptr("for 3 days")},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.info)
			if !reflect.DeepEqual(descriptions(got), tt.want) {
				t.Errorf("Compose() = %v, want %v", descriptions(got), tt.want)
			}
		})
	}
}

func TestCompose_SeverityOptions(t *testing.T) {
	got := Compose(intent.ExtractedInfo{Symptoms: []string{"rash"}, Duration: ptr("for 1 day")})
	if len(got) != 1 {
		t.Fatalf("got %d follow-ups, want 1", len(got))
	}
	if want := []string{"mild", "moderate", "severe"}; !reflect.DeepEqual(got[0].Options, want) {
		t.Errorf("Options = %v, want %v", got[0].Options, want)
	}
}

func TestCompose_JSON(t *testing.T) {
	data, err := json.Marshal(Compose(intent.ExtractedInfo{Symptoms: []string{}, Severity: ptr("mild")}))
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"description":"Can you describe your symptoms in a sentence or two?"},` +
		`{"description":"How long have you had these symptoms (for example: 'for two days', 'since yesterday')?"}]`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}

	data, _ = json.Marshal(Compose(intent.ExtractedInfo{Symptoms: []string{"a"}, Severity: ptr("mild"), Duration: ptr("x")}))
	if string(data) != "[]" {
		t.Errorf("complete extraction json = %s, want []", data)
	}
}
