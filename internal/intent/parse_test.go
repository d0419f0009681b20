package intent

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  ExtractedInfo
	}{
		{
			name:  "bare object",
			reply: `{"symptoms":["fever"],"severity":"severe","duration":"for 3 days"}`,
			want:  ExtractedInfo{Symptoms: []string{"fever"}, Severity: strPtr("severe"), Duration: strPtr("for 3 days")},
		},
		{
			name:  "fenced with prose",
			reply: "Sure!\n```json\n{\n  \"symptoms\": [\"rash\"],\n  \"severity\": null,\n  \"duration\": null\n}\n```",
			want:  ExtractedInfo{Symptoms: []string{"rash"}},
		},
		{
			name:  "missing keys",
			reply: `{}`,
			want:  ExtractedInfo{Symptoms: []string{}},
		},
		{
			name:  "unknown severity normalised",
			reply: `{"symptoms":[],"severity":"very bad","duration":""}`,
			want:  ExtractedInfo{Symptoms: []string{}},
		},
		{
			name:  "severity case folded",
			reply: `{"symptoms":["coughing"],"severity":" Moderate ","duration":"2 days"}`,
			want:  ExtractedInfo{Symptoms: []string{"coughing"}, Severity: strPtr("moderate"), Duration: strPtr("2 days")},
		},
		{
			name:  "blank symptom names dropped",
			reply: `{"symptoms":["", "fever", "  "]}`,
			want:  ExtractedInfo{Symptoms: []string{"fever"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.reply)
			if err != nil {
				t.Fatalf("ParseReply() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseReply_NoAnswer(t *testing.T) {
	replies := map[string]string{
		"prose":            "I could not determine any symptoms.",
		"null":             "null",
		"array":            `["fever"]`,
		"broken object":    `{"symptoms": ["fever"`,
		"greedy span":      `{"symptoms":["a"]} and then {"b":1}`,
		"wrong symptoms":   `{"symptoms":"fever"}`,
		"wrong severity":   `{"symptoms":[],"severity":3}`,
		"wrong duration":   `{"symptoms":[],"duration":["2 days"]}`,
		"numbers in array": `{"symptoms":[1,2]}`,
		"empty":            "",
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseReply(reply); !errors.Is(err, ErrNoAnswer) {
				t.Errorf("ParseReply(%q) error = %v, want ErrNoAnswer", reply, err)
			}
		})
	}
}
