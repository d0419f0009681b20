package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/remedy/internal/gemini"
)

func tagsJSON(names ...string) []byte {
	type entry struct {
		Name string `json:"name"`
	}
	var r struct {
		Models []entry `json:"models"`
	}
	for _, n := range names {
		r.Models = append(r.Models, entry{Name: n})
	}
	b, _ := json.Marshal(r)
	return b
}

func TestEnsureReady_NoBackend(t *testing.T) {
	var out bytes.Buffer
	if err := EnsureReady(context.Background(), nil, &out); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if !strings.Contains(out.String(), "rule-based") {
		t.Errorf("output = %q", out.String())
	}
}

func TestEnsureReady_Gemini(t *testing.T) {
	var out bytes.Buffer
	g := gemini.New("", "key", "gemini-2.5-pro", gemini.GenerationConfig{})
	if err := EnsureReady(context.Background(), g, &out); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if !strings.Contains(out.String(), "gemini (gemini-2.5-pro)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestEnsureReady_OllamaModelPresent(t *testing.T) {
	var pulls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write(tagsJSON("phi3.5:latest"))
		case "/api/pull":
			pulls++
		case "/api/chat":
			json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"role": "assistant", "content": "pong"}})
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := EnsureReady(context.Background(), NewOllamaGenerator(srv.URL, "phi3.5"), &out); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if pulls != 0 {
		t.Errorf("pulled %d times, want 0", pulls)
	}
	if !strings.Contains(out.String(), "model phi3.5: ready") {
		t.Errorf("output = %q", out.String())
	}
}

func TestEnsureReady_OllamaDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	var out bytes.Buffer
	if err := EnsureReady(context.Background(), NewOllamaGenerator(srv.URL, "phi3.5"), &out); err == nil {
		t.Fatal("expected error when Ollama is down")
	}
}
