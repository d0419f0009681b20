package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaGenerator_Generate(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Format   string `json:"format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": `{"symptoms":["rash"]}`},
		})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "phi3.5")
	got, err := g.Generate(context.Background(), "extract this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"symptoms":["rash"]}` {
		t.Errorf("Generate() = %q", got)
	}
	if req.Model != "phi3.5" || req.Format != "json" {
		t.Errorf("request model/format = %q/%q, want phi3.5/json", req.Model, req.Format)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "extract this" {
		t.Errorf("messages = %+v", req.Messages)
	}
	if g.Name() != "ollama" {
		t.Errorf("Name() = %q", g.Name())
	}
}

func TestOllamaGenerator_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := NewOllamaGenerator(srv.URL, "phi3.5").Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error when server is down")
	}
}
