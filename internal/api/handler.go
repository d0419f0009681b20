// Package api exposes the record store and the chat pipeline over HTTP, and
// as MCP tools for local assistants.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalambet/remedy/internal/pipeline"
)

// TurnHandler runs one chat turn. *pipeline.Orchestrator implements it.
type TurnHandler interface {
	HandleTurn(ctx context.Context, message string, history []string) (pipeline.Turn, error)
}

// Deps holds the dependencies of the HTTP handler.
type Deps struct {
	Orchestrator   *pipeline.Orchestrator
	Chat           TurnHandler // defaults to Orchestrator
	AllowedOrigins string      // comma-separated; empty or "*" allows any origin
}

// NewHandler returns the REST API: CRUD for symptoms and interventions,
// the chat endpoint, health checks and Prometheus metrics.
func NewHandler(deps Deps) http.Handler {
	chat := deps.Chat
	if chat == nil {
		chat = deps.Orchestrator
	}
	store := deps.Orchestrator.Store()

	r := chi.NewRouter()
	r.Use(requestID, accessLog, recoverer, cors(deps.AllowedOrigins))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/symptoms", recordRoutes(store.Symptoms, "Symptom not found"))
	r.Mount("/interventions", recordRoutes(store.Interventions, "Intervention not found"))

	r.Post("/aichat", handleChat(chat))
	r.Post("/ai/chat", handleChat(chat))
	r.Get("/aichat/health", handleChatHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "no route for %s %s", r.Method, r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "method %s not allowed on %s", r.Method, r.URL.Path)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleChatHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ChatRequest is the body of POST /aichat. History entries are formatted
// as "<role>: <content>".
type ChatRequest struct {
	Message             *string  `json:"message"`
	ConversationHistory []string `json:"conversationHistory,omitempty"`
}

func handleChat(chat TurnHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Message == nil {
			httpError(w, http.StatusBadRequest, "message is required")
			return
		}

		turn, err := chat.HandleTurn(r.Context(), *req.Message, req.ConversationHistory)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeEnvelope(w, http.StatusOK, turn)
	}
}
