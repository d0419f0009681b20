// Package gemini calls Google's generateContent endpoint and pulls the reply
// text out of whichever response shape the API returns.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public Generative Language API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 4 << 20

// ErrNoText is returned when a 2xx reply carries no recognisable text field.
var ErrNoText = errors.New("gemini: no text in response")

// GenerationConfig mirrors the API's generationConfig object.
type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// Client sends single-prompt requests to one model.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	gen        GenerationConfig
	httpClient *http.Client
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL, apiKey, model string, gen GenerationConfig) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		gen:        gen,
		httpClient: &http.Client{},
	}
}

// Name identifies the backend in logs and metrics.
func (c *Client) Name() string { return "gemini" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Generate sends prompt as a single user turn and returns the reply text.
// Transport failures, non-2xx statuses, non-JSON bodies and bodies without
// a known text field are all returned as errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.gen,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s",
		c.baseURL, url.PathEscape(c.model), url.Values{"key": {c.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the API key; report only the underlying cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gemini: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("gemini: response is not JSON")
	}

	text, ok := ExtractText(gjson.ParseBytes(data))
	if !ok {
		return "", ErrNoText
	}
	return text, nil
}

// ExtractText finds the reply text in a parsed generateContent response.
// Known shapes are tried in order:
//
//	candidates.0.content.parts.0.text
//	candidates.0.output
//	output (string only)
//	results.0.content (string, or array of {text} items concatenated)
func ExtractText(r gjson.Result) (string, bool) {
	if !r.IsObject() {
		return "", false
	}
	if v := r.Get("candidates.0.content.parts.0.text"); truthy(v) {
		return v.String(), true
	}
	if v := r.Get("candidates.0.output"); truthy(v) {
		return v.String(), true
	}
	if v := r.Get("output"); v.Type == gjson.String && v.Str != "" {
		return v.Str, true
	}
	if v := r.Get("results.0.content"); truthy(v) {
		if !v.IsArray() {
			return v.String(), true
		}
		var sb strings.Builder
		for _, item := range v.Array() {
			if t := item.Get("text"); truthy(t) {
				sb.WriteString(t.String())
			} else {
				sb.WriteString(item.String())
			}
		}
		if sb.Len() > 0 {
			return sb.String(), true
		}
	}
	return "", false
}

// truthy reports whether v exists and is not null, false, 0 or "".
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return v.Exists()
	}
}
