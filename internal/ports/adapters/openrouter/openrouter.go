// Package openrouter implements the Translator port against the
// OpenRouter chat-completions API: a JSON-schema-constrained request
// asking the model to translate a batch of subtitle cues in place,
// preserving cue count and ordering so timing never has to be
// re-aligned after the call returns.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

const requestTimeout = 90 * time.Second

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

// Translate sends every entry's text to the model in one batched
// request, constrained to a JSON schema that mirrors cue index and
// translated text, and returns a copy of entries with Text replaced.
// Timing and word-level timing are never touched. A response whose
// message content is missing or malformed falls back to returning
// entries unchanged so the caption overlay still renders, just
// untranslated; a transport failure, timeout, non-2xx status or
// undecodable response body returns an error instead.
func (a *Adapter) Translate(ctx context.Context, entries []types.SubtitleEntry, targetLang, mode string) ([]types.SubtitleEntry, error) {
	if len(entries) == 0 || strings.TrimSpace(targetLang) == "" {
		return entries, nil
	}
	if mode == "" {
		mode = "natural"
	}

	type cue struct {
		Idx  int    `json:"idx"`
		Text string `json:"text"`
	}
	arr := make([]cue, len(entries))
	for i, e := range entries {
		arr[i] = cue{Idx: i, Text: e.Text}
	}
	cb, err := json.Marshal(arr)
	if err != nil {
		return nil, fmt.Errorf("marshal cues: %w", err)
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": buildPrompt(targetLang, mode, cb)},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "clipforge_translate",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"cues": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"idx":  map[string]any{"type": "integer"},
									"text": map[string]any{"type": "string"},
								},
								"required": []string{"idx", "text"},
							},
						},
					},
					"required": []string{"cues"},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("openrouter timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Choices) == 0 {
		return entries, nil
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return entries, nil
	}
	clean, err := extractJSONObject(content)
	if err != nil {
		return entries, nil
	}

	var out struct {
		Cues []struct {
			Idx  int    `json:"idx"`
			Text string `json:"text"`
		} `json:"cues"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return entries, nil
	}

	translated := make([]types.SubtitleEntry, len(entries))
	copy(translated, entries)
	for _, c := range out.Cues {
		if c.Idx < 0 || c.Idx >= len(translated) {
			continue
		}
		txt := strings.TrimSpace(c.Text)
		if txt == "" {
			continue
		}
		translated[c.Idx].Text = txt
	}
	return translated, nil
}

func buildPrompt(targetLang, mode string, cuesJSON []byte) string {
	styleHint := "Keep the translation natural and concise for on-screen captions."
	if mode == "literal" {
		styleHint = "Translate literally, staying as close to the source wording as possible."
	}
	return "Translate the text field of every cue into " + targetLang + ". " +
		styleHint + " " +
		"Preserve idx exactly, keep the same number of cues, and do not merge or split cues. " +
		"Return strictly valid JSON (no markdown, no code fences) matching the provided schema." +
		"\n\nCues JSON:\n" + string(cuesJSON)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
