package aiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gluk-w/tabshell/internal/config"
	"github.com/gluk-w/tabshell/internal/secretstore"
)

// httpClient is shared across requests the way llmproxy/client.go shares a
// single timeout-bound client rather than constructing one per call.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Client is an HTTP-backed Translator and Embedder talking to a single
// OpenAI-compatible provider (chat completions for translate/analyze,
// embeddings for embed/embed_batch).
type Client struct {
	baseURL string
	apiKey  string
	model   string
}

// NewClient builds a Client from config.Cfg, decrypting the stored API key.
// It returns an error if no base URL is configured, since there is then
// nowhere to send requests.
func NewClient() (*Client, error) {
	if config.Cfg.AIBaseURL == "" {
		return nil, fmt.Errorf("aiclient: no AI_BASE_URL configured")
	}
	key, err := secretstore.Decrypt(config.Cfg.AIAPIKeyEnc)
	if err != nil {
		return nil, fmt.Errorf("aiclient: decrypt api key: %w", err)
	}
	return &Client{baseURL: config.Cfg.AIBaseURL, apiKey: key, model: config.Cfg.AIModel}, nil
}

// doRequest JSON-marshals body (if non-nil), issues an authenticated
// request against c.baseURL+path, and JSON-unmarshals the response into
// out (if non-nil). Mirrors llmproxy/client.go's doRequest: one helper for
// every endpoint, status >= 300 treated uniformly as an error.
func (c *Client) doRequest(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("aiclient: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("aiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aiclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("aiclient: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("aiclient: %s %s returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("aiclient: unmarshal response: %w", err)
		}
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatJSON(systemPrompt, userPrompt string) (string, error) {
	req := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}
	var resp chatCompletionResponse
	if err := c.doRequest(http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("aiclient: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

const translateSystemPrompt = `You translate a user's natural-language request into a single shell command for their current environment. Respond with JSON only, matching this shape:
{"command": "...", "explanation": "...", "confidence": 0.0, "warning": "...", "alternatives": ["..."], "requires_sudo": false, "is_dangerous": false, "category": "...", "estimated_duration": "..."}
Omit optional fields that don't apply rather than inventing values.`

// Translate asks the configured model to turn userInput into a shell
// command, optionally grounded in ctx (working directory, recent output,
// recent commands).
func (c *Client) Translate(userInput string, ctx *Context) (TranslateResult, error) {
	prompt := userInput
	if ctx != nil {
		if b, err := json.Marshal(ctx); err == nil {
			prompt = fmt.Sprintf("Request: %s\nContext: %s", userInput, string(b))
		}
	}

	content, err := c.chatJSON(translateSystemPrompt, prompt)
	if err != nil {
		return TranslateResult{}, err
	}
	var result TranslateResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return TranslateResult{}, fmt.Errorf("aiclient: parse translate response: %w", err)
	}
	return result, nil
}

const analyzeErrorSystemPrompt = `A shell command failed. Diagnose the cause from its stderr and propose a fix if one exists. Respond with JSON only, matching this shape:
{"fixed_command": "...", "error_cause": "...", "solution": "...", "is_fixable": false, "required_action": "..."}
Set is_fixable to false and omit fixed_command when no safe automatic fix exists.`

// AnalyzeError asks the configured model to diagnose a failed command's
// stderr and propose a fix.
func (c *Client) AnalyzeError(command, stderr string, ctx *Context) (FixResult, error) {
	prompt := fmt.Sprintf("Command: %s\nStderr: %s", command, stderr)
	if ctx != nil {
		if b, err := json.Marshal(ctx); err == nil {
			prompt += "\nContext: " + string(b)
		}
	}

	content, err := c.chatJSON(analyzeErrorSystemPrompt, prompt)
	if err != nil {
		return FixResult{}, err
	}
	var result FixResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return FixResult{}, fmt.Errorf("aiclient: parse analyze_error response: %w", err)
	}
	return result, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns a single embedding vector for text.
func (c *Client) Embed(text string) ([]float32, error) {
	vecs, err := c.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("aiclient: empty embedding response")
	}
	return vecs[0], nil
}

// EmbedBatch returns one embedding vector per entry in texts, in the same
// order, by a single request to the provider's embeddings endpoint.
func (c *Client) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := embeddingRequest{Model: c.model, Input: texts}
	var resp embeddingResponse
	if err := c.doRequest(http.MethodPost, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("aiclient: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
