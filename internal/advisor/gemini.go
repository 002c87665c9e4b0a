// Package advisor talks to the Gemini generative language API.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	geminiMaxRetries   = 3
	geminiInitialDelay = 1 * time.Second
	geminiTimeout      = 60 * time.Second
)

// ErrMissingAPIKey is returned when the client was built without a key.
var ErrMissingAPIKey = errors.New("gemini api key not configured")

// SystemInstruction frames every question as one for a rural agronomist.
const SystemInstruction = `Você é um agrônomo sênior e especialista em vida rural, muito sábio e prático.
Seu nome é "Agrônomo Virtual".
Responda a perguntas sobre plantio, colheita, controle de pragas, cuidados com animais e manutenção de chácaras.
Use uma linguagem simples, direta e encorajadora, adequada para um pequeno produtor rural.
Dê respostas concisas, preferencialmente em tópicos quando houver instruções passo-a-passo.`

// GeminiClient sends single-turn generateContent requests.
type GeminiClient struct {
	apiKey       string
	model        string
	baseURL      string
	client       *http.Client
	initialDelay time.Duration
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Option customises a GeminiClient.
type Option func(*GeminiClient)

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GeminiClient) { c.client = hc }
}

// WithRetryDelay sets the first backoff delay; it doubles on each retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *GeminiClient) { c.initialDelay = d }
}

// NewGeminiClient creates a client for the given key and model.
func NewGeminiClient(apiKey, model string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		apiKey:       strings.TrimSpace(apiKey),
		model:        model,
		baseURL:      geminiBaseURL,
		client:       &http.Client{Timeout: geminiTimeout},
		initialDelay: geminiInitialDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

// Generate asks one question and returns the concatenated answer text, which
// may be empty when the model produced nothing.
func (c *GeminiClient) Generate(ctx context.Context, question string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: question}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.initialDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr apiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				lastErr = fmt.Errorf("gemini api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("gemini api error (%d): %s", resp.StatusCode, string(respBody))
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var out generateResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return answerText(out), nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func answerText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}
