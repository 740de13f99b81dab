package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaProvider calls a local Ollama server's chat endpoint.
type OllamaProvider struct {
	endpoint string // e.g. http://localhost:11434
	model    string
	client   *http.Client
}

// NewOllamaProvider creates an Ollama provider. Timeouts come from the
// caller's context, so the default client carries none.
func NewOllamaProvider(endpoint, model string, client *http.Client) *OllamaProvider {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if strings.TrimSpace(model) == "" {
		model = "llama3.1"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &OllamaProvider{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		client:   client,
	}
}

func (p *OllamaProvider) Name() string  { return "ollama" }
func (p *OllamaProvider) Model() string { return p.model }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int32   `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error"`
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	messages := make([]ollamaMessage, 0, 2)
	if strings.TrimSpace(prompt.System) != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: prompt.User})

	body, err := json.Marshal(ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options:  ollamaOptions{Temperature: prompt.Temperature, NumPredict: prompt.MaxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("llm: ollama marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: ollama create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: ollama request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("llm: ollama read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: ollama chat API returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var decoded ollamaChatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("llm: ollama unmarshal response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("llm: ollama: %s", decoded.Error)
	}
	text := strings.TrimSpace(decoded.Message.Content)
	if text == "" {
		return "", errors.New("llm: ollama returned empty content")
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
