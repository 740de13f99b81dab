package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careai-platform/internal/observability/metrics"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
	block bool
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Model() string { return s.name + "-model" }

func (s *stubProvider) Generate(ctx context.Context, _ Prompt) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

func newTestClient(timeout time.Duration, providers ...Provider) *FallbackClient {
	return NewFallbackClient(providers, timeout, logging.NewWithWriter(io.Discard, "debug"), metrics.NewAIMetrics(prometheus.NewRegistry()))
}

func TestFallbackClientNoProviders(t *testing.T) {
	c := newTestClient(0)
	assert.False(t, c.Configured())

	_, err := c.Generate(context.Background(), Prompt{User: "hi"})
	assert.ErrorIs(t, err, ErrNoProviderConfigured)

	var nilClient *FallbackClient
	assert.False(t, nilClient.Configured())
}

func TestFallbackClientSkipsNilProviders(t *testing.T) {
	c := newTestClient(0, nil, &stubProvider{name: "gemini", text: "ok"})
	assert.Equal(t, []string{"gemini"}, c.ProviderNames())
}

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "ollama", text: `{"a":1}`}
	secondary := &stubProvider{name: "gemini", text: `{"b":2}`}
	c := newTestClient(0, primary, secondary)

	res, err := c.Generate(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, GenerationResult{Text: `{"a":1}`, Provider: "ollama", Model: "ollama-model"}, res)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackClientFallsThrough(t *testing.T) {
	primary := &stubProvider{name: "ollama", err: errors.New("connection refused")}
	secondary := &stubProvider{name: "gemini", text: "fine"}
	c := newTestClient(0, primary, secondary)

	for i := 0; i < 3; i++ {
		res, err := c.Generate(context.Background(), Prompt{User: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "gemini", res.Provider)
	}
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 3, secondary.calls)
}

func TestFallbackClientAllFail(t *testing.T) {
	primary := &stubProvider{name: "ollama", err: errors.New("connection refused")}
	secondary := &stubProvider{name: "gemini", err: errors.New("quota exceeded")}
	c := newTestClient(0, primary, secondary)

	_, err := c.Generate(context.Background(), Prompt{User: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "ollama: connection refused")
	assert.Contains(t, err.Error(), "gemini: quota exceeded")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackClientAttemptTimeout(t *testing.T) {
	hung := &stubProvider{name: "ollama", block: true}
	secondary := &stubProvider{name: "gemini", text: "fine"}
	c := newTestClient(20*time.Millisecond, hung, secondary)

	res, err := c.Generate(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
}

func TestFallbackClientStopsOnCallerCancel(t *testing.T) {
	primary := &stubProvider{name: "ollama", text: "ok"}
	c := newTestClient(0, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, Prompt{User: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
}

func TestOllamaProviderGenerate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "  {\"summary\":\"ok\"}  "},
			"done":    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3.1", srv.Client())
	text, err := p.Generate(context.Background(), Prompt{System: "sys", User: "usr", MaxTokens: 100, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, text)

	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.Equal(t, int32(100), got.Options.NumPredict)
}

func TestOllamaProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusNotFound, body: `{"error":"model not found"}`, wantErr: "returned 404"},
		{name: "api error", status: http.StatusOK, body: `{"error":"out of memory"}`, wantErr: "out of memory"},
		{name: "empty content", status: http.StatusOK, body: `{"message":{"role":"assistant","content":""}}`, wantErr: "empty content"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "", nil).Generate(context.Background(), Prompt{User: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestBedrockProviderGenerate(t *testing.T) {
	api := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role: brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: `{"urgency":`},
				&brtypes.ContentBlockMemberText{Value: `"low"}`},
			},
		}},
	}}

	p, err := NewBedrockProvider(api, "anthropic.claude-3-haiku")
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), Prompt{System: "sys", User: "usr", MaxTokens: 50, Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, `{"urgency":"low"}`, text)
	assert.Equal(t, "anthropic.claude-3-haiku", *api.input.ModelId)
	assert.Len(t, api.input.System, 1)
	assert.Equal(t, int32(50), *api.input.InferenceConfig.MaxTokens)
}

func TestBedrockProviderErrors(t *testing.T) {
	_, err := NewBedrockProvider(nil, "m")
	assert.Error(t, err)
	_, err = NewBedrockProvider(&fakeConverse{}, " ")
	assert.Error(t, err)

	p, _ := NewBedrockProvider(&fakeConverse{err: errors.New("throttled")}, "m")
	_, err = p.Generate(context.Background(), Prompt{User: "x"})
	assert.ErrorContains(t, err, "throttled")

	p, _ = NewBedrockProvider(&fakeConverse{out: &bedrockruntime.ConverseOutput{}}, "m")
	_, err = p.Generate(context.Background(), Prompt{User: "x"})
	assert.ErrorContains(t, err, "did not include a message output")
}
