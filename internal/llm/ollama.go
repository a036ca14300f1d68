package llm

import (
	"context"
	"fmt"
	"time"

	"TradeDesk/internal/domain/repository"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// OllamaOption configures OllamaClient.
type OllamaOption func(*OllamaClient)

// WithModel sets the model name.
func WithModel(model string) OllamaOption {
	return func(c *OllamaClient) {
		c.model = model
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) OllamaOption {
	return func(c *OllamaClient) {
		c.client.SetTimeout(d)
	}
}

// OllamaClient talks to a local Ollama server. Generate never returns an
// error: any failure yields the shared sentinel text, so agents can treat
// generation as infallible.
type OllamaClient struct {
	client  *resty.Client
	model   string
	metrics repository.Metrics
	logger  *applogger.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a client against baseURL.
func NewOllamaClient(baseURL string, m repository.Metrics, log *applogger.Logger, opts ...OllamaOption) *OllamaClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)

	c := &OllamaClient{
		client:  client,
		model:   "llama3",
		metrics: m,
		logger:  log,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OllamaClient) Generate(ctx context.Context, prompt, systemPrompt string) string {
	start := time.Now()

	var out generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  c.model,
			Prompt: prompt,
			System: systemPrompt,
			Stream: false,
		}).
		SetResult(&out).
		Post("/api/generate")

	c.metrics.RecordLLMLatency(time.Since(start).Seconds())

	if err != nil {
		c.metrics.RecordError("llm")
		c.logger.Warn("generation failed", applogger.Error(err))
		return service.GenerationFailed
	}
	if resp.IsError() {
		c.metrics.RecordError("llm")
		c.logger.Warn("generation failed",
			applogger.Int("status", resp.StatusCode()),
			applogger.String("body", resp.String()),
		)
		return service.GenerationFailed
	}
	if out.Response == "" {
		return service.GenerationFailed
	}
	return out.Response
}

// Static is a TextGenerator that answers from a template without any
// model behind it. It backs the desk when llm.enabled is off.
type Static struct{}

func (Static) Generate(_ context.Context, prompt, _ string) string {
	if prompt == "" {
		return service.GenerationFailed
	}
	return fmt.Sprintf("analysis noted (%d chars of context considered)", len(prompt))
}
