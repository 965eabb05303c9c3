package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"notesqa/internal/contextutil"
	"notesqa/internal/keypool"
	"notesqa/internal/service"
)

const generationTemperature = 0.55

// GenerationClient produces answers via an OpenAI-compatible chat
// completions API, rotating through the key pool on quota signals.
// Generation failures other than quota are never retried: the caller gets
// one attempt per question.
type GenerationClient struct {
	pool    *keypool.Pool
	baseURL string
	model   string

	mu      sync.Mutex
	clients map[int]*openai.Client
}

// NewGenerationClient creates a new generation client.
func NewGenerationClient(pool *keypool.Pool, baseURL, model string) *GenerationClient {
	return &GenerationClient{
		pool:    pool,
		baseURL: baseURL,
		model:   model,
		clients: make(map[int]*openai.Client),
	}
}

// Generate sends one chat completion request and decodes the model output
// into a GenerationResult.
func (c *GenerationClient) Generate(ctx context.Context, prompt string) (GenerationResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(prompt) == "" {
		return GenerationResult{}, &service.ValidationError{Field: "prompt", Message: "must not be empty"}
	}

	for attempt := 0; attempt < c.pool.Size(); attempt++ {
		slot, err := c.pool.Acquire()
		if err != nil {
			return GenerationResult{}, fmt.Errorf("generation: %w", err)
		}

		text, err := c.generateWithSlot(ctx, slot, prompt)
		if err == nil {
			return ParseGenerationOutput(text), nil
		}

		if IsQuotaError(err) {
			logger.WarnContext(ctx, "generation key exhausted, rotating",
				"slot", slot.Index(), "error", err)
			c.pool.ReportExhausted(slot)
			continue
		}

		return GenerationResult{}, fmt.Errorf("%w: %v", service.ErrGeneration, err)
	}

	return GenerationResult{}, fmt.Errorf("generation: %w", service.ErrQuotaExhausted)
}

func (c *GenerationClient) generateWithSlot(ctx context.Context, slot keypool.Slot, prompt string) (string, error) {
	client := c.clientFor(slot)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: generationTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *GenerationClient) clientFor(slot keypool.Slot) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[slot.Index()]; ok {
		return client
	}
	cfg := openai.DefaultConfig(slot.Key)
	cfg.BaseURL = c.baseURL
	client := openai.NewClientWithConfig(cfg)
	c.clients[slot.Index()] = client
	return client
}
