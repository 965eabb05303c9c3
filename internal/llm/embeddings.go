package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"

	"notesqa/internal/contextutil"
	"notesqa/internal/keypool"
	"notesqa/internal/service"
)

const (
	// maxEmbedChars bounds the text accepted by EmbedQuery. Anything
	// longer would be silently truncated by the provider.
	maxEmbedChars = 10000

	// embedCacheSize is the number of query embeddings kept in memory.
	// Identical questions skip the provider round trip entirely.
	embedCacheSize = 512

	transientRetryBackoff = 200 * time.Millisecond
)

// EmbeddingsClient turns text into a fixed-length vector via an
// OpenAI-compatible embeddings API, rotating through the key pool on
// quota signals.
type EmbeddingsClient struct {
	pool         *keypool.Pool
	baseURL      string
	model        string
	expectedSize int

	cache *lru.Cache[string, []float32]

	mu      sync.Mutex
	clients map[int]*openai.Client
}

// NewEmbeddingsClient creates a new embeddings client. expectedSize is the
// agreed vector dimensionality; every returned vector is validated
// against it.
func NewEmbeddingsClient(pool *keypool.Pool, baseURL, model string, expectedSize int) (*EmbeddingsClient, error) {
	cache, err := lru.New[string, []float32](embedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &EmbeddingsClient{
		pool:         pool,
		baseURL:      baseURL,
		model:        model,
		expectedSize: expectedSize,
		cache:        cache,
		clients:      make(map[int]*openai.Client),
	}, nil
}

// EmbedQuery generates an L2-normalized embedding for a single query text.
// Quota signals rotate the key pool, bounded by the pool size; any other
// provider failure is retried once with a short backoff before surfacing
// as service.ErrEmbedding.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &service.ValidationError{Field: "text", Message: "must not be empty"}
	}
	if len(text) > maxEmbedChars {
		return nil, &service.ValidationError{Field: "text", Message: fmt.Sprintf("exceeds %d characters", maxEmbedChars)}
	}

	if vec, ok := c.cache.Get(text); ok {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	}

	transientRetried := false
	for attempt := 0; attempt < c.pool.Size(); attempt++ {
		slot, err := c.pool.Acquire()
		if err != nil {
			return nil, fmt.Errorf("embedding: %w", err)
		}

		vec, err := c.embedWithSlot(ctx, slot, text)
		if err == nil {
			c.cache.Add(text, vec)
			out := make([]float32, len(vec))
			copy(out, vec)
			return out, nil
		}

		if IsQuotaError(err) {
			logger.WarnContext(ctx, "embedding key exhausted, rotating",
				"slot", slot.Index(), "error", err)
			c.pool.ReportExhausted(slot)
			continue
		}

		if !transientRetried && ctx.Err() == nil {
			transientRetried = true
			logger.WarnContext(ctx, "embedding request failed, retrying once",
				"slot", slot.Index(), "error", err)
			select {
			case <-time.After(transientRetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			attempt--
			continue
		}

		return nil, fmt.Errorf("%w: %v", service.ErrEmbedding, err)
	}

	return nil, fmt.Errorf("embedding: %w", service.ErrQuotaExhausted)
}

func (c *EmbeddingsClient) embedWithSlot(ctx context.Context, slot keypool.Slot, text string) ([]float32, error) {
	client := c.clientFor(slot)

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	raw := resp.Data[0].Embedding
	if len(raw) != c.expectedSize {
		return nil, fmt.Errorf("embedding has size %d, expected %d", len(raw), c.expectedSize)
	}

	vec := make([]float32, len(raw))
	for i := range raw {
		vec[i] = float32(raw[i])
	}
	l2Normalize(vec)
	return vec, nil
}

// clientFor returns the cached provider client for a slot, building it on
// first use. One client per credential keeps auth headers immutable.
func (c *EmbeddingsClient) clientFor(slot keypool.Slot) *openai.Client {
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

// IsQuotaError reports whether a provider error is a quota or rate-limit
// signal that should advance the key pool.
func IsQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429
	}
	return false
}

// l2Normalize scales a vector to unit length in place.
func l2Normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
