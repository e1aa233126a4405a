// Package gemini provides an embedding.Provider backed by the Gemini embeddings API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/utils"
)

const (
	defaultModel       = "text-embedding-004"
	defaultBatchSize   = 100
	defaultConcurrency = 4
	defaultRPS         = 5
	defaultMaxLogLen   = 200

	taskType = "SEMANTIC_SIMILARITY"

	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 10 * time.Second
)

var retryAfterPattern = regexp.MustCompile(`retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// waitFor is swapped in tests.
var waitFor = utils.WaitFor

type embedClient interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config holds the Gemini embedder settings.
type Config struct {
	APIKey            string
	Model             string
	MaxRetries        int
	BatchSize         int
	Concurrency       int
	RequestsPerSecond float64
	MaxLogLength      int
}

// Embedder calls the Gemini embeddings endpoint.
type Embedder struct {
	client      embedClient
	model       string
	maxRetries  int
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	maxLogLen   int
	logger      *zap.Logger
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, cfg Config, logger *zap.Logger) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, logger), nil
}

func newEmbedder(client embedClient, cfg Config, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	e := &Embedder{
		client:      client,
		model:       model,
		maxRetries:  cfg.MaxRetries,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		maxLogLen:   cfg.MaxLogLength,
		logger:      logger,
	}
	if e.maxRetries <= 0 {
		e.maxRetries = 1
	}
	if e.batchSize <= 0 || e.batchSize > defaultBatchSize {
		e.batchSize = defaultBatchSize
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	if e.maxLogLen <= 0 {
		e.maxLogLen = defaultMaxLogLen
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	e.limiter = rate.NewLimiter(rate.Limit(rps), 1)

	return e
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns the embedding of a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	out, err := e.EmbedSet(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedSet splits texts into batches, embeds them concurrently and reassembles the vectors
// in input order.
func (e *Embedder) EmbedSet(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	out := make([]embedding.Vector, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		offset, batch := start, texts[start:end]

		g.Go(func() error {
			vectors, err := e.embedBatch(gctx, batch)
			if err != nil {
				return err
			}
			copy(out[offset:], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	e.logger.Debug("gemini embed content request",
		zap.Int("texts", len(texts)),
		zap.String("first_preview", utils.TruncateForLog(texts[0], e.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := e.client.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: taskType})
		if err == nil {
			return toVectors(resp, len(texts))
		}

		lastErr = err
		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Warn("gemini embed content failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := waitFor(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

func toVectors(resp *genai.EmbedContentResponse, want int) ([]embedding.Vector, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty response")
	}
	if len(resp.Embeddings) != want {
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", len(resp.Embeddings), want)
	}

	out := make([]embedding.Vector, want)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at index %d", i)
		}
		out[i] = embedding.Vector(emb.Values)
	}
	return out, nil
}

// retryDelay decides whether err is temporary and how long to back off.
// Quota errors asking for a longer pause than maxBackoff are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	backoff := min(baseBackoff*time.Duration(1<<(attempt-1)), maxBackoff)

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if m := retryAfterPattern.FindStringSubmatch(strings.ToLower(apiErr.Message)); m != nil {
			seconds, perr := strconv.ParseFloat(m[1], 64)
			if perr == nil {
				wait := time.Duration(seconds * float64(time.Second))
				if wait > maxBackoff {
					return 0, false
				}
				return max(wait, backoff), true
			}
		}
		return backoff, true
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	default:
		return 0, false
	}
}
