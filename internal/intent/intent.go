// Package intent maps free-text utterances to dialogue intents by semantic similarity to
// example phrases.
package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/utils"
)

// Intent is a classified user purpose.
type Intent string

const (
	Exit       Intent = "exit"
	Qualify    Intent = "qualify"
	SeeJobs    Intent = "see_jobs"
	ShowDetail Intent = "show_detail"
	Unknown    Intent = "unknown"
)

// DefaultThreshold is the score an intent must exceed to be selected.
const DefaultThreshold = 0.65

// Classifiable reports whether i can appear in an example set.
func (i Intent) Classifiable() bool {
	switch i {
	case Exit, Qualify, SeeJobs, ShowDetail:
		return true
	}
	return false
}

// Score is the best similarity of an utterance to one intent's phrases.
type Score struct {
	Intent Intent
	Value  float64
}

type intentVectors struct {
	intent  Intent
	vectors []embedding.Vector
}

// Classifier compares utterances with pre-embedded example phrases.
type Classifier struct {
	provider  embedding.Provider
	threshold float64
	examples  []intentVectors
	logger    *zap.Logger
}

// NewClassifier embeds every example phrase once. A non-positive threshold selects
// DefaultThreshold.
func NewClassifier(ctx context.Context, provider embedding.Provider, set ExampleSet, threshold float64, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{provider: provider, threshold: threshold, logger: logger}
	for _, ex := range set {
		phrases := make([]string, 0, len(ex.Phrases))
		for _, p := range ex.Phrases {
			if p = strings.TrimSpace(p); p != "" {
				phrases = append(phrases, p)
			}
		}

		vectors, err := provider.EmbedSet(ctx, phrases)
		if err != nil {
			return nil, fmt.Errorf("embedding %s examples: %w", ex.Intent, err)
		}
		if len(vectors) != len(phrases) {
			return nil, fmt.Errorf("embedding %s examples: got %d vectors for %d phrases", ex.Intent, len(vectors), len(phrases))
		}
		c.examples = append(c.examples, intentVectors{intent: ex.Intent, vectors: vectors})
	}

	logger.Debug("intent classifier ready", zap.Int("intents", len(c.examples)), zap.Float64("threshold", threshold))
	return c, nil
}

// Scores returns the best similarity per intent, in example set order.
func (c *Classifier) Scores(ctx context.Context, text string) ([]Score, error) {
	v, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding utterance: %w", err)
	}

	scores := make([]Score, 0, len(c.examples))
	for _, ex := range c.examples {
		best := -1.0
		for _, ev := range ex.vectors {
			sim, err := embedding.SimilarityChecked(v, ev)
			if err != nil {
				return nil, err
			}
			if sim > best {
				best = sim
			}
		}
		scores = append(scores, Score{Intent: ex.intent, Value: best})
	}

	return scores, nil
}

// Classify returns the intent whose score is highest and above the threshold, otherwise
// Unknown. Ties go to the intent listed first. Blank text is Unknown. Provider failures
// return Unknown together with the error.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown, nil
	}

	scores, err := c.Scores(ctx, text)
	if err != nil {
		return Unknown, err
	}

	result, best := Unknown, 0.0
	for _, s := range scores {
		if s.Value > best && s.Value > c.threshold {
			result, best = s.Intent, s.Value
		}
	}

	c.logger.Debug("utterance classified",
		zap.String("text", utils.TruncateForLog(text, 80)),
		zap.String("intent", string(result)),
		zap.Float64("score", best),
	)

	return result, nil
}
