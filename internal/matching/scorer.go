// Package matching scores user profiles against job records and ranks the catalog.
package matching

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/profile"
)

const (
	// MaxScore is the number of points a job can earn, one per axis.
	MaxScore = 3
	// DefaultAxisThreshold is the similarity needed to earn the qualification or field point.
	DefaultAxisThreshold = 0.7
)

// Breakdown holds the points earned on each axis.
type Breakdown struct {
	Qualification float64 `json:"qualification"`
	Skills        float64 `json:"skills"`
	Field         float64 `json:"field"`
}

// Total is the sum of the axis points.
func (b Breakdown) Total() float64 {
	return b.Qualification + b.Skills + b.Field
}

// Percentage converts the total into a share of MaxScore rounded to one decimal.
func (b Breakdown) Percentage() float64 {
	return Percentage(b.Total())
}

// Percentage converts a score into a share of MaxScore rounded to one decimal.
func Percentage(score float64) float64 {
	return math.Round(score/MaxScore*100*10) / 10
}

// Scorer computes per-axis points through an embedding provider.
type Scorer struct {
	provider  embedding.Provider
	threshold float64
}

// NewScorer creates a scorer. A non-positive threshold selects DefaultAxisThreshold.
func NewScorer(provider embedding.Provider, axisThreshold float64) *Scorer {
	if axisThreshold <= 0 {
		axisThreshold = DefaultAxisThreshold
	}
	return &Scorer{provider: provider, threshold: axisThreshold}
}

// Threshold returns the axis threshold in use.
func (s *Scorer) Threshold() float64 { return s.threshold }

// Score rates job against p. Provider errors are returned as is.
func (s *Scorer) Score(ctx context.Context, p profile.UserProfile, job catalog.JobRecord) (Breakdown, error) {
	var (
		b   Breakdown
		err error
	)

	if b.Qualification, err = s.qualification(ctx, p.Qualification, job.Qualification); err != nil {
		return Breakdown{}, fmt.Errorf("qualification axis: %w", err)
	}
	if b.Skills, err = s.Skills(ctx, p.Skills, job.Skills); err != nil {
		return Breakdown{}, fmt.Errorf("skills axis: %w", err)
	}
	if b.Field, err = s.field(ctx, p.Fields, job.Field); err != nil {
		return Breakdown{}, fmt.Errorf("field axis: %w", err)
	}

	return b, nil
}

func (s *Scorer) qualification(ctx context.Context, want, have string) (float64, error) {
	if want == "" || strings.TrimSpace(have) == "" {
		return 0, nil
	}
	return s.bestOf(ctx, []string{want}, have)
}

func (s *Scorer) field(ctx context.Context, want []string, have string) (float64, error) {
	if len(want) == 0 || strings.TrimSpace(have) == "" {
		return 0, nil
	}
	return s.bestOf(ctx, want, have)
}

// bestOf awards one point when any candidate is at least threshold-similar to target.
func (s *Scorer) bestOf(ctx context.Context, candidates []string, target string) (float64, error) {
	vectors, err := s.provider.EmbedSet(ctx, append(append([]string(nil), candidates...), target))
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(candidates)+1 {
		return 0, fmt.Errorf("provider returned %d embeddings for %d texts", len(vectors), len(candidates)+1)
	}

	targetVec := vectors[len(candidates)]
	best := math.Inf(-1)
	for _, v := range vectors[:len(candidates)] {
		sim, err := embedding.SimilarityChecked(v, targetVec)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, sim)
	}

	if best >= s.threshold {
		return 1, nil
	}
	return 0, nil
}

// Skills averages, over the user's skills, the best similarity each finds among the job's
// skills. The result is clamped to [0, 1]; empty input on either side scores 0.
func (s *Scorer) Skills(ctx context.Context, userSkills, jobSkills []string) (float64, error) {
	if len(userSkills) == 0 || len(jobSkills) == 0 {
		return 0, nil
	}

	userVecs, err := s.provider.EmbedSet(ctx, userSkills)
	if err != nil {
		return 0, err
	}
	jobVecs, err := s.provider.EmbedSet(ctx, jobSkills)
	if err != nil {
		return 0, err
	}

	matrix, err := embedding.Matrix(userVecs, jobVecs)
	if err != nil {
		return 0, err
	}
	if len(matrix) == 0 {
		return 0, nil
	}

	var sum float64
	for _, row := range matrix {
		best := math.Inf(-1)
		for _, sim := range row {
			best = math.Max(best, sim)
		}
		sum += best
	}

	return math.Max(0, math.Min(1, sum/float64(len(matrix)))), nil
}
