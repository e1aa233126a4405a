package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/filtering"
	"github.com/spigell/job-advisor/internal/profile"
)

// Result is one ranked job.
type Result struct {
	Job       catalog.JobRecord `json:"job"`
	Score     float64           `json:"score"`
	Breakdown Breakdown         `json:"breakdown"`
}

// Ranker filters and scores a list of jobs for a profile.
type Ranker struct {
	scorer  *Scorer
	filters []filtering.Filter
	logger  *zap.Logger
}

// NewRanker creates a ranker. Filters run in order before scoring.
func NewRanker(scorer *Scorer, filters []filtering.Filter, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{scorer: scorer, filters: filters, logger: logger}
}

// Rank returns every surviving job sorted by descending score. Equal scores keep the
// order of jobs.
func (r *Ranker) Rank(ctx context.Context, p profile.UserProfile, jobs []catalog.JobRecord) ([]Result, error) {
	candidates, err := filtering.Run(ctx, r.logger, r.filters, p, jobs)
	if err != nil {
		return nil, fmt.Errorf("filtering jobs: %w", err)
	}

	results := make([]Result, 0, len(candidates))
	for _, job := range candidates {
		b, err := r.scorer.Score(ctx, p, job)
		if err != nil {
			return nil, fmt.Errorf("scoring job %s: %w", job.ID, err)
		}

		results = append(results, Result{Job: job, Score: b.Percentage(), Breakdown: b})
		r.logger.Debug("job scored",
			zap.String("job_id", job.ID),
			zap.Float64("qualification", b.Qualification),
			zap.Float64("skills", b.Skills),
			zap.Float64("field", b.Field),
			zap.Float64("score", results[len(results)-1].Score),
		)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	r.logger.Info("jobs ranked", zap.Int("catalog", len(jobs)), zap.Int("ranked", len(results)))
	return results, nil
}

// Top returns at most n results. A non-positive n returns all of them.
func Top(results []Result, n int) []Result {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
