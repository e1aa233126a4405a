// Package filtering runs the hard pre-filters applied to the catalog before scoring.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/profile"
)

// Filter represents a single filtering step applied to jobs.
type Filter interface {
	Name() string
	Apply(ctx context.Context, p profile.UserProfile, jobs []catalog.JobRecord) ([]catalog.JobRecord, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially. The input slice is never modified.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, p profile.UserProfile, jobs []catalog.JobRecord) ([]catalog.JobRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		next, info, err := step.Apply(ctx, p, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}
