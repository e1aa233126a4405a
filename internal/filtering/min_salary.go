package filtering

import (
	"context"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/profile"
)

type minSalaryFilter struct{}

// NewMinSalary creates a filter that removes jobs paying less than the profile's minimum.
// Jobs whose salary is not an integer are always kept.
func NewMinSalary() Filter {
	return minSalaryFilter{}
}

func (minSalaryFilter) Name() string { return "min_salary" }

func (minSalaryFilter) Apply(_ context.Context, p profile.UserProfile, jobs []catalog.JobRecord) ([]catalog.JobRecord, Step, error) {
	initial := len(jobs)
	if p.MinSalary == nil {
		return jobs, Step{Initial: initial, Left: initial}, nil
	}

	kept := make([]catalog.JobRecord, 0, len(jobs))
	for _, job := range jobs {
		if amount, ok := job.SalaryAmount(); ok && amount < *p.MinSalary {
			continue
		}
		kept = append(kept, job)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
