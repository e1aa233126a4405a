// Package catalog holds the read-only snapshot of job postings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrDuplicateID is returned when two records share an id.
var ErrDuplicateID = errors.New("duplicate job id")

// JobRecord is a single job posting.
type JobRecord struct {
	ID            string   `mapstructure:"id" json:"id" validate:"required"`
	Title         string   `mapstructure:"title" json:"title" validate:"required"`
	Field         string   `mapstructure:"field" json:"field"`
	Skills        []string `mapstructure:"skills" json:"skills"`
	Qualification string   `mapstructure:"qualification" json:"qualification"`
	City          string   `mapstructure:"city" json:"city"`
	// Salary is kept as written by the source; see SalaryAmount.
	Salary string `mapstructure:"salary" json:"salary"`
}

// SalaryAmount parses the salary. The second result is false when it is not an integer.
func (j JobRecord) SalaryAmount() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(j.Salary))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Source yields job records in catalog order.
type Source interface {
	ListAll(ctx context.Context) ([]JobRecord, error)
}

// Catalog is an immutable, ordered set of job records. It is safe to share between sessions.
type Catalog struct {
	jobs []JobRecord
	byID map[string]int
}

// Load takes the snapshot from src, validating and normalizing every record.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	records, err := src.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	c, err := New(records)
	if err != nil {
		return nil, err
	}

	logger.Info("job catalog loaded", zap.Int("count", c.Len()))
	return c, nil
}

// New builds a catalog from records, keeping their order.
func New(records []JobRecord) (*Catalog, error) {
	validate := validator.New()

	c := &Catalog{
		jobs: make([]JobRecord, 0, len(records)),
		byID: make(map[string]int, len(records)),
	}

	for i, rec := range records {
		rec = normalizeRecord(rec)
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("job #%d: %w", i+1, err)
		}
		if _, ok := c.byID[rec.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}

		c.byID[rec.ID] = len(c.jobs)
		c.jobs = append(c.jobs, rec)
	}

	return c, nil
}

// ListAll returns the records in catalog order. The slice is a copy.
func (c *Catalog) ListAll() []JobRecord {
	out := make([]JobRecord, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// FindByID returns the record with the given id.
func (c *Catalog) FindByID(id string) (JobRecord, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return JobRecord{}, false
	}
	return c.jobs[idx], true
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.jobs)
}

func normalizeRecord(rec JobRecord) JobRecord {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Field = strings.TrimSpace(rec.Field)
	rec.Qualification = strings.TrimSpace(rec.Qualification)
	rec.City = strings.TrimSpace(rec.City)
	rec.Salary = strings.TrimSpace(rec.Salary)
	rec.Skills = NormalizeSkills(rec.Skills)
	return rec
}

// NormalizeSkills trims and lowercases skills, dropping blanks and keeping order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SplitSkills splits a comma separated skill column.
func SplitSkills(s string) []string {
	return NormalizeSkills(strings.Split(s, ","))
}
