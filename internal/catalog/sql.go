package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Database drivers selectable through catalog.driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultQuery selects the catalog columns in a stable order.
const DefaultQuery = `SELECT id, title, field, skills, qualification, city, salary FROM jobs ORDER BY id`

// SQLSource reads records from a relational table. The skills column holds comma separated
// values.
type SQLSource struct {
	db    *sql.DB
	query string
}

// OpenDB opens a database for driver "sqlite" or "pgx".
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver = strings.TrimSpace(driver)
	switch driver {
	case "sqlite", "pgx":
	case "postgres":
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

// NewSQLSource creates a source over db. An empty query uses DefaultQuery.
func NewSQLSource(db *sql.DB, query string) *SQLSource {
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	return &SQLSource{db: db, query: query}
}

// ListAll runs the query and returns the rows in result order.
func (s *SQLSource) ListAll(ctx context.Context) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRecord
	for rows.Next() {
		var (
			job                               JobRecord
			field, skills, qual, city, salary sql.NullString
		)
		if err := rows.Scan(&job.ID, &job.Title, &field, &skills, &qual, &city, &salary); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}

		job.Field = field.String
		job.Skills = SplitSkills(skills.String)
		job.Qualification = qual.String
		job.City = city.String
		job.Salary = salary.String
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}
