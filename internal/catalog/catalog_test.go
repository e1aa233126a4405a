package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type staticSource struct {
	jobs []JobRecord
	err  error
}

func (s staticSource) ListAll(context.Context) ([]JobRecord, error) {
	return s.jobs, s.err
}

func TestNewKeepsOrderAndNormalizes(t *testing.T) {
	t.Parallel()

	c, err := New([]JobRecord{
		{ID: " b ", Title: " Second ", Skills: []string{" Python ", "", "SQL"}},
		{ID: "a", Title: "First", Salary: " 100 "},
	})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	jobs := c.ListAll()
	assert.Equal(t, "b", jobs[0].ID)
	assert.Equal(t, "Second", jobs[0].Title)
	assert.Equal(t, []string{"python", "sql"}, jobs[0].Skills)
	assert.Equal(t, "a", jobs[1].ID)
	assert.Equal(t, "100", jobs[1].Salary)
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	_, err := New([]JobRecord{{ID: "1", Title: "A"}, {ID: "1", Title: "B"}})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = New([]JobRecord{{ID: "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job #1")

	_, err = New([]JobRecord{{Title: "No id"}})
	require.Error(t, err)
}

func TestListAllReturnsCopy(t *testing.T) {
	t.Parallel()

	c, err := New([]JobRecord{{ID: "1", Title: "A"}})
	require.NoError(t, err)

	jobs := c.ListAll()
	jobs[0].Title = "changed"

	assert.Equal(t, "A", c.ListAll()[0].Title)
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	c, err := New([]JobRecord{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}})
	require.NoError(t, err)

	job, ok := c.FindByID(" 2 ")
	require.True(t, ok)
	assert.Equal(t, "B", job.Title)

	_, ok = c.FindByID("3")
	assert.False(t, ok)
}

func TestSalaryAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		salary string
		want   int
		ok     bool
	}{
		{salary: "50000", want: 50000, ok: true},
		{salary: " 70 ", want: 70, ok: true},
		{salary: "negotiable"},
		{salary: ""},
		{salary: "50k"},
	}

	for _, tt := range tests {
		got, ok := JobRecord{Salary: tt.salary}.SalaryAmount()
		assert.Equal(t, tt.ok, ok, tt.salary)
		assert.Equal(t, tt.want, got, tt.salary)
	}
}

func TestLoadLogsCount(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	c, err := Load(context.Background(), staticSource{jobs: []JobRecord{{ID: "1", Title: "A"}}}, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	entries := logs.FilterMessage("job catalog loaded").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["count"])
}

func TestLoadWrapsSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Load(context.Background(), staticSource{err: boom}, nil)
	require.ErrorIs(t, err, boom)
}

func TestBuiltinCatalog(t *testing.T) {
	t.Parallel()

	c, err := Load(context.Background(), NewFileSource(""), nil)
	require.NoError(t, err)
	require.Equal(t, 10, c.Len())

	first := c.ListAll()[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Software Engineer", first.Title)
	assert.Equal(t, []string{"python", "java", "sql"}, first.Skills)

	dba, ok := c.FindByID("9")
	require.True(t, ok)
	assert.Equal(t, []string{"sql", "postgresql", "backup"}, dba.Skills)

	marketing, ok := c.FindByID("8")
	require.True(t, ok)
	_, numeric := marketing.SalaryAmount()
	assert.False(t, numeric)
}

func TestFileSourceReadsPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	doc := `jobs:
  - id: x1
    title: Tester
    field: QA
    skills: [Selenium]
    qualification: bachelors
    city: Remote
    salary: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	jobs, err := NewFileSource(path).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "x1", jobs[0].ID)
	assert.Equal(t, "1000", jobs[0].Salary)
	assert.Equal(t, []string{"Selenium"}, jobs[0].Skills)
}

func TestFileSourceErrors(t *testing.T) {
	t.Parallel()

	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).ListAll(context.Background())
	require.Error(t, err)

	_, err = DecodeYAML([]byte("jobs: [oops"))
	require.Error(t, err)
}

func TestSQLSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenDB(ctx, "sqlite", filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE jobs (
		id TEXT PRIMARY KEY, title TEXT NOT NULL, field TEXT, skills TEXT,
		qualification TEXT, city TEXT, salary TEXT)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO jobs VALUES
		('2', 'Analyst', 'Finance', 'Excel, SQL', 'bachelors', 'Lahore', '70000'),
		('1', 'Engineer', 'IT', 'go,python', 'masters', 'Karachi', NULL)`)
	require.NoError(t, err)

	c, err := Load(ctx, NewSQLSource(db, ""), nil)
	require.NoError(t, err)

	jobs := c.ListAll()
	require.Len(t, jobs, 2)
	assert.Equal(t, "1", jobs[0].ID)
	assert.Equal(t, []string{"go", "python"}, jobs[0].Skills)
	assert.Equal(t, "", jobs[0].Salary)
	assert.Equal(t, []string{"excel", "sql"}, jobs[1].Skills)
	assert.Equal(t, "70000", jobs[1].Salary)
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenDB(context.Background(), "oracle", "")
	require.Error(t, err)
}
