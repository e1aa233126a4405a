package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSynonyms(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)

	tests := map[string]string{
		"Developer":         "software engineer",
		" programmer ":      "software engineer",
		"coder":             "software engineer",
		"Web Dev":           "web developer",
		"BSc":               "bachelors",
		"msc":               "masters",
		"Python":            "python",
		"software engineer": "software engineer",
	}

	for in, want := range tests {
		assert.Equal(t, want, n.Term(in), in)
	}
}

func TestTermIsIdempotentOnCanonicalValues(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	for _, canonical := range DefaultSynonyms {
		assert.Equal(t, canonical, n.Term(canonical))
		assert.Equal(t, canonical, n.Term(n.Term(canonical)))
	}
}

func TestExtraSynonyms(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(map[string]string{" PhD ": "Doctorate", "coder": "programmer", "": "x"})

	assert.Equal(t, "doctorate", n.Term("phd"))
	assert.Equal(t, "programmer", n.Term("coder"))
	assert.Equal(t, "software engineer", n.Term("developer"))
	assert.Equal(t, "software engineer", DefaultSynonyms["coder"])
}

func TestQualification(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)
	assert.Equal(t, "", n.Qualification("none"))
	assert.Equal(t, "", n.Qualification(" NONE "))
	assert.Equal(t, "", n.Qualification(""))
	assert.Equal(t, "bachelors", n.Qualification("BSc"))
	assert.Equal(t, "phd", n.Qualification("PhD"))
}

func TestList(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)

	assert.Nil(t, n.List("none"))
	assert.Nil(t, n.List("  "))
	assert.Nil(t, n.List(" , ,"))
	assert.Equal(t, []string{"python", "software engineer", "sql"}, n.List("Python, developer,, sql, coder, python"))
	assert.Equal(t, []string{"it"}, n.List("IT"))
}

func TestParseSalary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want *int
	}{
		{in: "skip", want: intPtr(0)},
		{in: "I'd rather SKIP this", want: intPtr(0)},
		{in: "50000", want: intPtr(50000)},
		{in: "50,000 PKR", want: intPtr(50000)},
		{in: "between 40000 and 60000", want: intPtr(40000)},
		{in: "no idea", want: nil},
		{in: "", want: nil},
	}

	for _, tt := range tests {
		got := ParseSalary(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.Equal(t, *tt.want, *got, tt.in)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	p := UserProfile{Qualification: "masters", Skills: []string{"go"}, Fields: []string{"it"}, MinSalary: intPtr(10)}
	c := p.Clone()
	c.Skills[0] = "rust"
	*c.MinSalary = 20

	assert.Equal(t, "go", p.Skills[0])
	assert.Equal(t, 10, *p.MinSalary)
	assert.True(t, c.HasQualification())
	assert.False(t, UserProfile{}.HasQualification())
}

func intPtr(v int) *int { return &v }
