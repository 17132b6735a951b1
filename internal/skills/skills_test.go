package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-evaluator/internal/document"
)

const testCatalog = `
roles:
  - name: Data Analyst
    keywords: [analytics]
    skills: [Python, SQL, Excel, sql]
  - name: Backend Engineer
    skills: [Go, C++, Node.js, Machine Learning]
  - name: Empty Role
    skills: []
aliases:
  Go: [Golang]
  Excel: [Spreadsheets]
`

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return c
}

func doc(text string) *document.Content {
	return &document.Content{Reference: "resume.txt", Text: text}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NotEmpty(t, c.Roles())

	role, ok := c.Lookup("  ai/ml engineer ")
	require.True(t, ok)
	assert.Equal(t, "AI/ML Engineer", role.Name)
	assert.Contains(t, role.Skills, "PyTorch")
}

func TestParseCatalogDedupesSkills(t *testing.T) {
	c := mustCatalog(t)

	assert.Equal(t, []string{"Python", "SQL", "Excel"}, c.ReferenceSkills("data analyst"))
	assert.Nil(t, c.ReferenceSkills("Astronaut"))
}

func TestParseCatalogErrors(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "roles: [",
		"no roles":       "aliases: {}",
		"unnamed role":   "roles:\n  - skills: [Go]",
		"duplicate role": "roles:\n  - name: SRE\n  - name: sre",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Roles())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Roles(), 3)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMentions(t *testing.T) {
	c := mustCatalog(t)

	tests := []struct {
		text   string
		term   string
		expect bool
	}{
		{text: "Built services in Golang", term: "Go", expect: true},
		{text: "Worked at Google", term: "Go", expect: false},
		{text: "let's go build", term: "Go", expect: false},
		{text: "Modern C++17 and C++", term: "C++", expect: true},
		{text: "APIs with node.js", term: "Node.js", expect: true},
		{text: "nodejs", term: "Node.js", expect: false},
		{text: "applied machine\nlearning", term: "Machine Learning", expect: true},
		{text: "advanced spreadsheets", term: "Excel", expect: true},
		{text: "I excel at teamwork", term: "Excel", expect: true},
		{text: "PostgreSQL", term: "SQL", expect: false},
		{text: "Python, R, SQL", term: "R", expect: true},
		{text: "Skills: R", term: "R", expect: true},
		{text: "statistics in R\nPython", term: "R", expect: true},
		{text: "Head of R&D", term: "R", expect: false},
		{text: "John R. Smith", term: "R", expect: false},
		{text: "John R Smith", term: "R", expect: false},
		{text: "O'Reilly r, s", term: "R", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.term+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expect, c.Mentions(tt.text, tt.term))
		})
	}
}

func TestMatchScenario(t *testing.T) {
	m := NewMatcher(mustCatalog(t))

	got := m.Match(doc("Jane Doe, jane@x.com\nSkills: Python, SQL"), "Data Analyst")

	assert.Equal(t, []string{"Python", "SQL"}, got.Matched)
	assert.Equal(t, []string{"Excel"}, got.Missing)
	assert.InDelta(t, 0.667, got.Score, 0.001)
}

func TestMatchIgnoresMiddleInitials(t *testing.T) {
	m := NewMatcher(DefaultCatalog())

	got := m.Match(doc("John R. Smith\nLed R&D projects\nSkills: Python, SQL"), "Data Scientist")
	assert.NotContains(t, got.Matched, "R")
	assert.Contains(t, got.Missing, "R")

	got = m.Match(doc("Jane Doe\nSkills: Python, R, SQL"), "Data Scientist")
	assert.Contains(t, got.Matched, "R")

	got = m.Match(doc("Modelling in RStudio"), "Data Scientist")
	assert.Contains(t, got.Matched, "R")
}

func TestMatchWithoutReferenceSet(t *testing.T) {
	m := NewMatcher(mustCatalog(t))

	for _, role := range []string{"", "  ", "Astronaut", "Empty Role"} {
		got := m.Match(doc("Python SQL Excel Go"), role)
		assert.Equal(t, 0.0, got.Score, role)
		assert.Empty(t, got.Matched, role)
		assert.Empty(t, got.Missing, role)
		assert.NotNil(t, got.Matched, role)
	}
}

func TestMatchPartitionsReferenceSet(t *testing.T) {
	c := DefaultCatalog()
	m := NewMatcher(c)
	text := "Python SQL Docker Kubernetes React TypeScript Terraform Swift Agile PyTorch golang"

	for _, role := range c.Roles() {
		got := m.Match(doc(text), role.Name)

		assert.GreaterOrEqual(t, got.Score, 0.0)
		assert.LessOrEqual(t, got.Score, 1.0)

		union := append(append([]string{}, got.Matched...), got.Missing...)
		assert.ElementsMatch(t, got.Reference, union, role.Name)

		matched := make(map[string]bool)
		for _, s := range got.Matched {
			matched[s] = true
		}
		for _, s := range got.Missing {
			assert.False(t, matched[s], "%s in both sets for %s", s, role.Name)
		}
	}
}

func TestMatchNilContent(t *testing.T) {
	got := NewMatcher(mustCatalog(t)).Match(nil, "Data Analyst")
	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, []string{"Python", "SQL", "Excel"}, got.Missing)
}
