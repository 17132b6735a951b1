package skills

import (
	"strings"

	"github.com/spigell/resume-evaluator/internal/document"
)

// Match is the outcome of comparing a document against a role's reference skills.
type Match struct {
	Role      string
	Reference []string
	Matched   []string
	Missing   []string
	// Score is |Matched| / |Reference| in [0, 1]; 0 when there is no reference set.
	Score float64
}

// Matcher scores skill fit against the catalog.
type Matcher struct {
	catalog *Catalog
}

func NewMatcher(catalog *Catalog) *Matcher {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Matcher{catalog: catalog}
}

func (m *Matcher) Catalog() *Catalog { return m.catalog }

// Match splits the role's reference skills into matched and missing ones.
// An empty or unknown role yields empty lists and a zero score.
func (m *Matcher) Match(content *document.Content, role string) Match {
	result := Match{
		Role:    strings.TrimSpace(role),
		Matched: []string{},
		Missing: []string{},
	}

	if result.Role == "" {
		return result
	}

	result.Reference = m.catalog.ReferenceSkills(result.Role)
	if len(result.Reference) == 0 {
		return result
	}

	text := ""
	if content != nil {
		text = content.Text
	}

	for _, skill := range result.Reference {
		if m.catalog.Mentions(text, skill) {
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}

	result.Score = float64(len(result.Matched)) / float64(len(result.Reference))
	return result
}
