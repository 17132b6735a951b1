// Package skills holds the role-keyed reference skill catalog and scores
// how much of a role's reference set a résumé mentions.
package skills

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Role is one entry of the catalog.
type Role struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Skills   []string `yaml:"skills"`
}

type catalogFile struct {
	Roles   []Role              `yaml:"roles"`
	Aliases map[string][]string `yaml:"aliases"`
}

// Catalog maps roles to their reference skill sets.
type Catalog struct {
	roles    []Role
	byName   map[string]int
	aliases  map[string][]string
	patterns map[string]*regexp.Regexp
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded skill catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill catalog: %w", err)
	}

	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("skill catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if len(file.Roles) == 0 {
		return nil, errors.New("no roles defined")
	}

	c := &Catalog{
		roles:    make([]Role, 0, len(file.Roles)),
		byName:   make(map[string]int, len(file.Roles)),
		aliases:  make(map[string][]string, len(file.Aliases)),
		patterns: make(map[string]*regexp.Regexp),
	}

	for skill, aliases := range file.Aliases {
		key := normalize(skill)
		if key == "" {
			continue
		}
		for _, alias := range aliases {
			if alias = strings.TrimSpace(alias); alias != "" {
				c.aliases[key] = append(c.aliases[key], alias)
			}
		}
	}

	for i, role := range file.Roles {
		role.Name = strings.TrimSpace(role.Name)
		if role.Name == "" {
			return nil, fmt.Errorf("role #%d has no name", i+1)
		}
		key := normalize(role.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("role %q is defined twice", role.Name)
		}

		role.Skills = dedupe(role.Skills)
		role.Keywords = dedupe(role.Keywords)
		for _, term := range append(append([]string{role.Name}, role.Keywords...), role.Skills...) {
			c.compile(term)
		}
		for _, skill := range role.Skills {
			for _, alias := range c.aliases[normalize(skill)] {
				c.compile(alias)
			}
		}

		c.byName[key] = len(c.roles)
		c.roles = append(c.roles, role)
	}

	return c, nil
}

// Roles returns the catalog roles in declaration order.
func (c *Catalog) Roles() []Role {
	out := make([]Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// Lookup finds a role by name, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(name string) (Role, bool) {
	idx, ok := c.byName[normalize(name)]
	if !ok {
		return Role{}, false
	}
	return c.roles[idx], true
}

// ReferenceSkills returns the reference skill set for a role, or nil when the role is unknown.
func (c *Catalog) ReferenceSkills(role string) []string {
	r, ok := c.Lookup(role)
	if !ok {
		return nil
	}
	out := make([]string, len(r.Skills))
	copy(out, r.Skills)
	return out
}

// Mentions reports whether text mentions term or, for skills, one of its aliases.
func (c *Catalog) Mentions(text, term string) bool {
	if c.mentions(text, term) {
		return true
	}
	for _, alias := range c.aliases[normalize(term)] {
		if c.mentions(text, alias) {
			return true
		}
	}
	return false
}

func (c *Catalog) mentions(text, term string) bool {
	re, ok := c.patterns[term]
	if !ok {
		re = termPattern(term)
	}
	return re != nil && re.MatchString(text)
}

func (c *Catalog) compile(term string) {
	if _, ok := c.patterns[term]; ok {
		return
	}
	if re := termPattern(term); re != nil {
		c.patterns[term] = re
	}
}

// termPattern matches term between non-alphanumeric boundaries so that
// "C++" and "Node.js" work and "Go" does not match "Google". Terms of up
// to two characters are case-sensitive.
func termPattern(term string) *regexp.Regexp {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	if utf8.RuneCountInString(term) == 1 {
		return letterPattern(term)
	}

	parts := strings.Fields(term)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	flags := "(?i)"
	if utf8.RuneCountInString(term) <= 2 {
		flags = ""
	}

	return regexp.MustCompile(flags + `(?:^|[^\pL\pN])` + strings.Join(parts, `\s+`) + `(?:$|[^\pL\pN])`)
}

// letterPattern matches a one-letter skill such as R only as a list item:
// whitespace on both sides is not enough, one side must be a list separator
// or the end of a line. "R&D" and "John R. Smith" do not match.
func letterPattern(term string) *regexp.Regexp {
	t := regexp.QuoteMeta(term)
	const (
		sepLeft  = `(?:^|[,;/|(:•]\s*)`
		sepRight = `(?:\s*[,;/|)•]|$)`
		space    = `[ \t]`
	)
	return regexp.MustCompile(`(?m)` +
		`(?:` + sepLeft + t + `(?:` + sepRight + `|` + space + `)` + `)` +
		`|(?:` + space + t + sepRight + `)`)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := normalize(item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
