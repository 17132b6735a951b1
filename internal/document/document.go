// Package document resolves résumé references to plain-text content.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced file does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrUnreadableDocument is returned when the file exists but cannot be parsed.
	ErrUnreadableDocument = errors.New("unreadable document")
)

// Reference is a path to a résumé file supplied by the caller.
type Reference string

func (r Reference) String() string { return string(r) }

// Ext returns the lowercased file extension without the dot.
func (r Reference) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(string(r))), ".")
}

// Content is the loaded, read-only form of a document shared by all stages.
type Content struct {
	Reference Reference
	Format    string
	Pages     int
	Text      string
}

// Lines returns the non-empty, trimmed lines of the text.
func (c *Content) Lines() []string {
	if c == nil {
		return nil
	}
	raw := strings.Split(c.Text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Parser turns raw file bytes into text for one family of formats.
type Parser interface {
	Format() string
	CanHandle(ref Reference) bool
	Parse(ref Reference, data []byte) (*Content, error)
}

// Loader reads a referenced file and dispatches it to the first parser that accepts it.
type Loader struct {
	parsers []Parser
}

// NewLoader creates a loader. Without parsers it handles PDF and plain text.
func NewLoader(parsers ...Parser) *Loader {
	if len(parsers) == 0 {
		parsers = []Parser{NewPDFParser(), NewTextParser()}
	}
	return &Loader{parsers: parsers}
}

// Load resolves ref to content. It only reads the file.
func (l *Loader) Load(ref Reference) (*Content, error) {
	path := strings.TrimSpace(ref.String())
	if path == "" {
		return nil, fmt.Errorf("%w: empty document reference", ErrNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnreadableDocument, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableDocument, path)
	}

	parser, err := l.selectParser(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnreadableDocument, path, err)
	}

	content, err := parser.Parse(ref, data)
	if err != nil {
		if errors.Is(err, ErrUnreadableDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s parser: %v", ErrUnreadableDocument, parser.Format(), err)
	}

	return content, nil
}

// Formats returns the names of the registered parsers.
func (l *Loader) Formats() []string {
	names := make([]string, len(l.parsers))
	for i, parser := range l.parsers {
		names[i] = parser.Format()
	}
	return names
}

func (l *Loader) selectParser(ref Reference) (Parser, error) {
	for _, parser := range l.parsers {
		if parser.CanHandle(ref) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported format %q for %s", ErrUnreadableDocument, ref.Ext(), ref)
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	blankLines      = regexp.MustCompile(`\n{2,}`)
)

// normalizeText collapses runs of horizontal whitespace and blank lines.
func normalizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = horizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
