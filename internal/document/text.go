package document

import (
	"fmt"
	"unicode/utf8"
)

// TextParser loads pre-extracted plain-text résumés.
type TextParser struct{}

func NewTextParser() *TextParser { return &TextParser{} }

func (p *TextParser) Format() string { return "text" }

func (p *TextParser) CanHandle(ref Reference) bool {
	switch ref.Ext() {
	case "txt", "text", "md":
		return true
	default:
		return false
	}
}

func (p *TextParser) Parse(ref Reference, data []byte) (*Content, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnreadableDocument, ref)
	}

	return &Content{
		Reference: ref,
		Format:    p.Format(),
		Text:      normalizeText(string(data)),
	}, nil
}
