package document

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfMagic = []byte("%PDF-")

const wordGap = 0.2

// PDFParser validates PDFs with pdfcpu and extracts their text layer.
type PDFParser struct {
	conf *model.Configuration
}

func NewPDFParser() *PDFParser {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFParser{conf: conf}
}

func (p *PDFParser) Format() string { return "pdf" }

func (p *PDFParser) CanHandle(ref Reference) bool { return ref.Ext() == "pdf" }

func (p *PDFParser) Parse(ref Reference, data []byte) (*Content, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return nil, fmt.Errorf("%w: %s has no PDF header", ErrUnreadableDocument, ref)
	}

	pages, err := p.pageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: validate %s: %v", ErrUnreadableDocument, ref, err)
	}

	text, err := extractPDFText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: extract text from %s: %v", ErrUnreadableDocument, ref, err)
	}

	return &Content{
		Reference: ref,
		Format:    p.Format(),
		Pages:     pages,
		Text:      normalizeText(text),
	}, nil
}

func (p *PDFParser) pageCount(data []byte) (pages int, err error) {
	// pdfcpu panics on some damaged cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	rs := bytes.NewReader(data)
	if err := api.Validate(rs, p.conf); err != nil {
		return 0, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return api.PageCount(rs, p.conf)
}

// extractPDFText rebuilds the text layer line by line. Glyphs are grouped
// into rows by their baseline, rows are read top to bottom and glyphs left
// to right, so line breaks expressed as text moves survive extraction.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, strings.Join(pageRows(page.Content().Text), "\n"))
	}

	return strings.Join(pages, "\n\n"), nil
}

type glyphRow struct {
	y      float64
	glyphs []pdf.Text
}

func pageRows(glyphs []pdf.Text) []string {
	var rows []*glyphRow
	byY := make(map[float64]*glyphRow)

	for _, g := range glyphs {
		y := math.Round(g.Y)
		row, ok := byY[y]
		if !ok {
			row = &glyphRow{y: y}
			byY[y] = row
			rows = append(rows, row)
		}
		row.glyphs = append(row.glyphs, g)
	}

	// PDF y grows upwards
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.text())
	}
	return lines
}

// text joins the row's glyphs, adding a space where the gap between two
// glyphs is wider than a fraction of the font size. Fonts without width
// tables report zero advances, so their glyphs keep stream order.
func (r *glyphRow) text() string {
	sort.SliceStable(r.glyphs, func(i, j int) bool { return r.glyphs[i].X < r.glyphs[j].X })

	var b strings.Builder
	for i, g := range r.glyphs {
		if i > 0 {
			prev := r.glyphs[i-1]
			if prev.W > 0 && g.X-(prev.X+prev.W) > wordGap*g.FontSize {
				b.WriteByte(' ')
			}
		}
		// TJ arrays end with a synthetic newline glyph
		if g.S == "\n" || g.S == "\r" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(g.S)
	}
	return b.String()
}
