// Package pdfreport lays out paginated report documents: headings, wrapped
// paragraphs, key/value lines and bar charts. Every block checks the
// remaining vertical space before drawing and starts a new page when it
// would overflow the bottom margin.
package pdfreport

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Layout constants, in millimetres unless noted.
const (
	DefaultMargin = 15.0

	titleSize     = 20.0 // pt
	headingSize   = 14.0 // pt
	bodySize      = 10.0 // pt
	titleHeight   = 12.0
	headingHeight = 10.0
	lineHeight    = 5.0
	kvHeight      = 6.0
	blockSpacing  = 3.0
)

// Document is a vertical-flow layout over a Canvas.
type Document struct {
	c      Canvas
	margin float64
	width  float64
	height float64
	y      float64
	pages  int
}

// New starts a document on c with the first page already added.
func New(c Canvas) *Document {
	w, h := c.PageSize()
	d := &Document{c: c, margin: DefaultMargin, width: w, height: h}
	d.newPage()
	return d
}

// Y returns the current vertical cursor.
func (d *Document) Y() float64 { return d.y }

// Pages returns the number of pages started so far.
func (d *Document) Pages() int { return d.pages }

// ContentWidth is the usable width between the side margins.
func (d *Document) ContentWidth() float64 { return d.width - 2*d.margin }

// usableBottom is the lowest y a block may reach.
func (d *Document) usableBottom() float64 { return d.height - d.margin }

func (d *Document) newPage() {
	d.c.AddPage()
	d.pages++
	d.y = d.margin
}

// EnsureSpace starts a new page when a block of height h would run past the
// bottom margin. It reports whether a page break happened.
func (d *Document) EnsureSpace(h float64) bool {
	if d.y+h <= d.usableBottom() || d.y == d.margin {
		return false
	}
	d.newPage()
	return true
}

// Title writes a large document title.
func (d *Document) Title(s string) {
	d.EnsureSpace(titleHeight + blockSpacing)
	d.c.SetFont("B", titleSize)
	d.c.Text(d.margin, d.y+titleHeight-3, s)
	d.y += titleHeight + blockSpacing
}

// Heading writes a section heading with a rule under it.
func (d *Document) Heading(s string) {
	// Keep the heading with at least one line of what follows.
	d.EnsureSpace(headingHeight + lineHeight)
	d.c.SetFont("B", headingSize)
	d.c.Text(d.margin, d.y+headingHeight-3, s)
	d.c.Line(d.margin, d.y+headingHeight-1, d.width-d.margin, d.y+headingHeight-1)
	d.y += headingHeight + blockSpacing
}

// Paragraph writes word-wrapped body text. A paragraph that fits on one page
// is never split across two.
func (d *Document) Paragraph(s string) {
	d.c.SetFont("", bodySize)
	lines := d.Wrap(s, d.ContentWidth())
	block := float64(len(lines)) * lineHeight
	if block <= d.usableBottom()-d.margin {
		d.EnsureSpace(block)
	}
	for _, line := range lines {
		d.EnsureSpace(lineHeight)
		d.c.Text(d.margin, d.y+lineHeight-1, line)
		d.y += lineHeight
	}
	d.y += blockSpacing
}

// KeyValue writes a bold label followed by its value on one line.
func (d *Document) KeyValue(key, value string) {
	d.EnsureSpace(kvHeight)
	d.c.SetFont("B", bodySize)
	label := key + ": "
	d.c.Text(d.margin, d.y+kvHeight-1.5, label)
	offset := d.c.StringWidth(label)
	d.c.SetFont("", bodySize)
	d.c.Text(d.margin+offset, d.y+kvHeight-1.5, value)
	d.y += kvHeight
}

// Spacer advances the cursor by h without drawing.
func (d *Document) Spacer(h float64) {
	if d.EnsureSpace(h) {
		return
	}
	d.y += h
}

// Render writes the finished document.
func (d *Document) Render(w io.Writer) error {
	return d.c.Output(w)
}

// Wrap splits s into lines no wider than width as measured by the canvas.
// Words wider than a line are broken between runes. Explicit newlines start
// a new line.
func (d *Document) Wrap(s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, word := range words {
			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}
			if d.c.StringWidth(candidate) <= width {
				cur = candidate
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = word
			for d.c.StringWidth(cur) > width && utf8.RuneCountInString(cur) > 1 {
				head, tail := d.breakWord(cur, width)
				lines = append(lines, head)
				cur = tail
			}
		}
		lines = append(lines, cur)
	}
	return lines
}

// breakWord returns the longest prefix of word (at least one rune) that fits.
func (d *Document) breakWord(word string, width float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && d.c.StringWidth(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
