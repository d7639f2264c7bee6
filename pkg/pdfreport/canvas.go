package pdfreport

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// Canvas is the drawing surface a Document lays out onto. Units are
// millimetres with the origin at the top-left of the page.
type Canvas interface {
	AddPage()
	PageSize() (width, height float64)
	SetFont(style string, size float64)
	SetFillColor(r, g, b int)
	Text(x, y float64, s string)
	FillRect(x, y, w, h float64)
	Line(x1, y1, x2, y2 float64)
	StringWidth(s string) float64
	Output(w io.Writer) error
}

// PDFCanvas draws onto an A4 portrait fpdf document using the core Helvetica
// font. Text is translated from UTF-8 to the font's code page.
type PDFCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewPDFCanvas creates an empty A4 portrait document.
func NewPDFCanvas(title string) *PDFCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("eventexport", true)
	pdf.SetFont("Helvetica", "", 11)
	return &PDFCanvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (c *PDFCanvas) AddPage() { c.pdf.AddPage() }

func (c *PDFCanvas) PageSize() (float64, float64) {
	w, h := c.pdf.GetPageSize()
	return w, h
}

func (c *PDFCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *PDFCanvas) SetFillColor(r, g, b int) { c.pdf.SetFillColor(r, g, b) }

func (c *PDFCanvas) Text(x, y float64, s string) { c.pdf.Text(x, y, c.tr(s)) }

func (c *PDFCanvas) FillRect(x, y, w, h float64) { c.pdf.Rect(x, y, w, h, "F") }

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *PDFCanvas) StringWidth(s string) float64 { return c.pdf.GetStringWidth(c.tr(s)) }

func (c *PDFCanvas) Output(w io.Writer) error {
	if err := c.pdf.Error(); err != nil {
		return err
	}
	return c.pdf.Output(w)
}
