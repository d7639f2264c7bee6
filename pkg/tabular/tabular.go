// Package tabular writes delimited text where every field is quoted.
//
// encoding/csv only quotes fields that need it; spreadsheet imports of
// exported guest data treat unquoted phone numbers and ids as numbers and
// mangle them, so every field is written quoted.
package tabular

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Writer writes records as always-quoted delimited lines terminated by "\n".
type Writer struct {
	Comma byte

	w *bufio.Writer
}

// NewWriter returns a Writer using ',' as the delimiter.
func NewWriter(w io.Writer) *Writer {
	return &Writer{Comma: ',', w: bufio.NewWriter(w)}
}

// Write writes one record. Embedded quotes are doubled.
func (w *Writer) Write(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.w.WriteByte(w.Comma); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(Quote(f)); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// WriteAll writes every record and flushes.
func (w *Writer) WriteAll(records [][]string) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Quote wraps s in double quotes, doubling any quote inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Encode renders a header line followed by rows. The header is always
// written, so no rows yields a single line.
func Encode(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// bytes.Buffer writes cannot fail.
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return buf.Bytes()
}
