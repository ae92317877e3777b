// Package pdf extracts plain text from in-memory PDF uploads.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
)

var pdfMagic = []byte("%PDF-")

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// ExtractText returns the trimmed text of every page, one text row per line.
// It is all-or-nothing: any page failure fails the whole document.
func (e *Extractor) ExtractText(data []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return "", fmt.Errorf("%w: missing %%PDF- header", grants.ErrInvalidFormat)
	}

	// the parser panics on some corrupt object streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", grants.ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if err := writePage(&b, page); err != nil {
			return "", fmt.Errorf("%w: page %d: %w", grants.ErrExtractionFailed, i, err)
		}
	}

	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: %w", grants.ErrExtractionFailed, grants.ErrNoText)
	}
	return text, nil
}

func writePage(b *strings.Builder, page pdf.Page) error {
	rows, err := page.GetTextByRow()
	if err != nil {
		// row grouping needs font metrics; plain text does not
		plain, perr := page.GetPlainText(nil)
		if perr != nil {
			return perr
		}
		b.WriteString(plain)
		b.WriteByte('\n')
		return nil
	}
	for _, row := range rows {
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		b.WriteByte('\n')
	}
	return nil
}

func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, pdf.ErrInvalidPassword), strings.Contains(msg, "encrypt"):
		return fmt.Errorf("%w: %w", grants.ErrEncryptedDocument, err)
	case strings.Contains(msg, "not a pdf"), strings.Contains(msg, "malformed pdf"):
		return fmt.Errorf("%w: %w", grants.ErrInvalidFormat, err)
	default:
		return fmt.Errorf("%w: %w", grants.ErrExtractionFailed, err)
	}
}
