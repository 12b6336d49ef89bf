package files

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// IsPDF sniffs the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractPDFText returns the plain text of a PDF document. Data that is not
// a PDF yields an empty string and no error.
func ExtractPDFText(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", nil
	}
	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
