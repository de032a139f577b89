// Package extract converts résumé documents (PDF, DOCX) into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnsupportedFormat is returned for documents that are neither PDF nor DOCX.
	ErrUnsupportedFormat = errors.New("unsupported file format, use PDF or DOCX")
	// ErrExtractionFailed wraps any failure of the underlying parsers.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// FormatFromMIME maps a content type to a Format.
func FormatFromMIME(mime string) (Format, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
}

// File extracts the text of the document at path. The file is only read;
// removing it stays with the caller.
func File(path string) (string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = pdfFile(path)
	case FormatDOCX:
		text, err = docxFile(path)
	}
	if err != nil {
		return "", failed(format, err)
	}
	return normalize(text), nil
}

// Bytes extracts the text of an in-memory document.
func Bytes(format Format, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = pdfBytes(data)
	case FormatDOCX:
		text, err = docxBytes(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", failed(format, err)
	}
	return normalize(text), nil
}

func failed(format Format, cause error) error {
	return fmt.Errorf("%w: error reading %s: %w", ErrExtractionFailed, strings.ToUpper(string(format)), cause)
}

// normalize folds compatibility characters (PDF ligatures, full-width forms)
// so vocabulary terms match what the reader sees.
func normalize(text string) string {
	return norm.NFKC.String(text)
}

// guard turns a parser panic into an error.
func guard(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("parser panic: %v", r)
	}
}
