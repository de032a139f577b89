package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func pdfFile(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return extractPDFText(f, info.Size())
}

func pdfBytes(data []byte) (string, error) {
	return extractPDFText(bytes.NewReader(data), int64(len(data)))
}

// extractPDFText reads page by page and joins pages with a newline. Pages
// without decodable text contribute an empty segment.
func extractPDFText(reader io.ReaderAt, size int64) (text string, err error) {
	defer guard(&err)

	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		pages[i-1] = pageText
	}
	return strings.Join(pages, "\n"), nil
}
