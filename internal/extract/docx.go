package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func docxFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return extractDocxText(f, info.Size())
}

func docxBytes(data []byte) (string, error) {
	return extractDocxText(bytes.NewReader(data), int64(len(data)))
}

func extractDocxText(reader io.ReaderAt, size int64) (text string, err error) {
	defer guard(&err)

	doc, err := docx.ReadDocxFromMemory(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	body, err := bodyText(doc.Editable().GetContent())
	if err != nil {
		return "", err
	}
	headers, footers, err := headerFooterText(reader, size)
	if err != nil {
		return "", err
	}
	return headers + body + footers, nil
}

// headerFooterText flattens word/header*.xml and word/footer*.xml in part
// name order. The docx package keeps these parts private.
func headerFooterText(reader io.ReaderAt, size int64) (headers, footers string, err error) {
	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return "", "", fmt.Errorf("failed to open docx archive: %w", err)
	}
	var hs, fs []*zip.File
	for _, f := range zr.File {
		switch {
		case isPart(f.Name, "word/header"):
			hs = append(hs, f)
		case isPart(f.Name, "word/footer"):
			fs = append(fs, f)
		}
	}
	if headers, err = partsText(hs); err != nil {
		return "", "", err
	}
	if footers, err = partsText(fs); err != nil {
		return "", "", err
	}
	return headers, footers, nil
}

func isPart(name, prefix string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".xml") && !strings.Contains(name[len(prefix):], "/")
}

func partsText(files []*zip.File) (string, error) {
	slices.SortFunc(files, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })
	var b strings.Builder
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		text, err := bodyText(string(data))
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Name, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// bodyText flattens WordprocessingML into plain text: run text is kept,
// tabs become \t, breaks and paragraph ends become \n.
func bodyText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode part xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return b.String(), nil
}
