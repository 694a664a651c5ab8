// Package extract turns uploaded documents into plain text for analysis.
// Supported formats are .txt (UTF-8), .docx and .pdf.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/scrypster/insight/pkg/types"
)

// MaxDocumentSize bounds the uploaded file size accepted by Text.
const MaxDocumentSize = 20 << 20

// SupportedExtensions lists the accepted file extensions.
var SupportedExtensions = []string{".txt", ".docx", ".pdf"}

// Text extracts trimmed plain text from data, choosing the parser by the
// extension of filename (case-insensitive). Unknown extensions and content
// that cannot be parsed wrap types.ErrUnsupportedDocument.
func Text(filename string, data []byte) (string, error) {
	if len(data) > MaxDocumentSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", types.ErrUnsupportedDocument, filename, MaxDocumentSize)
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		text, err = plainText(data)
	case ".docx":
		text, err = docxText(data)
	case ".pdf":
		text, err = pdfText(data)
	default:
		return "", fmt.Errorf("%w: %q (use PDF, DOCX, or TXT)", types.ErrUnsupportedDocument, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", types.ErrUnsupportedDocument, filename, err)
	}
	return strings.TrimSpace(text), nil
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8")
	}
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
}

// pdfText reads the text layer page by page. The parser panics on some
// malformed files, so panics are turned into errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("content exceeds %d bytes", limit)
	}
	return data, nil
}
