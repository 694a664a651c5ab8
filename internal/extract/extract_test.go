package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/insight/pkg/types"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Acme Corp reported</w:t></w:r><w:r><w:t xml:space="preserve"> record revenue.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Shares rose 5%.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "plain text is trimmed",
			filename: "notes.txt",
			data:     []byte("\n  The product launch was a success.  \n"),
			want:     "The product launch was a success.",
		},
		{
			name:     "extension is case-insensitive",
			filename: "NOTES.TXT",
			data:     []byte("hello world"),
			want:     "hello world",
		},
		{
			name:     "byte order mark is dropped",
			filename: "bom.txt",
			data:     []byte("\xef\xbb\xbfhello"),
			want:     "hello",
		},
		{
			name:     "docx paragraphs",
			filename: "report.docx",
			data:     buildDocx(t, sampleDocument),
			want:     "Acme Corp reported record revenue.\nCol A\tCol B\n\nShares rose 5%.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(tt.filename, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_Unsupported(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"unknown extension", "slides.pptx", []byte("x")},
		{"no extension", "README", []byte("x")},
		{"invalid utf-8", "bad.txt", []byte{0xff, 0xfe, 0xfd}},
		{"docx that is not a zip", "fake.docx", []byte("plain text")},
		{"docx without body", "empty.docx", func() []byte {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			_, _ = zw.Create("word/styles.xml")
			_ = zw.Close()
			return buf.Bytes()
		}()},
		{"broken pdf", "broken.pdf", []byte("%PDF-1.4 not really")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Text(tt.filename, tt.data)
			assert.ErrorIs(t, err, types.ErrUnsupportedDocument)
		})
	}
}

func TestText_TooLarge(t *testing.T) {
	_, err := Text("big.txt", make([]byte, MaxDocumentSize+1))
	assert.ErrorIs(t, err, types.ErrUnsupportedDocument)
}
