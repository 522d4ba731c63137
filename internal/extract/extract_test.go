package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestText_PlainAndMarkdown(t *testing.T) {
	got, err := Text("lesson.txt", "", []byte("  The sun is a star.\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "The sun is a star.", got)

	got, err = Text("notes.md", "application/octet-stream", []byte("# Fractions\nHalf of two is one."))
	require.NoError(t, err)
	assert.Equal(t, "# Fractions\nHalf of two is one.", got)
}

func TestText_ContentTypeFallback(t *testing.T) {
	got, err := Text("upload", "text/plain; charset=utf-8", []byte("Photosynthesis makes sugar."))
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis makes sugar.", got)
}

func TestText_SniffedText(t *testing.T) {
	got, err := Text("upload", "", []byte("Rivers flow to the sea."))
	require.NoError(t, err)
	assert.Equal(t, "Rivers flow to the sea.", got)
}

func TestText_Docx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Water cycle</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Rain falls, </w:t></w:r><w:r><w:t>rivers run.</w:t></w:r></w:p>`+
			`<w:p></w:p>`)

	got, err := Text("cycle.docx", "", data)
	require.NoError(t, err)
	assert.Equal(t, "Water cycle\nRain falls, rivers run.", got)
}

func TestText_DocxMissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Text("broken.docx", "", buf.Bytes())
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestText_CorruptFiles(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"not a pdf", "lesson.pdf", []byte("not a pdf")},
		{"truncated pdf", "lesson.pdf", []byte("%PDF-1.4\ngarbage")},
		{"not a zip", "lesson.docx", []byte("plain bytes")},
		{"truncated docx", "lesson.docx", []byte("PK\x03\x04truncated")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Text(tt.filename, "", tt.data)
			assert.ErrorIs(t, err, ErrUnreadableDocument)
			assert.NotErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestText_Unsupported(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	_, err := Text("picture.png", "image/png", png)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        Kind
	}{
		{"a.TXT", "", KindText},
		{"a.docx", "", KindDOCX},
		{"a.pdf", "", KindPDF},
		{"a", "application/pdf", KindPDF},
		{"a", docxContentType, KindDOCX},
		{"a", "text/markdown", KindText},
	}
	for _, tt := range tests {
		got, err := Detect(tt.filename, tt.contentType, nil)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}
