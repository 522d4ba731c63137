// Package extract turns uploaded lesson files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrUnreadableDocument marks a file of a supported type that could not be parsed
	ErrUnreadableDocument = errors.New("unreadable document")
)

// Kind is a supported document format
type Kind string

const (
	KindText Kind = "text"
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Detect resolves the document kind from the file extension, then the
// declared content type, then the file's leading bytes.
func Detect(filename, contentType string, data []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		return KindText, nil
	case ".docx":
		return KindDOCX, nil
	case ".pdf":
		return KindPDF, nil
	}

	if k, ok := kindFromContentType(contentType); ok {
		return k, nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if k, ok := kindFromContentType(m.String()); ok {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
}

func kindFromContentType(contentType string) (Kind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "application/pdf":
		return KindPDF, true
	case ct == docxContentType:
		return KindDOCX, true
	case strings.HasPrefix(ct, "text/"):
		return KindText, true
	}
	return "", false
}

// Text extracts whitespace-trimmed plain text from a document
func Text(filename, contentType string, data []byte) (string, error) {
	kind, err := Detect(filename, contentType, data)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedType)
		}
		text = string(data)
	case KindDOCX:
		text, err = docxText(data)
	case KindPDF:
		text, err = pdfText(data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return strings.TrimSpace(text), nil
}

// docxText reads the paragraphs of word/document.xml, one per line
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("open docx: word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	var (
		sb        strings.Builder
		paragraph strings.Builder
		inText    bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(paragraph.String()); line != "" {
					sb.WriteString(line)
					sb.WriteByte('\n')
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}
