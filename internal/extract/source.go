package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for file types the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SourceText is the raw text pulled out of one document.
type SourceText struct {
	Name  string
	Text  string
	Pages int
}

// SupportedExtensions lists the document types ReadFile understands.
var SupportedExtensions = []string{".pdf", ".txt", ".docx"}

// IsSupported reports whether the filename has a readable extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ReadFile extracts plain text from a document, dispatching on extension.
func ReadFile(path string) (SourceText, error) {
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(path, name)
	case ".txt":
		return readTxt(path, name)
	case ".docx":
		return readDocx(path, name)
	default:
		return SourceText{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func readPDF(path, name string) (SourceText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return SourceText{}, fmt.Errorf("open pdf %s: %w", name, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := r.GetPlainText()
	if err != nil {
		return SourceText{}, fmt.Errorf("extract pdf text %s: %w", name, err)
	}
	if _, err := io.Copy(&buf, plain); err != nil {
		return SourceText{}, fmt.Errorf("read pdf text %s: %w", name, err)
	}

	return SourceText{Name: name, Text: buf.String(), Pages: r.NumPage()}, nil
}

func readTxt(path, name string) (SourceText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceText{}, fmt.Errorf("read txt %s: %w", name, err)
	}
	return SourceText{Name: name, Text: string(data), Pages: 1}, nil
}

// readDocx pulls paragraph text out of word/document.xml. The format is a
// zip of XML, so no dedicated library is needed: every <w:t> run contributes
// text and every closing <w:p> ends a paragraph.
func readDocx(path, name string) (SourceText, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return SourceText{}, fmt.Errorf("open docx %s: %w", name, err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return SourceText{}, fmt.Errorf("%w: %s has no word/document.xml", ErrUnsupportedFormat, name)
	}

	rc, err := doc.Open()
	if err != nil {
		return SourceText{}, fmt.Errorf("open document.xml in %s: %w", name, err)
	}
	defer rc.Close()

	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return SourceText{}, fmt.Errorf("parse document.xml in %s: %w", name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return SourceText{Name: name, Text: sb.String(), Pages: 1}, nil
}
