// Package document extracts plain text from uploaded resumes.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

var (
	// ErrUnsupportedType is returned for anything other than pdf, docx or txt.
	ErrUnsupportedType = errors.New("unsupported file type, please upload PDF or DOCX")
	// ErrUnreadable is returned when a supported document cannot be decoded.
	ErrUnreadable = errors.New("unreadable document")
)

var (
	xmlTag     = regexp.MustCompile(`<[^>]+>`)
	spaceRun   = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRun = regexp.MustCompile(`\n\s*\n+`)
)

// Type is a supported document kind.
type Type string

const (
	TypePDF  Type = "pdf"
	TypeDOCX Type = "docx"
	TypeText Type = "txt"
)

// TypeFromFilename picks the document type by extension.
func TypeFromFilename(filename string) (Type, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return TypePDF, nil
	case "docx":
		return TypeDOCX, nil
	case "txt":
		return TypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
	}
}

// TypeFromMIME maps an upload content type to a document type. Parameters such as charset are ignored.
func TypeFromMIME(mime string) (Type, error) {
	mime, _, _ = strings.Cut(mime, ";")
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case MIMEPDF:
		return TypePDF, nil
	case MIMEDOCX:
		return TypeDOCX, nil
	case MIMEText:
		return TypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mime)
	}
}

// ExtractText returns the text of data, choosing the decoder by filename extension.
func ExtractText(filename string, data []byte) (string, error) {
	kind, err := TypeFromFilename(filename)
	if err != nil {
		return "", err
	}
	return Extract(kind, data)
}

func Extract(kind Type, data []byte) (string, error) {
	switch kind {
	case TypePDF:
		return extractPDF(data)
	case TypeDOCX:
		return extractDOCX(data)
	case TypeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid utf-8", ErrUnreadable)
		}
		return normalizeWhitespace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read pdf: %w", ErrUnreadable, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %w", ErrUnreadable, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf text: %w", ErrUnreadable, err)
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read docx: %w", ErrUnreadable, err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText strips WordprocessingML markup, keeping paragraph breaks.
func documentXMLText(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
	text := xmlTag.ReplaceAllString(xml, "")
	return normalizeWhitespace(unescapeXML(text))
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string { return xmlEntities.Replace(s) }

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
