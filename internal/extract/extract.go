// Package extract converts uploaded resume documents to plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	resuinErrors "resuin/internal/errors"
)

// Supported MIME types.
const (
	MIMEPlain    = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEHTML     = "text/html"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF      = "application/pdf"
)

const docxBody = "word/document.xml"

// maxDocumentXML caps the decompressed size of a DOCX body.
const maxDocumentXML = 32 << 20

var extensionTypes = map[string]string{
	".txt":      MIMEPlain,
	".text":     MIMEPlain,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".docx":     MIMEDOCX,
	".pdf":      MIMEPDF,
}

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\f\v\r]+`)
)

// Text returns the readable text of a document. Unsupported types, corrupt
// input and documents without text fail with UnreadableDocument.
func Text(data []byte, mimeType string) (string, error) {
	mediaType := normalizeType(mimeType)

	var (
		text string
		err  error
	)
	switch mediaType {
	case MIMEPlain, MIMEMarkdown:
		if !utf8.Valid(data) {
			return "", resuinErrors.NewUnreadableDocumentError(mediaType, errors.New("text is not valid UTF-8"))
		}
		text = strings.TrimPrefix(string(data), "\ufeff")
	case MIMEHTML:
		text, err = htmlText(data)
	case MIMEDOCX:
		text, err = docxText(data)
	default:
		return "", resuinErrors.NewUnreadableDocumentError(mediaType, fmt.Errorf("unsupported document type %q", mediaType))
	}
	if err != nil {
		return "", resuinErrors.NewUnreadableDocumentError(mediaType, err)
	}

	text = clean(text)
	if text == "" {
		return "", resuinErrors.NewUnreadableDocumentError(mediaType, errors.New("document contains no text"))
	}
	return text, nil
}

// DetectMIMEType infers a document type from its file name, falling back
// to content sniffing.
func DetectMIMEType(path string, data []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	if isDOCX(data) {
		return MIMEDOCX
	}
	return normalizeType(http.DetectContentType(data))
}

func normalizeType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer, ul, ol, table, blockquote, pre").
		Each(func(_ int, s *goquery.Selection) {
			s.AppendHtml("\n")
		})
	return doc.Text(), nil
}

func isDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == docxBody {
			return true
		}
	}
	return false
}

// docxText reads the paragraphs of word/document.xml, one per line.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("no document.xml found in docx")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
	}
	defer func() { _ = rc.Close() }()

	var sb strings.Builder
	dec := xml.NewDecoder(io.LimitReader(rc, maxDocumentXML))
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// clean normalizes line endings, collapses horizontal whitespace and
// squeezes runs of blank lines.
func clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}
