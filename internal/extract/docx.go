package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCXText extracts plain text from a DOC/DOCX file. The document
// body is read straight out of the OOXML ZIP container.
func extractDOCXText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	zipReader, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: not a valid ZIP file: %w", err)
	}

	for _, file := range zipReader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}

		text := extractTextFromDOCXML(content)
		text = collapseBlankLines(text)
		if text == "" {
			return "", fmt.Errorf("no text content in document")
		}
		if len(text) > maxExtractedTextSize {
			text = text[:maxExtractedTextSize]
		}
		return text, nil
	}

	return "", fmt.Errorf("invalid DOCX: missing word/document.xml")
}

// extractTextFromDOCXML walks the document XML and joins the text runs of
// each paragraph, one paragraph per line.
func extractTextFromDOCXML(xmlContent []byte) string {
	var textBuilder strings.Builder
	decoder := xml.NewDecoder(bytes.NewReader(xmlContent))

	inParagraph := false
	paragraphText := strings.Builder{}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" && t.Name.Space == wordprocessingNS {
				inParagraph = true
				paragraphText.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "p" && t.Name.Space == wordprocessingNS {
				if inParagraph && paragraphText.Len() > 0 {
					textBuilder.WriteString(paragraphText.String())
					textBuilder.WriteString("\n")
				}
				inParagraph = false
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" && inParagraph {
				if paragraphText.Len() > 0 {
					paragraphText.WriteString(" ")
				}
				paragraphText.WriteString(text)
			}
		}
	}

	return textBuilder.String()
}

// collapseBlankLines normalizes runs of blank lines to paragraph breaks.
func collapseBlankLines(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
