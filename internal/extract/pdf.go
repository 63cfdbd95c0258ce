package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	// maxPDFPages limits the number of pages to process
	maxPDFPages = 100

	// maxExtractedTextSize limits the extracted text size (1MB)
	maxExtractedTextSize = 1024 * 1024
)

// extractPDFText extracts plain text from a PDF file (provided as byte data).
func extractPDFText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPages := pdfReader.NumPage()
	if totalPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}
	if totalPages > maxPDFPages {
		return "", fmt.Errorf("PDF has too many pages (%d), max allowed is %d", totalPages, maxPDFPages)
	}

	var textBuilder strings.Builder
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages with extraction errors, don't fail completely
			continue
		}

		cleaned := cleanDocumentText(text)
		if cleaned != "" {
			textBuilder.WriteString(cleaned)
			textBuilder.WriteString("\n")
		}

		if textBuilder.Len() > maxExtractedTextSize {
			break
		}
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no text content in PDF")
	}
	if len(extracted) > maxExtractedTextSize {
		extracted = extracted[:maxExtractedTextSize]
	}
	return extracted, nil
}

// cleanDocumentText strips null bytes and collapses runs of whitespace
// while preserving line breaks.
func cleanDocumentText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")

	var result strings.Builder
	lastWasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if r == '\n' {
				result.WriteRune('\n')
				lastWasSpace = false
			} else if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}
