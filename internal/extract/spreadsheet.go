package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractCSVText renders CSV data as one comma-separated line per row.
func extractCSVText(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are fine, we only want text

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("CSV file is empty")
	}

	lines := make([]string, 0, len(records))
	for _, row := range records {
		lines = append(lines, strings.Join(row, ", "))
	}
	return strings.Join(lines, "\n"), nil
}

// extractSpreadsheetText renders every sheet of an XLSX workbook as text,
// one comma-separated line per row.
func extractSpreadsheetText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		if len(sheets) > 1 {
			textBuilder.WriteString(fmt.Sprintf("Sheet: %s\n", sheet))
		}
		for _, row := range rows {
			textBuilder.WriteString(strings.Join(row, ", "))
			textBuilder.WriteString("\n")
		}

		if textBuilder.Len() > maxExtractedTextSize {
			break
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("spreadsheet has no data")
	}
	if len(text) > maxExtractedTextSize {
		text = text[:maxExtractedTextSize]
	}
	return text, nil
}
