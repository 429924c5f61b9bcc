package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel renders each non-empty sheet as "[Sheet i: name]" followed by its
// non-empty rows, cells joined by tabs. Sheets are separated by a blank line.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []string
	for i, name := range f.GetSheetList() {
		lines, err := sheetLines(f, name)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			continue
		}
		sheets = append(sheets, fmt.Sprintf("[Sheet %d: %s]\n%s", i+1, name, strings.Join(lines, "\n")))
	}
	return strings.Join(sheets, "\n\n"), nil
}

func sheetLines(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row in sheet %q: %w", sheet, err)
		}
		line := strings.TrimRight(strings.Join(cols, "\t"), "\t ")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, rows.Error()
}
