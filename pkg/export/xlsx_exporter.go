package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetNameLength = 31

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// XLSXExporter renders each section of a dataset onto its own worksheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType of the rendered document.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension used for download file names.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the workbook and returns its bytes.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close()

	sections := data.Sections
	if len(sections) == 0 {
		sections = []Section{{Name: data.Title}}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	used := make(map[string]int, len(sections))
	for i, section := range sections {
		name := uniqueSheetName(section.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}

		header := make([]interface{}, len(data.Headers))
		for j, h := range data.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(data.Headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}

		for r, row := range section.Rows {
			values := make([]interface{}, len(data.Headers))
			for j, h := range data.Headers {
				values[j] = row[h]
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueSheetName(raw string, index int, used map[string]int) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(raw))
	if name == "" {
		name = fmt.Sprintf("Sheet %d", index+1)
	}
	if len([]rune(name)) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}
	key := strings.ToLower(name)
	if n, ok := used[key]; ok {
		used[key] = n + 1
		suffix := fmt.Sprintf(" (%d)", n+1)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameLength {
			runes = runes[:maxSheetNameLength-len(suffix)]
		}
		name = string(runes) + suffix
		key = strings.ToLower(name)
	}
	used[key] = 1
	return name
}
