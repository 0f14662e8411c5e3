// Package export writes OCR layout elements as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ocrsvc/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row.
var columns = []string{
	"Index",
	"Category",
	"X1",
	"Y1",
	"X2",
	"Y2",
	"Text",
	"Extra",
}

const (
	layoutSheet   = "Layout"
	markdownSheet = "Markdown"
)

// Row is one layout element flattened into table cells.
type Row []string

// Rows flattens layoutData. Elements are expected to be objects with optional
// "category", "bbox" ([x1, y1, x2, y2]) and "text" keys; other keys are kept
// as JSON in the Extra column. Non-object elements land entirely in Extra.
func Rows(layoutData []any) []Row {
	rows := make([]Row, 0, len(layoutData))
	for i, el := range layoutData {
		row := make(Row, len(columns))
		row[0] = strconv.Itoa(i)

		obj, ok := el.(map[string]any)
		if !ok {
			row[7] = compactJSON(el)
			rows = append(rows, row)
			continue
		}

		extra := make(map[string]any, len(obj))
		for k, v := range obj {
			switch k {
			case "category":
				row[1] = cellText(v)
			case "text":
				row[6] = cellText(v)
			case "bbox":
				coords, ok := bbox(v)
				if !ok {
					extra[k] = v
					continue
				}
				copy(row[2:6], coords)
			default:
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			row[7] = compactJSON(extra)
		}
		rows = append(rows, row)
	}
	return rows
}

func bbox(v any) ([]string, bool) {
	l, ok := v.([]any)
	if !ok || len(l) != 4 {
		return nil, false
	}
	out := make([]string, 4)
	for i, c := range l {
		f, ok := c.(float64)
		if !ok {
			return nil, false
		}
		out[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return out, true
}

func cellText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return compactJSON(v)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// WriteCSV writes the layout of resp as CSV, prefixed with a BOM.
func WriteCSV(w io.Writer, resp domain.OCRResponse) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range Rows(resp.LayoutData) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a Layout sheet and a Markdown sheet.
func WriteXLSX(w io.Writer, resp domain.OCRResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", layoutSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(layoutSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range Rows(resp.LayoutData) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(layoutSheet, cell, &vals); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if _, err := f.NewSheet(markdownSheet); err != nil {
		return fmt.Errorf("creating markdown sheet: %w", err)
	}
	for i, line := range strings.Split(resp.Markdown, "\n") {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(markdownSheet, cell, line); err != nil {
			return fmt.Errorf("writing markdown line %d: %w", i, err)
		}
	}

	return f.Write(w)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use as an output file stem.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
