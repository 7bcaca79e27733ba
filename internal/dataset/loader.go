package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "metricqa/internal/errors"
)

// Format names a supported input file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath derives the input format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewAppError(apperrors.ErrTypeParsing,
			fmt.Sprintf("unsupported dataset file %q", filepath.Base(path)),
			apperrors.ErrUnsupportedFormat)
	}
}

// LoadFile reads a CSV or XLSX dataset. sheet selects an XLSX worksheet; the
// first sheet is used when it is empty.
func LoadFile(path, sheet string, opts ...ReadOption) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("dataset " + path)
		}
		return nil, apperrors.NewStorageError("failed to open dataset", err)
	}
	defer file.Close()

	return Read(file, format, sheet, opts...)
}

// Read parses a dataset from r in the given format.
func Read(r io.Reader, format Format, sheet string, opts ...ReadOption) (*Dataset, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, opts...)
	case FormatXLSX:
		return ReadExcel(r, sheet, opts...)
	default:
		return nil, apperrors.NewAppError(apperrors.ErrTypeParsing,
			fmt.Sprintf("unsupported dataset format %q", format),
			apperrors.ErrUnsupportedFormat)
	}
}

// ReadCSV parses a headed CSV stream.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("dataset has no header row", err)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV header", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV records", err)
	}

	ds, err := FromRecords(header, records, opts...)
	if err != nil {
		return nil, apperrors.NewParsingError("malformed CSV dataset", err)
	}
	return ds, nil
}

// ReadExcel parses one worksheet of an XLSX workbook. The first row is the
// header. Cells are read unformatted; date-styled serials become timestamps.
func ReadExcel(r io.Reader, sheet string, opts ...ReadOption) (*Dataset, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil)
	}

	if err := convertDateCells(f, sheet, rows); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	ds, err := FromRecords(rows[0], rows[1:], opts...)
	if err != nil {
		return nil, apperrors.NewParsingError("malformed XLSX dataset", err)
	}
	return ds, nil
}

// convertDateCells rewrites numeric cells carrying a date number format as
// ISO timestamps so inference sees them as times. Raw booleans read as 0 and
// 1 and are restored to true and false.
func convertDateCells(f *excelize.File, sheet string, rows [][]string) error {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return err
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	dateStyles := make(map[int]bool)
	for r := 1; r < len(rows); r++ {
		for c, raw := range rows[r] {
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			cellType, err := f.GetCellType(sheet, cell)
			if err != nil {
				return err
			}
			switch cellType {
			case excelize.CellTypeBool:
				rows[r][c] = strconv.FormatBool(serial != 0)
				continue
			case excelize.CellTypeUnset, excelize.CellTypeNumber:
			default:
				continue
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return err
			}
			isDate, ok := dateStyles[styleID]
			if !ok {
				style, err := f.GetStyle(styleID)
				if err != nil {
					return err
				}
				isDate = isDateStyle(style)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[r][c] = formatExcelTime(t)
		}
	}
	return nil
}

func formatExcelTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04:05")
}

// isDateStyle reports whether a cell style renders numbers as dates or times.
// Built-in ids follow ECMA-376 18.8.30.
func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	id := style.NumFmt
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) || (id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormatCode looks for date or time tokens outside quoted literals and
// bracketed sections such as colors and locales.
func isDateFormatCode(code string) bool {
	var inQuote, inBracket bool
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '\\':
			i++
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}
