// Package intesa_xlsx extracts movements from the spreadsheet export of the
// Intesa Sanpaolo movement list.
package intesa_xlsx

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/isparser/isparser/extractor/common"
	"github.com/isparser/isparser/extractor/intesa"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet column indices
const (
	colDate        = 0
	colOperation   = 1
	colDescription = 2
	colAccount     = 3
	colAccounted   = 4
	colCategory    = 5
	colCurrency    = 6
	colAmount      = 7
)

var errMissingAmount = errors.New("row has no amount cell")

// isoLayouts are the forms excelize returns for cells stored with the date type.
var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// customDateFormat matches number formats that render a day, month or year.
var customDateFormat = regexp.MustCompile(`(?i)(^|[^"\\])(d{1,4}|m{1,5}|y{2,4})`)

type Config struct {
	// Sheet to read, the first sheet of the workbook when empty.
	Sheet string
}

func LoadConfig() Config {
	return Config{Sheet: viper.GetString("statement.INTESA_XLSX.sheet")}
}

// ExtractFromReader opens a workbook from r and extracts its movements.
func ExtractFromReader(r io.Reader, b *intesa.Builder, cfg Config) ([]common.Movement, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()
	return Extract(f, b, cfg)
}

func ExtractFromFile(path string, b *intesa.Builder, cfg Config) ([]common.Movement, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()
	return Extract(f, b, cfg)
}

// Extract reads the movement rows of the configured sheet in sheet order. Rows
// whose first cell is not a date value are headers, footers or blanks and are
// skipped.
func Extract(f *excelize.File, b *intesa.Builder, cfg Config) ([]common.Movement, error) {
	sheet := cfg.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("spreadsheet has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	x := rowReader{f: f, sheet: sheet, date1904: date1904}
	var movements []common.Movement
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		date, ok := x.date(i, row[colDate])
		if !ok {
			continue
		}

		m, err := x.movement(i, row, date, b)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}

	return movements, nil
}

type rowReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
}

func (x rowReader) cell(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// date reports whether the cell holds a real date value, either stored with the
// date type or as a serial number rendered through a date format.
func (x rowReader) date(row int, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	cell := x.cell(row, colDate)

	typ, err := x.f.GetCellType(x.sheet, cell)
	if err != nil {
		return time.Time{}, false
	}
	if typ == excelize.CellTypeDate {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return time.Time{}, false
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || !x.hasDateFormat(cell) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, x.date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (x rowReader) hasDateFormat(cell string) bool {
	idx, err := x.f.GetCellStyle(x.sheet, cell)
	if err != nil {
		return false
	}
	style, err := x.f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return customDateFormat.MatchString(*style.CustomNumFmt)
	}
	return isBuiltInDateFormat(style.NumFmt)
}

func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

func (x rowReader) movement(row int, cells []string, date time.Time, b *intesa.Builder) (common.Movement, error) {
	line := fmt.Sprintf("%s!%s", x.sheet, strings.Join(cells, " | "))

	if len(cells) <= colAmount || strings.TrimSpace(cells[colAmount]) == "" {
		return common.Movement{}, &common.ParseError{Field: "amount", Line: line, Err: errMissingAmount}
	}
	raw := strings.TrimSpace(cells[colAmount])

	amount, err := x.amount(row, raw, b)
	if err != nil {
		return common.Movement{}, &common.ParseError{Field: "amount", Token: raw, Line: line, Err: err}
	}

	description := ""
	if len(cells) > colDescription {
		description = cells[colDescription]
	}
	if strings.TrimSpace(description) == "" {
		description = cells[colOperation]
	}

	return b.Assemble(date, amount, description), nil
}

// amount parses numeric cells as they are stored and text cells as printed
// Italian amounts.
func (x rowReader) amount(row int, raw string, b *intesa.Builder) (decimal.Decimal, error) {
	typ, err := x.f.GetCellType(x.sheet, x.cell(row, colAmount))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		return b.NormalizeAmount(raw)
	}
	if d, err := decimal.NewFromString(raw); err == nil {
		return d, nil
	}
	return b.NormalizeAmount(raw)
}
