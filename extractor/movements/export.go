package movements

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/isparser/isparser/extractor/common"
)

const (
	dateLayout   = "2006-01-02"
	tagSeparator = "|"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case. An empty value means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format %q (expected csv or json)", s)
}

func (f Format) Extension() string {
	return "." + string(f)
}

// csvRecord is the flattened export row. Tags are joined only here.
type csvRecord struct {
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Description string `csv:"description"`
	Tags        string `csv:"tags"`
}

// Record is the JSON form of a movement, with the amount kept as a number.
type Record struct {
	Date        string      `json:"date"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Tags        string      `json:"tags"`
}

func Records(movements []common.Movement) []Record {
	records := make([]Record, 0, len(movements))
	for _, m := range movements {
		records = append(records, Record{
			Date:        m.Date.Format(dateLayout),
			Amount:      json.Number(m.Amount.StringFixed(2)),
			Description: m.Description,
			Tags:        strings.Join(m.Tags, tagSeparator),
		})
	}
	return records
}

func toCSVRecords(movements []common.Movement) []csvRecord {
	records := make([]csvRecord, 0, len(movements))
	for _, m := range movements {
		records = append(records, csvRecord{
			Date:        m.Date.Format(dateLayout),
			Amount:      m.Amount.StringFixed(2),
			Description: m.Description,
			Tags:        strings.Join(m.Tags, tagSeparator),
		})
	}
	return records
}

// WriteCSV writes a header row followed by one row per movement.
func WriteCSV(w io.Writer, movements []common.Movement) error {
	if err := gocsv.Marshal(toCSVRecords(movements), w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteJSON writes one JSON object per line.
func WriteJSON(w io.Writer, movements []common.Movement) error {
	enc := json.NewEncoder(w)
	for _, rec := range Records(movements) {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	}
	return nil
}

func Write(w io.Writer, format Format, movements []common.Movement) error {
	if format == FormatJSON {
		return WriteJSON(w, movements)
	}
	return WriteCSV(w, movements)
}

type ExportOptions struct {
	Format       Format
	Split        bool
	OnlyPositive bool
}

// Export writes the collection to path and returns the files it created. With
// Split the income and outgoing views go to two files suffixed _income and
// _outcome.
func (c *Collection) Export(path string, opts ExportOptions) ([]string, error) {
	format := opts.Format
	if format == "" {
		format = FormatCSV
	}
	path = WithExtension(path, format)

	if !opts.Split {
		if err := writeFile(path, format, c.rows); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	income, outcome := c.Split(opts.OnlyPositive)
	incomePath, outcomePath := SplitPaths(path)
	if err := writeFile(incomePath, format, income); err != nil {
		return nil, err
	}
	if err := writeFile(outcomePath, format, outcome); err != nil {
		return nil, err
	}
	return []string{incomePath, outcomePath}, nil
}

func writeFile(path string, format Format, movements []common.Movement) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return Write(file, format, movements)
}

// WithExtension appends the format's extension unless path already ends with it.
func WithExtension(path string, format Format) string {
	if strings.EqualFold(filepath.Ext(path), format.Extension()) {
		return path
	}
	return path + format.Extension()
}

// SplitPaths derives the income and outgoing file names from path.
func SplitPaths(path string) (income, outcome string) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_income" + ext, base + "_outcome" + ext
}
