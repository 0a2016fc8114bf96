package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Common parse errors
var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrUnsupportedFormat is returned for file types other than .csv and .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
)

// Table is the format-independent result of parsing a spreadsheet: a header
// row followed by data rows. Every row is padded to the header width so
// callers can index by column without bounds checks.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse reads a spreadsheet from memory, dispatching on the file extension.
// CSV input must be UTF-8; a leading BOM is stripped. XLSX input is read
// from its first sheet.
func Parse(filename string, data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(data []byte) (*Table, error) {
	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return buildTable(records)
}

func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrMissingHeader
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return buildTable(records)
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// ReadAll is a convenience wrapper for callers holding an io.Reader
func ReadAll(filename string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(filename, data)
}
