package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrPDFNotSupported is returned for PDF uploads; they go through a
	// separate review flow, not the table pipeline.
	ErrPDFNotSupported = errors.New("PDF files cannot be imported as tables")

	// ErrCannotDecode is returned when neither the spreadsheet nor the HTML
	// path can read the file.
	ErrCannotDecode = errors.New("file could not be decoded as a spreadsheet or HTML document")
)

// Row maps a header string to the raw cell value (string, float64 or nil).
type Row map[string]any

// NormalizedTable is the common shape both extractor paths converge on. It is
// transient: produced per parse, consumed by classification, then discarded.
type NormalizedTable struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Extract reads an uploaded export and yields its tables. Dispatch is by file
// extension; unknown extensions try the spreadsheet decoder first and fall
// back to the HTML walker. No file is persisted and nothing is mutated.
func Extract(filename string, data []byte) ([]NormalizedTable, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".xlsx", ".xls":
		return extractWorkbook(data)
	case ".csv":
		return extractCSV(filename, data)
	case ".html", ".htm":
		return extractHTML(data)
	case ".pdf":
		return nil, ErrPDFNotSupported
	default:
		tables, err := extractWorkbook(data)
		if err == nil {
			return tables, nil
		}
		tables, htmlErr := extractHTML(data)
		if htmlErr == nil {
			return tables, nil
		}
		return nil, errors.Wrapf(ErrCannotDecode, "extension %q", ext)
	}
}

// extractWorkbook treats every sheet as one table: first row is the header,
// the rest become header-keyed rows. Cells are read raw, so Excel date
// serials stay numeric strings at this stage.
func extractWorkbook(data []byte) ([]NormalizedTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	tables := make([]NormalizedTable, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.Wrapf(err, "reading sheet %q", sheet)
		}
		if len(rows) == 0 {
			continue
		}

		tables = append(tables, buildTable(sheet, rows))
	}

	return tables, nil
}

func extractCSV(filename string, data []byte) ([]NormalizedTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	if len(records) == 0 {
		return nil, errors.New("csv file is empty")
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return []NormalizedTable{buildTable(name, records)}, nil
}

// extractHTML walks every <table> element: first <tr> is the header, cell
// text is trimmed.
func extractHTML(data []byte) ([]NormalizedTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing html")
	}

	var tables []NormalizedTable
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) == 0 {
			return
		}

		name := strings.TrimSpace(table.Find("caption").First().Text())
		if name == "" {
			name = fmt.Sprintf("table-%d", i+1)
		}
		tables = append(tables, buildTable(name, rows))
	})

	if len(tables) == 0 {
		return nil, errors.New("document contains no tables")
	}

	return tables, nil
}

// buildTable converts a raw cell grid into the normalized shape. Headers are
// kept as-is from the source, without deduplication; rows shorter than the
// header are padded with empty cells.
func buildTable(name string, grid [][]string) NormalizedTable {
	headers := grid[0]

	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return NormalizedTable{
		Name:    name,
		Headers: headers,
		Rows:    rows,
	}
}
