package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoTable means an HTML document contained no <table> element
	ErrNoTable = errors.New("no table found in HTML file")
	// ErrNoHeaderRow means the first table had no rows at all
	ErrNoHeaderRow = errors.New("no header row found")
	// ErrMalformedRecord means a CSV record could not be read
	ErrMalformedRecord = errors.New("failed to read CSV record")
)

const utf8BOM = "\ufeff"

// Table is the canonical adapter output: a header and data rows of equal length, in document order
type Table struct {
	Header []string
	Rows   [][]string
	// Dropped counts candidate rows discarded because their cell count did not match the header
	Dropped int
}

// ParseHTMLTable reads the first <table> of an HTML document. The first row is the header;
// later rows whose cell count differs from the header are dropped.
func ParseHTMLTable(htmlContent string) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML content: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, ErrNoHeaderRow
	}

	result := &Table{Header: cellTexts(rows.First())}

	rows.Each(func(rowIdx int, row *goquery.Selection) {
		// Skip header row
		if rowIdx == 0 {
			return
		}

		cells := cellTexts(row)
		if len(cells) != len(result.Header) {
			result.Dropped++
			return
		}
		result.Rows = append(result.Rows, cells)
	})

	return result, nil
}

// cellTexts collects the trimmed text of every header or data cell in a row
func cellTexts(row *goquery.Selection) []string {
	cells := []string{}
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

// ParseCSVTable reads comma-separated content. The first record is the header and every
// later record must have the same number of fields; a record that does not is an error.
// Stray quotes inside unquoted cells, as in nicknames, are kept as text.
func ParseCSVTable(content string) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, utf8BOM)))
	reader.FieldsPerRecord = 0
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Header: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	result := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		result.Rows = append(result.Rows, record)
	}

	return result, nil
}
