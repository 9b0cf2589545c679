package bom

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput is returned when the input is empty or contains only
	// whitespace and delimiters.
	ErrEmptyInput = errors.New("bom: input is empty")

	// ErrNoHeaders is returned when no usable header cell survives
	// trimming on the first line.
	ErrNoHeaders = errors.New("bom: no header columns found")
)

// RawRow maps a source header name to the cell value on one data line.
// Header order is carried separately by ParseResult.Headers.
type RawRow map[string]string

// ParseResult is the output of Parse: the trimmed header list and one
// RawRow per non-blank data line, in input order.
type ParseResult struct {
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"rows"`
}

// Parse splits delimited text into headers and row maps.
//
// The format is deliberately looser than strict RFC 4180: each physical
// line is one record (no embedded newlines inside quotes), cells are
// trimmed, blank lines are skipped, short rows are padded with empty
// strings, and cells beyond the header count are discarded. Quoted cells
// may contain commas, and a doubled quote inside a quoted cell unescapes
// to a single literal quote. Spreadsheet exports routinely produce all of
// these shapes.
func Parse(text string) (*ParseResult, error) {
	if strings.Trim(text, " \t\r\n,;\"") == "" {
		return nil, ErrEmptyInput
	}

	lines := splitLines(text)

	headers := parseHeaders(lines[0])
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}

	rows := make([]RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitCells(line)
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return &ParseResult{Headers: headers, Rows: rows}, nil
}

// splitLines splits on LF, tolerating CRLF endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// parseHeaders trims header cells and drops the ones that are empty after
// trimming, preserving the order of the survivors.
func parseHeaders(line string) []string {
	var headers []string
	for _, cell := range splitCells(line) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		headers = append(headers, cell)
	}
	return headers
}

// splitCells splits one physical line on commas, honoring quoted cells and
// the doubled-quote escape ("" inside quotes becomes one literal quote).
func splitCells(line string) []string {
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cell.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteByte(ch)
		}
	}
	cells = append(cells, cell.String())

	return cells
}
