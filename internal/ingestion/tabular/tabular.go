// Package tabular reads delimited research spreadsheets into memory.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SchemaError reports a file that cannot be read as a table with the
// required columns. Nothing has been written when it is returned.
type SchemaError struct {
	Missing []string
	Err     error
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("unreadable table: %v", e.Err)
	}
	return "invalid table"
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Row is one data record. Line is the 1-based line in the source file.
type Row struct {
	Line  int
	cells map[string]string
}

// Get returns the raw cell for column, or "" when the row is short or the
// column does not exist.
func (r Row) Get(column string) string {
	return r.cells[column]
}

// Table holds the whole file. Rows may be iterated any number of times.
type Table struct {
	Header []string
	Rows   []Row
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []string {
	out := make([]string, 0, t.Len())
	for _, r := range t.Rows {
		out = append(out, r.Get(name))
	}
	return out
}

type Options struct {
	Comma rune
	// Required columns; matching is exact after trimming header whitespace.
	Required []string
}

// Read parses r fully. A leading UTF-8 BOM is dropped, header names are
// trimmed, and rows shorter or longer than the header are accepted.
func Read(r io.Reader, opts Options) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Missing: append([]string(nil), opts.Required...)}
	}
	if err != nil {
		return nil, &SchemaError{Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	if missing := missingColumns(t, opts.Required); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SchemaError{Err: err}
		}
		line, _ := cr.FieldPos(0)
		cells := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if _, dup := cells[name]; dup {
				continue
			}
			if i < len(rec) {
				cells[name] = rec[i]
			} else {
				cells[name] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Line: line, cells: cells})
	}
	return t, nil
}

func missingColumns(t *Table, required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
