// Package csvio reads the source CSV tables and writes the enriched outputs.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/flagmap/internal/domain/model"
)

// Table is one CSV file held in memory. Rows may be ragged; missing trailing
// cells read as "".
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadFile reads a whole CSV file. The first row is the header.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t.Name = path
	return t, nil
}

// Read reads a whole CSV stream. The first row is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\ufeff")
	}

	t := &Table{Header: hdr, index: make(map[string]int, len(hdr))}
	for i, h := range hdr {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the header carries col, case-insensitively.
func (t *Table) Has(col string) bool {
	_, ok := t.index[strings.ToLower(col)]
	return ok
}

// Require checks that every col is present.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Table: t.Name, Columns: missing}
	}
	return nil
}

// Get returns the trimmed cell of row i in column col.
func (t *Table) Get(i int, col string) string {
	j, ok := t.index[strings.ToLower(col)]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][j])
}

// Record returns row i for passthrough output.
func (t *Table) Record(i int) model.Record {
	vals := make([]string, len(t.Header))
	copy(vals, t.Rows[i])
	return model.Record{Header: t.Header, Values: vals}
}

// Line returns the 1-based file line of row i.
func (t *Table) Line(i int) int {
	return i + 2
}
