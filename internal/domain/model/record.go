// Package model contains the entities shared by the reconciliation stages:
// games, drives, penalties, team performances and run diagnostics.
package model

import "strings"

// Record is one source row kept for passthrough output. Header is shared by
// every record read from the same file.
//
// Column names match case-insensitively and ignore surrounding spaces, the
// same rule the CSV tables use.
type Record struct {
	Header []string
	Values []string
}

// SameColumn reports whether two header names refer to the same column.
func SameColumn(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (r Record) index(col string) int {
	for i, h := range r.Header {
		if SameColumn(h, col) {
			return i
		}
	}
	return -1
}

// Has reports whether the record carries col.
func (r Record) Has(col string) bool {
	return r.index(col) >= 0
}

// Get returns the trimmed value of a column, or "" when absent.
func (r Record) Get(col string) string {
	i := r.index(col)
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

// With returns a copy with col set to v. Unknown columns are appended.
func (r Record) With(col, v string) Record {
	vals := append([]string(nil), r.Values...)
	for len(vals) < len(r.Header) {
		vals = append(vals, "")
	}
	if i := r.index(col); i >= 0 {
		vals[i] = v
		return Record{Header: r.Header, Values: vals}
	}
	hdr := append(append([]string(nil), r.Header...), col)
	return Record{Header: hdr, Values: append(vals, v)}
}
