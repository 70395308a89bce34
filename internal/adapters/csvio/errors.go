package csvio

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for CSV errors.
var (
	ErrEmptyFile     = errors.New("empty csv file")
	ErrMissingColumn = errors.New("missing column")
)

// MissingColumnError lists the required columns a table lacks.
type MissingColumnError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", e.Table, strings.Join(e.Columns, ", "))
}

// Is lets errors.Is match ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
