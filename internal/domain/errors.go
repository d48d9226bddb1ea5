package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceNotFound is returned when the input file or object does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSchema is the sentinel wrapped by every SchemaError.
	ErrSchema = errors.New("schema error")
)

// SchemaError reports required columns missing from the source schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing required column(s) %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// CheckSchema returns a *SchemaError when any required column is absent from t.
func CheckSchema(t Table) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
