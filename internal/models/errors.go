package models

import (
	"errors"
	"fmt"
	"strings"
)

// Stage-fatal input errors. A stage that hits one of these halts before
// writing its output artifact.
var (
	// ErrSchema is the sentinel every SchemaError unwraps to.
	ErrSchema = errors.New("input schema mismatch")
	// ErrEmptyInput means no valid points survived loading and filtering.
	ErrEmptyInput = errors.New("no valid points after filtering")
)

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }
