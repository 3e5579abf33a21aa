package dataset

import "fmt"

// DataNotFoundError indicates the input file does not exist.
type DataNotFoundError struct {
	Path string
	Err  error
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("data file not found: %s", e.Path)
}

func (e *DataNotFoundError) Unwrap() error { return e.Err }

// SchemaError indicates a required column is missing or holds malformed values.
// Row is 1-based over data rows; 0 means the header.
type SchemaError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema: column %q row %d value %q: %s", e.Column, e.Row, e.Value, e.Reason)
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}
