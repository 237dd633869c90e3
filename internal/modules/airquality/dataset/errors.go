package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmpty         = errors.New("no data")
)

// LoadError reports why an input file could not be turned into readings.
// Row is the 1-based data row (header excluded) or 0 when not row specific.
type LoadError struct {
	Path string
	Op   string
	Row  int
	Err  error
}

func (e *LoadError) Error() string {
	name := e.Path
	if name == "" {
		name = "<reader>"
	}
	if e.Row > 0 {
		return fmt.Sprintf("load %s: %s (row %d): %v", name, e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s: %s: %v", name, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
