package param

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a column name does not resolve.
	ErrNotFound = errors.New("colname not found")

	// ErrAmbiguous is returned when an Unknown lookup matches both a channel and a marker.
	ErrAmbiguous = errors.New("ambiguous colname without colType")

	// ErrExists is returned when a rename target already names a column.
	ErrExists = errors.New("colname already exists")

	// ErrNotIndexed is returned when the index disagrees with the descriptor count.
	ErrNotIndexed = errors.New("column index is not built")

	// ErrInvalidColType is returned for column types outside Channel/Marker/Unknown.
	ErrInvalidColType = errors.New("invalid col type")

	// ErrOutOfRange is returned when a column position is outside the table.
	ErrOutOfRange = errors.New("column position out of range")
)

// LookupError reports the name that failed to resolve.
//
// The underlying sentinel can be matched with errors.Is.
type LookupError struct {
	Name string
	Type ColType
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s (%s)", e.Err, e.Name, e.Type)
}

func (e *LookupError) Unwrap() error { return e.Err }
