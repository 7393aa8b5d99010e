// Package events implements the event matrix of a cytometry frame: rows are
// events, columns are parameters.
//
// Storage is column-major so a single parameter is one contiguous slice,
// which is also the unit the persistent store chunks on.
package events

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape is returned when dimensions and backing data disagree.
	ErrShape = errors.New("events: shape mismatch")

	// ErrIndex is returned for row or column positions outside the matrix.
	ErrIndex = errors.New("events: index out of range")

	// ErrEmpty is returned when a statistic is requested on a column without events.
	ErrEmpty = errors.New("events: no events")
)

// Layout describes how a flat buffer is ordered.
type Layout int

const (
	// ColumnMajor stores all events of column 0 first.
	ColumnMajor Layout = iota
	// RowMajor stores all parameters of event 0 first.
	RowMajor
)

// Matrix is a dense rows x cols float64 matrix stored column-major.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// New allocates a zeroed matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// FromBuffer wraps (ColumnMajor) or transposes (RowMajor) a flat buffer.
// A ColumnMajor buffer is adopted without copying.
func FromBuffer(rows, cols int, data []float64, layout Layout) (*Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d x %d needs %d values, got %d", ErrShape, rows, cols, rows*cols, len(data))
	}
	switch layout {
	case ColumnMajor:
		return &Matrix{rows: rows, cols: cols, data: data}, nil
	case RowMajor:
		m := New(rows, cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.data[j*rows+i] = data[i*cols+j]
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: unknown layout %d", ErrShape, int(layout))
	}
}

// FromColumns copies equally sized columns into a new matrix.
func FromColumns(columns [][]float64) (*Matrix, error) {
	if len(columns) == 0 {
		return New(0, 0), nil
	}
	rows := len(columns[0])
	m := New(rows, len(columns))
	for j, c := range columns {
		if len(c) != rows {
			return nil, fmt.Errorf("%w: column %d has %d events, want %d", ErrShape, j, len(c), rows)
		}
		copy(m.data[j*rows:], c)
	}
	return m, nil
}

// Rows returns the number of events.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of parameters.
func (m *Matrix) Cols() int { return m.cols }

// Data returns the column-major backing slice. It aliases the matrix.
func (m *Matrix) Data() []float64 { return m.data }

// Col returns column j as a slice aliasing the matrix. The slice is a
// borrowed view: it must not be retained past the caller's use.
func (m *Matrix) Col(j int) []float64 {
	start := j * m.rows
	return m.data[start : start+m.rows : start+m.rows]
}

// At returns the value at event i, parameter j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[j*m.rows+i]
}

// Set stores v at event i, parameter j.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[j*m.rows+i] = v
}

// Row copies event i into a new slice.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.cols)
	for j := range out {
		out[j] = m.data[j*m.rows+i]
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// SelectCols copies the given columns, in order, into a new matrix.
func (m *Matrix) SelectCols(cols []int) (*Matrix, error) {
	out := New(m.rows, len(cols))
	for k, j := range cols {
		if j < 0 || j >= m.cols {
			return nil, fmt.Errorf("%w: column %d of %d", ErrIndex, j, m.cols)
		}
		copy(out.data[k*m.rows:], m.Col(j))
	}
	return out, nil
}

// SelectRows copies the given events, in order, into a new matrix.
func (m *Matrix) SelectRows(rows []int) (*Matrix, error) {
	for _, i := range rows {
		if i < 0 || i >= m.rows {
			return nil, fmt.Errorf("%w: row %d of %d", ErrIndex, i, m.rows)
		}
	}
	out := New(len(rows), m.cols)
	for j := 0; j < m.cols; j++ {
		src := m.Col(j)
		dst := out.Col(j)
		for k, i := range rows {
			dst[k] = src[i]
		}
	}
	return out, nil
}

// Select subsets rows then columns. A nil slice selects everything along
// that axis.
func (m *Matrix) Select(rows, cols []int) (*Matrix, error) {
	out := m
	var err error
	if cols != nil {
		if out, err = out.SelectCols(cols); err != nil {
			return nil, err
		}
	}
	if rows != nil {
		if out, err = out.SelectRows(rows); err != nil {
			return nil, err
		}
	}
	if out == m {
		out = m.Clone()
	}
	return out, nil
}

// ColRange scans column j for its minimum and maximum.
func (m *Matrix) ColRange(j int) (float64, float64, error) {
	if j < 0 || j >= m.cols {
		return 0, 0, fmt.Errorf("%w: column %d of %d", ErrIndex, j, m.cols)
	}
	return Range(m.Col(j))
}

// Range returns the minimum and maximum of values.
func Range(values []float64) (float64, float64, error) {
	if len(values) == 0 {
		return 0, 0, ErrEmpty
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// Equal reports whether both matrices have the same shape and values
// within tol.
func (m *Matrix) Equal(other *Matrix, tol float64) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-other.data[i]) > tol {
			return false
		}
	}
	return true
}
