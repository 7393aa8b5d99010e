package compensation

import (
	"fmt"

	"github.com/hupe1980/cytoframe/events"
	"gonum.org/v1/gonum/mat"
)

// Apply compensates the columns of m at positions cols in place:
// m[:, cols] = m[:, cols] * inverse(spillover).
//
// cols[i] must be the matrix column of c.Markers[i]. Nothing is written
// when the spillover matrix cannot be inverted.
func Apply(m *events.Matrix, cols []int, c *Compensation) error {
	if c.IsEmpty() {
		return nil
	}
	inv, err := c.Inverse()
	if err != nil {
		return err
	}
	return multiplyCols(m, cols, inv)
}

// Reverse undoes Apply by multiplying the columns by the spillover matrix
// itself.
func Reverse(m *events.Matrix, cols []int, c *Compensation) error {
	if c.IsEmpty() {
		return nil
	}
	s, err := c.Matrix()
	if err != nil {
		return err
	}
	return multiplyCols(m, cols, s)
}

func multiplyCols(m *events.Matrix, cols []int, b mat.Matrix) error {
	_, k := b.Dims()
	if len(cols) != k {
		return fmt.Errorf("%w: %d columns for a %d x %d matrix", ErrMalformed, len(cols), k, k)
	}
	for _, j := range cols {
		if j < 0 || j >= m.Cols() {
			return fmt.Errorf("%w: column %d of %d", events.ErrIndex, j, m.Cols())
		}
	}
	rows := m.Rows()
	if rows == 0 {
		return nil
	}

	// Gather the submatrix row-major for gonum.
	sub := mat.NewDense(rows, k, nil)
	for c, j := range cols {
		col := m.Col(j)
		for i := 0; i < rows; i++ {
			sub.Set(i, c, col[i])
		}
	}

	var out mat.Dense
	out.Mul(sub, b)

	for c, j := range cols {
		col := m.Col(j)
		for i := 0; i < rows; i++ {
			col[i] = out.At(i, c)
		}
	}
	return nil
}
