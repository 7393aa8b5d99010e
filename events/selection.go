package events

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Selection is a set of event positions, typically the result of a gate.
type Selection struct {
	bm *roaring.Bitmap
}

// NewSelection builds a selection from event positions.
func NewSelection(rows ...int) *Selection {
	bm := roaring.New()
	for _, r := range rows {
		if r >= 0 {
			bm.Add(uint32(r)) //nolint:gosec
		}
	}
	return &Selection{bm: bm}
}

// SelectionFromBitmap wraps an existing bitmap.
func SelectionFromBitmap(bm *roaring.Bitmap) *Selection {
	if bm == nil {
		bm = roaring.New()
	}
	return &Selection{bm: bm}
}

// Bitmap exposes the underlying bitmap.
func (s *Selection) Bitmap() *roaring.Bitmap { return s.bm }

// Len returns the number of selected events.
func (s *Selection) Len() int { return int(s.bm.GetCardinality()) }

// Rows returns the selected positions in ascending order.
func (s *Selection) Rows() []int {
	out := make([]int, 0, s.bm.GetCardinality())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Validate checks every position lies below nrows.
func (s *Selection) Validate(nrows int) error {
	if s.bm.IsEmpty() {
		return nil
	}
	if maxRow := int(s.bm.Maximum()); maxRow >= nrows {
		return fmt.Errorf("%w: row %d of %d", ErrIndex, maxRow, nrows)
	}
	return nil
}

// Where selects every event whose value in column j satisfies keep.
func Where(m *Matrix, j int, keep func(v float64) bool) (*Selection, error) {
	if j < 0 || j >= m.cols {
		return nil, fmt.Errorf("%w: column %d of %d", ErrIndex, j, m.cols)
	}
	bm := roaring.New()
	for i, v := range m.Col(j) {
		if keep(v) {
			bm.Add(uint32(i)) //nolint:gosec
		}
	}
	return &Selection{bm: bm}, nil
}

// Intersect returns the events present in both selections.
func (s *Selection) Intersect(other *Selection) *Selection {
	return &Selection{bm: roaring.And(s.bm, other.bm)}
}
