package cytoframe

import (
	"context"

	"github.com/hupe1980/cytoframe/container"
	"github.com/hupe1980/cytoframe/events"
)

// backend is where the event matrix of a frame lives.
type backend interface {
	shape() (rows, cols int)
	// columns materializes a copy of the given columns; nil selects all.
	columns(ctx context.Context, cols []int) (*events.Matrix, error)
	// update runs fn over the full matrix in place and keeps the result.
	update(ctx context.Context, f *Frame, fn func(m *events.Matrix) error) error
	replace(ctx context.Context, f *Frame, m *events.Matrix) error
	// source emits the matrix as a "data" dataset of type dt.
	source(ctx context.Context, dt container.Datatype) (dataWriter, error)
	flush(ctx context.Context, f *Frame) error
	path() string
	close() error
}

type memoryBackend struct {
	m *events.Matrix
}

func (b *memoryBackend) shape() (int, int) { return b.m.Rows(), b.m.Cols() }

func (b *memoryBackend) columns(_ context.Context, cols []int) (*events.Matrix, error) {
	if cols == nil {
		return b.m.Clone(), nil
	}
	return b.m.SelectCols(cols)
}

func (b *memoryBackend) update(_ context.Context, _ *Frame, fn func(m *events.Matrix) error) error {
	return fn(b.m)
}

func (b *memoryBackend) replace(_ context.Context, _ *Frame, m *events.Matrix) error {
	b.m = m.Clone()
	return nil
}

func (b *memoryBackend) source(_ context.Context, dt container.Datatype) (dataWriter, error) {
	return matrixData(b.m, dt), nil
}

func (b *memoryBackend) flush(context.Context, *Frame) error { return nil }

func (b *memoryBackend) path() string { return "" }

func (b *memoryBackend) close() error { return nil }
