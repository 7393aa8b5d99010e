package cytoframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/param"
)

func TestCopyIsIndependent(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)

	cyt := f.Keyword("$CYT")
	require.NotEmpty(t, cyt)

	g, err := f.Copy(ctx)
	require.NoError(t, err)
	assertSameFrame(t, f, g, 0)

	require.NoError(t, g.SetKeyword("$CYT", "Canto"))
	require.NoError(t, g.RenameMarker("CD3", "CD3e"))
	require.NoError(t, g.SetData(ctx, events.New(2, 4)))

	assert.Equal(t, cyt, f.Keyword("$CYT"))
	m, err := f.Marker("FL1-A")
	require.NoError(t, err)
	assert.Equal(t, "CD3", m)
	assert.Equal(t, 50, f.NRows())
}

func TestCopyKeepsGuard(t *testing.T) {
	f := newTestFrame(t)
	f.SetReadOnly(true)

	g, err := f.Copy(context.Background())
	require.NoError(t, err)
	assert.True(t, g.ReadOnly())
}

func TestCopyRealized(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)
	rows := []int{0, 2, 4}
	cols := []int{3, 1}

	g, err := f.CopyRealized(ctx, rows, cols)
	require.NoError(t, err)

	all := f.Params()
	assert.Equal(t, []param.Param{all[3], all[1]}, g.Params())
	assert.Equal(t, 3, g.NRows())
	assert.Equal(t, 2, g.NCols())
	require.NoError(t, g.CheckConsistency())

	data, err := f.Data(ctx)
	require.NoError(t, err)
	want, err := data.Select(rows, cols)
	require.NoError(t, err)
	got, err := g.Data(ctx)
	require.NoError(t, err)
	assert.True(t, want.Equal(got, 0))

	idx, err := g.ColIndex("CD4", param.Marker)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestCopyRealizedOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)

	_, err := f.CopyRealized(ctx, nil, []int{7})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.CopyRealized(ctx, []int{50}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCopySelection(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)
	data, err := f.Data(ctx)
	require.NoError(t, err)

	sel, err := events.Where(data, 0, func(v float64) bool { return v >= 512 })
	require.NoError(t, err)

	g, err := f.CopySelection(ctx, sel, nil)
	require.NoError(t, err)
	assert.Equal(t, sel.Len(), g.NRows())

	col, err := g.ColumnsByName(ctx, []string{"FSC-A"}, param.Channel)
	require.NoError(t, err)
	for _, v := range col.Col(0) {
		assert.GreaterOrEqual(t, v, 512.0)
	}

	_, err = f.CopySelection(ctx, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.CopySelection(ctx, events.NewSelection(3, 60), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCopyWithTarget(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	f := newTestFrame(t)

	cyt := f.Keyword("$CYT")

	g, err := f.CopyRealized(ctx, nil, []int{0, 2}, WithTarget(store, "copy.cyf"))
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, "copy.cyf", g.Path())
	assert.False(t, g.ReadOnly())
	assert.Equal(t, []string{"FSC-A", "FL1-A"}, g.Channels())

	want, err := f.ColumnsByName(ctx, []string{"FSC-A", "FL1-A"}, param.Channel)
	require.NoError(t, err)
	got, err := g.Data(ctx)
	require.NoError(t, err)
	assert.True(t, want.Equal(got, 0))

	// The copy owns its store, the source stays in memory.
	require.NoError(t, g.SetKeyword("$CYT", "Canto"))
	require.NoError(t, g.Flush(ctx))
	assert.Equal(t, cyt, f.Keyword("$CYT"))
	assert.Equal(t, "", f.Path())
}

func TestSubsetParameters(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)
	data, err := f.Data(ctx)
	require.NoError(t, err)

	require.NoError(t, f.SubsetParameters([]int{1, 2}))
	assert.Equal(t, 2, f.NCols())
	assert.Equal(t, []string{"SSC-A", "FL1-A"}, f.Channels())

	// Descriptors shrank but the events did not.
	assert.ErrorIs(t, f.CheckConsistency(), ErrPreconditionFailed)

	sub, err := data.SelectCols([]int{1, 2})
	require.NoError(t, err)
	require.NoError(t, f.SetData(ctx, sub))
	require.NoError(t, f.CheckConsistency())

	assert.ErrorIs(t, f.SubsetParameters([]int{5}), ErrInvalidArgument)
}
