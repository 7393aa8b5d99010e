package cytoframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cytoframe/compensation"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

const spill2 = "2,FITC,PE,1,0.1,0.2,1"

func compFrame(t *testing.T, kw keyword.Map) *Frame {
	t.Helper()
	params := []param.Param{
		{Channel: "FSC-A", Marker: "FSC"},
		{Channel: "FITC", Marker: "CD3"},
		{Channel: "PE", Marker: "CD4"},
	}
	// Column 0 is untouched by compensation; columns 1 and 2 form an
	// identity block over the first two events.
	m, err := events.FromColumns([][]float64{
		{7, 8, 9},
		{1, 0, 3},
		{0, 1, 4},
	})
	require.NoError(t, err)
	f, err := New(params, kw, m)
	require.NoError(t, err)
	return f
}

func TestCompensation(t *testing.T) {
	f := compFrame(t, keyword.Map{keyword.Spillover: spill2})

	c, err := f.Compensation("")
	require.NoError(t, err)
	assert.Equal(t, []string{"FITC", "PE"}, c.Markers)
	assert.Equal(t, []float64{1, 0.1, 0.2, 1}, c.Spillover)
}

func TestCompensationFallbackKeywords(t *testing.T) {
	f := compFrame(t, keyword.Map{keyword.SpilloverFCS31: spill2})

	c, err := f.Compensation(keyword.Spillover)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = f.Compensation("$COMP")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompensationMalformed(t *testing.T) {
	f := compFrame(t, keyword.Map{keyword.Spillover: "2,FITC,PE,1,0.1"})

	_, err := f.Compensation("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, compensation.ErrMalformed)
}

func TestCompensate(t *testing.T) {
	ctx := context.Background()
	f := compFrame(t, nil)
	c, err := compensation.Parse(spill2)
	require.NoError(t, err)

	require.NoError(t, f.Compensate(ctx, c))

	m, err := f.Data(ctx)
	require.NoError(t, err)

	// Rows 0 and 1 of the FITC/PE block were the identity, so they now
	// hold the inverse of the spillover matrix.
	det := 1 - 0.1*0.2
	assert.InDelta(t, 1/det, m.At(0, 1), 1e-12)
	assert.InDelta(t, -0.1/det, m.At(0, 2), 1e-12)
	assert.InDelta(t, -0.2/det, m.At(1, 1), 1e-12)
	assert.InDelta(t, 1/det, m.At(1, 2), 1e-12)

	assert.Equal(t, []float64{7, 8, 9}, m.Col(0))
}

func TestCompensateRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := compFrame(t, nil)
	before, err := f.Data(ctx)
	require.NoError(t, err)
	c, err := compensation.Parse(spill2)
	require.NoError(t, err)

	require.NoError(t, f.Compensate(ctx, c))
	require.NoError(t, f.Decompensate(ctx, c))

	after, err := f.Data(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after, 1e-9))
}

func TestCompensateMissingMarker(t *testing.T) {
	ctx := context.Background()
	f := compFrame(t, nil)
	before, err := f.Data(ctx)
	require.NoError(t, err)
	c, err := compensation.Parse("2,FITC,APC,1,0.1,0.2,1")
	require.NoError(t, err)

	err = f.Compensate(ctx, c)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "APC")

	after, err := f.Data(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after, 0))
}

func TestCompensateSingular(t *testing.T) {
	ctx := context.Background()
	f := compFrame(t, nil)
	before, err := f.Data(ctx)
	require.NoError(t, err)
	c, err := compensation.Parse("2,FITC,PE,1,1,1,1")
	require.NoError(t, err)

	err = f.Compensate(ctx, c)
	assert.ErrorIs(t, err, ErrSingularMatrix)

	after, err := f.Data(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after, 0))
}

func TestCompensateEmpty(t *testing.T) {
	ctx := context.Background()
	f := compFrame(t, nil)
	c, err := compensation.Parse("0")
	require.NoError(t, err)

	require.NoError(t, f.Compensate(ctx, c))
	assert.ErrorIs(t, f.Compensate(ctx, nil), ErrInvalidArgument)
}

func TestCompensateMetrics(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	f := compFrame(t, nil)
	f.opts.metricsCollector = mc
	c, err := compensation.Parse(spill2)
	require.NoError(t, err)

	require.NoError(t, f.Compensate(ctx, c))
	bad, err := compensation.Parse("2,FITC,PE,1,1,1,1")
	require.NoError(t, err)
	require.Error(t, f.Compensate(ctx, bad))

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.CompensateCount)
	assert.Equal(t, int64(1), stats.CompensateErrors)
}
