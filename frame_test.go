package cytoframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
	"github.com/hupe1980/cytoframe/testutil"
)

func newTestFrame(t *testing.T, optFns ...Option) *Frame {
	t.Helper()
	params := testutil.SampleParams(4)
	m := testutil.NewRNG(42).Events(50, 4, 1024)
	f, err := New(params, testutil.SampleKeywords(params, 50), m, optFns...)
	require.NoError(t, err)
	require.NoError(t, f.SetPhenoDataValue("name", "sample.fcs"))
	return f
}

func TestNewRejectsShapeMismatch(t *testing.T) {
	_, err := New(testutil.SampleParams(3), nil, events.New(10, 2))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewCopiesInput(t *testing.T) {
	params := testutil.SampleParams(2)
	m := events.New(3, 2)
	kw := keyword.Map{"$CYT": "Aria"}

	f, err := New(params, kw, m)
	require.NoError(t, err)

	m.Set(0, 0, 99)
	kw["$CYT"] = "Canto"
	params[0].Channel = "changed"

	got, err := f.Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.At(0, 0))
	assert.Equal(t, "Aria", f.Keyword("$CYT"))
	assert.Equal(t, "FSC-A", f.Channels()[0])
}

func TestFromParsed(t *testing.T) {
	params := testutil.SampleParams(3)
	// Two events, row-major.
	buf := []float64{
		1, 2, 3,
		4, 5, 6,
	}
	rp := DefaultReadParams()
	rp.Decades = 4.5

	f, err := FromParsed(Parsed{
		Events:     buf,
		Layout:     events.RowMajor,
		Rows:       2,
		Params:     params,
		Keywords:   keyword.Map{"$TOT": "2"},
		ReadParams: rp,
		Name:       "a.fcs",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, f.NRows())
	assert.Equal(t, 3, f.NCols())
	assert.Equal(t, "a.fcs", f.PhenoDataValue("name"))
	assert.Equal(t, 4.5, f.ReadParams().Decades)
	assert.False(t, f.ReadOnly())

	m, err := f.ColumnsByName(context.Background(), []string{"FL1-A"}, param.Channel)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, m.Col(0))
}

func TestFromParsedBadBuffer(t *testing.T) {
	_, err := FromParsed(Parsed{Events: []float64{1, 2, 3}, Rows: 2, Params: testutil.SampleParams(2)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDefaultReadParams(t *testing.T) {
	rp := DefaultReadParams()
	assert.False(t, rp.Scale)
	assert.True(t, rp.TruncateMaxRange)
	assert.Equal(t, 0.0, rp.Decades)
	assert.Equal(t, -111.0, rp.MinLimit)
	assert.Equal(t, Linearize, rp.Transform)

	tr, err := ParseTransform("linearize-with-PnG-scaling")
	require.NoError(t, err)
	assert.Equal(t, LinearizeWithPnGScaling, tr)

	_, err = ParseTransform("log")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIndexRoundTrip(t *testing.T) {
	f := newTestFrame(t)

	for i, p := range f.Params() {
		pos, err := f.ColIndex(p.Channel, param.Channel)
		require.NoError(t, err)
		assert.Equal(t, i, pos)

		pos, err = f.ColIndex(p.Marker, param.Marker)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}

	pos, err := f.ColIndex("CD4", param.Unknown)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	// FSC-A is both the channel and the marker name of column 0.
	_, err = f.ColIndex("FSC-A", param.Unknown)
	assert.ErrorIs(t, err, ErrAmbiguousName)

	_, err = f.ColIndex("nope", param.Channel)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.ColIndices([]string{"FSC-A", "nope"}, param.Channel)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestMarker(t *testing.T) {
	f := newTestFrame(t)

	m, err := f.Marker("FL1-A")
	require.NoError(t, err)
	assert.Equal(t, "CD3", m)

	_, err = f.Marker("CD3")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"FSC-A", "SSC-A", "FL1-A", "FL2-A"}, f.Channels())
	assert.Equal(t, []string{"FSC-A", "SSC-A", "CD3", "CD4"}, f.Markers())
}

func TestKeywords(t *testing.T) {
	f := newTestFrame(t)

	assert.Equal(t, "FL1-A", f.Keyword("$P3N"))
	assert.Equal(t, "", f.Keyword("$MISSING"))

	_, err := f.LookupKeyword("$MISSING")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.SetKeyword("$CYT", "LSRII"))
	v, err := f.LookupKeyword("$CYT")
	require.NoError(t, err)
	assert.Equal(t, "LSRII", v)

	kw := f.Keywords()
	kw["$CYT"] = "changed"
	assert.Equal(t, "LSRII", f.Keyword("$CYT"))

	require.NoError(t, f.SetKeywords(keyword.Map{"A": "1"}))
	assert.True(t, keyword.Map{"A": "1"}.Equal(f.Keywords()))
}

func TestPhenoData(t *testing.T) {
	f := newTestFrame(t)

	assert.Equal(t, "sample.fcs", f.PhenoDataValue("name"))
	require.NoError(t, f.SetPhenoDataValue("donor", "D1"))
	assert.Len(t, f.PhenoData(), 2)

	require.NoError(t, f.DeletePhenoData("donor"))
	require.NoError(t, f.DeletePhenoData("donor"))
	assert.Equal(t, "", f.PhenoDataValue("donor"))

	require.NoError(t, f.SetPhenoData(keyword.Map{"name": "b.fcs"}))
	assert.Equal(t, "b.fcs", f.PhenoDataValue("name"))
}

func TestSetParamsRebuildsIndex(t *testing.T) {
	f := newTestFrame(t)
	params := f.Params()
	params[0], params[1] = params[1], params[0]

	require.NoError(t, f.SetParams(params, false))

	pos, err := f.ColIndex("SSC-A", param.Channel)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestDuplicateChannelsFailConsistency(t *testing.T) {
	f := newTestFrame(t)
	params := f.Params()
	params[1].Channel = params[0].Channel
	require.NoError(t, f.SetParams(params, false))

	_, err := f.ColIndex("FL1-A", param.Channel)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorIs(t, f.CheckConsistency(), ErrPreconditionFailed)
}

func TestRenameChannel(t *testing.T) {
	f := newTestFrame(t)
	require.NoError(t, f.SetKeyword("$SRC", "FL1-A"))

	require.NoError(t, f.RenameChannel("FL1-A", "BL1-A", true))

	pos, err := f.ColIndex("BL1-A", param.Channel)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	_, err = f.ColIndex("FL1-A", param.Channel)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "BL1-A", f.Keyword("$P3N"))
	assert.Equal(t, "BL1-A", f.Keyword("$SRC"))
}

func TestRenameChannelWithoutKeywords(t *testing.T) {
	f := newTestFrame(t)

	require.NoError(t, f.RenameChannel("FL1-A", "BL1-A", false))

	assert.Equal(t, "FL1-A", f.Keyword("$P3N"))
}

func TestRenameChannelToSelf(t *testing.T) {
	f := newTestFrame(t)
	before := f.Keywords()

	require.NoError(t, f.RenameChannel("FL1-A", "FL1-A", true))

	assert.True(t, before.Equal(f.Keywords()))
	pos, err := f.ColIndex("FL1-A", param.Channel)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestRenameChannelCollision(t *testing.T) {
	f := newTestFrame(t)
	before := f.Params()
	kw := f.Keywords()

	err := f.RenameChannel("FL1-A", "FL2-A", true)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	assert.Equal(t, before, f.Params())
	assert.True(t, kw.Equal(f.Keywords()))
	pos, err := f.ColIndex("FL1-A", param.Channel)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestRenameChannelNotFound(t *testing.T) {
	f := newTestFrame(t)
	assert.ErrorIs(t, f.RenameChannel("nope", "x", true), ErrNotFound)
}

func TestRenameMarker(t *testing.T) {
	f := newTestFrame(t)
	require.NoError(t, f.SetKeyword("$SRC", "CD3"))

	require.NoError(t, f.RenameMarker("CD3", "CD3e"))

	m, err := f.Marker("FL1-A")
	require.NoError(t, err)
	assert.Equal(t, "CD3e", m)
	assert.Equal(t, "CD3", f.Keyword("$SRC"))

	assert.ErrorIs(t, f.RenameMarker("CD3e", "CD4"), ErrAlreadyExists)
	assert.ErrorIs(t, f.RenameMarker("nope", "x"), ErrNotFound)
}

func TestRenameChannelsSkipsMissing(t *testing.T) {
	f := newTestFrame(t)

	err := f.RenameChannels(map[string]string{
		"nope":  "x",
		"FL1-A": "BL1-A",
	})
	require.NoError(t, err)

	assert.Equal(t, "BL1-A", f.Channels()[2])
}

func TestRenameChannelsStopsOnCollision(t *testing.T) {
	f := newTestFrame(t)

	err := f.RenameChannels(map[string]string{"FL1-A": "FL2-A"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRange(t *testing.T) {
	ctx := context.Background()
	m, err := events.FromColumns([][]float64{{3, -1, 7}, {0, 0, 0}})
	require.NoError(t, err)
	f, err := New(testutil.SampleParams(2), nil, m)
	require.NoError(t, err)

	lo, hi, err := f.Range(ctx, "FSC-A", param.Channel, RangeData)
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi, err = f.Range(ctx, "FSC-A", param.Channel, RangeInstrument)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 262143.0, hi)

	_, _, err = f.Range(ctx, "FSC-A", param.Channel, RangeType(7))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = f.Range(ctx, "nope", param.Channel, RangeData)
	assert.ErrorIs(t, err, ErrNotFound)

	rt, err := ParseRangeType("data")
	require.NoError(t, err)
	assert.Equal(t, RangeData, rt)
	_, err = ParseRangeType("bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetRange(t *testing.T) {
	ctx := context.Background()
	f := newTestFrame(t)

	require.NoError(t, f.SetRange("CD3", param.Marker, -10, 4.5, true))

	lo, hi, err := f.Range(ctx, "FL1-A", param.Channel, RangeInstrument)
	require.NoError(t, err)
	assert.Equal(t, -10.0, lo)
	assert.Equal(t, 4.5, hi)
	assert.Equal(t, "-10", f.Keyword("flowCore_$P3Rmin"))
	assert.Equal(t, "4.5", f.Keyword("flowCore_$P3Rmax"))

	require.NoError(t, f.SetRange("SSC-A", param.Channel, 1, 2, false))
	assert.Equal(t, "", f.Keyword("flowCore_$P2Rmin"))
}

func timeFrame(t *testing.T, kw keyword.Map) *Frame {
	t.Helper()
	params := []param.Param{{Channel: "Time", Marker: "Time"}, {Channel: "FSC-A", Marker: "FSC-A"}}
	m, err := events.FromColumns([][]float64{{0, 500, 1500}, {1, 2, 3}})
	require.NoError(t, err)
	f, err := New(params, kw, m)
	require.NoError(t, err)
	return f
}

func TestTimeStepFromClocks(t *testing.T) {
	f := timeFrame(t, keyword.Map{
		keyword.BeginTime: "10:00:00.00",
		keyword.EndTime:   "10:00:01.50",
	})

	ts, err := f.TimeStep(context.Background(), "Time")
	require.NoError(t, err)
	assert.InDelta(t, 0.001, ts, 1e-12)
}

func TestTimeStepDefaultsToOne(t *testing.T) {
	f := timeFrame(t, keyword.Map{keyword.BeginTime: "10:00:00"})

	ts, err := f.TimeStep(context.Background(), "Time")
	require.NoError(t, err)
	assert.Equal(t, 1.0, ts)
}

func TestTimeStepPrefersKeyword(t *testing.T) {
	f := timeFrame(t, keyword.Map{
		keyword.TimeStep:  "0.01",
		keyword.BeginTime: "10:00:00.00",
		keyword.EndTime:   "10:00:01.50",
	})

	ts, err := f.TimeStep(context.Background(), "Time")
	require.NoError(t, err)
	assert.Equal(t, 0.01, ts)
}

func TestTimeStepIdenticalClocks(t *testing.T) {
	f := timeFrame(t, keyword.Map{
		keyword.BeginTime: "10:00:00.25",
		keyword.EndTime:   "10:00:00.25",
	})

	ts, err := f.TimeStep(context.Background(), "Time")
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts)
}

func TestTimeStepErrors(t *testing.T) {
	ctx := context.Background()

	f := timeFrame(t, keyword.Map{keyword.TimeStep: "fast"})
	_, err := f.TimeStep(ctx, "Time")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	f = timeFrame(t, keyword.Map{keyword.BeginTime: "10:00", keyword.EndTime: "xx"})
	_, err = f.TimeStep(ctx, "Time")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	f = timeFrame(t, keyword.Map{keyword.BeginTime: "10:00:00", keyword.EndTime: "10:00:01"})
	_, err = f.TimeStep(ctx, "Clock")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromParsedOwnsBuffer(t *testing.T) {
	buf := []float64{1, 2, 3, 4}
	f, err := FromParsed(Parsed{
		Events: buf,
		Layout: events.ColumnMajor,
		Rows:   2,
		Params: testutil.SampleParams(2),
	})
	require.NoError(t, err)

	buf[0] = 999
	m, err := f.Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.At(0, 0))
}

func TestRenameChannelsSortedOrder(t *testing.T) {
	// FSC-A sorts before NEW, so the chain resolves the same way every time.
	for range 20 {
		f := newTestFrame(t)
		require.NoError(t, f.RenameChannels(map[string]string{
			"FSC-A": "NEW",
			"NEW":   "NEWER",
		}))
		assert.Equal(t, "NEWER", f.Channels()[0])
	}
}

func TestColIndexAmbiguousSelfMarker(t *testing.T) {
	f := newTestFrame(t)

	// FSC-A is both the channel and the marker of column 0.
	_, err := f.ColIndex("FSC-A", param.Unknown)
	assert.ErrorIs(t, err, ErrAmbiguousName)

	pos, err := f.ColIndex("FSC-A", param.Channel)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}
