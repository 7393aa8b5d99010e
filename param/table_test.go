package param

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParams() []Param {
	return []Param{
		{Channel: "FSC-A", Max: 262143},
		{Channel: "SSC-A", Max: 262143},
		{Channel: "B515-A", Marker: "CD4", PnB: 32},
		{Channel: "R780-A", Marker: "CD8", PnE: [2]float64{4, 1}},
		{Channel: "Time", Marker: "SSC-A"},
	}
}

func TestTable_LookupRoundTrip(t *testing.T) {
	params := sampleParams()
	tbl := NewTable(params)
	require.True(t, tbl.IsConsistent())

	for i, p := range params {
		pos, err := tbl.Lookup(p.Channel, Channel)
		require.NoError(t, err)
		assert.Equal(t, i, pos)

		if p.Marker == "" {
			continue
		}
		pos, err = tbl.Lookup(p.Marker, Marker)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}
}

func TestTable_LookupUnknown(t *testing.T) {
	tbl := NewTable(sampleParams())

	pos, err := tbl.Lookup("CD8", Unknown)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	pos, err = tbl.Lookup("FSC-A", Unknown)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	// "SSC-A" is both a channel and a marker
	_, err = tbl.Lookup("SSC-A", Unknown)
	require.ErrorIs(t, err, ErrAmbiguous)

	_, err = tbl.Lookup("CD3", Unknown)
	require.ErrorIs(t, err, ErrNotFound)
	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "CD3", le.Name)

	_, err = tbl.Lookup("CD4", ColType(42))
	require.ErrorIs(t, err, ErrInvalidColType)
}

func TestTable_NotIndexedOnDuplicateChannels(t *testing.T) {
	tbl := NewTable([]Param{{Channel: "A"}, {Channel: "A"}})
	assert.False(t, tbl.IsConsistent())

	_, err := tbl.Lookup("A", Channel)
	require.ErrorIs(t, err, ErrNotIndexed)
}

func TestTable_Positions(t *testing.T) {
	tbl := NewTable(sampleParams())

	pos, err := tbl.Positions([]string{"Time", "FSC-A"}, Channel)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0}, pos)

	_, err = tbl.Positions([]string{"FSC-A", "nope", "also-nope"}, Channel)
	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "nope", le.Name)
}

func TestTable_RenameChannel(t *testing.T) {
	tbl := NewTable(sampleParams())

	require.NoError(t, tbl.RenameChannel("FSC-A", "FSC-A"))
	assert.Equal(t, "FSC-A", tbl.Params()[0].Channel)

	err := tbl.RenameChannel("FSC-A", "SSC-A")
	require.ErrorIs(t, err, ErrExists)
	assert.Equal(t, "FSC-A", tbl.Params()[0].Channel)
	pos, err := tbl.Lookup("FSC-A", Channel)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	require.ErrorIs(t, tbl.RenameChannel("missing", "x"), ErrNotFound)

	require.NoError(t, tbl.RenameChannel("FSC-A", "FSC-H"))
	assert.False(t, tbl.Contains("FSC-A", Channel))
	pos, err = tbl.Lookup("FSC-H", Channel)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.True(t, tbl.IsConsistent())
}

func TestTable_RenameMarker(t *testing.T) {
	tbl := NewTable(sampleParams())

	require.NoError(t, tbl.RenameMarker("CD4", "CD4-FITC"))
	pos, err := tbl.Lookup("CD4-FITC", Marker)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	require.ErrorIs(t, tbl.RenameMarker("CD8", "CD4-FITC"), ErrExists)
	require.ErrorIs(t, tbl.RenameMarker("CD4", "x"), ErrNotFound)
}

func TestTable_SelectAndClone(t *testing.T) {
	tbl := NewTable(sampleParams())

	sel, err := tbl.Select([]int{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"R780-A", "SSC-A"}, Channels(sel))
	assert.Equal(t, []string{"CD8", ""}, Markers(sel))

	_, err = tbl.Select([]int{7})
	require.ErrorIs(t, err, ErrOutOfRange)

	cp := tbl.Clone()
	require.NoError(t, cp.RenameChannel("Time", "TIME"))
	assert.Equal(t, "Time", tbl.Params()[4].Channel)
}

func TestParseColType(t *testing.T) {
	for _, typ := range []ColType{Channel, Marker, Unknown} {
		got, err := ParseColType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseColType("bogus")
	require.ErrorIs(t, err, ErrInvalidColType)
	assert.False(t, ColType(9).Valid())
}
