package container

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordType(order ByteOrder) Datatype {
	return Compound(
		Field{Name: "name", Type: VarString()},
		Field{Name: "value", Type: Float64(order)},
		Field{Name: "pair", Type: Array(Float32(order), 2)},
		Field{Name: "bits", Type: Int8()},
	)
}

func writeSample(t *testing.T, order ByteOrder, filter Filter) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, func(o *WriterOptions) { o.Filter = filter })
	require.NoError(t, err)

	recs := []Record{
		{"FSC-A", 262143.0, []float64{0, 0}, int8(32)},
		{"", -1.5, []float64{4, 1}, int8(-8)},
		{"größe", math.Inf(1), []float64{0.5, 2}, int8(0)},
	}
	require.NoError(t, w.WriteRecords("params", recordType(order), recs))
	require.NoError(t, w.WriteRecords("empty", Compound(Field{Name: "k", Type: VarString()}), nil))

	rows := [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{-1, 0.25, 1e10, math.MaxFloat32, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}
	require.NoError(t, w.WriteMatrix("data", Float32(order), len(rows), 8, func(i int) ([]float64, error) {
		return rows[i], nil
	}))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestContainer_RoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		for _, filter := range []Filter{FilterNone, FilterLZ4, FilterZSTD} {
			t.Run(order.String()+"/"+filter.String(), func(t *testing.T) {
				b := writeSample(t, order, filter)
				r, err := NewReader(bytes.NewReader(b), int64(len(b)))
				require.NoError(t, err)

				require.Len(t, r.Datasets(), 3)

				recs, err := r.ReadRecords("params")
				require.NoError(t, err)
				require.Len(t, recs, 3)
				assert.Equal(t, Record{"FSC-A", 262143.0, []float64{0, 0}, int8(32)}, recs[0])
				assert.Equal(t, Record{"", -1.5, []float64{4, 1}, int8(-8)}, recs[1])
				assert.Equal(t, "größe", recs[2][0])
				assert.True(t, math.IsInf(recs[2][1].(float64), 1))

				empty, err := r.ReadRecords("empty")
				require.NoError(t, err)
				assert.Empty(t, empty)

				nrows, ncols, err := r.MatrixShape("data")
				require.NoError(t, err)
				assert.Equal(t, 3, nrows)
				assert.Equal(t, 8, ncols)

				row := make([]float64, 8)
				require.NoError(t, r.ReadMatrixRow("data", 1, row))
				assert.Equal(t, -1.0, row[0])
				assert.Equal(t, 0.25, row[1])
				assert.Equal(t, float64(float32(1e10)), row[2])
				assert.Equal(t, float64(float32(math.MaxFloat32)), row[3])

				d, err := r.Dataset("data")
				require.NoError(t, err)
				assert.True(t, d.Extensible())
				assert.Equal(t, []uint64{1, 8}, d.ChunkShape)
				assert.Equal(t, order, d.Type.Order)
			})
		}
	}
}

func TestContainer_ByteOrderOnDisk(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteMatrix("data", Float64(BigEndian), 1, 1, func(int) ([]float64, error) {
		return []float64{1}, nil
	}))
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	raw, err := r.ReadChunk("data", 0)
	require.NoError(t, err)
	// 1.0 as big-endian IEEE-754 double.
	assert.Equal(t, []byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0}, raw)
}

func TestContainer_CopyDataset(t *testing.T) {
	src := writeSample(t, NativeOrder(), FilterZSTD)
	r, err := NewReader(bytes.NewReader(src), int64(len(src)))
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.CopyDataset(r, "data"))
	require.ErrorIs(t, w.CopyDataset(r, "data"), ErrDatasetExists)
	require.ErrorIs(t, w.CopyDataset(r, "missing"), ErrNoDataset)
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.Close(), ErrClosed)

	r2, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	row := make([]float64, 8)
	require.NoError(t, r2.ReadMatrixRow("data", 0, row))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, row)
}

func TestContainer_Corruption(t *testing.T) {
	b := writeSample(t, LittleEndian, FilterNone)

	// Flip one byte inside the first chunk.
	bad := append([]byte(nil), b...)
	bad[SignatureSize+1] ^= 0xff
	r, err := NewReader(bytes.NewReader(bad), int64(len(bad)))
	require.NoError(t, err)
	_, err = r.ReadRecords("params")
	require.ErrorIs(t, err, ErrCorrupted)

	// Break the footer.
	bad = append([]byte(nil), b...)
	bad[len(bad)-FooterSize+20] ^= 0xff
	_, err = NewReader(bytes.NewReader(bad), int64(len(bad)))
	require.ErrorIs(t, err, ErrCorrupted)

	// Wrong magic.
	bad = append([]byte(nil), b...)
	bad[0] = 'X'
	_, err = NewReader(bytes.NewReader(bad), int64(len(bad)))
	require.ErrorIs(t, err, ErrInvalidMagic)

	_, err = NewReader(bytes.NewReader(b[:10]), 10)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestWriter_Validation(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	err = w.WriteRecords("x", Float32(LittleEndian), nil)
	require.ErrorIs(t, err, ErrType)

	err = w.WriteRecords("y", recordType(LittleEndian), []Record{{"only-one"}})
	require.ErrorIs(t, err, ErrType)

	err = w.WriteMatrix("z", Float64(LittleEndian), 1, 2, func(int) ([]float64, error) {
		return []float64{1}, nil
	})
	require.ErrorIs(t, err, ErrType)
}

func TestDatatype(t *testing.T) {
	dt := recordType(LittleEndian)
	assert.Equal(t, 8+8+8+1, dt.Width())
	m, ok := dt.Member("bits")
	require.True(t, ok)
	assert.Equal(t, uint32(24), m.Offset)

	e := &encoder{}
	dt.encode(e)
	got := decodeDatatype(&decoder{buf: e.buf}, 0)
	assert.True(t, dt.Equal(got))
	assert.False(t, dt.Equal(recordType(BigEndian)))

	require.Error(t, Datatype{Class: ClassFloat, Size: 3}.Validate())
	require.Error(t, Array(VarString(), 2).Validate())
}

func TestDirectory_ChunkSizes(t *testing.T) {
	matrix := func(raw, stored uint64, f Filter) *Dataset {
		return &Dataset{
			Name:       "data",
			Type:       Float32(LittleEndian),
			Shape:      []uint64{1, 4},
			MaxShape:   []uint64{Unlimited, Unlimited},
			ChunkShape: []uint64{1, 4},
			Chunks:     []Chunk{{Offset: SignatureSize, Stored: stored, Raw: raw, Filter: f}},
		}
	}

	ds, err := decodeDirectory(encodeDirectory([]*Dataset{matrix(16, 16, FilterNone)}), 1)
	require.NoError(t, err)
	require.Len(t, ds, 1)

	for name, d := range map[string]*Dataset{
		"above MaxInt":     matrix(math.MaxUint64, 8, FilterZSTD),
		"above max chunk":  matrix(MaxChunkBytes+1, 8, FilterLZ4),
		"short":            matrix(12, 8, FilterLZ4),
		"unfiltered short": matrix(16, 12, FilterNone),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeDirectory(encodeDirectory([]*Dataset{d}), 1)
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}

	huge := matrix(16, 16, FilterNone)
	huge.ChunkShape = []uint64{math.MaxUint64, 4}
	_, err = decodeDirectory(encodeDirectory([]*Dataset{huge}), 1)
	require.ErrorIs(t, err, ErrCorrupted)

	// Record chunks carry a string heap after the fixed part.
	recs := &Dataset{
		Name:       "keywords",
		Type:       Compound(Field{Name: "k", Type: VarString()}),
		Shape:      []uint64{2},
		MaxShape:   []uint64{Unlimited},
		ChunkShape: []uint64{2},
		Chunks:     []Chunk{{Offset: SignatureSize, Stored: 40, Raw: 40, Filter: FilterNone}},
	}
	_, err = decodeDirectory(encodeDirectory([]*Dataset{recs}), 1)
	require.NoError(t, err)
}
