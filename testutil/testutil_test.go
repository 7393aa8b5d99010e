package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.Events(100, 3, 1024)

	assert.Equal(t, 100, m.Rows())
	assert.Equal(t, 3, m.Cols())
	for _, v := range m.Data() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1024.0)
		assert.Equal(t, float64(int(v)), v)
	}
}

func TestGaussianEvents(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.GaussianEvents(10000, 1, 500, 10)

	var sum float64
	for _, v := range m.Col(0) {
		sum += v
	}
	assert.InDelta(t, 500, sum/10000, 1)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	m1 := rng.Events(5, 2, 100)
	rng.Reset()
	m2 := rng.Events(5, 2, 100)

	assert.Equal(t, m1.Data(), m2.Data())
}

func TestFillUniformRange(t *testing.T) {
	rng := NewRNG(1)
	dst := make([]float64, 64)

	rng.FillUniformRange(dst, -1, 1)

	for _, v := range dst {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestSampleParams(t *testing.T) {
	params := SampleParams(9)
	require.Len(t, params, 9)

	assert.Equal(t, "FSC-A", params[0].Channel)
	assert.Equal(t, "CD3", params[2].Marker)
	assert.Equal(t, "Time", params[6].Channel)
	assert.Equal(t, "P8", params[7].Channel)
	assert.Equal(t, "M9", params[8].Marker)

	seen := map[string]bool{}
	for _, p := range params {
		assert.False(t, seen[p.Channel], p.Channel)
		seen[p.Channel] = true
	}
}

func TestSampleKeywords(t *testing.T) {
	params := SampleParams(2)

	kw := SampleKeywords(params, 10)

	assert.Equal(t, "2", kw["$PAR"])
	assert.Equal(t, "10", kw["$TOT"])
	assert.Equal(t, "FSC-A", kw["$P1N"])
	assert.Equal(t, "SSC-A", kw["$P2S"])
	assert.Equal(t, "262144", kw["$P1R"])
}
