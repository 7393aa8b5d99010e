package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string            `json:"name"`
	Values   []float64         `json:"values"`
	Keywords map[string]string `json:"keywords"`
}

func TestEncodeDecode(t *testing.T) {
	in := sample{
		Name:     "FSC-A",
		Values:   []float64{1, 2.5, -3},
		Keywords: map[string]string{"$TOT": "3"},
	}
	for _, c := range []Codec{JSON{}, GoJSON{}, nil} {
		b, err := Encode(c, in)
		require.NoError(t, err)

		var out sample
		require.NoError(t, Decode(b, &out))
		assert.Equal(t, in, out)
	}
}

func TestEncode_SameBytes(t *testing.T) {
	in := sample{Name: "x", Values: []float64{0.5}}
	a, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestDecode_Errors(t *testing.T) {
	var out sample
	assert.ErrorIs(t, Decode([]byte(`{"name":"x"}`), &out), ErrUnknownCodec)
	assert.ErrorIs(t, Decode([]byte("msgpack\n{}"), &out), ErrUnknownCodec)
	assert.Error(t, Decode([]byte("json\n{"), &out))
}

func TestByName(t *testing.T) {
	c, ok := ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())
	_, ok = ByName("gob")
	assert.False(t, ok)
}
