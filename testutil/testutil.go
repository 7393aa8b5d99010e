package testutil

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// Events generates a rows x cols matrix of whole numbers in [0, maxVal).
// Whole numbers below 2^24 survive a float32 round trip exactly.
func (r *RNG) Events(rows, cols, maxVal int) *events.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := events.New(rows, cols)
	data := m.Data()
	for i := range data {
		data[i] = float64(r.rand.Intn(maxVal))
	}
	return m
}

// GaussianEvents generates a rows x cols matrix of normally distributed
// values.
func (r *RNG) GaussianEvents(rows, cols int, mean, stddev float64) *events.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := events.New(rows, cols)
	data := m.Data()
	for i := range data {
		data[i] = mean + r.rand.NormFloat64()*stddev
	}
	return m
}

var sampleChannels = []struct{ channel, marker string }{
	{"FSC-A", "FSC-A"},
	{"SSC-A", "SSC-A"},
	{"FL1-A", "CD3"},
	{"FL2-A", "CD4"},
	{"FL3-A", "CD8"},
	{"FL4-A", "CD19"},
	{"Time", "Time"},
}

// SampleParams returns n descriptors. The first seven use common
// cytometer channel names; further columns are named P<n>.
func SampleParams(n int) []param.Param {
	out := make([]param.Param, n)
	for i := range out {
		channel, marker := "P"+strconv.Itoa(i+1), "M"+strconv.Itoa(i+1)
		if i < len(sampleChannels) {
			channel, marker = sampleChannels[i].channel, sampleChannels[i].marker
		}
		out[i] = param.Param{
			Channel: channel,
			Marker:  marker,
			Min:     0,
			Max:     262143,
			PnG:     1,
			PnE:     [2]float64{0, 0},
			PnB:     32,
		}
	}
	return out
}

// SampleKeywords returns the $PnN / $PnS / $PnR keywords for params plus
// $TOT and $PAR.
func SampleKeywords(params []param.Param, events int) keyword.Map {
	kw := keyword.Map{
		"$PAR": strconv.Itoa(len(params)),
		"$TOT": strconv.Itoa(events),
		"$CYT": "FACSCanto II",
	}
	for i, p := range params {
		kw[fmt.Sprintf("$P%dN", i+1)] = p.Channel
		kw[fmt.Sprintf("$P%dS", i+1)] = p.Marker
		kw[fmt.Sprintf("$P%dR", i+1)] = keyword.FormatFloat(p.Max + 1)
	}
	return kw
}
