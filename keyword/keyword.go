// Package keyword provides the string maps that carry instrument keywords
// and sample annotations, plus the well-known keyword names a frame derives
// values from.
package keyword

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Well-known keywords.
const (
	Spillover       = "SPILL"
	SpilloverFCS31  = "$SPILLOVER"
	SpilloverLegacy = "SPILLOVER"
	TimeStep        = "$TIMESTEP"
	BeginTime       = "$BTIM"
	EndTime         = "$ETIM"
)

// ErrNotFound is returned when a keyword is missing.
var ErrNotFound = errors.New("keyword not found")

// Map is an unordered string to string map.
type Map map[string]string

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Clone returns an independent copy. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the value for key or "" when it is missing.
func (m Map) Get(key string) string {
	return m[key]
}

// Lookup returns the value for key, failing with ErrNotFound when missing.
func (m Map) Lookup(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

// ReplaceValues rewrites every entry whose value equals oldValue.
// It scans the whole map and returns the number of rewritten entries.
func (m Map) ReplaceValues(oldValue, newValue string) int {
	n := 0
	for k, v := range m {
		if v == oldValue {
			m[k] = newValue
			n++
		}
	}
	return n
}

// Pairs returns the entries sorted by key.
func (m Map) Pairs() []Pair {
	out := make([]Pair, 0, len(m))
	for k, v := range m {
		out = append(out, Pair{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FromPairs builds a map; later pairs win on duplicate keys.
func FromPairs(pairs []Pair) Map {
	out := make(Map, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out
}

// Equal reports whether both maps hold the same entries.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// RangeMinKey names the synthetic keyword mirroring the minimum of the
// column at the 1-based position pid.
func RangeMinKey(pid int) string {
	return "flowCore_$P" + strconv.Itoa(pid) + "Rmin"
}

// RangeMaxKey names the synthetic keyword mirroring the maximum of the
// column at the 1-based position pid.
func RangeMaxKey(pid int) string {
	return "flowCore_$P" + strconv.Itoa(pid) + "Rmax"
}

// FormatFloat renders v the way range keywords store it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
