package param

import (
	"fmt"
	"strings"
)

// Param describes a single column of the event matrix.
type Param struct {
	Channel string  `json:"channel"`
	Marker  string  `json:"marker"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	// PnG is the instrument amplifier gain ($PnG).
	PnG float64 `json:"png"`
	// PnE holds the log-amplification decades and offset ($PnE).
	PnE [2]float64 `json:"pne"`
	// PnB is the number of bits reserved for the parameter ($PnB).
	PnB int8 `json:"pnb"`
}

// ColType selects which name space a column name is resolved against.
type ColType int

const (
	// Channel resolves names against detector (channel) names.
	Channel ColType = iota
	// Marker resolves names against marker names.
	Marker
	// Unknown checks both name spaces and fails on ambiguity.
	Unknown
)

func (t ColType) String() string {
	switch t {
	case Channel:
		return "channel"
	case Marker:
		return "marker"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("ColType(%d)", int(t))
	}
}

// Valid reports whether t is one of the defined column types.
func (t ColType) Valid() bool {
	return t >= Channel && t <= Unknown
}

// ParseColType parses the textual form produced by ColType.String.
func ParseColType(s string) (ColType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "channel":
		return Channel, nil
	case "marker":
		return Marker, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("%w: column type %q", ErrInvalidColType, s)
	}
}

// Clone returns a copy of params that shares no memory with the input.
func Clone(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	copy(out, params)
	return out
}

// Channels returns the channel names in column order.
func Channels(params []Param) []string {
	out := make([]string, len(params))
	for i := range params {
		out[i] = params[i].Channel
	}
	return out
}

// Markers returns the marker names in column order.
func Markers(params []Param) []string {
	out := make([]string, len(params))
	for i := range params {
		out[i] = params[i].Marker
	}
	return out
}
