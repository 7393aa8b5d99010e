package cytoframe

import (
	"fmt"
	"strings"
)

// Transform is the value transformation the FCS reader applied to raw
// channel values.
type Transform int

const (
	TransformNone Transform = iota
	Linearize
	LinearizeWithPnGScaling
	Scale
)

func (t Transform) String() string {
	switch t {
	case TransformNone:
		return "none"
	case Linearize:
		return "linearize"
	case LinearizeWithPnGScaling:
		return "linearize-with-PnG-scaling"
	case Scale:
		return "scale"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

// ParseTransform parses the textual form produced by Transform.String.
func ParseTransform(s string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return TransformNone, nil
	case "linearize":
		return Linearize, nil
	case "linearize-with-png-scaling":
		return LinearizeWithPnGScaling, nil
	case "scale":
		return Scale, nil
	default:
		return TransformNone, fmt.Errorf("%w: transform %q", ErrInvalidArgument, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Transform) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Transform) UnmarshalText(b []byte) error {
	v, err := ParseTransform(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ReadParams are the parameters the FCS parser used to produce the raw
// event buffer. A frame keeps them verbatim.
type ReadParams struct {
	Scale            bool      `json:"scale"`
	TruncateMaxRange bool      `json:"truncate_max_range"`
	Decades          float64   `json:"decades"`
	MinLimit         float64   `json:"min_limit"`
	Transform        Transform `json:"transform"`
}

// DefaultReadParams returns the parser defaults.
func DefaultReadParams() ReadParams {
	return ReadParams{
		Scale:            false,
		TruncateMaxRange: true,
		Decades:          0,
		MinLimit:         -111,
		Transform:        Linearize,
	}
}
