// Package compensation parses fluorescence spillover keywords and applies
// the resulting correction to the event matrix.
//
// A spillover keyword has the form
//
//	n,marker_1,...,marker_n,v_1,...,v_{n*n}
//
// where v is the row-major n x n spillover matrix. Compensating multiplies
// the affected columns by the inverse of that matrix.
package compensation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMalformed is returned for spillover values that do not follow the keyword format.
	ErrMalformed = errors.New("malformed spillover keyword")

	// ErrSingular is returned when the spillover matrix cannot be inverted.
	ErrSingular = errors.New("non-invertible spillover matrix")
)

// Compensation is a spillover matrix together with the ordered channel
// names its rows and columns refer to.
type Compensation struct {
	ID      string `json:"cid"`
	Prefix  string `json:"prefix"`
	Suffix  string `json:"suffix"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
	// Markers are the channel names of the spillover rows, in order.
	Markers []string `json:"marker"`
	// Spillover is the row-major len(Markers) x len(Markers) matrix.
	Spillover []float64 `json:"spillover"`
}

// Parse builds a Compensation from a spillover keyword value. A count of
// zero or less yields an empty compensation, which compensates nothing.
func Parse(value string) (*Compensation, error) {
	tokens := strings.Split(value, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	n, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parameter count %q", ErrMalformed, tokens[0])
	}
	comp := &Compensation{}
	if n <= 0 {
		return comp, nil
	}

	if want := 1 + n + n*n; len(tokens) != want {
		return nil, fmt.Errorf("%w: expected %d fields for %d parameters, got %d", ErrMalformed, want, n, len(tokens))
	}

	comp.Markers = make([]string, n)
	copy(comp.Markers, tokens[1:n+1])

	comp.Spillover = make([]float64, n*n)
	for i, tok := range tokens[n+1:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: spillover value %q", ErrMalformed, tok)
		}
		comp.Spillover[i] = v
	}
	return comp, nil
}

// Format renders c in keyword form. Parse(c.Format()) reproduces c.
func (c *Compensation) Format() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(c.Markers)))
	for _, m := range c.Markers {
		sb.WriteByte(',')
		sb.WriteString(m)
	}
	for _, v := range c.Spillover {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}

// Len returns the number of compensated parameters.
func (c *Compensation) Len() int { return len(c.Markers) }

// IsEmpty reports whether c compensates nothing.
func (c *Compensation) IsEmpty() bool { return len(c.Markers) == 0 }

// Validate checks the matrix is square over the markers.
func (c *Compensation) Validate() error {
	n := len(c.Markers)
	if len(c.Spillover) != n*n {
		return fmt.Errorf("%w: %d markers need %d spillover values, got %d", ErrMalformed, n, n*n, len(c.Spillover))
	}
	return nil
}

// Matrix returns the spillover matrix.
func (c *Compensation) Matrix() (*mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	n := len(c.Markers)
	data := make([]float64, len(c.Spillover))
	copy(data, c.Spillover)
	return mat.NewDense(n, n, data), nil
}

// Inverse returns the inverse of the spillover matrix.
func (c *Compensation) Inverse() (*mat.Dense, error) {
	s, err := c.Matrix()
	if err != nil {
		return nil, err
	}
	var inv mat.Dense
	if err := inv.Inverse(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingular, err)
	}
	return &inv, nil
}

// UpdateChannels renames markers through chnlMap (old name -> new name).
// Names absent from the map are left as they are.
func (c *Compensation) UpdateChannels(chnlMap map[string]string) {
	for i, m := range c.Markers {
		if renamed, ok := chnlMap[m]; ok {
			c.Markers[i] = renamed
		}
	}
}

// Clone returns a deep copy.
func (c *Compensation) Clone() *Compensation {
	out := *c
	out.Markers = append([]string(nil), c.Markers...)
	out.Spillover = append([]float64(nil), c.Spillover...)
	return &out
}
