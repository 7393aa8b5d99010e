// Package codec centralizes how frame messages are serialized.
//
// Encoded messages are self-describing: Encode prefixes the payload with the
// codec name, and Decode selects the codec by that name. Changing Default
// therefore never breaks reading messages written with an older default.
package codec

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned when a message names a codec that is not built in.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Encode marshals v with c (Default if nil) and prefixes the codec name.
func Encode(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", c.Name(), err)
	}
	out := make([]byte, 0, len(c.Name())+1+len(payload))
	out = append(out, c.Name()...)
	out = append(out, '\n')
	return append(out, payload...), nil
}

// Decode reverses Encode.
func Decode(data []byte, v any) error {
	name, payload, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return fmt.Errorf("%w: missing codec header", ErrUnknownCodec)
	}
	c, ok := ByName(string(name))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	if err := c.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("codec %s: %w", c.Name(), err)
	}
	return nil
}
