package cytoframe

import (
	"context"
	"fmt"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/codec"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// MessageMode selects how the event matrix travels in a Message.
type MessageMode int

const (
	// MessageInline embeds a copy of the event matrix.
	MessageInline MessageMode = iota
	// MessageReference carries only the store name of a store-backed frame.
	MessageReference
)

// Message is the structured export of a frame for other processes.
type Message struct {
	Params     []param.Param  `json:"params"`
	Keywords   []keyword.Pair `json:"keywords"`
	PData      []keyword.Pair `json:"pdata"`
	ReadParams ReadParams     `json:"read_params"`
	ReadOnly   bool           `json:"read_only"`
	// Store is the store name when the events are referenced.
	Store string `json:"store,omitempty"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	// Data is the column-major event matrix when inlined.
	Data []float64 `json:"data,omitempty"`
}

// Message exports the frame. MessageReference needs a store-backed frame
// without unflushed metadata; call Flush first.
func (f *Frame) Message(ctx context.Context, mode MessageMode) (*Message, error) {
	rows, cols := f.data.shape()
	msg := &Message{
		Params:     param.Clone(f.params.Params()),
		Keywords:   f.keywords.Pairs(),
		PData:      f.pdata.Pairs(),
		ReadParams: f.opts.readParams,
		ReadOnly:   f.readOnly,
		Rows:       rows,
		Cols:       cols,
	}

	switch mode {
	case MessageInline:
		m, err := f.data.columns(ctx, nil)
		if err != nil {
			return nil, translateError(err)
		}
		msg.Data = m.Data()
	case MessageReference:
		if f.data.path() == "" {
			return nil, fmt.Errorf("%w: in-memory frame has no store to reference", ErrPreconditionFailed)
		}
		if f.dirty {
			return nil, fmt.Errorf("%w: unflushed metadata", ErrPreconditionFailed)
		}
		msg.Store = f.data.path()
	default:
		return nil, fmt.Errorf("%w: message mode %d", ErrInvalidArgument, int(mode))
	}
	return msg, nil
}

// FromMessage rebuilds a frame from a Message. Referenced events are
// opened from store, which may be nil for inline messages. The message
// metadata replaces whatever the store holds.
func FromMessage(ctx context.Context, msg *Message, store blobstore.BlobStore, optFns ...Option) (*Frame, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ErrInvalidArgument)
	}
	optFns = append([]Option{WithReadParams(msg.ReadParams), WithReadOnly(msg.ReadOnly)}, optFns...)

	md := meta{
		params:   msg.Params,
		keywords: keyword.FromPairs(msg.Keywords),
		pdata:    keyword.FromPairs(msg.PData),
	}

	if msg.Store != "" {
		if store == nil {
			return nil, fmt.Errorf("%w: message references store %q", ErrInvalidArgument, msg.Store)
		}
		f, err := OpenFrame(ctx, store, msg.Store, optFns...)
		if err != nil {
			return nil, err
		}
		if rows := f.NRows(); rows != msg.Rows {
			_ = f.Close()
			return nil, fmt.Errorf("%w: store %q holds %d events, message %d", ErrPreconditionFailed, msg.Store, rows, msg.Rows)
		}
		f.setMeta(md)
		return f, nil
	}

	m, err := events.FromBuffer(msg.Rows, msg.Cols, msg.Data, events.ColumnMajor)
	if err != nil {
		return nil, translateError(err)
	}
	f, err := New(msg.Params, md.keywords, m, optFns...)
	if err != nil {
		return nil, err
	}
	f.pdata = md.pdata
	return f, nil
}

// EncodeMessage serializes msg with the frame's codec.
func (f *Frame) EncodeMessage(msg *Message) ([]byte, error) {
	return codec.Encode(f.opts.codec, msg)
}

// DecodeMessage parses data produced by EncodeMessage with any known codec.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := codec.Decode(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return &msg, nil
}
