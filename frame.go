package cytoframe

import (
	"context"
	"fmt"

	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// Frame is one cytometry sample: column descriptors with their name
// index, FCS keywords, pheno data and the event matrix.
//
// The event matrix lives either in memory or in a store (see OpenFrame).
// Every mutating method checks the mutation guard first and fails with
// ErrReadOnly before touching any state.
//
// A Frame is not safe for concurrent use.
type Frame struct {
	params   *param.Table
	keywords keyword.Map
	pdata    keyword.Map
	readOnly bool
	// dirty marks metadata that differs from the backing store.
	dirty bool
	data  backend
	opts  options
}

// Parsed is the output of an FCS parser: a raw event buffer with its
// layout, the keyword map and the initial column descriptors.
type Parsed struct {
	Events     []float64
	Layout     events.Layout
	Rows       int
	Params     []param.Param
	Keywords   keyword.Map
	ReadParams ReadParams
	// Name becomes the "name" pheno data entry when not empty.
	Name string
}

// New creates an in-memory frame. The matrix must have one column per
// descriptor. A nil matrix creates a frame without events.
func New(params []param.Param, keywords keyword.Map, data *events.Matrix, optFns ...Option) (*Frame, error) {
	if data == nil {
		data = events.New(0, len(params))
	}
	if data.Cols() != len(params) {
		return nil, fmt.Errorf("%w: %d columns for %d descriptors", ErrInvalidArgument, data.Cols(), len(params))
	}
	o := applyOptions(optFns)
	f := &Frame{
		params:   param.NewTable(params),
		keywords: keywords.Clone(),
		pdata:    keyword.Map{},
		readOnly: o.readOnlyOr(false),
		data:     &memoryBackend{m: data.Clone()},
		opts:     o,
	}
	return f, nil
}

// FromParsed creates an in-memory frame from parser output. The frame
// keeps its own copy of the event buffer.
func FromParsed(p Parsed, optFns ...Option) (*Frame, error) {
	m, err := events.FromBuffer(p.Rows, len(p.Params), p.Events, p.Layout)
	if err != nil {
		return nil, translateError(err)
	}
	if p.Layout == events.ColumnMajor {
		m = m.Clone()
	}
	o := applyOptions(append([]Option{WithReadParams(p.ReadParams)}, optFns...))
	f := &Frame{
		params:   param.NewTable(p.Params),
		keywords: p.Keywords.Clone(),
		pdata:    keyword.Map{},
		readOnly: o.readOnlyOr(false),
		data:     &memoryBackend{m: m},
		opts:     o,
	}
	if p.Name != "" {
		f.pdata["name"] = p.Name
	}
	return f, nil
}

func (f *Frame) checkWritable() error {
	if f.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (f *Frame) meta() meta {
	return meta{params: f.params.Params(), keywords: f.keywords, pdata: f.pdata}
}

// SetReadOnly sets the mutation guard.
func (f *Frame) SetReadOnly(readOnly bool) { f.readOnly = readOnly }

// ReadOnly reports whether the mutation guard is set.
func (f *Frame) ReadOnly() bool { return f.readOnly }

// ReadParams returns the parameters the events were parsed with.
func (f *Frame) ReadParams() ReadParams { return f.opts.readParams }

// NCols returns the number of column descriptors.
func (f *Frame) NCols() int { return f.params.Len() }

// NRows returns the number of events.
func (f *Frame) NRows() int {
	rows, _ := f.data.shape()
	return rows
}

// Path returns the store name of a store-backed frame and "" otherwise.
func (f *Frame) Path() string { return f.data.path() }

// Data returns a copy of the full event matrix.
func (f *Frame) Data(ctx context.Context) (*events.Matrix, error) {
	m, err := f.data.columns(ctx, nil)
	return m, translateError(err)
}

// Columns returns a copy of the columns at the given positions. A nil
// slice selects every column.
func (f *Frame) Columns(ctx context.Context, cols []int) (*events.Matrix, error) {
	m, err := f.data.columns(ctx, cols)
	return m, translateError(err)
}

// ColumnsByName resolves names against typ and returns those columns.
func (f *Frame) ColumnsByName(ctx context.Context, names []string, typ param.ColType) (*events.Matrix, error) {
	cols, err := f.ColIndices(names, typ)
	if err != nil {
		return nil, err
	}
	return f.Columns(ctx, cols)
}

// SetData replaces the event matrix. Store-backed frames rewrite their
// store.
func (f *Frame) SetData(ctx context.Context, m *events.Matrix) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidArgument)
	}
	return translateError(f.data.replace(ctx, f, m))
}

// Keywords returns a copy of the keyword map.
func (f *Frame) Keywords() keyword.Map { return f.keywords.Clone() }

// Keyword returns the value of key, or "" when it is not set.
func (f *Frame) Keyword(key string) string { return f.keywords.Get(key) }

// LookupKeyword returns the value of key or ErrNotFound.
func (f *Frame) LookupKeyword(key string) (string, error) {
	v, err := f.keywords.Lookup(key)
	return v, translateError(err)
}

// SetKeywords replaces the keyword map.
func (f *Frame) SetKeywords(kw keyword.Map) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	f.keywords = kw.Clone()
	f.dirty = true
	return nil
}

// SetKeyword sets a single keyword.
func (f *Frame) SetKeyword(key, value string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	f.keywords[key] = value
	f.dirty = true
	return nil
}

// PhenoData returns a copy of the pheno data.
func (f *Frame) PhenoData() keyword.Map { return f.pdata.Clone() }

// PhenoDataValue returns the pheno data entry for name, or "".
func (f *Frame) PhenoDataValue(name string) string { return f.pdata.Get(name) }

// SetPhenoData replaces the pheno data.
func (f *Frame) SetPhenoData(pd keyword.Map) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	f.pdata = pd.Clone()
	f.dirty = true
	return nil
}

// SetPhenoDataValue sets a single pheno data entry.
func (f *Frame) SetPhenoDataValue(name, value string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	f.pdata[name] = value
	f.dirty = true
	return nil
}

// DeletePhenoData removes a pheno data entry. Removing a missing entry
// is not an error.
func (f *Frame) DeletePhenoData(name string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	delete(f.pdata, name)
	f.dirty = true
	return nil
}

// Params returns a copy of the column descriptors.
func (f *Frame) Params() []param.Param { return param.Clone(f.params.Params()) }

// SetParams replaces the column descriptors and rebuilds the index.
// force bypasses the mutation guard.
func (f *Frame) SetParams(params []param.Param, force bool) error {
	if !force {
		if err := f.checkWritable(); err != nil {
			return err
		}
	}
	f.params.Set(params)
	f.dirty = true
	return nil
}

// Channels returns the channel names in column order.
func (f *Frame) Channels() []string { return param.Channels(f.params.Params()) }

// Markers returns the marker names in column order.
func (f *Frame) Markers() []string { return param.Markers(f.params.Params()) }

// Marker returns the marker of the column whose channel is channel.
func (f *Frame) Marker(channel string) (string, error) {
	pos, err := f.params.Lookup(channel, param.Channel)
	if err != nil {
		return "", translateError(err)
	}
	return f.params.Params()[pos].Marker, nil
}

// ColIndex resolves a column name against typ.
func (f *Frame) ColIndex(name string, typ param.ColType) (int, error) {
	pos, err := f.params.Lookup(name, typ)
	return pos, translateError(err)
}

// ColIndices resolves every name and fails on the first one that does not
// resolve.
func (f *Frame) ColIndices(names []string, typ param.ColType) ([]int, error) {
	pos, err := f.params.Positions(names, typ)
	return pos, translateError(err)
}

// CheckConsistency reports ErrPreconditionFailed when the descriptors and
// the event matrix disagree on the column count or the name index does not
// cover every descriptor.
func (f *Frame) CheckConsistency() error {
	_, cols := f.data.shape()
	if cols != f.params.Len() {
		return fmt.Errorf("%w: %d column descriptors for %d data columns", ErrPreconditionFailed, f.params.Len(), cols)
	}
	if !f.params.IsConsistent() {
		return fmt.Errorf("%w: channel names are not unique", ErrPreconditionFailed)
	}
	return nil
}
