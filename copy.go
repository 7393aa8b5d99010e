package cytoframe

import (
	"context"
	"fmt"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/param"
)

type copyOptions struct {
	store blobstore.BlobStore
	name  string
	opts  []Option
}

// CopyOption configures Copy and CopyRealized.
type CopyOption func(*copyOptions)

// WithTarget materializes the copy as name in store and returns a frame
// backed by that store. opts apply to the write and the reopened frame.
func WithTarget(store blobstore.BlobStore, name string, opts ...Option) CopyOption {
	return func(o *copyOptions) {
		o.store = store
		o.name = name
		o.opts = opts
	}
}

// Copy returns an independent frame with the same descriptors, keywords,
// pheno data, events and guard state. Without a target the copy lives in
// memory.
func (f *Frame) Copy(ctx context.Context, optFns ...CopyOption) (*Frame, error) {
	return f.CopyRealized(ctx, nil, nil, optFns...)
}

// CopyRealized returns a frame holding only the given event rows and
// columns, with descriptors pruned to the selected columns. A nil slice
// keeps everything along that axis.
func (f *Frame) CopyRealized(ctx context.Context, rows, cols []int, optFns ...CopyOption) (*Frame, error) {
	var co copyOptions
	for _, fn := range optFns {
		fn(&co)
	}

	params := f.params.Params()
	if cols != nil {
		var err error
		if params, err = f.params.Select(cols); err != nil {
			return nil, translateError(err)
		}
	}

	m, err := f.data.columns(ctx, cols)
	if err != nil {
		return nil, translateError(err)
	}
	if rows != nil {
		if m, err = m.SelectRows(rows); err != nil {
			return nil, translateError(err)
		}
	}

	out := &Frame{
		params:   param.NewTable(params),
		keywords: f.keywords.Clone(),
		pdata:    f.pdata.Clone(),
		readOnly: f.readOnly,
		data:     &memoryBackend{m: m},
		opts:     f.opts,
	}
	if co.store == nil {
		return out, nil
	}

	if err := out.WriteStore(ctx, co.store, co.name, co.opts...); err != nil {
		return nil, err
	}
	opts := append([]Option{
		WithLogger(f.opts.logger),
		WithMetricsCollector(f.opts.metricsCollector),
		WithReadParams(f.opts.readParams),
		WithReadOnly(f.readOnly),
	}, co.opts...)
	return OpenFrame(ctx, co.store, co.name, opts...)
}

// CopySelection is CopyRealized with the rows given as a selection, for
// example the result of events.Where over a gate.
func (f *Frame) CopySelection(ctx context.Context, sel *events.Selection, cols []int, optFns ...CopyOption) (*Frame, error) {
	if sel == nil {
		return nil, fmt.Errorf("%w: nil selection", ErrInvalidArgument)
	}
	if err := sel.Validate(f.NRows()); err != nil {
		return nil, translateError(err)
	}
	return f.CopyRealized(ctx, sel.Rows(), cols, optFns...)
}

// SubsetParameters keeps only the descriptors at cols. The event matrix
// is not touched, so callers subset it separately (see SetData) before
// the frame is consistent again.
func (f *Frame) SubsetParameters(cols []int) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	params, err := f.params.Select(cols)
	if err != nil {
		return translateError(err)
	}
	f.params.Set(params)
	f.dirty = true
	return nil
}
