package cytoframe

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/internal/cache"
	"github.com/hupe1980/cytoframe/param"
)

// WriteStore exports the frame as name in store: descriptors, keywords,
// pheno data and then the event matrix, each as its own dataset. optFns
// override the frame's precision, byte order and filter for this write.
//
// A frame without pheno data or with descriptors that do not match the
// event matrix fails with ErrPreconditionFailed before anything is
// written. A failed write leaves no store behind.
func (f *Frame) WriteStore(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (err error) {
	o := f.opts
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if err := f.CheckConsistency(); err != nil {
		return err
	}

	rows, cols := f.data.shape()
	start := time.Now()
	defer func() {
		o.metricsCollector.RecordStoreWrite(rows*cols, time.Since(start), err)
		o.logger.LogWriteStore(ctx, name, rows, cols, time.Since(start), err)
	}()

	dw, err := f.data.source(ctx, o.precision.datatype(o.byteOrder))
	if err != nil {
		return translateError(err)
	}
	return translateError(writeStore(ctx, store, name, f.meta(), cols, dw, &o))
}

// OpenFrame opens a store-backed frame. Descriptors, keywords and pheno
// data are loaded at once; event columns are read on demand. The frame
// starts read-only unless WithReadOnly(false) is given.
func OpenFrame(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Frame, error) {
	f := &Frame{opts: applyOptions(optFns)}
	if f.opts.cacheBytes > 0 {
		bc := cache.NewLRUBlockCache(f.opts.cacheBytes, f.opts.resource)
		store = blobstore.NewCachingStore(store, bc, blobstore.DefaultBlockSize)
	}

	b, md, err := openStoreBackend(ctx, store, name, &f.opts)
	if err != nil {
		f.opts.logger.LogOpenStore(ctx, name, 0, 0, err)
		return nil, err
	}
	f.data = b
	f.readOnly = f.opts.readOnlyOr(true)
	f.setMeta(md)

	rows, cols := b.shape()
	f.opts.logger.LogOpenStore(ctx, name, rows, cols, nil)
	return f, nil
}

// LoadFrame reads a whole store into an in-memory frame.
func LoadFrame(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Frame, error) {
	o := applyOptions(optFns)
	b, md, err := openStoreBackend(ctx, store, name, &o)
	if err != nil {
		o.logger.LogOpenStore(ctx, name, 0, 0, err)
		return nil, err
	}
	defer func() { _ = b.close() }()

	m, err := b.columns(ctx, nil)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		data:     &memoryBackend{m: m},
		readOnly: o.readOnlyOr(false),
		opts:     o,
	}
	f.setMeta(md)
	o.logger.LogOpenStore(ctx, name, m.Rows(), m.Cols(), nil)
	return f, nil
}

func (f *Frame) setMeta(md meta) {
	f.params = param.NewTable(md.params)
	f.keywords = md.keywords.Clone()
	f.pdata = md.pdata.Clone()
	f.dirty = false
}

// Flush writes changed descriptors, keywords and pheno data back to the
// store of a store-backed frame. In-memory frames have nothing to flush.
func (f *Frame) Flush(ctx context.Context) error {
	if !f.dirty {
		return nil
	}
	err := translateError(f.data.flush(ctx, f))
	if f.data.path() != "" {
		f.opts.logger.LogFlush(ctx, f.data.path(), err)
	}
	return err
}

// Load discards unflushed metadata changes of a store-backed frame by
// reading descriptors, keywords and pheno data from its store again.
func (f *Frame) Load(ctx context.Context) error {
	b, ok := f.data.(*storeBackend)
	if !ok {
		return nil
	}
	md, err := b.open(ctx)
	if err != nil {
		return err
	}
	f.setMeta(md)
	return nil
}

// Close flushes pending metadata and releases the store handle.
func (f *Frame) Close() error {
	var errs []error
	if err := f.Flush(context.Background()); err != nil {
		errs = append(errs, err)
	}
	if err := f.data.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
