package cytoframe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/container"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/internal/resource"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// Dataset names inside a frame store.
const (
	DatasetParams   = "params"
	DatasetKeywords = "keywords"
	DatasetPData    = "pdata"
	DatasetData     = "data"
)

func paramsType(p Precision, order container.ByteOrder) container.Datatype {
	f := p.datatype(order)
	return container.Compound(
		container.Field{Name: "channel", Type: container.VarString()},
		container.Field{Name: "marker", Type: container.VarString()},
		container.Field{Name: "min", Type: f},
		container.Field{Name: "max", Type: f},
		container.Field{Name: "PnG", Type: f},
		container.Field{Name: "PnE", Type: container.Array(f, 2)},
		container.Field{Name: "PnB", Type: container.Int8()},
	)
}

func pairType() container.Datatype {
	return container.Compound(
		container.Field{Name: "key", Type: container.VarString()},
		container.Field{Name: "value", Type: container.VarString()},
	)
}

// meta is the descriptor and annotation part of a store.
type meta struct {
	params   []param.Param
	keywords keyword.Map
	pdata    keyword.Map
}

func encodeParams(params []param.Param) []container.Record {
	recs := make([]container.Record, len(params))
	for i, p := range params {
		recs[i] = container.Record{p.Channel, p.Marker, p.Min, p.Max, p.PnG, []float64{p.PnE[0], p.PnE[1]}, p.PnB}
	}
	return recs
}

func decodeParams(recs []container.Record) ([]param.Param, error) {
	out := make([]param.Param, len(recs))
	for i, rec := range recs {
		if len(rec) != 7 {
			return nil, fmt.Errorf("%w: params record %d has %d members", container.ErrCorrupted, i, len(rec))
		}
		channel, ok1 := rec[0].(string)
		marker, ok2 := rec[1].(string)
		minVal, ok3 := rec[2].(float64)
		maxVal, ok4 := rec[3].(float64)
		png, ok5 := rec[4].(float64)
		pne, ok6 := rec[5].([]float64)
		pnb, ok7 := rec[6].(int8)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || len(pne) != 2 {
			return nil, fmt.Errorf("%w: params record %d has unexpected member types", container.ErrCorrupted, i)
		}
		out[i] = param.Param{
			Channel: channel,
			Marker:  marker,
			Min:     minVal,
			Max:     maxVal,
			PnG:     png,
			PnE:     [2]float64{pne[0], pne[1]},
			PnB:     pnb,
		}
	}
	return out, nil
}

func encodePairs(m keyword.Map) []container.Record {
	pairs := m.Pairs()
	recs := make([]container.Record, len(pairs))
	for i, p := range pairs {
		recs[i] = container.Record{p.Key, p.Value}
	}
	return recs
}

func decodePairs(recs []container.Record) (keyword.Map, error) {
	out := make(keyword.Map, len(recs))
	for i, rec := range recs {
		if len(rec) != 2 {
			return nil, fmt.Errorf("%w: pair record %d has %d members", container.ErrCorrupted, i, len(rec))
		}
		k, ok1 := rec[0].(string)
		v, ok2 := rec[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: pair record %d has unexpected member types", container.ErrCorrupted, i)
		}
		out[k] = v
	}
	return out, nil
}

// dataWriter emits the "data" dataset into an open container.
type dataWriter func(w *container.Writer) error

func matrixData(m *events.Matrix, dt container.Datatype) dataWriter {
	return func(w *container.Writer) error {
		return w.WriteMatrix(DatasetData, dt, m.Cols(), m.Rows(), func(j int) ([]float64, error) {
			return m.Col(j), nil
		})
	}
}

func copiedData(src *container.Reader) dataWriter {
	return func(w *container.Writer) error {
		return w.CopyDataset(src, DatasetData)
	}
}

// writeStore writes params, keywords, pheno data and then the event
// matrix as one container. The blob is discarded on any failure, so a
// store under name is either fully replaced or left as it was.
func writeStore(ctx context.Context, store blobstore.BlobStore, name string, md meta, cols int, data dataWriter, o *options) error {
	if len(md.pdata) == 0 {
		return fmt.Errorf("%w: pheno data is empty", ErrPreconditionFailed)
	}
	if len(md.params) != cols {
		return fmt.Errorf("%w: %d column descriptors for %d data columns", ErrPreconditionFailed, len(md.params), cols)
	}

	wb, err := store.Create(ctx, name)
	if err != nil {
		return translateError(err)
	}

	if err := writeContainer(ctx, wb, md, data, o); err != nil {
		return errors.Join(err, wb.Abort())
	}
	return wb.Close()
}

func writeContainer(ctx context.Context, wb blobstore.WritableBlob, md meta, data dataWriter, o *options) error {
	cw, err := container.NewWriter(resource.NewWriter(ctx, wb, o.resource), func(wo *container.WriterOptions) {
		wo.Filter = o.filter
	})
	if err != nil {
		return err
	}
	if err := cw.WriteRecords(DatasetParams, paramsType(o.precision, o.byteOrder), encodeParams(md.params)); err != nil {
		return err
	}
	if err := cw.WriteRecords(DatasetKeywords, pairType(), encodePairs(md.keywords)); err != nil {
		return err
	}
	if err := cw.WriteRecords(DatasetPData, pairType(), encodePairs(md.pdata)); err != nil {
		return err
	}
	if err := data(cw); err != nil {
		return err
	}
	return cw.Close()
}

func readMeta(r *container.Reader) (meta, error) {
	pd, err := r.Dataset(DatasetParams)
	if err != nil {
		return meta{}, err
	}
	mm, ok := pd.Type.Member("min")
	if !ok {
		return meta{}, fmt.Errorf("%w: params without min member", container.ErrType)
	}
	prec := Float32
	if mm.Type.Size == 8 {
		prec = Float64
	}
	if want := paramsType(prec, mm.Type.Order); !pd.Type.Equal(want) {
		return meta{}, fmt.Errorf("%w: params type %v", container.ErrType, pd.Type)
	}

	recs, err := r.ReadRecords(DatasetParams)
	if err != nil {
		return meta{}, err
	}
	params, err := decodeParams(recs)
	if err != nil {
		return meta{}, err
	}

	md := meta{params: params}
	for _, ds := range []struct {
		name string
		dst  *keyword.Map
	}{
		{DatasetKeywords, &md.keywords},
		{DatasetPData, &md.pdata},
	} {
		d, err := r.Dataset(ds.name)
		if err != nil {
			return meta{}, err
		}
		if !d.Type.Equal(pairType()) {
			return meta{}, fmt.Errorf("%w: %s type %v", container.ErrType, ds.name, d.Type)
		}
		recs, err := r.ReadRecords(ds.name)
		if err != nil {
			return meta{}, err
		}
		if *ds.dst, err = decodePairs(recs); err != nil {
			return meta{}, err
		}
	}
	return md, nil
}

// blobReaderAt adapts a Blob to io.ReaderAt. The context is rebound for
// every frame operation and every read is charged to the I/O budget.
type blobReaderAt struct {
	ctx  context.Context
	blob blobstore.Blob
	rc   *resource.Controller
}

func (b *blobReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if err := b.rc.AcquireIO(b.ctx, len(p)); err != nil {
		return 0, err
	}
	return b.blob.ReadAt(b.ctx, p, off)
}

// storeBackend keeps the event matrix in a store and reads columns on
// demand. Writes replace the whole store.
type storeBackend struct {
	store blobstore.BlobStore
	name  string
	blob  blobstore.Blob
	ra    *blobReaderAt
	r     *container.Reader
	rows  int
	cols  int
	o     *options
}

func openStoreBackend(ctx context.Context, store blobstore.BlobStore, name string, o *options) (*storeBackend, meta, error) {
	b := &storeBackend{store: store, name: name, o: o}
	md, err := b.open(ctx)
	if err != nil {
		return nil, meta{}, err
	}
	return b, md, nil
}

func (b *storeBackend) open(ctx context.Context) (meta, error) {
	blob, err := b.store.Open(ctx, b.name)
	if err != nil {
		return meta{}, translateError(err)
	}
	ra := &blobReaderAt{ctx: ctx, blob: blob, rc: b.o.resource}
	r, err := container.NewReader(ra, blob.Size())
	if err != nil {
		_ = blob.Close()
		return meta{}, corrupt(b.name, err)
	}
	md, err := readMeta(r)
	if err != nil {
		_ = blob.Close()
		return meta{}, corrupt(b.name, err)
	}
	cols, rows, err := r.MatrixShape(DatasetData)
	if err != nil {
		_ = blob.Close()
		return meta{}, corrupt(b.name, err)
	}
	d, _ := r.Dataset(DatasetData)
	prec := Float32
	if d.Type.Size == 8 {
		prec = Float64
	}

	if b.blob != nil {
		_ = b.blob.Close()
	}
	b.blob, b.ra, b.r = blob, ra, r
	b.rows, b.cols = rows, cols
	if !b.o.precisionSet {
		b.o.precision = prec
	}
	return md, nil
}

func (b *storeBackend) shape() (int, int) { return b.rows, b.cols }

func (b *storeBackend) columns(ctx context.Context, cols []int) (m *events.Matrix, err error) {
	start := time.Now()
	if cols == nil {
		cols = make([]int, b.cols)
		for j := range cols {
			cols[j] = j
		}
	}
	defer func() {
		b.o.metricsCollector.RecordColumnRead(len(cols), time.Since(start), err)
	}()

	bytes := int64(b.rows) * int64(len(cols)) * 8
	if err := b.o.resource.AcquireMemory(bytes); err != nil {
		return nil, translateError(err)
	}
	defer b.o.resource.ReleaseMemory(bytes)

	b.ra.ctx = ctx
	m = events.New(b.rows, len(cols))
	for k, j := range cols {
		if j < 0 || j >= b.cols {
			return nil, translateError(fmt.Errorf("%w: column %d of %d", events.ErrIndex, j, b.cols))
		}
		if err := b.r.ReadMatrixRow(DatasetData, j, m.Col(k)); err != nil {
			return nil, corrupt(b.name, err)
		}
	}
	return m, nil
}

func (b *storeBackend) update(ctx context.Context, f *Frame, fn func(m *events.Matrix) error) error {
	m, err := b.columns(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return b.replace(ctx, f, m)
}

func (b *storeBackend) replace(ctx context.Context, f *Frame, m *events.Matrix) error {
	dt := b.o.precision.datatype(b.o.byteOrder)
	return b.rewrite(ctx, f, m.Rows(), m.Cols(), matrixData(m, dt))
}

func (b *storeBackend) source(ctx context.Context, dt container.Datatype) (dataWriter, error) {
	b.ra.ctx = ctx
	d, err := b.r.Dataset(DatasetData)
	if err != nil {
		return nil, corrupt(b.name, err)
	}
	if d.Type.Equal(dt) {
		return copiedData(b.r), nil
	}
	m, err := b.columns(ctx, nil)
	if err != nil {
		return nil, err
	}
	return matrixData(m, dt), nil
}

func (b *storeBackend) flush(ctx context.Context, f *Frame) error {
	b.ra.ctx = ctx
	return b.rewrite(ctx, f, b.rows, b.cols, copiedData(b.r))
}

func (b *storeBackend) rewrite(ctx context.Context, f *Frame, rows, cols int, data dataWriter) error {
	start := time.Now()
	err := writeStore(ctx, b.store, b.name, f.meta(), cols, data, b.o)
	b.o.metricsCollector.RecordStoreWrite(rows*cols, time.Since(start), err)
	if err != nil {
		return err
	}
	if _, err := b.open(ctx); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

func (b *storeBackend) path() string { return b.name }

func (b *storeBackend) close() error {
	if b.blob == nil {
		return nil
	}
	err := b.blob.Close()
	b.blob = nil
	return err
}
