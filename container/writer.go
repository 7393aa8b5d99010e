package container

import (
	"fmt"
	"hash/crc32"
	"io"
)

type writerState int

const (
	stateOpen writerState = iota
	stateClosed
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Filter compresses every chunk written after it is set.
	Filter Filter
}

// Writer produces a container file sequentially. Datasets are written one
// at a time, each as its own set of chunks; Close writes the directory and
// footer. A failed write leaves a partial file that must be discarded.
type Writer struct {
	w        io.Writer
	off      uint64
	opts     WriterOptions
	datasets []*Dataset
	names    map[string]struct{}
	state    writerState
	err      error
}

// NewWriter writes the signature to w and returns a Writer.
func NewWriter(w io.Writer, optFns ...func(*WriterOptions)) (*Writer, error) {
	opts := WriterOptions{Filter: FilterNone}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := writeSignature(w); err != nil {
		return nil, err
	}
	return &Writer{
		w:     w,
		off:   SignatureSize,
		opts:  opts,
		names: make(map[string]struct{}),
	}, nil
}

// Datasets returns the descriptors written so far.
func (w *Writer) Datasets() []*Dataset { return w.datasets }

func (w *Writer) begin(name string, dt Datatype) error {
	if w.state == stateClosed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	if _, ok := w.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDatasetExists, name)
	}
	return dt.Validate()
}

func (w *Writer) writeChunk(raw []byte) (Chunk, error) {
	stored, used, err := compress(raw, w.opts.Filter)
	if err != nil {
		w.err = err
		return Chunk{}, err
	}
	c := Chunk{
		Offset:   w.off,
		Stored:   uint64(len(stored)),
		Raw:      uint64(len(raw)),
		Checksum: crc32.ChecksumIEEE(stored),
		Filter:   used,
	}
	if err := w.writeRaw(stored); err != nil {
		return Chunk{}, err
	}
	return c, nil
}

func (w *Writer) writeRaw(b []byte) error {
	n, err := w.w.Write(b)
	w.off += uint64(n) //nolint:gosec
	if err != nil {
		w.err = err
	}
	return err
}

func (w *Writer) add(d *Dataset) {
	w.datasets = append(w.datasets, d)
	w.names[d.Name] = struct{}{}
}

// WriteRecords writes a 1-D compound dataset holding recs as a single chunk.
func (w *Writer) WriteRecords(name string, dt Datatype, recs []Record) error {
	if err := w.begin(name, dt); err != nil {
		return err
	}
	if dt.Class != ClassCompound {
		return fmt.Errorf("%w: %s needs a compound type", ErrType, name)
	}
	n := uint64(len(recs))
	d := &Dataset{
		Name:       name,
		Type:       dt,
		Shape:      []uint64{n},
		MaxShape:   []uint64{Unlimited},
		ChunkShape: []uint64{max(n, 1)},
	}
	if n > 0 {
		raw, err := EncodeRecords(dt, recs)
		if err != nil {
			return err
		}
		c, err := w.writeChunk(raw)
		if err != nil {
			return err
		}
		d.Chunks = []Chunk{c}
	}
	w.add(d)
	return nil
}

// WriteMatrix writes a 2-D numeric dataset of nrows x ncols. Each row is
// one chunk, so a single row can later be read without touching the rest.
// row is called once per row in order and must return ncols values.
func (w *Writer) WriteMatrix(name string, dt Datatype, nrows, ncols int, row func(i int) ([]float64, error)) error {
	if err := w.begin(name, dt); err != nil {
		return err
	}
	if dt.Class != ClassFloat && dt.Class != ClassInt {
		return fmt.Errorf("%w: %s needs a numeric type", ErrType, name)
	}
	if nrows < 0 || ncols < 0 {
		return fmt.Errorf("%w: negative shape %d x %d", ErrType, nrows, ncols)
	}
	d := &Dataset{
		Name:       name,
		Type:       dt,
		Shape:      []uint64{uint64(nrows), uint64(ncols)},
		MaxShape:   []uint64{Unlimited, Unlimited},
		ChunkShape: []uint64{1, uint64(ncols)},
		Chunks:     make([]Chunk, 0, nrows),
	}
	for i := 0; i < nrows; i++ {
		values, err := row(i)
		if err != nil {
			w.err = err
			return err
		}
		if len(values) != ncols {
			return fmt.Errorf("%w: row %d of %s has %d values, want %d", ErrType, i, name, len(values), ncols)
		}
		raw, err := EncodeFloats(dt, values)
		if err != nil {
			return err
		}
		c, err := w.writeChunk(raw)
		if err != nil {
			return err
		}
		d.Chunks = append(d.Chunks, c)
	}
	w.add(d)
	return nil
}

// CopyDataset copies a dataset from src without decoding its chunks.
func (w *Writer) CopyDataset(src *Reader, name string) error {
	sd, err := src.Dataset(name)
	if err != nil {
		return err
	}
	if err := w.begin(name, sd.Type); err != nil {
		return err
	}
	d := &Dataset{
		Name:       sd.Name,
		Type:       sd.Type,
		Shape:      append([]uint64(nil), sd.Shape...),
		MaxShape:   append([]uint64(nil), sd.MaxShape...),
		ChunkShape: append([]uint64(nil), sd.ChunkShape...),
		Chunks:     make([]Chunk, 0, len(sd.Chunks)),
	}
	for i, sc := range sd.Chunks {
		stored, err := src.storedChunk(sd, i)
		if err != nil {
			w.err = err
			return err
		}
		c := sc
		c.Offset = w.off
		if err := w.writeRaw(stored); err != nil {
			return err
		}
		d.Chunks = append(d.Chunks, c)
	}
	w.add(d)
	return nil
}

// Close writes the directory and footer. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return ErrClosed
	}
	w.state = stateClosed
	if w.err != nil {
		return w.err
	}

	dir := encodeDirectory(w.datasets)
	footer := Footer{
		Magic:        FormatMagic,
		Version:      FormatVersion,
		DatasetCount: uint32(len(w.datasets)), //nolint:gosec
		DirOffset:    w.off,
		DirLength:    uint64(len(dir)),
		DirChecksum:  crc32.ChecksumIEEE(dir),
	}
	if err := w.writeRaw(dir); err != nil {
		return err
	}
	_, err := footer.WriteTo(w.w)
	return err
}
