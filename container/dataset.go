package container

import (
	"fmt"
	"math/bits"
)

// MaxChunkBytes bounds the unfiltered size of a single chunk.
const MaxChunkBytes = 1 << 34

// Chunk locates one filtered chunk payload inside the file.
type Chunk struct {
	Offset   uint64
	Stored   uint64 // bytes on disk
	Raw      uint64 // bytes after decompression
	Checksum uint32 // CRC32 of the stored bytes
	Filter   Filter
}

// Dataset describes a named, typed, chunked array.
type Dataset struct {
	Name       string
	Type       Datatype
	Shape      []uint64
	MaxShape   []uint64
	ChunkShape []uint64
	Chunks     []Chunk
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int { return len(d.Shape) }

// Len returns the number of elements.
func (d *Dataset) Len() int {
	n := 1
	for _, x := range d.Shape {
		n *= int(x)
	}
	return n
}

// Extensible reports whether every dimension is unbounded.
func (d *Dataset) Extensible() bool {
	for _, m := range d.MaxShape {
		if m != Unlimited {
			return false
		}
	}
	return len(d.MaxShape) > 0
}

// StoredBytes returns the on-disk size of all chunks.
func (d *Dataset) StoredBytes() uint64 {
	var n uint64
	for _, c := range d.Chunks {
		n += c.Stored
	}
	return n
}

func (d *Dataset) encode(e *encoder) {
	e.str(d.Name)
	e.u8(uint8(len(d.Shape))) //nolint:gosec
	for _, dims := range [][]uint64{d.Shape, d.MaxShape, d.ChunkShape} {
		for _, x := range dims {
			e.u64(x)
		}
	}
	d.Type.encode(e)
	e.u32(uint32(len(d.Chunks))) //nolint:gosec
	for _, c := range d.Chunks {
		e.u64(c.Offset)
		e.u64(c.Stored)
		e.u64(c.Raw)
		e.u32(c.Checksum)
		e.u8(uint8(c.Filter))
	}
}

func decodeDataset(dec *decoder) *Dataset {
	d := &Dataset{Name: dec.str()}
	rank := int(dec.u8())
	read := func() []uint64 {
		out := make([]uint64, rank)
		for i := range out {
			out[i] = dec.u64()
		}
		return out
	}
	d.Shape = read()
	d.MaxShape = read()
	d.ChunkShape = read()
	d.Type = decodeDatatype(dec, 0)
	n := int(dec.u32())
	if dec.err != nil || n > len(dec.buf) {
		dec.fail()
		return d
	}
	d.Chunks = make([]Chunk, n)
	for i := range d.Chunks {
		d.Chunks[i] = Chunk{
			Offset:   dec.u64(),
			Stored:   dec.u64(),
			Raw:      dec.u64(),
			Checksum: dec.u32(),
			Filter:   Filter(dec.u8()),
		}
	}
	return d
}

// checkChunks verifies every chunk's unfiltered size against the chunk
// shape: exactly shape x width for fixed-size types, at least that for
// types with a string heap, and never above MaxChunkBytes.
func (d *Dataset) checkChunks() error {
	width := d.Type.Width()
	if width <= 0 {
		return fmt.Errorf("%w: dataset %s has element width %d", ErrCorrupted, d.Name, width)
	}
	fixed := uint64(width)
	for _, x := range d.ChunkShape {
		hi, lo := bits.Mul64(fixed, x)
		if hi != 0 || lo > MaxChunkBytes {
			return fmt.Errorf("%w: dataset %s chunk shape %v too large", ErrCorrupted, d.Name, d.ChunkShape)
		}
		fixed = lo
	}
	heap := d.Type.hasStrings()
	for i, c := range d.Chunks {
		switch {
		case c.Raw > MaxChunkBytes,
			c.Raw < fixed,
			!heap && c.Raw != fixed:
			return fmt.Errorf("%w: chunk %d of %s holds %d bytes, want %d", ErrCorrupted, i, d.Name, c.Raw, fixed)
		case c.Filter == FilterNone && c.Raw != c.Stored:
			return fmt.Errorf("%w: unfiltered chunk %d of %s stores %d of %d bytes", ErrCorrupted, i, d.Name, c.Stored, c.Raw)
		}
	}
	return nil
}

func encodeDirectory(datasets []*Dataset) []byte {
	e := &encoder{}
	for _, d := range datasets {
		d.encode(e)
	}
	return e.buf
}

func decodeDirectory(buf []byte, count int) ([]*Dataset, error) {
	dec := &decoder{buf: buf}
	out := make([]*Dataset, 0, count)
	for i := 0; i < count; i++ {
		d := decodeDataset(dec)
		if dec.err != nil {
			return nil, dec.err
		}
		if err := d.Type.Validate(); err != nil {
			return nil, fmt.Errorf("%w: dataset %s: %w", ErrCorrupted, d.Name, err)
		}
		if err := d.checkChunks(); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if dec.off != len(buf) {
		return nil, fmt.Errorf("%w: %d trailing directory bytes", ErrCorrupted, len(buf)-dec.off)
	}
	return out, nil
}
