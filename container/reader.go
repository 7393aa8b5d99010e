package container

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
)

// Reader gives random access to the datasets of a container file.
// It reads only the footer and directory up front; chunk payloads are
// fetched on demand.
type Reader struct {
	r        io.ReaderAt
	size     int64
	footer   Footer
	datasets []*Dataset
	byName   map[string]*Dataset
}

// NewReader opens a container held by r, which is size bytes long.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	if size < SignatureSize+FooterSize {
		return nil, fmt.Errorf("%w: %d bytes is too small", ErrCorrupted, size)
	}

	sig := make([]byte, SignatureSize)
	if _, err := r.ReadAt(sig, 0); err != nil {
		return nil, err
	}
	if err := checkSignature(sig); err != nil {
		return nil, err
	}

	buf := make([]byte, FooterSize)
	if _, err := r.ReadAt(buf, size-FooterSize); err != nil {
		return nil, err
	}
	var footer Footer
	if _, err := footer.ReadFrom(bytes.NewReader(buf)); err != nil {
		return nil, err
	}

	dirEnd := footer.DirOffset + footer.DirLength
	if footer.DirOffset < SignatureSize || dirEnd < footer.DirOffset || dirEnd > uint64(size-FooterSize) { //nolint:gosec
		return nil, fmt.Errorf("%w: directory [%d, %d) outside file", ErrCorrupted, footer.DirOffset, dirEnd)
	}
	dir := make([]byte, footer.DirLength)
	if _, err := r.ReadAt(dir, int64(footer.DirOffset)); err != nil { //nolint:gosec
		return nil, err
	}
	if crc32.ChecksumIEEE(dir) != footer.DirChecksum {
		return nil, fmt.Errorf("%w: directory checksum", ErrCorrupted)
	}

	datasets, err := decodeDirectory(dir, int(footer.DatasetCount))
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Dataset, len(datasets))
	for _, d := range datasets {
		for _, c := range d.Chunks {
			if c.Offset < SignatureSize || c.Offset+c.Stored > footer.DirOffset {
				return nil, fmt.Errorf("%w: chunk of %s outside data region", ErrCorrupted, d.Name)
			}
		}
		byName[d.Name] = d
	}

	return &Reader{
		r:        r,
		size:     size,
		footer:   footer,
		datasets: datasets,
		byName:   byName,
	}, nil
}

// Datasets returns every dataset in file order.
func (r *Reader) Datasets() []*Dataset { return r.datasets }

// Dataset returns the dataset called name.
func (r *Reader) Dataset(name string) (*Dataset, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, name)
	}
	return d, nil
}

func (r *Reader) storedChunk(d *Dataset, i int) ([]byte, error) {
	if i < 0 || i >= len(d.Chunks) {
		return nil, fmt.Errorf("%w: chunk %d of %s (%d chunks)", ErrCorrupted, i, d.Name, len(d.Chunks))
	}
	c := d.Chunks[i]
	buf := make([]byte, c.Stored)
	if c.Stored > 0 {
		if _, err := r.r.ReadAt(buf, int64(c.Offset)); err != nil && err != io.EOF { //nolint:gosec
			return nil, err
		}
	}
	if crc32.ChecksumIEEE(buf) != c.Checksum {
		return nil, fmt.Errorf("%w: chunk %d of %s checksum", ErrCorrupted, i, d.Name)
	}
	return buf, nil
}

// ReadChunk returns the unfiltered payload of chunk i of name.
func (r *Reader) ReadChunk(name string, i int) ([]byte, error) {
	d, err := r.Dataset(name)
	if err != nil {
		return nil, err
	}
	return r.readChunk(d, i)
}

func (r *Reader) readChunk(d *Dataset, i int) ([]byte, error) {
	stored, err := r.storedChunk(d, i)
	if err != nil {
		return nil, err
	}
	return decompress(stored, d.Chunks[i].Filter, int(d.Chunks[i].Raw))
}

// ReadRecords decodes every record of a 1-D compound dataset.
func (r *Reader) ReadRecords(name string) ([]Record, error) {
	d, err := r.Dataset(name)
	if err != nil {
		return nil, err
	}
	if d.Type.Class != ClassCompound || d.Rank() != 1 {
		return nil, fmt.Errorf("%w: %s is not a 1-D compound dataset", ErrType, name)
	}

	total := int(d.Shape[0])
	per := int(d.ChunkShape[0])
	out := make([]Record, 0, total)
	for i := range d.Chunks {
		n := min(per, total-len(out))
		raw, err := r.readChunk(d, i)
		if err != nil {
			return nil, err
		}
		recs, err := DecodeRecords(d.Type, raw, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, recs...)
	}
	if len(out) != total {
		return nil, fmt.Errorf("%w: %s holds %d of %d records", ErrCorrupted, name, len(out), total)
	}
	return out, nil
}

// MatrixShape returns the rows and columns of a 2-D numeric dataset.
func (r *Reader) MatrixShape(name string) (int, int, error) {
	d, err := r.matrix(name)
	if err != nil {
		return 0, 0, err
	}
	return int(d.Shape[0]), int(d.Shape[1]), nil
}

func (r *Reader) matrix(name string) (*Dataset, error) {
	d, err := r.Dataset(name)
	if err != nil {
		return nil, err
	}
	if (d.Type.Class != ClassFloat && d.Type.Class != ClassInt) || d.Rank() != 2 {
		return nil, fmt.Errorf("%w: %s is not a 2-D numeric dataset", ErrType, name)
	}
	if d.ChunkShape[0] != 1 || d.ChunkShape[1] != d.Shape[1] || len(d.Chunks) != int(d.Shape[0]) {
		return nil, fmt.Errorf("%w: %s is not chunked by row", ErrType, name)
	}
	return d, nil
}

// ReadMatrixRow decodes row i of a row-chunked 2-D dataset into dst,
// which must hold exactly one row.
func (r *Reader) ReadMatrixRow(name string, i int, dst []float64) error {
	d, err := r.matrix(name)
	if err != nil {
		return err
	}
	if len(dst) != int(d.Shape[1]) {
		return fmt.Errorf("%w: destination holds %d values, row has %d", ErrType, len(dst), d.Shape[1])
	}
	raw, err := r.readChunk(d, i)
	if err != nil {
		return err
	}
	return DecodeFloatsInto(d.Type, raw, dst)
}
