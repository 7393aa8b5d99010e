package container

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"math"
)

const (
	// FormatMagic identifies container files (ASCII: "CYF1").
	FormatMagic = 0x43594631

	// FormatVersion is the current container format version.
	FormatVersion uint32 = 1

	// SignatureSize is the size of the leading signature in bytes.
	SignatureSize = 8

	// FooterSize is the size of the trailing footer in bytes.
	FooterSize = 64

	// Unlimited marks a dimension without an upper bound.
	Unlimited = math.MaxUint64
)

var (
	// ErrInvalidMagic is returned when a file has an invalid magic number.
	ErrInvalidMagic = errors.New("container: invalid magic number")

	// ErrInvalidVersion is returned when a file has an unsupported version.
	ErrInvalidVersion = errors.New("container: unsupported format version")

	// ErrCorrupted is returned when a checksum or structural check fails.
	ErrCorrupted = errors.New("container: file corrupted")

	// ErrNoDataset is returned when a named dataset does not exist.
	ErrNoDataset = errors.New("container: dataset not found")

	// ErrDatasetExists is returned when a dataset name is written twice.
	ErrDatasetExists = errors.New("container: dataset already exists")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("container: writer closed")

	// ErrType is returned when values do not match a datatype.
	ErrType = errors.New("container: datatype mismatch")
)

// Footer is the 64-byte trailer of a container file.
type Footer struct {
	Magic        uint32
	Version      uint32
	Flags        uint32
	DatasetCount uint32
	DirOffset    uint64
	DirLength    uint64
	DirChecksum  uint32
	Checksum     uint32 // CRC32 of bytes [0:56)
}

// WriteTo writes the footer to w.
func (f *Footer) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], f.Version)
	binary.LittleEndian.PutUint32(buf[8:12], f.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], f.DatasetCount)
	binary.LittleEndian.PutUint64(buf[16:24], f.DirOffset)
	binary.LittleEndian.PutUint64(buf[24:32], f.DirLength)
	binary.LittleEndian.PutUint32(buf[32:36], f.DirChecksum)

	f.Checksum = crc32.ChecksumIEEE(buf[:56])
	binary.LittleEndian.PutUint32(buf[56:60], f.Checksum)

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom reads the footer from r.
func (f *Footer) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, FooterSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), err
	}

	f.Magic = binary.LittleEndian.Uint32(buf[0:4])
	f.Version = binary.LittleEndian.Uint32(buf[4:8])
	f.Flags = binary.LittleEndian.Uint32(buf[8:12])
	f.DatasetCount = binary.LittleEndian.Uint32(buf[12:16])
	f.DirOffset = binary.LittleEndian.Uint64(buf[16:24])
	f.DirLength = binary.LittleEndian.Uint64(buf[24:32])
	f.DirChecksum = binary.LittleEndian.Uint32(buf[32:36])
	f.Checksum = binary.LittleEndian.Uint32(buf[56:60])

	if f.Checksum != crc32.ChecksumIEEE(buf[:56]) {
		return int64(n), ErrCorrupted
	}
	return int64(n), f.Validate()
}

// Validate checks magic and version.
func (f *Footer) Validate() error {
	if f.Magic != FormatMagic {
		return ErrInvalidMagic
	}
	if f.Version > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}

func writeSignature(w io.Writer) error {
	var buf [SignatureSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], FormatMagic)
	binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
	_, err := w.Write(buf[:])
	return err
}

func checkSignature(buf []byte) error {
	if len(buf) < SignatureSize {
		return ErrCorrupted
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != FormatMagic {
		return ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(buf[4:8]) > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}
