package container

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Filter is the compression applied to chunk payloads.
type Filter uint8

const (
	// FilterNone stores chunks as-is.
	FilterNone Filter = 0
	// FilterLZ4 applies LZ4 block compression (fast, good for hot data).
	FilterLZ4 Filter = 1
	// FilterZSTD applies ZSTD compression (better ratio, good for archives).
	FilterZSTD Filter = 2
)

func (f Filter) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterLZ4:
		return "lz4"
	case FilterZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("filter(%d)", uint8(f))
	}
}

// ParseFilter maps a filter name to a Filter.
func ParseFilter(name string) (Filter, error) {
	switch name {
	case "", "none":
		return FilterNone, nil
	case "lz4":
		return FilterLZ4, nil
	case "zstd":
		return FilterZSTD, nil
	default:
		return FilterNone, fmt.Errorf("container: unknown filter %q", name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// compress returns the stored form of raw and the filter actually used.
// Chunks that do not shrink below 90% of their size are stored unfiltered.
func compress(raw []byte, f Filter) ([]byte, Filter, error) {
	if f == FilterNone || len(raw) == 0 {
		return raw, FilterNone, nil
	}

	var out []byte
	switch f {
	case FilterLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, FilterNone, err
		}
		out = buf[:n]
	case FilterZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, FilterNone, err
		}
		out = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, FilterNone, fmt.Errorf("container: unknown filter %d", f)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(raw))*0.9 {
		return raw, FilterNone, nil
	}
	return out, f, nil
}

// decompress reverses compress. rawSize is the unfiltered chunk length.
func decompress(stored []byte, f Filter, rawSize int) ([]byte, error) {
	switch f {
	case FilterNone:
		return stored, nil
	case FilterLZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupted, err)
		}
		if n != rawSize {
			return nil, fmt.Errorf("%w: lz4 size %d, want %d", ErrCorrupted, n, rawSize)
		}
		return out, nil
	case FilterZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(stored, make([]byte, 0, rawSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupted, err)
		}
		if len(out) != rawSize {
			return nil, fmt.Errorf("%w: zstd size %d, want %d", ErrCorrupted, len(out), rawSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter %d", ErrCorrupted, f)
	}
}
