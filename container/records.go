package container

import (
	"encoding/binary"
	"fmt"
)

// Record is one element of a compound dataset: one value per member, in
// member order. Member values are string (VarString), float64 (Float),
// int8/int64 (Int) or []float64 (Array).
type Record []any

// EncodeRecords lays out recs as fixed-width records followed by a heap
// holding the bytes of every variable-length string.
func EncodeRecords(dt Datatype, recs []Record) ([]byte, error) {
	if dt.Class != ClassCompound {
		return nil, fmt.Errorf("%w: %v is not a compound type", ErrType, dt)
	}
	width := dt.Width()
	fixed := make([]byte, width*len(recs))
	var heap []byte

	for i, rec := range recs {
		if len(rec) != len(dt.Members) {
			return nil, fmt.Errorf("%w: record %d has %d values, want %d", ErrType, i, len(rec), len(dt.Members))
		}
		base := fixed[i*width : (i+1)*width]
		for k, m := range dt.Members {
			dst := base[m.Offset : int(m.Offset)+m.Type.Width()]
			if err := putValue(dst, m.Type, rec[k], &heap); err != nil {
				return nil, fmt.Errorf("record %d member %s: %w", i, m.Name, err)
			}
		}
	}
	return append(fixed, heap...), nil
}

// DecodeRecords reverses EncodeRecords for n records.
func DecodeRecords(dt Datatype, buf []byte, n int) ([]Record, error) {
	if dt.Class != ClassCompound {
		return nil, fmt.Errorf("%w: %v is not a compound type", ErrType, dt)
	}
	width := dt.Width()
	if n < 0 || width*n > len(buf) {
		return nil, fmt.Errorf("%w: %d records of %d bytes in %d byte chunk", ErrCorrupted, n, width, len(buf))
	}
	heap := buf[width*n:]

	out := make([]Record, n)
	for i := range out {
		base := buf[i*width : (i+1)*width]
		rec := make(Record, len(dt.Members))
		for k, m := range dt.Members {
			src := base[m.Offset : int(m.Offset)+m.Type.Width()]
			v, err := getValue(src, m.Type, heap)
			if err != nil {
				return nil, fmt.Errorf("record %d member %s: %w", i, m.Name, err)
			}
			rec[k] = v
		}
		out[i] = rec
	}
	return out, nil
}

func putValue(dst []byte, dt Datatype, v any, heap *[]byte) error {
	switch dt.Class {
	case ClassString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", ErrType, v)
		}
		binary.LittleEndian.PutUint32(dst[0:4], uint32(len(*heap))) //nolint:gosec
		binary.LittleEndian.PutUint32(dst[4:8], uint32(len(s)))     //nolint:gosec
		*heap = append(*heap, s...)
	case ClassFloat:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: want float64, got %T", ErrType, v)
		}
		putFloat(dst, dt, f)
	case ClassInt:
		switch x := v.(type) {
		case int8:
			putInt(dst, dt, int64(x))
		case int64:
			putInt(dst, dt, x)
		case int:
			putInt(dst, dt, int64(x))
		default:
			return fmt.Errorf("%w: want integer, got %T", ErrType, v)
		}
	case ClassArray:
		xs, ok := v.([]float64)
		if !ok {
			return fmt.Errorf("%w: want []float64, got %T", ErrType, v)
		}
		if len(xs) != dt.count() {
			return fmt.Errorf("%w: array of %d, got %d values", ErrType, dt.count(), len(xs))
		}
		w := dt.Base.Width()
		for i, x := range xs {
			putFloat(dst[i*w:(i+1)*w], *dt.Base, x)
		}
	default:
		return fmt.Errorf("%w: unsupported member class %d", ErrType, dt.Class)
	}
	return nil
}

func getValue(src []byte, dt Datatype, heap []byte) (any, error) {
	switch dt.Class {
	case ClassString:
		off := binary.LittleEndian.Uint32(src[0:4])
		n := binary.LittleEndian.Uint32(src[4:8])
		if uint64(off)+uint64(n) > uint64(len(heap)) {
			return nil, fmt.Errorf("%w: string outside heap", ErrCorrupted)
		}
		return string(heap[off : off+n]), nil
	case ClassFloat:
		return getFloat(src, dt), nil
	case ClassInt:
		v := getInt(src, dt)
		if dt.Size == 1 && dt.Signed {
			return int8(v), nil
		}
		return v, nil
	case ClassArray:
		w := dt.Base.Width()
		out := make([]float64, dt.count())
		for i := range out {
			out[i] = getFloat(src[i*w:(i+1)*w], *dt.Base)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported member class %d", ErrType, dt.Class)
	}
}

// EncodeFloats encodes values as numeric elements of dt.
func EncodeFloats(dt Datatype, values []float64) ([]byte, error) {
	if dt.Class != ClassFloat && dt.Class != ClassInt {
		return nil, fmt.Errorf("%w: %v is not numeric", ErrType, dt)
	}
	w := dt.Width()
	out := make([]byte, w*len(values))
	for i, v := range values {
		putFloat(out[i*w:(i+1)*w], dt, v)
	}
	return out, nil
}

// DecodeFloatsInto decodes numeric elements of dt from buf into dst.
// The tagged byte order is honored regardless of the host order.
func DecodeFloatsInto(dt Datatype, buf []byte, dst []float64) error {
	if dt.Class != ClassFloat && dt.Class != ClassInt {
		return fmt.Errorf("%w: %v is not numeric", ErrType, dt)
	}
	w := dt.Width()
	if len(buf) != w*len(dst) {
		return fmt.Errorf("%w: %d bytes for %d elements of %d bytes", ErrCorrupted, len(buf), len(dst), w)
	}
	for i := range dst {
		dst[i] = getFloat(buf[i*w:(i+1)*w], dt)
	}
	return nil
}
