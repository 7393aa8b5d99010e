package container

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encoder appends little-endian structural fields.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s))) //nolint:gosec
	e.buf = append(e.buf, s...)
}

// decoder reads what encoder wrote. The first short read sets err and
// every later call returns zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) fail() {
	if d.err == nil {
		d.err = fmt.Errorf("%w: truncated or invalid directory at offset %d", ErrCorrupted, d.off)
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.off+n > len(d.buf) {
		d.fail()
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) bool() bool { return d.u8() != 0 }

func (d *decoder) str() string {
	n := d.u32()
	b := d.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// putFloat writes v into dst using the numeric datatype dt.
func putFloat(dst []byte, dt Datatype, v float64) {
	order := dt.Order.Binary()
	switch dt.Class {
	case ClassFloat:
		if dt.Size == 4 {
			order.PutUint32(dst, math.Float32bits(float32(v)))
		} else {
			order.PutUint64(dst, math.Float64bits(v))
		}
	case ClassInt:
		putInt(dst, dt, int64(v))
	}
}

// getFloat reads a numeric element of dt from src.
func getFloat(src []byte, dt Datatype) float64 {
	order := dt.Order.Binary()
	switch dt.Class {
	case ClassFloat:
		if dt.Size == 4 {
			return float64(math.Float32frombits(order.Uint32(src)))
		}
		return math.Float64frombits(order.Uint64(src))
	case ClassInt:
		return float64(getInt(src, dt))
	}
	return 0
}

func putInt(dst []byte, dt Datatype, v int64) {
	order := dt.Order.Binary()
	switch dt.Size {
	case 1:
		dst[0] = byte(v)
	case 2:
		order.PutUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		order.PutUint32(dst, uint32(v)) //nolint:gosec
	case 8:
		order.PutUint64(dst, uint64(v)) //nolint:gosec
	}
}

func getInt(src []byte, dt Datatype) int64 {
	order := dt.Order.Binary()
	switch dt.Size {
	case 1:
		if dt.Signed {
			return int64(int8(src[0]))
		}
		return int64(src[0])
	case 2:
		if dt.Signed {
			return int64(int16(order.Uint16(src))) //nolint:gosec
		}
		return int64(order.Uint16(src))
	case 4:
		if dt.Signed {
			return int64(int32(order.Uint32(src))) //nolint:gosec
		}
		return int64(order.Uint32(src))
	case 8:
		return int64(order.Uint64(src)) //nolint:gosec
	}
	return 0
}
