package container

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Class is the kind of a Datatype.
type Class uint8

const (
	ClassFloat    Class = 1
	ClassInt      Class = 2
	ClassString   Class = 3 // variable-length string
	ClassArray    Class = 4
	ClassCompound Class = 5
)

// ByteOrder tags the byte order of numeric elements.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = 0
	BigEndian    ByteOrder = 1
)

// NativeOrder returns the byte order of the running host.
func NativeOrder() ByteOrder {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	if buf[0] == 1 {
		return LittleEndian
	}
	return BigEndian
}

// Binary returns the encoding/binary order for o.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "BE"
	}
	return "LE"
}

// stringRefSize is the in-record size of a variable-length string:
// a uint32 heap offset followed by a uint32 length.
const stringRefSize = 8

// Datatype describes the element type of a dataset.
type Datatype struct {
	Class  Class
	Size   uint8     // element size of Float and Int
	Order  ByteOrder // byte order of Float and Int
	Signed bool      // Int only
	// Base and Dims describe Array elements.
	Base *Datatype
	Dims []uint32
	// Members describe Compound records.
	Members []Member
}

// Member is one named field of a compound datatype.
type Member struct {
	Name   string
	Offset uint32
	Type   Datatype
}

// Field is a compound member before offsets are assigned.
type Field struct {
	Name string
	Type Datatype
}

// Float32 returns a 4-byte IEEE float type in the given order.
func Float32(order ByteOrder) Datatype {
	return Datatype{Class: ClassFloat, Size: 4, Order: order}
}

// Float64 returns an 8-byte IEEE float type in the given order.
func Float64(order ByteOrder) Datatype {
	return Datatype{Class: ClassFloat, Size: 8, Order: order}
}

// Int8 returns a signed single-byte integer type.
func Int8() Datatype {
	return Datatype{Class: ClassInt, Size: 1, Signed: true}
}

// VarString returns a variable-length string type.
func VarString() Datatype {
	return Datatype{Class: ClassString}
}

// Array returns a fixed-shape array of base.
func Array(base Datatype, dims ...uint32) Datatype {
	b := base
	return Datatype{Class: ClassArray, Base: &b, Dims: dims}
}

// Compound packs fields into a record type in declaration order.
func Compound(fields ...Field) Datatype {
	members := make([]Member, len(fields))
	var off uint32
	for i, f := range fields {
		members[i] = Member{Name: f.Name, Offset: off, Type: f.Type}
		off += uint32(f.Type.Width()) //nolint:gosec
	}
	return Datatype{Class: ClassCompound, Members: members}
}

// Width returns the fixed number of bytes an element occupies.
func (d Datatype) Width() int {
	switch d.Class {
	case ClassFloat, ClassInt:
		return int(d.Size)
	case ClassString:
		return stringRefSize
	case ClassArray:
		if d.Base == nil {
			return 0
		}
		return d.Base.Width() * d.count()
	case ClassCompound:
		w := 0
		for _, m := range d.Members {
			if end := int(m.Offset) + m.Type.Width(); end > w {
				w = end
			}
		}
		return w
	default:
		return 0
	}
}

func (d Datatype) count() int {
	n := 1
	for _, x := range d.Dims {
		n *= int(x)
	}
	return n
}

// Member returns the compound member called name.
func (d Datatype) Member(name string) (Member, bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// hasStrings reports whether elements of d reference a string heap.
func (d Datatype) hasStrings() bool {
	switch d.Class {
	case ClassString:
		return true
	case ClassCompound:
		for _, m := range d.Members {
			if m.Type.hasStrings() {
				return true
			}
		}
	}
	return false
}

// Validate checks d is well formed.
func (d Datatype) Validate() error {
	switch d.Class {
	case ClassFloat:
		if d.Size != 4 && d.Size != 8 {
			return fmt.Errorf("%w: float size %d", ErrType, d.Size)
		}
	case ClassInt:
		if d.Size != 1 && d.Size != 2 && d.Size != 4 && d.Size != 8 {
			return fmt.Errorf("%w: int size %d", ErrType, d.Size)
		}
	case ClassString:
	case ClassArray:
		if d.Base == nil || len(d.Dims) == 0 {
			return fmt.Errorf("%w: array without base or dims", ErrType)
		}
		if d.Base.Class == ClassString || d.Base.Class == ClassCompound {
			return fmt.Errorf("%w: arrays hold numeric elements only", ErrType)
		}
		return d.Base.Validate()
	case ClassCompound:
		if len(d.Members) == 0 {
			return fmt.Errorf("%w: compound without members", ErrType)
		}
		for _, m := range d.Members {
			if err := m.Type.Validate(); err != nil {
				return fmt.Errorf("member %s: %w", m.Name, err)
			}
		}
	default:
		return fmt.Errorf("%w: class %d", ErrType, d.Class)
	}
	return nil
}

// Equal reports structural equality.
func (d Datatype) Equal(o Datatype) bool {
	if d.Class != o.Class {
		return false
	}
	switch d.Class {
	case ClassFloat:
		return d.Size == o.Size && d.Order == o.Order
	case ClassInt:
		return d.Size == o.Size && d.Order == o.Order && d.Signed == o.Signed
	case ClassString:
		return true
	case ClassArray:
		if d.Base == nil || o.Base == nil || len(d.Dims) != len(o.Dims) {
			return false
		}
		for i := range d.Dims {
			if d.Dims[i] != o.Dims[i] {
				return false
			}
		}
		return d.Base.Equal(*o.Base)
	case ClassCompound:
		if len(d.Members) != len(o.Members) {
			return false
		}
		for i := range d.Members {
			a, b := d.Members[i], o.Members[i]
			if a.Name != b.Name || a.Offset != b.Offset || !a.Type.Equal(b.Type) {
				return false
			}
		}
		return true
	}
	return false
}

func (d Datatype) String() string {
	switch d.Class {
	case ClassFloat:
		return fmt.Sprintf("float%d%s", int(d.Size)*8, d.Order)
	case ClassInt:
		if d.Signed {
			return fmt.Sprintf("int%d", int(d.Size)*8)
		}
		return fmt.Sprintf("uint%d", int(d.Size)*8)
	case ClassString:
		return "vlen-string"
	case ClassArray:
		return fmt.Sprintf("%v%v", d.Base, d.Dims)
	case ClassCompound:
		parts := make([]string, len(d.Members))
		for i, m := range d.Members {
			parts[i] = fmt.Sprintf("%s:%v@%d", m.Name, m.Type, m.Offset)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("class(%d)", d.Class)
}

func (d Datatype) encode(e *encoder) {
	e.u8(uint8(d.Class))
	switch d.Class {
	case ClassFloat:
		e.u8(d.Size)
		e.u8(uint8(d.Order))
	case ClassInt:
		e.u8(d.Size)
		e.u8(uint8(d.Order))
		e.bool(d.Signed)
	case ClassArray:
		e.u8(uint8(len(d.Dims))) //nolint:gosec
		for _, x := range d.Dims {
			e.u32(x)
		}
		d.Base.encode(e)
	case ClassCompound:
		e.u16(uint16(len(d.Members))) //nolint:gosec
		for _, m := range d.Members {
			e.str(m.Name)
			e.u32(m.Offset)
			m.Type.encode(e)
		}
	}
}

func decodeDatatype(dec *decoder, depth int) Datatype {
	if depth > 8 {
		dec.fail()
		return Datatype{}
	}
	d := Datatype{Class: Class(dec.u8())}
	switch d.Class {
	case ClassFloat:
		d.Size = dec.u8()
		d.Order = ByteOrder(dec.u8())
	case ClassInt:
		d.Size = dec.u8()
		d.Order = ByteOrder(dec.u8())
		d.Signed = dec.bool()
	case ClassString:
	case ClassArray:
		n := int(dec.u8())
		d.Dims = make([]uint32, 0, n)
		for i := 0; i < n; i++ {
			d.Dims = append(d.Dims, dec.u32())
		}
		base := decodeDatatype(dec, depth+1)
		d.Base = &base
	case ClassCompound:
		n := int(dec.u16())
		for i := 0; i < n && dec.err == nil; i++ {
			var m Member
			m.Name = dec.str()
			m.Offset = dec.u32()
			m.Type = decodeDatatype(dec, depth+1)
			d.Members = append(d.Members, m)
		}
	default:
		dec.fail()
	}
	return d
}
