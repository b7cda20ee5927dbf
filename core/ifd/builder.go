package ifd

import (
	"math"
	"sort"

	"github.com/ankit-chaubey/metasurgery/core/endian"
)

// Field is one entry to be serialised. Data is already encoded in the byte
// order the directory will be written in.
type Field struct {
	Tag    uint16
	Format Format
	Count  uint32
	Data   []byte
}

// Builder accumulates fields for one classic-TIFF directory.
type Builder struct {
	order  endian.ByteOrder
	fields []Field
}

func NewBuilder(order endian.ByteOrder) *Builder {
	return &Builder{order: order}
}

func (b *Builder) Order() endian.ByteOrder { return b.order }
func (b *Builder) Len() int                { return len(b.fields) }

// Add stores f, replacing any field with the same tag.
func (b *Builder) Add(f Field) {
	for i := range b.fields {
		if b.fields[i].Tag == f.Tag {
			b.fields[i] = f
			return
		}
	}
	b.fields = append(b.fields, f)
}

func (b *Builder) Has(tag uint16) bool {
	for _, f := range b.fields {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

func (b *Builder) Remove(tag uint16) {
	for i := range b.fields {
		if b.fields[i].Tag == tag {
			b.fields = append(b.fields[:i], b.fields[i+1:]...)
			return
		}
	}
}

// Fields returns the fields sorted by tag, the order TIFF requires.
func (b *Builder) Fields() []Field {
	out := append([]Field(nil), b.fields...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Size is the encoded length: count, entries, next pointer, then every
// out-of-line value padded to an even length.
func (b *Builder) Size() uint32 {
	size := uint32(2 + 12*len(b.fields) + 4)
	for _, f := range b.fields {
		if len(f.Data) > 4 {
			size += uint32(pad2(len(f.Data)))
		}
	}
	return size
}

// Encode lays the directory out as if it starts at offset at (relative to
// the TIFF base) and links it to next. Out-of-line values follow the entry
// table in tag order.
func (b *Builder) Encode(at, next uint32) []byte {
	fields := b.Fields()
	o := b.order
	out := make([]byte, 0, b.Size())
	out = o.AppendUint16(out, uint16(len(fields)))

	dataAt := at + uint32(2+12*len(fields)+4)
	var tail []byte
	for _, f := range fields {
		out = o.AppendUint16(out, f.Tag)
		out = o.AppendUint16(out, uint16(f.Format))
		out = o.AppendUint32(out, f.Count)
		if len(f.Data) <= 4 {
			var inline [4]byte
			copy(inline[:], f.Data)
			out = append(out, inline[:]...)
			continue
		}
		out = o.AppendUint32(out, dataAt+uint32(len(tail)))
		tail = append(tail, f.Data...)
		if len(f.Data)%2 == 1 {
			tail = append(tail, 0)
		}
	}
	out = o.AppendUint32(out, next)
	return append(out, tail...)
}

func pad2(n int) int { return n + n%2 }

// Field constructors. Each encodes its values in order.

func ASCII(tag uint16, s string) Field {
	data := append([]byte(s), 0)
	return Field{Tag: tag, Format: FormatString, Count: uint32(len(data)), Data: data}
}

func UTF8(tag uint16, s string) Field {
	data := append([]byte(s), 0)
	return Field{Tag: tag, Format: FormatUtf8, Count: uint32(len(data)), Data: data}
}

func Undefined(tag uint16, data []byte) Field {
	return Field{Tag: tag, Format: FormatUndefined, Count: uint32(len(data)), Data: append([]byte(nil), data...)}
}

func Bytes(tag uint16, data []byte) Field {
	return Field{Tag: tag, Format: FormatUInt8, Count: uint32(len(data)), Data: append([]byte(nil), data...)}
}

func Shorts(o endian.ByteOrder, tag uint16, vals ...uint16) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint16(data, v)
	}
	return Field{Tag: tag, Format: FormatUInt16, Count: uint32(len(vals)), Data: data}
}

func SShorts(o endian.ByteOrder, tag uint16, vals ...int16) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint16(data, uint16(v))
	}
	return Field{Tag: tag, Format: FormatInt16, Count: uint32(len(vals)), Data: data}
}

func Longs(o endian.ByteOrder, tag uint16, vals ...uint32) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint32(data, v)
	}
	return Field{Tag: tag, Format: FormatUInt32, Count: uint32(len(vals)), Data: data}
}

func SLongs(o endian.ByteOrder, tag uint16, vals ...int32) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint32(data, uint32(v))
	}
	return Field{Tag: tag, Format: FormatInt32, Count: uint32(len(vals)), Data: data}
}

func Rationals(o endian.ByteOrder, tag uint16, vals ...endian.URational) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint32(data, v.Num)
		data = o.AppendUint32(data, v.Den)
	}
	return Field{Tag: tag, Format: FormatURational, Count: uint32(len(vals)), Data: data}
}

func SRationals(o endian.ByteOrder, tag uint16, vals ...endian.Rational) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint32(data, uint32(v.Num))
		data = o.AppendUint32(data, uint32(v.Den))
	}
	return Field{Tag: tag, Format: FormatSRational, Count: uint32(len(vals)), Data: data}
}

func Floats(o endian.ByteOrder, tag uint16, vals ...float32) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint32(data, math.Float32bits(v))
	}
	return Field{Tag: tag, Format: FormatFloat, Count: uint32(len(vals)), Data: data}
}

func Doubles(o endian.ByteOrder, tag uint16, vals ...float64) Field {
	var data []byte
	for _, v := range vals {
		data = o.AppendUint64(data, math.Float64bits(v))
	}
	return Field{Tag: tag, Format: FormatDouble, Count: uint32(len(vals)), Data: data}
}

// RawField re-emits a decoded entry unchanged. The entry must come from a
// reader using the same byte order as the builder.
func RawField(e *Entry) Field {
	return Field{Tag: e.Tag, Format: e.Format, Count: uint32(e.Count), Data: append([]byte(nil), e.Raw...)}
}
