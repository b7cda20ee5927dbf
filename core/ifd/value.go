package ifd

import (
	"bytes"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
)

// DecodeValue converts raw entry bytes to an attribute value. A single
// element becomes a scalar, several become a List. Undefined stays opaque
// bytes, and so do long UInt8 runs.
func DecodeValue(f Format, count uint64, raw []byte, order endian.ByteOrder) attrs.Value {
	switch f {
	case FormatString:
		return attrs.Str(TrimNUL(raw))
	case FormatUtf8:
		return attrs.Str(strings.ToValidUTF8(TrimNUL(raw), "�"))
	case FormatUndefined:
		return attrs.Bytes(raw)
	case FormatUnicode:
		return attrs.Str(decodeUTF16(raw, order))
	case FormatUInt8:
		if count == 1 {
			return attrs.UInt(uint32(raw[0]))
		}
		if count > 16 {
			return attrs.Bytes(raw)
		}
	}

	size := f.Size()
	n := int(count)
	if size == 0 || n*size > len(raw) {
		return attrs.Bytes(raw)
	}
	items := make([]attrs.Value, n)
	for i := 0; i < n; i++ {
		items[i] = decodeElement(f, raw[i*size:(i+1)*size], order)
	}
	if n == 1 {
		return items[0]
	}
	return attrs.List(items...)
}

func decodeElement(f Format, b []byte, order endian.ByteOrder) attrs.Value {
	switch f {
	case FormatUInt8:
		return attrs.UInt(uint32(b[0]))
	case FormatInt8:
		return attrs.Int(int32(int8(b[0])))
	case FormatUInt16:
		return attrs.UInt(uint32(order.Uint16(b)))
	case FormatInt16:
		return attrs.Int(int32(int16(order.Uint16(b))))
	case FormatUInt32, FormatIfd:
		return attrs.UInt(order.Uint32(b))
	case FormatInt32:
		return attrs.Int(int32(order.Uint32(b)))
	case FormatURational:
		return attrs.URational(order.Uint32(b), order.Uint32(b[4:]))
	case FormatSRational:
		return attrs.Rational(int32(order.Uint32(b)), int32(order.Uint32(b[4:])))
	case FormatFloat:
		return attrs.Float(math.Float32frombits(order.Uint32(b)))
	case FormatDouble:
		return attrs.Double(math.Float64frombits(order.Uint64(b)))
	case FormatComplex:
		return attrs.List(
			attrs.Float(math.Float32frombits(order.Uint32(b))),
			attrs.Float(math.Float32frombits(order.Uint32(b[4:]))),
		)
	case FormatUInt64, FormatIfd64:
		return attrs.UInt64(order.Uint64(b))
	case FormatInt64:
		return attrs.Int64(int64(order.Uint64(b)))
	}
	return attrs.Bytes(b)
}

// TrimNUL cuts s at the first NUL byte.
func TrimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func decodeUTF16(raw []byte, order endian.ByteOrder) string {
	e := unicode.LittleEndian
	if order == endian.BigEndian {
		e = unicode.BigEndian
	}
	out, err := unicode.UTF16(e, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return TrimNUL(out)
}
