// Package endian provides byte-order aware scalar readers and the rational
// types shared by every binary metadata decoder.
package endian

import (
	"encoding/binary"
	"math"

	"github.com/ankit-chaubey/metasurgery/core"
)

// ByteOrder is LittleEndian or BigEndian.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "Big-endian (Motorola, MM)"
	}
	return "Little-endian (Intel, II)"
}

// Marker returns the two-byte TIFF marker for o.
func (o ByteOrder) Marker() []byte {
	if o == BigEndian {
		return []byte("MM")
	}
	return []byte("II")
}

// Binary returns the encoding/binary implementation for o.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// FromMarker maps "II" to LittleEndian and "MM" to BigEndian.
func FromMarker(b []byte) (ByteOrder, error) {
	if len(b) < 2 {
		return 0, core.EOF(2, len(b))
	}
	switch {
	case b[0] == 'I' && b[1] == 'I':
		return LittleEndian, nil
	case b[0] == 'M' && b[1] == 'M':
		return BigEndian, nil
	}
	return 0, core.ErrInvalidByteOrderMarker
}

func need(b []byte, off, n int) error {
	if off < 0 || off+n > len(b) || off+n < off {
		have := len(b) - off
		if have < 0 {
			have = 0
		}
		return core.EOF(n, have)
	}
	return nil
}

func (o ByteOrder) U16(b []byte, off int) (uint16, error) {
	if err := need(b, off, 2); err != nil {
		return 0, err
	}
	return o.Binary().Uint16(b[off:]), nil
}

func (o ByteOrder) U32(b []byte, off int) (uint32, error) {
	if err := need(b, off, 4); err != nil {
		return 0, err
	}
	return o.Binary().Uint32(b[off:]), nil
}

func (o ByteOrder) U64(b []byte, off int) (uint64, error) {
	if err := need(b, off, 8); err != nil {
		return 0, err
	}
	return o.Binary().Uint64(b[off:]), nil
}

func (o ByteOrder) I16(b []byte, off int) (int16, error) {
	v, err := o.U16(b, off)
	return int16(v), err
}

func (o ByteOrder) I32(b []byte, off int) (int32, error) {
	v, err := o.U32(b, off)
	return int32(v), err
}

func (o ByteOrder) I64(b []byte, off int) (int64, error) {
	v, err := o.U64(b, off)
	return int64(v), err
}

func (o ByteOrder) F32(b []byte, off int) (float32, error) {
	v, err := o.U32(b, off)
	return math.Float32frombits(v), err
}

func (o ByteOrder) F64(b []byte, off int) (float64, error) {
	v, err := o.U64(b, off)
	return math.Float64frombits(v), err
}

// Uint16 and friends are the unchecked forms for callers that already
// validated the slice length.
func (o ByteOrder) Uint16(b []byte) uint16 { return o.Binary().Uint16(b) }
func (o ByteOrder) Uint32(b []byte) uint32 { return o.Binary().Uint32(b) }
func (o ByteOrder) Uint64(b []byte) uint64 { return o.Binary().Uint64(b) }

func (o ByteOrder) PutUint16(b []byte, v uint16) { o.Binary().PutUint16(b, v) }
func (o ByteOrder) PutUint32(b []byte, v uint32) { o.Binary().PutUint32(b, v) }
func (o ByteOrder) PutUint64(b []byte, v uint64) { o.Binary().PutUint64(b, v) }

// AppendUint16 appends v in o's byte order.
func (o ByteOrder) AppendUint16(dst []byte, v uint16) []byte {
	var b [2]byte
	o.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

// AppendUint32 appends v in o's byte order.
func (o ByteOrder) AppendUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	o.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// AppendUint64 appends v in o's byte order.
func (o ByteOrder) AppendUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	o.PutUint64(b[:], v)
	return append(dst, b[:]...)
}
