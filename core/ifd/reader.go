package ifd

import (
	"fmt"
	"math"
	"math/bits"

	log "github.com/dsoprea/go-logging"
	"github.com/hashicorp/go-multierror"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
)

// MaxEntries caps the entry count of a single directory.
const MaxEntries = 10000

var ifdLogger = log.NewLogger("ifd")

// Entry is one decoded directory entry.
type Entry struct {
	Tag    uint16
	Format Format
	Count  uint64
	// Raw holds the value bytes in the file's byte order, whether they were
	// inline or out of line.
	Raw []byte
	// DataOffset is the position of Raw within the reader's data, or -1 when
	// the value was stored inline in the entry.
	DataOffset int64
	// Pointer is the raw value-or-offset field. For IFD pointer tags stored
	// inline it equals the pointed-to offset.
	Pointer uint64
	Value   attrs.Value
}

// Uint returns element i as an unsigned integer. Works for every integral
// format, including Ifd and Ifd64.
func (e *Entry) Uint(order endian.ByteOrder, i int) (uint64, bool) {
	size := e.Format.Size()
	off := i * size
	if i < 0 || uint64(i) >= e.Count || off+size > len(e.Raw) {
		return 0, false
	}
	b := e.Raw[off:]
	switch e.Format {
	case FormatUInt8, FormatUndefined:
		return uint64(b[0]), true
	case FormatInt8:
		return uint64(int8(b[0])), true
	case FormatUInt16:
		return uint64(order.Uint16(b)), true
	case FormatInt16:
		return uint64(int16(order.Uint16(b))), true
	case FormatUInt32, FormatIfd:
		return uint64(order.Uint32(b)), true
	case FormatInt32:
		return uint64(int32(order.Uint32(b))), true
	case FormatUInt64, FormatIfd64, FormatInt64:
		return order.Uint64(b), true
	}
	return 0, false
}

// Uints returns every element as unsigned integers.
func (e *Entry) Uints(order endian.ByteOrder) []uint64 {
	out := make([]uint64, 0, e.Count)
	for i := 0; uint64(i) < e.Count; i++ {
		v, ok := e.Uint(order, i)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// IFD is one decoded directory.
type IFD struct {
	Offset  uint64
	Entries []Entry
	Next    uint64
}

// Find returns the first entry with tag.
func (d *IFD) Find(tag uint16) (*Entry, bool) {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// Reader decodes directories from an in-memory TIFF. Offsets found in the
// file are resolved relative to Base within Data, which lets MakerNote
// dialects that count from their own start share the parent buffer.
type Reader struct {
	data     []byte
	base     int
	order    endian.ByteOrder
	big      bool
	warnings *warnSink
}

// warnSink is shared between a reader and its rebased copies.
type warnSink struct {
	errs *multierror.Error
}

// NewReader returns a classic-TIFF reader over data with offsets relative to data[0].
func NewReader(data []byte, order endian.ByteOrder) *Reader {
	return &Reader{data: data, order: order, warnings: &warnSink{}}
}

// Open parses the header at the start of data and returns a reader plus the
// first IFD offset.
func Open(data []byte, relaxed ...uint16) (*Reader, Header, error) {
	h, err := ParseHeader(data, relaxed...)
	if err != nil {
		return nil, h, err
	}
	r := NewReader(data, h.Order)
	r.big = h.BigTIFF
	return r, h, nil
}

// Rebased returns a reader that shares r's data and warnings but resolves
// offsets relative to data[base].
func (r *Reader) Rebased(base int, order endian.ByteOrder) *Reader {
	return &Reader{data: r.data, base: base, order: order, big: r.big, warnings: r.warnings}
}

// Classic returns a copy of r that reads 12-byte classic entries, for
// vendor directories nested inside a BigTIFF.
func (r *Reader) Classic() *Reader {
	c := *r
	c.big = false
	return &c
}

func (r *Reader) Order() endian.ByteOrder { return r.order }
func (r *Reader) BigTIFF() bool           { return r.big }
func (r *Reader) Base() int               { return r.base }

// Data returns the bytes addressable from the reader's base.
func (r *Reader) Data() []byte {
	if r.base >= len(r.data) {
		return nil
	}
	return r.data[r.base:]
}

// Warnings returns every per-entry problem seen so far, or nil.
func (r *Reader) Warnings() error {
	return r.warnings.errs.ErrorOrNil()
}

func (r *Reader) warn(err error) {
	r.warnings.errs = multierror.Append(r.warnings.errs, err)
	ifdLogger.Warningf(nil, "%s", err.Error())
}

// ReadIFD decodes the directory at offset. A malformed entry is skipped and
// recorded as a warning; a bad offset or entry count fails the whole IFD.
func (r *Reader) ReadIFD(offset uint64) (*IFD, error) {
	data := r.Data()
	dataLen := uint64(len(data))
	countSize, entrySize, nextSize := uint64(2), uint64(12), uint64(4)
	if r.big {
		countSize, entrySize, nextSize = 8, 20, 8
	}
	if offset >= dataLen || offset+countSize > dataLen {
		return nil, &core.IfdOffsetOutOfBoundsError{Offset: offset, DataLen: dataLen}
	}

	var count uint64
	if r.big {
		count = r.order.Uint64(data[offset:])
	} else {
		count = uint64(r.order.Uint16(data[offset:]))
	}
	if count > MaxEntries {
		return nil, &core.TooManyIfdEntriesError{Count: count, Limit: MaxEntries}
	}

	d := &IFD{Offset: offset, Entries: make([]Entry, 0, count)}
	pos := offset + countSize
	for i := uint64(0); i < count; i++ {
		if pos+entrySize > dataLen {
			r.warn(fmt.Errorf("IFD at %d truncated after %d of %d entries", offset, i, count))
			return d, nil
		}
		e, err := r.readEntry(data, pos)
		pos += entrySize
		if err != nil {
			r.warn(fmt.Errorf("IFD at %d: skipping entry %d: %w", offset, i, err))
			continue
		}
		d.Entries = append(d.Entries, e)
	}

	if pos+nextSize <= dataLen {
		if r.big {
			d.Next = r.order.Uint64(data[pos:])
		} else {
			d.Next = uint64(r.order.Uint32(data[pos:]))
		}
	}
	return d, nil
}

func (r *Reader) readEntry(data []byte, pos uint64) (Entry, error) {
	e := Entry{
		Tag:        r.order.Uint16(data[pos:]),
		Format:     Format(r.order.Uint16(data[pos+2:])),
		DataOffset: -1,
	}
	inline := 4
	field := pos + 8
	if r.big {
		e.Count = r.order.Uint64(data[pos+4:])
		inline = 8
		field = pos + 12
		e.Pointer = r.order.Uint64(data[field:])
	} else {
		e.Count = uint64(r.order.Uint32(data[pos+4:]))
		e.Pointer = uint64(r.order.Uint32(data[field:]))
	}

	size := e.Format.Size()
	if size == 0 {
		return e, core.Structure("tag 0x%04X has unknown format %d", e.Tag, uint16(e.Format))
	}
	total, err := ValueSize(size, e.Count)
	if err != nil {
		return e, err
	}

	if total <= uint64(inline) {
		e.Raw = data[field : field+total]
	} else {
		off := e.Pointer
		end := off + total
		if end < off || end > uint64(len(data)) {
			return e, &core.ValueOutOfBoundsError{Offset: off, Size: total, DataLen: uint64(len(data))}
		}
		e.Raw = data[off:end]
		e.DataOffset = int64(r.base) + int64(off)
	}
	e.Value = DecodeValue(e.Format, e.Count, e.Raw, r.order)
	return e, nil
}

// ValueSize multiplies an element size by a count. Value blocks must be
// addressable with 32 bits, so anything larger is an overflow.
func ValueSize(size int, count uint64) (uint64, error) {
	hi, lo := bits.Mul64(uint64(size), count)
	if hi != 0 || lo > math.MaxUint32 {
		return 0, &core.ValueSizeOverflowError{FormatSize: uint64(size), Count: count}
	}
	return lo, nil
}
