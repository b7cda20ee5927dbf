package ifd

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
)

func TestParseHeaderBigTIFF(t *testing.T) {
	data := []byte{0x49, 0x49, 0x2B, 0x00, 0x08, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if h.FirstIFD != 16 || !h.BigTIFF {
		t.Errorf("header = %+v, want offset 16 and BigTIFF", h)
	}
	if h.Size() != 16 {
		t.Errorf("Size() = %d", h.Size())
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		relaxed   []uint16
		wantOff   uint64
		wantOrder endian.ByteOrder
		wantErr   bool
	}{
		{"classic LE", []byte{'I', 'I', 0x2A, 0, 8, 0, 0, 0}, nil, 8, endian.LittleEndian, false},
		{"classic BE", []byte{'M', 'M', 0, 0x2A, 0, 0, 0, 8}, nil, 8, endian.BigEndian, false},
		{"RW2 rejected by default", []byte{'I', 'I', 0x55, 0, 0x18, 0, 0, 0}, nil, 0, 0, true},
		{"RW2 relaxed", []byte{'I', 'I', 0x55, 0, 0x18, 0, 0, 0}, []uint16{MagicPanasonicRW2}, 0x18, endian.LittleEndian, false},
		{"ORF relaxed", []byte{'I', 'I', 'R', 'O', 8, 0, 0, 0}, []uint16{MagicOlympusORF, MagicOlympusORF2}, 8, endian.LittleEndian, false},
		{"bad marker", []byte{'X', 'X', 0x2A, 0, 8, 0, 0, 0}, nil, 0, 0, true},
		{"truncated", []byte{'I', 'I', 0x2A}, nil, 0, 0, true},
		{"BigTIFF bad offset size", []byte{'I', 'I', 0x2B, 0, 4, 0, 0, 0, 16, 0, 0, 0, 0, 0, 0, 0}, nil, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.data, tt.relaxed...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", h)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if h.FirstIFD != tt.wantOff || h.Order != tt.wantOrder || h.BigTIFF {
				t.Errorf("header = %+v", h)
			}
		})
	}
}

func TestParseHeaderErrorKinds(t *testing.T) {
	_, err := ParseHeader([]byte{'I', 'I', 0x99, 0, 8, 0, 0, 0})
	var magic *core.InvalidTiffMagicError
	if !errors.As(err, &magic) || magic.Magic != 0x99 {
		t.Errorf("expected InvalidTiffMagicError(0x99), got %v", err)
	}
	_, err = ParseHeader([]byte{'Q', 'Q', 0x2A, 0, 8, 0, 0, 0})
	if !errors.Is(err, core.ErrInvalidByteOrderMarker) {
		t.Errorf("expected ErrInvalidByteOrderMarker, got %v", err)
	}
}

// buildTIFF encodes a header plus one directory made of fields.
func buildTIFF(order endian.ByteOrder, fields ...Field) []byte {
	b := NewBuilder(order)
	for _, f := range fields {
		b.Add(f)
	}
	out := EncodeHeader(order, 8)
	return append(out, b.Encode(8, 0)...)
}

func sampleFields(o endian.ByteOrder) []Field {
	return []Field{
		ASCII(0x010F, "Canon"),
		Shorts(o, 0x0112, 6),
		Rationals(o, 0x011A, endian.URational{Num: 72, Den: 1}),
		SRationals(o, 0x9204, endian.Rational{Num: -1, Den: 3}),
		Rationals(o, 0x829D, endian.URational{Num: 28, Den: 0}),
		Longs(o, 0xA002, 4000, 3000),
		Undefined(0x9000, []byte("0232")),
		Doubles(o, 0xC000, 1.5),
		SShorts(o, 0xC001, -7),
	}
}

func TestByteOrderSymmetry(t *testing.T) {
	read := func(o endian.ByteOrder) []attrs.Value {
		data := buildTIFF(o, sampleFields(o)...)
		r, h, err := Open(data)
		if err != nil {
			t.Fatal(err)
		}
		d, err := r.ReadIFD(h.FirstIFD)
		if err != nil {
			t.Fatal(err)
		}
		var out []attrs.Value
		for _, e := range d.Entries {
			out = append(out, e.Value)
		}
		return out
	}
	le := read(endian.LittleEndian)
	be := read(endian.BigEndian)
	if len(le) != len(sampleFields(endian.LittleEndian)) || len(le) != len(be) {
		t.Fatalf("entry counts: le=%d be=%d", len(le), len(be))
	}
	for i := range le {
		if !le[i].Equal(be[i]) {
			t.Errorf("entry %d differs: LE %v, BE %v", i, le[i], be[i])
		}
	}
}

func TestReadIFDValues(t *testing.T) {
	o := endian.BigEndian
	data := buildTIFF(o, sampleFields(o)...)
	r, h, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		t.Fatal(err)
	}

	mk, ok := d.Find(0x010F)
	if !ok {
		t.Fatal("Make missing")
	}
	if s, _ := mk.Value.AsStr(); s != "Canon" {
		t.Errorf("Make = %q", s)
	}
	if mk.DataOffset < 0 {
		t.Error("6-byte string should be out of line")
	}

	or, _ := d.Find(0x0112)
	if v, ok := or.Value.AsUInt(); !ok || v != 6 {
		t.Errorf("Orientation = %v", or.Value)
	}
	if or.DataOffset != -1 {
		t.Error("short should be inline")
	}

	fn, _ := d.Find(0x829D)
	if n, den, ok := fn.Value.AsURational(); !ok || n != 28 || den != 0 {
		t.Errorf("zero-denominator rational = %v", fn.Value)
	}

	dims, _ := d.Find(0xA002)
	list, ok := dims.Value.AsList()
	if !ok || len(list) != 2 {
		t.Fatalf("dims = %v", dims.Value)
	}
	if got := dims.Uints(o); got[0] != 4000 || got[1] != 3000 {
		t.Errorf("Uints = %v", got)
	}

	bias, _ := d.Find(0x9204)
	if n, den, ok := bias.Value.AsRational(); !ok || n != -1 || den != 3 {
		t.Errorf("bias = %v", bias.Value)
	}
	if d.Next != 0 {
		t.Errorf("Next = %d", d.Next)
	}
}

func TestEmptyIFD(t *testing.T) {
	data := []byte{'I', 'I', 0x2A, 0, 8, 0, 0, 0, 0, 0, 0x20, 0, 0, 0}
	r, h, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Entries) != 0 || d.Next != 0x20 {
		t.Errorf("got %d entries, next %d", len(d.Entries), d.Next)
	}
}

func TestValueOverflow(t *testing.T) {
	if _, err := ValueSize(8, math.MaxUint32); err == nil {
		t.Fatal("u32::MAX × 8 must overflow")
	} else {
		var ov *core.ValueSizeOverflowError
		if !errors.As(err, &ov) || ov.FormatSize != 8 {
			t.Errorf("wrong error %v", err)
		}
	}
	if _, err := ValueSize(1, 1<<33); err == nil {
		t.Error("count 2^33 must overflow")
	}
	if n, err := ValueSize(8, 3); err != nil || n != 24 {
		t.Errorf("ValueSize(8,3) = %d, %v", n, err)
	}
}

func TestBadEntrySkipped(t *testing.T) {
	o := endian.LittleEndian
	data := EncodeHeader(o, 8)
	data = o.AppendUint16(data, 3)
	// URational with count u32::MAX: overflow.
	data = o.AppendUint16(data, 0x829A)
	data = o.AppendUint16(data, uint16(FormatURational))
	data = o.AppendUint32(data, math.MaxUint32)
	data = o.AppendUint32(data, 0)
	// Out-of-bounds string.
	data = o.AppendUint16(data, 0x010F)
	data = o.AppendUint16(data, uint16(FormatString))
	data = o.AppendUint32(data, 100)
	data = o.AppendUint32(data, 5000)
	// Valid short.
	data = o.AppendUint16(data, 0x0112)
	data = o.AppendUint16(data, uint16(FormatUInt16))
	data = o.AppendUint32(data, 1)
	data = o.AppendUint32(data, 1)
	data = o.AppendUint32(data, 0)

	r, h, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		t.Fatalf("one bad entry must not fail the IFD: %v", err)
	}
	if len(d.Entries) != 1 || d.Entries[0].Tag != 0x0112 {
		t.Fatalf("entries = %+v", d.Entries)
	}
	warn := r.Warnings()
	if warn == nil {
		t.Fatal("expected warnings")
	}
	var ov *core.ValueSizeOverflowError
	if !errors.As(warn, &ov) {
		t.Errorf("warnings missing overflow: %v", warn)
	}
	var oob *core.ValueOutOfBoundsError
	if !errors.As(warn, &oob) {
		t.Errorf("warnings missing out-of-bounds: %v", warn)
	}
}

func TestBigTIFFEntries(t *testing.T) {
	o := endian.LittleEndian
	data := []byte{'I', 'I', 0x2B, 0, 8, 0, 0, 0}
	data = o.AppendUint64(data, 16)
	data = o.AppendUint64(data, 2)
	// Make, 6 bytes inline in the 8-byte field.
	data = o.AppendUint16(data, 0x010F)
	data = o.AppendUint16(data, uint16(FormatString))
	data = o.AppendUint64(data, 6)
	data = append(data, 'S', 'o', 'n', 'y', 0, 0, 0, 0)
	// Count 2^33 bytes: overflow check, not a clamp.
	data = o.AppendUint16(data, 0x02BC)
	data = o.AppendUint16(data, uint16(FormatUInt8))
	data = o.AppendUint64(data, 1<<33)
	data = o.AppendUint64(data, 64)
	data = o.AppendUint64(data, 0)

	r, h, err := Open(data)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Entries) != 1 {
		t.Fatalf("entries = %d", len(d.Entries))
	}
	if s, _ := d.Entries[0].Value.AsStr(); s != "Sony" {
		t.Errorf("Make = %q", s)
	}
	var ov *core.ValueSizeOverflowError
	if !errors.As(r.Warnings(), &ov) || ov.Count != 1<<33 {
		t.Errorf("expected overflow warning, got %v", r.Warnings())
	}
}

func TestIfdFatalErrors(t *testing.T) {
	o := endian.LittleEndian
	data := EncodeHeader(o, 8)
	data = o.AppendUint16(data, 10001)
	r, h, _ := Open(data)
	_, err := r.ReadIFD(h.FirstIFD)
	var many *core.TooManyIfdEntriesError
	if !errors.As(err, &many) || many.Limit != MaxEntries {
		t.Errorf("expected TooManyIfdEntries, got %v", err)
	}

	_, err = r.ReadIFD(4096)
	var oob *core.IfdOffsetOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Errorf("expected IfdOffsetOutOfBounds, got %v", err)
	}
}

func TestRebasedReader(t *testing.T) {
	o := endian.BigEndian
	inner := NewBuilder(o)
	inner.Add(ASCII(0x0001, "rebased value"))
	prefix := []byte("VENDOR\x00\x00")
	data := append(append([]byte{}, prefix...), inner.Encode(0, 0)...)

	r := NewReader(data, endian.LittleEndian).Rebased(len(prefix), o)
	d, err := r.ReadIFD(0)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := d.Entries[0].Value.AsStr(); s != "rebased value" {
		t.Errorf("value = %q", s)
	}
	if d.Entries[0].DataOffset < int64(len(prefix)) {
		t.Errorf("DataOffset %d not absolute", d.Entries[0].DataOffset)
	}
}

func TestBuilderLayout(t *testing.T) {
	o := endian.LittleEndian
	b := NewBuilder(o)
	b.Add(ASCII(0x0110, "EOS"))
	b.Add(ASCII(0x010F, "Canon"))
	b.Add(ASCII(0x010F, "Nikon"))
	if b.Len() != 2 {
		t.Fatalf("Add did not replace: %d fields", b.Len())
	}
	// 2 + 2×12 + 4 + "Nikon\0" (6); "EOS\0" is inline.
	if b.Size() != 36 {
		t.Errorf("Size() = %d", b.Size())
	}
	enc := b.Encode(8, 0)
	if uint32(len(enc)) != b.Size() {
		t.Errorf("encoded %d bytes, Size() says %d", len(enc), b.Size())
	}
	// Entries sorted by tag.
	if o.Uint16(enc[2:]) != 0x010F {
		t.Errorf("first tag = %#x", o.Uint16(enc[2:]))
	}
	if !bytes.Contains(enc, []byte("Nikon\x00")) {
		t.Error("out-of-line string missing")
	}
}
