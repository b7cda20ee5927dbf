package endian

import (
	"errors"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
)

func TestFromMarker(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteOrder
		wantErr error
	}{
		{"II", LittleEndian, nil},
		{"MM", BigEndian, nil},
		{"IM", 0, core.ErrInvalidByteOrderMarker},
		{"mm", 0, core.ErrInvalidByteOrderMarker},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FromMarker([]byte(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromMarkerShort(t *testing.T) {
	_, err := FromMarker([]byte("I"))
	var eof *core.UnexpectedEOFError
	if !errors.As(err, &eof) {
		t.Fatalf("expected UnexpectedEOFError, got %v", err)
	}
	if eof.Need != 2 || eof.Have != 1 {
		t.Errorf("eof = %+v", eof)
	}
}

func TestScalarReaders(t *testing.T) {
	le := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	be := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}

	u16le, _ := LittleEndian.U16(le, 0)
	u16be, _ := BigEndian.U16(be, 6)
	if u16le != 0x0201 || u16be != 0x0201 {
		t.Errorf("U16: le=%#x be=%#x", u16le, u16be)
	}

	u32le, _ := LittleEndian.U32(le, 0)
	u32be, _ := BigEndian.U32(be, 4)
	if u32le != 0x04030201 || u32be != 0x04030201 {
		t.Errorf("U32: le=%#x be=%#x", u32le, u32be)
	}

	u64le, _ := LittleEndian.U64(le, 0)
	u64be, _ := BigEndian.U64(be, 0)
	if u64le != 0x0807060504030201 || u64le != u64be {
		t.Errorf("U64: le=%#x be=%#x", u64le, u64be)
	}

	i16, _ := BigEndian.I16([]byte{0xFF, 0xFE}, 0)
	if i16 != -2 {
		t.Errorf("I16 = %d", i16)
	}

	f32, _ := BigEndian.F32([]byte{0x3F, 0x80, 0x00, 0x00}, 0)
	if f32 != 1.0 {
		t.Errorf("F32 = %v", f32)
	}
}

func TestReaderBounds(t *testing.T) {
	b := []byte{1, 2, 3}
	if _, err := LittleEndian.U32(b, 0); err == nil {
		t.Error("expected error reading u32 from 3 bytes")
	}
	if _, err := LittleEndian.U16(b, 2); err == nil {
		t.Error("expected error reading past end")
	}
	if _, err := LittleEndian.U16(b, -1); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestRationalZeroDenominator(t *testing.T) {
	r := URational{Num: 5, Den: 0}
	if _, ok := r.Float(); ok {
		t.Error("zero denominator must not produce a quotient")
	}
	if r.String() != "5/0" {
		t.Errorf("String() = %q", r.String())
	}
	s := Rational{Num: -1, Den: 3}
	if f, ok := s.Float(); !ok || f > -0.33 || f < -0.34 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
}

func TestParseExifDate(t *testing.T) {
	tm, err := ParseExifDate("2024:01:15 10:30:00\x00")
	if err != nil {
		t.Fatal(err)
	}
	if tm.Year() != 2024 || tm.Month() != 1 || tm.Hour() != 10 {
		t.Errorf("parsed %v", tm)
	}
	if FormatExifDate(tm) != "2024:01:15 10:30:00" {
		t.Errorf("format = %q", FormatExifDate(tm))
	}
}
