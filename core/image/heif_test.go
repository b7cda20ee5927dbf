package image

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func box(typ string, parts ...[]byte) []byte {
	body := bytes.Join(parts, nil)
	out := binary.BigEndian.AppendUint32(nil, uint32(8+len(body)))
	return append(append(out, typ...), body...)
}

func fullBox(typ string, version byte, parts ...[]byte) []byte {
	return box(typ, append([]byte{version, 0, 0, 0}, bytes.Join(parts, nil)...))
}

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u64(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func infe(id uint16, typ, contentType string) []byte {
	b := append(u16(id), 0, 0)
	b = append(b, typ...)
	b = append(b, 0)
	if typ == "mime" {
		b = append(append(b, contentType...), 0)
	}
	return fullBox("infe", 2, b)
}

func iinf(entries ...[]byte) []byte {
	return fullBox("iinf", 0, u16(uint16(len(entries))), bytes.Join(entries, nil))
}

// ilocV1 holds items with 4-byte offsets and lengths and no base offset.
func ilocV1(items ...[]byte) []byte {
	return fullBox("iloc", 1, u16(0x4400), u16(uint16(len(items))), bytes.Join(items, nil))
}

// ilocItem is one single-extent item of ilocV1.
func ilocItem(id, method uint16, off, length uint32) []byte {
	return bytes.Join([][]byte{u16(id), u16(method), u16(0), u16(1), u32(off), u32(length)}, nil)
}

// heicWith lays out ftyp, meta and mdat. children is called with the file
// offset of the mdat payload.
func heicWith(mdat []byte, children func(mdatOff uint32) [][]byte) []byte {
	ftyp := box("ftyp", []byte("heic"), u32(0), []byte("mif1heic"))
	meta := fullBox("meta", 0, children(0)...)
	off := uint32(len(ftyp) + len(meta) + 8)
	meta = fullBox("meta", 0, children(off)...)
	out := append(ftyp, meta...)
	return append(out, box("mdat", mdat)...)
}

func TestParseHEIF(t *testing.T) {
	tiff := exifBlock(t, "Make", "Apple", "Model", "iPhone 15")
	prefixed := func(skip uint32, b []byte) []byte { return append(u32(skip), b...) }
	inMdat := func(payload []byte, length func(int) uint32) []byte {
		return heicWith(payload, func(off uint32) [][]byte {
			return [][]byte{
				fullBox("pitm", 0, u16(1)),
				iinf(infe(1, "Exif", "")),
				ilocV1(ilocItem(1, 0, off, length(len(payload)))),
			}
		})
	}
	exact := func(n int) uint32 { return uint32(n) }
	toEnd := func(int) uint32 { return 0 }
	inIdat := func(payload []byte) []byte {
		return heicWith(nil, func(uint32) [][]byte {
			return [][]byte{
				iinf(infe(1, "Exif", "")),
				ilocV1(ilocItem(1, 1, 0, uint32(len(payload)))),
				box("idat", payload),
			}
		})
	}
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:format>image/heic</dc:format>` +
		`</rdf:Description></rdf:RDF></x:xmpmeta>`

	tests := []struct {
		name     string
		file     []byte
		want     map[string]string
		fromFile bool
	}{
		{"mdat", inMdat(prefixed(0, tiff), exact), map[string]string{"Make": "Apple", "Model": "iPhone 15"}, true},
		{"Exif header after prefix", inMdat(prefixed(0, append([]byte("Exif\x00\x00"), tiff...)), exact), map[string]string{"Make": "Apple"}, true},
		{"prefix past the payload", inMdat(prefixed(1000, tiff), exact), map[string]string{"Make": "Apple"}, true},
		{"prefix inside the payload", inMdat(prefixed(2, tiff), exact), map[string]string{"Make": "Apple"}, true},
		{"zero length runs to the end", inMdat(prefixed(0, tiff), toEnd), map[string]string{"Make": "Apple"}, true},
		{"idat", inIdat(prefixed(0, tiff)), map[string]string{"Make": "Apple"}, false},
		{"item offset", heicWith(nil, func(uint32) [][]byte {
			return [][]byte{
				iinf(infe(1, "Exif", ""), infe(2, "hvc1", "")),
				ilocV1(ilocItem(1, 2, 0, 0), ilocItem(2, 1, 0, uint32(4+len(tiff)))),
				box("idat", prefixed(0, tiff)),
				fullBox("iref", 0, box("iloc", u16(1), u16(1), u16(2))),
			}
		}), map[string]string{"Make": "Apple"}, false},
		{"xmp item", heicWith([]byte(packet), func(off uint32) [][]byte {
			return [][]byte{
				iinf(infe(7, "mime", "application/rdf+xml")),
				ilocV1(ilocItem(7, 0, off, uint32(len(packet)))),
			}
		}), map[string]string{"DC:format": "image/heic"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, HEIC, tt.file)
			if m.Warnings != nil {
				t.Errorf("warnings: %v", m.Warnings)
			}
			wantStr(t, m, "HEIF:MajorBrand", "heic")
			for k, v := range tt.want {
				wantStr(t, m, k, v)
			}
			want := int64(-1)
			if tt.fromFile {
				want = int64(bytes.Index(tt.file, tiff))
			}
			if m.ExifOffset != want {
				t.Errorf("ExifOffset = %d, want %d", m.ExifOffset, want)
			}
		})
	}
}

func TestParseHEIFMalformed(t *testing.T) {
	tiff := exifBlock(t, "Make", "Apple")
	exifItem := iinf(infe(1, "Exif", ""))
	payload := append(u32(0), tiff...)
	idat := box("idat", make([]byte, 16))

	tests := []struct {
		name     string
		children [][]byte
		wantWarn string
	}{
		{"idat extent wraps around", [][]byte{
			exifItem,
			fullBox("iloc", 1, u16(0x8400), u16(1), u16(1), u16(1), u16(0), u16(1), u64(math.MaxUint64-4), u32(10)),
			idat,
		}, "exceeds data length 16"},
		{"base offset overflows", [][]byte{
			exifItem,
			fullBox("iloc", 1, u16(0x4480), u16(1), u16(1), u16(0), u16(0), u64(math.MaxUint64), u16(1), u32(8), u32(4)),
		}, "overflows base offset"},
		{"file extent past the end", [][]byte{
			exifItem,
			ilocV1(ilocItem(1, 0, 0xFFFFFFF0, 32)),
		}, "exceeds data length"},
		{"truncated iloc", [][]byte{
			exifItem,
			fullBox("iloc", 1, u16(0x4400), u16(1), u16(1), u16(0), u16(0), u16(1), u32(0)),
		}, "iloc box: unexpected end of data"},
		{"unknown construction method", [][]byte{
			exifItem,
			ilocV1(ilocItem(1, 3, 0, 4)),
		}, "construction method 3"},
		{"item references itself", [][]byte{
			exifItem,
			ilocV1(ilocItem(1, 2, 0, 0)),
			fullBox("iref", 0, box("iloc", u16(1), u16(1), u16(1))),
		}, "nested too deep"},
		{"extent index without reference", [][]byte{
			exifItem,
			fullBox("iloc", 1, u16(0x4404), u16(1), u16(1), u16(2), u16(0), u16(1), u32(2), u32(0), u32(0)),
			fullBox("iref", 0, box("iloc", u16(1), u16(1), u16(1))),
		}, "extent index 2 with 1 references"},
		{"no TIFF header", [][]byte{
			exifItem,
			ilocV1(ilocItem(1, 1, 0, 16)),
			idat,
		}, "has no TIFF header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := heicWith(payload, func(uint32) [][]byte { return tt.children })
			m := parse(t, HEIC, file)
			if m.Warnings == nil || !strings.Contains(m.Warnings.Error(), tt.wantWarn) {
				t.Errorf("warnings = %v, want %q", m.Warnings, tt.wantWarn)
			}
			if m.Attrs.Contains("Make") {
				t.Error("Make decoded from a broken item")
			}
		})
	}
}

func TestParseHEIFNoFtyp(t *testing.T) {
	if _, err := New(HEIC).Parse(bytes.NewReader(box("mdat", make([]byte, 8)))); err == nil {
		t.Error("accepted a file without ftyp")
	}
}
