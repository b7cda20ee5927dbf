package image

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"unicode/utf16"
)

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

type ciffEntry struct {
	tag  uint16
	data []byte
}

// ciffHeap lays out the values, then the directory, then the directory
// offset. Entries with storage bits 01 keep their 8 bytes in the record.
func ciffHeap(entries ...ciffEntry) []byte {
	var values []byte
	dir := le16(uint16(len(entries)))
	for _, e := range entries {
		dir = append(dir, le16(e.tag)...)
		if e.tag>>14 == 1 {
			rec := make([]byte, 8)
			copy(rec, e.data)
			dir = append(dir, rec...)
			continue
		}
		dir = append(dir, le32(uint32(len(e.data)))...)
		dir = append(dir, le32(uint32(len(values)))...)
		values = append(values, e.data...)
	}
	out := append(values, dir...)
	return append(out, le32(uint32(len(values)))...)
}

func crwFile(root []byte) []byte {
	h := []byte("II\x1a\x00\x00\x00HEAPCCDR")
	h = append(h, le16(2)...) // minor
	h = append(h, le16(1)...) // major
	h = append(h, make([]byte, 8)...)
	return append(h, root...)
}

// nestedCIFF wraps inner in depth image-properties subdirectories.
func nestedCIFF(depth int, inner ...ciffEntry) []byte {
	heap := ciffHeap(inner...)
	for i := 0; i < depth; i++ {
		heap = ciffHeap(ciffEntry{0x300A, heap})
	}
	return heap
}

func TestParseCRW(t *testing.T) {
	info := append(le32(2160), le32(1440)...)
	info = append(info, le32(0x3F800000)...)
	props := ciffHeap(
		ciffEntry{0x080A, []byte("Canon\x00Canon EOS D30\x00")},
		ciffEntry{0x2807, ciffHeap(ciffEntry{0x0810, []byte("Ann\x00")})},
		ciffEntry{0x5817, le32(1234567)},
	)
	m := parse(t, CRW, crwFile(ciffHeap(
		ciffEntry{0x300A, props},
		ciffEntry{0x1810, info},
		ciffEntry{0x2005, make([]byte, 32)},
	)))
	if m.Warnings != nil {
		t.Errorf("warnings: %v", m.Warnings)
	}
	wantStr(t, m, "CRW:CIFFVersion", "1.2")
	wantStr(t, m, "Make", "Canon")
	wantStr(t, m, "Model", "Canon EOS D30")
	wantStr(t, m, "CRW:OwnerName", "Ann")
	wantUInt(t, m, "CRW:FileNumber", 1234567)
	wantUInt(t, m, "File:ImageWidth", 2160)
	wantUInt(t, m, "File:ImageHeight", 1440)
	if n, ok := m.Attrs.Get("CRW:RawDataLength"); !ok || n.String() != "32" {
		t.Errorf("CRW:RawDataLength = %v", n)
	}
}

func TestParseCRWNesting(t *testing.T) {
	tests := []struct {
		depth int
		found bool
	}{
		{1, true},
		{8, true},
		{9, false},
		{20, false},
	}
	for _, tt := range tests {
		m := parse(t, CRW, crwFile(nestedCIFF(tt.depth, ciffEntry{0x0810, []byte("Ann\x00")})))
		if got := m.Attrs.Contains("CRW:OwnerName"); got != tt.found {
			t.Errorf("depth %d: OwnerName found = %v", tt.depth, got)
		}
		if !tt.found && (m.Warnings == nil || !strings.Contains(m.Warnings.Error(), "nesting too deep")) {
			t.Errorf("depth %d: warnings = %v", tt.depth, m.Warnings)
		}
	}
}

func TestParseCRWMalformed(t *testing.T) {
	tests := []struct {
		name     string
		root     []byte
		wantWarn string
	}{
		{"directory past the heap", append(make([]byte, 8), le32(0xFFFF)...), "exceeds data length"},
		{"too many entries", append(le16(5000), le32(0)...), "limit is 1000"},
		{"truncated entries", append(le16(3), le32(0)...), "exceeds data length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, CRW, crwFile(tt.root))
			if m.Warnings == nil || !strings.Contains(m.Warnings.Error(), tt.wantWarn) {
				t.Errorf("warnings = %v, want %q", m.Warnings, tt.wantWarn)
			}
		})
	}
}

func utf16le(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, le16(u)...)
	}
	return append(out, 0, 0)
}

type x3fSection struct {
	typ  string
	data []byte
}

// x3fFile places the sections after the 40-byte header, then the
// directory, then its offset.
func x3fFile(sections ...x3fSection) []byte {
	h := []byte("FOVb")
	h = append(h, le32(2<<16|3)...)
	h = append(h, bytes.Repeat([]byte{0xAB}, 16)...)
	h = append(h, le32(0)...)
	h = append(h, le32(2268)...)
	h = append(h, le32(1512)...)
	h = append(h, le32(90)...)
	dir := []byte("SECd")
	dir = append(dir, le32(2<<16)...)
	dir = append(dir, le32(uint32(len(sections)))...)
	for _, s := range sections {
		dir = append(dir, le32(uint32(len(h)))...)
		dir = append(dir, le32(uint32(len(s.data)))...)
		dir = append(dir, s.typ...)
		h = append(h, s.data...)
	}
	off := uint32(len(h))
	return append(append(h, dir...), le32(off)...)
}

// x3fProp builds a SECp section. Offsets count UTF-16 characters from the
// start of the character data.
func x3fProp(pairs ...[2]string) []byte {
	var chars []byte
	var offsets []byte
	for _, p := range pairs {
		for _, s := range p {
			if strings.HasPrefix(s, "@") {
				offsets = append(offsets, le32(9999)...)
				continue
			}
			offsets = append(offsets, le32(uint32(len(chars)/2))...)
			chars = append(chars, utf16le(s)...)
		}
	}
	b := []byte("SECp")
	b = append(b, le32(2<<16)...)
	b = append(b, le32(uint32(len(pairs)))...)
	b = append(b, le32(0)...)
	b = append(b, le32(0)...)
	b = append(b, le32(uint32(len(chars)/2))...)
	return append(append(b, offsets...), chars...)
}

func TestParseX3F(t *testing.T) {
	jpg := []byte("\xFF\xD8\xFF\xD9")
	preview := append(make([]byte, 28), jpg...)
	copy(preview, "SECi")
	copy(preview[8:], le32(18))

	m := parse(t, X3F, x3fFile(
		x3fSection{"IMA2", []byte("SECi\x00\x00\x02\x00")},
		x3fSection{"IMA2", preview},
		x3fSection{"PROP", x3fProp(
			[2]string{"CAMMANUF", "Ignored"},
			[2]string{"CAMMODEL", "SD9"},
			[2]string{"ISO", "100"},
			[2]string{"LENSMODEL", "18-50mm Ø"},
			[2]string{"WB", "Auto"},
			[2]string{"@", "Orphan"},
			[2]string{"BADVALUE", "@"},
		)},
	))
	if m.Warnings != nil {
		t.Errorf("warnings: %v", m.Warnings)
	}
	wantStr(t, m, "Make", "SIGMA")
	wantStr(t, m, "Model", "SD9")
	wantStr(t, m, "X3F:FileVersion", "2.3")
	wantStr(t, m, "X3F:Rotation", "Rotate 90 CW")
	wantStr(t, m, "X3F:LensType", "18-50mm Ø")
	wantStr(t, m, "X3F:WB", "Auto")
	wantStr(t, m, "X3F:BADVALUE", "")
	wantUInt(t, m, "File:ImageWidth", 2268)
	if iso, ok := m.Attrs.GetDouble("ISO"); !ok || iso != 100 {
		t.Errorf("ISO = %v (%v)", iso, ok)
	}
	if m.Attrs.Contains("X3F:") {
		t.Error("a property with an out-of-range name was stored")
	}
	if !bytes.Equal(m.Preview, jpg) {
		t.Errorf("Preview = %q", m.Preview)
	}
}

func TestParseX3FMalformed(t *testing.T) {
	tests := []struct {
		name     string
		file     []byte
		wantWarn string
	}{
		{"bad directory magic", append(x3fFile()[:40], "SECx\x00\x00\x00\x00\x00\x00\x00\x00\x28\x00\x00\x00"...), "directory magic"},
		{"bad PROP magic", x3fFile(x3fSection{"PROP", make([]byte, 24)}), "PROP section magic"},
		{"PROP count past the section", x3fFile(x3fSection{"PROP", append([]byte("SECp\x00\x00\x02\x00\x10\x00\x00\x00"), make([]byte, 12)...)}), "16 properties"},
		{"directory offset past the end", append(make([]byte, 40), le32(0xFFFFFF)...), "exceeds data length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copy(tt.file, "FOVb")
			m := parse(t, X3F, tt.file)
			if m.Warnings == nil || !strings.Contains(m.Warnings.Error(), tt.wantWarn) {
				t.Errorf("warnings = %v, want %q", m.Warnings, tt.wantWarn)
			}
		})
	}
}
