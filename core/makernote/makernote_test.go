package makernote

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

// notePos is where test fixtures place the MakerNote inside the parent
// buffer, to catch offsets resolved against the wrong base.
const notePos = 64

// parentWith returns a parent reader whose data holds note at notePos, and
// the MakerNote entry pointing at it.
func parentWith(order endian.ByteOrder, note []byte) (*ifd.Reader, *ifd.Entry) {
	data := make([]byte, notePos, notePos+len(note))
	copy(data, ifd.EncodeHeader(order, 8))
	data = append(data, note...)
	r := ifd.NewReader(data, order)
	return r, &ifd.Entry{
		Tag:        tags.TagMakerNote,
		Format:     ifd.FormatUndefined,
		Count:      uint64(len(note)),
		Raw:        data[notePos:],
		DataOffset: notePos,
	}
}

func TestFromMake(t *testing.T) {
	tests := []struct {
		make string
		want Vendor
	}{
		{"Canon", Canon},
		{"NIKON CORPORATION", Nikon},
		{"SONY", Sony},
		{"FUJIFILM", Fujifilm},
		{"OLYMPUS IMAGING CORP.  ", Olympus},
		{"OM Digital Solutions", Olympus},
		{"Panasonic", Panasonic},
		{"LEICA CAMERA AG", Leica},
		{"RICOH IMAGING COMPANY, LTD.", Pentax},
		{"SAMSUNG", Samsung},
		{"EASTMAN KODAK COMPANY", Kodak},
		{"SIGMA", Sigma},
		{"SANYO Electric Co.,Ltd.", Sanyo},
		{"CASIO COMPUTER CO.,LTD.", Casio},
		{"Apple", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := FromMake(tt.make); got != tt.want {
			t.Errorf("FromMake(%q) = %s, want %s", tt.make, got, tt.want)
		}
	}
}

func TestDetectLayouts(t *testing.T) {
	le, be := endian.LittleEndian, endian.BigEndian
	pad := make([]byte, 32)
	with := func(prefix string) []byte { return append([]byte(prefix), pad...) }

	nikon3 := append([]byte("Nikon\x00\x02\x10\x00\x00"), ifd.EncodeHeader(be, 8)...)
	nikon3 = append(nikon3, pad...)
	fuji := append([]byte("FUJIFILM"), 12, 0, 0, 0)
	fuji = append(fuji, pad...)

	tests := []struct {
		name   string
		v      Vendor
		note   []byte
		parent endian.ByteOrder
		want   Layout
	}{
		{"canon bare", Canon, pad, be, Layout{Order: be}},
		{"nikon type1", Nikon, pad, le, Layout{Order: le}},
		{"nikon type2", Nikon, with("Nikon\x00\x01\x00"), be, Layout{Offset: 8, Order: be}},
		{"nikon type3", Nikon, nikon3, le, Layout{Offset: 18, Order: be, Relative: true, Origin: 10}},
		{"sony header", Sony, with("SONY DSC \x00\x00\x00"), le, Layout{Offset: 12, Order: le}},
		{"olympus new", Olympus, with("OLYMPUS\x00MM\x00\x03"), le, Layout{Offset: 12, Order: be, Relative: true}},
		{"olympus old", Olympus, with("OLYMP\x00\x01\x00"), be, Layout{Offset: 8, Order: be}},
		{"panasonic", Panasonic, with("Panasonic\x00\x00\x00"), be, Layout{Offset: 12, Order: le}},
		{"fujifilm", Fujifilm, fuji, be, Layout{Offset: 12, Order: le, Relative: true}},
		{"pentax aoc", Pentax, with("AOC\x00MM"), le, Layout{Offset: 6, Order: be}},
		{"pentax long", Pentax, with("PENTAX \x00II"), be, Layout{Offset: 10, Order: le, Relative: true}},
		{"kodak info", Kodak, with("KDK INFO"), le, Layout{Offset: 8, Order: be}},
		{"sigma", Sigma, with("SIGMA\x00\x00\x00"), be, Layout{Offset: 8, Order: le}},
		{"sanyo", Sanyo, with("SANYO\x00\x01\x00"), le, Layout{Offset: 8, Order: le}},
		{"casio type2", Casio, with("QVC\x00\x00\x00"), be, Layout{Offset: 6, Order: le, Table: "Casio2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.v, tt.note, tt.parent)
			if !ok {
				t.Fatal("not detected")
			}
			if got != tt.want {
				t.Errorf("layout = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, ok := Detect(Fujifilm, []byte("FUJIFILM\xff\x00\x00\x00"), le); ok {
		t.Error("fujifilm offset past the blob accepted")
	}
	if _, ok := Detect(Leica, []byte{0, 0, 0, 0}, le); ok {
		t.Error("headerless leica with zero entries accepted")
	}
}

func TestSniff(t *testing.T) {
	if got := Sniff([]byte("Nikon\x00\x02\x10")); got != Nikon {
		t.Errorf("Sniff = %s", got)
	}
	if got := Sniff([]byte{0x0c, 0x00}); got != Unknown {
		t.Errorf("Sniff(bare) = %s", got)
	}
}

func TestDecodeCanon(t *testing.T) {
	o := endian.LittleEndian
	b := ifd.NewBuilder(o)
	settings := make([]int16, 23)
	settings[0] = int16(len(settings) * 2)
	settings[1] = 1  // MacroMode
	settings[3] = 3  // Quality
	settings[22] = 1 // LensType
	b.Add(ifd.SShorts(o, 0x0001, settings...))
	b.Add(ifd.ASCII(0x0006, "Canon EOS 5D Mark III JPEG"))
	b.Add(ifd.Longs(o, 0x0008, 1001234))
	b.Add(ifd.Longs(o, 0x0010, 0x80000001))
	b.Add(ifd.Shorts(o, 0x7777, 1))

	r, e := parentWith(o, b.Encode(notePos, 0))
	res, err := Decode(r, e, "Canon")
	if err != nil {
		t.Fatal(err)
	}
	if res.Vendor != Canon {
		t.Fatalf("vendor = %s", res.Vendor)
	}
	root := attrs.New()
	root.Set("Canon", attrs.Group(res.Attrs))

	want := map[string]attrs.Value{
		"Canon:CameraSettings:MacroMode": attrs.Str("Macro"),
		"Canon:CameraSettings:Quality":   attrs.Str("Fine"),
		"Canon:CameraSettings:LensType":  attrs.Str("Canon EF 50mm f/1.8"),
		"Canon:CanonImageType":           attrs.Str("Canon EOS 5D Mark III JPEG"),
		"Canon:FileNumber":               attrs.UInt(1001234),
		"Canon:CanonModelID":             attrs.Str("EOS-1D"),
		"Canon:Vendor":                   attrs.Str("Canon"),
	}
	for path, w := range want {
		got, ok := root.GetPath(path)
		if !ok || !got.Equal(w) {
			t.Errorf("%s = %v, want %v", path, got, w)
		}
	}
	if _, ok := res.Attrs.Get("Tag0x7777"); ok {
		t.Error("unknown vendor tag should not be reported")
	}
	if _, ok := root.GetPath("Canon:CameraSettings:SelfTimer"); !ok {
		t.Error("zero-valued field dropped")
	}
}

func TestDecodeNikonType3(t *testing.T) {
	// Embedded big-endian TIFF inside a little-endian parent; every offset
	// counts from the embedded header.
	be := endian.BigEndian
	preview := []byte{0xFF, 0xD8, 0xFF, 0xD9}

	pb := ifd.NewBuilder(be)
	pb.Add(ifd.Longs(be, tags.TagThumbnailOffset, 0))
	pb.Add(ifd.Longs(be, tags.TagThumbnailLength, uint32(len(preview))))

	mb := ifd.NewBuilder(be)
	mb.Add(ifd.Undefined(0x0001, []byte("0211")))
	mb.Add(ifd.ASCII(0x001D, "3012345"))
	mb.Add(ifd.Bytes(0x0025, []byte{0x48, 0, 0, 0, 0x01, 0x01, 0x54, 0, 0, 0, 0, 0, 0, 0}))
	mb.Add(ifd.Longs(be, 0x0011, 0))
	mb.Add(ifd.Shorts(be, 0x0087, 0))

	const mainAt = 8
	mainSize := mb.Size()
	previewIFDAt := mainAt + mainSize
	previewAt := previewIFDAt + pb.Size()
	pb.Add(ifd.Longs(be, tags.TagThumbnailOffset, previewAt))
	mb.Add(ifd.Longs(be, 0x0011, previewIFDAt))

	tiff := ifd.EncodeHeader(be, mainAt)
	tiff = append(tiff, mb.Encode(mainAt, 0)...)
	tiff = append(tiff, pb.Encode(previewIFDAt, 0)...)
	tiff = append(tiff, preview...)
	note := append([]byte("Nikon\x00\x02\x10\x00\x00"), tiff...)

	r, e := parentWith(endian.LittleEndian, note)
	res, err := Decode(r, e, "NIKON CORPORATION")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := res.Attrs.GetStr("SerialNumber"); s != "3012345" {
		t.Errorf("SerialNumber = %q", s)
	}
	if s, _ := res.Attrs.GetStr("FlashMode"); s != "Did Not Fire" {
		t.Errorf("FlashMode = %q", s)
	}
	iso, ok := res.Attrs.Group("ISOInfo")
	if !ok {
		t.Fatal("ISOInfo missing")
	}
	if n, _ := iso.GetUInt("ISO"); n != 200 {
		t.Errorf("ISO = %d, want 200", n)
	}
	if s, _ := iso.GetStr("ISOExpansion"); s != "Hi 0.3" {
		t.Errorf("ISOExpansion = %q", s)
	}
	if n, _ := iso.GetUInt("ISO2"); n != 400 {
		t.Errorf("ISO2 = %d, want 400", n)
	}
	if !bytes.Equal(res.Preview, preview) {
		t.Errorf("preview = %x", res.Preview)
	}
	if _, ok := res.Attrs.Get("PreviewIFD"); ok {
		t.Error("PreviewIFD pointer leaked into attributes")
	}
}

func TestDecodeFujifilmRelative(t *testing.T) {
	// Out-of-line values count from the MakerNote start, not the TIFF base.
	le := endian.LittleEndian
	b := ifd.NewBuilder(le)
	b.Add(ifd.ASCII(0x0010, "FPX20F12345678901234567"))
	b.Add(ifd.Shorts(le, 0x1401, 0x600))
	note := append([]byte("FUJIFILM"), 12, 0, 0, 0)
	note = append(note, b.Encode(12, 0)...)

	r, e := parentWith(endian.BigEndian, note)
	res, err := Decode(r, e, "FUJIFILM")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := res.Attrs.GetStr("InternalSerialNumber"); s != "FPX20F12345678901234567" {
		t.Errorf("InternalSerialNumber = %q", s)
	}
	if s, _ := res.Attrs.GetStr("FilmMode"); s != "Classic Chrome" {
		t.Errorf("FilmMode = %q", s)
	}
}

func TestDecodeOlympusSubIFD(t *testing.T) {
	be := endian.BigEndian
	eq := ifd.NewBuilder(be)
	eq.Add(ifd.ASCII(0x0203, "OLYMPUS M.12-40mm F2.8"))

	main := ifd.NewBuilder(be)
	main.Add(ifd.Shorts(be, 0x0201, 2))
	main.Add(ifd.Longs(be, 0x2010, 0))
	eqAt := 12 + main.Size()
	main.Add(ifd.Longs(be, 0x2010, eqAt))

	note := []byte("OLYMPUS\x00MM\x00\x03")
	note = append(note, main.Encode(12, 0)...)
	note = append(note, eq.Encode(eqAt, 0)...)

	r, e := parentWith(endian.LittleEndian, note)
	res, err := Decode(r, e, "OLYMPUS CORPORATION")
	if err != nil {
		t.Fatal(err)
	}
	root := attrs.New()
	root.Set("Olympus", attrs.Group(res.Attrs))
	if v, ok := root.GetPath("Olympus:Equipment:LensModel"); !ok || v.String() != "OLYMPUS M.12-40mm F2.8" {
		t.Errorf("LensModel = %v", v)
	}
	if s, _ := res.Attrs.GetStr("Quality"); s != "HQ" {
		t.Errorf("Quality = %q", s)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	r, e := parentWith(endian.LittleEndian, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if _, err := Decode(r, e, "Apple"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	e.DataOffset = -1
	if _, err := Decode(r, e, "Canon"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("inline blob: err = %v", err)
	}
}

func TestDecodeBinaryShortPayload(t *testing.T) {
	bt, _ := tags.Binary("Canon", 0x0001)
	g := DecodeBinary(bt, []byte{0x08, 0x00, 0x02, 0x00}, endian.LittleEndian)
	if g.Len() != 1 {
		t.Fatalf("got %d fields, want 1", g.Len())
	}
	if s, _ := g.GetStr("MacroMode"); s != "Normal" {
		t.Errorf("MacroMode = %q", s)
	}
}
