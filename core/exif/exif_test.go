package exif

import (
	"bytes"
	"errors"
	"testing"

	goexif "github.com/rwcarlsen/goexif/exif"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

var testThumb = []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x02, 0xFF, 0xD9}

// buildTIFF lays out IFD0 -> ExifIFD, GPS and an IFD1 thumbnail in order o.
func buildTIFF(o endian.ByteOrder, thumb []byte) []byte {
	ifd0 := ifd.NewBuilder(o)
	ifd0.Add(ifd.ASCII(tags.TagMake, "Canon"))
	ifd0.Add(ifd.ASCII(tags.TagModel, "Canon EOS 5D"))
	ifd0.Add(ifd.Shorts(o, tags.TagOrientation, 6))
	ifd0.Add(ifd.Rationals(o, 0x011A, endian.URational{Num: 72, Den: 1}))
	ifd0.Add(ifd.Longs(o, tags.TagExifIFD, 0))
	ifd0.Add(ifd.Longs(o, tags.TagGPSIFD, 0))

	sub := ifd.NewBuilder(o)
	sub.Add(ifd.Rationals(o, 0x829A, endian.URational{Num: 1, Den: 125}))
	sub.Add(ifd.Rationals(o, 0x829D, endian.URational{Num: 28, Den: 0}))
	sub.Add(ifd.ASCII(0x9003, "2024:01:02 03:04:05"))
	sub.Add(ifd.Shorts(o, 0x8827, 200))
	sub.Add(ifd.SRationals(o, 0x9204, endian.Rational{Num: -1, Den: 3}))

	gps := ifd.NewBuilder(o)
	gps.Add(ifd.ASCII(0x0001, "N"))
	gps.Add(ifd.Rationals(o, 0x0002,
		endian.URational{Num: 40, Den: 1}, endian.URational{Num: 26, Den: 1}, endian.URational{Num: 4632, Den: 100}))

	ifd1 := ifd.NewBuilder(o)
	ifd1.Add(ifd.Shorts(o, tags.TagCompression, 6))
	ifd1.Add(ifd.Longs(o, tags.TagThumbnailOffset, 0))
	ifd1.Add(ifd.Longs(o, tags.TagThumbnailLength, uint32(len(thumb))))

	ifd0At := uint32(8)
	subAt := ifd0At + ifd0.Size()
	gpsAt := subAt + sub.Size()
	ifd1At := gpsAt + gps.Size()
	thumbAt := ifd1At + ifd1.Size()
	ifd0.Add(ifd.Longs(o, tags.TagExifIFD, subAt))
	ifd0.Add(ifd.Longs(o, tags.TagGPSIFD, gpsAt))
	ifd1.Add(ifd.Longs(o, tags.TagThumbnailOffset, thumbAt))

	out := ifd.EncodeHeader(o, ifd0At)
	out = append(out, ifd0.Encode(ifd0At, ifd1At)...)
	out = append(out, sub.Encode(subAt, 0)...)
	out = append(out, gps.Encode(gpsAt, 0)...)
	out = append(out, ifd1.Encode(ifd1At, 0)...)
	return append(out, thumb...)
}

func TestDecode(t *testing.T) {
	for _, o := range []endian.ByteOrder{endian.LittleEndian, endian.BigEndian} {
		t.Run(o.String(), func(t *testing.T) {
			d, err := Decode(buildTIFF(o, testThumb))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if d.Order != o {
				t.Errorf("order = %v, want %v", d.Order, o)
			}
			a := d.Attrs
			if s, _ := a.GetStr("Make"); s != "Canon" {
				t.Errorf("Make = %q", s)
			}
			if n, _ := a.GetUInt("Orientation"); n != 6 {
				t.Errorf("Orientation = %d", n)
			}
			if n, den, ok := a.GetURational("ExposureTime"); !ok || n != 1 || den != 125 {
				t.Errorf("ExposureTime = %d/%d %v", n, den, ok)
			}
			if n, den, ok := a.GetURational("FNumber"); !ok || n != 28 || den != 0 {
				t.Errorf("FNumber = %d/%d, zero denominator must survive", n, den)
			}
			if n, den, ok := a.GetRational("ExposureCompensation"); !ok || n != -1 || den != 3 {
				t.Errorf("ExposureCompensation = %d/%d", n, den)
			}
			if s, _ := a.GetStr("GPSLatitudeRef"); s != "N" {
				t.Errorf("GPSLatitudeRef = %q", s)
			}
			if l, ok := a.GetList("GPSLatitude"); !ok || len(l) != 3 {
				t.Errorf("GPSLatitude = %v", l)
			}
			for _, k := range []string{"ExifOffset", "GPSInfo", "ThumbnailOffset", "Compression"} {
				if a.Contains(k) {
					t.Errorf("%s must not be emitted", k)
				}
			}
			if !bytes.Equal(d.Thumbnail, testThumb) {
				t.Errorf("thumbnail = % X", d.Thumbnail)
			}
			if len(d.Pages) != 0 {
				t.Errorf("pages = %d, want 0", len(d.Pages))
			}
			if d.Warnings != nil {
				t.Errorf("warnings: %v", d.Warnings)
			}
		})
	}
}

func TestByteOrderSymmetry(t *testing.T) {
	le, err := Decode(buildTIFF(endian.LittleEndian, testThumb))
	if err != nil {
		t.Fatal(err)
	}
	be, err := Decode(buildTIFF(endian.BigEndian, testThumb))
	if err != nil {
		t.Fatal(err)
	}
	if !le.Attrs.Equal(be.Attrs) {
		t.Errorf("LE and BE decode differently:\n%v\n%v", le.Attrs.Keys(), be.Attrs.Keys())
	}
	if le.Attrs.HashAll() != be.Attrs.HashAll() {
		t.Error("hashes differ")
	}
}

func TestFirstEntryWins(t *testing.T) {
	// IFD0 repeats Make; the entry reached first is kept.
	data := []byte{'I', 'I', 42, 0, 8, 0, 0, 0, 2, 0}
	data = append(data, 0x0F, 0x01, 2, 0, 4, 0, 0, 0, 'A', 'A', 'A', 0)
	data = append(data, 0x0F, 0x01, 2, 0, 4, 0, 0, 0, 'B', 'B', 'B', 0)
	data = append(data, 0, 0, 0, 0)

	d, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := d.Attrs.GetStr("Make"); s != "AAA" {
		t.Errorf("Make = %q, want AAA", s)
	}
}

func TestWalkCycle(t *testing.T) {
	o := endian.BigEndian
	b := ifd.NewBuilder(o)
	b.Add(ifd.ASCII(tags.TagMake, "Loop"))
	b.Add(ifd.Longs(o, tags.TagExifIFD, 8))
	// IFD0 links to itself both as next IFD and as its own Exif pointer.
	data := append(ifd.EncodeHeader(o, 8), b.Encode(8, 8)...)

	d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s, _ := d.Attrs.GetStr("Make"); s != "Loop" {
		t.Errorf("Make = %q", s)
	}
	var rec *core.RecursiveIfdError
	if !errors.As(d.Warnings, &rec) {
		t.Fatalf("warnings = %v, want a RecursiveIfdError", d.Warnings)
	}
	if rec.Offset != 8 {
		t.Errorf("offset = %d", rec.Offset)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"short", []byte{'I', 'I', 42}},
		{"bad marker", []byte{'X', 'X', 42, 0, 8, 0, 0, 0}},
		{"bad magic", []byte{'I', 'I', 7, 0, 8, 0, 0, 0}},
		{"ifd0 past end", []byte{'I', 'I', 42, 0, 0xFF, 0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.data); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSubIFDPagesAndPreview(t *testing.T) {
	o := endian.LittleEndian
	preview := []byte{0xFF, 0xD8, 1, 2, 3, 4, 5, 6, 0xFF, 0xD9}

	ifd0 := ifd.NewBuilder(o)
	ifd0.Add(ifd.Longs(o, tags.TagImageWidth, 160))
	ifd0.Add(ifd.Longs(o, tags.TagSubIFDs, 0))
	sub := ifd.NewBuilder(o)
	sub.Add(ifd.Longs(o, tags.TagImageWidth, 4000))
	sub.Add(ifd.Shorts(o, tags.TagCompression, 6))
	sub.Add(ifd.Longs(o, tags.TagThumbnailOffset, 0))
	sub.Add(ifd.Longs(o, tags.TagThumbnailLength, uint32(len(preview))))

	subAt := 8 + ifd0.Size()
	dataAt := subAt + sub.Size()
	ifd0.Add(ifd.Longs(o, tags.TagSubIFDs, subAt))
	sub.Add(ifd.Longs(o, tags.TagThumbnailOffset, dataAt))

	data := append(ifd.EncodeHeader(o, 8), ifd0.Encode(8, 0)...)
	data = append(data, sub.Encode(subAt, 0)...)
	data = append(data, preview...)

	d, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(d.Pages))
	}
	if w, _ := d.Pages[0].GetUInt("ImageWidth"); w != 4000 {
		t.Errorf("page width = %d", w)
	}
	if w, _ := d.Attrs.GetUInt("ImageWidth"); w != 160 {
		t.Errorf("IFD0 width = %d", w)
	}
	if !bytes.Equal(d.Preview, preview) {
		t.Errorf("preview = % X", d.Preview)
	}
}

func TestIFD0Blocks(t *testing.T) {
	o := endian.LittleEndian
	xmp := []byte("<x:xmpmeta/>")
	b := ifd.NewBuilder(o)
	b.Add(ifd.Bytes(tags.TagXMP, xmp))
	b.Add(ifd.Undefined(tags.TagICCProfile, []byte("iccdata!")))
	data := append(ifd.EncodeHeader(o, 8), b.Encode(8, 0)...)

	d, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d.XMP, xmp) {
		t.Errorf("XMP = %q", d.XMP)
	}
	if string(d.ICC) != "iccdata!" {
		t.Errorf("ICC = %q", d.ICC)
	}
	if d.Attrs.Contains("ApplicationNotes") {
		t.Error("XMP tag leaked into attributes")
	}
}

func sampleAttrs() *attrs.Attrs {
	a := attrs.New()
	a.Set("Make", attrs.Str("Canon"))
	a.Set("EXIF:Software", attrs.Str("metasurgery"))
	a.Set("Orientation", attrs.UInt(6))
	a.Set("ExposureTime", attrs.URational(1, 125))
	a.Set("FNumber", attrs.URational(28, 0))
	a.Set("ExposureCompensation", attrs.Rational(-2, 3))
	a.Set("DateTimeOriginal", attrs.Str("2024:01:02 03:04:05"))
	a.Set("ISO", attrs.UInt(400))
	a.Set("GPSLatitudeRef", attrs.Str("S"))
	a.Set("GPSLatitude", attrs.List(attrs.URational(33, 1), attrs.URational(51, 1), attrs.URational(3000, 100)))
	a.Set("InteropIndex", attrs.Str("R98"))
	a.Set("ExifVersion", attrs.Bytes([]byte("0232")))
	a.Set("XMP-dc:title", attrs.Str("ignored"))
	g := attrs.New()
	g.Set("LensType", attrs.Str("ignored"))
	a.Set("Canon", attrs.Group(g))
	a.Set("StripOffsets", attrs.UInt(1234))
	return a
}

func TestEncodeRoundTrip(t *testing.T) {
	blob, err := Encode(sampleAttrs(), testThumb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(blob, []byte{'I', 'I', 42, 0, 8, 0, 0, 0}) {
		t.Fatalf("header = % X", blob[:8])
	}
	d, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Warnings != nil {
		t.Errorf("warnings: %v", d.Warnings)
	}
	want := sampleAttrs()
	for _, key := range []string{"Make", "Orientation", "ExposureTime", "FNumber", "ExposureCompensation",
		"DateTimeOriginal", "ISO", "GPSLatitudeRef", "GPSLatitude", "InteropIndex", "ExifVersion"} {
		wv, _ := want.Get(key)
		got, ok := d.Attrs.Get(key)
		if !ok || !got.Equal(wv) {
			t.Errorf("%s = %v, want %v", key, got, wv)
		}
	}
	if s, _ := d.Attrs.GetStr("Software"); s != "metasurgery" {
		t.Errorf("Software = %q", s)
	}
	for _, k := range []string{"XMP-dc:title", "Canon", "StripOffsets"} {
		if d.Attrs.Contains(k) {
			t.Errorf("%s must not be written", k)
		}
	}
	if !bytes.Equal(d.Thumbnail, testThumb) {
		t.Errorf("thumbnail = % X", d.Thumbnail)
	}
}

func TestEncodeSortedEntries(t *testing.T) {
	blob, err := Encode(sampleAttrs(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r, h, err := ifd.Open(blob)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(d.Entries); i++ {
		if d.Entries[i-1].Tag >= d.Entries[i].Tag {
			t.Fatalf("entries not ascending: 0x%04X then 0x%04X", d.Entries[i-1].Tag, d.Entries[i].Tag)
		}
	}
	if d.Next != 0 {
		t.Errorf("next = %d without a thumbnail", d.Next)
	}
}

func TestEncodeCoercion(t *testing.T) {
	a := attrs.New()
	a.Set("Orientation", attrs.Str("Rotate 90 CW"))
	a.Set("ExposureTime", attrs.Str("1/250"))
	a.Set("FNumber", attrs.Double(2.8))
	a.Set("ExposureCompensation", attrs.Str("-0.5"))
	a.Set("ISO", attrs.Str("100"))
	a.Set("UserComment", attrs.Str("hi"))
	a.Set("XPTitle", attrs.Str("Hé"))
	a.Set("FileSource", attrs.Str("Digital Camera"))
	a.Set("GPSLatitude", attrs.Str("40 26 46.32"))
	a.Set("ImageWidth", attrs.Str("not a number"))

	blob, err := Encode(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Decode(blob)
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		key  string
		want attrs.Value
	}{
		{"Orientation", attrs.UInt(6)},
		{"ExposureTime", attrs.URational(1, 250)},
		{"FNumber", attrs.URational(28, 10)},
		{"ExposureCompensation", attrs.Rational(-5, 10)},
		{"ISO", attrs.UInt(100)},
		{"UserComment", attrs.Bytes([]byte("ASCII\x00\x00\x00hi"))},
		{"XPTitle", attrs.List(attrs.UInt('H'), attrs.UInt(0), attrs.UInt(0xE9), attrs.UInt(0), attrs.UInt(0), attrs.UInt(0))},
		{"FileSource", attrs.Bytes([]byte{3})},
		{"GPSLatitude", attrs.List(attrs.URational(40, 1), attrs.URational(26, 1), attrs.URational(4632, 100))},
	}
	for _, c := range checks {
		got, ok := d.Attrs.Get(c.key)
		if !ok || !got.Equal(c.want) {
			t.Errorf("%s = %v, want %v", c.key, got, c.want)
		}
	}
	if d.Attrs.Contains("ImageWidth") {
		t.Error("uncoercible value was written")
	}
}

func TestEncodeEmpty(t *testing.T) {
	a := attrs.New()
	a.Set("XMP-dc:title", attrs.Str("only xmp"))
	blob, err := Encode(a, nil)
	if err != nil || blob != nil {
		t.Errorf("Encode = %d bytes, %v; want nil", len(blob), err)
	}
}

// wrapJPEG frames a TIFF block as the APP1 segment of a bare JPEG.
func wrapJPEG(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	n := len(payload) + 2
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(n >> 8), byte(n)}
	out = append(out, payload...)
	return append(out, 0xFF, 0xD9)
}

func TestEncodeReadableByGoexif(t *testing.T) {
	blob, err := Encode(sampleAttrs(), testThumb)
	if err != nil {
		t.Fatal(err)
	}
	x, err := goexif.Decode(bytes.NewReader(wrapJPEG(blob)))
	if err != nil {
		t.Fatalf("goexif: %v", err)
	}

	tag, err := x.Get(goexif.Make)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := tag.StringVal(); s != "Canon" {
		t.Errorf("goexif Make = %q", s)
	}
	tag, err = x.Get(goexif.Orientation)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := tag.Int(0); n != 6 {
		t.Errorf("goexif Orientation = %d", n)
	}
	tag, err = x.Get(goexif.FNumber)
	if err != nil {
		t.Fatal(err)
	}
	if n, d, err := tag.Rat2(0); err != nil || n != 28 || d != 0 {
		t.Errorf("goexif FNumber = %d/%d (%v)", n, d, err)
	}
	tag, err = x.Get(goexif.GPSLatitude)
	if err != nil {
		t.Fatal(err)
	}
	if n, d, _ := tag.Rat2(2); n != 3000 || d != 100 {
		t.Errorf("goexif GPSLatitude[2] = %d/%d", n, d)
	}
}

func TestDecodeMatchesGoexif(t *testing.T) {
	data := buildTIFF(endian.BigEndian, testThumb)
	d, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	x, err := goexif.Decode(bytes.NewReader(wrapJPEG(data)))
	if err != nil {
		t.Fatalf("goexif: %v", err)
	}
	tag, err := x.Get(goexif.DateTimeOriginal)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := tag.StringVal()
	if got, _ := d.Attrs.GetStr("DateTimeOriginal"); got != want {
		t.Errorf("DateTimeOriginal = %q, goexif says %q", got, want)
	}
	tag, err = x.Get(goexif.ISOSpeedRatings)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := tag.Int(0)
	if got, _ := d.Attrs.GetUInt("ISO"); int(got) != n {
		t.Errorf("ISO = %d, goexif says %d", got, n)
	}
}
