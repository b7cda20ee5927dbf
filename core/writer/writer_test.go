package writer

import (
	"bytes"
	"encoding/binary"
	"errors"
	stdimage "image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rwcarlsen/goexif/exif"
	gotiff "github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/image/tiff"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
	mexif "github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/registry"
)

func testImage(w, h int) stdimage.Image {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 90, 255})
		}
	}
	return img
}

func exifBlock(t *testing.T, kv ...string) []byte {
	t.Helper()
	a := attrs.New()
	for i := 0; i+1 < len(kv); i += 2 {
		a.Set(kv[i], attrs.Str(kv[i+1]))
	}
	b, err := mexif.Encode(a, nil)
	if err != nil {
		t.Fatalf("exif.Encode: %v", err)
	}
	return b
}

// withSegment inserts a marker segment right after SOI.
func withSegment(jpg []byte, marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	out := append([]byte{}, jpg[:2]...)
	out = append(out, seg...)
	out = append(out, payload...)
	return append(out, jpg[2:]...)
}

func testJPEG(t *testing.T, segs ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(8, 4), nil); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	for i := len(segs) - 1; i >= 0; i-- {
		data = withSegment(data, segs[i][0], segs[i][1:])
	}
	return data
}

// seg prefixes payload with its marker for testJPEG.
func seg(marker byte, payload ...string) []byte {
	return append([]byte{marker}, strings.Join(payload, "")...)
}

func pngChunk(typ string, data []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, image.ChunkCRC(typ, data))
}

// testPNG inserts raw chunks after the signature and IHDR.
func testPNG(t *testing.T, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(3, 2)); err != nil {
		t.Fatal(err)
	}
	p := buf.Bytes()
	out := append([]byte{}, p[:33]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, p[33:]...)
}

// vp8lHeader is a lossless bitstream header for a w x h image.
func vp8lHeader(w, h int) []byte {
	v := uint32(w-1) | uint32(h-1)<<14
	return binary.LittleEndian.AppendUint32([]byte{0x2F}, v)
}

func parse(t *testing.T, data []byte) *core.Metadata {
	t.Helper()
	m, err := registry.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func write(t *testing.T, data []byte, m *core.Metadata) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := Write(bytes.NewReader(data), &out, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return out.Bytes()
}

func wantStr(t *testing.T, m *core.Metadata, key, want string) {
	t.Helper()
	if got, ok := m.Attrs.GetStr(key); !ok || got != want {
		t.Errorf("%s = %q (%v), want %q", key, got, ok, want)
	}
}

func riffIDs(t *testing.T, data []byte) []string {
	t.Helper()
	form, chunks, err := chunk.ReadRIFF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadRIFF: %v", err)
	}
	if form != "WEBP" {
		t.Fatalf("form = %q", form)
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

func TestWriteUnchangedIsIdentical(t *testing.T) {
	src := testJPEG(t,
		seg(image.MarkerAPP1, blocks.ExifHeader, string(exifBlock(t, "Make", "Nikon"))),
		seg(image.MarkerCOM, "note"),
	)
	m := parse(t, src)
	if out := write(t, src, m); !bytes.Equal(out, src) {
		t.Error("a clean container was rewritten")
	}
}

func TestWriteJPEG(t *testing.T) {
	src := testJPEG(t,
		seg(image.MarkerAPP1, blocks.ExifHeader, string(exifBlock(t, "Make", "Nikon", "Model", "D750"))),
		seg(image.MarkerCOM, "keep me"),
	)
	m := parse(t, src)
	m.Attrs.Set("Make", attrs.Str("Canon"))
	m.Attrs.Set("Artist", attrs.Str("Jane Doe"))
	m.Attrs.Set("DC:title", attrs.Str("Harbour"))
	out := write(t, src, m)

	x, err := exif.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("goexif: %v", err)
	}
	for name, want := range map[exif.FieldName]string{
		exif.Make:   "Canon",
		exif.Model:  "D750",
		exif.Artist: "Jane Doe",
	} {
		tag, err := x.Get(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if got, _ := tag.StringVal(); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	_, inScan, err := image.ReadSegments(bytes.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	_, outScan, err := image.ReadSegments(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src[inScan:], out[outScan:]) {
		t.Error("scan data changed")
	}

	back := parse(t, out)
	wantStr(t, back, "DC:title", "Harbour")
	wantStr(t, back, "File:Comment", "keep me")
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output does not decode: %v", err)
	}
}

func TestWriteJPEGDropsEmptyBlocks(t *testing.T) {
	src := testJPEG(t, seg(image.MarkerAPP1, blocks.ExifHeader, string(exifBlock(t, "Make", "Nikon"))))
	m := parse(t, src)
	m.Attrs.Remove("Make")
	out := write(t, src, m)
	segs, _, err := image.ReadSegments(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range segs {
		if s.Is(image.MarkerAPP1, blocks.ExifHeader) {
			t.Error("empty EXIF segment written")
		}
	}
}

func TestWriteJPEGTooLarge(t *testing.T) {
	src := testJPEG(t)
	m := parse(t, src)
	m.Attrs.Set("ImageDescription", attrs.Str(strings.Repeat("x", 70000)))
	err := Write(bytes.NewReader(src), &bytes.Buffer{}, m)
	var tl *core.MetadataTooLargeError
	if !errors.As(err, &tl) {
		t.Fatalf("err = %v, want MetadataTooLargeError", err)
	}
}

func TestWritePNG(t *testing.T) {
	src := testPNG(t,
		pngChunk("tEXt", []byte("Title\x00Sunset")),
		pngChunk("tEXt", []byte("Comment\x00old")),
		pngChunk("eXIf", exifBlock(t, "Software", "old")),
	)
	m := parse(t, src)
	m.Attrs.Set("Software", attrs.Str("surgery 1.0"))
	m.Attrs.Set("PNG:Title", attrs.Str("Dusk"))
	m.Attrs.Remove("PNG:Comment")
	m.Attrs.Set("PNG:Author", attrs.Str("Ann"))
	out := write(t, src, m)

	chunks, err := image.ReadChunks(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Type != "IHDR" || chunks[1].Type != "eXIf" {
		t.Errorf("chunks start %s, %s", chunks[0].Type, chunks[1].Type)
	}
	last := chunks[len(chunks)-1]
	if last.Type != "IEND" || last.CRC != 0xAE426082 {
		t.Errorf("last chunk %s crc %08X", last.Type, last.CRC)
	}
	for _, c := range chunks {
		if c.CRC != image.ChunkCRC(c.Type, c.Data) {
			t.Errorf("%s: bad CRC", c.Type)
		}
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output does not decode: %v", err)
	}

	back := parse(t, out)
	wantStr(t, back, "Software", "surgery 1.0")
	wantStr(t, back, "PNG:Title", "Dusk")
	wantStr(t, back, "PNG:Author", "Ann")
	if back.Attrs.Contains("PNG:Comment") {
		t.Error("PNG:Comment survived its removal")
	}
}

func TestWritePNGNonLatinText(t *testing.T) {
	src := testPNG(t, pngChunk("tEXt", []byte("Title\x00Sunset")))
	m := parse(t, src)
	m.Attrs.Set("PNG:Title", attrs.Str("日没"))
	out := write(t, src, m)
	chunks, err := image.ReadChunks(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range chunks {
		if c.Type == "iTXt" && bytes.HasPrefix(c.Data, []byte("Title\x00")) {
			found = true
		}
	}
	if !found {
		t.Error("non-Latin-1 text not written as iTXt")
	}
	wantStr(t, parse(t, out), "PNG:Title", "日没")
}

func TestWriteTIFF(t *testing.T) {
	img := testImage(5, 3)
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	src := buf.Bytes()
	m := parse(t, src)
	m.Attrs.Set("Artist", attrs.Str("Jane Doe"))
	m.Attrs.Set("DC:creator", attrs.Strs([]string{"Jane Doe"}))
	out := write(t, src, m)

	got, err := tiff.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			r1, g1, b1, a1 := img.At(x, y).RGBA()
			r2, g2, b2, a2 := got.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}

	tf, err := gotiff.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("goexif tiff: %v", err)
	}
	var artist string
	for _, tag := range tf.Dirs[0].Tags {
		if tag.Id == 0x013B {
			artist, _ = tag.StringVal()
		}
	}
	if artist != "Jane Doe" {
		t.Errorf("Artist = %q", artist)
	}

	back := parse(t, out)
	wantStr(t, back, "Artist", "Jane Doe")
	if !back.Attrs.Contains("DC:creator") {
		t.Error("XMP packet missing")
	}
}

func TestWriteWebPAddsVP8X(t *testing.T) {
	src := chunk.WriteRIFF("WEBP", []chunk.Chunk{{ID: "VP8L", Data: vp8lHeader(4, 3)}})
	m := parse(t, src)
	m.Attrs.Set("DC:title", attrs.Str("Cat"))
	out := write(t, src, m)

	ids := riffIDs(t, out)
	if strings.Join(ids, ",") != "VP8X,VP8L,XMP " {
		t.Fatalf("chunks = %q", ids)
	}
	_, chunks, _ := chunk.ReadRIFF(bytes.NewReader(out))
	vp8x := chunks[0].Data
	if vp8x[0]&image.VP8XXMP == 0 {
		t.Errorf("VP8X flags %02X lack XMP", vp8x[0])
	}
	if w := uint32(vp8x[4]) | uint32(vp8x[5])<<8 | uint32(vp8x[6])<<16; w != 3 {
		t.Errorf("canvas width-1 = %d, want 3", w)
	}
	wantStr(t, parse(t, out), "DC:title", "Cat")
}

func TestWriteWebPNormalisesXMPChunk(t *testing.T) {
	vp8x := make([]byte, 10)
	vp8x[0] = image.VP8XXMP
	vp8x[4], vp8x[7] = 3, 2
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:format>image/webp</dc:format>` +
		`</rdf:Description></rdf:RDF></x:xmpmeta>`
	src := chunk.WriteRIFF("WEBP", []chunk.Chunk{
		{ID: "VP8X", Data: vp8x},
		{ID: "VP8L", Data: vp8lHeader(4, 3)},
		{ID: "XMP\x00", Data: []byte(packet)},
	})
	m := parse(t, src)
	m.Attrs.Set("Artist", attrs.Str("someone"))
	out := write(t, src, m)

	ids := strings.Join(riffIDs(t, out), ",")
	if ids != "VP8X,VP8L,EXIF,XMP " {
		t.Fatalf("chunks = %q", ids)
	}
	back := parse(t, out)
	wantStr(t, back, "Artist", "someone")
	wantStr(t, back, "DC:format", "image/webp")
}

func TestWritable(t *testing.T) {
	anim := core.NewMetadata(image.WebP)
	anim.Attrs.Set("WebP:Animation", attrs.Bool(true))
	raw := core.NewMetadata("NEF")
	raw.Attrs.Set("Make", attrs.Str("NIKON CORPORATION"))

	tests := []struct {
		name   string
		m      *core.Metadata
		reason string
	}{
		{"raw", raw, "camera RAW files from NIKON CORPORATION are read-only"},
		{"raw without make", core.NewMetadata("CR2"), "camera RAW files from an unknown camera are read-only"},
		{"mp3", core.NewMetadata("MP3"), "audio formats are read-only"},
		{"pdf", core.NewMetadata("PDF"), "document formats are read-only"},
		{"animated webp", anim, "animated WebP is read-only"},
		{"gif", core.NewMetadata(image.GIF), "no writer for this format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Write(bytes.NewReader(nil), &bytes.Buffer{}, tt.m)
			var uw *core.UnsupportedWriteError
			if !errors.As(err, &uw) {
				t.Fatalf("err = %v, want UnsupportedWriteError", err)
			}
			if uw.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", uw.Reason, tt.reason)
			}
		})
	}
	if err := Writable(core.NewMetadata(image.DNG)); err != nil {
		t.Errorf("DNG: %v", err)
	}
}

// exrFile builds a one-part scanline file with two chunks of pixel data.
func exrFile() ([]byte, int) {
	le := binary.LittleEndian
	box := func(x0, y0, x1, y1 int32) []byte {
		var b []byte
		for _, v := range []int32{x0, y0, x1, y1} {
			b = le.AppendUint32(b, uint32(v))
		}
		return b
	}
	ch := append([]byte("Y\x00"), le.AppendUint32(nil, 1)...)
	ch = append(ch, 0, 0, 0, 0)
	ch = le.AppendUint32(ch, 1)
	ch = le.AppendUint32(ch, 1)
	ch = append(ch, 0)
	h := &image.EXRHeader{
		Version: 2,
		Parts: [][]image.EXRAttribute{{
			{Name: "channels", Type: "chlist", Value: ch},
			{Name: "compression", Type: "compression", Value: []byte{3}},
			{Name: "dataWindow", Type: "box2i", Value: box(0, 0, 7, 31)},
			{Name: "displayWindow", Type: "box2i", Value: box(0, 0, 7, 31)},
			{Name: "lineOrder", Type: "lineOrder", Value: []byte{0}},
			{Name: "owner", Type: "string", Value: []byte("ILM")},
			{Name: "pixelAspectRatio", Type: "float", Value: le.AppendUint32(nil, 0x3F800000)},
		}},
	}
	data := h.Bytes()
	size := len(data)
	data = le.AppendUint64(data, uint64(size+16))
	data = le.AppendUint64(data, uint64(size+28))
	for y := 0; y < 2; y++ {
		data = le.AppendUint32(data, uint32(y*16))
		data = le.AppendUint32(data, 4)
		data = append(data, byte(y), 0xAA, 0xBB, 0xCC)
	}
	return data, size
}

func TestWriteEXR(t *testing.T) {
	src, size := exrFile()
	m := parse(t, src)
	m.Attrs.Set("EXR:owner", attrs.Str("Industrial Light & Magic"))
	m.Attrs.Set("EXR:comments", attrs.Str("regraded"))
	out := write(t, src, m)

	h, err := image.ReadEXRHeader(out)
	if err != nil {
		t.Fatal(err)
	}
	delta := h.Size - size
	if delta <= 0 {
		t.Fatalf("header did not grow: %d", delta)
	}
	le := binary.LittleEndian
	for i, want := range []int{size + 16, size + 28} {
		if got := le.Uint64(out[h.Size+8*i:]); got != uint64(want+delta) {
			t.Errorf("offset %d = %d, want %d", i, got, want+delta)
		}
	}
	if !bytes.Equal(out[h.Size+16:], src[size+16:]) {
		t.Error("pixel chunks changed")
	}
	back := parse(t, out)
	wantStr(t, back, "EXR:owner", "Industrial Light & Magic")
	wantStr(t, back, "EXR:comments", "regraded")
	wantStr(t, back, "EXR:compression", "ZIP")
}

func TestWriteHDR(t *testing.T) {
	src := "#?RADIANCE\n# made by a test\nFORMAT=32-bit_rle_rgbe\nEXPOSURE=2\nEXPOSURE=1.5\nSOFTWARE=tester 1.0\nCUSTOM=x\n\n-Y 3 +X 4\n\x02\x02\x00\x04"
	m := parse(t, []byte(src))
	m.Attrs.Set("Software", attrs.Str("hdrtool 2"))
	m.Attrs.Remove("HDR:CUSTOM")
	m.Attrs.Set("HDR:VIEW", attrs.Str("-vtv"))
	out := string(write(t, []byte(src), m))

	want := "#?RADIANCE\n# made by a test\nFORMAT=32-bit_rle_rgbe\nEXPOSURE=3\nSOFTWARE=hdrtool 2\nVIEW=-vtv\n\n-Y 3 +X 4\n\x02\x02\x00\x04"
	if out != want {
		t.Errorf("output\n%q\nwant\n%q", out, want)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	src := testJPEG(t, seg(image.MarkerAPP1, blocks.ExifHeader, string(exifBlock(t, "Make", "Nikon"))))
	if err := os.WriteFile(path, src, 0o640); err != nil {
		t.Fatal(err)
	}
	m, err := registry.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	m.Attrs.Set("Make", attrs.Str("Canon"))

	if err := WriteFile(path, m, Options{}); err == nil {
		t.Fatal("overwrote the source without in-place mode")
	}

	copyPath := filepath.Join(dir, "copy.jpg")
	if err := WriteFile(path, m, Options{Output: copyPath}); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(path); !bytes.Equal(got, src) {
		t.Error("source changed when writing a copy")
	}
	c, err := registry.ParseFile(copyPath)
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, c, "Make", "Canon")

	if err := WriteFile(path, m, Options{InPlace: true}); err != nil {
		t.Fatal(err)
	}
	back, err := registry.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, back, "Make", "Canon")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("%d files left in the directory, want 2", len(entries))
	}
}

func TestWriteFileFailureLeavesSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	src := []byte("ID3\x03\x00\x00\x00\x00\x00\x00")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}
	m := core.NewMetadata("MP3")
	if err := WriteFile(path, m, Options{InPlace: true}); err == nil {
		t.Fatal("expected an error")
	}
	if got, _ := os.ReadFile(path); !bytes.Equal(got, src) {
		t.Error("source changed")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}
