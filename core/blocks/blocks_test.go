package blocks

import (
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/exif"
)

func exifBlock(t *testing.T, kv ...string) []byte {
	t.Helper()
	a := attrs.New()
	for i := 0; i+1 < len(kv); i += 2 {
		a.Set(kv[i], attrs.Str(kv[i+1]))
	}
	b, err := exif.Encode(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestTrimExifHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
		skip int
	}{
		{"Exif\x00\x00II*\x00", "II*\x00", 6},
		{"II*\x00", "II*\x00", 0},
		{"Exif", "Exif", 0},
	}
	for _, tt := range tests {
		got, skip := TrimExifHeader([]byte(tt.in))
		if string(got) != tt.want || skip != tt.skip {
			t.Errorf("TrimExifHeader(%q) = %q, %d", tt.in, got, skip)
		}
	}
}

func TestEXIFFirstBlockWins(t *testing.T) {
	m := core.NewMetadata("JPEG")
	if !EXIF(m, exifBlock(t, "Make", "Canon"), 12) {
		t.Fatal("first block rejected")
	}
	if !EXIF(m, exifBlock(t, "Make", "Nikon", "Model", "D750"), 99) {
		t.Fatal("second block rejected")
	}
	if s, _ := m.Attrs.GetStr("Make"); s != "Canon" {
		t.Errorf("Make = %q", s)
	}
	if s, _ := m.Attrs.GetStr("Model"); s != "D750" {
		t.Errorf("Model = %q", s)
	}
	if m.ExifOffset != 12 {
		t.Errorf("ExifOffset = %d", m.ExifOffset)
	}
}

func TestBadBlocksWarn(t *testing.T) {
	m := core.NewMetadata("JPEG")
	if EXIF(m, []byte("not a tiff"), 0) {
		t.Error("junk EXIF accepted")
	}
	if m.ExifOffset != -1 {
		t.Errorf("ExifOffset = %d", m.ExifOffset)
	}
	ICC(m, []byte("short"))
	if string(m.ICC) != "short" {
		t.Error("profile bytes not kept")
	}
	ICC(m, []byte("second"))
	if string(m.ICC) != "short" {
		t.Error("second profile replaced the first")
	}
	if m.Warnings == nil {
		t.Error("no warnings recorded")
	}
}

func TestXMP(t *testing.T) {
	m := core.NewMetadata("PNG")
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:format>image/png</dc:format>` +
		`</rdf:Description></rdf:RDF></x:xmpmeta>`
	XMP(m, []byte("\n  "+packet+"\x00\x00"))
	if m.XMP != packet {
		t.Errorf("XMP = %q", m.XMP)
	}
	if s, _ := m.Attrs.GetStr("DC:format"); s != "image/png" {
		t.Errorf("DC:format = %q", s)
	}

	XMP(m, []byte("   "))
	if m.XMP != packet {
		t.Error("blank packet replaced the first")
	}
}
