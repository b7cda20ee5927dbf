package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/image"
)

func TestCoerce(t *testing.T) {
	when := time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		old  attrs.Value
		had  bool
		in   string
		want attrs.Value
	}{
		{"new key", attrs.Value{}, false, "42", attrs.Str("42")},
		{"uint", attrs.UInt(1), true, "42", attrs.UInt(42)},
		{"uint garbage", attrs.UInt(1), true, "many", attrs.Str("many")},
		{"negative uint", attrs.UInt(1), true, "-3", attrs.Str("-3")},
		{"int", attrs.Int(1), true, "-7", attrs.Int(-7)},
		{"urational", attrs.URational(1, 60), true, "1/250", attrs.URational(1, 250)},
		{"urational whole", attrs.URational(1, 60), true, "8", attrs.URational(8, 1)},
		{"rational", attrs.Rational(0, 1), true, "-1/3", attrs.Rational(-1, 3)},
		{"double", attrs.Double(1), true, "2.8", attrs.Double(2.8)},
		{"bool", attrs.Bool(false), true, "true", attrs.Bool(true)},
		{"exif date", attrs.DateTime(time.Time{}), true, "2024:03:09 18:04:05", attrs.DateTime(when)},
		{"rfc3339 date", attrs.DateTime(time.Time{}), true, "2024-03-09T18:04:05Z", attrs.DateTime(when)},
		{"list", attrs.Strs([]string{"x"}), true, "a, b", attrs.Strs([]string{"a", "b"})},
		{"string", attrs.Str("old"), true, "new", attrs.Str("new")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.old, tt.had, tt.in); !got.Equal(tt.want) {
				t.Errorf("Coerce(%q) = %v (%v), want %v (%v)", tt.in, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestApply(t *testing.T) {
	a := attrs.New()
	a.Set("Make", attrs.Str("Canon"))
	a.Set("ISO", attrs.UInt(100))
	a.Set("Model", attrs.Str("EOS"))
	a.ClearDirty()

	Apply(a, core.EditOptions{
		Set:    map[string]string{"ISO": "400", "Artist": "Jane"},
		Delete: []string{"Model", "Absent"},
	})
	if !a.IsDirty() {
		t.Error("edit did not mark the attributes dirty")
	}
	if n, ok := a.GetUInt("ISO"); !ok || n != 400 {
		t.Errorf("ISO = %v, %v", n, ok)
	}
	if s, _ := a.GetStr("Artist"); s != "Jane" {
		t.Errorf("Artist = %q", s)
	}
	if a.Contains("Model") {
		t.Error("Model not deleted")
	}
	if s, _ := a.GetStr("Make"); s != "Canon" {
		t.Errorf("Make = %q", s)
	}
}

func editFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	src := testJPEG(t, seg(image.MarkerAPP1, blocks.ExifHeader, string(exifBlock(t, "Make", "Nikon", "Model", "D750"))))
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEditDryRun(t *testing.T) {
	path := editFixture(t)
	before, _ := os.ReadFile(path)

	m, err := Edit(path, core.EditOptions{Set: map[string]string{"Artist": "Jane"}, DryRun: true}, Options{InPlace: true})
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, m, "Artist", "Jane")
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("dry run changed the file")
	}
}

func TestEditInPlace(t *testing.T) {
	path := editFixture(t)
	_, err := Edit(path, core.EditOptions{
		Set:    map[string]string{"Make": "Canon", "DC:title": "Harbour"},
		Delete: []string{"Model"},
	}, Options{InPlace: true})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	m := parse(t, data)
	wantStr(t, m, "Make", "Canon")
	wantStr(t, m, "DC:title", "Harbour")
	if m.Attrs.Contains("Model") {
		t.Error("Model survived")
	}
}

func TestEditReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	src := []byte("ID3\x03\x00\x00\x00\x00\x00\x00\xFF\xFB\x90\x00")
	src = append(src, make([]byte, 400)...)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Edit(path, core.EditOptions{Set: map[string]string{"Artist": "x"}}, Options{InPlace: true}); err == nil {
		t.Error("editing an MP3 succeeded")
	}
	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, src) {
		t.Error("source changed")
	}
}
