package registry

import (
	"archive/zip"
	"bytes"
	"errors"
	stdimage "image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"jpeg", "\xFF\xD8\xFF\xE0\x00\x10JFIF\x00", "JPEG"},
		{"png", "\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR", "PNG"},
		{"gif", "GIF89a\x01\x00\x01\x00", "GIF"},
		{"webp", "RIFF\x20\x00\x00\x00WEBPVP8L", "WebP"},
		{"wav", "RIFF\x20\x00\x00\x00WAVEfmt ", "WAV"},
		{"avi", "RIFF\x20\x00\x00\x00AVI LIST", "AVI"},
		{"exr", "\x76\x2F\x31\x01\x02\x00\x00\x00", "EXR"},
		{"hdr", "#?RADIANCE\n", "HDR"},
		{"m4a", "\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00", "M4A"},
		{"mov", "\x00\x00\x00\x14ftypqt  \x00\x00\x00\x00", "MOV"},
		{"mp4", "\x00\x00\x00\x18ftypisom\x00\x00\x02\x00", "MP4"},
		{"cr3", "\x00\x00\x00\x18ftypcrx \x00\x00\x00\x01", "CR3"},
		{"flac", "fLaC\x00\x00\x00\x22", "FLAC"},
		{"ogg", "OggS\x00\x02", "OGG"},
		{"aiff", "FORM\x00\x00\x00\x20AIFFCOMM", "AIFF"},
		{"midi", "MThd\x00\x00\x00\x06\x00\x01", "MIDI"},
		{"pdf", "%PDF-1.7\n", "PDF"},
		{"eps", "%!PS-Adobe-3.0 EPSF-3.0\n", "EPS"},
		{"zip", "PK\x03\x04\x14\x00", "DOCX"},
		{"mkv", "\x1A\x45\xDF\xA3\x9F\x42\x86\x81", "MKV"},
		{"flv", "FLV\x01\x05\x00\x00\x00\x09", "FLV"},
		{"mp3 id3", "ID3\x04\x00\x00\x00\x00\x00\x00", "MP3"},
		{"psd", "8BPS\x00\x01", "PSD"},
		{"raf", "FUJIFILMCCD-RAW 0201", "RAF"},
		{"cr2", "II*\x00\x10\x00\x00\x00CR\x02\x00", "CR2"},
		{"rw2", "IIU\x00\x18\x00\x00\x00", "RW2"},
		{"tiff le", "II*\x00\x08\x00\x00\x00", "TIFF"},
		{"tiff be", "MM\x00*\x00\x00\x00\x08", "TIFF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Detect([]byte(tt.prefix))
			if !ok {
				t.Fatalf("no parser claimed %q", tt.prefix)
			}
			if got := p.Info().Name; got != tt.want {
				t.Errorf("Detect = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	for _, prefix := range []string{"", "hello world, plain text", "\x00\x00\x00\x00\x00\x00\x00\x00"} {
		if p, ok := Detect([]byte(prefix)); ok {
			t.Errorf("Detect(%q) = %s", prefix, p.Info().Name)
		}
	}
}

func TestDetectionNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range detection {
		name := p.Info().Name
		if name == "" {
			t.Error("parser without a name")
		}
		if seen[name] {
			t.Errorf("%s is registered twice", name)
		}
		seen[name] = true
	}
	if last := detection[len(detection)-1].Info().Name; last != "TIFF" {
		t.Errorf("last parser = %s, want TIFF", last)
	}
}

func TestByExtension(t *testing.T) {
	tests := map[string]string{
		"jpg":   "JPEG",
		".JPEG": "JPEG",
		"tif":   "TIFF",
		"nef":   "NEF",
		"flac":  "FLAC",
		"xlsx":  "XLSX",
		"webm":  "MKV",
	}
	for ext, want := range tests {
		p, ok := ByExtension(ext)
		if !ok {
			t.Errorf("ByExtension(%q) found nothing", ext)
			continue
		}
		if got := p.Info().Name; got != want {
			t.Errorf("ByExtension(%q) = %s, want %s", ext, got, want)
		}
	}
	if _, ok := ByExtension("nope"); ok {
		t.Error("ByExtension(nope) matched")
	}
}

func TestByName(t *testing.T) {
	p, ok := ByName("flac")
	if !ok || p.Info().Name != "FLAC" {
		t.Fatalf("ByName(flac) = %v, %v", p, ok)
	}
	if _, ok := ByName("DNG"); !ok {
		t.Error("DNG is not registered")
	}
}

func TestFormats(t *testing.T) {
	infos := Formats()
	if len(infos) != len(Parsers()) {
		t.Fatalf("%d infos for %d parsers", len(infos), len(Parsers()))
	}
	for _, fi := range infos {
		if fi.Name == "" || fi.MediaType == "" {
			t.Errorf("incomplete info %+v", fi)
		}
	}
}

func jpegFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, stdimage.NewGray(stdimage.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	m, err := Parse(bytes.NewReader(jpegFile(t)))
	if err != nil {
		t.Fatal(err)
	}
	if m.Format != "JPEG" {
		t.Errorf("Format = %s", m.Format)
	}
	if m.Attrs.IsDirty() {
		t.Error("parsed attributes are dirty")
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("just some text that is not media")))
	var ue *core.UnsupportedFormatError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnsupportedFormatError", err)
	}
}

func TestParsePlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("not an office package"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(bytes.NewReader(buf.Bytes())); !errors.Is(err, core.ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, jpegFile(t), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.FilePath != path || m.Format != "JPEG" {
		t.Errorf("FilePath = %s, Format = %s", m.FilePath, m.Format)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
