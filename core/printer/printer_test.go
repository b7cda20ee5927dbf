package printer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

func sample(path string) *core.Metadata {
	m := core.NewMetadata("JPEG")
	m.FilePath = path
	m.Attrs.Set("Make", attrs.Str("Canon"))
	m.Attrs.Set("ExposureTime", attrs.URational(1, 125))
	m.Attrs.Set("DC:title", attrs.Str("Harbour"))
	m.Attrs.Set("ICC:ProfileData", attrs.Bytes(make([]byte, 64)))
	m.Thumbnail = make([]byte, 10)
	return m
}

func newTest(format string) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := New(format)
	p.Writer, p.ErrWriter = &out, &errOut
	return p, &out, &errOut
}

func TestFields(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		all    bool
		want   []Field
	}{
		{"default", nil, false, []Field{
			{"EXIF", "Make", "Canon"},
			{"EXIF", "ExposureTime", "1/125 sec"},
			{"DC", "title", "Harbour"},
		}},
		{"filter by name", []string{"title"}, false, []Field{{"DC", "title", "Harbour"}}},
		{"filter by group", []string{"exif"}, false, []Field{
			{"EXIF", "Make", "Canon"},
			{"EXIF", "ExposureTime", "1/125 sec"},
		}},
		{"filter by path", []string{"make"}, false, []Field{{"EXIF", "Make", "Canon"}}},
		{"all", []string{"ICC"}, true, []Field{
			{"ICC", "ProfileData", attrs.Bytes(make([]byte, 64)).String()},
			{"File", "ThumbnailImage", "(Binary data 10 bytes)"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTest(Text)
			p.Filter, p.All = tt.filter, tt.all
			got := p.Fields(sample("a.jpg"))
			if len(got) != len(tt.want) {
				t.Fatalf("Fields = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrintText(t *testing.T) {
	p, out, _ := newTest(Text)
	if err := p.Print(sample("a.jpg")); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{"File  : a.jpg", "Format: JPEG", "── EXIF ──", "── DC ──", "Harbour"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
	if strings.Index(text, "── EXIF ──") > strings.Index(text, "── DC ──") {
		t.Error("groups are not in first-seen order")
	}

	p, out, _ = newTest(Text)
	if err := p.Print(core.NewMetadata("GIF")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(no metadata found)") {
		t.Errorf("empty output:\n%s", out)
	}
}

func TestPrintJSON(t *testing.T) {
	p, out, _ := newTest(JSON)
	if err := p.PrintJSON([]*core.Metadata{sample("a.jpg"), sample("b.jpg")}); err != nil {
		t.Fatal(err)
	}
	var objs []map[string]string
	if err := json.Unmarshal(out.Bytes(), &objs); err != nil {
		t.Fatal(err)
	}
	if len(objs) != 2 {
		t.Fatalf("%d objects", len(objs))
	}
	want := map[string]string{
		"SourceFile":    "b.jpg",
		"File:FileType": "JPEG",
		"Make":          "Canon",
		"ExposureTime":  "1/125 sec",
		"DC:title":      "Harbour",
	}
	for k, v := range want {
		if objs[1][k] != v {
			t.Errorf("%s = %q, want %q", k, objs[1][k], v)
		}
	}
}

func TestPrintCSV(t *testing.T) {
	p, out, _ := newTest(CSV)
	other := core.NewMetadata("PNG")
	other.FilePath = "c.png"
	other.Attrs.Set("PNG:Title", attrs.Str("Dusk, late"))
	if err := p.PrintCSV([]*core.Metadata{sample("a.jpg"), other}); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(out).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := []string{"SourceFile", "FileType", "DC:title", "ExposureTime", "Make", "PNG:Title"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Errorf("header = %v", rows[0])
	}
	if len(rows) != 3 || rows[2][5] != "Dusk, late" || rows[2][4] != "" || rows[1][4] != "Canon" {
		t.Errorf("rows = %v", rows)
	}
}

func TestPrintWarnings(t *testing.T) {
	p, _, errOut := newTest(Text)
	m := sample("a.jpg")
	p.PrintWarnings(m)
	if errOut.Len() != 0 {
		t.Errorf("unexpected warnings %q", errOut)
	}
	m.Warnings = multierror.Append(m.Warnings, errors.New("entry 3 skipped"), errors.New("bad chunk"))
	p.PrintWarnings(m)
	if got := strings.Count(errOut.String(), "Warning: a.jpg: "); got != 2 {
		t.Errorf("%d warning lines in %q", got, errOut)
	}

	p.PrintError("boom")
	if !strings.HasSuffix(errOut.String(), "Error: boom\n") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestParseKV(t *testing.T) {
	tests := []struct {
		in         string
		key, value string
		ok         bool
	}{
		{"Artist=Jane", "Artist", "Jane", true},
		{" DC:title = A=B ", "DC:title", "A=B", true},
		{"Artist=", "Artist", "", true},
		{"=x", "", "", false},
		{"Artist", "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := ParseKV(tt.in)
		if k != tt.key || v != tt.value || ok != tt.ok {
			t.Errorf("ParseKV(%q) = %q, %q, %v", tt.in, k, v, ok)
		}
	}
}
