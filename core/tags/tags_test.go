package tags

import (
	"testing"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

func TestFlashString(t *testing.T) {
	tests := []struct {
		in   uint32
		want string
	}{
		{0, "No Flash"},
		{1, "Fired"},
		{0x10, "No Flash, Off"},
		{25, "Fired, Auto"},
		{0x09, "Fired, On"},
		{0x59, "Fired, Auto, Red-eye reduction"},
	}
	for _, tt := range tests {
		if got := FlashString(tt.in); got != tt.want {
			t.Errorf("FlashString(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		v    attrs.Value
		want string
	}{
		{"Orientation", attrs.UInt(6), "Rotate 90 CW"},
		{"Orientation", attrs.UInt(42), "42"},
		{"EXIF:Orientation", attrs.UInt(1), "Horizontal (normal)"},
		{"Flash", attrs.UInt(25), "Fired, Auto"},
		{"ExposureTime", attrs.URational(1, 125), "1/125 sec"},
		{"ExposureTime", attrs.URational(2, 1), "2.0 sec"},
		{"FNumber", attrs.URational(28, 10), "f/2.8"},
		{"FNumber", attrs.URational(8, 1), "f/8"},
		{"FNumber", attrs.URational(28, 0), "28/0"},
		{"FocalLength", attrs.URational(50, 1), "50 mm"},
		{"GPSLatitudeRef", attrs.Str("N"), "North"},
		{"GPSStatus", attrs.Str("V"), "Measurement Void"},
		{"GPSMeasureMode", attrs.Str("3"), "3-Dimensional Measurement"},
		{"FileSource", attrs.Bytes([]byte{3}), "Digital Camera"},
		{"ExifVersion", attrs.Bytes([]byte("0232")), "0232"},
		{"ComponentsConfiguration", attrs.Bytes([]byte{1, 2, 3, 0}), "Y, Cb, Cr, -"},
		{"Make", attrs.Str("Canon"), "Canon"},
		{"ColorSpace", attrs.UInt(0xFFFF), "Uncalibrated"},
	}
	for _, tt := range tests {
		if got := Describe(tt.name, tt.v); got != tt.want {
			t.Errorf("Describe(%s, %v) = %q, want %q", tt.name, tt.v, got, tt.want)
		}
	}
}

func TestDescribeAttrGPS(t *testing.T) {
	a := attrs.New()
	a.Set("GPSLatitude", attrs.List(attrs.URational(40, 1), attrs.URational(26, 1), attrs.URational(4632, 100)))
	a.Set("GPSLatitudeRef", attrs.Str("N"))
	a.Set("GPSAltitude", attrs.URational(105, 10))
	a.Set("GPSAltitudeRef", attrs.UInt(1))

	got, ok := DescribeAttr(a, "GPSLatitude")
	if !ok || got != `40° 26' 46.32" N` {
		t.Errorf("latitude = %q", got)
	}
	got, _ = DescribeAttr(a, "GPSAltitude")
	if got != "10.5 m Below Sea Level" {
		t.Errorf("altitude = %q", got)
	}
	if _, ok := DescribeAttr(a, "GPSLongitude"); ok {
		t.Error("missing key should report false")
	}

	lat, _ := a.Get("GPSLatitude")
	d, ok := GPSDecimal(lat, "S")
	if !ok || d > -40.44 || d < -40.45 {
		t.Errorf("GPSDecimal = %v", d)
	}
}

func TestLookupAndFind(t *testing.T) {
	if got := Name(IFD0, TagMake); got != "Make" {
		t.Errorf("Name(Make) = %q", got)
	}
	if got := Name(ExifIFD, 0xBEEF); got != "Tag0xBEEF" {
		t.Errorf("unknown name = %q", got)
	}
	if id, ok := ParseUnknownName("Tag0xBEEF"); !ok || id != 0xBEEF {
		t.Errorf("ParseUnknownName = %#x, %v", id, ok)
	}
	if _, ok := ParseUnknownName("Tag0xZZZZ"); ok {
		t.Error("ParseUnknownName accepted bad hex")
	}

	r, ok := Find("EXIF:DateTimeOriginal")
	if !ok || r.Context != ExifIFD || r.Tag != 0x9003 {
		t.Errorf("Find(DateTimeOriginal) = %+v", r)
	}
	r, ok = Find("GPSLatitude")
	if !ok || r.Context != GPSIFD || r.Tag != 0x0002 {
		t.Errorf("Find(GPSLatitude) = %+v", r)
	}
	if !IsStructural(IFD0, TagExifIFD) || IsStructural(IFD0, TagMake) {
		t.Error("structural flags wrong")
	}
	if !r.Def.Writable() {
		t.Error("GPSLatitude should be writable")
	}
}

func TestTablesHaveUniqueNames(t *testing.T) {
	check := func(label string, tbl Table) {
		seen := map[string]uint16{}
		for id, d := range tbl {
			if d.Name == "" {
				t.Errorf("%s: tag %#04x has no name", label, id)
			}
			if prev, dup := seen[d.Name]; dup {
				t.Errorf("%s: %q used by %#04x and %#04x", label, d.Name, prev, id)
			}
			seen[d.Name] = id
		}
	}
	for ctx, tbl := range standard {
		check(ctx.String(), tbl)
	}
	for v, tbl := range vendorTables {
		check(v, tbl)
	}
}

func TestVendorTables(t *testing.T) {
	for _, v := range Vendors() {
		if _, ok := Vendor(v); !ok {
			t.Errorf("no table for %s", v)
		}
	}
	bt, ok := Binary("Canon", 0x0001)
	if !ok || bt.Name != "CameraSettings" {
		t.Fatalf("Canon CameraSettings missing")
	}
	if f := bt.Fields[22]; f.Name != "LensType" {
		t.Errorf("field 22 = %q", f.Name)
	}
	bt, ok = Binary("Nikon", 0x0025)
	if !ok || bt.Fields[4].Values.Describe(0x101) != "Hi 0.3" {
		t.Error("Nikon ISOInfo expansion table")
	}
	if _, ok := VendorSubIFD("Olympus", 0x2010); !ok {
		t.Error("Olympus equipment sub-IFD missing")
	}
}
