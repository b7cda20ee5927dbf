// Package makernote decodes the vendor-private MakerNote block found in
// the EXIF directory. Each vendor stores a TIFF-like directory, possibly
// behind a magic header, in its own byte order, and with offsets counted
// either from the TIFF header or from the MakerNote itself.
package makernote

import "strings"

// Vendor identifies a MakerNote dialect.
type Vendor int

const (
	Unknown Vendor = iota
	Canon
	Nikon
	Sony
	Olympus
	Panasonic
	Fujifilm
	Pentax
	Leica
	Samsung
	Kodak
	Sigma
	Sanyo
	Casio
)

var vendorNames = [...]string{
	Unknown:   "Unknown",
	Canon:     "Canon",
	Nikon:     "Nikon",
	Sony:      "Sony",
	Olympus:   "Olympus",
	Panasonic: "Panasonic",
	Fujifilm:  "Fujifilm",
	Pentax:    "Pentax",
	Leica:     "Leica",
	Samsung:   "Samsung",
	Kodak:     "Kodak",
	Sigma:     "Sigma",
	Sanyo:     "Sanyo",
	Casio:     "Casio",
}

func (v Vendor) String() string {
	if v < 0 || int(v) >= len(vendorNames) {
		return "Unknown"
	}
	return vendorNames[v]
}

// makeHints is checked in order; the first substring found in the
// lower-cased Make wins.
var makeHints = []struct {
	sub    string
	vendor Vendor
}{
	{"canon", Canon},
	{"nikon", Nikon},
	{"sony", Sony},
	{"fuji", Fujifilm},
	{"olympus", Olympus},
	{"om digital", Olympus},
	{"panasonic", Panasonic},
	{"leica", Leica},
	{"pentax", Pentax},
	{"ricoh", Pentax},
	{"samsung", Samsung},
	{"kodak", Kodak},
	{"eastman", Kodak},
	{"sigma", Sigma},
	{"foveon", Sigma},
	{"sanyo", Sanyo},
	{"casio", Casio},
}

// FromMake maps the EXIF Make string to a vendor.
func FromMake(maker string) Vendor {
	m := strings.ToLower(strings.TrimSpace(maker))
	if m == "" {
		return Unknown
	}
	for _, h := range makeHints {
		if strings.Contains(m, h.sub) {
			return h.vendor
		}
	}
	return Unknown
}
