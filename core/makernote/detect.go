package makernote

import (
	"bytes"

	"github.com/ankit-chaubey/metasurgery/core/endian"
)

// Layout says where a vendor directory lives inside the MakerNote blob and
// how to read it.
type Layout struct {
	// Offset is the position of the directory within the blob.
	Offset uint64
	Order  endian.ByteOrder
	// Relative is set when offsets inside the directory count from Origin
	// bytes into the blob. Otherwise they count from the parent TIFF header.
	Relative bool
	Origin   int
	// Table names the tag table to use; empty means the vendor's default.
	Table string
}

var (
	sigNikon      = []byte("Nikon\x00")
	sigSony       = [][]byte{[]byte("SONY DSC "), []byte("SONY CAM "), []byte("SONY MOBILE")}
	sigOlympusNew = []byte("OLYMPUS\x00")
	sigOMSystem   = []byte("OM SYSTEM\x00")
	sigOlympusOld = []byte("OLYMP\x00")
	sigPanasonic  = []byte("Panasonic\x00\x00\x00")
	sigFujifilm   = []byte("FUJIFILM")
	sigPentaxAOC  = []byte("AOC\x00")
	sigPentax     = []byte("PENTAX \x00")
	sigLeicaType1 = []byte("LEICA\x00\x00\x00")
	sigLeicaAG    = []byte("LEICA CAMERA AG\x00")
	sigLeica      = []byte("LEICA")
	sigKodakInfo  = []byte("KDK INFO")
	sigKodak      = []byte("KDK")
	sigSigma      = []byte("SIGMA\x00\x00\x00")
	sigFoveon     = []byte("FOVEON\x00\x00")
	sigSanyo      = []byte("SANYO\x00")
	sigCasio2     = []byte("QVC\x00\x00\x00")
)

// Sniff identifies a vendor from the blob's magic header alone. Canon and
// Samsung have no header and are never sniffed.
func Sniff(note []byte) Vendor {
	switch {
	case bytes.HasPrefix(note, sigNikon):
		return Nikon
	case hasAnyPrefix(note, sigSony...):
		return Sony
	case bytes.HasPrefix(note, sigOlympusNew), bytes.HasPrefix(note, sigOMSystem), bytes.HasPrefix(note, sigOlympusOld):
		return Olympus
	case bytes.HasPrefix(note, sigPanasonic):
		return Panasonic
	case bytes.HasPrefix(note, sigFujifilm):
		return Fujifilm
	case bytes.HasPrefix(note, sigPentaxAOC), bytes.HasPrefix(note, sigPentax):
		return Pentax
	case bytes.HasPrefix(note, sigLeica):
		return Leica
	case bytes.HasPrefix(note, sigKodak):
		return Kodak
	case bytes.HasPrefix(note, sigSigma), bytes.HasPrefix(note, sigFoveon):
		return Sigma
	case bytes.HasPrefix(note, sigSanyo):
		return Sanyo
	case bytes.HasPrefix(note, sigCasio2):
		return Casio
	}
	return Unknown
}

// Detect finds the directory of vendor v inside note. parent is the byte
// order of the enclosing TIFF.
func Detect(v Vendor, note []byte, parent endian.ByteOrder) (Layout, bool) {
	var (
		l  Layout
		ok bool
	)
	switch v {
	case Canon, Samsung:
		l, ok = Layout{Order: parent}, true
	case Nikon:
		l, ok = detectNikon(note, parent)
	case Sony:
		l, ok = detectSony(note, parent)
	case Olympus:
		l, ok = detectOlympus(note, parent)
	case Panasonic:
		l, ok = Layout{Order: endian.LittleEndian}, true
		if bytes.HasPrefix(note, sigPanasonic) {
			l.Offset = 12
		}
	case Fujifilm:
		l, ok = detectFujifilm(note)
	case Pentax:
		l, ok = detectPentax(note, parent)
	case Leica:
		l, ok = detectLeica(note, parent)
	case Kodak:
		l, ok = detectKodak(note)
	case Sigma:
		l, ok = Layout{Order: endian.LittleEndian}, true
		if bytes.HasPrefix(note, sigSigma) || bytes.HasPrefix(note, sigFoveon) {
			l.Offset = 8
		}
	case Sanyo:
		l, ok = Layout{Order: parent}, true
		if bytes.HasPrefix(note, sigSanyo) {
			l.Offset = 8
		}
	case Casio:
		l, ok = Layout{Order: parent}, true
		if bytes.HasPrefix(note, sigCasio2) {
			l = Layout{Offset: 6, Order: endian.LittleEndian, Table: "Casio2"}
		}
	}
	if !ok || l.Offset+2 > uint64(len(note)) {
		return Layout{}, false
	}
	return l, true
}

func detectNikon(note []byte, parent endian.ByteOrder) (Layout, bool) {
	if !bytes.HasPrefix(note, sigNikon) {
		return Layout{Order: parent}, true
	}
	if len(note) < 8 {
		return Layout{}, false
	}
	if note[6] != 0x02 {
		return Layout{Offset: 8, Order: parent}, true
	}
	// Embedded TIFF header at 10; offsets count from it.
	if len(note) < 18 {
		return Layout{}, false
	}
	order, err := endian.FromMarker(note[10:12])
	if err != nil {
		return Layout{}, false
	}
	first := uint64(order.Uint32(note[14:18]))
	return Layout{Offset: 10 + first, Order: order, Relative: true, Origin: 10}, true
}

func detectSony(note []byte, parent endian.ByteOrder) (Layout, bool) {
	if hasAnyPrefix(note, sigSony...) {
		return Layout{Offset: 12, Order: parent}, true
	}
	return Layout{Order: parent}, true
}

func detectOlympus(note []byte, parent endian.ByteOrder) (Layout, bool) {
	switch {
	case bytes.HasPrefix(note, sigOMSystem):
		if len(note) < 16 {
			return Layout{}, false
		}
		order, err := endian.FromMarker(note[12:14])
		if err != nil {
			return Layout{}, false
		}
		return Layout{Offset: 16, Order: order, Relative: true}, true
	case bytes.HasPrefix(note, sigOlympusNew):
		if len(note) < 12 {
			return Layout{}, false
		}
		order, err := endian.FromMarker(note[8:10])
		if err != nil {
			return Layout{}, false
		}
		return Layout{Offset: 12, Order: order, Relative: true}, true
	case bytes.HasPrefix(note, sigOlympusOld):
		return Layout{Offset: 8, Order: parent}, true
	}
	return Layout{Order: parent}, true
}

// Fujifilm stores a little-endian IFD offset after the magic, counted
// from the start of the blob.
func detectFujifilm(note []byte) (Layout, bool) {
	if !bytes.HasPrefix(note, sigFujifilm) || len(note) < 12 {
		return Layout{}, false
	}
	off := uint64(endian.LittleEndian.Uint32(note[8:12]))
	return Layout{Offset: off, Order: endian.LittleEndian, Relative: true}, true
}

func detectPentax(note []byte, parent endian.ByteOrder) (Layout, bool) {
	switch {
	case bytes.HasPrefix(note, sigPentaxAOC):
		order := parent
		if len(note) >= 6 {
			if o, err := endian.FromMarker(note[4:6]); err == nil {
				order = o
			}
		}
		return Layout{Offset: 6, Order: order}, true
	case bytes.HasPrefix(note, sigPentax):
		order := parent
		if len(note) >= 10 {
			if o, err := endian.FromMarker(note[8:10]); err == nil {
				order = o
			}
		}
		return Layout{Offset: 10, Order: order, Relative: true}, true
	}
	return Layout{Order: parent}, true
}

func detectLeica(note []byte, parent endian.ByteOrder) (Layout, bool) {
	switch {
	case bytes.HasPrefix(note, sigLeicaType1):
		order := endian.LittleEndian
		if len(note) >= 10 {
			if o, err := endian.FromMarker(note[8:10]); err == nil {
				order = o
			}
		}
		return Layout{Offset: 8, Order: order}, true
	case bytes.HasPrefix(note, sigLeicaAG):
		return Layout{Offset: 16, Order: endian.LittleEndian}, true
	case bytes.HasPrefix(note, sigLeica):
		end := bytes.IndexByte(note, 0)
		if end < 0 {
			end = len(sigLeica)
		}
		end++
		return Layout{Offset: uint64(end + end%2), Order: parent}, true
	}
	// Headerless notes are accepted only when the entry count is plausible.
	if len(note) < 2 {
		return Layout{}, false
	}
	n := int(parent.Uint16(note))
	if n == 0 || n >= 100 || 2+n*12+4 > len(note) {
		return Layout{}, false
	}
	return Layout{Order: parent}, true
}

func detectKodak(note []byte) (Layout, bool) {
	switch {
	case bytes.HasPrefix(note, sigKodakInfo):
		return Layout{Offset: 8, Order: endian.BigEndian}, true
	case bytes.HasPrefix(note, sigKodak) && len(note) > 10:
		skip := uint64(8)
		if note[3] == 0 {
			skip = 4
		}
		return Layout{Offset: skip, Order: endian.BigEndian}, true
	}
	return Layout{Order: endian.BigEndian}, true
}

func hasAnyPrefix(b []byte, prefixes ...[]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(b, p) {
			return true
		}
	}
	return false
}
