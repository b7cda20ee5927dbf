// Package iptc decodes and encodes IPTC-IIM datasets and the Photoshop
// image-resource blocks (8BIM) that carry them.
package iptc

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	log "github.com/dsoprea/go-logging"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/encoding/charmap"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var iptcLogger = log.NewLogger("iptc")

// PhotoshopHeader opens a JPEG APP13 segment.
const PhotoshopHeader = "Photoshop 3.0\x00"

// Image resource IDs.
const (
	ResourceResolution    = 0x03ED
	ResourceIPTC          = 0x0404
	ResourceCopyrightFlag = 0x040A
	ResourceURL           = 0x040B
	ResourceThumbnail     = 0x040C
	ResourceGlobalAngle   = 0x040D
	ResourceICC           = 0x040F
	ResourceEXIF          = 0x0422
	ResourceXMP           = 0x0424
	ResourceIPTCDigest    = 0x0425
)

// Resource is one entry of an image-resource block.
type Resource struct {
	Sig  string
	ID   uint16
	Name string
	Data []byte
}

func validSig(s []byte) bool {
	switch string(s) {
	case "8BIM", "PHUT", "AgHg", "DCSR", "MeSa":
		return true
	}
	return false
}

// Resources walks an image-resource block. A leading PhotoshopHeader is
// skipped. The resources read before a malformed entry are returned with
// the error.
func Resources(irb []byte) ([]Resource, error) {
	irb = bytes.TrimPrefix(irb, []byte(PhotoshopHeader))
	var out []Resource
	pos := 0
	for pos+12 <= len(irb) {
		sig := irb[pos : pos+4]
		if !validSig(sig) {
			if bytes.Count(irb[pos:], []byte{0}) == len(irb)-pos {
				break
			}
			return out, core.Structure("image resource at %d: bad signature %q", pos, sig)
		}
		id := binary.BigEndian.Uint16(irb[pos+4:])
		nameLen := int(irb[pos+6])
		name := irb[pos+7 : min(pos+7+nameLen, len(irb))]
		// The Pascal string including its length byte is padded to even.
		p := pos + 6 + (1+nameLen+1)&^1
		if p+4 > len(irb) {
			return out, core.EOF(p+4-pos, len(irb)-pos)
		}
		size := int(binary.BigEndian.Uint32(irb[p:]))
		p += 4
		if size < 0 || size > len(irb)-p {
			return out, &core.ValueOutOfBoundsError{Offset: uint64(p), Size: uint64(size), DataLen: uint64(len(irb))}
		}
		out = append(out, Resource{Sig: string(sig), ID: id, Name: string(name), Data: irb[p : p+size]})
		pos = p + (size+1)&^1
	}
	return out, nil
}

// Block is the decoded content of an image-resource block.
type Block struct {
	// Attrs holds IPTC datasets ("IPTC:Keywords") and the Photoshop
	// resources that have a display form ("Photoshop:XResolution").
	Attrs     *attrs.Attrs
	IPTC      []byte
	XMP       []byte
	EXIF      []byte
	ICC       []byte
	Thumbnail []byte
	Warnings  error
}

// DecodeBlock walks an image-resource block and decodes the resources it
// knows. Problems are collected in Warnings.
func DecodeBlock(irb []byte) *Block {
	b := &Block{Attrs: attrs.New()}
	rs, err := Resources(irb)
	if err != nil {
		b.Warnings = multierror.Append(b.Warnings, err)
	}
	for _, r := range rs {
		if r.Sig != "8BIM" {
			continue
		}
		switch r.ID {
		case ResourceIPTC:
			b.IPTC = r.Data
			a, err := Decode(r.Data)
			if err != nil {
				b.Warnings = multierror.Append(b.Warnings, err)
			}
			if a != nil {
				b.Attrs.Merge(a, false)
			}
		case ResourceXMP:
			b.XMP = r.Data
		case ResourceEXIF:
			b.EXIF = r.Data
		case ResourceICC:
			b.ICC = r.Data
		case ResourceThumbnail:
			// Format 1 (JFIF) thumbnails follow a 28-byte header.
			if len(r.Data) > 28 && binary.BigEndian.Uint32(r.Data) == 1 {
				b.Thumbnail = r.Data[28:]
			}
		case ResourceResolution:
			if len(r.Data) >= 16 {
				b.Attrs.Set("Photoshop:XResolution", attrs.Double(fixed(r.Data[0:4])))
				b.Attrs.Set("Photoshop:DisplayedUnitsX", attrs.UInt(uint32(binary.BigEndian.Uint16(r.Data[4:]))))
				b.Attrs.Set("Photoshop:YResolution", attrs.Double(fixed(r.Data[8:12])))
				b.Attrs.Set("Photoshop:DisplayedUnitsY", attrs.UInt(uint32(binary.BigEndian.Uint16(r.Data[12:]))))
			}
		case ResourceCopyrightFlag:
			if len(r.Data) >= 1 {
				b.Attrs.Set("Photoshop:CopyrightFlag", attrs.Bool(r.Data[0] != 0))
			}
		case ResourceURL:
			b.Attrs.Set("Photoshop:URL", attrs.Str(string(bytes.TrimRight(r.Data, "\x00"))))
		case ResourceGlobalAngle:
			if len(r.Data) >= 4 {
				b.Attrs.Set("Photoshop:GlobalAngle", attrs.UInt(binary.BigEndian.Uint32(r.Data)))
			}
		case ResourceIPTCDigest:
			b.Attrs.Set("Photoshop:IPTCDigest", attrs.Str(hex.EncodeToString(r.Data)))
		default:
			iptcLogger.Debugf(nil, "image resource 0x%04x (%d bytes) skipped", r.ID, len(r.Data))
		}
	}
	return b
}

// fixed reads a 16.16 fixed-point number.
func fixed(b []byte) float64 {
	return float64(binary.BigEndian.Uint32(b)) / 65536
}

// Raw is one undecoded dataset.
type Raw struct {
	Record uint8
	Number uint8
	Data   []byte
}

// Datasets splits an IIM stream. Bytes before the first tag marker are
// skipped; a truncated dataset ends the walk with an error.
func Datasets(iim []byte) ([]Raw, error) {
	var out []Raw
	pos := 0
	for pos+5 <= len(iim) {
		if iim[pos] != 0x1C {
			if len(out) > 0 {
				// Trailing padding.
				if bytes.Count(iim[pos:], []byte{0}) == len(iim)-pos {
					break
				}
				return out, core.Structure("iptc: no tag marker at %d", pos)
			}
			pos++
			continue
		}
		rec, num := iim[pos+1], iim[pos+2]
		size := int(binary.BigEndian.Uint16(iim[pos+3:]))
		pos += 5
		if size&0x8000 != 0 {
			n := size & 0x7FFF
			if n == 0 || n > 4 {
				return out, core.Structure("iptc %d:%d: extended size of %d bytes", rec, num, n)
			}
			if pos+n > len(iim) {
				return out, core.EOF(n, len(iim)-pos)
			}
			size = 0
			for _, c := range iim[pos : pos+n] {
				size = size<<8 | int(c)
			}
			pos += n
		}
		if size > len(iim)-pos {
			return out, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(size), DataLen: uint64(len(iim))}
		}
		out = append(out, Raw{Record: rec, Number: num, Data: iim[pos : pos+size]})
		pos += size
	}
	return out, nil
}

// Decode turns an IIM stream into "IPTC:<Name>" attributes. Repeatable
// datasets become lists. Text is UTF-8 when CodedCharacterSet declares it
// or the bytes are valid UTF-8, and ISO-8859-1 otherwise. A truncated
// stream returns the datasets read so far together with the error.
func Decode(iim []byte) (*attrs.Attrs, error) {
	raws, err := Datasets(iim)
	isUTF8 := false
	for _, r := range raws {
		if r.Record == RecordEnvelope && r.Number == DatasetCodedCharacterSet {
			isUTF8 = string(r.Data) == UTF8Marker
		}
	}

	a := attrs.New()
	lists := map[string][]attrs.Value{}
	var order []string
	for _, r := range raws {
		d, ok := Lookup(r.Record, r.Number)
		if !ok {
			iptcLogger.Debugf(nil, "iptc %d:%d unknown, skipped", r.Record, r.Number)
			continue
		}
		key := "IPTC:" + d.Name
		var v attrs.Value
		switch {
		case d.Record == RecordEnvelope && d.Number == DatasetCodedCharacterSet:
			if string(r.Data) == UTF8Marker {
				v = attrs.Str("UTF8")
			} else {
				v = attrs.Str(fmt.Sprintf("%q", r.Data))
			}
		case d.Format == FormatUint16:
			switch len(r.Data) {
			case 1:
				v = attrs.UInt(uint32(r.Data[0]))
			case 2:
				v = attrs.UInt(uint32(binary.BigEndian.Uint16(r.Data)))
			default:
				iptcLogger.Warningf(nil, "iptc %s: %d bytes for a 16-bit value", d.Name, len(r.Data))
				continue
			}
		case d.Format == FormatBinary:
			v = attrs.Bytes(r.Data)
		default:
			v = attrs.Str(decodeText(r.Data, isUTF8))
		}
		if d.Repeatable {
			if _, seen := lists[key]; !seen {
				order = append(order, key)
			}
			lists[key] = append(lists[key], v)
			continue
		}
		a.Set(key, v)
	}
	for _, k := range order {
		a.Set(k, attrs.List(lists[k]...))
	}
	return a, err
}

func decodeText(b []byte, isUTF8 bool) string {
	b = bytes.TrimRight(b, "\x00")
	if isUTF8 || utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
