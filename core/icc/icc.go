// Package icc decodes the header and descriptive tags of ICC colour
// profiles, and reassembles profiles split across JPEG APP2 segments.
package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	log "github.com/dsoprea/go-logging"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var iccLogger = log.NewLogger("icc")

// HeaderSize is the fixed profile header length.
const HeaderSize = 128

// maxTags bounds the tag table.
const maxTags = 1024

// JPEGHeader prefixes every APP2 chunk of an embedded profile.
const JPEGHeader = "ICC_PROFILE\x00"

var classes = map[string]string{
	"scnr": "Input Device Profile",
	"mntr": "Display Device Profile",
	"prtr": "Output Device Profile",
	"link": "DeviceLink Profile",
	"spac": "ColorSpace Conversion Profile",
	"abst": "Abstract Profile",
	"nmcl": "NamedColor Profile",
}

var intents = []string{
	"Perceptual",
	"Media-Relative Colorimetric",
	"Saturation",
	"ICC-Absolute Colorimetric",
}

var platforms = map[string]string{
	"APPL": "Apple Computer Inc.",
	"MSFT": "Microsoft Corporation",
	"SGI ": "Silicon Graphics Inc.",
	"SUNW": "Sun Microsystems Inc.",
}

// Decode reads a profile into "ICC:<Name>" attributes. A profile shorter
// than the header is an error; damaged tags are skipped.
func Decode(p []byte) (*attrs.Attrs, error) {
	if len(p) < HeaderSize {
		return nil, core.EOF(HeaderSize, len(p))
	}
	if string(p[36:40]) != "acsp" {
		return nil, core.Structure("icc: missing acsp signature")
	}
	a := attrs.New()
	be := binary.BigEndian
	a.Set("ICC:ProfileSize", attrs.UInt(be.Uint32(p)))
	if s := sig(p[4:8]); s != "" {
		a.Set("ICC:ProfileCMMType", attrs.Str(s))
	}
	a.Set("ICC:ProfileVersion", attrs.Str(fmt.Sprintf("%d.%d.%d", p[8], p[9]>>4, p[9]&0x0F)))
	class := string(p[12:16])
	if name, ok := classes[class]; ok {
		a.Set("ICC:ProfileClass", attrs.Str(name))
	} else {
		a.Set("ICC:ProfileClass", attrs.Str(sig(p[12:16])))
	}
	a.Set("ICC:ColorSpaceData", attrs.Str(sig(p[16:20])))
	a.Set("ICC:ProfileConnectionSpace", attrs.Str(sig(p[20:24])))
	if y := be.Uint16(p[24:]); y > 0 {
		a.Set("ICC:ProfileDateTime", attrs.Str(fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d",
			y, be.Uint16(p[26:]), be.Uint16(p[28:]), be.Uint16(p[30:]), be.Uint16(p[32:]), be.Uint16(p[34:]))))
	}
	if pl := string(p[40:44]); pl != "\x00\x00\x00\x00" {
		if name, ok := platforms[pl]; ok {
			a.Set("ICC:PrimaryPlatform", attrs.Str(name))
		} else {
			a.Set("ICC:PrimaryPlatform", attrs.Str(sig(p[40:44])))
		}
	}
	if s := sig(p[48:52]); s != "" {
		a.Set("ICC:DeviceManufacturer", attrs.Str(s))
	}
	if s := sig(p[52:56]); s != "" {
		a.Set("ICC:DeviceModel", attrs.Str(s))
	}
	if in := be.Uint32(p[64:]); int(in) < len(intents) {
		a.Set("ICC:RenderingIntent", attrs.Str(intents[in]))
	}
	a.Set("ICC:ConnectionSpaceIlluminant", attrs.Str(xyz(p[68:80])))
	if s := sig(p[80:84]); s != "" {
		a.Set("ICC:ProfileCreator", attrs.Str(s))
	}
	if id := p[84:100]; !bytes.Equal(id, make([]byte, 16)) {
		a.Set("ICC:ProfileID", attrs.Str(fmt.Sprintf("%x", id)))
	}

	if len(p) < HeaderSize+4 {
		return a, nil
	}
	count := be.Uint32(p[HeaderSize:])
	if count > maxTags || HeaderSize+4+int(count)*12 > len(p) {
		return a, core.Structure("icc: tag count %d does not fit %d bytes", count, len(p))
	}
	for i := 0; i < int(count); i++ {
		e := p[HeaderSize+4+i*12:]
		tag := string(e[:4])
		off, size := be.Uint32(e[4:]), be.Uint32(e[8:])
		if uint64(off)+uint64(size) > uint64(len(p)) || size < 8 {
			iccLogger.Warningf(nil, "icc tag %q at %d+%d outside the profile", tag, off, size)
			continue
		}
		if v, ok := decodeTag(p[off : off+size]); ok {
			a.Set("ICC:"+TagName(tag), attrs.Str(v))
		}
	}
	return a, nil
}

// Description returns the display name held in the desc tag.
func Description(p []byte) string {
	a, err := Decode(p)
	if err != nil && a == nil {
		return ""
	}
	s, _ := a.GetStr("ICC:ProfileDescription")
	return s
}

func decodeTag(d []byte) (string, bool) {
	be := binary.BigEndian
	switch string(d[:4]) {
	case "text":
		return trimNUL(string(d[8:])), true
	case "desc":
		if len(d) < 12 {
			return "", false
		}
		n := int(be.Uint32(d[8:]))
		if n == 0 || 12+n > len(d) {
			return "", false
		}
		return trimNUL(string(d[12 : 12+n])), true
	case "mluc":
		return mluc(d)
	case "sig ":
		if len(d) < 12 {
			return "", false
		}
		return sig(d[8:12]), true
	case "XYZ ":
		if len(d) < 20 {
			return "", false
		}
		return xyz(d[8:20]), true
	case "curv":
		if len(d) < 12 {
			return "", false
		}
		switch n := be.Uint32(d[8:]); {
		case n == 0:
			return "Linear", true
		case n == 1 && len(d) >= 14:
			return fmt.Sprintf("Gamma %.2f", float64(be.Uint16(d[12:]))/256), true
		default:
			return fmt.Sprintf("(Curve %d points)", n), true
		}
	case "para":
		if len(d) < 12 {
			return "", false
		}
		return fmt.Sprintf("(Parametric type %d)", be.Uint16(d[8:])), true
	case "dtim":
		if len(d) < 20 {
			return "", false
		}
		return fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d",
			be.Uint16(d[8:]), be.Uint16(d[10:]), be.Uint16(d[12:]), be.Uint16(d[14:]), be.Uint16(d[16:]), be.Uint16(d[18:])), true
	}
	return fmt.Sprintf("(%s data, %d bytes)", strings.TrimSpace(string(d[:4])), len(d)), true
}

// mluc returns the first record of a multi-localised Unicode tag,
// preferring en-US.
func mluc(d []byte) (string, bool) {
	be := binary.BigEndian
	if len(d) < 16 {
		return "", false
	}
	n, recSize := int(be.Uint32(d[8:])), int(be.Uint32(d[12:]))
	if n == 0 || recSize < 12 {
		return "", false
	}
	pick := -1
	for i := 0; i < n && 16+(i+1)*recSize <= len(d); i++ {
		r := d[16+i*recSize:]
		if pick < 0 || string(r[:4]) == "enUS" {
			pick = i
		}
		if string(r[:4]) == "enUS" {
			break
		}
	}
	if pick < 0 {
		return "", false
	}
	r := d[16+pick*recSize:]
	length, off := be.Uint32(r[4:]), be.Uint32(r[8:])
	if uint64(off)+uint64(length) > uint64(len(d)) {
		return "", false
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.Bytes(d[off : off+length])
	if err != nil {
		return "", false
	}
	return trimNUL(string(s)), true
}

func sig(b []byte) string {
	return strings.TrimRight(trimNUL(string(b)), " ")
}

func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

func xyz(b []byte) string {
	be := binary.BigEndian
	f := func(i int) float64 { return float64(int32(be.Uint32(b[i:]))) / 65536 }
	return fmt.Sprintf("%.4f %.4f %.4f", f(0), f(4), f(8))
}

// Assembler collects APP2 chunks of a profile in any order.
type Assembler struct {
	total  int
	chunks map[int][]byte
}

// Add takes one APP2 payload, with or without JPEGHeader. It reports
// whether the payload was an ICC chunk.
func (as *Assembler) Add(payload []byte) bool {
	payload = bytes.TrimPrefix(payload, []byte(JPEGHeader))
	if len(payload) < 2 {
		return false
	}
	seq, total := int(payload[0]), int(payload[1])
	if seq == 0 || total == 0 || seq > total {
		iccLogger.Warningf(nil, "icc chunk %d of %d ignored", seq, total)
		return false
	}
	if as.chunks == nil {
		as.chunks = map[int][]byte{}
	}
	if as.total != 0 && as.total != total {
		iccLogger.Warningf(nil, "icc chunk total changed from %d to %d", as.total, total)
	}
	as.total = total
	as.chunks[seq] = payload[2:]
	return true
}

// Profile joins the chunks in sequence. It returns nil until every chunk
// has been seen.
func (as *Assembler) Profile() []byte {
	if as.total == 0 || len(as.chunks) < as.total {
		return nil
	}
	var out []byte
	for i := 1; i <= as.total; i++ {
		c, ok := as.chunks[i]
		if !ok {
			return nil
		}
		out = append(out, c...)
	}
	return out
}

// Split cuts a profile into APP2 payloads (header included) of at most
// limit bytes each.
func Split(profile []byte, limit int) [][]byte {
	room := limit - len(JPEGHeader) - 2
	if room <= 0 || len(profile) == 0 {
		return nil
	}
	n := (len(profile) + room - 1) / room
	if n > 255 {
		return nil
	}
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		end := min((i+1)*room, len(profile))
		seg := append([]byte(JPEGHeader), byte(i+1), byte(n))
		out = append(out, append(seg, profile[i*room:end]...))
	}
	return out
}
