package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
)

// ─── RAF ─────────────────────────────────────────────────────────────────────

// parseRAF reads the Fujifilm header and the embedded preview JPEG, whose
// APP1 segment holds the EXIF block.
func parseRAF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	n, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	h, err := core.ReadAt(r, 0, 0x64, n)
	if err != nil {
		return nil, errors.Wrap(err, "raf header")
	}
	m.Attrs.Set("RAF:RAFVersion", attrs.Str(ifd.TrimNUL(h[0x3C:0x40])))
	m.Attrs.Set("RAF:RAFCompression", attrs.Str(ifd.TrimNUL(h[0x10:0x14])))
	m.Attrs.Set("RAF:CameraID", attrs.Str(ifd.TrimNUL(h[0x14:0x1C])))
	m.Attrs.Set("RAF:CameraModel", attrs.Str(ifd.TrimNUL(h[0x1C:0x3C])))
	off, length := int64(binary.BigEndian.Uint32(h[0x54:])), int64(binary.BigEndian.Uint32(h[0x58:]))
	if off == 0 || length == 0 {
		m.Warn(core.Structure("raf: no embedded JPEG"))
		return m, nil
	}
	jpg, err := core.ReadAt(r, off, length, n)
	if err != nil {
		m.Warn(errors.Wrap(err, "raf JPEG"))
		return m, nil
	}
	m.Preview = jpg
	sub, err := parseJPEG(bytes.NewReader(jpg), core.NewMetadata(JPEG))
	if err != nil {
		m.Warn(errors.Wrap(err, "raf JPEG"))
		return m, nil
	}
	m.Attrs.Merge(sub.Attrs, false)
	m.Warn(sub.Warnings)
	if sub.ExifOffset >= 0 {
		m.ExifOffset = off + sub.ExifOffset
	}
	if sub.Thumbnail != nil {
		m.Thumbnail = sub.Thumbnail
	}
	m.XMP, m.ICC = sub.XMP, sub.ICC
	return m, nil
}

// ─── CRW ─────────────────────────────────────────────────────────────────────

const maxCIFFEntries = 1000

// ciff walks the heap directories of a Canon CRW.
type ciff struct {
	r     io.ReadSeeker
	m     *core.Metadata
	order endian.ByteOrder
	depth int
}

func parseCRW(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	n, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	h, err := core.ReadAt(r, 0, 26, n)
	if err != nil {
		return nil, errors.Wrap(err, "crw header")
	}
	order, err := endian.FromMarker(h)
	if err != nil {
		return nil, err
	}
	m.Attrs.Set("File:ByteOrder", attrs.Str(order.String()))
	hl := int64(order.Uint32(h[2:]))
	m.Attrs.Set("CRW:CIFFVersion", attrs.Str(fmt.Sprintf("%d.%d", order.Uint16(h[16:]), order.Uint16(h[14:]))))
	c := &ciff{r: r, m: m, order: order}
	if err := c.heap(hl, n); err != nil {
		m.Warn(errors.Wrap(err, "crw heap"))
	}
	return m, nil
}

// heap reads the directory of the heap [start, end). Its offset, relative
// to start, is stored in the last four bytes.
func (c *ciff) heap(start, end int64) error {
	if c.depth > 8 {
		return core.Structure("ciff: heap nesting too deep")
	}
	c.depth++
	defer func() { c.depth-- }()

	tail, err := core.ReadAt(c.r, end-4, 4, end)
	if err != nil {
		return err
	}
	dir := start + int64(c.order.Uint32(tail))
	cnt, err := core.ReadAt(c.r, dir, 2, end)
	if err != nil {
		return err
	}
	count := int64(c.order.Uint16(cnt))
	if count > maxCIFFEntries {
		return &core.TooManyIfdEntriesError{Count: uint64(count), Limit: maxCIFFEntries}
	}
	entries, err := core.ReadAt(c.r, dir+2, count*10, end)
	if err != nil {
		return err
	}
	for i := int64(0); i < count; i++ {
		e := entries[i*10:]
		tag := c.order.Uint16(e)
		n, off := int64(c.order.Uint32(e[2:])), start+int64(c.order.Uint32(e[6:]))
		switch tag >> 14 {
		case 0: // stored in the heap
			if tag&0x3800 == 0x2800 || tag&0x3800 == 0x3000 {
				if err := c.heap(off, off+n); err != nil {
					c.m.Warn(errors.Wrapf(err, "ciff subdirectory 0x%04X", tag))
				}
				continue
			}
			c.value(tag&0x3FFF, off, n, end)
		case 1: // stored in the entry
			c.record(tag&0x3FFF, e[2:10])
		}
	}
	return nil
}

func (c *ciff) value(tag uint16, off, n, end int64) {
	switch tag {
	case 0x2005:
		c.m.Attrs.Set("CRW:RawDataOffset", attrs.UInt64(uint64(off)))
		c.m.Attrs.Set("CRW:RawDataLength", attrs.UInt64(uint64(n)))
		return
	case 0x2007:
		if b, err := core.ReadAt(c.r, off, n, end); err == nil && bytes.HasPrefix(b, []byte{0xFF, 0xD8}) {
			c.m.Preview = b
		}
		return
	}
	if n > 65536 {
		return
	}
	b, err := core.ReadAt(c.r, off, n, end)
	if err != nil {
		c.m.Warn(errors.Wrapf(err, "ciff tag 0x%04X", tag))
		return
	}
	c.record(tag, b)
}

func (c *ciff) record(tag uint16, b []byte) {
	a := c.m.Attrs
	str := func() string { return ifd.TrimNUL(b) }
	switch tag {
	case 0x0805:
		a.Set("CRW:ImageDescription", attrs.Str(str()))
	case 0x080A:
		// Make and Model are NUL-separated.
		mk, rest, _ := bytes.Cut(b, []byte{0})
		a.SetIfAbsent("Make", attrs.Str(string(mk)))
		a.SetIfAbsent("Model", attrs.Str(ifd.TrimNUL(rest)))
	case 0x080B:
		a.Set("CRW:CanonFirmwareVersion", attrs.Str(str()))
	case 0x0810:
		a.Set("CRW:OwnerName", attrs.Str(str()))
	case 0x0816:
		a.Set("CRW:OriginalFileName", attrs.Str(str()))
	case 0x0817:
		a.Set("CRW:ThumbnailFileName", attrs.Str(str()))
	case 0x1807:
		if len(b) >= 4 {
			a.Set("CRW:TargetDistanceSetting", attrs.Float(math.Float32frombits(c.order.Uint32(b))))
		}
	case 0x180E:
		if len(b) >= 4 {
			a.Set("CRW:DateTimeOriginal", attrs.UInt(c.order.Uint32(b)))
		}
	case 0x1810:
		if len(b) >= 8 {
			a.Set("File:ImageWidth", attrs.UInt(c.order.Uint32(b)))
			a.Set("File:ImageHeight", attrs.UInt(c.order.Uint32(b[4:])))
		}
		if len(b) >= 12 {
			a.Set("CRW:PixelAspectRatio", attrs.Float(math.Float32frombits(c.order.Uint32(b[8:]))))
		}
	case 0x1817:
		if len(b) >= 4 {
			a.Set("CRW:FileNumber", attrs.UInt(c.order.Uint32(b)))
		}
	case 0x1835:
		if len(b) >= 4 {
			a.Set("CRW:DecoderTable", attrs.UInt(c.order.Uint32(b)))
		}
	case 0x183B:
		if len(b) >= 4 {
			a.Set("CRW:SerialNumber", attrs.UInt(c.order.Uint32(b)))
		}
	}
}

// ─── X3F ─────────────────────────────────────────────────────────────────────

var x3fRotations = map[uint32]string{0: "Horizontal", 90: "Rotate 90 CW", 180: "Rotate 180", 270: "Rotate 270 CW"}

// parseX3F reads the Sigma header and the PROP section listed in the
// directory whose offset ends the file.
func parseX3F(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	n, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	h, err := core.ReadAt(r, 0, 40, n)
	if err != nil {
		return nil, errors.Wrap(err, "x3f header")
	}
	le := binary.LittleEndian
	m.Attrs.Set("Make", attrs.Str("SIGMA"))
	v := le.Uint32(h[4:])
	m.Attrs.Set("X3F:FileVersion", attrs.Str(fmt.Sprintf("%d.%d", v>>16, v&0xFFFF)))
	m.Attrs.Set("X3F:ImageUniqueID", attrs.Str(fmt.Sprintf("%X", h[8:24])))
	m.Attrs.Set("File:ImageWidth", attrs.UInt(le.Uint32(h[28:])))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(le.Uint32(h[32:])))
	rot := le.Uint32(h[36:])
	if s, ok := x3fRotations[rot]; ok {
		m.Attrs.Set("X3F:Rotation", attrs.Str(s))
	}
	if err := x3fDirectory(r, m, n); err != nil {
		m.Warn(errors.Wrap(err, "x3f directory"))
	}
	return m, nil
}

func x3fDirectory(r io.ReadSeeker, m *core.Metadata, n int64) error {
	le := binary.LittleEndian
	tail, err := core.ReadAt(r, n-4, 4, n)
	if err != nil {
		return err
	}
	dir := int64(le.Uint32(tail))
	h, err := core.ReadAt(r, dir, 12, n)
	if err != nil {
		return err
	}
	if string(h[:4]) != "SECd" {
		return core.Structure("x3f: directory magic %q", h[:4])
	}
	count := int64(le.Uint32(h[8:]))
	if count > core.MaxWalkIterations {
		return &core.TooManyIfdEntriesError{Count: uint64(count), Limit: core.MaxWalkIterations}
	}
	entries, err := core.ReadAt(r, dir+12, count*12, n)
	if err != nil {
		return err
	}
	for i := int64(0); i < count; i++ {
		e := entries[i*12:]
		off, length, typ := int64(le.Uint32(e)), int64(le.Uint32(e[4:])), string(e[8:12])
		switch typ {
		case "PROP":
			b, err := core.ReadAt(r, off, length, n)
			if err != nil {
				m.Warn(errors.Wrap(err, "x3f PROP"))
				continue
			}
			x3fProps(m, b)
		case "IMA2", "IMAG":
			// A 28-byte image header precedes the pixel data.
			if length <= 28 {
				continue
			}
			// Type 2, format 18 is an embedded JPEG preview.
			if b, err := core.ReadAt(r, off, 28, n); err == nil && le.Uint32(b[8:]) == 18 {
				if jpg, err := core.ReadAt(r, off+28, length-28, n); err == nil && len(jpg) > len(m.Preview) {
					m.Preview = jpg
				}
			}
		}
	}
	return nil
}

var x3fProperties = map[string]string{
	"CAMMANUF":  "Make",
	"CAMMODEL":  "Model",
	"TIME":      "X3F:DateTimeOriginal",
	"EXPTIME":   "X3F:ExposureTimeMicroseconds",
	"APERTURE":  "FNumber",
	"ISO":       "ISO",
	"FLENGTH":   "FocalLength",
	"FLEQ35MM":  "FocalLengthIn35mmFormat",
	"LENSMODEL": "X3F:LensType",
	"CAMSERIAL": "X3F:SerialNumber",
}

// x3fProps decodes a "SECp" section: a header, then name/value offset
// pairs counted in UTF-16 characters from the start of the character data.
func x3fProps(m *core.Metadata, b []byte) {
	le := binary.LittleEndian
	if len(b) < 24 || string(b[:4]) != "SECp" {
		m.Warn(core.Structure("x3f: PROP section magic"))
		return
	}
	count := int(le.Uint32(b[8:]))
	if count > 4*core.MaxWalkIterations || 24+8*count > len(b) {
		m.Warn(core.Structure("x3f: %d properties", count))
		return
	}
	chars := b[24+8*count:]
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	str := func(off int) string {
		if off*2 >= len(chars) {
			return ""
		}
		s := chars[off*2:]
		for i := 0; i+1 < len(s); i += 2 {
			if s[i] == 0 && s[i+1] == 0 {
				s = s[:i]
				break
			}
		}
		out, _ := dec.Bytes(s)
		return string(out)
	}
	for i := 0; i < count; i++ {
		e := b[24+8*i:]
		name, value := str(int(le.Uint32(e))), str(int(le.Uint32(e[4:])))
		if name == "" {
			continue
		}
		key, ok := x3fProperties[name]
		if !ok {
			m.Attrs.SetIfAbsent("X3F:"+name, attrs.Str(value))
			continue
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil && key != "Model" && key != "Make" && key != "X3F:SerialNumber" {
			m.Attrs.SetIfAbsent(key, attrs.Double(f))
			continue
		}
		m.Attrs.SetIfAbsent(key, attrs.Str(value))
	}
}

// ─── MRW ─────────────────────────────────────────────────────────────────────

// parseMRW reads the Minolta block list. The TTW block is a complete TIFF
// holding the EXIF data.
func parseMRW(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	n, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	h, err := core.ReadAt(r, 0, 8, n)
	if err != nil {
		return nil, errors.Wrap(err, "mrw header")
	}
	be := binary.BigEndian
	end := 8 + int64(be.Uint32(h[4:]))
	if end > n {
		return nil, &core.ValueOutOfBoundsError{Offset: 8, Size: uint64(end - 8), DataLen: uint64(n)}
	}
	m.Attrs.Set("MRW:DataOffset", attrs.UInt64(uint64(end)))
	pos := int64(8)
	for i := 0; pos+8 <= end && i < core.MaxWalkIterations; i++ {
		bh, err := core.ReadAt(r, pos, 8, end)
		if err != nil {
			return m, nil
		}
		tag, length := string(bh[:4]), int64(be.Uint32(bh[4:]))
		data, err := core.ReadAt(r, pos+8, length, end)
		if err != nil {
			m.Warn(errors.Wrapf(err, "mrw %q block", tag))
			break
		}
		mrwBlock(m, tag, data, pos+8)
		pos += 8 + length
	}
	return m, nil
}

func mrwBlock(m *core.Metadata, tag string, d []byte, off int64) {
	be := binary.BigEndian
	switch tag {
	case "\x00PRD":
		if len(d) < 24 {
			return
		}
		m.Attrs.Set("MRW:FirmwareID", attrs.Str(ifd.TrimNUL(d[:8])))
		m.Attrs.Set("MRW:SensorHeight", attrs.UInt(uint32(be.Uint16(d[8:]))))
		m.Attrs.Set("MRW:SensorWidth", attrs.UInt(uint32(be.Uint16(d[10:]))))
		m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(be.Uint16(d[12:]))))
		m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(be.Uint16(d[14:]))))
		m.Attrs.Set("MRW:RawDepth", attrs.UInt(uint32(d[16])))
		m.Attrs.Set("MRW:BitDepth", attrs.UInt(uint32(d[17])))
		m.Attrs.Set("MRW:StorageMethod", attrs.Str(map[byte]string{0x52: "Padded", 0x59: "Linear"}[d[18]]))
		m.Attrs.Set("MRW:BayerPattern", attrs.Str(map[uint16]string{0x0001: "RGGB", 0x0004: "GBRG"}[be.Uint16(d[22:])]))
	case "\x00WBG":
		if len(d) < 12 {
			return
		}
		var gains []attrs.Value
		for i := 4; i+2 <= 12; i += 2 {
			gains = append(gains, attrs.UInt(uint32(be.Uint16(d[i:]))))
		}
		m.Attrs.Set("MRW:WBScale", attrs.Str(fmt.Sprintf("%d %d %d %d", d[0], d[1], d[2], d[3])))
		m.Attrs.Set("MRW:WBLevels", attrs.List(gains...))
	case "\x00RIF":
		if len(d) < 4 {
			return
		}
		m.Attrs.Set("MRW:Saturation", attrs.Int(int32(int8(d[1]))))
		m.Attrs.Set("MRW:Contrast", attrs.Int(int32(int8(d[2]))))
		m.Attrs.Set("MRW:Sharpness", attrs.Int(int32(int8(d[3]))))
	case "\x00TTW":
		blocks.EXIF(m, d, off)
	}
}
