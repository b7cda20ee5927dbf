package image

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/bmff"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// Signature boxes of the JPEG 2000 and JPEG XL containers.
const (
	jp2BoxMagic = "\x00\x00\x00\x0CjP  \r\n\x87\n"
	jxlBoxMagic = "\x00\x00\x00\x0CJXL \r\n\x87\n"
)

const (
	xmpUUID  = "be7acfcb97a942e89c71999491e3afac"
	exifUUID = "4a706754696666457869662d3e4a5032" // "JpgTiffExif->JP2"
)

var jp2Colorspaces = map[uint32]string{
	0: "Bi-level", 1: "YCbCr(1)", 3: "YCbCr(2)", 4: "YCbCr(3)", 9: "PhotoYCC",
	11: "CMY", 12: "CMYK", 13: "YCCK", 14: "CIELab", 15: "Bi-level(2)",
	16: "sRGB", 17: "Grayscale", 18: "sYCC", 19: "CIEJab", 20: "e-sRGB",
	21: "ROMM-RGB", 22: "YPbPr(1125/60)", 23: "YPbPr(1250/50)", 24: "e-sYCC",
}

// ─── JPEG 2000 ───────────────────────────────────────────────────────────────

func parseJP2(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	prefix, err := core.ReadPrefix(r, 4)
	if err != nil {
		return nil, err
	}
	if core.HasPrefixAt(prefix, 0, "\xFF\x4F") {
		m.Attrs.Set("File:FileType", attrs.Str("J2K"))
		return parseJ2K(r, m)
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &core.IOError{Err: err}
	}
	sawSig := false
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "jP  ":
			sawSig = true
			return nil
		case "jp2c":
			return nil
		}
		if h.DataSize() > core.MaxChunkSize {
			m.Warn(&core.MetadataTooLargeError{Size: uint64(h.DataSize()), Limit: core.MaxChunkSize})
			return nil
		}
		b, err := bmff.Load(r, h)
		if err != nil {
			return err
		}
		jp2Box(m, h.Type, b, h.DataOffset())
		return nil
	})
	if !sawSig {
		if err == nil {
			err = core.Structure("jp2: no signature box")
		}
		return nil, err
	}
	m.Warn(err)
	return m, nil
}

func jp2Box(m *core.Metadata, typ string, b []byte, off int64) {
	switch typ {
	case "ftyp":
		major, minor, compat := bmff.Brands(b)
		m.Attrs.Set("JP2:Brand", attrs.Str(major))
		m.Attrs.Set("JP2:MinorVersion", attrs.UInt(minor))
		m.Attrs.Set("JP2:CompatibleBrands", attrs.Strs(compat))
		if major == "jpx " {
			m.Attrs.Set("File:FileType", attrs.Str("JPX"))
		}
	case "jp2h":
		boxes, err := bmff.Split(b)
		m.Warn(err)
		for _, c := range boxes {
			jp2Header(m, c)
		}
	case "uuid":
		if len(b) < 16 {
			return
		}
		switch hex.EncodeToString(b[:16]) {
		case xmpUUID:
			blocks.XMP(m, b[16:])
		case exifUUID:
			tiff, skip := blocks.TrimExifHeader(b[16:])
			blocks.EXIF(m, tiff, off+16+int64(skip))
		}
	case "xml ":
		if xmp.Sniff(b) {
			blocks.XMP(m, b)
			return
		}
		m.Attrs.Set("JP2:HasXML", attrs.Bool(true))
	case "Exif":
		if tiff, skip := heifExif(b); tiff != nil {
			blocks.EXIF(m, tiff, off+int64(skip))
		}
	}
}

func jp2Header(m *core.Metadata, c bmff.Box) {
	d := c.Data
	switch c.Type {
	case "ihdr":
		if len(d) < 14 {
			m.Warn(core.EOF(14, len(d)))
			return
		}
		m.Attrs.Set("File:ImageHeight", attrs.UInt(binary.BigEndian.Uint32(d)))
		m.Attrs.Set("File:ImageWidth", attrs.UInt(binary.BigEndian.Uint32(d[4:])))
		m.Attrs.Set("JP2:NumComponents", attrs.UInt(uint32(binary.BigEndian.Uint16(d[8:]))))
		if d[10] != 0xFF {
			m.Attrs.Set("JP2:BitsPerComponent", attrs.UInt(uint32(d[10]&0x7F)+1))
		}
		m.Attrs.Set("JP2:Compression", attrs.Str(map[bool]string{true: "JPEG 2000", false: "Unknown"}[d[11] == 7]))
		if d[13] != 0 {
			m.Attrs.Set("JP2:IPR", attrs.Bool(true))
		}
	case "colr":
		if len(d) < 3 {
			return
		}
		switch d[0] {
		case 1:
			if len(d) >= 7 {
				cs := binary.BigEndian.Uint32(d[3:])
				if name, ok := jp2Colorspaces[cs]; ok {
					m.Attrs.SetIfAbsent("JP2:ColorSpace", attrs.Str(name))
				} else {
					m.Attrs.SetIfAbsent("JP2:ColorSpace", attrs.UInt(cs))
				}
			}
		case 2, 3:
			m.Attrs.SetIfAbsent("JP2:ColorMethod", attrs.Str(map[byte]string{2: "RestrictedICC", 3: "ICC"}[d[0]]))
			blocks.ICC(m, d[3:])
		}
	case "bpcc":
		m.Attrs.Set("JP2:HasBPCC", attrs.Bool(true))
	case "pclr":
		m.Attrs.Set("JP2:HasPalette", attrs.Bool(true))
	case "res ":
		boxes, _ := bmff.Split(d)
		for _, rb := range boxes {
			name := map[string]string{"resc": "Capture", "resd": "Display"}[rb.Type]
			if name == "" || len(rb.Data) < 10 {
				continue
			}
			v := rb.Data
			y := resolution(binary.BigEndian.Uint16(v), binary.BigEndian.Uint16(v[2:]), int8(v[8]))
			x := resolution(binary.BigEndian.Uint16(v[4:]), binary.BigEndian.Uint16(v[6:]), int8(v[9]))
			m.Attrs.Set("JP2:"+name+"YResolution", attrs.Double(y))
			m.Attrs.Set("JP2:"+name+"XResolution", attrs.Double(x))
			m.Attrs.Set("JP2:"+name+"ResolutionUnit", attrs.Str("pixels/m"))
		}
	}
}

func resolution(num, den uint16, exp int8) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * math.Pow10(int(exp))
}

// parseJ2K reads the SIZ marker segment of a bare codestream.
func parseJ2K(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	b, err := core.ReadPrefix(r, 42)
	if err != nil {
		return nil, err
	}
	if len(b) < 42 || !core.HasPrefixAt(b, 2, "\xFF\x51") {
		return nil, core.Structure("j2k: SIZ marker does not follow SOC")
	}
	be := binary.BigEndian
	xs, ys, xo, yo := be.Uint32(b[8:]), be.Uint32(b[12:]), be.Uint32(b[16:]), be.Uint32(b[20:])
	if xo > xs || yo > ys {
		return nil, core.Structure("j2k: image offset beyond size")
	}
	m.Attrs.Set("File:ImageWidth", attrs.UInt(xs-xo))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(ys-yo))
	m.Attrs.Set("JP2:NumComponents", attrs.UInt(uint32(be.Uint16(b[40:]))))
	return m, nil
}

// ─── JPEG XL ─────────────────────────────────────────────────────────────────

func parseJXL(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	prefix, err := core.ReadPrefix(r, 32)
	if err != nil {
		return nil, err
	}
	if core.HasPrefixAt(prefix, 0, "\xFF\x0A") {
		m.Attrs.Set("JXL:Container", attrs.Bool(false))
		if err := jxlSize(m, prefix[2:]); err != nil {
			return nil, errors.Wrap(err, "jxl size header")
		}
		return m, nil
	}
	if !core.HasPrefixAt(prefix, 0, jxlBoxMagic) {
		return nil, core.Structure("jxl: no signature")
	}
	m.Attrs.Set("JXL:Container", attrs.Bool(true))
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &core.IOError{Err: err}
	}
	sized := false
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "Exif", "xml ", "ftyp", "jxll":
			b, err := bmff.Load(r, h)
			if err != nil {
				m.Warn(errors.Wrapf(err, "jxl %q box", h.Type))
				return nil
			}
			jxlBox(m, h.Type, b, h.DataOffset())
		case "jxlc", "jxlp":
			if sized {
				return nil
			}
			skip := int64(0)
			if h.Type == "jxlp" {
				skip = 4
			}
			if _, err := r.Seek(h.DataOffset()+skip, io.SeekStart); err != nil {
				return &core.IOError{Err: err}
			}
			head := make([]byte, 16)
			n, _ := io.ReadFull(r, head)
			if n >= 2 && head[0] == 0xFF && head[1] == 0x0A {
				sized = true
				if err := jxlSize(m, head[2:n]); err != nil {
					m.Warn(errors.Wrap(err, "jxl size header"))
				}
			}
		case "brob":
			imageLogger.Debugf(nil, "brotli-compressed box at %d skipped", h.Offset)
		}
		return nil
	})
	m.Warn(err)
	return m, nil
}

func jxlBox(m *core.Metadata, typ string, b []byte, off int64) {
	switch typ {
	case "ftyp":
		major, _, _ := bmff.Brands(b)
		m.Attrs.Set("JXL:Brand", attrs.Str(major))
	case "jxll":
		if len(b) >= 1 {
			m.Attrs.Set("JXL:CodestreamLevel", attrs.UInt(uint32(b[0])))
		}
	case "Exif":
		if tiff, skip := heifExif(b); tiff != nil {
			blocks.EXIF(m, tiff, off+int64(skip))
		}
	case "xml ":
		blocks.XMP(m, b)
	}
}

// bits reads a little-endian bit stream, least significant bit first.
type bits struct {
	b   []byte
	pos int
	err error
}

func (br *bits) read(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		if br.pos/8 >= len(br.b) {
			br.err = core.EOF(br.pos/8+1, len(br.b))
			return 0
		}
		v |= uint32(br.b[br.pos/8]>>(br.pos%8)&1) << i
		br.pos++
	}
	return v
}

// dim reads a JPEG XL U32 dimension: a 2-bit selector picks 9, 13, 18 or
// 30 bits, plus one.
func (br *bits) dim() uint32 {
	return br.read([]int{9, 13, 18, 30}[br.read(2)]) + 1
}

var jxlRatios = [...][2]uint32{{1, 1}, {1, 1}, {12, 10}, {4, 3}, {3, 2}, {16, 9}, {5, 4}, {2, 1}}

// jxlSize decodes the SizeHeader that opens a codestream after FF0A.
func jxlSize(m *core.Metadata, b []byte) error {
	br := &bits{b: b}
	var w, h uint32
	small := br.read(1) == 1
	if small {
		h = (br.read(5) + 1) * 8
	} else {
		h = br.dim()
	}
	ratio := br.read(3)
	switch {
	case ratio != 0:
		w = uint32(uint64(h) * uint64(jxlRatios[ratio][0]) / uint64(jxlRatios[ratio][1]))
	case small:
		w = (br.read(5) + 1) * 8
	default:
		w = br.dim()
	}
	if br.err != nil {
		return br.err
	}
	m.Attrs.Set("File:ImageWidth", attrs.UInt(w))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(h))
	return nil
}
