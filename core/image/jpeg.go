package image

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/icc"
	"github.com/ankit-chaubey/metasurgery/core/iptc"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// JPEG markers.
const (
	MarkerSOI   = 0xD8
	MarkerEOI   = 0xD9
	MarkerSOS   = 0xDA
	MarkerAPP0  = 0xE0
	MarkerAPP1  = 0xE1
	MarkerAPP2  = 0xE2
	MarkerAPP12 = 0xEC
	MarkerAPP13 = 0xED
	MarkerAPP14 = 0xEE
	MarkerCOM   = 0xFE
)

// Segment is one marker segment before the scan data.
type Segment struct {
	Marker byte
	// Offset is the file position of the 0xFF that opens the marker.
	Offset int64
	// Data is the payload after the length field. Standalone markers have
	// none.
	Data []byte
}

// Is reports whether s is a marker segment whose payload starts with header.
func (s Segment) Is(marker byte, header string) bool {
	return s.Marker == marker && bytes.HasPrefix(s.Data, []byte(header))
}

// ReadSegments reads the segments between SOI and the first SOS or EOI. It
// returns them together with the file position of that SOS or EOI marker;
// everything from there to the end of the file is scan data. On a damaged
// stream the segments read so far are returned with the error.
func ReadSegments(r io.Reader) ([]Segment, int64, error) {
	br := bufio.NewReader(r)
	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil || soi[0] != 0xFF || soi[1] != MarkerSOI {
		return nil, 0, core.Structure("jpeg: missing SOI marker")
	}
	pos := int64(2)
	var segs []Segment
	for {
		c, err := br.ReadByte()
		if err != nil {
			return segs, pos, core.EOF(2, 0)
		}
		if c != 0xFF {
			return segs, pos, core.Structure("jpeg: expected a marker at %d, found 0x%02X", pos, c)
		}
		pos++
		marker := byte(0xFF)
		// 0xFF fill bytes may precede any marker.
		for marker == 0xFF {
			if marker, err = br.ReadByte(); err != nil {
				return segs, pos, core.EOF(1, 0)
			}
			pos++
		}
		start := pos - 2
		switch {
		case marker == MarkerSOS || marker == MarkerEOI:
			return segs, start, nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			segs = append(segs, Segment{Marker: marker, Offset: start})
			continue
		}
		var lb [2]byte
		if _, err := io.ReadFull(br, lb[:]); err != nil {
			return segs, start, core.EOF(2, 0)
		}
		n := int(binary.BigEndian.Uint16(lb[:]))
		if n < 2 {
			return segs, start, core.Structure("jpeg: segment 0x%02X at %d has length %d", marker, start, n)
		}
		data := make([]byte, n-2)
		if got, err := io.ReadFull(br, data); err != nil {
			return segs, start, core.EOF(n-2, got)
		}
		pos += int64(n)
		segs = append(segs, Segment{Marker: marker, Offset: start, Data: data})
	}
}

func isSOF(marker byte) bool {
	return marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

var encodingProcess = map[byte]string{
	0xC0: "Baseline DCT, Huffman coding",
	0xC1: "Extended sequential DCT, Huffman coding",
	0xC2: "Progressive DCT, Huffman coding",
	0xC3: "Lossless, Huffman coding",
	0xC5: "Sequential DCT, differential Huffman coding",
	0xC6: "Progressive DCT, differential Huffman coding",
	0xC7: "Lossless, differential Huffman coding",
	0xC9: "Extended sequential DCT, arithmetic coding",
	0xCA: "Progressive DCT, arithmetic coding",
	0xCB: "Lossless, arithmetic coding",
	0xCD: "Sequential DCT, differential arithmetic coding",
	0xCE: "Progressive DCT, differential arithmetic coding",
	0xCF: "Lossless, differential arithmetic coding",
}

// ─── Parse ───────────────────────────────────────────────────────────────────

func parseJPEG(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	segs, _, err := ReadSegments(r)
	if err != nil {
		if len(segs) == 0 {
			return nil, err
		}
		m.Warn(err)
	}

	var profile icc.Assembler
	var irb []byte
	var comments []attrs.Value
	for _, s := range segs {
		switch {
		case isSOF(s.Marker):
			jpegFrame(m, s)
		case s.Is(MarkerAPP0, "JFIF\x00"):
			jfif(m, s.Data[5:])
		case s.Is(MarkerAPP1, blocks.ExifHeader):
			// marker (2) + length (2) + "Exif\0\0" (6)
			blocks.EXIF(m, s.Data[len(blocks.ExifHeader):], s.Offset+4+int64(len(blocks.ExifHeader)))
		case s.Is(MarkerAPP1, xmp.JPEGHeader):
			blocks.XMP(m, s.Data[len(xmp.JPEGHeader):])
		case s.Is(MarkerAPP1, xmp.ExtensionHeader):
			imageLogger.Debugf(nil, "ExtendedXMP segment at %d skipped", s.Offset)
		case s.Is(MarkerAPP2, icc.JPEGHeader):
			profile.Add(s.Data)
		case s.Is(MarkerAPP12, "Ducky"):
			ducky(m, s.Data[5:])
		case s.Is(MarkerAPP13, iptc.PhotoshopHeader):
			irb = append(irb, s.Data[len(iptc.PhotoshopHeader):]...)
		case s.Is(MarkerAPP14, "Adobe"):
			adobe(m, s.Data[5:])
		case s.Marker == MarkerCOM:
			comments = append(comments, attrs.Str(text(s.Data)))
		}
	}
	if p := profile.Profile(); p != nil {
		blocks.ICC(m, p)
	}
	if len(irb) > 0 {
		blocks.IRB(m, irb)
	}
	switch len(comments) {
	case 0:
	case 1:
		m.Attrs.Set("File:Comment", comments[0])
	default:
		m.Attrs.Set("File:Comment", attrs.List(comments...))
	}
	return m, nil
}

func jpegFrame(m *core.Metadata, s Segment) {
	d := s.Data
	if len(d) < 6 {
		m.Warn(core.Structure("jpeg: SOF at %d is %d bytes", s.Offset, len(d)))
		return
	}
	if m.Attrs.Contains("File:ImageWidth") {
		return
	}
	m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(binary.BigEndian.Uint16(d[3:]))))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(binary.BigEndian.Uint16(d[1:]))))
	m.Attrs.Set("File:BitsPerSample", attrs.UInt(uint32(d[0])))
	m.Attrs.Set("File:ColorComponents", attrs.UInt(uint32(d[5])))
	m.Attrs.Set("File:EncodingProcess", attrs.Str(encodingProcess[s.Marker]))
	if d[5] == 3 && len(d) >= 9 {
		h, v := d[7]>>4, d[7]&0x0F
		m.Attrs.Set("File:YCbCrSubSampling", attrs.Str(fmt.Sprintf("YCbCr4:%s (%d %d)", subsampling(h, v), h, v)))
	}
}

func subsampling(h, v byte) string {
	switch {
	case h == 1 && v == 1:
		return "4:4"
	case h == 2 && v == 1:
		return "2:2"
	case h == 2 && v == 2:
		return "2:0"
	case h == 1 && v == 2:
		return "4:0"
	case h == 4 && v == 1:
		return "1:1"
	}
	return "?"
}

func jfif(m *core.Metadata, d []byte) {
	if len(d) < 9 {
		return
	}
	m.Attrs.Set("JFIF:JFIFVersion", attrs.Str(fmt.Sprintf("%d.%02d", d[0], d[1])))
	units := map[byte]string{0: "None", 1: "inches", 2: "cm"}[d[2]]
	if units == "" {
		units = fmt.Sprintf("Unknown (%d)", d[2])
	}
	m.Attrs.Set("JFIF:ResolutionUnit", attrs.Str(units))
	m.Attrs.Set("JFIF:XResolution", attrs.UInt(uint32(binary.BigEndian.Uint16(d[3:]))))
	m.Attrs.Set("JFIF:YResolution", attrs.UInt(uint32(binary.BigEndian.Uint16(d[5:]))))
}

// ducky reads the Photoshop "Save for Web" APP12 block.
func ducky(m *core.Metadata, d []byte) {
	for len(d) >= 4 {
		tag, n := binary.BigEndian.Uint16(d), int(binary.BigEndian.Uint16(d[2:]))
		if tag == 0 || 4+n > len(d) {
			return
		}
		v := d[4 : 4+n]
		switch tag {
		case 1:
			if len(v) >= 4 {
				m.Attrs.Set("Ducky:Quality", attrs.UInt(binary.BigEndian.Uint32(v)))
			}
		case 2, 3:
			if len(v) > 4 {
				s, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(v[4:])
				if err == nil {
					name := map[uint16]string{2: "Ducky:Comment", 3: "Ducky:Copyright"}[tag]
					m.Attrs.Set(name, attrs.Str(string(bytes.TrimRight(s, "\x00"))))
				}
			}
		}
		d = d[4+n:]
	}
}

var colorTransforms = map[byte]string{0: "Unknown (RGB or CMYK)", 1: "YCbCr", 2: "YCCK"}

func adobe(m *core.Metadata, d []byte) {
	if len(d) < 7 {
		return
	}
	m.Attrs.Set("Adobe:DCTEncodeVersion", attrs.UInt(uint32(binary.BigEndian.Uint16(d))))
	m.Attrs.Set("Adobe:APP14Flags0", attrs.UInt(uint32(binary.BigEndian.Uint16(d[2:]))))
	m.Attrs.Set("Adobe:APP14Flags1", attrs.UInt(uint32(binary.BigEndian.Uint16(d[4:]))))
	if t, ok := colorTransforms[d[6]]; ok {
		m.Attrs.Set("Adobe:ColorTransform", attrs.Str(t))
	}
}
