package image

import (
	"encoding/binary"
	"io"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
)

var dibHeaders = map[uint32]string{
	12:  "Windows V2 or OS/2 V1",
	16:  "OS/2 V2 (short)",
	40:  "Windows V3",
	52:  "Windows V3 with RGB masks",
	56:  "Windows V3 with RGBA masks",
	64:  "OS/2 V2",
	108: "Windows V4",
	124: "Windows V5",
}

var bmpCompression = map[uint32]string{
	0: "None",
	1: "8-Bit RLE",
	2: "4-Bit RLE",
	3: "Bitfields",
	4: "JPEG",
	5: "PNG",
	6: "Alpha Bitfields",
}

func sniffBMP(b []byte) bool {
	if !core.HasPrefixAt(b, 0, "BM") {
		return false
	}
	if len(b) < 18 {
		return true
	}
	_, ok := dibHeaders[binary.LittleEndian.Uint32(b[14:])]
	return ok
}

// ─── BMP ─────────────────────────────────────────────────────────────────────

func parseBMP(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 26 {
		return nil, core.EOF(26, len(data))
	}
	le := binary.LittleEndian
	size := le.Uint32(data[14:])
	name, ok := dibHeaders[size]
	if !ok {
		return nil, core.Structure("bmp: DIB header of %d bytes", size)
	}
	if int(14+size) > len(data) {
		return nil, core.EOF(int(14+size), len(data))
	}
	m.Attrs.Set("BMP:FileSize", attrs.UInt(le.Uint32(data[2:])))
	m.Attrs.Set("BMP:PixelDataOffset", attrs.UInt(le.Uint32(data[10:])))
	m.Attrs.Set("BMP:BMPVersion", attrs.Str(name))
	h := data[14 : 14+size]
	if size == 12 {
		m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(le.Uint16(h[4:]))))
		m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(le.Uint16(h[6:]))))
		m.Attrs.Set("BMP:Planes", attrs.UInt(uint32(le.Uint16(h[8:]))))
		m.Attrs.Set("BMP:BitDepth", attrs.UInt(uint32(le.Uint16(h[10:]))))
		return m, nil
	}
	width, height := int32(le.Uint32(h[4:])), int32(le.Uint32(h[8:]))
	if height < 0 {
		height = -height
		m.Attrs.Set("BMP:TopDown", attrs.Bool(true))
	}
	m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(width)))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(height)))
	m.Attrs.Set("BMP:Planes", attrs.UInt(uint32(le.Uint16(h[12:]))))
	m.Attrs.Set("BMP:BitDepth", attrs.UInt(uint32(le.Uint16(h[14:]))))
	if size < 40 {
		return m, nil
	}
	c := le.Uint32(h[16:])
	if s, ok := bmpCompression[c]; ok {
		m.Attrs.Set("BMP:Compression", attrs.Str(s))
	} else {
		m.Attrs.Set("BMP:Compression", attrs.UInt(c))
	}
	m.Attrs.Set("BMP:ImageLength", attrs.UInt(le.Uint32(h[20:])))
	m.Attrs.Set("BMP:PixelsPerMeterX", attrs.UInt(le.Uint32(h[24:])))
	m.Attrs.Set("BMP:PixelsPerMeterY", attrs.UInt(le.Uint32(h[28:])))
	m.Attrs.Set("BMP:NumColors", attrs.UInt(le.Uint32(h[32:])))
	m.Attrs.Set("BMP:NumImportantColors", attrs.UInt(le.Uint32(h[36:])))
	if size >= 108 {
		m.Attrs.Set("BMP:ColorSpace", attrs.Str(colorSpace(h[56:60])))
	}
	if size >= 124 {
		bmpProfile(m, data, h)
	}
	return m, nil
}

func colorSpace(b []byte) string {
	switch v := binary.LittleEndian.Uint32(b); v {
	case 0:
		return "Calibrated RGB"
	case 1:
		return "Device RGB"
	case 2:
		return "Device CMYK"
	default:
		// Four-character codes are stored reversed.
		return string([]byte{b[3], b[2], b[1], b[0]})
	}
}

// bmpProfile reads a V5 embedded profile, whose offset counts from the
// start of the DIB header.
func bmpProfile(m *core.Metadata, data, h []byte) {
	le := binary.LittleEndian
	if colorSpace(h[56:60]) != "MBED" {
		return
	}
	off, n := uint64(le.Uint32(h[112:]))+14, uint64(le.Uint32(h[116:]))
	if n == 0 || off+n > uint64(len(data)) {
		m.Warn(&core.ValueOutOfBoundsError{Offset: off, Size: n, DataLen: uint64(len(data))})
		return
	}
	blocks.ICC(m, data[off:off+n])
}

// ─── ICO ─────────────────────────────────────────────────────────────────────

func sniffICO(b []byte) bool {
	if len(b) < 10 || b[0] != 0 || b[1] != 0 || (b[2] != 1 && b[2] != 2) || b[3] != 0 {
		return false
	}
	n := binary.LittleEndian.Uint16(b[4:])
	return n > 0 && b[9] == 0
}

func parseICO(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	hdr := make([]byte, 6)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, core.EOF(6, 0)
	}
	le := binary.LittleEndian
	kind := le.Uint16(hdr[2:])
	if kind == 2 {
		m.Format = "CUR"
	}
	n := int(le.Uint16(hdr[4:]))
	m.Attrs.Set("ICO:ImageCount", attrs.UInt(uint32(n)))
	for i := 0; i < n && i < core.MaxWalkIterations; i++ {
		e := make([]byte, 16)
		if _, err := io.ReadFull(r, e); err != nil {
			m.Warn(core.EOF(16, 0))
			break
		}
		w, h := uint32(e[0]), uint32(e[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		g := attrs.New()
		g.Set("ImageWidth", attrs.UInt(w))
		g.Set("ImageHeight", attrs.UInt(h))
		g.Set("NumColors", attrs.UInt(uint32(e[2])))
		if kind == 1 {
			g.Set("BitsPerPixel", attrs.UInt(uint32(le.Uint16(e[6:]))))
		} else {
			g.Set("HotspotX", attrs.UInt(uint32(le.Uint16(e[4:]))))
			g.Set("HotspotY", attrs.UInt(uint32(le.Uint16(e[6:]))))
		}
		g.Set("ImageLength", attrs.UInt(le.Uint32(e[8:])))
		g.Set("ImageOffset", attrs.UInt(le.Uint32(e[12:])))
		if i == 0 {
			m.Attrs.Set("File:ImageWidth", attrs.UInt(w))
			m.Attrs.Set("File:ImageHeight", attrs.UInt(h))
		}
		m.Pages = append(m.Pages, g)
	}
	return m, nil
}
