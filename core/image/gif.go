package image

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// GIF block introducers and extension labels.
const (
	gifExtension   = 0x21
	gifImage       = 0x2C
	gifTrailer     = 0x3B
	gifComment     = 0xFE
	gifApplication = 0xFF
	gifControl     = 0xF9
)

// GIFBlock is one top-level block of a GIF stream.
type GIFBlock struct {
	// Kind is gifExtension, gifImage or gifTrailer.
	Kind  byte
	Label byte
	// Start and End bound the whole block in the file, introducer through
	// block terminator.
	Start, End int
	// Body holds the data sub-blocks joined, or for application
	// extensions the raw bytes after the identifier.
	Body []byte
}

// ReadGIF splits a GIF into its header (signature, logical screen and
// global colour table) and its blocks.
func ReadGIF(data []byte) (int, []GIFBlock, error) {
	if len(data) < 13 {
		return 0, nil, core.EOF(13, len(data))
	}
	pos := 13
	if data[10]&0x80 != 0 {
		pos += 3 << (data[10]&0x07 + 1)
	}
	header := pos
	var out []GIFBlock
	for pos < len(data) {
		b := GIFBlock{Kind: data[pos], Start: pos}
		switch b.Kind {
		case gifTrailer:
			b.End = pos + 1
			return header, append(out, b), nil
		case gifExtension:
			if pos+2 > len(data) {
				return header, out, core.EOF(2, len(data)-pos)
			}
			b.Label = data[pos+1]
			start := pos + 2
			body, end, err := subBlocks(data, start)
			if err != nil {
				return header, out, err
			}
			b.Body, b.End = body, end
			if b.Label == gifApplication {
				b.Body = data[start:end]
			}
		case gifImage:
			if pos+10 > len(data) {
				return header, out, core.EOF(10, len(data)-pos)
			}
			p := pos + 10
			if flags := data[pos+9]; flags&0x80 != 0 {
				p += 3 << (flags&0x07 + 1)
			}
			// LZW minimum code size.
			p++
			_, end, err := subBlocks(data, p)
			if err != nil {
				return header, out, err
			}
			b.End = end
		default:
			return header, out, core.Structure("gif: unknown block 0x%02X at %d", b.Kind, pos)
		}
		out = append(out, b)
		pos = b.End
	}
	return header, out, core.Structure("gif: no trailer")
}

// subBlocks joins the data sub-blocks starting at pos and returns the
// position after the terminator.
func subBlocks(data []byte, pos int) ([]byte, int, error) {
	var body []byte
	for {
		if pos >= len(data) {
			return body, pos, core.EOF(1, 0)
		}
		n := int(data[pos])
		pos++
		if n == 0 {
			return body, pos, nil
		}
		if pos+n > len(data) {
			return body, pos, core.EOF(n, len(data)-pos)
		}
		body = append(body, data[pos:pos+n]...)
		pos += n
	}
}

// ─── Parse ───────────────────────────────────────────────────────────────────

func parseGIF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	_, blks, err := ReadGIF(data)
	if len(data) < 13 {
		return nil, err
	}
	if err != nil {
		m.Warn(err)
	}
	le := binary.LittleEndian
	m.Attrs.Set("GIF:GIFVersion", attrs.Str(string(data[3:6])))
	m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(le.Uint16(data[6:]))))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(le.Uint16(data[8:]))))
	flags := data[10]
	m.Attrs.Set("GIF:HasColorMap", attrs.Bool(flags&0x80 != 0))
	m.Attrs.Set("GIF:ColorResolutionDepth", attrs.UInt(uint32(flags>>4&0x07+1)))
	m.Attrs.Set("GIF:BitsPerPixel", attrs.UInt(uint32(flags&0x07+1)))
	m.Attrs.Set("GIF:BackgroundColor", attrs.UInt(uint32(data[11])))

	frames, delay := 0, 0
	var comments []attrs.Value
	for _, b := range blks {
		switch {
		case b.Kind == gifImage:
			frames++
		case b.Label == gifComment:
			comments = append(comments, attrs.Str(text(b.Body)))
		case b.Label == gifControl && len(b.Body) >= 3:
			delay += int(le.Uint16(b.Body[1:]))
		case b.Label == gifApplication:
			gifApp(m, b.Body)
		}
	}
	m.Attrs.Set("GIF:FrameCount", attrs.UInt(uint32(frames)))
	if frames > 1 {
		m.Attrs.Set("GIF:Duration", attrs.Double(float64(delay)/100))
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

// gifApp reads an application extension. raw starts at the identifier's
// length byte.
func gifApp(m *core.Metadata, raw []byte) {
	if len(raw) < 12 || raw[0] != 11 {
		return
	}
	id := string(raw[1:12])
	switch id {
	case "NETSCAPE2.0", "ANIMEXTS1.0":
		body, _, err := subBlocks(raw, 12)
		if err == nil && len(body) >= 3 && body[0] == 1 {
			m.Attrs.Set("GIF:AnimationIterations", attrs.UInt(uint32(binary.LittleEndian.Uint16(body[1:]))))
		}
	case "XMP DataXMP":
		// The packet is stored raw, not in sub-blocks, and is followed by
		// a 258-byte "magic trailer".
		if p := xmp.Find(raw[12:]); p != nil {
			blocks.XMP(m, p)
		}
	case "ICCRGBG1012":
		body, _, err := subBlocks(raw, 12)
		if err == nil && len(body) > 0 {
			blocks.ICC(m, body)
		}
	default:
		imageLogger.Debugf(nil, "gif application extension %q skipped", bytes.TrimRight([]byte(id), "\x00"))
	}
}
