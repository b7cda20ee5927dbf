package image

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// Signature opens every PNG file.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk is one PNG chunk.
type Chunk struct {
	Type string
	// Offset is the file position of the length field.
	Offset int64
	Data   []byte
	CRC    uint32
}

// ChunkCRC is the CRC-32 stored after a chunk, computed over type and data.
func ChunkCRC(typ string, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write([]byte(typ))
	h.Write(data)
	return h.Sum32()
}

// ReadChunks verifies the signature and reads every chunk up to IEND. On a
// damaged stream the chunks read so far are returned with the error.
func ReadChunks(r io.Reader) ([]Chunk, error) {
	br := bufio.NewReader(r)
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(br, sig); err != nil || string(sig) != Signature {
		return nil, core.Structure("png: bad signature")
	}
	pos := int64(len(Signature))
	var chunks []Chunk
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if err == io.EOF {
				return chunks, core.Structure("png: no IEND chunk")
			}
			return chunks, core.EOF(8, 0)
		}
		n := binary.BigEndian.Uint32(hdr[:])
		typ := string(hdr[4:8])
		if n > core.MaxFileSize {
			return chunks, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(n), DataLen: core.MaxFileSize}
		}
		// Read through a limit so a lying length cannot force a huge allocation.
		data, err := io.ReadAll(io.LimitReader(br, int64(n)))
		if err != nil {
			return chunks, &core.IOError{Err: err}
		}
		if len(data) < int(n) {
			return chunks, core.EOF(int(n), len(data))
		}
		var crc [4]byte
		if _, err := io.ReadFull(br, crc[:]); err != nil {
			return chunks, core.EOF(4, 0)
		}
		chunks = append(chunks, Chunk{Type: typ, Offset: pos, Data: data, CRC: binary.BigEndian.Uint32(crc[:])})
		pos += 12 + int64(n)
		if typ == "IEND" {
			return chunks, nil
		}
	}
}

// text decodes UTF-8, falling back to ISO-8859-1.
func text(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// Latin1 decodes ISO-8859-1, the encoding of tEXt and zTXt chunks.
func Latin1(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

var pngColorTypes = map[byte]string{
	0: "Grayscale",
	2: "RGB",
	3: "Palette",
	4: "Grayscale with Alpha",
	6: "RGB with Alpha",
}

var srgbIntents = []string{"Perceptual", "Relative Colorimetric", "Saturation", "Absolute Colorimetric"}

// ─── Parse ───────────────────────────────────────────────────────────────────

func parsePNG(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	chunks, err := ReadChunks(r)
	if err != nil {
		if len(chunks) == 0 {
			return nil, err
		}
		m.Warn(err)
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return nil, core.Structure("png: first chunk is not IHDR")
	}
	frames := 0
	for _, c := range chunks {
		if c.CRC != ChunkCRC(c.Type, c.Data) {
			m.Warn(core.Structure("png: %s chunk at %d fails its CRC", c.Type, c.Offset))
		}
		ancillary := c.Type[0]&0x20 != 0
		if ancillary && len(c.Data) > core.MaxChunkSize {
			m.Warn(&core.MetadataTooLargeError{Size: uint64(len(c.Data)), Limit: core.MaxChunkSize})
			continue
		}
		if err := pngChunk(m, c); err != nil {
			m.Warn(errors.Wrapf(err, "png %s chunk at %d", c.Type, c.Offset))
		}
		if c.Type == "fcTL" {
			frames++
		}
	}
	if frames > 0 {
		m.Attrs.Set("PNG:FrameControlChunks", attrs.UInt(uint32(frames)))
	}
	return m, nil
}

func pngChunk(m *core.Metadata, c Chunk) error {
	d := c.Data
	be := binary.BigEndian
	switch c.Type {
	case "IHDR":
		if len(d) < 13 {
			return core.EOF(13, len(d))
		}
		m.Attrs.Set("File:ImageWidth", attrs.UInt(be.Uint32(d)))
		m.Attrs.Set("File:ImageHeight", attrs.UInt(be.Uint32(d[4:])))
		m.Attrs.Set("PNG:BitDepth", attrs.UInt(uint32(d[8])))
		if ct, ok := pngColorTypes[d[9]]; ok {
			m.Attrs.Set("PNG:ColorType", attrs.Str(ct))
		}
		m.Attrs.Set("PNG:Compression", attrs.Str("Deflate/Inflate"))
		m.Attrs.Set("PNG:Filter", attrs.Str("Adaptive"))
		m.Attrs.Set("PNG:Interlace", attrs.Str(map[bool]string{false: "Noninterlaced", true: "Adam7 Interlace"}[d[12] == 1]))
	case "pHYs":
		if len(d) < 9 {
			return core.EOF(9, len(d))
		}
		x, y := be.Uint32(d), be.Uint32(d[4:])
		m.Attrs.Set("PNG:PixelsPerUnitX", attrs.UInt(x))
		m.Attrs.Set("PNG:PixelsPerUnitY", attrs.UInt(y))
		if d[8] == 1 {
			m.Attrs.Set("PNG:PixelUnits", attrs.Str("meters"))
			m.Attrs.Set("PNG:XResolution", attrs.Double(dpi(x)))
			m.Attrs.Set("PNG:YResolution", attrs.Double(dpi(y)))
		} else {
			m.Attrs.Set("PNG:PixelUnits", attrs.Str("Unknown"))
		}
	case "tIME":
		if len(d) < 7 {
			return core.EOF(7, len(d))
		}
		t := time.Date(int(be.Uint16(d)), time.Month(d[2]), int(d[3]), int(d[4]), int(d[5]), int(d[6]), 0, time.UTC)
		m.Attrs.Set("PNG:ModifyDate", attrs.DateTime(t))
	case "gAMA":
		if len(d) < 4 {
			return core.EOF(4, len(d))
		}
		if g := be.Uint32(d); g != 0 {
			m.Attrs.Set("PNG:Gamma", attrs.Double(math.Round(100000/float64(g)*1000)/1000))
		}
	case "sRGB":
		if len(d) >= 1 && int(d[0]) < len(srgbIntents) {
			m.Attrs.Set("PNG:SRGBRendering", attrs.Str(srgbIntents[d[0]]))
		}
	case "acTL":
		if len(d) < 8 {
			return core.EOF(8, len(d))
		}
		m.Attrs.Set("PNG:AnimationFrames", attrs.UInt(be.Uint32(d)))
		m.Attrs.Set("PNG:AnimationPlays", attrs.UInt(be.Uint32(d[4:])))
	case "iCCP":
		name, rest, ok := bytes.Cut(d, []byte{0})
		if !ok || len(rest) < 1 {
			return core.Structure("no profile name terminator")
		}
		m.Attrs.Set("PNG:ProfileName", attrs.Str(Latin1(name)))
		p, err := core.Inflate(rest[1:])
		if err != nil {
			return err
		}
		blocks.ICC(m, p)
	case "eXIf":
		tiff, skip := blocks.TrimExifHeader(d)
		blocks.EXIF(m, tiff, c.Offset+8+int64(skip))
	case "tEXt":
		key, val, ok := bytes.Cut(d, []byte{0})
		if !ok {
			return core.Structure("no keyword terminator")
		}
		pngText(m, Latin1(key), Latin1(val))
	case "zTXt":
		key, rest, ok := bytes.Cut(d, []byte{0})
		if !ok || len(rest) < 1 {
			return core.Structure("no keyword terminator")
		}
		val, err := core.Inflate(rest[1:])
		if err != nil {
			return err
		}
		pngText(m, Latin1(key), Latin1(val))
	case "iTXt":
		return iTXt(m, d)
	}
	return nil
}

func iTXt(m *core.Metadata, d []byte) error {
	key, rest, ok := bytes.Cut(d, []byte{0})
	if !ok || len(rest) < 2 {
		return core.Structure("truncated iTXt header")
	}
	compressed := rest[0] == 1
	lang, rest, ok := bytes.Cut(rest[2:], []byte{0})
	if !ok {
		return core.Structure("no language terminator")
	}
	_, val, ok := bytes.Cut(rest, []byte{0})
	if !ok {
		return core.Structure("no translated keyword terminator")
	}
	if compressed {
		var err error
		if val, err = core.Inflate(val); err != nil {
			return err
		}
	}
	if string(key) == xmp.PNGKeyword {
		blocks.XMP(m, val)
		return nil
	}
	name := "PNG:" + string(key)
	if len(lang) > 0 {
		name += "[" + string(lang) + "]"
	}
	m.Attrs.SetIfAbsent(name, attrs.Str(string(val)))
	return nil
}

// pngText stores a textual chunk. ImageMagick's "Raw profile type" chunks
// carry hex-encoded metadata blocks and are decoded instead.
func pngText(m *core.Metadata, key, val string) {
	if kind, ok := strings.CutPrefix(key, "Raw profile type "); ok {
		if b, err := DecodeRawProfile(val); err == nil {
			switch strings.ToLower(kind) {
			case "exif", "app1":
				tiff, _ := blocks.TrimExifHeader(b)
				blocks.EXIF(m, tiff, -1)
			case "xmp":
				blocks.XMP(m, b)
			case "iptc", "8bim":
				blocks.IRB(m, b)
			case "icc", "icm":
				blocks.ICC(m, b)
			default:
				imageLogger.Debugf(nil, "raw profile %q skipped", kind)
			}
			return
		}
		imageLogger.Warningf(nil, "raw profile %q is not valid hex", kind)
	}
	m.Attrs.SetIfAbsent("PNG:"+key, attrs.Str(val))
}

// DecodeRawProfile decodes the "\n<type>\n <length>\n<hex lines>" body of
// an ImageMagick "Raw profile type" chunk.
func DecodeRawProfile(s string) ([]byte, error) {
	f := strings.Fields(s)
	if len(f) < 3 {
		return nil, core.Structure("raw profile has %d fields", len(f))
	}
	b, err := hex.DecodeString(strings.Join(f[2:], ""))
	if err != nil {
		return nil, errors.Wrap(err, "raw profile")
	}
	return b, nil
}

// EncodeRawProfile is the inverse of DecodeRawProfile, with 72 hex digits
// a line.
func EncodeRawProfile(kind string, b []byte) string {
	var s strings.Builder
	fmt.Fprintf(&s, "\n%s\n%8d\n", kind, len(b))
	h := hex.EncodeToString(b)
	for len(h) > 72 {
		s.WriteString(h[:72])
		s.WriteByte('\n')
		h = h[72:]
	}
	s.WriteString(h)
	s.WriteByte('\n')
	return s.String()
}

func dpi(ppm uint32) float64 {
	return math.Round(float64(ppm)*0.0254*100) / 100
}
