package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// OpenEXR version field flags.
const (
	EXRTiled     = 0x200
	EXRLongNames = 0x400
	EXRDeep      = 0x800
	EXRMultipart = 0x1000
)

const (
	exrMagic = "\x76\x2F\x31\x01"
	// Attribute values above this size are kept but not decoded.
	maxEXRValue = 64 << 10
	// maxEXRAttrs bounds the attributes of one header.
	maxEXRAttrs = 1024
)

var exrCompression = []string{"None", "RLE", "ZIPS", "ZIP", "PIZ", "PXR24", "B44", "B44A", "DWAA", "DWAB"}

var exrLineOrder = []string{"Increasing Y", "Decreasing Y", "Random Y"}

var exrPixelTypes = []string{"uint", "half", "float"}

// exrSizes holds the minimum value size of the fixed-size attribute types.
var exrSizes = map[string]int{
	"int": 4, "float": 4, "double": 8, "compression": 1, "lineOrder": 1,
	"box2i": 16, "v2i": 8, "v2f": 8, "v3f": 12, "rational": 8,
	"chromaticities": 32, "timecode": 8, "tiledesc": 9,
}

// EXRAttribute is one header attribute in file form.
type EXRAttribute struct {
	Name  string
	Type  string
	Value []byte
}

// EXRHeader is the version field and the attribute lists of every part.
type EXRHeader struct {
	Version uint32
	Parts   [][]EXRAttribute
	// Size counts the bytes from the start of the file to the end of the
	// last header. The chunk offset tables follow it.
	Size int
}

// Find returns the named attribute of a part.
func (h *EXRHeader) Find(part int, name string) (*EXRAttribute, bool) {
	for i := range h.Parts[part] {
		if h.Parts[part][i].Name == name {
			return &h.Parts[part][i], true
		}
	}
	return nil, false
}

// ReadEXRHeader decodes the headers at the start of an OpenEXR file.
func ReadEXRHeader(data []byte) (*EXRHeader, error) {
	if !core.HasPrefixAt(data, 0, exrMagic) {
		return nil, core.Structure("exr: bad magic")
	}
	if len(data) < 8 {
		return nil, core.EOF(8, len(data))
	}
	h := &EXRHeader{Version: binary.LittleEndian.Uint32(data[4:])}
	pos := 8
	for part := 0; part < core.MaxWalkIterations; part++ {
		var list []EXRAttribute
		for {
			name, n, err := exrString(data, pos)
			if err != nil {
				return nil, err
			}
			pos += n
			if name == "" {
				break
			}
			typ, n, err := exrString(data, pos)
			if err != nil {
				return nil, err
			}
			pos += n
			if pos+4 > len(data) {
				return nil, core.EOF(pos+4, len(data))
			}
			size := int(int32(binary.LittleEndian.Uint32(data[pos:])))
			pos += 4
			if size < 0 || pos+size > len(data) {
				return nil, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(uint32(size)), DataLen: uint64(len(data))}
			}
			list = append(list, EXRAttribute{Name: name, Type: typ, Value: data[pos : pos+size]})
			pos += size
			if len(list) > maxEXRAttrs {
				return nil, &core.TooManyIfdEntriesError{Count: uint64(len(list)), Limit: maxEXRAttrs}
			}
		}
		h.Parts = append(h.Parts, list)
		if h.Version&EXRMultipart == 0 {
			break
		}
		// A multi-part header list ends with an empty header.
		if pos < len(data) && data[pos] == 0 {
			pos++
			break
		}
	}
	h.Size = pos
	return h, nil
}

func exrString(data []byte, pos int) (string, int, error) {
	if pos >= len(data) {
		return "", 0, core.EOF(pos+1, len(data))
	}
	i := bytes.IndexByte(data[pos:], 0)
	if i < 0 || i > 255 {
		return "", 0, core.Structure("exr: unterminated name at %d", pos)
	}
	return string(data[pos : pos+i]), i + 1, nil
}

// Bytes encodes the headers back into file form.
func (h *EXRHeader) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(exrMagic)
	binary.Write(&b, binary.LittleEndian, h.Version)
	for _, part := range h.Parts {
		for _, a := range part {
			b.WriteString(a.Name)
			b.WriteByte(0)
			b.WriteString(a.Type)
			b.WriteByte(0)
			binary.Write(&b, binary.LittleEndian, uint32(len(a.Value)))
			b.Write(a.Value)
		}
		b.WriteByte(0)
	}
	if h.Version&EXRMultipart != 0 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

func parseEXR(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	h, err := ReadEXRHeader(data)
	if err != nil {
		return nil, err
	}
	m.Attrs.Set("EXR:Version", attrs.UInt(h.Version&0xFF))
	m.Attrs.Set("EXR:Tiled", attrs.Bool(h.Version&EXRTiled != 0))
	if h.Version&EXRDeep != 0 {
		m.Attrs.Set("EXR:DeepData", attrs.Bool(true))
	}
	for i, part := range h.Parts {
		a := m.Attrs
		if i > 0 {
			a = attrs.New()
			m.Pages = append(m.Pages, a)
		}
		for _, at := range part {
			if len(at.Value) > maxEXRValue {
				imageLogger.Debugf(nil, "skipping %d-byte attribute %q", len(at.Value), at.Name)
				continue
			}
			v, err := exrValue(at)
			if err != nil {
				m.Warn(errors.Wrapf(err, "exr attribute %q", at.Name))
				continue
			}
			a.Set("EXR:"+at.Name, v)
		}
		if w, ht, ok := exrWindow(part, "dataWindow"); ok && i == 0 {
			m.Attrs.Set("File:ImageWidth", attrs.UInt(w))
			m.Attrs.Set("File:ImageHeight", attrs.UInt(ht))
		}
	}
	if len(h.Parts) > 1 {
		m.Attrs.Set("EXR:PartCount", attrs.UInt(uint32(len(h.Parts))))
	}
	return m, nil
}

// exrWindow returns the size of a box2i attribute.
func exrWindow(part []EXRAttribute, name string) (uint32, uint32, bool) {
	for _, a := range part {
		if a.Name == name && a.Type == "box2i" && len(a.Value) == 16 {
			le := binary.LittleEndian
			x0, y0 := int32(le.Uint32(a.Value)), int32(le.Uint32(a.Value[4:]))
			x1, y1 := int32(le.Uint32(a.Value[8:])), int32(le.Uint32(a.Value[12:]))
			if x1 < x0 || y1 < y0 {
				return 0, 0, false
			}
			return uint32(x1-x0) + 1, uint32(y1-y0) + 1, true
		}
	}
	return 0, 0, false
}

func exrValue(a EXRAttribute) (attrs.Value, error) {
	le := binary.LittleEndian
	d := a.Value
	if n := exrSizes[a.Type]; len(d) < n {
		return attrs.Value{}, core.EOF(n, len(d))
	}
	f32 := func(i int) float64 { return float64(math.Float32frombits(le.Uint32(d[4*i:]))) }
	i32 := func(i int) int32 { return int32(le.Uint32(d[4*i:])) }
	switch a.Type {
	case "string":
		return attrs.Str(string(d)), nil
	case "int":
		return attrs.Int(i32(0)), nil
	case "float":
		return attrs.Double(f32(0)), nil
	case "double":
		return attrs.Double(math.Float64frombits(le.Uint64(d))), nil
	case "compression":
		return enumValue(exrCompression, d[0]), nil
	case "lineOrder":
		return enumValue(exrLineOrder, d[0]), nil
	case "box2i":
		return attrs.Str(fmt.Sprintf("%d %d %d %d", i32(0), i32(1), i32(2), i32(3))), nil
	case "v2i":
		return attrs.Str(fmt.Sprintf("%d %d", i32(0), i32(1))), nil
	case "v2f":
		return attrs.Str(fmt.Sprintf("%g %g", f32(0), f32(1))), nil
	case "v3f":
		return attrs.Str(fmt.Sprintf("%g %g %g", f32(0), f32(1), f32(2))), nil
	case "rational":
		return attrs.Rational(i32(0), i32(1)), nil
	case "chromaticities":
		vals := make([]attrs.Value, 8)
		for i := range vals {
			vals[i] = attrs.Double(f32(i))
		}
		return attrs.List(vals...), nil
	case "timecode":
		t := le.Uint32(d)
		bcd := func(v uint32) uint32 { return v>>4*10 + v&0xF }
		return attrs.Str(fmt.Sprintf("%02d:%02d:%02d:%02d",
			bcd(t>>24&0x3F), bcd(t>>16&0x7F), bcd(t>>8&0x7F), bcd(t&0x3F))), nil
	case "chlist":
		return exrChannels(d)
	case "stringvector":
		var out []string
		for len(d) >= 4 && len(out) < maxEXRAttrs {
			n := int(le.Uint32(d))
			if n < 0 || 4+n > len(d) {
				return attrs.Value{}, core.EOF(4+n, len(d))
			}
			out = append(out, string(d[4:4+n]))
			d = d[4+n:]
		}
		return attrs.Strs(out), nil
	case "tiledesc":
		mode := []string{"One level", "Mipmap levels", "Ripmap levels"}
		lm := "Unknown"
		if int(d[8]&0xF) < len(mode) {
			lm = mode[d[8]&0xF]
		}
		return attrs.Str(fmt.Sprintf("%dx%d %s", le.Uint32(d), le.Uint32(d[4:]), lm)), nil
	}
	return attrs.Bytes(d), nil
}

func enumValue(names []string, v byte) attrs.Value {
	if int(v) < len(names) {
		return attrs.Str(names[v])
	}
	return attrs.UInt(uint32(v))
}

// exrChannels lists channel names with their pixel type, e.g. "R (half)".
func exrChannels(d []byte) (attrs.Value, error) {
	var out []string
	for len(d) > 0 && d[0] != 0 && len(out) < maxEXRAttrs {
		i := bytes.IndexByte(d, 0)
		if i < 0 || len(d) < i+17 {
			return attrs.Value{}, core.Structure("exr: truncated channel list")
		}
		name := string(d[:i])
		pt := binary.LittleEndian.Uint32(d[i+1:])
		kind := "unknown"
		if int(pt) < len(exrPixelTypes) {
			kind = exrPixelTypes[pt]
		}
		out = append(out, name+" ("+kind+")")
		d = d[i+17:]
	}
	return attrs.Str(strings.Join(out, ", ")), nil
}
