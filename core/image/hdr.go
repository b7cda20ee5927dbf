package image

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// maxHDRHeader bounds the text header of a Radiance file.
const maxHDRHeader = 64 << 10

// HDRVars maps the Radiance header variables to attribute keys. Variables
// not listed are kept as "HDR:<NAME>".
var HDRVars = map[string]string{
	"FORMAT":    "HDR:Format",
	"EXPOSURE":  "HDR:Exposure",
	"GAMMA":     "HDR:Gamma",
	"PIXASPECT": "HDR:PixelAspectRatio",
	"SOFTWARE":  "Software",
	"PRIMARIES": "HDR:Primaries",
	"COLORCORR": "HDR:ColorCorrection",
	"VIEW":      "HDR:View",
}

// HDRLine is one line of a Radiance header. Comments and lines that are not
// assignments have an empty Key and keep their text in Value.
type HDRLine struct {
	Key   string
	Value string
}

// HDRHeader is the text header of a Radiance RGBE file.
type HDRHeader struct {
	// Identifier follows "#?" on the first line, e.g. "RADIANCE".
	Identifier string
	Lines      []HDRLine
	// Resolution is the line that precedes the pixel data, without its
	// newline.
	Resolution string
	// Body is the offset of the resolution line.
	Body int
}

// ReadHDRHeader reads the header up to and including the resolution line.
func ReadHDRHeader(r io.Reader) (*HDRHeader, error) {
	br := bufio.NewReader(io.LimitReader(r, maxHDRHeader))
	first, err := br.ReadString('\n')
	if err != nil {
		return nil, core.EOF(len(first)+1, len(first))
	}
	if !strings.HasPrefix(first, "#?") {
		return nil, core.Structure("hdr: missing #? signature")
	}
	h := &HDRHeader{Identifier: strings.TrimSpace(first[2:])}
	pos := len(first)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return h, errors.Wrap(core.EOF(pos+len(line)+1, pos+len(line)), "hdr: no resolution line")
		}
		text := strings.TrimRight(line, "\r\n")
		switch {
		case text == "":
		case text[0] == '-' || text[0] == '+':
			h.Resolution = text
			h.Body = pos
			return h, nil
		case text[0] == '#':
			h.Lines = append(h.Lines, HDRLine{Value: text})
		default:
			if k, v, ok := strings.Cut(text, "="); ok {
				h.Lines = append(h.Lines, HDRLine{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
			} else {
				h.Lines = append(h.Lines, HDRLine{Value: text})
			}
		}
		pos += len(line)
	}
}

// Size parses the resolution line. Either axis may come first; a leading X
// means the scanlines run vertically.
func (h *HDRHeader) Size() (width, height uint32, ok bool) {
	f := strings.Fields(h.Resolution)
	if len(f) != 4 {
		return 0, 0, false
	}
	var gotX, gotY bool
	for i := 0; i < 4; i += 2 {
		if len(f[i]) != 2 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(f[i+1], 10, 32)
		if err != nil {
			return 0, 0, false
		}
		switch f[i][1] {
		case 'X':
			width, gotX = uint32(n), true
		case 'Y':
			height, gotY = uint32(n), true
		}
	}
	return width, height, gotX && gotY
}

func hdrKey(name string) string {
	if k, ok := HDRVars[strings.ToUpper(name)]; ok {
		return k
	}
	return "HDR:" + name
}

func parseHDR(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	h, err := ReadHDRHeader(r)
	if h == nil {
		return nil, err
	}
	if err != nil {
		m.Warn(err)
	}
	if h.Identifier != "" {
		m.Attrs.Set("HDR:FormatIdentifier", attrs.Str(h.Identifier))
	}
	var comments []string
	for _, l := range h.Lines {
		if l.Key == "" {
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(l.Value, "#")))
			continue
		}
		key := hdrKey(l.Key)
		switch key {
		case "HDR:Exposure", "HDR:Gamma", "HDR:PixelAspectRatio":
			// EXPOSURE may repeat; the values multiply.
			if f, err := strconv.ParseFloat(l.Value, 64); err == nil {
				if prev, ok := m.Attrs.GetDouble(key); ok && key == "HDR:Exposure" {
					f *= prev
				}
				m.Attrs.Set(key, attrs.Double(f))
				continue
			}
		}
		m.Attrs.Set(key, attrs.Str(l.Value))
	}
	if len(comments) > 0 {
		m.Attrs.Set("HDR:Comment", attrs.Strs(comments))
	}
	if w, ht, ok := h.Size(); ok {
		m.Attrs.Set("File:ImageWidth", attrs.UInt(w))
		m.Attrs.Set("File:ImageHeight", attrs.UInt(ht))
		f := strings.Fields(h.Resolution)
		m.Attrs.Set("HDR:Orientation", attrs.Str(f[0]+" "+f[2]))
	} else if h.Resolution != "" {
		m.Warn(core.Structure("hdr: bad resolution line %q", h.Resolution))
	}
	return m, nil
}
