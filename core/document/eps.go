package document

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// dscHeaderLimit bounds the scan for header comments.
const dscHeaderLimit = 64 << 10

// dscText are DSC comments whose value may be a PostScript string.
var dscText = map[string]string{
	"Title":     "Title",
	"Creator":   "Creator",
	"For":       "For",
	"Copyright": "Copyright",
	"Routing":   "Routing",
}

// dscPlain are DSC comments kept verbatim.
var dscPlain = map[string]string{
	"CreationDate":     "CreateDate",
	"HiResBoundingBox": "HiResBoundingBox",
	"PageOrder":        "PageOrder",
	"DocumentData":     "DocumentData",
	"Orientation":      "Orientation",
}

func parseEPS(data []byte, m *core.Metadata) (*core.Metadata, error) {
	m.Format = EPS
	ps := data
	if core.HasPrefixAt(data, 0, dosEPSMagic) {
		var err error
		if ps, err = dosEPS(data, m); err != nil {
			return nil, err
		}
	} else if !bytes.HasPrefix(data, []byte("%!PS")) {
		return nil, core.Structure("eps: missing %%!PS header")
	}

	first, _, _ := bytes.Cut(ps, []byte("\n"))
	first = bytes.TrimRight(first, "\r")
	if v, ok := bytes.CutPrefix(first, []byte("%!PS-Adobe-")); ok {
		f := strings.Fields(string(v))
		if len(f) > 0 {
			m.Attrs.Set("EPS:PSVersion", attrs.Str(f[0]))
		}
		if len(f) > 1 && strings.HasPrefix(f[1], "EPSF-") {
			m.Attrs.Set("EPS:EPSVersion", attrs.Str(strings.TrimPrefix(f[1], "EPSF-")))
		}
	}
	if !m.Attrs.Contains("EPS:Type") {
		if bytes.Contains(first, []byte("EPSF")) {
			m.Attrs.Set("EPS:Type", attrs.Str("ASCII EPS"))
		} else {
			m.Attrs.Set("EPS:Type", attrs.Str("PostScript"))
		}
	}

	ai := dscComments(ps, m)
	photoshop(ps, m)
	if packet := xmp.Find(ps); packet != nil {
		blocks.XMP(m, packet)
	}
	if c, ok := m.Attrs.GetStr("EPS:Creator"); ok && strings.Contains(c, "Illustrator") {
		ai = true
	}
	if ai {
		m.Format = AI
		m.Attrs.Set("AI:Type", attrs.Str("EPS-based"))
	}
	return m, nil
}

// dosEPS reads the 30-byte DOS EPS binary header and returns the
// PostScript section. A TIFF preview becomes Metadata.Preview.
func dosEPS(data []byte, m *core.Metadata) ([]byte, error) {
	if len(data) < 30 {
		return nil, core.EOF(30, len(data))
	}
	le := binary.LittleEndian
	m.Attrs.Set("EPS:Type", attrs.Str("DOS EPS"))
	section := func(off, n uint32) ([]byte, bool) {
		if n == 0 || uint64(off)+uint64(n) > uint64(len(data)) {
			return nil, false
		}
		return data[off : off+n], true
	}
	if _, ok := section(le.Uint32(data[12:]), le.Uint32(data[16:])); ok {
		m.Attrs.Set("EPS:PreviewType", attrs.Str("WMF"))
	}
	if tiff, ok := section(le.Uint32(data[20:]), le.Uint32(data[24:])); ok {
		m.Attrs.Set("EPS:PreviewType", attrs.Str("TIFF"))
		m.Preview = tiff
	}
	off, n := le.Uint32(data[4:]), le.Uint32(data[8:])
	if ps, ok := section(off, n); ok {
		return ps, nil
	}
	if uint64(off) < uint64(len(data)) {
		m.Warn(&core.ValueOutOfBoundsError{Offset: uint64(off), Size: uint64(n), DataLen: uint64(len(data))})
		return data[off:], nil
	}
	return nil, &core.ValueOutOfBoundsError{Offset: uint64(off), Size: uint64(n), DataLen: uint64(len(data))}
}

// dscComments decodes the header comments up to %%EndComments and reports
// whether Illustrator comments were seen. A bounding box deferred with
// (atend) is read from the trailer.
func dscComments(ps []byte, m *core.Metadata) bool {
	ai := false
	atend := false
	sc := bufio.NewScanner(bytes.NewReader(ps[:min(len(ps), dscHeaderLimit)]))
	sc.Split(scanLinesCR)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "%%EndComments") {
			break
		}
		if strings.HasPrefix(line, "%%AI") || strings.HasPrefix(line, "%AI") {
			ai = true
			if k, v, ok := strings.Cut(line, ":"); ok && strings.HasSuffix(k, "CreatorVersion") {
				setText(m, "AI:CreatorVersion", v)
			}
			continue
		}
		key, val, ok := dscLine(line)
		if !ok {
			continue
		}
		switch key {
		case "BoundingBox":
			if val == "(atend)" {
				atend = true
				continue
			}
			if setSize(m, val) {
				m.Attrs.Set("EPS:BoundingBox", attrs.Str(val))
			}
		case "Pages", "LanguageLevel":
			if n, err := strconv.ParseUint(strings.Fields(val + " x")[0], 10, 32); err == nil {
				m.Attrs.Set("EPS:"+key, attrs.UInt(uint32(n)))
			}
		default:
			if name, ok := dscText[key]; ok {
				setText(m, "EPS:"+name, psString(val))
			} else if name, ok := dscPlain[key]; ok {
				setText(m, "EPS:"+name, val)
			}
		}
	}
	if atend {
		if i := bytes.LastIndex(ps, []byte("%%BoundingBox:")); i >= 0 {
			line, _, _ := bytes.Cut(ps[i:], []byte("\n"))
			if _, val, ok := dscLine(strings.TrimRight(string(line), "\r")); ok && val != "(atend)" && setSize(m, val) {
				m.Attrs.Set("EPS:BoundingBox", attrs.Str(val))
			}
		}
	}
	return ai
}

// scanLinesCR splits on LF, CRLF or a bare CR, all of which occur in
// PostScript written on different platforms.
func scanLinesCR(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func dscLine(line string) (key, val string, ok bool) {
	rest, ok := strings.CutPrefix(line, "%%")
	if !ok {
		return "", "", false
	}
	key, val, ok = strings.Cut(rest, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(val), true
}

// psString unwraps a parenthesised PostScript string with the same
// escapes as PDF literals.
func psString(v string) string {
	if !strings.HasPrefix(v, "(") {
		return v
	}
	p := &pdfLexer{b: []byte(v)}
	s, err := p.literal()
	if err != nil {
		return strings.TrimPrefix(v, "(")
	}
	return s
}

// photoshop decodes the hex image resources between %BeginPhotoshop and
// %EndPhotoshop.
func photoshop(ps []byte, m *core.Metadata) {
	i := bytes.Index(ps, []byte("%BeginPhotoshop:"))
	if i < 0 {
		return
	}
	rest := ps[i:]
	end := bytes.Index(rest, []byte("%EndPhotoshop"))
	if end < 0 {
		m.Warn(core.Structure("eps: %%BeginPhotoshop without %%EndPhotoshop"))
		return
	}
	_, body, _ := bytes.Cut(rest[:end], []byte("\n"))
	var h []byte
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(line), []byte("%")))
		h = append(h, line...)
	}
	irb := make([]byte, hex.DecodedLen(len(h)))
	n, err := hex.Decode(irb, h)
	if err != nil {
		m.Warn(errors.Wrap(err, "eps Photoshop resources"))
		return
	}
	blocks.IRB(m, irb[:n])
}
