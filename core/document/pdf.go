package document

import (
	"bytes"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// pdfInfoFields are the standard Info dictionary keys. Others are kept
// under their own name.
var pdfInfoFields = map[string]string{
	"Title":        "Title",
	"Author":       "Author",
	"Subject":      "Subject",
	"Keywords":     "Keywords",
	"Creator":      "Creator",
	"Producer":     "Producer",
	"CreationDate": "CreateDate",
	"ModDate":      "ModifyDate",
	"Trapped":      "Trapped",
}

var (
	pdfVersionRe  = regexp.MustCompile(`^%PDF-(\d+\.\d+)`)
	pdfInfoRefRe  = regexp.MustCompile(`/Info\s+(\d+)\s+(\d+)\s+R`)
	pdfPagesRe    = regexp.MustCompile(`/Type\s*/Pages\b`)
	pdfCountRe    = regexp.MustCompile(`/Count\s+(\d+)`)
	pdfMetadataRe = regexp.MustCompile(`/Type\s*/Metadata\b`)
	pdfMediaBoxRe = regexp.MustCompile(`/MediaBox\s*\[([^\]]*)\]`)
	pdfAIVerRe    = regexp.MustCompile(`%%AI\w*_?CreatorVersion:\s*([^\r\n]+)`)
	pdfDateRe     = regexp.MustCompile(`^(?:D:)?(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?([Zz+\-])?(\d{2})?'?(\d{2})?'?$`)
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

func parsePDF(data []byte, m *core.Metadata) (*core.Metadata, error) {
	v := pdfVersionRe.FindSubmatch(data)
	if v == nil {
		return nil, core.Structure("pdf: missing %%PDF header")
	}
	m.Attrs.Set("PDF:Version", attrs.Str(string(v[1])))
	if bytes.Contains(data[:min(len(data), 1024)], []byte("/Linearized")) {
		m.Attrs.Set("PDF:Linearized", attrs.Bool(true))
	}
	if bytes.Contains(data, []byte("/Encrypt")) {
		m.Attrs.Set("PDF:Encrypted", attrs.Bool(true))
	}

	info, err := infoDictionary(data)
	if err != nil {
		m.Warn(errors.Wrap(err, "pdf Info"))
	}
	for _, e := range info {
		name, ok := pdfInfoFields[e.key]
		if !ok {
			name = e.key
		}
		key := "PDF:" + name
		if e.key == "CreationDate" || e.key == "ModDate" {
			if t, ok := pdfDate(e.val); ok {
				m.Attrs.Set(key, attrs.DateTime(t))
				continue
			}
		}
		setText(m, key, e.val)
	}

	if n := pageCount(data); n > 0 {
		m.Attrs.Set("PDF:PageCount", attrs.UInt(n))
	}
	if box := pdfMediaBoxRe.FindSubmatch(data); box != nil {
		m.Attrs.Set("PDF:MediaBox", attrs.Str(strings.Join(strings.Fields(string(box[1])), " ")))
	}

	if packet := metadataStream(m, data); packet != nil {
		blocks.XMP(m, packet)
	}

	m.Format = PDF
	if illustrator(data, m) {
		m.Format = AI
		m.Attrs.Set("AI:Type", attrs.Str("PDF-based"))
		if box, ok := m.Attrs.GetStr("PDF:MediaBox"); ok {
			setSize(m, box)
		}
	}
	return m, nil
}

// illustrator reports whether a PDF carries Illustrator private data and
// records its creator version.
func illustrator(data []byte, m *core.Metadata) bool {
	found := false
	if v := pdfAIVerRe.FindSubmatch(data); v != nil {
		setText(m, "AI:CreatorVersion", string(v[1]))
		found = true
	}
	if bytes.Contains(data, []byte("/AIPrivateData")) || bytes.Contains(data, []byte("/AIMetaData")) {
		found = true
	}
	if c, ok := m.Attrs.GetStr("PDF:Creator"); ok && strings.Contains(c, "Illustrator") {
		found = true
	}
	return found
}

type pdfEntry struct {
	key, val string
}

// infoDictionary locates the document Info dictionary through the last
// trailer reference. Files whose Info object lives in a compressed object
// stream fall back to a scan for the standard keys.
func infoDictionary(data []byte) ([]pdfEntry, error) {
	refs := pdfInfoRefRe.FindAllSubmatch(data, -1)
	if len(refs) > 0 {
		ref := refs[len(refs)-1]
		obj := regexp.MustCompile(`(?:^|[\s>])` + string(ref[1]) + `\s+` + string(ref[2]) + `\s+obj\b`)
		locs := obj.FindAllIndex(data, -1)
		if len(locs) > 0 {
			start := locs[len(locs)-1][1]
			if i := bytes.Index(data[start:], []byte("<<")); i >= 0 {
				entries, err := pdfDictionary(data[start+i:])
				if err == nil || len(entries) > 0 {
					return entries, err
				}
			}
		}
	}
	return scanInfo(data), nil
}

// scanInfo collects the standard keys wherever they appear.
func scanInfo(data []byte) []pdfEntry {
	var out []pdfEntry
	for key := range pdfInfoFields {
		re := regexp.MustCompile(`/` + key + `\s*([(<])`)
		loc := re.FindSubmatchIndex(data)
		if loc == nil {
			continue
		}
		p := &pdfLexer{b: data, pos: loc[2]}
		if v, err := p.object(); err == nil {
			out = append(out, pdfEntry{key: key, val: v})
		}
	}
	return out
}

// pdfDictionary reads the name/value pairs of the dictionary that data
// starts with. Nested dictionaries and arrays are skipped.
func pdfDictionary(data []byte) ([]pdfEntry, error) {
	p := &pdfLexer{b: data}
	if !p.consume("<<") {
		return nil, core.Structure("pdf: expected dictionary")
	}
	var out []pdfEntry
	for i := 0; i < core.MaxWalkIterations; i++ {
		p.space()
		if p.consume(">>") {
			return out, nil
		}
		if p.pos >= len(p.b) || p.b[p.pos] != '/' {
			return out, core.Structure("pdf: expected name at %d", p.pos)
		}
		key := p.name()
		p.space()
		val, err := p.object()
		if err != nil {
			return out, errors.Wrapf(err, "value of /%s", key)
		}
		if val != "" {
			out = append(out, pdfEntry{key: key, val: val})
		}
	}
	return out, core.Structure("pdf: dictionary with more than %d entries", core.MaxWalkIterations)
}

type pdfLexer struct {
	b   []byte
	pos int
}

func (p *pdfLexer) space() {
	for p.pos < len(p.b) {
		switch p.b[p.pos] {
		case ' ', '\t', '\r', '\n', '\f', 0:
			p.pos++
		case '%':
			for p.pos < len(p.b) && p.b[p.pos] != '\n' && p.b[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *pdfLexer) consume(s string) bool {
	if bytes.HasPrefix(p.b[p.pos:], []byte(s)) {
		p.pos += len(s)
		return true
	}
	return false
}

func delimiter(c byte) bool {
	return strings.IndexByte(" \t\r\n\f\x00()<>[]{}/%", c) >= 0
}

func (p *pdfLexer) name() string {
	p.pos++ // '/'
	start := p.pos
	for p.pos < len(p.b) && !delimiter(p.b[p.pos]) {
		p.pos++
	}
	return string(p.b[start:p.pos])
}

// object reads one value and returns it as text. Strings are decoded;
// names lose their slash; references, arrays and dictionaries yield "".
func (p *pdfLexer) object() (string, error) {
	if p.pos >= len(p.b) {
		return "", core.EOF(p.pos+1, len(p.b))
	}
	switch c := p.b[p.pos]; {
	case c == '(':
		return p.literal()
	case c == '<' && p.pos+1 < len(p.b) && p.b[p.pos+1] == '<':
		return "", p.skip("<<", ">>")
	case c == '<':
		end := bytes.IndexByte(p.b[p.pos:], '>')
		if end < 0 {
			return "", core.Structure("pdf: unterminated hex string")
		}
		h := strings.Map(func(r rune) rune {
			if strings.ContainsRune(" \t\r\n\f", r) {
				return -1
			}
			return r
		}, string(p.b[p.pos+1:p.pos+end]))
		p.pos += end + 1
		if len(h)%2 == 1 {
			h += "0"
		}
		b, err := hex.DecodeString(h)
		if err != nil {
			return "", core.Structure("pdf: bad hex string: %v", err)
		}
		return pdfText(b), nil
	case c == '[':
		return "", p.skip("[", "]")
	case c == '/':
		return p.name(), nil
	default:
		// Number, boolean, null or an indirect reference "n g R".
		start := p.pos
		for p.pos < len(p.b) && !delimiter(p.b[p.pos]) {
			p.pos++
		}
		tok := string(p.b[start:p.pos])
		save := p.pos
		p.space()
		if _, err := strconv.Atoi(tok); err == nil {
			if g := p.pos; g < len(p.b) && p.b[g] >= '0' && p.b[g] <= '9' {
				for p.pos < len(p.b) && !delimiter(p.b[p.pos]) {
					p.pos++
				}
				p.space()
				if p.consume("R") {
					return "", nil
				}
			}
		}
		p.pos = save
		if tok == "null" {
			return "", nil
		}
		return tok, nil
	}
}

// skip passes over a balanced array or dictionary, strings included.
func (p *pdfLexer) skip(open, close string) error {
	depth := 0
	for p.pos < len(p.b) {
		switch {
		case p.consume(open):
			depth++
		case p.consume(close):
			depth--
			if depth == 0 {
				return nil
			}
		case p.b[p.pos] == '(':
			if _, err := p.literal(); err != nil {
				return err
			}
		default:
			p.pos++
		}
	}
	return core.Structure("pdf: unterminated %q", open)
}

// literal reads a parenthesised string with nesting and escapes.
func (p *pdfLexer) literal() (string, error) {
	p.pos++ // '('
	var out []byte
	depth := 1
	for p.pos < len(p.b) {
		c := p.b[p.pos]
		p.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return pdfText(out), nil
			}
		case '\\':
			if p.pos >= len(p.b) {
				break
			}
			e := p.b[p.pos]
			p.pos++
			switch e {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r':
				if p.pos < len(p.b) && p.b[p.pos] == '\n' {
					p.pos++
				}
				continue
			case '\n':
				continue
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && p.pos < len(p.b) && p.b[p.pos] >= '0' && p.b[p.pos] <= '7'; i++ {
						v = v*8 + int(p.b[p.pos]-'0')
						p.pos++
					}
					c = byte(v)
				} else {
					c = e
				}
			}
		}
		out = append(out, c)
	}
	return "", core.Structure("pdf: unterminated string")
}

// pdfText decodes a text string: UTF-16BE or UTF-8 with a byte order
// mark, PDFDocEncoding otherwise. PDFDocEncoding is read as ISO-8859-1,
// which agrees with it outside 0x18-0x1F and 0x80-0xA0.
func pdfText(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte{0xFE, 0xFF}):
		s, err := utf16be.NewDecoder().Bytes(b)
		if err == nil {
			return strings.TrimRight(string(s), "\x00")
		}
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return string(b[3:])
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// pdfDate parses "D:YYYYMMDDHHmmSSOHH'mm'" with every part after the year
// optional.
func pdfDate(s string) (time.Time, bool) {
	g := pdfDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if g == nil {
		return time.Time{}, false
	}
	num := func(i, def int) int {
		if g[i] == "" {
			return def
		}
		n, _ := strconv.Atoi(g[i])
		return n
	}
	loc := time.UTC
	if g[7] == "+" || g[7] == "-" {
		off := num(8, 0)*3600 + num(9, 0)*60
		if g[7] == "-" {
			off = -off
		}
		loc = time.FixedZone("", off)
	}
	return time.Date(num(1, 0), time.Month(num(2, 1)), num(3, 1), num(4, 0), num(5, 0), num(6, 0), 0, loc), true
}

// pageCount returns the largest /Count of the page tree nodes, which is
// the root's.
func pageCount(data []byte) uint32 {
	var n uint64
	for _, loc := range pdfPagesRe.FindAllIndex(data, -1) {
		start := bytes.LastIndex(data[:loc[0]], []byte("<<"))
		end := bytes.Index(data[loc[1]:], []byte(">>"))
		if start < 0 || end < 0 {
			continue
		}
		dict := data[start : loc[1]+end]
		if c := pdfCountRe.FindSubmatch(dict); c != nil {
			if v, err := strconv.ParseUint(string(c[1]), 10, 32); err == nil && v > n {
				n = v
			}
		}
	}
	return uint32(n)
}

// metadataStream returns the XMP packet of the first /Type /Metadata
// stream, inflating it when it is Flate encoded. Without one it falls back
// to a plain scan of the file.
func metadataStream(m *core.Metadata, data []byte) []byte {
	for _, loc := range pdfMetadataRe.FindAllIndex(data, -1) {
		rest := data[loc[1]:]
		s := bytes.Index(rest, []byte("stream"))
		if s < 0 {
			break
		}
		dict := rest[:s]
		if bytes.Contains(dict, []byte("endobj")) {
			continue
		}
		body := rest[s+len("stream"):]
		body = bytes.TrimPrefix(body, []byte("\r"))
		body = bytes.TrimPrefix(body, []byte("\n"))
		e := bytes.Index(body, []byte("endstream"))
		if e < 0 {
			continue
		}
		body = body[:e]
		if bytes.Contains(dict, []byte("/FlateDecode")) {
			out, err := core.Inflate(body)
			if err != nil {
				m.Warn(errors.Wrap(err, "pdf metadata stream"))
				continue
			}
			body = out
		}
		if packet := xmp.Find(body); packet != nil {
			return packet
		}
	}
	documentLogger.Debugf(nil, "pdf: no metadata stream object, scanning the file")
	return xmp.Find(data)
}
