package image

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
)

// sniffSVG accepts a bare <svg> root and XML or DOCTYPE preambles. A
// preamble that turns out to open some other document makes parseSVG
// return core.ErrUnknownFormat.
func sniffSVG(b []byte) bool {
	b = bytes.TrimPrefix(b, []byte("\xEF\xBB\xBF"))
	b = bytes.TrimLeft(b, " \t\r\n")
	switch {
	case bytes.HasPrefix(b, []byte("<svg")), bytes.HasPrefix(b, []byte("<!DOCTYPE svg")):
		return true
	case bytes.HasPrefix(b, []byte("<?xml")):
		return !bytes.Contains(b, []byte("<?xpacket")) && !bytes.Contains(b, []byte("<x:xmpmeta"))
	}
	return false
}

func parseSVG(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	var (
		depth int
		ns    = map[string]string{}
		seen  bool
		path  []string
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !seen {
				return nil, core.ErrUnknownFormat
			}
			m.Warn(&core.XMLError{Err: err})
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					ns[a.Name.Local] = a.Value
				}
			}
			if depth == 0 {
				if t.Name.Local != "svg" {
					return nil, core.ErrUnknownFormat
				}
				seen = true
				svgRoot(m, t)
			}
			parent := ""
			if len(path) > 0 {
				parent = path[len(path)-1]
			}
			switch {
			case depth == 1 && t.Name.Local == "title":
				svgText(dec, &t, m, "SVG:Title")
				continue
			case depth == 1 && t.Name.Local == "desc":
				svgText(dec, &t, m, "SVG:Description")
				continue
			case parent == "metadata" && (t.Name.Local == "RDF" || t.Name.Local == "xmpmeta"):
				if err := dec.Skip(); err != nil {
					m.Warn(&core.XMLError{Err: err})
					continue
				}
				blocks.XMP(m, svgPacket(data[start:dec.InputOffset()], t.Name.Local, ns))
				continue
			}
			depth++
			path = append(path, t.Name.Local)
		case xml.EndElement:
			if depth > 0 {
				depth--
				path = path[:len(path)-1]
			}
		}
	}
	if !seen {
		return nil, core.ErrUnknownFormat
	}
	return m, nil
}

func svgRoot(m *core.Metadata, t xml.StartElement) {
	for _, a := range t.Attr {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "width":
			m.Attrs.Set("SVG:Width", attrs.Str(a.Value))
			if n, ok := svgLength(a.Value); ok {
				m.Attrs.Set("File:ImageWidth", attrs.UInt(n))
			}
		case "height":
			m.Attrs.Set("SVG:Height", attrs.Str(a.Value))
			if n, ok := svgLength(a.Value); ok {
				m.Attrs.Set("File:ImageHeight", attrs.UInt(n))
			}
		case "viewBox":
			m.Attrs.Set("SVG:ViewBox", attrs.Str(a.Value))
		case "version":
			m.Attrs.Set("SVG:Version", attrs.Str(a.Value))
		case "baseProfile":
			m.Attrs.Set("SVG:BaseProfile", attrs.Str(a.Value))
		}
	}
}

// svgLength converts a pixel length ("640", "640px") to an integer.
func svgLength(s string) (uint32, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1<<31 {
		return 0, false
	}
	return uint32(f + 0.5), true
}

func svgText(dec *xml.Decoder, start *xml.StartElement, m *core.Metadata, key string) {
	var s string
	if err := dec.DecodeElement(&s, start); err != nil {
		m.Warn(&core.XMLError{Err: err})
		return
	}
	if s = strings.TrimSpace(s); s != "" {
		m.Attrs.SetIfAbsent(key, attrs.Str(s))
	}
}

// svgPacket wraps a bare rdf:RDF element in x:xmpmeta, carrying the
// namespace declarations of its ancestors.
func svgPacket(frag []byte, local string, ns map[string]string) []byte {
	if local == "xmpmeta" {
		return frag
	}
	var b bytes.Buffer
	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/"`)
	for prefix, uri := range ns {
		if prefix == "x" || bytes.Contains(frag, []byte("xmlns:"+prefix+"=")) {
			continue
		}
		b.WriteString(" xmlns:" + prefix + `="`)
		xml.EscapeText(&b, []byte(uri))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.Write(frag)
	b.WriteString("</x:xmpmeta>")
	return b.Bytes()
}
