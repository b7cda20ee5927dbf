// Package xmp decodes and encodes Adobe XMP packets (RDF/XML).
//
// Properties come out as flat attributes keyed "<Group>:<name>", where the
// group is the canonical name of the property namespace ("DC:title",
// "XMP:Rating", "XMP-MM:DocumentID"). Bags and sequences become lists,
// language alternatives become the x-default value plus "name[lang]"
// entries, and structures become "Parent.Field" keys.
package xmp

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var xmpLogger = log.NewLogger("xmp")

// Namespace URIs.
const (
	NsRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NsX   = "adobe:ns:meta/"
	NsXML = "http://www.w3.org/XML/1998/namespace"
)

// JPEGHeader prefixes the packet in a JPEG APP1 segment.
const JPEGHeader = "http://ns.adobe.com/xap/1.0/\x00"

// ExtensionHeader prefixes ExtendedXMP segments, which are not decoded.
const ExtensionHeader = "http://ns.adobe.com/xmp/extension/\x00"

// PNGKeyword is the iTXt keyword carrying a packet.
const PNGKeyword = "XML:com.adobe.xmp"

// maxDepth bounds element nesting.
const maxDepth = 64

// Namespace pairs an XML prefix and URI with the attribute group name.
type Namespace struct {
	Group  string
	Prefix string
	URI    string
}

// Namespaces lists the schemas with a canonical group name.
var Namespaces = []Namespace{
	{"DC", "dc", "http://purl.org/dc/elements/1.1/"},
	{"XMP", "xmp", "http://ns.adobe.com/xap/1.0/"},
	{"XMP-MM", "xmpMM", "http://ns.adobe.com/xap/1.0/mm/"},
	{"XMP-Rights", "xmpRights", "http://ns.adobe.com/xap/1.0/rights/"},
	{"XMP-DM", "xmpDM", "http://ns.adobe.com/xmp/1.0/DynamicMedia/"},
	{"XMP-TPg", "xmpTPg", "http://ns.adobe.com/xap/1.0/t/pg/"},
	{"EXIF", "exif", "http://ns.adobe.com/exif/1.0/"},
	{"EXIF-EX", "exifEX", "http://cipa.jp/exif/1.0/"},
	{"TIFF", "tiff", "http://ns.adobe.com/tiff/1.0/"},
	{"AUX", "aux", "http://ns.adobe.com/exif/1.0/aux/"},
	{"Photoshop", "photoshop", "http://ns.adobe.com/photoshop/1.0/"},
	{"IPTC-Core", "Iptc4xmpCore", "http://iptc.org/std/Iptc4xmpCore/1.0/xmlns/"},
	{"IPTC-Ext", "Iptc4xmpExt", "http://iptc.org/std/Iptc4xmpExt/2008-02-29/"},
	{"CRS", "crs", "http://ns.adobe.com/camera-raw-settings/1.0/"},
	{"Lightroom", "lr", "http://ns.adobe.com/lightroom/1.0/"},
	{"XMP-PDF", "pdf", "http://ns.adobe.com/pdf/1.3/"},
	{"XMP-stRef", "stRef", "http://ns.adobe.com/xap/1.0/sType/ResourceRef#"},
	{"XMP-stEvt", "stEvt", "http://ns.adobe.com/xap/1.0/sType/ResourceEvent#"},
}

var (
	byURI   = map[string]Namespace{}
	byGroup = map[string]Namespace{}
)

func init() {
	for _, ns := range Namespaces {
		byURI[ns.URI] = ns
		byGroup[ns.Group] = ns
	}
}

// IsGroup reports whether group is the canonical name of an XMP schema.
func IsGroup(group string) bool {
	_, ok := byGroup[group]
	return ok
}

// IsXMPKey reports whether key belongs to a known XMP schema.
func IsXMPKey(key string) bool {
	i := strings.IndexByte(key, ':')
	return i > 0 && IsGroup(key[:i])
}

// node is one element of the parsed document.
type node struct {
	name     xml.Name
	attr     []xml.Attr
	children []*node
	text     strings.Builder
}

func (n *node) is(space, local string) bool {
	return n.name.Space == space && n.name.Local == local
}

func (n *node) attrValue(space, local string) (string, bool) {
	for _, a := range n.attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// decoder carries the prefix declarations seen in the document, used to
// name properties of schemas without a canonical group.
type decoder struct {
	prefixes map[string]string
	out      *attrs.Attrs
}

// Decode parses an XMP packet. Properties that cannot be interpreted are
// logged and skipped. Malformed XML is an XMLError.
func Decode(packet []byte) (*attrs.Attrs, error) {
	root, prefixes, err := parseTree(Trim(packet))
	if err != nil {
		return nil, err
	}
	d := &decoder{prefixes: prefixes, out: attrs.New()}
	d.walk(root, 0)
	return d.out, nil
}

// DecodeString is Decode for a string packet.
func DecodeString(packet string) (*attrs.Attrs, error) {
	return Decode([]byte(packet))
}

// Trim drops the NUL and blank padding some writers leave around the packet.
func Trim(packet []byte) []byte {
	return bytes.Trim(packet, "\x00 \t\r\n")
}

func parseTree(data []byte) (*node, map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	root := &node{}
	stack := []*node{root}
	prefixes := map[string]string{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &core.XMLError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				}
			}
			if len(stack) > maxDepth {
				return nil, nil, &core.XMLError{Err: errors.Errorf("element nesting deeper than %d", maxDepth)}
			}
			n := &node{name: t.Name, attr: t.Copy().Attr}
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}
	return root, prefixes, nil
}

// walk finds rdf:Description elements at any depth outside property values.
func (d *decoder) walk(n *node, depth int) {
	for _, c := range n.children {
		if c.is(NsRDF, "Description") {
			d.description(c)
			continue
		}
		if depth < maxDepth {
			d.walk(c, depth+1)
		}
	}
}

func (d *decoder) description(n *node) {
	for _, a := range n.attr {
		if skipAttr(a.Name) {
			continue
		}
		d.out.Set(d.key(a.Name), attrs.Str(a.Value))
	}
	for _, c := range n.children {
		d.property(d.key(c.name), c, 0)
	}
}

// skipAttr reports attributes that are syntax rather than properties.
func skipAttr(n xml.Name) bool {
	switch n.Space {
	case "xmlns", NsRDF, NsXML, "rdf", "xml":
		return true
	}
	return n.Space == "" && (n.Local == "xmlns" || n.Local == "about")
}

// key names a property: canonical group when the schema is known, otherwise
// "XMP-<prefix>".
func (d *decoder) key(n xml.Name) string {
	return d.group(n.Space) + ":" + n.Local
}

func (d *decoder) group(uri string) string {
	if ns, ok := byURI[uri]; ok {
		return ns.Group
	}
	if p, ok := d.prefixes[uri]; ok {
		return "XMP-" + p
	}
	if uri == "" {
		return "XMP"
	}
	return "XMP-" + uri
}

// property decodes the value held by element n into key.
func (d *decoder) property(key string, n *node, depth int) {
	if depth > maxDepth {
		xmpLogger.Warningf(nil, "xmp: %s nested too deep, skipped", key)
		return
	}
	if res, ok := n.attrValue(NsRDF, "resource"); ok {
		d.out.Set(key, attrs.Str(res))
		return
	}
	if pt, _ := n.attrValue(NsRDF, "parseType"); pt == "Resource" {
		d.fields(key, n, depth)
		return
	}
	for _, c := range n.children {
		switch {
		case c.is(NsRDF, "Bag"), c.is(NsRDF, "Seq"):
			d.list(key, c, depth)
			return
		case c.is(NsRDF, "Alt"):
			d.alt(key, c)
			return
		case c.is(NsRDF, "Description"):
			d.fields(key, c, depth)
			return
		}
	}
	// Attributes on the property element itself are struct fields.
	if len(n.children) > 0 {
		d.fields(key, n, depth)
		return
	}
	for _, a := range n.attr {
		if !skipAttr(a.Name) {
			d.out.Set(key+"."+a.Name.Local, attrs.Str(a.Value))
		}
	}
	if text := strings.TrimSpace(n.text.String()); text != "" {
		d.out.Set(key, attrs.Str(text))
	}
}

// fields expands a structure into "key.Field" entries.
func (d *decoder) fields(key string, n *node, depth int) {
	for _, a := range n.attr {
		if !skipAttr(a.Name) {
			d.out.Set(key+"."+a.Name.Local, attrs.Str(a.Value))
		}
	}
	for _, c := range n.children {
		d.property(key+"."+c.name.Local, c, depth+1)
	}
}

// list collects rdf:Bag/rdf:Seq items. Structured items are expanded into
// "key.Field" entries, repeated fields accumulating into lists.
func (d *decoder) list(key string, n *node, depth int) {
	var items []attrs.Value
	structs := map[string][]attrs.Value{}
	var fieldOrder []string
	for _, li := range n.children {
		if !li.is(NsRDF, "li") {
			continue
		}
		if !isStruct(li) {
			if text := strings.TrimSpace(li.text.String()); text != "" {
				items = append(items, attrs.Str(text))
			} else if res, ok := li.attrValue(NsRDF, "resource"); ok {
				items = append(items, attrs.Str(res))
			}
			continue
		}
		sub := &decoder{prefixes: d.prefixes, out: attrs.New()}
		sub.property(key, li, depth+1)
		for _, e := range sub.out.Entries() {
			if _, seen := structs[e.Key]; !seen {
				fieldOrder = append(fieldOrder, e.Key)
			}
			structs[e.Key] = append(structs[e.Key], e.Value)
		}
	}
	if len(items) > 0 {
		d.out.Set(key, attrs.List(items...))
	}
	for _, k := range fieldOrder {
		vs := structs[k]
		if len(vs) == 1 {
			d.out.Set(k, vs[0])
		} else {
			d.out.Set(k, attrs.List(vs...))
		}
	}
}

func isStruct(li *node) bool {
	if pt, _ := li.attrValue(NsRDF, "parseType"); pt == "Resource" {
		return true
	}
	if len(li.children) > 0 {
		return true
	}
	for _, a := range li.attr {
		if !skipAttr(a.Name) {
			return true
		}
	}
	return false
}

// alt stores the x-default (or first) alternative under key, and every
// other language under key[lang] when there is more than one.
func (d *decoder) alt(key string, n *node) {
	type alternative struct{ lang, text string }
	var alts []alternative
	for _, li := range n.children {
		if !li.is(NsRDF, "li") {
			continue
		}
		text := strings.TrimSpace(li.text.String())
		if text == "" {
			continue
		}
		lang, ok := li.attrValue(NsXML, "lang")
		if !ok {
			lang, _ = li.attrValue("xml", "lang")
		}
		if lang == "" {
			lang = "x-default"
		}
		alts = append(alts, alternative{lang, text})
	}
	if len(alts) == 0 {
		return
	}
	def := alts[0].text
	for _, a := range alts {
		if a.lang == "x-default" {
			def = a.text
			break
		}
	}
	d.out.Set(key, attrs.Str(def))
	if len(alts) > 1 {
		for _, a := range alts {
			if a.lang != "x-default" {
				d.out.Set(key+"["+a.lang+"]", attrs.Str(a.text))
			}
		}
	}
}

// Find locates an XMP packet inside arbitrary bytes (EPS, AI, GIF
// application data). It returns nil when there is none.
func Find(data []byte) []byte {
	start := bytes.Index(data, []byte("<?xpacket begin"))
	if start < 0 {
		start = bytes.Index(data, []byte("<x:xmpmeta"))
	}
	if start < 0 {
		return nil
	}
	rest := data[start:]
	if end := bytes.Index(rest, []byte("<?xpacket end")); end >= 0 {
		if close := bytes.Index(rest[end:], []byte("?>")); close >= 0 {
			return rest[:end+close+2]
		}
	}
	if end := bytes.Index(rest, []byte("</x:xmpmeta>")); end >= 0 {
		return rest[:end+len("</x:xmpmeta>")]
	}
	return nil
}

// Sniff reports whether b starts like an XMP document.
func Sniff(b []byte) bool {
	b = bytes.TrimLeft(b, "\xef\xbb\xbf \t\r\n")
	for _, p := range []string{"<?xpacket", "<x:xmpmeta", "<rdf:RDF"} {
		if bytes.HasPrefix(b, []byte(p)) {
			return true
		}
	}
	return false
}
