package xmp

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// Container is the RDF collection a property is written as.
type Container int

const (
	Simple Container = iota
	Bag
	Seq
	Alt
)

// containers maps "Group:name" to its RDF collection type. Lists of
// properties missing here are written as bags.
var containers = map[string]Container{
	"DC:subject":     Bag,
	"DC:type":        Bag,
	"DC:format":      Bag,
	"DC:language":    Bag,
	"DC:publisher":   Bag,
	"DC:contributor": Bag,
	"DC:relation":    Bag,
	"DC:creator":     Seq,
	"DC:date":        Seq,
	"DC:title":       Alt,
	"DC:description": Alt,
	"DC:rights":      Alt,

	"XMP:Identifier": Bag,
	"XMP:Advisory":   Bag,

	"XMP-Rights:Owner":      Bag,
	"XMP-Rights:UsageTerms": Alt,

	"EXIF:ISOSpeedRatings":         Seq,
	"EXIF:ComponentsConfiguration": Seq,
	"EXIF:SubjectArea":             Seq,
	"EXIF:UserComment":             Alt,
	"TIFF:BitsPerSample":           Seq,
	"TIFF:ImageDescription":        Alt,
	"TIFF:Copyright":               Alt,
	"TIFF:Artist":                  Seq,

	"Photoshop:SupplementalCategories": Bag,
	"Lightroom:hierarchicalSubject":    Bag,
	"IPTC-Core:Scene":                  Bag,
	"IPTC-Core:SubjectCode":            Bag,
	"IPTC-Ext:PersonInImage":           Bag,
	"XMP-MM:History":                   Seq,
}

// ContainerOf returns how key is written.
func ContainerOf(key string) Container {
	return containers[key]
}

// prop is one top-level property being written. Structures nest props.
type prop struct {
	name   string
	value  *attrs.Value
	langs  map[string]string
	fields map[string]*prop
}

func (p *prop) field(name string) *prop {
	if p.fields == nil {
		p.fields = map[string]*prop{}
	}
	f, ok := p.fields[name]
	if !ok {
		f = &prop{name: name}
		p.fields[name] = f
	}
	return f
}

// Encode serialises the XMP properties of a (keys in a known schema group)
// into a packet. It returns nil when there is nothing to write.
func Encode(a *attrs.Attrs) ([]byte, error) {
	schemas := map[string]*prop{}
	for _, e := range a.Entries() {
		i := strings.IndexByte(e.Key, ':')
		if i <= 0 || !IsGroup(e.Key[:i]) {
			continue
		}
		group, rest := e.Key[:i], e.Key[i+1:]
		if _, ok := e.Value.AsGroup(); ok {
			continue
		}
		root, ok := schemas[group]
		if !ok {
			root = &prop{}
			schemas[group] = root
		}
		lang := ""
		if j := strings.IndexByte(rest, '['); j > 0 && strings.HasSuffix(rest, "]") {
			rest, lang = rest[:j], rest[j+1:len(rest)-1]
		}
		p := root
		for _, part := range strings.Split(rest, ".") {
			p = p.field(part)
		}
		v := e.Value
		if lang != "" {
			if p.langs == nil {
				p.langs = map[string]string{}
			}
			p.langs[lang] = text(v)
			continue
		}
		p.value = &v
	}
	if len(schemas) == 0 {
		return nil, nil
	}

	groups := make([]string, 0, len(schemas))
	for g := range schemas {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return byGroup[groups[i]].Prefix < byGroup[groups[j]].Prefix })

	var b bytes.Buffer
	b.WriteString("<?xpacket begin=\"\ufeff\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	b.WriteString("<x:xmpmeta xmlns:x=\"" + NsX + "\">\n")
	b.WriteString(" <rdf:RDF xmlns:rdf=\"" + NsRDF + "\">\n")
	b.WriteString("  <rdf:Description rdf:about=\"\"")
	for _, g := range groups {
		ns := byGroup[g]
		fmt.Fprintf(&b, "\n    xmlns:%s=\"%s\"", ns.Prefix, ns.URI)
	}
	b.WriteString(">\n")
	for _, g := range groups {
		ns := byGroup[g]
		for _, p := range sorted(schemas[g].fields) {
			writeProp(&b, ns.Prefix, g+":"+p.name, p, 3)
		}
	}
	b.WriteString("  </rdf:Description>\n")
	b.WriteString(" </rdf:RDF>\n")
	b.WriteString("</x:xmpmeta>\n")
	b.WriteString("<?xpacket end=\"w\"?>")
	return b.Bytes(), nil
}

func sorted(m map[string]*prop) []*prop {
	out := make([]*prop, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// writeProp emits p as <prefix:name>. key is the attribute key used for the
// container lookup.
func writeProp(b *bytes.Buffer, prefix, key string, p *prop, depth int) {
	tag := prefix + ":" + p.name
	pad := strings.Repeat(" ", depth)
	kind := ContainerOf(key)

	if p.value == nil && len(p.langs) == 0 {
		if len(p.fields) == 0 {
			return
		}
		fmt.Fprintf(b, "%s<%s rdf:parseType=\"Resource\">\n", pad, tag)
		for _, f := range sorted(p.fields) {
			writeProp(b, prefix, key+"."+f.name, f, depth+1)
		}
		fmt.Fprintf(b, "%s</%s>\n", pad, tag)
		return
	}

	if p.value != nil {
		if items, ok := p.value.AsList(); ok {
			container := "rdf:Bag"
			switch kind {
			case Seq:
				container = "rdf:Seq"
			case Alt:
				container = "rdf:Alt"
			}
			fmt.Fprintf(b, "%s<%s>\n%s <%s>\n", pad, tag, pad, container)
			for i, it := range items {
				s := text(it)
				if kind == Alt {
					if i > 0 {
						break
					}
					fmt.Fprintf(b, "%s  <rdf:li xml:lang=\"x-default\">%s</rdf:li>\n", pad, escape(s))
					continue
				}
				fmt.Fprintf(b, "%s  <rdf:li>%s</rdf:li>\n", pad, escape(s))
			}
			fmt.Fprintf(b, "%s </%s>\n%s</%s>\n", pad, container, pad, tag)
			return
		}
	}

	if kind == Alt || len(p.langs) > 0 {
		fmt.Fprintf(b, "%s<%s>\n%s <rdf:Alt>\n", pad, tag, pad)
		if p.value != nil {
			fmt.Fprintf(b, "%s  <rdf:li xml:lang=\"x-default\">%s</rdf:li>\n", pad, escape(text(*p.value)))
		}
		langs := make([]string, 0, len(p.langs))
		for l := range p.langs {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		for _, l := range langs {
			fmt.Fprintf(b, "%s  <rdf:li xml:lang=\"%s\">%s</rdf:li>\n", pad, escape(l), escape(p.langs[l]))
		}
		fmt.Fprintf(b, "%s </rdf:Alt>\n%s</%s>\n", pad, pad, tag)
		return
	}

	fmt.Fprintf(b, "%s<%s>%s</%s>\n", pad, tag, escape(text(*p.value)), tag)
}

// text renders a value as XMP text.
func text(v attrs.Value) string {
	switch v.Kind() {
	case attrs.KindStr:
		s, _ := v.AsStr()
		return s
	case attrs.KindBool:
		if b, _ := v.AsBool(); b {
			return "True"
		}
		return "False"
	case attrs.KindDateTime:
		t, _ := v.AsDateTime()
		return t.Format(time.RFC3339)
	}
	return v.String()
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
