package writer

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// pngKeywords are the registered tEXt keywords. Setting "PNG:<keyword>" on
// a file without that chunk adds one.
var pngKeywords = []string{
	"Title", "Author", "Description", "Copyright", "Creation Time",
	"Software", "Disclaimer", "Warning", "Source", "Comment",
}

// WritePNG replaces the eXIf chunk and the XMP iTXt chunk of a PNG and
// places the new ones right after IHDR. Textual chunks follow their
// "PNG:<keyword>" attributes: unchanged text is copied, edited text is
// rewritten and removed keys drop their chunk.
func WritePNG(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	p, err := rebuild(m)
	if err != nil {
		return err
	}
	if p == nil {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	chunks, err := image.ReadChunks(r)
	if err != nil {
		return errors.Wrap(err, "reading PNG chunks")
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return core.Structure("png: first chunk is not IHDR")
	}

	var irb []byte
	out := []image.Chunk{chunks[0]}
	out = append(out, p.pngChunks(nil)...)
	seen := map[string]bool{}
	for _, c := range chunks[1:] {
		t, isText := decodeText(c)
		switch {
		case c.Type == "eXIf":
			continue
		case isText && t.key == xmp.PNGKeyword:
			continue
		case isText && t.profile != "":
			switch t.profile {
			case "exif", "app1", "xmp":
				continue
			case "iptc", "8bim":
				if b, err := image.DecodeRawProfile(t.value); err == nil {
					irb = append(irb, b...)
				}
				continue
			}
		case isText:
			name := t.attr()
			v, ok := m.Attrs.GetStr(name)
			switch {
			case !ok:
				continue
			case seen[name] || v == t.value:
			default:
				c = textChunk(t.key, t.lang, v)
			}
			seen[name] = true
		case c.Type == "IDAT" && !seen["IDAT"]:
			seen["IDAT"] = true
			out = append(out, newText(m, seen)...)
		}
		out = append(out, c)
	}
	if res := p.photoshop(irb); res != nil {
		out = append(out[:1], append([]image.Chunk{iptcProfile(res)}, out[1:]...)...)
	}
	return emitPNG(w, out)
}

// pngChunks returns the eXIf and XMP iTXt chunks of p.
func (p *payload) pngChunks(dst []image.Chunk) []image.Chunk {
	if p.exif != nil {
		dst = append(dst, image.Chunk{Type: "eXIf", Data: p.exif})
	}
	if p.xmp != nil {
		// keyword, compression flag, method, empty language and translation.
		data := append([]byte(xmp.PNGKeyword), 0, 0, 0, 0, 0)
		dst = append(dst, image.Chunk{Type: "iTXt", Data: append(data, p.xmp...)})
	}
	return dst
}

// newText builds tEXt chunks for registered keywords set in m that no
// chunk of the source carried.
func newText(m *core.Metadata, seen map[string]bool) []image.Chunk {
	var out []image.Chunk
	for _, kw := range pngKeywords {
		name := "PNG:" + kw
		if seen[name] {
			continue
		}
		if v, ok := m.Attrs.GetStr(name); ok {
			out = append(out, textChunk(kw, "", v))
			seen[name] = true
		}
	}
	return out
}

// pngText is a decoded tEXt, zTXt or iTXt chunk.
type pngText struct {
	key   string
	lang  string
	value string
	// profile is the lower-cased type of an ImageMagick raw profile.
	profile string
}

// attr is the attribute key the parser stores the chunk under.
func (t pngText) attr() string {
	if t.lang != "" {
		return "PNG:" + t.key + "[" + t.lang + "]"
	}
	return "PNG:" + t.key
}

func decodeText(c image.Chunk) (pngText, bool) {
	var t pngText
	d := c.Data
	switch c.Type {
	case "tEXt":
		key, val, ok := bytes.Cut(d, []byte{0})
		if !ok {
			return t, false
		}
		t.key, t.value = image.Latin1(key), image.Latin1(val)
	case "zTXt":
		key, rest, ok := bytes.Cut(d, []byte{0})
		if !ok || len(rest) < 1 {
			return t, false
		}
		val, err := core.Inflate(rest[1:])
		if err != nil {
			return t, false
		}
		t.key, t.value = image.Latin1(key), image.Latin1(val)
	case "iTXt":
		key, rest, ok := bytes.Cut(d, []byte{0})
		if !ok || len(rest) < 2 {
			return t, false
		}
		compressed := rest[0] == 1
		lang, rest, ok := bytes.Cut(rest[2:], []byte{0})
		if !ok {
			return t, false
		}
		_, val, ok := bytes.Cut(rest, []byte{0})
		if !ok {
			return t, false
		}
		if compressed {
			var err error
			if val, err = core.Inflate(val); err != nil {
				return t, false
			}
		}
		t.key, t.lang, t.value = string(key), string(lang), string(val)
	default:
		return t, false
	}
	if kind, ok := strings.CutPrefix(t.key, "Raw profile type "); ok {
		t.profile = strings.ToLower(kind)
	}
	return t, true
}

// textChunk encodes a keyword and value as tEXt when the value is Latin-1
// and has no language, otherwise as uncompressed iTXt.
func textChunk(key, lang, val string) image.Chunk {
	if lang == "" {
		if b, err := charmap.ISO8859_1.NewEncoder().String(val); err == nil {
			k, _ := charmap.ISO8859_1.NewEncoder().String(key)
			return image.Chunk{Type: "tEXt", Data: []byte(k + "\x00" + b)}
		}
	}
	data := append([]byte(key), 0, 0, 0)
	data = append(data, lang...)
	data = append(data, 0, 0)
	return image.Chunk{Type: "iTXt", Data: append(data, val...)}
}

// emitPNG writes the signature and chunks with fresh CRCs.
func emitPNG(w io.Writer, chunks []image.Chunk) error {
	var b bytes.Buffer
	b.WriteString(image.Signature)
	for _, c := range chunks {
		if uint64(len(c.Data)) > 1<<31-1 {
			return &core.MetadataTooLargeError{Size: uint64(len(c.Data)), Limit: 1<<31 - 1}
		}
		binary.Write(&b, binary.BigEndian, uint32(len(c.Data)))
		b.WriteString(c.Type)
		b.Write(c.Data)
		binary.Write(&b, binary.BigEndian, image.ChunkCRC(c.Type, c.Data))
	}
	_, err := w.Write(b.Bytes())
	return wrapIO(err)
}
