// Package registry picks the parser for a stream by its leading bytes and
// runs it.
//
// Parsers are tried in a fixed order. Formats with a unique magic come
// first, container brands that share a box layout (CR3, HEIF, M4A, MOV,
// MP4) are ordered from most to least specific, the weak sniffers (frame
// sync MP3, TGA, PCX) sit late, and generic TIFF is last because every TIFF
// based RAW dialect shares its magic and is told apart by the TIFF parser
// after it reads IFD0.
package registry

import (
	"io"
	"os"
	"strings"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/audio"
	"github.com/ankit-chaubey/metasurgery/core/document"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/video"
)

var registryLogger = log.NewLogger("registry")

// detection is the sniffing order. ZIP packages are represented by one
// handler because the package parser names the result from its content.
var detection = []core.Parser{
	image.New(image.JPEG),
	image.New(image.PNG),
	image.New(image.GIF),
	image.New(image.BMP),
	image.New(image.ICO),
	image.New(image.WebP),
	image.New(image.RAF),
	image.New(image.EXR),
	image.New(image.HDR),
	image.New(image.CR3),
	image.New(image.HEIC),
	image.New(image.AVIF),
	audio.New(audio.M4A),
	video.New(video.MOV),
	video.New(video.MP4),
	audio.New(audio.FLAC),
	image.New(image.SVG),
	document.New(document.AI),
	document.New(document.EPS),
	document.New(document.PDF),
	image.New(image.PNM),
	image.New(image.JXL),
	image.New(image.JP2),
	video.New(video.AVI),
	audio.New(audio.WAV),
	audio.New(audio.AIFF),
	audio.New(audio.OGG),
	audio.New(audio.DSF),
	audio.New(audio.DFF),
	audio.New(audio.MIDI),
	video.New(video.ASF),
	image.New(image.PSD),
	image.New(image.DPX),
	video.New(video.FLV),
	video.New(video.RM),
	video.New(video.MKV),
	document.New(document.DOCX),
	audio.New(audio.MP3),
	image.New(image.TGA),
	image.New(image.PCX),
	image.New(image.SGI),
	image.New(image.CRW),
	image.New(image.X3F),
	image.New(image.MRW),
	image.New(image.CR2),
	image.New(image.ORF),
	image.New(image.RW2),
	image.New(image.TIFF),
}

// named holds every handler, including the ones detection reaches through
// another handler (TIFF RAW dialects, DNG, the ZIP package kinds).
var named = func() []core.Parser {
	var out []core.Parser
	for _, f := range image.Formats() {
		out = append(out, image.New(f))
	}
	for _, f := range video.Formats() {
		out = append(out, video.New(f))
	}
	for _, f := range audio.Formats() {
		out = append(out, audio.New(f))
	}
	for _, f := range document.Formats() {
		out = append(out, document.New(f))
	}
	return out
}()

// Parsers returns every handler, grouped by media type.
func Parsers() []core.Parser {
	return append([]core.Parser(nil), named...)
}

// Formats describes every handler.
func Formats() []core.FormatInfo {
	out := make([]core.FormatInfo, 0, len(named))
	for _, p := range named {
		out = append(out, p.Info())
	}
	return out
}

// Detect returns the first parser that claims prefix.
func Detect(prefix []byte) (core.Parser, bool) {
	for _, p := range detection {
		if p.CanParse(prefix) {
			return p, true
		}
	}
	return nil, false
}

// ByName finds a handler by format name, ignoring case.
func ByName(name string) (core.Parser, bool) {
	for _, p := range named {
		if strings.EqualFold(p.Info().Name, name) {
			return p, true
		}
	}
	return nil, false
}

// ByExtension finds a handler by file extension, with or without the dot.
func ByExtension(ext string) (core.Parser, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, p := range named {
		for _, e := range p.Info().Extensions {
			if e == ext {
				return p, true
			}
		}
	}
	return nil, false
}

// Parse sniffs r and runs the first parser that claims it. A parser that
// returns core.ErrUnknownFormat passes the stream on to the next claimant.
// The returned attributes are clean, so a writer can tell edits apart.
func Parse(r io.ReadSeeker) (*core.Metadata, error) {
	return parse(r, nil)
}

// ParseFile opens path and parses it. A handler registered for the file
// extension is tried first when it also claims the leading bytes.
func ParseFile(path string) (*core.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.IOError{Err: err}
	}
	defer f.Close()

	hint, _ := ByExtension(core.Ext(path))
	m, err := parse(f, hint)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	m.FilePath = path
	return m, nil
}

func parse(r io.ReadSeeker, hint core.Parser) (*core.Metadata, error) {
	prefix, err := core.ReadPrefix(r, core.PrefixSize)
	if err != nil {
		return nil, err
	}
	candidates := detection
	if hint != nil && hint.CanParse(prefix) {
		candidates = append([]core.Parser{hint}, detection...)
	}

	claimed := false
	tried := map[string]bool{}
	for _, p := range candidates {
		name := p.Info().Name
		if tried[name] || !p.CanParse(prefix) {
			continue
		}
		tried[name] = true
		claimed = true
		m, err := p.Parse(r)
		if errors.Is(err, core.ErrUnknownFormat) {
			registryLogger.Debugf(nil, "%s declined the stream", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		m.Attrs.ClearDirty()
		for _, pg := range m.Pages {
			pg.ClearDirty()
		}
		return m, nil
	}
	if claimed {
		return nil, core.ErrUnknownFormat
	}
	return nil, &core.UnsupportedFormatError{Name: describe(prefix)}
}

// describe names an unrecognised prefix by its first bytes.
func describe(prefix []byte) string {
	n := min(len(prefix), 4)
	var b strings.Builder
	for _, c := range prefix[:n] {
		if c >= 0x20 && c < 0x7F {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	if b.Len() == 0 {
		return "empty stream"
	}
	return "magic " + b.String()
}
