// Package audio reads metadata from audio files: MP3 (ID3v1/v2 and the
// MPEG frame header), FLAC, OGG Vorbis/Opus, M4A, WAV, AIFF, DSF, DFF and
// Standard MIDI Files. All audio formats are read-only.
package audio

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	log "github.com/dsoprea/go-logging"
	"golang.org/x/text/encoding/charmap"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var audioLogger = log.NewLogger("audio")

// Format names handled by this package.
const (
	MP3  = "MP3"
	FLAC = "FLAC"
	OGG  = "OGG"
	M4A  = "M4A"
	WAV  = "WAV"
	AIFF = "AIFF"
	DSF  = "DSF"
	DFF  = "DFF"
	MIDI = "MIDI"
)

// Handler reads one audio format.
type Handler struct {
	format string
}

// New returns a Handler for the given format name.
func New(format string) *Handler { return &Handler{format: format} }

func (h *Handler) Info() core.FormatInfo {
	return formatInfo[h.format]
}

func (h *Handler) CanParse(prefix []byte) bool {
	if s, ok := sniffers[h.format]; ok {
		return s(prefix)
	}
	return false
}

// Parse reads the stream from the start.
func (h *Handler) Parse(r io.ReadSeeker) (*core.Metadata, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &core.IOError{Err: err}
	}
	m := core.NewMetadata(h.format)
	switch h.format {
	case MP3:
		return parseMP3(r, m)
	case FLAC:
		return parseFLAC(r, m)
	case OGG:
		return parseOGG(r, m)
	case M4A:
		return parseM4A(r, m)
	case WAV:
		return parseWAV(r, m)
	case AIFF:
		return parseAIFF(r, m)
	case DSF:
		return parseDSF(r, m)
	case DFF:
		return parseDFF(r, m)
	case MIDI:
		return parseMIDI(r, m)
	}
	return nil, &core.UnsupportedFormatError{Name: h.format}
}

// Formats lists the formats of this package in dispatch order.
func Formats() []string {
	return []string{MP3, FLAC, WAV, AIFF, OGG, DSF, DFF, MIDI, M4A}
}

var sniffers = map[string]func([]byte) bool{
	MP3:  sniffMP3,
	FLAC: func(b []byte) bool { return core.HasPrefixAt(b, 0, "fLaC") },
	OGG:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "OggS") },
	WAV: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, "RIFF") && core.HasPrefixAt(b, 8, "WAVE")
	},
	AIFF: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, "FORM") && (core.HasPrefixAt(b, 8, "AIFF") || core.HasPrefixAt(b, 8, "AIFC"))
	},
	DSF:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "DSD \x1C\x00\x00\x00") },
	DFF:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "FRM8") && core.HasPrefixAt(b, 12, "DSD ") },
	MIDI: func(b []byte) bool { return core.HasPrefixAt(b, 0, "MThd\x00\x00\x00\x06") },
	M4A:  sniffM4A,
}

var formatInfo = map[string]core.FormatInfo{
	MP3: {Name: MP3, Extensions: []string{"mp3", "mp2"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/mpeg"},
		Notes: "ID3v1 and ID3v2 tags, MPEG audio frame header."},
	FLAC: {Name: FLAC, Extensions: []string{"flac"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/flac"},
		Notes: "STREAMINFO, Vorbis comments and pictures."},
	OGG: {Name: OGG, Extensions: []string{"ogg", "oga", "opus", "spx"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/ogg"},
		Notes: "Vorbis or Opus identification header and comments."},
	M4A: {Name: M4A, Extensions: []string{"m4a", "m4b", "m4p"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/mp4"},
		Notes: "iTunes metadata atoms."},
	WAV: {Name: WAV, Extensions: []string{"wav", "wave", "bwf"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/wav"},
		Notes: "fmt, fact, bext, smpl, LIST INFO, iXML, XMP and id3 chunks."},
	AIFF: {Name: AIFF, Extensions: []string{"aif", "aiff", "aifc"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/aiff"},
		Notes: "COMM, text chunks and embedded ID3."},
	DSF: {Name: DSF, Extensions: []string{"dsf"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/x-dsf"},
		Notes: "DSD stream format header and trailing ID3v2 tag."},
	DFF: {Name: DFF, Extensions: []string{"dff"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/x-dff"},
		Notes: "DSDIFF property chunks."},
	MIDI: {Name: MIDI, Extensions: []string{"mid", "midi", "smf", "kar"}, MediaType: core.MediaAudio, MIMETypes: []string{"audio/midi"},
		Notes: "Header, tempo, time and key signatures, text events."},
}

// sniffM4A accepts an ISOBMFF ftyp whose major brand is an audio brand.
// Video brands are left to the video package.
func sniffM4A(b []byte) bool {
	if !core.HasPrefixAt(b, 4, "ftyp") || len(b) < 12 {
		return false
	}
	switch string(b[8:12]) {
	case "M4A ", "M4B ", "M4P ", "F4A ", "F4B ":
		return true
	}
	return false
}

// pictureTypes names the APIC / FLAC PICTURE types.
var pictureTypes = []string{
	"Other", "32x32 PNG Icon", "Other Icon", "Front Cover", "Back Cover",
	"Leaflet", "Media", "Lead Artist", "Artist", "Conductor", "Band",
	"Composer", "Lyricist", "Recording Studio or Location", "Recording Session",
	"Performance", "Capture from Movie or Video", "Bright(ly) Colored Fish",
	"Illustration", "Band Logo", "Publisher Logo",
}

func pictureType(t uint32) string {
	if int(t) < len(pictureTypes) {
		return pictureTypes[t]
	}
	return fmt.Sprintf("Unknown (%d)", t)
}

// setStream records the common stream properties. Zero values are skipped.
func setStream(m *core.Metadata, rate, channels, bits uint32) {
	if rate != 0 {
		m.Attrs.Set("Audio:SampleRate", attrs.UInt(rate))
	}
	if channels != 0 {
		m.Attrs.Set("Audio:Channels", attrs.UInt(channels))
	}
	if bits != 0 {
		m.Attrs.Set("Audio:BitsPerSample", attrs.UInt(bits))
	}
}

// setDuration records a duration in seconds.
func setDuration(m *core.Metadata, seconds float64) {
	if seconds > 0 {
		m.Attrs.Set("Audio:Duration", attrs.Double(seconds))
	}
}

// text decodes a NUL-padded string: UTF-8, or ISO-8859-1 when the bytes
// are not valid UTF-8.
func text(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	if utf8.Valid(b) {
		return strings.TrimSpace(string(b))
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.TrimSpace(string(b))
	}
	return strings.TrimSpace(string(s))
}

func setText(m *core.Metadata, key string, b []byte) {
	if s := text(b); s != "" {
		m.Attrs.Set(key, attrs.Str(s))
	}
}
