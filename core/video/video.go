// Package video reads metadata from video containers: MP4 and QuickTime
// MOV, Matroska and WebM, AVI, ASF (WMV/WMA), FLV and RealMedia. All video
// formats are read-only.
package video

import (
	"fmt"
	"io"
	"strings"

	log "github.com/dsoprea/go-logging"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var videoLogger = log.NewLogger("video")

// Format names handled by this package. WebM, WMV and WMA are reported in
// Metadata.Format by the MKV and ASF parsers once the content is known.
const (
	MP4  = "MP4"
	MOV  = "MOV"
	MKV  = "MKV"
	WebM = "WebM"
	AVI  = "AVI"
	ASF  = "ASF"
	WMV  = "WMV"
	WMA  = "WMA"
	FLV  = "FLV"
	RM   = "RM"
)

// Handler reads one video format.
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
	case MP4, MOV:
		return parseMP4(r, m)
	case MKV:
		return parseMKV(r, m)
	case AVI:
		return parseAVI(r, m)
	case ASF:
		return parseASF(r, m)
	case FLV:
		return parseFLV(r, m)
	case RM:
		return parseRM(r, m)
	}
	return nil, &core.UnsupportedFormatError{Name: h.format}
}

// Formats lists the formats of this package in dispatch order.
func Formats() []string {
	return []string{MOV, MP4, AVI, ASF, FLV, RM, MKV}
}

var sniffers = map[string]func([]byte) bool{
	MOV: sniffMOV,
	MP4: sniffMP4,
	MKV: func(b []byte) bool { return core.HasPrefixAt(b, 0, "\x1A\x45\xDF\xA3") },
	AVI: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, "RIFF") && core.HasPrefixAt(b, 8, "AVI ")
	},
	ASF: func(b []byte) bool { return core.HasPrefixAt(b, 0, string(guidHeader[:])) },
	FLV: func(b []byte) bool { return core.HasPrefixAt(b, 0, "FLV\x01") },
	RM:  func(b []byte) bool { return core.HasPrefixAt(b, 0, ".RMF") },
}

var formatInfo = map[string]core.FormatInfo{
	MP4: {Name: MP4, Extensions: []string{"mp4", "m4v", "3gp", "3g2"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/mp4"},
		Notes: "ISO base media atoms: ftyp, mvhd, tracks, iTunes ilst, XMP uuid box."},
	MOV: {Name: MOV, Extensions: []string{"mov", "qt"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/quicktime"},
		Notes: "QuickTime atoms, shared with the MP4 reader."},
	MKV: {Name: MKV, Extensions: []string{"mkv", "mka", "mks", "webm"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/x-matroska", "video/webm"},
		Notes: "EBML header, segment Info, Tracks and Tags. DocType webm reports WebM."},
	AVI: {Name: AVI, Extensions: []string{"avi"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/x-msvideo"},
		Notes: "RIFF AVI: avih, stream headers and formats, LIST INFO, IDIT, XMP."},
	ASF: {Name: ASF, Extensions: []string{"asf", "wmv", "wma"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/x-ms-asf", "video/x-ms-wmv", "audio/x-ms-wma"},
		Notes: "ASF header objects. Reports WMV when a video stream is present, WMA otherwise."},
	FLV: {Name: FLV, Extensions: []string{"flv", "f4v"}, MediaType: core.MediaVideo, MIMETypes: []string{"video/x-flv"},
		Notes: "FLV header, onMetaData AMF0 script tag, first audio and video tag."},
	RM: {Name: RM, Extensions: []string{"rm", "rmvb", "ra"}, MediaType: core.MediaVideo, MIMETypes: []string{"application/vnd.rn-realmedia"},
		Notes: "RealMedia PROP, MDPR and CONT headers."},
}

// Brands that other parsers own: HEIF images and the ISOBMFF audio files.
var foreignBrands = map[string]bool{
	"heic": true, "heix": true, "hevc": true, "hevx": true, "mif1": true, "msf1": true,
	"avif": true, "avis": true, "crx ": true,
	"M4A ": true, "M4B ": true, "M4P ": true, "F4A ": true, "F4B ": true,
}

func sniffMP4(b []byte) bool {
	return core.HasPrefixAt(b, 4, "ftyp") && len(b) >= 12 && !foreignBrands[string(b[8:12])]
}

// sniffMOV accepts the "qt  " brand and QuickTime files that start without
// an ftyp atom.
func sniffMOV(b []byte) bool {
	if core.HasPrefixAt(b, 4, "ftyp") {
		return core.HasPrefixAt(b, 8, "qt  ")
	}
	for _, a := range []string{"moov", "mdat", "wide", "free", "skip", "pnot"} {
		if core.HasPrefixAt(b, 4, a) {
			return true
		}
	}
	return false
}

// setFrame records the common picture properties. Zero values are skipped.
func setFrame(m *core.Metadata, width, height uint32) {
	if width != 0 && height != 0 {
		m.Attrs.SetIfAbsent("Video:Width", attrs.UInt(width))
		m.Attrs.SetIfAbsent("Video:Height", attrs.UInt(height))
	}
}

// setDuration records the container duration in seconds.
func setDuration(m *core.Metadata, seconds float64) {
	if seconds > 0 {
		m.Attrs.Set("Video:Duration", attrs.Double(seconds))
	}
}

func setFrameRate(m *core.Metadata, fps float64) {
	if fps > 0 {
		m.Attrs.SetIfAbsent("Video:FrameRate", attrs.Double(fps))
	}
}

func setAudio(m *core.Metadata, rate, channels, bits uint32) {
	if rate != 0 {
		m.Attrs.SetIfAbsent("Audio:SampleRate", attrs.UInt(rate))
	}
	if channels != 0 {
		m.Attrs.SetIfAbsent("Audio:Channels", attrs.UInt(channels))
	}
	if bits != 0 {
		m.Attrs.SetIfAbsent("Audio:BitsPerSample", attrs.UInt(bits))
	}
}

// fourCC renders a codec four-cc, or its hex value when it is not printable.
func fourCC(b []byte) string {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return fmt.Sprintf("0x%X", b)
		}
	}
	return strings.TrimRight(string(b), " \x00")
}

func setStr(m *core.Metadata, key, v string) {
	if v = strings.TrimSpace(strings.TrimRight(v, "\x00")); v != "" {
		m.Attrs.Set(key, attrs.Str(v))
	}
}
