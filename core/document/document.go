// Package document reads metadata from document formats: PDF, Adobe
// Illustrator, EPS/PostScript, Office Open XML packages (DOCX, XLSX,
// PPTX), OpenDocument and EPUB. All document formats are read-only.
package document

import (
	"io"
	"strconv"
	"strings"
	"time"

	log "github.com/dsoprea/go-logging"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var documentLogger = log.NewLogger("document")

// Format names handled by this package. ODS, ODP and the AI/PDF switch are
// reported in Metadata.Format once the content is known.
const (
	PDF  = "PDF"
	AI   = "AI"
	EPS  = "EPS"
	DOCX = "DOCX"
	XLSX = "XLSX"
	PPTX = "PPTX"
	ODT  = "ODT"
	ODS  = "ODS"
	ODP  = "ODP"
	EPUB = "EPUB"
)

// Handler reads one document format.
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
	case PDF, AI:
		data, err := core.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if core.HasPrefixAt(data, 0, "%!PS") || core.HasPrefixAt(data, 0, dosEPSMagic) {
			return parseEPS(data, m)
		}
		return parsePDF(data, m)
	case EPS:
		data, err := core.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return parseEPS(data, m)
	case DOCX, XLSX, PPTX, ODT, EPUB:
		return parsePackage(r, m)
	}
	return nil, &core.UnsupportedFormatError{Name: h.format}
}

// Formats lists the formats of this package in dispatch order. The ZIP
// based formats share one sniffer; the package parser names the result.
func Formats() []string {
	return []string{AI, EPS, PDF, DOCX, XLSX, PPTX, ODT, EPUB}
}

const dosEPSMagic = "\xC5\xD0\xD3\xC6"

func sniffZip(b []byte) bool { return core.HasPrefixAt(b, 0, "PK\x03\x04") }

var sniffers = map[string]func([]byte) bool{
	AI: func(b []byte) bool {
		return (core.HasPrefixAt(b, 0, "%PDF") || core.HasPrefixAt(b, 0, "%!PS")) &&
			strings.Contains(string(b), "Illustrator")
	},
	EPS: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, "%!PS") || core.HasPrefixAt(b, 0, dosEPSMagic)
	},
	PDF:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "%PDF-") },
	DOCX: sniffZip,
	XLSX: sniffZip,
	PPTX: sniffZip,
	ODT:  sniffZip,
	EPUB: sniffZip,
}

const packageNotes = "ZIP package: the reported format follows the package content."

var formatInfo = map[string]core.FormatInfo{
	PDF: {Name: PDF, Extensions: []string{"pdf"}, MediaType: core.MediaDocument, MIMETypes: []string{"application/pdf"},
		Notes: "Trailer Info dictionary, XMP metadata stream, page count."},
	AI: {Name: AI, Extensions: []string{"ai", "ait"}, MediaType: core.MediaDocument, MIMETypes: []string{"application/postscript", "application/pdf"},
		Notes: "PDF or EPS based Illustrator artwork: creator version, artboard size, XMP."},
	EPS: {Name: EPS, Extensions: []string{"eps", "epsf", "epsi", "ps"}, MediaType: core.MediaDocument, MIMETypes: []string{"application/postscript"},
		Notes: "DSC header comments, DOS EPS preview, Photoshop resources, XMP."},
	DOCX: {Name: DOCX, Extensions: []string{"docx", "docm", "dotx"}, MediaType: core.MediaDocument,
		MIMETypes: []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, Notes: packageNotes},
	XLSX: {Name: XLSX, Extensions: []string{"xlsx", "xlsm"}, MediaType: core.MediaDocument,
		MIMETypes: []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, Notes: packageNotes},
	PPTX: {Name: PPTX, Extensions: []string{"pptx", "pptm"}, MediaType: core.MediaDocument,
		MIMETypes: []string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"}, Notes: packageNotes},
	ODT: {Name: ODT, Extensions: []string{"odt", "ods", "odp"}, MediaType: core.MediaDocument,
		MIMETypes: []string{"application/vnd.oasis.opendocument.text"}, Notes: packageNotes},
	EPUB: {Name: EPUB, Extensions: []string{"epub"}, MediaType: core.MediaDocument,
		MIMETypes: []string{"application/epub+zip"}, Notes: packageNotes},
}

// setText stores a trimmed, non-empty string.
func setText(m *core.Metadata, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		m.Attrs.Set(key, attrs.Str(v))
	}
}

// setCount stores a decimal count, or the text when it does not parse.
func setCount(m *core.Metadata, key, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if n, err := strconv.ParseUint(v, 10, 32); err == nil {
		m.Attrs.Set(key, attrs.UInt(uint32(n)))
		return
	}
	m.Attrs.Set(key, attrs.Str(v))
}

// setDate stores an ISO 8601 timestamp as a DateTime, or the text when it
// does not parse.
func setDate(m *core.Metadata, key, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			m.Attrs.Set(key, attrs.DateTime(t))
			return
		}
	}
	m.Attrs.Set(key, attrs.Str(v))
}

// setSize records a page or artboard size in points.
func setSize(m *core.Metadata, box string) bool {
	f := strings.Fields(box)
	if len(f) < 4 {
		return false
	}
	var v [4]float64
	for i := range v {
		n, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return false
		}
		v[i] = n
	}
	w, h := v[2]-v[0], v[3]-v[1]
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	m.Attrs.Set("File:ImageWidth", attrs.UInt(uint32(w+0.5)))
	m.Attrs.Set("File:ImageHeight", attrs.UInt(uint32(h+0.5)))
	return true
}
