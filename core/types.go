// Package core defines the shared types, interfaces, limits and errors of
// metasurgery. The packages under core/ build on it: byte primitives,
// the attribute container, the TIFF/EXIF engine, the block decoders, the
// per-format parsers, the writers and the registry.
package core

import (
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// Resource caps applied by every parser.
const (
	// MaxChunkSize is the largest single chunk, box or segment payload read
	// into memory.
	MaxChunkSize = 10 << 20
	// MaxDecompressedSize bounds zlib output (PNG iCCP/zTXt/iTXt).
	MaxDecompressedSize = 10 << 20
	// MaxWalkIterations bounds loops over container structures whose
	// length comes from the file.
	MaxWalkIterations = 100
	// MaxFileSize is the in-memory limit for parsers that load the whole file.
	MaxFileSize = 1 << 30
	// PrefixSize is how many leading bytes format sniffing looks at.
	PrefixSize = 32
)

// Metadata holds everything extracted from one file.
type Metadata struct {
	FilePath string
	// Format is the short format name, e.g. "JPEG", "CR2", "FLAC".
	Format string
	// Attrs holds every decoded attribute. EXIF tags use bare names
	// ("Make", "ISO"); other blocks carry a namespace ("DC:title",
	// "IPTC:Keywords", "PNG:ColorType", "File:ImageWidth"). Vendor
	// MakerNotes are groups named after the vendor.
	Attrs *attrs.Attrs
	// ExifOffset is the file position of the EXIF TIFF header, or -1.
	ExifOffset int64
	XMP        string
	Thumbnail  []byte
	Preview    []byte
	ICC        []byte
	// Pages describes additional images (multi-page TIFF, RAW sub-images).
	Pages []*attrs.Attrs
	// Warnings collects problems that were skipped during the parse.
	Warnings error
}

// NewMetadata returns an empty bundle for format.
func NewMetadata(format string) *Metadata {
	return &Metadata{Format: format, Attrs: attrs.New(), ExifOffset: -1}
}

// Warn records a non-fatal problem.
func (m *Metadata) Warn(err error) {
	if err == nil {
		return
	}
	m.Warnings = multierror.Append(m.Warnings, err)
}

// IsWritable reports whether a writer exists for the format. Animated WebP
// is read-only.
func (m *Metadata) IsWritable() bool {
	if m.Format == "WebP" {
		if anim, _ := m.Attrs.GetBool("WebP:Animation"); anim {
			return false
		}
	}
	return writableFormats[m.Format]
}

// IsCameraRaw reports whether the format is a camera RAW dialect.
func (m *Metadata) IsCameraRaw() bool {
	return rawFormats[m.Format]
}

// Summary returns a short string of key fields for quick display.
func (m *Metadata) Summary() string {
	for _, k := range []string{"Model", "Make", "DC:title", "ID3:Title", "Vorbis:TITLE"} {
		if v, ok := m.Attrs.Get(k); ok {
			return k + ": " + v.String()
		}
	}
	return m.Format
}

var writableFormats = map[string]bool{
	"JPEG": true, "PNG": true, "TIFF": true, "DNG": true, "EXR": true, "HDR": true, "WebP": true,
}

var rawFormats = map[string]bool{
	"CR2": true, "CR3": true, "CRW": true, "NEF": true, "NRW": true, "ARW": true, "SRF": true,
	"SR2": true, "ORF": true, "RW2": true, "PEF": true, "SRW": true, "DCR": true, "KDC": true,
	"ERF": true, "MEF": true, "MOS": true, "IIQ": true, "FFF": true, "3FR": true, "RWL": true,
	"X3F": true, "RAF": true, "DNG": true,
}

// IsRawFormat reports whether name is a camera RAW dialect.
func IsRawFormat(name string) bool { return rawFormats[name] }

// IsWritableFormat reports whether a writer exists for name.
func IsWritableFormat(name string) bool { return writableFormats[name] }

// StripOptions controls which parts of metadata to remove.
type StripOptions struct {
	// KeepFields lists attribute keys that should survive. Only the
	// container-rebuilding writers (JPEG, PNG, WebP) honour it.
	KeepFields []string
	// StripGPS removes GPS tags only.
	StripGPS bool
	// StripAll removes every metadata structure, ICC profiles and comments
	// included.
	StripAll bool
}

// EditOptions holds field changes for an edit operation.
type EditOptions struct {
	// Set maps attribute keys to new values. Values are strings and are
	// coerced to the kind of the existing value, or to the tag's type.
	Set map[string]string
	// Delete lists attribute keys to remove.
	Delete []string
	// DryRun applies the changes in memory only.
	DryRun bool
}

// FormatInfo describes a parser.
type FormatInfo struct {
	Name       string   // "JPEG"
	Extensions []string // ["jpg", "jpeg"]
	MediaType  string   // "image" | "audio" | "video" | "document"
	MIMETypes  []string
	Notes      string
}

// Parser reads one family of formats.
type Parser interface {
	// Info names the format and its extensions.
	Info() FormatInfo
	// CanParse looks at no more than the first PrefixSize bytes.
	CanParse(prefix []byte) bool
	// Parse reads the whole stream from the start.
	Parse(r io.ReadSeeker) (*Metadata, error)
}
