// Package tags holds the static tag tables for EXIF directories and the
// vendor MakerNote dialects, plus the display interpreter built on them.
//
// Tables are package-level maps filled at init and never modified after.
package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ankit-chaubey/metasurgery/core/ifd"
)

// Context selects which numbering a tag ID belongs to.
type Context int

const (
	IFD0 Context = iota
	ExifIFD
	GPSIFD
	InteropIFD
)

var contextNames = [...]string{"IFD0", "ExifIFD", "GPS", "InteropIFD"}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "Context(" + strconv.Itoa(int(c)) + ")"
}

// Values maps a raw integer to its description.
type Values map[int64]string

// Def describes one tag.
type Def struct {
	Name string
	// Format is the type written by the encoder. Zero means read-only.
	Format ifd.Format
	// Count is the fixed element count, or 0 when variable.
	Count int
	// Structural tags describe file layout (pointers, strip offsets) and
	// never appear as attributes.
	Structural bool
	Values     Values
}

// Writable reports whether the encoder knows how to emit the tag.
func (d Def) Writable() bool { return d.Format != 0 && !d.Structural }

// Describe returns the enum text for v, or the number when unknown.
func (vs Values) Describe(v int64) string {
	if s, ok := vs[v]; ok {
		return s
	}
	return strconv.FormatInt(v, 10)
}

// Table maps tag IDs to definitions.
type Table map[uint16]Def

// Field is a position inside a binary-array tag. Format overrides the
// table's element format for this position.
type Field struct {
	Name   string
	Format ifd.Format
	Values Values
}

// BinaryTable decodes vendor tags whose payload is a flat array of
// fixed-width scalars. Keys are element indexes in units of Format.
type BinaryTable struct {
	Name   string
	Format ifd.Format
	Fields map[uint16]Field
}

// Ref identifies a standard tag by context and ID.
type Ref struct {
	Context Context
	Tag     uint16
	Def     Def
}

var (
	standard = map[Context]Table{
		IFD0:       ifd0Tags,
		ExifIFD:    exifTags,
		GPSIFD:     gpsTags,
		InteropIFD: interopTags,
	}

	// byName indexes every standard tag by name. The first context in
	// IFD0, ExifIFD, GPS, Interop order wins.
	byName = map[string]Ref{}
)

func init() {
	for _, ctx := range []Context{IFD0, ExifIFD, GPSIFD, InteropIFD} {
		for id, d := range standard[ctx] {
			if _, dup := byName[d.Name]; !dup {
				byName[d.Name] = Ref{Context: ctx, Tag: id, Def: d}
			}
		}
	}
}

// Lookup returns the definition of tag in ctx.
func Lookup(ctx Context, tag uint16) (Def, bool) {
	d, ok := standard[ctx][tag]
	return d, ok
}

// Name returns the canonical name of tag, or a synthetic "Tag0xNNNN" name
// for tags the table does not know.
func Name(ctx Context, tag uint16) string {
	if d, ok := Lookup(ctx, tag); ok {
		return d.Name
	}
	return UnknownName(tag)
}

// UnknownName is the name given to tags absent from every table.
func UnknownName(tag uint16) string {
	return fmt.Sprintf("Tag0x%04X", tag)
}

// ParseUnknownName reverses UnknownName.
func ParseUnknownName(name string) (uint16, bool) {
	if !strings.HasPrefix(name, "Tag0x") || len(name) != 9 {
		return 0, false
	}
	v, err := strconv.ParseUint(name[5:], 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// Find resolves a standard tag by name. The "EXIF:" prefix is accepted.
func Find(name string) (Ref, bool) {
	name = strings.TrimPrefix(name, "EXIF:")
	r, ok := byName[name]
	return r, ok
}

// IsStructural reports whether tag in ctx is a pointer or layout tag.
func IsStructural(ctx Context, tag uint16) bool {
	d, ok := Lookup(ctx, tag)
	return ok && d.Structural
}

// Well-known tag IDs used by the walkers and writers.
const (
	TagNewSubfileType  uint16 = 0x00FE
	TagImageWidth      uint16 = 0x0100
	TagImageHeight     uint16 = 0x0101
	TagBitsPerSample   uint16 = 0x0102
	TagCompression     uint16 = 0x0103
	TagMake            uint16 = 0x010F
	TagModel           uint16 = 0x0110
	TagStripOffsets    uint16 = 0x0111
	TagOrientation     uint16 = 0x0112
	TagSamplesPerPixel uint16 = 0x0115
	TagRowsPerStrip    uint16 = 0x0116
	TagStripByteCounts uint16 = 0x0117
	TagSoftware        uint16 = 0x0131
	TagTileOffsets     uint16 = 0x0144
	TagTileByteCounts  uint16 = 0x0145
	TagSubIFDs         uint16 = 0x014A
	TagThumbnailOffset uint16 = 0x0201
	TagThumbnailLength uint16 = 0x0202
	TagXMP             uint16 = 0x02BC
	TagIPTC            uint16 = 0x83BB
	TagPhotoshop       uint16 = 0x8649
	TagExifIFD         uint16 = 0x8769
	TagICCProfile      uint16 = 0x8773
	TagGPSIFD          uint16 = 0x8825
	TagMakerNote       uint16 = 0x927C
	TagInteropIFD      uint16 = 0xA005
	TagDNGVersion      uint16 = 0xC612
	TagDNGPrivateData  uint16 = 0xC634
	TagCR2Slice        uint16 = 0xC640
)
