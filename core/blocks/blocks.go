// Package blocks routes the metadata blocks that containers embed (EXIF,
// XMP, IPTC, Photoshop image resources and ICC profiles) into a
// core.Metadata. Every container parser funnels its payloads through here,
// so precedence is the same everywhere: the first block to define a key
// wins.
package blocks

import (
	"bytes"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/icc"
	"github.com/ankit-chaubey/metasurgery/core/iptc"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

var blocksLogger = log.NewLogger("blocks")

// ExifHeader precedes the TIFF structure in JPEG APP1 and, in some
// writers' output, WebP and PNG chunks.
const ExifHeader = "Exif\x00\x00"

// TrimExifHeader drops a leading ExifHeader and reports how many bytes it
// skipped.
func TrimExifHeader(b []byte) ([]byte, int) {
	if bytes.HasPrefix(b, []byte(ExifHeader)) {
		return b[len(ExifHeader):], len(ExifHeader)
	}
	return b, 0
}

// EXIF decodes a TIFF-structured block that starts at file offset off and
// merges it into m. It reports whether the block was readable.
func EXIF(m *core.Metadata, tiff []byte, off int64) bool {
	d, err := exif.Decode(tiff)
	if err != nil {
		m.Warn(errors.Wrap(err, "EXIF"))
		return false
	}
	Merge(m, d)
	if m.ExifOffset < 0 {
		m.ExifOffset = off
	}
	return true
}

// Merge copies an EXIF walk into m, then routes the XMP, IPTC, Photoshop
// and ICC blocks that its IFD0 carried.
func Merge(m *core.Metadata, d *exif.Data) {
	m.Attrs.Merge(d.Attrs, false)
	if m.Thumbnail == nil {
		m.Thumbnail = d.Thumbnail
	}
	if len(d.Preview) > len(m.Preview) {
		m.Preview = d.Preview
	}
	m.Pages = append(m.Pages, d.Pages...)
	m.Warn(d.Warnings)
	if len(d.XMP) > 0 {
		XMP(m, d.XMP)
	}
	if len(d.IPTC) > 0 {
		IPTC(m, d.IPTC)
	}
	if len(d.Photoshop) > 0 {
		IRB(m, d.Photoshop)
	}
	if len(d.ICC) > 0 {
		ICC(m, d.ICC)
	}
}

// XMP decodes a packet into m and keeps the first packet seen as m.XMP.
func XMP(m *core.Metadata, packet []byte) {
	packet = xmp.Trim(packet)
	if len(packet) == 0 {
		return
	}
	if m.XMP == "" {
		m.XMP = string(packet)
	}
	a, err := xmp.Decode(packet)
	if err != nil {
		m.Warn(errors.Wrap(err, "XMP"))
		return
	}
	m.Attrs.Merge(a, false)
}

// IPTC decodes a bare IIM stream into m.
func IPTC(m *core.Metadata, iim []byte) {
	a, err := iptc.Decode(iim)
	if err != nil {
		m.Warn(errors.Wrap(err, "IPTC"))
	}
	m.Attrs.Merge(a, false)
}

// IRB decodes a Photoshop image-resource block and routes the EXIF, XMP
// and ICC resources it holds.
func IRB(m *core.Metadata, irb []byte) {
	b := iptc.DecodeBlock(irb)
	m.Warn(b.Warnings)
	m.Attrs.Merge(b.Attrs, false)
	if len(b.EXIF) > 0 {
		EXIF(m, b.EXIF, -1)
	}
	if len(b.XMP) > 0 {
		XMP(m, b.XMP)
	}
	if len(b.ICC) > 0 {
		ICC(m, b.ICC)
	}
	if m.Thumbnail == nil && len(b.Thumbnail) > 0 {
		m.Thumbnail = b.Thumbnail
	}
}

// ICC stores a complete profile in m and decodes its descriptive tags.
func ICC(m *core.Metadata, profile []byte) {
	if m.ICC != nil {
		blocksLogger.Debugf(nil, "second ICC profile (%d bytes) ignored", len(profile))
		return
	}
	m.ICC = profile
	a, err := icc.Decode(profile)
	if err != nil {
		m.Warn(errors.Wrap(err, "ICC"))
	}
	m.Attrs.Merge(a, false)
}
