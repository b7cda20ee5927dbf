package image

import (
	"fmt"
	"io"
	"strings"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/makernote"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

var tiffFamily = map[string]bool{
	TIFF: true, DNG: true, CR2: true, NEF: true, NRW: true, ARW: true, SRF: true,
	SR2: true, ORF: true, RW2: true, PEF: true, SRW: true, DCR: true, KDC: true,
	ERF: true, MEF: true, MOS: true, IIQ: true, FFF: true, Raw3FR: true, RWL: true,
}

func isTIFFFamily(format string) bool { return tiffFamily[format] }

func isTIFF(b []byte) bool { return ifd.IsTIFF(b) }

func sniffORF(b []byte) bool {
	return core.HasPrefixAt(b, 0, "IIRO") || core.HasPrefixAt(b, 0, "IIRS") || core.HasPrefixAt(b, 0, "MMOR")
}

// vendorMagics are the non-standard header magics RAW files use in place
// of 42.
var vendorMagics = []uint16{ifd.MagicPanasonicRW2, ifd.MagicOlympusORF, ifd.MagicOlympusORF2}

// parseTIFF reads a TIFF or TIFF-based RAW file. The file itself is the
// EXIF block, so ExifOffset is 0.
func parseTIFF(r io.ReadSeeker, m *core.Metadata, format string) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d, err := exif.Decode(data, vendorMagics...)
	if err != nil {
		return nil, err
	}
	blocks.Merge(m, d)
	m.ExifOffset = 0
	if dialect := Classify(data, d); dialect != "" {
		m.Format = dialect
	}
	if m.Format == CR2 && len(data) >= 12 {
		m.Attrs.Set("CR2:CR2Version", attrs.Str(fmt.Sprintf("%d.%d", data[10], data[11])))
	}
	m.Attrs.Set("File:ByteOrder", attrs.Str(d.Order.String()))
	if d.BigTIFF {
		m.Attrs.Set("File:BigTIFF", attrs.Bool(true))
	}
	return m, nil
}

// Classify names the RAW dialect of a decoded TIFF file, or returns "" for
// a plain TIFF. Header magic and the CR2 marker decide first, then the
// DNGVersion tag. Dialects that differ only by camera maker are recognised
// from Make and Model when the file also looks like a camera original:
// it has a MakerNote or SubIFDs.
func Classify(data []byte, d *exif.Data) string {
	if len(data) >= 4 {
		switch d.Order.Uint16(data[2:]) {
		case ifd.MagicPanasonicRW2:
			return RW2
		case ifd.MagicOlympusORF, ifd.MagicOlympusORF2:
			return ORF
		}
	}
	if core.HasPrefixAt(data, 8, "CR\x02") {
		return CR2
	}
	if d.Attrs.Contains("DNGVersion") {
		return DNG
	}
	evidence := d.Vendor != makernote.Unknown
	if d.IFD0 != nil {
		if _, ok := d.IFD0.Find(tags.TagSubIFDs); ok {
			evidence = true
		}
	}
	if !evidence {
		return ""
	}
	mk, _ := d.Attrs.GetStr("Make")
	model, _ := d.Attrs.GetStr("Model")
	return byMaker(strings.ToLower(mk), strings.ToUpper(model))
}

func byMaker(mk, model string) string {
	has := func(s string) bool { return strings.Contains(mk, s) }
	switch {
	case has("nikon"):
		if strings.Contains(model, "COOLPIX") {
			return NRW
		}
		return NEF
	case has("sony"):
		switch {
		case strings.HasPrefix(model, "DSC-F828"):
			return SRF
		case strings.HasPrefix(model, "DSC-R1"):
			return SR2
		}
		return ARW
	case has("pentax"), has("ricoh"):
		return PEF
	case has("samsung"):
		return SRW
	case has("kodak"):
		if strings.Contains(model, "EASYSHARE") || strings.HasPrefix(model, "KODAK DC") {
			return KDC
		}
		return DCR
	case has("epson"):
		return ERF
	case has("mamiya"):
		return MEF
	case has("leaf"):
		return MOS
	case has("phase one"):
		return IIQ
	case has("hasselblad"), has("imacon"):
		if has("imacon") || strings.Contains(model, "IMACON") {
			return FFF
		}
		return Raw3FR
	case has("leica"):
		return RWL
	case has("olympus"):
		return ORF
	}
	return ""
}
