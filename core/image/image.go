// Package image reads metadata from still-image containers: JPEG, PNG, GIF,
// WebP, TIFF and its camera RAW dialects, BMP, ICO, the ISOBMFF images
// (HEIF, AVIF, CR3, JPEG XL, JPEG 2000) and a set of simpler formats.
package image

import (
	"io"

	log "github.com/dsoprea/go-logging"

	"github.com/ankit-chaubey/metasurgery/core"
)

var imageLogger = log.NewLogger("image")

// Format names handled by this package.
const (
	JPEG = "JPEG"
	PNG  = "PNG"
	GIF  = "GIF"
	BMP  = "BMP"
	ICO  = "ICO"
	WebP = "WebP"
	PSD  = "PSD"
	EXR  = "EXR"
	HDR  = "HDR"
	HEIC = "HEIC"
	AVIF = "AVIF"
	SVG  = "SVG"
	PNM  = "PNM"
	JXL  = "JXL"
	JP2  = "JP2"
	DPX  = "DPX"
	TGA  = "TGA"
	PCX  = "PCX"
	SGI  = "SGI"
	TIFF = "TIFF"

	// Camera RAW dialects.
	RAF    = "RAF"
	CR3    = "CR3"
	CRW    = "CRW"
	X3F    = "X3F"
	MRW    = "MRW"
	CR2    = "CR2"
	NEF    = "NEF"
	NRW    = "NRW"
	ARW    = "ARW"
	SRF    = "SRF"
	SR2    = "SR2"
	ORF    = "ORF"
	RW2    = "RW2"
	PEF    = "PEF"
	SRW    = "SRW"
	DCR    = "DCR"
	KDC    = "KDC"
	ERF    = "ERF"
	MEF    = "MEF"
	MOS    = "MOS"
	IIQ    = "IIQ"
	FFF    = "FFF"
	Raw3FR = "3FR"
	RWL    = "RWL"
	DNG    = "DNG"
)

// Handler reads one image format.
type Handler struct {
	format string
}

// New returns a Handler for the given format name.
func New(format string) *Handler { return &Handler{format: format} }

func (h *Handler) Info() core.FormatInfo {
	return formatInfo[h.format]
}

// CanParse sniffs the leading bytes. The RAW dialects that differ from a
// plain TIFF only by their Make never claim a prefix; the TIFF handler
// classifies them after reading IFD0.
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
	case JPEG:
		return parseJPEG(r, m)
	case PNG:
		return parsePNG(r, m)
	case GIF:
		return parseGIF(r, m)
	case BMP:
		return parseBMP(r, m)
	case ICO:
		return parseICO(r, m)
	case WebP:
		return parseWebP(r, m)
	case PSD:
		return parsePSD(r, m)
	case EXR:
		return parseEXR(r, m)
	case HDR:
		return parseHDR(r, m)
	case HEIC, AVIF:
		return parseHEIF(r, m)
	case CR3:
		return parseCR3(r, m)
	case SVG:
		return parseSVG(r, m)
	case PNM:
		return parsePNM(r, m)
	case JXL:
		return parseJXL(r, m)
	case JP2:
		return parseJP2(r, m)
	case DPX:
		return parseDPX(r, m)
	case TGA:
		return parseTGA(r, m)
	case PCX:
		return parsePCX(r, m)
	case SGI:
		return parseSGI(r, m)
	case RAF:
		return parseRAF(r, m)
	case CRW:
		return parseCRW(r, m)
	case X3F:
		return parseX3F(r, m)
	case MRW:
		return parseMRW(r, m)
	}
	if isTIFFFamily(h.format) {
		return parseTIFF(r, m, h.format)
	}
	return nil, &core.UnsupportedFormatError{Name: h.format}
}

// Formats lists every format of this package in dispatch order: formats
// with a unique signature first, then the TIFF RAW dialects, then generic
// TIFF.
func Formats() []string {
	return []string{
		JPEG, PNG, GIF, BMP, ICO, WebP, RAF, EXR, HDR, CR3, HEIC, AVIF,
		SVG, PNM, JXL, JP2, PSD, DPX, TGA, PCX, SGI, CRW, X3F, MRW,
		CR2, NEF, ARW, ORF, RW2, PEF, NRW, SRF, SR2, FFF, Raw3FR, ERF,
		MEF, SRW, RWL, DCR, KDC, MOS, IIQ, DNG, TIFF,
	}
}

var sniffers = map[string]func([]byte) bool{
	JPEG: func(b []byte) bool { return core.HasPrefixAt(b, 0, "\xFF\xD8") },
	PNG:  func(b []byte) bool { return core.HasPrefixAt(b, 0, Signature) },
	GIF: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, "GIF87a") || core.HasPrefixAt(b, 0, "GIF89a")
	},
	BMP:  sniffBMP,
	ICO:  sniffICO,
	WebP: func(b []byte) bool { return core.HasPrefixAt(b, 0, "RIFF") && core.HasPrefixAt(b, 8, "WEBP") },
	PSD:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "8BPS") },
	EXR:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "\x76\x2F\x31\x01") },
	HDR:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "#?") },
	HEIC: func(b []byte) bool { return heifKind(b) == HEIC },
	AVIF: func(b []byte) bool { return heifKind(b) == AVIF },
	CR3: func(b []byte) bool {
		return core.HasPrefixAt(b, 4, "ftyp") && core.HasPrefixAt(b, 8, "crx ")
	},
	SVG: sniffSVG,
	PNM: func(b []byte) bool {
		return len(b) >= 3 && b[0] == 'P' && b[1] >= '1' && b[1] <= '7' && isSpace(b[2])
	},
	JXL: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, jxlBoxMagic) || core.HasPrefixAt(b, 0, "\xFF\x0A")
	},
	JP2: func(b []byte) bool {
		return core.HasPrefixAt(b, 0, jp2BoxMagic) || core.HasPrefixAt(b, 0, "\xFF\x4F\xFF\x51")
	},
	DPX: func(b []byte) bool { return core.HasPrefixAt(b, 0, "SDPX") || core.HasPrefixAt(b, 0, "XPDS") },
	TGA: sniffTGA,
	PCX: sniffPCX,
	SGI: func(b []byte) bool {
		return len(b) >= 4 && b[0] == 0x01 && b[1] == 0xDA && b[2] <= 1 && (b[3] == 1 || b[3] == 2)
	},
	RAF: func(b []byte) bool { return core.HasPrefixAt(b, 0, "FUJIFILMCCD-RAW") },
	CRW: func(b []byte) bool {
		return (core.HasPrefixAt(b, 0, "II") || core.HasPrefixAt(b, 0, "MM")) && core.HasPrefixAt(b, 6, "HEAPCCDR")
	},
	X3F:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "FOVb") },
	MRW:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "\x00MRM") },
	CR2:  func(b []byte) bool { return isTIFF(b) && core.HasPrefixAt(b, 8, "CR\x02") },
	ORF:  sniffORF,
	RW2:  func(b []byte) bool { return core.HasPrefixAt(b, 0, "IIU\x00") },
	TIFF: isTIFF,
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

var formatInfo = map[string]core.FormatInfo{
	JPEG: {Name: JPEG, Extensions: []string{"jpg", "jpeg", "jpe", "jfif"}, MediaType: core.MediaImage, MIMETypes: []string{"image/jpeg"},
		Notes: "EXIF, XMP, IPTC/8BIM, ICC, JFIF, Ducky, Adobe and comments. Writable."},
	PNG: {Name: PNG, Extensions: []string{"png", "apng"}, MediaType: core.MediaImage, MIMETypes: []string{"image/png"},
		Notes: "IHDR, pHYs, tIME, gAMA, iCCP, eXIf, tEXt, zTXt and iTXt chunks. Writable."},
	GIF: {Name: GIF, Extensions: []string{"gif"}, MediaType: core.MediaImage, MIMETypes: []string{"image/gif"},
		Notes: "Logical screen, comments, animation loop count and XMP application extension."},
	BMP: {Name: BMP, Extensions: []string{"bmp", "dib"}, MediaType: core.MediaImage, MIMETypes: []string{"image/bmp"},
		Notes: "DIB header fields and an embedded V5 ICC profile."},
	ICO: {Name: ICO, Extensions: []string{"ico", "cur"}, MediaType: core.MediaImage, MIMETypes: []string{"image/vnd.microsoft.icon"},
		Notes: "Icon directory entries."},
	WebP: {Name: WebP, Extensions: []string{"webp"}, MediaType: core.MediaImage, MIMETypes: []string{"image/webp"},
		Notes: "VP8X, VP8/VP8L headers, ICCP, EXIF and XMP chunks. Still images are writable."},
	PSD: {Name: PSD, Extensions: []string{"psd", "psb"}, MediaType: core.MediaImage, MIMETypes: []string{"image/vnd.adobe.photoshop"},
		Notes: "Header and image resources (IPTC, XMP, EXIF, ICC)."},
	EXR: {Name: EXR, Extensions: []string{"exr"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-exr"},
		Notes: "OpenEXR header attributes."},
	HDR: {Name: HDR, Extensions: []string{"hdr", "pic", "rgbe"}, MediaType: core.MediaImage, MIMETypes: []string{"image/vnd.radiance"},
		Notes: "Radiance header variables and resolution line."},
	HEIC: {Name: HEIC, Extensions: []string{"heic", "heif", "hif"}, MediaType: core.MediaImage, MIMETypes: []string{"image/heic", "image/heif"},
		Notes: "ISOBMFF items: EXIF, XMP, ispe dimensions, colour profile."},
	AVIF: {Name: AVIF, Extensions: []string{"avif"}, MediaType: core.MediaImage, MIMETypes: []string{"image/avif"},
		Notes: "ISOBMFF items: EXIF, XMP, ispe dimensions, colour profile."},
	SVG: {Name: SVG, Extensions: []string{"svg"}, MediaType: core.MediaImage, MIMETypes: []string{"image/svg+xml"},
		Notes: "Root element geometry, title, desc and embedded RDF metadata."},
	PNM: {Name: PNM, Extensions: []string{"pbm", "pgm", "ppm", "pnm", "pam"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-portable-anymap"},
		Notes: "Netpbm header and comments."},
	JXL: {Name: JXL, Extensions: []string{"jxl"}, MediaType: core.MediaImage, MIMETypes: []string{"image/jxl"},
		Notes: "Container boxes (Exif, xml) or a bare codestream."},
	JP2: {Name: JP2, Extensions: []string{"jp2", "jpx", "j2k", "jpf"}, MediaType: core.MediaImage, MIMETypes: []string{"image/jp2"},
		Notes: "jp2h header boxes, XMP in uuid or xml boxes."},
	DPX: {Name: DPX, Extensions: []string{"dpx"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-dpx"},
		Notes: "File, image and film header fields."},
	TGA: {Name: TGA, Extensions: []string{"tga", "icb", "vda", "vst"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-tga"},
		Notes: "Header and TGA 2.0 extension area."},
	PCX: {Name: PCX, Extensions: []string{"pcx"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-pcx"},
		Notes: "ZSoft header."},
	SGI: {Name: SGI, Extensions: []string{"sgi", "rgb", "rgba", "bw"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-sgi"},
		Notes: "SGI image header and name."},
	TIFF: {Name: TIFF, Extensions: []string{"tif", "tiff"}, MediaType: core.MediaImage, MIMETypes: []string{"image/tiff"},
		Notes: "Classic and BigTIFF directories, EXIF, GPS, MakerNote. Writable."},

	RAF: rawInfo(RAF, "Fujifilm", "raf"),
	CR3: rawInfo(CR3, "Canon", "cr3"),
	CRW: rawInfo(CRW, "Canon CIFF", "crw"),
	X3F: rawInfo(X3F, "Sigma", "x3f"),
	MRW: rawInfo(MRW, "Minolta", "mrw"),
	CR2: rawInfo(CR2, "Canon", "cr2"),
	NEF: rawInfo(NEF, "Nikon", "nef"),
	NRW: rawInfo(NRW, "Nikon Coolpix", "nrw"),
	ARW: rawInfo(ARW, "Sony", "arw"),
	SRF: rawInfo(SRF, "Sony", "srf"),
	SR2: rawInfo(SR2, "Sony", "sr2"),
	ORF: rawInfo(ORF, "Olympus", "orf", "ori"),
	RW2: rawInfo(RW2, "Panasonic", "rw2", "raw"),
	PEF: rawInfo(PEF, "Pentax", "pef"),
	SRW: rawInfo(SRW, "Samsung", "srw"),
	DCR: rawInfo(DCR, "Kodak", "dcr"),
	KDC: rawInfo(KDC, "Kodak", "kdc"),
	ERF: rawInfo(ERF, "Epson", "erf"),
	MEF: rawInfo(MEF, "Mamiya", "mef"),
	MOS: rawInfo(MOS, "Leaf", "mos"),
	IIQ: rawInfo(IIQ, "Phase One", "iiq"),
	FFF: rawInfo(FFF, "Hasselblad Imacon", "fff"),
	Raw3FR: rawInfo(Raw3FR, "Hasselblad", "3fr"),
	RWL:    rawInfo(RWL, "Leica", "rwl"),
	DNG: {Name: DNG, Extensions: []string{"dng"}, MediaType: core.MediaImage, MIMETypes: []string{"image/x-adobe-dng"},
		Notes: "Adobe Digital Negative. TIFF based and writable."},
}

func rawInfo(name, vendor string, exts ...string) core.FormatInfo {
	return core.FormatInfo{
		Name:       name,
		Extensions: exts,
		MediaType:  core.MediaImage,
		MIMETypes:  []string{"image/x-" + exts[0]},
		Notes:      vendor + " camera RAW. Read only.",
	}
}
