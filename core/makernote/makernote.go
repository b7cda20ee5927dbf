package makernote

import (
	"math"
	"sort"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

var mnLogger = log.NewLogger("makernote")

// ErrUnsupported is returned when no vendor dialect matches the blob. The
// caller keeps the raw bytes.
var ErrUnsupported = errors.New("unsupported makernote")

// maxSubIFDs bounds the vendor sub-directories followed per MakerNote.
const maxSubIFDs = 16

// Result is a decoded MakerNote.
type Result struct {
	Vendor Vendor
	// Attrs holds the vendor tags. Binary arrays and sub-directories are
	// nested groups, and "Vendor" names the dialect.
	Attrs *attrs.Attrs
	// Preview is an embedded preview JPEG when the dialect carries one.
	Preview []byte
}

// Decode parses the MakerNote entry e read by parent. maker is the Make
// string of IFD0; when the blob starts with a known vendor header the
// header takes precedence.
func Decode(parent *ifd.Reader, e *ifd.Entry, maker string) (*Result, error) {
	if e.DataOffset < 0 || len(e.Raw) < 6 {
		return nil, ErrUnsupported
	}
	note := e.Raw
	v := FromMake(maker)
	if s := Sniff(note); s != Unknown {
		v = s
	}
	if v == Unknown {
		return nil, ErrUnsupported
	}

	l, ok := Detect(v, note, parent.Order())
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "%s layout not recognised", v)
	}
	table := v.String()
	if l.Table != "" {
		table = l.Table
	}
	tbl, _ := tags.Vendor(table)

	r, off := open(parent, int(e.DataOffset), l)
	d, err := r.ReadIFD(off)
	if err != nil {
		return nil, errors.Wrapf(err, "%s makernote", v)
	}

	p := &parser{vendor: v, r: r, res: &Result{Vendor: v, Attrs: attrs.New()}, seen: map[uint64]bool{off: true}}
	p.fill(p.res.Attrs, d, tbl, true)
	p.res.Attrs.Set("Vendor", attrs.Str(v.String()))
	mnLogger.Debugf(nil, "%s makernote: %d tags", v, p.res.Attrs.Len())
	return p.res, nil
}

// open returns a reader positioned for l and the directory offset in that
// reader's coordinates. noteAbs is the blob position in the parent's data.
func open(parent *ifd.Reader, noteAbs int, l Layout) (*ifd.Reader, uint64) {
	if l.Relative {
		return parent.Rebased(noteAbs+l.Origin, l.Order).Classic(), l.Offset - uint64(l.Origin)
	}
	return parent.Rebased(parent.Base(), l.Order).Classic(), uint64(noteAbs-parent.Base()) + l.Offset
}

type parser struct {
	vendor Vendor
	r      *ifd.Reader
	res    *Result
	seen   map[uint64]bool
}

func (p *parser) fill(dst *attrs.Attrs, d *ifd.IFD, tbl tags.Table, top bool) {
	order := p.r.Order()
	var start, length uint64
	var haveStart, haveLength bool

	for i := range d.Entries {
		e := &d.Entries[i]
		if top {
			if bt, ok := tags.Binary(p.vendor.String(), e.Tag); ok {
				g := DecodeBinary(bt, e.Raw, order)
				if p.vendor == Nikon && bt.Name == "ISOInfo" {
					nikonISO(g)
				}
				if !g.IsEmpty() {
					dst.Set(bt.Name, attrs.Group(g))
				}
				continue
			}
			if sub, ok := tags.VendorSubIFD(p.vendor.String(), e.Tag); ok {
				if g := p.subIFD(e, sub); g != nil {
					dst.Set(tbl[e.Tag].Name, attrs.Group(g))
					continue
				}
			}
		}

		def, known := tbl[e.Tag]
		if !known {
			continue
		}
		switch def.Name {
		case "PreviewIFD":
			p.nikonPreview(e)
			continue
		case "PreviewImageStart":
			start, haveStart = e.Uint(order, 0)
		case "PreviewImageLength":
			length, haveLength = e.Uint(order, 0)
		}
		if def.Structural {
			continue
		}
		dst.Set(def.Name, Resolve(e.Value, def.Values))
	}

	if haveStart && haveLength {
		p.setPreview(start, length)
	}
}

// subIFD follows a vendor sub-directory stored either as a pointer or as
// an undefined blob holding the directory itself.
func (p *parser) subIFD(e *ifd.Entry, tbl tags.Table) *attrs.Attrs {
	var off uint64
	switch e.Format {
	case ifd.FormatUInt32, ifd.FormatIfd:
		off, _ = e.Uint(p.r.Order(), 0)
	case ifd.FormatUndefined:
		if e.DataOffset < 0 {
			return nil
		}
		off = uint64(int(e.DataOffset) - p.r.Base())
	default:
		return nil
	}
	if p.seen[off] || len(p.seen) > maxSubIFDs {
		return nil
	}
	p.seen[off] = true

	d, err := p.r.ReadIFD(off)
	if err != nil {
		mnLogger.Warningf(nil, "%s sub-IFD 0x%04X: %s", p.vendor, e.Tag, err.Error())
		return nil
	}
	g := attrs.New()
	p.fill(g, d, tbl, false)
	return g
}

// nikonPreview reads the PreviewIFD, whose image offsets share the
// MakerNote's base.
func (p *parser) nikonPreview(e *ifd.Entry) {
	order := p.r.Order()
	off, ok := e.Uint(order, 0)
	if !ok || p.seen[off] {
		return
	}
	p.seen[off] = true
	d, err := p.r.ReadIFD(off)
	if err != nil {
		mnLogger.Warningf(nil, "Nikon PreviewIFD: %s", err.Error())
		return
	}
	var start, length uint64
	if pe, ok := d.Find(tags.TagThumbnailOffset); ok {
		start, _ = pe.Uint(order, 0)
	}
	if pe, ok := d.Find(tags.TagThumbnailLength); ok {
		length, _ = pe.Uint(order, 0)
	}
	p.setPreview(start, length)
}

func (p *parser) setPreview(start, length uint64) {
	data := p.r.Data()
	if length == 0 || start >= uint64(len(data)) || length > uint64(len(data))-start {
		mnLogger.Debugf(nil, "%s preview %d+%d out of range", p.vendor, start, length)
		return
	}
	p.res.Preview = append([]byte(nil), data[start:start+length]...)
}

// DecodeBinary unpacks a binary-array payload positionally. Positions
// past the end of raw are skipped; enum values resolve to text.
func DecodeBinary(bt *tags.BinaryTable, raw []byte, order endian.ByteOrder) *attrs.Attrs {
	idx := make([]int, 0, len(bt.Fields))
	for i := range bt.Fields {
		idx = append(idx, int(i))
	}
	sort.Ints(idx)

	unit := bt.Format.Size()
	g := attrs.New()
	for _, i := range idx {
		f := bt.Fields[uint16(i)]
		format := f.Format
		if format == 0 {
			format = bt.Format
		}
		pos := i * unit
		if pos+format.Size() > len(raw) {
			continue
		}
		n, v := scalar(format, raw[pos:], order)
		if s, ok := f.Values[n]; ok {
			v = attrs.Str(s)
		}
		g.Set(f.Name, v)
	}
	return g
}

func scalar(f ifd.Format, b []byte, order endian.ByteOrder) (int64, attrs.Value) {
	switch f {
	case ifd.FormatInt8:
		n := int64(int8(b[0]))
		return n, attrs.Int(int32(n))
	case ifd.FormatUInt16:
		n := int64(order.Uint16(b))
		return n, attrs.UInt(uint32(n))
	case ifd.FormatInt16:
		n := int64(int16(order.Uint16(b)))
		return n, attrs.Int(int32(n))
	case ifd.FormatUInt32:
		n := int64(order.Uint32(b))
		return n, attrs.UInt(uint32(n))
	case ifd.FormatInt32:
		n := int64(int32(order.Uint32(b)))
		return n, attrs.Int(int32(n))
	}
	n := int64(b[0])
	return n, attrs.UInt(uint32(n))
}

// Resolve replaces an integer value by its enum text when vals knows it.
// Single-character strings resolve by character code.
func Resolve(v attrs.Value, vals tags.Values) attrs.Value {
	if vals == nil {
		return v
	}
	var k int64
	if n, ok := v.AsInt(); ok {
		k = int64(n)
	} else if n, ok := v.Uint(); ok {
		k = int64(n)
	} else if s, ok := v.AsStr(); ok && len(s) == 1 {
		k = int64(s[0])
	} else {
		return v
	}
	if s, ok := vals[k]; ok {
		return attrs.Str(s)
	}
	return v
}

// nikonISO converts the logarithmic ISO bytes to speeds: 100*2^(n/12-5).
func nikonISO(g *attrs.Attrs) {
	for _, key := range []string{"ISO", "ISO2"} {
		n, ok := g.GetUInt(key)
		if !ok || n == 0 {
			continue
		}
		g.Set(key, attrs.UInt(uint32(math.Round(100*math.Pow(2, float64(n)/12-5)))))
	}
}

// DecodeTIFF reads a vendor directory stored as a standalone TIFF, the way
// CR3 files keep the Canon MakerNote.
func DecodeTIFF(tiff []byte, v Vendor) (*Result, error) {
	r, h, err := ifd.Open(tiff)
	if err != nil {
		return nil, err
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		return nil, errors.Wrapf(err, "%s makernote", v)
	}
	tbl, _ := tags.Vendor(v.String())
	p := &parser{vendor: v, r: r, res: &Result{Vendor: v, Attrs: attrs.New()}, seen: map[uint64]bool{h.FirstIFD: true}}
	p.fill(p.res.Attrs, d, tbl, true)
	p.res.Attrs.Set("Vendor", attrs.Str(v.String()))
	return p.res, nil
}
