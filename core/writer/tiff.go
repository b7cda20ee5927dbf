package writer

import (
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

// layoutTags describe how pixel data is stored. They are always copied from
// the source so an edit cannot make the image unreadable.
var layoutTags = map[uint16]bool{
	tags.TagNewSubfileType: true, tags.TagImageWidth: true, tags.TagImageHeight: true,
	tags.TagBitsPerSample: true, tags.TagCompression: true, 0x0106: true,
	tags.TagSamplesPerPixel: true, tags.TagRowsPerStrip: true, 0x011C: true,
	0x013D: true, 0x0140: true, 0x0142: true, 0x0143: true, 0x0152: true,
	0x0153: true, 0x015B: true, 0x0212: true,
}

// dataPairs are the offset and byte-count tags of the data a directory
// points at.
var dataPairs = [][2]uint16{
	{tags.TagStripOffsets, tags.TagStripByteCounts},
	{tags.TagTileOffsets, tags.TagTileByteCounts},
	{tags.TagThumbnailOffset, tags.TagThumbnailLength},
}

// pointerTags are never copied; the writer links its own directories.
var pointerTags = map[uint16]bool{
	tags.TagExifIFD: true, tags.TagGPSIFD: true, tags.TagInteropIFD: true,
	tags.TagSubIFDs: true, tags.TagMakerNote: true,
}

// span is a run of source bytes referenced by an offset tag.
type span struct {
	off, n uint32
}

// relocation moves the spans of one offset tag.
type relocation struct {
	dir   *ifd.Builder
	tag   uint16
	spans []span
	at    []uint32
}

// tiffLayout assembles the directories of the output file.
type tiffLayout struct {
	data  []byte
	order endian.ByteOrder
	moves []*relocation
}

// WriteTIFF rewrites a classic TIFF or DNG. IFD0 and the Exif, GPS and
// Interop directories are rebuilt from the attributes; entries the
// attributes do not cover are copied. SubIFDs and the IFD chain are kept.
// Strips, tiles and the thumbnail move to a data region after the
// directories and are copied byte for byte. MakerNotes are not written.
func WriteTIFF(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	p, err := rebuild(m)
	if err != nil {
		return err
	}
	if p == nil {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	data, err := core.ReadAll(r)
	if err != nil {
		return err
	}
	out, err := rewriteTIFF(data, m.Attrs, p)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return wrapIO(err)
}

func rewriteTIFF(data []byte, a *attrs.Attrs, p *payload) ([]byte, error) {
	rd, h, err := ifd.Open(data)
	if err != nil {
		return nil, errors.Wrap(err, "reading TIFF header")
	}
	if h.BigTIFF {
		return nil, &core.UnsupportedWriteError{Format: "BigTIFF", Reason: "only classic TIFF can be rewritten"}
	}
	o := h.Order
	src0, err := rd.ReadIFD(h.FirstIFD)
	if err != nil {
		return nil, errors.Wrap(err, "reading IFD0")
	}
	lay := &tiffLayout{data: data, order: o}
	dirs := exif.Directories(a, o)

	ifd0 := dirs[tags.IFD0]
	var irb []byte
	for i := range src0.Entries {
		e := &src0.Entries[i]
		switch e.Tag {
		case tags.TagXMP, tags.TagIPTC:
			continue
		case tags.TagPhotoshop:
			irb = e.Raw
			continue
		}
		lay.keep(ifd0, dirs, a, tags.IFD0, e)
	}
	if p.xmp != nil {
		ifd0.Add(ifd.Bytes(tags.TagXMP, p.xmp))
	}
	if p.iim != nil {
		ifd0.Add(ifd.Undefined(tags.TagIPTC, p.iim))
	}
	if res := p.photoshop(irb); res != nil && len(irb) > 0 {
		ifd0.Add(ifd.Undefined(tags.TagPhotoshop, res))
	}
	if err := lay.relocate(ifd0, src0); err != nil {
		return nil, err
	}

	// The Exif, GPS and Interop directories of the source fill in what the
	// attributes do not cover.
	sub := func(parent *ifd.IFD, ptr uint16, ctx tags.Context) {
		e, ok := parent.Find(ptr)
		if !ok {
			return
		}
		off, _ := e.Uint(o, 0)
		d, err := rd.ReadIFD(off)
		if err != nil {
			writerLogger.Warningf(nil, "dropping unreadable %s directory: %s", ctx, err.Error())
			return
		}
		for i := range d.Entries {
			lay.keep(dirs[ctx], dirs, a, ctx, &d.Entries[i])
		}
		if ctx == tags.ExifIFD {
			if e, ok := d.Find(tags.TagInteropIFD); ok {
				off, _ := e.Uint(o, 0)
				if di, err := rd.ReadIFD(off); err == nil {
					for i := range di.Entries {
						lay.keep(dirs[tags.InteropIFD], dirs, a, tags.InteropIFD, &di.Entries[i])
					}
				}
			}
		}
	}
	sub(src0, tags.TagExifIFD, tags.ExifIFD)
	sub(src0, tags.TagGPSIFD, tags.GPSIFD)

	subIFDs, err := lay.others(rd, src0, true)
	if err != nil {
		return nil, err
	}
	chain, err := lay.others(rd, src0, false)
	if err != nil {
		return nil, err
	}

	exifDir, gps, interop := dirs[tags.ExifIFD], dirs[tags.GPSIFD], dirs[tags.InteropIFD]
	if interop.Len() > 0 {
		exifDir.Add(ifd.Longs(o, tags.TagInteropIFD, 0))
	}
	if exifDir.Len() > 0 {
		ifd0.Add(ifd.Longs(o, tags.TagExifIFD, 0))
	}
	if gps.Len() > 0 {
		ifd0.Add(ifd.Longs(o, tags.TagGPSIFD, 0))
	}
	if len(subIFDs) > 0 {
		ifd0.Add(ifd.Longs(o, tags.TagSubIFDs, make([]uint32, len(subIFDs))...))
	}

	// Directory positions are final once every placeholder is in.
	pos := uint64(8)
	place := func(b *ifd.Builder) uint32 {
		if b == nil || b.Len() == 0 {
			return 0
		}
		at := pos
		pos += uint64(b.Size())
		return uint32(at)
	}
	ifd0At := place(ifd0)
	exifAt := place(exifDir)
	interopAt := place(interop)
	gpsAt := place(gps)
	subAt := make([]uint32, len(subIFDs))
	for i, b := range subIFDs {
		subAt[i] = place(b)
	}
	chainAt := make([]uint32, len(chain))
	for i, b := range chain {
		chainAt[i] = place(b)
	}
	dataAt := (pos + 3) &^ 3
	end := dataAt
	for _, mv := range lay.moves {
		mv.at = make([]uint32, len(mv.spans))
		for i, s := range mv.spans {
			mv.at[i] = uint32(end)
			end += uint64(s.n)
			end += end % 2
		}
	}
	if end > math.MaxUint32 {
		return nil, &core.MetadataTooLargeError{Size: end, Limit: math.MaxUint32}
	}

	for _, mv := range lay.moves {
		mv.dir.Add(ifd.Longs(o, mv.tag, mv.at...))
	}
	if exifAt != 0 {
		ifd0.Add(ifd.Longs(o, tags.TagExifIFD, exifAt))
	}
	if gpsAt != 0 {
		ifd0.Add(ifd.Longs(o, tags.TagGPSIFD, gpsAt))
	}
	if interopAt != 0 {
		exifDir.Add(ifd.Longs(o, tags.TagInteropIFD, interopAt))
	}
	if len(subAt) > 0 {
		ifd0.Add(ifd.Longs(o, tags.TagSubIFDs, subAt...))
	}

	next := func(i int) uint32 {
		if i < len(chainAt) {
			return chainAt[i]
		}
		return 0
	}
	out := make([]byte, 0, end)
	out = append(out, ifd.EncodeHeader(o, ifd0At)...)
	out = append(out, ifd0.Encode(ifd0At, next(0))...)
	if exifAt != 0 {
		out = append(out, exifDir.Encode(exifAt, 0)...)
	}
	if interopAt != 0 {
		out = append(out, interop.Encode(interopAt, 0)...)
	}
	if gpsAt != 0 {
		out = append(out, gps.Encode(gpsAt, 0)...)
	}
	for i, b := range subIFDs {
		out = append(out, b.Encode(subAt[i], 0)...)
	}
	for i, b := range chain {
		out = append(out, b.Encode(chainAt[i], next(i+1))...)
	}
	for uint64(len(out)) < dataAt {
		out = append(out, 0)
	}
	for _, mv := range lay.moves {
		for i, s := range mv.spans {
			for uint32(len(out)) < mv.at[i] {
				out = append(out, 0)
			}
			out = append(out, data[s.off:s.off+s.n]...)
		}
	}
	for uint64(len(out)) < end {
		out = append(out, 0)
	}
	return out, nil
}

// keep copies a source entry into b unless the attributes own it. A
// writable tag the attributes no longer hold was deleted. One they still
// hold but could not encode is copied as it was.
func (l *tiffLayout) keep(b *ifd.Builder, dirs map[tags.Context]*ifd.Builder, a *attrs.Attrs, ctx tags.Context, e *ifd.Entry) {
	if pointerTags[e.Tag] || isDataTag(e.Tag) {
		return
	}
	if ctx == tags.IFD0 && layoutTags[e.Tag] {
		b.Add(ifd.RawField(e))
		return
	}
	def, known := tags.Lookup(ctx, e.Tag)
	if known && def.Structural {
		if e.Tag == tags.TagICCProfile {
			b.Add(ifd.RawField(e))
		}
		return
	}
	if !known || !def.Writable() {
		if !b.Has(e.Tag) {
			b.Add(ifd.RawField(e))
		}
		return
	}
	if b.Has(e.Tag) {
		return
	}
	if !a.Contains(def.Name) && !a.Contains("EXIF:"+def.Name) {
		return
	}
	if ref, ok := tags.Find(def.Name); ok && ref.Context != ctx && dirs[ref.Context].Has(ref.Tag) {
		return
	}
	b.Add(ifd.RawField(e))
}

func isDataTag(tag uint16) bool {
	for _, p := range dataPairs {
		if tag == p[0] || tag == p[1] {
			return true
		}
	}
	return false
}

// relocate records the data spans of src for b and adds placeholder
// offsets with the counts copied from the source.
func (l *tiffLayout) relocate(b *ifd.Builder, src *ifd.IFD) error {
	for _, pair := range dataPairs {
		oe, ok := src.Find(pair[0])
		if !ok {
			continue
		}
		ce, ok := src.Find(pair[1])
		if !ok {
			return core.Structure("tiff: tag 0x%04X without 0x%04X", pair[0], pair[1])
		}
		offs, counts := oe.Uints(l.order), ce.Uints(l.order)
		if len(offs) != len(counts) {
			return core.Structure("tiff: %d offsets for %d byte counts in tag 0x%04X", len(offs), len(counts), pair[0])
		}
		mv := &relocation{dir: b, tag: pair[0], spans: make([]span, len(offs))}
		for i := range offs {
			if offs[i]+counts[i] > uint64(len(l.data)) {
				return &core.ValueOutOfBoundsError{Offset: offs[i], Size: counts[i], DataLen: uint64(len(l.data))}
			}
			mv.spans[i] = span{off: uint32(offs[i]), n: uint32(counts[i])}
		}
		b.Add(ifd.Longs(l.order, pair[0], make([]uint32, len(offs))...))
		b.Add(ifd.RawField(ce))
		l.moves = append(l.moves, mv)
	}
	return nil
}

// others copies the SubIFDs of src0 (sub is true) or the directories
// chained after it. Their entries are copied as they are, apart from the
// data they point at, which is relocated.
func (l *tiffLayout) others(rd *ifd.Reader, src0 *ifd.IFD, sub bool) ([]*ifd.Builder, error) {
	var offs []uint64
	if sub {
		if e, ok := src0.Find(tags.TagSubIFDs); ok {
			offs = e.Uints(l.order)
		}
	}
	seen := map[uint64]bool{src0.Offset: true}
	var out []*ifd.Builder
	next := src0.Next
	for i := 0; i < core.MaxWalkIterations; i++ {
		var off uint64
		if sub {
			if i >= len(offs) {
				break
			}
			off = offs[i]
		} else {
			if next == 0 {
				break
			}
			off = next
		}
		if seen[off] {
			writerLogger.Warningf(nil, "IFD at %d already written", off)
			break
		}
		seen[off] = true
		d, err := rd.ReadIFD(off)
		if err != nil {
			writerLogger.Warningf(nil, "dropping unreadable IFD at %d: %s", off, err.Error())
			break
		}
		next = d.Next
		b := ifd.NewBuilder(l.order)
		for j := range d.Entries {
			e := &d.Entries[j]
			if pointerTags[e.Tag] || isDataTag(e.Tag) {
				continue
			}
			b.Add(ifd.RawField(e))
		}
		if err := l.relocate(b, d); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
