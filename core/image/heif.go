package image

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/bmff"
	"github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/makernote"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

var heicBrands = map[string]bool{
	"heic": true, "heix": true, "hevc": true, "hevx": true, "heim": true,
	"heis": true, "hevm": true, "hevs": true, "mif1": true, "msf1": true,
}

// heifKind classifies an ftyp prefix as HEIC, AVIF or neither.
func heifKind(b []byte) string {
	if !core.HasPrefixAt(b, 4, "ftyp") || len(b) < 12 {
		return ""
	}
	major := string(b[8:12])
	if major == "avif" || major == "avis" {
		return AVIF
	}
	if !heicBrands[major] {
		return ""
	}
	n := int(binary.BigEndian.Uint32(b))
	for p := 16; p+4 <= len(b) && p+4 <= n; p += 4 {
		if c := string(b[p : p+4]); c == "avif" || c == "avis" {
			return AVIF
		}
	}
	return HEIC
}

// ─── HEIF / AVIF ─────────────────────────────────────────────────────────────

// heifItem is one entry of the item information and location boxes.
type heifItem struct {
	id          uint32
	typ         string
	name        string
	contentType string
	method      uint16
	base        uint64
	extents     []heifExtent
}

type heifExtent struct {
	index, offset, length uint64
}

// maxItemDepth bounds chains of item-offset extents.
const maxItemDepth = 4

type heifMeta struct {
	r       io.ReadSeeker
	size    int64
	primary uint32
	items   map[uint32]*heifItem
	order   []uint32
	idat    []byte
	props   []bmff.Box
	assoc   map[uint32][]int
	refs    map[uint32][]uint32 // iloc references
}

func parseHEIF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &core.IOError{Err: err}
	}
	var meta []byte
	sawFtyp := false
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "ftyp":
			b, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			sawFtyp = true
			heifBrands(m, b)
		case "meta":
			b, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			meta = b
		}
		return nil
	})
	if !sawFtyp {
		if err == nil {
			err = core.Structure("heif: no ftyp box")
		}
		return nil, err
	}
	m.Warn(err)
	if meta == nil {
		m.Warn(core.Structure("heif: no meta box"))
		return m, nil
	}
	hm := &heifMeta{r: r, size: size, items: map[uint32]*heifItem{}, assoc: map[uint32][]int{}, refs: map[uint32][]uint32{}}
	if err := hm.decode(meta); err != nil {
		m.Warn(errors.Wrap(err, "heif meta"))
	}
	hm.apply(m)
	return m, nil
}

func heifBrands(m *core.Metadata, ftyp []byte) {
	major, minor, compat := bmff.Brands(ftyp)
	m.Attrs.Set("HEIF:MajorBrand", attrs.Str(major))
	m.Attrs.Set("HEIF:MinorVersion", attrs.UInt(minor))
	m.Attrs.Set("HEIF:CompatibleBrands", attrs.Strs(compat))
	switch {
	case major == "avif" || major == "avis":
		m.Format = AVIF
	case contains(compat, "avif") && !contains(compat, "heic"):
		m.Format = AVIF
	default:
		m.Format = HEIC
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func (hm *heifMeta) decode(meta []byte) error {
	_, _, body, err := bmff.FullBox(meta)
	if err != nil {
		return err
	}
	boxes, err := bmff.Split(body)
	for _, b := range boxes {
		var berr error
		switch b.Type {
		case "pitm":
			berr = hm.pitm(b.Data)
		case "iinf":
			berr = hm.iinf(b.Data)
		case "iloc":
			berr = hm.iloc(b.Data)
		case "idat":
			hm.idat = b.Data
		case "iref":
			berr = hm.iref(b.Data)
		case "iprp":
			berr = hm.iprp(b.Data)
		}
		if berr != nil {
			return errors.Wrapf(berr, "%s box", b.Type)
		}
	}
	return err
}

func (hm *heifMeta) pitm(d []byte) error {
	v, _, body, err := bmff.FullBox(d)
	if err != nil {
		return err
	}
	c := cursor{b: body}
	if v == 0 {
		hm.primary = uint32(c.u16())
	} else {
		hm.primary = c.u32()
	}
	return c.err
}

func (hm *heifMeta) item(id uint32) *heifItem {
	it, ok := hm.items[id]
	if !ok {
		it = &heifItem{id: id}
		hm.items[id] = it
		hm.order = append(hm.order, id)
	}
	return it
}

func (hm *heifMeta) iinf(d []byte) error {
	v, _, body, err := bmff.FullBox(d)
	if err != nil {
		return err
	}
	if v == 0 {
		if len(body) < 2 {
			return core.EOF(2, len(body))
		}
		body = body[2:]
	} else {
		if len(body) < 4 {
			return core.EOF(4, len(body))
		}
		body = body[4:]
	}
	boxes, err := bmff.Split(body)
	for _, b := range boxes {
		if b.Type != "infe" {
			continue
		}
		iv, _, e, ferr := bmff.FullBox(b.Data)
		if ferr != nil || iv < 2 {
			continue
		}
		c := cursor{b: e}
		var id uint32
		if iv == 2 {
			id = uint32(c.u16())
		} else {
			id = c.u32()
		}
		c.u16() // protection index
		typ := string(c.take(4))
		if c.err != nil {
			continue
		}
		it := hm.item(id)
		it.typ = typ
		var rest []byte
		it.name, rest = bmff.CString(c.b)
		if typ == "mime" {
			it.contentType, _ = bmff.CString(rest)
		}
	}
	return err
}

func (hm *heifMeta) iloc(d []byte) error {
	v, _, body, err := bmff.FullBox(d)
	if err != nil {
		return err
	}
	c := cursor{b: body}
	sizes := c.u16()
	offSize, lenSize, baseSize := int(sizes>>12), int(sizes>>8&0xF), int(sizes>>4&0xF)
	idxSize := 0
	if v == 1 || v == 2 {
		idxSize = int(sizes & 0xF)
	}
	var count uint32
	if v < 2 {
		count = uint32(c.u16())
	} else {
		count = c.u32()
	}
	for i := uint32(0); i < count && c.err == nil; i++ {
		var id uint32
		if v < 2 {
			id = uint32(c.u16())
		} else {
			id = c.u32()
		}
		it := hm.item(id)
		if v == 1 || v == 2 {
			it.method = c.u16() & 0xF
		}
		c.u16() // data reference index
		it.base = c.uint(baseSize)
		n := int(c.u16())
		for j := 0; j < n && c.err == nil; j++ {
			idx := c.uint(idxSize)
			off := c.uint(offSize)
			length := c.uint(lenSize)
			if c.err == nil {
				it.extents = append(it.extents, heifExtent{idx, off, length})
			}
		}
	}
	return c.err
}

// iref keeps the iloc references, which item-offset extents index into.
func (hm *heifMeta) iref(d []byte) error {
	v, _, body, err := bmff.FullBox(d)
	if err != nil {
		return err
	}
	id := func(c *cursor) uint32 {
		if v == 0 {
			return uint32(c.u16())
		}
		return c.u32()
	}
	boxes, err := bmff.Split(body)
	for _, b := range boxes {
		if b.Type != "iloc" {
			continue
		}
		c := cursor{b: b.Data}
		from := id(&c)
		n := int(c.u16())
		for i := 0; i < n && c.err == nil; i++ {
			if to := id(&c); c.err == nil {
				hm.refs[from] = append(hm.refs[from], to)
			}
		}
		if c.err != nil {
			return c.err
		}
	}
	return err
}

func (hm *heifMeta) iprp(d []byte) error {
	boxes, err := bmff.Split(d)
	for _, b := range boxes {
		switch b.Type {
		case "ipco":
			hm.props, _ = bmff.Split(b.Data)
		case "ipma":
			if perr := hm.ipma(b.Data); perr != nil {
				return perr
			}
		}
	}
	return err
}

func (hm *heifMeta) ipma(d []byte) error {
	v, flags, body, err := bmff.FullBox(d)
	if err != nil {
		return err
	}
	c := cursor{b: body}
	n := c.u32()
	for i := uint32(0); i < n && c.err == nil; i++ {
		var id uint32
		if v < 1 {
			id = uint32(c.u16())
		} else {
			id = c.u32()
		}
		k := int(c.u8())
		for j := 0; j < k && c.err == nil; j++ {
			var idx int
			if flags&1 != 0 {
				idx = int(c.u16() & 0x7FFF)
			} else {
				idx = int(c.u8() & 0x7F)
			}
			if idx > 0 {
				hm.assoc[id] = append(hm.assoc[id], idx-1)
			}
		}
	}
	return c.err
}

// data loads an item's bytes and, for items stored in the file, the file
// position of the first byte.
func (hm *heifMeta) data(it *heifItem) ([]byte, int64, error) {
	return hm.itemData(it, 0)
}

func (hm *heifMeta) itemData(it *heifItem, depth int) ([]byte, int64, error) {
	if depth > maxItemDepth {
		return nil, -1, core.Structure("item %d: item references nested too deep", it.id)
	}
	var out []byte
	pos := int64(-1)
	for _, e := range it.extents {
		if e.offset > math.MaxUint64-it.base {
			return nil, -1, core.Structure("item %d: extent offset %d overflows base offset %d", it.id, e.offset, it.base)
		}
		off, n := it.base+e.offset, e.length
		var src []byte
		limit := uint64(hm.size)
		switch it.method {
		case 0:
		case 1:
			src = hm.idat
			limit = uint64(len(src))
		case 2:
			b, err := hm.referenced(it, e.index, depth)
			if err != nil {
				return nil, -1, err
			}
			src = b
			limit = uint64(len(src))
		default:
			return nil, -1, core.Structure("item %d: construction method %d", it.id, it.method)
		}
		// A zero length runs to the end of the source.
		if n == 0 && off < limit {
			n = limit - off
		}
		if off > limit || n > limit-off {
			return nil, -1, &core.ValueOutOfBoundsError{Offset: off, Size: n, DataLen: limit}
		}
		if n > core.MaxChunkSize-uint64(len(out)) {
			return nil, -1, &core.MetadataTooLargeError{Size: uint64(len(out)) + n, Limit: core.MaxChunkSize}
		}
		if it.method != 0 {
			out = append(out, src[off:off+n]...)
			continue
		}
		if _, err := hm.r.Seek(int64(off), io.SeekStart); err != nil {
			return nil, -1, &core.IOError{Err: err}
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(hm.r, b); err != nil {
			return nil, -1, &core.IOError{Err: err}
		}
		if pos < 0 {
			pos = int64(off)
		}
		out = append(out, b...)
	}
	if len(it.extents) != 1 {
		pos = -1
	}
	return out, pos, nil
}

// referenced loads the item an item-offset extent points at. Extent
// indexes count from 1; an absent index means the first reference.
func (hm *heifMeta) referenced(it *heifItem, index uint64, depth int) ([]byte, error) {
	refs := hm.refs[it.id]
	if index == 0 {
		index = 1
	}
	if index > uint64(len(refs)) {
		return nil, core.Structure("item %d: extent index %d with %d references", it.id, index, len(refs))
	}
	target, ok := hm.items[refs[index-1]]
	if !ok {
		return nil, core.Structure("item %d: reference to missing item %d", it.id, refs[index-1])
	}
	b, _, err := hm.itemData(target, depth+1)
	return b, err
}

func (hm *heifMeta) apply(m *core.Metadata) {
	if hm.primary != 0 {
		m.Attrs.Set("HEIF:PrimaryItemReference", attrs.UInt(hm.primary))
	}
	m.Attrs.Set("HEIF:ItemCount", attrs.UInt(uint32(len(hm.items))))
	for _, id := range hm.order {
		it := hm.items[id]
		switch {
		case it.typ == "Exif":
			b, pos, err := hm.data(it)
			if err != nil {
				m.Warn(errors.Wrap(err, "heif Exif item"))
				continue
			}
			tiff, skip := heifExif(b)
			if tiff == nil {
				m.Warn(core.Structure("heif: Exif item %d has no TIFF header", id))
				continue
			}
			if pos >= 0 {
				pos += int64(skip)
			}
			blocks.EXIF(m, tiff, pos)
		case it.typ == "mime" && it.contentType == "application/rdf+xml":
			b, _, err := hm.data(it)
			if err != nil {
				m.Warn(errors.Wrap(err, "heif XMP item"))
				continue
			}
			blocks.XMP(m, b)
		}
	}
	props := hm.assoc[hm.primary]
	if len(props) == 0 {
		for i := range hm.props {
			props = append(props, i)
		}
	}
	for _, i := range props {
		if i < len(hm.props) {
			heifProperty(m, hm.props[i])
		}
	}
}

// heifExif skips the 4-byte header offset of an Exif item. Some writers
// get the offset wrong, so a TIFF header is searched for as a fallback.
func heifExif(b []byte) ([]byte, int) {
	if len(b) >= 4 {
		if skip := 4 + uint64(binary.BigEndian.Uint32(b)); skip < uint64(len(b)) {
			rest := b[skip:]
			if len(rest) >= 4 && isTIFF(rest) {
				return rest, int(skip)
			}
			if len(rest) >= 10 && bytes.HasPrefix(rest, []byte(blocks.ExifHeader)) && isTIFF(rest[6:]) {
				return rest[6:], int(skip) + 6
			}
		}
	}
	for _, sig := range []string{"II*\x00", "MM\x00*"} {
		if i := bytes.Index(b, []byte(sig)); i >= 0 {
			return b[i:], i
		}
	}
	return nil, 0
}

func heifProperty(m *core.Metadata, p bmff.Box) {
	c := cursor{b: p.Data}
	switch p.Type {
	case "ispe":
		c.u32()
		w, h := c.u32(), c.u32()
		if c.err == nil && !m.Attrs.Contains("File:ImageWidth") {
			m.Attrs.Set("File:ImageWidth", attrs.UInt(w))
			m.Attrs.Set("File:ImageHeight", attrs.UInt(h))
		}
	case "pixi":
		c.u32()
		n := int(c.u8())
		var bits []attrs.Value
		for i := 0; i < n && c.err == nil; i++ {
			bits = append(bits, attrs.UInt(uint32(c.u8())))
		}
		if c.err == nil && len(bits) > 0 {
			m.Attrs.SetIfAbsent("HEIF:BitsPerChannel", attrs.List(bits...))
		}
	case "irot":
		if len(p.Data) >= 1 {
			m.Attrs.SetIfAbsent("HEIF:Rotation", attrs.UInt(uint32(p.Data[0]&3)*90))
		}
	case "colr":
		switch string(c.take(4)) {
		case "nclx":
			pr, tr, mx := c.u16(), c.u16(), c.u16()
			full := c.u8()
			if c.err == nil {
				m.Attrs.SetIfAbsent("HEIF:ColorPrimaries", attrs.UInt(uint32(pr)))
				m.Attrs.SetIfAbsent("HEIF:TransferCharacteristics", attrs.UInt(uint32(tr)))
				m.Attrs.SetIfAbsent("HEIF:MatrixCoefficients", attrs.UInt(uint32(mx)))
				m.Attrs.SetIfAbsent("HEIF:VideoFullRangeFlag", attrs.Bool(full&0x80 != 0))
			}
		case "prof", "rICC":
			blocks.ICC(m, c.b)
		}
	case "av1C":
		if len(p.Data) >= 2 {
			m.Attrs.SetIfAbsent("AVIF:SeqProfile", attrs.UInt(uint32(p.Data[1]>>5)))
		}
	}
}

// ─── CR3 ─────────────────────────────────────────────────────────────────────

const (
	canonUUID   = "85c0b687820f11e08111f4ce462b6a48"
	previewUUID = "eaf42b5e1c984b88b9fbb7dc406e4d16"
)

// parseCR3 reads a Canon CR3. The moov box carries a Canon uuid box with
// four TIFF blocks: IFD0 (CMT1), the Exif directory (CMT2), the MakerNote
// (CMT3) and GPS (CMT4), plus a thumbnail.
func parseCR3(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &core.IOError{Err: err}
	}
	found := false
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "ftyp":
			b, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			major, _, compat := bmff.Brands(b)
			m.Attrs.Set("CR3:MajorBrand", attrs.Str(major))
			m.Attrs.Set("CR3:CompatibleBrands", attrs.Strs(compat))
		case "moov":
			b, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			found = cr3Moov(m, b, h.DataOffset()) || found
		case "uuid":
			if h.DataSize() < 16 || h.DataSize() > core.MaxChunkSize {
				return nil
			}
			b, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			if hex.EncodeToString(b[:16]) == previewUUID {
				if i := bytes.Index(b, []byte("\xFF\xD8\xFF")); i >= 0 && len(b)-i > len(m.Preview) {
					m.Preview = b[i:]
				}
			}
		}
		return nil
	})
	if !found {
		if err == nil {
			err = core.Structure("cr3: no Canon metadata box")
		}
		return nil, err
	}
	m.Warn(err)
	return m, nil
}

func cr3Moov(m *core.Metadata, moov []byte, base int64) bool {
	boxes, _ := bmff.Split(moov)
	for _, u := range boxes {
		if u.Type != "uuid" || len(u.Data) < 16 || hex.EncodeToString(u.Data[:16]) != canonUUID {
			continue
		}
		// uuid box header (8) + uuid (16)
		start := base + int64(u.Offset) + 8 + 16
		children, err := bmff.Split(u.Data[16:])
		m.Warn(err)
		for _, c := range children {
			cr3Box(m, c, start+int64(c.Offset)+8)
		}
		return true
	}
	return false
}

func cr3Box(m *core.Metadata, c bmff.Box, off int64) {
	switch c.Type {
	case "CNCV":
		m.Attrs.Set("CR3:CompressorVersion", attrs.Str(string(bytes.TrimRight(c.Data, "\x00"))))
	case "CMT1":
		blocks.EXIF(m, c.Data, off)
	case "CMT2":
		cr3Dir(m, c.Data, tags.ExifIFD)
	case "CMT4":
		cr3Dir(m, c.Data, tags.GPSIFD)
	case "CMT3":
		res, err := makernote.DecodeTIFF(c.Data, makernote.Canon)
		if err != nil {
			m.Warn(errors.Wrap(err, "cr3 CMT3"))
			return
		}
		if !m.Attrs.Contains(res.Vendor.String()) {
			m.Attrs.Set(res.Vendor.String(), attrs.Group(res.Attrs))
		}
	case "THMB":
		// version/flags (4), width (2), height (2), size (4), reserved (4)
		if len(c.Data) < 16 {
			return
		}
		n := int(binary.BigEndian.Uint32(c.Data[8:]))
		if 16+n <= len(c.Data) && bytes.HasPrefix(c.Data[16:], []byte{0xFF, 0xD8}) && m.Thumbnail == nil {
			m.Thumbnail = c.Data[16 : 16+n]
		}
	}
}

func cr3Dir(m *core.Metadata, tiff []byte, ctx tags.Context) {
	a, err := exif.DecodeDir(tiff, ctx)
	if err != nil {
		m.Warn(errors.Wrapf(err, "cr3 %s", ctx))
	}
	m.Attrs.Merge(a, false)
}

// ─── cursor ──────────────────────────────────────────────────────────────────

// cursor reads big-endian fields and latches the first short read.
type cursor struct {
	b   []byte
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > len(c.b) {
		c.err = core.EOF(n, len(c.b))
		return nil
	}
	v := c.b[:n]
	c.b = c.b[n:]
	return v
}

func (c *cursor) u8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *cursor) u16() uint16 {
	if b := c.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (c *cursor) u32() uint32 {
	if b := c.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// uint reads a field of 0, 4 or 8 bytes, as iloc sizes them.
func (c *cursor) uint(size int) uint64 {
	switch size {
	case 0:
		return 0
	case 4:
		return uint64(c.u32())
	case 8:
		if b := c.take(8); b != nil {
			return binary.BigEndian.Uint64(b)
		}
		return 0
	}
	c.err = core.Structure("field size %d", size)
	return 0
}
