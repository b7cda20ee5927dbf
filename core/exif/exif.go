// Package exif walks a TIFF structure the way EXIF lays it out: IFD0 and its
// next-IFD chain, the Exif, GPS and Interop sub-directories, SubIFDs, the
// IFD1 thumbnail and the MakerNote. It also serialises attributes back into
// a fresh little-endian TIFF block.
package exif

import (
	"bytes"

	log "github.com/dsoprea/go-logging"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/makernote"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

// MaxIfds caps the distinct directories visited in one walk.
const MaxIfds = 32

// maxThumbnail is the largest IFD1 JPEG accepted as a thumbnail.
const maxThumbnail = 1000000

var exifLogger = log.NewLogger("exif")

// Data is a decoded EXIF block.
type Data struct {
	// Attrs holds every named tag, first directory reached wins. The
	// decoded MakerNote is a group named after the vendor.
	Attrs   *attrs.Attrs
	Order   endian.ByteOrder
	BigTIFF bool
	IFD0    *ifd.IFD
	Reader  *ifd.Reader
	Vendor  makernote.Vendor

	Thumbnail []byte
	Preview   []byte
	// Pages lists the image directories other than IFD0 and the thumbnail:
	// later IFDs of the chain and SubIFDs.
	Pages []*attrs.Attrs

	// Blocks carried by IFD0 tags, left for the caller to decode.
	XMP       []byte
	IPTC      []byte
	Photoshop []byte
	ICC       []byte

	Warnings error
}

// Decode parses a complete TIFF block: header and directories. relaxed lists
// extra header magics to accept.
func Decode(tiff []byte, relaxed ...uint16) (*Data, error) {
	r, h, err := ifd.Open(tiff, relaxed...)
	if err != nil {
		return nil, err
	}
	return Walk(r, h.FirstIFD)
}

// Walk decodes the directories reachable from first. Only a failure to read
// IFD0 is fatal; everything later is recorded in Data.Warnings.
func Walk(r *ifd.Reader, first uint64) (*Data, error) {
	w := &walker{
		r:       r,
		visited: make(map[uint64]bool),
		d: &Data{
			Attrs:   attrs.New(),
			Order:   r.Order(),
			BigTIFF: r.BigTIFF(),
			Reader:  r,
		},
	}
	if err := w.chain(first); err != nil {
		return nil, err
	}
	w.warns = multierror.Append(w.warns, r.Warnings())
	w.d.Warnings = w.warns.ErrorOrNil()
	return w.d, nil
}

type walker struct {
	r       *ifd.Reader
	d       *Data
	visited map[uint64]bool
	maker   string
	warns   *multierror.Error
}

func (w *walker) warn(err error) {
	w.warns = multierror.Append(w.warns, err)
	exifLogger.Warningf(nil, "%s", err.Error())
}

// enter marks off as visited. It refuses repeats and anything past MaxIfds.
func (w *walker) enter(off uint64) bool {
	if w.visited[off] {
		w.warn(&core.RecursiveIfdError{Offset: off})
		return false
	}
	if len(w.visited) >= MaxIfds {
		w.warn(errors.Wrapf(&core.RecursiveIfdError{Offset: off}, "directory cap %d reached", MaxIfds))
		return false
	}
	w.visited[off] = true
	return true
}

func (w *walker) read(off uint64, what string) *ifd.IFD {
	if !w.enter(off) {
		return nil
	}
	d, err := w.r.ReadIFD(off)
	if err != nil {
		w.warn(errors.Wrap(err, what))
		return nil
	}
	return d
}

func (w *walker) chain(first uint64) error {
	if !w.enter(first) {
		return &core.RecursiveIfdError{Offset: first}
	}
	ifd0, err := w.r.ReadIFD(first)
	if err != nil {
		return errors.Wrap(err, "IFD0")
	}
	w.d.IFD0 = ifd0
	w.emit(w.d.Attrs, ifd0, tags.IFD0, false)
	w.maker, _ = w.d.Attrs.GetStr("Make")
	w.blocks(ifd0)
	w.pointers(ifd0)

	off := ifd0.Next
	for idx := 1; off != 0; idx++ {
		d := w.read(off, "IFD chain")
		if d == nil {
			break
		}
		if idx == 1 && w.thumbnail(d) {
			off = d.Next
			continue
		}
		w.d.Pages = append(w.d.Pages, w.page(d))
		w.pointers(d)
		off = d.Next
	}
	return nil
}

// emit copies the named, non-structural entries of d into dst. When over
// is false an existing key is kept.
func (w *walker) emit(dst *attrs.Attrs, d *ifd.IFD, ctx tags.Context, over bool) {
	for i := range d.Entries {
		e := &d.Entries[i]
		def, ok := tags.Lookup(ctx, e.Tag)
		if !ok || def.Structural || !e.Value.IsValid() {
			continue
		}
		if over {
			dst.Set(def.Name, e.Value)
		} else {
			dst.SetIfAbsent(def.Name, e.Value)
		}
	}
}

func (w *walker) blocks(d *ifd.IFD) {
	for _, b := range []struct {
		tag uint16
		dst *[]byte
	}{
		{tags.TagXMP, &w.d.XMP},
		{tags.TagIPTC, &w.d.IPTC},
		{tags.TagPhotoshop, &w.d.Photoshop},
		{tags.TagICCProfile, &w.d.ICC},
	} {
		if e, ok := d.Find(b.tag); ok && len(e.Raw) > 0 {
			*b.dst = append([]byte(nil), e.Raw...)
		}
	}
}

// pointers follows the sub-directory tags of d.
func (w *walker) pointers(d *ifd.IFD) {
	order := w.r.Order()
	if e, ok := d.Find(tags.TagExifIFD); ok {
		if off, ok := e.Uint(order, 0); ok {
			if sub := w.read(off, "ExifIFD"); sub != nil {
				w.emit(w.d.Attrs, sub, tags.ExifIFD, false)
				w.exifPointers(sub)
			}
		}
	}
	if e, ok := d.Find(tags.TagGPSIFD); ok {
		if off, ok := e.Uint(order, 0); ok {
			if sub := w.read(off, "GPS IFD"); sub != nil {
				w.emit(w.d.Attrs, sub, tags.GPSIFD, false)
			}
		}
	}
	if e, ok := d.Find(tags.TagSubIFDs); ok {
		for _, off := range e.Uints(order) {
			sub := w.read(off, "SubIFD")
			if sub == nil {
				continue
			}
			w.d.Pages = append(w.d.Pages, w.page(sub))
			w.embeddedJPEG(sub)
		}
	}
}

func (w *walker) exifPointers(d *ifd.IFD) {
	order := w.r.Order()
	if e, ok := d.Find(tags.TagInteropIFD); ok {
		if off, ok := e.Uint(order, 0); ok {
			if sub := w.read(off, "InteropIFD"); sub != nil {
				w.emit(w.d.Attrs, sub, tags.InteropIFD, false)
			}
		}
	}
	if e, ok := d.Find(tags.TagMakerNote); ok {
		w.makerNote(e)
	}
}

func (w *walker) makerNote(e *ifd.Entry) {
	res, err := makernote.Decode(w.r, e, w.maker)
	if err != nil {
		if errors.Cause(err) == makernote.ErrUnsupported {
			exifLogger.Debugf(nil, "makernote skipped: %s", err.Error())
			return
		}
		w.warn(errors.Wrap(err, "MakerNote"))
		return
	}
	w.d.Vendor = res.Vendor
	w.d.Attrs.SetIfAbsent(res.Vendor.String(), attrs.Group(res.Attrs))
	if len(res.Preview) > len(w.d.Preview) {
		w.d.Preview = res.Preview
	}
}

// page describes one image directory.
func (w *walker) page(d *ifd.IFD) *attrs.Attrs {
	p := attrs.New()
	w.emit(p, d, tags.IFD0, true)
	p.Set("IFDOffset", attrs.UInt64(d.Offset))
	return p
}

// thumbnail treats an IFD1 carrying a JPEG interchange pointer as the
// thumbnail directory. It reports whether d was consumed.
func (w *walker) thumbnail(d *ifd.IFD) bool {
	if _, ok := d.Find(tags.TagThumbnailOffset); !ok {
		return false
	}
	if jpg := w.jpegAt(d); jpg != nil {
		w.d.Thumbnail = jpg
	}
	return true
}

// embeddedJPEG keeps the largest JPEG found in a SubIFD as the preview.
func (w *walker) embeddedJPEG(d *ifd.IFD) {
	if jpg := w.jpegAt(d); len(jpg) > len(w.d.Preview) {
		w.d.Preview = jpg
	}
}

// jpegAt returns the JPEG addressed by the interchange tags of d, or nil
// when the tags are missing, out of bounds or not JPEG compressed.
func (w *walker) jpegAt(d *ifd.IFD) []byte {
	order := w.r.Order()
	if e, ok := d.Find(tags.TagCompression); ok {
		if c, _ := e.Uint(order, 0); c != 6 && c != 7 {
			return nil
		}
	}
	oe, ok1 := d.Find(tags.TagThumbnailOffset)
	le, ok2 := d.Find(tags.TagThumbnailLength)
	if !ok1 || !ok2 {
		return nil
	}
	off, _ := oe.Uint(order, 0)
	n, _ := le.Uint(order, 0)
	data := w.r.Data()
	if n == 0 || n >= maxThumbnail || off >= uint64(len(data)) || n > uint64(len(data))-off {
		exifLogger.Debugf(nil, "JPEG at %d+%d ignored", off, n)
		return nil
	}
	jpg := data[off : off+n]
	if !bytes.HasPrefix(jpg, []byte{0xFF, 0xD8}) {
		return nil
	}
	return append([]byte(nil), jpg...)
}

// DecodeDir reads only the first directory of a standalone TIFF, naming its
// tags in ctx. CR3 files store each EXIF directory as its own TIFF.
func DecodeDir(tiff []byte, ctx tags.Context) (*attrs.Attrs, error) {
	r, h, err := ifd.Open(tiff)
	if err != nil {
		return nil, err
	}
	d, err := r.ReadIFD(h.FirstIFD)
	if err != nil {
		return nil, errors.Wrapf(err, "%s directory", ctx)
	}
	w := &walker{r: r, visited: map[uint64]bool{h.FirstIFD: true}, d: &Data{Attrs: attrs.New()}}
	w.emit(w.d.Attrs, d, ctx, false)
	return w.d.Attrs, r.Warnings()
}
