package writer

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/icc"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/registry"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

// GIF block introducers and labels.
const (
	gifExtension   = 0x21
	gifComment     = 0xFE
	gifApplication = 0xFF
)

// pngAncillary are the chunks StripAll removes besides the textual and
// EXIF ones.
var pngAncillary = map[string]bool{
	"iCCP": true, "sRGB": true, "gAMA": true, "cHRM": true, "bKGD": true,
	"hIST": true, "pHYs": true, "sBIT": true, "sPLT": true,
}

// Strip removes metadata from the file at path and writes the result as
// WriteFile does.
func Strip(path string, so core.StripOptions, opts Options) error {
	return replace(path, opts, func(src io.ReadSeeker, dst io.Writer) error {
		return StripStream(src, dst, so)
	})
}

// StripStream copies a JPEG, PNG, WebP or GIF from r to w without its
// metadata. With StripGPS only the GPS directory of the EXIF block goes.
// Otherwise EXIF, XMP, IPTC and textual blocks are dropped, and StripAll
// also drops ICC profiles, comments and the remaining ancillary data. Keys
// named in KeepFields are written back into fresh blocks.
func StripStream(r io.ReadSeeker, w io.Writer, so core.StripOptions) error {
	prefix, err := core.ReadPrefix(r, core.PrefixSize)
	if err != nil {
		return err
	}
	p, ok := registry.Detect(prefix)
	if !ok {
		return core.ErrUnknownFormat
	}
	format := p.Info().Name

	keep, kept := &payload{}, attrs.New()
	if len(so.KeepFields) > 0 && !so.StripGPS {
		m, err := registry.Parse(r)
		if err != nil {
			return errors.Wrap(err, "reading fields to keep")
		}
		kept = keptAttrs(m.Attrs, so.KeepFields)
		if keep, err = encode(kept, nil); err != nil {
			return err
		}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return &core.IOError{Err: err}
	}

	switch format {
	case image.JPEG:
		return stripJPEG(r, w, so, keep)
	case image.PNG:
		return stripPNG(r, w, so, keep, kept)
	case image.WebP:
		return stripWebP(r, w, so, keep)
	case image.GIF:
		return stripGIF(r, w, so)
	}
	return &core.UnsupportedWriteError{Format: format, Reason: "stripping covers JPEG, PNG, WebP and GIF"}
}

// keptAttrs selects the keys of a listed in keep. An entry without a colon
// keeps a whole namespace ("DC", "IPTC", or "EXIF" for the bare EXIF
// names) as well as a key of that name.
func keptAttrs(a *attrs.Attrs, keep []string) *attrs.Attrs {
	out := attrs.New()
	for _, e := range a.Entries() {
		ns, _, ok := strings.Cut(e.Key, ":")
		if !ok {
			ns = "EXIF"
		}
		for _, k := range keep {
			if k == e.Key || k == "EXIF:"+e.Key || (!strings.Contains(k, ":") && strings.EqualFold(k, ns)) {
				out.Set(e.Key, e.Value)
				break
			}
		}
	}
	return out
}

func stripJPEG(r io.ReadSeeker, w io.Writer, so core.StripOptions, keep *payload) error {
	segs, scan, err := image.ReadSegments(r)
	if err != nil {
		return errors.Wrap(err, "reading JPEG segments")
	}
	if so.StripGPS && !so.StripAll {
		for i, s := range segs {
			if !s.Is(image.MarkerAPP1, blocks.ExifHeader) {
				continue
			}
			tiff, err := dropGPS(s.Data[len(blocks.ExifHeader):])
			if err != nil {
				return err
			}
			segs[i].Data = append([]byte(blocks.ExifHeader), tiff...)
		}
		return emitJPEG(w, r, segs, scan)
	}
	drop := func(s image.Segment) bool {
		switch {
		case isJPEGMeta(s), s.Marker == image.MarkerAPP12:
			return true
		case !so.StripAll:
			return false
		case s.Marker == image.MarkerCOM, s.Is(image.MarkerAPP2, icc.JPEGHeader):
			return true
		}
		// JFIF and Adobe segments describe the image data.
		return s.Marker >= image.MarkerAPP0 && s.Marker <= 0xEF &&
			!s.Is(image.MarkerAPP0, "JFIF\x00") && !s.Is(image.MarkerAPP14, "Adobe")
	}
	out, err := layoutJPEG(segs, keep, drop)
	if err != nil {
		return err
	}
	return emitJPEG(w, r, out, scan)
}

func stripPNG(r io.ReadSeeker, w io.Writer, so core.StripOptions, keep *payload, kept *attrs.Attrs) error {
	chunks, err := image.ReadChunks(r)
	if err != nil {
		return errors.Wrap(err, "reading PNG chunks")
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return core.Structure("png: first chunk is not IHDR")
	}
	if so.StripGPS && !so.StripAll {
		for i, c := range chunks {
			if c.Type != "eXIf" {
				continue
			}
			tiff, skip := blocks.TrimExifHeader(c.Data)
			if tiff, err = dropGPS(tiff); err != nil {
				return err
			}
			chunks[i].Data = append(c.Data[:skip:skip], tiff...)
		}
		return emitPNG(w, chunks)
	}
	out := []image.Chunk{chunks[0]}
	if res := keep.photoshop(nil); res != nil {
		out = append(out, iptcProfile(res))
	}
	out = keep.pngChunks(out)
	for _, c := range chunks[1:] {
		switch {
		case c.Type == "eXIf", c.Type == "tIME":
			continue
		case c.Type == "tEXt", c.Type == "zTXt", c.Type == "iTXt":
			if t, ok := decodeText(c); !ok || t.profile != "" || !kept.Contains(t.attr()) {
				continue
			}
		case so.StripAll && pngAncillary[c.Type]:
			continue
		}
		out = append(out, c)
	}
	return emitPNG(w, out)
}

// iptcProfile wraps an image-resource block in an ImageMagick raw profile.
func iptcProfile(res []byte) image.Chunk {
	return image.Chunk{Type: "tEXt", Data: []byte("Raw profile type iptc\x00" + image.EncodeRawProfile("iptc", res))}
}

func stripWebP(r io.ReadSeeker, w io.Writer, so core.StripOptions, keep *payload) error {
	f, err := readWebP(r)
	if err != nil {
		return err
	}
	if so.StripGPS && !so.StripAll {
		if f.exif != nil {
			if f.exif, err = dropGPS(f.exif); err != nil {
				return err
			}
		}
		return f.emit(w)
	}
	f.exif, f.xmp = keep.exif, keep.xmp
	if so.StripAll {
		f.iccp = nil
	}
	return f.emit(w)
}

func stripGIF(r io.ReadSeeker, w io.Writer, so core.StripOptions) error {
	data, err := core.ReadAll(r)
	if err != nil {
		return err
	}
	if so.StripGPS && !so.StripAll {
		_, err := w.Write(data)
		return wrapIO(err)
	}
	header, blks, err := image.ReadGIF(data)
	if err != nil {
		return errors.Wrap(err, "reading GIF blocks")
	}
	out := append([]byte(nil), data[:header]...)
	for _, b := range blks {
		if b.Kind == gifExtension {
			switch b.Label {
			case gifComment:
				continue
			case gifApplication:
				id := b.Body
				if len(id) > 1 {
					id = id[1:]
				}
				animation := bytes.HasPrefix(id, []byte("NETSCAPE2.0")) || bytes.HasPrefix(id, []byte("ANIMEXTS1.0"))
				if bytes.HasPrefix(id, []byte("XMP DataXMP")) || (so.StripAll && !animation) {
					continue
				}
			}
		}
		out = append(out, data[b.Start:b.End]...)
	}
	_, err = w.Write(out)
	return wrapIO(err)
}

// dropGPS removes the GPS directory from a TIFF block in place of a full
// rewrite: the pointer entry leaves IFD0 and the directory and its values
// are zeroed. Everything else keeps its offset.
func dropGPS(tiff []byte) ([]byte, error) {
	rd, h, err := ifd.Open(tiff)
	if err != nil {
		return nil, errors.Wrap(err, "reading EXIF")
	}
	if h.BigTIFF {
		return nil, &core.UnsupportedWriteError{Format: "BigTIFF", Reason: "GPS removal needs classic TIFF"}
	}
	d0, err := rd.ReadIFD(h.FirstIFD)
	if err != nil {
		return nil, errors.Wrap(err, "reading IFD0")
	}
	ptr, ok := d0.Find(tags.TagGPSIFD)
	if !ok {
		return tiff, nil
	}
	o := h.Order
	out := append([]byte(nil), tiff...)

	if off, ok := ptr.Uint(o, 0); ok {
		if gps, err := rd.ReadIFD(off); err == nil {
			for _, e := range gps.Entries {
				if e.DataOffset >= 0 {
					clear(out[e.DataOffset : e.DataOffset+int64(len(e.Raw))])
				}
			}
			end := min(off+2+12*uint64(len(gps.Entries))+4, uint64(len(out)))
			clear(out[off:end])
		}
	}

	first := h.FirstIFD
	count := uint64(o.Uint16(out[first:]))
	table := first + 2
	next := table + 12*count
	if next+4 > uint64(len(out)) {
		return nil, core.EOF(int(next+4), len(out))
	}
	for i := uint64(0); i < count; i++ {
		at := table + 12*i
		if o.Uint16(out[at:]) != tags.TagGPSIFD {
			continue
		}
		copy(out[at:], out[at+12:next+4])
		clear(out[next-8 : next+4])
		o.PutUint16(out[first:], uint16(count-1))
		break
	}
	return out, nil
}
