package writer

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/iptc"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

// maxSegment is the largest payload a marker segment can carry once the
// two length bytes are taken.
const maxSegment = 0xFFFF - 2

// WriteJPEG replaces the EXIF, XMP and Photoshop segments of a JPEG. The
// new segments follow SOI and any leading JFIF APP0; every other segment
// and the entropy-coded data are copied unchanged.
func WriteJPEG(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	p, err := rebuild(m)
	if err != nil {
		return err
	}
	if p == nil {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	segs, scan, err := image.ReadSegments(r)
	if err != nil {
		return errors.Wrap(err, "reading JPEG segments")
	}
	out, err := layoutJPEG(segs, p, isJPEGMeta)
	if err != nil {
		return err
	}
	return emitJPEG(w, r, out, scan)
}

// isJPEGMeta reports the segments a write regenerates.
func isJPEGMeta(s image.Segment) bool {
	return s.Is(image.MarkerAPP1, blocks.ExifHeader) ||
		s.Is(image.MarkerAPP1, xmp.JPEGHeader) ||
		s.Is(image.MarkerAPP1, xmp.ExtensionHeader) ||
		s.Is(image.MarkerAPP13, iptc.PhotoshopHeader)
}

// layoutJPEG drops the segments selected by drop and inserts the blocks of
// p. The Photoshop resources of dropped APP13 segments are carried into the
// new one when p keeps resources.
func layoutJPEG(segs []image.Segment, p *payload, drop func(image.Segment) bool) ([]image.Segment, error) {
	var irb []byte
	var kept []image.Segment
	for _, s := range segs {
		if !drop(s) {
			kept = append(kept, s)
			continue
		}
		if s.Is(image.MarkerAPP13, iptc.PhotoshopHeader) {
			irb = append(irb, s.Data[len(iptc.PhotoshopHeader):]...)
		}
	}

	var meta []image.Segment
	if p.exif != nil {
		data := append([]byte(blocks.ExifHeader), p.exif...)
		if err := limit(len(data), maxSegment); err != nil {
			return nil, errors.Wrap(err, "EXIF segment")
		}
		meta = append(meta, image.Segment{Marker: image.MarkerAPP1, Data: data})
	}
	if p.xmp != nil {
		data := append([]byte(xmp.JPEGHeader), p.xmp...)
		if err := limit(len(data), maxSegment); err != nil {
			return nil, errors.Wrap(err, "XMP segment")
		}
		meta = append(meta, image.Segment{Marker: image.MarkerAPP1, Data: data})
	}
	if res := p.photoshop(irb); res != nil {
		data := append([]byte(iptc.PhotoshopHeader), res...)
		if err := limit(len(data), maxSegment); err != nil {
			return nil, errors.Wrap(err, "Photoshop segment")
		}
		meta = append(meta, image.Segment{Marker: image.MarkerAPP13, Data: data})
	}

	// JFIF requires its APP0 to follow SOI directly.
	lead := 0
	for lead < len(kept) && kept[lead].Is(image.MarkerAPP0, "JFIF\x00") {
		lead++
	}
	out := make([]image.Segment, 0, len(kept)+len(meta))
	out = append(out, kept[:lead]...)
	out = append(out, meta...)
	return append(out, kept[lead:]...), nil
}

// emitJPEG writes SOI and segs, then copies the source from scan on.
func emitJPEG(w io.Writer, r io.ReadSeeker, segs []image.Segment, scan int64) error {
	var b bytes.Buffer
	b.Write([]byte{0xFF, image.MarkerSOI})
	for _, s := range segs {
		b.Write([]byte{0xFF, s.Marker})
		if standalone(s.Marker) {
			continue
		}
		if err := limit(len(s.Data), maxSegment); err != nil {
			return err
		}
		binary.Write(&b, binary.BigEndian, uint16(len(s.Data)+2))
		b.Write(s.Data)
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return &core.IOError{Err: err}
	}
	if _, err := r.Seek(scan, io.SeekStart); err != nil {
		return &core.IOError{Err: err}
	}
	_, err := io.Copy(w, r)
	return wrapIO(err)
}

// standalone reports markers without a length field.
func standalone(marker byte) bool {
	return marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7)
}

func wrapIO(err error) error {
	if err != nil {
		return &core.IOError{Err: err}
	}
	return nil
}
