package writer

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/vp8"
	"golang.org/x/image/vp8l"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
	"github.com/ankit-chaubey/metasurgery/core/image"
)

// webpFile is a WebP split into the chunk kinds the layout cares about.
type webpFile struct {
	vp8x  []byte
	iccp  *chunk.Chunk
	anim  *chunk.Chunk
	anmf  []chunk.Chunk
	alph  *chunk.Chunk
	image *chunk.Chunk
	exif  []byte
	xmp   []byte
	other []chunk.Chunk
}

// WriteWebP replaces the EXIF and XMP chunks of a still WebP and
// recomputes the VP8X header.
func WriteWebP(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	p, err := rebuild(m)
	if err != nil {
		return err
	}
	if p == nil {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	f, err := readWebP(r)
	if err != nil {
		return err
	}
	if f.animated() {
		return &core.UnsupportedWriteError{Format: image.WebP, Reason: "animated WebP is read-only"}
	}
	f.exif, f.xmp = p.exif, p.xmp
	return f.emit(w)
}

func readWebP(r io.Reader) (*webpFile, error) {
	form, chunks, err := chunk.ReadRIFF(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading WebP chunks")
	}
	if form != "WEBP" {
		return nil, core.Structure("riff: form %q is not WEBP", form)
	}
	f := &webpFile{}
	for i := range chunks {
		c := &chunks[i]
		switch c.ID {
		case "VP8X":
			if len(c.Data) < 10 {
				return nil, core.EOF(10, len(c.Data))
			}
			f.vp8x = c.Data
		case "ICCP":
			f.iccp = c
		case "ANIM":
			f.anim = c
		case "ANMF":
			f.anmf = append(f.anmf, *c)
		case "ALPH":
			f.alph = c
		case "VP8 ", "VP8L":
			f.image = c
		case "EXIF":
			f.exif, _ = blocks.TrimExifHeader(c.Data)
		case "XMP ", "XMP\x00":
			f.xmp = c.Data
		default:
			f.other = append(f.other, *c)
		}
	}
	if f.image == nil && len(f.anmf) == 0 {
		return nil, core.Structure("webp: no image data")
	}
	return f, nil
}

func (f *webpFile) animated() bool {
	return f.anim != nil || len(f.anmf) > 0 || (f.vp8x != nil && f.vp8x[0]&image.VP8XAnimation != 0)
}

// canvas returns the image size from VP8X or from the bitstream header.
func (f *webpFile) canvas() (uint32, uint32, error) {
	if f.vp8x != nil {
		return uint24(f.vp8x[4:]) + 1, uint24(f.vp8x[7:]) + 1, nil
	}
	d := f.image.Data
	if f.image.ID == "VP8L" {
		cfg, err := vp8l.DecodeConfig(bytes.NewReader(d))
		if err != nil {
			return 0, 0, errors.Wrap(err, "VP8L header")
		}
		return uint32(cfg.Width), uint32(cfg.Height), nil
	}
	dec := vp8.NewDecoder()
	dec.Init(bytes.NewReader(d), len(d))
	fh, err := dec.DecodeFrameHeader()
	if err != nil {
		return 0, 0, errors.Wrap(err, "VP8 header")
	}
	return uint32(fh.Width), uint32(fh.Height), nil
}

// alpha reports an ALPH chunk or the alpha hint of a lossless bitstream.
func (f *webpFile) alpha() bool {
	if f.alph != nil {
		return true
	}
	if f.image != nil && f.image.ID == "VP8L" && len(f.image.Data) >= 5 {
		return binary.LittleEndian.Uint32(f.image.Data[1:])>>28&1 != 0
	}
	return f.vp8x != nil && f.vp8x[0]&image.VP8XAlpha != 0
}

// emit writes the chunks in the order VP8X, ICCP, ANIM, ANMF, ALPH, image,
// EXIF, XMP, then any unknown chunks. VP8X is written only when a feature
// needs it.
func (f *webpFile) emit(w io.Writer) error {
	for _, b := range [][]byte{f.exif, f.xmp} {
		if err := limit(len(b), core.MaxChunkSize); err != nil {
			return err
		}
	}
	var flags byte
	if f.iccp != nil {
		flags |= image.VP8XICC
	}
	if f.alpha() {
		flags |= image.VP8XAlpha
	}
	if f.exif != nil {
		flags |= image.VP8XEXIF
	}
	if f.xmp != nil {
		flags |= image.VP8XXMP
	}
	if f.animated() {
		flags |= image.VP8XAnimation
	}

	var out []chunk.Chunk
	// A lone VP8L carries its own alpha flag, so alpha alone needs no VP8X
	// unless an ALPH chunk is present.
	if flags&^image.VP8XAlpha != 0 || f.alph != nil || len(f.other) > 0 {
		width, height, err := f.canvas()
		if err != nil {
			return err
		}
		hdr := make([]byte, 10)
		hdr[0] = flags
		putUint24(hdr[4:], width-1)
		putUint24(hdr[7:], height-1)
		out = append(out, chunk.Chunk{ID: "VP8X", Data: hdr})
	}
	for _, c := range []*chunk.Chunk{f.iccp, f.anim} {
		if c != nil {
			out = append(out, *c)
		}
	}
	out = append(out, f.anmf...)
	for _, c := range []*chunk.Chunk{f.alph, f.image} {
		if c != nil {
			out = append(out, *c)
		}
	}
	if f.exif != nil {
		out = append(out, chunk.Chunk{ID: "EXIF", Data: f.exif})
	}
	if f.xmp != nil {
		out = append(out, chunk.Chunk{ID: "XMP ", Data: f.xmp})
	}
	out = append(out, f.other...)
	_, err := w.Write(chunk.WriteRIFF("WEBP", out))
	return wrapIO(err)
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putUint24(b []byte, v uint32) {
	b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
}
