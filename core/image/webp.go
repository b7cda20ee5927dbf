package image

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/vp8"
	"golang.org/x/image/vp8l"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

// VP8X feature flags.
const (
	VP8XAnimation = 0x02
	VP8XXMP       = 0x04
	VP8XEXIF      = 0x08
	VP8XAlpha     = 0x10
	VP8XICC       = 0x20
)

// uint24 reads a little-endian 24-bit value.
func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// ─── Parse ───────────────────────────────────────────────────────────────────

func parseWebP(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	form, chunks, err := chunk.ReadRIFF(r)
	if form != "WEBP" {
		if err == nil {
			err = core.Structure("riff: form %q is not WEBP", form)
		}
		return nil, err
	}
	if err != nil {
		m.Warn(err)
	}
	frames := 0
	for _, c := range chunks {
		if err := webpChunk(m, c); err != nil {
			m.Warn(errors.Wrapf(err, "webp %q chunk", c.ID))
		}
		if c.ID == "ANMF" {
			frames++
		}
	}
	if frames > 0 {
		m.Attrs.Set("WebP:FrameCount", attrs.UInt(uint32(frames)))
	}
	m.Attrs.SetIfAbsent("WebP:Animation", attrs.Bool(false))
	return m, nil
}

func webpChunk(m *core.Metadata, c chunk.Chunk) error {
	d := c.Data
	switch c.ID {
	case "VP8X":
		if len(d) < 10 {
			return core.EOF(10, len(d))
		}
		flags := d[0]
		m.Attrs.Set("WebP:Animation", attrs.Bool(flags&VP8XAnimation != 0))
		m.Attrs.Set("WebP:Alpha", attrs.Bool(flags&VP8XAlpha != 0))
		m.Attrs.Set("File:ImageWidth", attrs.UInt(uint24(d[4:])+1))
		m.Attrs.Set("File:ImageHeight", attrs.UInt(uint24(d[7:])+1))
	case "VP8 ":
		dec := vp8.NewDecoder()
		dec.Init(bytes.NewReader(d), len(d))
		fh, err := dec.DecodeFrameHeader()
		if err != nil {
			return err
		}
		m.Attrs.Set("WebP:Encoding", attrs.Str("Lossy"))
		m.Attrs.Set("WebP:VP8Version", attrs.UInt(uint32(fh.VersionNumber)))
		m.Attrs.SetIfAbsent("File:ImageWidth", attrs.UInt(uint32(fh.Width)))
		m.Attrs.SetIfAbsent("File:ImageHeight", attrs.UInt(uint32(fh.Height)))
		if fh.XScale != 0 || fh.YScale != 0 {
			m.Attrs.Set("WebP:HorizontalScale", attrs.UInt(uint32(fh.XScale)))
			m.Attrs.Set("WebP:VerticalScale", attrs.UInt(uint32(fh.YScale)))
		}
	case "VP8L":
		cfg, err := vp8l.DecodeConfig(bytes.NewReader(d))
		if err != nil {
			return err
		}
		m.Attrs.Set("WebP:Encoding", attrs.Str("Lossless"))
		m.Attrs.SetIfAbsent("File:ImageWidth", attrs.UInt(uint32(cfg.Width)))
		m.Attrs.SetIfAbsent("File:ImageHeight", attrs.UInt(uint32(cfg.Height)))
		if len(d) >= 5 {
			m.Attrs.SetIfAbsent("WebP:Alpha", attrs.Bool(binary.LittleEndian.Uint32(d[1:])>>28&1 != 0))
		}
	case "ALPH":
		m.Attrs.Set("WebP:Alpha", attrs.Bool(true))
	case "ANIM":
		if len(d) < 6 {
			return core.EOF(6, len(d))
		}
		m.Attrs.Set("WebP:BackgroundColor", attrs.UInt(binary.LittleEndian.Uint32(d)))
		m.Attrs.Set("WebP:AnimationLoopCount", attrs.UInt(uint32(binary.LittleEndian.Uint16(d[4:]))))
	case "ANMF":
		if len(d) >= 16 {
			n, _ := m.Attrs.GetUInt("WebP:Duration")
			m.Attrs.Set("WebP:Duration", attrs.UInt(n+uint24(d[12:])))
		}
	case "ICCP":
		blocks.ICC(m, d)
	case "EXIF":
		tiff, _ := blocks.TrimExifHeader(d)
		blocks.EXIF(m, tiff, -1)
	case "XMP ", "XMP\x00":
		blocks.XMP(m, d)
	}
	return nil
}
