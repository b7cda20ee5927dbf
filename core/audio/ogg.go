package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/bmff"
)

// oggTail is how far from the end the last page is searched for.
const oggTail = 64 << 10

// oggPage is the header of one Ogg page and the packet data it carries.
type oggPage struct {
	granule uint64
	serial  uint32
	data    []byte
}

// readOggPage decodes the page at the start of b and returns its length.
func readOggPage(b []byte) (oggPage, int, error) {
	if len(b) < 27 || string(b[:4]) != "OggS" {
		return oggPage{}, 0, core.Structure("ogg: missing capture pattern")
	}
	nseg := int(b[26])
	if len(b) < 27+nseg {
		return oggPage{}, 0, core.EOF(27+nseg, len(b))
	}
	n := 0
	for _, s := range b[27 : 27+nseg] {
		n += int(s)
	}
	end := 27 + nseg + n
	if len(b) < end {
		return oggPage{}, 0, core.EOF(end, len(b))
	}
	p := oggPage{
		granule: binary.LittleEndian.Uint64(b[6:]),
		serial:  binary.LittleEndian.Uint32(b[14:]),
		data:    b[27+nseg : end],
	}
	return p, end, nil
}

func parseOGG(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	head, err := core.ReadAt(r, 0, min(size, 64<<10), size)
	if err != nil {
		return nil, err
	}
	first, _, err := readOggPage(head)
	if err != nil {
		return nil, err
	}
	codec, rate, preskip := oggIdent(m, first.data)
	if codec == "" {
		m.Warn(core.Structure("ogg: unknown codec in first packet"))
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &core.IOError{Err: err}
	}
	if t, err := tag.ReadOGGTags(r); err == nil {
		oggTags(m, t)
	} else if codec == "Vorbis" || codec == "Opus" {
		m.Warn(errors.Wrap(err, "ogg comments"))
	}
	if rate > 0 {
		tail, err := core.ReadAt(r, max(0, size-oggTail), min(size, oggTail), size)
		if err == nil {
			if g, ok := lastGranule(tail, first.serial); ok && g > preskip {
				setDuration(m, float64(g-preskip)/float64(rate))
			}
		}
	}
	return m, nil
}

// oggIdent decodes the identification packet and returns the codec, the
// granule rate and the Opus pre-skip.
func oggIdent(m *core.Metadata, p []byte) (string, uint32, uint64) {
	le := binary.LittleEndian
	switch {
	case bytes.HasPrefix(p, []byte("\x01vorbis")) && len(p) >= 28:
		rate := le.Uint32(p[12:])
		m.Attrs.Set("Ogg:Codec", attrs.Str("Vorbis"))
		m.Attrs.Set("Vorbis:Version", attrs.UInt(le.Uint32(p[7:])))
		setStream(m, rate, uint32(p[11]), 0)
		if br := int32(le.Uint32(p[20:])); br > 0 {
			m.Attrs.Set("Audio:Bitrate", attrs.UInt(uint32(br)))
		}
		return "Vorbis", rate, 0
	case bytes.HasPrefix(p, []byte("OpusHead")) && len(p) >= 19:
		m.Attrs.Set("Ogg:Codec", attrs.Str("Opus"))
		m.Attrs.Set("Opus:Version", attrs.UInt(uint32(p[8])))
		m.Attrs.Set("Opus:PreSkip", attrs.UInt(uint32(le.Uint16(p[10:]))))
		m.Attrs.Set("Opus:OutputGain", attrs.Double(float64(int16(le.Uint16(p[16:])))/256))
		setStream(m, le.Uint32(p[12:]), uint32(p[9]), 0)
		// Opus granules always count 48 kHz samples.
		return "Opus", 48000, uint64(le.Uint16(p[10:]))
	case bytes.HasPrefix(p, []byte("Speex   ")) && len(p) >= 52:
		m.Attrs.Set("Ogg:Codec", attrs.Str("Speex"))
		rate := le.Uint32(p[36:])
		setStream(m, rate, le.Uint32(p[48:]), 0)
		return "Speex", rate, 0
	case bytes.HasPrefix(p, []byte("\x7FFLAC")) && len(p) >= 51:
		m.Attrs.Set("Ogg:Codec", attrs.Str("FLAC"))
		// Mapping header, then the native "fLaC" and a STREAMINFO block.
		if err := flacBlock(m, flacStreamInfo, p[17:]); err != nil {
			m.Warn(errors.Wrap(err, "ogg flac streaminfo"))
		}
		rate, _ := m.Attrs.GetUInt("Audio:SampleRate")
		return "FLAC", rate, 0
	}
	return "", 0, 0
}

// oggTags copies Vorbis comments read by the tag library.
func oggTags(m *core.Metadata, t tag.Metadata) {
	for k, v := range t.Raw() {
		if s, ok := v.(string); ok && s != "" {
			m.Attrs.SetIfAbsent("Vorbis:"+strings.ToUpper(k), attrs.Str(s))
		}
	}
	if p := t.Picture(); p != nil {
		m.Attrs.Set("Vorbis:PictureMIMEType", attrs.Str(p.MIMEType))
		m.Attrs.Set("Vorbis:PictureLength", attrs.UInt(uint32(len(p.Data))))
		if m.Preview == nil {
			m.Preview = p.Data
		}
	}
}

// lastGranule finds the granule position of the last complete page of the
// logical stream serial in tail.
func lastGranule(tail []byte, serial uint32) (uint64, bool) {
	for i := bytes.LastIndex(tail, []byte("OggS")); i >= 0; i = bytes.LastIndex(tail[:i], []byte("OggS")) {
		p, _, err := readOggPage(tail[i:])
		if err == nil && p.serial == serial && p.granule != ^uint64(0) {
			return p.granule, true
		}
	}
	return 0, false
}

// ─── M4A ─────────────────────────────────────────────────────────────────────

func parseM4A(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "ftyp":
			data, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			major, _, compat := bmff.Brands(data)
			m.Attrs.Set("M4A:MajorBrand", attrs.Str(major))
			m.Attrs.Set("M4A:CompatibleBrands", attrs.Strs(compat))
		case "moov":
			data, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			if b, ok := bmff.Find(data, "mvhd"); ok {
				mh, err := bmff.ReadMovieHeader(b.Data)
				if err != nil {
					m.Warn(errors.Wrap(err, "mvhd"))
				} else {
					setDuration(m, mh.Seconds())
					if !mh.Created.IsZero() {
						m.Attrs.Set("M4A:CreateDate", attrs.DateTime(mh.Created))
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		m.Warn(err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &core.IOError{Err: err}
	}
	t, err := tag.ReadAtoms(r)
	if err != nil {
		m.Warn(errors.Wrap(err, "itunes atoms"))
		return m, nil
	}
	addTag(m, t, "ITunes")
	return m, nil
}
