package audio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

var aiffText = map[string]string{
	"NAME": "AIFF:Name",
	"AUTH": "AIFF:Author",
	"(c) ": "AIFF:Copyright",
}

func parseAIFF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	head, err := core.ReadAt(r, 0, 12, size)
	if err != nil {
		return nil, err
	}
	form := string(head[8:12])
	m.Attrs.Set("AIFF:FormType", attrs.Str(form))
	end := min(size, 8+int64(binary.BigEndian.Uint32(head[4:])))
	chunks, err := chunk.ReadIFF(r, 12, end, false)
	if err != nil {
		m.Warn(errors.Wrap(err, "aiff chunks"))
	}
	var annotations []string
	for _, c := range chunks {
		d := c.Data
		switch c.ID {
		case "COMM":
			if err := aiffCommon(m, d, form == "AIFC"); err != nil {
				m.Warn(errors.Wrap(err, "aiff COMM"))
			}
		case "FVER":
			if len(d) >= 4 {
				m.Attrs.Set("AIFF:FormatVersionTime", attrs.UInt(binary.BigEndian.Uint32(d)))
			}
		case "NAME", "AUTH", "(c) ":
			setText(m, aiffText[c.ID], d)
		case "ANNO":
			if s := text(d); s != "" {
				annotations = append(annotations, s)
			}
		case "COMT":
			aiffComments(m, d)
		case "MARK":
			if len(d) >= 2 {
				m.Attrs.Set("AIFF:Markers", attrs.UInt(uint32(binary.BigEndian.Uint16(d))))
			}
		case "SSND":
			m.Attrs.Set("AIFF:SoundDataSize", attrs.UInt64(uint64(c.Size)))
		case "ID3 ", "id3 ":
			id3Chunk(m, d)
		}
	}
	if len(annotations) > 0 {
		m.Attrs.Set("AIFF:Annotation", attrs.Strs(annotations))
	}
	return m, nil
}

// aiffCommon decodes COMM. The sample rate is an 80-bit IEEE extended
// float; AIFC appends a compression type and name.
func aiffCommon(m *core.Metadata, d []byte, aifc bool) error {
	if len(d) < 18 {
		return core.EOF(18, len(d))
	}
	be := binary.BigEndian
	channels := uint32(be.Uint16(d))
	frames := be.Uint32(d[2:])
	bits := uint32(be.Uint16(d[6:]))
	rate := extended(d[8:18])
	setStream(m, uint32(rate+0.5), channels, bits)
	m.Attrs.Set("AIFF:NumSampleFrames", attrs.UInt(frames))
	if rate > 0 {
		setDuration(m, float64(frames)/rate)
	}
	if aifc && len(d) >= 22 {
		m.Attrs.Set("AIFF:CompressionType", attrs.Str(string(d[18:22])))
		if len(d) > 22 {
			n := int(d[22])
			if 23+n <= len(d) {
				setText(m, "AIFF:CompressorName", d[23:23+n])
			}
		}
	}
	return nil
}

// extended converts an 80-bit IEEE 754 extended precision value.
func extended(b []byte) float64 {
	exp := int(binary.BigEndian.Uint16(b) & 0x7FFF)
	mant := binary.BigEndian.Uint64(b[2:])
	if exp == 0 && mant == 0 {
		return 0
	}
	v := math.Ldexp(float64(mant), exp-16383-63)
	if b[0]&0x80 != 0 {
		v = -v
	}
	return v
}

// aiffComments reads the text of a COMT chunk: a count, then timestamped
// comments with a length-prefixed, even-padded text.
func aiffComments(m *core.Metadata, d []byte) {
	if len(d) < 2 {
		return
	}
	n := int(binary.BigEndian.Uint16(d))
	var out []string
	pos := 2
	for i := 0; i < n && pos+8 <= len(d); i++ {
		l := int(binary.BigEndian.Uint16(d[pos+6:]))
		pos += 8
		if pos+l > len(d) {
			break
		}
		if s := text(d[pos : pos+l]); s != "" {
			out = append(out, s)
		}
		pos += l + l%2
	}
	if len(out) > 0 {
		m.Attrs.Set("AIFF:Comment", attrs.Strs(out))
	}
}
