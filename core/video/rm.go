package video

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

var rmContentFields = []string{"Title", "Author", "Copyright", "Comment"}

// parseRM walks the RealMedia header chunks up to DATA. Each chunk is a
// four-character id, a big-endian size that includes the 10-byte header,
// and a 16-bit object version.
func parseRM(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	var mimes []string
	for pos, i := int64(0), 0; pos+10 <= size; i++ {
		if i >= core.MaxWalkIterations {
			videoLogger.Debugf(nil, "rm: stopped after %d chunks", i)
			break
		}
		h, err := core.ReadAt(r, pos, 10, size)
		if err != nil {
			return nil, err
		}
		id := string(h[:4])
		n := int64(binary.BigEndian.Uint32(h[4:]))
		if pos == 0 && id != ".RMF" {
			return nil, core.Structure("rm: missing .RMF header")
		}
		if id == "DATA" {
			break
		}
		if n < 10 || n > size-pos {
			m.Warn(&core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(n), DataLen: uint64(size)})
			break
		}
		body, err := core.ReadAt(r, pos+10, n-10, size)
		if err != nil {
			m.Warn(errors.Wrapf(err, "rm %q chunk", id))
			break
		}
		switch id {
		case ".RMF":
			if len(body) >= 8 {
				m.Attrs.Set("RM:FileVersion", attrs.UInt(binary.BigEndian.Uint32(body)))
				m.Attrs.Set("RM:NumHeaders", attrs.UInt(binary.BigEndian.Uint32(body[4:])))
			}
		case "PROP":
			err = rmProperties(m, body)
		case "MDPR":
			var mime string
			mime, err = rmMediaProperties(m, body)
			if mime != "" {
				mimes = append(mimes, mime)
			}
		case "CONT":
			err = rmContent(m, body)
		}
		if err != nil {
			m.Warn(errors.Wrapf(err, "rm %q chunk", id))
		}
		pos += n
	}
	if len(mimes) > 0 {
		m.Attrs.Set("RM:StreamMimeTypes", attrs.Strs(mimes))
	}
	return m, nil
}

func rmProperties(m *core.Metadata, d []byte) error {
	if len(d) < 40 {
		return core.EOF(40, len(d))
	}
	be := binary.BigEndian
	m.Attrs.Set("RM:MaxBitrate", attrs.UInt(be.Uint32(d)))
	m.Attrs.Set("RM:AvgBitrate", attrs.UInt(be.Uint32(d[4:])))
	m.Attrs.Set("RM:NumPackets", attrs.UInt(be.Uint32(d[16:])))
	ms := be.Uint32(d[20:])
	m.Attrs.Set("RM:Duration", attrs.UInt(ms))
	m.Attrs.Set("RM:Preroll", attrs.UInt(be.Uint32(d[24:])))
	m.Attrs.Set("RM:NumStreams", attrs.UInt(uint32(be.Uint16(d[36:]))))
	m.Attrs.Set("RM:Flags", attrs.UInt(uint32(be.Uint16(d[38:]))))
	setDuration(m, float64(ms)/1e3)
	return nil
}

// rmMediaProperties decodes one stream header and returns its MIME type.
func rmMediaProperties(m *core.Metadata, d []byte) (string, error) {
	if len(d) < 31 {
		return "", core.EOF(31, len(d))
	}
	pos := 30
	name, pos, ok := pascal(d, pos)
	if !ok {
		return "", core.EOF(pos, len(d))
	}
	mime, pos, ok := pascal(d, pos)
	if !ok {
		return "", core.EOF(pos, len(d))
	}
	setStr(m, "RM:StreamName", name)
	switch {
	case len(mime) >= 6 && mime[:6] == "video/":
		setStr(m, "RM:VideoMimeType", mime)
	case len(mime) >= 6 && mime[:6] == "audio/":
		setStr(m, "RM:AudioMimeType", mime)
	}
	return mime, nil
}

func rmContent(m *core.Metadata, d []byte) error {
	pos := 0
	for _, name := range rmContentFields {
		if pos+2 > len(d) {
			return core.EOF(pos+2, len(d))
		}
		n := int(binary.BigEndian.Uint16(d[pos:]))
		pos += 2
		if pos+n > len(d) {
			return &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(n), DataLen: uint64(len(d))}
		}
		setStr(m, "RM:"+name, trimText(d[pos:pos+n]))
		pos += n
	}
	return nil
}

// pascal reads a string prefixed by a one-byte length.
func pascal(d []byte, pos int) (string, int, bool) {
	if pos >= len(d) {
		return "", pos + 1, false
	}
	n := int(d[pos])
	if pos+1+n > len(d) {
		return "", pos + 1 + n, false
	}
	return string(d[pos+1 : pos+1+n]), pos + 1 + n, true
}
