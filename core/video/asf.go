package video

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/audio"
)

type guid [16]byte

// ASF object GUIDs in their on-disk byte order.
var (
	guidHeader        = guid{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	guidFileProps     = guid{0xA1, 0xDC, 0xAB, 0x8C, 0x47, 0xA9, 0xCF, 0x11, 0x8E, 0xE4, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
	guidStreamProps   = guid{0x91, 0x07, 0xDC, 0xB7, 0xB7, 0xA9, 0xCF, 0x11, 0x8E, 0xE6, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
	guidContentDesc   = guid{0x33, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	guidExtContent    = guid{0x40, 0xA4, 0xD0, 0xD2, 0x07, 0xE3, 0xD2, 0x11, 0x97, 0xF0, 0x00, 0xA0, 0xC9, 0x5E, 0xA8, 0x50}
	guidAudioMedia    = guid{0x40, 0x9E, 0x69, 0xF8, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}
	guidVideoMedia    = guid{0xC0, 0xEF, 0x19, 0xBC, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}
	guidHeaderExt     = guid{0xB5, 0x03, 0xBF, 0x5F, 0x2E, 0xA9, 0xCF, 0x11, 0x8E, 0xE3, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
	guidCodecList     = guid{0x40, 0x52, 0xD1, 0x86, 0x1D, 0x31, 0xD0, 0x11, 0xA3, 0xA4, 0x00, 0xA0, 0xC9, 0x03, 0x48, 0xF6}
	contentDescFields = []string{"Title", "Author", "Copyright", "Description", "Rating"}
)

// fileTimeEpoch is 1601-01-01 in Unix seconds; FILETIME counts 100 ns
// ticks from it.
const fileTimeEpoch = -11644473600

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// utf16 decodes a NUL-terminated UTF-16LE string.
func utf16(b []byte) string {
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(s), "\x00")
}

func parseASF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	head, err := core.ReadAt(r, 0, min(30, size), size)
	if err != nil {
		return nil, err
	}
	if len(head) < 30 || !bytes.Equal(head[:16], guidHeader[:]) {
		return nil, core.Structure("asf: missing header object")
	}
	n := binary.LittleEndian.Uint64(head[16:])
	if n < 30 || n > uint64(size) {
		return nil, &core.ValueOutOfBoundsError{Offset: 16, Size: n, DataLen: uint64(size)}
	}
	body, err := core.ReadAt(r, 30, int64(n)-30, size)
	if err != nil {
		return nil, err
	}
	m.Attrs.Set("ASF:HeaderObjects", attrs.UInt(binary.LittleEndian.Uint32(head[24:])))
	hasVideo := asfObjects(m, body, 0)
	if hasVideo {
		m.Format = WMV
	} else {
		m.Format = WMA
	}
	return m, nil
}

// asfObjects walks a run of header objects and reports whether a video
// stream was seen.
func asfObjects(m *core.Metadata, data []byte, depth int) bool {
	video := false
	le := binary.LittleEndian
	for pos, i := 0, 0; pos+24 <= len(data); i++ {
		if i >= core.MaxWalkIterations {
			videoLogger.Debugf(nil, "asf: stopped after %d objects", i)
			break
		}
		var id guid
		copy(id[:], data[pos:])
		size := le.Uint64(data[pos+16:])
		if size < 24 || size > uint64(len(data)-pos) {
			m.Warn(&core.ValueOutOfBoundsError{Offset: uint64(pos), Size: size, DataLen: uint64(len(data))})
			break
		}
		obj := data[pos+24 : pos+int(size)]
		var err error
		switch id {
		case guidFileProps:
			err = fileProperties(m, obj)
		case guidStreamProps:
			var v bool
			v, err = streamProperties(m, obj)
			video = video || v
		case guidContentDesc:
			err = contentDescription(m, obj)
		case guidExtContent:
			err = extendedContent(m, obj)
		case guidCodecList:
			codecList(m, obj)
		case guidHeaderExt:
			// 16-byte reserved GUID, 2 reserved bytes, 4-byte data size.
			if depth == 0 && len(obj) >= 22 {
				video = asfObjects(m, obj[22:], depth+1) || video
			}
		default:
			videoLogger.Debugf(nil, "asf: skipping object %s", id)
		}
		if err != nil {
			m.Warn(errors.Wrap(err, "asf object"))
		}
		pos += int(size)
	}
	return video
}

func fileProperties(m *core.Metadata, d []byte) error {
	if len(d) < 80 {
		return core.EOF(80, len(d))
	}
	le := binary.LittleEndian
	m.Attrs.Set("ASF:FileSize", attrs.UInt64(le.Uint64(d[16:])))
	if ft := le.Uint64(d[24:]); ft > 0 {
		t := time.Unix(int64(ft/1e7)+fileTimeEpoch, int64(ft%1e7)*100).UTC()
		m.Attrs.Set("ASF:CreationDate", attrs.DateTime(t))
	}
	m.Attrs.Set("ASF:DataPackets", attrs.UInt64(le.Uint64(d[32:])))
	play := le.Uint64(d[40:])
	preroll := le.Uint64(d[56:])
	// Play duration counts 100 ns units and includes the preroll (ms).
	if secs := float64(play)/1e7 - float64(preroll)/1e3; secs > 0 {
		setDuration(m, secs)
	}
	m.Attrs.Set("ASF:Preroll", attrs.UInt64(preroll))
	m.Attrs.Set("ASF:MaxBitrate", attrs.UInt(le.Uint32(d[76:])))
	return nil
}

// streamProperties reports whether the stream is video.
func streamProperties(m *core.Metadata, d []byte) (bool, error) {
	if len(d) < 54 {
		return false, core.EOF(54, len(d))
	}
	le := binary.LittleEndian
	var kind guid
	copy(kind[:], d)
	n := int(le.Uint32(d[40:]))
	if n > len(d)-54 {
		return false, &core.ValueOutOfBoundsError{Offset: 54, Size: uint64(n), DataLen: uint64(len(d))}
	}
	ts := d[54 : 54+n]
	switch kind {
	case guidAudioMedia:
		if _, err := audio.WaveFormat(m, "ASF", ts); err != nil {
			return false, err
		}
	case guidVideoMedia:
		// Encoded width and height, a reserved byte, the format size, then
		// a BITMAPINFOHEADER.
		if len(ts) >= 11 {
			setFrame(m, le.Uint32(ts), le.Uint32(ts[4:]))
		}
		if len(ts) >= 11+20 {
			m.Attrs.SetIfAbsent("Video:Codec", attrs.Str(fourCC(ts[11+16:11+20])))
		}
		return true, nil
	}
	return false, nil
}

func contentDescription(m *core.Metadata, d []byte) error {
	if len(d) < 10 {
		return core.EOF(10, len(d))
	}
	pos := 10
	for i, name := range contentDescFields {
		n := int(binary.LittleEndian.Uint16(d[2*i:]))
		if pos+n > len(d) {
			return &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(n), DataLen: uint64(len(d))}
		}
		if s := utf16(d[pos : pos+n]); s != "" {
			m.Attrs.Set("ASF:"+name, attrs.Str(s))
		}
		pos += n
	}
	return nil
}

// extendedContent decodes the name/type/value descriptors. Names keep the
// "WM/" prefix they are written with.
func extendedContent(m *core.Metadata, d []byte) error {
	if len(d) < 2 {
		return core.EOF(2, len(d))
	}
	le := binary.LittleEndian
	count := int(le.Uint16(d))
	pos := 2
	for i := 0; i < count; i++ {
		if pos+2 > len(d) {
			return core.EOF(pos+2, len(d))
		}
		nl := int(le.Uint16(d[pos:]))
		if pos+2+nl+4 > len(d) {
			return core.EOF(pos+2+nl+4, len(d))
		}
		name := utf16(d[pos+2 : pos+2+nl])
		pos += 2 + nl
		typ := le.Uint16(d[pos:])
		vl := int(le.Uint16(d[pos+2:]))
		pos += 4
		if pos+vl > len(d) {
			return core.EOF(pos+vl, len(d))
		}
		v := d[pos : pos+vl]
		pos += vl
		if name == "" {
			continue
		}
		if val, ok := asfValue(typ, v); ok {
			m.Attrs.Set("ASF:"+name, val)
		}
	}
	return nil
}

func asfValue(typ uint16, v []byte) (attrs.Value, bool) {
	le := binary.LittleEndian
	switch typ {
	case 0:
		if s := utf16(v); s != "" {
			return attrs.Str(s), true
		}
	case 1:
		if len(v) > 0 {
			return attrs.Bytes(v), true
		}
	case 2:
		if len(v) >= 4 {
			return attrs.Bool(le.Uint32(v) != 0), true
		}
		if len(v) >= 2 {
			return attrs.Bool(le.Uint16(v) != 0), true
		}
	case 3:
		if len(v) >= 4 {
			return attrs.UInt(le.Uint32(v)), true
		}
	case 4:
		if len(v) >= 8 {
			return attrs.UInt64(le.Uint64(v)), true
		}
	case 5:
		if len(v) >= 2 {
			return attrs.UInt(uint32(le.Uint16(v))), true
		}
	}
	return attrs.Value{}, false
}

// codecList records the codec names of the Codec List object.
func codecList(m *core.Metadata, d []byte) {
	if len(d) < 20 {
		return
	}
	le := binary.LittleEndian
	count := int(le.Uint32(d[16:]))
	pos := 20
	var names []string
	for i := 0; i < count && i < core.MaxWalkIterations && pos+4 <= len(d); i++ {
		pos += 2 // type
		nl := 2 * int(le.Uint16(d[pos:]))
		pos += 2
		if pos+nl+2 > len(d) {
			break
		}
		if s := utf16(d[pos : pos+nl]); s != "" {
			names = append(names, s)
		}
		pos += nl
		dl := 2 * int(le.Uint16(d[pos:]))
		pos += 2 + dl
		if pos+2 > len(d) {
			break
		}
		pos += 2 + int(le.Uint16(d[pos:]))
	}
	if len(names) > 0 {
		m.Attrs.Set("ASF:Codecs", attrs.Strs(names))
	}
}

func (g guid) String() string {
	le := binary.LittleEndian
	return fmt.Sprintf("%08X-%04X-%04X-%X-%X", le.Uint32(g[:]), le.Uint16(g[4:]), le.Uint16(g[6:]), g[8:10], g[10:])
}
