package video

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// FLV tag types.
const (
	flvAudio  = 8
	flvVideo  = 9
	flvScript = 18
)

// AMF0 type markers.
const (
	amfNumber      = 0x00
	amfBoolean     = 0x01
	amfString      = 0x02
	amfObject      = 0x03
	amfNull        = 0x05
	amfUndefined   = 0x06
	amfECMAArray   = 0x08
	amfObjectEnd   = 0x09
	amfStrictArray = 0x0A
	amfDate        = 0x0B
	amfLongString  = 0x0C
)

// amfDepth bounds nested objects and arrays.
const amfDepth = 8

var flvSoundFormats = []string{
	"Linear PCM, platform endian", "ADPCM", "MP3", "Linear PCM, little endian",
	"Nellymoser 16 kHz mono", "Nellymoser 8 kHz mono", "Nellymoser", "G.711 A-law",
	"G.711 mu-law", "reserved", "AAC", "Speex", "", "", "MP3 8 kHz", "Device-specific",
}

var flvVideoCodecs = map[byte]string{
	2: "Sorenson H.263", 3: "Screen video", 4: "On2 VP6", 5: "On2 VP6 with alpha",
	6: "Screen video v2", 7: "AVC", 12: "HEVC",
}

var flvRates = []uint32{5512, 11025, 22050, 44100}

func parseFLV(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	head, err := core.ReadAt(r, 0, min(9, size), size)
	if err != nil {
		return nil, err
	}
	if len(head) < 9 {
		return nil, core.EOF(9, len(head))
	}
	m.Attrs.Set("FLV:Version", attrs.UInt(uint32(head[3])))
	m.Attrs.Set("FLV:HasAudio", attrs.Bool(head[4]&0x04 != 0))
	m.Attrs.Set("FLV:HasVideo", attrs.Bool(head[4]&0x01 != 0))

	// Tags follow the header and the first PreviousTagSize.
	pos := int64(binary.BigEndian.Uint32(head[5:])) + 4
	var script, sound, picture bool
	for i := 0; pos+11 <= size && i < core.MaxWalkIterations && !(script && sound && picture); i++ {
		th, err := core.ReadAt(r, pos, 12, size)
		if err != nil {
			th, err = core.ReadAt(r, pos, 11, size)
			if err != nil {
				m.Warn(errors.Wrapf(err, "flv tag at %d", pos))
				break
			}
		}
		typ := th[0] & 0x1F
		n := int64(th[1])<<16 | int64(th[2])<<8 | int64(th[3])
		body := pos + 11
		if n > size-body {
			m.Warn(&core.ValueOutOfBoundsError{Offset: uint64(body), Size: uint64(n), DataLen: uint64(size)})
			break
		}
		switch {
		case typ == flvScript && !script:
			script = true
			data, err := core.ReadAt(r, body, n, size)
			if err != nil {
				m.Warn(errors.Wrap(err, "flv script tag"))
				break
			}
			if err := scriptData(m, data); err != nil {
				m.Warn(errors.Wrap(err, "flv onMetaData"))
			}
		case typ == flvAudio && !sound && n > 0 && len(th) == 12:
			sound = true
			flags := th[11]
			if name := flvSoundFormats[flags>>4]; name != "" {
				m.Attrs.Set("FLV:AudioEncoding", attrs.Str(name))
			}
			bits := uint32(8)
			if flags&0x02 != 0 {
				bits = 16
			}
			setAudio(m, flvRates[flags>>2&3], uint32(flags&1)+1, bits)
		case typ == flvVideo && !picture && n > 0 && len(th) == 12:
			picture = true
			if name, ok := flvVideoCodecs[th[11]&0x0F]; ok {
				m.Attrs.SetIfAbsent("Video:Codec", attrs.Str(name))
			}
		}
		pos = body + n + 4
	}
	return m, nil
}

// scriptData decodes an onMetaData script tag: an AMF0 string naming the
// event, then an ECMA array or object of properties.
func scriptData(m *core.Metadata, data []byte) error {
	d := &amfDecoder{b: data}
	name, err := d.value(0)
	if err != nil {
		return err
	}
	if s, _ := name.AsStr(); s != "onMetaData" {
		return nil
	}
	props, err := d.properties(0)
	for _, k := range props.keys {
		v := props.vals[k]
		m.Attrs.Set("FLV:"+k, v)
		if f, ok := v.AsDouble(); ok {
			switch k {
			case "duration":
				setDuration(m, f)
			case "framerate":
				setFrameRate(m, f)
			case "audiosamplerate":
				setAudio(m, uint32(f), 0, 0)
			}
		}
	}
	w, wok := props.vals["width"].AsDouble()
	h, hok := props.vals["height"].AsDouble()
	if wok && hok {
		setFrame(m, uint32(w), uint32(h))
	}
	return err
}

// amfProps keeps object properties in encounter order.
type amfProps struct {
	keys []string
	vals map[string]attrs.Value
}

type amfDecoder struct {
	b   []byte
	pos int
}

func (d *amfDecoder) take(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.b) {
		return nil, core.EOF(d.pos+n, len(d.b))
	}
	b := d.b[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *amfDecoder) str(wide bool) (string, error) {
	lb := 2
	if wide {
		lb = 4
	}
	h, err := d.take(lb)
	if err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(h))
	if wide {
		n = int(binary.BigEndian.Uint32(h))
	}
	b, err := d.take(n)
	return string(b), err
}

// properties reads name/value pairs up to the object end marker.
func (d *amfDecoder) properties(depth int) (amfProps, error) {
	p := amfProps{vals: map[string]attrs.Value{}}
	if d.pos < len(d.b) && d.b[d.pos] == amfECMAArray {
		d.pos += 5 // marker and an approximate count
	} else if d.pos < len(d.b) && d.b[d.pos] == amfObject {
		d.pos++
	}
	for i := 0; i < core.MaxWalkIterations*10; i++ {
		key, err := d.str(false)
		if err != nil {
			return p, err
		}
		if key == "" {
			if d.pos < len(d.b) && d.b[d.pos] == amfObjectEnd {
				d.pos++
			}
			return p, nil
		}
		v, err := d.value(depth + 1)
		if err != nil {
			return p, errors.Wrapf(err, "property %q", key)
		}
		if !v.IsValid() {
			continue
		}
		if _, dup := p.vals[key]; !dup {
			p.keys = append(p.keys, key)
		}
		p.vals[key] = v
	}
	return p, core.Structure("amf: more than %d properties", core.MaxWalkIterations*10)
}

func (d *amfDecoder) value(depth int) (attrs.Value, error) {
	if depth > amfDepth {
		return attrs.Value{}, core.Structure("amf: nesting deeper than %d", amfDepth)
	}
	mb, err := d.take(1)
	if err != nil {
		return attrs.Value{}, err
	}
	switch mb[0] {
	case amfNumber:
		b, err := d.take(8)
		if err != nil {
			return attrs.Value{}, err
		}
		return attrs.Double(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case amfBoolean:
		b, err := d.take(1)
		if err != nil {
			return attrs.Value{}, err
		}
		return attrs.Bool(b[0] != 0), nil
	case amfString, amfLongString:
		s, err := d.str(mb[0] == amfLongString)
		return attrs.Str(s), err
	case amfObject, amfECMAArray:
		d.pos--
		p, err := d.properties(depth)
		if err != nil {
			return attrs.Value{}, err
		}
		g := attrs.New()
		for _, k := range p.keys {
			g.Set(k, p.vals[k])
		}
		return attrs.Group(g), nil
	case amfStrictArray:
		b, err := d.take(4)
		if err != nil {
			return attrs.Value{}, err
		}
		n := binary.BigEndian.Uint32(b)
		if int64(n) > int64(len(d.b)-d.pos) {
			return attrs.Value{}, core.EOF(d.pos+int(n), len(d.b))
		}
		items := make([]attrs.Value, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := d.value(depth + 1)
			if err != nil {
				return attrs.Value{}, err
			}
			if v.IsValid() {
				items = append(items, v)
			}
		}
		return attrs.List(items...), nil
	case amfDate:
		b, err := d.take(10)
		if err != nil {
			return attrs.Value{}, err
		}
		ms := math.Float64frombits(binary.BigEndian.Uint64(b))
		return attrs.DateTime(time.UnixMilli(int64(ms)).UTC()), nil
	case amfNull, amfUndefined:
		return attrs.Value{}, nil
	}
	return attrs.Value{}, core.Structure("amf: unsupported type marker 0x%02X", mb[0])
}
