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

// Matroska element IDs, with their length marker bits.
const (
	ebmlHeader         = 0x1A45DFA3
	ebmlDocType        = 0x4282
	ebmlDocTypeVersion = 0x4287
	ebmlSegment        = 0x18538067
	ebmlSeekHead       = 0x114D9B74
	ebmlSeek           = 0x4DBB
	ebmlSeekID         = 0x53AB
	ebmlSeekPosition   = 0x53AC
	ebmlInfo           = 0x1549A966
	ebmlTimecodeScale  = 0x2AD7B1
	ebmlDuration       = 0x4489
	ebmlDateUTC        = 0x4461
	ebmlTitle          = 0x7BA9
	ebmlMuxingApp      = 0x4D80
	ebmlWritingApp     = 0x5741
	ebmlTracks         = 0x1654AE6B
	ebmlTrackEntry     = 0xAE
	ebmlTrackType      = 0x83
	ebmlCodecID        = 0x86
	ebmlLanguage       = 0x22B59C
	ebmlDefaultDur     = 0x23E383
	ebmlVideo          = 0xE0
	ebmlPixelWidth     = 0xB0
	ebmlPixelHeight    = 0xBA
	ebmlAudio          = 0xE1
	ebmlSamplingFreq   = 0xB5
	ebmlChannels       = 0x9F
	ebmlBitDepth       = 0x6264
	ebmlTags           = 0x1254C367
	ebmlTag            = 0x7373
	ebmlSimpleTag      = 0x67C8
	ebmlTagName        = 0x45A3
	ebmlTagString      = 0x4487
	ebmlCluster        = 0x1F43B675
)

// matroskaEpoch is the origin of DateUTC.
var matroskaEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// element is one decoded EBML element header.
type element struct {
	id     uint32
	offset int64 // of the payload
	size   int64 // -1 when unknown
}

// readVint decodes an EBML variable-length integer. With keepMarker the
// length marker stays in the value, as element IDs are written.
func readVint(b []byte, keepMarker bool) (uint64, int, bool) {
	if len(b) == 0 || b[0] == 0 {
		return 0, 0, false
	}
	n := 1
	for mask := byte(0x80); b[0]&mask == 0; mask >>= 1 {
		n++
	}
	if n > 8 || n > len(b) {
		return 0, 0, false
	}
	v := uint64(b[0])
	if !keepMarker {
		v &= uint64(0xFF >> n)
	}
	allOnes := v == uint64(0xFF>>n)
	for _, c := range b[1:n] {
		v = v<<8 | uint64(c)
		allOnes = allOnes && c == 0xFF
	}
	if !keepMarker && allOnes {
		return math.MaxUint64, n, true
	}
	return v, n, true
}

// splitEBML cuts an in-memory payload into child elements.
func splitEBML(data []byte) ([]element, error) {
	var out []element
	pos := 0
	for pos < len(data) {
		if len(out) >= core.MaxWalkIterations*40 {
			return out, core.Structure("ebml: more than %d elements", len(out))
		}
		id, n, ok := readVint(data[pos:], true)
		if !ok || n > 4 {
			return out, core.Structure("ebml: bad element id at %d", pos)
		}
		size, l, ok := readVint(data[pos+n:], false)
		if !ok {
			return out, core.Structure("ebml: bad element size at %d", pos+n)
		}
		start := pos + n + l
		if size > uint64(len(data)-start) {
			return out, &core.ValueOutOfBoundsError{Offset: uint64(start), Size: size, DataLen: uint64(len(data))}
		}
		out = append(out, element{id: uint32(id), offset: int64(start), size: int64(size)})
		pos = start + int(size)
	}
	return out, nil
}

func payload(data []byte, e element) []byte {
	return data[e.offset : e.offset+e.size]
}

func ebmlUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func ebmlFloat(b []byte) float64 {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	}
	return 0
}

// readElement decodes the element header at off.
func readElement(r io.ReadSeeker, off, end int64) (element, error) {
	b, err := core.ReadAt(r, off, min(12, end-off), end)
	if err != nil {
		return element{}, err
	}
	id, n, ok := readVint(b, true)
	if !ok || n > 4 {
		return element{}, core.Structure("ebml: bad element id at %d", off)
	}
	size, l, ok := readVint(b[n:], false)
	if !ok {
		return element{}, core.Structure("ebml: bad element size at %d", off+int64(n))
	}
	e := element{id: uint32(id), offset: off + int64(n+l), size: int64(size)}
	if size == math.MaxUint64 {
		e.size = -1
	} else if size > uint64(end-e.offset) {
		return e, &core.ValueOutOfBoundsError{Offset: uint64(e.offset), Size: size, DataLen: uint64(end)}
	}
	return e, nil
}

func loadElement(r io.ReadSeeker, e element, end int64) ([]byte, error) {
	return core.ReadAt(r, e.offset, e.size, end)
}

// mkvState tracks which level-1 elements were decoded, so SeekHead
// targets are visited once.
type mkvState struct {
	scale float64 // timecode scale in ns
	seen  map[uint32]bool
	seeks map[uint32]int64
}

func parseMKV(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	hdr, err := readElement(r, 0, size)
	if err != nil {
		return nil, errors.Wrap(err, "ebml header")
	}
	if hdr.id != ebmlHeader || hdr.size < 0 {
		return nil, core.Structure("ebml: missing header element")
	}
	data, err := loadElement(r, hdr, size)
	if err != nil {
		return nil, err
	}
	children, err := splitEBML(data)
	if err != nil {
		m.Warn(errors.Wrap(err, "ebml header"))
	}
	for _, c := range children {
		switch c.id {
		case ebmlDocType:
			doc := string(payload(data, c))
			m.Attrs.Set("Matroska:DocType", attrs.Str(doc))
			if doc == "webm" {
				m.Format = WebM
			}
		case ebmlDocTypeVersion:
			m.Attrs.Set("Matroska:DocTypeVersion", attrs.UInt(uint32(ebmlUint(payload(data, c)))))
		}
	}

	seg, err := readElement(r, hdr.offset+hdr.size, size)
	if err != nil {
		m.Warn(errors.Wrap(err, "segment"))
		return m, nil
	}
	if seg.id != ebmlSegment {
		m.Warn(core.Structure("ebml: expected Segment, found 0x%X", seg.id))
		return m, nil
	}
	segEnd := size
	if seg.size >= 0 {
		segEnd = seg.offset + seg.size
	}
	st := &mkvState{scale: 1e6, seen: map[uint32]bool{}, seeks: map[uint32]int64{}}
	var duration float64
	for pos, i := seg.offset, 0; pos < segEnd; i++ {
		if i >= core.MaxWalkIterations {
			break
		}
		e, err := readElement(r, pos, segEnd)
		if err != nil {
			m.Warn(errors.Wrapf(err, "segment child at %d", pos))
			break
		}
		if e.id == ebmlCluster || e.size < 0 {
			// Media data starts; the rest is reached through SeekHead.
			break
		}
		if d := segmentChild(r, m, st, e, segEnd); d > 0 {
			duration = d
		}
		pos = e.offset + e.size
	}
	for _, id := range []uint32{ebmlInfo, ebmlTracks, ebmlTags} {
		off, ok := st.seeks[id]
		if !ok || st.seen[id] {
			continue
		}
		e, err := readElement(r, seg.offset+off, segEnd)
		if err != nil || e.id != id {
			m.Warn(errors.Errorf("ebml: SeekHead entry 0x%X does not point at its element", id))
			continue
		}
		if d := segmentChild(r, m, st, e, segEnd); d > 0 {
			duration = d
		}
	}
	setDuration(m, duration*st.scale/1e9)
	return m, nil
}

// segmentChild decodes one level-1 element and returns the Info duration
// in timecode units, if it held one.
func segmentChild(r io.ReadSeeker, m *core.Metadata, st *mkvState, e element, end int64) float64 {
	switch e.id {
	case ebmlSeekHead, ebmlInfo, ebmlTracks, ebmlTags:
	default:
		return 0
	}
	st.seen[e.id] = true
	data, err := loadElement(r, e, end)
	if err != nil {
		m.Warn(errors.Wrapf(err, "element 0x%X", e.id))
		return 0
	}
	children, err := splitEBML(data)
	if err != nil {
		m.Warn(errors.Wrapf(err, "element 0x%X", e.id))
	}
	switch e.id {
	case ebmlSeekHead:
		seekHead(st, data, children)
	case ebmlInfo:
		return segmentInfo(m, st, data, children)
	case ebmlTracks:
		tracks(m, data, children)
	case ebmlTags:
		tags(m, data, children)
	}
	return 0
}

func seekHead(st *mkvState, data []byte, children []element) {
	for _, c := range children {
		if c.id != ebmlSeek {
			continue
		}
		p := payload(data, c)
		sub, _ := splitEBML(p)
		var id uint32
		var pos int64 = -1
		for _, s := range sub {
			switch s.id {
			case ebmlSeekID:
				id = uint32(ebmlUint(payload(p, s)))
			case ebmlSeekPosition:
				pos = int64(ebmlUint(payload(p, s)))
			}
		}
		if id != 0 && pos >= 0 {
			if _, dup := st.seeks[id]; !dup {
				st.seeks[id] = pos
			}
		}
	}
}

func segmentInfo(m *core.Metadata, st *mkvState, data []byte, children []element) float64 {
	var duration float64
	for _, c := range children {
		p := payload(data, c)
		switch c.id {
		case ebmlTimecodeScale:
			if v := ebmlUint(p); v > 0 {
				st.scale = float64(v)
				m.Attrs.Set("Matroska:TimecodeScale", attrs.UInt64(v))
			}
		case ebmlDuration:
			duration = ebmlFloat(p)
		case ebmlDateUTC:
			if len(p) == 8 {
				ns := int64(binary.BigEndian.Uint64(p))
				m.Attrs.Set("Matroska:DateUTC", attrs.DateTime(matroskaEpoch.Add(time.Duration(ns))))
			}
		case ebmlTitle:
			setStr(m, "Matroska:Title", string(p))
		case ebmlMuxingApp:
			setStr(m, "Matroska:MuxingApp", string(p))
		case ebmlWritingApp:
			setStr(m, "Matroska:WritingApp", string(p))
		}
	}
	return duration
}

var trackTypes = map[uint64]string{1: "video", 2: "audio", 3: "complex", 16: "logo", 17: "subtitle", 18: "buttons", 32: "control"}

func tracks(m *core.Metadata, data []byte, children []element) {
	var kinds []string
	for _, c := range children {
		if c.id != ebmlTrackEntry {
			continue
		}
		p := payload(data, c)
		sub, _ := splitEBML(p)
		var kind, codec, lang string
		var frameDur uint64
		for _, s := range sub {
			sp := payload(p, s)
			switch s.id {
			case ebmlTrackType:
				kind = trackTypes[ebmlUint(sp)]
			case ebmlCodecID:
				codec = string(sp)
			case ebmlLanguage:
				lang = string(sp)
			case ebmlDefaultDur:
				frameDur = ebmlUint(sp)
			case ebmlVideo:
				trackVideo(m, sp)
			case ebmlAudio:
				trackAudio(m, sp)
			}
		}
		kinds = append(kinds, kind)
		switch kind {
		case "video":
			if codec != "" {
				m.Attrs.SetIfAbsent("Video:Codec", attrs.Str(codec))
			}
			if frameDur > 0 {
				setFrameRate(m, 1e9/float64(frameDur))
			}
		case "audio":
			if codec != "" {
				m.Attrs.SetIfAbsent("Audio:Codec", attrs.Str(codec))
			}
			if lang != "" {
				m.Attrs.SetIfAbsent("Matroska:AudioLanguage", attrs.Str(lang))
			}
		}
	}
	if len(kinds) > 0 {
		m.Attrs.Set("Matroska:TrackTypes", attrs.Strs(kinds))
	}
}

func trackVideo(m *core.Metadata, p []byte) {
	sub, _ := splitEBML(p)
	var w, h uint32
	for _, s := range sub {
		switch s.id {
		case ebmlPixelWidth:
			w = uint32(ebmlUint(payload(p, s)))
		case ebmlPixelHeight:
			h = uint32(ebmlUint(payload(p, s)))
		}
	}
	setFrame(m, w, h)
}

func trackAudio(m *core.Metadata, p []byte) {
	sub, _ := splitEBML(p)
	var rate, channels, bits uint32
	for _, s := range sub {
		sp := payload(p, s)
		switch s.id {
		case ebmlSamplingFreq:
			rate = uint32(ebmlFloat(sp) + 0.5)
		case ebmlChannels:
			channels = uint32(ebmlUint(sp))
		case ebmlBitDepth:
			bits = uint32(ebmlUint(sp))
		}
	}
	setAudio(m, rate, channels, bits)
}

// tags records SimpleTag name/value pairs as "Matroska:<NAME>".
func tags(m *core.Metadata, data []byte, children []element) {
	for _, c := range children {
		if c.id != ebmlTag {
			continue
		}
		p := payload(data, c)
		sub, _ := splitEBML(p)
		for _, s := range sub {
			if s.id == ebmlSimpleTag {
				simpleTag(m, payload(p, s))
			}
		}
	}
}

func simpleTag(m *core.Metadata, p []byte) {
	sub, _ := splitEBML(p)
	var name, val string
	for _, s := range sub {
		switch s.id {
		case ebmlTagName:
			name = string(payload(p, s))
		case ebmlTagString:
			val = string(payload(p, s))
		case ebmlSimpleTag:
			simpleTag(m, payload(p, s))
		}
	}
	if name != "" && val != "" {
		m.Attrs.SetIfAbsent("Matroska:"+name, attrs.Str(val))
	}
}
