package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// Meta event types read from MIDI tracks.
const (
	midiText          = 0x01
	midiCopyright     = 0x02
	midiTrackName     = 0x03
	midiInstrument    = 0x04
	midiLyric         = 0x05
	midiMarker        = 0x06
	midiEndOfTrack    = 0x2F
	midiTempo         = 0x51
	midiTimeSignature = 0x58
	midiKeySignature  = 0x59
)

// Key names indexed by sharps/flats + 7.
var (
	majorKeys = []string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorKeys = []string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}
)

// midiState collects what the track walk finds.
type midiState struct {
	tempo       uint32 // µs per quarter note of the first tempo event
	tempoSet    bool
	maxTicks    uint64
	names       []string
	texts       []string
	instruments []string
	markers     []string
	lyrics      int
}

func parseMIDI(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	data, err := core.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 14 {
		return nil, core.EOF(14, len(data))
	}
	be := binary.BigEndian
	format := be.Uint16(data[8:])
	tracks := be.Uint16(data[10:])
	division := be.Uint16(data[12:])
	m.Attrs.Set("MIDI:Format", attrs.UInt(uint32(format)))
	m.Attrs.Set("MIDI:NumTracks", attrs.UInt(uint32(tracks)))
	smpte := division&0x8000 != 0
	if smpte {
		fps := -int8(division >> 8)
		m.Attrs.Set("MIDI:TimeDivision", attrs.Str(fmt.Sprintf("SMPTE %d fps, %d ticks/frame", fps, division&0xFF)))
	} else {
		m.Attrs.Set("MIDI:TicksPerQuarterNote", attrs.UInt(uint32(division)))
	}

	st := &midiState{tempo: 500000}
	pos, seen := 14, 0
	for pos+8 <= len(data) && seen < int(tracks) {
		if seen >= core.MaxWalkIterations*10 {
			m.Warn(core.Structure("midi: more than %d tracks", seen))
			break
		}
		id := string(data[pos : pos+4])
		n := int(be.Uint32(data[pos+4:]))
		body := pos + 8
		if n > len(data)-body {
			m.Warn(&core.ValueOutOfBoundsError{Offset: uint64(body), Size: uint64(n), DataLen: uint64(len(data))})
			break
		}
		if id == "MTrk" {
			if err := midiTrack(m, st, data[body:body+n], seen == 0); err != nil {
				m.Warn(errors.Wrapf(err, "midi track %d", seen))
			}
			seen++
		}
		pos = body + n
	}

	if st.tempoSet {
		m.Attrs.Set("MIDI:Tempo", attrs.Double(60e6/float64(st.tempo)))
	}
	if len(st.names) > 0 {
		m.Attrs.Set("MIDI:TrackName", attrs.Strs(st.names))
	}
	if len(st.texts) > 0 {
		m.Attrs.Set("MIDI:Text", attrs.Strs(st.texts))
	}
	if len(st.instruments) > 0 {
		m.Attrs.Set("MIDI:InstrumentName", attrs.Strs(st.instruments))
	}
	if len(st.markers) > 0 {
		m.Attrs.Set("MIDI:Marker", attrs.Strs(st.markers))
	}
	if st.lyrics > 0 {
		m.Attrs.Set("MIDI:LyricEvents", attrs.UInt(uint32(st.lyrics)))
	}
	// Duration assumes the first tempo holds for the whole song.
	switch {
	case smpte:
		fps := float64(-int8(division >> 8))
		if fps == 29 {
			fps = 29.97
		}
		if tpf := float64(division & 0xFF); fps > 0 && tpf > 0 {
			setDuration(m, float64(st.maxTicks)/(fps*tpf))
		}
	case division > 0:
		setDuration(m, float64(st.maxTicks)*float64(st.tempo)/1e6/float64(division))
	}
	return m, nil
}

// midiTrack walks the events of one MTrk chunk. Channel events are
// skipped using running status.
func midiTrack(m *core.Metadata, st *midiState, d []byte, first bool) error {
	var ticks uint64
	var status byte
	pos := 0
	for pos < len(d) {
		delta, n, err := varLen(d[pos:])
		if err != nil {
			return err
		}
		pos += n
		ticks += uint64(delta)
		if pos >= len(d) {
			return core.EOF(pos+1, len(d))
		}
		b := d[pos]
		if b >= 0x80 {
			status = b
			pos++
		} else if status == 0 {
			return core.Structure("midi: data byte 0x%02X without status", b)
		}
		switch {
		case status == 0xFF:
			if pos >= len(d) {
				return core.EOF(pos+1, len(d))
			}
			typ := d[pos]
			l, n, err := varLen(d[pos+1:])
			if err != nil {
				return err
			}
			start := pos + 1 + n
			if int(l) > len(d)-start {
				return &core.ValueOutOfBoundsError{Offset: uint64(start), Size: uint64(l), DataLen: uint64(len(d))}
			}
			midiMeta(m, st, typ, d[start:start+int(l)], first)
			pos = start + int(l)
			status = 0
			if typ == midiEndOfTrack {
				st.maxTicks = max(st.maxTicks, ticks)
				return nil
			}
		case status == 0xF0 || status == 0xF7:
			l, n, err := varLen(d[pos:])
			if err != nil {
				return err
			}
			pos += n + int(l)
			status = 0
		case status&0xF0 == 0xC0 || status&0xF0 == 0xD0:
			pos++
		default:
			pos += 2
		}
	}
	st.maxTicks = max(st.maxTicks, ticks)
	return nil
}

func midiMeta(m *core.Metadata, st *midiState, typ byte, d []byte, first bool) {
	switch typ {
	case midiText:
		if s := text(d); s != "" {
			st.texts = append(st.texts, s)
		}
	case midiCopyright:
		setText(m, "MIDI:Copyright", d)
	case midiTrackName:
		if s := text(d); s != "" {
			if first {
				m.Attrs.SetIfAbsent("MIDI:SequenceName", attrs.Str(s))
			}
			st.names = append(st.names, s)
		}
	case midiInstrument:
		if s := text(d); s != "" {
			st.instruments = append(st.instruments, s)
		}
	case midiLyric:
		st.lyrics++
	case midiMarker:
		if s := text(d); s != "" {
			st.markers = append(st.markers, s)
		}
	case midiTempo:
		if len(d) >= 3 && !st.tempoSet {
			st.tempo = uint32(d[0])<<16 | uint32(d[1])<<8 | uint32(d[2])
			st.tempoSet = st.tempo > 0
			if !st.tempoSet {
				st.tempo = 500000
			}
		}
	case midiTimeSignature:
		if len(d) >= 2 && d[1] < 16 {
			m.Attrs.SetIfAbsent("MIDI:TimeSignature", attrs.Str(fmt.Sprintf("%d/%d", d[0], 1<<d[1])))
		}
	case midiKeySignature:
		if len(d) >= 2 {
			sf := int(int8(d[0]))
			if sf >= -7 && sf <= 7 {
				key := majorKeys[sf+7] + " major"
				if d[1] == 1 {
					key = minorKeys[sf+7] + " minor"
				}
				m.Attrs.SetIfAbsent("MIDI:KeySignature", attrs.Str(key))
			}
		}
	}
}

// varLen decodes a MIDI variable-length quantity of at most four bytes.
func varLen(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		if i >= len(b) {
			return 0, 0, core.EOF(i+1, len(b))
		}
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, core.Structure("midi: variable-length quantity over 4 bytes")
}
