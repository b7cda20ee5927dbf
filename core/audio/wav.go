package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

// WAVEFORMATEX format tags.
var wavFormats = map[uint16]string{
	0x0001: "PCM",
	0x0002: "Microsoft ADPCM",
	0x0003: "IEEE Float",
	0x0006: "A-law",
	0x0007: "mu-law",
	0x0011: "IMA ADPCM",
	0x0031: "GSM 6.10",
	0x0050: "MPEG",
	0x0055: "MP3",
	0x0161: "Windows Media Audio",
	0x0162: "Windows Media Audio Pro",
	0x0163: "Windows Media Audio Lossless",
	0x1610: "AAC",
	0x2000: "AC-3",
	0xF1AC: "FLAC",
	0xFFFE: "Extensible",
}

func parseWAV(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	form, chunks, err := chunk.ReadRIFF(r)
	if form != "WAVE" {
		if err == nil {
			err = core.Structure("riff: form %q is not WAVE", form)
		}
		return nil, err
	}
	if err != nil {
		m.Warn(err)
	}
	var byteRate uint32
	for _, c := range chunks {
		if err := wavChunk(m, c, &byteRate); err != nil {
			m.Warn(errors.Wrapf(err, "wav %q chunk", c.ID))
		}
	}
	return m, nil
}

func wavChunk(m *core.Metadata, c chunk.Chunk, byteRate *uint32) error {
	le := binary.LittleEndian
	d := c.Data
	switch c.ID {
	case "fmt ":
		rate, err := WaveFormat(m, "WAV", d)
		*byteRate = rate
		return err
	case "fact":
		if len(d) < 4 {
			return core.EOF(4, len(d))
		}
		m.Attrs.Set("WAV:SampleCount", attrs.UInt(le.Uint32(d)))
	case "data":
		m.Attrs.Set("WAV:DataSize", attrs.UInt64(uint64(c.Size)))
		if *byteRate > 0 {
			setDuration(m, float64(c.Size)/float64(*byteRate))
		}
	case "bext":
		return broadcastExtension(m, d)
	case "smpl":
		if len(d) < 36 {
			return core.EOF(36, len(d))
		}
		m.Attrs.Set("WAV:SamplePeriod", attrs.UInt(le.Uint32(d[8:])))
		m.Attrs.Set("WAV:MIDIUnityNote", attrs.UInt(le.Uint32(d[12:])))
		m.Attrs.Set("WAV:NumSampleLoops", attrs.UInt(le.Uint32(d[28:])))
	case "cue ":
		if len(d) >= 4 {
			m.Attrs.Set("WAV:CuePoints", attrs.UInt(le.Uint32(d)))
		}
	case "LIST":
		typ, sub, err := chunk.List(d)
		if typ == "INFO" {
			Info(m, sub)
		}
		return err
	case "iXML":
		if s := strings.TrimSpace(text(d)); s != "" {
			m.Attrs.Set("WAV:iXML", attrs.Str(s))
		}
	case "XMP ", "_PMX":
		blocks.XMP(m, d)
	case "id3 ", "ID3 ":
		id3Chunk(m, d)
	}
	return nil
}

// WaveFormat decodes a WAVEFORMATEX structure into the ns namespace and
// the common stream attributes. It returns the average byte rate. AVI
// audio stream formats use the same layout.
func WaveFormat(m *core.Metadata, ns string, d []byte) (uint32, error) {
	if len(d) < 16 {
		return 0, core.EOF(16, len(d))
	}
	le := binary.LittleEndian
	tag := le.Uint16(d)
	if tag == 0xFFFE && len(d) >= 26 {
		// WAVE_FORMAT_EXTENSIBLE: the sub-format GUID starts with the tag.
		m.Attrs.Set(ns+":ValidBitsPerSample", attrs.UInt(uint32(le.Uint16(d[18:]))))
		m.Attrs.Set(ns+":ChannelMask", attrs.UInt(le.Uint32(d[20:])))
		tag = le.Uint16(d[24:])
	}
	name, ok := wavFormats[tag]
	if !ok {
		name = fmt.Sprintf("Unknown (0x%04X)", tag)
	}
	m.Attrs.Set(ns+":Encoding", attrs.Str(name))
	m.Attrs.Set(ns+":BlockAlign", attrs.UInt(uint32(le.Uint16(d[12:]))))
	rate := le.Uint32(d[8:])
	m.Attrs.Set(ns+":AvgBytesPerSec", attrs.UInt(rate))
	setStream(m, le.Uint32(d[4:]), uint32(le.Uint16(d[2:])), uint32(le.Uint16(d[14:])))
	return rate, nil
}

// broadcastExtension decodes the EBU Tech 3285 bext chunk.
func broadcastExtension(m *core.Metadata, d []byte) error {
	if len(d) < 348 {
		return core.EOF(348, len(d))
	}
	setText(m, "BWF:Description", d[:256])
	setText(m, "BWF:Originator", d[256:288])
	setText(m, "BWF:OriginatorReference", d[288:320])
	setText(m, "BWF:OriginationDate", d[320:330])
	setText(m, "BWF:OriginationTime", d[330:338])
	m.Attrs.Set("BWF:TimeReference", attrs.UInt64(binary.LittleEndian.Uint64(d[338:])))
	version := binary.LittleEndian.Uint16(d[346:])
	m.Attrs.Set("BWF:Version", attrs.UInt(uint32(version)))
	if len(d) >= 412 && version >= 1 {
		umid := d[348:412]
		for _, b := range umid {
			if b != 0 {
				m.Attrs.Set("BWF:UMID", attrs.Str(fmt.Sprintf("%X", umid)))
				break
			}
		}
	}
	if len(d) > 602 {
		setText(m, "BWF:CodingHistory", d[602:])
	}
	return nil
}

// Info records the sub-chunks of a LIST INFO chunk as "RIFF:" attributes.
func Info(m *core.Metadata, sub []chunk.Chunk) {
	for _, c := range sub {
		name, ok := chunk.InfoTags[c.ID]
		if !ok {
			name = strings.TrimSpace(c.ID)
		}
		setText(m, "RIFF:"+name, c.Data)
	}
}
