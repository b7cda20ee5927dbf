package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

// dsdRates names the DSD sample rates as multiples of 64 × 44.1 kHz.
var dsdRates = map[uint32]string{
	2822400:  "DSD64",
	5644800:  "DSD128",
	11289600: "DSD256",
	22579200: "DSD512",
	45158400: "DSD1024",
	3072000:  "DSD64 (48 kHz family)",
	6144000:  "DSD128 (48 kHz family)",
	12288000: "DSD256 (48 kHz family)",
	24576000: "DSD512 (48 kHz family)",
}

var dsfChannelTypes = []string{
	"", "Mono", "Stereo", "3 Channels", "Quad", "4 Channels", "5 Channels", "5.1 Channels",
}

func dsdRate(rate uint32) string {
	if s, ok := dsdRates[rate]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%d Hz)", rate)
}

// parseDSF reads the DSD chunk (28 bytes), the fmt chunk (52 bytes) and the
// ID3v2 tag the DSD chunk points to.
func parseDSF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	h, err := core.ReadAt(r, 0, min(size, 80), size)
	if err != nil {
		return nil, err
	}
	if len(h) < 80 {
		return nil, core.EOF(80, len(h))
	}
	le := binary.LittleEndian
	meta := le.Uint64(h[20:])
	f := h[28:]
	if string(f[:4]) != "fmt " {
		return nil, core.Structure("dsf: fmt chunk missing at 28")
	}
	m.Attrs.Set("DSF:FormatVersion", attrs.UInt(le.Uint32(f[12:])))
	if id := le.Uint32(f[16:]); id == 0 {
		m.Attrs.Set("DSF:FormatID", attrs.Str("DSD Raw"))
	} else {
		m.Attrs.Set("DSF:FormatID", attrs.UInt(id))
	}
	if ct := le.Uint32(f[20:]); int(ct) < len(dsfChannelTypes) && ct > 0 {
		m.Attrs.Set("DSF:ChannelType", attrs.Str(dsfChannelTypes[ct]))
	}
	rate := le.Uint32(f[28:])
	setStream(m, rate, le.Uint32(f[24:]), le.Uint32(f[32:]))
	m.Attrs.Set("DSF:DSDRate", attrs.Str(dsdRate(rate)))
	samples := le.Uint64(f[36:])
	m.Attrs.Set("DSF:SampleCount", attrs.UInt64(samples))
	m.Attrs.Set("DSF:BlockSizePerChannel", attrs.UInt(le.Uint32(f[44:])))
	if rate > 0 {
		setDuration(m, float64(samples)/float64(rate))
	}
	if meta > 0 && int64(meta) < size {
		tag, err := core.ReadAt(r, int64(meta), size-int64(meta), size)
		if err != nil {
			m.Warn(errors.Wrap(err, "dsf metadata"))
		} else {
			id3Chunk(m, tag)
		}
	}
	return m, nil
}

// parseDFF walks the FRM8 container: FVER, then PROP/SND with FS, CHNL,
// CMPR and ABSS, then the sound data.
func parseDFF(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	head, err := core.ReadAt(r, 0, 16, size)
	if err != nil {
		return nil, err
	}
	end := min(size, 12+int64(binary.BigEndian.Uint64(head[4:])))
	chunks, err := chunk.ReadIFF(r, 16, end, true)
	if err != nil {
		m.Warn(errors.Wrap(err, "dff chunks"))
	}
	var sound int64
	for _, c := range chunks {
		switch c.ID {
		case "FVER":
			if len(c.Data) >= 4 {
				v := c.Data
				m.Attrs.Set("DFF:FormatVersion", attrs.Str(fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])))
			}
		case "PROP":
			if len(c.Data) < 4 || string(c.Data[:4]) != "SND " {
				continue
			}
			sub, err := chunk.SplitIFF(c.Data[4:], true)
			if err != nil {
				m.Warn(errors.Wrap(err, "dff PROP"))
			}
			dffProps(m, sub)
		case "DSD ", "DST ":
			sound = c.Size
			m.Attrs.Set("DFF:SoundDataSize", attrs.UInt64(uint64(c.Size)))
		case "ID3 ":
			id3Chunk(m, c.Data)
		case "DIIN":
			sub, _ := chunk.SplitIFF(c.Data, true)
			for _, s := range sub {
				switch s.ID {
				case "DIAR":
					dffText(m, "DFF:Artist", s.Data)
				case "DITI":
					dffText(m, "DFF:Title", s.Data)
				}
			}
		case "COMT":
			aiffComments(m, c.Data)
		}
	}
	// Uncompressed DSD packs one bit per sample per channel.
	rate, _ := m.Attrs.GetUInt("Audio:SampleRate")
	ch, _ := m.Attrs.GetUInt("Audio:Channels")
	if cmpr, _ := m.Attrs.GetStr("DFF:Compression"); cmpr == "DSD" && rate > 0 && ch > 0 {
		setDuration(m, float64(sound)*8/float64(ch)/float64(rate))
	}
	return m, nil
}

func dffProps(m *core.Metadata, sub []chunk.Chunk) {
	be := binary.BigEndian
	for _, s := range sub {
		d := s.Data
		switch s.ID {
		case "FS  ":
			if len(d) >= 4 {
				rate := be.Uint32(d)
				setStream(m, rate, 0, 1)
				m.Attrs.Set("DFF:DSDRate", attrs.Str(dsdRate(rate)))
			}
		case "CHNL":
			if len(d) >= 2 {
				n := be.Uint16(d)
				setStream(m, 0, uint32(n), 0)
				var ids []string
				for i := 0; i < int(n) && 2+4*i+4 <= len(d); i++ {
					ids = append(ids, strings.TrimSpace(string(d[2+4*i:6+4*i])))
				}
				if len(ids) > 0 {
					m.Attrs.Set("DFF:ChannelIDs", attrs.Strs(ids))
				}
			}
		case "CMPR":
			if len(d) >= 4 {
				m.Attrs.Set("DFF:Compression", attrs.Str(strings.TrimSpace(string(d[:4]))))
				if len(d) > 5 && 5+int(d[4]) <= len(d) {
					setText(m, "DFF:CompressionName", d[5:5+int(d[4])])
				}
			}
		case "ABSS":
			if len(d) >= 8 {
				m.Attrs.Set("DFF:AbsoluteStartTime", attrs.Str(fmt.Sprintf("%02d:%02d:%02d+%d",
					be.Uint16(d), d[2], d[3], be.Uint32(d[4:]))))
			}
		case "LSCO":
			if len(d) >= 2 {
				m.Attrs.Set("DFF:LoudspeakerConfig", attrs.UInt(uint32(be.Uint16(d))))
			}
		}
	}
}

// dffText reads a DIIN text chunk: a 32-bit length, then the text.
func dffText(m *core.Metadata, key string, d []byte) {
	if len(d) < 4 {
		return
	}
	n := binary.BigEndian.Uint32(d)
	if uint64(n) <= uint64(len(d)-4) {
		setText(m, key, d[4:4+n])
	}
}
