package video

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/audio"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

// aviStream is the header of the stream whose strf follows.
type aviStream struct {
	kind  string // strh fccType: vids, auds, txts
	codec string
	scale uint32
	rate  uint32
}

type aviState struct {
	streams []aviStream
	names   []string
}

func parseAVI(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	form, chunks, err := chunk.ReadRIFF(r)
	if form != "AVI " && form != "AVIX" {
		if err == nil {
			err = core.Structure("riff: form %q is not AVI", form)
		}
		return nil, err
	}
	if err != nil {
		m.Warn(err)
	}
	st := &aviState{}
	aviChunks(m, st, chunks, 0)
	var kinds []string
	for _, s := range st.streams {
		kinds = append(kinds, s.kind)
	}
	if len(kinds) > 0 {
		m.Attrs.Set("AVI:StreamTypes", attrs.Strs(kinds))
	}
	if len(st.names) > 0 {
		m.Attrs.Set("AVI:StreamNames", attrs.Strs(st.names))
	}
	return m, nil
}

func aviChunks(m *core.Metadata, st *aviState, chunks []chunk.Chunk, depth int) {
	for _, c := range chunks {
		if err := aviChunk(m, st, c, depth); err != nil {
			m.Warn(errors.Wrapf(err, "avi %q chunk", c.ID))
		}
	}
}

func aviChunk(m *core.Metadata, st *aviState, c chunk.Chunk, depth int) error {
	le := binary.LittleEndian
	d := c.Data
	switch c.ID {
	case "LIST":
		if len(d) < 4 {
			return core.EOF(4, len(d))
		}
		typ := string(d[:4])
		switch typ {
		case "movi", "rec ":
			m.Attrs.SetIfAbsent("AVI:MoviSize", attrs.UInt64(uint64(c.Size)))
			return nil
		}
		if len(d) == 4 || depth >= 4 {
			return nil
		}
		_, sub, err := chunk.List(d)
		if typ == "INFO" {
			audio.Info(m, sub)
		} else {
			aviChunks(m, st, sub, depth+1)
		}
		return err
	case "avih":
		if len(d) < 40 {
			return core.EOF(40, len(d))
		}
		usec := le.Uint32(d)
		frames := le.Uint32(d[16:])
		m.Attrs.Set("AVI:MicroSecPerFrame", attrs.UInt(usec))
		m.Attrs.Set("AVI:MaxDataRate", attrs.UInt(le.Uint32(d[4:])))
		m.Attrs.Set("AVI:TotalFrames", attrs.UInt(frames))
		m.Attrs.Set("AVI:StreamCount", attrs.UInt(le.Uint32(d[24:])))
		setFrame(m, le.Uint32(d[32:]), le.Uint32(d[36:]))
		if usec > 0 {
			setFrameRate(m, 1e6/float64(usec))
			setDuration(m, float64(frames)*float64(usec)/1e6)
		}
	case "strh":
		if len(d) < 36 {
			return core.EOF(36, len(d))
		}
		s := aviStream{
			kind:  string(d[:4]),
			codec: fourCC(d[4:8]),
			scale: le.Uint32(d[20:]),
			rate:  le.Uint32(d[24:]),
		}
		st.streams = append(st.streams, s)
		if s.kind == "vids" {
			setStr(m, "AVI:VideoHandler", s.codec)
			if s.scale > 0 && s.rate > 0 {
				m.Attrs.Set("Video:FrameRate", attrs.Double(float64(s.rate)/float64(s.scale)))
			}
		}
	case "strf":
		if len(st.streams) == 0 {
			return core.Structure("avi: strf before strh")
		}
		s := st.streams[len(st.streams)-1]
		switch s.kind {
		case "vids":
			if len(d) < 20 {
				return core.EOF(20, len(d))
			}
			setFrame(m, le.Uint32(d[4:]), uint32(abs(int32(le.Uint32(d[8:])))))
			m.Attrs.SetIfAbsent("Video:BitDepth", attrs.UInt(uint32(le.Uint16(d[14:]))))
			codec := fourCC(d[16:20])
			if codec == "0x00000000" {
				codec = "Uncompressed"
			}
			m.Attrs.SetIfAbsent("Video:Codec", attrs.Str(codec))
		case "auds":
			if _, err := audio.WaveFormat(m, "AVI", d); err != nil {
				return err
			}
			if enc, ok := m.Attrs.GetStr("AVI:Encoding"); ok {
				m.Attrs.SetIfAbsent("Audio:Codec", attrs.Str(enc))
			}
		}
	case "strn":
		if s := trimText(d); s != "" {
			st.names = append(st.names, s)
		}
	case "dmlh":
		if len(d) >= 4 {
			m.Attrs.Set("AVI:TotalFramesODML", attrs.UInt(le.Uint32(d)))
		}
	case "IDIT":
		setStr(m, "AVI:DateTimeOriginal", string(d))
	case "ISMP":
		setStr(m, "AVI:TimeCode", string(d))
	case "EXIF":
		tiff, _ := blocks.TrimExifHeader(d)
		blocks.EXIF(m, tiff, -1)
	case "XMP ", "_PMX":
		blocks.XMP(m, d)
	}
	return nil
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func trimText(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return string(b)
}
