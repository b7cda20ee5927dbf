package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// mpegScan bounds the search for the first MPEG audio frame.
const mpegScan = 64 << 10

func parseMP3(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &core.IOError{Err: err}
	}
	if t, err := tag.ReadFrom(r); err == nil {
		addTag(m, t, "ID3")
	} else if err != tag.ErrNoTagsFound {
		m.Warn(errors.Wrap(err, "id3"))
	}
	var start int64
	head, err := core.ReadAt(r, 0, min(10, size), size)
	if err != nil {
		return nil, err
	}
	if n, ok := id3v2Size(head); ok {
		data, err := core.ReadAt(r, 0, min(n, size), size)
		if err != nil {
			m.Warn(errors.Wrap(err, "id3v2 tag"))
		} else {
			id3Frames(m, data)
		}
		start = n
	}
	if start < size {
		buf, err := core.ReadAt(r, start, min(mpegScan, size-start), size)
		if err != nil {
			return nil, err
		}
		if !mpegFrame(m, buf, size-start) && start == 0 {
			return nil, core.Structure("mp3: no ID3 tag and no MPEG frame")
		}
	}
	if size >= 128 {
		if tail, err := core.ReadAt(r, size-128, 3, size); err == nil && string(tail) == "TAG" {
			m.Attrs.Set("ID3:HasID3v1", attrs.Bool(true))
		}
	}
	return m, nil
}

// id3v2Size returns the length of an ID3v2 tag at the start of b, header
// and footer included.
func id3v2Size(b []byte) (int64, bool) {
	if len(b) < 10 || string(b[:3]) != "ID3" {
		return 0, false
	}
	n := int64(syncsafe(b[6:10])) + 10
	if b[5]&0x10 != 0 {
		n += 10
	}
	return n, true
}

func syncsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}

// addTag copies the common fields of a tag into the ns namespace. Existing
// keys win, so the first tag read takes precedence.
func addTag(m *core.Metadata, t tag.Metadata, ns string) {
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			m.Attrs.SetIfAbsent(ns+":"+k, attrs.Str(v))
		}
	}
	set("Title", t.Title())
	set("Artist", t.Artist())
	set("Album", t.Album())
	set("AlbumArtist", t.AlbumArtist())
	set("Composer", t.Composer())
	set("Genre", t.Genre())
	set("Comment", t.Comment())
	set("Lyrics", t.Lyrics())
	if y := t.Year(); y > 0 {
		m.Attrs.SetIfAbsent(ns+":Year", attrs.UInt(uint32(y)))
	}
	set("Track", position(t.Track()))
	set("Disc", position(t.Disc()))
	if p := t.Picture(); p != nil {
		set("PictureMIMEType", p.MIMEType)
		set("PictureType", p.Type)
		set("PictureDescription", p.Description)
		m.Attrs.SetIfAbsent(ns+":PictureLength", attrs.UInt(uint32(len(p.Data))))
		if m.Preview == nil {
			m.Preview = p.Data
		}
	}
	set("TagFormat", string(t.Format()))
}

func position(n, total int) string {
	switch {
	case n <= 0:
		return ""
	case total > 0:
		return fmt.Sprintf("%d/%d", n, total)
	}
	return fmt.Sprint(n)
}

// id3TextFrames are the text frames the common fields do not cover.
var id3TextFrames = map[string]string{
	"TCOP": "Copyright",
	"TENC": "EncodedBy",
	"TBPM": "BeatsPerMinute",
	"TSRC": "ISRC",
	"TPUB": "Publisher",
	"TLEN": "Length",
	"TSSE": "EncoderSettings",
	"TPE3": "Conductor",
	"TIT1": "Grouping",
	"TIT3": "Subtitle",
	"TKEY": "InitialKey",
	"TLAN": "Language",
	"TMOO": "Mood",
	"TEXT": "Lyricist",
	"TOPE": "OriginalArtist",
}

// id3Frames decodes the ID3v2 frames that the common fields leave out.
// data holds the whole tag.
func id3Frames(m *core.Metadata, data []byte) {
	t, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err == id3v2.ErrUnsupportedVersion {
		audioLogger.Debugf(nil, "id3v2.%d frames not decoded", data[3])
		m.Attrs.Set("ID3:Version", attrs.Str(fmt.Sprintf("2.%d", data[3])))
		return
	}
	if err != nil {
		m.Warn(errors.Wrap(err, "id3v2 frames"))
		return
	}
	m.Attrs.Set("ID3:Version", attrs.Str(fmt.Sprintf("2.%d", t.Version())))
	for id, key := range id3TextFrames {
		if s := strings.TrimSpace(t.GetTextFrame(id).Text); s != "" {
			m.Attrs.SetIfAbsent("ID3:"+key, attrs.Str(s))
		}
	}
	user := map[string]attrs.Value{}
	for _, f := range t.GetFrames("TXXX") {
		if u, ok := f.(id3v2.UserDefinedTextFrame); ok && u.Description != "" {
			user[u.Description] = attrs.Str(u.Value)
		}
	}
	if len(user) > 0 {
		m.Attrs.Set("ID3:UserDefinedText", attrs.Map(user))
	}
	for _, f := range t.GetFrames("COMM") {
		if c, ok := f.(id3v2.CommentFrame); ok {
			if c.Language != "" {
				m.Attrs.SetIfAbsent("ID3:CommentLanguage", attrs.Str(c.Language))
			}
			if c.Description != "" {
				m.Attrs.SetIfAbsent("ID3:CommentDescription", attrs.Str(c.Description))
			}
			break
		}
	}
	for _, f := range t.GetFrames("USLT") {
		if l, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok && l.Lyrics != "" {
			m.Attrs.SetIfAbsent("ID3:Lyrics", attrs.Str(l.Lyrics))
			break
		}
	}
	for _, f := range t.GetFrames("APIC") {
		if p, ok := f.(id3v2.PictureFrame); ok {
			m.Attrs.Set("ID3:PictureType", attrs.Str(pictureType(uint32(p.PictureType))))
			m.Attrs.SetIfAbsent("ID3:PictureMIMEType", attrs.Str(p.MimeType))
			m.Attrs.SetIfAbsent("ID3:PictureLength", attrs.UInt(uint32(len(p.Picture))))
			if m.Preview == nil {
				m.Preview = p.Picture
			}
			break
		}
	}
	for _, f := range t.GetFrames("UFID") {
		if u, ok := f.(id3v2.UFIDFrame); ok {
			m.Attrs.Set("ID3:UniqueFileID", attrs.Str(u.OwnerIdentifier+": "+text(u.Identifier)))
			break
		}
	}
}

// id3Chunk routes an ID3v2 tag embedded in a WAV, AIFF or DSF file.
func id3Chunk(m *core.Metadata, data []byte) {
	t, err := tag.ReadID3v2Tags(bytes.NewReader(data))
	if err != nil {
		m.Warn(errors.Wrap(err, "embedded id3"))
		return
	}
	addTag(m, t, "ID3")
	id3Frames(m, data)
}

// ─── MPEG audio frame header ─────────────────────────────────────────────────

var mpegBitrates = [5][16]uint32{
	{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448}, // V1 L1
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},    // V1 L2
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},     // V1 L3
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},    // V2 L1
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},         // V2 L2, L3
}

var mpegRates = map[byte][3]uint32{
	3: {44100, 48000, 32000},
	2: {22050, 24000, 16000},
	0: {11025, 12000, 8000},
}

var mpegVersions = map[byte]string{3: "1", 2: "2", 0: "2.5"}

var mpegChannelModes = []string{"Stereo", "Joint Stereo", "Dual Channel", "Mono"}

type mpegHeader struct {
	version  byte // 3 = MPEG-1, 2 = MPEG-2, 0 = MPEG-2.5
	layer    int  // 1, 2 or 3
	bitrate  uint32
	rate     uint32
	channels byte
}

func decodeMPEG(b []byte) (mpegHeader, bool) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return mpegHeader{}, false
	}
	h := mpegHeader{version: b[1] >> 3 & 3, layer: 4 - int(b[1]>>1&3), channels: b[3] >> 6}
	bi, ri := b[2]>>4, b[2]>>2&3
	if h.version == 1 || h.layer == 4 || bi == 15 || ri == 3 {
		return mpegHeader{}, false
	}
	row := h.layer - 1
	if h.version != 3 {
		row = 3
		if h.layer > 1 {
			row = 4
		}
	}
	h.bitrate = mpegBitrates[row][bi]
	h.rate = mpegRates[h.version][ri]
	return h, true
}

func (h mpegHeader) samplesPerFrame() uint32 {
	switch {
	case h.layer == 1:
		return 384
	case h.layer == 3 && h.version != 3:
		return 576
	}
	return 1152
}

func sniffMP3(b []byte) bool {
	if core.HasPrefixAt(b, 0, "ID3") {
		return true
	}
	_, ok := decodeMPEG(b)
	return ok
}

// mpegFrame finds the first frame header in buf and records the stream
// properties. audio is the byte length from the start of buf to the end of
// the file.
func mpegFrame(m *core.Metadata, buf []byte, audio int64) bool {
	for i := 0; i+4 <= len(buf); i++ {
		h, ok := decodeMPEG(buf[i:])
		if !ok {
			continue
		}
		m.Attrs.Set("MPEG:Version", attrs.Str(mpegVersions[h.version]))
		m.Attrs.Set("MPEG:Layer", attrs.UInt(uint32(h.layer)))
		m.Attrs.Set("MPEG:ChannelMode", attrs.Str(mpegChannelModes[h.channels]))
		channels := uint32(2)
		if h.channels == 3 {
			channels = 1
		}
		setStream(m, h.rate, channels, 0)
		if frames, ok := xingFrames(buf[i:], h); ok {
			m.Attrs.Set("MPEG:VBR", attrs.Bool(true))
			setDuration(m, float64(frames)*float64(h.samplesPerFrame())/float64(h.rate))
		} else if h.bitrate > 0 {
			m.Attrs.Set("Audio:Bitrate", attrs.UInt(h.bitrate*1000))
			setDuration(m, float64(audio-int64(i))*8/float64(h.bitrate*1000))
		}
		return true
	}
	return false
}

// xingFrames reads the frame count of a Xing VBR header. "Info" marks a
// CBR file written by the same encoders and is ignored.
func xingFrames(frame []byte, h mpegHeader) (uint32, bool) {
	off := 4 + 17
	switch {
	case h.version == 3 && h.channels != 3:
		off = 4 + 32
	case h.version != 3 && h.channels == 3:
		off = 4 + 9
	}
	if len(frame) < off+12 || string(frame[off:off+4]) != "Xing" {
		return 0, false
	}
	if binary.BigEndian.Uint32(frame[off+4:])&1 == 0 {
		return 0, false
	}
	return binary.BigEndian.Uint32(frame[off+8:]), true
}
