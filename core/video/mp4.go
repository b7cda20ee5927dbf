package video

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/blocks"
	"github.com/ankit-chaubey/metasurgery/core/bmff"
)

// xmpUUID is the uuid box type that carries an XMP packet.
var xmpUUID = []byte{0xBE, 0x7A, 0xCF, 0xCB, 0x97, 0xA9, 0x42, 0xE8, 0x9C, 0x71, 0x99, 0x94, 0x91, 0xE3, 0xAF, 0xAC}

// iTunes metadata atom names.
var itunesAtomNames = map[string]string{
	"\xa9nam": "Title",
	"\xa9ART": "Artist",
	"\xa9alb": "Album",
	"\xa9day": "Year",
	"\xa9gen": "Genre",
	"\xa9cmt": "Comment",
	"\xa9lyr": "Lyrics",
	"\xa9too": "EncodingTool",
	"\xa9wrt": "Composer",
	"\xa9grp": "Grouping",
	"\xa9des": "Description",
	"aART":    "AlbumArtist",
	"cprt":    "Copyright",
	"desc":    "Description",
	"ldes":    "LongDescription",
	"tvsh":    "TVShowName",
	"tvsn":    "TVSeason",
	"tves":    "TVEpisode",
	"tven":    "TVEpisodeName",
	"purl":    "PodcastURL",
	"catg":    "Category",
	"keyw":    "Keywords",
	"cpil":    "Compilation",
	"tmpo":    "BPM",
	"hdvd":    "HDVideo",
	"stik":    "MediaKind",
	"rtng":    "ContentRating",
	"trkn":    "Track",
	"disk":    "Disc",
	"covr":    "CoverArt",
}

// QuickTime user data text atoms ("©xxx" directly under udta).
var udtaNames = map[string]string{
	"\xa9nam": "Title",
	"\xa9ART": "Artist",
	"\xa9cmt": "Comment",
	"\xa9day": "ContentCreateDate",
	"\xa9mak": "Make",
	"\xa9mod": "Model",
	"\xa9swr": "Software",
	"\xa9inf": "Information",
	"\xa9des": "Description",
}

// mp4Track collects one trak while it is decoded.
type mp4Track struct {
	handler string
	codec   string
}

func parseMP4(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	sawMovie := false
	err = bmff.Walk(r, 0, size, func(h bmff.Header) error {
		switch h.Type {
		case "ftyp":
			data, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			major, minor, compat := bmff.Brands(data)
			m.Attrs.Set("MP4:MajorBrand", attrs.Str(major))
			m.Attrs.Set("MP4:MinorVersion", attrs.UInt(minor))
			if len(compat) > 0 {
				m.Attrs.Set("MP4:CompatibleBrands", attrs.Strs(compat))
			}
			if major == "qt  " {
				m.Format = MOV
			}
		case "moov":
			data, err := bmff.Load(r, h)
			if err != nil {
				return err
			}
			sawMovie = true
			movie(m, data)
		case "mdat":
			m.Attrs.Set("MP4:MediaDataSize", attrs.UInt64(uint64(h.DataSize())))
			m.Attrs.Set("MP4:MediaDataOffset", attrs.UInt64(uint64(h.DataOffset())))
		case "uuid":
			if h.DataSize() < 16 {
				return nil
			}
			data, err := bmff.Load(r, h)
			if err != nil {
				m.Warn(errors.Wrap(err, "uuid box"))
				return nil
			}
			if bytes.Equal(data[:16], xmpUUID) {
				blocks.XMP(m, data[16:])
			}
		}
		return nil
	})
	if err != nil {
		if !sawMovie {
			return nil, err
		}
		m.Warn(err)
	}
	if !sawMovie {
		m.Warn(core.Structure("mp4: no moov atom"))
	}
	return m, nil
}

// movie decodes a moov payload.
func movie(m *core.Metadata, moov []byte) {
	boxes, err := bmff.Split(moov)
	if err != nil {
		m.Warn(errors.Wrap(err, "moov"))
	}
	var tracks []mp4Track
	for _, b := range boxes {
		switch b.Type {
		case "mvhd":
			h, err := bmff.ReadMovieHeader(b.Data)
			if err != nil {
				m.Warn(errors.Wrap(err, "mvhd"))
				continue
			}
			m.Attrs.Set("MP4:TimeScale", attrs.UInt(h.TimeScale))
			setDuration(m, h.Seconds())
			if !h.Created.IsZero() {
				m.Attrs.Set("MP4:CreateDate", attrs.DateTime(h.Created))
			}
			if !h.Modified.IsZero() {
				m.Attrs.Set("MP4:ModifyDate", attrs.DateTime(h.Modified))
			}
		case "trak":
			tracks = append(tracks, track(m, b.Data))
		case "udta":
			userData(m, b.Data)
		case "meta":
			itunes(m, b.Data)
		case "uuid":
			if len(b.Data) >= 16 && bytes.Equal(b.Data[:16], xmpUUID) {
				blocks.XMP(m, b.Data[16:])
			}
		}
	}
	if len(tracks) == 0 {
		return
	}
	m.Attrs.Set("MP4:TrackCount", attrs.UInt(uint32(len(tracks))))
	var handlers []string
	for _, t := range tracks {
		handlers = append(handlers, t.handler)
		switch t.handler {
		case "vide":
			if t.codec != "" {
				m.Attrs.SetIfAbsent("Video:Codec", attrs.Str(t.codec))
			}
		case "soun":
			if t.codec != "" {
				m.Attrs.SetIfAbsent("Audio:Codec", attrs.Str(t.codec))
			}
		}
	}
	m.Attrs.Set("MP4:HandlerTypes", attrs.Strs(handlers))
}

// track decodes one trak: tkhd dimensions, the media handler and the
// first sample description.
func track(m *core.Metadata, trak []byte) mp4Track {
	var t mp4Track
	var width, height uint32
	if b, ok := bmff.Find(trak, "tkhd"); ok {
		// Width and height are 16.16 fixed point at the end of the box.
		if n := len(b.Data); n >= 84 {
			width = binary.BigEndian.Uint32(b.Data[n-8:]) >> 16
			height = binary.BigEndian.Uint32(b.Data[n-4:]) >> 16
		}
	}
	mdia, ok := bmff.Find(trak, "mdia")
	if !ok {
		return t
	}
	if b, ok := bmff.Find(mdia.Data, "hdlr"); ok && len(b.Data) >= 12 {
		t.handler = string(b.Data[8:12])
	}
	if t.handler == "vide" {
		setFrame(m, width, height)
	}
	var timescale uint32
	if b, ok := bmff.Find(mdia.Data, "mdhd"); ok {
		if h, err := bmff.ReadMovieHeader(b.Data); err == nil {
			timescale = h.TimeScale
		}
	}
	stbl, ok := bmff.Path(mdia.Data, "minf", "stbl")
	if !ok {
		return t
	}
	if b, ok := bmff.Find(stbl.Data, "stsd"); ok {
		t.codec = sampleEntry(m, t.handler, b.Data)
	}
	if t.handler == "vide" && timescale > 0 {
		if b, ok := bmff.Find(stbl.Data, "stts"); ok {
			frameRate(m, b.Data, timescale)
		}
	}
	return t
}

// sampleEntry decodes the first entry of an stsd box and returns its
// codec four-cc.
func sampleEntry(m *core.Metadata, handler string, stsd []byte) string {
	_, _, body, err := bmff.FullBox(stsd)
	if err != nil || len(body) < 4 {
		return ""
	}
	entries, _ := bmff.Split(body[4:])
	if len(entries) == 0 {
		return ""
	}
	e := entries[0]
	be := binary.BigEndian
	switch handler {
	case "vide":
		// 8 bytes SampleEntry, 16 reserved, then width and height.
		if len(e.Data) >= 28 {
			setFrame(m, uint32(be.Uint16(e.Data[24:])), uint32(be.Uint16(e.Data[26:])))
		}
		// The compressor name is a 32-byte Pascal string at 42.
		if len(e.Data) >= 74 {
			if n := int(e.Data[42]); n > 0 && n < 32 {
				setStr(m, "MP4:CompressorName", string(e.Data[43:43+n]))
			}
		}
	case "soun":
		if len(e.Data) >= 28 {
			setAudio(m, be.Uint32(e.Data[24:])>>16, uint32(be.Uint16(e.Data[16:])), uint32(be.Uint16(e.Data[18:])))
		}
	}
	return fourCC([]byte(e.Type))
}

// frameRate derives the frame rate from a constant-duration stts table.
func frameRate(m *core.Metadata, stts []byte, timescale uint32) {
	_, _, body, err := bmff.FullBox(stts)
	if err != nil || len(body) < 12 {
		return
	}
	if binary.BigEndian.Uint32(body) != 1 {
		return
	}
	if delta := binary.BigEndian.Uint32(body[8:]); delta > 0 {
		setFrameRate(m, float64(timescale)/float64(delta))
	}
}

// userData decodes udta: QuickTime "©xxx" text atoms, the ISO 6709 GPS
// location, an XMP_ atom and a nested iTunes meta box.
func userData(m *core.Metadata, udta []byte) {
	boxes, err := bmff.Split(udta)
	if err != nil {
		m.Warn(errors.Wrap(err, "udta"))
	}
	for _, b := range boxes {
		switch {
		case b.Type == "meta":
			itunes(m, b.Data)
		case b.Type == "XMP_":
			blocks.XMP(m, b.Data)
		case b.Type == "\xa9xyz":
			if s, ok := qtText(b.Data); ok {
				m.Attrs.Set("MP4:GPSCoordinates", attrs.Str(s))
			}
		default:
			if name, ok := udtaNames[b.Type]; ok {
				if s, ok := qtText(b.Data); ok {
					m.Attrs.Set("QuickTime:"+name, attrs.Str(s))
				}
			}
		}
	}
}

// qtText reads a QuickTime international text item: 16-bit length,
// 16-bit language, then the text.
func qtText(d []byte) (string, bool) {
	if len(d) < 4 {
		return "", false
	}
	n := int(binary.BigEndian.Uint16(d))
	if 4+n > len(d) {
		return "", false
	}
	s := strings.TrimRight(string(d[4:4+n]), "\x00")
	return s, s != ""
}

// itunes decodes a meta box holding an ilst. ISO meta boxes are full boxes;
// QuickTime ones are not.
func itunes(m *core.Metadata, meta []byte) {
	if len(meta) >= 8 && string(meta[4:8]) != "hdlr" {
		meta = meta[4:]
	}
	ilst, ok := bmff.Find(meta, "ilst")
	if !ok {
		return
	}
	items, err := bmff.Split(ilst.Data)
	if err != nil {
		m.Warn(errors.Wrap(err, "ilst"))
	}
	for _, it := range items {
		if it.Type == "----" {
			if key, val := freeform(it.Data); key != "" {
				m.Attrs.Set("ITunes:"+key, attrs.Str(val))
			}
			continue
		}
		name, ok := itunesAtomNames[it.Type]
		if !ok {
			name = strings.TrimPrefix(it.Type, "\xa9")
		}
		if v, ok := ilstValue(m, it.Type, it.Data); ok {
			m.Attrs.Set("ITunes:"+name, v)
		}
	}
}

// ilstValue reads the data atom of an ilst item. The well-known type codes
// are 1 (UTF-8), 13/14 (JPEG/PNG) and 21 (big-endian signed integer).
func ilstValue(m *core.Metadata, typ string, item []byte) (attrs.Value, bool) {
	d, ok := bmff.Find(item, "data")
	if !ok || len(d.Data) < 8 {
		return attrs.Value{}, false
	}
	kind := binary.BigEndian.Uint32(d.Data) & 0xFFFFFF
	v := d.Data[8:]
	switch {
	case typ == "trkn" || typ == "disk":
		if len(v) >= 6 {
			n, total := binary.BigEndian.Uint16(v[2:]), binary.BigEndian.Uint16(v[4:])
			if total > 0 {
				return attrs.Str(fmt.Sprintf("%d/%d", n, total)), true
			}
			return attrs.Str(fmt.Sprint(n)), true
		}
	case kind == 13 || kind == 14:
		if m.Preview == nil {
			m.Preview = v
		}
		return attrs.UInt(uint32(len(v))), true
	case kind == 21 || kind == 0:
		switch len(v) {
		case 1:
			return attrs.Int(int32(int8(v[0]))), true
		case 2:
			return attrs.Int(int32(int16(binary.BigEndian.Uint16(v)))), true
		case 4:
			return attrs.Int(int32(binary.BigEndian.Uint32(v))), true
		case 8:
			return attrs.Int64(int64(binary.BigEndian.Uint64(v))), true
		}
	default:
		if s := strings.TrimRight(string(v), "\x00"); s != "" {
			return attrs.Str(s), true
		}
	}
	return attrs.Value{}, false
}

// freeform decodes a "----" item: mean, name and data sub-atoms.
func freeform(item []byte) (key, val string) {
	parts, _ := bmff.Split(item)
	var domain, name string
	for _, p := range parts {
		if len(p.Data) < 4 {
			continue
		}
		switch p.Type {
		case "mean":
			domain = string(p.Data[4:])
		case "name":
			name = string(p.Data[4:])
		case "data":
			if len(p.Data) >= 8 {
				val = strings.TrimRight(string(p.Data[8:]), "\x00")
			}
		}
	}
	if name == "" || val == "" {
		return "", ""
	}
	if domain != "" && domain != "com.apple.iTunes" {
		return domain + ":" + name, val
	}
	return name, val
}
