package video

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/chunk"
)

func parse(t *testing.T, format string, data []byte) *core.Metadata {
	t.Helper()
	h := New(format)
	if !h.CanParse(data) {
		t.Fatalf("%s sniffer rejected the fixture", format)
	}
	m, err := h.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse %s: %v", format, err)
	}
	return m
}

func wantStr(t *testing.T, m *core.Metadata, key, want string) {
	t.Helper()
	if got, ok := m.Attrs.GetStr(key); !ok || got != want {
		t.Errorf("%s = %q (%v), want %q", key, got, ok, want)
	}
}

func wantUInt(t *testing.T, m *core.Metadata, key string, want uint32) {
	t.Helper()
	if got, ok := m.Attrs.GetUInt(key); !ok || got != want {
		t.Errorf("%s = %d (%v), want %d", key, got, ok, want)
	}
}

func wantDouble(t *testing.T, m *core.Metadata, key string, want float64) {
	t.Helper()
	got, ok := m.Attrs.GetDouble(key)
	if !ok || math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v (%v), want %v", key, got, ok, want)
	}
}

func be16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
func le64(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

func TestSniffers(t *testing.T) {
	cases := []struct {
		format string
		prefix string
		want   bool
	}{
		{MP4, "\x00\x00\x00\x18ftypisom", true},
		{MP4, "\x00\x00\x00\x18ftypheic", false},
		{MP4, "\x00\x00\x00\x18ftypM4A ", false},
		{MOV, "\x00\x00\x00\x14ftypqt  ", true},
		{MOV, "\x00\x00\x00\x08wide", true},
		{MOV, "\x00\x00\x00\x18ftypisom", false},
		{MKV, "\x1A\x45\xDF\xA3\x9F", true},
		{AVI, "RIFF\x00\x00\x00\x00AVI LIST", true},
		{AVI, "RIFF\x00\x00\x00\x00WAVEfmt ", false},
		{ASF, string(guidHeader[:]), true},
		{FLV, "FLV\x01\x05", true},
		{RM, ".RMF\x00\x00\x00\x12", true},
		{RM, "RMF.", false},
	}
	for _, c := range cases {
		if got := New(c.format).CanParse([]byte(c.prefix)); got != c.want {
			t.Errorf("%s.CanParse(%q) = %v, want %v", c.format, c.prefix, got, c.want)
		}
	}
}

// atom renders an ISO base media box.
func atom(typ string, payload ...[]byte) []byte {
	body := cat(payload...)
	return cat(be32(uint32(8+len(body))), []byte(typ), body)
}

// full prefixes a payload with version 0 and zero flags.
func full(payload ...[]byte) []byte {
	return cat(append([][]byte{make([]byte, 4)}, payload...)...)
}

func ilstItem(typ string, kind uint32, v []byte) []byte {
	return atom(typ, atom("data", be32(kind), make([]byte, 4), v))
}

func mp4Fixture() []byte {
	mvhd := atom("mvhd", full(be32(3600), be32(3600), be32(600), be32(1500), make([]byte, 80)))

	tkhd := make([]byte, 84)
	copy(tkhd[76:], be32(1920<<16))
	copy(tkhd[80:], be32(1080<<16))

	entry := make([]byte, 78)
	copy(entry[24:], be16(1920))
	copy(entry[26:], be16(1080))
	entry[42] = 4
	copy(entry[43:], "h264")
	stsd := atom("stsd", full(be32(1), atom("avc1", entry)))
	stts := atom("stts", full(be32(1), be32(60), be32(25)))
	mdia := atom("mdia",
		atom("mdhd", full(be32(0), be32(0), be32(600), be32(1500))),
		atom("hdlr", full(be32(0), []byte("vide"), make([]byte, 12))),
		atom("minf", atom("stbl", stsd, stts)),
	)
	trak := atom("trak", atom("tkhd", tkhd), mdia)

	ilst := atom("ilst",
		ilstItem("\xa9nam", 1, []byte("Clip")),
		ilstItem("trkn", 0, []byte{0, 0, 0, 3, 0, 12, 0, 0}),
		ilstItem("tmpo", 21, be16(120)),
		atom("----",
			atom("mean", make([]byte, 4), []byte("com.apple.iTunes")),
			atom("name", make([]byte, 4), []byte("MOOD")),
			atom("data", be32(1), make([]byte, 4), []byte("calm")),
		),
	)
	meta := atom("meta", full(atom("hdlr", full(be32(0), []byte("mdir"), make([]byte, 12))), ilst))
	udta := atom("udta",
		atom("\xa9mak", be16(5), be16(0x55C4), []byte("Acme!")),
		atom("\xa9xyz", be16(17), be16(0), []byte("+48.8577+002.295/")),
		meta,
	)
	moov := atom("moov", mvhd, trak, udta)
	return cat(atom("ftyp", []byte("isom"), be32(512), []byte("isomavc1")), moov, atom("mdat", make([]byte, 16)))
}

func TestMP4(t *testing.T) {
	m := parse(t, MP4, mp4Fixture())
	if m.Format != MP4 {
		t.Errorf("Format = %q, want MP4", m.Format)
	}
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantStr(t, m, "MP4:MajorBrand", "isom")
	wantUInt(t, m, "MP4:TimeScale", 600)
	wantDouble(t, m, "Video:Duration", 2.5)
	wantUInt(t, m, "Video:Width", 1920)
	wantUInt(t, m, "Video:Height", 1080)
	wantDouble(t, m, "Video:FrameRate", 24)
	wantStr(t, m, "Video:Codec", "avc1")
	wantStr(t, m, "MP4:CompressorName", "h264")
	wantUInt(t, m, "MP4:TrackCount", 1)
	wantStr(t, m, "QuickTime:Make", "Acme!")
	wantStr(t, m, "MP4:GPSCoordinates", "+48.8577+002.295/")
	wantStr(t, m, "ITunes:Title", "Clip")
	wantStr(t, m, "ITunes:Track", "3/12")
	wantStr(t, m, "ITunes:MOOD", "calm")
	if v, ok := m.Attrs.Get("ITunes:BPM"); !ok {
		t.Error("ITunes:BPM missing")
	} else if n, _ := v.AsInt(); n != 120 {
		t.Errorf("ITunes:BPM = %d, want 120", n)
	}
	if _, ok := m.Attrs.Get("MP4:CreateDate"); !ok {
		t.Error("MP4:CreateDate missing")
	}
	if v, _ := m.Attrs.Get("MP4:MediaDataSize"); v.String() != "16" {
		t.Errorf("MP4:MediaDataSize = %v, want 16", v)
	}
}

func TestMOVBrand(t *testing.T) {
	data := cat(atom("ftyp", []byte("qt  "), be32(0)), atom("moov", atom("mvhd", full(be32(0), be32(0), be32(1000), be32(4000), make([]byte, 80)))))
	m := parse(t, MOV, data)
	if m.Format != MOV {
		t.Errorf("Format = %q, want MOV", m.Format)
	}
	wantDouble(t, m, "Video:Duration", 4)
}

func TestMP4WithoutMovie(t *testing.T) {
	data := cat(atom("ftyp", []byte("isom"), be32(0)), atom("mdat", make([]byte, 8)))
	m := parse(t, MP4, data)
	if m.Warnings == nil {
		t.Error("expected a warning for the missing moov atom")
	}
}

// ebml renders an element with an eight-byte size field.
func ebml(id uint32, payload ...[]byte) []byte {
	var idb []byte
	for shift := 24; shift >= 0; shift -= 8 {
		if b := byte(id >> shift); b != 0 || len(idb) > 0 {
			idb = append(idb, b)
		}
	}
	body := cat(payload...)
	size := binary.BigEndian.AppendUint64(nil, uint64(len(body)))
	size[0] = 0x01
	return cat(idb, size, body)
}

func ebmlU(id uint32, v uint64) []byte {
	return ebml(id, binary.BigEndian.AppendUint64(nil, v))
}

func ebmlF(id uint32, v float64) []byte {
	return ebml(id, binary.BigEndian.AppendUint64(nil, math.Float64bits(v)))
}

func ebmlS(id uint32, s string) []byte { return ebml(id, []byte(s)) }

func mkvHeader(doc string) []byte {
	return ebml(ebmlHeader, ebmlS(ebmlDocType, doc), ebmlU(ebmlDocTypeVersion, 4))
}

func mkvInfo() []byte {
	return ebml(ebmlInfo,
		ebmlU(ebmlTimecodeScale, 1000000),
		ebmlF(ebmlDuration, 5000),
		ebmlS(ebmlTitle, "Test"),
		ebmlS(ebmlMuxingApp, "libebml"),
	)
}

func TestMatroska(t *testing.T) {
	tracks := ebml(ebmlTracks,
		ebml(ebmlTrackEntry,
			ebmlU(ebmlTrackType, 1),
			ebmlS(ebmlCodecID, "V_VP9"),
			ebmlU(ebmlDefaultDur, 40000000),
			ebml(ebmlVideo, ebmlU(ebmlPixelWidth, 640), ebmlU(ebmlPixelHeight, 360)),
		),
		ebml(ebmlTrackEntry,
			ebmlU(ebmlTrackType, 2),
			ebmlS(ebmlCodecID, "A_OPUS"),
			ebmlS(ebmlLanguage, "eng"),
			ebml(ebmlAudio, ebmlF(ebmlSamplingFreq, 48000), ebmlU(ebmlChannels, 2)),
		),
	)
	tags := ebml(ebmlTags, ebml(ebmlTag, ebml(ebmlSimpleTag, ebmlS(ebmlTagName, "ARTIST"), ebmlS(ebmlTagString, "Someone"))))
	data := cat(mkvHeader("webm"), ebml(ebmlSegment, mkvInfo(), tracks, tags))

	m := parse(t, MKV, data)
	if m.Format != WebM {
		t.Errorf("Format = %q, want WebM", m.Format)
	}
	wantStr(t, m, "Matroska:DocType", "webm")
	wantStr(t, m, "Matroska:Title", "Test")
	wantDouble(t, m, "Video:Duration", 5)
	wantUInt(t, m, "Video:Width", 640)
	wantUInt(t, m, "Video:Height", 360)
	wantDouble(t, m, "Video:FrameRate", 25)
	wantStr(t, m, "Video:Codec", "V_VP9")
	wantStr(t, m, "Audio:Codec", "A_OPUS")
	wantUInt(t, m, "Audio:SampleRate", 48000)
	wantUInt(t, m, "Audio:Channels", 2)
	wantStr(t, m, "Matroska:AudioLanguage", "eng")
	wantStr(t, m, "Matroska:ARTIST", "Someone")
	if l, ok := m.Attrs.GetList("Matroska:TrackTypes"); !ok || len(l) != 2 {
		t.Errorf("Matroska:TrackTypes = %v", l)
	}
}

func TestMatroskaSeekHead(t *testing.T) {
	cluster := ebml(ebmlCluster, make([]byte, 32))
	seek := func(pos uint64) []byte {
		return ebml(ebmlSeekHead, ebml(ebmlSeek, ebml(ebmlSeekID, be32(ebmlInfo)), ebmlU(ebmlSeekPosition, pos)))
	}
	head := seek(0)
	head = seek(uint64(len(head) + len(cluster)))
	data := cat(mkvHeader("matroska"), ebml(ebmlSegment, head, cluster, mkvInfo()))

	m := parse(t, MKV, data)
	if m.Format != MKV {
		t.Errorf("Format = %q, want MKV", m.Format)
	}
	wantStr(t, m, "Matroska:MuxingApp", "libebml")
	wantDouble(t, m, "Video:Duration", 5)
}

func TestReadVint(t *testing.T) {
	cases := []struct {
		in         []byte
		keepMarker bool
		want       uint64
		n          int
	}{
		{[]byte{0x81}, false, 1, 1},
		{[]byte{0x40, 0x02}, false, 2, 2},
		{[]byte{0x1A, 0x45, 0xDF, 0xA3}, true, 0x1A45DFA3, 4},
		{[]byte{0xFF}, false, math.MaxUint64, 1},
	}
	for _, c := range cases {
		got, n, ok := readVint(c.in, c.keepMarker)
		if !ok || got != c.want || n != c.n {
			t.Errorf("readVint(% X) = %d, %d, %v; want %d, %d", c.in, got, n, ok, c.want, c.n)
		}
	}
	if _, _, ok := readVint([]byte{0x00}, false); ok {
		t.Error("readVint accepted a zero first byte")
	}
}

// riffChunk renders a chunk for use inside a LIST payload.
func riffChunk(id string, data []byte) []byte {
	b := cat([]byte(id), le32(uint32(len(data))), data)
	if len(data)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func TestAVI(t *testing.T) {
	avih := make([]byte, 56)
	copy(avih, le32(40000))
	copy(avih[16:], le32(250))
	copy(avih[24:], le32(1))
	copy(avih[32:], le32(320))
	copy(avih[36:], le32(240))

	strh := make([]byte, 56)
	copy(strh, "vidsH264")
	copy(strh[20:], le32(1))
	copy(strh[24:], le32(25))

	strf := make([]byte, 40)
	copy(strf, le32(40))
	copy(strf[4:], le32(320))
	copy(strf[8:], le32(uint32(0xFFFFFF10))) // -240, top-down
	copy(strf[14:], le16(24))
	copy(strf[16:], "H264")

	strl := cat([]byte("strl"), riffChunk("strh", strh), riffChunk("strf", strf), riffChunk("strn", []byte("main\x00\x00")))
	hdrl := cat([]byte("hdrl"), riffChunk("avih", avih), riffChunk("LIST", strl))
	info := cat([]byte("INFO"), riffChunk("INAM", []byte("Holiday\x00")))
	data := chunk.WriteRIFF("AVI ", []chunk.Chunk{
		{ID: "LIST", Data: hdrl},
		{ID: "LIST", Data: info},
		{ID: "IDIT", Data: []byte("Mon Mar 03 10:00:00 2008\n\x00")},
		{ID: "LIST", Data: cat([]byte("movi"), riffChunk("00dc", make([]byte, 8)))},
	})

	m := parse(t, AVI, data)
	wantUInt(t, m, "Video:Width", 320)
	wantUInt(t, m, "Video:Height", 240)
	wantDouble(t, m, "Video:FrameRate", 25)
	wantDouble(t, m, "Video:Duration", 10)
	wantStr(t, m, "Video:Codec", "H264")
	wantUInt(t, m, "Video:BitDepth", 24)
	wantStr(t, m, "AVI:VideoHandler", "H264")
	wantUInt(t, m, "AVI:TotalFrames", 250)
	wantStr(t, m, "RIFF:Title", "Holiday")
	wantStr(t, m, "AVI:DateTimeOriginal", "Mon Mar 03 10:00:00 2008")
	if l, ok := m.Attrs.GetList("AVI:StreamNames"); !ok || len(l) != 1 {
		t.Errorf("AVI:StreamNames = %v", l)
	}
	if !m.Attrs.Contains("AVI:MoviSize") {
		t.Error("AVI:MoviSize missing")
	}
}

func TestAVIRejectsWave(t *testing.T) {
	data := chunk.WriteRIFF("WAVE", []chunk.Chunk{{ID: "data", Data: make([]byte, 4)}})
	if _, err := New(AVI).Parse(bytes.NewReader(data)); err == nil {
		t.Error("Parse accepted a WAVE form")
	}
}

func utf16z(s string) []byte {
	b, _ := utf16le.NewEncoder().Bytes([]byte(s))
	return append(b, 0, 0)
}

func asfObject(id guid, body ...[]byte) []byte {
	d := cat(body...)
	return cat(id[:], le64(uint64(24+len(d))), d)
}

func asfFixture(withVideo bool) []byte {
	props := make([]byte, 80)
	copy(props[16:], le64(123456))
	copy(props[24:], le64(128166372000000000)) // 2007-02-22
	copy(props[40:], le64(60000000))
	copy(props[56:], le64(3000))
	copy(props[76:], le32(128000))

	wfx := cat(le16(0x0161), le16(2), le32(44100), le32(16000), le16(4), le16(16))
	stream := func(kind guid, ts []byte) []byte {
		head := make([]byte, 54)
		copy(head, kind[:])
		copy(head[40:], le32(uint32(len(ts))))
		return asfObject(guidStreamProps, head, ts)
	}
	title, author := utf16z("Hi"), utf16z("Me")
	desc := cat(le16(uint16(len(title))), le16(uint16(len(author))), le16(0), le16(0), le16(0), title, author)
	name, val := utf16z("WM/AlbumTitle"), utf16z("Live")
	ext := cat(le16(1), le16(uint16(len(name))), name, le16(0), le16(uint16(len(val))), val)

	objects := [][]byte{
		asfObject(guidFileProps, props),
		stream(guidAudioMedia, wfx),
		asfObject(guidContentDesc, desc),
		asfObject(guidExtContent, ext),
	}
	if withVideo {
		bih := make([]byte, 40)
		copy(bih[4:], le32(640))
		copy(bih[8:], le32(480))
		copy(bih[16:], "WMV3")
		ts := cat(le32(640), le32(480), []byte{2}, le16(40), bih)
		objects = append(objects, stream(guidVideoMedia, ts))
	}
	body := cat(objects...)
	head := cat(guidHeader[:], le64(uint64(30+len(body))), le32(uint32(len(objects))), []byte{1, 2})
	return cat(head, body)
}

func TestASF(t *testing.T) {
	m := parse(t, ASF, asfFixture(false))
	if m.Format != WMA {
		t.Errorf("Format = %q, want WMA", m.Format)
	}
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantDouble(t, m, "Video:Duration", 3)
	wantUInt(t, m, "ASF:MaxBitrate", 128000)
	wantUInt(t, m, "Audio:SampleRate", 44100)
	wantStr(t, m, "ASF:Encoding", "Windows Media Audio")
	wantStr(t, m, "ASF:Title", "Hi")
	wantStr(t, m, "ASF:Author", "Me")
	wantStr(t, m, "ASF:WM/AlbumTitle", "Live")
	wantUInt(t, m, "ASF:HeaderObjects", 4)
	if v, ok := m.Attrs.Get("ASF:CreationDate"); !ok {
		t.Error("ASF:CreationDate missing")
	} else if tm, _ := v.AsDateTime(); tm.Year() != 2007 {
		t.Errorf("ASF:CreationDate = %v", tm)
	}

	m = parse(t, ASF, asfFixture(true))
	if m.Format != WMV {
		t.Errorf("Format = %q, want WMV", m.Format)
	}
	wantUInt(t, m, "Video:Width", 640)
	wantStr(t, m, "Video:Codec", "WMV3")
}

func str16(s string) []byte { return cat(be16(uint16(len(s))), []byte(s)) }

func amfNum(v float64) []byte {
	return cat([]byte{amfNumber}, binary.BigEndian.AppendUint64(nil, math.Float64bits(v)))
}

func flvTag(typ byte, body []byte) []byte {
	n := len(body)
	h := []byte{typ, byte(n >> 16), byte(n >> 8), byte(n), 0, 0, 0, 0, 0, 0, 0}
	return cat(h, body, be32(uint32(11+n)))
}

func TestFLV(t *testing.T) {
	script := cat(
		[]byte{amfString}, str16("onMetaData"),
		[]byte{amfECMAArray}, be32(6),
		str16("duration"), amfNum(12.5),
		str16("width"), amfNum(1280),
		str16("height"), amfNum(720),
		str16("framerate"), amfNum(30),
		str16("encoder"), []byte{amfString}, str16("Lavf"),
		str16("stereo"), []byte{amfBoolean, 1},
		str16("keyframes"), []byte{amfObject},
		str16("times"), []byte{amfStrictArray}, be32(2), amfNum(0), amfNum(2),
		[]byte{0, 0, amfObjectEnd},
		str16("nothing"), []byte{amfNull},
		[]byte{0, 0, amfObjectEnd},
	)
	data := cat(
		[]byte("FLV\x01\x05"), be32(9), be32(0),
		flvTag(flvScript, script),
		flvTag(flvAudio, []byte{0xAF, 0x01}),
		flvTag(flvVideo, []byte{0x17, 0x01}),
	)

	m := parse(t, FLV, data)
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	if v, _ := m.Attrs.GetBool("FLV:HasVideo"); !v {
		t.Error("FLV:HasVideo not set")
	}
	wantDouble(t, m, "Video:Duration", 12.5)
	wantUInt(t, m, "Video:Width", 1280)
	wantUInt(t, m, "Video:Height", 720)
	wantDouble(t, m, "Video:FrameRate", 30)
	wantStr(t, m, "FLV:encoder", "Lavf")
	wantStr(t, m, "FLV:AudioEncoding", "AAC")
	wantUInt(t, m, "Audio:SampleRate", 44100)
	wantUInt(t, m, "Audio:Channels", 2)
	wantStr(t, m, "Video:Codec", "AVC")
	if m.Attrs.Contains("FLV:nothing") {
		t.Error("null property was recorded")
	}
	g, ok := m.Attrs.Group("FLV:keyframes")
	if !ok {
		t.Fatal("FLV:keyframes group missing")
	}
	if l, ok := g.GetList("times"); !ok || len(l) != 2 {
		t.Errorf("keyframes.times = %v", l)
	}
}

func TestAMFDepth(t *testing.T) {
	var b []byte
	for i := 0; i <= amfDepth+1; i++ {
		b = append(b, amfStrictArray, 0, 0, 0, 1)
	}
	b = append(b, amfNull)
	d := &amfDecoder{b: b}
	if _, err := d.value(0); err == nil {
		t.Error("expected a nesting error")
	}
}

func rmChunk(id string, body ...[]byte) []byte {
	d := cat(body...)
	return cat([]byte(id), be32(uint32(10+len(d))), be16(0), d)
}

func TestRealMedia(t *testing.T) {
	prop := make([]byte, 40)
	copy(prop, be32(500000))
	copy(prop[4:], be32(350000))
	copy(prop[20:], be32(4500))
	copy(prop[36:], be16(2))

	mdpr := cat(make([]byte, 30), []byte{12}, []byte("Video Stream"), []byte{20}, []byte("video/x-pn-realvideo"), be32(0))
	cont := cat(str16("Trailer"), str16("Studio"), str16(""), str16("none"))
	data := cat(
		rmChunk(".RMF", be32(0), be32(4)),
		rmChunk("PROP", prop),
		rmChunk("MDPR", mdpr),
		rmChunk("CONT", cont),
		rmChunk("DATA", make([]byte, 8)),
	)

	m := parse(t, RM, data)
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantDouble(t, m, "Video:Duration", 4.5)
	wantUInt(t, m, "RM:AvgBitrate", 350000)
	wantUInt(t, m, "RM:NumStreams", 2)
	wantStr(t, m, "RM:StreamName", "Video Stream")
	wantStr(t, m, "RM:VideoMimeType", "video/x-pn-realvideo")
	wantStr(t, m, "RM:Title", "Trailer")
	wantStr(t, m, "RM:Author", "Studio")
	wantStr(t, m, "RM:Comment", "none")
	if m.Attrs.Contains("RM:Copyright") {
		t.Error("empty copyright was recorded")
	}
}

func TestRealMediaRejectsGarbage(t *testing.T) {
	if _, err := New(RM).Parse(bytes.NewReader(make([]byte, 32))); err == nil {
		t.Error("Parse accepted a stream without .RMF")
	}
}
