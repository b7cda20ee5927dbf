package audio

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// FLAC metadata block types.
const (
	flacStreamInfo    = 0
	flacPadding       = 1
	flacApplication   = 2
	flacSeekTable     = 3
	flacVorbisComment = 4
	flacCueSheet      = 5
	flacPicture       = 6
)

// maxComments bounds the entries of one Vorbis comment block.
const maxComments = 10000

func parseFLAC(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	pos := int64(4)
	for i := 0; ; i++ {
		if i >= core.MaxWalkIterations {
			audioLogger.Warningf(nil, "flac: stopped after %d metadata blocks", i)
			break
		}
		hdr, err := core.ReadAt(r, pos, 4, size)
		if err != nil {
			if i == 0 {
				return nil, errors.Wrap(err, "flac: no STREAMINFO")
			}
			m.Warn(errors.Wrapf(err, "flac block %d", i))
			break
		}
		last, typ := hdr[0]&0x80 != 0, hdr[0]&0x7F
		n := int64(hdr[1])<<16 | int64(hdr[2])<<8 | int64(hdr[3])
		if typ == 127 {
			return m, core.Structure("flac: invalid block type 127")
		}
		if typ != flacPadding && typ != flacSeekTable {
			data, err := core.ReadAt(r, pos+4, n, size)
			if err != nil {
				m.Warn(errors.Wrapf(err, "flac block %d (type %d)", i, typ))
			} else if err := flacBlock(m, typ, data); err != nil {
				m.Warn(errors.Wrapf(err, "flac block %d (type %d)", i, typ))
			}
		} else if typ == flacSeekTable {
			m.Attrs.Set("FLAC:SeekPoints", attrs.UInt(uint32(n/18)))
		}
		pos += 4 + n
		if last {
			break
		}
	}
	return m, nil
}

func flacBlock(m *core.Metadata, typ byte, d []byte) error {
	switch typ {
	case flacStreamInfo:
		if len(d) < 34 {
			return core.EOF(34, len(d))
		}
		be := binary.BigEndian
		m.Attrs.Set("FLAC:MinBlockSize", attrs.UInt(uint32(be.Uint16(d))))
		m.Attrs.Set("FLAC:MaxBlockSize", attrs.UInt(uint32(be.Uint16(d[2:]))))
		m.Attrs.Set("FLAC:MinFrameSize", attrs.UInt(uint24be(d[4:])))
		m.Attrs.Set("FLAC:MaxFrameSize", attrs.UInt(uint24be(d[7:])))
		// 20 bits rate, 3 bits channels-1, 5 bits bps-1, 36 bits samples.
		v := be.Uint64(d[10:])
		rate := uint32(v >> 44)
		channels := uint32(v>>41&0x7) + 1
		bits := uint32(v>>36&0x1F) + 1
		total := v & 0xFFFFFFFFF
		setStream(m, rate, channels, bits)
		if total > 0 {
			m.Attrs.Set("FLAC:TotalSamples", attrs.UInt64(total))
			if rate > 0 {
				setDuration(m, float64(total)/float64(rate))
			}
		}
		m.Attrs.Set("FLAC:MD5Signature", attrs.Str(hex.EncodeToString(d[18:34])))
	case flacApplication:
		if len(d) >= 4 {
			m.Attrs.Set("FLAC:ApplicationID", attrs.Str(string(d[:4])))
		}
	case flacVorbisComment:
		return vorbisComments(m, d)
	case flacCueSheet:
		if len(d) >= 128 {
			setText(m, "FLAC:MediaCatalogNumber", d[:128])
		}
	case flacPicture:
		return flacPictureBlock(m, d)
	}
	return nil
}

func uint24be(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// vorbisComments decodes a comment header: a little-endian vendor string,
// then FIELD=value items. Field names are upper-cased; a repeated field
// becomes a list.
func vorbisComments(m *core.Metadata, d []byte) error {
	le := binary.LittleEndian
	str := func() (string, error) {
		if len(d) < 4 {
			return "", core.EOF(4, len(d))
		}
		n := le.Uint32(d)
		if uint64(n) > uint64(len(d)-4) {
			return "", &core.ValueOutOfBoundsError{Offset: 4, Size: uint64(n), DataLen: uint64(len(d))}
		}
		s := string(d[4 : 4+n])
		d = d[4+n:]
		return s, nil
	}
	vendor, err := str()
	if err != nil {
		return errors.Wrap(err, "vorbis vendor")
	}
	if vendor != "" {
		m.Attrs.Set("Vorbis:Vendor", attrs.Str(vendor))
	}
	if len(d) < 4 {
		return core.EOF(4, len(d))
	}
	count := le.Uint32(d)
	d = d[4:]
	if count > maxComments {
		return &core.TooManyIfdEntriesError{Count: uint64(count), Limit: maxComments}
	}
	var order []string
	fields := map[string][]string{}
	for i := uint32(0); i < count; i++ {
		c, err := str()
		if err != nil {
			return errors.Wrapf(err, "vorbis comment %d", i)
		}
		k, v, ok := strings.Cut(c, "=")
		if !ok || k == "" {
			continue
		}
		k = strings.ToUpper(k)
		if _, seen := fields[k]; !seen {
			order = append(order, k)
		}
		fields[k] = append(fields[k], v)
	}
	for _, k := range order {
		if vs := fields[k]; len(vs) == 1 {
			m.Attrs.Set("Vorbis:"+k, attrs.Str(vs[0]))
		} else {
			m.Attrs.Set("Vorbis:"+k, attrs.Strs(vs))
		}
	}
	return nil
}

// flacPictureBlock decodes a PICTURE block, whose layout METADATA_BLOCK_PICTURE
// comments in Ogg files share.
func flacPictureBlock(m *core.Metadata, d []byte) error {
	be := binary.BigEndian
	u32 := func() (uint32, error) {
		if len(d) < 4 {
			return 0, core.EOF(4, len(d))
		}
		v := be.Uint32(d)
		d = d[4:]
		return v, nil
	}
	str := func() ([]byte, error) {
		n, err := u32()
		if err != nil {
			return nil, err
		}
		if uint64(n) > uint64(len(d)) {
			return nil, &core.ValueOutOfBoundsError{Size: uint64(n), DataLen: uint64(len(d))}
		}
		s := d[:n]
		d = d[n:]
		return s, nil
	}
	typ, err := u32()
	if err != nil {
		return err
	}
	mime, err := str()
	if err != nil {
		return errors.Wrap(err, "picture MIME type")
	}
	desc, err := str()
	if err != nil {
		return errors.Wrap(err, "picture description")
	}
	var dims [4]uint32
	for i := range dims {
		if dims[i], err = u32(); err != nil {
			return err
		}
	}
	data, err := str()
	if err != nil {
		return errors.Wrap(err, "picture data")
	}
	m.Attrs.Set("FLAC:PictureType", attrs.Str(pictureType(typ)))
	m.Attrs.Set("FLAC:PictureMIMEType", attrs.Str(string(mime)))
	if len(desc) > 0 {
		m.Attrs.Set("FLAC:PictureDescription", attrs.Str(string(desc)))
	}
	m.Attrs.Set("FLAC:PictureWidth", attrs.UInt(dims[0]))
	m.Attrs.Set("FLAC:PictureHeight", attrs.UInt(dims[1]))
	m.Attrs.Set("FLAC:PictureBitsPerPixel", attrs.UInt(dims[2]))
	if dims[3] != 0 {
		m.Attrs.Set("FLAC:PictureIndexedColors", attrs.UInt(dims[3]))
	}
	m.Attrs.Set("FLAC:PictureLength", attrs.UInt(uint32(len(data))))
	if m.Preview == nil && len(data) > 0 {
		m.Preview = data
	}
	return nil
}
