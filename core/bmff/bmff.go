// Package bmff walks ISO base media file format boxes, the container shared
// by HEIF, AVIF, CR3, JPEG XL, JPEG 2000 and MP4/QuickTime.
package bmff

import (
	"encoding/binary"
	"io"
	"time"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
)

var bmffLogger = log.NewLogger("bmff")

// maxChildren bounds the boxes split out of one in-memory payload.
const maxChildren = 4096

// Header locates one box in a stream.
type Header struct {
	Type string
	// Offset is the file position of the size field.
	Offset int64
	// Size is the whole box including its header.
	Size int64
	// HeaderLen is 8, or 16 with a 64-bit size.
	HeaderLen int
}

// DataOffset is the position of the payload.
func (h Header) DataOffset() int64 { return h.Offset + int64(h.HeaderLen) }

// DataSize is the payload length.
func (h Header) DataSize() int64 { return h.Size - int64(h.HeaderLen) }

// Box is a box whose payload is in memory. Offset is relative to the buffer
// the box was split from.
type Box struct {
	Type   string
	Offset int
	Data   []byte
}

// ReadHeader decodes the box header at the current position of r. end is
// the end of the enclosing range; a size of zero extends the box to it.
func ReadHeader(r io.ReadSeeker, end int64) (Header, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Header{}, &core.IOError{Err: err}
	}
	var b [16]byte
	if _, err := io.ReadFull(r, b[:8]); err != nil {
		return Header{}, core.EOF(8, 0)
	}
	h := Header{Type: string(b[4:8]), Offset: pos, Size: int64(binary.BigEndian.Uint32(b[:4])), HeaderLen: 8}
	switch h.Size {
	case 0:
		h.Size = end - pos
	case 1:
		if _, err := io.ReadFull(r, b[8:16]); err != nil {
			return h, core.EOF(16, 8)
		}
		size := binary.BigEndian.Uint64(b[8:16])
		if size > uint64(end-pos) {
			return h, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: size, DataLen: uint64(end)}
		}
		h.Size = int64(size)
		h.HeaderLen = 16
	}
	if h.Size < int64(h.HeaderLen) || h.Offset+h.Size > end {
		return h, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: uint64(h.Size), DataLen: uint64(end)}
	}
	return h, nil
}

// Walk calls fn for every top-level box in [start, end). fn may read from
// r; the walk seeks past each box itself. A damaged box ends the walk and
// is returned as the error, together with whatever fn already saw.
func Walk(r io.ReadSeeker, start, end int64, fn func(h Header) error) error {
	pos := start
	for i := 0; pos+8 <= end; i++ {
		if i >= core.MaxWalkIterations {
			bmffLogger.Debugf(nil, "box walk stopped after %d boxes at %d", i, pos)
			return nil
		}
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return &core.IOError{Err: err}
		}
		h, err := ReadHeader(r, end)
		if err != nil {
			return errors.Wrapf(err, "box at %d", pos)
		}
		if err := fn(h); err != nil {
			return err
		}
		pos = h.Offset + h.Size
	}
	return nil
}

// Load reads the payload of h. Payloads over core.MaxChunkSize are refused.
func Load(r io.ReadSeeker, h Header) ([]byte, error) {
	n := h.DataSize()
	if n > core.MaxChunkSize {
		return nil, &core.MetadataTooLargeError{Size: uint64(n), Limit: core.MaxChunkSize}
	}
	if _, err := r.Seek(h.DataOffset(), io.SeekStart); err != nil {
		return nil, &core.IOError{Err: err}
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, &core.IOError{Err: errors.Wrapf(err, "%q payload", h.Type)}
	}
	return data, nil
}

// Split cuts an in-memory payload into its child boxes. Bytes that do not
// form a complete box end the split with an error; the boxes before it are
// returned.
func Split(data []byte) ([]Box, error) {
	var out []Box
	pos := 0
	for pos+8 <= len(data) {
		if len(out) >= maxChildren {
			return out, core.Structure("more than %d child boxes", maxChildren)
		}
		size := uint64(binary.BigEndian.Uint32(data[pos:]))
		typ := string(data[pos+4 : pos+8])
		hdr := 8
		switch size {
		case 0:
			size = uint64(len(data) - pos)
		case 1:
			if pos+16 > len(data) {
				return out, core.EOF(16, len(data)-pos)
			}
			size = binary.BigEndian.Uint64(data[pos+8:])
			hdr = 16
		}
		if size < uint64(hdr) || size > uint64(len(data)-pos) {
			return out, &core.ValueOutOfBoundsError{Offset: uint64(pos), Size: size, DataLen: uint64(len(data))}
		}
		out = append(out, Box{Type: typ, Offset: pos, Data: data[pos+hdr : pos+int(size)]})
		pos += int(size)
	}
	return out, nil
}

// Find returns the first child of data with the given type.
func Find(data []byte, typ string) (Box, bool) {
	boxes, _ := Split(data)
	for _, b := range boxes {
		if b.Type == typ {
			return b, true
		}
	}
	return Box{}, false
}

// Path descends through nested boxes, e.g. Path(moov, "udta", "meta").
// Full boxes on the way must be unwrapped by the caller.
func Path(data []byte, types ...string) (Box, bool) {
	b := Box{Data: data}
	for _, t := range types {
		var ok bool
		if b, ok = Find(b.Data, t); !ok {
			return Box{}, false
		}
	}
	return b, true
}

// FullBox splits the version and flags off a full box payload.
func FullBox(data []byte) (version uint8, flags uint32, body []byte, err error) {
	if len(data) < 4 {
		return 0, 0, nil, core.EOF(4, len(data))
	}
	return data[0], binary.BigEndian.Uint32(data) & 0xFFFFFF, data[4:], nil
}

// Brands reads an ftyp payload.
func Brands(data []byte) (major string, minor uint32, compatible []string) {
	if len(data) < 8 {
		return "", 0, nil
	}
	major, minor = string(data[:4]), binary.BigEndian.Uint32(data[4:])
	for p := 8; p+4 <= len(data); p += 4 {
		compatible = append(compatible, string(data[p:p+4]))
	}
	return major, minor, compatible
}

// CString reads a NUL-terminated string and returns the rest.
func CString(b []byte) (string, []byte) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:]
		}
	}
	return string(b), nil
}

// macEpoch is 1904-01-01, the origin of QuickTime and ISOBMFF
// timestamps, in Unix seconds.
const macEpoch = -2082844800

// MovieHeader is the decoded payload of an mvhd or mdhd box.
type MovieHeader struct {
	Created   time.Time
	Modified  time.Time
	TimeScale uint32
	Duration  uint64
}

// Seconds returns the duration in seconds, or 0 without a time scale.
func (h MovieHeader) Seconds() float64 {
	if h.TimeScale == 0 {
		return 0
	}
	return float64(h.Duration) / float64(h.TimeScale)
}

// ReadMovieHeader decodes an mvhd or mdhd payload. A zero timestamp stays
// the zero time.
func ReadMovieHeader(data []byte) (MovieHeader, error) {
	version, _, body, err := FullBox(data)
	if err != nil {
		return MovieHeader{}, err
	}
	be := binary.BigEndian
	stamp := func(v uint64) time.Time {
		if v == 0 {
			return time.Time{}
		}
		return time.Unix(int64(v)+macEpoch, 0).UTC()
	}
	var h MovieHeader
	if version == 1 {
		if len(body) < 28 {
			return h, core.EOF(28, len(body))
		}
		h.Created, h.Modified = stamp(be.Uint64(body)), stamp(be.Uint64(body[8:]))
		h.TimeScale, h.Duration = be.Uint32(body[16:]), be.Uint64(body[20:])
		return h, nil
	}
	if len(body) < 16 {
		return h, core.EOF(16, len(body))
	}
	h.Created, h.Modified = stamp(uint64(be.Uint32(body))), stamp(uint64(be.Uint32(body[4:])))
	h.TimeScale, h.Duration = be.Uint32(body[8:]), uint64(be.Uint32(body[12:]))
	return h, nil
}
