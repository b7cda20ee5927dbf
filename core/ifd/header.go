// Package ifd decodes and encodes TIFF image file directories, the structure
// EXIF and every TIFF-derived RAW format is built on.
package ifd

import (
	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/endian"
)

const (
	MagicClassic uint16 = 42
	MagicBig     uint16 = 43

	// Vendor magics accepted only when the caller asks for them.
	MagicPanasonicRW2 uint16 = 0x55
	MagicOlympusORF   uint16 = 0x4F52
	MagicOlympusORF2  uint16 = 0x5352
)

// Header is a decoded TIFF header.
type Header struct {
	Order    endian.ByteOrder
	Magic    uint16
	FirstIFD uint64
	BigTIFF  bool
}

// Size is the header length in bytes: 8 for classic, 16 for BigTIFF.
func (h Header) Size() int {
	if h.BigTIFF {
		return 16
	}
	return 8
}

// ParseHeader decodes the TIFF header at the start of data. Magic 42 is a
// classic TIFF and 43 a BigTIFF; any value listed in relaxed is accepted
// and treated as classic, which is how RW2 and ORF files are opened.
func ParseHeader(data []byte, relaxed ...uint16) (Header, error) {
	var h Header
	if len(data) < 8 {
		return h, core.EOF(8, len(data))
	}
	order, err := endian.FromMarker(data)
	if err != nil {
		return h, err
	}
	h.Order = order
	h.Magic = order.Uint16(data[2:])

	switch h.Magic {
	case MagicClassic:
		h.FirstIFD = uint64(order.Uint32(data[4:]))
		return h, nil
	case MagicBig:
		if len(data) < 16 {
			return h, core.EOF(16, len(data))
		}
		if size := order.Uint16(data[4:]); size != 8 {
			return h, core.Structure("BigTIFF offset size %d, expected 8", size)
		}
		if reserved := order.Uint16(data[6:]); reserved != 0 {
			return h, core.Structure("BigTIFF reserved field is %d", reserved)
		}
		h.BigTIFF = true
		h.FirstIFD = order.Uint64(data[8:])
		return h, nil
	}
	for _, m := range relaxed {
		if h.Magic == m {
			h.FirstIFD = uint64(order.Uint32(data[4:]))
			return h, nil
		}
	}
	return h, &core.InvalidTiffMagicError{Magic: h.Magic}
}

// IsTIFF reports whether prefix starts with a classic or BigTIFF header.
func IsTIFF(prefix []byte) bool {
	if len(prefix) < 4 {
		return false
	}
	switch {
	case prefix[0] == 'I' && prefix[1] == 'I':
		return (prefix[2] == 0x2A || prefix[2] == 0x2B) && prefix[3] == 0
	case prefix[0] == 'M' && prefix[1] == 'M':
		return prefix[2] == 0 && (prefix[3] == 0x2A || prefix[3] == 0x2B)
	}
	return false
}

// EncodeHeader returns a classic 8-byte header pointing at firstIFD.
func EncodeHeader(order endian.ByteOrder, firstIFD uint32) []byte {
	b := append([]byte{}, order.Marker()...)
	b = order.AppendUint16(b, MagicClassic)
	return order.AppendUint32(b, firstIFD)
}
