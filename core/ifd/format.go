package ifd

import "strconv"

// Format is the TIFF field type code of an IFD entry.
type Format uint16

const (
	FormatUInt8     Format = 1
	FormatString    Format = 2
	FormatUInt16    Format = 3
	FormatUInt32    Format = 4
	FormatURational Format = 5
	FormatInt8      Format = 6
	FormatUndefined Format = 7
	FormatInt16     Format = 8
	FormatInt32     Format = 9
	FormatSRational Format = 10
	FormatFloat     Format = 11
	FormatDouble    Format = 12
	FormatIfd       Format = 13
	// EXIF 3.0 and BigTIFF extensions.
	FormatUnicode Format = 14
	FormatComplex Format = 15
	FormatUInt64  Format = 16
	FormatInt64   Format = 17
	FormatIfd64   Format = 18
	FormatUtf8    Format = 129
)

var formatNames = map[Format]string{
	FormatUInt8:     "int8u",
	FormatString:    "string",
	FormatUInt16:    "int16u",
	FormatUInt32:    "int32u",
	FormatURational: "rational64u",
	FormatInt8:      "int8s",
	FormatUndefined: "undef",
	FormatInt16:     "int16s",
	FormatInt32:     "int32s",
	FormatSRational: "rational64s",
	FormatFloat:     "float",
	FormatDouble:    "double",
	FormatIfd:       "ifd",
	FormatUnicode:   "unicode",
	FormatComplex:   "complex",
	FormatUInt64:    "int64u",
	FormatInt64:     "int64s",
	FormatIfd64:     "ifd64",
	FormatUtf8:      "utf8",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Size is the byte width of one element, or 0 for an unknown code.
func (f Format) Size() int {
	switch f {
	case FormatUInt8, FormatString, FormatInt8, FormatUndefined, FormatUtf8:
		return 1
	case FormatUInt16, FormatInt16, FormatUnicode:
		return 2
	case FormatUInt32, FormatInt32, FormatFloat, FormatIfd:
		return 4
	case FormatURational, FormatSRational, FormatDouble, FormatComplex,
		FormatUInt64, FormatInt64, FormatIfd64:
		return 8
	}
	return 0
}

// Valid reports whether f is a known type code.
func (f Format) Valid() bool { return f.Size() != 0 }
