package exif

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/ifd"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

var le = endian.LittleEndian

// Encode serialises the standard EXIF tags found in a into a little-endian
// TIFF block: IFD0, then the Exif, Interop and GPS directories, then IFD1
// when thumb is non-empty, then the thumbnail bytes. Keys may carry the
// "EXIF:" prefix. Unknown, structural and vendor keys are skipped, and so
// are values that cannot be coerced to the tag's type. It returns nil when
// there is nothing to write.
func Encode(a *attrs.Attrs, thumb []byte) ([]byte, error) {
	dirs := Directories(a, le)

	ifd0, exifDir, gps, interop := dirs[tags.IFD0], dirs[tags.ExifIFD], dirs[tags.GPSIFD], dirs[tags.InteropIFD]
	if ifd0.Len()+exifDir.Len()+gps.Len()+interop.Len() == 0 && len(thumb) == 0 {
		return nil, nil
	}

	// Pointers are added with placeholder values so sizes are final before
	// offsets are assigned.
	if interop.Len() > 0 {
		exifDir.Add(ifd.Longs(le, tags.TagInteropIFD, 0))
	}
	if exifDir.Len() > 0 {
		ifd0.Add(ifd.Longs(le, tags.TagExifIFD, 0))
	}
	if gps.Len() > 0 {
		ifd0.Add(ifd.Longs(le, tags.TagGPSIFD, 0))
	}
	var ifd1 *ifd.Builder
	if len(thumb) > 0 {
		ifd1 = ifd.NewBuilder(le)
		ifd1.Add(ifd.Shorts(le, tags.TagCompression, 6))
		ifd1.Add(ifd.Rationals(le, 0x011A, endian.URational{Num: 72, Den: 1}))
		ifd1.Add(ifd.Rationals(le, 0x011B, endian.URational{Num: 72, Den: 1}))
		ifd1.Add(ifd.Shorts(le, 0x0128, 2))
		ifd1.Add(ifd.Longs(le, tags.TagThumbnailOffset, 0))
		ifd1.Add(ifd.Longs(le, tags.TagThumbnailLength, uint32(len(thumb))))
	}

	pos := uint32(8)
	ifd0At := pos
	pos += ifd0.Size()
	var exifAt, interopAt, gpsAt, ifd1At, thumbAt uint32
	if exifDir.Len() > 0 {
		exifAt = pos
		pos += exifDir.Size()
	}
	if interop.Len() > 0 {
		interopAt = pos
		pos += interop.Size()
	}
	if gps.Len() > 0 {
		gpsAt = pos
		pos += gps.Size()
	}
	if ifd1 != nil {
		ifd1At = pos
		pos += ifd1.Size()
		thumbAt = pos
		if uint64(pos)+uint64(len(thumb)) > math.MaxUint32 {
			return nil, errors.Errorf("EXIF block too large: %d bytes", uint64(pos)+uint64(len(thumb)))
		}
	}

	if exifAt != 0 {
		ifd0.Add(ifd.Longs(le, tags.TagExifIFD, exifAt))
	}
	if gpsAt != 0 {
		ifd0.Add(ifd.Longs(le, tags.TagGPSIFD, gpsAt))
	}
	if interopAt != 0 {
		exifDir.Add(ifd.Longs(le, tags.TagInteropIFD, interopAt))
	}

	out := ifd.EncodeHeader(le, ifd0At)
	out = append(out, ifd0.Encode(ifd0At, ifd1At)...)
	if exifAt != 0 {
		out = append(out, exifDir.Encode(exifAt, 0)...)
	}
	if interopAt != 0 {
		out = append(out, interop.Encode(interopAt, 0)...)
	}
	if gpsAt != 0 {
		out = append(out, gps.Encode(gpsAt, 0)...)
	}
	if ifd1 != nil {
		ifd1.Add(ifd.Longs(le, tags.TagThumbnailOffset, thumbAt))
		out = append(out, ifd1.Encode(ifd1At, 0)...)
		out = append(out, thumb...)
	}
	return out, nil
}

// Directories sorts the writable standard tags of a into IFD0, Exif, GPS
// and Interop builders using byte order o. Pointer tags are not added.
func Directories(a *attrs.Attrs, o endian.ByteOrder) map[tags.Context]*ifd.Builder {
	dirs := map[tags.Context]*ifd.Builder{
		tags.IFD0:       ifd.NewBuilder(o),
		tags.ExifIFD:    ifd.NewBuilder(o),
		tags.GPSIFD:     ifd.NewBuilder(o),
		tags.InteropIFD: ifd.NewBuilder(o),
	}
	if a == nil {
		return dirs
	}
	for _, key := range a.Keys() {
		name := strings.TrimPrefix(key, "EXIF:")
		if strings.Contains(name, ":") {
			continue
		}
		ref, ok := tags.Find(name)
		if !ok || !ref.Def.Writable() {
			continue
		}
		b := dirs[ref.Context]
		if b == nil || b.Has(ref.Tag) {
			continue
		}
		v, _ := a.Get(key)
		f, err := Field(o, ref, v)
		if err != nil {
			exifLogger.Warningf(nil, "not writing %s: %s", name, err.Error())
			continue
		}
		b.Add(f)
	}
	return dirs
}

// Field converts v to the wire type of the tag ref names. Strings are
// accepted for every type: numbers, "N/D" fractions, space separated lists
// and enum descriptions are all parsed.
func Field(o endian.ByteOrder, ref tags.Ref, v attrs.Value) (ifd.Field, error) {
	def, tag := ref.Def, ref.Tag
	switch def.Format {
	case ifd.FormatString:
		return ifd.ASCII(tag, text(v)), nil
	case ifd.FormatUndefined:
		b, err := undefined(def, v)
		if err != nil {
			return ifd.Field{}, err
		}
		return ifd.Undefined(tag, b), nil
	case ifd.FormatUInt8:
		if s, ok := v.AsStr(); ok && strings.HasPrefix(def.Name, "XP") {
			b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
			if err != nil {
				return ifd.Field{}, err
			}
			return ifd.Bytes(tag, append(b, 0, 0)), nil
		}
		if b, ok := v.AsBytes(); ok {
			return ifd.Bytes(tag, b), nil
		}
		ns, err := uints(v, def.Values, math.MaxUint8)
		if err != nil {
			return ifd.Field{}, err
		}
		b := make([]byte, len(ns))
		for i, n := range ns {
			b[i] = byte(n)
		}
		return ifd.Bytes(tag, b), nil
	case ifd.FormatUInt16:
		ns, err := uints(v, def.Values, math.MaxUint16)
		if err != nil {
			return ifd.Field{}, err
		}
		s := make([]uint16, len(ns))
		for i, n := range ns {
			s[i] = uint16(n)
		}
		return ifd.Shorts(o, tag, s...), nil
	case ifd.FormatUInt32:
		ns, err := uints(v, def.Values, math.MaxUint32)
		if err != nil {
			return ifd.Field{}, err
		}
		s := make([]uint32, len(ns))
		for i, n := range ns {
			s[i] = uint32(n)
		}
		return ifd.Longs(o, tag, s...), nil
	case ifd.FormatInt16:
		ns, err := ints(v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return ifd.Field{}, err
		}
		s := make([]int16, len(ns))
		for i, n := range ns {
			s[i] = int16(n)
		}
		return ifd.SShorts(o, tag, s...), nil
	case ifd.FormatURational:
		rs, err := urationals(v)
		if err != nil {
			return ifd.Field{}, err
		}
		return ifd.Rationals(o, tag, rs...), nil
	case ifd.FormatSRational:
		rs, err := srationals(v)
		if err != nil {
			return ifd.Field{}, err
		}
		return ifd.SRationals(o, tag, rs...), nil
	}
	return ifd.Field{}, errors.Errorf("%s: no encoder for %s", def.Name, def.Format)
}

func text(v attrs.Value) string {
	if s, ok := v.AsStr(); ok {
		return s
	}
	if t, ok := v.AsDateTime(); ok {
		return endian.FormatExifDate(t)
	}
	return v.String()
}

// userCommentASCII is the 8-byte character code prefix of UserComment.
var userCommentASCII = []byte("ASCII\x00\x00\x00")

func undefined(def tags.Def, v attrs.Value) ([]byte, error) {
	if b, ok := v.AsBytes(); ok {
		return b, nil
	}
	if s, ok := v.AsStr(); ok {
		if def.Name == "UserComment" {
			return append(append([]byte(nil), userCommentASCII...), s...), nil
		}
		if def.Count == 1 {
			if n, err := parseUint(s, def.Values); err == nil && n <= math.MaxUint8 {
				return []byte{byte(n)}, nil
			}
		}
		return []byte(s), nil
	}
	ns, err := uints(v, def.Values, math.MaxUint8)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(ns))
	for i, n := range ns {
		b[i] = byte(n)
	}
	return b, nil
}

// elems flattens a List into its items and splits strings on blanks and commas.
func elems(v attrs.Value) []attrs.Value {
	if l, ok := v.AsList(); ok {
		return l
	}
	if s, ok := v.AsStr(); ok {
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
		if len(parts) > 1 {
			out := make([]attrs.Value, len(parts))
			for i, p := range parts {
				out[i] = attrs.Str(p)
			}
			return out
		}
	}
	return []attrs.Value{v}
}

func uints(v attrs.Value, vals tags.Values, max uint64) ([]uint64, error) {
	// An enum description may itself contain blanks.
	if s, ok := v.AsStr(); ok {
		if n, found := reverse(vals, s); found {
			return []uint64{uint64(n)}, nil
		}
	}
	var out []uint64
	for _, e := range elems(v) {
		var n uint64
		switch {
		case e.Kind() == attrs.KindStr:
			s, _ := e.AsStr()
			p, err := parseUint(s, vals)
			if err != nil {
				return nil, err
			}
			n = p
		default:
			u, ok := e.Uint()
			if !ok {
				f, fok := float(e)
				if !fok || f < 0 {
					return nil, errors.Errorf("cannot use %s as an unsigned integer", e)
				}
				u = uint64(math.Round(f))
			}
			n = u
		}
		if n > max {
			return nil, errors.Errorf("%d exceeds %d", n, max)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("empty value")
	}
	return out, nil
}

func parseUint(s string, vals tags.Values) (uint64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 0, 64); err == nil {
		return n, nil
	}
	if n, ok := reverse(vals, s); ok && n >= 0 {
		return uint64(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return uint64(math.Round(f)), nil
	}
	return 0, errors.Errorf("cannot parse %q as a number", s)
}

// reverse finds the raw value whose description is s, ignoring case.
func reverse(vals tags.Values, s string) (int64, bool) {
	for k, d := range vals {
		if strings.EqualFold(d, s) {
			return k, true
		}
	}
	return 0, false
}

func ints(v attrs.Value, min, max int64) ([]int64, error) {
	var out []int64
	for _, e := range elems(v) {
		var n int64
		switch {
		case e.Kind() == attrs.KindInt || e.Kind() == attrs.KindInt64:
			i, _ := e.AsInt64()
			if i32, ok := e.AsInt(); ok {
				i = int64(i32)
			}
			n = i
		case e.Kind() == attrs.KindStr:
			s, _ := e.AsStr()
			p, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %q", s)
			}
			n = p
		default:
			u, ok := e.Uint()
			if !ok || u > math.MaxInt64 {
				return nil, errors.Errorf("cannot use %s as an integer", e)
			}
			n = int64(u)
		}
		if n < min || n > max {
			return nil, errors.Errorf("%d out of range", n)
		}
		out = append(out, n)
	}
	return out, nil
}

func urationals(v attrs.Value) ([]endian.URational, error) {
	var out []endian.URational
	for _, e := range elems(v) {
		if n, d, ok := e.AsURational(); ok {
			out = append(out, endian.URational{Num: n, Den: d})
			continue
		}
		if n, d, ok := e.AsRational(); ok && n >= 0 && d >= 0 {
			out = append(out, endian.URational{Num: uint32(n), Den: uint32(d)})
			continue
		}
		num, den, err := fraction(e)
		if err != nil {
			return nil, err
		}
		if num < 0 || den < 0 || num > math.MaxUint32 || den > math.MaxUint32 {
			return nil, errors.Errorf("%s is not an unsigned rational", e)
		}
		out = append(out, endian.URational{Num: uint32(num), Den: uint32(den)})
	}
	return out, nil
}

func srationals(v attrs.Value) ([]endian.Rational, error) {
	var out []endian.Rational
	for _, e := range elems(v) {
		if n, d, ok := e.AsRational(); ok {
			out = append(out, endian.Rational{Num: n, Den: d})
			continue
		}
		if n, d, ok := e.AsURational(); ok && n <= math.MaxInt32 && d <= math.MaxInt32 {
			out = append(out, endian.Rational{Num: int32(n), Den: int32(d)})
			continue
		}
		num, den, err := fraction(e)
		if err != nil {
			return nil, err
		}
		if num < math.MinInt32 || num > math.MaxInt32 || den > math.MaxInt32 {
			return nil, errors.Errorf("%s does not fit a signed rational", e)
		}
		out = append(out, endian.Rational{Num: int32(num), Den: int32(den)})
	}
	return out, nil
}

// fraction reads an integer, a float or an "N/D" string as a fraction.
func fraction(v attrs.Value) (int64, int64, error) {
	if s, ok := v.AsStr(); ok {
		s = strings.TrimSpace(s)
		if i := strings.IndexByte(s, '/'); i > 0 {
			n, err1 := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
			d, err2 := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
			if err1 != nil || err2 != nil {
				return 0, 0, errors.Errorf("cannot parse %q as a fraction", s)
			}
			return n, d, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, 0, errors.Errorf("cannot parse %q as a number", s)
		}
		n, d := approximate(f)
		return n, d, nil
	}
	if f, ok := float(v); ok {
		n, d := approximate(f)
		return n, d, nil
	}
	return 0, 0, errors.Errorf("cannot use %s as a rational", v)
}

func float(v attrs.Value) (float64, bool) {
	switch v.Kind() {
	case attrs.KindFloat:
		f, _ := v.AsFloat()
		return float64(f), true
	case attrs.KindDouble:
		return v.AsDouble()
	case attrs.KindInt, attrs.KindInt64:
		if i, ok := v.AsInt(); ok {
			return float64(i), true
		}
		i, _ := v.AsInt64()
		return float64(i), true
	}
	if u, ok := v.Uint(); ok {
		return float64(u), true
	}
	return 0, false
}

// approximate picks the smallest power-of-ten denominator that represents f
// to six decimal places.
func approximate(f float64) (int64, int64) {
	den := int64(1)
	for den < 1000000 && math.Abs(f*float64(den)-math.Round(f*float64(den))) > 1e-9 {
		den *= 10
	}
	return int64(math.Round(f * float64(den))), den
}
