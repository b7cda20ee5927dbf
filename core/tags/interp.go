package tags

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

type formatter func(v attrs.Value) (string, bool)

var formatters = map[string]formatter{
	"Flash": func(v attrs.Value) (string, bool) {
		n, ok := v.Uint()
		if !ok {
			return "", false
		}
		return FlashString(uint32(n)), true
	},
	"ExposureTime":      floatFormatter(FormatExposureTime),
	"FNumber":           floatFormatter(FormatFNumber),
	"FocalLength":       floatFormatter(FormatFocalLength),
	"ShutterSpeedValue": floatFormatter(func(f float64) string { return FormatExposureTime(math.Pow(2, -f)) }),
	"ApertureValue":     floatFormatter(func(f float64) string { return FormatFNumber(math.Pow(math.Sqrt2, f)) }),
	"MaxApertureValue":  floatFormatter(func(f float64) string { return FormatFNumber(math.Pow(math.Sqrt2, f)) }),
	"ExposureCompensation": floatFormatter(func(f float64) string {
		if f > 0 {
			return fmt.Sprintf("+%.2g EV", f)
		}
		return fmt.Sprintf("%.2g EV", f)
	}),
	"SubjectDistance":  floatFormatter(func(f float64) string { return fmt.Sprintf("%.2f m", f) }),
	"GPSAltitude":      floatFormatter(func(f float64) string { return fmt.Sprintf("%.1f m", f) }),
	"GPSLatitude":      gpsFormatter,
	"GPSLongitude":     gpsFormatter,
	"GPSDestLatitude":  gpsFormatter,
	"GPSDestLongitude": gpsFormatter,
	"GPSTimeStamp": func(v attrs.Value) (string, bool) {
		parts, ok := v.AsList()
		if !ok || len(parts) != 3 {
			return "", false
		}
		h, _ := Float(parts[0])
		m, _ := Float(parts[1])
		s, _ := Float(parts[2])
		return fmt.Sprintf("%02d:%02d:%02d", int(h), int(m), int(s)), true
	},
	"ExifVersion":     asciiFormatter,
	"FlashpixVersion": asciiFormatter,
	"InteropVersion":  asciiFormatter,
	"ComponentsConfiguration": func(v attrs.Value) (string, bool) {
		b, ok := v.AsBytes()
		if !ok {
			return "", false
		}
		names := [...]string{"-", "Y", "Cb", "Cr", "R", "G", "B"}
		parts := make([]string, 0, len(b))
		for _, c := range b {
			if int(c) < len(names) {
				parts = append(parts, names[c])
			}
		}
		return strings.Join(parts, ", "), true
	},
}

func floatFormatter(f func(float64) string) formatter {
	return func(v attrs.Value) (string, bool) {
		x, ok := Float(v)
		if !ok {
			return "", false
		}
		return f(x), true
	}
}

func gpsFormatter(v attrs.Value) (string, bool) {
	deg, min, sec, ok := dms(v)
	if !ok {
		return "", false
	}
	return FormatGPSCoord(deg, min, sec, ""), true
}

func asciiFormatter(v attrs.Value) (string, bool) {
	b, ok := v.AsBytes()
	if !ok {
		return "", false
	}
	return strings.TrimRight(string(b), "\x00"), true
}

// Describe renders a standard tag value for display. Enum values resolve
// to their text, composite values get their conventional notation, and
// anything else falls back to the raw rendering.
func Describe(name string, v attrs.Value) string {
	name = strings.TrimPrefix(name, "EXIF:")
	if f, ok := formatters[name]; ok {
		if s, ok := f(v); ok {
			return s
		}
	}
	if r, ok := byName[name]; ok && r.Def.Values != nil {
		if s, ok := v.AsStr(); ok {
			return describeASCII(r.Def.Values, s)
		}
		if k, ok := enumKey(v); ok {
			return r.Def.Values.Describe(k)
		}
	}
	return v.String()
}

// describeASCII resolves single-character references by character code
// first ("N", "A"), then numeric strings by value ("2" for GPSMeasureMode).
func describeASCII(vals Values, s string) string {
	t := strings.TrimSpace(s)
	if len(t) == 1 {
		if d, ok := vals[int64(t[0])]; ok {
			return d
		}
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		if d, ok := vals[n]; ok {
			return d
		}
	}
	return s
}

// DescribeAttr renders the attribute at key, pulling in the companion
// reference tag for GPS coordinates and altitude.
func DescribeAttr(a *attrs.Attrs, key string) (string, bool) {
	v, ok := a.Get(key)
	if !ok {
		return "", false
	}
	name := strings.TrimPrefix(key, "EXIF:")
	prefix := key[:len(key)-len(name)]
	switch name {
	case "GPSLatitude", "GPSLongitude", "GPSDestLatitude", "GPSDestLongitude":
		deg, min, sec, ok := dms(v)
		if !ok {
			break
		}
		ref := ""
		if rv, ok := a.Get(prefix + name + "Ref"); ok {
			ref, _ = rv.AsStr()
		}
		return FormatGPSCoord(deg, min, sec, ref), true
	case "GPSAltitude":
		f, ok := Float(v)
		if !ok {
			break
		}
		if rv, ok := a.Get(prefix + "GPSAltitudeRef"); ok {
			if n, _ := rv.Uint(); n == 1 {
				return fmt.Sprintf("%.1f m Below Sea Level", f), true
			}
		}
		return fmt.Sprintf("%.1f m Above Sea Level", f), true
	}
	return Describe(name, v), true
}

// enumKey extracts the lookup key for an enum table. Short undefined blobs
// key by their first byte.
func enumKey(v attrs.Value) (int64, bool) {
	if n, ok := v.AsInt(); ok {
		return int64(n), true
	}
	if n, ok := v.Uint(); ok {
		return int64(n), true
	}
	if b, ok := v.AsBytes(); ok && len(b) > 0 && len(b) <= 4 {
		return int64(b[0]), true
	}
	if l, ok := v.AsList(); ok && len(l) == 1 {
		return enumKey(l[0])
	}
	return 0, false
}

// Float widens numeric values, rationals included, to float64. A rational
// with a zero denominator is not a number.
func Float(v attrs.Value) (float64, bool) {
	switch v.Kind() {
	case attrs.KindURational:
		n, d, _ := v.AsURational()
		if d == 0 {
			return 0, false
		}
		return float64(n) / float64(d), true
	case attrs.KindRational:
		n, d, _ := v.AsRational()
		if d == 0 {
			return 0, false
		}
		return float64(n) / float64(d), true
	case attrs.KindFloat:
		f, _ := v.AsFloat()
		return float64(f), true
	case attrs.KindDouble:
		f, _ := v.AsDouble()
		return f, true
	case attrs.KindInt, attrs.KindInt64:
		if n, ok := v.AsInt(); ok {
			return float64(n), true
		}
		n, _ := v.AsInt64()
		return float64(n), true
	case attrs.KindUInt, attrs.KindUInt64:
		n, _ := v.Uint()
		return float64(n), true
	}
	return 0, false
}

func dms(v attrs.Value) (deg, min, sec float64, ok bool) {
	parts, isList := v.AsList()
	if !isList || len(parts) != 3 {
		return 0, 0, 0, false
	}
	var fs [3]float64
	for i, p := range parts {
		if fs[i], ok = Float(p); !ok {
			return 0, 0, 0, false
		}
	}
	return fs[0], fs[1], fs[2], true
}

// FlashString decodes the EXIF Flash bitfield: bit 0 fired, bits 3-4 mode,
// bit 6 red-eye reduction.
func FlashString(v uint32) string {
	parts := []string{"No Flash"}
	if v&0x1 != 0 {
		parts[0] = "Fired"
	}
	switch (v >> 3) & 0x3 {
	case 1:
		parts = append(parts, "On")
	case 2:
		parts = append(parts, "Off")
	case 3:
		parts = append(parts, "Auto")
	}
	if v&0x40 != 0 {
		parts = append(parts, "Red-eye reduction")
	}
	return strings.Join(parts, ", ")
}

// FormatExposureTime renders seconds as "1/N sec" below one second.
func FormatExposureTime(t float64) string {
	switch {
	case t >= 1:
		return fmt.Sprintf("%.1f sec", t)
	case t > 0:
		return fmt.Sprintf("1/%.0f sec", 1/t)
	}
	return "0 sec"
}

func FormatFNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("f/%.0f", f)
	}
	return fmt.Sprintf("f/%.1f", f)
}

func FormatFocalLength(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f mm", f)
	}
	return fmt.Sprintf("%.1f mm", f)
}

// FormatGPSCoord renders degrees, minutes and seconds with an optional
// hemisphere reference.
func FormatGPSCoord(deg, min, sec float64, ref string) string {
	s := fmt.Sprintf("%d° %d' %.2f\"", int(deg), int(min), sec)
	if ref != "" {
		s += " " + ref
	}
	return s
}

// GPSDecimal converts a DMS triple plus reference to signed decimal degrees.
func GPSDecimal(v attrs.Value, ref string) (float64, bool) {
	deg, min, sec, ok := dms(v)
	if !ok {
		return 0, false
	}
	d := deg + min/60 + sec/3600
	if ref == "S" || ref == "W" {
		d = -d
	}
	return d, true
}
