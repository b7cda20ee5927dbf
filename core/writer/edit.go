package writer

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/endian"
	"github.com/ankit-chaubey/metasurgery/core/registry"
)

// Edit parses the file at path, applies eo and writes the result unless
// eo.DryRun is set. The edited metadata is returned either way.
func Edit(path string, eo core.EditOptions, opts Options) (*core.Metadata, error) {
	m, err := registry.ParseFile(path)
	if err != nil {
		return nil, err
	}
	Apply(m.Attrs, eo)
	if eo.DryRun {
		writerLogger.Debugf(nil, "dry run: %d set, %d deleted in %s", len(eo.Set), len(eo.Delete), path)
		return m, nil
	}
	if err := WriteFile(path, m, opts); err != nil {
		return m, err
	}
	return m, nil
}

// Apply sets and deletes attributes. Keys are set in sorted order; each
// value is coerced to the kind already stored under the key and kept as a
// string when it does not parse.
func Apply(a *attrs.Attrs, eo core.EditOptions) {
	keys := make([]string, 0, len(eo.Set))
	for k := range eo.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		old, had := a.Get(k)
		a.Set(k, Coerce(old, had, eo.Set[k]))
	}
	for _, k := range eo.Delete {
		a.Remove(k)
	}
}

// Coerce parses s as the kind of old. A missing or unparsable value gives
// a string, which the block encoders convert to each tag's own type.
func Coerce(old attrs.Value, had bool, s string) attrs.Value {
	if !had {
		return attrs.Str(s)
	}
	switch old.Kind() {
	case attrs.KindBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return attrs.Bool(b)
		}
	case attrs.KindInt:
		if n, err := strconv.ParseInt(s, 10, 32); err == nil {
			return attrs.Int(int32(n))
		}
	case attrs.KindUInt:
		if n, err := strconv.ParseUint(s, 10, 32); err == nil {
			return attrs.UInt(uint32(n))
		}
	case attrs.KindInt64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return attrs.Int64(n)
		}
	case attrs.KindUInt64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return attrs.UInt64(n)
		}
	case attrs.KindFloat:
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			return attrs.Float(float32(f))
		}
	case attrs.KindDouble:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return attrs.Double(f)
		}
	case attrs.KindURational:
		n, d, ok := fraction(s, 64)
		if ok && n >= 0 && d >= 0 && n <= math.MaxUint32 && d <= math.MaxUint32 {
			return attrs.URational(uint32(n), uint32(d))
		}
	case attrs.KindRational:
		if n, d, ok := fraction(s, 32); ok {
			return attrs.Rational(int32(n), int32(d))
		}
	case attrs.KindDateTime:
		if t, err := endian.ParseExifDate(s); err == nil {
			return attrs.DateTime(t)
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return attrs.DateTime(t)
		}
	case attrs.KindList:
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return attrs.Strs(parts)
	}
	return attrs.Str(s)
}

// fraction parses "N/D" or a whole number.
func fraction(s string, bits int) (int64, int64, bool) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, bits)
	if err != nil {
		return 0, 0, false
	}
	if !found {
		return n, 1, true
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, bits)
	if err != nil {
		return 0, 0, false
	}
	return n, d, true
}
