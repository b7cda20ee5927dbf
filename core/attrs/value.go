// Package attrs implements the typed key→value container every parser fills
// and every writer reads.
package attrs

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUInt
	KindInt64
	KindUInt64
	KindFloat
	KindDouble
	KindStr
	KindBytes
	KindRational
	KindURational
	KindDateTime
	KindUUID
	KindJSON
	KindList
	KindMap
	KindGroup
)

var kindNames = [...]string{
	"Invalid", "Bool", "Int", "UInt", "Int64", "UInt64", "Float", "Double",
	"Str", "Bytes", "Rational", "URational", "DateTime", "Uuid", "Json",
	"List", "Map", "Group",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union. The zero Value is KindInvalid.
// Rationals keep numerator and denominator exactly as read.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	b    []byte
	t    time.Time
	list []Value
	m    map[string]Value
	g    *Attrs
}

func Bool(v bool) Value {
	var u uint64
	if v {
		u = 1
	}
	return Value{kind: KindBool, u: u}
}

func Int(v int32) Value           { return Value{kind: KindInt, i: int64(v)} }
func UInt(v uint32) Value         { return Value{kind: KindUInt, u: uint64(v)} }
func Int64(v int64) Value         { return Value{kind: KindInt64, i: v} }
func UInt64(v uint64) Value       { return Value{kind: KindUInt64, u: v} }
func Float(v float32) Value       { return Value{kind: KindFloat, f: float64(v)} }
func Double(v float64) Value      { return Value{kind: KindDouble, f: v} }
func Str(v string) Value          { return Value{kind: KindStr, s: v} }
func Bytes(v []byte) Value        { return Value{kind: KindBytes, b: v} }
func JSON(v string) Value         { return Value{kind: KindJSON, s: v} }
func DateTime(v time.Time) Value  { return Value{kind: KindDateTime, t: v} }
func List(items ...Value) Value   { return Value{kind: KindList, list: items} }
func Group(g *Attrs) Value        { return Value{kind: KindGroup, g: g} }
func Rational(n, d int32) Value   { return Value{kind: KindRational, i: int64(n), u: uint64(uint32(d))} }
func URational(n, d uint32) Value { return Value{kind: KindURational, i: int64(n), u: uint64(d)} }

// UUID wraps a 16-byte identifier.
func UUID(v [16]byte) Value {
	b := make([]byte, 16)
	copy(b, v[:])
	return Value{kind: KindUUID, b: b}
}

// Map wraps a string-keyed map of values.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Strs is a List of Str values.
func Strs(items []string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = Str(s)
	}
	return List(out...)
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() (bool, bool) { return v.u != 0, v.kind == KindBool }

func (v Value) AsInt() (int32, bool) { return int32(v.i), v.kind == KindInt }

func (v Value) AsUInt() (uint32, bool) { return uint32(v.u), v.kind == KindUInt }

func (v Value) AsInt64() (int64, bool) { return v.i, v.kind == KindInt64 }

func (v Value) AsUInt64() (uint64, bool) { return v.u, v.kind == KindUInt64 }

func (v Value) AsFloat() (float32, bool) { return float32(v.f), v.kind == KindFloat }

func (v Value) AsDouble() (float64, bool) { return v.f, v.kind == KindDouble }

func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

func (v Value) AsJSON() (string, bool) { return v.s, v.kind == KindJSON }

func (v Value) AsBytes() ([]byte, bool) { return v.b, v.kind == KindBytes }

func (v Value) AsDateTime() (time.Time, bool) { return v.t, v.kind == KindDateTime }

func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

func (v Value) AsGroup() (*Attrs, bool) { return v.g, v.kind == KindGroup }

func (v Value) AsRational() (int32, int32, bool) {
	return int32(v.i), int32(uint32(v.u)), v.kind == KindRational
}

func (v Value) AsURational() (uint32, uint32, bool) {
	return uint32(v.i), uint32(v.u), v.kind == KindURational
}

func (v Value) AsUUID() ([16]byte, bool) {
	var out [16]byte
	if v.kind != KindUUID {
		return out, false
	}
	copy(out[:], v.b)
	return out, true
}

// Uint returns any unsigned or non-negative signed integer variant widened to
// uint64. Used by writers that accept either width.
func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case KindUInt, KindUInt64, KindBool:
		return v.u, true
	case KindInt, KindInt64:
		if v.i >= 0 {
			return uint64(v.i), true
		}
	}
	return 0, false
}

// Equal reports deep equality, including variant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindBool, KindUInt, KindUInt64:
		return v.u == o.u
	case KindInt, KindInt64:
		return v.i == o.i
	case KindFloat, KindDouble:
		return v.f == o.f
	case KindStr, KindJSON:
		return v.s == o.s
	case KindBytes, KindUUID:
		return bytes.Equal(v.b, o.b)
	case KindRational, KindURational:
		return v.i == o.i && v.u == o.u
	case KindDateTime:
		return v.t.Equal(o.t)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, a := range v.m {
			b, ok := o.m[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	case KindGroup:
		if v.g == nil || o.g == nil {
			return v.g == o.g
		}
		return v.g.Equal(o.g)
	}
	return false
}

// String renders the value for display. Rationals keep their "N/D" form, so
// a zero denominator shows as "N/0".
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.u != 0)
	case KindInt, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindUInt, KindUInt64:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindStr, KindJSON:
		return v.s
	case KindBytes:
		if len(v.b) > 32 {
			return fmt.Sprintf("(Binary data %d bytes)", len(v.b))
		}
		return hex.EncodeToString(v.b)
	case KindRational:
		n, d, _ := v.AsRational()
		return fmt.Sprintf("%d/%d", n, d)
	case KindURational:
		n, d, _ := v.AsURational()
		return fmt.Sprintf("%d/%d", n, d)
	case KindDateTime:
		return v.t.Format("2006:01:02 15:04:05")
	case KindUUID:
		b := v.b
		return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
	case KindList:
		parts := make([]string, len(v.list))
		for i, it := range v.list {
			parts[i] = it.String()
		}
		return strings.Join(parts, ", ")
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.m[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindGroup:
		if v.g == nil {
			return "{}"
		}
		return fmt.Sprintf("{%d entries}", v.g.Len())
	}
	return ""
}

// Interface returns a plain Go value suitable for encoding/json.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.u != 0
	case KindInt, KindInt64:
		return v.i
	case KindUInt, KindUInt64:
		return v.u
	case KindFloat, KindDouble:
		return v.f
	case KindStr, KindJSON:
		return v.s
	case KindBytes:
		return v.String()
	case KindRational, KindURational, KindDateTime, KindUUID:
		return v.String()
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, it := range v.list {
			out[i] = it.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.m))
		for k, it := range v.m {
			out[k] = it.Interface()
		}
		return out
	case KindGroup:
		out := map[string]interface{}{}
		if v.g != nil {
			for _, e := range v.g.Entries() {
				out[e.Key] = e.Value.Interface()
			}
		}
		return out
	}
	return nil
}
