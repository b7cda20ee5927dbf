package attrs

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync/atomic"
)

// Entry is one key/value pair, in insertion order.
type Entry struct {
	Key   string
	Value Value
}

// Attrs is an insertion-ordered map from key to Value. Keys follow the
// "Namespace:Name" convention; nested groups are addressable by colon paths.
//
// The dirty flag may be read from any goroutine. Concurrent writers to one
// Attrs are not supported.
type Attrs struct {
	keys   []string
	values map[string]Value
	schema *Schema
	dirty  atomic.Bool
}

// New returns an empty container with no schema. Every change marks it dirty.
func New() *Attrs {
	return &Attrs{values: make(map[string]Value)}
}

// WithSchema returns an empty container whose dirty tracking is gated by s.
func WithSchema(s *Schema) *Attrs {
	a := New()
	a.schema = s
	return a
}

// AttachSchema sets or replaces the schema pointer.
func (a *Attrs) AttachSchema(s *Schema) { a.schema = s }

// Schema returns the attached schema, or nil.
func (a *Attrs) Schema() *Schema { return a.schema }

// Set inserts or replaces key. A real change marks the container dirty when
// the key is graph-contributing under the schema, or when no schema is set.
// Storing a value Equal to the current one leaves the dirty flag as it was,
// so a clean container stays clean and writers can copy the file verbatim.
func (a *Attrs) Set(key string, v Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	old, exists := a.values[key]
	if !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = v
	if exists && old.Equal(v) {
		return
	}
	if a.schema == nil || a.schema.IsDAG(key) {
		a.dirty.Store(true)
	}
}

// SetIfAbsent stores v only when key is not yet present and reports whether
// it did. Parsers use it so the first block to define a tag wins.
func (a *Attrs) SetIfAbsent(key string, v Value) bool {
	if a.Contains(key) {
		return false
	}
	a.Set(key, v)
	return true
}

func (a *Attrs) Get(key string) (Value, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a *Attrs) Contains(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Remove deletes key and returns the previous value.
func (a *Attrs) Remove(key string) (Value, bool) {
	v, ok := a.values[key]
	if !ok {
		return Value{}, false
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	if a.schema == nil || a.schema.IsDAG(key) {
		a.dirty.Store(true)
	}
	return v, true
}

func (a *Attrs) Len() int     { return len(a.keys) }
func (a *Attrs) IsEmpty() bool { return len(a.keys) == 0 }

// Keys returns the keys in insertion order.
func (a *Attrs) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Entries returns a snapshot of the top-level entries in insertion order.
func (a *Attrs) Entries() []Entry {
	out := make([]Entry, len(a.keys))
	for i, k := range a.keys {
		out[i] = Entry{Key: k, Value: a.values[k]}
	}
	return out
}

// Typed accessors. Each returns false on a missing key or a kind mismatch;
// nothing is coerced.

func (a *Attrs) GetStr(key string) (string, bool) {
	v, ok := a.values[key]
	if !ok {
		return "", false
	}
	return v.AsStr()
}

func (a *Attrs) GetInt(key string) (int32, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (a *Attrs) GetUInt(key string) (uint32, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, false
	}
	return v.AsUInt()
}

func (a *Attrs) GetFloat(key string) (float32, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

func (a *Attrs) GetDouble(key string) (float64, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, false
	}
	return v.AsDouble()
}

func (a *Attrs) GetBool(key string) (bool, bool) {
	v, ok := a.values[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

func (a *Attrs) GetBytes(key string) ([]byte, bool) {
	v, ok := a.values[key]
	if !ok {
		return nil, false
	}
	return v.AsBytes()
}

func (a *Attrs) GetRational(key string) (int32, int32, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, 0, false
	}
	return v.AsRational()
}

func (a *Attrs) GetURational(key string) (uint32, uint32, bool) {
	v, ok := a.values[key]
	if !ok {
		return 0, 0, false
	}
	return v.AsURational()
}

func (a *Attrs) GetList(key string) ([]Value, bool) {
	v, ok := a.values[key]
	if !ok {
		return nil, false
	}
	return v.AsList()
}

// Group returns the nested container stored under key.
func (a *Attrs) Group(key string) (*Attrs, bool) {
	v, ok := a.values[key]
	if !ok {
		return nil, false
	}
	return v.AsGroup()
}

// GroupMut returns the nested container under key, replacing any non-group
// value with a fresh empty group.
func (a *Attrs) GroupMut(key string) *Attrs {
	if g, ok := a.Group(key); ok && g != nil {
		return g
	}
	g := New()
	g.schema = a.schema
	a.Set(key, Group(g))
	return g
}

// SetPath stores v at a colon-separated path, creating intermediate groups.
func (a *Attrs) SetPath(path string, v Value) {
	parts := strings.Split(path, ":")
	cur := a
	for _, p := range parts[:len(parts)-1] {
		cur = cur.GroupMut(p)
	}
	cur.Set(parts[len(parts)-1], v)
	if cur != a && (a.schema == nil || a.schema.IsDAG(path)) {
		a.dirty.Store(true)
	}
}

// GetPath resolves a colon-separated path. A flat key that itself contains
// colons ("DC:title") is matched first; otherwise the path walks groups.
func (a *Attrs) GetPath(path string) (Value, bool) {
	if v, ok := a.values[path]; ok {
		return v, true
	}
	for i := 0; i < len(path); i++ {
		if path[i] != ':' {
			continue
		}
		if g, ok := a.Group(path[:i]); ok && g != nil {
			if v, ok := g.GetPath(path[i+1:]); ok {
				return v, true
			}
		}
	}
	return Value{}, false
}

// FlatEntry is one leaf of the flattened view.
type FlatEntry struct {
	Path  string
	Value Value
}

// IterFlat returns every leaf depth-first with colon-joined paths. Groups
// are expanded in place of their key. The walk uses an explicit stack, so
// nesting depth does not grow the call stack. Order is stable while the
// container is not mutated.
func (a *Attrs) IterFlat() []FlatEntry {
	type frame struct {
		prefix string
		attrs  *Attrs
		next   int
	}
	var out []FlatEntry
	stack := []frame{{attrs: a}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.attrs.keys) {
			stack = stack[:len(stack)-1]
			continue
		}
		key := top.attrs.keys[top.next]
		top.next++
		v := top.attrs.values[key]
		path := key
		if top.prefix != "" {
			path = top.prefix + ":" + key
		}
		if g, ok := v.AsGroup(); ok && g != nil {
			stack = append(stack, frame{prefix: path, attrs: g})
			continue
		}
		out = append(out, FlatEntry{Path: path, Value: v})
	}
	return out
}

// CountRecursive counts leaves across nested groups.
func (a *Attrs) CountRecursive() int { return len(a.IterFlat()) }

// HashAll hashes keys in sorted order, so equal contents give equal hashes
// regardless of insertion order.
func (a *Attrs) HashAll() uint64 {
	h := fnv.New64a()
	a.hashInto(h)
	return h.Sum64()
}

type hashWriter interface {
	Write([]byte) (int, error)
}

func (a *Attrs) hashInto(h hashWriter) {
	keys := a.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		writeHashString(h, k)
		hashValue(h, a.values[k])
	}
}

func writeHashString(h hashWriter, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func hashValue(h hashWriter, v Value) {
	var buf [8]byte
	h.Write([]byte{byte(v.kind)})
	switch v.kind {
	case KindBool, KindUInt, KindUInt64:
		binary.LittleEndian.PutUint64(buf[:], v.u)
		h.Write(buf[:])
	case KindInt, KindInt64:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.i))
		h.Write(buf[:])
	case KindFloat, KindDouble:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.f))
		h.Write(buf[:])
	case KindStr, KindJSON:
		writeHashString(h, v.s)
	case KindBytes, KindUUID:
		writeHashString(h, string(v.b))
	case KindRational, KindURational:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.i))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], v.u)
		h.Write(buf[:])
	case KindDateTime:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.t.UnixNano()))
		h.Write(buf[:])
	case KindList:
		binary.LittleEndian.PutUint64(buf[:], uint64(len(v.list)))
		h.Write(buf[:])
		for _, it := range v.list {
			hashValue(h, it)
		}
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeHashString(h, k)
			hashValue(h, v.m[k])
		}
	case KindGroup:
		if v.g != nil {
			v.g.hashInto(h)
		}
	}
}

func (a *Attrs) IsDirty() bool { return a.dirty.Load() }
func (a *Attrs) ClearDirty()   { a.dirty.Store(false) }
func (a *Attrs) MarkDirty()    { a.dirty.Store(true) }

// Clone deep-copies the container, including nested groups. The dirty flag
// and schema pointer carry over.
func (a *Attrs) Clone() *Attrs {
	c := &Attrs{
		keys:   make([]string, len(a.keys)),
		values: make(map[string]Value, len(a.values)),
		schema: a.schema,
	}
	copy(c.keys, a.keys)
	for k, v := range a.values {
		c.values[k] = cloneValue(v)
	}
	c.dirty.Store(a.dirty.Load())
	return c
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindBytes, KindUUID:
		v.b = append([]byte(nil), v.b...)
	case KindList:
		items := make([]Value, len(v.list))
		for i, it := range v.list {
			items[i] = cloneValue(it)
		}
		v.list = items
	case KindMap:
		m := make(map[string]Value, len(v.m))
		for k, it := range v.m {
			m[k] = cloneValue(it)
		}
		v.m = m
	case KindGroup:
		if v.g != nil {
			v.g = v.g.Clone()
		}
	}
	return v
}

// Equal compares contents, ignoring order, schema and dirty state.
func (a *Attrs) Equal(o *Attrs) bool {
	if len(a.values) != len(o.values) {
		return false
	}
	for k, v := range a.values {
		w, ok := o.values[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Merge copies every entry of src into a. Existing keys are kept when
// overwrite is false.
func (a *Attrs) Merge(src *Attrs, overwrite bool) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		if !overwrite && a.Contains(k) {
			continue
		}
		a.Set(k, src.values[k])
	}
}

// MergePrefixed copies src into a, prefixing every key with ns + ":".
func (a *Attrs) MergePrefixed(ns string, src *Attrs) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		a.SetIfAbsent(ns+":"+k, src.values[k])
	}
}
