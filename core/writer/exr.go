package writer

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/image"
)

// exrDerived are keys the parser computes rather than reads from a header
// attribute.
var exrDerived = map[string]bool{
	"Version": true, "Tiled": true, "DeepData": true, "PartCount": true,
}

// exrRequired are string attributes a multi-part file cannot lose.
var exrRequired = map[string]bool{"name": true, "type": true}

// WriteEXR updates the string attributes of the first header of an
// OpenEXR file from the "EXR:<name>" attributes. New string attributes are
// appended, removed ones deleted. The chunk offset tables are shifted by
// the change in header size; pixel data is copied unchanged.
func WriteEXR(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	if !m.Attrs.IsDirty() {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	data, err := core.ReadAll(r)
	if err != nil {
		return err
	}
	h, err := image.ReadEXRHeader(data)
	if err != nil {
		return errors.Wrap(err, "reading EXR header")
	}

	part := h.Parts[0][:0:0]
	present := map[string]bool{}
	for _, at := range h.Parts[0] {
		present[at.Name] = true
		if at.Type != "string" {
			part = append(part, at)
			continue
		}
		v, ok := m.Attrs.GetStr("EXR:" + at.Name)
		switch {
		case ok:
			at.Value = []byte(v)
		case exrRequired[at.Name]:
		default:
			continue
		}
		part = append(part, at)
	}
	for _, key := range m.Attrs.Keys() {
		name, ok := strings.CutPrefix(key, "EXR:")
		if !ok || present[name] || exrDerived[name] {
			continue
		}
		if v, ok := m.Attrs.GetStr(key); ok {
			part = append(part, image.EXRAttribute{Name: name, Type: "string", Value: []byte(v)})
		}
	}
	h.Parts[0] = part

	head := h.Bytes()
	tables, rest, err := exrTables(data, h.Size)
	if err != nil {
		return err
	}
	delta := int64(len(head)) - int64(h.Size)
	le := binary.LittleEndian
	for i := 0; i+8 <= len(tables); i += 8 {
		if off := le.Uint64(tables[i:]); off != 0 {
			le.PutUint64(tables[i:], uint64(int64(off)+delta))
		}
	}
	out := append(head, tables...)
	if _, err := w.Write(out); err != nil {
		return &core.IOError{Err: err}
	}
	_, err = w.Write(data[rest:])
	return wrapIO(err)
}

// exrTables returns a copy of the offset tables that follow the headers
// and the position of the first chunk. The tables end where the lowest
// offset they hold begins.
func exrTables(data []byte, start int) ([]byte, int, error) {
	le := binary.LittleEndian
	first := uint64(len(data))
	pos := start
	for uint64(pos) < first {
		if pos+8 > len(data) {
			return nil, 0, core.EOF(pos+8, len(data))
		}
		if off := le.Uint64(data[pos:]); off != 0 && off < first {
			if off < uint64(start) {
				return nil, 0, &core.ValueOutOfBoundsError{Offset: off, Size: 0, DataLen: uint64(len(data))}
			}
			first = off
		}
		pos += 8
	}
	if uint64(pos) != first {
		return nil, 0, core.Structure("exr: offset tables end at %d, first chunk at %d", pos, first)
	}
	return append([]byte(nil), data[start:pos]...), pos, nil
}
