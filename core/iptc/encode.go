package iptc

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

type dataset struct {
	d    *Dataset
	data []byte
}

// Encode serialises every "IPTC:" attribute back to an IIM stream ordered
// by record and dataset number. Repeatable datasets keep their list order.
// A CodedCharacterSet of UTF-8 is added when any text is not ASCII. It
// returns nil when there is nothing to write.
func Encode(a *attrs.Attrs) ([]byte, error) {
	var out []dataset
	nonASCII, haveCharset := false, false
	for _, e := range a.Entries() {
		name, ok := strings.CutPrefix(e.Key, "IPTC:")
		if !ok {
			continue
		}
		d, ok := Find(name)
		if !ok {
			iptcLogger.Warningf(nil, "iptc: no dataset named %q, skipped", name)
			continue
		}
		if d.Record == RecordEnvelope && d.Number == DatasetCodedCharacterSet {
			haveCharset = true
		}
		values := []attrs.Value{e.Value}
		if list, ok := e.Value.AsList(); ok {
			values = list
			if !d.Repeatable && len(list) > 0 {
				values = list[:1]
			}
		}
		for _, v := range values {
			payload, err := payloadOf(d, v)
			if err != nil {
				iptcLogger.Warningf(nil, "iptc %s: %v", d.Name, err)
				continue
			}
			for _, c := range payload {
				if c >= 0x80 && d.Format == FormatString {
					nonASCII = true
					break
				}
			}
			out = append(out, dataset{d, payload})
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	if nonASCII && !haveCharset {
		d, _ := Lookup(RecordEnvelope, DatasetCodedCharacterSet)
		out = append(out, dataset{d, []byte(UTF8Marker)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].d.Record != out[j].d.Record {
			return out[i].d.Record < out[j].d.Record
		}
		return out[i].d.Number < out[j].d.Number
	})

	var b bytes.Buffer
	for _, ds := range out {
		b.Write([]byte{0x1C, ds.d.Record, ds.d.Number})
		if n := len(ds.data); n > 0x7FFF {
			b.Write([]byte{0x80, 0x04})
			binary.Write(&b, binary.BigEndian, uint32(n))
		} else {
			binary.Write(&b, binary.BigEndian, uint16(n))
		}
		b.Write(ds.data)
	}
	return b.Bytes(), nil
}

func payloadOf(d *Dataset, v attrs.Value) ([]byte, error) {
	if d.Record == RecordEnvelope && d.Number == DatasetCodedCharacterSet {
		if s, _ := v.AsStr(); strings.EqualFold(s, "UTF8") || strings.EqualFold(s, "UTF-8") || s == UTF8Marker {
			return []byte(UTF8Marker), nil
		}
		return nil, errors.Errorf("unsupported character set %q", v.String())
	}
	switch d.Format {
	case FormatUint16:
		if n, ok := v.Uint(); ok && n <= 0xFFFF {
			return []byte{byte(n >> 8), byte(n)}, nil
		}
		if s, ok := v.AsStr(); ok {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
			if err != nil {
				return nil, errors.Wrap(err, "16-bit value")
			}
			return []byte{byte(n >> 8), byte(n)}, nil
		}
		return nil, errors.Errorf("cannot store %s as a 16-bit value", v.Kind())
	case FormatBinary:
		if b, ok := v.AsBytes(); ok {
			return b, nil
		}
		return nil, errors.Errorf("cannot store %s as binary", v.Kind())
	}
	s, ok := v.AsStr()
	if !ok {
		s = v.String()
	}
	if d.Format == FormatDigits {
		for _, r := range s {
			if r < '0' || r > '9' {
				return nil, errors.Errorf("%q is not all digits", s)
			}
		}
	}
	if d.MaxLen > 0 && len(s) > d.MaxLen {
		iptcLogger.Warningf(nil, "iptc %s: truncated to %d bytes", d.Name, d.MaxLen)
		s = s[:d.MaxLen]
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	return []byte(s), nil
}

// EncodeResources serialises resources into an image-resource block, without
// the Photoshop header.
func EncodeResources(rs []Resource) []byte {
	var b bytes.Buffer
	for _, r := range rs {
		sig := r.Sig
		if sig == "" {
			sig = "8BIM"
		}
		b.WriteString(sig)
		binary.Write(&b, binary.BigEndian, r.ID)
		name := r.Name
		if len(name) > 255 {
			name = name[:255]
		}
		b.WriteByte(byte(len(name)))
		b.WriteString(name)
		if (1+len(name))%2 != 0 {
			b.WriteByte(0)
		}
		binary.Write(&b, binary.BigEndian, uint32(len(r.Data)))
		b.Write(r.Data)
		if len(r.Data)%2 != 0 {
			b.WriteByte(0)
		}
	}
	return b.Bytes()
}

// ReplaceIPTC rebuilds an image-resource block with iim as its IPTC
// resource, keeping every other resource in place. A nil iim removes the
// IPTC resource. An existing IPTC digest is refreshed. The result is nil
// when no resource is left.
func ReplaceIPTC(irb []byte, iim []byte) ([]byte, error) {
	rs, err := Resources(irb)
	if err != nil {
		return nil, errors.Wrap(err, "reading image resources")
	}
	var out []Resource
	placed := false
	for _, r := range rs {
		switch {
		case r.Sig == "8BIM" && r.ID == ResourceIPTC:
			if iim != nil && !placed {
				r.Data = iim
				out = append(out, r)
				placed = true
			}
			continue
		case r.Sig == "8BIM" && r.ID == ResourceIPTCDigest:
			if iim == nil {
				continue
			}
			sum := md5.Sum(iim)
			r.Data = sum[:]
		}
		out = append(out, r)
	}
	if iim != nil && !placed {
		out = append(out, Resource{Sig: "8BIM", ID: ResourceIPTC, Data: iim})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return EncodeResources(out), nil
}
