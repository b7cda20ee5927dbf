package bmff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
)

func box(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	b := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(b, uint32(8+len(body)))
	copy(b[4:], typ)
	return append(b, body...)
}

func TestWalkAndLoad(t *testing.T) {
	file := bytes.Join([][]byte{
		box("ftyp", []byte("heic\x00\x00\x00\x00mif1heic")),
		box("meta", []byte{0, 0, 0, 0}, box("hdlr", []byte("pict"))),
		box("mdat", []byte("xyz")),
	}, nil)
	r := bytes.NewReader(file)

	var types []string
	var meta Header
	err := Walk(r, 0, int64(len(file)), func(h Header) error {
		types = append(types, h.Type)
		if h.Type == "meta" {
			meta = h
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(types, ","); got != "ftyp,meta,mdat" {
		t.Errorf("types = %s", got)
	}

	data, err := Load(r, meta)
	if err != nil {
		t.Fatal(err)
	}
	_, _, body, err := FullBox(data)
	if err != nil {
		t.Fatal(err)
	}
	hdlr, ok := Find(body, "hdlr")
	if !ok || string(hdlr.Data) != "pict" {
		t.Errorf("hdlr = %+v, %v", hdlr, ok)
	}

	major, _, compat := Brands(file[8:28])
	if major != "heic" || len(compat) != 2 || compat[0] != "mif1" {
		t.Errorf("brands = %q %q", major, compat)
	}
}

func TestLargeSize(t *testing.T) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint32(b, 1)
	copy(b[4:], "mdat")
	binary.BigEndian.PutUint64(b[8:], 20)
	b = append(b, 1, 2, 3, 4)
	h, err := ReadHeader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	if h.HeaderLen != 16 || h.DataSize() != 4 {
		t.Errorf("header = %+v", h)
	}
	boxes, err := Split(b)
	if err != nil || len(boxes) != 1 || len(boxes[0].Data) != 4 {
		t.Errorf("Split = %+v, %v", boxes, err)
	}
}

func TestSplitOverrun(t *testing.T) {
	data := append(box("free", []byte("ok")), 0, 0, 0, 0x40, 'b', 'a', 'd', '!')
	boxes, err := Split(data)
	if len(boxes) != 1 {
		t.Errorf("got %d boxes before the damage", len(boxes))
	}
	var oob *core.ValueOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Errorf("err = %v, want ValueOutOfBoundsError", err)
	}
}

func TestPathAndCString(t *testing.T) {
	data := box("moov", box("udta", box("name", []byte("clip\x00rest"))))
	b, ok := Path(data, "moov", "udta", "name")
	if !ok {
		t.Fatal("path not found")
	}
	s, rest := CString(b.Data)
	if s != "clip" || string(rest) != "rest" {
		t.Errorf("CString = %q, %q", s, rest)
	}
	if _, ok := Path(data, "moov", "trak"); ok {
		t.Error("missing box found")
	}
}
