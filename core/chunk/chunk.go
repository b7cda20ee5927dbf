// Package chunk reads and writes the four-cc chunk containers: RIFF (WebP,
// WAV, AVI) and the big-endian IFF family (AIFF, DSDIFF).
package chunk

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/riff"

	"github.com/ankit-chaubey/metasurgery/core"
)

// Chunk is one chunk with its payload in memory.
type Chunk struct {
	ID   string
	Data []byte
	// Size is the payload length in the file. It differs from len(Data)
	// for chunks that were skipped.
	Size int64
}

// ReadRIFF reads the form type and every top-level chunk of a RIFF file.
// Chunks read before an error are returned with it.
func ReadRIFF(r io.Reader) (string, []Chunk, error) {
	form, rr, err := riff.NewReader(r)
	if err != nil {
		return "", nil, core.Structure("riff: %v", err)
	}
	chunks, err := collect(rr)
	return string(form[:]), chunks, err
}

// List reads the sub-chunks of a LIST payload.
func List(data []byte) (string, []Chunk, error) {
	typ, rr, err := riff.NewListReader(uint32(len(data)), bytes.NewReader(data))
	if err != nil {
		return "", nil, core.Structure("riff list: %v", err)
	}
	chunks, err := collect(rr)
	return string(typ[:]), chunks, err
}

func collect(rr *riff.Reader) ([]Chunk, error) {
	var chunks []Chunk
	for {
		if len(chunks) >= core.MaxWalkIterations*10 {
			return chunks, core.Structure("riff: more than %d chunks", len(chunks))
		}
		id, n, cr, err := rr.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, errors.Wrapf(err, "riff chunk %d", len(chunks))
		}
		if bulk(id) || n > core.MaxChunkSize {
			c, err := skip(id, n, cr)
			if err != nil {
				return chunks, err
			}
			chunks = append(chunks, c)
			continue
		}
		data, err := io.ReadAll(cr)
		if err != nil {
			return chunks, &core.IOError{Err: err}
		}
		if uint32(len(data)) != n {
			return chunks, core.EOF(int(n), len(data))
		}
		chunks = append(chunks, Chunk{ID: string(id[:]), Data: data, Size: int64(n)})
	}
}

// bulk reports chunks whose payload is media data.
func bulk(id riff.FourCC) bool {
	switch string(id[:]) {
	case "data", "idx1":
		return true
	}
	return false
}

// skip passes over a chunk that is not loaded. Sample and frame data keep a
// nil payload; an oversized LIST keeps only its list type, so a large AVI
// "movi" list is still recognised.
func skip(id riff.FourCC, n uint32, cr io.Reader) (Chunk, error) {
	c := Chunk{ID: string(id[:]), Size: int64(n)}
	if !bulk(id) && c.ID != "LIST" {
		return c, &core.MetadataTooLargeError{Size: uint64(n), Limit: core.MaxChunkSize}
	}
	if c.ID == "LIST" {
		typ := make([]byte, 4)
		if _, err := io.ReadFull(cr, typ); err != nil {
			return c, core.EOF(4, 0)
		}
		c.Data = typ
	}
	if _, err := io.Copy(io.Discard, cr); err != nil {
		return c, &core.IOError{Err: err}
	}
	return c, nil
}

// WriteRIFF encodes a RIFF file. Odd-sized chunks are padded.
func WriteRIFF(form string, chunks []Chunk) []byte {
	var body []byte
	for _, c := range chunks {
		body = append(body, c.ID...)
		body = binary.LittleEndian.AppendUint32(body, uint32(len(c.Data)))
		body = append(body, c.Data...)
		if len(c.Data)%2 == 1 {
			body = append(body, 0)
		}
	}
	out := append([]byte("RIFF"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(out[4:], uint32(4+len(body)))
	out = append(out, form...)
	return append(out, body...)
}

// SplitIFF cuts a big-endian chunk sequence. wide selects 64-bit sizes
// (DSDIFF); otherwise sizes are 32-bit (AIFF). Sample data chunks are
// returned with a nil payload.
func SplitIFF(data []byte, wide bool) ([]Chunk, error) {
	hdr := 8
	if wide {
		hdr = 12
	}
	var out []Chunk
	pos := 0
	for pos+hdr <= len(data) {
		if len(out) >= core.MaxWalkIterations*10 {
			return out, core.Structure("iff: more than %d chunks", len(out))
		}
		id := string(data[pos : pos+4])
		var size uint64
		if wide {
			size = binary.BigEndian.Uint64(data[pos+4:])
		} else {
			size = uint64(binary.BigEndian.Uint32(data[pos+4:]))
		}
		start := pos + hdr
		if size > uint64(len(data)-start) {
			if iffBulk(id) {
				out = append(out, Chunk{ID: id, Size: int64(len(data) - start)})
				return out, nil
			}
			return out, &core.ValueOutOfBoundsError{Offset: uint64(start), Size: size, DataLen: uint64(len(data))}
		}
		c := Chunk{ID: id, Size: int64(size)}
		if !iffBulk(id) {
			c.Data = data[start : start+int(size)]
		}
		out = append(out, c)
		pos = start + int(size)
		if size%2 == 1 {
			pos++
		}
	}
	return out, nil
}

// iffBulk reports the IFF chunks that hold sample data.
func iffBulk(id string) bool {
	return id == "SSND" || id == "DSD " || id == "DST "
}

// ReadIFF reads the big-endian chunks in [start, end) of r. Sample data
// chunks are skipped and keep a nil payload; a truncated final sample
// chunk ends the walk without an error.
func ReadIFF(r io.ReadSeeker, start, end int64, wide bool) ([]Chunk, error) {
	hdr := int64(8)
	if wide {
		hdr = 12
	}
	var out []Chunk
	b := make([]byte, hdr)
	for pos := start; pos+hdr <= end; {
		if len(out) >= core.MaxWalkIterations*10 {
			return out, core.Structure("iff: more than %d chunks", len(out))
		}
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return out, &core.IOError{Err: err}
		}
		if _, err := io.ReadFull(r, b); err != nil {
			return out, &core.IOError{Err: err}
		}
		c := Chunk{ID: string(b[:4])}
		if wide {
			c.Size = int64(binary.BigEndian.Uint64(b[4:]))
		} else {
			c.Size = int64(binary.BigEndian.Uint32(b[4:]))
		}
		body := pos + hdr
		if c.Size < 0 || c.Size > end-body {
			if iffBulk(c.ID) {
				c.Size = end - body
				return append(out, c), nil
			}
			return out, &core.ValueOutOfBoundsError{Offset: uint64(body), Size: uint64(c.Size), DataLen: uint64(end)}
		}
		if !iffBulk(c.ID) {
			if c.Size > core.MaxChunkSize {
				return out, &core.MetadataTooLargeError{Size: uint64(c.Size), Limit: core.MaxChunkSize}
			}
			c.Data = make([]byte, c.Size)
			if _, err := io.ReadFull(r, c.Data); err != nil {
				return out, &core.IOError{Err: err}
			}
		}
		out = append(out, c)
		pos = body + c.Size + c.Size%2
	}
	return out, nil
}

// InfoTags names the sub-chunks of a RIFF LIST INFO chunk.
var InfoTags = map[string]string{
	"IARL": "ArchivalLocation",
	"IART": "Artist",
	"ICMS": "Commissioned",
	"ICMT": "Comment",
	"ICOP": "Copyright",
	"ICRD": "DateCreated",
	"ICRP": "Cropped",
	"IDIM": "Dimensions",
	"IDPI": "DotsPerInch",
	"IENG": "Engineer",
	"IGNR": "Genre",
	"IKEY": "Keywords",
	"ILGT": "Lightness",
	"IMED": "Medium",
	"INAM": "Title",
	"IPLT": "NumberOfColors",
	"IPRD": "Product",
	"ISBJ": "Subject",
	"ISFT": "Software",
	"ISHP": "Sharpness",
	"ISRC": "Source",
	"ISRF": "SourceForm",
	"ITCH": "Technician",
	"ITRK": "TrackNumber",
}
