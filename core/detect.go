package core

import (
	"bytes"
	"compress/zlib"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Media types reported in FormatInfo.
const (
	MediaImage    = "image"
	MediaAudio    = "audio"
	MediaVideo    = "video"
	MediaDocument = "document"
)

// ReadPrefix reads up to n bytes from the start of r and rewinds it. A file
// shorter than n yields a short prefix, not an error.
func ReadPrefix(r io.ReadSeeker, n int) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &IOError{Err: err}
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, &IOError{Err: err}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &IOError{Err: err}
	}
	return buf[:got], nil
}

// ReadAll loads the whole stream, refusing anything over MaxFileSize.
func ReadAll(r io.ReadSeeker) ([]byte, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	if size > MaxFileSize {
		return nil, &FileTooLargeError{Size: uint64(size), Limit: MaxFileSize}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &IOError{Err: err}
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, &IOError{Err: errors.Wrap(err, "reading file")}
	}
	return data, nil
}

// ReadAt reads n bytes at off, refusing reads past size or over
// MaxChunkSize.
func ReadAt(r io.ReadSeeker, off, n, size int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > size {
		return nil, &ValueOutOfBoundsError{Offset: uint64(off), Size: uint64(n), DataLen: uint64(size)}
	}
	if n > MaxChunkSize {
		return nil, &MetadataTooLargeError{Size: uint64(n), Limit: MaxChunkSize}
	}
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return nil, &IOError{Err: err}
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, &IOError{Err: err}
	}
	return b, nil
}

// StreamSize returns the length of r.
func StreamSize(r io.ReadSeeker) (int64, error) {
	n, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, &IOError{Err: err}
	}
	return n, nil
}

// HasPrefixAt reports whether b holds magic at offset off.
func HasPrefixAt(b []byte, off int, magic string) bool {
	return off >= 0 && len(b) >= off+len(magic) && bytes.Equal(b[off:off+len(magic)], []byte(magic))
}

// Ext returns the lower-case extension of path without the dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// MediaTypeFor returns the broad media category of a format name.
func MediaTypeFor(format string) string {
	switch format {
	case "MP3", "FLAC", "OGG", "M4A", "WAV", "AIFF", "DSF", "DFF", "MIDI", "WMA":
		return MediaAudio
	case "MP4", "MOV", "MKV", "WebM", "AVI", "WMV", "ASF", "FLV", "RM":
		return MediaVideo
	case "SVG", "EPS", "AI", "PDF", "DOCX", "XLSX", "PPTX", "ODT", "ODS", "ODP", "EPUB":
		return MediaDocument
	}
	return MediaImage
}

// Inflate decompresses a zlib stream, refusing output over
// MaxDecompressedSize.
func Inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, &ZlibError{Err: err}
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, MaxDecompressedSize+1))
	if err != nil {
		return nil, &ZlibError{Err: err}
	}
	if len(out) > MaxDecompressedSize {
		return nil, &MetadataTooLargeError{Size: uint64(len(out)), Limit: MaxDecompressedSize}
	}
	return out, nil
}
