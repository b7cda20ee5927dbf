package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Parameterised kinds are the *Error types below; match
// either with errors.Is / errors.As.
var (
	// ErrInvalidByteOrderMarker is returned when a TIFF header does not start
	// with "II" or "MM".
	ErrInvalidByteOrderMarker = errors.New("invalid byte order marker")

	// ErrUnknownFormat is returned by a parser that sniffed a candidate but
	// declined it after a closer look. The registry moves on to the next one.
	ErrUnknownFormat = errors.New("unknown format")
)

// UnexpectedEOFError reports structural truncation.
type UnexpectedEOFError struct {
	Need uint64
	Have uint64
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of data: need %d bytes, have %d", e.Need, e.Have)
}

// InvalidTiffMagicError carries the magic number that was rejected.
type InvalidTiffMagicError struct {
	Magic uint16
}

func (e *InvalidTiffMagicError) Error() string {
	return fmt.Sprintf("invalid TIFF magic 0x%04X", e.Magic)
}

// InvalidStructureError is a malformed fixed header or container layout.
type InvalidStructureError struct {
	Reason string
}

func (e *InvalidStructureError) Error() string {
	return "invalid structure: " + e.Reason
}

// Structure is shorthand for a new InvalidStructureError.
func Structure(format string, args ...interface{}) error {
	return &InvalidStructureError{Reason: fmt.Sprintf(format, args...)}
}

// TooManyIfdEntriesError is the IFD entry-count sanity cap.
type TooManyIfdEntriesError struct {
	Count uint64
	Limit uint64
}

func (e *TooManyIfdEntriesError) Error() string {
	return fmt.Sprintf("IFD has %d entries, limit is %d", e.Count, e.Limit)
}

// ValueSizeOverflowError is raised when format size × count does not fit.
type ValueSizeOverflowError struct {
	FormatSize uint64
	Count      uint64
}

func (e *ValueSizeOverflowError) Error() string {
	return fmt.Sprintf("value size overflow: %d × %d", e.FormatSize, e.Count)
}

// ValueOutOfBoundsError is an entry whose out-of-line value lies outside the TIFF data.
type ValueOutOfBoundsError struct {
	Offset  uint64
	Size    uint64
	DataLen uint64
}

func (e *ValueOutOfBoundsError) Error() string {
	return fmt.Sprintf("value at offset %d (size %d) exceeds data length %d", e.Offset, e.Size, e.DataLen)
}

// IfdOffsetOutOfBoundsError is an IFD pointer past the end of the TIFF data.
type IfdOffsetOutOfBoundsError struct {
	Offset  uint64
	DataLen uint64
}

func (e *IfdOffsetOutOfBoundsError) Error() string {
	return fmt.Sprintf("IFD offset %d out of bounds (data length %d)", e.Offset, e.DataLen)
}

// RecursiveIfdError is raised when an IFD pointer revisits an offset or the
// per-parse directory cap is reached.
type RecursiveIfdError struct {
	Offset uint64
}

func (e *RecursiveIfdError) Error() string {
	return fmt.Sprintf("IFD at offset %d already visited", e.Offset)
}

// UnsupportedFormatError names a format no parser handles.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported format: " + e.Name
}

// UnsupportedWriteError is returned for read-only formats.
type UnsupportedWriteError struct {
	Format string
	Reason string
}

func (e *UnsupportedWriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %s", e.Format, e.Reason)
}

// MetadataTooLargeError is returned when a metadata block does not fit its container.
type MetadataTooLargeError struct {
	Size  uint64
	Limit uint64
}

func (e *MetadataTooLargeError) Error() string {
	return fmt.Sprintf("metadata block of %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// FileTooLargeError is returned by parsers that load the whole file.
type FileTooLargeError struct {
	Size  uint64
	Limit uint64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file of %d bytes exceeds in-memory limit of %d", e.Size, e.Limit)
}

// IOError wraps an underlying read or write failure.
type IOError struct{ Err error }

func (e *IOError) Error() string { return "io: " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// XMLError wraps an XML syntax failure.
type XMLError struct{ Err error }

func (e *XMLError) Error() string { return "xml: " + e.Err.Error() }
func (e *XMLError) Unwrap() error { return e.Err }

// ZlibError wraps a decompression failure.
type ZlibError struct{ Err error }

func (e *ZlibError) Error() string { return "zlib: " + e.Err.Error() }
func (e *ZlibError) Unwrap() error { return e.Err }

// EOF builds an UnexpectedEOFError from int lengths.
func EOF(need, have int) error {
	return &UnexpectedEOFError{Need: uint64(need), Have: uint64(have)}
}
