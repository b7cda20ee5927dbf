// Package writer rewrites the metadata of JPEG, PNG, TIFF/DNG, WebP,
// OpenEXR and Radiance HDR files while copying every other byte of the
// source. Writers lay the output out completely before emitting it, so
// length fields and CRCs are always final.
//
// A container that has not changed since it was parsed (Attrs.IsDirty is
// false) keeps its original blocks. Otherwise the EXIF, XMP and IPTC blocks
// are rebuilt from the attributes, and a block with nothing left to say is
// dropped.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/dsoprea/go-logging"
	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/exif"
	"github.com/ankit-chaubey/metasurgery/core/image"
	"github.com/ankit-chaubey/metasurgery/core/iptc"
	"github.com/ankit-chaubey/metasurgery/core/xmp"
)

var writerLogger = log.NewLogger("writer")

// Options controls how WriteFile places its output.
type Options struct {
	// Output is the destination path. Empty means the source itself.
	Output string
	// InPlace allows Output to be empty or equal to the source.
	InPlace bool
}

// Write emits the source read from r to w with the metadata of m. The
// format is m.Format.
func Write(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	if err := Writable(m); err != nil {
		return err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return &core.IOError{Err: err}
	}
	switch m.Format {
	case image.JPEG:
		return WriteJPEG(r, w, m)
	case image.PNG:
		return WritePNG(r, w, m)
	case image.TIFF, image.DNG:
		return WriteTIFF(r, w, m)
	case image.WebP:
		return WriteWebP(r, w, m)
	case image.EXR:
		return WriteEXR(r, w, m)
	case image.HDR:
		return WriteHDR(r, w, m)
	}
	return &core.UnsupportedWriteError{Format: m.Format, Reason: "no writer for this format"}
}

// Writable explains why m cannot be written, or returns nil.
func Writable(m *core.Metadata) error {
	if m.IsWritable() {
		return nil
	}
	switch {
	case m.IsCameraRaw():
		mk, _ := m.Attrs.GetStr("Make")
		if mk == "" {
			mk = "an unknown camera"
		}
		return &core.UnsupportedWriteError{Format: m.Format, Reason: fmt.Sprintf("camera RAW files from %s are read-only", mk)}
	case m.Format == image.WebP:
		return &core.UnsupportedWriteError{Format: m.Format, Reason: "animated WebP is read-only"}
	case core.MediaTypeFor(m.Format) != core.MediaImage:
		return &core.UnsupportedWriteError{Format: m.Format, Reason: core.MediaTypeFor(m.Format) + " formats are read-only"}
	}
	return &core.UnsupportedWriteError{Format: m.Format, Reason: "no writer for this format"}
}

// WriteFile rewrites the file at path with the metadata of m. The output
// is written to a temporary file in the destination directory and renamed
// over the destination, so a failed write leaves it untouched.
func WriteFile(path string, m *core.Metadata, opts Options) error {
	return replace(path, opts, func(src io.ReadSeeker, dst io.Writer) error {
		return Write(src, dst, m)
	})
}

// replace runs fn from the file at path into the destination chosen by
// opts and renames the result into place.
func replace(path string, opts Options, fn func(io.ReadSeeker, io.Writer) error) error {
	out := opts.Output
	if out == "" {
		out = path
	}
	if same(path, out) && !opts.InPlace {
		return errors.Errorf("refusing to overwrite %s without in-place mode", path)
	}
	src, err := os.Open(path)
	if err != nil {
		return &core.IOError{Err: err}
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return &core.IOError{Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".*.tmp")
	if err != nil {
		return &core.IOError{Err: err}
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := fn(src, tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return fail(&core.IOError{Err: err})
	}
	if err := tmp.Sync(); err != nil {
		return fail(&core.IOError{Err: err})
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return &core.IOError{Err: err}
	}
	if err := os.Rename(name, out); err != nil {
		os.Remove(name)
		return &core.IOError{Err: err}
	}
	writerLogger.Debugf(nil, "wrote %s", out)
	return nil
}

func same(a, b string) bool {
	if a == b {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// payload holds the metadata blocks to insert. A nil block is not written.
type payload struct {
	// exif is a TIFF structure without the "Exif\0\0" header.
	exif []byte
	xmp  []byte
	iim  []byte
	// resources keeps the non-IPTC Photoshop resources of the source.
	resources bool
}

// encode builds the EXIF, XMP and IPTC blocks of a.
func encode(a *attrs.Attrs, thumb []byte) (*payload, error) {
	var p payload
	var err error
	if p.exif, err = exif.Encode(a, thumb); err != nil {
		return nil, errors.Wrap(err, "encoding EXIF")
	}
	if p.xmp, err = xmp.Encode(a); err != nil {
		return nil, errors.Wrap(err, "encoding XMP")
	}
	if p.iim, err = iptc.Encode(a); err != nil {
		return nil, errors.Wrap(err, "encoding IPTC")
	}
	return &p, nil
}

// rebuild encodes the blocks of m. It returns nil when the attributes are
// unchanged and the original blocks should be kept.
func rebuild(m *core.Metadata) (*payload, error) {
	if !m.Attrs.IsDirty() {
		return nil, nil
	}
	p, err := encode(m.Attrs, m.Thumbnail)
	if err != nil {
		return nil, err
	}
	p.resources = true
	return p, nil
}

// photoshop returns the image-resource block that carries p.iim, built on
// the resources of the source block irb. It is nil when nothing is left.
func (p *payload) photoshop(irb []byte) []byte {
	if p.resources && len(irb) > 0 {
		out, err := iptc.ReplaceIPTC(irb, p.iim)
		if err == nil {
			return out
		}
		writerLogger.Warningf(nil, "dropping unreadable image resources: %s", err.Error())
	}
	if p.iim == nil {
		return nil
	}
	return iptc.EncodeResources([]iptc.Resource{{Sig: "8BIM", ID: iptc.ResourceIPTC, Data: p.iim}})
}

// limit fails when a block of n bytes does not fit max.
func limit(n, max int) error {
	if n > max {
		return &core.MetadataTooLargeError{Size: uint64(n), Limit: uint64(max)}
	}
	return nil
}
