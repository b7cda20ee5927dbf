package writer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/image"
)

// hdrDerived are keys the parser computes from the header layout.
var hdrDerived = map[string]bool{
	"HDR:FormatIdentifier": true, "HDR:Comment": true, "HDR:Orientation": true,
}

// WriteHDR rewrites the text header of a Radiance RGBE file. Variable
// lines take their values from the attributes, repeated EXPOSURE lines are
// folded into one and new "HDR:*" keys are appended. The resolution line
// and the pixel data are copied unchanged.
func WriteHDR(r io.ReadSeeker, w io.Writer, m *core.Metadata) error {
	if !m.Attrs.IsDirty() {
		_, err := io.Copy(w, r)
		return wrapIO(err)
	}
	h, err := image.ReadHDRHeader(r)
	if err != nil {
		return errors.Wrap(err, "reading HDR header")
	}
	a := m.Attrs

	var b bytes.Buffer
	ident := h.Identifier
	if s, ok := a.GetStr("HDR:FormatIdentifier"); ok {
		ident = s
	}
	fmt.Fprintf(&b, "#?%s\n", ident)

	var comments []string
	for _, l := range h.Lines {
		if l.Key == "" {
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(l.Value, "#")))
		}
	}
	newComments, _ := a.GetList("HDR:Comment")
	if s, ok := a.GetStr("HDR:Comment"); ok {
		newComments = []attrs.Value{attrs.Str(s)}
	}
	keepComments := sameText(comments, newComments)

	written := map[string]bool{}
	for _, l := range h.Lines {
		if l.Key == "" {
			switch {
			case keepComments:
				fmt.Fprintf(&b, "%s\n", l.Value)
			case !written["HDR:Comment"]:
				for _, c := range newComments {
					fmt.Fprintf(&b, "# %s\n", c.String())
				}
			}
			written["HDR:Comment"] = true
			continue
		}
		key := hdrKey(l.Key)
		if written[key] {
			continue
		}
		written[key] = true
		if v, ok := a.Get(key); ok {
			fmt.Fprintf(&b, "%s=%s\n", l.Key, hdrValue(v))
		}
	}
	if !written["HDR:Comment"] {
		for _, c := range newComments {
			fmt.Fprintf(&b, "# %s\n", c.String())
		}
	}
	for _, key := range a.Keys() {
		if written[key] || hdrDerived[key] || !(strings.HasPrefix(key, "HDR:") || key == "Software") {
			continue
		}
		v, _ := a.Get(key)
		fmt.Fprintf(&b, "%s=%s\n", hdrVar(key), hdrValue(v))
	}
	b.WriteByte('\n')

	if _, err := w.Write(b.Bytes()); err != nil {
		return &core.IOError{Err: err}
	}
	if _, err := r.Seek(int64(h.Body), io.SeekStart); err != nil {
		return &core.IOError{Err: err}
	}
	_, err = io.Copy(w, r)
	return wrapIO(err)
}

func hdrKey(name string) string {
	if k, ok := image.HDRVars[strings.ToUpper(name)]; ok {
		return k
	}
	return "HDR:" + name
}

// hdrVar is the header variable written for an attribute key.
func hdrVar(key string) string {
	for name, k := range image.HDRVars {
		if k == key {
			return name
		}
	}
	return strings.TrimPrefix(key, "HDR:")
}

func hdrValue(v attrs.Value) string {
	if f, ok := v.AsDouble(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.ReplaceAll(v.String(), "\n", " ")
}

func sameText(a []string, b []attrs.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i].String() {
			return false
		}
	}
	return true
}
