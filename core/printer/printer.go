// Package printer renders parsed metadata as grouped text, JSON or CSV.
package printer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
	"github.com/ankit-chaubey/metasurgery/core/tags"
)

// Output formats.
const (
	Text = "text"
	JSON = "json"
	CSV  = "csv"
)

// Printer handles all display output for the CLI.
type Printer struct {
	Format string
	// Filter keeps keys by full path, name or group, ignoring case. Bare
	// keys are in the EXIF group.
	Filter []string
	// All includes long binary values and the thumbnail/preview sizes.
	All       bool
	Writer    io.Writer
	ErrWriter io.Writer
}

// New creates a Printer writing to stdout and stderr.
func New(format string) *Printer {
	return &Printer{Format: format, Writer: os.Stdout, ErrWriter: os.Stderr}
}

// Field is one displayable line.
type Field struct {
	Group string
	Key   string
	Value string
}

// Fields flattens m into display lines. Bare EXIF names fall in the "EXIF"
// group; every other key is grouped by its namespace.
func (p *Printer) Fields(m *core.Metadata) []Field {
	var out []Field
	for _, e := range m.Attrs.IterFlat() {
		if !p.keep(e.Path) {
			continue
		}
		if b, ok := e.Value.AsBytes(); ok && len(b) > 32 && !p.All {
			continue
		}
		group, name := "EXIF", e.Path
		if i := strings.IndexByte(e.Path, ':'); i > 0 {
			group, name = e.Path[:i], e.Path[i+1:]
		}
		out = append(out, Field{Group: group, Key: name, Value: describe(m.Attrs, e.Path, e.Value)})
	}
	if p.All {
		if len(m.Thumbnail) > 0 {
			out = append(out, Field{"File", "ThumbnailImage", fmt.Sprintf("(Binary data %d bytes)", len(m.Thumbnail))})
		}
		if len(m.Preview) > 0 {
			out = append(out, Field{"File", "PreviewImage", fmt.Sprintf("(Binary data %d bytes)", len(m.Preview))})
		}
	}
	return out
}

func (p *Printer) keep(path string) bool {
	if len(p.Filter) == 0 {
		return true
	}
	lp := strings.ToLower(path)
	if !strings.Contains(lp, ":") {
		lp = "exif:" + lp
	}
	for _, f := range p.Filter {
		lf := strings.ToLower(f)
		if lp == lf || strings.HasSuffix(lp, ":"+lf) || strings.HasPrefix(lp, lf+":") {
			return true
		}
	}
	return false
}

// describe renders EXIF values through the tag interpreter.
func describe(a *attrs.Attrs, path string, v attrs.Value) string {
	if !strings.Contains(path, ":") {
		if s, ok := tags.DescribeAttr(a, path); ok {
			return s
		}
	}
	return v.String()
}

// Print renders one parsed file.
func (p *Printer) Print(m *core.Metadata) error {
	switch p.Format {
	case JSON:
		return p.PrintJSON([]*core.Metadata{m})
	case CSV:
		return p.PrintCSV([]*core.Metadata{m})
	}
	p.printText(m)
	return nil
}

func (p *Printer) printText(m *core.Metadata) {
	fmt.Fprintf(p.Writer, "File  : %s\n", m.FilePath)
	fmt.Fprintf(p.Writer, "Format: %s\n", m.Format)
	fields := p.Fields(m)
	if len(fields) == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	groups := make(map[string][]Field)
	var order []string
	for _, f := range fields {
		if _, seen := groups[f.Group]; !seen {
			order = append(order, f.Group)
		}
		groups[f.Group] = append(groups[f.Group], f)
	}
	for _, g := range order {
		fmt.Fprintf(p.Writer, "── %s ──\n", g)
		for _, f := range groups[g] {
			fmt.Fprintf(p.Writer, "  %-32s %s\n", f.Key+":", f.Value)
		}
		fmt.Fprintln(p.Writer)
	}
}

// PrintJSON writes one object per file, keyed by full attribute path.
func (p *Printer) PrintJSON(ms []*core.Metadata) error {
	out := make([]map[string]string, 0, len(ms))
	for _, m := range ms {
		obj := map[string]string{"SourceFile": m.FilePath, "File:FileType": m.Format}
		for _, f := range p.Fields(m) {
			key := f.Key
			if f.Group != "EXIF" {
				key = f.Group + ":" + f.Key
			}
			obj[key] = f.Value
		}
		out = append(out, obj)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Writer, string(b))
	return err
}

// PrintCSV writes a header row with the union of keys, then one row per file.
func (p *Printer) PrintCSV(ms []*core.Metadata) error {
	rows := make([]map[string]string, len(ms))
	cols := map[string]bool{}
	for i, m := range ms {
		rows[i] = map[string]string{}
		for _, f := range p.Fields(m) {
			key := f.Key
			if f.Group != "EXIF" {
				key = f.Group + ":" + f.Key
			}
			rows[i][key] = f.Value
			cols[key] = true
		}
	}
	header := make([]string, 0, len(cols))
	for k := range cols {
		header = append(header, k)
	}
	sort.Strings(header)

	w := csv.NewWriter(p.Writer)
	if err := w.Write(append([]string{"SourceFile", "FileType"}, header...)); err != nil {
		return err
	}
	for i, m := range ms {
		rec := []string{m.FilePath, m.Format}
		for _, k := range header {
			rec = append(rec, rows[i][k])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// PrintSuccess prints a success message.
func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintln(p.Writer, "✓ "+msg)
}

// PrintError prints an error to the error stream.
func (p *Printer) PrintError(msg string) {
	fmt.Fprintln(p.ErrWriter, "Error: "+msg)
}

// PrintWarnings lists the problems skipped while parsing m.
func (p *Printer) PrintWarnings(m *core.Metadata) {
	if m.Warnings == nil {
		return
	}
	var errs []error
	if me, ok := m.Warnings.(*multierror.Error); ok {
		errs = me.Errors
	} else {
		errs = []error{m.Warnings}
	}
	for _, err := range errs {
		fmt.Fprintf(p.ErrWriter, "Warning: %s: %v\n", m.FilePath, err)
	}
}

// ParseKV parses a "Key=Value" string.
func ParseKV(s string) (key, value string, ok bool) {
	idx := strings.Index(s, "=")
	if idx < 1 {
		return "", "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), true
}
