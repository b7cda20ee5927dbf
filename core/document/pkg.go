package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

// odfTypes maps the OpenDocument mimetype entry to a format name.
var odfTypes = map[string]string{
	"application/vnd.oasis.opendocument.text":         ODT,
	"application/vnd.oasis.opendocument.spreadsheet":  ODS,
	"application/vnd.oasis.opendocument.presentation": ODP,
}

// opcParts maps the main part of an Office Open XML package to its format.
var opcParts = []struct {
	part, format string
}{
	{"word/document.xml", DOCX},
	{"xl/workbook.xml", XLSX},
	{"ppt/presentation.xml", PPTX},
}

// parsePackage opens a ZIP container and names the document kind from its
// content. Archives that are not documents yield core.ErrUnknownFormat.
func parsePackage(r io.ReadSeeker, m *core.Metadata) (*core.Metadata, error) {
	zr, err := openZip(r)
	if err != nil {
		return nil, err
	}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}
	if f, ok := files["mimetype"]; ok {
		mt, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		kind := strings.TrimSpace(string(mt))
		m.Attrs.Set("Document:MIMEType", attrs.Str(kind))
		if kind == "application/epub+zip" {
			m.Format = EPUB
			return m, epub(m, files)
		}
		if name, ok := odfTypes[kind]; ok {
			m.Format = name
			return m, odf(m, files)
		}
	}
	for _, p := range opcParts {
		if _, ok := files[p.part]; ok {
			m.Format = p.format
			return m, opc(m, files)
		}
	}
	return nil, core.ErrUnknownFormat
}

func openZip(r io.ReadSeeker) (*zip.Reader, error) {
	size, err := core.StreamSize(r)
	if err != nil {
		return nil, err
	}
	ra, ok := r.(io.ReaderAt)
	if !ok {
		data, err := core.ReadAll(r)
		if err != nil {
			return nil, err
		}
		ra = bytes.NewReader(data)
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, core.Structure("zip: %v", err)
	}
	return zr, nil
}

// readEntry inflates one archive member, refusing members larger than
// core.MaxDecompressedSize.
func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > core.MaxDecompressedSize {
		return nil, &core.MetadataTooLargeError{Size: f.UncompressedSize64, Limit: core.MaxDecompressedSize}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "zip member %s", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, core.MaxDecompressedSize+1))
	if err != nil {
		return nil, &core.IOError{Err: errors.Wrapf(err, "zip member %s", f.Name)}
	}
	if len(data) > core.MaxDecompressedSize {
		return nil, &core.MetadataTooLargeError{Size: uint64(len(data)), Limit: core.MaxDecompressedSize}
	}
	return data, nil
}

// member reads an optional part and decodes it into v. A missing part is
// not an error; a broken one is a warning.
func member(m *core.Metadata, files map[string]*zip.File, name string, v interface{}) bool {
	f, ok := files[name]
	if !ok {
		return false
	}
	data, err := readEntry(f)
	if err == nil {
		err = xml.Unmarshal(data, v)
	}
	if err != nil {
		m.Warn(errors.Wrapf(err, "%s", name))
		return false
	}
	return true
}

// opcCoreProps is docProps/core.xml. Element names match in any namespace.
type opcCoreProps struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	Keywords       string `xml:"keywords"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Revision       string `xml:"revision"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	LastPrinted    string `xml:"lastPrinted"`
	Category       string `xml:"category"`
	ContentStatus  string `xml:"contentStatus"`
	Language       string `xml:"language"`
}

type opcAppProps struct {
	Application string `xml:"Application"`
	AppVersion  string `xml:"AppVersion"`
	Company     string `xml:"Company"`
	Manager     string `xml:"Manager"`
	Template    string `xml:"Template"`
	TotalTime   string `xml:"TotalTime"`
	Pages       string `xml:"Pages"`
	Words       string `xml:"Words"`
	Characters  string `xml:"Characters"`
	Lines       string `xml:"Lines"`
	Paragraphs  string `xml:"Paragraphs"`
	Slides      string `xml:"Slides"`
	Notes       string `xml:"Notes"`
	DocSecurity string `xml:"DocSecurity"`
}

// opcCustomProps is docProps/custom.xml: named properties whose single
// child element carries a typed value.
type opcCustomProps struct {
	Properties []struct {
		Name  string `xml:"name,attr"`
		Value struct {
			XMLName xml.Name
			Text    string `xml:",chardata"`
		} `xml:",any"`
	} `xml:"property"`
}

func opc(m *core.Metadata, files map[string]*zip.File) error {
	var props opcCoreProps
	if member(m, files, "docProps/core.xml", &props) {
		setText(m, "Document:Title", props.Title)
		setText(m, "Document:Subject", props.Subject)
		setText(m, "Document:Author", props.Creator)
		setText(m, "Document:Keywords", props.Keywords)
		setText(m, "Document:Description", props.Description)
		setText(m, "Document:LastModifiedBy", props.LastModifiedBy)
		setText(m, "Document:Revision", props.Revision)
		setDate(m, "Document:CreateDate", props.Created)
		setDate(m, "Document:ModifyDate", props.Modified)
		setDate(m, "Document:LastPrinted", props.LastPrinted)
		setText(m, "Document:Category", props.Category)
		setText(m, "Document:ContentStatus", props.ContentStatus)
		setText(m, "Document:Language", props.Language)
	}
	var app opcAppProps
	if member(m, files, "docProps/app.xml", &app) {
		setText(m, "Document:Application", app.Application)
		setText(m, "Document:AppVersion", app.AppVersion)
		setText(m, "Document:Company", app.Company)
		setText(m, "Document:Manager", app.Manager)
		setText(m, "Document:Template", app.Template)
		setCount(m, "Document:TotalEditTime", app.TotalTime)
		setCount(m, "Document:Pages", app.Pages)
		setCount(m, "Document:Words", app.Words)
		setCount(m, "Document:Characters", app.Characters)
		setCount(m, "Document:Lines", app.Lines)
		setCount(m, "Document:Paragraphs", app.Paragraphs)
		setCount(m, "Document:Slides", app.Slides)
		setCount(m, "Document:Notes", app.Notes)
		setCount(m, "Document:DocSecurity", app.DocSecurity)
	}
	var custom opcCustomProps
	if member(m, files, "docProps/custom.xml", &custom) {
		for _, p := range custom.Properties {
			if p.Name == "" {
				continue
			}
			key := "Document:Custom:" + p.Name
			switch p.Value.XMLName.Local {
			case "i1", "i2", "i4", "int", "ui1", "ui2", "ui4", "uint":
				setCount(m, key, p.Value.Text)
			case "filetime", "date":
				setDate(m, key, p.Value.Text)
			case "bool":
				m.Attrs.Set(key, attrs.Bool(p.Value.Text == "true" || p.Value.Text == "1"))
			default:
				setText(m, key, p.Value.Text)
			}
		}
	}
	return nil
}

// odfMeta is meta.xml of an OpenDocument package.
type odfMeta struct {
	Meta struct {
		Generator       string   `xml:"generator"`
		Title           string   `xml:"title"`
		Description     string   `xml:"description"`
		Subject         string   `xml:"subject"`
		Keywords        []string `xml:"keyword"`
		InitialCreator  string   `xml:"initial-creator"`
		Creator         string   `xml:"creator"`
		CreationDate    string   `xml:"creation-date"`
		Date            string   `xml:"date"`
		Language        string   `xml:"language"`
		EditingCycles   string   `xml:"editing-cycles"`
		EditingDuration string   `xml:"editing-duration"`
		Statistic       struct {
			Attrs []xml.Attr `xml:",any,attr"`
		} `xml:"document-statistic"`
		User []struct {
			Name  string `xml:"name,attr"`
			Value string `xml:",chardata"`
		} `xml:"user-defined"`
	} `xml:"meta"`
}

func odf(m *core.Metadata, files map[string]*zip.File) error {
	var doc odfMeta
	if !member(m, files, "meta.xml", &doc) {
		return nil
	}
	md := doc.Meta
	setText(m, "Document:Application", md.Generator)
	setText(m, "Document:Title", md.Title)
	setText(m, "Document:Description", md.Description)
	setText(m, "Document:Subject", md.Subject)
	if len(md.Keywords) > 0 {
		m.Attrs.Set("Document:Keywords", attrs.Strs(md.Keywords))
	}
	setText(m, "Document:Author", md.InitialCreator)
	setText(m, "Document:LastModifiedBy", md.Creator)
	setDate(m, "Document:CreateDate", md.CreationDate)
	setDate(m, "Document:ModifyDate", md.Date)
	setText(m, "Document:Language", md.Language)
	setCount(m, "Document:Revision", md.EditingCycles)
	setText(m, "Document:EditingDuration", md.EditingDuration)
	for _, a := range md.Statistic.Attrs {
		name := strings.TrimSuffix(a.Name.Local, "-count")
		setCount(m, "ODF:"+odfStatName(name), a.Value)
	}
	for _, u := range md.User {
		if u.Name != "" {
			setText(m, "Document:Custom:"+u.Name, u.Value)
		}
	}
	return nil
}

// odfStatName turns "non-whitespace-character" into
// "NonWhitespaceCharacterCount".
func odfStatName(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "-") {
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]) + part[1:])
		}
	}
	b.WriteString("Count")
	return b.String()
}

// epubContainer is META-INF/container.xml.
type epubContainer struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// epubPackage is the OPF package document.
type epubPackage struct {
	Version  string `xml:"version,attr"`
	Metadata struct {
		Title       []string `xml:"title"`
		Creator     []string `xml:"creator"`
		Subject     []string `xml:"subject"`
		Description []string `xml:"description"`
		Publisher   []string `xml:"publisher"`
		Contributor []string `xml:"contributor"`
		Date        []string `xml:"date"`
		Identifier  []string `xml:"identifier"`
		Source      []string `xml:"source"`
		Language    []string `xml:"language"`
		Rights      []string `xml:"rights"`
		Meta        []struct {
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Property string `xml:"property,attr"`
			Text     string `xml:",chardata"`
		} `xml:"meta"`
	} `xml:"metadata"`
}

func epub(m *core.Metadata, files map[string]*zip.File) error {
	var c epubContainer
	opf := ""
	if member(m, files, "META-INF/container.xml", &c) {
		for _, rf := range c.Rootfiles {
			if rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml" {
				opf = rf.FullPath
				break
			}
		}
	}
	if opf == "" {
		// Fall back to the first package document in the archive.
		for name := range files {
			if path.Ext(name) == ".opf" && (opf == "" || name < opf) {
				opf = name
			}
		}
	}
	if opf == "" {
		return core.Structure("epub: no package document")
	}
	var p epubPackage
	if !member(m, files, opf, &p) {
		return nil
	}
	setText(m, "EPUB:Version", p.Version)
	md := p.Metadata
	setAll := func(key string, vals []string) {
		var out []string
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		switch len(out) {
		case 0:
		case 1:
			m.Attrs.Set(key, attrs.Str(out[0]))
		default:
			m.Attrs.Set(key, attrs.Strs(out))
		}
	}
	setAll("Document:Title", md.Title)
	setAll("Document:Author", md.Creator)
	setAll("Document:Subject", md.Subject)
	setAll("Document:Description", md.Description)
	setAll("Document:Publisher", md.Publisher)
	setAll("Document:Contributor", md.Contributor)
	setAll("Document:Date", md.Date)
	setAll("Document:Identifier", md.Identifier)
	setAll("Document:Source", md.Source)
	setAll("Document:Language", md.Language)
	setAll("Document:Rights", md.Rights)
	for _, mt := range md.Meta {
		switch {
		case mt.Property == "dcterms:modified":
			setDate(m, "Document:ModifyDate", mt.Text)
		case mt.Name != "" && mt.Content != "":
			setText(m, "EPUB:"+strings.TrimPrefix(mt.Name, "calibre:"), mt.Content)
		case mt.Property != "" && strings.TrimSpace(mt.Text) != "":
			setText(m, "EPUB:"+mt.Property, mt.Text)
		}
	}
	return nil
}
