package document

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/iptc"
)

func parse(t *testing.T, format string, data []byte) *core.Metadata {
	t.Helper()
	h := New(format)
	if !h.CanParse(data[:min(len(data), core.PrefixSize)]) {
		t.Fatalf("%s sniffer rejected the fixture", format)
	}
	m, err := h.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse %s: %v", format, err)
	}
	return m
}

func wantStr(t *testing.T, m *core.Metadata, key, want string) {
	t.Helper()
	if got, ok := m.Attrs.GetStr(key); !ok || got != want {
		t.Errorf("%s = %q (%v), want %q", key, got, ok, want)
	}
}

func wantUInt(t *testing.T, m *core.Metadata, key string, want uint32) {
	t.Helper()
	if got, ok := m.Attrs.GetUInt(key); !ok || got != want {
		t.Errorf("%s = %d (%v), want %d", key, got, ok, want)
	}
}

const xmpPacket = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:CreatorTool="Writer 2"/>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

func deflate(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pdfFixture(t *testing.T, creator string) []byte {
	stream := deflate(t, xmpPacket)
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R /Metadata 4 0 R >>\nendobj\n")
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 3 >>\nendobj\n")
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	fmt.Fprintf(&b, "4 0 obj\n<< /Type /Metadata /Subtype /XML /Length %d /Filter /FlateDecode >>\nstream\n", len(stream))
	b.Write(stream)
	b.WriteString("\nendstream\nendobj\n")
	b.WriteString("5 0 obj\n<< /Title (Annual \\(draft\\) Report) /Author <FEFF004A006F>\n" +
		"/CreationDate (D:20240115103000+01'00') /Producer (Test\\040Suite)\n" +
		"/Creator (" + creator + ") /Custom (x) /Nested << /A (1) >> /Ref 7 0 R >>\nendobj\n")
	b.WriteString("trailer\n<< /Size 6 /Root 1 0 R /Info 5 0 R >>\n%%EOF\n")
	return b.Bytes()
}

func TestPDF(t *testing.T) {
	m := parse(t, PDF, pdfFixture(t, "Writer"))
	if m.Format != PDF {
		t.Errorf("Format = %q, want PDF", m.Format)
	}
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantStr(t, m, "PDF:Version", "1.7")
	wantStr(t, m, "PDF:Title", "Annual (draft) Report")
	wantStr(t, m, "PDF:Author", "Jo")
	wantStr(t, m, "PDF:Producer", "Test Suite")
	wantStr(t, m, "PDF:Custom", "x")
	wantUInt(t, m, "PDF:PageCount", 3)
	wantStr(t, m, "PDF:MediaBox", "0 0 612 792")
	wantStr(t, m, "XMP:CreatorTool", "Writer 2")
	if m.Attrs.Contains("PDF:Nested") || m.Attrs.Contains("PDF:Ref") {
		t.Error("dictionary or reference values were recorded")
	}
	v, ok := m.Attrs.Get("PDF:CreateDate")
	if !ok {
		t.Fatal("PDF:CreateDate missing")
	}
	got, _ := v.AsDateTime()
	want := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("PDF:CreateDate = %v, want %v", got, want)
	}
}

func TestPDFIllustrator(t *testing.T) {
	m := parse(t, PDF, pdfFixture(t, "Adobe Illustrator 27.0"))
	if m.Format != AI {
		t.Errorf("Format = %q, want AI", m.Format)
	}
	wantStr(t, m, "AI:Type", "PDF-based")
	wantUInt(t, m, "File:ImageWidth", 612)
	wantUInt(t, m, "File:ImageHeight", 792)
}

func TestPDFInfoScanFallback(t *testing.T) {
	data := []byte("%PDF-1.5\n9 0 obj\n<< /Type /ObjStm >>\nstream\n<< /Title (Scanned) >>\nendstream\nendobj\n")
	m := parse(t, PDF, data)
	wantStr(t, m, "PDF:Title", "Scanned")
}

func TestPDFDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"D:2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"D:20230704", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), true},
		{"D:20230704120000Z", time.Date(2023, 7, 4, 12, 0, 0, 0, time.UTC), true},
		{"D:20230704120000-05'00'", time.Date(2023, 7, 4, 17, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
	}
	for _, c := range cases {
		got, ok := pdfDate(c.in)
		if ok != c.ok || (ok && !got.Equal(c.want)) {
			t.Errorf("pdfDate(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestPDFLiteral(t *testing.T) {
	cases := map[string]string{
		`(plain)`:              "plain",
		`(a (nested) b)`:       "a (nested) b",
		`(tab\there)`:          "tab\there",
		`(oct\101\102)`:        "octAB",
		"(line\\\ncont)":       "linecont",
		"(caf\\351)":           "caf\u00e9",
		"(\xFE\xFF\x00H\x00i)": "Hi",
	}
	for in, want := range cases {
		p := &pdfLexer{b: []byte(in)}
		got, err := p.literal()
		if err != nil || got != want {
			t.Errorf("literal(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	p := &pdfLexer{b: []byte("(open")}
	if _, err := p.literal(); err == nil {
		t.Error("unterminated string accepted")
	}
}

func TestEPS(t *testing.T) {
	iim := []byte{0x1C, 0x02, 105, 0x00, 0x02, 'h', 'i'}
	irb := iptc.EncodeResources([]iptc.Resource{{ID: iptc.ResourceIPTC, Data: iim}})
	h := strings.ToUpper(hex.EncodeToString(irb))

	var b bytes.Buffer
	b.WriteString("%!PS-Adobe-3.0 EPSF-3.0\r\n")
	b.WriteString("%%Title: (Logo \\(final\\))\r\n")
	b.WriteString("%%Creator: (Draw 1.0)\r\n")
	b.WriteString("%%CreationDate: 2024-01-15\r\n")
	b.WriteString("%%BoundingBox: (atend)\r\n")
	b.WriteString("%%Pages: 1\r\n")
	b.WriteString("%%LanguageLevel: 2\r\n")
	b.WriteString("%%EndComments\r\n")
	fmt.Fprintf(&b, "%%BeginPhotoshop: %d\n%% %s\n%%EndPhotoshop\n", len(irb), h)
	b.WriteString(xmpPacket + "\n")
	b.WriteString("showpage\n%%Trailer\n%%BoundingBox: 10 20 110 70\n%%EOF\n")

	m := parse(t, EPS, b.Bytes())
	if m.Format != EPS {
		t.Errorf("Format = %q, want EPS", m.Format)
	}
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantStr(t, m, "EPS:Type", "ASCII EPS")
	wantStr(t, m, "EPS:PSVersion", "3.0")
	wantStr(t, m, "EPS:EPSVersion", "3.0")
	wantStr(t, m, "EPS:Title", "Logo (final)")
	wantStr(t, m, "EPS:Creator", "Draw 1.0")
	wantStr(t, m, "EPS:CreateDate", "2024-01-15")
	wantUInt(t, m, "EPS:Pages", 1)
	wantUInt(t, m, "EPS:LanguageLevel", 2)
	wantStr(t, m, "EPS:BoundingBox", "10 20 110 70")
	wantUInt(t, m, "File:ImageWidth", 100)
	wantUInt(t, m, "File:ImageHeight", 50)
	wantStr(t, m, "IPTC:Headline", "hi")
	wantStr(t, m, "XMP:CreatorTool", "Writer 2")
}

func TestDOSEPS(t *testing.T) {
	ps := []byte("%!PS-Adobe-3.0 EPSF-3.0\n%%Creator: Adobe Illustrator(R) 24.0\n%%AI8_CreatorVersion: 24.0.1\n%%BoundingBox: 0 0 200 100\n%%EndComments\n")
	preview := []byte("II*\x00fake tiff")
	head := make([]byte, 30)
	copy(head, dosEPSMagic)
	le := binary.LittleEndian
	le.PutUint32(head[4:], 30)
	le.PutUint32(head[8:], uint32(len(ps)))
	le.PutUint32(head[20:], uint32(30+len(ps)))
	le.PutUint32(head[24:], uint32(len(preview)))
	head[28], head[29] = 0xFF, 0xFF
	data := append(append(head, ps...), preview...)

	m := parse(t, EPS, data)
	if m.Format != AI {
		t.Errorf("Format = %q, want AI", m.Format)
	}
	wantStr(t, m, "EPS:Type", "DOS EPS")
	wantStr(t, m, "EPS:PreviewType", "TIFF")
	wantStr(t, m, "AI:Type", "EPS-based")
	wantStr(t, m, "AI:CreatorVersion", "24.0.1")
	wantUInt(t, m, "File:ImageWidth", 200)
	if !bytes.Equal(m.Preview, preview) {
		t.Errorf("Preview = %q", m.Preview)
	}
}

func TestScanLinesCR(t *testing.T) {
	var lines []string
	for data := []byte("a\rb\r\nc\nd"); len(data) > 0; {
		adv, tok, _ := scanLinesCR(data, true)
		lines = append(lines, string(tok))
		data = data[adv:]
	}
	if strings.Join(lines, ",") != "a,b,c,d" {
		t.Errorf("lines = %q", lines)
	}
}

func zipFixture(t *testing.T, files [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f[0], Method: zip.Store})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(f[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDOCX(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`},
		{"docProps/core.xml", `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
 xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
 <dc:title>Quarterly</dc:title>
 <dc:creator>Ann</dc:creator>
 <cp:lastModifiedBy>Bob</cp:lastModifiedBy>
 <cp:revision>4</cp:revision>
 <dcterms:created>2024-03-01T09:00:00Z</dcterms:created>
</cp:coreProperties>`},
		{"docProps/app.xml", `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
 <Application>Microsoft Office Word</Application><Pages>12</Pages><Words>3400</Words><Company>Acme</Company>
</Properties>`},
		{"docProps/custom.xml", `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/custom-properties"
 xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">
 <property fmtid="{D5CDD505-2E9C-101B-9397-08002B2CF9AE}" pid="2" name="Client"><vt:lpwstr>Globex</vt:lpwstr></property>
 <property fmtid="{D5CDD505-2E9C-101B-9397-08002B2CF9AE}" pid="3" name="Approved"><vt:bool>true</vt:bool></property>
</Properties>`},
	})
	// Any ZIP handler names the package from its content.
	m := parse(t, EPUB, data)
	if m.Format != DOCX {
		t.Errorf("Format = %q, want DOCX", m.Format)
	}
	if m.Warnings != nil {
		t.Errorf("Warnings = %v", m.Warnings)
	}
	wantStr(t, m, "Document:Title", "Quarterly")
	wantStr(t, m, "Document:Author", "Ann")
	wantStr(t, m, "Document:LastModifiedBy", "Bob")
	wantStr(t, m, "Document:Revision", "4")
	wantStr(t, m, "Document:Application", "Microsoft Office Word")
	wantStr(t, m, "Document:Company", "Acme")
	wantUInt(t, m, "Document:Pages", 12)
	wantUInt(t, m, "Document:Words", 3400)
	wantStr(t, m, "Document:Custom:Client", "Globex")
	if v, _ := m.Attrs.GetBool("Document:Custom:Approved"); !v {
		t.Error("Document:Custom:Approved not true")
	}
	if v, ok := m.Attrs.Get("Document:CreateDate"); !ok {
		t.Error("Document:CreateDate missing")
	} else if tm, _ := v.AsDateTime(); tm.Month() != time.March {
		t.Errorf("Document:CreateDate = %v", tm)
	}
}

func TestODS(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"mimetype", "application/vnd.oasis.opendocument.spreadsheet"},
		{"meta.xml", `<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
 xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
 <office:meta>
  <meta:generator>LibreOffice/7.6</meta:generator>
  <dc:title>Budget</dc:title>
  <meta:keyword>money</meta:keyword><meta:keyword>plan</meta:keyword>
  <meta:initial-creator>Ann</meta:initial-creator>
  <meta:editing-cycles>7</meta:editing-cycles>
  <meta:document-statistic meta:table-count="2" meta:cell-count="40"/>
  <meta:user-defined meta:name="Dept">Finance</meta:user-defined>
 </office:meta>
</office:document-meta>`},
	})
	m := parse(t, ODT, data)
	if m.Format != ODS {
		t.Errorf("Format = %q, want ODS", m.Format)
	}
	wantStr(t, m, "Document:Title", "Budget")
	wantStr(t, m, "Document:Application", "LibreOffice/7.6")
	wantStr(t, m, "Document:Author", "Ann")
	wantUInt(t, m, "Document:Revision", 7)
	wantUInt(t, m, "ODF:TableCount", 2)
	wantUInt(t, m, "ODF:CellCount", 40)
	wantStr(t, m, "Document:Custom:Dept", "Finance")
	if l, ok := m.Attrs.GetList("Document:Keywords"); !ok || len(l) != 2 {
		t.Errorf("Document:Keywords = %v", l)
	}
}

func TestEPUB(t *testing.T) {
	data := zipFixture(t, [][2]string{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
 <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`},
		{"OEBPS/content.opf", `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
 <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>A Book</dc:title>
  <dc:creator>First</dc:creator><dc:creator>Second</dc:creator>
  <dc:language>en</dc:language>
  <meta property="dcterms:modified">2024-05-06T07:08:09Z</meta>
  <meta name="cover" content="cover-image"/>
 </metadata>
</package>`},
	})
	m := parse(t, EPUB, data)
	if m.Format != EPUB {
		t.Errorf("Format = %q, want EPUB", m.Format)
	}
	wantStr(t, m, "EPUB:Version", "3.0")
	wantStr(t, m, "Document:Title", "A Book")
	wantStr(t, m, "Document:Language", "en")
	wantStr(t, m, "EPUB:cover", "cover-image")
	if l, ok := m.Attrs.GetList("Document:Author"); !ok || len(l) != 2 {
		t.Errorf("Document:Author = %v", l)
	}
	if !m.Attrs.Contains("Document:ModifyDate") {
		t.Error("Document:ModifyDate missing")
	}
}

func TestPlainZipIsUnknown(t *testing.T) {
	data := zipFixture(t, [][2]string{{"readme.txt", "hello"}})
	_, err := New(DOCX).Parse(bytes.NewReader(data))
	if err != core.ErrUnknownFormat {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestSniffers(t *testing.T) {
	cases := []struct {
		format, prefix string
		want           bool
	}{
		{PDF, "%PDF-1.4", true},
		{PDF, "%!PS-Adobe", false},
		{AI, "%!PS-Adobe-3.0 Illustrator", true},
		{AI, "%PDF-1.4", false},
		{EPS, "%!PS-Adobe-3.0", true},
		{EPS, dosEPSMagic, true},
		{DOCX, "PK\x03\x04", true},
		{EPUB, "PK\x05\x06", false},
	}
	for _, c := range cases {
		if got := New(c.format).CanParse([]byte(c.prefix)); got != c.want {
			t.Errorf("%s.CanParse(%q) = %v, want %v", c.format, c.prefix, got, c.want)
		}
	}
}
