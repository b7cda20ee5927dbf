package xmp

import (
	"errors"
	"strings"
	"testing"

	"github.com/ankit-chaubey/metasurgery/core"
	"github.com/ankit-chaubey/metasurgery/core/attrs"
)

const samplePacket = `<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/" x:xmptk="Test">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/"
    xmlns:exif="http://ns.adobe.com/exif/1.0/"
    xmlns:my="http://example.com/my/"
    xmp:Rating="5"
    xmpMM:DocumentID="uuid:1234"
    my:Custom="yes">
   <dc:title>
    <rdf:Alt>
     <rdf:li xml:lang="x-default">Default</rdf:li>
     <rdf:li xml:lang="en">English</rdf:li>
    </rdf:Alt>
   </dc:title>
   <dc:subject>
    <rdf:Bag>
     <rdf:li>one</rdf:li>
     <rdf:li>two &amp; three</rdf:li>
    </rdf:Bag>
   </dc:subject>
   <dc:creator>
    <rdf:Seq>
     <rdf:li>Ann</rdf:li>
     <rdf:li>Bob</rdf:li>
    </rdf:Seq>
   </dc:creator>
   <exif:Flash rdf:parseType="Resource">
    <exif:Fired>True</exif:Fired>
    <exif:Mode>2</exif:Mode>
   </exif:Flash>
   <xmp:CreatorTool>Camera 1.0</xmp:CreatorTool>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>` + "\x00\x00"

func TestDecode(t *testing.T) {
	a, err := DecodeString(samplePacket)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	strs := map[string]string{
		"DC:title":          "Default",
		"DC:title[en]":      "English",
		"XMP:Rating":        "5",
		"XMP-MM:DocumentID": "uuid:1234",
		"XMP-my:Custom":     "yes",
		"EXIF:Flash.Fired":  "True",
		"EXIF:Flash.Mode":   "2",
		"XMP:CreatorTool":   "Camera 1.0",
	}
	for k, want := range strs {
		if got, ok := a.GetStr(k); !ok || got != want {
			t.Errorf("%s = %q, %v; want %q", k, got, ok, want)
		}
	}
	lists := map[string][]string{
		"DC:subject": {"one", "two & three"},
		"DC:creator": {"Ann", "Bob"},
	}
	for k, want := range lists {
		got, ok := a.GetList(k)
		if !ok || len(got) != len(want) {
			t.Fatalf("%s = %v, want %v", k, got, want)
		}
		for i := range want {
			if s, _ := got[i].AsStr(); s != want[i] {
				t.Errorf("%s[%d] = %q, want %q", k, i, s, want[i])
			}
		}
	}
	if a.Contains("DC:title[x-default]") {
		t.Error("x-default must not get its own key")
	}
}

func TestDecodeAltScenario(t *testing.T) {
	const packet = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title><rdf:Alt><rdf:li xml:lang="x-default">Default</rdf:li><rdf:li xml:lang="en">English</rdf:li></rdf:Alt></dc:title>` +
		`</rdf:Description></rdf:RDF>`
	a, err := DecodeString(packet)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := a.GetStr("DC:title"); s != "Default" {
		t.Errorf("DC:title = %q", s)
	}
	if s, _ := a.GetStr("DC:title[en]"); s != "English" {
		t.Errorf("DC:title[en] = %q", s)
	}
}

func TestDecodeAltWithoutDefault(t *testing.T) {
	const packet = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:rights><rdf:Alt><rdf:li xml:lang="de">Rechte</rdf:li></rdf:Alt></dc:rights>` +
		`</rdf:Description></rdf:RDF>`
	a, err := DecodeString(packet)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := a.GetStr("DC:rights"); s != "Rechte" {
		t.Errorf("DC:rights = %q", s)
	}
	if a.Contains("DC:rights[de]") {
		t.Error("a single alternative needs no language key")
	}
}

func TestDecodeStructList(t *testing.T) {
	const packet = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/" xmlns:stEvt="http://ns.adobe.com/xap/1.0/sType/ResourceEvent#">` +
		`<xmpMM:History><rdf:Seq>` +
		`<rdf:li stEvt:action="created" stEvt:when="2024-01-01"/>` +
		`<rdf:li rdf:parseType="Resource"><stEvt:action>saved</stEvt:action></rdf:li>` +
		`</rdf:Seq></xmpMM:History>` +
		`</rdf:Description></rdf:RDF>`
	a, err := DecodeString(packet)
	if err != nil {
		t.Fatal(err)
	}
	actions, ok := a.GetList("XMP-MM:History.action")
	if !ok || len(actions) != 2 {
		t.Fatalf("History.action = %v", actions)
	}
	if s, _ := actions[1].AsStr(); s != "saved" {
		t.Errorf("second action = %q", s)
	}
	if s, _ := a.GetStr("XMP-MM:History.when"); s != "2024-01-01" {
		t.Errorf("History.when = %q", s)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeString(`<rdf:RDF><rdf:Description>`)
	var xe *core.XMLError
	if !errors.As(err, &xe) {
		t.Errorf("error %v is not an XMLError", err)
	}
}

func TestRoundTrip(t *testing.T) {
	first, err := DecodeString(samplePacket)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Encode(first)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Decode(out)
	if err != nil {
		t.Fatalf("re-decode: %v\n%s", err, out)
	}
	// Unknown schemas have no URI to write back.
	first.Remove("XMP-my:Custom")
	if !first.Equal(second) {
		t.Errorf("round trip changed attributes\nfirst:  %v\nsecond: %v\n%s", first.Keys(), second.Keys(), out)
	}
	again, _ := Encode(second)
	if string(again) != string(out) {
		t.Errorf("encode is not stable:\n%s\n---\n%s", out, again)
	}
}

func TestEncodeContainers(t *testing.T) {
	a := attrs.New()
	a.Set("DC:subject", attrs.Strs([]string{"k1", "k2"}))
	a.Set("DC:creator", attrs.Strs([]string{"Ann"}))
	a.Set("DC:title", attrs.Str("T <1>"))
	a.Set("XMP:Rating", attrs.UInt(4))
	a.Set("Make", attrs.Str("Canon"))
	a.Set("IPTC:Keywords", attrs.Str("skip"))

	b, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{
		"<?xpacket begin=",
		`xmlns:dc="http://purl.org/dc/elements/1.1/"`,
		"<rdf:Bag>",
		"<rdf:li>k1</rdf:li>",
		"<rdf:Seq>",
		`<rdf:li xml:lang="x-default">T &lt;1&gt;</rdf:li>`,
		"<xmp:Rating>4</xmp:Rating>",
		`<?xpacket end="w"?>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output lacks %q:\n%s", want, s)
		}
	}
	for _, bad := range []string{"Canon", "skip", "xmlns:exif"} {
		if strings.Contains(s, bad) {
			t.Errorf("output contains %q", bad)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	a := attrs.New()
	a.Set("Make", attrs.Str("Canon"))
	b, err := Encode(a)
	if err != nil || b != nil {
		t.Errorf("Encode = %q, %v; want nil", b, err)
	}
}

func TestFindAndSniff(t *testing.T) {
	doc := []byte("%!PS-Adobe-3.0\n%%Title: x\n" + samplePacket + "\n%%EOF")
	p := Find(doc)
	if p == nil || !strings.HasPrefix(string(p), "<?xpacket begin") || !strings.HasSuffix(string(p), `<?xpacket end="w"?>`) {
		t.Fatalf("Find = %q", p)
	}
	if Find([]byte("no packet here")) != nil {
		t.Error("Find invented a packet")
	}
	tests := []struct {
		in   string
		want bool
	}{
		{"<?xpacket begin", true},
		{"  <x:xmpmeta xmlns:x='adobe:ns:meta/'>", true},
		{"<rdf:RDF>", true},
		{"<svg>", false},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Errorf("Sniff(%q) = %v", tt.in, got)
		}
	}
}
