package project

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// node is anything that can appear as a child of <Project>, <PropertyGroup> or <ItemGroup>.
type node interface {
	writeTo(w *xmlWriter, depth int)
}

// RawElement is an element the typed model does not interpret, kept verbatim.
type RawElement struct {
	Name  string
	Attrs []xml.Attr
	Inner []byte
}

// Text returns the character data of the element with surrounding whitespace trimmed.
func (r *RawElement) Text() string {
	d := xml.NewDecoder(bytes.NewReader(r.Inner))
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return strings.TrimSpace(b.String())
}

func (r *RawElement) writeTo(w *xmlWriter, depth int) {
	w.indent(depth)
	w.open(r.Name, r.Attrs)
	if len(r.Inner) == 0 {
		w.buf.WriteString(" />\n")
		return
	}
	w.buf.WriteByte('>')
	w.buf.Write(r.Inner)
	w.close(r.Name)
	w.buf.WriteByte('\n')
}

type comment []byte

func (c comment) writeTo(w *xmlWriter, depth int) {
	w.indent(depth)
	w.buf.WriteString("<!--")
	w.buf.Write(c)
	w.buf.WriteString("-->\n")
}

type directive []byte

func (d directive) writeTo(w *xmlWriter, depth int) {
	w.indent(depth)
	w.buf.WriteString("<!")
	w.buf.Write(d)
	w.buf.WriteString(">\n")
}

type procInst struct {
	target string
	inst   []byte
}

func (p procInst) writeTo(w *xmlWriter, depth int) {
	w.indent(depth)
	w.buf.WriteString("<?")
	w.buf.WriteString(p.target)
	if len(p.inst) > 0 {
		w.buf.WriteByte(' ')
		w.buf.Write(p.inst)
	}
	w.buf.WriteString("?>\n")
}

func decodeRaw(d *xml.Decoder, start xml.StartElement) (*RawElement, error) {
	var body struct {
		Inner []byte `xml:",innerxml"`
	}
	if err := d.DecodeElement(&body, &start); err != nil {
		return nil, err
	}
	return &RawElement{
		Name:  start.Name.Local,
		Attrs: plainAttrs(start.Attr),
		Inner: body.Inner,
	}, nil
}

// plainAttrs drops resolved namespace URLs so attributes serialize under their original spelling.
func plainAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		name := a.Name.Local
		if a.Name.Space == "xmlns" {
			name = "xmlns:" + name
		}
		out = append(out, xml.Attr{Name: xml.Name{Local: name}, Value: a.Value})
	}
	return out
}

// xmlWriter emits two-space indented XML with self-closing empty elements.
type xmlWriter struct {
	buf bytes.Buffer
}

func (w *xmlWriter) indent(depth int) {
	for range depth {
		w.buf.WriteString("  ")
	}
}

func (w *xmlWriter) open(name string, attrs []xml.Attr) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for _, a := range attrs {
		w.attr(a.Name.Local, a.Value)
	}
}

// Quotes in MSBuild conditions stay readable: only what an attribute value
// cannot hold is escaped.
var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
	textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

func (w *xmlWriter) attr(name, value string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	_, _ = attrEscaper.WriteString(&w.buf, value)
	w.buf.WriteByte('"')
}

func (w *xmlWriter) close(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

func (w *xmlWriter) text(value string) {
	_, _ = textEscaper.WriteString(&w.buf, value)
}

// container writes a start tag, the children one level deeper, and the end tag.
func (w *xmlWriter) container(depth int, name string, attrs []xml.Attr, children []node) {
	w.indent(depth)
	w.open(name, attrs)
	if len(children) == 0 {
		w.buf.WriteString(" />\n")
		return
	}
	w.buf.WriteString(">\n")
	for _, child := range children {
		child.writeTo(w, depth+1)
	}
	w.indent(depth)
	w.close(name)
	w.buf.WriteByte('\n')
}
