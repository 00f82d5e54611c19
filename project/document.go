package project

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Well-known property names.
const (
	PropertyRootNamespace   = "RootNamespace"
	PropertyTargetFramework = "TargetFramework"
	PropertyImplicitUsings  = "ImplicitUsings"
)

// Metadata values set on Page items.
const (
	PageSubType   = "Designer"
	PageGenerator = "MSBuild:Compile"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a parsed build manifest. Unknown elements, attributes and
// comments are kept so that serializing an untouched document changes only
// whitespace.
type Document struct {
	Project *Project

	bom         bool
	declaration []byte
	// Comments, directives and processing instructions around the root.
	prolog []node
	epilog []node
}

// Parse parses manifest XML. A well-formed document whose root is not
// <Project> parses successfully with a nil Project.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if bytes.HasPrefix(data, utf8BOM) {
		doc.bom = true
		data = data[len(utf8BOM):]
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
		}

		var misc node
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && !sawRoot && doc.declaration == nil && len(doc.prolog) == 0 {
				doc.declaration = bytes.Clone(t.Inst)
				continue
			}
			misc = procInst{target: t.Target, inst: bytes.Clone(t.Inst)}
		case xml.Comment:
			misc = comment(bytes.Clone(t))
		case xml.Directive:
			misc = directive(bytes.Clone(t))
		case xml.StartElement:
			if sawRoot {
				return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedManifest)
			}
			sawRoot = true
			if t.Name.Local != "Project" {
				if err := d.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
				}
				continue
			}
			p := &Project{}
			if err := p.decode(d, t); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
			}
			doc.Project = p
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: text outside the root element", ErrMalformedManifest)
			}
		}
		if misc != nil {
			if sawRoot {
				doc.epilog = append(doc.epilog, misc)
			} else {
				doc.prolog = append(doc.prolog, misc)
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedManifest)
	}
	return doc, nil
}

// Bytes serializes the document.
func (doc *Document) Bytes() ([]byte, error) {
	if doc.Project == nil {
		return nil, ErrCorruptDocument
	}

	w := &xmlWriter{}
	if doc.bom {
		w.buf.Write(utf8BOM)
	}
	if doc.declaration != nil {
		w.buf.WriteString("<?xml ")
		w.buf.Write(doc.declaration)
		w.buf.WriteString("?>\n")
	}
	for _, n := range doc.prolog {
		n.writeTo(w, 0)
	}
	w.container(0, "Project", doc.Project.Attrs, doc.Project.nodes)
	for _, n := range doc.epilog {
		n.writeTo(w, 0)
	}
	return w.buf.Bytes(), nil
}

// Project is the <Project> root element.
type Project struct {
	Attrs []xml.Attr
	nodes []node
}

func (p *Project) decode(d *xml.Decoder, start xml.StartElement) error {
	p.Attrs = plainAttrs(start.Attr)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var n node
			switch t.Name.Local {
			case "PropertyGroup":
				pg := &PropertyGroup{}
				err = pg.decode(d, t)
				n = pg
			case "ItemGroup":
				ig := &ItemGroup{}
				err = ig.decode(d, t)
				n = ig
			default:
				n, err = decodeRaw(d, t)
			}
			if err != nil {
				return err
			}
			p.nodes = append(p.nodes, n)
		case xml.Comment:
			p.nodes = append(p.nodes, comment(bytes.Clone(t)))
		case xml.EndElement:
			return nil
		}
	}
}

// PropertyGroups returns the property groups in document order.
func (p *Project) PropertyGroups() []*PropertyGroup {
	var groups []*PropertyGroup
	for _, n := range p.nodes {
		if pg, ok := n.(*PropertyGroup); ok {
			groups = append(groups, pg)
		}
	}
	return groups
}

// ItemGroups returns the item groups in document order.
func (p *Project) ItemGroups() []*ItemGroup {
	var groups []*ItemGroup
	for _, n := range p.nodes {
		if ig, ok := n.(*ItemGroup); ok {
			groups = append(groups, ig)
		}
	}
	return groups
}

// Property returns the value of key from the first property group that declares it.
func (p *Project) Property(key string) (string, bool) {
	for _, pg := range p.PropertyGroups() {
		if value, ok := pg.Get(key); ok {
			return value, true
		}
	}
	return "", false
}

// AddItemGroup appends ig after the last item group, or at the end when there is none.
func (p *Project) AddItemGroup(ig *ItemGroup) {
	at := len(p.nodes)
	for i, n := range p.nodes {
		if _, ok := n.(*ItemGroup); ok {
			at = i + 1
		}
	}
	p.nodes = insertNode(p.nodes, at, ig)
}

// RemoveItemGroup removes ig from the document and reports whether it was present.
func (p *Project) RemoveItemGroup(ig *ItemGroup) bool {
	for i, n := range p.nodes {
		if n == node(ig) {
			p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// FindItem returns the first build-action item whose include path equals include.
func (p *Project) FindItem(include string) (*ItemGroup, *Item) {
	for _, ig := range p.ItemGroups() {
		for _, it := range ig.Items() {
			if SameIncludePath(it.Include, include) {
				return ig, it
			}
		}
	}
	return nil, nil
}

// Items returns every build-action item of the document in order.
func (p *Project) Items() []*Item {
	var items []*Item
	for _, ig := range p.ItemGroups() {
		items = append(items, ig.Items()...)
	}
	return items
}

// RemoveItems removes every build-action item matched by fn and prunes item
// groups without elements. It returns the number of removed items.
func (p *Project) RemoveItems(fn func(*Item) bool) int {
	removed := 0
	for _, ig := range p.ItemGroups() {
		removed += ig.removeItems(fn)
	}
	p.PruneItemGroups()
	return removed
}

// PruneItemGroups removes item groups without elements and returns how many were removed.
func (p *Project) PruneItemGroups() int {
	pruned := 0
	for _, ig := range p.ItemGroups() {
		if ig.IsEmpty() && p.RemoveItemGroup(ig) {
			pruned++
		}
	}
	return pruned
}

// GroupForDirectory returns the first item group holding a build-action item
// whose include path lives directly in dir.
func (p *Project) GroupForDirectory(dir string) *ItemGroup {
	want := normalizeInclude(dir)
	for _, ig := range p.ItemGroups() {
		for _, it := range ig.Items() {
			if it.Include != "" && path.Dir(normalizeInclude(it.Include)) == want {
				return ig
			}
		}
	}
	return nil
}

// AddItem places it next to items of the same directory, or in a new item group.
func (p *Project) AddItem(it *Item) {
	dir := path.Dir(normalizeInclude(it.Include))
	if ig := p.GroupForDirectory(dir); ig != nil {
		ig.Add(it)
		return
	}
	ig := &ItemGroup{}
	ig.Add(it)
	p.AddItemGroup(ig)
}

// PropertyGroup is a <PropertyGroup> element.
type PropertyGroup struct {
	Attrs []xml.Attr
	nodes []node
}

func (pg *PropertyGroup) decode(d *xml.Decoder, start xml.StartElement) error {
	pg.Attrs = plainAttrs(start.Attr)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			raw, err := decodeRaw(d, t)
			if err != nil {
				return err
			}
			pg.nodes = append(pg.nodes, raw)
		case xml.Comment:
			pg.nodes = append(pg.nodes, comment(bytes.Clone(t)))
		case xml.EndElement:
			return nil
		}
	}
}

// Get returns the first declared value of key. Repeated declarations are ignored.
func (pg *PropertyGroup) Get(key string) (string, bool) {
	for _, n := range pg.nodes {
		if raw, ok := n.(*RawElement); ok && raw.Name == key {
			return raw.Text(), true
		}
	}
	return "", false
}

func (pg *PropertyGroup) writeTo(w *xmlWriter, depth int) {
	w.container(depth, "PropertyGroup", pg.Attrs, pg.nodes)
}

// ItemGroup is an <ItemGroup> element. Build-action items are typed; other
// items such as PackageReference are kept as raw elements in place.
type ItemGroup struct {
	Attrs []xml.Attr
	nodes []node
}

func (ig *ItemGroup) decode(d *xml.Decoder, start xml.StartElement) error {
	ig.Attrs = plainAttrs(start.Attr)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var n node
			if action, ok := buildActionForElement(t.Name.Local); ok {
				it := &Item{Action: action}
				err = it.decode(d, t)
				n = it
			} else {
				n, err = decodeRaw(d, t)
			}
			if err != nil {
				return err
			}
			ig.nodes = append(ig.nodes, n)
		case xml.Comment:
			ig.nodes = append(ig.nodes, comment(bytes.Clone(t)))
		case xml.EndElement:
			return nil
		}
	}
}

// Items returns the build-action items of the group in order.
func (ig *ItemGroup) Items() []*Item {
	var items []*Item
	for _, n := range ig.nodes {
		if it, ok := n.(*Item); ok {
			items = append(items, it)
		}
	}
	return items
}

// Bucket returns the items of the group classified as action.
func (ig *ItemGroup) Bucket(action BuildAction) []*Item {
	var items []*Item
	for _, it := range ig.Items() {
		if it.Action == action {
			items = append(items, it)
		}
	}
	return items
}

// Actions returns the build actions with at least one item, in first-appearance order.
func (ig *ItemGroup) Actions() []BuildAction {
	var actions []BuildAction
	seen := make(map[BuildAction]bool)
	for _, it := range ig.Items() {
		if !seen[it.Action] {
			seen[it.Action] = true
			actions = append(actions, it.Action)
		}
	}
	return actions
}

// Add appends it after the last item of the same build action, keeping buckets contiguous.
func (ig *ItemGroup) Add(it *Item) {
	at := len(ig.nodes)
	for i, n := range ig.nodes {
		if existing, ok := n.(*Item); ok && existing.Action == it.Action {
			at = i + 1
		}
	}
	ig.nodes = insertNode(ig.nodes, at, it)
}

// IsEmpty reports whether the group holds no elements. Comments do not count.
func (ig *ItemGroup) IsEmpty() bool {
	for _, n := range ig.nodes {
		if _, ok := n.(comment); !ok {
			return false
		}
	}
	return true
}

func (ig *ItemGroup) removeItems(fn func(*Item) bool) int {
	kept := ig.nodes[:0]
	removed := 0
	for _, n := range ig.nodes {
		if it, ok := n.(*Item); ok && fn(it) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	ig.nodes = kept
	return removed
}

func (ig *ItemGroup) writeTo(w *xmlWriter, depth int) {
	w.container(depth, "ItemGroup", ig.Attrs, ig.nodes)
}

// Item is a build-action item such as <Compile Include="..." />.
type Item struct {
	Action        BuildAction
	Include       string
	DependentUpon string
	SubType       string
	Generator     string

	attrs []xml.Attr
	nodes []node

	// metadataAsElements records that the manifest spelled metadata as child elements.
	metadataAsElements bool
}

// NewItem returns an item for include classified as action.
func NewItem(action BuildAction, include string) *Item {
	return &Item{Action: action, Include: include}
}

func (it *Item) decode(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "Include":
			it.Include = a.Value
		case "DependentUpon":
			it.DependentUpon = a.Value
		case "SubType":
			it.SubType = a.Value
		case "Generator":
			it.Generator = a.Value
		default:
			it.attrs = append(it.attrs, plainAttrs([]xml.Attr{a})...)
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var target *string
			switch t.Name.Local {
			case "DependentUpon":
				target = &it.DependentUpon
			case "SubType":
				target = &it.SubType
			case "Generator":
				target = &it.Generator
			}
			if target != nil {
				var value string
				if err := d.DecodeElement(&value, &t); err != nil {
					return err
				}
				*target = strings.TrimSpace(value)
				it.metadataAsElements = true
				continue
			}
			raw, err := decodeRaw(d, t)
			if err != nil {
				return err
			}
			it.nodes = append(it.nodes, raw)
		case xml.Comment:
			it.nodes = append(it.nodes, comment(bytes.Clone(t)))
		case xml.EndElement:
			return nil
		}
	}
}

func (it *Item) metadata() [][2]string {
	var md [][2]string
	if it.DependentUpon != "" {
		md = append(md, [2]string{"DependentUpon", it.DependentUpon})
	}
	if it.SubType != "" {
		md = append(md, [2]string{"SubType", it.SubType})
	}
	if it.Generator != "" {
		md = append(md, [2]string{"Generator", it.Generator})
	}
	return md
}

func (it *Item) writeTo(w *xmlWriter, depth int) {
	name := it.Action.String()
	w.indent(depth)
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	if it.Include != "" {
		w.attr("Include", it.Include)
	}
	for _, a := range it.attrs {
		w.attr(a.Name.Local, a.Value)
	}
	md := it.metadata()
	if !it.metadataAsElements {
		for _, kv := range md {
			w.attr(kv[0], kv[1])
		}
		md = nil
	}
	if len(md) == 0 && len(it.nodes) == 0 {
		w.buf.WriteString(" />\n")
		return
	}
	w.buf.WriteString(">\n")
	for _, kv := range md {
		w.indent(depth + 1)
		w.buf.WriteByte('<')
		w.buf.WriteString(kv[0])
		w.buf.WriteByte('>')
		w.text(kv[1])
		w.close(kv[0])
		w.buf.WriteByte('\n')
	}
	for _, n := range it.nodes {
		n.writeTo(w, depth+1)
	}
	w.indent(depth)
	w.close(name)
	w.buf.WriteByte('\n')
}

func insertNode(nodes []node, at int, n node) []node {
	nodes = append(nodes, nil)
	copy(nodes[at+1:], nodes[at:])
	nodes[at] = n
	return nodes
}
