package bpmn

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bpmntools/morph/pkg/model"
)

// WriteFile serializes the document and writes it to path in one shot, so a
// failed rewrite never leaves a partial file behind.
func WriteFile(path string, doc *model.Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Marshal serializes the document to BPMN XML bytes.
func Marshal(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the document as BPMN XML to w. Elements parsed into the
// model are regenerated; raw passthrough elements and the inner XML of
// activities, flows and pre-existing diagram shapes are emitted verbatim.
func Write(w io.Writer, doc *model.Document) error {
	rootAttrs := doc.RootAttrs()
	ns := newNSTable(rootAttrs)
	if needsExtDecl(doc, ns) {
		rootAttrs = append(rootAttrs, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + canonicalPrefixes[NSExt]},
			Value: NSExt,
		})
	}

	x := &writer{w: w, ns: ns}
	x.raw(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	x.open(0, ns.qualify(NSModel, "definitions"), rootAttrs, false)
	x.writeProcess(doc)
	x.writeCategories(doc)
	for _, e := range doc.RootExtra() {
		x.element(1, ns.qualify(NSModel, e.Name), e.Attrs, e.Inner)
	}
	x.writeDiagram(doc)
	x.close(0, ns.qualify(NSModel, "definitions"))

	return x.err
}

// needsExtDecl reports whether groups carry extension attributes while the
// root lacks a declaration for the extension namespace.
func needsExtDecl(doc *model.Document, ns *nsTable) bool {
	if ns.declared(NSExt) {
		return false
	}
	for _, g := range doc.Groups() {
		if hasExtPrefixedAttrs(g.Attrs) {
			return true
		}
	}
	return false
}

// writer accumulates serialization state; the first error sticks.
type writer struct {
	w   io.Writer
	ns  *nsTable
	err error
}

func (x *writer) writeProcess(doc *model.Document) {
	attrs := append([]xml.Attr{{Name: xml.Name{Local: "id"}, Value: doc.ProcessID()}}, doc.ProcessAttrs()...)
	x.open(1, x.ns.qualify(NSModel, "process"), attrs, false)

	for _, a := range doc.Activities() {
		x.element(2, x.ns.qualify(NSModel, a.Kind), withIDName(a.ID, a.Name, a.Attrs), a.Inner)
	}
	for _, e := range doc.Elements() {
		x.element(2, x.ns.qualify(NSModel, e.Name), e.Attrs, e.Inner)
	}
	for _, f := range doc.Flows() {
		attrs := withRefs(f.ID, f.Source, f.Target, f.Attrs)
		x.element(2, x.ns.qualify(NSModel, "sequenceFlow"), attrs, f.Inner)
	}
	for _, g := range doc.Groups() {
		attrs := withIDName(g.ID, "", g.Attrs)
		if g.CategoryValueRef != "" {
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "categoryValueRef"}, Value: g.CategoryValueRef})
		}
		x.element(2, x.ns.qualify(NSModel, "group"), attrs, "")
	}
	for _, a := range doc.Annotations() {
		name := x.ns.qualify(NSModel, "textAnnotation")
		x.open(2, name, []xml.Attr{{Name: xml.Name{Local: "id"}, Value: a.ID}}, false)
		x.raw(indent(3) + "<" + x.ns.qualify(NSModel, "text") + ">")
		x.text(a.Text)
		x.raw("</" + x.ns.qualify(NSModel, "text") + ">\n")
		x.close(2, name)
	}
	for _, a := range doc.Associations() {
		x.element(2, x.ns.qualify(NSModel, "association"), withRefs(a.ID, a.Source, a.Target, a.Attrs), "")
	}

	x.close(1, x.ns.qualify(NSModel, "process"))
}

func (x *writer) writeCategories(doc *model.Document) {
	for _, c := range doc.Categories() {
		name := x.ns.qualify(NSModel, "category")
		x.open(1, name, []xml.Attr{{Name: xml.Name{Local: "id"}, Value: c.ID}}, false)
		for _, v := range c.Values {
			x.element(2, x.ns.qualify(NSModel, "categoryValue"), []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: v.ID},
				{Name: xml.Name{Local: "value"}, Value: v.Value},
			}, "")
		}
		x.close(1, name)
	}
}

func (x *writer) writeDiagram(doc *model.Document) {
	shapes, edges := doc.Shapes(), doc.DiagramEdges()
	if !doc.HasDiagram() && len(shapes) == 0 && len(edges) == 0 {
		return
	}

	diagramID, planeID := doc.DiagramIDs()
	if diagramID == "" {
		diagramID = "BPMNDiagram_1"
	}
	if planeID == "" {
		planeID = "BPMNPlane_1"
	}

	diagram := x.ns.qualify(NSDI, "BPMNDiagram")
	plane := x.ns.qualify(NSDI, "BPMNPlane")
	x.open(1, diagram, []xml.Attr{{Name: xml.Name{Local: "id"}, Value: diagramID}}, false)
	x.open(2, plane, []xml.Attr{
		{Name: xml.Name{Local: "id"}, Value: planeID},
		{Name: xml.Name{Local: "bpmnElement"}, Value: doc.ProcessID()},
	}, false)

	for _, s := range shapes {
		attrs := []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: s.ID},
			{Name: xml.Name{Local: "bpmnElement"}, Value: s.Element},
		}
		inner := s.Inner
		if inner == "" {
			inner = "\n" + indent(4) + x.boundsTag(s.Bounds) + "\n" + indent(3)
		}
		x.element(3, x.ns.qualify(NSDI, "BPMNShape"), attrs, inner)
	}
	for _, e := range edges {
		attrs := []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: e.ID},
			{Name: xml.Name{Local: "bpmnElement"}, Value: e.Element},
		}
		inner := e.Inner
		if inner == "" && len(e.Waypoints) > 0 {
			var b bytes.Buffer
			b.WriteString("\n")
			for _, p := range e.Waypoints {
				fmt.Fprintf(&b, "%s<%s x=\"%s\" y=\"%s\"/>\n",
					indent(4), x.ns.qualify(NSDDI, "waypoint"), num(p.X), num(p.Y))
			}
			b.WriteString(indent(3))
			inner = b.String()
		}
		x.element(3, x.ns.qualify(NSDI, "BPMNEdge"), attrs, inner)
	}

	x.close(2, plane)
	x.close(1, diagram)
}

func (x *writer) boundsTag(r model.Rect) string {
	return fmt.Sprintf("<%s x=%q y=%q width=%q height=%q/>",
		x.ns.qualify(NSDC, "Bounds"), num(r.X), num(r.Y), num(r.W), num(r.H))
}

// element writes one element with verbatim inner XML; empty inner XML
// collapses to a self-closing tag.
func (x *writer) element(depth int, name string, attrs []xml.Attr, inner string) {
	if inner == "" {
		x.open(depth, name, attrs, true)
		return
	}
	x.raw(indent(depth) + "<" + name)
	x.attrs(attrs)
	x.raw(">")
	x.raw(inner)
	x.raw("</" + name + ">\n")
}

func (x *writer) open(depth int, name string, attrs []xml.Attr, selfClose bool) {
	x.raw(indent(depth) + "<" + name)
	x.attrs(attrs)
	if selfClose {
		x.raw("/>\n")
		return
	}
	x.raw(">\n")
}

func (x *writer) attrs(attrs []xml.Attr) {
	for _, a := range attrs {
		x.raw(" " + x.ns.attrName(a.Name) + `="`)
		x.text(a.Value)
		x.raw(`"`)
	}
}

func (x *writer) close(depth int, name string) {
	x.raw(indent(depth) + "</" + name + ">\n")
}

func (x *writer) raw(s string) {
	if x.err != nil {
		return
	}
	_, x.err = io.WriteString(x.w, s)
}

func (x *writer) text(s string) {
	if x.err != nil {
		return
	}
	x.err = xml.EscapeText(x.w, []byte(s))
}

func withIDName(id, name string, attrs []xml.Attr) []xml.Attr {
	out := []xml.Attr{{Name: xml.Name{Local: "id"}, Value: id}}
	if name != "" {
		out = append(out, xml.Attr{Name: xml.Name{Local: "name"}, Value: name})
	}
	return append(out, attrs...)
}

func withRefs(id, source, target string, attrs []xml.Attr) []xml.Attr {
	out := []xml.Attr{
		{Name: xml.Name{Local: "id"}, Value: id},
		{Name: xml.Name{Local: "sourceRef"}, Value: source},
		{Name: xml.Name{Local: "targetRef"}, Value: target},
	}
	return append(out, attrs...)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func indent(depth int) string {
	const unit = "  "
	s := ""
	for range depth {
		s += unit
	}
	return s
}
