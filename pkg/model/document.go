// Package model holds the in-memory representation of one BPMN process
// document: the process graph (activities and sequence flows), grouping
// artifacts (groups, annotations, associations, categories) and the diagram
// layout (shapes and edges).
//
// A Document is exclusively owned by the transformation operating on it.
// All mutation goes through methods; removal methods cascade so that the
// document never holds an annotation without a referencing association.
// Document is not safe for concurrent use.
package model

import (
	"encoding/xml"
	"slices"
)

// Document is one parsed process model. The zero value is not usable - use
// NewDocument or the bpmn parser to create one.
type Document struct {
	processID    string
	processAttrs []xml.Attr
	rootAttrs    []xml.Attr

	activities   []*Activity
	flows        []*Flow
	groups       []*Group
	annotations  []*Annotation
	associations []*Association
	categories   []*Category
	elements     []*RawElement // process children the transforms pass through
	rootExtra    []*RawElement // definitions children the transforms pass through

	diagramID  string
	planeID    string
	hasDiagram bool
	shapes     []*Shape
	diagEdges  []*DiagramEdge
}

// NewDocument creates an empty document for the given process id.
func NewDocument(processID string) *Document {
	return &Document{processID: processID}
}

// ProcessID returns the id of the document's process element.
func (d *Document) ProcessID() string { return d.processID }

// SetProcess records the process element's id and remaining attributes.
func (d *Document) SetProcess(id string, attrs []xml.Attr) {
	d.processID = id
	d.processAttrs = attrs
}

// RootAttrs returns the attributes of the definitions root element.
func (d *Document) RootAttrs() []xml.Attr { return d.rootAttrs }

// SetRootAttrs replaces the definitions root attributes.
func (d *Document) SetRootAttrs(attrs []xml.Attr) { d.rootAttrs = attrs }

// ProcessAttrs returns the process element attributes beyond its id.
func (d *Document) ProcessAttrs() []xml.Attr { return d.processAttrs }

// =============================================================================
// Activities and flows
// =============================================================================

// AddActivity appends an activity to the process.
func (d *Document) AddActivity(a *Activity) { d.activities = append(d.activities, a) }

// Activities returns the activities in document order.
// The returned slice is a snapshot of membership; the pointed-to activities
// are the live objects.
func (d *Document) Activities() []*Activity { return slices.Clone(d.activities) }

// Activity returns the activity with the given id.
func (d *Document) Activity(id string) (*Activity, bool) {
	for _, a := range d.activities {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// IsActivity reports whether id names an activity in this document.
func (d *Document) IsActivity(id string) bool {
	_, ok := d.Activity(id)
	return ok
}

// RemoveActivity removes the activity and its diagram shape.
// Flows and associations touching the activity are the caller's
// responsibility; the mask rewriter removes them first.
func (d *Document) RemoveActivity(id string) {
	d.RemoveShapeFor(id)
	d.activities = slices.DeleteFunc(d.activities, func(a *Activity) bool { return a.ID == id })
}

// AddFlow appends a sequence flow to the process.
func (d *Document) AddFlow(f *Flow) { d.flows = append(d.flows, f) }

// Flows returns the sequence flows in document order (snapshot of membership).
func (d *Document) Flows() []*Flow { return slices.Clone(d.flows) }

// FlowsTouching returns all flows with the given id as source or target.
func (d *Document) FlowsTouching(id string) []*Flow {
	var out []*Flow
	for _, f := range d.flows {
		if f.Source == id || f.Target == id {
			out = append(out, f)
		}
	}
	return out
}

// RemoveFlow removes a flow, any associations referencing the flow (with
// annotation cascade), and the flow's diagram edge.
func (d *Document) RemoveFlow(id string) {
	for _, assoc := range d.AssociationsWith(id) {
		d.RemoveAssociation(assoc.ID)
	}
	d.RemoveDiagramEdgeFor(id)
	d.flows = slices.DeleteFunc(d.flows, func(f *Flow) bool { return f.ID == id })
}

// =============================================================================
// Artifacts
// =============================================================================

// AddGroup appends a group artifact.
func (d *Document) AddGroup(g *Group) { d.groups = append(d.groups, g) }

// Groups returns the group artifacts (snapshot of membership).
func (d *Document) Groups() []*Group { return slices.Clone(d.groups) }

// RemoveGroup removes a group and its diagram shape.
func (d *Document) RemoveGroup(id string) {
	d.RemoveShapeFor(id)
	d.groups = slices.DeleteFunc(d.groups, func(g *Group) bool { return g.ID == id })
}

// AddAnnotation appends a text annotation artifact.
func (d *Document) AddAnnotation(a *Annotation) { d.annotations = append(d.annotations, a) }

// Annotations returns the text annotations (snapshot of membership).
func (d *Document) Annotations() []*Annotation { return slices.Clone(d.annotations) }

// Annotation returns the annotation with the given id.
func (d *Document) Annotation(id string) (*Annotation, bool) {
	for _, a := range d.annotations {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// AddAssociation appends an association artifact.
func (d *Document) AddAssociation(a *Association) { d.associations = append(d.associations, a) }

// Associations returns the associations (snapshot of membership).
func (d *Document) Associations() []*Association { return slices.Clone(d.associations) }

func (a *Association) isEndpoint(id string) bool { return a.Source == id || a.Target == id }

// AssociationsWith returns all associations with the given id as an endpoint.
func (d *Document) AssociationsWith(id string) []*Association {
	var out []*Association
	for _, a := range d.associations {
		if a.isEndpoint(id) {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAssociation removes an association and its diagram edge, then
// collects orphaned annotations: an annotation endpoint left with zero
// referencing associations is removed along with its shape. The cascade
// applies only to annotations; no other entity type is collected.
func (d *Document) RemoveAssociation(id string) {
	idx := slices.IndexFunc(d.associations, func(a *Association) bool { return a.ID == id })
	if idx < 0 {
		return
	}
	removed := d.associations[idx]
	d.associations = slices.Delete(d.associations, idx, idx+1)
	d.RemoveDiagramEdgeFor(id)

	for _, end := range []string{removed.Source, removed.Target} {
		if _, ok := d.Annotation(end); ok && len(d.AssociationsWith(end)) == 0 {
			d.removeAnnotation(end)
		}
	}
}

func (d *Document) removeAnnotation(id string) {
	d.RemoveShapeFor(id)
	d.annotations = slices.DeleteFunc(d.annotations, func(a *Annotation) bool { return a.ID == id })
}

// =============================================================================
// Categories
// =============================================================================

// Categories returns the definitions-level categories (snapshot of membership).
func (d *Document) Categories() []*Category { return slices.Clone(d.categories) }

// AddCategory appends a category.
func (d *Document) AddCategory(c *Category) { d.categories = append(d.categories, c) }

// AppendCategoryValue appends a value to the category with the given id,
// creating the category if it does not exist yet.
func (d *Document) AppendCategoryValue(categoryID string, v CategoryValue) {
	for _, c := range d.categories {
		if c.ID == categoryID {
			c.Values = append(c.Values, v)
			return
		}
	}
	d.categories = append(d.categories, &Category{ID: categoryID, Values: []CategoryValue{v}})
}

// RemoveCategoryValues deletes every category value matching the predicate.
// Categories emptied by the deletion are removed as well.
func (d *Document) RemoveCategoryValues(match func(CategoryValue) bool) {
	for _, c := range d.categories {
		c.Values = slices.DeleteFunc(c.Values, match)
	}
	d.categories = slices.DeleteFunc(d.categories, func(c *Category) bool { return len(c.Values) == 0 })
}

// =============================================================================
// Raw passthrough elements
// =============================================================================

// AddElement appends a process child preserved verbatim.
func (d *Document) AddElement(e *RawElement) { d.elements = append(d.elements, e) }

// Elements returns the preserved process children (snapshot of membership).
func (d *Document) Elements() []*RawElement { return slices.Clone(d.elements) }

// AddRootExtra appends a definitions child preserved verbatim.
func (d *Document) AddRootExtra(e *RawElement) { d.rootExtra = append(d.rootExtra, e) }

// RootExtra returns the preserved definitions children.
func (d *Document) RootExtra() []*RawElement { return slices.Clone(d.rootExtra) }

// =============================================================================
// Diagram layout
// =============================================================================

// SetDiagram records the ids of the document's diagram and plane elements.
func (d *Document) SetDiagram(diagramID, planeID string) {
	d.diagramID = diagramID
	d.planeID = planeID
	d.hasDiagram = true
}

// HasDiagram reports whether the document carries a diagram section.
func (d *Document) HasDiagram() bool { return d.hasDiagram }

// DiagramIDs returns the diagram and plane element ids.
func (d *Document) DiagramIDs() (string, string) { return d.diagramID, d.planeID }

// AddShape appends a diagram shape.
func (d *Document) AddShape(s *Shape) { d.shapes = append(d.shapes, s) }

// Shapes returns the diagram shapes (snapshot of membership).
func (d *Document) Shapes() []*Shape { return slices.Clone(d.shapes) }

// ShapeFor returns the shape whose bpmnElement reference matches id.
func (d *Document) ShapeFor(id string) (*Shape, bool) {
	for _, s := range d.shapes {
		if s.Element == id {
			return s, true
		}
	}
	return nil, false
}

// RemoveShapeFor removes all shapes referencing the given element id.
func (d *Document) RemoveShapeFor(id string) {
	d.shapes = slices.DeleteFunc(d.shapes, func(s *Shape) bool { return s.Element == id })
}

// AddDiagramEdge appends a diagram edge.
func (d *Document) AddDiagramEdge(e *DiagramEdge) { d.diagEdges = append(d.diagEdges, e) }

// DiagramEdges returns the diagram edges (snapshot of membership).
func (d *Document) DiagramEdges() []*DiagramEdge { return slices.Clone(d.diagEdges) }

// RemoveDiagramEdgeFor removes all diagram edges referencing the element id.
func (d *Document) RemoveDiagramEdgeFor(id string) {
	d.diagEdges = slices.DeleteFunc(d.diagEdges, func(e *DiagramEdge) bool { return e.Element == id })
}
