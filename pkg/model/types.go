package model

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Attribute local names carrying the numeric annotations the transforms read.
const (
	AttrCoupling = "coupling"
	AttrPrivacy  = "privacy"
)

// Activity is a task-like flow node in the process graph.
// Activities originate in the input document and are never mutated by the
// transforms except for deletion during masking.
type Activity struct {
	ID   string
	Name string
	Kind string // element local name, e.g. "task" or "userTask"

	// Attrs holds all attributes beyond id and name, including namespaced
	// extension attributes such as privacy. Inner preserves the element's
	// child XML verbatim for round-tripping.
	Attrs []xml.Attr
	Inner string
}

// Privacy returns the activity's numeric privacy attribute, if present.
func (a *Activity) Privacy() (float64, bool) {
	return FloatAttr(a.Attrs, AttrPrivacy)
}

// Flow is a directed sequence flow between two flow nodes.
type Flow struct {
	ID     string
	Source string
	Target string
	Attrs  []xml.Attr
	Inner  string
}

// Coupling returns the flow's numeric coupling weight, if present.
func (f *Flow) Coupling() (float64, bool) {
	return FloatAttr(f.Attrs, AttrCoupling)
}

// Group is an artifact grouping activities via a category value reference.
type Group struct {
	ID               string
	CategoryValueRef string
	Attrs            []xml.Attr
}

// Annotation is a free-text label artifact. Annotations are owned by the
// associations referencing them: once the last referencing association is
// removed, the annotation is removed too.
type Annotation struct {
	ID   string
	Text string
}

// Association links any two entities by id. Storage order of the endpoints
// carries no directionality semantics.
type Association struct {
	ID     string
	Source string
	Target string
	Attrs  []xml.Attr
}

// CategoryValue is a named value within a category, referenced by groups.
type CategoryValue struct {
	ID    string
	Value string
}

// Category holds grouping metadata values at the definitions level.
type Category struct {
	ID     string
	Values []CategoryValue
}

// Shape is a diagram rectangle for one element. For shapes read from the
// input, Inner preserves the original child XML (bounds, labels) and Bounds
// mirrors the parsed rectangle; shapes created by the transforms have empty
// Inner and are serialized from Bounds.
type Shape struct {
	ID      string
	Element string
	Bounds  Rect
	Inner   string
}

// DiagramEdge is a diagram polyline for a flow or association.
type DiagramEdge struct {
	ID        string
	Element   string
	Waypoints []Point
	Inner     string
}

// RawElement preserves a document child the transforms do not rewrite
// (events, gateways, lanes, data objects and so on). Raw flow nodes still
// participate in flow adjacency by id; they are never masked.
type RawElement struct {
	Name  string
	Attrs []xml.Attr
	Inner string
}

// ExtPrefix is the literal attribute prefix used for extension attributes
// the transforms write themselves. The bpmn writer declares the matching
// namespace on the root element when these attributes are present.
const ExtPrefix = "ext"

// ExtAttr builds an extension attribute in literal prefixed form.
func ExtAttr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: ExtPrefix + ":" + local}, Value: value}
}

// FloatAttr looks up an attribute by local name, ignoring any namespace
// prefix, and parses it as a float. It returns false when the attribute is
// absent or not numeric.
func FloatAttr(attrs []xml.Attr, local string) (float64, bool) {
	for _, a := range attrs {
		if localName(a.Name) != local {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// StringAttr looks up an attribute value by local name, ignoring prefixes.
func StringAttr(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if localName(a.Name) == local {
			return a.Value, true
		}
	}
	return "", false
}

// localName strips both xml.Name namespace qualification and literal
// "prefix:name" forms down to the bare attribute name.
func localName(n xml.Name) string {
	if i := strings.LastIndex(n.Local, ":"); i >= 0 {
		return n.Local[i+1:]
	}
	return n.Local
}
