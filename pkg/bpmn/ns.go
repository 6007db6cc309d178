package bpmn

import (
	"encoding/xml"
	"strings"

	"github.com/bpmntools/morph/pkg/model"
)

// BPMN 2.0 namespace URIs handled by the codec.
const (
	NSModel = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	NSDI    = "http://www.omg.org/spec/BPMN/20100524/DI"
	NSDC    = "http://www.omg.org/spec/DD/20100524/DC"
	NSDDI   = "http://www.omg.org/spec/DD/20100524/DI"
	NSXSI   = "http://www.w3.org/2001/XMLSchema-instance"

	// NSExt is the namespace for attributes morph writes itself
	// (group threshold and size provenance).
	NSExt = "http://bpmntools.github.io/morph/schema"
)

// canonicalPrefixes maps each handled namespace to the prefix used when the
// input document does not declare one of its own.
var canonicalPrefixes = map[string]string{
	NSModel: "bpmn",
	NSDI:    "bpmndi",
	NSDC:    "dc",
	NSDDI:   "di",
	NSXSI:   "xsi",
	NSExt:   model.ExtPrefix,
}

// nsTable resolves namespace URIs to the prefixes in effect for one
// document, derived from the xmlns declarations on its root element.
type nsTable struct {
	prefixByURI map[string]string
	defaultURI  string
}

// newNSTable scans root-element attributes for xmlns declarations.
// encoding/xml surfaces `xmlns:p="uri"` as Name{Space: "xmlns", Local: "p"}
// and a default `xmlns="uri"` as Name{Local: "xmlns"}.
func newNSTable(rootAttrs []xml.Attr) *nsTable {
	t := &nsTable{prefixByURI: make(map[string]string)}
	for _, a := range rootAttrs {
		switch {
		case a.Name.Space == "xmlns":
			t.prefixByURI[a.Value] = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			t.defaultURI = a.Value
		}
	}
	return t
}

// qualify returns the element or attribute name to emit for a local name in
// the given namespace: prefixed per the document's declarations, bare when
// the namespace is the document default or undeclared.
func (t *nsTable) qualify(uri, local string) string {
	if uri == "" || uri == t.defaultURI {
		return local
	}
	if p, ok := t.prefixByURI[uri]; ok {
		return p + ":" + local
	}
	return local
}

// declared reports whether the namespace is reachable from the root, either
// via a prefix or as the default namespace.
func (t *nsTable) declared(uri string) bool {
	_, ok := t.prefixByURI[uri]
	return ok || uri == t.defaultURI
}

// attrName renders one attribute name for output. Attributes created by the
// transforms carry a literal "prefix:name" in Local with an empty Space;
// attributes read from the input carry the namespace URI in Space.
func (t *nsTable) attrName(n xml.Name) string {
	switch {
	case n.Space == "xmlns":
		return "xmlns:" + n.Local
	case n.Space == "":
		return n.Local
	default:
		return t.qualify(n.Space, n.Local)
	}
}

// hasExtPrefixedAttrs reports whether any attribute uses the canonical
// extension prefix literally, meaning the root must declare it.
func hasExtPrefixedAttrs(attrs []xml.Attr) bool {
	p := canonicalPrefixes[NSExt] + ":"
	for _, a := range attrs {
		if a.Name.Space == "" && strings.HasPrefix(a.Name.Local, p) {
			return true
		}
	}
	return false
}
