// Package bpmn reads and writes the BPMN 2.0 XML encoding of a process
// document. It is a best-effort structural codec, not a validator: the
// elements the transforms rewrite (task-like activities, sequence flows,
// groups, annotations, associations, categories, diagram shapes and edges)
// are parsed into the model, and everything else is preserved verbatim.
package bpmn

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/bpmntools/morph/pkg/model"
)

// ErrNoProcess is returned by Parse when the document has no identifiable
// process root. The caller must not mutate or write anything in this case.
var ErrNoProcess = errors.New("document contains no process element")

// activityKinds lists the task-like element names treated as activities.
// Events and gateways are deliberately absent: they pass through as raw
// elements and are never fragmented or masked.
var activityKinds = map[string]bool{
	"task":             true,
	"userTask":         true,
	"serviceTask":      true,
	"scriptTask":       true,
	"manualTask":       true,
	"sendTask":         true,
	"receiveTask":      true,
	"businessRuleTask": true,
	"callActivity":     true,
}

// ParseFile reads and parses a BPMN file.
func ParseFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a BPMN document from r.
func Parse(r io.Reader) (*model.Document, error) {
	dec := xml.NewDecoder(r)

	root, err := findRoot(dec)
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument("")
	doc.SetRootAttrs(root.Attr)

	hasProcess := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "process":
				if hasProcess {
					// Only the first process is rewritten; keep the rest raw.
					if err := parseRaw(dec, t, doc.AddRootExtra); err != nil {
						return nil, err
					}
					continue
				}
				hasProcess = true
				if err := parseProcess(dec, t, doc); err != nil {
					return nil, err
				}
			case "category":
				if err := parseCategory(dec, t, doc); err != nil {
					return nil, err
				}
			case "BPMNDiagram":
				if err := parseDiagram(dec, t, doc); err != nil {
					return nil, err
				}
			default:
				if err := parseRaw(dec, t, doc.AddRootExtra); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			// Root closed.
		}
	}

	if !hasProcess {
		return nil, ErrNoProcess
	}
	return doc, nil
}

func findRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, ErrNoProcess
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("decode: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "definitions" {
				return xml.StartElement{}, ErrNoProcess
			}
			return se, nil
		}
	}
}

// rawElem captures any element verbatim: attributes plus inner XML.
type rawElem struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

func parseRaw(dec *xml.Decoder, se xml.StartElement, add func(*model.RawElement)) error {
	var e rawElem
	if err := dec.DecodeElement(&e, &se); err != nil {
		return fmt.Errorf("decode %s: %w", se.Name.Local, err)
	}
	add(&model.RawElement{Name: se.Name.Local, Attrs: e.Attrs, Inner: e.Inner})
	return nil
}

func parseProcess(dec *xml.Decoder, se xml.StartElement, doc *model.Document) error {
	var id string
	var rest []xml.Attr
	for _, a := range se.Attr {
		if a.Name.Local == "id" {
			id = a.Value
			continue
		}
		rest = append(rest, a)
	}
	if id == "" {
		id = freshID("Process")
	}
	doc.SetProcess(id, rest)

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode process: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := parseProcessChild(dec, t, doc); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "process" {
				return nil
			}
		}
	}
}

func parseProcessChild(dec *xml.Decoder, se xml.StartElement, doc *model.Document) error {
	name := se.Name.Local
	switch {
	case activityKinds[name]:
		var e struct {
			ID    string     `xml:"id,attr"`
			Name  string     `xml:"name,attr"`
			Attrs []xml.Attr `xml:",any,attr"`
			Inner string     `xml:",innerxml"`
		}
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		doc.AddActivity(&model.Activity{
			ID:    ensureID(e.ID, "Activity"),
			Name:  e.Name,
			Kind:  name,
			Attrs: e.Attrs,
			Inner: e.Inner,
		})
	case name == "sequenceFlow":
		var e struct {
			ID        string     `xml:"id,attr"`
			SourceRef string     `xml:"sourceRef,attr"`
			TargetRef string     `xml:"targetRef,attr"`
			Attrs     []xml.Attr `xml:",any,attr"`
			Inner     string     `xml:",innerxml"`
		}
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("decode sequenceFlow: %w", err)
		}
		doc.AddFlow(&model.Flow{
			ID:     ensureID(e.ID, "Flow"),
			Source: e.SourceRef,
			Target: e.TargetRef,
			Attrs:  e.Attrs,
			Inner:  e.Inner,
		})
	case name == "association":
		var e struct {
			ID        string     `xml:"id,attr"`
			SourceRef string     `xml:"sourceRef,attr"`
			TargetRef string     `xml:"targetRef,attr"`
			Attrs     []xml.Attr `xml:",any,attr"`
		}
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("decode association: %w", err)
		}
		doc.AddAssociation(&model.Association{
			ID:     ensureID(e.ID, "Association"),
			Source: e.SourceRef,
			Target: e.TargetRef,
			Attrs:  e.Attrs,
		})
	case name == "textAnnotation":
		var e struct {
			ID   string `xml:"id,attr"`
			Text string `xml:"text"`
		}
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("decode textAnnotation: %w", err)
		}
		doc.AddAnnotation(&model.Annotation{ID: ensureID(e.ID, "TextAnnotation"), Text: e.Text})
	case name == "group":
		var e struct {
			ID               string     `xml:"id,attr"`
			CategoryValueRef string     `xml:"categoryValueRef,attr"`
			Attrs            []xml.Attr `xml:",any,attr"`
		}
		if err := dec.DecodeElement(&e, &se); err != nil {
			return fmt.Errorf("decode group: %w", err)
		}
		doc.AddGroup(&model.Group{ID: ensureID(e.ID, "Group"), CategoryValueRef: e.CategoryValueRef, Attrs: e.Attrs})
	default:
		return parseRaw(dec, se, doc.AddElement)
	}
	return nil
}

func parseCategory(dec *xml.Decoder, se xml.StartElement, doc *model.Document) error {
	var e struct {
		ID     string `xml:"id,attr"`
		Values []struct {
			ID    string `xml:"id,attr"`
			Value string `xml:"value,attr"`
		} `xml:"categoryValue"`
	}
	if err := dec.DecodeElement(&e, &se); err != nil {
		return fmt.Errorf("decode category: %w", err)
	}
	c := &model.Category{ID: ensureID(e.ID, "Category")}
	for _, v := range e.Values {
		c.Values = append(c.Values, model.CategoryValue{ID: v.ID, Value: v.Value})
	}
	doc.AddCategory(c)
	return nil
}

func parseDiagram(dec *xml.Decoder, se xml.StartElement, doc *model.Document) error {
	var e struct {
		ID    string `xml:"id,attr"`
		Plane struct {
			ID      string `xml:"id,attr"`
			Element string `xml:"bpmnElement,attr"`
			Shapes  []struct {
				ID      string `xml:"id,attr"`
				Element string `xml:"bpmnElement,attr"`
				Bounds  struct {
					X float64 `xml:"x,attr"`
					Y float64 `xml:"y,attr"`
					W float64 `xml:"width,attr"`
					H float64 `xml:"height,attr"`
				} `xml:"Bounds"`
				Inner string `xml:",innerxml"`
			} `xml:"BPMNShape"`
			Edges []struct {
				ID      string `xml:"id,attr"`
				Element string `xml:"bpmnElement,attr"`
				Inner   string `xml:",innerxml"`
			} `xml:"BPMNEdge"`
		} `xml:"BPMNPlane"`
	}
	if err := dec.DecodeElement(&e, &se); err != nil {
		return fmt.Errorf("decode BPMNDiagram: %w", err)
	}

	doc.SetDiagram(e.ID, e.Plane.ID)
	for _, s := range e.Plane.Shapes {
		doc.AddShape(&model.Shape{
			ID:      s.ID,
			Element: s.Element,
			Bounds:  model.Rect{X: s.Bounds.X, Y: s.Bounds.Y, W: s.Bounds.W, H: s.Bounds.H},
			Inner:   s.Inner,
		})
	}
	for _, ed := range e.Plane.Edges {
		doc.AddDiagramEdge(&model.DiagramEdge{ID: ed.ID, Element: ed.Element, Inner: ed.Inner})
	}
	return nil
}

// ensureID returns the given id, or generates one when the input element
// carries none. Generated ids only need to be unique within the document.
func ensureID(id, kind string) string {
	if id != "" {
		return id
	}
	return freshID(kind)
}

func freshID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString()[:8])
}
