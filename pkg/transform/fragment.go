package transform

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/bpmntools/morph/pkg/model"
)

// Naming conventions for generated artifacts. The cleanup pass identifies
// prior runs by these prefixes, so they must stay stable.
const (
	FragmentPrefix     = "Fragment_"
	FragmentCategoryID = "FragmentCategory"
	AutoFlowPrefix     = "AutoFlow_"
)

// Geometry constants for materialized fragments.
const (
	groupPadding  = 20.0 // margin added around the union of member boxes
	placeholderW  = 100.0
	placeholderH  = 80.0 // fallback box for members without a diagram shape
	annotationW   = 160.0
	annotationH   = 40.0
	annotationGap = 30.0 // vertical distance between annotation and group box
)

// FragmentOptions configures the fragmentation rewrite.
type FragmentOptions struct {
	// Threshold is the minimum coupling for two activities to cluster.
	Threshold float64
	// IncludeSingletons keeps classes of size 1 as groups of one.
	IncludeSingletons bool
}

// Fragment clusters the document's activities by coupling threshold and
// materializes each class as a labeled group artifact: a Fragment_<n> group
// referencing a fresh category value, a diagram shape spanning the member
// boxes, one member association per member, and a descriptive annotation
// linked to the group by an association anchored on the facing box edges.
//
// Fragmentation is additive; it removes nothing. Returns the number of
// groups created.
func Fragment(doc *model.Document, opts FragmentOptions) int {
	classes := Clusters(doc, opts.Threshold, opts.IncludeSingletons)

	for i, class := range classes {
		materialize(doc, i+1, class, opts.Threshold)
	}
	return len(classes)
}

func materialize(doc *model.Document, ordinal int, members []string, threshold float64) {
	groupID := fmt.Sprintf("%s%d", FragmentPrefix, ordinal)
	extent := memberExtent(doc, members).Expand(groupPadding)

	valueID := groupID + "_value"
	doc.AppendCategoryValue(FragmentCategoryID, model.CategoryValue{
		ID:    valueID,
		Value: fmt.Sprintf("Fragment %d", ordinal),
	})

	doc.AddGroup(&model.Group{
		ID:               groupID,
		CategoryValueRef: valueID,
		Attrs:            provenanceAttrs(threshold, len(members)),
	})
	doc.AddShape(&model.Shape{ID: "Shape_" + groupID, Element: groupID, Bounds: extent})

	for _, member := range members {
		assocID := freshID("Association")
		doc.AddAssociation(&model.Association{ID: assocID, Source: groupID, Target: member})
		if shape, ok := doc.ShapeFor(member); ok {
			a, b := model.AnchorPoints(extent, shape.Bounds)
			doc.AddDiagramEdge(&model.DiagramEdge{
				ID:        "Edge_" + assocID,
				Element:   assocID,
				Waypoints: []model.Point{a, b},
			})
		}
	}

	annotate(doc, groupID, extent, ordinal, len(members), threshold)
}

// annotate attaches the group's descriptive annotation a fixed offset above
// its box, linked by an association whose diagram edge is anchored on the
// facing edges of the two boxes.
func annotate(doc *model.Document, groupID string, extent model.Rect, ordinal, size int, threshold float64) {
	annoRect := model.Rect{
		X: extent.X,
		Y: extent.Y - annotationGap - annotationH,
		W: annotationW,
		H: annotationH,
	}

	annoID := freshID("TextAnnotation")
	doc.AddAnnotation(&model.Annotation{
		ID:   annoID,
		Text: fmt.Sprintf("Fragment %d: %d activities (threshold %s)", ordinal, size, num(threshold)),
	})
	doc.AddShape(&model.Shape{ID: "Shape_" + annoID, Element: annoID, Bounds: annoRect})

	assocID := freshID("Association")
	doc.AddAssociation(&model.Association{ID: assocID, Source: annoID, Target: groupID})

	a, b := model.AnchorPoints(annoRect, extent)
	doc.AddDiagramEdge(&model.DiagramEdge{
		ID:        "Edge_" + assocID,
		Element:   assocID,
		Waypoints: []model.Point{a, b},
	})
}

// memberExtent unions the member diagram boxes, substituting a placeholder
// box for members without known geometry.
func memberExtent(doc *model.Document, members []string) model.Rect {
	rects := make([]model.Rect, 0, len(members))
	for _, id := range members {
		if shape, ok := doc.ShapeFor(id); ok {
			rects = append(rects, shape.Bounds)
			continue
		}
		rects = append(rects, model.Rect{W: placeholderW, H: placeholderH})
	}
	return model.UnionRects(rects)
}

// provenanceAttrs tags a group with the threshold that produced it and its
// member count, as extension-namespace attributes.
func provenanceAttrs(threshold float64, size int) []xml.Attr {
	return []xml.Attr{
		model.ExtAttr("threshold", num(threshold)),
		model.ExtAttr("size", strconv.Itoa(size)),
	}
}

func freshID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString()[:8])
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
