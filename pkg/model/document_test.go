package model

import (
	"encoding/xml"
	"testing"
)

func newTestDoc() *Document {
	doc := NewDocument("proc")
	doc.AddActivity(&Activity{ID: "A", Kind: "task"})
	doc.AddActivity(&Activity{ID: "B", Kind: "userTask"})
	doc.AddFlow(&Flow{ID: "f1", Source: "A", Target: "B"})
	doc.AddShape(&Shape{ID: "sA", Element: "A"})
	doc.AddShape(&Shape{ID: "sB", Element: "B"})
	doc.AddDiagramEdge(&DiagramEdge{ID: "eF1", Element: "f1"})
	return doc
}

func TestRemoveActivityCascadesShape(t *testing.T) {
	doc := newTestDoc()
	doc.RemoveActivity("A")

	if doc.IsActivity("A") {
		t.Error("A still present")
	}
	if _, ok := doc.ShapeFor("A"); ok {
		t.Error("shape for A still present")
	}
	if _, ok := doc.ShapeFor("B"); !ok {
		t.Error("shape for B removed")
	}
}

func TestRemoveFlowCascadesEdgeAndAssociations(t *testing.T) {
	doc := newTestDoc()
	doc.AddAnnotation(&Annotation{ID: "anno", Text: "note"})
	doc.AddAssociation(&Association{ID: "assoc", Source: "anno", Target: "f1"})

	doc.RemoveFlow("f1")

	if len(doc.Flows()) != 0 {
		t.Error("flow still present")
	}
	if len(doc.DiagramEdges()) != 0 {
		t.Error("diagram edge still present")
	}
	if len(doc.Associations()) != 0 {
		t.Error("association still present")
	}
	if _, ok := doc.Annotation("anno"); ok {
		t.Error("orphaned annotation still present")
	}
}

func TestRemoveAssociationOrphanCascade(t *testing.T) {
	doc := newTestDoc()
	doc.AddAnnotation(&Annotation{ID: "anno", Text: "note"})
	doc.AddShape(&Shape{ID: "sAnno", Element: "anno"})
	doc.AddAssociation(&Association{ID: "a1", Source: "anno", Target: "A"})
	doc.AddAssociation(&Association{ID: "a2", Source: "anno", Target: "B"})

	// anno still has a2, so it survives.
	doc.RemoveAssociation("a1")
	if _, ok := doc.Annotation("anno"); !ok {
		t.Fatal("annotation removed while still referenced")
	}

	doc.RemoveAssociation("a2")
	if _, ok := doc.Annotation("anno"); ok {
		t.Error("orphaned annotation not removed")
	}
	if _, ok := doc.ShapeFor("anno"); ok {
		t.Error("orphaned annotation shape not removed")
	}
}

func TestRemoveAssociationDoesNotCascadeActivities(t *testing.T) {
	doc := newTestDoc()
	doc.AddAssociation(&Association{ID: "a1", Source: "A", Target: "B"})
	doc.RemoveAssociation("a1")

	if !doc.IsActivity("A") || !doc.IsActivity("B") {
		t.Error("activity removed by association cascade")
	}
}

func TestRemoveAssociationUnknownIDIsNoOp(t *testing.T) {
	doc := newTestDoc()
	doc.RemoveAssociation("nope")
	if len(doc.Flows()) != 1 || len(doc.Activities()) != 2 {
		t.Error("document changed")
	}
}

func TestAppendCategoryValue(t *testing.T) {
	doc := NewDocument("p")
	doc.AppendCategoryValue("cat", CategoryValue{ID: "v1", Value: "one"})
	doc.AppendCategoryValue("cat", CategoryValue{ID: "v2", Value: "two"})

	cats := doc.Categories()
	if len(cats) != 1 || len(cats[0].Values) != 2 {
		t.Fatalf("categories = %+v, want one with two values", cats)
	}

	doc.RemoveCategoryValues(func(v CategoryValue) bool { return v.ID == "v1" })
	if got := len(doc.Categories()[0].Values); got != 1 {
		t.Errorf("values after removal = %d, want 1", got)
	}

	doc.RemoveCategoryValues(func(CategoryValue) bool { return true })
	if got := len(doc.Categories()); got != 0 {
		t.Errorf("emptied category not dropped, %d left", got)
	}
}

func TestFlowsTouching(t *testing.T) {
	doc := newTestDoc()
	doc.AddFlow(&Flow{ID: "f2", Source: "B", Target: "A"})
	doc.AddFlow(&Flow{ID: "f3", Source: "B", Target: "C"})

	got := doc.FlowsTouching("A")
	if len(got) != 2 {
		t.Fatalf("FlowsTouching(A) = %d flows, want 2", len(got))
	}
}

func TestActivityPrivacyAndFlowCoupling(t *testing.T) {
	a := &Activity{ID: "A", Attrs: []xml.Attr{
		{Name: xml.Name{Local: "ext:privacy"}, Value: "0.8"},
	}}
	if p, ok := a.Privacy(); !ok || p != 0.8 {
		t.Errorf("Privacy() = %v, %v; want 0.8, true", p, ok)
	}

	b := &Activity{ID: "B"}
	if _, ok := b.Privacy(); ok {
		t.Error("Privacy() reported a value for an untagged activity")
	}

	f := &Flow{ID: "f", Attrs: []xml.Attr{
		{Name: xml.Name{Space: "http://example.com/ext", Local: "coupling"}, Value: "0.5"},
	}}
	if c, ok := f.Coupling(); !ok || c != 0.5 {
		t.Errorf("Coupling() = %v, %v; want 0.5, true", c, ok)
	}

	bad := &Flow{ID: "g", Attrs: []xml.Attr{
		{Name: xml.Name{Local: "coupling"}, Value: "high"},
	}}
	if _, ok := bad.Coupling(); ok {
		t.Error("Coupling() parsed a non-numeric value")
	}
}
