package transform

import (
	"testing"

	"github.com/bpmntools/morph/pkg/model"
)

func TestCleanupRemovesFragmentArtifacts(t *testing.T) {
	doc := fragmentFixture()
	Fragment(doc, FragmentOptions{Threshold: 0.7, IncludeSingletons: true})

	removed := Cleanup(doc)
	if removed != 2 {
		t.Errorf("Cleanup() = %d, want 2", removed)
	}
	if got := len(doc.Groups()); got != 0 {
		t.Errorf("groups left = %d", got)
	}
	if got := len(doc.Annotations()); got != 0 {
		t.Errorf("annotations left = %d", got)
	}
	if got := len(doc.Associations()); got != 0 {
		t.Errorf("associations left = %d", got)
	}
	if got := len(doc.Categories()); got != 0 {
		t.Errorf("categories left = %d", got)
	}
	for _, s := range doc.Shapes() {
		if _, ok := doc.Activity(s.Element); !ok {
			t.Errorf("stale shape for %s", s.Element)
		}
	}
}

func TestCleanupRemovesBypassFlows(t *testing.T) {
	doc := model.NewDocument("p")
	doc.AddActivity(task("A"))
	doc.AddActivity(task("B"))
	doc.AddFlow(flow("f1", "A", "B"))
	doc.AddFlow(flow("AutoFlow_1", "A", "B"))

	if got := Cleanup(doc); got != 1 {
		t.Errorf("Cleanup() = %d, want 1", got)
	}
	flows := doc.Flows()
	if len(flows) != 1 || flows[0].ID != "f1" {
		t.Errorf("flows = %v, want only f1", flows)
	}
}

func TestCleanupPreservesForeignArtifacts(t *testing.T) {
	doc := model.NewDocument("p")
	doc.AddActivity(task("A"))
	doc.AddGroup(&model.Group{ID: "Group_manual"})
	doc.AddAnnotation(&model.Annotation{ID: "Anno_manual", Text: "note"})
	doc.AddAssociation(&model.Association{ID: "Assoc_manual", Source: "Anno_manual", Target: "A"})

	if got := Cleanup(doc); got != 0 {
		t.Errorf("Cleanup() = %d, want 0", got)
	}
	if len(doc.Groups()) != 1 || len(doc.Annotations()) != 1 || len(doc.Associations()) != 1 {
		t.Error("hand-authored artifacts must survive cleanup")
	}
}

func TestCleanupIdempotent(t *testing.T) {
	doc := fragmentFixture()
	Fragment(doc, FragmentOptions{Threshold: 0.7, IncludeSingletons: true})

	Cleanup(doc)
	if got := Cleanup(doc); got != 0 {
		t.Errorf("second Cleanup() = %d, want 0", got)
	}
}

func TestCleanupThenFragmentRestartsNumbering(t *testing.T) {
	doc := fragmentFixture()
	Fragment(doc, FragmentOptions{Threshold: 0.7, IncludeSingletons: true})
	Cleanup(doc)
	Fragment(doc, FragmentOptions{Threshold: 0.9, IncludeSingletons: true})

	groups := doc.Groups()
	if len(groups) == 0 || groups[0].ID != "Fragment_1" {
		t.Fatalf("groups after re-run = %v, want numbering from Fragment_1", groups)
	}
}
