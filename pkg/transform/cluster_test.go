package transform

import (
	"encoding/xml"
	"reflect"
	"strconv"
	"testing"

	"github.com/bpmntools/morph/pkg/model"
)

// task builds an activity, optionally with a privacy attribute.
func task(id string, privacy ...float64) *model.Activity {
	a := &model.Activity{ID: id, Kind: "task"}
	if len(privacy) > 0 {
		a.Attrs = append(a.Attrs, attr(model.AttrPrivacy, privacy[0]))
	}
	return a
}

// flow builds a sequence flow, optionally with a coupling attribute.
func flow(id, src, tgt string, coupling ...float64) *model.Flow {
	f := &model.Flow{ID: id, Source: src, Target: tgt}
	if len(coupling) > 0 {
		f.Attrs = append(f.Attrs, attr(model.AttrCoupling, coupling[0]))
	}
	return f
}

func attr(local string, v float64) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: local}, Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func TestClusters(t *testing.T) {
	tests := []struct {
		name              string
		build             func() *model.Document
		threshold         float64
		includeSingletons bool
		want              [][]string
	}{
		{
			name: "ChainSingleFragment",
			build: func() *model.Document {
				doc := model.NewDocument("p")
				for _, id := range []string{"A", "B", "C", "D"} {
					doc.AddActivity(task(id))
				}
				doc.AddFlow(flow("f1", "A", "B", 0.8))
				doc.AddFlow(flow("f2", "B", "C", 0.8))
				doc.AddFlow(flow("f3", "C", "D", 0.8))
				return doc
			},
			threshold:         0.7,
			includeSingletons: true,
			want:              [][]string{{"A", "B", "C", "D"}},
		},
		{
			name: "WeakEdgeSplitsChain",
			build: func() *model.Document {
				doc := model.NewDocument("p")
				for _, id := range []string{"A", "B", "C", "D", "E"} {
					doc.AddActivity(task(id))
				}
				doc.AddFlow(flow("f1", "A", "B", 0.9))
				doc.AddFlow(flow("f2", "B", "C", 0.9))
				doc.AddFlow(flow("f3", "C", "D", 0.5))
				doc.AddFlow(flow("f4", "D", "E", 0.9))
				return doc
			},
			threshold:         0.7,
			includeSingletons: true,
			want:              [][]string{{"A", "B", "C"}, {"D", "E"}},
		},
		{
			name: "UnweightedFlowsIgnored",
			build: func() *model.Document {
				doc := model.NewDocument("p")
				doc.AddActivity(task("A"))
				doc.AddActivity(task("B"))
				doc.AddFlow(flow("f1", "A", "B"))
				return doc
			},
			threshold:         0.0,
			includeSingletons: true,
			want:              [][]string{{"A"}, {"B"}},
		},
		{
			name: "SingletonsDropped",
			build: func() *model.Document {
				doc := model.NewDocument("p")
				for _, id := range []string{"A", "B", "C"} {
					doc.AddActivity(task(id))
				}
				doc.AddFlow(flow("f1", "A", "B", 0.9))
				return doc
			},
			threshold:         0.7,
			includeSingletons: false,
			want:              [][]string{{"A", "B"}},
		},
		{
			name: "NonActivityEndpointsIgnored",
			build: func() *model.Document {
				doc := model.NewDocument("p")
				doc.AddActivity(task("A"))
				doc.AddActivity(task("B"))
				// Gateway is a raw element, not an activity.
				doc.AddFlow(flow("f1", "A", "Gateway_1", 0.9))
				doc.AddFlow(flow("f2", "Gateway_1", "B", 0.9))
				return doc
			},
			threshold:         0.7,
			includeSingletons: true,
			want:              [][]string{{"A"}, {"B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clusters(tt.build(), tt.threshold, tt.includeSingletons)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clusters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClustersEveryActivityInExactlyOneClass(t *testing.T) {
	doc := model.NewDocument("p")
	ids := []string{"A", "B", "C", "D", "E", "F"}
	for _, id := range ids {
		doc.AddActivity(task(id))
	}
	doc.AddFlow(flow("f1", "A", "B", 0.9))
	doc.AddFlow(flow("f2", "C", "D", 0.9))
	doc.AddFlow(flow("f3", "E", "F", 0.2))

	seen := make(map[string]int)
	for _, class := range Clusters(doc, 0.7, true) {
		for _, id := range class {
			seen[id]++
		}
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("activity %s appears in %d classes, want 1", id, seen[id])
		}
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(6)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(4, 5)

	if uf.find(0) != uf.find(2) {
		t.Error("0 and 2 should share a root after chained unions")
	}
	if uf.find(3) == uf.find(0) {
		t.Error("3 should remain isolated")
	}
	if uf.find(4) != uf.find(5) {
		t.Error("4 and 5 should share a root")
	}
}
